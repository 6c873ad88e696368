// Copyright 2025 The mpris-client-async Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"sort"
	"strings"

	"github.com/godbus/dbus/v5"
	mpris "github.com/oil653/mpris-client-async"
	"github.com/oil653/mpris-client-async/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var osExit = os.Exit // A variable to allow mocking os.Exit in tests

const DEVELOPMENT = "development"

// Version is the program version; usually set from BuildInfo
var Version string = DEVELOPMENT

const mprisPrefix = "org.mpris.MediaPlayer2."

var (
	playerFlag  string
	configFlag  string
	verboseFlag bool
)

var rootCmd = &cobra.Command{
	Use:   "mprisctl",
	Short: "Control and observe MPRIS media players",
	Long: `mprisctl talks to MPRIS2 media players on the session bus: one-shot
transport commands, status and metadata snapshots, a live position feed
and a full-screen monitor.`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(readConfig)
	rootCmd.PersistentFlags().StringVarP(&playerFlag, "player", "p", "", "bus name of the player to talk to (short names like \"mpd\" work too)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "use config `file`")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "echo log output to stderr")
}

func readConfig() {
	if configFlag != "" {
		// use custom config file
		viper.SetConfigFile(configFlag)
	} else {
		// lookup default dirs
		viper.SetConfigName("mprisctl")
		viper.SetConfigType("toml")
		viper.AddConfigPath("$HOME/.config/mprisctl")
		viper.AddConfigPath(".")
	}

	err := viper.ReadInConfig()
	if err == nil {
		return
	}
	if _, ok := err.(viper.ConfigFileNotFoundError); ok && configFlag == "" {
		// running without a config file is fine
		return
	}
	fmt.Fprintf(os.Stderr, "Config file error: %v\n", err)
	osExit(2)
}

// withPlayer opens the session bus, resolves the target player and hands it
// to fn. Log output is drained in the background so library components
// never block on it.
func withPlayer(args []string, fn func(p *mpris.Player, log *logger.Logger) error) error {
	log := logger.Init()
	if verboseFlag || viper.GetBool("log.verbose") {
		go log.Drain(os.Stderr)
	} else {
		go log.Drain(io.Discard)
	}

	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return fmt.Errorf("[withPlayer] session bus: %w", err)
	}
	defer conn.Close()

	name, err := resolveName(conn, args)
	if err != nil {
		return err
	}
	player, err := mpris.NewPlayer(conn, name, log)
	if err != nil {
		return err
	}
	return fn(player, log)
}

// resolveName picks the player to talk to: positional argument, then the
// --player flag, then the config, then the first player on the bus.
func resolveName(conn *dbus.Conn, args []string) (string, error) {
	name := ""
	switch {
	case len(args) > 0 && args[0] != "":
		name = args[0]
	case playerFlag != "":
		name = playerFlag
	default:
		name = viper.GetString("player.name")
	}

	if name == "" {
		players, err := listPlayers(conn)
		if err != nil {
			return "", err
		}
		if len(players) == 0 {
			return "", fmt.Errorf("no MPRIS players found on the session bus")
		}
		return players[0], nil
	}

	if !strings.HasPrefix(name, mprisPrefix) {
		name = mprisPrefix + name
	}
	return name, nil
}

func listPlayers(conn *dbus.Conn) ([]string, error) {
	var names []string
	err := conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names)
	if err != nil {
		return nil, fmt.Errorf("[listPlayers] ListNames: %w", err)
	}

	var players []string
	for _, n := range names {
		if strings.HasPrefix(n, mprisPrefix) {
			players = append(players, n)
		}
	}
	sort.Strings(players)
	return players, nil
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List MPRIS players on the session bus",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("[list] session bus: %w", err)
		}
		defer conn.Close()

		players, err := listPlayers(conn)
		if err != nil {
			return err
		}
		for _, name := range players {
			identity := ""
			if v, err := conn.Object(name, "/org/mpris/MediaPlayer2").GetProperty("org.mpris.MediaPlayer2.Identity"); err == nil {
				identity, _ = v.Value().(string)
			}
			if identity != "" {
				fmt.Printf("%-50s %s\n", name, identity)
			} else {
				fmt.Println(name)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func main() {
	if Version == DEVELOPMENT {
		if bi, ok := debug.ReadBuildInfo(); ok {
			Version = bi.Main.Version
		}
	}
	rootCmd.Version = Version

	if err := rootCmd.Execute(); err != nil {
		osExit(1)
	}
}
