// Copyright 2025 The mpris-client-async Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/godbus/dbus/v5"
	mpris "github.com/oil653/mpris-client-async"
	"github.com/oil653/mpris-client-async/logger"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Start playback",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlayer(nil, func(p *mpris.Player, log *logger.Logger) error {
			return p.Play()
		})
	},
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause playback",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlayer(nil, func(p *mpris.Player, log *logger.Logger) error {
			return p.Pause()
		})
	},
}

var playPauseCmd = &cobra.Command{
	Use:   "play-pause",
	Short: "Toggle between playing and paused",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlayer(nil, func(p *mpris.Player, log *logger.Logger) error {
			return p.PlayPause()
		})
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop playback",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlayer(nil, func(p *mpris.Player, log *logger.Logger) error {
			return p.Stop()
		})
	},
}

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Skip to the next track",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlayer(nil, func(p *mpris.Player, log *logger.Logger) error {
			return p.Next()
		})
	},
}

var previousCmd = &cobra.Command{
	Use:   "previous",
	Short: "Skip to the previous track",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlayer(nil, func(p *mpris.Player, log *logger.Logger) error {
			return p.Previous()
		})
	},
}

var seekCmd = &cobra.Command{
	Use:   "seek <offset>",
	Short: "Seek relative to the current position, e.g. 30s or -1m10s",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		offset, err := time.ParseDuration(args[0])
		if err != nil {
			return fmt.Errorf("[seek] bad offset %q: %w", args[0], err)
		}
		return withPlayer(nil, func(p *mpris.Player, log *logger.Logger) error {
			if offset < 0 {
				return p.Seek(-offset, true)
			}
			return p.Seek(offset, false)
		})
	},
}

var setPositionCmd = &cobra.Command{
	Use:   "set-position <trackid> <position>",
	Short: "Jump to an absolute position on a track",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		pos, err := time.ParseDuration(args[1])
		if err != nil {
			return fmt.Errorf("[set-position] bad position %q: %w", args[1], err)
		}
		return withPlayer(nil, func(p *mpris.Player, log *logger.Logger) error {
			return p.SetTrackPosition(dbus.ObjectPath(args[0]), pos)
		})
	},
}

var openCmd = &cobra.Command{
	Use:   "open <uri>",
	Short: "Ask the player to open a URI",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlayer(nil, func(p *mpris.Player, log *logger.Logger) error {
			return p.OpenURI(args[0])
		})
	},
}

var volumeCmd = &cobra.Command{
	Use:   "volume <0..1>",
	Short: "Set the playback volume",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vol, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("[volume] bad volume %q: %w", args[0], err)
		}
		if vol < 0 || vol > 1 {
			return fmt.Errorf("[volume] volume %v out of range 0..1", vol)
		}
		return withPlayer(nil, func(p *mpris.Player, log *logger.Logger) error {
			return mpris.SetControlled(p, mpris.Volume, vol)
		})
	},
}

var rateCmd = &cobra.Command{
	Use:   "rate <factor>",
	Short: "Set the playback rate, 1.0 is normal speed",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rate, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("[rate] bad rate %q: %w", args[0], err)
		}
		return withPlayer(nil, func(p *mpris.Player, log *logger.Logger) error {
			return mpris.SetControlled(p, mpris.Rate, rate)
		})
	},
}

var loopCmd = &cobra.Command{
	Use:   "loop <none|track|playlist>",
	Short: "Set the loop mode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var mode mpris.Loop
		switch args[0] {
		case "none":
			mode = mpris.LoopNone
		case "track":
			mode = mpris.LoopTrack
		case "playlist":
			mode = mpris.LoopPlaylist
		default:
			return fmt.Errorf("[loop] unknown mode %q, want none, track or playlist", args[0])
		}
		return withPlayer(nil, func(p *mpris.Player, log *logger.Logger) error {
			return mpris.SetControlled(p, mpris.LoopStatus, mode)
		})
	},
}

var shuffleCmd = &cobra.Command{
	Use:   "shuffle <on|off>",
	Short: "Turn shuffle on or off",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var on bool
		switch args[0] {
		case "on":
			on = true
		case "off":
			on = false
		default:
			return fmt.Errorf("[shuffle] unknown setting %q, want on or off", args[0])
		}
		return withPlayer(nil, func(p *mpris.Player, log *logger.Logger) error {
			return mpris.SetControlled(p, mpris.Shuffle, on)
		})
	},
}

var raiseCmd = &cobra.Command{
	Use:   "raise",
	Short: "Bring the player window to the front",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlayer(nil, func(p *mpris.Player, log *logger.Logger) error {
			return p.Raise()
		})
	},
}

var quitCmd = &cobra.Command{
	Use:   "quit",
	Short: "Ask the player to exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlayer(nil, func(p *mpris.Player, log *logger.Logger) error {
			return p.Quit()
		})
	},
}

func init() {
	rootCmd.AddCommand(playCmd, pauseCmd, playPauseCmd, stopCmd, nextCmd,
		previousCmd, seekCmd, setPositionCmd, openCmd, volumeCmd, rateCmd,
		loopCmd, shuffleCmd, raiseCmd, quitCmd)
}
