// Copyright 2025 The mpris-client-async Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/muesli/reflow/wordwrap"
	mpris "github.com/oil653/mpris-client-async"
	"github.com/oil653/mpris-client-async/logger"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var statusCmd = &cobra.Command{
	Use:   "status [player]",
	Short: "Show a one-shot status snapshot",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlayer(args, runStatus)
	},
}

func runStatus(p *mpris.Player, log *logger.Logger) error {
	fmt.Printf("%-10s: %s", "Player", p.Name())
	if identity, err := mpris.Get(p, mpris.Identity); err == nil && identity != "" {
		fmt.Printf(" (%s)", identity)
	}
	fmt.Println()

	playback, err := mpris.Get(p, mpris.PlaybackStatus)
	if err != nil {
		return fmt.Errorf("[status] playback state: %w", err)
	}
	fmt.Printf("%-10s: %s\n", "Status", playback)

	if mode, err := mpris.Get(p, mpris.LoopStatus); err == nil {
		shuffle := "off"
		if on, err := mpris.Get(p, mpris.Shuffle); err == nil && on {
			shuffle = "on"
		}
		fmt.Printf("%-10s: %-10s shuffle %s\n", "Loop", mode, shuffle)
	}
	if rate, err := mpris.Get(p, mpris.Rate); err == nil {
		if vol, err := mpris.Get(p, mpris.Volume); err == nil {
			fmt.Printf("%-10s: %-10.2f volume %d%%\n", "Rate", rate, int(vol*100+0.5))
		} else {
			fmt.Printf("%-10s: %.2f\n", "Rate", rate)
		}
	}

	md, mdErr := mpris.Get(p, mpris.TrackMetadata)
	if pos, err := mpris.Get(p, mpris.TrackPosition); err == nil {
		if mdErr == nil && md.Length > 0 {
			fmt.Printf("%-10s: %s/%s\n", "Position", formatDuration(pos), formatDuration(md.Length))
		} else {
			fmt.Printf("%-10s: %s\n", "Position", formatDuration(pos))
		}
	}
	if mdErr == nil && md.Title != "" {
		track := md.Title
		if len(md.Artists) > 0 {
			track += " by " + strings.Join(md.Artists, ", ")
		}
		fmt.Printf("%-10s: %s\n", "Track", track)
	}

	caps := []struct {
		label string
		field mpris.Field[bool]
	}{
		{"play", mpris.CanPlay},
		{"pause", mpris.CanPause},
		{"seek", mpris.CanSeek},
		{"next", mpris.CanGoNext},
		{"previous", mpris.CanGoPrevious},
		{"control", mpris.CanControl},
	}
	var granted []string
	for _, c := range caps {
		if ok, err := mpris.Get(p, c.field); err == nil && ok {
			granted = append(granted, c.label)
		}
	}
	if len(granted) > 0 {
		fmt.Printf("%-10s: %s\n", "Can", strings.Join(granted, " "))
	}
	return nil
}

var metadataCmd = &cobra.Command{
	Use:   "metadata [player]",
	Short: "Dump the current track's metadata",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlayer(args, runMetadata)
	},
}

// metadataKeys are the wire entries already covered by the typed fields
// printed above the raw dump.
var metadataKeys = map[string]bool{
	"mpris:trackid":     true,
	"mpris:length":      true,
	"mpris:artUrl":      true,
	"xesam:title":       true,
	"xesam:album":       true,
	"xesam:artist":      true,
	"xesam:albumArtist": true,
	"xesam:genre":       true,
	"xesam:url":         true,
	"xesam:trackNumber": true,
	"xesam:discNumber":  true,
	"xesam:asText":      true,
}

func runMetadata(p *mpris.Player, log *logger.Logger) error {
	md, err := mpris.Get(p, mpris.TrackMetadata)
	if err != nil {
		return fmt.Errorf("[metadata] %w", err)
	}

	width := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		width = w
	}
	if width < 20 {
		width = 20
	}

	printRow := func(label, value string) {
		if value == "" {
			return
		}
		wrapped := wordwrap.String(value, width-14)
		lines := strings.Split(wrapped, "\n")
		fmt.Printf("%-12s: %s\n", label, lines[0])
		for _, l := range lines[1:] {
			fmt.Printf("%-12s  %s\n", "", l)
		}
	}

	printRow("Track ID", string(md.TrackID))
	printRow("Title", md.Title)
	printRow("Album", md.Album)
	printRow("Artists", strings.Join(md.Artists, ", "))
	printRow("Album artist", strings.Join(md.AlbumArtists, ", "))
	printRow("Genres", strings.Join(md.Genres, ", "))
	if md.Length > 0 {
		printRow("Length", formatDuration(md.Length))
	}
	if md.TrackNumber > 0 {
		printRow("Track no.", fmt.Sprintf("%d", md.TrackNumber))
	}
	if md.DiscNumber > 0 {
		printRow("Disc no.", fmt.Sprintf("%d", md.DiscNumber))
	}
	printRow("URL", md.URL)
	printRow("Art URL", md.ArtURL)
	printRow("Lyrics", md.Lyrics)

	// everything the typed struct doesn't cover, verbatim
	var extra []string
	for k := range md.Raw {
		if !metadataKeys[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	for _, k := range extra {
		printRow(k, fmt.Sprintf("%v", md.Raw[k].Value()))
	}
	return nil
}

var followFlag bool

var positionCmd = &cobra.Command{
	Use:   "position [player]",
	Short: "Print the playback position",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withPlayer(args, runPosition)
	},
}

func runPosition(p *mpris.Player, log *logger.Logger) error {
	if !followFlag {
		pos, err := mpris.Get(p, mpris.TrackPosition)
		if err != nil {
			return fmt.Errorf("[position] %w", err)
		}
		fmt.Println(formatDuration(pos))
		return nil
	}

	ps, err := p.SubscribePosition()
	if err != nil {
		return fmt.Errorf("[position] %w", err)
	}
	defer ps.Close()

	// Ctrl-C ends the follow loop
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		ps.Close()
	}()

	for {
		pos, ok := ps.Next()
		if !ok {
			return nil
		}
		fmt.Println(formatDuration(pos))
	}
}

func init() {
	positionCmd.Flags().BoolVarP(&followFlag, "follow", "f", false, "keep printing the estimated position until interrupted")
	rootCmd.AddCommand(statusCmd, metadataCmd, positionCmd)
}
