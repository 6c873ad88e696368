// Copyright 2025 The mpris-client-async Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/godbus/dbus/v5"
	mpris "github.com/oil653/mpris-client-async"
	"github.com/oil653/mpris-client-async/logger"
	"github.com/rivo/tview"
	tviewcommand "github.com/spezifisch/tview-command"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	PageMain = "main"
	PageLog  = "log"

	logPageLines = 100
	seekStep     = 5 * time.Second
	volumeStep   = 0.05
)

type monitorUi struct {
	app   *tview.Application
	pages *tview.Pages

	startStopStatus *tview.TextView
	playerStatus    *tview.TextView
	metadataView    *tview.TextView
	logList         *tview.List
	menuBar         *tview.TextView

	player *mpris.Player
	logger *logger.Logger

	stream    *mpris.PositionStream
	metadata  *mpris.Feed[mpris.Metadata]
	playbacks *mpris.Feed[mpris.Playback]
	volumes   *mpris.Feed[float64]
	positions chan time.Duration

	// owned by the event loop goroutine once it starts
	length time.Duration
	volume float64
}

func initMonitorUi(player *mpris.Player, logger_ *logger.Logger) (ui *monitorUi) {
	ui = &monitorUi{
		player:    player,
		logger:    logger_,
		positions: make(chan time.Duration, 16),
	}

	ui.app = tview.NewApplication()
	ui.pages = tview.NewPages()

	// status text at the top
	ui.startStopStatus = tview.NewTextView().
		SetTextAlign(tview.AlignLeft).
		SetDynamicColors(true).
		SetText(statusText(mpris.PlaybackStopped))
	ui.playerStatus = tview.NewTextView().
		SetTextAlign(tview.AlignRight).
		SetDynamicColors(true).
		SetText(formatPlayerStatus(0, 0, 0))

	ui.metadataView = tview.NewTextView().
		SetTextAlign(tview.AlignLeft).
		SetDynamicColors(true).
		SetScrollable(true)
	ui.metadataView.SetBorder(true).
		SetTitle(" " + player.Name() + " ")

	ui.logList = tview.NewList().ShowSecondaryText(false)

	ui.menuBar = tview.NewTextView().
		SetTextAlign(tview.AlignLeft).
		SetDynamicColors(true).
		SetText("[::b]space[::-] play/pause  [::b]n[::-]ext  [::b]p[::-]rev  [::b]s[::-]top  [::b]←/→[::-] seek  [::b]+/-[::-] volume  [::b]L[::-]og  [::b]q[::-]uit")

	ui.pages.AddPage(PageMain, ui.metadataView, true, true)
	ui.pages.AddPage(PageLog, ui.logList, true, false)

	topBarFlex := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ui.startStopStatus, 0, 1, false).
		AddItem(ui.playerStatus, 22, 0, false)

	rootFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(topBarFlex, 1, 0, false).
		AddItem(ui.pages, 0, 1, true).
		AddItem(ui.menuBar, 1, 0, false)

	rootFlex.SetInputCapture(ui.handleInput)

	ui.app.SetRoot(rootFlex, true).
		EnableMouse(false)

	return ui
}

// initCommandHandler loads the optional keymap config for tview-command.
// Bindings stay at their defaults when no config is present.
func initCommandHandler(log *logger.Logger) {
	tviewcommand.SetLogHandler(func(msg string) {
		log.Print(msg)
	})

	configPath := viper.GetString("monitor.keymap")
	if configPath == "" {
		return
	}

	config, err := tviewcommand.LoadConfig(configPath)
	if err != nil {
		log.PrintError("Failed to load command-shortcut config", err)
	} else if config == nil {
		log.Print("Failed to load command-shortcut config")
	}
}

var monitorCmd = &cobra.Command{
	Use:   "monitor [player]",
	Short: "Watch a player full-screen, with live position and metadata",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		// log output goes to the monitor's log page, not to stderr
		log := logger.Init()

		conn, err := dbus.ConnectSessionBus()
		if err != nil {
			return fmt.Errorf("[monitor] session bus: %w", err)
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
		return runMonitor(player, log)
	},
}

func runMonitor(p *mpris.Player, log *logger.Logger) error {
	ui := initMonitorUi(p, log)
	initCommandHandler(log)

	var err error
	ui.metadata, err = mpris.SubscribeChange(p, mpris.TrackMetadata)
	if err != nil {
		return fmt.Errorf("[monitor] metadata feed: %w", err)
	}
	defer ui.metadata.Close()

	ui.playbacks, err = mpris.SubscribeChange(p, mpris.PlaybackStatus)
	if err != nil {
		return fmt.Errorf("[monitor] playback feed: %w", err)
	}
	defer ui.playbacks.Close()

	ui.volumes, err = mpris.SubscribeChange(p, mpris.Volume)
	if err != nil {
		return fmt.Errorf("[monitor] volume feed: %w", err)
	}
	defer ui.volumes.Close()

	ui.stream, err = p.SubscribePosition()
	if err != nil {
		return fmt.Errorf("[monitor] position stream: %w", err)
	}
	defer ui.stream.Close()

	// seed the panels before the loops take over
	if identity, err := mpris.Get(p, mpris.Identity); err == nil && identity != "" {
		ui.metadataView.SetTitle(" " + identity + " ")
	}
	if md, err := mpris.Get(p, mpris.TrackMetadata); err == nil {
		ui.length = md.Length
		ui.metadataView.SetText(formatMetadataPanel(md))
	}
	if pb, err := mpris.Get(p, mpris.PlaybackStatus); err == nil {
		ui.startStopStatus.SetText(statusText(pb))
	}
	if vol, err := mpris.Get(p, mpris.Volume); err == nil {
		ui.volume = vol
	}

	go ui.pullPositions()
	go ui.eventLoop()

	return ui.app.Run()
}

// pullPositions drives the estimator and forwards its emissions to the
// event loop.
func (ui *monitorUi) pullPositions() {
	for {
		pos, ok := ui.stream.Next()
		if !ok {
			return
		}
		ui.positions <- pos
	}
}

// eventLoop applies feed values, position emissions and log lines to the
// widgets. It is the only writer of ui.length and ui.volume.
func (ui *monitorUi) eventLoop() {
	for {
		select {
		case msg, ok := <-ui.logger.Prints:
			if !ok {
				return
			}
			ui.printLog(msg)
		case md, ok := <-ui.metadata.C():
			if !ok {
				ui.app.Stop()
				return
			}
			ui.length = md.Length
			text := formatMetadataPanel(md)
			ui.app.QueueUpdateDraw(func() {
				ui.metadataView.SetText(text)
			})
		case pb, ok := <-ui.playbacks.C():
			if !ok {
				ui.app.Stop()
				return
			}
			text := statusText(pb)
			ui.app.QueueUpdateDraw(func() {
				ui.startStopStatus.SetText(text)
			})
		case vol, ok := <-ui.volumes.C():
			if !ok {
				ui.app.Stop()
				return
			}
			ui.volume = vol
		case pos := <-ui.positions:
			text := formatPlayerStatus(ui.volume, pos, ui.length)
			ui.app.QueueUpdateDraw(func() {
				ui.playerStatus.SetText(text)
			})
		}
	}
}

func (ui *monitorUi) printLog(msg string) {
	line := "(" + time.Now().Local().Format("15:04:05") + ") " + msg
	ui.app.QueueUpdateDraw(func() {
		ui.logList.InsertItem(0, line, "", 0, nil)
		if ui.logList.GetItemCount() > logPageLines {
			ui.logList.RemoveItem(-1)
		}
	})
}

func (ui *monitorUi) handleInput(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyLeft:
		if err := ui.player.Seek(seekStep, true); err != nil {
			ui.logger.PrintError("seek", err)
		}
		return nil
	case tcell.KeyRight:
		if err := ui.player.Seek(seekStep, false); err != nil {
			ui.logger.PrintError("seek", err)
		}
		return nil
	case tcell.KeyEscape, tcell.KeyCtrlC:
		ui.app.Stop()
		return nil
	}

	switch event.Rune() {
	case ' ':
		if err := ui.player.PlayPause(); err != nil {
			ui.logger.PrintError("play-pause", err)
		}
	case 'n':
		if err := ui.player.Next(); err != nil {
			ui.logger.PrintError("next", err)
		}
	case 'p':
		if err := ui.player.Previous(); err != nil {
			ui.logger.PrintError("previous", err)
		}
	case 's':
		if err := ui.player.Stop(); err != nil {
			ui.logger.PrintError("stop", err)
		}
	case '+', '=':
		ui.changeVolume(volumeStep)
	case '-':
		ui.changeVolume(-volumeStep)
	case 'L':
		if name, _ := ui.pages.GetFrontPage(); name == PageLog {
			ui.pages.SwitchToPage(PageMain)
		} else {
			ui.pages.SwitchToPage(PageLog)
		}
	case 'q':
		ui.app.Stop()
	default:
		return event
	}
	return nil
}

// changeVolume reads the current volume fresh so repeated keypresses stack
// even before the change notification comes back.
func (ui *monitorUi) changeVolume(delta float64) {
	vol, err := mpris.Get(ui.player, mpris.Volume)
	if err != nil {
		ui.logger.PrintError("volume", err)
		return
	}
	vol += delta
	if vol < 0 {
		vol = 0
	}
	if vol > 1 {
		vol = 1
	}
	if err := mpris.SetControlled(ui.player, mpris.Volume, vol); err != nil {
		ui.logger.PrintError("volume", err)
	}
}

func statusText(pb mpris.Playback) string {
	switch pb {
	case mpris.PlaybackPlaying:
		return "[green::b]Playing[::-]"
	case mpris.PlaybackPaused:
		return "[yellow::b]Paused[::-]"
	default:
		return "[red::b]Stopped[::-]"
	}
}

func formatMetadataPanel(md mpris.Metadata) string {
	var b strings.Builder
	row := func(label, value string) {
		if value == "" {
			return
		}
		fmt.Fprintf(&b, "[yellow::b]%-12s[-:-:-] %s\n", label, tview.Escape(value))
	}

	row("Title", md.Title)
	row("Artists", strings.Join(md.Artists, ", "))
	row("Album", md.Album)
	row("Genres", strings.Join(md.Genres, ", "))
	if md.Length > 0 {
		row("Length", formatDuration(md.Length))
	}
	if md.TrackNumber > 0 {
		row("Track", fmt.Sprintf("%d", md.TrackNumber))
	}
	row("URL", md.URL)
	return b.String()
}

func init() {
	rootCmd.AddCommand(monitorCmd)
}
