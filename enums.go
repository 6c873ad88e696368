// Copyright 2025 The mpris-client-async Authors
// SPDX-License-Identifier: GPL-3.0-only

package mpris

import "strings"

// Playback is a player's coarse transport state.
type Playback int

const (
	PlaybackStopped Playback = iota
	PlaybackPaused
	PlaybackPlaying
)

// ParsePlayback maps a PlaybackStatus wire string to a Playback.
// Unknown or empty strings mean Stopped.
func ParsePlayback(s string) Playback {
	switch strings.ToLower(s) {
	case "playing":
		return PlaybackPlaying
	case "paused":
		return PlaybackPaused
	default:
		return PlaybackStopped
	}
}

func (p Playback) String() string {
	switch p {
	case PlaybackPlaying:
		return "Playing"
	case PlaybackPaused:
		return "Paused"
	default:
		return "Stopped"
	}
}

// Loop is a player's repeat mode.
type Loop int

const (
	LoopNone Loop = iota
	LoopTrack
	LoopPlaylist
)

func ParseLoop(s string) Loop {
	switch strings.ToLower(s) {
	case "track":
		return LoopTrack
	case "playlist":
		return LoopPlaylist
	default:
		return LoopNone
	}
}

func (l Loop) String() string {
	switch l {
	case LoopTrack:
		return "Track"
	case LoopPlaylist:
		return "Playlist"
	default:
		return "None"
	}
}

// Interface names one of the four endpoints a player may expose on the bus.
type Interface int

const (
	InterfaceRoot Interface = iota
	InterfacePlayer
	InterfaceTrackList
	InterfacePlaylists
)

func (i Interface) String() string {
	switch i {
	case InterfacePlayer:
		return "org.mpris.MediaPlayer2.Player"
	case InterfaceTrackList:
		return "org.mpris.MediaPlayer2.TrackList"
	case InterfacePlaylists:
		return "org.mpris.MediaPlayer2.Playlists"
	default:
		return "org.mpris.MediaPlayer2"
	}
}
