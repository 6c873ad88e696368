// Copyright 2025 The mpris-client-async Authors
// SPDX-License-Identifier: GPL-3.0-only

package main

import (
	"fmt"
	"time"
)

func durationToMinAndSec(d time.Duration) (int, int) {
	seconds := int(d.Round(time.Second) / time.Second)
	return seconds / 60, seconds % 60
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	minutes, seconds := durationToMinAndSec(d)
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

func formatPlayerStatus(volume float64, position, duration time.Duration) string {
	if position < 0 {
		position = 0
	}
	if duration < 0 {
		duration = 0
	}
	return fmt.Sprintf("[::b][%d%%][%s/%s]", int(volume*100+0.5), formatDuration(position), formatDuration(duration))
}
