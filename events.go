// Copyright 2025 The mpris-client-async Authors
// SPDX-License-Identifier: GPL-3.0-only

package mpris

import "time"

type event[T any] struct {
	name  string
	iface Interface
	parse func(body []interface{}) (T, error)
}

func (e event[T]) Name() string                        { return e.name }
func (e event[T]) Interface() Interface                { return e.iface }
func (e event[T]) Parse(body []interface{}) (T, error) { return e.parse(body) }

// Seeked fires when the playback head jumps. The body carries the new
// position in microseconds.
var Seeked Event[time.Duration] = event[time.Duration]{"Seeked", InterfacePlayer, parseSeekedBody}

func parseSeekedBody(body []interface{}) (time.Duration, error) {
	if len(body) != 1 {
		return 0, &ParseError{What: "Seeked", Expected: "1 body element", Got: body}
	}
	us, ok := body[0].(int64)
	if !ok {
		return 0, &ParseError{What: "Seeked", Expected: "int64 microseconds", Got: body[0]}
	}
	return time.Duration(us) * time.Microsecond, nil
}
