// Copyright 2025 The mpris-client-async Authors
// SPDX-License-Identifier: GPL-3.0-only

package mpris

import (
	"errors"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// ErrInterfaceUnavailable is returned when an operation targets an endpoint
// the player did not expose when the handle was created.
var ErrInterfaceUnavailable = errors.New("interface unavailable on this player")

// ErrStreamClosed is returned when subscribing on a handle whose bus
// connection has already been closed.
var ErrStreamClosed = errors.New("bus connection closed")

// TransportError wraps a bus-level failure: the request never completed.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("[%s] transport: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// WriteRejectedError reports that the player received a property write and
// refused it. Distinct from TransportError: the request arrived.
type WriteRejectedError struct {
	Field  string
	DBName string
	Reason string
}

func (e *WriteRejectedError) Error() string {
	return fmt.Sprintf("[Set %s] rejected by player: %s (%s)", e.Field, e.Reason, e.DBName)
}

// ParseError reports a value that arrived with the wrong wire type.
type ParseError struct {
	What     string
	Expected string
	Got      interface{}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("[%s] expected %s, got %T (%v)", e.What, e.Expected, e.Got, e.Got)
}

// writeError splits a failed property write into the rejected and transport
// cases. An error reply from the player arrives as dbus.Error; anything else
// means the write never got through.
func writeError(field string, err error) error {
	var dbErr dbus.Error
	if errors.As(err, &dbErr) {
		reason := ""
		if len(dbErr.Body) > 0 {
			if s, ok := dbErr.Body[0].(string); ok {
				reason = s
			}
		}
		return &WriteRejectedError{Field: field, DBName: dbErr.Name, Reason: reason}
	}
	return &TransportError{Op: "Set " + field, Err: err}
}
