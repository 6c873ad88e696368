// Copyright 2025 The mpris-client-async Authors
// SPDX-License-Identifier: GPL-3.0-only

package mpris

import "github.com/godbus/dbus/v5"

// Field describes one remote property: where it lives and how its wire
// value maps to T. Descriptors are static; all of them live in fields.go.
type Field[T any] interface {
	Name() string
	Interface() Interface
	Parse(v dbus.Variant) (T, error)
}

// WritableField is a Field the player accepts writes for unconditionally.
type WritableField[T any] interface {
	Field[T]
	Serialize(value T) interface{}
	writable()
}

// ControlField is a Field the player accepts writes for only while
// CanControl is true. It deliberately does not satisfy WritableField, so
// writes have to go through SetControlled. Checking CanControl first is the
// caller's job; players reject the write themselves when control is off.
type ControlField[T any] interface {
	Field[T]
	Serialize(value T) interface{}
	controlled()
}

// Event describes one remote signal and how its body maps to T.
type Event[T any] interface {
	Name() string
	Interface() Interface
	Parse(body []interface{}) (T, error)
}
