// Copyright 2025 The mpris-client-async Authors
// SPDX-License-Identifier: GPL-3.0-only

package mpris

import (
	"time"

	"github.com/godbus/dbus/v5"
)

type field[T any] struct {
	name  string
	iface Interface
	parse func(dbus.Variant) (T, error)
}

func (f field[T]) Name() string                    { return f.name }
func (f field[T]) Interface() Interface            { return f.iface }
func (f field[T]) Parse(v dbus.Variant) (T, error) { return f.parse(v) }

type writableField[T any] struct {
	field[T]
	serialize func(T) interface{}
}

func (f writableField[T]) Serialize(value T) interface{} { return f.serialize(value) }
func (writableField[T]) writable()                       {}

type controlField[T any] struct {
	field[T]
	serialize func(T) interface{}
}

func (f controlField[T]) Serialize(value T) interface{} { return f.serialize(value) }
func (controlField[T]) controlled()                     {}

func parsePrim[T any](name, wire string) func(dbus.Variant) (T, error) {
	return func(v dbus.Variant) (T, error) {
		t, ok := v.Value().(T)
		if !ok {
			var zero T
			return zero, &ParseError{What: name, Expected: wire, Got: v.Value()}
		}
		return t, nil
	}
}

func parseMicros(name string) func(dbus.Variant) (time.Duration, error) {
	return func(v dbus.Variant) (time.Duration, error) {
		us, ok := v.Value().(int64)
		if !ok {
			return 0, &ParseError{What: name, Expected: "int64 microseconds", Got: v.Value()}
		}
		return time.Duration(us) * time.Microsecond, nil
	}
}

func parsePlaybackString(name string) func(dbus.Variant) (Playback, error) {
	return func(v dbus.Variant) (Playback, error) {
		s, ok := v.Value().(string)
		if !ok {
			return PlaybackStopped, &ParseError{What: name, Expected: "string", Got: v.Value()}
		}
		return ParsePlayback(s), nil
	}
}

func parseLoopString(name string) func(dbus.Variant) (Loop, error) {
	return func(v dbus.Variant) (Loop, error) {
		s, ok := v.Value().(string)
		if !ok {
			return LoopNone, &ParseError{What: name, Expected: "string", Got: v.Value()}
		}
		return ParseLoop(s), nil
	}
}

func parseMetadataMap(name string) func(dbus.Variant) (Metadata, error) {
	return func(v dbus.Variant) (Metadata, error) {
		m, ok := v.Value().(map[string]dbus.Variant)
		if !ok {
			return Metadata{}, &ParseError{What: name, Expected: "map[string]Variant", Got: v.Value()}
		}
		return parseMetadata(m), nil
	}
}

func rawValue[T any](value T) interface{} { return value }

func roField[T any](iface Interface, name, wire string) field[T] {
	return field[T]{name: name, iface: iface, parse: parsePrim[T](name, wire)}
}

// Fields of org.mpris.MediaPlayer2.
var (
	CanQuit             Field[bool]         = roField[bool](InterfaceRoot, "CanQuit", "bool")
	CanSetFullscreen    Field[bool]         = roField[bool](InterfaceRoot, "CanSetFullscreen", "bool")
	CanRaise            Field[bool]         = roField[bool](InterfaceRoot, "CanRaise", "bool")
	HasTrackList        Field[bool]         = roField[bool](InterfaceRoot, "HasTrackList", "bool")
	Identity            Field[string]       = roField[string](InterfaceRoot, "Identity", "string")
	DesktopEntry        Field[string]       = roField[string](InterfaceRoot, "DesktopEntry", "string")
	SupportedURISchemes Field[[]string]     = roField[[]string](InterfaceRoot, "SupportedUriSchemes", "[]string")
	SupportedMIMETypes  Field[[]string]     = roField[[]string](InterfaceRoot, "SupportedMimeTypes", "[]string")
	Fullscreen          WritableField[bool] = writableField[bool]{roField[bool](InterfaceRoot, "Fullscreen", "bool"), rawValue[bool]}
)

// Fields of org.mpris.MediaPlayer2.Player. LoopStatus, Rate, Shuffle and
// Volume honor writes only while CanControl holds, hence ControlField.
var (
	PlaybackStatus Field[Playback]      = field[Playback]{"PlaybackStatus", InterfacePlayer, parsePlaybackString("PlaybackStatus")}
	MinimumRate    Field[float64]       = roField[float64](InterfacePlayer, "MinimumRate", "float64")
	MaximumRate    Field[float64]       = roField[float64](InterfacePlayer, "MaximumRate", "float64")
	TrackPosition  Field[time.Duration] = field[time.Duration]{"Position", InterfacePlayer, parseMicros("Position")}
	TrackMetadata  Field[Metadata]      = field[Metadata]{"Metadata", InterfacePlayer, parseMetadataMap("Metadata")}
	CanGoNext      Field[bool]          = roField[bool](InterfacePlayer, "CanGoNext", "bool")
	CanGoPrevious  Field[bool]          = roField[bool](InterfacePlayer, "CanGoPrevious", "bool")
	CanPlay        Field[bool]          = roField[bool](InterfacePlayer, "CanPlay", "bool")
	CanPause       Field[bool]          = roField[bool](InterfacePlayer, "CanPause", "bool")
	CanSeek        Field[bool]          = roField[bool](InterfacePlayer, "CanSeek", "bool")
	CanControl     Field[bool]          = roField[bool](InterfacePlayer, "CanControl", "bool")

	LoopStatus ControlField[Loop]    = controlField[Loop]{field[Loop]{"LoopStatus", InterfacePlayer, parseLoopString("LoopStatus")}, serializeLoop}
	Rate       ControlField[float64] = controlField[float64]{roField[float64](InterfacePlayer, "Rate", "float64"), rawValue[float64]}
	Shuffle    ControlField[bool]    = controlField[bool]{roField[bool](InterfacePlayer, "Shuffle", "bool"), rawValue[bool]}
	Volume     ControlField[float64] = controlField[float64]{roField[float64](InterfacePlayer, "Volume", "float64"), rawValue[float64]}
)

func serializeLoop(l Loop) interface{} { return l.String() }
