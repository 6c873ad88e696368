// Copyright 2025 The mpris-client-async Authors
// SPDX-License-Identifier: GPL-3.0-only

package mpris

import (
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/oil653/mpris-client-async/logger"
)

const (
	// every MPRIS player serves its interfaces on this one path
	objectPath = dbus.ObjectPath("/org/mpris/MediaPlayer2")
	propsIface = "org.freedesktop.DBus.Properties"
)

// Player is a handle to one remote player on the bus. The player's four
// interfaces are probed once at construction; the recorded presence set
// never changes afterwards, and operations against an absent endpoint fail
// fast with ErrInterfaceUnavailable without touching the wire.
//
// A Player carries no mutable state and is safe for concurrent use.
type Player struct {
	conn   *dbus.Conn
	name   string
	owner  string
	obj    dbus.BusObject
	ifaces map[Interface]bool
	logger logger.LoggerInterface
}

// NewPlayer probes name on conn and returns a handle to it. It fails only
// when nobody owns the name; a player exposing any subset of the four
// interfaces still gets a handle.
func NewPlayer(conn *dbus.Conn, name string, logger_ logger.LoggerInterface) (p *Player, err error) {
	var owner string
	err = conn.BusObject().Call("org.freedesktop.DBus.GetNameOwner", 0, name).Store(&owner)
	if err != nil {
		err = &TransportError{Op: "GetNameOwner " + name, Err: err}
		return
	}

	p = &Player{
		conn:   conn,
		name:   name,
		owner:  owner,
		obj:    conn.Object(name, objectPath),
		ifaces: make(map[Interface]bool, 4),
		logger: logger_,
	}

	for _, iface := range []Interface{InterfaceRoot, InterfacePlayer, InterfaceTrackList, InterfacePlaylists} {
		p.ifaces[iface] = p.probe(iface)
	}
	return
}

// probe asks the Properties endpoint for the interface's property set. An
// error reply means the player does not serve that interface.
func (p *Player) probe(iface Interface) bool {
	var all map[string]dbus.Variant
	err := p.obj.Call(propsIface+".GetAll", 0, iface.String()).Store(&all)
	return err == nil
}

// Name returns the bus name the handle was created with.
func (p *Player) Name() string { return p.name }

// HasInterface reports whether the player served iface at construction.
func (p *Player) HasInterface(iface Interface) bool { return p.ifaces[iface] }

// Get reads one property and parses it to its descriptor's type.
func Get[T any](p *Player, f Field[T]) (T, error) {
	var zero T
	if !p.HasInterface(f.Interface()) {
		return zero, ErrInterfaceUnavailable
	}
	v, err := p.obj.GetProperty(f.Interface().String() + "." + f.Name())
	if err != nil {
		return zero, &TransportError{Op: "Get " + f.Name(), Err: err}
	}
	return f.Parse(v)
}

// Set writes one property. A rejection by the player comes back as
// WriteRejectedError, a bus failure as TransportError.
func Set[T any](p *Player, f WritableField[T], value T) error {
	if !p.HasInterface(f.Interface()) {
		return ErrInterfaceUnavailable
	}
	if err := p.obj.SetProperty(f.Interface().String()+"."+f.Name(), dbus.MakeVariant(f.Serialize(value))); err != nil {
		return writeError(f.Name(), err)
	}
	return nil
}

// SetControlled writes a field whose writes the player honors only while
// CanControl holds. Callers check CanControl themselves; a player with
// control off rejects the write and that comes back as WriteRejectedError.
func SetControlled[T any](p *Player, f ControlField[T], value T) error {
	if !p.HasInterface(f.Interface()) {
		return ErrInterfaceUnavailable
	}
	if err := p.obj.SetProperty(f.Interface().String()+"."+f.Name(), dbus.MakeVariant(f.Serialize(value))); err != nil {
		return writeError(f.Name(), err)
	}
	return nil
}

// Call invokes a method on one of the player's interfaces. A nil return
// confirms the player accepted the call, not that it had any effect.
func (p *Player) Call(iface Interface, method string, args ...interface{}) error {
	if !p.HasInterface(iface) {
		return ErrInterfaceUnavailable
	}
	if call := p.obj.Call(iface.String()+"."+method, 0, args...); call.Err != nil {
		return &TransportError{Op: method, Err: call.Err}
	}
	return nil
}

func (p *Player) Next() error      { return p.Call(InterfacePlayer, "Next") }
func (p *Player) Previous() error  { return p.Call(InterfacePlayer, "Previous") }
func (p *Player) Play() error      { return p.Call(InterfacePlayer, "Play") }
func (p *Player) Pause() error     { return p.Call(InterfacePlayer, "Pause") }
func (p *Player) PlayPause() error { return p.Call(InterfacePlayer, "PlayPause") }
func (p *Player) Stop() error      { return p.Call(InterfacePlayer, "Stop") }

// Seek moves the playback head by offset, towards the start when backwards
// is set. The wire argument is signed microseconds.
func (p *Player) Seek(offset time.Duration, backwards bool) error {
	us := offset.Microseconds()
	if backwards {
		us = -us
	}
	return p.Call(InterfacePlayer, "Seek", us)
}

// SetTrackPosition jumps to pos within the given track. Players ignore the
// call when trackID no longer names the current track.
func (p *Player) SetTrackPosition(trackID dbus.ObjectPath, pos time.Duration) error {
	return p.Call(InterfacePlayer, "SetPosition", trackID, pos.Microseconds())
}

func (p *Player) OpenURI(uri string) error { return p.Call(InterfacePlayer, "OpenUri", uri) }

func (p *Player) Raise() error { return p.Call(InterfaceRoot, "Raise") }
func (p *Player) Quit() error  { return p.Call(InterfaceRoot, "Quit") }
