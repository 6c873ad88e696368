// Copyright 2025 The mpris-client-async Authors
// SPDX-License-Identifier: GPL-3.0-only

package mpris

import (
	"errors"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	propsChangedName = propsIface + ".PropertiesChanged"

	// the bus connection drops signals when a registered channel is full,
	// so the raw channel gets a generous buffer
	signalChanBuffer = 128
	feedChanBuffer   = 16
)

// Feed is a typed stream of values for one subscribed field or event.
// Values arrive on C until Close is called or the bus connection goes away,
// then C is closed. Subscriptions are independent: every Feed has its own
// match rule and its own signal channel, so two feeds for the same
// descriptor observe the same sequence.
type Feed[T any] struct {
	out    chan T
	raw    chan *dbus.Signal
	quit   chan struct{}
	remove func()
	once   sync.Once
}

func (f *Feed[T]) C() <-chan T { return f.out }

// Close tears down the match rule and ends the feed. Safe to call twice.
func (f *Feed[T]) Close() {
	f.once.Do(func() {
		if f.remove != nil {
			f.remove()
		}
		close(f.quit)
	})
}

// pump moves raw signals through translate until the raw channel closes
// (connection gone) or quit fires. Signals translate rejects are dropped.
func (f *Feed[T]) pump(translate func(*dbus.Signal) (T, bool)) {
	defer close(f.out)
	for {
		select {
		case sig, ok := <-f.raw:
			if !ok {
				return
			}
			val, ok := translate(sig)
			if !ok {
				continue
			}
			select {
			case f.out <- val:
			case <-f.quit:
				return
			}
		case <-f.quit:
			return
		}
	}
}

func newFeed[T any](p *Player, opts []dbus.MatchOption, translate func(*dbus.Signal) (T, bool)) (*Feed[T], error) {
	if err := p.conn.AddMatchSignal(opts...); err != nil {
		if errors.Is(err, dbus.ErrClosed) {
			return nil, ErrStreamClosed
		}
		return nil, &TransportError{Op: "AddMatchSignal", Err: err}
	}
	raw := make(chan *dbus.Signal, signalChanBuffer)
	p.conn.Signal(raw)

	f := &Feed[T]{
		out:  make(chan T, feedChanBuffer),
		raw:  raw,
		quit: make(chan struct{}),
		remove: func() {
			if err := p.conn.RemoveMatchSignal(opts...); err != nil {
				p.logger.PrintError("RemoveMatchSignal", err)
			}
			p.conn.RemoveSignal(raw)
		},
	}
	go f.pump(translate)
	return f, nil
}

// SubscribeChange delivers every remote change of one property, parsed to
// the descriptor's type. A notification that fails to parse is logged and
// skipped; the feed keeps going. When the player only invalidates the
// property, the current value is fetched over the bus instead.
func SubscribeChange[T any](p *Player, f Field[T]) (*Feed[T], error) {
	if !p.HasInterface(f.Interface()) {
		return nil, ErrInterfaceUnavailable
	}
	opts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(objectPath),
		dbus.WithMatchInterface(propsIface),
		dbus.WithMatchMember("PropertiesChanged"),
	}
	if p.owner != "" {
		opts = append(opts, dbus.WithMatchSender(p.owner))
	}
	return newFeed(p, opts, changeFilter(p, f))
}

// SubscribeEvent delivers every emission of one signal, parsed to the
// descriptor's type. Same skip-and-log policy as SubscribeChange.
func SubscribeEvent[T any](p *Player, e Event[T]) (*Feed[T], error) {
	if !p.HasInterface(e.Interface()) {
		return nil, ErrInterfaceUnavailable
	}
	opts := []dbus.MatchOption{
		dbus.WithMatchObjectPath(objectPath),
		dbus.WithMatchInterface(e.Interface().String()),
		dbus.WithMatchMember(e.Name()),
	}
	if p.owner != "" {
		opts = append(opts, dbus.WithMatchSender(p.owner))
	}
	return newFeed(p, opts, eventFilter(p, e))
}

func changeFilter[T any](p *Player, f Field[T]) func(*dbus.Signal) (T, bool) {
	iface := f.Interface().String()
	return func(sig *dbus.Signal) (val T, ok bool) {
		if !fromPlayer(p, sig) || sig.Name != propsChangedName {
			return
		}
		sigIface, changed, invalidated, err := splitPropsChanged(sig.Body)
		if err != nil {
			p.logger.PrintError("PropertiesChanged", err)
			return
		}
		if sigIface != iface {
			return
		}
		if v, present := changed[f.Name()]; present {
			parsed, err := f.Parse(v)
			if err != nil {
				p.logger.PrintError("parse "+f.Name(), err)
				return
			}
			return parsed, true
		}
		for _, name := range invalidated {
			if name != f.Name() {
				continue
			}
			fetched, err := Get(p, f)
			if err != nil {
				p.logger.PrintError("refetch "+f.Name(), err)
				return
			}
			return fetched, true
		}
		return
	}
}

func eventFilter[T any](p *Player, e Event[T]) func(*dbus.Signal) (T, bool) {
	name := e.Interface().String() + "." + e.Name()
	return func(sig *dbus.Signal) (val T, ok bool) {
		if !fromPlayer(p, sig) || sig.Name != name {
			return
		}
		parsed, err := e.Parse(sig.Body)
		if err != nil {
			p.logger.PrintError("parse "+e.Name(), err)
			return
		}
		return parsed, true
	}
}

// fromPlayer keeps only signals from our player's path and, when the owner
// could be resolved, from its unique name.
func fromPlayer(p *Player, sig *dbus.Signal) bool {
	if sig.Path != objectPath {
		return false
	}
	return p.owner == "" || sig.Sender == p.owner
}

func splitPropsChanged(body []interface{}) (string, map[string]dbus.Variant, []string, error) {
	if len(body) != 3 {
		return "", nil, nil, &ParseError{What: "PropertiesChanged", Expected: "3 body elements", Got: body}
	}
	iface, ok := body[0].(string)
	if !ok {
		return "", nil, nil, &ParseError{What: "PropertiesChanged", Expected: "interface string", Got: body[0]}
	}
	changed, ok := body[1].(map[string]dbus.Variant)
	if !ok {
		return "", nil, nil, &ParseError{What: "PropertiesChanged", Expected: "changed map", Got: body[1]}
	}
	invalidated, ok := body[2].([]string)
	if !ok {
		return "", nil, nil, &ParseError{What: "PropertiesChanged", Expected: "invalidated list", Got: body[2]}
	}
	return iface, changed, invalidated, nil
}
