// Copyright 2025 The mpris-client-async Authors
// SPDX-License-Identifier: GPL-3.0-only

package mpris

import (
	"time"

	"github.com/godbus/dbus/v5"
)

// Metadata is the decoded mpris:/xesam: track map. Players omit most keys
// and some send sloppy types, so decoding is lenient: anything missing or
// mis-typed stays at its zero value. Raw keeps the undecoded map for
// callers that want nonstandard keys.
type Metadata struct {
	TrackID        dbus.ObjectPath
	Length         time.Duration
	ArtURL         string
	Title          string
	Album          string
	Artists        []string
	AlbumArtists   []string
	Composers      []string
	Lyricists      []string
	Genres         []string
	Comments       []string
	Lyrics         string
	BPM            int
	AutoRating     float64
	UserRating     float64
	DiscNumber     int
	TrackNumber    int
	URL            string
	ContentCreated string
	FirstUsed      string
	LastUsed       string
	UseCount       int

	Raw map[string]dbus.Variant
}

func parseMetadata(m map[string]dbus.Variant) Metadata {
	md := Metadata{Raw: m}

	if v, ok := m["mpris:trackid"]; ok {
		switch t := v.Value().(type) {
		case dbus.ObjectPath:
			md.TrackID = t
		case string:
			md.TrackID = dbus.ObjectPath(t)
		}
	}
	if us, ok := metaInt64(m, "mpris:length"); ok {
		md.Length = time.Duration(us) * time.Microsecond
	}
	md.ArtURL = metaString(m, "mpris:artUrl")
	md.Title = metaString(m, "xesam:title")
	md.Album = metaString(m, "xesam:album")
	md.Artists = metaStrings(m, "xesam:artist")
	md.AlbumArtists = metaStrings(m, "xesam:albumArtist")
	md.Composers = metaStrings(m, "xesam:composer")
	md.Lyricists = metaStrings(m, "xesam:lyricist")
	md.Genres = metaStrings(m, "xesam:genre")
	md.Comments = metaStrings(m, "xesam:comment")
	md.Lyrics = metaString(m, "xesam:asText")
	md.BPM = metaInt(m, "xesam:audioBPM")
	md.AutoRating = metaFloat(m, "xesam:autoRating")
	md.UserRating = metaFloat(m, "xesam:userRating")
	md.DiscNumber = metaInt(m, "xesam:discNumber")
	md.TrackNumber = metaInt(m, "xesam:trackNumber")
	md.URL = metaString(m, "xesam:url")
	md.ContentCreated = metaString(m, "xesam:contentCreated")
	md.FirstUsed = metaString(m, "xesam:firstUsed")
	md.LastUsed = metaString(m, "xesam:lastUsed")
	md.UseCount = metaInt(m, "xesam:useCount")
	return md
}

func metaString(m map[string]dbus.Variant, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.Value().(string); ok {
			return s
		}
	}
	return ""
}

// metaStrings also accepts a bare string where a list belongs, which some
// players send for single-artist tracks.
func metaStrings(m map[string]dbus.Variant, key string) []string {
	if v, ok := m[key]; ok {
		switch t := v.Value().(type) {
		case []string:
			return t
		case string:
			return []string{t}
		}
	}
	return nil
}

func metaInt64(m map[string]dbus.Variant, key string) (int64, bool) {
	if v, ok := m[key]; ok {
		switch t := v.Value().(type) {
		case int64:
			return t, true
		case uint64:
			return int64(t), true
		case int32:
			return int64(t), true
		case uint32:
			return int64(t), true
		}
	}
	return 0, false
}

func metaInt(m map[string]dbus.Variant, key string) int {
	if n, ok := metaInt64(m, key); ok {
		return int(n)
	}
	return 0
}

func metaFloat(m map[string]dbus.Variant, key string) float64 {
	if v, ok := m[key]; ok {
		if f, ok := v.Value().(float64); ok {
			return f
		}
	}
	return 0
}
