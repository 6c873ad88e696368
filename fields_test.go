package mpris

import (
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip[T comparable](t *testing.T, serialize func(T) interface{}, parse func(dbus.Variant) (T, error), value T) {
	t.Helper()
	got, err := parse(dbus.MakeVariant(serialize(value)))
	assert.NoError(t, err, "serialized value should parse back")
	assert.Equal(t, value, got, "value should survive the round trip")
}

func TestWritableRoundTrips(t *testing.T) {
	t.Run("Fullscreen", func(t *testing.T) {
		roundTrip(t, Fullscreen.Serialize, Fullscreen.Parse, true)
		roundTrip(t, Fullscreen.Serialize, Fullscreen.Parse, false)
	})
	t.Run("LoopStatus", func(t *testing.T) {
		roundTrip(t, LoopStatus.Serialize, LoopStatus.Parse, LoopNone)
		roundTrip(t, LoopStatus.Serialize, LoopStatus.Parse, LoopTrack)
		roundTrip(t, LoopStatus.Serialize, LoopStatus.Parse, LoopPlaylist)
	})
	t.Run("Rate", func(t *testing.T) {
		roundTrip(t, Rate.Serialize, Rate.Parse, 1.0)
		roundTrip(t, Rate.Serialize, Rate.Parse, 1.5)
		roundTrip(t, Rate.Serialize, Rate.Parse, -2.0)
	})
	t.Run("Shuffle", func(t *testing.T) {
		roundTrip(t, Shuffle.Serialize, Shuffle.Parse, true)
	})
	t.Run("Volume", func(t *testing.T) {
		roundTrip(t, Volume.Serialize, Volume.Parse, 0.0)
		roundTrip(t, Volume.Serialize, Volume.Parse, 0.65)
	})
}

func TestLoopStatusSerializesWireSpelling(t *testing.T) {
	assert.Equal(t, "Track", LoopStatus.Serialize(LoopTrack))
	assert.Equal(t, "Playlist", LoopStatus.Serialize(LoopPlaylist))
	assert.Equal(t, "None", LoopStatus.Serialize(LoopNone))
}

func TestPlaybackStatusParse(t *testing.T) {
	got, err := PlaybackStatus.Parse(dbus.MakeVariant("Playing"))
	require.NoError(t, err)
	assert.Equal(t, PlaybackPlaying, got)

	got, err = PlaybackStatus.Parse(dbus.MakeVariant("definitely not a status"))
	require.NoError(t, err, "unknown status strings are lenient")
	assert.Equal(t, PlaybackStopped, got)
}

func TestTrackPositionParsesMicroseconds(t *testing.T) {
	got, err := TrackPosition.Parse(dbus.MakeVariant(int64(5000000)))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, got)

	got, err = TrackPosition.Parse(dbus.MakeVariant(int64(-250000)))
	require.NoError(t, err)
	assert.Equal(t, -250*time.Millisecond, got)
}

func TestParseErrorCarriesFieldName(t *testing.T) {
	testCases := []struct {
		name  string
		parse func() error
	}{
		{"PlaybackStatus", func() error { _, err := PlaybackStatus.Parse(dbus.MakeVariant(int32(7))); return err }},
		{"Position", func() error { _, err := TrackPosition.Parse(dbus.MakeVariant("10")); return err }},
		{"Metadata", func() error { _, err := TrackMetadata.Parse(dbus.MakeVariant("nope")); return err }},
		{"LoopStatus", func() error { _, err := LoopStatus.Parse(dbus.MakeVariant(true)); return err }},
		{"CanQuit", func() error { _, err := CanQuit.Parse(dbus.MakeVariant("yes")); return err }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.parse()
			var pe *ParseError
			require.ErrorAs(t, err, &pe, "wrong wire types should come back as ParseError")
			assert.Equal(t, tc.name, pe.What)
			assert.NotEmpty(t, pe.Expected)
		})
	}
}

func TestCatalogNames(t *testing.T) {
	// wire names that differ from the Go-side identifiers
	assert.Equal(t, "Position", TrackPosition.Name())
	assert.Equal(t, "Metadata", TrackMetadata.Name())
	assert.Equal(t, "SupportedUriSchemes", SupportedURISchemes.Name())
	assert.Equal(t, "SupportedMimeTypes", SupportedMIMETypes.Name())

	assert.Equal(t, InterfaceRoot, Fullscreen.Interface())
	assert.Equal(t, InterfaceRoot, Identity.Interface())
	assert.Equal(t, InterfacePlayer, PlaybackStatus.Interface())
	assert.Equal(t, InterfacePlayer, CanControl.Interface())
}
