package feed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geotools/geotools-go/pkg/bearing"
)

func TestSnapshotCarriesState(t *testing.T) {
	deg := 270.0
	st := bearing.State{Status: bearing.StatusReady, Permission: bearing.PermissionGranted, Bearing: &deg}
	ts := time.Date(2026, 3, 1, 12, 0, 0, 500, time.UTC)

	snap := NewSnapshot("s-1", 7, st, ts)
	deg = 10 // the snapshot owns its bearing

	data, err := EncodeSnapshot(snap)
	require.NoError(t, err)

	got, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, "s-1", got.SensorID)
	assert.Equal(t, uint64(7), got.Seq)
	assert.Equal(t, "READY", got.Status)
	assert.Equal(t, "GRANTED", got.Permission)
	assert.True(t, ts.Equal(got.Timestamp))

	back, err := got.State()
	require.NoError(t, err)
	assert.True(t, back.Equal(bearing.State{Status: bearing.StatusReady, Permission: bearing.PermissionGranted, Bearing: ptr(270)}))
	assert.Equal(t, "#7 READY/GRANTED bearing=270.0", got.String())
}

func TestSnapshotWithoutBearingOmitsField(t *testing.T) {
	snap := NewSnapshot("s-1", 1, bearing.State{}, time.Unix(0, 0).UTC())
	data, err := EncodeSnapshot(snap)
	require.NoError(t, err)

	got, err := DecodeSnapshot(data)
	require.NoError(t, err)
	assert.Nil(t, got.Bearing)

	st, err := got.State()
	require.NoError(t, err)
	assert.Equal(t, bearing.StatusInitializing, st.Status)
	assert.False(t, st.HasBearing())
}

func TestSnapshotStateRejectsUnknownNames(t *testing.T) {
	_, err := Snapshot{Status: "SPINNING", Permission: "GRANTED"}.State()
	assert.ErrorIs(t, err, bearing.ErrUnknownName)

	_, err = Snapshot{Status: "READY", Permission: "maybe"}.State()
	assert.ErrorIs(t, err, bearing.ErrUnknownName)
}

func TestDecodeSnapshotGarbage(t *testing.T) {
	_, err := DecodeSnapshot([]byte{0xff, 0x00})
	assert.Error(t, err)
}

func ptr(v float64) *float64 { return &v }
