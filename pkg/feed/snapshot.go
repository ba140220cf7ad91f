package feed

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/geotools/geotools-go/pkg/bearing"
)

var (
	snapEncMode cbor.EncMode
	snapDecMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:        cbor.SortCanonical,
		IndefLength: cbor.IndefLengthForbidden,
		Time:        cbor.TimeRFC3339Nano,
	}
	snapEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("feed: cbor encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}
	snapDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("feed: cbor decoder mode: %v", err))
	}
}

// Snapshot is one published sensor state as sent on the wire.
type Snapshot struct {
	SensorID   string    `cbor:"1,keyasint"`
	Seq        uint64    `cbor:"2,keyasint"`
	Status     string    `cbor:"3,keyasint"`
	Permission string    `cbor:"4,keyasint"`
	Bearing    *float64  `cbor:"5,keyasint,omitempty"`
	Timestamp  time.Time `cbor:"6,keyasint"`
}

// NewSnapshot captures st for transmission.
func NewSnapshot(sensorID string, seq uint64, st bearing.State, ts time.Time) Snapshot {
	st = st.Clone()
	return Snapshot{
		SensorID:   sensorID,
		Seq:        seq,
		Status:     st.Status.String(),
		Permission: st.Permission.String(),
		Bearing:    st.Bearing,
		Timestamp:  ts,
	}
}

// State converts the snapshot back into a bearing.State.
func (s Snapshot) State() (bearing.State, error) {
	status, err := bearing.ParseStatus(s.Status)
	if err != nil {
		return bearing.State{}, err
	}
	perm, err := bearing.ParsePermission(s.Permission)
	if err != nil {
		return bearing.State{}, err
	}
	st := bearing.State{Status: status, Permission: perm}
	if s.Bearing != nil {
		v := *s.Bearing
		st.Bearing = &v
	}
	return st, nil
}

// String formats the snapshot for display.
func (s Snapshot) String() string {
	st, err := s.State()
	if err != nil {
		return fmt.Sprintf("#%d %s/%s (invalid: %v)", s.Seq, s.Status, s.Permission, err)
	}
	return fmt.Sprintf("#%d %s", s.Seq, st)
}

// EncodeSnapshot encodes s to CBOR.
func EncodeSnapshot(s Snapshot) ([]byte, error) {
	return snapEncMode.Marshal(s)
}

// DecodeSnapshot decodes a CBOR-encoded Snapshot.
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := snapDecMode.Unmarshal(data, &s); err != nil {
		return Snapshot{}, err
	}
	return s, nil
}
