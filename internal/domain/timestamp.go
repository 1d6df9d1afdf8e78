package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// TimestampKind tells how an upstream provider expressed a time.
type TimestampKind int

const (
	TimestampNone TimestampKind = iota
	TimestampEpoch
	TimestampISO
)

// Timestamp keeps a schedule time in its upstream representation: Unix epoch
// seconds (OpenSky) or an ISO-8601 string (AviationStack). It marshals back to
// the same JSON type, and to null when absent.
type Timestamp struct {
	kind  TimestampKind
	epoch int64
	iso   string
}

// EpochTimestamp wraps Unix epoch seconds.
func EpochTimestamp(seconds int64) Timestamp {
	return Timestamp{kind: TimestampEpoch, epoch: seconds}
}

// ISOTimestamp wraps an ISO-8601 string. An empty string yields an absent timestamp.
func ISOTimestamp(s string) Timestamp {
	if s == "" {
		return Timestamp{}
	}
	return Timestamp{kind: TimestampISO, iso: s}
}

// Kind reports the upstream representation.
func (t Timestamp) Kind() TimestampKind { return t.kind }

// IsZero reports whether no time was supplied.
func (t Timestamp) IsZero() bool { return t.kind == TimestampNone }

// Epoch returns the epoch seconds and whether the timestamp is epoch-based.
func (t Timestamp) Epoch() (int64, bool) { return t.epoch, t.kind == TimestampEpoch }

// ISO returns the ISO-8601 string and whether the timestamp is string-based.
func (t Timestamp) ISO() (string, bool) { return t.iso, t.kind == TimestampISO }

// Time converts the timestamp to a calendar instant.
func (t Timestamp) Time() (time.Time, error) {
	switch t.kind {
	case TimestampEpoch:
		return time.UnixMilli(t.epoch * 1000).UTC(), nil
	case TimestampISO:
		return parseISO(t.iso)
	default:
		return time.Time{}, fmt.Errorf("timestamp not set")
	}
}

// isoLayouts covers RFC 3339 plus the offset-less forms some providers emit.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func parseISO(s string) (time.Time, error) {
	for _, layout := range isoLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse ISO-8601 timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	switch t.kind {
	case TimestampEpoch:
		return json.Marshal(t.epoch)
	case TimestampISO:
		return json.Marshal(t.iso)
	default:
		return []byte("null"), nil
	}
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*t = Timestamp{}
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = ISOTimestamp(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		f, err := n.Float64()
		if err != nil {
			return err
		}
		*t = EpochTimestamp(int64(f))
	}
	return nil
}
