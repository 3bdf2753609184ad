// Package timecode provides parsing and extraction of video timestamps and
// YouTube URLs from free-form chat text. All functions are pure and do no I/O.
package timecode

import (
	"fmt"
	"strconv"
	"strings"
)

// Timestamp represents a point in a video in HH:MM:SS form.
type Timestamp struct {
	Hours   int
	Minutes int
	Seconds int
}

// Normalize parses a free-text time expression into a Timestamp.
// The input is split on ':' or '.' into 1-3 numeric groups, read
// right-to-left: a single group is seconds, two groups are minutes:seconds,
// three are hours:minutes:seconds.
func Normalize(raw string) (Timestamp, error) {
	groups := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ':' || r == '.'
	})
	// FieldsFunc drops empty groups, so "1::2" would silently collapse.
	// Count separators to catch that.
	seps := strings.Count(raw, ":") + strings.Count(raw, ".")
	if len(groups) == 0 || len(groups) > 3 || len(groups) != seps+1 {
		return Timestamp{}, fmt.Errorf("invalid time expression %q: expected 1-3 numeric groups", raw)
	}

	vals := make([]int, len(groups))
	for i, g := range groups {
		n, err := strconv.Atoi(g)
		if err != nil || n < 0 {
			return Timestamp{}, fmt.Errorf("invalid time expression %q: group %q is not a non-negative number", raw, g)
		}
		vals[i] = n
	}

	var ts Timestamp
	switch len(vals) {
	case 1:
		ts = Timestamp{Seconds: vals[0]}
	case 2:
		ts = Timestamp{Minutes: vals[0], Seconds: vals[1]}
	case 3:
		ts = Timestamp{Hours: vals[0], Minutes: vals[1], Seconds: vals[2]}
	}

	if ts.Minutes > 59 {
		return Timestamp{}, fmt.Errorf("invalid time expression %q: minutes must be 0-59", raw)
	}
	if ts.Seconds > 59 {
		return Timestamp{}, fmt.Errorf("invalid time expression %q: seconds must be 0-59", raw)
	}

	return ts, nil
}

// String returns the timestamp in zero-padded HH:MM:SS form.
func (t Timestamp) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hours, t.Minutes, t.Seconds)
}

// TotalSeconds returns the timestamp as total seconds.
func (t Timestamp) TotalSeconds() int {
	return t.Hours*3600 + t.Minutes*60 + t.Seconds
}

// Before returns true if t is strictly before other.
func (t Timestamp) Before(other Timestamp) bool {
	return t.TotalSeconds() < other.TotalSeconds()
}
