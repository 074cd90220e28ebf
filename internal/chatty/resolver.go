package chatty

import (
	"fmt"
	"time"
)

// Resolve turns raw into an absolute time using previous as the anchor.
//
// A dated stamp is taken as is in the anchor's zone. An undated stamp lands on
// the anchor's calendar day unless that would move time backwards, in which
// case it lands on the following day. At most one midnight is assumed to pass
// between two consecutive timestamped lines.
func Resolve(raw RawTimestamp, previous time.Time) (time.Time, error) {
	loc := previous.Location()
	if raw.HasDate {
		return localTime(raw.Date, raw.Clock, loc)
	}

	y, m, d := previous.Date()
	candidate, err := localTime(Date{Year: y, Month: m, Day: d}, raw.Clock, loc)
	if err != nil {
		return time.Time{}, err
	}
	if !candidate.Before(previous) {
		return candidate, nil
	}
	next := time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
	ny, nm, nd := next.Date()
	return localTime(Date{Year: ny, Month: nm, Day: nd}, raw.Clock, loc)
}

// localTime builds the wall-clock time in loc and rejects values that
// time.Date would silently normalize, skip over, or could place at two
// different instants.
func localTime(d Date, c Clock, loc *time.Location) (time.Time, error) {
	t := time.Date(d.Year, d.Month, d.Day, c.Hour, c.Minute, c.Second, 0, loc)
	if !sameWallClock(t, d, c) {
		return time.Time{}, fmt.Errorf("%w: %s %s does not exist in %s", ErrTimestamp, d, c, loc)
	}
	_, offset := t.Zone()
	for _, probe := range []time.Time{t.Add(-24 * time.Hour), t.Add(24 * time.Hour)} {
		_, other := probe.Zone()
		if other == offset {
			continue
		}
		alt := time.Date(d.Year, d.Month, d.Day, c.Hour, c.Minute, c.Second, 0, time.FixedZone("", other)).In(loc)
		if _, altOffset := alt.Zone(); altOffset == other && sameWallClock(alt, d, c) {
			return time.Time{}, fmt.Errorf("%w: %s %s is ambiguous in %s", ErrTimestamp, d, c, loc)
		}
	}
	return t, nil
}

func sameWallClock(t time.Time, d Date, c Clock) bool {
	y, m, day := t.Date()
	return y == d.Year && m == d.Month && day == d.Day &&
		t.Hour() == c.Hour && t.Minute() == c.Minute && t.Second() == c.Second
}
