package scheduling

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidTimeZone  = errors.New("invalid or missing time zone")
	ErrInvalidTimestamp = errors.New("invalid local timestamp")
	ErrPastTime         = errors.New("appointment time is in the past")
)

const (
	localLayout        = "2006-01-02T15:04"
	localLayoutSeconds = "2006-01-02T15:04:05"

	// displayLayout is the fixed human-readable form used in outbound
	// message text, never for storage or comparison.
	displayLayout = "Mon, Jan 2, 2006 at 3:04 PM"
)

// ToUTC interprets a wall-clock timestamp ("2006-01-02T15:04", seconds
// optional) as local to the business's IANA zone and converts it to UTC.
// Wall clocks that do not exist in the zone (spring-forward DST gaps) are
// rejected: time.ParseInLocation silently normalizes them to a different
// wall clock, which the round-trip check below catches.
func ToUTC(local, tzName string) (time.Time, error) {
	if tzName == "" {
		return time.Time{}, ErrInvalidTimeZone
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeZone, tzName)
	}

	layout := localLayout
	t, err := time.ParseInLocation(layout, local, loc)
	if err != nil {
		layout = localLayoutSeconds
		t, err = time.ParseInLocation(layout, local, loc)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, local)
		}
	}
	if t.Format(layout) != local {
		return time.Time{}, fmt.Errorf("%w: %q does not exist in %s", ErrInvalidTimestamp, local, tzName)
	}
	return t.UTC(), nil
}

// FormatLocal renders a UTC instant in the business's zone for message text.
func FormatLocal(utc time.Time, tzName string) (string, error) {
	if tzName == "" {
		return "", ErrInvalidTimeZone
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeZone, tzName)
	}
	return utc.In(loc).Format(displayLayout), nil
}

// EnsureFuture rejects booking targets at or before now (both UTC).
func EnsureFuture(utc, now time.Time) error {
	if !utc.After(now) {
		return ErrPastTime
	}
	return nil
}

// MinuteOfDayUTC is the appointment's start expressed as minutes since
// midnight UTC, the key the slot grid is built on.
func MinuteOfDayUTC(t time.Time) int {
	u := t.UTC()
	return u.Hour()*60 + u.Minute()
}

// DayBoundsUTC returns the [start, end) of the UTC day containing t.
func DayBoundsUTC(t time.Time) (time.Time, time.Time) {
	u := t.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}
