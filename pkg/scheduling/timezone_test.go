package scheduling

import (
	"errors"
	"testing"
	"time"
)

func TestToUTC(t *testing.T) {
	got, err := ToUTC("2024-06-01T09:00", "America/New_York")
	if err != nil {
		t.Fatalf("ToUTC: %v", err)
	}
	want := time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestToUTCWithSeconds(t *testing.T) {
	got, err := ToUTC("2024-06-01T09:00:00", "America/New_York")
	if err != nil {
		t.Fatalf("ToUTC: %v", err)
	}
	if got.Hour() != 13 {
		t.Errorf("hour = %d, want 13", got.Hour())
	}
}

func TestToUTCWinterOffset(t *testing.T) {
	// Same wall clock, standard time: EST is UTC-5.
	got, err := ToUTC("2024-01-15T09:00", "America/New_York")
	if err != nil {
		t.Fatalf("ToUTC: %v", err)
	}
	if got.Hour() != 14 {
		t.Errorf("hour = %d, want 14", got.Hour())
	}
}

func TestToUTCMissingZone(t *testing.T) {
	if _, err := ToUTC("2024-06-01T09:00", ""); !errors.Is(err, ErrInvalidTimeZone) {
		t.Errorf("err = %v, want ErrInvalidTimeZone", err)
	}
	if _, err := ToUTC("2024-06-01T09:00", "Mars/Olympus"); !errors.Is(err, ErrInvalidTimeZone) {
		t.Errorf("err = %v, want ErrInvalidTimeZone", err)
	}
}

func TestToUTCBadTimestamp(t *testing.T) {
	for _, in := range []string{"yesterday", "2024-13-40T09:00", "2024-06-01 09:00"} {
		if _, err := ToUTC(in, "UTC"); !errors.Is(err, ErrInvalidTimestamp) {
			t.Errorf("ToUTC(%q): err = %v, want ErrInvalidTimestamp", in, err)
		}
	}
}

func TestToUTCRejectsDSTGap(t *testing.T) {
	// 2:30 AM on 2024-03-10 does not exist in New York; clocks jump from
	// 2:00 to 3:00.
	if _, err := ToUTC("2024-03-10T02:30", "America/New_York"); !errors.Is(err, ErrInvalidTimestamp) {
		t.Errorf("err = %v, want ErrInvalidTimestamp for DST gap", err)
	}
}

func TestFormatLocal(t *testing.T) {
	utc := time.Date(2024, 6, 1, 13, 0, 0, 0, time.UTC)
	got, err := FormatLocal(utc, "America/New_York")
	if err != nil {
		t.Fatalf("FormatLocal: %v", err)
	}
	want := "Sat, Jun 1, 2024 at 9:00 AM"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFormatLocalBadZone(t *testing.T) {
	if _, err := FormatLocal(time.Now(), "Not/AZone"); !errors.Is(err, ErrInvalidTimeZone) {
		t.Errorf("err = %v, want ErrInvalidTimeZone", err)
	}
}

func TestEnsureFuture(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	if err := EnsureFuture(now.Add(time.Minute), now); err != nil {
		t.Errorf("future time rejected: %v", err)
	}
	if err := EnsureFuture(now, now); !errors.Is(err, ErrPastTime) {
		t.Errorf("exactly now: err = %v, want ErrPastTime", err)
	}
	if err := EnsureFuture(now.Add(-time.Hour), now); !errors.Is(err, ErrPastTime) {
		t.Errorf("past time: err = %v, want ErrPastTime", err)
	}
}

func TestDayBoundsUTC(t *testing.T) {
	start, end := DayBoundsUTC(time.Date(2024, 6, 1, 13, 37, 12, 0, time.UTC))
	if !start.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v", start)
	}
	if !end.Equal(time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v", end)
	}
}
