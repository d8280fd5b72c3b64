package generic_test

import (
	"testing"
	"time"

	"github.com/warp/leave-ledger/generic"
)

// =============================================================================
// PARSE CLOCK
// =============================================================================

func TestParseClock_Valid(t *testing.T) {
	cases := map[string]int{
		"00:00":    0,
		"09:00":    9 * 3600,
		"09:30:15": 9*3600 + 30*60 + 15,
		"23:59:59": 86399,
		" 7:05 ":   7*3600 + 5*60,
	}
	for in, want := range cases {
		got, ok := generic.ParseClock(in)
		if !ok {
			t.Errorf("ParseClock(%q) rejected valid input", in)
			continue
		}
		if got != want {
			t.Errorf("ParseClock(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParseClock_MalformedIsAbsorbed(t *testing.T) {
	// GIVEN: Garbage of every shape
	// THEN: ok is false and nothing panics
	for _, in := range []string{"", "9", "ab:cd", "24:00", "12:60", "12:00:60", "-1:00", "1:2:3:4", "123:00", "12:",
		"+9:00", "-0:30", "9:+5", "09:00:-1", "9 :00"} {
		got, ok := generic.ParseClock(in)
		if ok {
			t.Errorf("ParseClock(%q) accepted malformed input (%d)", in, got)
		}
		if got != 0 {
			t.Errorf("ParseClock(%q) = %d, want 0", in, got)
		}
	}
}

// =============================================================================
// FORMAT SECONDS
// =============================================================================

func TestFormatSeconds(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "00:00:00"},
		{5400, "01:30:00"},
		{-10, "00:00:00"},
		{59.5, "00:01:00"},
		{59.4, "00:00:59"},
		{90000, "25:00:00"},
	}
	for _, c := range cases {
		if got := generic.FormatSeconds(c.in); got != c.want {
			t.Errorf("FormatSeconds(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestFormatSeconds_RoundTrip(t *testing.T) {
	// GIVEN: Zero-padded HH:MM:SS text
	// THEN: Formatting the parsed value yields the same text
	for _, in := range []string{"00:00:00", "08:15:42", "23:59:59", "12:00:01"} {
		s, ok := generic.ParseClock(in)
		if !ok {
			t.Fatalf("ParseClock(%q) failed", in)
		}
		if got := generic.FormatSeconds(float64(s)); got != in {
			t.Errorf("round trip of %q gave %q", in, got)
		}
	}
}

func TestClockOf(t *testing.T) {
	at := time.Date(2025, time.March, 10, 14, 5, 9, 0, time.UTC)
	if got := generic.ClockOf(at); got != "14:05:09" {
		t.Errorf("ClockOf = %q", got)
	}
	if got := generic.SecondsOf(at); got != 14*3600+5*60+9 {
		t.Errorf("SecondsOf = %d", got)
	}
}
