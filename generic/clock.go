package generic

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// =============================================================================
// CLOCK - Time-of-day <-> seconds since midnight
// =============================================================================

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
)

// ParseClock converts "HH:MM" or "HH:MM:SS" into seconds since midnight.
// Malformed input returns ok == false; it never panics.
func ParseClock(text string) (seconds int, ok bool) {
	parts := strings.Split(strings.TrimSpace(text), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, false
	}

	limits := []int{23, 59, 59}
	fields := make([]int, 3)
	for i, p := range parts {
		if len(p) == 0 || len(p) > 2 || !allDigits(p) {
			return 0, false
		}
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 || n > limits[i] {
			return 0, false
		}
		fields[i] = n
	}

	return fields[0]*secondsPerHour + fields[1]*secondsPerMinute + fields[2], true
}

// allDigits rejects signs, which strconv.Atoi would accept.
func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// MustParseClock is ParseClock with malformed input degraded to zero.
func MustParseClock(text string) int {
	s, _ := ParseClock(text)
	return s
}

// FormatSeconds renders a duration in seconds as zero-padded "HH:MM:SS".
// Negative input clamps to zero and fractions round to the nearest second.
// Hours are not wrapped at 24.
func FormatSeconds(totalSeconds float64) string {
	if math.IsNaN(totalSeconds) || totalSeconds < 0 {
		totalSeconds = 0
	}
	total := int64(math.Floor(totalSeconds + 0.5))

	h := total / secondsPerHour
	m := (total % secondsPerHour) / secondsPerMinute
	s := total % secondsPerMinute
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// SecondsOf returns the seconds since midnight of t in its own location.
func SecondsOf(t time.Time) int {
	return t.Hour()*secondsPerHour + t.Minute()*secondsPerMinute + t.Second()
}

// ClockOf renders t as "HH:MM:SS" in its own location.
func ClockOf(t time.Time) string {
	return t.Format("15:04:05")
}
