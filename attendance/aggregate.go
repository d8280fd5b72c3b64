package attendance

import "github.com/warp/leave-ledger/generic"

// =============================================================================
// SESSION AGGREGATION
// =============================================================================

// SessionSeconds is the worked time of one session as of now.
//
// A closed session contributes max(0, end-start); an open one max(0, now-start).
// Malformed start text, or malformed non-empty end text, contributes zero.
func SessionSeconds(s Session, now int) int {
	start, ok := generic.ParseClock(s.Start)
	if !ok {
		return 0
	}

	end := now
	if !s.Open() {
		if end, ok = generic.ParseClock(s.End); !ok {
			return 0
		}
	}

	if end < start {
		return 0
	}
	return end - start
}

// WorkedSeconds sums the sessions as of now. It never fails and never
// reads the wall clock; callers pass now explicitly.
func WorkedSeconds(sessions []Session, now int) int {
	total := 0
	for _, s := range sessions {
		total += SessionSeconds(s, now)
	}
	return total
}
