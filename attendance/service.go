package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/warp/leave-ledger/generic"
)

// =============================================================================
// STORE
// =============================================================================

// Store persists attendance days. GetAttendanceDay returns (nil, nil) when
// the employee has no record for that date.
type Store interface {
	GetAttendanceDay(ctx context.Context, employeeID generic.EmployeeID, date generic.TimePoint) (*Day, error)
	SaveAttendanceDay(ctx context.Context, day Day) error
	ListAttendance(ctx context.Context, employeeID generic.EmployeeID, period generic.Period) ([]Day, error)
}

// =============================================================================
// SERVICE - Check-in, check-out and today's summary
// =============================================================================

// Service applies check-in/check-out against the store. Day boundaries and
// clock text are taken in Location; LateAfter is seconds since midnight.
type Service struct {
	Store     Store
	Location  *time.Location
	LateAfter int
	Logger    *slog.Logger
}

// Summary is the day as seen at a given instant.
type Summary struct {
	Day           Day
	WorkedSeconds int
	Display       string
	Running       bool
}

func (s *Service) loc() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

func (s *Service) load(ctx context.Context, employeeID generic.EmployeeID, date generic.TimePoint) (Day, error) {
	day, err := s.Store.GetAttendanceDay(ctx, employeeID, date)
	if err != nil {
		return Day{}, err
	}
	if day == nil {
		return Day{EmployeeID: employeeID, Date: date}, nil
	}
	return *day, nil
}

// CheckIn opens a new session at now. The first check-in of a day decides
// present vs late.
func (s *Service) CheckIn(ctx context.Context, employeeID generic.EmployeeID, now time.Time) (Day, error) {
	local := now.In(s.loc())
	day, err := s.load(ctx, employeeID, generic.DayOf(local, nil))
	if err != nil {
		return Day{}, err
	}

	sessions := append([]Session(nil), day.EffectiveSessions()...)
	if openIndex(sessions) >= 0 {
		return Day{}, generic.ErrAlreadyCheckedIn
	}

	clock := generic.ClockOf(local)
	day.Sessions = append(sessions, Session{Start: clock})
	if day.CheckIn == "" {
		day.CheckIn = clock
	}
	if day.Status == "" || day.Status == StatusAbsent {
		day.Status = StatusPresent
		if s.LateAfter > 0 && generic.SecondsOf(local) > s.LateAfter {
			day.Status = StatusLate
		}
	}

	if err := s.Store.SaveAttendanceDay(ctx, day); err != nil {
		return Day{}, fmt.Errorf("check in: %w", err)
	}
	s.logger().Info("checked in", "employee_id", employeeID, "date", day.Date.String(), "at", clock, "status", day.Status)
	return day, nil
}

// CheckOut closes the open session at now.
func (s *Service) CheckOut(ctx context.Context, employeeID generic.EmployeeID, now time.Time) (Day, error) {
	local := now.In(s.loc())
	day, err := s.load(ctx, employeeID, generic.DayOf(local, nil))
	if err != nil {
		return Day{}, err
	}

	sessions := append([]Session(nil), day.EffectiveSessions()...)
	i := openIndex(sessions)
	if i < 0 {
		return Day{}, generic.ErrNoOpenSession
	}

	clock := generic.ClockOf(local)
	sessions[i].End = clock
	day.Sessions = sessions
	day.CheckOut = clock

	if err := s.Store.SaveAttendanceDay(ctx, day); err != nil {
		return Day{}, fmt.Errorf("check out: %w", err)
	}
	s.logger().Info("checked out", "employee_id", employeeID, "date", day.Date.String(), "at", clock)
	return day, nil
}

// Today summarises the current day as of now.
func (s *Service) Today(ctx context.Context, employeeID generic.EmployeeID, now time.Time) (Summary, error) {
	local := now.In(s.loc())
	day, err := s.load(ctx, employeeID, generic.DayOf(local, nil))
	if err != nil {
		return Summary{}, err
	}

	worked := day.WorkedSeconds(generic.SecondsOf(local))
	return Summary{
		Day:           day,
		WorkedSeconds: worked,
		Display:       generic.FormatSeconds(float64(worked)),
		Running:       day.HasOpenSession(),
	}, nil
}

// Sampler reloads today's record on every tick for the live timer. A failed
// reload ends the stream rather than showing a stale figure.
func (s *Service) Sampler(ctx context.Context, employeeID generic.EmployeeID) SampleFunc {
	return func(now time.Time) Tick {
		sum, err := s.Today(ctx, employeeID, now)
		if err != nil {
			s.logger().Warn("live timer reload failed", "employee_id", employeeID, "err", err)
			return Tick{At: now, Display: generic.FormatSeconds(0)}
		}
		return Tick{At: now, WorkedSeconds: sum.WorkedSeconds, Display: sum.Display, Running: sum.Running}
	}
}

// Record stores a manually entered day after validating its clock text.
func (s *Service) Record(ctx context.Context, day Day) error {
	if day.Status == "" {
		day.Status = StatusAbsent
		if len(day.EffectiveSessions()) > 0 {
			day.Status = StatusPresent
		}
	}
	if !day.Status.Valid() {
		return &generic.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", day.Status)}
	}
	for _, text := range []string{day.CheckIn, day.CheckOut} {
		if err := validClock(text); err != nil {
			return err
		}
	}
	for _, sess := range day.Sessions {
		if sess.Start == "" {
			return &generic.ValidationError{Field: "sessions", Message: "session start is required", Err: generic.ErrInvalidClock}
		}
		if err := validClock(sess.Start); err != nil {
			return err
		}
		if err := validClock(sess.End); err != nil {
			return err
		}
	}

	if err := s.Store.SaveAttendanceDay(ctx, day); err != nil {
		return fmt.Errorf("record attendance: %w", err)
	}
	return nil
}

// List returns the employee's days in period, ordered by date.
func (s *Service) List(ctx context.Context, employeeID generic.EmployeeID, period generic.Period) ([]Day, error) {
	return s.Store.ListAttendance(ctx, employeeID, period)
}

func validClock(text string) error {
	if text == "" {
		return nil
	}
	if _, ok := generic.ParseClock(text); !ok {
		return &generic.ValidationError{Field: "time", Message: fmt.Sprintf("%q is not HH:MM[:SS]", text), Err: generic.ErrInvalidClock}
	}
	return nil
}
