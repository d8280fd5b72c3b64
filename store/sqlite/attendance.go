package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/warp/leave-ledger/attendance"
	"github.com/warp/leave-ledger/generic"
)

// =============================================================================
// ATTENDANCE STORE
// =============================================================================

// GetAttendanceDay returns the employee's record for date, or (nil, nil).
func (s *Store) GetAttendanceDay(ctx context.Context, employeeID generic.EmployeeID, date generic.TimePoint) (*attendance.Day, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT employee_id, date, sessions_json, status, check_in, check_out
		FROM attendance_days WHERE employee_id = ? AND date = ?
	`, string(employeeID), date.String())

	day, err := scanAttendanceDay(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get attendance day: %w", err)
	}
	return &day, nil
}

// SaveAttendanceDay inserts or replaces the record for the day.
func (s *Store) SaveAttendanceDay(ctx context.Context, day attendance.Day) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sessions := day.Sessions
	if sessions == nil {
		sessions = []attendance.Session{}
	}
	sessionsJSON, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("encode sessions: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO attendance_days (employee_id, date, sessions_json, status, check_in, check_out, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id, date) DO UPDATE SET
			sessions_json = excluded.sessions_json,
			status = excluded.status,
			check_in = excluded.check_in,
			check_out = excluded.check_out,
			updated_at = excluded.updated_at
	`, string(day.EmployeeID), day.Date.String(), string(sessionsJSON), string(day.Status),
		nullString(day.CheckIn), nullString(day.CheckOut), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save attendance day: %w", err)
	}
	return nil
}

// ListAttendance returns the employee's days within period, by date.
func (s *Store) ListAttendance(ctx context.Context, employeeID generic.EmployeeID, period generic.Period) ([]attendance.Day, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, date, sessions_json, status, check_in, check_out
		FROM attendance_days
		WHERE employee_id = ? AND date >= ? AND date <= ?
		ORDER BY date
	`, string(employeeID), period.Start.String(), period.End.String())
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	var days []attendance.Day
	for rows.Next() {
		day, err := scanAttendanceDay(rows)
		if err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

func scanAttendanceDay(sc scanner) (attendance.Day, error) {
	var day attendance.Day
	var employeeID, date, sessionsJSON, status string
	var checkIn, checkOut sql.NullString

	if err := sc.Scan(&employeeID, &date, &sessionsJSON, &status, &checkIn, &checkOut); err != nil {
		return attendance.Day{}, err
	}

	day.EmployeeID = generic.EmployeeID(employeeID)
	day.Date = parseDate(date)
	day.Status = attendance.Status(status)
	day.CheckIn = checkIn.String
	day.CheckOut = checkOut.String
	if err := json.Unmarshal([]byte(sessionsJSON), &day.Sessions); err != nil {
		return attendance.Day{}, fmt.Errorf("decode sessions of %s on %s: %w", employeeID, date, err)
	}
	if len(day.Sessions) == 0 {
		day.Sessions = nil
	}
	return day, nil
}
