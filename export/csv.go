// Package export renders ledger and attendance data as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/warp/leave-ledger/attendance"
	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/timeoff"
)

// LedgerHeader is the column order of the ledger export.
var LedgerHeader = []string{
	"Month", "Opening", "Monthly Credit", "Extra Credit", "Deducted", "LWP", "Closing",
	"Present", "Absent", "Effective Present", "Effective Absent", "Paid Days",
}

// WriteLedgerCSV writes one line per ledger row, using the display values so
// provisional months read "pending" exactly as on screen.
func WriteLedgerCSV(out io.Writer, rows []timeoff.LedgerRow) error {
	w := csv.NewWriter(out)

	if err := w.Write(LedgerHeader); err != nil {
		return fmt.Errorf("write ledger header: %w", err)
	}
	for _, r := range rows {
		d := r.Display()
		record := []string{
			d.Month, d.Opening, d.MonthlyCredit, d.ExtraCredit, d.Deducted, d.LWP, d.Closing,
			d.Present, d.Absent, d.EffectivePresent, d.EffectiveAbsent, d.PaidDays,
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write ledger row %s: %w", r.Month, err)
		}
	}

	w.Flush()
	return w.Error()
}

// AttendanceHeader is the column order of the attendance export.
var AttendanceHeader = []string{"Date", "Status", "Check In", "Check Out", "Sessions", "Worked"}

// WriteAttendanceCSV writes one line per day. nowFor gives the seconds since
// midnight an open session of that day counts up to; nil counts none.
func WriteAttendanceCSV(out io.Writer, days []attendance.Day, nowFor func(attendance.Day) int) error {
	w := csv.NewWriter(out)

	if err := w.Write(AttendanceHeader); err != nil {
		return fmt.Errorf("write attendance header: %w", err)
	}
	for _, d := range days {
		now := 0
		if nowFor != nil {
			now = nowFor(d)
		}
		sessions := d.EffectiveSessions()
		checkIn, checkOut := d.CheckIn, d.CheckOut
		if len(sessions) > 0 {
			checkIn = sessions[0].Start
			checkOut = sessions[len(sessions)-1].End
		}
		record := []string{
			d.Date.String(),
			string(d.Status),
			checkIn,
			checkOut,
			fmt.Sprintf("%d", len(sessions)),
			generic.FormatSeconds(float64(d.WorkedSeconds(now))),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("write attendance row %s: %w", d.Date, err)
		}
	}

	w.Flush()
	return w.Error()
}
