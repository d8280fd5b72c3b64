/*
ledger.go - Monthly leave ledger

PURPOSE:
  Walks month by month and produces one LedgerRow per month:

    opening + monthly credit + extra credit - deducted = closing

  Each row depends only on the previous row's closing and the month's own
  inputs, so rebuilding from the same inputs always gives the same rows.

BACKEND PRECEDENCE:
  The backend may report per-month figures (a LedgerFragment). A reported
  field always wins over the local computation, including a reported zero.
  Every such field is carried as a generic.Sourced value so callers can see
  where it came from.

ACCRUAL GATING:
  With a FragmentSet, a month the backend does not list gets no monthly
  credit (used for months before hire). Without one (nil), the backend is
  treated as unavailable and every month accrues.

OVERFLOW SPLIT:
  Paid and unpaid leave of the month are summed. If the total fits in the
  available balance it is all deducted; otherwise the balance is deducted
  and the rest becomes LWP. This is a current projection and may differ
  from the Allocation stored on each request at approval time.

CURRENT MONTH:
  The row for the month containing Today is Provisional. Its monthly credit,
  extra credit and closing are displayed as "pending", but the numeric
  closing is still carried as the next opening.

SEE ALSO:
  - allocation.go: The approval-time split
  - service.go: LedgerService gathers inputs and degrades failed fetches
  - export/csv.go: Renders rows with the Display form
*/
package timeoff

import (
	"github.com/shopspring/decimal"
	"github.com/warp/leave-ledger/attendance"
	"github.com/warp/leave-ledger/generic"
)

// PendingPlaceholder replaces figures of the current month that are not final.
const PendingPlaceholder = "pending"

// LedgerInput is everything one ledger build needs. Nothing here is fetched.
type LedgerInput struct {
	From  generic.Month
	To    generic.Month
	Today generic.TimePoint

	// Opening is the balance carried into From.
	Opening        decimal.Decimal
	MonthlyAccrual decimal.Decimal

	// UnpaidTypes names the leave types whose days are raw LWP.
	UnpaidTypes []string

	Requests    []LeaveRequest
	Attendance  []attendance.Day
	Credits     []CompensatoryCredit
	ManualExtra map[generic.Month]decimal.Decimal
	Fragments   *FragmentSet
}

// LedgerRow is one month of the ledger.
type LedgerRow struct {
	Month generic.Month

	Opening       decimal.Decimal
	MonthlyCredit decimal.Decimal
	ExtraCredit   generic.Sourced[decimal.Decimal]
	RawPaid       generic.Sourced[decimal.Decimal]
	RawUnpaid     generic.Sourced[decimal.Decimal]
	Deducted      decimal.Decimal
	LWP           decimal.Decimal
	Closing       decimal.Decimal

	Present          decimal.Decimal
	Absent           decimal.Decimal
	EffectivePresent decimal.Decimal
	EffectiveAbsent  decimal.Decimal
	PaidDays         decimal.Decimal

	// Accrued is false when accrual gating zeroed the monthly credit.
	Accrued     bool
	Provisional bool
}

// BuildLedger produces one row per month from From to min(To, Today's month).
// It returns nil when that range is empty.
func BuildLedger(in LedgerInput) []LedgerRow {
	last := in.To
	if current := in.Today.MonthOf(); current.Before(last) {
		last = current
	}
	months := generic.MonthsBetween(in.From, last)
	if len(months) == 0 {
		return nil
	}

	idx := indexInputs(in)
	rows := make([]LedgerRow, 0, len(months))
	opening := in.Opening
	for _, m := range months {
		row := buildMonth(m, opening, in, idx)
		rows = append(rows, row)
		opening = row.Closing
	}
	return rows
}

type monthIndex struct {
	paid    map[generic.Month]decimal.Decimal
	unpaid  map[generic.Month]decimal.Decimal
	extra   map[generic.Month]decimal.Decimal
	present map[generic.Month]decimal.Decimal
	absent  map[generic.Month]decimal.Decimal
}

func indexInputs(in LedgerInput) monthIndex {
	idx := monthIndex{
		paid:    map[generic.Month]decimal.Decimal{},
		unpaid:  map[generic.Month]decimal.Decimal{},
		extra:   map[generic.Month]decimal.Decimal{},
		present: map[generic.Month]decimal.Decimal{},
		absent:  map[generic.Month]decimal.Decimal{},
	}
	add := func(into map[generic.Month]decimal.Decimal, m generic.Month, v decimal.Decimal) {
		into[m] = into[m].Add(v)
	}

	for _, r := range in.Requests {
		if r.Status != StatusApproved {
			continue
		}
		if isUnpaid(r.LeaveType, in.UnpaidTypes) {
			add(idx.unpaid, r.Month(), r.TotalDays())
		} else {
			add(idx.paid, r.Month(), r.TotalDays())
		}
	}

	for m, v := range in.ManualExtra {
		add(idx.extra, m, v)
	}
	for _, c := range in.Credits {
		add(idx.extra, c.AssignedDate.MonthOf(), c.Credits)
	}

	for _, d := range in.Attendance {
		p, a := d.Status.Counts()
		add(idx.present, d.Date.MonthOf(), p)
		add(idx.absent, d.Date.MonthOf(), a)
	}
	return idx
}

func buildMonth(m generic.Month, opening decimal.Decimal, in LedgerInput, idx monthIndex) LedgerRow {
	row := LedgerRow{
		Month:       m,
		Opening:     opening,
		Provisional: m == in.Today.MonthOf(),
		Accrued:     true,
	}

	var frag LedgerFragment
	if in.Fragments != nil {
		var listed bool
		frag, listed = in.Fragments.Get(m)
		row.Accrued = listed
	}
	if row.Accrued {
		row.MonthlyCredit = in.MonthlyAccrual
	}

	row.ExtraCredit = generic.Prefer(frag.ExtraCredit, func() decimal.Decimal { return idx.extra[m] })
	row.RawPaid = generic.Prefer(frag.Deducted, func() decimal.Decimal { return idx.paid[m] })
	row.RawUnpaid = generic.Prefer(frag.LWP, func() decimal.Decimal { return idx.unpaid[m] })

	available := opening.Add(row.MonthlyCredit).Add(row.ExtraCredit.Value)
	requested := row.RawPaid.Value.Add(row.RawUnpaid.Value)
	if requested.LessThanOrEqual(available) {
		row.Deducted = requested
		row.LWP = decimal.Zero
	} else {
		row.Deducted = decimal.Max(decimal.Zero, available)
		row.LWP = requested.Sub(row.Deducted)
	}
	row.Closing = decimal.Max(decimal.Zero, available.Sub(row.Deducted))

	row.Present = idx.present[m]
	row.Absent = idx.absent[m]
	covered := decimal.Max(decimal.Zero, decimal.Min(row.Absent, row.Deducted))
	row.EffectivePresent = row.Present.Add(covered)
	row.EffectiveAbsent = row.Absent.Sub(covered)
	row.PaidDays = row.Present.Add(row.Deducted).Round(2)
	return row
}

func isUnpaid(leaveType string, unpaid []string) bool {
	for _, u := range unpaid {
		if SameType(leaveType, u) {
			return true
		}
	}
	return false
}

// =============================================================================
// DISPLAY
// =============================================================================

// LedgerDisplay is a row as text, with provisional figures replaced.
type LedgerDisplay struct {
	Month            string `json:"month"`
	Opening          string `json:"opening"`
	MonthlyCredit    string `json:"monthly_credit"`
	ExtraCredit      string `json:"extra_credit"`
	Deducted         string `json:"deducted"`
	LWP              string `json:"lwp"`
	Closing          string `json:"closing"`
	Present          string `json:"present"`
	Absent           string `json:"absent"`
	EffectivePresent string `json:"effective_present"`
	EffectiveAbsent  string `json:"effective_absent"`
	PaidDays         string `json:"paid_days"`
}

func fixed(d decimal.Decimal) string { return d.StringFixed(2) }

// Display renders the row for people: two decimals everywhere, and the
// placeholder in place of figures the current month has not settled.
func (r LedgerRow) Display() LedgerDisplay {
	d := LedgerDisplay{
		Month:            r.Month.Label(),
		Opening:          fixed(r.Opening),
		MonthlyCredit:    fixed(r.MonthlyCredit),
		ExtraCredit:      fixed(r.ExtraCredit.Value),
		Deducted:         fixed(r.Deducted),
		LWP:              fixed(r.LWP),
		Closing:          fixed(r.Closing),
		Present:          fixed(r.Present),
		Absent:           fixed(r.Absent),
		EffectivePresent: fixed(r.EffectivePresent),
		EffectiveAbsent:  fixed(r.EffectiveAbsent),
		PaidDays:         fixed(r.PaidDays),
	}
	if r.Provisional {
		d.MonthlyCredit = PendingPlaceholder
		d.ExtraCredit = PendingPlaceholder
		d.Closing = PendingPlaceholder
	}
	return d
}
