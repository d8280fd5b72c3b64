/*
Package generic provides the domain-agnostic building blocks of the leave ledger.

PURPOSE:
  Everything in here is shared by the attendance and time-off packages:
  decimal day quantities, calendar days and months, time-of-day parsing,
  tagged values that remember where they came from, and sentinel errors.
  Nothing in this package knows what a leave request or a check-in is.

KEY CONCEPTS IN THIS FILE (types.go):
  - Amount: A decimal quantity with a unit (0.5 days, 1.67 days, 8 hours)
  - EmployeeID: Type-safe identifier for the person a ledger belongs to

DESIGN PRINCIPLES:
  1. Precision: Uses decimal.Decimal so 2 + 1.67 is exactly 3.67
  2. Purity: No function here reads the wall clock
  3. Type Safety: Strong typing for IDs and units

USAGE:
  opening := generic.Days(2)
  accrual := generic.MustDays("1.67")
  available := opening.Add(accrual) // 3.67 days

SEE ALSO:
  - time.go: Calendar days (TimePoint) and months
  - clock.go: Time-of-day parsing and HH:MM:SS formatting
  - sourced.go: Backend-vs-computed tagged values
*/
package generic

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// AMOUNT - Quantity with unit
// =============================================================================

type Amount struct {
	Value decimal.Decimal
	Unit  Unit
}

type Unit string

const (
	UnitDays  Unit = "days"
	UnitHours Unit = "hours"
)

func NewAmount(value float64, unit Unit) Amount {
	return Amount{Value: decimal.NewFromFloat(value), Unit: unit}
}

func NewAmountFromDecimal(value decimal.Decimal, unit Unit) Amount {
	return Amount{Value: value, Unit: unit}
}

// Days is shorthand for NewAmount(value, UnitDays).
func Days(value float64) Amount { return NewAmount(value, UnitDays) }

// ZeroDays is the zero amount in days.
func ZeroDays() Amount { return Amount{Value: decimal.Zero, Unit: UnitDays} }

// MustDays parses a decimal string into days. Malformed input yields zero.
func MustDays(s string) Amount {
	return Amount{Value: MustParseDecimal(s), Unit: UnitDays}
}

func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (a Amount) Zero() Amount                 { return Amount{Value: decimal.Zero, Unit: a.Unit} }
func (a Amount) Add(b Amount) Amount          { return Amount{Value: a.Value.Add(b.Value), Unit: a.Unit} }
func (a Amount) Sub(b Amount) Amount          { return Amount{Value: a.Value.Sub(b.Value), Unit: a.Unit} }
func (a Amount) Neg() Amount                  { return Amount{Value: a.Value.Neg(), Unit: a.Unit} }
func (a Amount) IsNegative() bool             { return a.Value.IsNegative() }
func (a Amount) IsZero() bool                 { return a.Value.IsZero() }
func (a Amount) IsPositive() bool             { return a.Value.IsPositive() }
func (a Amount) Equal(b Amount) bool          { return a.Value.Equal(b.Value) }
func (a Amount) GreaterThan(b Amount) bool    { return a.Value.GreaterThan(b.Value) }
func (a Amount) LessThan(b Amount) bool       { return a.Value.LessThan(b.Value) }
func (a Amount) LessOrEqual(b Amount) bool    { return a.Value.LessThanOrEqual(b.Value) }
func (a Amount) Float64() float64             { f, _ := a.Value.Float64(); return f }
func (a Amount) String() string               { return a.Value.String() }

func (a Amount) Min(b Amount) Amount {
	if a.LessThan(b) {
		return a
	}
	return b
}

func (a Amount) Max(b Amount) Amount {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// FloorZero returns the amount, or zero if it is negative.
func (a Amount) FloorZero() Amount {
	if a.IsNegative() {
		return a.Zero()
	}
	return a
}

// Round2 rounds half away from zero to two decimal places.
func (a Amount) Round2() Amount {
	return Amount{Value: a.Value.Round(2), Unit: a.Unit}
}

// Sum adds amounts in days.
func Sum(amounts ...Amount) Amount {
	total := ZeroDays()
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
