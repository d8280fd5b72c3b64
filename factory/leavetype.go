/*
Package factory provides JSON to Go leave type conversion.

PURPOSE:
  Converts JSON leave type definitions into timeoff.LeaveType values, so HR
  can add or change leave types without code changes.

JSON SCHEMA:
  {
    "name": "Annual Leave",
    "annual_allocation": 20,
    "paid": true,
    "allow_half_day": true,
    "color": "#2563eb"
  }

  "paid" defaults to true. A list of such objects is accepted by
  ParseLeaveTypes.

USAGE:
  f := factory.NewLeaveTypeFactory()
  lt, err := f.ParseLeaveType(timeoff.LeaveTypeJSON("Sick Leave", 10, true, true))

SEE ALSO:
  - timeoff/presets.go: Go-based default leave types
  - api/handlers.go: POST /api/leave-types
*/
package factory

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/leave-ledger/generic"
	"github.com/warp/leave-ledger/timeoff"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// LeaveTypeJSON is the JSON representation of a leave type.
type LeaveTypeJSON struct {
	Name             string           `json:"name"`
	AnnualAllocation *decimal.Decimal `json:"annual_allocation,omitempty"`
	Paid             *bool            `json:"paid,omitempty"`
	AllowHalfDay     bool             `json:"allow_half_day,omitempty"`
	Color            string           `json:"color,omitempty"`
}

// =============================================================================
// LEAVE TYPE FACTORY
// =============================================================================

// LeaveTypeFactory converts JSON leave types to Go structs.
type LeaveTypeFactory struct {
	// UnpaidLabel is the unpaid bucket; a type with this name is forced unpaid.
	UnpaidLabel string
}

// NewLeaveTypeFactory creates a new leave type factory.
func NewLeaveTypeFactory() *LeaveTypeFactory {
	return &LeaveTypeFactory{UnpaidLabel: timeoff.DefaultUnpaidBucket}
}

// ParseLeaveType parses a JSON string into a LeaveType.
func (f *LeaveTypeFactory) ParseLeaveType(jsonStr string) (timeoff.LeaveType, error) {
	var lj LeaveTypeJSON
	if err := json.Unmarshal([]byte(jsonStr), &lj); err != nil {
		return timeoff.LeaveType{}, fmt.Errorf("%w: failed to parse leave type JSON: %v", generic.ErrInvalidLeaveType, err)
	}
	return f.FromJSON(lj)
}

// ParseLeaveTypes parses a JSON array of leave types. Names must be unique.
func (f *LeaveTypeFactory) ParseLeaveTypes(jsonStr string) ([]timeoff.LeaveType, error) {
	var list []LeaveTypeJSON
	if err := json.Unmarshal([]byte(jsonStr), &list); err != nil {
		return nil, fmt.Errorf("%w: failed to parse leave types JSON: %v", generic.ErrInvalidLeaveType, err)
	}

	out := make([]timeoff.LeaveType, 0, len(list))
	for _, lj := range list {
		lt, err := f.FromJSON(lj)
		if err != nil {
			return nil, err
		}
		for _, prev := range out {
			if timeoff.SameType(prev.Name, lt.Name) {
				return nil, fmt.Errorf("%w: duplicate leave type %q", generic.ErrInvalidLeaveType, lt.Name)
			}
		}
		out = append(out, lt)
	}
	return out, nil
}

// FromJSON validates and converts a LeaveTypeJSON.
func (f *LeaveTypeFactory) FromJSON(lj LeaveTypeJSON) (timeoff.LeaveType, error) {
	name := strings.TrimSpace(lj.Name)
	if name == "" {
		return timeoff.LeaveType{}, fmt.Errorf("%w: name is required", generic.ErrInvalidLeaveType)
	}

	lt := timeoff.LeaveType{
		Name:             name,
		AnnualAllocation: decimal.Zero,
		Paid:             true,
		AllowHalfDay:     lj.AllowHalfDay,
		Color:            lj.Color,
	}
	if lj.AnnualAllocation != nil {
		if lj.AnnualAllocation.IsNegative() {
			return timeoff.LeaveType{}, fmt.Errorf("%w: %s: annual allocation cannot be negative", generic.ErrInvalidLeaveType, name)
		}
		lt.AnnualAllocation = *lj.AnnualAllocation
	}
	if lj.Paid != nil {
		lt.Paid = *lj.Paid
	}
	if f.UnpaidLabel != "" && timeoff.SameType(name, f.UnpaidLabel) {
		lt.Paid = false
	}
	if !lt.Paid {
		lt.AnnualAllocation = decimal.Zero
	}
	return lt, nil
}

// ToJSON converts a LeaveType back to its JSON form.
func ToJSON(lt timeoff.LeaveType) LeaveTypeJSON {
	alloc := lt.AnnualAllocation
	paid := lt.Paid
	return LeaveTypeJSON{
		Name:             lt.Name,
		AnnualAllocation: &alloc,
		Paid:             &paid,
		AllowHalfDay:     lt.AllowHalfDay,
		Color:            lt.Color,
	}
}
