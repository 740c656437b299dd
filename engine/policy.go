/*
policy.go - The policy table injected into all validators

PURPOSE:
  Collects every operational policy parameter in one immutable structure:
  item limits per membership type, checkout periods, fine rates and caps,
  operating hours, advance-notice windows, and reservation ceilings. Policy
  changes never require touching decision logic.

MEMBERSHIP TYPE ALIASES:
  Two naming schemes circulate on application forms (Standard/Premium/Student
  vs Adult/Student/Child). The table resolves aliases before looking up a
  limit, so either scheme works and the mapping stays configurable.

FINE THRESHOLD BOUNDARY:
  A member with outstanding fines at or above FineThreshold is blocked from
  checking out. The boundary is deliberately a table parameter: historical
  policy documents disagree on "over $10" vs "$10 or more", and tests pin the
  chosen behavior (exactly $10.00 blocks).

SEE ALSO:
  - circulation.go, scheduling.go, membership.go: consumers of this table
  - factory: JSON-based table construction
*/
package engine

import "time"

// =============================================================================
// POLICY TABLE
// =============================================================================

// PolicyTable holds every tunable policy parameter. Construct with
// DefaultPolicyTable and override fields, or build from JSON via the factory
// package. Validators treat the table as immutable.
type PolicyTable struct {
	// Circulation
	ItemLimits         map[MembershipType]int
	MembershipAliases  map[MembershipType]MembershipType
	DefaultItemLimit   int
	CheckoutPeriods    map[ItemType]int // days
	DefaultPeriodDays  int
	FinePerDay         Money
	FineCap            Money
	FineThreshold      Money // checkout blocked once outstanding fines reach this
	LossThresholdDays  int   // overdue days after which an item is lost
	LostProcessingFee  Money // added to replacement value for lost items

	// Scheduling
	AdvanceNoticeDays    int
	OperatingHours       map[time.Weekday]HoursWindow
	Holidays             []Date // closed days: all bookings rejected
	LateCancellationFee  Money
	CancellationCutoff   time.Duration // minimum lead time for a free cancel
	ReservationDailyCap  time.Duration // per-member reserved room time per day
	ReservationHorizonDays int         // furthest ahead a room may be reserved

	// Membership
	MembershipTermMonths int
}

// HoursWindow is one weekday's operating window. Closed days reject all
// bookings regardless of times.
type HoursWindow struct {
	Open   ClockTime
	Close  ClockTime
	Closed bool
}

// DefaultPolicyTable returns the standard policy configuration.
func DefaultPolicyTable() PolicyTable {
	return PolicyTable{
		ItemLimits: map[MembershipType]int{
			MembershipStandard: 5,
			MembershipPremium:  10,
			MembershipStudent:  5,
			MembershipChild:    3,
		},
		MembershipAliases: map[MembershipType]MembershipType{
			MembershipAdult: MembershipStandard,
		},
		DefaultItemLimit: 5,
		CheckoutPeriods: map[ItemType]int{
			ItemBook:   21,
			ItemDVD:    7,
			ItemDevice: 14,
		},
		DefaultPeriodDays: 14,
		FinePerDay:        Dollars(0.25),
		FineCap:           Dollars(10.00),
		FineThreshold:     Dollars(10.00),
		LossThresholdDays: 30,
		LostProcessingFee: Dollars(5.00),

		AdvanceNoticeDays: 3,
		OperatingHours: map[time.Weekday]HoursWindow{
			time.Monday:    {Open: NewClockTime(9, 0), Close: NewClockTime(20, 0)},
			time.Tuesday:   {Open: NewClockTime(9, 0), Close: NewClockTime(20, 0)},
			time.Wednesday: {Open: NewClockTime(9, 0), Close: NewClockTime(20, 0)},
			time.Thursday:  {Open: NewClockTime(9, 0), Close: NewClockTime(20, 0)},
			time.Friday:    {Open: NewClockTime(9, 0), Close: NewClockTime(18, 0)},
			time.Saturday:  {Open: NewClockTime(9, 0), Close: NewClockTime(18, 0)},
			time.Sunday:    {Open: NewClockTime(13, 0), Close: NewClockTime(17, 0)},
		},
		LateCancellationFee:    Dollars(25.00),
		CancellationCutoff:     24 * time.Hour,
		ReservationDailyCap:    3 * time.Hour,
		ReservationHorizonDays: 30,

		MembershipTermMonths: 12,
	}
}

// ItemLimit resolves the checkout limit for a membership type, following the
// alias table and falling back to DefaultItemLimit for unknown types.
func (p PolicyTable) ItemLimit(t MembershipType) int {
	if alias, ok := p.MembershipAliases[t]; ok {
		t = alias
	}
	if limit, ok := p.ItemLimits[t]; ok {
		return limit
	}
	return p.DefaultItemLimit
}

// CheckoutPeriod returns the loan period in days for an item type.
func (p PolicyTable) CheckoutPeriod(t ItemType) int {
	if days, ok := p.CheckoutPeriods[t]; ok {
		return days
	}
	return p.DefaultPeriodDays
}

// HoursFor returns the operating window for a date. Holidays and weekdays
// without a configured window report closed.
func (p PolicyTable) HoursFor(date Date) HoursWindow {
	for _, h := range p.Holidays {
		if h.Equal(date) {
			return HoursWindow{Closed: true}
		}
	}
	w, ok := p.OperatingHours[date.Weekday()]
	if !ok {
		return HoursWindow{Closed: true}
	}
	return w
}
