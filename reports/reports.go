/*
Package reports derives operational summaries from a record snapshot.

PURPOSE:
  Aggregates membership, inventory, event, and room statistics, plus an
  overdue-loan listing with projected fines. Reports are pure functions of a
  Snapshot and an explicit "today": the same snapshot always produces the
  same report.

OUTPUTS:
  - Summary: per-area counts and totals
  - OverdueLoans: active loans past due with the fine each would incur now
  - WriteSummaryCSV: the summary flattened to (report type, metric, value)
    rows for spreadsheet import
*/
package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/readwell/library-engine/engine"
)

// =============================================================================
// SUMMARY
// =============================================================================

// Summary is the full operational report. It is served as JSON by the API
// and flattened to CSV by WriteSummaryCSV.
type Summary struct {
	Membership MembershipReport `json:"membership"`
	Inventory  InventoryReport  `json:"inventory"`
	Events     EventsReport     `json:"events"`
	Rooms      RoomsReport      `json:"rooms"`
	Fines      FinesReport      `json:"fines"`
}

// MembershipReport counts members by derived status and by type.
type MembershipReport struct {
	Total     int                           `json:"total"`
	Active    int                           `json:"active"`
	Inactive  int                           `json:"inactive"`
	Suspended int                           `json:"suspended"`
	ByType    map[engine.MembershipType]int `json:"by_type"`
}

// InventoryReport counts items by status and by type.
type InventoryReport struct {
	Total      int                     `json:"total"`
	Available  int                     `json:"available"`
	CheckedOut int                     `json:"checked_out"`
	Lost       int                     `json:"lost"`
	ByType     map[engine.ItemType]int `json:"by_type"`
}

// EventsReport counts bookings by status.
type EventsReport struct {
	Total              int `json:"total"`
	Pending            int `json:"pending"`
	Confirmed          int `json:"confirmed"`
	Canceled           int `json:"canceled"`
	ExpectedAttendance int `json:"expected_attendance"` // across non-canceled events
}

// RoomsReport totals the room inventory.
type RoomsReport struct {
	Total         int `json:"total"`
	Available     int `json:"available"`
	TotalCapacity int `json:"total_capacity"`
}

// FinesReport totals assessed fees by settlement status.
type FinesReport struct {
	Total       int          `json:"total"`
	Outstanding engine.Money `json:"outstanding"`
	Collected   engine.Money `json:"collected"`
	Waived      engine.Money `json:"waived"`
}

// Summarize builds the full report for a snapshot. Member status is derived
// for today, so a member whose expiry passed counts as inactive even if the
// stored status says otherwise.
func Summarize(snap *engine.Snapshot, today engine.Date) Summary {
	s := Summary{
		Membership: MembershipReport{ByType: map[engine.MembershipType]int{}},
		Inventory:  InventoryReport{ByType: map[engine.ItemType]int{}},
	}

	for _, m := range snap.Members {
		s.Membership.Total++
		s.Membership.ByType[m.Type]++
		switch m.EffectiveStatus(today) {
		case engine.MemberActive:
			s.Membership.Active++
		case engine.MemberInactive:
			s.Membership.Inactive++
		case engine.MemberSuspended:
			s.Membership.Suspended++
		}
	}

	for _, it := range snap.Items {
		s.Inventory.Total++
		s.Inventory.ByType[it.Type]++
		switch it.Status {
		case engine.ItemAvailable:
			s.Inventory.Available++
		case engine.ItemCheckedOut:
			s.Inventory.CheckedOut++
		case engine.ItemLost:
			s.Inventory.Lost++
		}
	}

	for _, e := range snap.Events {
		s.Events.Total++
		switch e.Status {
		case engine.EventPending:
			s.Events.Pending++
		case engine.EventConfirmed:
			s.Events.Confirmed++
		case engine.EventCanceled:
			s.Events.Canceled++
		}
		if e.Status != engine.EventCanceled {
			s.Events.ExpectedAttendance += e.ExpectedAttendance
		}
	}

	for _, r := range snap.Rooms {
		s.Rooms.Total++
		s.Rooms.TotalCapacity += r.Capacity
		if r.Available {
			s.Rooms.Available++
		}
	}

	s.Fines.Outstanding = engine.Dollars(0)
	s.Fines.Collected = engine.Dollars(0)
	s.Fines.Waived = engine.Dollars(0)
	for _, f := range snap.Fines {
		s.Fines.Total++
		switch f.Status {
		case engine.FineOutstanding:
			s.Fines.Outstanding = s.Fines.Outstanding.Add(f.Amount)
		case engine.FinePaid:
			s.Fines.Collected = s.Fines.Collected.Add(f.Amount)
		case engine.FineWaived:
			s.Fines.Waived = s.Fines.Waived.Add(f.Amount)
		}
	}

	return s
}

// =============================================================================
// OVERDUE LISTING
// =============================================================================

// OverdueLoan is one active loan past its due date.
type OverdueLoan struct {
	Loan         engine.Loan
	MemberName   string
	ItemTitle    string
	DaysLate     int
	AccruedFine  engine.Money // the fine a return today would incur
	WouldBeLost  bool
}

// OverdueLoans lists active loans past due as of today, most overdue first.
// AccruedFine applies the per-day rate and cap from the policy table.
func OverdueLoans(snap *engine.Snapshot, policy engine.PolicyTable, today engine.Date) []OverdueLoan {
	c := &engine.CirculationEngine{Policy: policy}

	var overdue []OverdueLoan
	for _, l := range snap.Loans {
		if !l.IsActive() {
			continue
		}
		daysLate := engine.DaysBetween(l.DueDate, today)
		if daysLate <= 0 {
			continue
		}
		o := OverdueLoan{
			Loan:        l,
			DaysLate:    daysLate,
			AccruedFine: c.OverdueFine(daysLate),
			WouldBeLost: daysLate > policy.LossThresholdDays,
		}
		if m, ok := snap.MemberByID(l.MemberID); ok {
			o.MemberName = m.Name
		}
		if it, ok := snap.ItemByID(l.ItemID); ok {
			o.ItemTitle = it.Title
		}
		overdue = append(overdue, o)
	}

	sort.Slice(overdue, func(i, j int) bool {
		if overdue[i].DaysLate != overdue[j].DaysLate {
			return overdue[i].DaysLate > overdue[j].DaysLate
		}
		return overdue[i].Loan.ID < overdue[j].Loan.ID
	})
	return overdue
}

// =============================================================================
// CSV EXPORT
// =============================================================================

// WriteSummaryCSV flattens a summary to (report type, metric, value) rows.
func WriteSummaryCSV(w io.Writer, s Summary) error {
	cw := csv.NewWriter(w)

	rows := [][]string{
		{"Report Type", "Metric", "Value"},
		{"Membership", "Total Members", itoa(s.Membership.Total)},
		{"Membership", "Active Members", itoa(s.Membership.Active)},
		{"Membership", "Inactive Members", itoa(s.Membership.Inactive)},
		{"Membership", "Suspended Members", itoa(s.Membership.Suspended)},
		{"Items", "Total Items", itoa(s.Inventory.Total)},
		{"Items", "Available Items", itoa(s.Inventory.Available)},
		{"Items", "Checked Out Items", itoa(s.Inventory.CheckedOut)},
		{"Items", "Lost Items", itoa(s.Inventory.Lost)},
		{"Events", "Total Events", itoa(s.Events.Total)},
		{"Events", "Confirmed Events", itoa(s.Events.Confirmed)},
		{"Events", "Expected Attendance", itoa(s.Events.ExpectedAttendance)},
		{"Rooms", "Total Rooms", itoa(s.Rooms.Total)},
		{"Rooms", "Total Capacity", itoa(s.Rooms.TotalCapacity)},
		{"Fines", "Outstanding", s.Fines.Outstanding.StringFixed(2)},
		{"Fines", "Collected", s.Fines.Collected.StringFixed(2)},
		{"Fines", "Waived", s.Fines.Waived.StringFixed(2)},
	}

	for _, row := range rows {
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func itoa(n int) string { return fmt.Sprintf("%d", n) }
