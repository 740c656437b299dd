package engine_test

import (
	"testing"
	"time"

	"github.com/readwell/library-engine/engine"
)

func TestCountActiveLoans(t *testing.T) {
	loans := []engine.Loan{
		{ID: "1", MemberID: "101", Status: engine.LoanActive},
		{ID: "2", MemberID: "101", Status: engine.LoanActive},
		{ID: "3", MemberID: "101", Status: engine.LoanReturned, ReturnDate: date(2025, time.March, 1)},
		{ID: "4", MemberID: "102", Status: engine.LoanActive},
	}

	if got := engine.CountActiveLoans(loans, "101"); got != 2 {
		t.Errorf("expected 2 active loans for 101, got %d", got)
	}
	if got := engine.CountActiveLoans(loans, "102"); got != 1 {
		t.Errorf("expected 1 active loan for 102, got %d", got)
	}
	if got := engine.CountActiveLoans(loans, "999"); got != 0 {
		t.Errorf("expected 0 for unknown member, got %d", got)
	}
}

func TestCountActiveLoans_ReturnDateGoverns(t *testing.T) {
	// GIVEN: Records whose status fields disagree with their return dates
	loans := []engine.Loan{
		// Marked returned but never actually returned: still out
		{ID: "1", MemberID: "101", Status: engine.LoanReturned},
		// Marked active but holding a return date: back on the shelf
		{ID: "2", MemberID: "101", Status: engine.LoanActive, ReturnDate: date(2025, time.March, 1)},
	}

	// THEN: The limit check counts unreturned items only
	if got := engine.CountActiveLoans(loans, "101"); got != 1 {
		t.Errorf("expected 1 active loan, got %d", got)
	}
}

func TestSumOutstandingFines_OnlyOutstandingCount(t *testing.T) {
	fines := []engine.Fine{
		{ID: "f1", MemberID: "101", Amount: engine.Dollars(2.50), Status: engine.FineOutstanding},
		{ID: "f2", MemberID: "101", Amount: engine.Dollars(3.25), Status: engine.FineOutstanding},
		{ID: "f3", MemberID: "101", Amount: engine.Dollars(10.00), Status: engine.FinePaid},
		{ID: "f4", MemberID: "101", Amount: engine.Dollars(10.00), Status: engine.FineWaived},
		{ID: "f5", MemberID: "102", Amount: engine.Dollars(9.00), Status: engine.FineOutstanding},
	}

	got := engine.SumOutstandingFines(fines, "101")
	if !got.Equal(engine.Dollars(5.75)) {
		t.Errorf("expected $5.75, got $%s", got.StringFixed(2))
	}
	if !engine.SumOutstandingFines(fines, "999").IsZero() {
		t.Error("expected zero for unknown member")
	}
}

func TestRoomDateEvents_FiltersRoomDateAndCanceled(t *testing.T) {
	events := []engine.Event{
		{ID: "E1", RoomID: "R1", Date: monday, Status: engine.EventConfirmed},
		{ID: "E2", RoomID: "R1", Date: monday, Status: engine.EventCanceled},
		{ID: "E3", RoomID: "R2", Date: monday, Status: engine.EventConfirmed},
		{ID: "E4", RoomID: "R1", Date: friday, Status: engine.EventPending},
	}

	got := engine.RoomDateEvents(events, "R1", monday)
	if len(got) != 1 || got[0].ID != "E1" {
		t.Errorf("expected [E1], got %v", got)
	}
}

func TestMemberDayReservedMinutes(t *testing.T) {
	events := []engine.Event{
		{ID: "E1", Organizer: "101", Date: monday, RoomID: "R1",
			StartTime: engine.NewClockTime(9, 0), EndTime: engine.NewClockTime(11, 0), Status: engine.EventConfirmed},
		{ID: "E2", Organizer: "101", Date: monday, RoomID: "R2",
			StartTime: engine.NewClockTime(14, 0), EndTime: engine.NewClockTime(14, 30), Status: engine.EventPending},
		{ID: "E3", Organizer: "101", Date: monday, RoomID: "R1",
			StartTime: engine.NewClockTime(15, 0), EndTime: engine.NewClockTime(16, 0), Status: engine.EventCanceled},
		{ID: "E4", Organizer: "102", Date: monday, RoomID: "R1",
			StartTime: engine.NewClockTime(9, 0), EndTime: engine.NewClockTime(17, 0), Status: engine.EventConfirmed},
	}

	// Canceled bookings and other members' bookings do not count; rooms do
	// not partition the total.
	if got := engine.MemberDayReservedMinutes(events, "101", monday); got != 150 {
		t.Errorf("expected 150 minutes, got %d", got)
	}
	if got := engine.MemberDayReservedMinutes(events, "101", friday); got != 0 {
		t.Errorf("expected 0 minutes on another day, got %d", got)
	}
}
