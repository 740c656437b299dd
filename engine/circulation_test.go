package engine_test

import (
	"errors"
	"testing"
	"time"

	"github.com/readwell/library-engine/engine"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

func newCirculation() *engine.CirculationEngine {
	return &engine.CirculationEngine{Policy: engine.DefaultPolicyTable()}
}

func date(y int, m time.Month, d int) engine.Date {
	return engine.NewDate(y, m, d)
}

func activeMember(id string, mtype engine.MembershipType) engine.Member {
	return engine.Member{
		ID:         engine.MemberID(id),
		Name:       "Test Member",
		Email:      id + "@example.com",
		Type:       mtype,
		JoinDate:   date(2024, time.January, 15),
		ExpiryDate: date(2026, time.January, 15),
		Status:     engine.MemberActive,
	}
}

func availableItem(id string, itype engine.ItemType) engine.Item {
	return engine.Item{
		ID:               engine.ItemID(id),
		Title:            "Test Item",
		Type:             itype,
		ReplacementValue: engine.Dollars(15.99),
		Status:           engine.ItemAvailable,
	}
}

func activeLoan(memberID, itemID string, n int) []engine.Loan {
	loans := make([]engine.Loan, n)
	for i := range loans {
		loans[i] = engine.Loan{
			ID:           engine.LoanID(itemID + "-" + string(rune('a'+i))),
			MemberID:     engine.MemberID(memberID),
			ItemID:       engine.ItemID(itemID),
			CheckoutDate: date(2025, time.March, 1),
			DueDate:      date(2025, time.March, 22),
			Status:       engine.LoanActive,
		}
	}
	return loans
}

func checkoutSnap() *engine.Snapshot {
	return &engine.Snapshot{
		Members: []engine.Member{activeMember("101", engine.MembershipStandard)},
		Items:   []engine.Item{availableItem("201", engine.ItemBook)},
	}
}

// =============================================================================
// CHECKOUT APPROVAL AND DUE DATES
// =============================================================================

func TestCheckout_Approved_DueDateByItemType(t *testing.T) {
	// GIVEN: An active member and an available item of each type
	// WHEN: Checking out on March 10
	// THEN: Due date is checkout date + the type's period

	cases := []struct {
		itemType engine.ItemType
		dueDate  engine.Date
	}{
		{engine.ItemBook, date(2025, time.March, 31)},   // +21
		{engine.ItemDVD, date(2025, time.March, 17)},    // +7
		{engine.ItemDevice, date(2025, time.March, 24)}, // +14
	}

	c := newCirculation()
	for _, tc := range cases {
		snap := &engine.Snapshot{
			Members: []engine.Member{activeMember("101", engine.MembershipStandard)},
			Items:   []engine.Item{availableItem("201", tc.itemType)},
		}
		decision, err := c.Checkout(snap, engine.CheckoutRequest{
			MemberID: "101", ItemID: "201", Date: date(2025, time.March, 10),
		}, date(2025, time.March, 10))
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.itemType, err)
		}
		if !decision.Approved {
			t.Fatalf("%s: expected approval, got %s", tc.itemType, decision.Rejection)
		}
		if !decision.DueDate.Equal(tc.dueDate) {
			t.Errorf("%s: expected due date %s, got %s", tc.itemType, tc.dueDate, decision.DueDate)
		}
	}
}

func TestCheckout_UnknownItemType_DefaultPeriod(t *testing.T) {
	// GIVEN: An item with an unrecognized type
	// WHEN: Checking it out
	// THEN: The default 14-day period applies

	snap := &engine.Snapshot{
		Members: []engine.Member{activeMember("101", engine.MembershipStandard)},
		Items:   []engine.Item{availableItem("201", engine.ItemType("Magazine"))},
	}

	decision, err := newCirculation().Checkout(snap, engine.CheckoutRequest{
		MemberID: "101", ItemID: "201", Date: date(2025, time.March, 10),
	}, date(2025, time.March, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !decision.DueDate.Equal(date(2025, time.March, 24)) {
		t.Errorf("expected March 24, got %s", decision.DueDate)
	}
}

// =============================================================================
// CHECK ORDER AND SHORT-CIRCUIT
// =============================================================================

func TestCheckout_MemberNotFound(t *testing.T) {
	snap := checkoutSnap()
	decision, err := newCirculation().Checkout(snap, engine.CheckoutRequest{
		MemberID: "999", ItemID: "201", Date: date(2025, time.March, 10),
	}, date(2025, time.March, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Approved || decision.Rejection.Reason != engine.ReasonMemberNotFound {
		t.Errorf("expected MemberNotFound, got %v", decision.Rejection)
	}
}

func TestCheckout_ExpiredMember_Rejected(t *testing.T) {
	// GIVEN: A member whose expiry passed, status still recorded as active
	// WHEN: Requesting a checkout
	// THEN: Rejected with InactiveMember (status derives from expiry)

	member := activeMember("101", engine.MembershipStandard)
	member.ExpiryDate = date(2025, time.January, 1)
	snap := &engine.Snapshot{
		Members: []engine.Member{member},
		Items:   []engine.Item{availableItem("201", engine.ItemBook)},
	}

	decision, err := newCirculation().Checkout(snap, engine.CheckoutRequest{
		MemberID: "101", ItemID: "201", Date: date(2025, time.March, 10),
	}, date(2025, time.March, 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.Approved || decision.Rejection.Reason != engine.ReasonInactiveMember {
		t.Errorf("expected InactiveMember, got %v", decision.Rejection)
	}
}

func TestCheckout_SuspendedMember_Rejected(t *testing.T) {
	member := activeMember("101", engine.MembershipStandard)
	member.Status = engine.MemberSuspended
	snap := &engine.Snapshot{
		Members: []engine.Member{member},
		Items:   []engine.Item{availableItem("201", engine.ItemBook)},
	}

	decision, _ := newCirculation().Checkout(snap, engine.CheckoutRequest{
		MemberID: "101", ItemID: "201", Date: date(2025, time.March, 10),
	}, date(2025, time.March, 10))
	if decision.Approved || decision.Rejection.Reason != engine.ReasonInactiveMember {
		t.Errorf("expected InactiveMember for suspended member, got %v", decision.Rejection)
	}
}

func TestCheckout_ItemLimit_Boundary(t *testing.T) {
	// GIVEN: A Standard member with 5 active loans (the limit)
	// WHEN: Requesting a 6th
	// THEN: Rejected with ItemLimitExceeded; at 4 loans it is approved

	snap := checkoutSnap()
	snap.Loans = activeLoan("101", "900", 4)

	c := newCirculation()
	decision, _ := c.Checkout(snap, engine.CheckoutRequest{
		MemberID: "101", ItemID: "201", Date: date(2025, time.March, 10),
	}, date(2025, time.March, 10))
	if !decision.Approved {
		t.Fatalf("4/5 loans should be approved, got %s", decision.Rejection)
	}

	snap.Loans = activeLoan("101", "900", 5)
	decision, _ = c.Checkout(snap, engine.CheckoutRequest{
		MemberID: "101", ItemID: "201", Date: date(2025, time.March, 10),
	}, date(2025, time.March, 10))
	if decision.Approved || decision.Rejection.Reason != engine.ReasonItemLimitExceeded {
		t.Errorf("expected ItemLimitExceeded at 5/5, got %v", decision.Rejection)
	}
}

func TestCheckout_ItemLimit_ByMembershipType(t *testing.T) {
	// Premium allows 10, Child allows 3, Adult aliases to Standard's 5.
	cases := []struct {
		mtype engine.MembershipType
		loans int
		ok    bool
	}{
		{engine.MembershipPremium, 9, true},
		{engine.MembershipPremium, 10, false},
		{engine.MembershipChild, 2, true},
		{engine.MembershipChild, 3, false},
		{engine.MembershipAdult, 4, true},
		{engine.MembershipAdult, 5, false},
	}

	c := newCirculation()
	for _, tc := range cases {
		snap := &engine.Snapshot{
			Members: []engine.Member{activeMember("101", tc.mtype)},
			Items:   []engine.Item{availableItem("201", engine.ItemBook)},
			Loans:   activeLoan("101", "900", tc.loans),
		}
		decision, _ := c.Checkout(snap, engine.CheckoutRequest{
			MemberID: "101", ItemID: "201", Date: date(2025, time.March, 10),
		}, date(2025, time.March, 10))
		if decision.Approved != tc.ok {
			t.Errorf("%s with %d loans: approved=%v, want %v", tc.mtype, tc.loans, decision.Approved, tc.ok)
		}
	}
}

func TestCheckout_FineThreshold_ExactlyTenDollarsBlocks(t *testing.T) {
	// GIVEN: Outstanding fines of exactly $10.00
	// WHEN: Requesting a checkout
	// THEN: Rejected - the threshold is an exclusive upper bound for allowed
	//       fines, so $9.99 passes and $10.00 blocks

	c := newCirculation()

	snap := checkoutSnap()
	snap.Fines = []engine.Fine{{
		ID: "f1", MemberID: "101", Amount: engine.Dollars(9.99), Status: engine.FineOutstanding,
	}}
	decision, _ := c.Checkout(snap, engine.CheckoutRequest{
		MemberID: "101", ItemID: "201", Date: date(2025, time.March, 10),
	}, date(2025, time.March, 10))
	if !decision.Approved {
		t.Fatalf("$9.99 outstanding should be approved, got %s", decision.Rejection)
	}

	snap.Fines[0].Amount = engine.Dollars(10.00)
	decision, _ = c.Checkout(snap, engine.CheckoutRequest{
		MemberID: "101", ItemID: "201", Date: date(2025, time.March, 10),
	}, date(2025, time.March, 10))
	if decision.Approved || decision.Rejection.Reason != engine.ReasonFineThresholdExceeded {
		t.Errorf("expected FineThresholdExceeded at $10.00, got %v", decision.Rejection)
	}
}

func TestCheckout_PaidAndWaivedFines_DoNotBlock(t *testing.T) {
	snap := checkoutSnap()
	snap.Fines = []engine.Fine{
		{ID: "f1", MemberID: "101", Amount: engine.Dollars(20), Status: engine.FinePaid},
		{ID: "f2", MemberID: "101", Amount: engine.Dollars(20), Status: engine.FineWaived},
	}

	decision, _ := newCirculation().Checkout(snap, engine.CheckoutRequest{
		MemberID: "101", ItemID: "201", Date: date(2025, time.March, 10),
	}, date(2025, time.March, 10))
	if !decision.Approved {
		t.Errorf("settled fines should not block checkout, got %s", decision.Rejection)
	}
}

func TestCheckout_ItemUnavailable(t *testing.T) {
	snap := checkoutSnap()
	snap.Items[0].Status = engine.ItemCheckedOut

	decision, _ := newCirculation().Checkout(snap, engine.CheckoutRequest{
		MemberID: "101", ItemID: "201", Date: date(2025, time.March, 10),
	}, date(2025, time.March, 10))
	if decision.Approved || decision.Rejection.Reason != engine.ReasonItemUnavailable {
		t.Errorf("expected ItemUnavailable, got %v", decision.Rejection)
	}
}

func TestCheckout_ShortCircuit_ReportsFirstFailingCheck(t *testing.T) {
	// GIVEN: A member over the item limit AND over the fine threshold AND an
	//        unavailable item
	// WHEN: Requesting a checkout
	// THEN: The rejection is ItemLimitExceeded - the first failing check in
	//       the fixed order

	snap := checkoutSnap()
	snap.Loans = activeLoan("101", "900", 5)
	snap.Fines = []engine.Fine{{ID: "f1", MemberID: "101", Amount: engine.Dollars(50), Status: engine.FineOutstanding}}
	snap.Items[0].Status = engine.ItemCheckedOut

	decision, _ := newCirculation().Checkout(snap, engine.CheckoutRequest{
		MemberID: "101", ItemID: "201", Date: date(2025, time.March, 10),
	}, date(2025, time.March, 10))
	if decision.Rejection == nil || decision.Rejection.Reason != engine.ReasonItemLimitExceeded {
		t.Errorf("expected ItemLimitExceeded first, got %v", decision.Rejection)
	}
}

func TestCheckout_Idempotent(t *testing.T) {
	// Evaluating the same request twice against an unchanged snapshot yields
	// the same decision.
	snap := checkoutSnap()
	c := newCirculation()
	req := engine.CheckoutRequest{MemberID: "101", ItemID: "201", Date: date(2025, time.March, 10)}

	first, _ := c.Checkout(snap, req, date(2025, time.March, 10))
	second, _ := c.Checkout(snap, req, date(2025, time.March, 10))
	if first.Approved != second.Approved || !first.DueDate.Equal(second.DueDate) {
		t.Errorf("decisions differ: %+v vs %+v", first, second)
	}
}

func TestCheckout_BatchExtension_SeesEarlierApprovals(t *testing.T) {
	// GIVEN: A member with 4 active loans and two pending requests
	// WHEN: The first approval is fed back into the snapshot
	// THEN: The second request hits the limit that the first one filled

	snap := checkoutSnap()
	snap.Items = append(snap.Items, availableItem("202", engine.ItemBook))
	snap.Loans = activeLoan("101", "900", 4)
	c := newCirculation()
	today := date(2025, time.March, 10)

	first, _ := c.Checkout(snap, engine.CheckoutRequest{MemberID: "101", ItemID: "201", Date: today}, today)
	if !first.Approved {
		t.Fatalf("first request should be approved, got %s", first.Rejection)
	}
	snap.AddLoan(engine.Loan{
		ID: "t1", MemberID: "101", ItemID: "201",
		CheckoutDate: today, DueDate: first.DueDate, Status: engine.LoanActive,
	})

	second, _ := c.Checkout(snap, engine.CheckoutRequest{MemberID: "101", ItemID: "202", Date: today}, today)
	if second.Approved || second.Rejection.Reason != engine.ReasonItemLimitExceeded {
		t.Errorf("expected ItemLimitExceeded after in-batch approval, got %v", second.Rejection)
	}
}

func TestCheckout_MissingFields_StructuralError(t *testing.T) {
	snap := checkoutSnap()
	_, err := newCirculation().Checkout(snap, engine.CheckoutRequest{
		ItemID: "201", Date: date(2025, time.March, 10),
	}, date(2025, time.March, 10))
	if !errors.Is(err, engine.ErrMissingField) {
		t.Errorf("expected ErrMissingField, got %v", err)
	}
}

// =============================================================================
// RETURN PROCESSING
// =============================================================================

func returnSnap(dueDate engine.Date) *engine.Snapshot {
	return &engine.Snapshot{
		Items: []engine.Item{{
			ID: "202", Title: "To Kill a Mockingbird", Type: engine.ItemBook,
			ReplacementValue: engine.Dollars(14.99), Status: engine.ItemCheckedOut,
		}},
		Loans: []engine.Loan{{
			ID: "1001", MemberID: "101", ItemID: "202",
			CheckoutDate: dueDate.AddDays(-21), DueDate: dueDate, Status: engine.LoanActive,
		}},
	}
}

func TestReturn_OnTime_NoFine(t *testing.T) {
	due := date(2024, time.January, 31)
	snap := returnSnap(due)

	decision, err := newCirculation().Return(snap, engine.ReturnRequest{
		LoanID: "1001", ReturnDate: date(2024, time.January, 30),
	}, date(2024, time.January, 30))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decision.DaysLate != 0 || !decision.Fine.IsZero() {
		t.Errorf("expected no fine, got %d days / $%s", decision.DaysLate, decision.Fine.StringFixed(2))
	}
	if decision.ItemStatus != engine.ItemAvailable {
		t.Errorf("expected item available, got %s", decision.ItemStatus)
	}
}

func TestReturn_OneDayLate_QuarterFine(t *testing.T) {
	due := date(2024, time.January, 31)
	decision, _ := newCirculation().Return(returnSnap(due), engine.ReturnRequest{
		LoanID: "1001", ReturnDate: date(2024, time.February, 1),
	}, date(2024, time.February, 1))

	if decision.DaysLate != 1 {
		t.Fatalf("expected 1 day late, got %d", decision.DaysLate)
	}
	if !decision.Fine.Equal(engine.Dollars(0.25)) {
		t.Errorf("expected $0.25 fine, got $%s", decision.Fine.StringFixed(2))
	}
}

func TestReturn_TenDaysLate(t *testing.T) {
	due := date(2024, time.January, 31)
	decision, _ := newCirculation().Return(returnSnap(due), engine.ReturnRequest{
		LoanID: "1001", ReturnDate: date(2024, time.February, 10),
	}, date(2024, time.February, 10))

	if !decision.Fine.Equal(engine.Dollars(2.50)) {
		t.Errorf("expected $2.50 fine, got $%s", decision.Fine.StringFixed(2))
	}
	if decision.Lost {
		t.Error("10 days late should not be lost")
	}
}

func TestReturn_FiftyDaysLate_CappedAndLost(t *testing.T) {
	// GIVEN: An item 50 days overdue with replacement value $14.99
	// WHEN: Processing the return
	// THEN: Fine capped at $10.00, item lost, lost fee = value + $5

	due := date(2024, time.January, 31)
	decision, _ := newCirculation().Return(returnSnap(due), engine.ReturnRequest{
		LoanID: "1001", ReturnDate: date(2024, time.March, 21),
	}, date(2024, time.March, 21))

	if decision.DaysLate != 50 {
		t.Fatalf("expected 50 days late, got %d", decision.DaysLate)
	}
	if !decision.Fine.Equal(engine.Dollars(10.00)) {
		t.Errorf("expected capped $10.00 fine, got $%s", decision.Fine.StringFixed(2))
	}
	if !decision.Lost || decision.ItemStatus != engine.ItemLost {
		t.Error("expected item lost past the loss threshold")
	}
	if !decision.LostFee.Equal(engine.Dollars(19.99)) {
		t.Errorf("expected $19.99 lost fee, got $%s", decision.LostFee.StringFixed(2))
	}
}

func TestReturn_LossThreshold_Boundary(t *testing.T) {
	// 30 days late: not lost. 31 days late: lost.
	due := date(2024, time.January, 31)
	c := newCirculation()

	at30, _ := c.Return(returnSnap(due), engine.ReturnRequest{
		LoanID: "1001", ReturnDate: due.AddDays(30),
	}, due.AddDays(30))
	if at30.Lost {
		t.Error("exactly 30 days late should not be lost")
	}

	at31, _ := c.Return(returnSnap(due), engine.ReturnRequest{
		LoanID: "1001", ReturnDate: due.AddDays(31),
	}, due.AddDays(31))
	if !at31.Lost {
		t.Error("31 days late should be lost")
	}
}

func TestReturn_DefaultsToToday(t *testing.T) {
	due := date(2024, time.January, 31)
	today := date(2024, time.February, 3)

	decision, _ := newCirculation().Return(returnSnap(due), engine.ReturnRequest{LoanID: "1001"}, today)
	if decision.DaysLate != 3 {
		t.Errorf("expected 3 days late when return date defaults to today, got %d", decision.DaysLate)
	}
}

func TestReturn_UnknownLoan_StructuralError(t *testing.T) {
	snap := returnSnap(date(2024, time.January, 31))
	_, err := newCirculation().Return(snap, engine.ReturnRequest{LoanID: "nope"}, date(2024, time.February, 1))
	if !errors.Is(err, engine.ErrUnknownRecord) {
		t.Errorf("expected ErrUnknownRecord, got %v", err)
	}
}

func TestReturn_AlreadyReturned_StructuralError(t *testing.T) {
	// GIVEN: A loan that was returned ten days late and closed
	due := date(2024, time.January, 31)
	snap := returnSnap(due)
	returned := due.AddDays(10)
	decision, err := newCirculation().Return(snap, engine.ReturnRequest{
		LoanID: "1001", ReturnDate: returned,
	}, returned)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	snap.ApplyReturn("1001", returned, decision)

	// WHEN: The same return is replayed
	_, err = newCirculation().Return(snap, engine.ReturnRequest{
		LoanID: "1001", ReturnDate: returned,
	}, returned)

	// THEN: A structural error, so no fee is assessed twice and the item's
	// status is not rewritten
	if !errors.Is(err, engine.ErrLoanClosed) {
		t.Errorf("expected ErrLoanClosed, got %v", err)
	}
	var lerr *engine.LoanClosedError
	if !errors.As(err, &lerr) || lerr.ID != "1001" {
		t.Errorf("expected LoanClosedError for 1001, got %v", err)
	}
}
