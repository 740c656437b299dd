package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readwell/library-engine/engine"
)

func simSnap() *engine.Snapshot {
	d := engine.NewDate
	snap := &engine.Snapshot{
		Rooms: []engine.Room{
			{ID: "R1", Name: "Community Room", Capacity: 30, Available: true},
			{ID: "R2", Name: "Study Room", Capacity: 8, Available: true},
		},
	}
	for _, id := range []string{"101", "102", "103", "104"} {
		snap.Members = append(snap.Members, engine.Member{
			ID: engine.MemberID(id), Name: "Member " + id,
			Email: id + "@example.com", Type: engine.MembershipStandard,
			JoinDate:   d(2024, time.January, 1),
			ExpiryDate: d(2026, time.January, 1),
			Status:     engine.MemberActive,
		})
	}
	for i := 0; i < 12; i++ {
		snap.Items = append(snap.Items, engine.Item{
			ID:    engine.ItemID(string(rune('A' + i))),
			Title: "Item", Type: engine.ItemBook,
			ReplacementValue: engine.Dollars(15.00),
			Status:           engine.ItemAvailable,
		})
	}
	// A couple of loans already out, one of them overdue
	snap.Items[10].Status = engine.ItemCheckedOut
	snap.Items[11].Status = engine.ItemCheckedOut
	snap.Loans = []engine.Loan{
		{ID: "1001", MemberID: "101", ItemID: "K",
			CheckoutDate: d(2025, time.February, 1), DueDate: d(2025, time.February, 22),
			Status: engine.LoanActive},
		{ID: "1002", MemberID: "102", ItemID: "L",
			CheckoutDate: d(2025, time.March, 1), DueDate: d(2025, time.March, 22),
			Status: engine.LoanActive},
	}
	return snap
}

func TestRunDay_DeterministicForSameSeed(t *testing.T) {
	// GIVEN: Two simulators with the same seed, day, and starting snapshot
	// WHEN: Running a day
	// THEN: The results and resulting snapshots are identical

	day := engine.NewDate(2025, time.March, 10)

	first, err := New(engine.DefaultPolicyTable(), DefaultConfig(42)).RunDay(simSnap(), day)
	require.NoError(t, err)
	second, err := New(engine.DefaultPolicyTable(), DefaultConfig(42)).RunDay(simSnap(), day)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRunDay_DifferentSeedsDiverge(t *testing.T) {
	day := engine.NewDate(2025, time.March, 10)

	a, err := New(engine.DefaultPolicyTable(), DefaultConfig(1)).RunDay(simSnap(), day)
	require.NoError(t, err)
	b, err := New(engine.DefaultPolicyTable(), DefaultConfig(2)).RunDay(simSnap(), day)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestRunDay_ApprovalsFeedBackIntoSnapshot(t *testing.T) {
	// Every approved checkout appears as an active loan and flips its item;
	// every processed return closes its loan.

	snap := simSnap()
	day := engine.NewDate(2025, time.March, 10)

	result, err := New(engine.DefaultPolicyTable(), DefaultConfig(7)).RunDay(snap, day)
	require.NoError(t, err)

	for _, c := range result.Checkouts {
		if !c.Decision.Approved {
			continue
		}
		loan, ok := snap.LoanByID(c.LoanID)
		require.True(t, ok, "approved checkout %s missing from snapshot", c.LoanID)
		assert.Equal(t, c.Request.ItemID, loan.ItemID)

		item, ok := snap.ItemByID(loan.ItemID)
		require.True(t, ok)
		assert.Equal(t, engine.ItemCheckedOut, item.Status)
	}

	for _, r := range result.Returns {
		loan, ok := snap.LoanByID(r.Request.LoanID)
		require.True(t, ok)
		assert.False(t, loan.IsActive(), "returned loan %s still active", loan.ID)
	}

	for _, b := range result.Bookings {
		if !b.Decision.Approved {
			continue
		}
		_, ok := snap.EventByID(b.EventID)
		assert.True(t, ok, "approved booking %s missing from snapshot", b.EventID)
	}
}

func TestRunDay_OverdueReturnAssessesFine(t *testing.T) {
	// Loan 1001 is overdue on March 10. If the simulator returns it, the
	// snapshot gains an outstanding fine for the member.

	snap := simSnap()
	day := engine.NewDate(2025, time.March, 10)

	result, err := New(engine.DefaultPolicyTable(), DefaultConfig(3)).RunDay(snap, day)
	require.NoError(t, err)

	for _, r := range result.Returns {
		if r.Request.LoanID != "1001" {
			continue
		}
		assert.Equal(t, 16, r.Decision.DaysLate)
		assert.True(t, r.Decision.Fine.Equal(engine.Dollars(4.00)))
		assert.True(t, engine.SumOutstandingFines(snap.Fines, "101").Equal(engine.Dollars(4.00)))
	}
}

func TestRunDay_RespectsActivityBounds(t *testing.T) {
	cfg := Config{
		Seed:         99,
		MinCheckouts: 2, MaxCheckouts: 4,
		MinReturns: 1, MaxReturns: 2,
		MinBookings: 1, MaxBookings: 1,
	}
	result, err := New(engine.DefaultPolicyTable(), cfg).RunDay(simSnap(), engine.NewDate(2025, time.March, 10))
	require.NoError(t, err)

	assert.GreaterOrEqual(t, len(result.Checkouts), 2)
	assert.LessOrEqual(t, len(result.Checkouts), 4)
	assert.LessOrEqual(t, len(result.Returns), 2)
	assert.Len(t, result.Bookings, 1)
}
