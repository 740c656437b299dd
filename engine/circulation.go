/*
circulation.go - Checkout eligibility and return processing

PURPOSE:
  Decides whether a checkout is permitted and computes due dates and fines.
  Checkout runs four checks in a fixed order and short-circuits on the first
  failure, so multi-violation inputs always report the same reason:

    1. Member exists and is effectively active   -> MemberNotFound / InactiveMember
    2. Active loans below the membership limit   -> ItemLimitExceeded
    3. Outstanding fines below the threshold     -> FineThresholdExceeded
    4. Item exists and is available              -> ItemNotFound / ItemUnavailable

  Approval computes the due date and nothing else: the caller persists the
  new loan and the item's checked_out status.

RETURNS:
  Return processing is a separate operation and is not gated by the checks
  above - an inactive member can still bring a book back. It computes the
  overdue fine (capped) and, past the loss threshold, marks the item lost and
  adds the lost-item fee. The caller decides final fee composition and
  persists the results.
*/
package engine

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// REQUESTS
// =============================================================================

// CheckoutRequest is a candidate checkout.
type CheckoutRequest struct {
	MemberID MemberID
	ItemID   ItemID
	Date     Date
}

// ReturnRequest is a candidate return. A zero ReturnDate means "today" as
// supplied by the caller.
type ReturnRequest struct {
	LoanID     LoanID
	ReturnDate Date
}

// =============================================================================
// CIRCULATION ENGINE
// =============================================================================

// CirculationEngine validates checkouts and processes returns against an
// injected policy table. It holds no mutable state.
type CirculationEngine struct {
	Policy PolicyTable
}

// Checkout decides a checkout request against the snapshot. today governs the
// member's effective status; req.Date is the checkout date the due date is
// computed from (normally the same day).
func (c *CirculationEngine) Checkout(snap *Snapshot, req CheckoutRequest, today Date) (CheckoutDecision, error) {
	if req.MemberID == "" {
		return CheckoutDecision{}, missingField("member_id")
	}
	if req.ItemID == "" {
		return CheckoutDecision{}, missingField("item_id")
	}
	if req.Date.IsZero() {
		return CheckoutDecision{}, fmt.Errorf("checkout date: %w", ErrInvalidDate)
	}

	// 1. Member exists and is active
	member, ok := snap.MemberByID(req.MemberID)
	if !ok {
		return rejectedCheckout(reject(ReasonMemberNotFound, "member %s", req.MemberID)), nil
	}
	if status := member.EffectiveStatus(today); status != MemberActive {
		return rejectedCheckout(reject(ReasonInactiveMember, "member %s is %s", member.ID, status)), nil
	}

	// 2. Item limit for the membership type
	limit := c.Policy.ItemLimit(member.Type)
	active := CountActiveLoans(snap.Loans, member.ID)
	if active >= limit {
		return rejectedCheckout(reject(ReasonItemLimitExceeded, "%d/%d items out for %s membership", active, limit, member.Type)), nil
	}

	// 3. Outstanding fines below the threshold
	outstanding := SumOutstandingFines(snap.Fines, member.ID)
	if outstanding.GreaterThanOrEqual(c.Policy.FineThreshold) {
		return rejectedCheckout(reject(ReasonFineThresholdExceeded, "outstanding fines $%s at threshold $%s", outstanding.StringFixed(2), c.Policy.FineThreshold.StringFixed(2))), nil
	}

	// 4. Item exists and is available
	item, ok := snap.ItemByID(req.ItemID)
	if !ok {
		return rejectedCheckout(reject(ReasonItemNotFound, "item %s", req.ItemID)), nil
	}
	if item.Status != ItemAvailable {
		return rejectedCheckout(reject(ReasonItemUnavailable, "item %s is %s", item.ID, item.Status)), nil
	}

	return CheckoutDecision{
		Approved: true,
		DueDate:  req.Date.AddDays(c.Policy.CheckoutPeriod(item.Type)),
	}, nil
}

// Return processes a return against the snapshot. The loan must exist and
// still be out; a missing or already-closed loan is a structural error, not
// a policy outcome. Rejecting closed loans keeps a replayed return from
// re-assessing fees or rewriting the item's status after a later checkout.
func (c *CirculationEngine) Return(snap *Snapshot, req ReturnRequest, today Date) (ReturnDecision, error) {
	if req.LoanID == "" {
		return ReturnDecision{}, missingField("loan_id")
	}
	loan, ok := snap.LoanByID(req.LoanID)
	if !ok {
		return ReturnDecision{}, &UnknownRecordError{Kind: "loan", ID: string(req.LoanID)}
	}
	if !loan.IsActive() {
		return ReturnDecision{}, &LoanClosedError{ID: loan.ID, Status: loan.Status}
	}

	returnDate := req.ReturnDate
	if returnDate.IsZero() {
		returnDate = today
	}

	daysLate := DaysBetween(loan.DueDate, returnDate)
	if daysLate < 0 {
		daysLate = 0
	}

	decision := ReturnDecision{
		DaysLate:   daysLate,
		Fine:       c.OverdueFine(daysLate),
		ItemStatus: ItemAvailable,
	}

	if daysLate > c.Policy.LossThresholdDays {
		decision.Lost = true
		decision.ItemStatus = ItemLost
		if item, ok := snap.ItemByID(loan.ItemID); ok {
			decision.LostFee = Cents(item.ReplacementValue.Add(c.Policy.LostProcessingFee))
		} else {
			decision.LostFee = Cents(c.Policy.LostProcessingFee)
		}
	}

	return decision, nil
}

// OverdueFine computes the capped overdue fine for a whole-day lateness,
// rounded to cents.
func (c *CirculationEngine) OverdueFine(daysLate int) Money {
	if daysLate <= 0 {
		return decimal.Zero
	}
	fine := c.Policy.FinePerDay.Mul(decimal.NewFromInt(int64(daysLate)))
	if fine.GreaterThan(c.Policy.FineCap) {
		fine = c.Policy.FineCap
	}
	return Cents(fine)
}

func rejectedCheckout(r *Rejection) CheckoutDecision {
	return CheckoutDecision{Rejection: r}
}
