/*
decision.go - Decision and rejection types returned by all validators

PURPOSE:
  Every validator returns either an approval carrying its computed fields or
  a rejection carrying a reason code from a closed set. Rejections are
  expected, modeled outcomes - not Go errors. Go errors are reserved for
  structural problems (see errors.go).

REASON CODES:
  The set is closed and enumerable; callers can switch on it and test suites
  assert on the specific code returned for multi-violation inputs, so check
  ordering inside each validator is fixed and documented there.
*/
package engine

import "fmt"

// =============================================================================
// REASON CODES
// =============================================================================

type ReasonCode string

const (
	ReasonMemberNotFound        ReasonCode = "MemberNotFound"
	ReasonInactiveMember        ReasonCode = "InactiveMember"
	ReasonItemLimitExceeded     ReasonCode = "ItemLimitExceeded"
	ReasonFineThresholdExceeded ReasonCode = "FineThresholdExceeded"
	ReasonItemNotFound          ReasonCode = "ItemNotFound"
	ReasonItemUnavailable       ReasonCode = "ItemUnavailable"
	ReasonInsufficientNotice    ReasonCode = "InsufficientNotice"
	ReasonOutsideOperatingHours ReasonCode = "OutsideOperatingHours"
	ReasonInvalidTimeRange      ReasonCode = "InvalidTimeRange"
	ReasonCapacityExceeded      ReasonCode = "CapacityExceeded"
	ReasonRoomNotFound          ReasonCode = "RoomNotFound"
	ReasonRoomConflict          ReasonCode = "RoomConflict"
	ReasonDurationExceeded      ReasonCode = "DurationExceeded"
	ReasonBookingTooFarAhead    ReasonCode = "BookingTooFarAhead"
	ReasonDuplicateEmail        ReasonCode = "DuplicateEmail"
	ReasonLateCancellation      ReasonCode = "LateCancellation"
)

// Rejection explains a denied request: the reason code plus the specific
// offending value where one helps (the conflicting event, the limit hit, the
// outstanding total).
type Rejection struct {
	Reason ReasonCode
	Detail string

	// ConflictingEventID is set for RoomConflict rejections.
	ConflictingEventID EventID
}

func (r *Rejection) String() string {
	if r.Detail == "" {
		return string(r.Reason)
	}
	return fmt.Sprintf("%s: %s", r.Reason, r.Detail)
}

func reject(code ReasonCode, format string, args ...any) *Rejection {
	return &Rejection{Reason: code, Detail: fmt.Sprintf(format, args...)}
}

// =============================================================================
// DECISIONS
// =============================================================================

// CheckoutDecision is the outcome of a checkout request.
// On approval DueDate is computed; the caller persists the new loan and the
// item's checked_out status.
type CheckoutDecision struct {
	Approved  bool
	DueDate   Date
	Rejection *Rejection
}

// ReturnDecision is the outcome of processing a return. Returns are not
// gated by checkout policy; the decision reports assessed fees and the
// item's resulting status.
type ReturnDecision struct {
	DaysLate   int
	Fine       Money // overdue fine, capped
	Lost       bool  // overdue beyond the loss threshold
	LostFee    Money // replacement value + processing fee, zero unless Lost
	ItemStatus ItemStatus
}

// TotalAssessed is the combined fee for the return.
func (d ReturnDecision) TotalAssessed() Money {
	return d.Fine.Add(d.LostFee)
}

// BookingDecision is the outcome of an event or room-reservation request.
// On approval the event is created in pending status; confirmation is a
// separate workflow.
type BookingDecision struct {
	Approved  bool
	Event     Event // populated on approval, status pending
	Rejection *Rejection
}

// CancellationDecision is the outcome of an event cancellation request.
type CancellationDecision struct {
	Approved  bool
	LateFee   Money // nonzero when a late-cancellation override was used
	Rejection *Rejection
}

// RegistrationDecision is the outcome of a membership registration.
type RegistrationDecision struct {
	Approved  bool
	Member    Member // populated on approval
	Rejection *Rejection
}

// RenewalDecision is the outcome of a membership renewal.
type RenewalDecision struct {
	Approved  bool
	NewExpiry Date
	NewStatus MemberStatus
	Rejection *Rejection
}
