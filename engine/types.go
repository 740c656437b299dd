/*
Package engine implements the library's policy validation engine.

PURPOSE:
  This package contains the decision logic for circulation (checkouts and
  returns), scheduling (events and room reservations), and membership
  lifecycle (registration, renewal, suspension). Every operation is a pure
  function of a candidate request plus a snapshot of current records: the
  engine never touches storage, never reads the wall clock, and never mutates
  caller state. Callers persist approved decisions themselves.

KEY CONCEPTS IN THIS FILE (types.go):
  - Member/Item/Loan/Fine/Event/Room: flat record values supplied by callers
  - Status enums and derived member status
  - Money helpers built on decimal.Decimal

DESIGN PRINCIPLES:
  1. Determinism: "today" is always an explicit argument, never time.Now()
  2. Precision: decimal.Decimal for all monetary amounts
  3. Decisions as values: approvals carry computed fields, rejections carry
     reason codes; neither is control flow

SEE ALSO:
  - policy.go: the policy table injected into all validators
  - circulation.go, scheduling.go, membership.go: the validators
  - snapshot.go: record collections for batch evaluation
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// MONEY
// =============================================================================

// Money is a monetary amount in dollars.
type Money = decimal.Decimal

// Dollars builds a Money value from a float literal (test and config use).
func Dollars(v float64) Money { return decimal.NewFromFloat(v) }

// Cents rounds a monetary amount to whole cents.
func Cents(m Money) Money { return m.Round(2) }

// =============================================================================
// MEMBER
// =============================================================================

type MemberID string

type MembershipType string

const (
	MembershipStandard MembershipType = "Standard"
	MembershipPremium  MembershipType = "Premium"
	MembershipStudent  MembershipType = "Student"
	MembershipAdult    MembershipType = "Adult"
	MembershipChild    MembershipType = "Child"
)

type MemberStatus string

const (
	MemberActive    MemberStatus = "active"
	MemberInactive  MemberStatus = "inactive"
	MemberSuspended MemberStatus = "suspended"
)

// Member is a library member record. Members are never deleted, only
// status-transitioned.
type Member struct {
	ID         MemberID
	Name       string
	Address    string
	Email      string
	Phone      string
	Type       MembershipType
	JoinDate   Date
	ExpiryDate Date
	Status     MemberStatus
}

// EffectiveStatus derives the member's status for a given day.
// Suspension is an explicit override that survives date arithmetic; otherwise
// status is a pure function of the expiry date relative to today.
func (m Member) EffectiveStatus(today Date) MemberStatus {
	if m.Status == MemberSuspended {
		return MemberSuspended
	}
	if m.ExpiryDate.Before(today) {
		return MemberInactive
	}
	return MemberActive
}

// =============================================================================
// ITEM
// =============================================================================

type ItemID string

type ItemType string

const (
	ItemBook   ItemType = "Book"
	ItemDVD    ItemType = "DVD"
	ItemDevice ItemType = "Device"
)

type ItemStatus string

const (
	ItemAvailable  ItemStatus = "available"
	ItemCheckedOut ItemStatus = "checked_out"
	ItemLost       ItemStatus = "lost"
)

// Item is a circulating item. ReplacementValue funds the lost-item fee.
type Item struct {
	ID               ItemID
	Title            string
	Type             ItemType
	ReplacementValue Money
	Status           ItemStatus
}

// =============================================================================
// LOAN - A checkout transaction record
// =============================================================================

type LoanID string

type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanReturned LoanStatus = "returned"
)

// Loan records one checkout. At most one active loan exists per item at any
// time; the caller's storage layer is responsible for upholding that when it
// commits approved checkouts.
type Loan struct {
	ID           LoanID
	MemberID     MemberID
	ItemID       ItemID
	CheckoutDate Date
	DueDate      Date
	ReturnDate   Date // zero while active
	Status       LoanStatus
}

// IsActive reports whether the loan is still out.
func (l Loan) IsActive() bool {
	return l.Status == LoanActive && l.ReturnDate.IsZero()
}

// =============================================================================
// FINE
// =============================================================================

type FineID string

type FineStatus string

const (
	FineOutstanding FineStatus = "outstanding"
	FinePaid        FineStatus = "paid"
	FineWaived      FineStatus = "waived"
)

type ViolationType string

const (
	ViolationOverdue          ViolationType = "Overdue"
	ViolationLostItem         ViolationType = "Lost Item"
	ViolationLateCancellation ViolationType = "Late Event Cancellation"
)

// Fine is an assessed fee. Only outstanding fines count against the checkout
// threshold.
type Fine struct {
	ID           FineID
	MemberID     MemberID
	ItemID       ItemID // empty for non-item violations
	Violation    ViolationType
	Amount       Money
	AssessedDate Date
	Status       FineStatus
}

// =============================================================================
// EVENT
// =============================================================================

type EventID string

type EventStatus string

const (
	EventPending   EventStatus = "pending"
	EventConfirmed EventStatus = "confirmed"
	EventCanceled  EventStatus = "canceled"
)

// Event is a scheduled (or requested) booking of a room. The interval
// [StartTime, EndTime) must not overlap any other non-canceled event in the
// same room on the same date.
type Event struct {
	ID                 EventID
	Name               string
	Date               Date
	StartTime          ClockTime
	EndTime            ClockTime
	RoomID             RoomID
	Organizer          MemberID
	ExpectedAttendance int
	Status             EventStatus
}

// OverlapsWith reports whether two events contend for the same room time.
// Canceled events never conflict; back-to-back intervals never conflict.
func (e Event) OverlapsWith(other Event) bool {
	if e.Status == EventCanceled || other.Status == EventCanceled {
		return false
	}
	if e.RoomID != other.RoomID || !e.Date.Equal(other.Date) {
		return false
	}
	return Overlaps(e.StartTime, e.EndTime, other.StartTime, other.EndTime)
}

// =============================================================================
// ROOM
// =============================================================================

type RoomID string

// Room is read-only from the engine's perspective; capacity bounds attendance.
type Room struct {
	ID        RoomID
	Name      string
	Capacity  int
	Floor     int
	Features  []string
	Available bool
}
