/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request DTOs carry go-playground/validator struct tags; handlers run the
  shared validator before touching domain logic, so malformed bodies fail
  with 400 and a field-level message.

SEE ALSO:
  - handlers.go: Uses these types
  - engine/decision.go: The decision values DTOs are built from
*/
package api

import (
	"github.com/readwell/library-engine/engine"
)

// =============================================================================
// MEMBERS
// =============================================================================

// MemberDTO represents a member in API responses.
type MemberDTO struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Address    string `json:"address,omitempty"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Type       string `json:"membership_type"`
	JoinDate   string `json:"join_date"`
	ExpiryDate string `json:"expiry_date"`
	Status     string `json:"status"`
}

// RegisterMemberRequest is the request to register a member.
type RegisterMemberRequest struct {
	Name     string `json:"name" validate:"required"`
	Address  string `json:"address"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone"`
	Type     string `json:"membership_type" validate:"required"`
	JoinDate string `json:"join_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// RenewalDTO is the response to a renewal request.
type RenewalDTO struct {
	Approved  bool          `json:"approved"`
	NewExpiry string        `json:"new_expiry,omitempty"`
	NewStatus string        `json:"new_status,omitempty"`
	Rejection *RejectionDTO `json:"rejection,omitempty"`
}

// =============================================================================
// CIRCULATION
// =============================================================================

// ItemDTO represents an item in API responses.
type ItemDTO struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	Type             string `json:"type"`
	ReplacementValue string `json:"replacement_value"`
	Status           string `json:"status"`
}

// CreateItemRequest is the request to add an item to the inventory.
type CreateItemRequest struct {
	Title            string `json:"title" validate:"required"`
	Type             string `json:"type" validate:"required"`
	ReplacementValue string `json:"replacement_value" validate:"required"`
}

// CheckoutRequestDTO is the request to check out an item.
type CheckoutRequestDTO struct {
	MemberID string `json:"member_id" validate:"required"`
	ItemID   string `json:"item_id" validate:"required"`
	Date     string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// CheckoutDTO is the response to a checkout request.
type CheckoutDTO struct {
	Approved  bool          `json:"approved"`
	LoanID    string        `json:"loan_id,omitempty"`
	DueDate   string        `json:"due_date,omitempty"`
	Rejection *RejectionDTO `json:"rejection,omitempty"`
}

// ReturnRequestDTO is the request to return a loan.
type ReturnRequestDTO struct {
	LoanID     string `json:"loan_id" validate:"required"`
	ReturnDate string `json:"return_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ReturnDTO is the response to a processed return.
type ReturnDTO struct {
	LoanID     string `json:"loan_id"`
	DaysLate   int    `json:"days_late"`
	Fine       string `json:"fine"`
	Lost       bool   `json:"lost"`
	LostFee    string `json:"lost_fee,omitempty"`
	ItemStatus string `json:"item_status"`
}

// LoanDTO represents a loan in API responses.
type LoanDTO struct {
	ID           string `json:"id"`
	MemberID     string `json:"member_id"`
	ItemID       string `json:"item_id"`
	CheckoutDate string `json:"checkout_date"`
	DueDate      string `json:"due_date"`
	ReturnDate   string `json:"return_date,omitempty"`
	Status       string `json:"status"`
}

// OverdueLoanDTO is one row of the overdue report.
type OverdueLoanDTO struct {
	LoanDTO
	MemberName  string `json:"member_name,omitempty"`
	ItemTitle   string `json:"item_title,omitempty"`
	DaysLate    int    `json:"days_late"`
	AccruedFine string `json:"accrued_fine"`
	WouldBeLost bool   `json:"would_be_lost"`
}

// =============================================================================
// SCHEDULING
// =============================================================================

// RoomDTO represents a room in API responses.
type RoomDTO struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Capacity  int      `json:"capacity"`
	Floor     int      `json:"floor"`
	Features  []string `json:"features,omitempty"`
	Available bool     `json:"available"`
}

// EventDTO represents an event or reservation in API responses.
type EventDTO struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Date               string `json:"date"`
	StartTime          string `json:"start_time"`
	EndTime            string `json:"end_time"`
	RoomID             string `json:"room_id"`
	Organizer          string `json:"organizer,omitempty"`
	ExpectedAttendance int    `json:"expected_attendance"`
	Status             string `json:"status"`
}

// BookingRequestDTO is the request to schedule an event or reserve a room.
type BookingRequestDTO struct {
	Name               string `json:"name" validate:"required"`
	RoomID             string `json:"room_id" validate:"required"`
	Date               string `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime          string `json:"start_time" validate:"required"`
	EndTime            string `json:"end_time" validate:"required"`
	Organizer          string `json:"organizer,omitempty"`
	ExpectedAttendance int    `json:"expected_attendance" validate:"gte=0"`
	BookingDate        string `json:"booking_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// BookingDTO is the response to a booking request.
type BookingDTO struct {
	Approved  bool          `json:"approved"`
	Event     *EventDTO     `json:"event,omitempty"`
	Rejection *RejectionDTO `json:"rejection,omitempty"`
}

// CancelEventRequest asks to cancel an event. Override acknowledges the
// late-cancellation fee.
type CancelEventRequest struct {
	Override bool `json:"override,omitempty"`
}

// CancellationDTO is the response to a cancellation request.
type CancellationDTO struct {
	Approved  bool          `json:"approved"`
	LateFee   string        `json:"late_fee,omitempty"`
	Rejection *RejectionDTO `json:"rejection,omitempty"`
}

// =============================================================================
// SHARED
// =============================================================================

// RejectionDTO carries a policy rejection to the client.
type RejectionDTO struct {
	Reason             string `json:"reason"`
	Detail             string `json:"detail,omitempty"`
	ConflictingEventID string `json:"conflicting_event_id,omitempty"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SimulateRequest asks for one simulated day of activity.
type SimulateRequest struct {
	Seed int64  `json:"seed"`
	Date string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toMemberDTO(m engine.Member) MemberDTO {
	return MemberDTO{
		ID:         string(m.ID),
		Name:       m.Name,
		Address:    m.Address,
		Email:      m.Email,
		Phone:      m.Phone,
		Type:       string(m.Type),
		JoinDate:   m.JoinDate.String(),
		ExpiryDate: m.ExpiryDate.String(),
		Status:     string(m.Status),
	}
}

func toItemDTO(it engine.Item) ItemDTO {
	return ItemDTO{
		ID:               string(it.ID),
		Title:            it.Title,
		Type:             string(it.Type),
		ReplacementValue: it.ReplacementValue.StringFixed(2),
		Status:           string(it.Status),
	}
}

func toLoanDTO(l engine.Loan) LoanDTO {
	dto := LoanDTO{
		ID:           string(l.ID),
		MemberID:     string(l.MemberID),
		ItemID:       string(l.ItemID),
		CheckoutDate: l.CheckoutDate.String(),
		DueDate:      l.DueDate.String(),
		Status:       string(l.Status),
	}
	if !l.ReturnDate.IsZero() {
		dto.ReturnDate = l.ReturnDate.String()
	}
	return dto
}

func toRoomDTO(r engine.Room) RoomDTO {
	return RoomDTO{
		ID:        string(r.ID),
		Name:      r.Name,
		Capacity:  r.Capacity,
		Floor:     r.Floor,
		Features:  r.Features,
		Available: r.Available,
	}
}

func toEventDTO(e engine.Event) EventDTO {
	return EventDTO{
		ID:                 string(e.ID),
		Name:               e.Name,
		Date:               e.Date.String(),
		StartTime:          e.StartTime.String(),
		EndTime:            e.EndTime.String(),
		RoomID:             string(e.RoomID),
		Organizer:          string(e.Organizer),
		ExpectedAttendance: e.ExpectedAttendance,
		Status:             string(e.Status),
	}
}

func toRejectionDTO(r *engine.Rejection) *RejectionDTO {
	if r == nil {
		return nil
	}
	return &RejectionDTO{
		Reason:             string(r.Reason),
		Detail:             r.Detail,
		ConflictingEventID: string(r.ConflictingEventID),
	}
}
