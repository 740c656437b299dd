/*
handlers.go - HTTP API handlers for the library policy engine

PURPOSE:
  Exposes the validation engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates every decision to the engine package.

ENDPOINTS:
  Members:
    GET    /api/members                  List all members
    POST   /api/members                  Register member
    GET    /api/members/{id}             Get member details
    POST   /api/members/{id}/renew       Renew membership
    POST   /api/members/{id}/suspend     Suspend member
    POST   /api/members/{id}/reactivate  Clear a suspension

  Circulation:
    GET    /api/items                    List inventory
    POST   /api/items                    Add item
    POST   /api/checkouts                Check out an item
    POST   /api/returns                  Process a return
    GET    /api/loans                    List loans
    GET    /api/loans/overdue            Overdue report

  Scheduling:
    GET    /api/rooms                    List rooms
    POST   /api/rooms                    Add room
    GET    /api/events                   List events
    POST   /api/events                   Schedule an event
    POST   /api/reservations             Reserve a room (member reservation)
    POST   /api/events/{id}/cancel       Cancel an event

  Operations:
    GET    /api/reports/summary          Operational summary (?format=csv)
    POST   /api/simulate                 Run one simulated day

DECISION FLOW:
  1. Decode and validate the request body
  2. Load a snapshot, run the validator
  3. On approval, persist the outcome atomically (WithTx)
  4. Return the decision, approved or rejected, as JSON

  Policy rejections are HTTP 200 with approved=false: a denied checkout is a
  correct answer, not a failed request. Structural problems (unknown IDs,
  malformed bodies) map to 4xx.

SECURITY NOTE:
  No authentication middleware currently. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/readwell/library-engine/engine"
	"github.com/readwell/library-engine/reports"
	"github.com/readwell/library-engine/sim"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Clock supplies the current instant; injected so tests pin time. The full
// instant matters: the cancellation fee rule measures hours, not days.
type Clock func() time.Time

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    engine.TxStore
	Policy   engine.PolicyTable
	Now      Clock
	Logger   *zap.Logger
	validate *validator.Validate

	circ   *engine.CirculationEngine
	sched  *engine.SchedulingEngine
	member *engine.MembershipService

	// Serializes evaluate-then-commit pairs so two concurrent requests
	// cannot both win the same item or room slot.
	mu sync.Mutex
}

// NewHandler creates a handler wired to the given store and policy table.
func NewHandler(store engine.TxStore, policy engine.PolicyTable, now Clock, logger *zap.Logger) *Handler {
	return &Handler{
		Store:    store,
		Policy:   policy,
		Now:      now,
		Logger:   logger,
		validate: validator.New(),
		circ:     &engine.CirculationEngine{Policy: policy},
		sched:    &engine.SchedulingEngine{Policy: policy},
		member:   &engine.MembershipService{Policy: policy},
	}
}

// =============================================================================
// MEMBER HANDLERS
// =============================================================================

// ListMembers returns all members.
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.Store.ListMembers(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list members", err)
		return
	}
	dtos := make([]MemberDTO, 0, len(members))
	for _, m := range members {
		dtos = append(dtos, toMemberDTO(m))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetMember returns one member.
func (h *Handler) GetMember(w http.ResponseWriter, r *http.Request) {
	id := engine.MemberID(chi.URLParam(r, "id"))
	m, err := h.Store.GetMember(r.Context(), id)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownRecord) {
			h.writeError(w, http.StatusNotFound, "Member not found", nil)
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Failed to get member", err)
		return
	}
	writeJSON(w, http.StatusOK, toMemberDTO(m))
}

// RegisterMember registers a new member.
func (h *Handler) RegisterMember(w http.ResponseWriter, r *http.Request) {
	var req RegisterMemberRequest
	if !h.decode(w, r, &req) {
		return
	}

	joinDate, ok := h.parseOptionalDate(w, req.JoinDate, "join_date")
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	snap, err := h.Store.LoadSnapshot(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}

	today := h.today()
	decision, err := h.member.Register(snap, engine.RegistrationRequest{
		Name:     req.Name,
		Address:  req.Address,
		Email:    req.Email,
		Phone:    req.Phone,
		Type:     engine.MembershipType(req.Type),
		JoinDate: joinDate,
	}, today)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid registration", err)
		return
	}
	if !decision.Approved {
		writeJSON(w, http.StatusConflict, ErrorResponse{
			Error:   "Registration rejected",
			Details: decision.Rejection.String(),
		})
		return
	}

	member := decision.Member
	member.ID = engine.MemberID(uuid.NewString())
	if err := h.Store.SaveMember(r.Context(), member); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to save member", err)
		return
	}

	h.Logger.Info("member registered",
		zap.String("member_id", string(member.ID)),
		zap.String("membership_type", string(member.Type)))
	writeJSON(w, http.StatusCreated, toMemberDTO(member))
}

// RenewMembership extends a membership by one term.
func (h *Handler) RenewMembership(w http.ResponseWriter, r *http.Request) {
	id := engine.MemberID(chi.URLParam(r, "id"))

	h.mu.Lock()
	defer h.mu.Unlock()

	snap, err := h.Store.LoadSnapshot(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}

	decision, err := h.member.Renew(snap, engine.RenewalRequest{MemberID: id}, h.today())
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid renewal", err)
		return
	}
	if !decision.Approved {
		writeJSON(w, http.StatusOK, RenewalDTO{Rejection: toRejectionDTO(decision.Rejection)})
		return
	}

	member, _ := snap.MemberByID(id)
	member.ExpiryDate = decision.NewExpiry
	member.Status = decision.NewStatus
	if err := h.Store.SaveMember(r.Context(), member); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to save member", err)
		return
	}

	h.Logger.Info("membership renewed",
		zap.String("member_id", string(id)),
		zap.String("new_expiry", decision.NewExpiry.String()))
	writeJSON(w, http.StatusOK, RenewalDTO{
		Approved:  true,
		NewExpiry: decision.NewExpiry.String(),
		NewStatus: string(decision.NewStatus),
	})
}

// SuspendMember applies the suspension override.
func (h *Handler) SuspendMember(w http.ResponseWriter, r *http.Request) {
	h.setMemberStatus(w, r, func(m engine.Member) engine.Member {
		return h.member.Suspend(m)
	})
}

// ReactivateMember clears a suspension.
func (h *Handler) ReactivateMember(w http.ResponseWriter, r *http.Request) {
	h.setMemberStatus(w, r, func(m engine.Member) engine.Member {
		return h.member.Reactivate(m, h.today())
	})
}

func (h *Handler) setMemberStatus(w http.ResponseWriter, r *http.Request, apply func(engine.Member) engine.Member) {
	id := engine.MemberID(chi.URLParam(r, "id"))
	m, err := h.Store.GetMember(r.Context(), id)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownRecord) {
			h.writeError(w, http.StatusNotFound, "Member not found", nil)
			return
		}
		h.writeError(w, http.StatusInternalServerError, "Failed to get member", err)
		return
	}

	m = apply(m)
	if err := h.Store.SaveMember(r.Context(), m); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to save member", err)
		return
	}
	h.Logger.Info("member status changed",
		zap.String("member_id", string(id)),
		zap.String("status", string(m.Status)))
	writeJSON(w, http.StatusOK, toMemberDTO(m))
}

// =============================================================================
// CIRCULATION HANDLERS
// =============================================================================

// ListItems returns the inventory.
func (h *Handler) ListItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.Store.ListItems(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list items", err)
		return
	}
	dtos := make([]ItemDTO, 0, len(items))
	for _, it := range items {
		dtos = append(dtos, toItemDTO(it))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateItem adds an item to the inventory.
func (h *Handler) CreateItem(w http.ResponseWriter, r *http.Request) {
	var req CreateItemRequest
	if !h.decode(w, r, &req) {
		return
	}

	value, err := decimal.NewFromString(req.ReplacementValue)
	if err != nil || value.IsNegative() {
		h.writeError(w, http.StatusBadRequest, "Invalid replacement_value", err)
		return
	}

	item := engine.Item{
		ID:               engine.ItemID(uuid.NewString()),
		Title:            req.Title,
		Type:             engine.ItemType(req.Type),
		ReplacementValue: value,
		Status:           engine.ItemAvailable,
	}
	if err := h.Store.SaveItem(r.Context(), item); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to save item", err)
		return
	}
	writeJSON(w, http.StatusCreated, toItemDTO(item))
}

// Checkout decides a checkout request and, on approval, persists the new
// loan and the item's status atomically.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequestDTO
	if !h.decode(w, r, &req) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	snap, err := h.Store.LoadSnapshot(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}

	today := h.today()
	checkoutDate, ok := h.parseOptionalDate(w, req.Date, "date")
	if !ok {
		return
	}
	if checkoutDate.IsZero() {
		checkoutDate = today
	}

	decision, err := h.circ.Checkout(snap, engine.CheckoutRequest{
		MemberID: engine.MemberID(req.MemberID),
		ItemID:   engine.ItemID(req.ItemID),
		Date:     checkoutDate,
	}, today)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid checkout request", err)
		return
	}
	if !decision.Approved {
		h.Logger.Info("checkout rejected",
			zap.String("member_id", req.MemberID),
			zap.String("item_id", req.ItemID),
			zap.String("reason", string(decision.Rejection.Reason)))
		writeJSON(w, http.StatusOK, CheckoutDTO{Rejection: toRejectionDTO(decision.Rejection)})
		return
	}

	loan := engine.Loan{
		ID:           engine.LoanID(uuid.NewString()),
		MemberID:     engine.MemberID(req.MemberID),
		ItemID:       engine.ItemID(req.ItemID),
		CheckoutDate: checkoutDate,
		DueDate:      decision.DueDate,
		Status:       engine.LoanActive,
	}
	err = h.Store.WithTx(r.Context(), func(tx engine.RecordStore) error {
		if err := tx.SaveLoan(r.Context(), loan); err != nil {
			return err
		}
		item, _ := snap.ItemByID(loan.ItemID)
		item.Status = engine.ItemCheckedOut
		return tx.SaveItem(r.Context(), item)
	})
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to commit checkout", err)
		return
	}

	h.Logger.Info("checkout approved",
		zap.String("member_id", req.MemberID),
		zap.String("item_id", req.ItemID),
		zap.String("due_date", decision.DueDate.String()))
	writeJSON(w, http.StatusCreated, CheckoutDTO{
		Approved: true,
		LoanID:   string(loan.ID),
		DueDate:  decision.DueDate.String(),
	})
}

// Return processes a return: closes the loan, updates the item status, and
// assesses overdue and lost-item fees.
func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	var req ReturnRequestDTO
	if !h.decode(w, r, &req) {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	snap, err := h.Store.LoadSnapshot(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}

	today := h.today()
	returnDate, ok := h.parseOptionalDate(w, req.ReturnDate, "return_date")
	if !ok {
		return
	}
	if returnDate.IsZero() {
		returnDate = today
	}

	decision, err := h.circ.Return(snap, engine.ReturnRequest{
		LoanID:     engine.LoanID(req.LoanID),
		ReturnDate: returnDate,
	}, today)
	if err != nil {
		if errors.Is(err, engine.ErrUnknownRecord) {
			h.writeError(w, http.StatusNotFound, "Loan not found", nil)
			return
		}
		if errors.Is(err, engine.ErrLoanClosed) {
			h.writeError(w, http.StatusConflict, "Loan already returned", err)
			return
		}
		h.writeError(w, http.StatusBadRequest, "Invalid return request", err)
		return
	}

	loan, _ := snap.LoanByID(engine.LoanID(req.LoanID))
	loan.ReturnDate = returnDate
	loan.Status = engine.LoanReturned

	var fines []engine.Fine
	if decision.Fine.IsPositive() {
		fines = append(fines, engine.Fine{
			ID:           engine.FineID(uuid.NewString()),
			MemberID:     loan.MemberID,
			ItemID:       loan.ItemID,
			Violation:    engine.ViolationOverdue,
			Amount:       decision.Fine,
			AssessedDate: today,
			Status:       engine.FineOutstanding,
		})
	}
	if decision.Lost {
		fines = append(fines, engine.Fine{
			ID:           engine.FineID(uuid.NewString()),
			MemberID:     loan.MemberID,
			ItemID:       loan.ItemID,
			Violation:    engine.ViolationLostItem,
			Amount:       decision.LostFee,
			AssessedDate: today,
			Status:       engine.FineOutstanding,
		})
	}

	err = h.Store.WithTx(r.Context(), func(tx engine.RecordStore) error {
		if err := tx.SaveLoan(r.Context(), loan); err != nil {
			return err
		}
		item, ok := snap.ItemByID(loan.ItemID)
		if ok {
			item.Status = decision.ItemStatus
			if err := tx.SaveItem(r.Context(), item); err != nil {
				return err
			}
		}
		for _, f := range fines {
			if err := tx.SaveFine(r.Context(), f); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to commit return", err)
		return
	}

	h.Logger.Info("return processed",
		zap.String("loan_id", req.LoanID),
		zap.Int("days_late", decision.DaysLate),
		zap.Bool("lost", decision.Lost))
	dto := ReturnDTO{
		LoanID:     req.LoanID,
		DaysLate:   decision.DaysLate,
		Fine:       decision.Fine.StringFixed(2),
		Lost:       decision.Lost,
		ItemStatus: string(decision.ItemStatus),
	}
	if decision.Lost {
		dto.LostFee = decision.LostFee.StringFixed(2)
	}
	writeJSON(w, http.StatusOK, dto)
}

// ListLoans returns all loans.
func (h *Handler) ListLoans(w http.ResponseWriter, r *http.Request) {
	loans, err := h.Store.ListLoans(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list loans", err)
		return
	}
	dtos := make([]LoanDTO, 0, len(loans))
	for _, l := range loans {
		dtos = append(dtos, toLoanDTO(l))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListOverdueLoans returns the overdue report, most overdue first.
func (h *Handler) ListOverdueLoans(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Store.LoadSnapshot(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}

	overdue := reports.OverdueLoans(snap, h.Policy, h.today())
	dtos := make([]OverdueLoanDTO, 0, len(overdue))
	for _, o := range overdue {
		dtos = append(dtos, OverdueLoanDTO{
			LoanDTO:     toLoanDTO(o.Loan),
			MemberName:  o.MemberName,
			ItemTitle:   o.ItemTitle,
			DaysLate:    o.DaysLate,
			AccruedFine: o.AccruedFine.StringFixed(2),
			WouldBeLost: o.WouldBeLost,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// SCHEDULING HANDLERS
// =============================================================================

// ListRooms returns the room inventory.
func (h *Handler) ListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.Store.ListRooms(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list rooms", err)
		return
	}
	dtos := make([]RoomDTO, 0, len(rooms))
	for _, room := range rooms {
		dtos = append(dtos, toRoomDTO(room))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// CreateRoom adds a room.
func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req RoomDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" || req.Capacity <= 0 {
		h.writeError(w, http.StatusBadRequest, "name and positive capacity are required", nil)
		return
	}

	room := engine.Room{
		ID:        engine.RoomID(uuid.NewString()),
		Name:      req.Name,
		Capacity:  req.Capacity,
		Floor:     req.Floor,
		Features:  req.Features,
		Available: true,
	}
	if err := h.Store.SaveRoom(r.Context(), room); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to save room", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRoomDTO(room))
}

// ListEvents returns all events and reservations.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.Store.ListEvents(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to list events", err)
		return
	}
	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, toEventDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ScheduleEvent decides an event booking and persists approvals.
func (h *Handler) ScheduleEvent(w http.ResponseWriter, r *http.Request) {
	h.book(w, r, false)
}

// ReserveRoom decides a member room reservation and persists approvals.
func (h *Handler) ReserveRoom(w http.ResponseWriter, r *http.Request) {
	h.book(w, r, true)
}

func (h *Handler) book(w http.ResponseWriter, r *http.Request, reservation bool) {
	var req BookingRequestDTO
	if !h.decode(w, r, &req) {
		return
	}

	bookingReq, ok := h.parseBooking(w, req)
	if !ok {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	snap, err := h.Store.LoadSnapshot(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}

	today := h.today()
	var decision engine.BookingDecision
	if reservation {
		decision, err = h.sched.ReserveRoom(snap, bookingReq, today)
	} else {
		decision, err = h.sched.ScheduleEvent(snap, bookingReq, today)
	}
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid booking request", err)
		return
	}
	if !decision.Approved {
		h.Logger.Info("booking rejected",
			zap.String("room_id", req.RoomID),
			zap.String("date", req.Date),
			zap.String("reason", string(decision.Rejection.Reason)))
		writeJSON(w, http.StatusOK, BookingDTO{Rejection: toRejectionDTO(decision.Rejection)})
		return
	}

	event := decision.Event
	event.ID = engine.EventID(uuid.NewString())
	if err := h.Store.SaveEvent(r.Context(), event); err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to save event", err)
		return
	}

	h.Logger.Info("booking approved",
		zap.String("event_id", string(event.ID)),
		zap.String("room_id", req.RoomID),
		zap.String("date", req.Date))
	dto := toEventDTO(event)
	writeJSON(w, http.StatusCreated, BookingDTO{Approved: true, Event: &dto})
}

// CancelEvent decides a cancellation and persists the status change and any
// late fee.
func (h *Handler) CancelEvent(w http.ResponseWriter, r *http.Request) {
	id := engine.EventID(chi.URLParam(r, "id"))
	var req CancelEventRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	snap, err := h.Store.LoadSnapshot(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}

	today := h.today()
	decision, err := h.sched.Cancel(snap, engine.CancellationRequest{
		EventID:  id,
		Now:      h.Now(),
		Override: req.Override,
	})
	if err != nil {
		if errors.Is(err, engine.ErrUnknownRecord) {
			h.writeError(w, http.StatusNotFound, "Event not found", nil)
			return
		}
		h.writeError(w, http.StatusBadRequest, "Invalid cancellation", err)
		return
	}
	if !decision.Approved {
		writeJSON(w, http.StatusOK, CancellationDTO{Rejection: toRejectionDTO(decision.Rejection)})
		return
	}

	event, _ := snap.EventByID(id)
	event.Status = engine.EventCanceled

	err = h.Store.WithTx(r.Context(), func(tx engine.RecordStore) error {
		if err := tx.SaveEvent(r.Context(), event); err != nil {
			return err
		}
		if decision.LateFee.IsPositive() && event.Organizer != "" {
			return tx.SaveFine(r.Context(), engine.Fine{
				ID:           engine.FineID(uuid.NewString()),
				MemberID:     event.Organizer,
				Violation:    engine.ViolationLateCancellation,
				Amount:       decision.LateFee,
				AssessedDate: today,
				Status:       engine.FineOutstanding,
			})
		}
		return nil
	})
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to commit cancellation", err)
		return
	}

	dto := CancellationDTO{Approved: true}
	if decision.LateFee.IsPositive() {
		dto.LateFee = decision.LateFee.StringFixed(2)
	}
	writeJSON(w, http.StatusOK, dto)
}

// =============================================================================
// OPERATIONS
// =============================================================================

// GetSummary returns the operational summary; ?format=csv streams the
// flattened report.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	snap, err := h.Store.LoadSnapshot(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}

	summary := reports.Summarize(snap, h.today())
	if r.URL.Query().Get("format") == "csv" {
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="summary_report.csv"`)
		if err := reports.WriteSummaryCSV(w, summary); err != nil {
			h.Logger.Error("failed to stream summary csv", zap.Error(err))
		}
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Simulate runs one simulated day against the live records and persists the
// resulting loans, returns, fines, and bookings.
func (h *Handler) Simulate(w http.ResponseWriter, r *http.Request) {
	var req SimulateRequest
	if !h.decode(w, r, &req) {
		return
	}

	day, ok := h.parseOptionalDate(w, req.Date, "date")
	if !ok {
		return
	}
	if day.IsZero() {
		day = h.today()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	snap, err := h.Store.LoadSnapshot(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}

	simulator := sim.New(h.Policy, sim.DefaultConfig(req.Seed))
	result, err := simulator.RunDay(snap, day)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Simulation failed", err)
		return
	}

	// Persist the whole day atomically: the mutated snapshot holds every
	// approved outcome.
	err = h.Store.WithTx(r.Context(), func(tx engine.RecordStore) error {
		for _, l := range snap.Loans {
			if err := tx.SaveLoan(r.Context(), l); err != nil {
				return err
			}
		}
		for _, it := range snap.Items {
			if err := tx.SaveItem(r.Context(), it); err != nil {
				return err
			}
		}
		for _, f := range snap.Fines {
			if err := tx.SaveFine(r.Context(), f); err != nil {
				return err
			}
		}
		for _, e := range snap.Events {
			if err := tx.SaveEvent(r.Context(), e); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "Failed to commit simulation", err)
		return
	}

	h.Logger.Info("day simulated",
		zap.Int64("seed", req.Seed),
		zap.String("day", day.String()),
		zap.Int("approved", result.Approved()))
	writeJSON(w, http.StatusOK, result)
}

// =============================================================================
// HELPERS
// =============================================================================

// today truncates the injected instant to the engine's day granularity.
func (h *Handler) today() engine.Date {
	return engine.DateOf(h.Now())
}

// decode unmarshals and validates a request body, writing a 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.writeError(w, http.StatusBadRequest, "Validation failed", err)
		return false
	}
	return true
}

func (h *Handler) parseOptionalDate(w http.ResponseWriter, s, field string) (engine.Date, bool) {
	if s == "" {
		return engine.Date{}, true
	}
	d, err := engine.ParseDate(s)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s format (use YYYY-MM-DD)", field), err)
		return engine.Date{}, false
	}
	return d, true
}

func (h *Handler) parseBooking(w http.ResponseWriter, req BookingRequestDTO) (engine.BookingRequest, bool) {
	date, err := engine.ParseDate(req.Date)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid date format (use YYYY-MM-DD)", err)
		return engine.BookingRequest{}, false
	}
	start, err := engine.ParseClockTime(req.StartTime)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid start_time format (use HH:MM)", err)
		return engine.BookingRequest{}, false
	}
	end, err := engine.ParseClockTime(req.EndTime)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid end_time format (use HH:MM)", err)
		return engine.BookingRequest{}, false
	}
	bookingDate, ok := h.parseOptionalDate(w, req.BookingDate, "booking_date")
	if !ok {
		return engine.BookingRequest{}, false
	}

	return engine.BookingRequest{
		Name:               req.Name,
		RoomID:             engine.RoomID(req.RoomID),
		Date:               date,
		StartTime:          start,
		EndTime:            end,
		Organizer:          engine.MemberID(req.Organizer),
		ExpectedAttendance: req.ExpectedAttendance,
		BookingDate:        bookingDate,
	}, true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
		h.Logger.Warn(message, zap.Error(err), zap.Int("status", status))
	}
	writeJSON(w, status, resp)
}
