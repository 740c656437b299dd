/*
Package sim simulates a day of library operations against the validators.

PURPOSE:
  Generates a plausible mix of checkouts, returns, and room bookings for one
  day, runs each through the real decision engines, and feeds approvals back
  into the snapshot so later requests in the day see earlier winners. Useful
  for exercising policy configurations and producing demo data.

DETERMINISM:
  The simulator draws from a caller-seeded math/rand source and takes the
  day as an explicit argument. The same seed, day, and starting snapshot
  always produce the same DayResult, so runs are replayable.
*/
package sim

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/readwell/library-engine/engine"
)

// =============================================================================
// CONFIGURATION AND RESULTS
// =============================================================================

// Config bounds the activity volume for one simulated day.
type Config struct {
	Seed         int64
	MinCheckouts int
	MaxCheckouts int
	MinReturns   int
	MaxReturns   int
	MinBookings  int
	MaxBookings  int
}

// DefaultConfig mirrors a quiet branch day.
func DefaultConfig(seed int64) Config {
	return Config{
		Seed:         seed,
		MinCheckouts: 3,
		MaxCheckouts: 8,
		MinReturns:   2,
		MaxReturns:   5,
		MinBookings:  1,
		MaxBookings:  3,
	}
}

// CheckoutOutcome records one attempted checkout.
type CheckoutOutcome struct {
	Request  engine.CheckoutRequest
	Decision engine.CheckoutDecision
	LoanID   engine.LoanID // set when approved
}

// ReturnOutcome records one processed return.
type ReturnOutcome struct {
	Request  engine.ReturnRequest
	Decision engine.ReturnDecision
}

// BookingOutcome records one attempted room booking.
type BookingOutcome struct {
	Request  engine.BookingRequest
	Decision engine.BookingDecision
	EventID  engine.EventID // set when approved
}

// DayResult is everything that happened in one simulated day.
type DayResult struct {
	Day       engine.Date
	Checkouts []CheckoutOutcome
	Returns   []ReturnOutcome
	Bookings  []BookingOutcome
}

// Approved counts the approved outcomes across all activity types.
func (r DayResult) Approved() int {
	n := 0
	for _, c := range r.Checkouts {
		if c.Decision.Approved {
			n++
		}
	}
	for range r.Returns {
		n++
	}
	for _, b := range r.Bookings {
		if b.Decision.Approved {
			n++
		}
	}
	return n
}

// =============================================================================
// SIMULATOR
// =============================================================================

// Simulator drives one day of activity through the validators.
type Simulator struct {
	Policy engine.PolicyTable
	Config Config

	rng *rand.Rand
}

// New creates a simulator with its own seeded random source.
func New(policy engine.PolicyTable, cfg Config) *Simulator {
	return &Simulator{
		Policy: policy,
		Config: cfg,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
	}
}

// RunDay simulates one day. The snapshot is mutated in place: approved
// checkouts, returns, and bookings are applied so the day is internally
// consistent. IDs for new records are derived from the seeded source, so
// replays produce identical snapshots.
func (s *Simulator) RunDay(snap *engine.Snapshot, day engine.Date) (DayResult, error) {
	result := DayResult{Day: day}

	circ := &engine.CirculationEngine{Policy: s.Policy}
	sched := &engine.SchedulingEngine{Policy: s.Policy}

	// Checkouts: active members pick available items
	for i := 0; i < s.intBetween(s.Config.MinCheckouts, s.Config.MaxCheckouts); i++ {
		member, ok := s.pickMember(snap, day)
		if !ok {
			break
		}
		item, ok := s.pickAvailableItem(snap)
		if !ok {
			break
		}
		req := engine.CheckoutRequest{MemberID: member.ID, ItemID: item.ID, Date: day}
		decision, err := circ.Checkout(snap, req, day)
		if err != nil {
			return result, fmt.Errorf("simulated checkout: %w", err)
		}
		outcome := CheckoutOutcome{Request: req, Decision: decision}
		if decision.Approved {
			outcome.LoanID = engine.LoanID(s.newID())
			snap.AddLoan(engine.Loan{
				ID:           outcome.LoanID,
				MemberID:     member.ID,
				ItemID:       item.ID,
				CheckoutDate: day,
				DueDate:      decision.DueDate,
				Status:       engine.LoanActive,
			})
		}
		result.Checkouts = append(result.Checkouts, outcome)
	}

	// Returns: some active loans come back, possibly late
	for i := 0; i < s.intBetween(s.Config.MinReturns, s.Config.MaxReturns); i++ {
		loan, ok := s.pickActiveLoan(snap)
		if !ok {
			break
		}
		req := engine.ReturnRequest{LoanID: loan.ID, ReturnDate: day}
		decision, err := circ.Return(snap, req, day)
		if err != nil {
			return result, fmt.Errorf("simulated return: %w", err)
		}
		var fines []engine.Fine
		if decision.Fine.IsPositive() {
			fines = append(fines, engine.Fine{
				ID:           engine.FineID(s.newID()),
				MemberID:     loan.MemberID,
				ItemID:       loan.ItemID,
				Violation:    engine.ViolationOverdue,
				Amount:       decision.Fine,
				AssessedDate: day,
				Status:       engine.FineOutstanding,
			})
		}
		if decision.Lost {
			fines = append(fines, engine.Fine{
				ID:           engine.FineID(s.newID()),
				MemberID:     loan.MemberID,
				ItemID:       loan.ItemID,
				Violation:    engine.ViolationLostItem,
				Amount:       decision.LostFee,
				AssessedDate: day,
				Status:       engine.FineOutstanding,
			})
		}
		snap.ApplyReturn(loan.ID, day, decision, fines...)
		result.Returns = append(result.Returns, ReturnOutcome{Request: req, Decision: decision})
	}

	// Bookings: members reserve rooms a few days out
	for i := 0; i < s.intBetween(s.Config.MinBookings, s.Config.MaxBookings); i++ {
		member, ok := s.pickMember(snap, day)
		if !ok {
			break
		}
		room, ok := s.pickRoom(snap)
		if !ok {
			break
		}
		eventDay := day.AddDays(s.intBetween(s.Policy.AdvanceNoticeDays, s.Policy.AdvanceNoticeDays+7))
		start := engine.NewClockTime(10+s.rng.Intn(6), 0)
		req := engine.BookingRequest{
			Name:               "Study Session",
			RoomID:             room.ID,
			Date:               eventDay,
			StartTime:          start,
			EndTime:            start + 60,
			Organizer:          member.ID,
			ExpectedAttendance: 1 + s.rng.Intn(room.Capacity),
			BookingDate:        day,
		}
		decision, err := sched.ReserveRoom(snap, req, day)
		if err != nil {
			return result, fmt.Errorf("simulated booking: %w", err)
		}
		outcome := BookingOutcome{Request: req, Decision: decision}
		if decision.Approved {
			event := decision.Event
			event.ID = engine.EventID(s.newID())
			outcome.EventID = event.ID
			snap.AddEvent(event)
		}
		result.Bookings = append(result.Bookings, outcome)
	}

	return result, nil
}

// =============================================================================
// RANDOM PICKS
// =============================================================================

func (s *Simulator) intBetween(min, max int) int {
	if max <= min {
		return min
	}
	return min + s.rng.Intn(max-min+1)
}

// newID derives a UUID from the seeded source so replays mint the same IDs.
func (s *Simulator) newID() string {
	var b [16]byte
	s.rng.Read(b[:])
	id, err := uuid.FromBytes(b[:])
	if err != nil {
		// 16 bytes always form a valid UUID
		panic(err)
	}
	return id.String()
}

func (s *Simulator) pickMember(snap *engine.Snapshot, day engine.Date) (engine.Member, bool) {
	var candidates []engine.Member
	for _, m := range snap.Members {
		if m.EffectiveStatus(day) == engine.MemberActive {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return engine.Member{}, false
	}
	return candidates[s.rng.Intn(len(candidates))], true
}

func (s *Simulator) pickAvailableItem(snap *engine.Snapshot) (engine.Item, bool) {
	var candidates []engine.Item
	for _, it := range snap.Items {
		if it.Status == engine.ItemAvailable {
			candidates = append(candidates, it)
		}
	}
	if len(candidates) == 0 {
		return engine.Item{}, false
	}
	return candidates[s.rng.Intn(len(candidates))], true
}

func (s *Simulator) pickActiveLoan(snap *engine.Snapshot) (engine.Loan, bool) {
	var candidates []engine.Loan
	for _, l := range snap.Loans {
		if l.IsActive() {
			candidates = append(candidates, l)
		}
	}
	if len(candidates) == 0 {
		return engine.Loan{}, false
	}
	return candidates[s.rng.Intn(len(candidates))], true
}

func (s *Simulator) pickRoom(snap *engine.Snapshot) (engine.Room, bool) {
	var candidates []engine.Room
	for _, r := range snap.Rooms {
		if r.Available && r.Capacity > 0 {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return engine.Room{}, false
	}
	return candidates[s.rng.Intn(len(candidates))], true
}
