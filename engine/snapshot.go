/*
snapshot.go - Record collections supplied to the validators

PURPOSE:
  A Snapshot bundles the read-only record collections a validator consults.
  The engine borrows the snapshot for the duration of one decision; it never
  writes to it. Batch callers (the day simulator, an evaluate-then-commit
  loop) append each approval's effects back onto their snapshot so later
  decisions in the same batch see earlier winners - limit counts stay
  accurate and two requests cannot both take the last copy or the same room
  slot.

CONCURRENCY:
  Snapshot has no locking. Callers evaluating concurrently against shared
  mutable state must serialize evaluate-then-commit pairs per contended
  resource (per item, per room-date); the engine only supplies the decision
  function.
*/
package engine

// Snapshot is the record state one decision is evaluated against.
type Snapshot struct {
	Members []Member
	Items   []Item
	Loans   []Loan
	Fines   []Fine
	Events  []Event
	Rooms   []Room
}

// Lookup helpers return (zero, false) when absent; the validators translate
// absence into the appropriate reason code or structural error.

func (s *Snapshot) MemberByID(id MemberID) (Member, bool) {
	for _, m := range s.Members {
		if m.ID == id {
			return m, true
		}
	}
	return Member{}, false
}

func (s *Snapshot) ItemByID(id ItemID) (Item, bool) {
	for _, i := range s.Items {
		if i.ID == id {
			return i, true
		}
	}
	return Item{}, false
}

func (s *Snapshot) LoanByID(id LoanID) (Loan, bool) {
	for _, l := range s.Loans {
		if l.ID == id {
			return l, true
		}
	}
	return Loan{}, false
}

func (s *Snapshot) RoomByID(id RoomID) (Room, bool) {
	for _, r := range s.Rooms {
		if r.ID == id {
			return r, true
		}
	}
	return Room{}, false
}

func (s *Snapshot) EventByID(id EventID) (Event, bool) {
	for _, e := range s.Events {
		if e.ID == id {
			return e, true
		}
	}
	return Event{}, false
}

// =============================================================================
// BATCH EXTENSION - Feed approvals back for in-batch correctness
// =============================================================================

// AddLoan appends an approved checkout and flips the item to checked_out so
// subsequent decisions in the batch see both.
func (s *Snapshot) AddLoan(l Loan) {
	s.Loans = append(s.Loans, l)
	s.setItemStatus(l.ItemID, ItemCheckedOut)
}

// ApplyReturn marks a loan returned and applies the decided item status and
// any assessed fines.
func (s *Snapshot) ApplyReturn(loanID LoanID, returnDate Date, d ReturnDecision, fines ...Fine) {
	for i := range s.Loans {
		if s.Loans[i].ID == loanID {
			s.Loans[i].ReturnDate = returnDate
			s.Loans[i].Status = LoanReturned
			s.setItemStatus(s.Loans[i].ItemID, d.ItemStatus)
			break
		}
	}
	s.Fines = append(s.Fines, fines...)
}

// AddEvent appends an approved booking.
func (s *Snapshot) AddEvent(e Event) {
	s.Events = append(s.Events, e)
}

// CancelEvent flips an event to canceled.
func (s *Snapshot) CancelEvent(id EventID) {
	for i := range s.Events {
		if s.Events[i].ID == id {
			s.Events[i].Status = EventCanceled
			return
		}
	}
}

// AddMember appends a registered member.
func (s *Snapshot) AddMember(m Member) {
	s.Members = append(s.Members, m)
}

// AddFine appends an assessed fine.
func (s *Snapshot) AddFine(f Fine) {
	s.Fines = append(s.Fines, f)
}

func (s *Snapshot) setItemStatus(id ItemID, status ItemStatus) {
	for i := range s.Items {
		if s.Items[i].ID == id {
			s.Items[i].Status = status
			return
		}
	}
}
