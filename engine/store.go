/*
store.go - Persistence interfaces for library records

PURPOSE:
  Defines the interface between the validators and the database. The
  validators themselves never touch storage: callers load a Snapshot, decide
  against it, and persist approved outcomes back through these interfaces.

KEY INTERFACES:
  RecordStore: CRUD for members, items, rooms plus the operational records
               (loans, fines, events) the validators decide over
  TxStore:     Atomic multi-record writes (checkout = loan insert + item
               status flip; return = loan close + fines + item status)

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: production SQLite

SEE ALSO:
  - snapshot.go: the in-memory view these interfaces load
*/
package engine

import "context"

// RecordStore persists library records. Implementations must keep
// LoadSnapshot consistent with the individual getters.
type RecordStore interface {
	// LoadSnapshot returns the full record set as one consistent view.
	// Decisions for a batch are made against a single snapshot.
	LoadSnapshot(ctx context.Context) (*Snapshot, error)

	SaveMember(ctx context.Context, m Member) error
	GetMember(ctx context.Context, id MemberID) (Member, error)
	ListMembers(ctx context.Context) ([]Member, error)

	SaveItem(ctx context.Context, it Item) error
	GetItem(ctx context.Context, id ItemID) (Item, error)
	ListItems(ctx context.Context) ([]Item, error)

	SaveLoan(ctx context.Context, l Loan) error
	GetLoan(ctx context.Context, id LoanID) (Loan, error)
	ListLoans(ctx context.Context) ([]Loan, error)

	SaveFine(ctx context.Context, f Fine) error
	ListFines(ctx context.Context) ([]Fine, error)

	SaveEvent(ctx context.Context, e Event) error
	GetEvent(ctx context.Context, id EventID) (Event, error)
	ListEvents(ctx context.Context) ([]Event, error)

	SaveRoom(ctx context.Context, r Room) error
	ListRooms(ctx context.Context) ([]Room, error)
}

// TxStore wraps RecordStore with transaction support. Approving a checkout
// writes the loan and the item status together; if fn returns an error the
// whole write is rolled back.
type TxStore interface {
	RecordStore

	WithTx(ctx context.Context, fn func(RecordStore) error) error
}
