/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements engine.RecordStore and engine.TxStore using SQLite. In
  production, the same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

KEY TABLES:
  members:  Member records with status and term dates
  items:    Circulating inventory with replacement values
  loans:    Checkout transactions; return_date NULL while active
  fines:    Assessed fees with settlement status
  events:   Room bookings (events and member reservations)
  rooms:    The room inventory with capacities and features

INDEXES:
  - idx_loans_member_status: active-loan counting (hot path for checkouts)
  - idx_fines_member_status: outstanding-fine summing (hot path)
  - idx_events_room_date:    conflict candidate lookup
  - idx_members_email:       case-insensitive duplicate email enforcement

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. With PostgreSQL, database-level
  concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/library.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - engine/store.go: Interface definitions
  - engine/snapshot.go: The in-memory view LoadSnapshot produces
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
	"github.com/readwell/library-engine/engine"
	"github.com/shopspring/decimal"
)

// Store implements engine.RecordStore and engine.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS members (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		address TEXT,
		email TEXT NOT NULL,
		phone TEXT,
		membership_type TEXT NOT NULL,
		join_date TEXT NOT NULL,
		expiry_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'active'
	);

	-- Duplicate email detection is case-insensitive
	CREATE UNIQUE INDEX IF NOT EXISTS idx_members_email
		ON members(LOWER(email));

	CREATE TABLE IF NOT EXISTS items (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		item_type TEXT NOT NULL,
		replacement_value TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'available'
	);

	CREATE INDEX IF NOT EXISTS idx_items_status
		ON items(status);

	CREATE TABLE IF NOT EXISTS loans (
		id TEXT PRIMARY KEY,
		member_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		checkout_date TEXT NOT NULL,
		due_date TEXT NOT NULL,
		return_date TEXT,
		status TEXT NOT NULL DEFAULT 'active'
	);

	-- Active-loan counting for the item limit check (hot path)
	CREATE INDEX IF NOT EXISTS idx_loans_member_status
		ON loans(member_id, status);
	-- One active loan per item at a time
	CREATE UNIQUE INDEX IF NOT EXISTS idx_loans_item_active
		ON loans(item_id) WHERE status = 'active';

	CREATE TABLE IF NOT EXISTS fines (
		id TEXT PRIMARY KEY,
		member_id TEXT NOT NULL,
		item_id TEXT,
		violation TEXT NOT NULL,
		amount TEXT NOT NULL,
		assessed_date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'outstanding'
	);

	-- Outstanding-fine summing for the threshold check (hot path)
	CREATE INDEX IF NOT EXISTS idx_fines_member_status
		ON fines(member_id, status);

	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		event_date TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		room_id TEXT NOT NULL,
		organizer TEXT,
		expected_attendance INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending'
	);

	-- Conflict candidate lookup
	CREATE INDEX IF NOT EXISTS idx_events_room_date
		ON events(room_id, event_date);
	CREATE INDEX IF NOT EXISTS idx_events_organizer_date
		ON events(organizer, event_date);

	CREATE TABLE IF NOT EXISTS rooms (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		capacity INTEGER NOT NULL,
		floor INTEGER NOT NULL DEFAULT 0,
		features TEXT,
		available BOOLEAN NOT NULL DEFAULT TRUE
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SNAPSHOT
// =============================================================================

// LoadSnapshot reads every record collection in one database transaction so
// the snapshot is internally consistent.
func (s *Store) LoadSnapshot(ctx context.Context) (*engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to begin snapshot read: %w", err)
	}
	defer tx.Rollback()

	return loadSnapshot(ctx, tx)
}

func loadSnapshot(ctx context.Context, db querier) (*engine.Snapshot, error) {
	snap := &engine.Snapshot{}
	var err error
	if snap.Members, err = queryMembers(ctx, db, "SELECT "+memberCols+" FROM members ORDER BY id"); err != nil {
		return nil, err
	}
	if snap.Items, err = queryItems(ctx, db, "SELECT "+itemCols+" FROM items ORDER BY id"); err != nil {
		return nil, err
	}
	if snap.Loans, err = queryLoans(ctx, db, "SELECT "+loanCols+" FROM loans ORDER BY id"); err != nil {
		return nil, err
	}
	if snap.Fines, err = queryFines(ctx, db, "SELECT "+fineCols+" FROM fines ORDER BY id"); err != nil {
		return nil, err
	}
	if snap.Events, err = queryEvents(ctx, db, "SELECT "+eventCols+" FROM events ORDER BY id"); err != nil {
		return nil, err
	}
	if snap.Rooms, err = queryRooms(ctx, db, "SELECT "+roomCols+" FROM rooms ORDER BY id"); err != nil {
		return nil, err
	}
	return snap, nil
}

// =============================================================================
// MEMBERS
// =============================================================================

const memberCols = "id, name, address, email, phone, membership_type, join_date, expiry_date, status"

// SaveMember inserts or replaces a member record.
func (s *Store) SaveMember(ctx context.Context, m engine.Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveMember(ctx, s.db, m)
}

func saveMember(ctx context.Context, db execer, m engine.Member) error {
	query := `
		INSERT INTO members (` + memberCols + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			email = excluded.email,
			phone = excluded.phone,
			membership_type = excluded.membership_type,
			join_date = excluded.join_date,
			expiry_date = excluded.expiry_date,
			status = excluded.status
	`
	_, err := db.ExecContext(ctx, query,
		m.ID, m.Name, m.Address, m.Email, m.Phone, m.Type,
		m.JoinDate.String(), m.ExpiryDate.String(), m.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to save member %s: %w", m.ID, err)
	}
	return nil
}

// GetMember returns one member by ID.
func (s *Store) GetMember(ctx context.Context, id engine.MemberID) (engine.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getMember(ctx, s.db, id)
}

func getMember(ctx context.Context, db querier, id engine.MemberID) (engine.Member, error) {
	members, err := queryMembers(ctx, db, "SELECT "+memberCols+" FROM members WHERE id = ?", id)
	if err != nil {
		return engine.Member{}, err
	}
	if len(members) == 0 {
		return engine.Member{}, &engine.UnknownRecordError{Kind: "member", ID: string(id)}
	}
	return members[0], nil
}

// ListMembers returns all members ordered by ID.
func (s *Store) ListMembers(ctx context.Context) ([]engine.Member, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryMembers(ctx, s.db, "SELECT "+memberCols+" FROM members ORDER BY id")
}

func queryMembers(ctx context.Context, db querier, query string, args ...any) ([]engine.Member, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query members: %w", err)
	}
	defer rows.Close()

	var members []engine.Member
	for rows.Next() {
		var m engine.Member
		var joinDate, expiryDate string
		if err := rows.Scan(&m.ID, &m.Name, &m.Address, &m.Email, &m.Phone,
			&m.Type, &joinDate, &expiryDate, &m.Status); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		if m.JoinDate, err = engine.ParseDate(joinDate); err != nil {
			return nil, fmt.Errorf("member %s join_date: %w", m.ID, err)
		}
		if m.ExpiryDate, err = engine.ParseDate(expiryDate); err != nil {
			return nil, fmt.Errorf("member %s expiry_date: %w", m.ID, err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

// =============================================================================
// ITEMS
// =============================================================================

const itemCols = "id, title, item_type, replacement_value, status"

// SaveItem inserts or replaces an item record.
func (s *Store) SaveItem(ctx context.Context, it engine.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveItem(ctx, s.db, it)
}

func saveItem(ctx context.Context, db execer, it engine.Item) error {
	query := `
		INSERT INTO items (` + itemCols + `)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			item_type = excluded.item_type,
			replacement_value = excluded.replacement_value,
			status = excluded.status
	`
	_, err := db.ExecContext(ctx, query,
		it.ID, it.Title, it.Type, it.ReplacementValue.String(), it.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to save item %s: %w", it.ID, err)
	}
	return nil
}

// GetItem returns one item by ID.
func (s *Store) GetItem(ctx context.Context, id engine.ItemID) (engine.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getItem(ctx, s.db, id)
}

func getItem(ctx context.Context, db querier, id engine.ItemID) (engine.Item, error) {
	items, err := queryItems(ctx, db, "SELECT "+itemCols+" FROM items WHERE id = ?", id)
	if err != nil {
		return engine.Item{}, err
	}
	if len(items) == 0 {
		return engine.Item{}, &engine.UnknownRecordError{Kind: "item", ID: string(id)}
	}
	return items[0], nil
}

// ListItems returns all items ordered by ID.
func (s *Store) ListItems(ctx context.Context) ([]engine.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryItems(ctx, s.db, "SELECT "+itemCols+" FROM items ORDER BY id")
}

func queryItems(ctx context.Context, db querier, query string, args ...any) ([]engine.Item, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []engine.Item
	for rows.Next() {
		var it engine.Item
		var value string
		if err := rows.Scan(&it.ID, &it.Title, &it.Type, &value, &it.Status); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		if it.ReplacementValue, err = decimal.NewFromString(value); err != nil {
			return nil, fmt.Errorf("item %s replacement_value: %w", it.ID, err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// =============================================================================
// LOANS
// =============================================================================

const loanCols = "id, member_id, item_id, checkout_date, due_date, return_date, status"

// SaveLoan inserts or replaces a loan record.
func (s *Store) SaveLoan(ctx context.Context, l engine.Loan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveLoan(ctx, s.db, l)
}

func saveLoan(ctx context.Context, db execer, l engine.Loan) error {
	query := `
		INSERT INTO loans (` + loanCols + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			return_date = excluded.return_date,
			status = excluded.status
	`
	_, err := db.ExecContext(ctx, query,
		l.ID, l.MemberID, l.ItemID,
		l.CheckoutDate.String(), l.DueDate.String(),
		nullDate(l.ReturnDate), l.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to save loan %s: %w", l.ID, err)
	}
	return nil
}

// GetLoan returns one loan by ID.
func (s *Store) GetLoan(ctx context.Context, id engine.LoanID) (engine.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getLoan(ctx, s.db, id)
}

func getLoan(ctx context.Context, db querier, id engine.LoanID) (engine.Loan, error) {
	loans, err := queryLoans(ctx, db, "SELECT "+loanCols+" FROM loans WHERE id = ?", id)
	if err != nil {
		return engine.Loan{}, err
	}
	if len(loans) == 0 {
		return engine.Loan{}, &engine.UnknownRecordError{Kind: "loan", ID: string(id)}
	}
	return loans[0], nil
}

// ListLoans returns all loans ordered by ID.
func (s *Store) ListLoans(ctx context.Context) ([]engine.Loan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryLoans(ctx, s.db, "SELECT "+loanCols+" FROM loans ORDER BY id")
}

func queryLoans(ctx context.Context, db querier, query string, args ...any) ([]engine.Loan, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query loans: %w", err)
	}
	defer rows.Close()

	var loans []engine.Loan
	for rows.Next() {
		var l engine.Loan
		var checkout, due string
		var returned sql.NullString
		if err := rows.Scan(&l.ID, &l.MemberID, &l.ItemID, &checkout, &due, &returned, &l.Status); err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		if l.CheckoutDate, err = engine.ParseDate(checkout); err != nil {
			return nil, fmt.Errorf("loan %s checkout_date: %w", l.ID, err)
		}
		if l.DueDate, err = engine.ParseDate(due); err != nil {
			return nil, fmt.Errorf("loan %s due_date: %w", l.ID, err)
		}
		if returned.Valid {
			if l.ReturnDate, err = engine.ParseDate(returned.String); err != nil {
				return nil, fmt.Errorf("loan %s return_date: %w", l.ID, err)
			}
		}
		loans = append(loans, l)
	}
	return loans, rows.Err()
}

// =============================================================================
// FINES
// =============================================================================

const fineCols = "id, member_id, item_id, violation, amount, assessed_date, status"

// SaveFine inserts or replaces a fine record.
func (s *Store) SaveFine(ctx context.Context, f engine.Fine) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveFine(ctx, s.db, f)
}

func saveFine(ctx context.Context, db execer, f engine.Fine) error {
	query := `
		INSERT INTO fines (` + fineCols + `)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			status = excluded.status
	`
	_, err := db.ExecContext(ctx, query,
		f.ID, f.MemberID, f.ItemID, f.Violation,
		f.Amount.String(), f.AssessedDate.String(), f.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to save fine %s: %w", f.ID, err)
	}
	return nil
}

// ListFines returns all fines ordered by ID.
func (s *Store) ListFines(ctx context.Context) ([]engine.Fine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryFines(ctx, s.db, "SELECT "+fineCols+" FROM fines ORDER BY id")
}

func queryFines(ctx context.Context, db querier, query string, args ...any) ([]engine.Fine, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fines: %w", err)
	}
	defer rows.Close()

	var fines []engine.Fine
	for rows.Next() {
		var f engine.Fine
		var amount, assessed string
		if err := rows.Scan(&f.ID, &f.MemberID, &f.ItemID, &f.Violation, &amount, &assessed, &f.Status); err != nil {
			return nil, fmt.Errorf("failed to scan fine: %w", err)
		}
		if f.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("fine %s amount: %w", f.ID, err)
		}
		if f.AssessedDate, err = engine.ParseDate(assessed); err != nil {
			return nil, fmt.Errorf("fine %s assessed_date: %w", f.ID, err)
		}
		fines = append(fines, f)
	}
	return fines, rows.Err()
}

// =============================================================================
// EVENTS
// =============================================================================

const eventCols = "id, name, event_date, start_time, end_time, room_id, organizer, expected_attendance, status"

// SaveEvent inserts or replaces an event record.
func (s *Store) SaveEvent(ctx context.Context, e engine.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveEvent(ctx, s.db, e)
}

func saveEvent(ctx context.Context, db execer, e engine.Event) error {
	query := `
		INSERT INTO events (` + eventCols + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			event_date = excluded.event_date,
			start_time = excluded.start_time,
			end_time = excluded.end_time,
			room_id = excluded.room_id,
			organizer = excluded.organizer,
			expected_attendance = excluded.expected_attendance,
			status = excluded.status
	`
	_, err := db.ExecContext(ctx, query,
		e.ID, e.Name, e.Date.String(), e.StartTime.String(), e.EndTime.String(),
		e.RoomID, e.Organizer, e.ExpectedAttendance, e.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to save event %s: %w", e.ID, err)
	}
	return nil
}

// GetEvent returns one event by ID.
func (s *Store) GetEvent(ctx context.Context, id engine.EventID) (engine.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getEvent(ctx, s.db, id)
}

func getEvent(ctx context.Context, db querier, id engine.EventID) (engine.Event, error) {
	events, err := queryEvents(ctx, db, "SELECT "+eventCols+" FROM events WHERE id = ?", id)
	if err != nil {
		return engine.Event{}, err
	}
	if len(events) == 0 {
		return engine.Event{}, &engine.UnknownRecordError{Kind: "event", ID: string(id)}
	}
	return events[0], nil
}

// ListEvents returns all events ordered by ID.
func (s *Store) ListEvents(ctx context.Context) ([]engine.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryEvents(ctx, s.db, "SELECT "+eventCols+" FROM events ORDER BY id")
}

func queryEvents(ctx context.Context, db querier, query string, args ...any) ([]engine.Event, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []engine.Event
	for rows.Next() {
		var e engine.Event
		var eventDate, start, end string
		if err := rows.Scan(&e.ID, &e.Name, &eventDate, &start, &end,
			&e.RoomID, &e.Organizer, &e.ExpectedAttendance, &e.Status); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if e.Date, err = engine.ParseDate(eventDate); err != nil {
			return nil, fmt.Errorf("event %s event_date: %w", e.ID, err)
		}
		if e.StartTime, err = engine.ParseClockTime(start); err != nil {
			return nil, fmt.Errorf("event %s start_time: %w", e.ID, err)
		}
		if e.EndTime, err = engine.ParseClockTime(end); err != nil {
			return nil, fmt.Errorf("event %s end_time: %w", e.ID, err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// =============================================================================
// ROOMS
// =============================================================================

const roomCols = "id, name, capacity, floor, features, available"

// SaveRoom inserts or replaces a room record.
func (s *Store) SaveRoom(ctx context.Context, r engine.Room) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return saveRoom(ctx, s.db, r)
}

func saveRoom(ctx context.Context, db execer, r engine.Room) error {
	query := `
		INSERT INTO rooms (` + roomCols + `)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			capacity = excluded.capacity,
			floor = excluded.floor,
			features = excluded.features,
			available = excluded.available
	`
	_, err := db.ExecContext(ctx, query,
		r.ID, r.Name, r.Capacity, r.Floor, strings.Join(r.Features, ","), r.Available,
	)
	if err != nil {
		return fmt.Errorf("failed to save room %s: %w", r.ID, err)
	}
	return nil
}

// ListRooms returns all rooms ordered by ID.
func (s *Store) ListRooms(ctx context.Context) ([]engine.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryRooms(ctx, s.db, "SELECT "+roomCols+" FROM rooms ORDER BY id")
}

func queryRooms(ctx context.Context, db querier, query string, args ...any) ([]engine.Room, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rooms: %w", err)
	}
	defer rows.Close()

	var rooms []engine.Room
	for rows.Next() {
		var r engine.Room
		var features string
		if err := rows.Scan(&r.ID, &r.Name, &r.Capacity, &r.Floor, &features, &r.Available); err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		if features != "" {
			r.Features = strings.Split(features, ",")
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes fn within a database transaction. If fn returns an error
// the transaction is rolled back, otherwise it is committed.
func (s *Store) WithTx(ctx context.Context, fn func(engine.RecordStore) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// txStore is the RecordStore view inside WithTx. It reuses the package-level
// save/query helpers against the open transaction and takes no locks: the
// outer WithTx holds the write lock.
type txStore struct {
	tx *sql.Tx
}

func (t *txStore) LoadSnapshot(ctx context.Context) (*engine.Snapshot, error) {
	return loadSnapshot(ctx, t.tx)
}

func (t *txStore) SaveMember(ctx context.Context, m engine.Member) error { return saveMember(ctx, t.tx, m) }
func (t *txStore) SaveItem(ctx context.Context, it engine.Item) error    { return saveItem(ctx, t.tx, it) }
func (t *txStore) SaveLoan(ctx context.Context, l engine.Loan) error     { return saveLoan(ctx, t.tx, l) }
func (t *txStore) SaveFine(ctx context.Context, f engine.Fine) error     { return saveFine(ctx, t.tx, f) }
func (t *txStore) SaveEvent(ctx context.Context, e engine.Event) error   { return saveEvent(ctx, t.tx, e) }
func (t *txStore) SaveRoom(ctx context.Context, r engine.Room) error     { return saveRoom(ctx, t.tx, r) }

func (t *txStore) GetMember(ctx context.Context, id engine.MemberID) (engine.Member, error) {
	return getMember(ctx, t.tx, id)
}
func (t *txStore) GetItem(ctx context.Context, id engine.ItemID) (engine.Item, error) {
	return getItem(ctx, t.tx, id)
}
func (t *txStore) GetLoan(ctx context.Context, id engine.LoanID) (engine.Loan, error) {
	return getLoan(ctx, t.tx, id)
}
func (t *txStore) GetEvent(ctx context.Context, id engine.EventID) (engine.Event, error) {
	return getEvent(ctx, t.tx, id)
}

func (t *txStore) ListMembers(ctx context.Context) ([]engine.Member, error) {
	return queryMembers(ctx, t.tx, "SELECT "+memberCols+" FROM members ORDER BY id")
}
func (t *txStore) ListItems(ctx context.Context) ([]engine.Item, error) {
	return queryItems(ctx, t.tx, "SELECT "+itemCols+" FROM items ORDER BY id")
}
func (t *txStore) ListLoans(ctx context.Context) ([]engine.Loan, error) {
	return queryLoans(ctx, t.tx, "SELECT "+loanCols+" FROM loans ORDER BY id")
}
func (t *txStore) ListFines(ctx context.Context) ([]engine.Fine, error) {
	return queryFines(ctx, t.tx, "SELECT "+fineCols+" FROM fines ORDER BY id")
}
func (t *txStore) ListEvents(ctx context.Context) ([]engine.Event, error) {
	return queryEvents(ctx, t.tx, "SELECT "+eventCols+" FROM events ORDER BY id")
}
func (t *txStore) ListRooms(ctx context.Context) ([]engine.Room, error) {
	return queryRooms(ctx, t.tx, "SELECT "+roomCols+" FROM rooms ORDER BY id")
}

// =============================================================================
// HELPERS
// =============================================================================

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func nullDate(d engine.Date) any {
	if d.IsZero() {
		return nil
	}
	return d.String()
}
