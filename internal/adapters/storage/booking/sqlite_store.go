package booking

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ascend/internal/adapters/storage"
	domain "ascend/internal/domain/booking"
)

const timeFormat = "2006-01-02T15:04:05.999999999Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// Compile-time check that *SQLiteStore satisfies Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new BookingStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const selectColumns = "SELECT id, user_email, day, time, status, created_at FROM session_request"

// GetByID retrieves a SessionRequest by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.SessionRequest, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)

	entity, err := scanRequest(row.Scan)
	if err == sql.ErrNoRows {
		return domain.SessionRequest{}, fmt.Errorf("session request not found: %w", err)
	}
	return entity, err
}

// Save persists a SessionRequest to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.SessionRequest) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session_request (id, user_email, day, time, status, created_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET user_email=excluded.user_email, day=excluded.day, time=excluded.time, status=excluded.status`,
		entity.ID,
		entity.UserEmail,
		entity.Day,
		entity.Time,
		entity.Status,
		entity.CreatedAt.Format(timeFormat),
	)
	return err
}

// List retrieves all SessionRequests, oldest first.
// PRE: none
// POST: Returns every request ordered by creation time
func (s *SQLiteStore) List(ctx context.Context) ([]domain.SessionRequest, error) {
	return s.query(ctx, selectColumns+" ORDER BY created_at, rowid")
}

// ListByEmail retrieves the requests submitted by one user.
// PRE: email is non-empty
// POST: Returns matching requests ordered by creation time
func (s *SQLiteStore) ListByEmail(ctx context.Context, email string) ([]domain.SessionRequest, error) {
	return s.query(ctx, selectColumns+" WHERE user_email = ? ORDER BY created_at, rowid", email)
}

// ListByStatus retrieves the requests in one status.
// PRE: status is a valid request status
// POST: Returns matching requests ordered by creation time
func (s *SQLiteStore) ListByStatus(ctx context.Context, status string) ([]domain.SessionRequest, error) {
	return s.query(ctx, selectColumns+" WHERE status = ? ORDER BY created_at, rowid", status)
}

// ListBySlot retrieves every request targeting one day/time slot.
// PRE: day and time are non-empty
// POST: Returns matching requests ordered by creation time
func (s *SQLiteStore) ListBySlot(ctx context.Context, day, slotTime string) ([]domain.SessionRequest, error) {
	return s.query(ctx, selectColumns+" WHERE day = ? AND time = ? ORDER BY created_at, rowid", day, slotTime)
}

// ListVisibleTo retrieves the requests a user may see: their own, plus
// everyone's approved requests (those block slots on the schedule).
// PRE: email is non-empty
// POST: Returns matching requests ordered by creation time
func (s *SQLiteStore) ListVisibleTo(ctx context.Context, email string) ([]domain.SessionRequest, error) {
	return s.query(ctx,
		selectColumns+" WHERE user_email = ? OR status = ? ORDER BY created_at, rowid",
		email, domain.StatusApproved)
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]domain.SessionRequest, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.SessionRequest
	for rows.Next() {
		entity, err := scanRequest(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// scanRequest extracts a SessionRequest from a row scanner function.
func scanRequest(scan func(dest ...interface{}) error) (domain.SessionRequest, error) {
	var entity domain.SessionRequest
	var createdAt string
	err := scan(
		&entity.ID,
		&entity.UserEmail,
		&entity.Day,
		&entity.Time,
		&entity.Status,
		&createdAt,
	)
	if err != nil {
		return domain.SessionRequest{}, err
	}
	entity.CreatedAt, _ = parseTime(createdAt)
	return entity, nil
}

func parseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		t, err := time.Parse(f, s)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s)
}
