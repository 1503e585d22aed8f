package account

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ascend/internal/adapters/storage"
	domain "ascend/internal/domain/account"
)

const timeFormat = "2006-01-02T15:04:05.999999999Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// Compile-time check that *SQLiteStore satisfies Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new AccountStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByEmail retrieves an Account by email.
// PRE: email is non-empty, already normalized to lowercase
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, email, age, role, created_at FROM account WHERE email = ?", email)

	entity, err := scanAccount(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Account{}, fmt.Errorf("account not found: %w", err)
	}
	return entity, err
}

// Save persists an Account to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Account) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO account (id, email, age, role, created_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET email=excluded.email, age=excluded.age, role=excluded.role`,
		entity.ID,
		entity.Email,
		entity.Age,
		entity.Role,
		entity.CreatedAt.Format(timeFormat),
	)
	return err
}

// SaveLoginCode persists a LoginCode to the database.
// PRE: code has a hashed secret and an expiry
// POST: Code row is inserted
func (s *SQLiteStore) SaveLoginCode(ctx context.Context, code domain.LoginCode) error {
	used := 0
	if code.Used {
		used = 1
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO login_code (id, email, code_hash, expires_at, used, created_at) VALUES (?, ?, ?, ?, ?, ?)",
		code.ID,
		code.Email,
		code.CodeHash,
		code.ExpiresAt.Format(timeFormat),
		used,
		code.CreatedAt.Format(timeFormat),
	)
	return err
}

// LatestLoginCode retrieves the most recently issued code for an email.
// Used codes are still returned so verification can distinguish a burnt
// code from a missing one.
// PRE: email is non-empty
// POST: Returns the newest code or an error if none exists
func (s *SQLiteStore) LatestLoginCode(ctx context.Context, email string) (domain.LoginCode, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, email, code_hash, expires_at, used, created_at FROM login_code WHERE email = ? ORDER BY created_at DESC, rowid DESC LIMIT 1",
		email)

	entity, err := scanLoginCode(row.Scan)
	if err == sql.ErrNoRows {
		return domain.LoginCode{}, fmt.Errorf("login code not found: %w", err)
	}
	return entity, err
}

// InvalidateLoginCodes marks every code for an email as used.
// PRE: email is non-empty
// POST: No unused code remains for the email
func (s *SQLiteStore) InvalidateLoginCodes(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx, "UPDATE login_code SET used = 1 WHERE email = ?", email)
	return err
}

// DeleteExpiredLoginCodes removes codes that expired before the given time,
// along with codes already used.
// PRE: before is the purge cutoff
// POST: Returns the number of rows removed
func (s *SQLiteStore) DeleteExpiredLoginCodes(ctx context.Context, before time.Time) (int, error) {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM login_code WHERE expires_at < ? OR used = 1",
		before.Format(timeFormat))
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}

// scanAccount extracts an Account from a row scanner function.
func scanAccount(scan func(dest ...interface{}) error) (domain.Account, error) {
	var entity domain.Account
	var createdAt string
	err := scan(
		&entity.ID,
		&entity.Email,
		&entity.Age,
		&entity.Role,
		&createdAt,
	)
	if err != nil {
		return domain.Account{}, err
	}
	entity.CreatedAt, _ = parseTime(createdAt)
	return entity, nil
}

// scanLoginCode extracts a LoginCode from a row scanner function.
func scanLoginCode(scan func(dest ...interface{}) error) (domain.LoginCode, error) {
	var entity domain.LoginCode
	var expiresAt, createdAt string
	var used int
	err := scan(
		&entity.ID,
		&entity.Email,
		&entity.CodeHash,
		&expiresAt,
		&used,
		&createdAt,
	)
	if err != nil {
		return domain.LoginCode{}, err
	}
	entity.Used = used != 0
	entity.ExpiresAt, _ = parseTime(expiresAt)
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
