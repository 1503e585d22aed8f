package account

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"ascend/internal/adapters/storage"
	domain "ascend/internal/domain/account"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	if err := storage.MigrateDB(db, ""); err != nil {
		t.Fatalf("MigrateDB failed: %v", err)
	}
	return NewSQLiteStore(db)
}

func TestSQLiteStore_Save_And_GetByEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	created := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)

	want := domain.Account{
		ID:        "a1",
		Email:     "ana@example.com",
		Age:       16,
		Role:      domain.RoleStudent,
		CreatedAt: created,
	}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.GetByEmail(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != want.ID || got.Age != want.Age || got.Role != want.Role {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
}

func TestSQLiteStore_GetByEmail_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetByEmail(context.Background(), "ghost@example.com")
	if err == nil {
		t.Fatal("expected error for missing account")
	}
}

func loginCode(t *testing.T, id, email, plaintext string, expiresAt, createdAt time.Time) domain.LoginCode {
	t.Helper()
	code := domain.LoginCode{
		ID:        id,
		Email:     email,
		ExpiresAt: expiresAt,
		CreatedAt: createdAt,
	}
	if err := code.SetCode(plaintext); err != nil {
		t.Fatalf("SetCode failed: %v", err)
	}
	return code
}

func TestSQLiteStore_LatestLoginCode_ReturnsNewest(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	old := loginCode(t, "c1", "ana@example.com", "111111", now.Add(domain.CodeTTL), now.Add(-time.Minute))
	fresh := loginCode(t, "c2", "ana@example.com", "222222", now.Add(domain.CodeTTL), now)
	if err := store.SaveLoginCode(ctx, old); err != nil {
		t.Fatalf("SaveLoginCode failed: %v", err)
	}
	if err := store.SaveLoginCode(ctx, fresh); err != nil {
		t.Fatalf("SaveLoginCode failed: %v", err)
	}

	got, err := store.LatestLoginCode(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("LatestLoginCode failed: %v", err)
	}
	if got.ID != "c2" {
		t.Errorf("ID = %q, want c2", got.ID)
	}
	if err := got.Check("222222", now); err != nil {
		t.Errorf("Check on round-tripped code failed: %v", err)
	}
}

func TestSQLiteStore_LatestLoginCode_None(t *testing.T) {
	store := newTestStore(t)

	_, err := store.LatestLoginCode(context.Background(), "ana@example.com")
	if err == nil {
		t.Fatal("expected error when no code exists")
	}
}

func TestSQLiteStore_InvalidateLoginCodes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	code := loginCode(t, "c1", "ana@example.com", "111111", now.Add(domain.CodeTTL), now)
	if err := store.SaveLoginCode(ctx, code); err != nil {
		t.Fatalf("SaveLoginCode failed: %v", err)
	}
	// Another user's code must stay live.
	other := loginCode(t, "c2", "ben@example.com", "222222", now.Add(domain.CodeTTL), now)
	if err := store.SaveLoginCode(ctx, other); err != nil {
		t.Fatalf("SaveLoginCode failed: %v", err)
	}

	if err := store.InvalidateLoginCodes(ctx, "ana@example.com"); err != nil {
		t.Fatalf("InvalidateLoginCodes failed: %v", err)
	}

	got, err := store.LatestLoginCode(ctx, "ana@example.com")
	if err != nil {
		t.Fatalf("LatestLoginCode failed: %v", err)
	}
	if !got.Used {
		t.Error("expected code to be marked used")
	}

	gotOther, err := store.LatestLoginCode(ctx, "ben@example.com")
	if err != nil {
		t.Fatalf("LatestLoginCode failed: %v", err)
	}
	if gotOther.Used {
		t.Error("other user's code must not be invalidated")
	}
}

func TestSQLiteStore_DeleteExpiredLoginCodes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	expired := loginCode(t, "c1", "ana@example.com", "111111", now.Add(-time.Minute), now.Add(-time.Hour))
	used := loginCode(t, "c2", "ben@example.com", "222222", now.Add(domain.CodeTTL), now)
	used.Invalidate()
	live := loginCode(t, "c3", "cam@example.com", "333333", now.Add(domain.CodeTTL), now)

	for _, c := range []domain.LoginCode{expired, used, live} {
		if err := store.SaveLoginCode(ctx, c); err != nil {
			t.Fatalf("SaveLoginCode(%s) failed: %v", c.ID, err)
		}
	}

	n, err := store.DeleteExpiredLoginCodes(ctx, now)
	if err != nil {
		t.Fatalf("DeleteExpiredLoginCodes failed: %v", err)
	}
	if n != 2 {
		t.Errorf("deleted = %d, want 2", n)
	}

	if _, err := store.LatestLoginCode(ctx, "cam@example.com"); err != nil {
		t.Errorf("live code should survive purge: %v", err)
	}
	if _, err := store.LatestLoginCode(ctx, "ana@example.com"); err == nil {
		t.Error("expired code should be gone")
	}
}
