package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ascend/internal/domain/account"
)

// SeedAdminDeps holds dependencies for SeedAdmin.
type SeedAdminDeps struct {
	AccountStore AccountStoreForAuth
}

// ExecuteSeedAdmin ensures the configured administrator account exists.
// Idempotent: if an account with the admin email already exists, nothing
// changes.
// PRE: adminEmail is a valid email address
// POST: An admin account for adminEmail exists
func ExecuteSeedAdmin(ctx context.Context, deps SeedAdminDeps, adminEmail string) error {
	if _, err := deps.AccountStore.GetByEmail(ctx, adminEmail); err == nil {
		return nil
	}

	acct := account.Account{
		ID:        uuid.New().String(),
		Email:     adminEmail,
		Role:      account.RoleAdmin,
		CreatedAt: time.Now(),
	}
	if err := acct.Validate(); err != nil {
		return fmt.Errorf("invalid admin email %q: %w", adminEmail, err)
	}
	if err := deps.AccountStore.Save(ctx, acct); err != nil {
		return fmt.Errorf("seeding admin account: %w", err)
	}

	slog.Info("auth_event", "event", "admin_seeded", "email", adminEmail)
	return nil
}
