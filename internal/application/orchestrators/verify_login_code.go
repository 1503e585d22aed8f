package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"ascend/internal/domain/account"
)

// VerifyLoginCodeInput carries input for code verification.
type VerifyLoginCodeInput struct {
	Email string
	Code  string
	Age   int // used only when a new account is created at signup
}

// VerifyLoginCodeResult carries identity info for session creation.
type VerifyLoginCodeResult struct {
	AccountID string
	Email     string
	Role      string
}

// VerifyLoginCodeDeps holds dependencies for VerifyLoginCode.
type VerifyLoginCodeDeps struct {
	AccountStore AccountStoreForAuth
	AdminEmail   string           // the one configured administrator identity
	Now          func() time.Time // nil means time.Now
}

// ExecuteVerifyLoginCode checks a submitted code and resolves the identity.
// The latest code for the email must be unused, unexpired, and match. On
// first sign-in the account is created (signup path); the configured admin
// email always resolves to the admin role.
// PRE: Email and Code are non-empty
// POST: The code is invalidated; returns identity on success
func ExecuteVerifyLoginCode(ctx context.Context, input VerifyLoginCodeInput, deps VerifyLoginCodeDeps) (VerifyLoginCodeResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return VerifyLoginCodeResult{}, account.ErrEmptyEmail
	}
	if input.Code == "" {
		return VerifyLoginCodeResult{}, account.ErrEmptyCode
	}

	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	lc, err := deps.AccountStore.LatestLoginCode(ctx, email)
	if err != nil {
		slog.Info("auth_event", "event", "verify_failed", "email", email, "reason", "no_code")
		return VerifyLoginCodeResult{}, account.ErrWrongCode
	}
	if err := lc.Check(input.Code, now()); err != nil {
		slog.Info("auth_event", "event", "verify_failed", "email", email, "reason", err.Error())
		return VerifyLoginCodeResult{}, err
	}

	// Single use: burn the code before handing out a session.
	if err := deps.AccountStore.InvalidateLoginCodes(ctx, email); err != nil {
		return VerifyLoginCodeResult{}, fmt.Errorf("invalidating login code: %w", err)
	}

	acct, err := deps.AccountStore.GetByEmail(ctx, email)
	if err != nil {
		// First verification for this email: create the account (signup).
		acct = account.Account{
			ID:        uuid.New().String(),
			Email:     email,
			Age:       input.Age,
			Role:      roleFor(email, deps.AdminEmail),
			CreatedAt: now(),
		}
		if err := acct.Validate(); err != nil {
			return VerifyLoginCodeResult{}, err
		}
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			return VerifyLoginCodeResult{}, fmt.Errorf("creating account: %w", err)
		}
		slog.Info("auth_event", "event", "account_created", "email", email, "role", acct.Role)
	}

	slog.Info("auth_event", "event", "verify_success", "email", email, "role", acct.Role)
	return VerifyLoginCodeResult{
		AccountID: acct.ID,
		Email:     acct.Email,
		Role:      acct.Role,
	}, nil
}

func roleFor(email, adminEmail string) string {
	if adminEmail != "" && strings.EqualFold(email, adminEmail) {
		return account.RoleAdmin
	}
	return account.RoleStudent
}
