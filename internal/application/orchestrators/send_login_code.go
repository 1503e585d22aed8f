package orchestrators

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	emailAdapter "ascend/internal/adapters/email"
	"ascend/internal/domain/account"
)

// AccountStoreForAuth defines the store interface needed by the auth orchestrators.
type AccountStoreForAuth interface {
	GetByEmail(ctx context.Context, email string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
	SaveLoginCode(ctx context.Context, c account.LoginCode) error
	LatestLoginCode(ctx context.Context, email string) (account.LoginCode, error)
	InvalidateLoginCodes(ctx context.Context, email string) error
}

// Auth mode constants: login requires an existing account, signup does not.
const (
	ModeLogin  = "login"
	ModeSignup = "signup"
)

// Auth errors surfaced to the sign-in modal.
var (
	ErrUnknownAccount = errors.New("no account found with this email — please sign up first")
	ErrInvalidMode    = errors.New("mode must be login or signup")
	ErrCodeSendFailed = errors.New("could not send the verification code — please try again")
)

// SendLoginCodeInput carries input for issuing a login code.
type SendLoginCodeInput struct {
	Email string
	Mode  string // login or signup
}

// SendLoginCodeDeps holds dependencies for SendLoginCode.
type SendLoginCodeDeps struct {
	AccountStore AccountStoreForAuth
	Sender       emailAdapter.Sender
	From         string
	ReplyTo      string
	Now          func() time.Time // nil means time.Now
}

// ExecuteSendLoginCode issues a fresh one-time code and emails it.
// In login mode the account must already exist (matching the sign-in form,
// which points new users at signup). Older unused codes for the email are
// invalidated so only the newest code verifies.
// PRE: Email is non-empty; Mode is login or signup
// POST: A hashed code with a 10-minute expiry is stored and emailed
func ExecuteSendLoginCode(ctx context.Context, input SendLoginCodeInput, deps SendLoginCodeDeps) error {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return account.ErrEmptyEmail
	}
	if input.Mode != ModeLogin && input.Mode != ModeSignup {
		return ErrInvalidMode
	}

	if input.Mode == ModeLogin {
		if _, err := deps.AccountStore.GetByEmail(ctx, email); err != nil {
			slog.Info("auth_event", "event", "code_refused", "email", email, "reason", "unknown_account")
			return ErrUnknownAccount
		}
	}

	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("generating login code: %w", err)
	}

	lc := account.LoginCode{
		ID:        uuid.New().String(),
		Email:     email,
		ExpiresAt: now().Add(account.CodeTTL),
		CreatedAt: now(),
	}
	if err := lc.SetCode(code); err != nil {
		return err
	}

	if err := deps.AccountStore.InvalidateLoginCodes(ctx, email); err != nil {
		return fmt.Errorf("invalidating old codes: %w", err)
	}
	if err := deps.AccountStore.SaveLoginCode(ctx, lc); err != nil {
		return fmt.Errorf("saving login code: %w", err)
	}

	_, err = deps.Sender.Send(ctx, emailAdapter.SendRequest{
		To:      []string{email},
		From:    deps.From,
		Subject: "Your Ascend Academics verification code",
		HTML:    loginCodeHTML(code),
		ReplyTo: deps.ReplyTo,
	})
	if err != nil {
		slog.Error("auth_event", "event", "code_send_failed", "email", email, "error", err.Error())
		return ErrCodeSendFailed
	}

	slog.Info("auth_event", "event", "code_sent", "email", email, "mode", input.Mode)
	return nil
}

// generateCode returns a random 6-digit numeric code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func loginCodeHTML(code string) string {
	return fmt.Sprintf(`<div style="font-family: sans-serif; max-width: 480px;">
  <h2>Ascend Academics</h2>
  <p>Your verification code is:</p>
  <p style="font-size: 32px; letter-spacing: 8px; font-weight: bold;">%s</p>
  <p>The code expires in 10 minutes. If you didn't request it you can ignore this email.</p>
</div>`, code)
}
