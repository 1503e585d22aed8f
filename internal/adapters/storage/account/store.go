package account

import (
	"context"
	"time"

	domain "ascend/internal/domain/account"
)

// Store persists Account and LoginCode state.
type Store interface {
	GetByEmail(ctx context.Context, email string) (domain.Account, error)
	Save(ctx context.Context, value domain.Account) error
	SaveLoginCode(ctx context.Context, code domain.LoginCode) error
	LatestLoginCode(ctx context.Context, email string) (domain.LoginCode, error)
	InvalidateLoginCodes(ctx context.Context, email string) error
	DeleteExpiredLoginCodes(ctx context.Context, before time.Time) (int, error)
}
