package booking

import (
	"context"

	domain "ascend/internal/domain/booking"
)

// Store persists SessionRequest state. Session requests are never deleted;
// denied requests stay on record.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.SessionRequest, error)
	Save(ctx context.Context, value domain.SessionRequest) error
	List(ctx context.Context) ([]domain.SessionRequest, error)
	ListByEmail(ctx context.Context, email string) ([]domain.SessionRequest, error)
	ListByStatus(ctx context.Context, status string) ([]domain.SessionRequest, error)
	ListBySlot(ctx context.Context, day, time string) ([]domain.SessionRequest, error)
	ListVisibleTo(ctx context.Context, email string) ([]domain.SessionRequest, error)
}
