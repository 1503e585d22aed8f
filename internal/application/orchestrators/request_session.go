package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"ascend/internal/domain/booking"
	"ascend/internal/domain/catalog"
)

// BookingStoreForRequest defines the store interface needed by RequestSession.
type BookingStoreForRequest interface {
	ListBySlot(ctx context.Context, day, time string) ([]booking.SessionRequest, error)
	Save(ctx context.Context, r booking.SessionRequest) error
}

// RequestSessionInput carries input for the session request orchestrator.
type RequestSessionInput struct {
	UserEmail string
	Day       string
	Time      string
}

// RequestSessionDeps holds dependencies for RequestSession.
type RequestSessionDeps struct {
	BookingStore BookingStoreForRequest
	Catalog      catalog.Catalog
	Now          func() time.Time // nil means time.Now
}

// Validation errors surfaced to the submission form.
var (
	ErrMissingIdentity = errors.New("you must be signed in to request a session")
	ErrInvalidSlot     = errors.New("that day and time is not offered")
	ErrSlotUnavailable = errors.New("that time slot is already booked")
	ErrRequestNotFound = errors.New("session request not found")
)

// ExecuteRequestSession validates a slot request and persists it as pending.
// Validation order: identity, catalog membership, collision with an approved
// request. All checks happen before any write; the approved-slot check is
// advisory (two racing submissions can both pass it — the admin decision is
// the final arbiter).
// PRE: none
// POST: On success a pending SessionRequest with a fresh ID is persisted and
// returned; on failure nothing is written
func ExecuteRequestSession(ctx context.Context, input RequestSessionInput, deps RequestSessionDeps) (booking.SessionRequest, error) {
	if input.UserEmail == "" {
		return booking.SessionRequest{}, ErrMissingIdentity
	}
	if !deps.Catalog.Contains(input.Day, input.Time) {
		return booking.SessionRequest{}, ErrInvalidSlot
	}

	occupants, err := deps.BookingStore.ListBySlot(ctx, input.Day, input.Time)
	if err != nil {
		return booking.SessionRequest{}, fmt.Errorf("checking slot availability: %w", err)
	}
	for i := range occupants {
		if occupants[i].IsApproved() {
			return booking.SessionRequest{}, ErrSlotUnavailable
		}
	}

	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}

	request := booking.SessionRequest{
		ID:        uuid.New().String(),
		UserEmail: input.UserEmail,
		Day:       input.Day,
		Time:      input.Time,
		Status:    booking.StatusPending,
		CreatedAt: now(),
	}
	if err := request.Validate(); err != nil {
		return booking.SessionRequest{}, err
	}

	if err := deps.BookingStore.Save(ctx, request); err != nil {
		slog.Error("booking_event", "event", "request_save_failed", "email", input.UserEmail, "error", err.Error())
		return booking.SessionRequest{}, fmt.Errorf("saving session request: %w", err)
	}

	slog.Info("booking_event", "event", "request_submitted", "request_id", request.ID, "email", input.UserEmail, "day", input.Day, "time", input.Time)
	return request, nil
}
