package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"ascend/internal/domain/booking"
)

// BookingStoreForDecision defines the store interface needed by DecideRequest.
type BookingStoreForDecision interface {
	GetByID(ctx context.Context, id string) (booking.SessionRequest, error)
	Save(ctx context.Context, r booking.SessionRequest) error
}

// DecideRequestInput carries input for the admin decision orchestrator.
type DecideRequestInput struct {
	RequestID string
	Decision  string // approved or denied
	DecidedBy string // admin email, for the audit log line
}

// DecideRequestDeps holds dependencies for DecideRequest.
type DecideRequestDeps struct {
	BookingStore BookingStoreForDecision
}

// ExecuteDecideRequest applies an admin approve/deny decision to a request.
// The decision is unconditional: re-deciding an already-decided request is
// allowed, and applying the same decision twice is idempotent. If the store
// write fails the stored record is unchanged and the error is surfaced.
// PRE: Decision is approved or denied
// POST: Request status equals Decision; returns the updated request
func ExecuteDecideRequest(ctx context.Context, input DecideRequestInput, deps DecideRequestDeps) (booking.SessionRequest, error) {
	if input.RequestID == "" {
		return booking.SessionRequest{}, ErrRequestNotFound
	}

	request, err := deps.BookingStore.GetByID(ctx, input.RequestID)
	if err != nil {
		return booking.SessionRequest{}, ErrRequestNotFound
	}

	if err := request.Decide(input.Decision); err != nil {
		return booking.SessionRequest{}, err
	}

	if err := deps.BookingStore.Save(ctx, request); err != nil {
		slog.Error("booking_event", "event", "decision_save_failed", "request_id", input.RequestID, "decision", input.Decision, "error", err.Error())
		return booking.SessionRequest{}, fmt.Errorf("saving decision: %w", err)
	}

	slog.Info("booking_event", "event", "request_decided", "request_id", request.ID, "decision", input.Decision, "decided_by", input.DecidedBy)
	return request, nil
}
