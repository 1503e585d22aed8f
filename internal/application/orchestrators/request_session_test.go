package orchestrators_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ascend/internal/application/orchestrators"
	"ascend/internal/domain/booking"
	"ascend/internal/domain/catalog"
)

type fakeBookingStore struct {
	requests []booking.SessionRequest
	saveErr  error
	listErr  error
}

func (f *fakeBookingStore) ListBySlot(ctx context.Context, day, timeLabel string) ([]booking.SessionRequest, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []booking.SessionRequest
	for _, r := range f.requests {
		if r.Day == day && r.Time == timeLabel {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeBookingStore) Save(ctx context.Context, r booking.SessionRequest) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	for i := range f.requests {
		if f.requests[i].ID == r.ID {
			f.requests[i] = r
			return nil
		}
	}
	f.requests = append(f.requests, r)
	return nil
}

func (f *fakeBookingStore) GetByID(ctx context.Context, id string) (booking.SessionRequest, error) {
	for _, r := range f.requests {
		if r.ID == id {
			return r, nil
		}
	}
	return booking.SessionRequest{}, errors.New("not found")
}

func requestDeps(store *fakeBookingStore) orchestrators.RequestSessionDeps {
	return orchestrators.RequestSessionDeps{
		BookingStore: store,
		Catalog:      catalog.Default(),
		Now:          func() time.Time { return time.Date(2025, 3, 9, 9, 0, 0, 0, time.UTC) },
	}
}

// TestExecuteRequestSession tests the happy path.
func TestExecuteRequestSession(t *testing.T) {
	store := &fakeBookingStore{}
	input := orchestrators.RequestSessionInput{
		UserEmail: "kid@example.com",
		Day:       "Sunday",
		Time:      "10:00 AM",
	}

	request, err := orchestrators.ExecuteRequestSession(context.Background(), input, requestDeps(store))
	if err != nil {
		t.Fatalf("ExecuteRequestSession() error = %v", err)
	}
	if request.ID == "" {
		t.Error("request ID not assigned")
	}
	if request.Status != booking.StatusPending {
		t.Errorf("status = %q, want pending", request.Status)
	}
	if request.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
	if len(store.requests) != 1 {
		t.Fatalf("store holds %d requests, want 1", len(store.requests))
	}
}

// TestExecuteRequestSession_Validation tests each pre-write rejection.
func TestExecuteRequestSession_Validation(t *testing.T) {
	approved := booking.SessionRequest{
		ID: "r-existing", UserEmail: "other@example.com",
		Day: "Sunday", Time: "10:00 AM", Status: booking.StatusApproved,
	}
	denied := approved
	denied.ID = "r-denied"
	denied.Time = "11:00 AM"
	denied.Status = booking.StatusDenied

	tests := []struct {
		name    string
		input   orchestrators.RequestSessionInput
		seed    []booking.SessionRequest
		wantErr error
	}{
		{
			name:    "missing identity",
			input:   orchestrators.RequestSessionInput{Day: "Sunday", Time: "10:00 AM"},
			wantErr: orchestrators.ErrMissingIdentity,
		},
		{
			name:    "day not in catalog",
			input:   orchestrators.RequestSessionInput{UserEmail: "kid@example.com", Day: "Monday", Time: "10:00 AM"},
			wantErr: orchestrators.ErrInvalidSlot,
		},
		{
			name:    "time not offered that day",
			input:   orchestrators.RequestSessionInput{UserEmail: "kid@example.com", Day: "Tuesday", Time: "10:00 AM"},
			wantErr: orchestrators.ErrInvalidSlot,
		},
		{
			name:    "slot held by approved request",
			input:   orchestrators.RequestSessionInput{UserEmail: "kid@example.com", Day: "Sunday", Time: "10:00 AM"},
			seed:    []booking.SessionRequest{approved},
			wantErr: orchestrators.ErrSlotUnavailable,
		},
		{
			name:  "denied request does not block the slot",
			input: orchestrators.RequestSessionInput{UserEmail: "kid@example.com", Day: "Sunday", Time: "11:00 AM"},
			seed:  []booking.SessionRequest{denied},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeBookingStore{requests: tt.seed}
			before := len(store.requests)

			_, err := orchestrators.ExecuteRequestSession(context.Background(), tt.input, requestDeps(store))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil && len(store.requests) != before {
				t.Error("store changed despite validation failure")
			}
		})
	}
}

// TestExecuteRequestSession_SaveFailure tests that a failed write surfaces
// an error and claims nothing.
func TestExecuteRequestSession_SaveFailure(t *testing.T) {
	store := &fakeBookingStore{saveErr: errors.New("disk full")}
	input := orchestrators.RequestSessionInput{
		UserEmail: "kid@example.com",
		Day:       "Sunday",
		Time:      "10:00 AM",
	}
	if _, err := orchestrators.ExecuteRequestSession(context.Background(), input, requestDeps(store)); err == nil {
		t.Error("expected error when save fails")
	}
}
