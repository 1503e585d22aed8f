package projections

import (
	"context"

	"ascend/internal/domain/booking"
)

// AdminRequestsBookingStore defines the store interface needed by this projection.
type AdminRequestsBookingStore interface {
	List(ctx context.Context) ([]booking.SessionRequest, error)
}

// GetAdminRequestsDeps holds dependencies for the projection.
type GetAdminRequestsDeps struct {
	BookingStore AdminRequestsBookingStore
}

// AdminRequestsResult carries the admin console view of all requests.
type AdminRequestsResult struct {
	Pending  []booking.SessionRequest
	Approved []booking.SessionRequest
	Denied   []booking.SessionRequest

	PendingCount  int
	ApprovedCount int
	DeniedCount   int
}

// QueryGetAdminRequests loads the full request snapshot and partitions it
// for the admin console, with summary counts for the header cards.
func QueryGetAdminRequests(ctx context.Context, deps GetAdminRequestsDeps) (AdminRequestsResult, error) {
	snapshot, err := deps.BookingStore.List(ctx)
	if err != nil {
		return AdminRequestsResult{}, err
	}

	p := PartitionByStatus(snapshot)
	return AdminRequestsResult{
		Pending:       p.Pending,
		Approved:      p.Approved,
		Denied:        p.Denied,
		PendingCount:  len(p.Pending),
		ApprovedCount: len(p.Approved),
		DeniedCount:   len(p.Denied),
	}, nil
}
