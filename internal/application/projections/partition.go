package projections

import (
	"ascend/internal/domain/booking"
)

// StatusPartition groups a snapshot of session requests by status.
// Each partition preserves the snapshot's relative order; every request
// lands in exactly one partition.
type StatusPartition struct {
	Pending  []booking.SessionRequest
	Approved []booking.SessionRequest
	Denied   []booking.SessionRequest
}

// PartitionByStatus splits a snapshot into pending/approved/denied lists.
// Requests with an unknown status are dropped; the store boundary validates
// status on the way in, so in practice the union equals the input.
// POST: partitions are disjoint and order-stable
func PartitionByStatus(requests []booking.SessionRequest) StatusPartition {
	var p StatusPartition
	for _, r := range requests {
		switch r.Status {
		case booking.StatusPending:
			p.Pending = append(p.Pending, r)
		case booking.StatusApproved:
			p.Approved = append(p.Approved, r)
		case booking.StatusDenied:
			p.Denied = append(p.Denied, r)
		}
	}
	return p
}

// FilterByEmail returns the requests belonging to one user, order preserved.
// INVARIANT: requests is not mutated
func FilterByEmail(requests []booking.SessionRequest, email string) []booking.SessionRequest {
	var own []booking.SessionRequest
	for _, r := range requests {
		if r.UserEmail == email {
			own = append(own, r)
		}
	}
	return own
}
