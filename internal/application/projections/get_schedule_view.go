package projections

import (
	"context"

	"ascend/internal/domain/booking"
	"ascend/internal/domain/catalog"
)

// ScheduleViewBookingStore defines the store interface needed by this projection.
type ScheduleViewBookingStore interface {
	ListVisibleTo(ctx context.Context, email string) ([]booking.SessionRequest, error)
}

// GetScheduleViewDeps holds dependencies for the projection.
type GetScheduleViewDeps struct {
	BookingStore ScheduleViewBookingStore
	Catalog      catalog.Catalog
}

// ScheduleViewResult is everything the schedule page needs for one student.
type ScheduleViewResult struct {
	Days     []string
	Day      string     // selected day, empty if none selected
	Slots    []SlotView // slots for the selected day
	Pending  []booking.SessionRequest
	Upcoming []booking.SessionRequest // the student's approved sessions
}

// QueryGetScheduleView loads the requests visible to a student (their own
// plus everyone's approved) and derives the slot availability view.
// Algorithm: 1) Fetch the visible snapshot, 2) Compute the slot view for the
// selected day, 3) Partition the student's own requests.
func QueryGetScheduleView(ctx context.Context, deps GetScheduleViewDeps, email, day string) (ScheduleViewResult, error) {
	snapshot, err := deps.BookingStore.ListVisibleTo(ctx, email)
	if err != nil {
		return ScheduleViewResult{}, err
	}

	own := PartitionByStatus(FilterByEmail(snapshot, email))

	return ScheduleViewResult{
		Days:     deps.Catalog.Days(),
		Day:      day,
		Slots:    ComputeSlotView(deps.Catalog, snapshot, email, day),
		Pending:  own.Pending,
		Upcoming: own.Approved,
	}, nil
}
