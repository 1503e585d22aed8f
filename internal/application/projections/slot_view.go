package projections

import (
	"ascend/internal/domain/booking"
	"ascend/internal/domain/catalog"
)

// SlotView is one time slot of a day as shown to a student.
type SlotView struct {
	Time   string `json:"time"`
	Booked bool   `json:"booked"` // an approved request holds this slot
	Mine   bool   `json:"mine"`   // the viewer has a pending or approved request here
}

// ComputeSlotView derives the selectable slots for a day from a snapshot of
// session requests. It is a pure projection: a fresh snapshot in, a fresh
// view out, recomputed in full on every call.
//
// A slot is Booked only when some request in the snapshot is approved for
// that exact (day, time); pending and denied requests never block a slot.
// Mine is informational and does not affect selectability.
// POST: Returns one SlotView per catalog slot in catalog order; empty for a
// day not in the catalog
func ComputeSlotView(cat catalog.Catalog, requests []booking.SessionRequest, userEmail, day string) []SlotView {
	times := cat.SlotsFor(day)
	if len(times) == 0 {
		return nil
	}

	views := make([]SlotView, 0, len(times))
	for _, t := range times {
		view := SlotView{Time: t}
		for i := range requests {
			r := &requests[i]
			if r.Occupies(day, t) {
				view.Booked = true
			}
			if r.UserEmail == userEmail && r.Day == day && r.Time == t && (r.IsPending() || r.IsApproved()) {
				view.Mine = true
			}
		}
		views = append(views, view)
	}
	return views
}

// SlotIsBooked reports whether any request in the snapshot holds (day, time).
// INVARIANT: requests is not mutated
func SlotIsBooked(requests []booking.SessionRequest, day, time string) bool {
	for i := range requests {
		if requests[i].Occupies(day, time) {
			return true
		}
	}
	return false
}
