package catalog

// Day of week constants for bookable days.
const (
	Sunday   = "Sunday"
	Saturday = "Saturday"
	Tuesday  = "Tuesday"
)

// Catalog defines the universe of offerable (day, time) slots.
// It is static configuration: built once at startup and never mutated.
type Catalog struct {
	days  []string
	slots map[string][]string
}

// New creates a Catalog from an ordered list of days and their slot lists.
// PRE: every day in days has an entry in slots
// POST: Returns a catalog preserving day and slot order
func New(days []string, slots map[string][]string) Catalog {
	c := Catalog{
		days:  make([]string, len(days)),
		slots: make(map[string][]string, len(slots)),
	}
	copy(c.days, days)
	for day, times := range slots {
		copied := make([]string, len(times))
		copy(copied, times)
		c.slots[day] = copied
	}
	return c
}

// Default returns the catalog of days and times Ascend Academics offers.
// Weekend days run hourly 10 AM to 5 PM; Tuesday has three evening slots.
func Default() Catalog {
	weekend := []string{"10:00 AM", "11:00 AM", "12:00 PM", "1:00 PM", "2:00 PM", "3:00 PM", "4:00 PM", "5:00 PM"}
	return New(
		[]string{Sunday, Saturday, Tuesday},
		map[string][]string{
			Sunday:   weekend,
			Saturday: weekend,
			Tuesday:  {"5:00 PM", "6:00 PM", "7:00 PM"},
		},
	)
}

// Days returns the bookable days in declaration order.
// INVARIANT: Catalog is not mutated; callers get a fresh slice
func (c Catalog) Days() []string {
	out := make([]string, len(c.days))
	copy(out, c.days)
	return out
}

// SlotsFor returns the ordered time labels for a day.
// POST: Returns nil if the day is not in the catalog
func (c Catalog) SlotsFor(day string) []string {
	times, ok := c.slots[day]
	if !ok {
		return nil
	}
	out := make([]string, len(times))
	copy(out, times)
	return out
}

// Contains reports whether (day, time) is a valid offerable slot.
// INVARIANT: Catalog is not mutated
func (c Catalog) Contains(day, time string) bool {
	for _, t := range c.slots[day] {
		if t == time {
			return true
		}
	}
	return false
}
