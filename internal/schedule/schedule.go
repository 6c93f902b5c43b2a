// Package schedule generates the fixed review cadence of a content item.
package schedule

import (
	"fmt"
	"time"

	"github.com/pbaille/studyrev/internal/domain"
)

// Offset describes how far after creation a review type falls
type Offset struct {
	Type   domain.ReviewType
	Days   int
	Months int
}

var offsets = []Offset{
	{Type: domain.NextDay, Days: 1},
	{Type: domain.OneWeek, Days: 7},
	{Type: domain.OneMonth, Months: 1},
	{Type: domain.ThreeMonths, Months: 3},
}

// Offsets returns the cadence in schedule order.
func Offsets() []Offset {
	out := make([]Offset, len(offsets))
	copy(out, offsets)
	return out
}

func (o Offset) String() string {
	n, unit := o.Days, "day"
	if o.Months != 0 {
		n, unit = o.Months, "month"
	}
	if n != 1 {
		unit += "s"
	}
	return fmt.Sprintf("+%d %s", n, unit)
}

// Apply returns the date this offset lands on when counted from d.
func (o Offset) Apply(d domain.Date) domain.Date {
	if o.Months != 0 {
		return d.AddMonths(o.Months)
	}
	return d.AddDays(o.Days)
}

// Generate returns the four review occurrences for content created at
// createdAt, in schedule order. Each date is computed from the creation
// date directly. The creation date is read in createdAt's location.
func Generate(createdAt time.Time) []domain.ReviewOccurrence {
	start := domain.DateOf(createdAt)
	out := make([]domain.ReviewOccurrence, 0, len(offsets))
	for _, o := range offsets {
		out = append(out, domain.ReviewOccurrence{
			Type:          o.Type,
			ScheduledDate: o.Apply(start),
		})
	}
	return out
}
