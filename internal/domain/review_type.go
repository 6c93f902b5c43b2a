package domain

import "fmt"

// ReviewType is the fixed kind of a review occurrence
type ReviewType string

const (
	NextDay     ReviewType = "next_day"
	OneWeek     ReviewType = "one_week"
	OneMonth    ReviewType = "one_month"
	ThreeMonths ReviewType = "three_months"
)

// ReviewTypes lists every review type in schedule order.
var ReviewTypes = []ReviewType{NextDay, OneWeek, OneMonth, ThreeMonths}

// ParseReviewType accepts one of the four review type names.
func ParseReviewType(s string) (ReviewType, error) {
	for _, rt := range ReviewTypes {
		if string(rt) == s {
			return rt, nil
		}
	}
	return "", fmt.Errorf("%w: unknown review type %q", ErrNotFound, s)
}

func (rt ReviewType) String() string {
	return string(rt)
}
