package domain

import "time"

// WorkdayPredicate classifies a calendar date as a working day or not.
// The zero-value scheduler configuration uses DefaultWorkdayPredicate;
// callers may substitute one backed by a loaded workday provider engine.
type WorkdayPredicate func(date time.Time) (bool, error)

// DefaultWorkdayPredicate treats Monday through Friday as working days.
func DefaultWorkdayPredicate(date time.Time) (bool, error) {
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return false, nil
	default:
		return true, nil
	}
}

// DaysToDate maps working-day index 0..n to calendar dates under the
// given predicate. Day 0 is startDate itself — the caller is responsible
// for ensuring startDate satisfies isWorkday; the scheduler enforces this
// as a precondition via ErrInvalidStartDate rather than advancing it
// silently. For d >= 1, the function advances one calendar day at a time,
// skipping non-workdays, until it reaches the d-th working date.
func DaysToDate(startDate time.Time, n int, isWorkday WorkdayPredicate) (map[int]time.Time, error) {
	if isWorkday == nil {
		isWorkday = DefaultWorkdayPredicate
	}

	ok, err := isWorkday(startDate)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidStartDate
	}

	result := make(map[int]time.Time, n+1)
	result[0] = startDate

	current := startDate
	for d := 1; d <= n; d++ {
		for {
			current = current.AddDate(0, 0, 1)
			workday, err := isWorkday(current)
			if err != nil {
				return nil, err
			}
			if workday {
				break
			}
		}
		result[d] = current
	}
	return result, nil
}
