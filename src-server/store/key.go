package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Month is a calendar month carried as a zero-based value (January = 0).
// Every call site converts through ZeroBased/OneBased explicitly; raw ints
// never cross a package boundary.
type Month int

func MonthFromZeroBased(m int) Month {
	return Month(m)
}

func MonthFromOneBased(m int) Month {
	return Month(m - 1)
}

func (m Month) ZeroBased() int {
	return int(m)
}

func (m Month) OneBased() int {
	return int(m) + 1
}

// Time converts to the stdlib's one-based month type.
func (m Month) Time() time.Month {
	return time.Month(m.OneBased())
}

// Previous returns the month before m and -1 when the year rolls back
// (January to December), 0 otherwise.
func (m Month) Previous() (Month, int) {
	if m.ZeroBased() == 0 {
		return MonthFromZeroBased(11), -1
	}
	return m - 1, 0
}

// Next returns the month after m and +1 when the year rolls forward
// (December to January), 0 otherwise.
func (m Month) Next() (Month, int) {
	if m.ZeroBased() == 11 {
		return MonthFromZeroBased(0), 1
	}
	return m + 1, 0
}

// DateKey joins events to calendar cells. The format is "day-month-year"
// with a one-based month and no zero padding, e.g. "15-3-2024". Both grid
// generators, the bucket store, the sqlite cache and the HTTP API share
// this single convention; keys are only ever built through NewDateKey.
type DateKey string

func NewDateKey(day int, m Month, year int) DateKey {
	return DateKey(fmt.Sprintf("%d-%d-%d", day, m.OneBased(), year))
}

// DateKeyFromTime builds the key for t's calendar date.
func DateKeyFromTime(t time.Time) DateKey {
	return NewDateKey(t.Day(), MonthFromOneBased(int(t.Month())), t.Year())
}

// Parse splits the key back into its date parts.
func (k DateKey) Parse() (day int, m Month, year int, err error) {
	parts := strings.Split(string(k), "-")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("(DateKey).Parse: %q is not a day-month-year key", k)
	}
	day, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("(DateKey).Parse: bad day in %q: %w", k, err)
	}
	monthOneBased, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("(DateKey).Parse: bad month in %q: %w", k, err)
	}
	year, err = strconv.Atoi(parts[2])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("(DateKey).Parse: bad year in %q: %w", k, err)
	}
	return day, MonthFromOneBased(monthOneBased), year, nil
}

// Time resolves the key to midnight of its date in loc.
func (k DateKey) Time(loc *time.Location) (time.Time, error) {
	day, m, year, err := k.Parse()
	if err != nil {
		return time.Time{}, fmt.Errorf("(DateKey).Time: %w", err)
	}
	return time.Date(year, m.Time(), day, 0, 0, 0, 0, loc), nil
}

// DateKeyFromEventID recovers the bucket key from an event ID. IDs are
// "<dateKey>_<uuid>", so everything before the first underscore is the key.
func DateKeyFromEventID(id string) (DateKey, error) {
	prefix, _, found := strings.Cut(id, "_")
	if !found || prefix == "" {
		return "", fmt.Errorf("DateKeyFromEventID: %q has no date prefix", id)
	}
	return DateKey(prefix), nil
}
