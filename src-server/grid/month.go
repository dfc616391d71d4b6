// Package grid turns a reference date and the bucket store into
// display-ready calendar geometry: month metadata, month-view cells and
// week-view columns with half-hour event placement. Every function here is
// pure; callers inject "now" and the event source.
package grid

import (
	"time"

	"gridcal/src-server/store"
)

// Meta describes one month of the Monday-first grid.
type Meta struct {
	// "March 2024" style heading for the view.
	DisplayLabel string `json:"displayLabel"`
	// Days in the month before the reference month.
	PreviousMonthLength int `json:"previousMonthLength"`
	// Days in the reference month, 28 to 31.
	MonthLength int `json:"monthLength"`
	// Leading cells that belong to the previous month: the Monday-based
	// weekday index of day 1, always in [0, 6].
	PaddingDays int `json:"paddingDays"`
}

// Metadata computes the grid shape for the given month. Any year/month
// input produces a result; time.Date normalizes out-of-range months.
func Metadata(year int, m store.Month) Meta {
	firstOfMonth := time.Date(year, m.Time(), 1, 0, 0, 0, 0, time.UTC)

	// day zero of the next month is the last day of this one
	monthLength := time.Date(year, m.Time()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	previousMonthLength := time.Date(year, m.Time(), 0, 0, 0, 0, 0, time.UTC).Day()

	// Weekday counts Sunday as 0; shift so Monday is 0 and Sunday is 6
	paddingDays := int(firstOfMonth.Weekday()) - 1
	if paddingDays < 0 {
		paddingDays = 6
	}

	return Meta{
		DisplayLabel:        firstOfMonth.Format("January 2006"),
		PreviousMonthLength: previousMonthLength,
		MonthLength:         monthLength,
		PaddingDays:         paddingDays,
	}
}

// EventSource is the lookup side of the bucket store. A nil source is
// valid when only geometry is needed.
type EventSource interface {
	Events(key store.DateKey) []store.CalendarEvent
}

func sameDate(day int, m store.Month, year int, now time.Time) bool {
	return day == now.Day() && m.Time() == now.Month() && year == now.Year()
}
