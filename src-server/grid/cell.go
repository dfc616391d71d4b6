package grid

import (
	"strconv"
	"time"

	"gridcal/src-server/store"
)

// Cell is one resolved day of the month view. Padding cells still carry a
// real calendar date from the adjacent month, shown dimmed by the caller.
type Cell struct {
	Day          int                   `json:"day"`
	IsPadding    bool                  `json:"isPadding"`
	IsCurrentDay bool                  `json:"isCurrentDay"`
	Date         store.DateKey         `json:"date"`
	Events       []store.CalendarEvent `json:"events,omitempty"`
	// Full weekday+date label, e.g. "Fri Mar 15 2024".
	DayString string `json:"dayString"`
}

// ResolveMonthCell maps a zero-based grid index to its calendar day. The
// first meta.PaddingDays cells belong to the tail of the previous month;
// the rest count up from the 1st. Callers only pass indices in
// [0, meta.PaddingDays+meta.MonthLength).
func ResolveMonthCell(index int, m store.Month, year int, meta Meta, now time.Time, events EventSource) Cell {
	day := 0
	isPadding := false

	if index < meta.PaddingDays {
		// walk back from the previous month's last day to the grid's Monday
		day = meta.PreviousMonthLength - meta.PaddingDays + index + 1
		var yearDelta int
		m, yearDelta = m.Previous()
		year += yearDelta
		isPadding = true
	} else {
		day = index + 1 - meta.PaddingDays
	}

	key := store.NewDateKey(day, m, year)
	cell := Cell{
		Day:          day,
		IsPadding:    isPadding,
		IsCurrentDay: sameDate(day, m, year, now),
		Date:         key,
		DayString:    time.Date(year, m.Time(), day, 0, 0, 0, 0, now.Location()).Format("Mon Jan 2 2006"),
	}
	if events != nil {
		cell.Events = events.Events(key)
	}
	return cell
}

// zero-pads the one-based month for week-view boundary labels
func paddedMonth(m store.Month) string {
	oneBased := m.OneBased()
	if oneBased < 10 {
		return "0" + strconv.Itoa(oneBased)
	}
	return strconv.Itoa(oneBased)
}
