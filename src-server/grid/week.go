package grid

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"gridcal/src-server/store"
)

// WeekCell is one column of the 7-day week view. Timed events additionally
// carry a row span over the 48 half-hour rows of the hour grid.
type WeekCell struct {
	// Day number, or "01/MM" on the first of a month so week rows that
	// straddle a boundary stay readable.
	Day          string                `json:"day"`
	IsCurrentDay bool                  `json:"isCurrentDay"`
	Date         store.DateKey         `json:"date"`
	Events       []store.CalendarEvent `json:"events,omitempty"`
	Placements   []Placement           `json:"placements,omitempty"`
}

// Placement positions one timed event inside the hour grid as a
// CSS-grid-style "start/end" row span.
type Placement struct {
	EventID string `json:"eventId"`
	RowSpan string `json:"rowSpan"`
}

// ResolveWeekCell maps a signed day offset (week start day + column index,
// not pre-clamped) to its calendar day. The month and year roll over
// independently of the month grid, but both draw their lengths from the
// same Metadata call.
func ResolveWeekCell(offset int, m store.Month, year int, meta Meta, now time.Time, events EventSource) WeekCell {
	day := offset
	switch {
	case offset < 1:
		// count back from the previous month's last day
		day = meta.PreviousMonthLength + offset
		var yearDelta int
		m, yearDelta = m.Previous()
		year += yearDelta
	case offset > meta.MonthLength:
		day = offset - meta.MonthLength
		var yearDelta int
		m, yearDelta = m.Next()
		year += yearDelta
	}

	key := store.NewDateKey(day, m, year)
	cell := WeekCell{
		Day:          strconv.Itoa(day),
		IsCurrentDay: sameDate(day, m, year, now),
		Date:         key,
	}
	if day == 1 {
		cell.Day = "01/" + paddedMonth(m)
	}
	if events != nil {
		cell.Events = events.Events(key)
		cell.Placements = placeEvents(cell.Events)
	}
	return cell
}

// placeEvents buckets timed events into the 48 half-hour rows. All-day
// events render in the summary strip instead and are skipped here.
func placeEvents(events []store.CalendarEvent) []Placement {
	var placements []Placement
	for _, event := range events {
		if event.AllDay {
			continue
		}
		span, err := RowSpan(event.TimeFrom, event.TimeTo)
		if err != nil {
			slog.Warn("can't place event on hour grid", "event", event.ID, "error", err)
			continue
		}
		placements = append(placements, Placement{EventID: event.ID, RowSpan: span})
	}
	return placements
}

// RowSpan maps a wall-clock range onto "start/end" hour-grid rows. Each
// hour owns two rows: :00 starts on row 2h+1, :30 on row 2h+2. The end row
// is exclusive; an end on the exact hour snaps back to the end of the
// previous half-hour slot. A timeTo earlier than timeFrom produces the
// degenerate span as-is; callers accept it.
func RowSpan(timeFrom, timeTo string) (string, error) {
	fromHour, fromMins, err := store.ParseClock(timeFrom)
	if err != nil {
		return "", fmt.Errorf("RowSpan: %w", err)
	}
	toHour, toMins, err := store.ParseClock(timeTo)
	if err != nil {
		return "", fmt.Errorf("RowSpan: %w", err)
	}

	start := 2*fromHour + 1
	if fromMins >= 30 {
		start = 2*fromHour + 2
	}

	var end int
	switch {
	case toMins > 30:
		end = 2*toHour + 3
	case toMins == 0:
		end = 2*toHour + 1
	default:
		end = 2*toHour + 2
	}

	return fmt.Sprintf("%d/%d", start, end), nil
}
