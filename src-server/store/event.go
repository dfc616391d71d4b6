package store

import (
	"fmt"
	"strconv"
	"strings"
)

// CalendarEvent is one entry in a date bucket. Timed events carry wall-clock
// "HH:MM" strings; all-day events ignore both time fields for placement.
type CalendarEvent struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	TimeFrom    string `json:"timeFrom"`
	TimeTo      string `json:"timeTo"`
	Description string `json:"description"`
	AllDay      bool   `json:"allDay"`
	Color       string `json:"color"`

	// Optional RRULE string; when set, the event also surfaces on every
	// occurrence date the rule yields from its bucket date onward.
	Repeat string `json:"repeat,omitempty"`
}

func (e *CalendarEvent) Validate() error {
	switch {
	case strings.TrimSpace(e.Title) == "":
		return fmt.Errorf("(*CalendarEvent).Validate: title is blank")
	case e.AllDay:
		return nil
	}
	if _, _, err := ParseClock(e.TimeFrom); err != nil {
		return fmt.Errorf("(*CalendarEvent).Validate: timeFrom: %w", err)
	}
	if _, _, err := ParseClock(e.TimeTo); err != nil {
		return fmt.Errorf("(*CalendarEvent).Validate: timeTo: %w", err)
	}
	// no minimum duration: timeTo earlier than timeFrom passes through
	// unchanged, matching the behavior the callers already rely on
	return nil
}

// ParseClock splits an "HH:MM" wall-clock string into hour and minute.
func ParseClock(s string) (hour, minute int, err error) {
	before, after, found := strings.Cut(s, ":")
	if !found {
		return 0, 0, fmt.Errorf("ParseClock: %q is not an HH:MM time", s)
	}
	hour, err = strconv.Atoi(before)
	if err != nil {
		return 0, 0, fmt.Errorf("ParseClock: bad hour in %q: %w", s, err)
	}
	minute, err = strconv.Atoi(after)
	if err != nil {
		return 0, 0, fmt.Errorf("ParseClock: bad minute in %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("ParseClock: %q is out of range", s)
	}
	return hour, minute, nil
}

// Bucket is the ordered set of events sharing one calendar date. A bucket
// with no events does not exist; the store drops it instead of keeping an
// empty slice around.
type Bucket struct {
	Date   DateKey         `json:"date"`
	Events []CalendarEvent `json:"events"`
}
