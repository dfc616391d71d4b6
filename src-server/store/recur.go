package store

import (
	"log/slog"
	"time"

	"github.com/xyedo/rrule"
)

// occurrencesOn collects copies of recurring events whose rule yields key's
// date. The event's own bucket date is the recurrence anchor and is never
// duplicated here; the caller already returns the bucket itself. Callers
// hold the store lock.
func (s *Store) occurrencesOn(key DateKey) []CalendarEvent {
	target, err := key.Time(time.UTC)
	if err != nil {
		return nil
	}

	var occurrences []CalendarEvent
	for anchorKey, bucket := range s.buckets {
		if anchorKey == key {
			continue
		}
		anchor, err := anchorKey.Time(time.UTC)
		if err != nil || anchor.After(target) {
			continue
		}
		for _, event := range bucket {
			if event.Repeat == "" {
				continue
			}
			rruleSet, err := rrule.StrToRRuleSet(event.Repeat)
			if err != nil {
				slog.Warn("can't parse recurrence rule", "event", event.ID, "rule", event.Repeat, "error", err)
				continue
			}
			rruleSet.DTStart(anchor)
			dates := rruleSet.Between(target, target.Add(24*time.Hour), true)
			for _, date := range dates {
				if date.Year() == target.Year() &&
					date.Month() == target.Month() &&
					date.Day() == target.Day() {
					occurrences = append(occurrences, event)
					break
				}
			}
		}
	}
	return occurrences
}
