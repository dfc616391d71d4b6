package store

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Store owns every date bucket. All access goes through the mutex; the
// three mutating operations are the only writers.
type Store struct {
	mu      sync.RWMutex
	buckets map[DateKey][]CalendarEvent
	dirty   map[DateKey]struct{}
}

func NewStore() *Store {
	return &Store{
		buckets: make(map[DateKey][]CalendarEvent),
		dirty:   make(map[DateKey]struct{}),
	}
}

// Add validates the event, assigns it a fresh date-prefixed ID, appends it
// to key's bucket (creating the bucket on first use) and returns the stored
// copy.
func (s *Store) Add(event CalendarEvent, key DateKey) (CalendarEvent, error) {
	if err := event.Validate(); err != nil {
		return CalendarEvent{}, fmt.Errorf("(*Store).Add: %w", err)
	}
	if _, _, _, err := key.Parse(); err != nil {
		return CalendarEvent{}, fmt.Errorf("(*Store).Add: %w", err)
	}
	event.ID = string(key) + "_" + uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets[key] = append(s.buckets[key], event)
	s.dirty[key] = struct{}{}
	return event, nil
}

// Edit replaces the event matching id wholesale, keeping its position in
// the bucket. The bucket is resolved from the ID's date prefix.
func (s *Store) Edit(event CalendarEvent, id string) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("(*Store).Edit: %w", err)
	}
	key, err := DateKeyFromEventID(id)
	if err != nil {
		return fmt.Errorf("(*Store).Edit: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.buckets[key]
	if !ok {
		return fmt.Errorf("(*Store).Edit: no bucket for %q", key)
	}
	for i := range bucket {
		if bucket[i].ID == id {
			event.ID = id
			bucket[i] = event
			s.dirty[key] = struct{}{}
			return nil
		}
	}
	return fmt.Errorf("(*Store).Edit: event %q not found", id)
}

// Delete removes the event matching id. A missing bucket or ID is a no-op;
// deleting the last event drops the bucket entirely.
func (s *Store) Delete(id string) error {
	key, err := DateKeyFromEventID(id)
	if err != nil {
		return fmt.Errorf("(*Store).Delete: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.buckets[key]
	if !ok {
		return nil
	}
	kept := bucket[:0]
	for _, event := range bucket {
		if event.ID != id {
			kept = append(kept, event)
		}
	}
	if len(kept) == len(bucket) {
		return nil
	}
	if len(kept) == 0 {
		delete(s.buckets, key)
	} else {
		s.buckets[key] = kept
	}
	s.dirty[key] = struct{}{}
	return nil
}

// Events returns key's events in insertion order, plus any recurring-event
// occurrences landing on that date, or nil when the date has none.
func (s *Store) Events(key DateKey) []CalendarEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var events []CalendarEvent
	if bucket, ok := s.buckets[key]; ok {
		events = append(events, bucket...)
	}
	events = append(events, s.occurrencesOn(key)...)
	return events
}

// BucketEvents returns only key's own bucket, without recurring
// occurrences from other dates. This is what gets persisted; occurrences
// are always recomputed from their anchor.
func (s *Store) BucketEvents(key DateKey) []CalendarEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket, ok := s.buckets[key]
	if !ok {
		return nil
	}
	events := make([]CalendarEvent, len(bucket))
	copy(events, bucket)
	return events
}

// Buckets snapshots every bucket, sorted by key for a stable listing.
func (s *Store) Buckets() []Bucket {
	s.mu.RLock()
	defer s.mu.RUnlock()

	buckets := make([]Bucket, 0, len(s.buckets))
	for key, events := range s.buckets {
		bucket := Bucket{Date: key, Events: make([]CalendarEvent, len(events))}
		copy(bucket.Events, events)
		buckets = append(buckets, bucket)
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].Date < buckets[j].Date
	})
	return buckets
}

// Load replaces the store's content from cached buckets, e.g. at boot.
// Loaded buckets start clean.
func (s *Store) Load(buckets []Bucket) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.buckets = make(map[DateKey][]CalendarEvent, len(buckets))
	s.dirty = make(map[DateKey]struct{})
	for _, bucket := range buckets {
		if len(bucket.Events) == 0 {
			continue
		}
		events := make([]CalendarEvent, len(bucket.Events))
		copy(events, bucket.Events)
		s.buckets[bucket.Date] = events
	}
}

// DrainDirty returns the keys mutated since the last drain and clears the
// set. The flush scheduler re-marks keys whose flush failed.
func (s *Store) DrainDirty() []DateKey {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]DateKey, 0, len(s.dirty))
	for key := range s.dirty {
		keys = append(keys, key)
	}
	s.dirty = make(map[DateKey]struct{})
	return keys
}

// MarkDirty re-queues a key for the next flush pass.
func (s *Store) MarkDirty(key DateKey) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty[key] = struct{}{}
}
