package model

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gridcal/src-server/store"

	"github.com/uptrace/bun"
)

// Event is the durable mirror of one bucket entry. The in-memory store is
// the source of truth; these rows only exist so a restart can rebuild it.
type Event struct {
	bun.BaseModel `bun:"table:events"`

	ID          string `bun:"id,pk"`            // required
	Date        string `bun:"date,notnull"`     // required, DateKey string
	Title       string `bun:"title,notnull"`    // required
	TimeFrom    string `bun:"time_from"`
	TimeTo      string `bun:"time_to"`
	Description string `bun:"description"`
	AllDay      bool   `bun:"all_day"`
	Color       string `bun:"color"`
	Repeat      string `bun:"repeat"`
	Position    int    `bun:"position,notnull"` // insertion order within the bucket

	CreatedAt int64 `bun:"created_at,notnull"`
	UpdatedAt int64 `bun:"updated_at"`
}

func (e *Event) Upsert(ctx context.Context, db bun.IDB) error {
	switch {
	case e.ID == "":
		return fmt.Errorf("(*Event).Upsert: event id is blank")
	case e.Date == "":
		return fmt.Errorf("(*Event).Upsert: date is blank")
	case e.Title == "":
		return fmt.Errorf("(*Event).Upsert: title is blank")
	}
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().UTC().Unix()
	}

	exists, err := db.NewSelect().
		Model((*Event)(nil)).
		Where("id = ?", e.ID).
		Exists(ctx)
	if err != nil {
		return fmt.Errorf("(*Event).Upsert: %w", err)
	}

	switch exists {
	case true:
		e.UpdatedAt = time.Now().UTC().Unix()
		if _, err := db.NewUpdate().
			Model(e).
			WherePK().
			Exec(ctx); err != nil {
			return fmt.Errorf("(*Event).Upsert: %w", err)
		}
	case false:
		if _, err := db.NewInsert().
			Model(e).
			Exec(ctx); err != nil {
			return fmt.Errorf("(*Event).Upsert: %w", err)
		}
	}

	return nil
}

func fromStoreEvent(key store.DateKey, position int, event store.CalendarEvent) Event {
	return Event{
		ID:          event.ID,
		Date:        string(key),
		Title:       event.Title,
		TimeFrom:    event.TimeFrom,
		TimeTo:      event.TimeTo,
		Description: event.Description,
		AllDay:      event.AllDay,
		Color:       event.Color,
		Repeat:      event.Repeat,
		Position:    position,
	}
}

func (e *Event) toStoreEvent() store.CalendarEvent {
	return store.CalendarEvent{
		ID:          e.ID,
		Title:       e.Title,
		TimeFrom:    e.TimeFrom,
		TimeTo:      e.TimeTo,
		Description: e.Description,
		AllDay:      e.AllDay,
		Color:       e.Color,
		Repeat:      e.Repeat,
	}
}

// LoadBuckets rebuilds every date bucket from the cache, preserving each
// bucket's insertion order.
func LoadBuckets(ctx context.Context, db bun.IDB) ([]store.Bucket, error) {
	eventModels := make([]Event, 0)
	if err := db.NewSelect().
		Model(&eventModels).
		Order("date ASC", "position ASC").
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("LoadBuckets: %w", err)
	}

	buckets := make([]store.Bucket, 0)
	byDate := make(map[store.DateKey]int)
	for _, eventModel := range eventModels {
		key := store.DateKey(eventModel.Date)
		index, ok := byDate[key]
		if !ok {
			index = len(buckets)
			byDate[key] = index
			buckets = append(buckets, store.Bucket{Date: key})
		}
		buckets[index].Events = append(buckets[index].Events, eventModel.toStoreEvent())
	}
	return buckets, nil
}

// FlushBucket replaces one date's cached rows with the store's current
// bucket content. An empty events slice clears the date.
func FlushBucket(ctx context.Context, db *bun.DB, key store.DateKey, events []store.CalendarEvent) error {
	if err := db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*Event)(nil)).
			Where("date = ?", string(key)).
			Exec(ctx); err != nil {
			return fmt.Errorf("can't clear old rows: %w", err)
		}
		for position, event := range events {
			eventModel := fromStoreEvent(key, position, event)
			if err := eventModel.Upsert(ctx, tx); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return fmt.Errorf("FlushBucket: %w", err)
	}
	return nil
}
