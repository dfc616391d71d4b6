package grid_test

import (
	"testing"
	"time"

	"gridcal/src-server/grid"
	"gridcal/src-server/store"
)

func TestResolveWeekCellRollover(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)

	// case: offset 0 in January resolves to December 31 of the prior year
	func() {
		m := store.MonthFromOneBased(1)
		meta := grid.Metadata(2024, m)
		cell := grid.ResolveWeekCell(0, m, 2024, meta, now, nil)
		day, month, year, err := cell.Date.Parse()
		if err != nil {
			t.Fatal(err)
		}
		if day != 31 || month.OneBased() != 12 || year != 2023 {
			t.Error("offset 0 in january should be dec 31 of the prior year", cell.Date)
		}
	}()

	// case: negative offsets keep counting back
	func() {
		m := store.MonthFromOneBased(3)
		meta := grid.Metadata(2024, m)
		cell := grid.ResolveWeekCell(-2, m, 2024, meta, now, nil)
		if cell.Date != store.DateKey("27-2-2024") {
			t.Error("offset -2 in march 2024 should be feb 27", cell.Date)
		}
	}()

	// case: overshooting December rolls into January of the next year
	func() {
		m := store.MonthFromOneBased(12)
		meta := grid.Metadata(2024, m)
		cell := grid.ResolveWeekCell(meta.MonthLength+1, m, 2024, meta, now, nil)
		day, month, year, err := cell.Date.Parse()
		if err != nil {
			t.Fatal(err)
		}
		if day != 1 || month.OneBased() != 1 || year != 2025 {
			t.Error("dec 31 + 1 should be jan 1 of the next year", cell.Date)
		}
		if cell.Day != "01/01" {
			t.Error("first of month should carry the month label", cell.Day)
		}
	}()

	// case: in-range offsets pass through unchanged
	func() {
		m := store.MonthFromOneBased(6)
		meta := grid.Metadata(2024, m)
		cell := grid.ResolveWeekCell(15, m, 2024, meta, now, nil)
		if cell.Date != store.DateKey("15-6-2024") || cell.Day != "15" {
			t.Error("in-range offset mangled", cell.Date, cell.Day)
		}
	}()
}

func TestResolveWeekCellCurrentDay(t *testing.T) {
	now := time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)
	m := store.MonthFromOneBased(3)
	meta := grid.Metadata(2024, m)

	if cell := grid.ResolveWeekCell(15, m, 2024, meta, now, nil); !cell.IsCurrentDay {
		t.Error("march 15 should be the current day")
	}
	if cell := grid.ResolveWeekCell(16, m, 2024, meta, now, nil); cell.IsCurrentDay {
		t.Error("march 16 should not be the current day")
	}
}

func TestRowSpan(t *testing.T) {
	// each case pins one branch of the half-hour row mapping
	cases := []struct {
		from, to string
		want     string
	}{
		{"01:30", "02:00", "4/5"},  // :30 start, on-the-hour end snaps back
		{"00:00", "01:00", "1/3"},  // first slot of the day
		{"09:00", "10:30", "19/22"},
		{"13:15", "14:45", "27/31"}, // minutes past :30 extend the end row
		{"23:30", "23:59", "48/49"}, // last slot of the day
	}
	for _, c := range cases {
		got, err := grid.RowSpan(c.from, c.to)
		if err != nil {
			t.Fatal(c.from, c.to, err)
		}
		if got != c.want {
			t.Error("wrong row span", c.from, c.to, got, c.want)
		}
	}

	// case: an end before the start is accepted and produces the
	// degenerate span unchanged (deliberately permissive)
	func() {
		got, err := grid.RowSpan("05:00", "02:00")
		if err != nil {
			t.Fatal(err)
		}
		if got != "11/5" {
			t.Error("degenerate span should pass through", got)
		}
	}()

	// case: malformed times are an error, not a panic
	if _, err := grid.RowSpan("late", "02:00"); err == nil {
		t.Error("unparseable time should error")
	}
}

func TestResolveWeekCellPlacements(t *testing.T) {
	now := time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)
	m := store.MonthFromOneBased(3)
	meta := grid.Metadata(2024, m)

	source := stubSource{
		"15-3-2024": {
			{ID: "15-3-2024_a", Title: "Standup", TimeFrom: "01:30", TimeTo: "02:00"},
			{ID: "15-3-2024_b", Title: "Offsite", AllDay: true},
			{ID: "15-3-2024_c", Title: "Broken", TimeFrom: "xx", TimeTo: "02:00"},
		},
	}

	cell := grid.ResolveWeekCell(15, m, 2024, meta, now, source)
	if len(cell.Events) != 3 {
		t.Fatal("all events of the day should be attached", len(cell.Events))
	}
	// all-day and unparseable events stay off the hour grid
	if len(cell.Placements) != 1 {
		t.Fatal("only the timed event should be placed", cell.Placements)
	}
	if cell.Placements[0].EventID != "15-3-2024_a" || cell.Placements[0].RowSpan != "4/5" {
		t.Error("wrong placement", cell.Placements[0])
	}
}
