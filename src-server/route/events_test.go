package route_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"gridcal/src-server/grid"
	"gridcal/src-server/model"
	"gridcal/src-server/route"
	"gridcal/src-server/store"
	"gridcal/src-server/utils"
)

func newTestServer(t *testing.T) (*httptest.Server, *utils.AppState) {
	t.Helper()
	t.Setenv("CALENDAR_USER", "tester")
	t.Setenv("SQLITE_PATH", filepath.Join(t.TempDir(), "sqlite.db"))
	t.Setenv("TIMEZONE", "UTC")

	as := utils.NewAppState()
	if err := model.CreateSchema(as.BunDB); err != nil {
		t.Fatal(err)
	}

	muxer := http.NewServeMux()
	route.Events(muxer, as)
	route.Grid(muxer, as)

	server := httptest.NewServer(muxer)
	t.Cleanup(server.Close)
	t.Cleanup(func() { as.RawDB.Close() })
	return server, as
}

func doJSON(t *testing.T, method, url string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func TestEventsCRUD(t *testing.T) {
	server, as := newTestServer(t)

	// case: create generates a date-prefixed id and persists
	var stored store.CalendarEvent
	func() {
		resp := doJSON(t, "POST", server.URL+"/events/tester/15-3-2024", store.CalendarEvent{
			Title:    "dentist appointment.",
			TimeFrom: "09:00",
			TimeTo:   "09:30",
			Color:    "#0057ba",
		})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			t.Fatal("wrong status", resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(&stored); err != nil {
			t.Fatal(err)
		}
		if stored.Title != "Dentist Appointment" {
			t.Error("title should be cleaned up", stored.Title)
		}
		key, err := store.DateKeyFromEventID(stored.ID)
		if err != nil || key != store.DateKey("15-3-2024") {
			t.Error("id should carry the date key", stored.ID)
		}
	}()

	// case: the listing returns the bucket shape
	func() {
		resp := doJSON(t, "GET", server.URL+"/events/tester/", nil)
		defer resp.Body.Close()
		var buckets []store.Bucket
		if err := json.NewDecoder(resp.Body).Decode(&buckets); err != nil {
			t.Fatal(err)
		}
		if len(buckets) != 1 || buckets[0].Date != store.DateKey("15-3-2024") {
			t.Fatal("wrong listing", buckets)
		}
	}()

	// case: edit replaces under the same id
	func() {
		resp := doJSON(t, "PATCH", server.URL+"/events/tester/"+stored.ID, store.CalendarEvent{
			Title:    "Dentist Moved",
			TimeFrom: "10:00",
			TimeTo:   "10:30",
		})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatal("wrong status", resp.StatusCode)
		}
		events := as.EventStore.Events(store.DateKey("15-3-2024"))
		if len(events) != 1 || events[0].Title != "Dentist Moved" || events[0].ID != stored.ID {
			t.Error("edit did not replace in place", events)
		}
	}()

	// case: edits survive a cache reload
	func() {
		buckets, err := model.LoadBuckets(context.Background(), as.BunDB)
		if err != nil {
			t.Fatal(err)
		}
		if len(buckets) != 1 || buckets[0].Events[0].Title != "Dentist Moved" {
			t.Error("cache out of sync", buckets)
		}
	}()

	// case: editing an unknown id is a 404
	func() {
		resp := doJSON(t, "PATCH", server.URL+"/events/tester/15-3-2024_missing", store.CalendarEvent{
			Title: "Ghost", AllDay: true,
		})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Error("wrong status", resp.StatusCode)
		}
	}()

	// case: delete removes, and a second delete still succeeds
	func() {
		resp := doJSON(t, "DELETE", server.URL+"/events/tester/"+stored.ID, nil)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatal("wrong status", resp.StatusCode)
		}
		if events := as.EventStore.Events(store.DateKey("15-3-2024")); events != nil {
			t.Error("event should be gone", events)
		}
		again := doJSON(t, "DELETE", server.URL+"/events/tester/"+stored.ID, nil)
		defer again.Body.Close()
		if again.StatusCode != http.StatusOK {
			t.Error("deleting a missing id should still succeed", again.StatusCode)
		}
	}()

	// case: the wrong user never sees the API
	func() {
		resp := doJSON(t, "GET", server.URL+"/events/somebody/", nil)
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNotFound {
			t.Error("wrong status", resp.StatusCode)
		}
	}()
}

func TestQuickAdd(t *testing.T) {
	server, _ := newTestServer(t)

	resp := doJSON(t, "POST", server.URL+"/events/tester/quick-add", map[string]string{
		"text":  "dentist tomorrow at 9am",
		"color": "#0057ba",
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatal("wrong status", resp.StatusCode)
	}

	var respBody struct {
		Date  store.DateKey       `json:"date"`
		Event store.CalendarEvent `json:"event"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		t.Fatal(err)
	}
	if respBody.Event.TimeFrom != "09:00" || respBody.Event.TimeTo != "10:00" {
		t.Error("parsed time lost", respBody.Event)
	}
	if respBody.Event.Title != "Dentist" {
		t.Error("text around the date should become the title", respBody.Event.Title)
	}

	// case: text with no date is a 400
	bad := doJSON(t, "POST", server.URL+"/events/tester/quick-add", map[string]string{
		"text": "a string that could mean anything",
	})
	defer bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Error("wrong status", bad.StatusCode)
	}
}

func TestGridEndpoints(t *testing.T) {
	server, as := newTestServer(t)

	if _, err := as.EventStore.Add(store.CalendarEvent{
		Title:    "Standup",
		TimeFrom: "01:30",
		TimeTo:   "02:00",
	}, store.DateKey("15-3-2024")); err != nil {
		t.Fatal(err)
	}

	// case: month grid has the right shape and carries the event
	func() {
		resp := doJSON(t, "POST", server.URL+"/calendar/month-grid", map[string]int{
			"year": 2024, "month": 3,
		})
		defer resp.Body.Close()
		var respBody struct {
			grid.Meta
			Cells []grid.Cell `json:"cells"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
			t.Fatal(err)
		}
		if respBody.PaddingDays != 4 || respBody.MonthLength != 31 || respBody.PreviousMonthLength != 29 {
			t.Error("wrong march 2024 metadata", respBody.Meta)
		}
		if len(respBody.Cells) != respBody.PaddingDays+respBody.MonthLength {
			t.Fatal("wrong cell count", len(respBody.Cells))
		}
		found := false
		for _, cell := range respBody.Cells {
			if cell.Date == store.DateKey("15-3-2024") && len(cell.Events) == 1 {
				found = true
			}
		}
		if !found {
			t.Error("event missing from its cell")
		}
	}()

	// case: week grid spans Monday to Sunday with placements
	func() {
		resp := doJSON(t, "POST", server.URL+"/calendar/week-grid", map[string]int{
			"year": 2024, "month": 3, "day": 15,
		})
		defer resp.Body.Close()
		var respBody struct {
			grid.Meta
			Columns []grid.WeekCell `json:"columns"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
			t.Fatal(err)
		}
		if len(respBody.Columns) != 7 {
			t.Fatal("a week has seven columns", len(respBody.Columns))
		}
		// March 15, 2024 is a Friday; its week starts Monday the 11th
		if respBody.Columns[0].Date != store.DateKey("11-3-2024") {
			t.Error("week should start on monday", respBody.Columns[0].Date)
		}
		friday := respBody.Columns[4]
		if friday.Date != store.DateKey("15-3-2024") || len(friday.Placements) != 1 {
			t.Fatal("friday should carry the placement", friday)
		}
		if friday.Placements[0].RowSpan != "4/5" {
			t.Error("wrong row span", friday.Placements[0])
		}
	}()

	// case: month out of range
	func() {
		resp := doJSON(t, "POST", server.URL+"/calendar/month-grid", map[string]int{
			"year": 2024, "month": 13,
		})
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusBadRequest {
			t.Error("wrong status", resp.StatusCode)
		}
	}()
}
