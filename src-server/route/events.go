package route

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"gridcal/src-server/model"
	"gridcal/src-server/store"
	"gridcal/src-server/utils"
)

// flushBucket writes one date's bucket through to sqlite and reports the
// write latency. The store keeps its mutation either way; on failure the
// key is re-queued for the background flusher.
func flushBucket(ctx context.Context, as *utils.AppState, key store.DateKey) error {
	startTimer := time.Now()
	if err := model.FlushBucket(ctx, as.BunDB, key, as.EventStore.BucketEvents(key)); err != nil {
		as.EventStore.MarkDirty(key)
		return err
	}
	utils.ReportMetric(as.MetricChans.DatabaseWrite, float64(time.Since(startTimer).Microseconds()))
	return nil
}

func Events(muxer *http.ServeMux, as *utils.AppState) {
	// every bucket, the same {date, events} shape the cache holds
	muxer.HandleFunc("GET /events/{user}/", UserMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			respBodyJson, err := json.Marshal(as.EventStore.Buckets())
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("Can't marshal response body"))
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write(respBodyJson)
		}))

	// create an event on a date; the store generates the ID
	muxer.HandleFunc("POST /events/{user}/{date}", UserMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")

			var reqBody store.CalendarEvent
			if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("Invalid request body"))
				return
			}
			reqBody.Title = utils.CleanupString(reqBody.Title)

			key := store.DateKey(r.PathValue("date"))
			startTimer := time.Now()
			stored, err := as.EventStore.Add(reqBody, key)
			utils.ReportMetric(as.MetricChans.StoreMutation, float64(time.Since(startTimer).Microseconds()))
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(err.Error()))
				return
			}

			if err := flushBucket(r.Context(), as, key); err != nil {
				slog.Error("can't flush bucket after create", "date", key, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("Event stored but not cached"))
				return
			}

			respBodyJson, err := json.Marshal(stored)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("Can't marshal response body"))
				return
			}
			w.WriteHeader(http.StatusCreated)
			w.Write(respBodyJson)
		}))

	// wholesale replace by ID
	muxer.HandleFunc("PATCH /events/{user}/{id}", UserMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			var reqBody store.CalendarEvent
			if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("Invalid request body"))
				return
			}
			reqBody.Title = utils.CleanupString(reqBody.Title)

			id := r.PathValue("id")
			startTimer := time.Now()
			err := as.EventStore.Edit(reqBody, id)
			utils.ReportMetric(as.MetricChans.StoreMutation, float64(time.Since(startTimer).Microseconds()))
			if err != nil {
				w.WriteHeader(http.StatusNotFound)
				w.Write([]byte(err.Error()))
				return
			}

			key, err := store.DateKeyFromEventID(id)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(err.Error()))
				return
			}
			if err := flushBucket(r.Context(), as, key); err != nil {
				slog.Error("can't flush bucket after edit", "date", key, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("Event stored but not cached"))
				return
			}
			w.WriteHeader(http.StatusOK)
		}))

	// remove by ID; already-gone events are fine
	muxer.HandleFunc("DELETE /events/{user}/{id}", UserMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			id := r.PathValue("id")
			startTimer := time.Now()
			err := as.EventStore.Delete(id)
			utils.ReportMetric(as.MetricChans.StoreMutation, float64(time.Since(startTimer).Microseconds()))
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(err.Error()))
				return
			}

			key, err := store.DateKeyFromEventID(id)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(err.Error()))
				return
			}
			if err := flushBucket(r.Context(), as, key); err != nil {
				slog.Error("can't flush bucket after delete", "date", key, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("Event removed but not uncached"))
				return
			}
			w.WriteHeader(http.StatusOK)
		}))

	type QuickAddReqBody struct {
		Text  string `json:"text"`
		Color string `json:"color"`
	}

	// create an event from natural language, e.g. "dentist tomorrow 9am"
	muxer.HandleFunc("POST /events/{user}/quick-add", UserMiddleware(as,
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")

			var reqBody QuickAddReqBody
			if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("Invalid request body"))
				return
			}
			if reqBody.Text == "" {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("Please provide a text to parse"))
				return
			}

			now := time.Now().In(as.Config.GetLocation())
			result, err := as.When.Parse(reqBody.Text, now)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("Can't parse date: " + err.Error()))
				return
			}
			if result == nil {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("No date found in text"))
				return
			}

			// everything around the matched date fragment becomes the title
			title := utils.CleanupString(reqBody.Text[:result.Index] + reqBody.Text[result.Index+len(result.Text):])
			if title == "" {
				title = "Untitled Event"
			}

			start := result.Time
			key := store.DateKeyFromTime(start)
			stored, err := as.EventStore.Add(store.CalendarEvent{
				Title:    title,
				TimeFrom: start.Format("15:04"),
				TimeTo:   start.Add(time.Hour).Format("15:04"),
				Color:    reqBody.Color,
			}, key)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(err.Error()))
				return
			}

			if err := flushBucket(r.Context(), as, key); err != nil {
				slog.Error("can't flush bucket after quick-add", "date", key, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("Event stored but not cached"))
				return
			}

			respBody := struct {
				Date  store.DateKey       `json:"date"`
				Event store.CalendarEvent `json:"event"`
			}{Date: key, Event: stored}
			respBodyJson, err := json.Marshal(respBody)
			if err != nil {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("Can't marshal response body"))
				return
			}
			w.WriteHeader(http.StatusCreated)
			w.Write(respBodyJson)
		}))
}
