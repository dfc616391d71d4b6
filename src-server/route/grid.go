package route

import (
	"encoding/json"
	"net/http"
	"time"

	"gridcal/src-server/grid"
	"gridcal/src-server/store"
	"gridcal/src-server/utils"
)

func Grid(muxer *http.ServeMux, as *utils.AppState) {
	type MonthGridReqBody struct {
		Year  int `json:"year"`
		Month int `json:"month"` // one-based
	}

	type MonthGridRespBody struct {
		grid.Meta
		Cells []grid.Cell `json:"cells"`
	}

	// the full month view: metadata plus one cell per grid index
	muxer.HandleFunc("POST /calendar/month-grid", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		var reqBody MonthGridReqBody
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}
		if reqBody.Month < 1 || reqBody.Month > 12 {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Month must be between 1 and 12"))
			return
		}

		m := store.MonthFromOneBased(reqBody.Month)
		meta := grid.Metadata(reqBody.Year, m)
		now := time.Now().In(as.Config.GetLocation())

		respBody := MonthGridRespBody{Meta: meta}
		for index := 0; index < meta.PaddingDays+meta.MonthLength; index++ {
			respBody.Cells = append(respBody.Cells, grid.ResolveMonthCell(index, m, reqBody.Year, meta, now, as.EventStore))
		}

		respBodyJson, err := json.Marshal(respBody)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't marshal response body"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write(respBodyJson)
	})

	type WeekGridReqBody struct {
		Year  int `json:"year"`
		Month int `json:"month"` // one-based
		Day   int `json:"day"`
	}

	type WeekGridRespBody struct {
		grid.Meta
		Columns []grid.WeekCell `json:"columns"`
	}

	// the Monday-first week containing the given day, one column per day
	muxer.HandleFunc("POST /calendar/week-grid", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		var reqBody WeekGridReqBody
		if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Invalid request body"))
			return
		}
		if reqBody.Month < 1 || reqBody.Month > 12 {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Month must be between 1 and 12"))
			return
		}

		m := store.MonthFromOneBased(reqBody.Month)
		meta := grid.Metadata(reqBody.Year, m)
		now := time.Now().In(as.Config.GetLocation())

		// how far the reference day sits from its week's Monday
		weekday := int(time.Date(reqBody.Year, m.Time(), reqBody.Day, 0, 0, 0, 0, time.UTC).Weekday())
		weekStart := reqBody.Day - (weekday+6)%7

		respBody := WeekGridRespBody{Meta: meta}
		for column := 0; column < 7; column++ {
			respBody.Columns = append(respBody.Columns, grid.ResolveWeekCell(weekStart+column, m, reqBody.Year, meta, now, as.EventStore))
		}

		respBodyJson, err := json.Marshal(respBody)
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("Can't marshal response body"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write(respBodyJson)
	})
}
