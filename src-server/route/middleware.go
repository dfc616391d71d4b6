package route

import (
	"log/slog"
	"net/http"
	"time"

	"gridcal/src-server/utils"
)

// UserMiddleware rejects requests for anyone but the configured calendar
// user and reports request latency. The API serves a single account.
func UserMiddleware(as *utils.AppState, next func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		user := r.PathValue("user")
		if user != as.Config.GetCalendarUser() {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("Unknown calendar user"))
			slog.Debug("request for unknown user", "user", user, "path", r.URL.Path)
			return
		}

		startTimer := time.Now()
		next(w, r)
		utils.ReportMetric(as.MetricChans.HttpRequest, float64(time.Since(startTimer).Microseconds()))
	}
}
