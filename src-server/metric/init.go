package metric

import (
	"log/slog"
	"time"

	"gridcal/src-server/utils"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// registerGauge registers g, tolerating a previous registration.
func registerGauge(g prometheus.Gauge, name string) {
	if err := prometheus.Register(g); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
			slog.Error("can't register metric", "metric", name, "error", err)
			return
		}
	}
	slog.Debug("metric registered", "metric", name)
	g.Set(0)
}

func unregisterGauge(g prometheus.Gauge, name string) {
	switch prometheus.Unregister(g) {
	case true:
		slog.Debug("metric unregistered", "metric", name)
	case false:
		slog.Warn("metric not registered", "metric", name)
	}
}

// databaseEmptyRead samples the latency of an empty events-table read on a
// fixed interval, a cheap liveness probe of the sqlite cache.
func databaseEmptyRead(as *utils.AppState, tickerInterval time.Duration) {
	name := "gridcal_database_empty_read_microsec"
	gauge := promauto.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: "The latency of an empty database read in microseconds",
	})
	registerGauge(gauge, name)
	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		ticker := time.NewTicker(tickerInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gracefulShutdownCh:
				unregisterGauge(gauge, name)
				return
			case <-ticker.C:
				latency, err := database(as)
				if err != nil {
					slog.Error("can't get database latency", "error", err)
					continue
				}
				gauge.Set(float64(latency.Microseconds()))
			}
		}
	}()
}

// channelGauge mirrors latency samples from ch into a gauge, clearing it
// when no sample arrives for a while.
func channelGauge(as *utils.AppState, ch chan float64, name string, help string, clearTickerInterval time.Duration) {
	gauge := promauto.NewGauge(prometheus.GaugeOpts{
		Name: name,
		Help: help,
	})
	registerGauge(gauge, name)
	go func() {
		gracefulShutdownCh := as.CreateGracefulShutdownChan()
		clearTicker := time.NewTicker(clearTickerInterval)
		defer clearTicker.Stop()
		for {
			select {
			case <-gracefulShutdownCh:
				unregisterGauge(gauge, name)
				return
			case latency := <-ch:
				gauge.Set(latency)
				clearTicker.Reset(clearTickerInterval)
			case <-clearTicker.C:
				gauge.Set(0)
			}
		}
	}()
}

func Init(as *utils.AppState) {
	tickerInterval := as.Config.GetMetricCollectionInterval()
	clearTickerInterval := as.Config.GetMetricCollectionInterval() * 2

	databaseEmptyRead(as, tickerInterval)
	channelGauge(as, as.MetricChans.DatabaseRead,
		"gridcal_database_read_microsec",
		"The latency of a database read in microseconds",
		clearTickerInterval)
	channelGauge(as, as.MetricChans.DatabaseWrite,
		"gridcal_database_write_microsec",
		"The latency of a database write in microseconds",
		clearTickerInterval)
	channelGauge(as, as.MetricChans.StoreMutation,
		"gridcal_store_mutation_microsec",
		"The latency of a bucket store mutation in microseconds",
		clearTickerInterval)
	channelGauge(as, as.MetricChans.HttpRequest,
		"gridcal_http_request_microsec",
		"The latency of an events API request in microseconds",
		clearTickerInterval)
}
