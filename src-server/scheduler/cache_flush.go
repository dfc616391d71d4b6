package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"gridcal/src-server/model"
	"gridcal/src-server/store"
	"gridcal/src-server/utils"
)

const (
	WORKER_COUNT = 4
)

// CacheFlush periodically writes dirty buckets back to sqlite. The HTTP
// handlers flush synchronously on each mutation; this loop only catches
// the keys whose synchronous flush failed, and runs one last pass on
// shutdown.
func CacheFlush(as *utils.AppState) {
	gracefulShutdownCh := as.CreateGracefulShutdownChan()
	ticker := time.NewTicker(as.Config.GetCacheFlushInterval())
	defer ticker.Stop()

	for {
		select {
		case <-gracefulShutdownCh:
			flushDirty(as)
			slog.Debug("cache flush stopped")
			return
		case <-ticker.C:
			flushDirty(as)
		}
	}
}

func flushDirty(as *utils.AppState) {
	keys := as.EventStore.DrainDirty()
	if len(keys) == 0 {
		return
	}

	jobs := make(chan store.DateKey, len(keys))
	var wg sync.WaitGroup

	for range WORKER_COUNT {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key := range jobs {
				startTimer := time.Now()
				if err := model.FlushBucket(context.Background(), as.BunDB, key, as.EventStore.BucketEvents(key)); err != nil {
					slog.Warn("can't flush bucket, will retry", "date", key, "error", err)
					as.EventStore.MarkDirty(key)
					continue
				}
				utils.ReportMetric(as.MetricChans.DatabaseWrite, float64(time.Since(startTimer).Microseconds()))
			}
		}()
	}

	for _, key := range keys {
		jobs <- key
	}
	close(jobs)
	wg.Wait()

	slog.Debug("cache flush pass done", "buckets", len(keys))
}
