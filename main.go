package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gridcal/src-server/metric"
	"gridcal/src-server/model"
	"gridcal/src-server/route"
	"gridcal/src-server/scheduler"
	"gridcal/src-server/utils"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func main() {
	as := utils.NewAppState()

	if err := model.CreateSchema(as.BunDB); err != nil {
		slog.Error("can't create database schema", "error", err)
		os.Exit(1)
	}

	// rebuild the in-memory bucket store from the sqlite cache
	buckets, err := model.LoadBuckets(context.Background(), as.BunDB)
	if err != nil {
		slog.Error("can't load cached buckets", "error", err)
		os.Exit(1)
	}
	as.EventStore.Load(buckets)
	slog.Info("bucket store hydrated", "buckets", len(buckets))

	go metric.Init(as)
	go scheduler.CacheFlush(as)

	// http server
	go func() {
		muxer := http.NewServeMux()
		muxer.Handle("GET /metrics", promhttp.Handler())
		route.Events(muxer, as)
		route.Grid(muxer, as)
		if err := http.ListenAndServe(":"+as.Config.GetPort(), muxer); err != nil {
			slog.Error("cannot start HTTP server", "error", err)
			as.AppCloseSignalChan <- syscall.SIGTERM
		}
	}()

	slog.Info("app is now running, press Ctrl+C to exit", "port", as.Config.GetPort())

	signal.Notify(as.AppCloseSignalChan, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-as.AppCloseSignalChan
	as.GracefulShutdown()

	// give the flush scheduler a moment to run its final pass
	time.Sleep(time.Second)
	if err := as.RawDB.Close(); err != nil {
		slog.Warn("can't close database", "error", err)
	}

	slog.Info("Gracefully shutting down...")
}
