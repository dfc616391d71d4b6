package utils

import (
	"log/slog"
	"os"
	"time"
)

type Config struct {
	port       string
	sqlitePath string

	calendarUser string
	location     *time.Location

	cacheFlushInterval       time.Duration
	metricCollectionInterval time.Duration
}

func NewConfig() *Config {
	return &Config{
		port: func() string {
			port := os.Getenv("PORT")
			if port == "" {
				port = "8080"
			}
			slog.Debug("env", "PORT", port)
			return port
		}(),

		sqlitePath: func() string {
			sqlitePath := os.Getenv("SQLITE_PATH")
			if sqlitePath == "" {
				slog.Warn("SQLITE_PATH is not set, using ./sqlite.db")
				sqlitePath = "./sqlite.db"
			}
			slog.Debug("env", "SQLITE_PATH", sqlitePath)
			return sqlitePath
		}(),

		calendarUser: func() string {
			calendarUser := os.Getenv("CALENDAR_USER")
			if calendarUser == "" {
				slog.Error("CALENDAR_USER is not set")
				os.Exit(1)
			}
			slog.Debug("env", "CALENDAR_USER", calendarUser)
			return calendarUser
		}(),

		location: func() *time.Location {
			timezoneStr := os.Getenv("TIMEZONE")
			var loc *time.Location
			var err error
			switch timezoneStr {
			case "":
				slog.Warn("TIMEZONE is not set, using local timezone", "timezone", time.Local)
				loc = time.Local
			case "UTC":
				loc = time.UTC
			default:
				loc, err = time.LoadLocation(timezoneStr)
				if err != nil {
					slog.Error("invalid timezone", "timezone", timezoneStr, "error", err)
					os.Exit(1)
				}
			}
			slog.Debug("env", "TIMEZONE", timezoneStr)
			return loc
		}(),

		cacheFlushInterval: func() time.Duration {
			cacheFlushInterval := os.Getenv("CACHE_FLUSH_INTERVAL")
			if cacheFlushInterval == "" {
				cacheFlushInterval = "30s"
			}
			duration, err := time.ParseDuration(cacheFlushInterval)
			if err != nil {
				slog.Error("invalid CACHE_FLUSH_INTERVAL", "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "CACHE_FLUSH_INTERVAL", cacheFlushInterval, "duration", duration)
			return duration
		}(),

		metricCollectionInterval: func() time.Duration {
			metricCollectionInterval := os.Getenv("METRIC_COLLECTION_INTERVAL")
			if metricCollectionInterval == "" {
				metricCollectionInterval = "1m"
			}
			duration, err := time.ParseDuration(metricCollectionInterval)
			if err != nil {
				slog.Error("invalid METRIC_COLLECTION_INTERVAL", "error", err)
				os.Exit(1)
			}
			slog.Debug("env", "METRIC_COLLECTION_INTERVAL", metricCollectionInterval, "duration", duration)
			return duration
		}(),
	}
}

// Get PORT env, default to 8080
func (c *Config) GetPort() string {
	return c.port
}

// Get SQLITE_PATH env, default to ./sqlite.db
func (c *Config) GetSqlitePath() string {
	return c.sqlitePath
}

// Get CALENDAR_USER env, the single account the events API serves
func (c *Config) GetCalendarUser() string {
	return c.calendarUser
}

// Get TIMEZONE env
func (c *Config) GetLocation() *time.Location {
	return c.location
}

// Get CACHE_FLUSH_INTERVAL env
func (c *Config) GetCacheFlushInterval() time.Duration {
	return c.cacheFlushInterval
}

// Get METRIC_COLLECTION_INTERVAL env
func (c *Config) GetMetricCollectionInterval() time.Duration {
	return c.metricCollectionInterval
}
