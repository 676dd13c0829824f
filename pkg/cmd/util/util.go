// Package util contains the setup shared by the sub commands.
package util

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/mpapenbr/race-engineer-go/log"
	"github.com/mpapenbr/race-engineer-go/pkg/config"
	"github.com/mpapenbr/race-engineer-go/pkg/db/postgres"
	"github.com/mpapenbr/race-engineer-go/pkg/utils"
)

var lapTimeRegex = regexp.MustCompile(`^(?:(\d+):)?(\d+)(?:\.(\d{1,3}))?$`)

func parseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// SetupLogger installs the default logger according to the log flags and
// returns the logger to be used for sql tracing.
func SetupLogger() (*log.Logger, error) {
	json := config.LogFormat == "json"
	defLevel := log.InfoLevel
	if !json {
		defLevel = log.DebugLevel
	}
	var logger *log.Logger
	if config.LogFilter != "" {
		var err error
		logger, err = log.NewWithFilter(
			os.Stderr,
			parseLogLevel(config.LogLevel, defLevel),
			json,
			config.LogFilter,
			log.WithCaller(true),
			log.AddCallerSkip(1))
		if err != nil {
			return nil, fmt.Errorf("log filter: %w", err)
		}
	} else if json {
		logger = log.New(
			os.Stderr,
			parseLogLevel(config.LogLevel, defLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	} else {
		logger = log.DevLogger(
			os.Stderr,
			parseLogLevel(config.LogLevel, defLevel),
			log.WithCaller(true),
			log.AddCallerSkip(1))
	}
	log.ResetDefault(logger)

	var sqlLogger *log.Logger
	if json {
		sqlLogger = log.New(os.Stderr, parseLogLevel(config.SQLLogLevel, log.InfoLevel))
	} else {
		sqlLogger = log.DevLogger(os.Stderr, parseLogLevel(config.SQLLogLevel, log.InfoLevel))
	}
	return sqlLogger.Named("sql"), nil
}

// SetupTelemetry enables telemetry if requested. The returned pool option
// selects the matching query tracer. The returned telemetry may be nil.
//
//nolint:whitespace // can't make both editor and linter happy
func SetupTelemetry(ctx context.Context, sqlLogger *log.Logger) (
	postgres.PoolConfigOption, *config.Telemetry,
) {
	pgTraceOption := postgres.WithTracer(sqlLogger, log.DebugLevel)
	if !config.EnableTelemetry {
		return pgTraceOption, nil
	}
	log.Info("Enabling telemetry", log.String("endpoint", config.TelemetryEndpoint))
	telemetry, err := config.SetupTelemetry(ctx)
	if err == nil {
		pgTraceOption = postgres.WithOtlpTracer()
	} else {
		log.Warn("Could not setup telemetry", log.ErrorField(err))
	}
	err = otlpruntime.Start(otlpruntime.WithMinimumReadMemStatsInterval(time.Second))
	if err != nil {
		log.Warn("Could not start runtime metrics", log.ErrorField(err))
	}
	return pgTraceOption, telemetry
}

// WaitForServices waits for the configured database and NATS server.
func WaitForServices(ctx context.Context) error {
	timeout := ParseDuration(config.WaitForServices, 60*time.Second)
	if config.DB != "" {
		if err := utils.WaitForTCP(ctx, utils.ExtractFromDBURL(config.DB), timeout); err != nil {
			return fmt.Errorf("database not ready: %w", err)
		}
	}
	if config.NatsURL != "" {
		if err := utils.WaitForTCP(ctx, utils.ExtractFromNatsURL(config.NatsURL), timeout); err != nil {
			return fmt.Errorf("nats not ready: %w", err)
		}
	}
	return nil
}

// ParseDuration returns defaultVal if s is empty or invalid.
func ParseDuration(s string, defaultVal time.Duration) time.Duration {
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		log.Warn("Invalid duration value. Using default",
			log.String("value", s),
			log.Duration("default", defaultVal),
			log.ErrorField(err))
		return defaultVal
	}
	return d
}

// ParseLapTime accepts "m:ss.fff", "ss.fff" or a go duration like "1m45.2s".
// The empty string yields 0.
func ParseLapTime(s string) (int32, error) {
	if s == "" {
		return 0, nil
	}
	if m := lapTimeRegex.FindStringSubmatch(s); m != nil {
		minutes, seconds, millis := 0, 0, 0
		if m[1] != "" {
			minutes, _ = strconv.Atoi(m[1])
		}
		seconds, _ = strconv.Atoi(m[2])
		if m[3] != "" {
			frac := (m[3] + "00")[:3]
			millis, _ = strconv.Atoi(frac)
		}
		return int32((minutes*60+seconds)*1000 + millis), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid lap time %q", s)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid lap time %q", s)
	}
	return int32(d.Milliseconds()), nil
}
