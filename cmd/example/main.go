// Command example boots a demo Igniter application: a logrus/stdout
// logger driver, a Redis-or-noop store, an otel-or-datadog-or-noop
// telemetry driver — selected the way the teacher's cmd/http bootstrap
// picked infrastructure drivers from config — and a small "notes"
// controller exercising query, mutation, and stream actions end to end.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	igniter "github.com/igniter-hq/igniter-go"
	"github.com/igniter-hq/igniter-go/adapter/fiberadapter"
	"github.com/igniter-hq/igniter-go/config"
	"github.com/igniter-hq/igniter-go/jobs"
	"github.com/igniter-hq/igniter-go/logger"
	"github.com/igniter-hq/igniter-go/logger/logrusadapter"
	"github.com/igniter-hq/igniter-go/logger/stdoutadapter"
	"github.com/igniter-hq/igniter-go/logger/ziplogger"
	"github.com/igniter-hq/igniter-go/realtime"
	"github.com/igniter-hq/igniter-go/store"
	"github.com/igniter-hq/igniter-go/store/redisstore"
	"github.com/igniter-hq/igniter-go/telemetry"
	"github.com/igniter-hq/igniter-go/telemetry/datadogtelemetry"
	"github.com/igniter-hq/igniter-go/telemetry/oteltelemetry"

	"github.com/sirupsen/logrus"
	"go.uber.org/zap/zapcore"
)

func main() {
	cfg := loadConfig()
	log := buildLogger(cfg)
	tel := buildTelemetry(cfg, log)
	defer tel.Close()
	st := buildStore(cfg, log)

	app := igniter.New().
		Context(func() map[string]any {
			return map[string]any{"app": cfg.App.Name}
		}).
		Config(igniter.Config{
			BaseURL:        cfg.HTTP.BaseURL,
			BasePath:       cfg.HTTP.BasePath,
			TimeoutMs:      cfg.HTTP.TimeoutMs,
			BodyLimitBytes: cfg.HTTP.BodyLimitBytes,
			Realtime: igniter.RealtimeConfig{
				HeartbeatMs:    cfg.Realtime.HeartbeatMs,
				QueueSize:      cfg.Realtime.QueueSize,
				OverflowPolicy: parseOverflowPolicy(cfg.Realtime.OverflowPolicy),
			},
			CookieSigningSecret: []byte(os.Getenv("IGNITER_COOKIE_SECRET")),
		}).
		Store(st).
		Logger(log).
		Jobs(jobs.NewNoop()).
		Telemetry(tel).
		Controller("notes", newNotesController()).
		Create()

	fiberApp := fiberadapter.New(app, cfg.App.Name, cfg.HTTP.Prefork)

	go func() {
		port := cfg.HTTP.Port
		if port == 0 {
			port = 8080
		}
		addr := fmt.Sprintf(":%d", port)
		log.Info("server listening", logger.Fields{"addr": addr})
		if err := fiberApp.Listen(addr); err != nil {
			log.Error("server stopped", logger.Fields{"error": err.Error()})
		}
	}()

	waitForShutdown(fiberApp, app, log)
}

// parseOverflowPolicy maps the config file's string setting to the
// realtime package's enum, defaulting to drop-oldest for an unrecognized
// or empty value (spec §4.7 "Backpressure").
func parseOverflowPolicy(value string) realtime.OverflowPolicy {
	switch value {
	case "drop-newest":
		return realtime.DropNewest
	case "close":
		return realtime.CloseOnOverflow
	default:
		return realtime.DropOldest
	}
}

func loadConfig() *config.Config {
	if path := os.Getenv("IGNITER_CONFIG_FILE"); path != "" {
		cfg, err := config.Load(path)
		if err == nil {
			return cfg
		}
	}
	cfg := config.Defaults()
	cfg.App.Name = "igniter-example"
	cfg.App.Env = "development"
	cfg.HTTP.Port = 8080
	return &cfg
}

// buildLogger selects the tinted stdout driver in development, and
// otherwise picks between the logrus and zap drivers per cfg.Log.Driver,
// mirroring the teacher's env-gated logger selection.
func buildLogger(cfg *config.Config) logger.Logger {
	if cfg.App.Env == "development" {
		return stdoutadapter.New(slog.LevelDebug)
	}
	if cfg.Log.Driver == "zap" {
		return ziplogger.New(zapLevelFromLogrusLevel(cfg.Log.Level))
	}
	return logrusadapter.New(logrusadapter.Options{
		Path:       cfg.Log.Path,
		Level:      logrus.Level(cfg.Log.Level),
		MaxSizeMB:  cfg.Log.Rotation.MaxSize,
		MaxBackups: cfg.Log.Rotation.MaxBackup,
		MaxAgeDays: cfg.Log.Rotation.MaxAge,
		Compress:   cfg.Log.Rotation.Compress,
	})
}

// zapLevelFromLogrusLevel translates cfg.Log.Level's logrus-style scale
// (Panic=0..Trace=6) into the nearest zapcore.Level, since the two
// drivers share one config field.
func zapLevelFromLogrusLevel(level int) zapcore.Level {
	switch logrus.Level(level) {
	case logrus.PanicLevel, logrus.FatalLevel:
		return zapcore.DPanicLevel
	case logrus.ErrorLevel:
		return zapcore.ErrorLevel
	case logrus.WarnLevel:
		return zapcore.WarnLevel
	case logrus.DebugLevel, logrus.TraceLevel:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

// buildStore dials Redis when IGNITER_REDIS_HOST is set, falling back to
// the no-op store (single-process, no cross-process revalidation bridge)
// otherwise.
func buildStore(cfg *config.Config, log logger.Logger) store.Store {
	host := os.Getenv("IGNITER_REDIS_HOST")
	if host == "" {
		return store.NewNoop()
	}
	return redisstore.New(redisstore.Options{
		Host:     host,
		Port:     6379,
		Password: os.Getenv("IGNITER_REDIS_PASSWORD"),
	}, log)
}

// buildTelemetry selects a driver per cfg.Telemetry.Type, falling back to
// a no-op when telemetry is disabled or its driver fails to start,
// matching the teacher's "telemetry must never block startup" posture.
func buildTelemetry(cfg *config.Config, log logger.Logger) telemetry.Telemetry {
	if !cfg.Telemetry.Enabled {
		return telemetry.NewNoop()
	}

	switch cfg.Telemetry.Type {
	case "datadog":
		t, err := datadogtelemetry.New(datadogtelemetry.Config{
			ServiceName: cfg.App.Name,
			Environment: cfg.App.Env,
			AgentAddr:   cfg.Telemetry.TracerAddress,
			StatsdAddr:  cfg.Telemetry.MetricsAddress,
			SampleRate:  cfg.Telemetry.SampleRate,
			Namespace:   cfg.Telemetry.Namespace,
		})
		if err != nil {
			log.Warn("telemetry: datadog driver failed to start, using no-op", logger.Fields{"error": err.Error()})
			return telemetry.NewNoop()
		}
		return t
	case "otel":
		t, err := oteltelemetry.New(context.Background(), oteltelemetry.Config{
			ServiceName: cfg.App.Name,
			Environment: cfg.App.Env,
			TracerAddr:  cfg.Telemetry.TracerAddress,
			MetricsAddr: cfg.Telemetry.MetricsAddress,
			SampleRate:  cfg.Telemetry.SampleRate,
		})
		if err != nil {
			log.Warn("telemetry: otel driver failed to start, using no-op", logger.Fields{"error": err.Error()})
			return telemetry.NewNoop()
		}
		return t
	default:
		return telemetry.NewNoop()
	}
}

// waitForShutdown blocks until SIGINT/SIGTERM, then drains the realtime
// bus and Fiber's in-flight connections within a bounded grace period,
// mirroring the teacher's Server.Stop lifecycle.
func waitForShutdown(fiberApp interface{ ShutdownWithContext(context.Context) error }, app *igniter.Application, log logger.Logger) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	log.Warn("shutting down", logger.Fields{})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.Shutdown(ctx); err != nil {
		log.Error("application shutdown error", logger.Fields{"error": err.Error()})
	}
	if err := fiberApp.ShutdownWithContext(ctx); err != nil {
		log.Error("server shutdown error", logger.Fields{"error": err.Error()})
	}
}
