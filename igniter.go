// Package igniter implements the Igniter request-processing runtime: a
// fluent Builder producing an immutable Application, a
// middleware-composable Procedure/Action executor, a trie-indexed
// Router, a Response model with deferred side effects, and a Realtime
// Bus multiplexing Server-Sent Events over pub/sub for client-side
// cache revalidation.
//
// The package is grounded throughout on the Fiber/OpenTelemetry/Redis
// service boilerplate it was ported from: the same adapter-contract
// shape (Store/Jobs/Logger/Telemetry with no-op defaults), the same
// layered viper configuration, and the same structured-error taxonomy.
package igniter

import (
	"context"
	"time"

	"github.com/igniter-hq/igniter-go/jobs"
	"github.com/igniter-hq/igniter-go/logger"
	"github.com/igniter-hq/igniter-go/realtime"
	"github.com/igniter-hq/igniter-go/store"
	"github.com/igniter-hq/igniter-go/telemetry"
)

// Config is the core configuration surface (spec §6.5).
type Config struct {
	BaseURL        string
	BasePath       string
	TimeoutMs      int
	BodyLimitBytes int64
	Realtime       RealtimeConfig

	// CookieSigningSecret signs/verifies cookies set with Signed() (spec
	// §6.4 "Signed cookies"). Empty leaves signed cookies unsigned.
	CookieSigningSecret []byte
}

// RealtimeConfig configures the realtime bus (spec §6.5).
type RealtimeConfig struct {
	HeartbeatMs    int
	QueueSize      int
	OverflowPolicy realtime.OverflowPolicy
}

// DefaultConfig returns the spec §6.5 documented defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:        "",
		BasePath:       "/",
		TimeoutMs:      30000,
		BodyLimitBytes: 1_048_576,
		Realtime: RealtimeConfig{
			HeartbeatMs:    15000,
			QueueSize:      1024,
			OverflowPolicy: realtime.DropOldest,
		},
	}
}

func (c Config) timeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

func (rc RealtimeConfig) heartbeat() time.Duration {
	if rc.HeartbeatMs <= 0 {
		return 15 * time.Second
	}
	return time.Duration(rc.HeartbeatMs) * time.Millisecond
}

// ApplyConfigDefaults fills zero-value fields of cfg with the documented
// defaults (spec §6.5), used by Builder.Config so callers may supply a
// partial override.
func ApplyConfigDefaults(cfg Config) Config {
	defaults := DefaultConfig()
	if cfg.BasePath == "" {
		cfg.BasePath = defaults.BasePath
	}
	if cfg.TimeoutMs == 0 {
		cfg.TimeoutMs = defaults.TimeoutMs
	}
	if cfg.BodyLimitBytes == 0 {
		cfg.BodyLimitBytes = defaults.BodyLimitBytes
	}
	if cfg.Realtime.HeartbeatMs == 0 {
		cfg.Realtime.HeartbeatMs = defaults.Realtime.HeartbeatMs
	}
	if cfg.Realtime.QueueSize == 0 {
		cfg.Realtime.QueueSize = defaults.Realtime.QueueSize
	}
	if cfg.Realtime.OverflowPolicy == 0 && defaults.Realtime.OverflowPolicy == realtime.DropOldest {
		cfg.Realtime.OverflowPolicy = defaults.Realtime.OverflowPolicy
	}
	return cfg
}

// BaseContextFactory builds the initial typed values installed into every
// request's Context before the per-request scope block is merged in
// (spec §3, "Context").
type BaseContextFactory func() map[string]any

// Application is the immutable handle produced by Builder.Create. It is
// created once at startup, never mutated, and referenced by the Router
// and every request's Context via closure (spec §3 "Application").
type Application struct {
	config       Config
	baseContext  BaseContextFactory
	middleware   []Procedure
	store        store.Store
	logg         logger.Logger
	jobsAdapter  jobs.Jobs
	telemetry    telemetry.Telemetry
	plugins      map[string]any
	docs         map[string]any
	router       *Router
	bus          *realtime.Bus
}

// Config returns the application's frozen configuration.
func (a *Application) Config() Config { return a.config }

// Router returns the application's router, used by adapters to dispatch
// incoming requests (spec §4.4 "Handler surface").
func (a *Application) Router() *Router { return a.router }

// Bus returns the application's realtime bus, used by the adapter's
// "/__realtime__" endpoint handler.
func (a *Application) Bus() *realtime.Bus { return a.bus }

// Store returns the installed Store adapter (or a no-op default).
func (a *Application) Store() store.Store { return a.store }

// Logger returns the installed Logger adapter (or a no-op default).
func (a *Application) Logger() logger.Logger { return a.logg }

// Jobs returns the installed Jobs adapter (or a no-op default).
func (a *Application) Jobs() jobs.Jobs { return a.jobsAdapter }

// Telemetry returns the installed Telemetry adapter (or a no-op default).
func (a *Application) Telemetry() telemetry.Telemetry { return a.telemetry }

// Shutdown drains the realtime bus and closes the telemetry adapter,
// mirroring the teacher's Server.Stop graceful-shutdown behavior.
func (a *Application) Shutdown(ctx context.Context) error {
	a.bus.Shutdown()
	return a.telemetry.Close()
}
