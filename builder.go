package igniter

import (
	"github.com/igniter-hq/igniter-go/jobs"
	"github.com/igniter-hq/igniter-go/logger"
	"github.com/igniter-hq/igniter-go/realtime"
	"github.com/igniter-hq/igniter-go/store"
	"github.com/igniter-hq/igniter-go/telemetry"
)

// Builder is the fluent, stage-typed constructor for an Application
// (spec §4.1). Each stage method returns a new Builder value sharing
// the prior one's internal references, copy-on-write on the field it
// touches (spec §9 "Fluent builder immutability").
type Builder struct {
	config      Config
	baseContext BaseContextFactory
	middleware  []Procedure
	controllers map[string]*Controller
	store       store.Store
	logg        logger.Logger
	jobsAdapter jobs.Jobs
	telemetry   telemetry.Telemetry
	plugins     map[string]any
	docs        map[string]any
}

// New starts a Builder with the documented configuration defaults
// (spec §6.5).
func New() *Builder {
	return &Builder{
		config:      DefaultConfig(),
		controllers: make(map[string]*Controller),
		plugins:     make(map[string]any),
		docs:        make(map[string]any),
	}
}

func (b *Builder) clone() *Builder {
	next := *b
	return &next
}

// Context installs the base context factory, whose output seeds every
// request's Context before the per-request scope block is merged in
// (spec §3 "Context", §4.1 invariant i — must be called before any
// stage consuming the context shape; enforced here simply by call
// order since Go's static typing already rules out a non-function
// factory).
func (b *Builder) Context(factory BaseContextFactory) *Builder {
	next := b.clone()
	next.baseContext = factory
	return next
}

// Middleware installs the application-global procedure list, run before
// every controller's and action's own procedures (spec §4.2 step 1).
func (b *Builder) Middleware(procedures ...Procedure) *Builder {
	next := b.clone()
	next.middleware = append(append([]Procedure{}, b.middleware...), procedures...)
	return next
}

// Config overrides the default configuration (spec §4.1, §6.5).
func (b *Builder) Config(cfg Config) *Builder {
	next := b.clone()
	next.config = ApplyConfigDefaults(cfg)
	return next
}

// Controller mounts a controller under key, used both for routing and
// for URL construction (spec §3 "Controller").
func (b *Builder) Controller(key string, c *Controller) *Builder {
	next := b.clone()
	next.controllers = make(map[string]*Controller, len(b.controllers)+1)
	for k, v := range b.controllers {
		next.controllers[k] = v
	}
	next.controllers[key] = c
	return next
}

// Store installs the Store adapter (spec §4.8).
func (b *Builder) Store(s store.Store) *Builder {
	next := b.clone()
	next.store = s
	return next
}

// Logger installs the Logger adapter.
func (b *Builder) Logger(l logger.Logger) *Builder {
	next := b.clone()
	next.logg = l
	return next
}

// Jobs installs the Jobs adapter.
func (b *Builder) Jobs(j jobs.Jobs) *Builder {
	next := b.clone()
	next.jobsAdapter = j
	return next
}

// Telemetry installs the Telemetry adapter.
func (b *Builder) Telemetry(t telemetry.Telemetry) *Builder {
	next := b.clone()
	next.telemetry = t
	return next
}

// Plugins installs named plugin values, exposed to procedures/handlers
// through the context's "plugins" key (spec §3 "Context").
func (b *Builder) Plugins(plugins map[string]any) *Builder {
	next := b.clone()
	next.plugins = plugins
	return next
}

// Docs attaches documentation metadata consumed by external collaborators
// (the OpenAPI renderer, the generated client) — opaque to the core
// (spec §1 "Deliberately out of scope").
func (b *Builder) Docs(docs map[string]any) *Builder {
	next := b.clone()
	next.docs = docs
	return next
}

// Create freezes the builder into an immutable Application, installing
// no-op defaults for any adapter left unconfigured (spec §4.8
// "Defaults") and mounting every registered controller onto a fresh
// Router and Realtime Bus.
func (b *Builder) Create() *Application {
	app := &Application{
		config:      b.config,
		baseContext: b.baseContext,
		middleware:  append([]Procedure{}, b.middleware...),
		plugins:     b.plugins,
		docs:        b.docs,
	}

	if b.store != nil {
		app.store = b.store
	} else {
		app.store = store.NewNoop()
	}
	if b.logg != nil {
		app.logg = b.logg
	} else {
		app.logg = logger.NewNoop()
	}
	if b.jobsAdapter != nil {
		app.jobsAdapter = b.jobsAdapter
	} else {
		app.jobsAdapter = jobs.NewNoop()
	}
	if b.telemetry != nil {
		app.telemetry = b.telemetry
	} else {
		app.telemetry = telemetry.NewNoop()
	}

	app.bus = realtime.NewBus(realtime.Options{
		QueueSize:      app.config.Realtime.QueueSize,
		OverflowPolicy: app.config.Realtime.OverflowPolicy,
		Heartbeat:      app.config.Realtime.heartbeat(),
		Store:          app.store,
		Logger:         app.logg,
	})

	app.router = newRouter(app, app.config.BasePath)
	for key, controller := range b.controllers {
		app.router.Mount(key, controller)
	}

	return app
}
