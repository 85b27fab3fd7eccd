package shell

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"

	"github.com/vesselhq/vessel/internal/capability"
	"github.com/vesselhq/vessel/internal/infrastructure/config"
	"github.com/vesselhq/vessel/internal/infrastructure/logging"
	"github.com/vesselhq/vessel/internal/infrastructure/monitoring"
	"github.com/vesselhq/vessel/internal/runtime"
	"github.com/vesselhq/vessel/internal/window"
)

// State represents builder lifecycle states.
type State string

const (
	StateConstructed State = "constructed"
	StateRegistered  State = "registered"
	StateRunning     State = "running"
	StateTerminated  State = "terminated"
)

// Builder assembles the application shell: capability extensions are
// registered against it, then a single terminal Run call hands control to
// the host run loop.
//
// Registration errors are deferred to Run so call sites can chain:
//
//	err := shell.Default().
//		Plugin(storageProvider).
//		Plugin(notificationProvider).
//		Run(rt)
type Builder struct {
	cfg      *config.Config
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	registry *capability.Registry

	mu      sync.Mutex
	state   State
	err     error
	closers []io.Closer
	host    *host
}

// New creates a builder with the provided configuration.
func New(cfg *config.Config) *Builder {
	lcfg := logging.DefaultConfig()
	if cfg.Logging.Development {
		lcfg = logging.DevelopmentConfig()
	}
	if cfg.Logging.Level != "" {
		lcfg.Level = cfg.Logging.Level
	}
	logger, err := logging.New(lcfg)
	if err != nil {
		logger = logging.NewDefault()
	}

	return &Builder{
		cfg:      cfg,
		logger:   logger,
		metrics:  monitoring.NewMetrics(),
		registry: capability.NewRegistry(),
		state:    StateConstructed,
	}
}

// Default creates a builder with configuration from the environment.
func Default() *Builder {
	return New(config.LoadOrDefault())
}

// Logger exposes the builder's logger for the bootstrap.
func (b *Builder) Logger() *logging.Logger {
	return b.logger
}

// Config exposes the builder's configuration so the bootstrap can apply
// flag overrides before Run.
func (b *Builder) Config() *config.Config {
	return b.cfg
}

// Plugin registers a capability extension. Order is preserved; a failed
// registration poisons the builder and surfaces from Run.
func (b *Builder) Plugin(p capability.Provider) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.err != nil {
		return b
	}
	if b.state == StateRunning || b.state == StateTerminated {
		b.err = fmt.Errorf("cannot register extensions after run")
		return b
	}

	if err := b.registry.Register(p); err != nil {
		b.err = fmt.Errorf("extension registration failed: %w", err)
		return b
	}

	b.state = StateRegistered
	b.logger.Info("Registered capability extension",
		zap.String("capability", p.Definition().ID),
	)
	return b
}

// Manage attaches a resource closed when the run loop terminates. Teardown
// order is reverse registration order.
func (b *Builder) Manage(c io.Closer) *Builder {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closers = append(b.closers, c)
	return b
}

// Run enters the host run loop with the generated runtime context and blocks
// until the application terminates. Run returns nil on normal termination
// (all windows closed or Stop) and a non-nil error when the run loop fails
// to start. A builder runs at most once.
func (b *Builder) Run(rt *runtime.Context) error {
	b.mu.Lock()
	switch b.state {
	case StateRunning:
		b.mu.Unlock()
		return fmt.Errorf("run loop already started")
	case StateTerminated:
		b.mu.Unlock()
		return fmt.Errorf("builder already terminated")
	}
	deferred := b.err
	b.state = StateRunning
	b.mu.Unlock()

	// Teardown covers every terminal exit, deferred registration errors
	// included, so managed resources never leak.
	defer func() {
		b.mu.Lock()
		b.state = StateTerminated
		closers := b.closers
		b.mu.Unlock()

		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i].Close(); err != nil {
				b.logger.Warn("Resource teardown failed", zap.Error(err))
			}
		}
		b.logger.Sync()
	}()

	if deferred != nil {
		return deferred
	}
	if rt == nil {
		return fmt.Errorf("runtime context is required")
	}
	if err := rt.EnsureDataDir(); err != nil {
		return err
	}

	windows := window.NewManager()
	host := newHost(b.cfg, b.logger, b.metrics, b.registry, windows, rt)
	b.mu.Lock()
	b.host = host
	b.mu.Unlock()

	b.logger.Info("Starting application",
		zap.String("identifier", rt.Identifier()),
		zap.String("product", rt.App.ProductName),
		zap.Int("capabilities", b.registry.Len()),
	)

	return host.run()
}

// Addr reports the host surface listen address once the run loop has bound
// its listener, or "" before that.
func (b *Builder) Addr() string {
	b.mu.Lock()
	host := b.host
	b.mu.Unlock()
	if host == nil {
		return ""
	}
	return host.boundAddr()
}

// Stop requests normal run loop termination. Safe before or after Run and
// safe to call more than once; calling Stop before Run is a no-op.
func (b *Builder) Stop() {
	b.mu.Lock()
	host := b.host
	b.mu.Unlock()
	if host != nil {
		host.stop()
	}
}

// CurrentState reports the builder lifecycle state.
func (b *Builder) CurrentState() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
