package shell

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/vesselhq/vessel/internal/api/middleware"
	"github.com/vesselhq/vessel/internal/api/ws"
	"github.com/vesselhq/vessel/internal/capability"
	"github.com/vesselhq/vessel/internal/infrastructure/config"
	"github.com/vesselhq/vessel/internal/infrastructure/logging"
	"github.com/vesselhq/vessel/internal/infrastructure/monitoring"
	"github.com/vesselhq/vessel/internal/runtime"
	"github.com/vesselhq/vessel/internal/window"
)

// host owns the run loop: the HTTP surface the window connects to, the
// event stream and the window bookkeeping. It blocks in run until the
// application terminates.
type host struct {
	cfg      *config.Config
	logger   *logging.Logger
	metrics  *monitoring.Metrics
	registry *capability.Registry
	windows  *window.Manager
	events   *ws.Handler
	rt       *runtime.Context

	router *gin.Engine
	server *http.Server

	stopOnce sync.Once
	done     chan struct{}

	boundMu sync.Mutex
	bound   string
}

func newHost(cfg *config.Config, logger *logging.Logger, metrics *monitoring.Metrics, registry *capability.Registry, windows *window.Manager, rt *runtime.Context) *host {
	h := &host{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		registry: registry,
		windows:  windows,
		rt:       rt,
		done:     make(chan struct{}),
	}

	if p, ok := registry.Get("notification"); ok {
		if np, ok := p.(interface{ OnSent(func()) }); ok {
			np.OnSent(func() { metrics.NotificationsSent.Inc() })
		}
	}

	h.events = ws.NewHandler(logger.Named("events"), rt.App.ProductName)
	h.events.OnConnect(func() { metrics.WSConnections.Inc() })
	h.events.OnDisconnect(func() { metrics.WSConnections.Dec() })

	windows.OnEvent(func(evt window.Event) {
		switch evt.Type {
		case "opened":
			metrics.WindowsOpened.Inc()
			metrics.WindowsActive.Inc()
		case "closed":
			metrics.WindowsActive.Dec()
		}
		h.events.BroadcastEvent("window_"+evt.Type, map[string]interface{}{
			"window": evt.Window,
		})
	})
	windows.OnEmpty(func() {
		logger.Info("All windows closed, ending run loop")
		h.stop()
	})

	h.router = h.buildRouter()
	return h
}

func (h *host) buildRouter() *gin.Engine {
	if !h.cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(monitoring.Middleware(h.metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if h.cfg.RateLimit.Enabled {
		rl := middleware.DefaultRateLimitConfig()
		if h.cfg.RateLimit.RequestsPerSecond > 0 {
			rl.RequestsPerSecond = h.cfg.RateLimit.RequestsPerSecond
		}
		if h.cfg.RateLimit.Burst > 0 {
			rl.Burst = h.cfg.RateLimit.Burst
		}
		router.Use(middleware.RateLimit(rl))
	}

	router.GET("/", h.handleRoot)
	router.GET("/health", h.handleHealth)

	// Capability surface
	router.GET("/capabilities", h.handleListCapabilities)
	router.POST("/capability/invoke", h.handleInvoke)

	// Window management
	router.GET("/windows", h.handleListWindows)
	router.POST("/windows/:id/focus", h.handleFocusWindow)
	router.DELETE("/windows/:id", h.handleCloseWindow)

	// Packaged application assets
	router.GET("/app/*filepath", h.handleAsset)

	// Event stream
	router.GET("/events", h.events.HandleConnection)

	// Metrics
	router.GET("/metrics", gin.WrapH(h.metrics.Handler()))

	return router
}

// run binds the listener, opens the manifest windows and blocks until the
// application terminates. Startup is all-or-nothing: any failure before the
// loop is entered returns an error with no partial state left behind.
func (h *host) run() error {
	addr := net.JoinHostPort(h.cfg.Server.Host, h.cfg.Server.Port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start run loop on %s: %w", addr, err)
	}
	h.boundMu.Lock()
	h.bound = listener.Addr().String()
	h.boundMu.Unlock()

	if _, err := h.windows.OpenFromManifest(h.rt.App.Windows); err != nil {
		listener.Close()
		return fmt.Errorf("failed to open windows: %w", err)
	}

	// The main window gets initial focus regardless of manifest order.
	if mw := h.rt.App.MainWindow(); mw != nil {
		if inst, ok := h.windows.GetByLabel(mw.Label); ok && inst.State != window.StateActive {
			h.windows.Focus(inst.ID)
		}
	}

	if h.rt.Development {
		go h.watchManifest()
	}

	h.server = &http.Server{Handler: h.router}

	h.logger.Info("Run loop started",
		zap.String("addr", addr),
		zap.Int("windows", h.windows.Stats().Open),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- h.server.Serve(listener)
	}()

	select {
	case <-h.done:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.server.Shutdown(ctx); err != nil {
			h.logger.Warn("Run loop shutdown incomplete", zap.Error(err))
		}
		<-errCh
		h.logger.Info("Run loop terminated")
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("run loop failed: %w", err)
	}
}

// stop requests normal run loop termination. Safe to call more than once.
func (h *host) stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// boundAddr reports the listener address, or "" before the loop binds.
func (h *host) boundAddr() string {
	h.boundMu.Lock()
	defer h.boundMu.Unlock()
	return h.bound
}
