package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/noe-create/medidhub-cpv-sub001/config"
	httpx "github.com/noe-create/medidhub-cpv-sub001/internal/http"
)

// BuildHTTPHandler creates the router with its middleware chain.
func BuildHTTPHandler(cfg *config.AppConfig, svcs *ServiceContainer, logger *slog.Logger) (http.Handler, error) {
	if cfg == nil || svcs == nil {
		return nil, errors.New("http handler: config and services are required")
	}
	return httpx.NewRouter(httpx.RouterServices{
		Auth:     svcs.Auth,
		Settings: svcs.Settings,
		Database: svcs.DatabaseInfo,
		Sessions: svcs.Sessions,
		Gate:     svcs.Gate,
		Checks:   svcs.Checks,
		Metrics:  svcs.Metrics,
		Options: httpx.RouterOptions{
			CookieDomain: cfg.HTTP.CookieDomain,
			CallbackURL:  CallbackURL(cfg),
			TrustProxy:   cfg.HTTP.TrustProxy,
			IsDev:        cfg.IsDev,
		},
		Logger: logger,
	})
}

// NewHTTPServer applies the server timeouts.
func NewHTTPServer(addr string, handler http.Handler) *http.Server {
	// Guard against empty addr to avoid listening on Go default
	if addr == "" {
		addr = ":8080"
	}
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// ServerConfig contains dependencies for RunHTTPServer.
type ServerConfig struct {
	Server *http.Server
	// Listener is used instead of Server.Addr when set.
	Listener        net.Listener
	ShutdownTimeout time.Duration
	Logger          *slog.Logger
}

// RunHTTPServer serves until ctx is canceled, then shuts down gracefully.
// A listen failure is returned; a clean shutdown returns nil.
func RunHTTPServer(ctx context.Context, cfg ServerConfig) error {
	if cfg.Server == nil {
		return errors.New("http server is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if cfg.Listener != nil {
			logger.Info("starting HTTP server", "addr", cfg.Listener.Addr().String())
			err = cfg.Server.Serve(cfg.Listener)
		} else {
			logger.Info("starting HTTP server", "addr", cfg.Server.Addr)
			err = cfg.Server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer cancel()
		if err := cfg.Server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		logger.Info("HTTP server stopped")
		return nil
	})
	return g.Wait()
}

// RunWithSignals runs the server until SIGINT or SIGTERM.
func RunWithSignals(ctx context.Context, cfg ServerConfig) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RunHTTPServer(ctx, cfg)
}
