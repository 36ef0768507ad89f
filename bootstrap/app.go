package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/fileproxy/component"
	"github.com/kbukum/fileproxy/logger"
)

// DefaultGracefulTimeout bounds shutdown when no option overrides it.
const DefaultGracefulTimeout = 15 * time.Second

// Hook is a lifecycle callback.
type Hook func(ctx context.Context) error

// App owns a binary's components. Run or RunTask starts them in
// registration order, prints the summary and tears them down in reverse.
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *component.Registry
	Logger     *logger.Logger
	Summary    *Summary

	gracefulTimeout time.Duration
	onReady         []Hook
	onStop          []Hook
}

// NewApp applies defaults, validates cfg and builds the logger from its
// logging section unless WithLogger supplies one.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetServiceConfig()

	o := &appOptions{gracefulTimeout: DefaultGracefulTimeout, summaryOut: os.Stdout}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		logger.Init(&base.Logging)
		o.logger = logger.GetGlobalLogger()
	}

	return &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(o.logger),
		Logger:          o.logger,
		Summary:         NewSummary(base.Name, base.Version, o.summaryOut),
		gracefulTimeout: o.gracefulTimeout,
	}, nil
}

func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnReady hooks run after every component started.
func (a *App[C]) OnReady(hooks ...Hook) { a.onReady = append(a.onReady, hooks...) }

// OnStop hooks run before the components stop.
func (a *App[C]) OnStop(hooks ...Hook) { a.onStop = append(a.onStop, hooks...) }

// ReadyCheck lists every component that does not report healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var bad []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		entry := h.Name + "=" + string(h.Status)
		if h.Message != "" {
			entry += " (" + h.Message + ")"
		}
		bad = append(bad, entry)
	}
	if len(bad) > 0 {
		return fmt.Errorf("unhealthy components: %s", strings.Join(bad, ", "))
	}
	return nil
}

// Run serves until SIGINT, SIGTERM or ctx is done.
func (a *App[C]) Run(ctx context.Context) error {
	return a.RunTask(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		a.Logger.Info("shutting down", logger.Fields("cause", context.Cause(ctx).Error()))
		return nil
	})
}

// RunTask starts the app, runs task under a context cancelled by SIGINT or
// SIGTERM, then shuts down. A task error takes precedence over a shutdown
// error.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.start(ctx); err != nil {
		return errors.Join(err, a.stop())
	}

	taskCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	taskErr := task(taskCtx)
	cancel()

	stopErr := a.stop()
	if taskErr != nil {
		return taskErr
	}
	return stopErr
}

func (a *App[C]) start(ctx context.Context) error {
	began := time.Now()
	a.Logger.Info("starting", logger.Fields("name", a.Name, "version", a.Version))

	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("startup: %w", err)
	}
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("not all components are healthy", logger.Fields(logger.FieldError, err.Error()))
	}
	for i, h := range a.onReady {
		if err := h(ctx); err != nil {
			return fmt.Errorf("ready hook %d: %w", i, err)
		}
	}

	a.Summary.SetStartupDuration(time.Since(began))
	a.Summary.Display(ctx, a.Components)
	return nil
}

// stop runs every stop hook and every component Stop under one graceful
// deadline, reporting the first failure.
func (a *App[C]) stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var first error
	for i, h := range a.onStop {
		if err := h(ctx); err != nil {
			a.Logger.Error("stop hook failed", logger.Fields("hook", i, logger.FieldError, err.Error()))
			if first == nil {
				first = fmt.Errorf("stop hook %d: %w", i, err)
			}
		}
	}
	if err := a.Components.StopAll(ctx); err != nil {
		a.Logger.Error("components stopped with errors", logger.Fields(logger.FieldError, err.Error()))
		if first == nil {
			first = err
		}
	}
	a.Logger.Info("stopped")
	return first
}
