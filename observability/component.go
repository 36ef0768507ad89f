package observability

import (
	"context"
	"errors"
	"fmt"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/kbukum/fileproxy/component"
	"github.com/kbukum/fileproxy/logger"
)

// Component owns the tracer and meter providers.
type Component struct {
	cfg            Config
	serviceName    string
	serviceVersion string
	environment    string
	log            *logger.Logger

	tp      *sdktrace.TracerProvider
	mp      *sdkmetric.MeterProvider
	metrics *Metrics
}

var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates an observability component. Nothing is exported
// until Start, and only when cfg.Enabled is set.
func NewComponent(cfg Config, serviceName, serviceVersion, environment string, log *logger.Logger) *Component {
	cfg.ApplyDefaults()
	return &Component{
		cfg:            cfg,
		serviceName:    serviceName,
		serviceVersion: serviceVersion,
		environment:    environment,
		log:            log.WithComponent("observability"),
	}
}

// Metrics returns the instruments, or nil when disabled or not started.
func (c *Component) Metrics() *Metrics { return c.metrics }

func (c *Component) Name() string { return "observability" }

func (c *Component) Start(ctx context.Context) error {
	if !c.cfg.Enabled {
		c.log.Debug("observability disabled")
		return nil
	}

	t := target{
		service:     c.serviceName,
		version:     c.serviceVersion,
		environment: c.environment,
		endpoint:    c.cfg.Endpoint,
		insecure:    c.cfg.Insecure,
	}
	tp, err := installTracer(ctx, t, c.cfg.SampleRate)
	if err != nil {
		return fmt.Errorf("observability start: %w", err)
	}
	mp, err := installMeter(ctx, t, c.cfg.Interval)
	if err != nil {
		_ = tp.Shutdown(ctx)
		return fmt.Errorf("observability start: %w", err)
	}
	m, err := NewMetrics(mp.Meter(instrumentationName))
	if err != nil {
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
		return fmt.Errorf("observability start: %w", err)
	}

	c.tp, c.mp, c.metrics = tp, mp, m
	c.log.Info("exporting telemetry", logger.Fields(
		"endpoint", c.cfg.Endpoint,
		"sample_rate", c.cfg.SampleRate,
		"interval", c.cfg.Interval.String(),
	))
	return nil
}

// Stop flushes and shuts down both providers.
func (c *Component) Stop(ctx context.Context) error {
	var errs []error
	if c.tp != nil {
		if err := c.tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer shutdown: %w", err))
		}
		c.tp = nil
	}
	if c.mp != nil {
		if err := c.mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter shutdown: %w", err))
		}
		c.mp = nil
	}
	c.metrics = nil
	return errors.Join(errs...)
}

func (c *Component) Health(_ context.Context) component.Health {
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

func (c *Component) Describe() component.Description {
	details := "disabled"
	if c.cfg.Enabled {
		details = fmt.Sprintf("otlp=%s sample=%.2f", c.cfg.Endpoint, c.cfg.SampleRate)
	}
	return component.Description{Name: "Observability", Type: "observability", Details: details}
}
