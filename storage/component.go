package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/kbukum/fileproxy/component"
	"github.com/kbukum/fileproxy/logger"
)

// healthProbeKey is looked up by Health; it is expected not to exist.
const healthProbeKey = ".fileproxy-health"

// Component wraps a backend for lifecycle management.
type Component struct {
	cfg     Config
	log     *logger.Logger
	storage Storage
	wrap    func(Storage) Storage
}

var _ component.Component = (*Component)(nil)
var _ component.Describable = (*Component)(nil)

// NewComponent creates a storage component. wrap, when non-nil, decorates
// the backend once it is built (e.g. with Instrument).
func NewComponent(cfg Config, log *logger.Logger, wrap func(Storage) Storage) *Component {
	cfg.ApplyDefaults()
	return &Component{cfg: cfg, log: log.WithComponent("storage"), wrap: wrap}
}

// Storage returns the backend, or nil before Start.
func (c *Component) Storage() Storage { return c.storage }

func (c *Component) Name() string { return "storage" }

func (c *Component) Start(ctx context.Context) error {
	s, err := New(ctx, c.cfg, c.log)
	if err != nil {
		return fmt.Errorf("storage start: %w", err)
	}
	if c.wrap != nil {
		s = c.wrap(s)
	}
	c.storage = s
	return nil
}

func (c *Component) Stop(_ context.Context) error {
	c.storage = nil
	return nil
}

// Health issues a metadata-only lookup; a not-found answer proves the
// bucket is reachable.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.storage == nil {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: "storage not initialized"}
	}
	if _, err := c.storage.Head(ctx, healthProbeKey); err != nil && !errors.Is(err, ErrNotFound) {
		return component.Health{Name: c.Name(), Status: component.StatusUnhealthy, Message: fmt.Sprintf("health probe failed: %v", err)}
	}
	return component.Health{Name: c.Name(), Status: component.StatusHealthy}
}

func (c *Component) Describe() component.Description {
	details := "provider=" + c.cfg.Provider
	if b := c.cfg.Bucket(); b != "" {
		details += " bucket=" + b
	}
	return component.Description{Name: "Storage", Type: "storage", Details: details}
}
