package component

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/fileproxy/logger"
)

// DefaultStopTimeout bounds each component's Stop call.
const DefaultStopTimeout = 10 * time.Second

// Registry starts components in the order they were registered and stops
// them in reverse. A proxy has a handful of components, so lookups scan.
type Registry struct {
	mu         sync.RWMutex
	components []Component
	// running is how many leading components have started.
	running int
	log     *logger.Logger
}

// NewRegistry returns an empty registry. A nil log discards output.
func NewRegistry(log *logger.Logger) *Registry {
	if log == nil {
		log = logger.NewNop()
	}
	return &Registry{log: log.WithComponent("registry")}
}

// Register appends c. Dependencies must be registered before dependents;
// names are unique.
func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(c.Name()) >= 0 {
		return fmt.Errorf("component %s already registered", c.Name())
	}
	r.components = append(r.components, c)
	r.log.Debug("registered", logger.Fields(logger.FieldComponent, c.Name()))
	return nil
}

// StartAll starts whatever has not started yet. On failure the components
// that did start stay up until StopAll.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for ; r.running < len(r.components); r.running++ {
		c := r.components[r.running]
		if err := c.Start(ctx); err != nil {
			r.log.Error("start failed", logger.ErrorFields(c.Name(), err))
			return fmt.Errorf("start %s: %w", c.Name(), err)
		}
		r.log.Debug("started", logger.Fields(logger.FieldComponent, c.Name()))
	}
	r.log.Info("components started", logger.Fields("count", r.running))
	return nil
}

// StopAll stops running components newest first, giving each
// DefaultStopTimeout. Every component is attempted; errors are joined.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for r.running > 0 {
		r.running--
		c := r.components[r.running]
		if err := stopWithTimeout(ctx, c); err != nil {
			r.log.Error("stop failed", logger.ErrorFields(c.Name(), err))
			errs = append(errs, fmt.Errorf("stop %s: %w", c.Name(), err))
			continue
		}
		r.log.Debug("stopped", logger.Fields(logger.FieldComponent, c.Name()))
	}
	return errors.Join(errs...)
}

func stopWithTimeout(ctx context.Context, c Component) error {
	ctx, cancel := context.WithTimeout(ctx, DefaultStopTimeout)
	defer cancel()
	return c.Stop(ctx)
}

// HealthAll reports every registered component, started or not.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Health, len(r.components))
	for i, c := range r.components {
		out[i] = c.Health(ctx)
	}
	return out
}

// Get looks a component up by name, returning nil when absent.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if i := r.indexOf(name); i >= 0 {
		return r.components[i]
	}
	return nil
}

// All returns a copy of the components in registration order.
func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Component(nil), r.components...)
}

func (r *Registry) indexOf(name string) int {
	for i, c := range r.components {
		if c.Name() == name {
			return i
		}
	}
	return -1
}
