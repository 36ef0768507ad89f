package component

import "context"

// HealthStatus is what a component reports to /health.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

// Health is one component's entry in the /health response.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Component is a piece of the proxy with a start/stop lifecycle: telemetry,
// the object store, the routes, the listener.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	// Stop must release everything Start acquired and honor ctx's deadline.
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Description is a component's row in the startup summary.
type Description struct {
	// Name overrides Name() when set.
	Name    string
	Type    string
	Details string
	Port    int
}

// Describable components appear in the startup summary.
type Describable interface {
	Describe() Description
}

// Route is a mounted method and path. Auth marks routes behind the bearer
// secret.
type Route struct {
	Method string
	Path   string
	Auth   bool
}

// RouteProvider lists mounted routes for the startup summary.
type RouteProvider interface {
	Routes() []Route
}
