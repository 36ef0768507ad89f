package bootstrap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/kbukum/fileproxy/component"
)

// Summary prints the startup banner: infrastructure reported by
// Describable components, routes from RouteProviders, and live health.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	out             io.Writer
}

// NewSummary creates a summary writing to out. A nil out disables output.
func NewSummary(serviceName, version string, out io.Writer) *Summary {
	return &Summary{serviceName: serviceName, version: version, out: out}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) { s.startupDuration = d }

// Display writes the summary for the components in registry.
func (s *Summary) Display(ctx context.Context, registry *component.Registry) {
	if s.out == nil {
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "\n%s %s started in %.2fs\n", s.serviceName, s.version, s.startupDuration.Seconds())

	var (
		infra  []component.Description
		routes []component.Route
	)
	for _, c := range registry.All() {
		if d, ok := c.(component.Describable); ok {
			desc := d.Describe()
			if desc.Name == "" {
				desc.Name = c.Name()
			}
			infra = append(infra, desc)
		}
		if rp, ok := c.(component.RouteProvider); ok {
			routes = append(routes, rp.Routes()...)
		}
	}

	if len(infra) > 0 {
		b.WriteString("\nInfrastructure\n")
		for i, d := range infra {
			details := d.Details
			if d.Port > 0 {
				details = fmt.Sprintf("%s (:%d)", details, d.Port)
			}
			fmt.Fprintf(&b, "   %s %s: %s\n", treePrefix(i, len(infra)), d.Name, details)
		}
	}

	if len(routes) > 0 {
		fmt.Fprintf(&b, "\nRoutes (%d)\n", len(routes))
		for i, r := range routes {
			lock := ""
			if r.Auth {
				lock = " [auth]"
			}
			fmt.Fprintf(&b, "   %s %-7s %s%s\n", treePrefix(i, len(routes)), r.Method, r.Path, lock)
		}
	}

	if health := registry.HealthAll(ctx); len(health) > 0 {
		b.WriteString("\nHealth\n")
		for i, h := range health {
			msg := ""
			if h.Message != "" {
				msg = ": " + h.Message
			}
			fmt.Fprintf(&b, "   %s %s %s %s%s\n", treePrefix(i, len(health)), healthMark(h.Status), h.Name, h.Status, msg)
		}
	}

	b.WriteString("\n")
	_, _ = io.WriteString(s.out, b.String())
}

func treePrefix(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthMark(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
