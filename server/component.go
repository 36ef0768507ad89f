package server

import (
	"context"
	"fmt"
	"sort"

	"github.com/kbukum/fileproxy/component"
)

const componentName = "http-server"

var (
	_ component.Component     = (*Component)(nil)
	_ component.Describable   = (*Component)(nil)
	_ component.RouteProvider = (*Component)(nil)
)

// Component adapts a Server to the bootstrap lifecycle.
type Component struct {
	server    *Server
	protected map[string]bool
}

// NewComponent wraps s. protectedPaths are flagged as authenticated in the
// startup summary.
func NewComponent(s *Server, protectedPaths ...string) *Component {
	p := make(map[string]bool, len(protectedPaths))
	for _, path := range protectedPaths {
		p[path] = true
	}
	return &Component{server: s, protected: p}
}

// Server returns the wrapped server.
func (c *Component) Server() *Server { return c.server }

func (c *Component) Name() string { return componentName }

func (c *Component) Start(ctx context.Context) error { return c.server.Start(ctx) }

func (c *Component) Stop(ctx context.Context) error { return c.server.Stop(ctx) }

func (c *Component) Health(_ context.Context) component.Health {
	if c.server.listenAddr == "" {
		return component.Health{Name: componentName, Status: component.StatusUnhealthy, Message: "not listening"}
	}
	return component.Health{Name: componentName, Status: component.StatusHealthy}
}

func (c *Component) Describe() component.Description {
	cfg := c.server.config
	transport := "h2c"
	if cfg.TLS.ServerEnabled() {
		transport = "tls"
	}
	return component.Description{
		Name:    "HTTP Server",
		Type:    "server",
		Details: fmt.Sprintf("%s %s max_body=%s", c.server.Addr(), transport, cfg.MaxBodySize),
		Port:    cfg.Port,
	}
}

// Routes lists the Gin routes sorted by path then method.
func (c *Component) Routes() []component.Route {
	ginRoutes := c.server.engine.Routes()
	sort.Slice(ginRoutes, func(i, j int) bool {
		if ginRoutes[i].Path != ginRoutes[j].Path {
			return ginRoutes[i].Path < ginRoutes[j].Path
		}
		return ginRoutes[i].Method < ginRoutes[j].Method
	})

	routes := make([]component.Route, 0, len(ginRoutes))
	for _, r := range ginRoutes {
		routes = append(routes, component.Route{Method: r.Method, Path: r.Path, Auth: c.protected[r.Path]})
	}
	return routes
}
