package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/kbukum/fileproxy/bootstrap"
	"github.com/kbukum/fileproxy/component"
	"github.com/kbukum/fileproxy/logger"
	"github.com/kbukum/fileproxy/observability"
	"github.com/kbukum/fileproxy/proxy"
	"github.com/kbukum/fileproxy/server"
	"github.com/kbukum/fileproxy/server/endpoint"
	"github.com/kbukum/fileproxy/server/middleware"
	"github.com/kbukum/fileproxy/storage"
	"github.com/kbukum/fileproxy/util"

	// Storage backends register themselves with the factory.
	_ "github.com/kbukum/fileproxy/storage/local"
	_ "github.com/kbukum/fileproxy/storage/memory"
	_ "github.com/kbukum/fileproxy/storage/s3"
	_ "github.com/kbukum/fileproxy/storage/supabase"
)

// Health and version paths.
const (
	PathHealth  = "/health"
	PathVersion = "/version"
)

// Mount installs the middleware chain, the operational endpoints and the
// proxy routes on srv. m and health may be nil.
func Mount(srv *server.Server, store storage.Storage, cfg *Config, m *observability.Metrics, health endpoint.HealthChecker, log *logger.Logger) *proxy.Proxy {
	srv.ApplyMiddleware(cfg.Origins())

	engine := srv.GinEngine()
	engine.Use(middleware.Metrics(m))
	engine.GET(PathHealth, endpoint.Health(cfg.Name, cfg.AuthSecret != "", health))
	engine.GET(PathVersion, endpoint.Version())

	p := proxy.New(store, cfg.Policy(), log)
	p.Register(engine)
	return p
}

// NewHandler builds the storage backend and returns the full handler
// without a listener, for runtimes that deliver requests themselves.
func NewHandler(ctx context.Context, cfg *Config, log *logger.Logger) (http.Handler, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	store, err := storage.New(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	logAuthMode(cfg, log)

	srv := server.New(cfg.Server, log)
	Mount(srv, storage.Instrument(store, nil), cfg, nil, nil, log)
	return srv.Handler(), nil
}

// New builds the long-running application: observability, storage, routes
// and the HTTP server, started in that order.
func New(cfg *Config, opts ...bootstrap.Option) (*bootstrap.App[*Config], error) {
	a, err := bootstrap.NewApp(cfg, opts...)
	if err != nil {
		return nil, err
	}
	logAuthMode(cfg, a.Logger)

	obs := observability.NewComponent(cfg.Observability, a.Name, a.Version, cfg.Environment, a.Logger)
	store := storage.NewComponent(cfg.Storage, a.Logger, func(s storage.Storage) storage.Storage {
		return storage.Instrument(s, obs.Metrics())
	})
	srv := server.New(cfg.Server, a.Logger)
	routes := &routesComponent{
		cfg:    cfg,
		srv:    srv,
		store:  store,
		obs:    obs,
		health: a.Components.HealthAll,
		log:    a.Logger,
	}

	for _, c := range []component.Component{obs, store, routes, server.NewComponent(srv, proxy.ProtectedPaths()...)} {
		if err := a.RegisterComponent(c); err != nil {
			return nil, err
		}
	}

	a.OnReady(func(context.Context) error {
		a.Logger.Info("accepting requests", logger.Fields(
			"addr", srv.Addr(),
			"provider", cfg.Storage.Provider,
		))
		return nil
	})
	a.OnStop(func(context.Context) error {
		a.Logger.Info("draining connections", logger.Fields("addr", srv.Addr()))
		return nil
	})
	return a, nil
}

func logAuthMode(cfg *Config, log *logger.Logger) {
	if cfg.AuthSecret == "" {
		log.Warn("authorization disabled: auth_secret is empty, every route is public")
		return
	}
	log.Info("authorization enabled", logger.Fields("auth_secret", util.MaskSecret(cfg.AuthSecret, 2)))
}

// routesComponent mounts the proxy once the store it serves exists. It is
// registered between storage and the server.
type routesComponent struct {
	cfg    *Config
	srv    *server.Server
	store  *storage.Component
	obs    *observability.Component
	health endpoint.HealthChecker
	log    *logger.Logger
	proxy  *proxy.Proxy
}

var (
	_ component.Component   = (*routesComponent)(nil)
	_ component.Describable = (*routesComponent)(nil)
)

func (r *routesComponent) Name() string { return "proxy" }

func (r *routesComponent) Start(_ context.Context) error {
	s := r.store.Storage()
	if s == nil {
		return fmt.Errorf("proxy: storage not started")
	}
	r.proxy = Mount(r.srv, s, r.cfg, r.obs.Metrics(), r.health, r.log)
	return nil
}

func (r *routesComponent) Stop(_ context.Context) error { return nil }

func (r *routesComponent) Health(_ context.Context) component.Health {
	if r.proxy == nil {
		return component.Health{Name: r.Name(), Status: component.StatusUnhealthy, Message: "routes not mounted"}
	}
	return component.Health{Name: r.Name(), Status: component.StatusHealthy}
}

func (r *routesComponent) Describe() component.Description {
	auth := "disabled"
	if r.cfg.AuthSecret != "" {
		auth = "bearer"
	}
	origins := "*"
	if o := r.cfg.Origins(); len(o) > 0 {
		origins = strings.Join(o, ",")
	}
	return component.Description{
		Name:    "Proxy",
		Type:    "router",
		Details: fmt.Sprintf("auth=%s origins=%s key_prefix=%s", auth, origins, r.cfg.KeyPrefix),
	}
}
