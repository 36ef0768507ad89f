package proxy

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/fileproxy/errors"
	"github.com/kbukum/fileproxy/logger"
	"github.com/kbukum/fileproxy/server/middleware"
	"github.com/kbukum/fileproxy/storage"
)

// Route paths.
const (
	PathUpload    = "/upload"
	PathDelete    = "/delete"
	PathSignedURL = "/signed-url"
	PathList      = "/list"
	PathFile      = "/file/"
)

// DefaultKeyPrefix is prepended to generated upload keys.
const DefaultKeyPrefix = "uploads/"

// Policy is the per-deployment configuration every request reads. It is
// fixed at construction.
type Policy struct {
	// AuthSecret guards every route except file downloads; empty disables auth.
	AuthSecret string
	// PublicURL overrides the origin used to build object URLs.
	PublicURL string
	// KeyPrefix is prepended to generated keys. Empty selects DefaultKeyPrefix.
	KeyPrefix string
}

// Proxy serves the storage routes against a single store.
type Proxy struct {
	store  storage.Storage
	policy Policy
	log    *logger.Logger
	now    func() time.Time
	newID  func() string
}

// New creates a proxy over store.
func New(store storage.Storage, policy Policy, log *logger.Logger) *Proxy {
	if policy.KeyPrefix == "" {
		policy.KeyPrefix = DefaultKeyPrefix
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Proxy{
		store:  store,
		policy: policy,
		log:    log.WithComponent("proxy"),
		now:    time.Now,
		newID:  randomID,
	}
}

// Register installs the routes and the NoRoute fallback on engine.
func (p *Proxy) Register(engine *gin.Engine) {
	protected := engine.Group("/", middleware.BearerSecret(p.policy.AuthSecret))
	protected.POST(PathUpload, p.handle("upload", p.upload))
	protected.DELETE(PathDelete, p.handle("delete", p.delete))
	protected.GET(PathSignedURL, p.handle("signed-url", p.signedURL))
	protected.GET(PathList, p.handle("list", p.list))

	engine.GET(PathFile+"*key", p.handle("file", p.getFile))

	engine.NoRoute(func(c *gin.Context) {
		appErr := apperrors.RouteNotFound()
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
	})
}

// ProtectedPaths lists the routes that require the bearer secret.
func ProtectedPaths() []string {
	return []string{PathUpload, PathDelete, PathSignedURL, PathList}
}

// AuthEnabled reports whether a secret is configured.
func (p *Proxy) AuthEnabled() bool { return p.policy.AuthSecret != "" }

type handlerFunc func(c *gin.Context) error

// handle is the single point where handler failures become responses.
func (p *Proxy) handle(op string, fn handlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := fn(c)
		if err == nil {
			return
		}
		appErr := apperrors.FromError(err)
		log := p.log.WithContext(c.Request.Context())
		fields := logger.Fields(
			logger.FieldOperation, op,
			logger.FieldStatus, appErr.HTTPStatus,
			logger.FieldError, err.Error(),
		)
		if appErr.HTTPStatus >= http.StatusInternalServerError {
			log.Error("request failed", fields)
		} else {
			log.Debug("request rejected", fields)
		}
		if c.Writer.Written() {
			return
		}
		c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
	}
}

// storeError maps a store failure onto the client-facing taxonomy.
func storeError(err error) error {
	if errors.Is(err, storage.ErrNotFound) {
		return apperrors.FileNotFound().WithCause(err)
	}
	return apperrors.StoreFailure(err)
}
