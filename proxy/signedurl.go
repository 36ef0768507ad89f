package proxy

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/fileproxy/api"
	apperrors "github.com/kbukum/fileproxy/errors"
)

// signedURL confirms the key exists and returns its public file URL. The
// URL is not time-limited, so expires is always null.
func (p *Proxy) signedURL(c *gin.Context) error {
	key := c.Query("key")
	if key == "" {
		return apperrors.MissingInput("No key provided")
	}
	if _, err := p.store.Head(c.Request.Context(), key); err != nil {
		return storeError(err)
	}
	c.JSON(http.StatusOK, api.SignedURLResponse{URL: p.FileURL(c.Request, key)})
	return nil
}
