package proxy

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/fileproxy/errors"
	"github.com/kbukum/fileproxy/logger"
	"github.com/kbukum/fileproxy/storage"
)

const cacheControlImmutable = "public, max-age=31536000"

func (p *Proxy) getFile(c *gin.Context) error {
	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		return apperrors.FileNotFound()
	}

	obj, body, err := p.store.Get(c.Request.Context(), key)
	if err != nil {
		return storeError(err)
	}
	defer body.Close()

	extra := map[string]string{"Cache-Control": cacheControlImmutable}
	if obj.ETag != "" {
		extra["ETag"] = `"` + obj.ETag + `"`
	}
	c.DataFromReader(http.StatusOK, obj.Size, storage.ContentTypeOrDefault(obj.ContentType), body, extra)

	if err := c.Errors.Last(); err != nil {
		p.log.WithContext(c.Request.Context()).Warn("download interrupted",
			logger.Fields(logger.FieldKey, key, logger.FieldError, err.Error()))
	}
	return nil
}
