package proxy

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/kbukum/fileproxy/api"
	apperrors "github.com/kbukum/fileproxy/errors"
	"github.com/kbukum/fileproxy/logger"
)

func (p *Proxy) delete(c *gin.Context) error {
	var req api.DeleteRequest
	if err := c.ShouldBindWith(&req, binding.JSON); err != nil {
		if bodyTooLarge(c.Request, err) {
			return apperrors.PayloadTooLarge().WithCause(err)
		}
		return apperrors.InvalidInput("Invalid JSON body").WithCause(err)
	}
	if req.Key == "" {
		return apperrors.MissingInput("No key provided")
	}

	if err := p.store.Delete(c.Request.Context(), req.Key); err != nil {
		return storeError(err)
	}
	p.log.WithContext(c.Request.Context()).Info("file deleted", logger.Fields(logger.FieldKey, req.Key))

	c.JSON(http.StatusOK, api.DeleteResponse{Success: true})
	return nil
}
