package proxy

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/fileproxy/api"
	apperrors "github.com/kbukum/fileproxy/errors"
	"github.com/kbukum/fileproxy/logger"
	"github.com/kbukum/fileproxy/storage"
)

// uploadedAtLayout is ISO-8601 UTC with milliseconds.
const uploadedAtLayout = "2006-01-02T15:04:05.000Z"

func (p *Proxy) upload(c *gin.Context) error {
	header, err := c.FormFile(api.FormFieldFile)
	if form := c.Request.MultipartForm; form != nil {
		defer form.RemoveAll()
	}
	if err != nil {
		if bodyTooLarge(c.Request, err) {
			return apperrors.PayloadTooLarge().WithCause(err)
		}
		return apperrors.MissingInput("No file provided").WithCause(err)
	}

	key := c.PostForm(api.FormFieldPath)
	if key == "" {
		key = p.GenerateKey(header.Filename)
	}
	contentType := storage.ContentTypeOrDefault(header.Header.Get("Content-Type"))

	file, err := header.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	_, err = p.store.Put(c.Request.Context(), key, file, storage.PutOptions{
		ContentType: contentType,
		Size:        header.Size,
		Metadata: map[string]string{
			storage.MetaOriginalName: header.Filename,
			storage.MetaUploadedAt:   uploadedAt(p.now()),
		},
	})
	if err != nil {
		return storeError(err)
	}

	p.log.WithContext(c.Request.Context()).Info("file uploaded",
		logger.Fields(logger.FieldKey, key, "size", header.Size, "type", contentType))

	c.JSON(http.StatusOK, api.UploadResponse{
		Success: true,
		Key:     key,
		URL:     p.FileURL(c.Request, key),
		Size:    header.Size,
		Type:    contentType,
	})
	return nil
}

// uploadedAt formats t the way upload metadata records it.
func uploadedAt(t time.Time) string { return t.UTC().Format(uploadedAtLayout) }
