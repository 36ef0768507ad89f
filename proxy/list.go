package proxy

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/fileproxy/api"
	"github.com/kbukum/fileproxy/storage"
)

// MaxListLimit bounds one listing page; it is also the default.
const MaxListLimit = storage.MaxListLimit

// ParseLimit reads the limit query value. Missing, non-numeric and
// non-positive values select MaxListLimit, larger values are capped to it.
func ParseLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 || n > MaxListLimit {
		return MaxListLimit
	}
	return n
}

func (p *Proxy) list(c *gin.Context) error {
	res, err := p.store.List(c.Request.Context(), storage.ListOptions{
		Prefix: c.Query("prefix"),
		Cursor: c.Query("cursor"),
		Limit:  ParseLimit(c.Query("limit")),
	})
	if err != nil {
		return storeError(err)
	}

	resp := api.ListResponse{
		Success:   true,
		Objects:   make([]api.ObjectEntry, 0, len(res.Objects)),
		Truncated: res.Truncated,
	}
	for _, obj := range res.Objects {
		resp.Objects = append(resp.Objects, api.ObjectEntry{
			Key:      obj.Key,
			Size:     obj.Size,
			Uploaded: obj.Uploaded.UTC().Format(api.TimeLayout),
			ETag:     obj.ETag,
		})
	}
	if res.Truncated && res.Cursor != "" {
		cursor := res.Cursor
		resp.Cursor = &cursor
	}
	c.JSON(http.StatusOK, resp)
	return nil
}
