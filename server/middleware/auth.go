package middleware

import (
	"crypto/subtle"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kbukum/fileproxy/errors"
)

// Authorized reports whether header grants access under secret. An empty
// secret disables the check. Otherwise header must be exactly
// "Bearer <secret>".
func Authorized(header, secret string) bool {
	if secret == "" {
		return true
	}
	want := "Bearer " + secret
	return subtle.ConstantTimeCompare([]byte(header), []byte(want)) == 1
}

// BearerSecret rejects requests that fail Authorized with 401 before the
// handler runs.
func BearerSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Authorized(c.GetHeader("Authorization"), secret) {
			appErr := apperrors.Unauthorized()
			c.AbortWithStatusJSON(appErr.HTTPStatus, appErr.ToResponse())
			return
		}
		c.Next()
	}
}
