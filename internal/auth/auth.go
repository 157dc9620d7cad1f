// Package auth implements an optional bearer-token middleware guarding
// the judge HTTP surface. This authenticates trusted service callers, not
// end users: there is no identity, signup, or profile involved, only a
// static shared-secret-signed token check.
package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	appErr "codejudge/pkg/errors"
)

// Middleware builds a gin handler that rejects requests lacking a valid
// HS256 bearer token signed with secret. When secret is empty, Middleware
// returns a permissive no-op handler.
func Middleware(secret string) gin.HandlerFunc {
	if secret == "" {
		return func(c *gin.Context) { c.Next() }
	}
	key := []byte(secret)

	return func(c *gin.Context) {
		raw := bearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			abort(c)
			return
		}
		_, err := jwt.Parse(raw, func(token *jwt.Token) (interface{}, error) {
			if token.Method != jwt.SigningMethodHS256 {
				return nil, appErr.New(appErr.Unauthorized)
			}
			return key, nil
		})
		if err != nil {
			abort(c)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimPrefix(header, prefix)
}

func abort(c *gin.Context) {
	err := appErr.New(appErr.Unauthorized).WithMessage("missing or invalid service token")
	c.AbortWithStatusJSON(err.HTTPStatus(), gin.H{
		"statusCode": err.Code,
		"status":     "error",
		"error":      err.Message,
	})
}
