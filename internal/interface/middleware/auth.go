package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/mediscribe/internal/domain/entity"
	"github.com/oksasatya/mediscribe/pkg/helpers"
	"github.com/oksasatya/mediscribe/pkg/response"
)

const (
	CtxUserKey   = "user"
	CtxUserIDKey = "userID"
)

// TokenResolver maps a bearer token to the stored user. IsAuthError tells
// rejected credentials apart from lookup failures.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*entity.User, error)
	IsAuthError(err error) bool
}

// BearerAuth resolves the Authorization bearer token before the handler runs.
// Every credential failure is answered with the same 401 body; lookup
// failures are logged and answered with 500.
func BearerAuth(resolver TokenResolver, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			unauthorized(c)
			return
		}
		u, err := resolver.Resolve(c.Request.Context(), token)
		if err != nil && !resolver.IsAuthError(err) {
			helpers.LogError(logger, "bearer token lookup failed", err, logrus.Fields{
				"request_id": c.GetString("request_id"),
			})
			response.Abort(c, http.StatusInternalServerError, "Internal server error", nil)
			return
		}
		if err != nil {
			logger.WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"error":      err.Error(),
			}).Debug("bearer token rejected")
			unauthorized(c)
			return
		}
		c.Set(CtxUserKey, u)
		c.Set(CtxUserIDKey, strconv.FormatInt(u.ID, 10))
		c.Next()
	}
}

// CurrentUser returns the user set by BearerAuth.
func CurrentUser(c *gin.Context) (*entity.User, bool) {
	v, ok := c.Get(CtxUserKey)
	if !ok {
		return nil, false
	}
	u, ok := v.(*entity.User)
	return u, ok && u != nil
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

func unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	response.Abort(c, http.StatusUnauthorized, "Invalid credentials", nil)
}
