package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/mediscribe/internal/domain/entity"
)

type stubResolver map[string]*entity.User

func (s stubResolver) Resolve(_ context.Context, token string) (*entity.User, error) {
	if u, ok := s[token]; ok {
		return u, nil
	}
	if token == "db-down" {
		return nil, errStorageDown
	}
	return nil, errors.New("invalid token")
}

var errStorageDown = errors.New("connection refused")

func (s stubResolver) IsAuthError(err error) bool { return !errors.Is(err, errStorageDown) }

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/me", func(c *gin.Context) {
		u, ok := CurrentUser(c)
		if !ok {
			c.String(http.StatusOK, "anon")
			return
		}
		c.String(http.StatusOK, u.Email)
	})
	return r
}

func TestBearerAuth(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	r := newEngine(RequestIDMiddleware(), BearerAuth(stubResolver{"good": {ID: 7, Email: "a@x.com"}}, logger))

	cases := map[string]struct {
		header string
		status int
	}{
		"valid":        {"Bearer good", http.StatusOK},
		"lower scheme": {"bearer good", http.StatusOK},
		"missing":      {"", http.StatusUnauthorized},
		"basic":        {"Basic good", http.StatusUnauthorized},
		"bad token":    {"Bearer nope", http.StatusUnauthorized},
		"no token":     {"Bearer ", http.StatusUnauthorized},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.Equal(t, "a@x.com", w.Body.String())
			} else {
				assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
				assert.Contains(t, w.Body.String(), `"detail":"Invalid credentials"`)
			}
		})
	}
}

func TestBearerAuthLookupFailureIsServerError(t *testing.T) {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	r := newEngine(RequestIDMiddleware(), BearerAuth(stubResolver{}, logger))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer db-down")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, w.Header().Get("WWW-Authenticate"))
	assert.Contains(t, w.Body.String(), `"detail":"Internal server error"`)
}

func TestRequestIDReusesHeader(t *testing.T) {
	r := newEngine(RequestIDMiddleware())

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("X-Request-ID", "bad id\twith spaces")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Len(t, w.Header().Get("X-Request-ID"), 36)
}

func TestRateLimitWithoutRedisPassesThrough(t *testing.T) {
	r := newEngine(RateLimit(nil, 1, time.Minute, KeyByIPAndPath()))
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitKeys(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/token", nil)
	c.Request.RemoteAddr = "10.0.0.5:1234"

	assert.Equal(t, "rl:path:/token:ip:10.0.0.5", KeyByIPAndPath()(c))
	assert.Equal(t, "rl:user:anon:ip:10.0.0.5", KeyByUserID()(c))
	c.Set(CtxUserIDKey, "42")
	assert.Equal(t, "rl:path:/token:user:42", KeyByUserID()(c))
}
