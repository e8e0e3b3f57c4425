package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/mediscribe/internal/interface/http"
	"github.com/oksasatya/mediscribe/internal/interface/middleware"
)

// ConsultationModule serves the bearer-protected consultation routes.
type ConsultationModule struct {
	Handler  *handlers.ConsultationHandler
	Resolver middleware.TokenResolver
	Redis    *redis.Client
	Logger   logrus.FieldLogger
}

func NewConsultationModule(h *handlers.ConsultationHandler, resolver middleware.TokenResolver, rdb *redis.Client, logger logrus.FieldLogger) *ConsultationModule {
	return &ConsultationModule{Handler: h, Resolver: resolver, Redis: rdb, Logger: logger}
}

func (m *ConsultationModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.BearerAuth(m.Resolver, m.Logger))
	{
		auth.POST("/analyze-consultation",
			middleware.RateLimit(m.Redis, 10, time.Minute, middleware.KeyByUserID()),
			m.Handler.Analyze)

		read := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByUserID())
		auth.GET("/history", read, m.Handler.History)
		auth.GET("/history/search", read, m.Handler.Search)
	}
}
