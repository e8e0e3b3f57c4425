package router

import (
	"github.com/oksasatya/mediscribe/internal/container"
	handlers "github.com/oksasatya/mediscribe/internal/interface/http"
	"github.com/oksasatya/mediscribe/internal/router/modules"
)

// InitModules builds the handlers from c and adds every module to r.
// It should be called once during startup, before RegisterAll.
func InitModules(r *Registry, c *container.Container) {
	authHandler := handlers.NewAuthHandler(c.Auth, c.Logger)
	consultationHandler := handlers.NewConsultationHandler(c.Consultations, c.Config.MaxAudioBytes, c.Logger)
	healthHandler := handlers.NewHealthHandler(c.Storage.Health)

	r.Add(modules.NewHealthModule(healthHandler))
	r.Add(modules.NewAuthModule(authHandler, c.Redis))
	r.Add(modules.NewConsultationModule(consultationHandler, c.Auth, c.Redis, c.Logger))
}
