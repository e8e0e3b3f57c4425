package router

import "github.com/gin-gonic/gin"

// Registry collects modules and mounts them on the engine root. Global
// middleware is applied on the engine itself so it also covers 404s and
// CORS preflights for unknown paths.
type Registry struct {
	Engine  *gin.Engine
	Root    *gin.RouterGroup
	modules []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	return &Registry{Engine: engine, Root: engine.Group("/")}
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

func (r *Registry) RegisterAll() {
	for _, m := range r.modules {
		m.Register(r.Root)
	}
}
