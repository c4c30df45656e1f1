// Package router wires handlers onto the versioned API surface.
package router

import "github.com/gin-gonic/gin"

// basePath is the prefix all business endpoints live under.
const basePath = "/api/v1"

// RouteRegistrar is implemented by handlers that attach their routes to
// a group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router collects registrars and mounts them in one pass.
type Router struct {
	engine     *gin.Engine
	registrars []RouteRegistrar
}

// NewRouter creates a Router over the given engine.
func NewRouter(engine *gin.Engine) *Router {
	return &Router{engine: engine}
}

// Register queues a registrar; chainable.
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup mounts every queued registrar under the versioned prefix.
func (r *Router) Setup() {
	api := r.engine.Group(basePath)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}
