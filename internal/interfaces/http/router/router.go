package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar is implemented by every HTTP handler that wires its
// own routes under the versioned API group.
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router assembles the gin engine: global middleware first, then every
// registrar under /api/<version>.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
	registrars []RouteRegistrar
}

// Option configures a Router
type Option func(*Router)

// WithAPIVersion sets the API version prefix (default "v1")
func WithAPIVersion(version string) Option {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// New creates a Router for the given engine
func New(engine *gin.Engine, opts ...Option) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Use appends global middleware, applied in order before any route
func (r *Router) Use(mw ...gin.HandlerFunc) *Router {
	r.middleware = append(r.middleware, mw...)
	return r
}

// Register adds handlers to be wired on Setup
func (r *Router) Register(registrars ...RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrars...)
	return r
}

// Setup applies the middleware chain and registers all routes
func (r *Router) Setup() {
	r.engine.Use(r.middleware...)

	api := r.engine.Group("/api/" + r.apiVersion)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}
