package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouteRegistrar registers a handler's routes on a router group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router wires the HTTP surface: an authenticated back-office API under
// /api/v1 and the public storefront gateway under /api/store.
type Router struct {
	engine         *gin.Engine
	apiVersion     string
	healthHandler  gin.HandlerFunc
	authMiddleware []gin.HandlerFunc
	api            []RouteRegistrar
	public         []RouteRegistrar
}

// RouterOption is a functional option for Router configuration
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix (e.g. "v1")
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

// WithHealthHandler replaces the default liveness handler on GET /health.
// The router owns the route, so callers must not register it on the engine
// themselves.
func WithHealthHandler(h gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.healthHandler = h
	}
}

// WithAuthMiddleware sets the middleware protecting the back-office API
func WithAuthMiddleware(mw ...gin.HandlerFunc) RouterOption {
	return func(r *Router) {
		r.authMiddleware = mw
	}
}

// NewRouter creates a new Router
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:        engine,
		apiVersion:    "v1",
		healthHandler: healthCheck,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterAPI adds a registrar to the authenticated back-office group
func (r *Router) RegisterAPI(registrar RouteRegistrar) *Router {
	r.api = append(r.api, registrar)
	return r
}

// RegisterPublic adds a registrar to the unauthenticated group
func (r *Router) RegisterPublic(registrar RouteRegistrar) *Router {
	r.public = append(r.public, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	r.engine.GET("/health", r.healthHandler)

	public := r.engine.Group("/api")
	for _, registrar := range r.public {
		registrar.RegisterRoutes(public)
	}

	api := r.engine.Group("/api/" + r.apiVersion)
	if len(r.authMiddleware) > 0 {
		api.Use(r.authMiddleware...)
	}
	for _, registrar := range r.api {
		registrar.RegisterRoutes(api)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
