package router

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/techmaster-vietnam/blogkit/handlers"
)

// BlogRouter wrapper cho fiber.Router với fluent API, handler nhận session context tường minh
type BlogRouter struct {
	router       fiber.Router
	registry     *RouteRegistry
	requireLogin fiber.Handler
	prefix       string // Prefix path của group (để build full path)
}

// NewBlogRouter tạo mới BlogRouter.
// requireLogin được chèn trước handler của các route RequireLogin().
func NewBlogRouter(router fiber.Router, registry *RouteRegistry, requireLogin fiber.Handler) *BlogRouter {
	return &BlogRouter{
		router:       router,
		registry:     registry,
		requireLogin: requireLogin,
	}
}

// Get tạo GET route với fluent API
func (br *BlogRouter) Get(path string, handler handlers.Handler) *RouteBuilder {
	return br.createRouteBuilder(fiber.MethodGet, path, handler)
}

// Post tạo POST route với fluent API
func (br *BlogRouter) Post(path string, handler handlers.Handler) *RouteBuilder {
	return br.createRouteBuilder(fiber.MethodPost, path, handler)
}

// Group tạo router group với middleware tùy chọn
func (br *BlogRouter) Group(prefix string, middlewares ...fiber.Handler) *BlogRouter {
	group := NewBlogRouter(br.router.Group(prefix, middlewares...), br.registry, br.requireLogin)
	group.prefix = strings.TrimPrefix(strings.TrimSuffix(br.prefix, "/")+"/"+strings.TrimPrefix(prefix, "/"), "/")
	if group.prefix != "" {
		group.prefix = "/" + strings.TrimSuffix(group.prefix, "/")
	}
	return group
}

// convertPathToPattern đổi tham số thành wildcard: /post/:id -> /post/*
func convertPathToPattern(path string) string {
	parts := strings.Split(path, "/")
	for i, part := range parts {
		if strings.HasPrefix(part, ":") {
			parts[i] = "*"
		}
	}
	return strings.Join(parts, "/")
}

func (br *BlogRouter) fullPath(path string) string {
	full := strings.TrimPrefix(strings.TrimSuffix(br.prefix, "/")+"/"+strings.TrimPrefix(path, "/"), "/")
	full = strings.TrimSuffix(full, "/")
	return "/" + full
}

func (br *BlogRouter) createRouteBuilder(method, path string, handler handlers.Handler) *RouteBuilder {
	return &RouteBuilder{
		metadata: &RouteMetadata{
			Method:   method,
			Path:     path,
			FullPath: convertPathToPattern(br.fullPath(path)),
			Handler:  handlers.WithSession(handler),
		},
		router:       br.router,
		registry:     br.registry,
		requireLogin: br.requireLogin,
	}
}
