package router

import (
	"github.com/gofiber/fiber/v2"
)

// RouteBuilder cung cấp fluent API để cấu hình route
type RouteBuilder struct {
	metadata     *RouteMetadata
	router       fiber.Router
	registry     *RouteRegistry
	requireLogin fiber.Handler
}

// Public đánh dấu route là public
func (rb *RouteBuilder) Public() *RouteBuilder {
	rb.metadata.Access = AccessPublic
	return rb
}

// RequireLogin yêu cầu đăng nhập trước khi vào handler
func (rb *RouteBuilder) RequireLogin() *RouteBuilder {
	rb.metadata.Access = AccessLogin
	return rb
}

// Description thêm mô tả cho route
func (rb *RouteBuilder) Description(desc string) *RouteBuilder {
	rb.metadata.Description = desc
	return rb
}

// Register hoàn tất việc đăng ký route.
// Route không gọi Public() hay RequireLogin() được coi là public.
func (rb *RouteBuilder) Register() {
	if rb.metadata.Access == "" {
		rb.metadata.Access = AccessPublic
	}
	rb.registry.Register(rb.metadata)

	if rb.metadata.Access == AccessLogin {
		rb.router.Add(rb.metadata.Method, rb.metadata.Path, rb.requireLogin, rb.metadata.Handler)
		return
	}
	rb.router.Add(rb.metadata.Method, rb.metadata.Path, rb.metadata.Handler)
}
