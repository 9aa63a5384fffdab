package router

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/techmaster-vietnam/blogkit/middleware"
	"github.com/techmaster-vietnam/blogkit/models"
	"github.com/techmaster-vietnam/blogkit/session"
	"gorm.io/gorm"
)

type noUsers struct{}

func (noUsers) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func newTestRouter(t *testing.T) (*fiber.App, *RouteRegistry) {
	t.Helper()
	app := fiber.New()
	store := fibersession.New()
	app.Use(middleware.NewSessionMiddleware(store, noUsers{}, &session.Options{Secret: "s"}).Handler())

	registry := NewRouteRegistry()
	requireLogin := func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusUnauthorized).SendString("login required")
	}
	r := NewBlogRouter(app, registry, requireLogin)

	hello := func(c *fiber.Ctx, sc *session.Context) error {
		if sc.IsAuthenticated() {
			return c.SendString("hello " + sc.User.Username)
		}
		return c.SendString("hello anonymous")
	}

	r.Get("/", hello).Public().Description("Trang chủ").Register()
	r.Get("/account", hello).RequireLogin().Register()

	post := r.Group("/post")
	post.Get("/:id", hello).Register()
	post.Post("/new", hello).RequireLogin().Register()

	return app, registry
}

func TestRouteRegistry_GetAllRoutes(t *testing.T) {
	_, registry := newTestRouter(t)

	routes := registry.GetAllRoutes()
	require.Len(t, routes, 4)

	type route struct {
		method string
		path   string
		access Access
	}
	got := make([]route, 0, len(routes))
	for _, r := range routes {
		got = append(got, route{method: r.Method, path: r.FullPath, access: r.Access})
	}

	// sắp theo path rồi method, :id đổi thành *, route không khai báo access là public
	assert.Equal(t, []route{
		{method: fiber.MethodGet, path: "/", access: AccessPublic},
		{method: fiber.MethodGet, path: "/account", access: AccessLogin},
		{method: fiber.MethodGet, path: "/post/*", access: AccessPublic},
		{method: fiber.MethodPost, path: "/post/new", access: AccessLogin},
	}, got)
	assert.Equal(t, "Trang chủ", routes[0].Description)
}

func TestBlogRouter_Access(t *testing.T) {
	app, _ := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		target     string
		wantStatus int
		wantBody   string
	}{
		{name: "public", method: fiber.MethodGet, target: "/", wantStatus: fiber.StatusOK, wantBody: "hello anonymous"},
		{name: "public with param", method: fiber.MethodGet, target: "/post/7", wantStatus: fiber.StatusOK, wantBody: "hello anonymous"},
		{name: "login required", method: fiber.MethodGet, target: "/account", wantStatus: fiber.StatusUnauthorized, wantBody: "login required"},
		{name: "login required in group", method: fiber.MethodPost, target: "/post/new", wantStatus: fiber.StatusUnauthorized, wantBody: "login required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest(tt.method, tt.target, nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantBody, string(body))
		})
	}
}
