package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/techmaster-vietnam/blogkit/middleware"
	"github.com/techmaster-vietnam/blogkit/session"
	"github.com/techmaster-vietnam/goerrorkit"
)

// Handler là fiber handler nhận session context tường minh thay vì đọc global state
type Handler func(c *fiber.Ctx, sc *session.Context) error

// WithSession chuyển Handler thành fiber.Handler.
// Yêu cầu SessionMiddleware chạy trước.
func WithSession(h Handler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sc, ok := middleware.GetSessionContext(c)
		if !ok {
			return goerrorkit.NewSystemError(fiber.NewError(fiber.StatusInternalServerError, "session middleware is not installed"))
		}
		return h(c, sc)
	}
}

// render trả về page kèm flash message đang chờ và user hiện tại
func render(c *fiber.Ctx, sc *session.Context, status int, name string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	flashes := sc.Flashes()
	if flashes == nil {
		flashes = []session.Flash{}
	}
	data["flashes"] = flashes
	data["current_user"] = sc.User
	return c.Status(status).Render(name, data)
}

func flashRedirect(c *fiber.Ctx, sc *session.Context, category, message, location string) error {
	sc.Flash(category, message)
	return c.Redirect(location)
}

func invalidForm(err error) error {
	return goerrorkit.NewValidationError("Dữ liệu form không hợp lệ", map[string]interface{}{
		"error": err.Error(),
	})
}
