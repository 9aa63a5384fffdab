package middleware

import (
	"context"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/techmaster-vietnam/blogkit/models"
	"github.com/techmaster-vietnam/blogkit/repository"
	"github.com/techmaster-vietnam/blogkit/session"
	"github.com/techmaster-vietnam/blogkit/utils"
	"github.com/techmaster-vietnam/goerrorkit"
)

const sessionContextKey = "session"

// LoginMessage là flash hiển thị khi truy cập route yêu cầu đăng nhập
const LoginMessage = "Please log in to access this page."

// UserLoader loads the user stored in the session
type UserLoader interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// SessionMiddleware resolve session của request thành *session.Context (user hiện tại hoặc anonymous)
type SessionMiddleware struct {
	store *fibersession.Store
	users UserLoader
	opts  *session.Options
}

// NewSessionMiddleware creates a new session middleware
func NewSessionMiddleware(store *fibersession.Store, users UserLoader, opts *session.Options) *SessionMiddleware {
	return &SessionMiddleware{
		store: store,
		users: users,
		opts:  opts,
	}
}

// Handler nạp session, resolve user (từ session hoặc remember cookie), chạy handler rồi lưu session
func (m *SessionMiddleware) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, err := m.store.Get(c)
		if err != nil {
			return goerrorkit.WrapWithMessage(err, "Failed to load session")
		}

		sc := session.NewContext(c, sess, m.opts)
		if err := m.resolveUser(c, sc); err != nil {
			return err
		}
		c.Locals(sessionContextKey, sc)

		err = c.Next()

		if saveErr := sc.Save(); saveErr != nil && err == nil {
			err = goerrorkit.WrapWithMessage(saveErr, "Failed to save session")
		}
		return err
	}
}

func (m *SessionMiddleware) resolveUser(c *fiber.Ctx, sc *session.Context) error {
	if userID, ok := sc.StoredUserID(); ok {
		user, err := m.users.GetByID(c.UserContext(), userID)
		switch {
		case err == nil && sc.StoredPasswordStamp() == utils.PasswordStamp(user.Password):
			sc.User = user
			return nil
		case err != nil && !repository.IsNotFound(err):
			return goerrorkit.WrapWithMessage(err, "Failed to load session user").WithData(map[string]interface{}{
				"user_id": userID,
			})
		}
		// User đã bị xóa hoặc đã đổi mật khẩu: coi như anonymous
		sc.SetUser(nil)
	}

	token := c.Cookies(session.RememberCookie)
	if token == "" {
		return nil
	}

	userID, stamp, err := utils.ParseRememberToken(token, m.opts.Secret)
	if err != nil {
		sc.ClearRememberCookie()
		return nil
	}

	user, err := m.users.GetByID(c.UserContext(), userID)
	if err != nil {
		if repository.IsNotFound(err) {
			sc.ClearRememberCookie()
			return nil
		}
		return goerrorkit.WrapWithMessage(err, "Failed to load remembered user").WithData(map[string]interface{}{
			"user_id": userID,
		})
	}

	if stamp != utils.PasswordStamp(user.Password) {
		sc.ClearRememberCookie()
		return nil
	}

	// Khôi phục session từ remember cookie
	sc.SetUser(user)
	return nil
}

// GetSessionContext lấy *session.Context do SessionMiddleware gắn vào request
func GetSessionContext(c *fiber.Ctx) (*session.Context, bool) {
	sc, ok := c.Locals(sessionContextKey).(*session.Context)
	return sc, ok && sc != nil
}

// RequireLogin redirect về /login?next=... khi chưa đăng nhập
func RequireLogin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		sc, ok := GetSessionContext(c)
		if !ok {
			return goerrorkit.NewSystemError(fiber.NewError(fiber.StatusInternalServerError, "session middleware is not installed"))
		}
		if !sc.IsAuthenticated() {
			sc.Flash(session.FlashInfo, LoginMessage)
			return c.Redirect("/login?next=" + url.QueryEscape(c.OriginalURL()))
		}
		return c.Next()
	}
}

// SafeNext chỉ chấp nhận đường dẫn tương đối trong cùng site, còn lại trả về fallback
func SafeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	return next
}
