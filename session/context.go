package session

import (
	"time"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/techmaster-vietnam/blogkit/core"
	"github.com/techmaster-vietnam/blogkit/models"
	"github.com/techmaster-vietnam/blogkit/utils"
	"github.com/techmaster-vietnam/goerrorkit"
)

const (
	userIDKey = "user_id"
	stampKey  = "password_stamp"
	// RememberCookie là tên cookie remember-me
	RememberCookie = "remember_token"
)

// Options cấu hình remember-me cookie
type Options struct {
	Secret       string
	RememberFor  time.Duration
	CookieSecure bool
	Now          core.Clock
}

func (o *Options) now() time.Time {
	if o.Now == nil {
		return core.SystemClock()
	}
	return o.Now()
}

// Context là trạng thái session của một request, truyền tường minh vào handler.
// User == nil nghĩa là anonymous.
type Context struct {
	c    *fiber.Ctx
	sess *fibersession.Session
	opts *Options

	User *models.User
}

// NewContext wraps the fiber session of the current request
func NewContext(c *fiber.Ctx, sess *fibersession.Session, opts *Options) *Context {
	return &Context{c: c, sess: sess, opts: opts}
}

// IsAuthenticated reports whether a user is logged in
func (sc *Context) IsAuthenticated() bool {
	return sc.User != nil
}

// StoredUserID trả về user ID lưu trong session (nếu có)
func (sc *Context) StoredUserID() (uint, bool) {
	id, ok := sc.sess.Get(userIDKey).(uint)
	return id, ok && id != 0
}

// StoredPasswordStamp trả về password stamp của user lúc đăng nhập
func (sc *Context) StoredPasswordStamp() string {
	stamp, _ := sc.sess.Get(stampKey).(string)
	return stamp
}

// SetUser gắn user đã resolve vào context và ghi user ID vào session
func (sc *Context) SetUser(user *models.User) {
	sc.User = user
	if user == nil {
		sc.sess.Delete(userIDKey)
		sc.sess.Delete(stampKey)
		return
	}
	sc.sess.Set(userIDKey, user.ID)
	sc.sess.Set(stampKey, utils.PasswordStamp(user.Password))
}

// Login đăng nhập user: đổi session ID, lưu user ID và đặt remember cookie nếu remember = true
func (sc *Context) Login(user *models.User, remember bool) error {
	if err := sc.sess.Regenerate(); err != nil {
		return goerrorkit.WrapWithMessage(err, "Failed to regenerate session")
	}
	sc.SetUser(user)

	if !remember {
		return nil
	}

	now := sc.opts.now()
	token, err := utils.GenerateRememberToken(user.ID, utils.PasswordStamp(user.Password), sc.opts.Secret, sc.opts.RememberFor, now)
	if err != nil {
		return goerrorkit.WrapWithMessage(err, "Failed to sign remember cookie")
	}
	sc.c.Cookie(&fiber.Cookie{
		Name:     RememberCookie,
		Value:    token,
		Path:     "/",
		Expires:  now.Add(sc.opts.RememberFor),
		HTTPOnly: true,
		Secure:   sc.opts.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// Logout xóa toàn bộ dữ liệu session, cấp session ID mới và xóa remember cookie
func (sc *Context) Logout() error {
	sc.User = nil
	if err := sc.sess.Reset(); err != nil {
		return goerrorkit.WrapWithMessage(err, "Failed to reset session")
	}
	sc.ClearRememberCookie()
	return nil
}

// ClearRememberCookie expires the remember-me cookie on the client
func (sc *Context) ClearRememberCookie() {
	sc.c.Cookie(&fiber.Cookie{
		Name:     RememberCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   sc.opts.CookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Flash thêm flash message cho request kế tiếp
func (sc *Context) Flash(category, message string) {
	storeFlashes(sc.sess, append(loadFlashes(sc.sess), Flash{Category: category, Message: message}))
}

// Flashes lấy và xóa các flash message đang chờ
func (sc *Context) Flashes() []Flash {
	flashes := loadFlashes(sc.sess)
	storeFlashes(sc.sess, nil)
	return flashes
}

// Save ghi session vào storage. Session mới và rỗng thì không tạo cookie.
// Sau Save không được dùng session nữa.
func (sc *Context) Save() error {
	if sc.sess.Fresh() && len(sc.sess.Keys()) == 0 {
		return nil
	}
	return sc.sess.Save()
}
