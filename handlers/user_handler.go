package handlers

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/techmaster-vietnam/blogkit/middleware"
	"github.com/techmaster-vietnam/blogkit/service"
	"github.com/techmaster-vietnam/blogkit/session"
	"github.com/techmaster-vietnam/goerrorkit"
)

const (
	msgRegistered       = "Your account has been created! You are now able to login"
	msgLoggedIn         = "logged in Successfully!"
	msgLoggedOut        = "Logged out Successfully!"
	msgAccountUpdated   = "Your account has been updated!"
	msgResetSent        = "Password reset link sent to your email !!!"
	msgResetAlreadySent = "Link already sent to your email"
	msgResetPrevExpired = "Your previous reset link has expired. Please request a new one."
	msgPasswordUpdated  = "Your password has been updated! You are now able to login"
)

// UserHandler xử lý đăng ký, đăng nhập, account và reset password
type UserHandler struct {
	accounts *service.AccountService
	resets   *service.PasswordResetService
}

// NewUserHandler creates a new user handler
func NewUserHandler(accounts *service.AccountService, resets *service.PasswordResetService) *UserHandler {
	return &UserHandler{accounts: accounts, resets: resets}
}

type loginForm struct {
	Email    string `form:"email"`
	Password string `form:"password"`
	Remember string `form:"remember"`
}

func (f loginForm) remember() bool {
	switch strings.ToLower(f.Remember) {
	case "y", "on", "true", "1":
		return true
	}
	return false
}

type forgotForm struct {
	Email string `form:"email"`
}

// RegisterPage renders the registration form
// GET /register
func (h *UserHandler) RegisterPage(c *fiber.Ctx, sc *session.Context) error {
	if sc.IsAuthenticated() {
		return c.Redirect("/")
	}
	return render(c, sc, fiber.StatusOK, "register", fiber.Map{"title": "Register"})
}

// Register handles registration request
// POST /register
func (h *UserHandler) Register(c *fiber.Ctx, sc *session.Context) error {
	if sc.IsAuthenticated() {
		return c.Redirect("/")
	}

	var req service.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidForm(err)
	}

	if _, err := h.accounts.Register(c.UserContext(), req); err != nil {
		svcErr, ok := service.AsError(err)
		if !ok {
			return err
		}
		switch svcErr.Kind {
		case service.KindValidation:
			return render(c, sc, fiber.StatusUnprocessableEntity, "register", fiber.Map{
				"title":  "Register",
				"form":   fiber.Map{"username": req.Username, "email": req.Email},
				"errors": svcErr.Fields,
			})
		case service.KindDuplicateKey:
			return flashRedirect(c, sc, session.FlashDanger, svcErr.Message, "/register")
		}
		return err
	}

	return flashRedirect(c, sc, session.FlashSuccess, msgRegistered, "/login")
}

// LoginPage renders the login form
// GET /login
func (h *UserHandler) LoginPage(c *fiber.Ctx, sc *session.Context) error {
	if sc.IsAuthenticated() {
		return c.Redirect("/")
	}
	return render(c, sc, fiber.StatusOK, "login", fiber.Map{
		"title": "Login",
		"next":  c.Query("next"),
	})
}

// Login handles login request
// POST /login?next=/path
func (h *UserHandler) Login(c *fiber.Ctx, sc *session.Context) error {
	if sc.IsAuthenticated() {
		return c.Redirect("/")
	}

	var form loginForm
	if err := c.BodyParser(&form); err != nil {
		return invalidForm(err)
	}

	user, err := h.accounts.Authenticate(c.UserContext(), form.Email, form.Password)
	if err != nil {
		if svcErr, ok := service.AsError(err); ok && svcErr.Kind == service.KindInvalidCredentials {
			sc.Flash(session.FlashDanger, svcErr.Message)
			return render(c, sc, fiber.StatusUnauthorized, "login", fiber.Map{
				"title": "Login",
				"next":  c.Query("next"),
				"form":  fiber.Map{"email": form.Email},
			})
		}
		return err
	}

	if err := sc.Login(user, form.remember()); err != nil {
		return err
	}
	return flashRedirect(c, sc, session.FlashSuccess, msgLoggedIn, middleware.SafeNext(c.Query("next"), "/"))
}

// Logout destroys the session and the remember cookie
// GET /logout
func (h *UserHandler) Logout(c *fiber.Ctx, sc *session.Context) error {
	if err := sc.Logout(); err != nil {
		return err
	}
	return flashRedirect(c, sc, session.FlashSuccess, msgLoggedOut, "/")
}

// AccountPage renders the profile form of the current user
// GET /account
func (h *UserHandler) AccountPage(c *fiber.Ctx, sc *session.Context) error {
	return render(c, sc, fiber.StatusOK, "account", h.accountData(sc, fiber.Map{
		"username": sc.User.Username,
		"email":    sc.User.Email,
	}, nil))
}

// UpdateAccount cập nhật username, email và ảnh đại diện (multipart field "picture")
// POST /account
func (h *UserHandler) UpdateAccount(c *fiber.Ctx, sc *session.Context) error {
	var req service.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidForm(err)
	}

	picture, err := readPicture(c)
	if err != nil {
		return err
	}
	req.Picture = picture

	user, err := h.accounts.UpdateProfile(c.UserContext(), sc.User.ID, req)
	if err != nil {
		svcErr, ok := service.AsError(err)
		if !ok {
			return err
		}
		switch svcErr.Kind {
		case service.KindValidation:
			return render(c, sc, fiber.StatusUnprocessableEntity, "account", h.accountData(sc, fiber.Map{
				"username": req.Username,
				"email":    req.Email,
			}, svcErr.Fields))
		case service.KindDuplicateKey:
			return flashRedirect(c, sc, session.FlashDanger, svcErr.Message, "/account")
		}
		return err
	}

	sc.User = user
	return flashRedirect(c, sc, session.FlashSuccess, msgAccountUpdated, "/account")
}

func (h *UserHandler) accountData(sc *session.Context, form fiber.Map, errs map[string]string) fiber.Map {
	data := fiber.Map{
		"title":      "Account",
		"image_file": h.accounts.AvatarURL(sc.User),
		"form":       form,
	}
	if errs != nil {
		data["errors"] = errs
	}
	return data
}

// readPicture đọc file upload "picture"; không có file thì trả về nil
func readPicture(c *fiber.Ctx) (*service.Upload, error) {
	fh, err := c.FormFile("picture")
	if err != nil || fh.Filename == "" || fh.Size == 0 {
		return nil, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, goerrorkit.WrapWithMessage(err, "Failed to open uploaded picture")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, goerrorkit.WrapWithMessage(err, "Failed to read uploaded picture")
	}

	return &service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

// ForgotPage renders the reset request form
// GET /forgot
func (h *UserHandler) ForgotPage(c *fiber.Ctx, sc *session.Context) error {
	return render(c, sc, fiber.StatusOK, "forgot", fiber.Map{"title": "Forgot Password"})
}

// Forgot tạo reset token và xếp hàng email reset password
// POST /forgot
func (h *UserHandler) Forgot(c *fiber.Ctx, sc *session.Context) error {
	var form forgotForm
	if err := c.BodyParser(&form); err != nil {
		return invalidForm(err)
	}

	data := fiber.Map{
		"title": "Forgot Password",
		"form":  fiber.Map{"email": form.Email},
	}

	outcome, err := h.resets.RequestReset(c.UserContext(), form.Email)
	if err != nil {
		svcErr, ok := service.AsError(err)
		if !ok {
			return err
		}
		switch svcErr.Kind {
		case service.KindValidation:
			data["errors"] = svcErr.Fields
			return render(c, sc, fiber.StatusUnprocessableEntity, "forgot", data)
		case service.KindNotFound:
			sc.Flash(session.FlashDanger, svcErr.Message)
			return render(c, sc, fiber.StatusOK, "forgot", data)
		case service.KindUnavailable:
			sc.Flash(session.FlashDanger, svcErr.Message)
			return render(c, sc, fiber.StatusServiceUnavailable, "forgot", data)
		}
		return err
	}

	switch outcome {
	case service.ResetSent:
		sc.Flash(session.FlashSuccess, msgResetSent)
	case service.ResetAlreadySent:
		sc.Flash(session.FlashWarning, msgResetAlreadySent)
	case service.ResetPreviousExpired:
		sc.Flash(session.FlashWarning, msgResetPrevExpired)
	}
	return render(c, sc, fiber.StatusOK, "forgot", data)
}

// ResetPage renders the new password form when the token is still pending
// GET /resetpw/:token
func (h *UserHandler) ResetPage(c *fiber.Ctx, sc *session.Context) error {
	token := c.Params("token")
	if _, err := h.resets.CheckToken(c.UserContext(), token); err != nil {
		return h.tokenFailure(c, sc, err)
	}
	return render(c, sc, fiber.StatusOK, "resetpw", fiber.Map{
		"title": "Change Password",
		"token": token,
	})
}

// Reset đặt password mới và đánh dấu token đã dùng
// POST /resetpw/:token
func (h *UserHandler) Reset(c *fiber.Ctx, sc *session.Context) error {
	token := c.Params("token")

	var req service.ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidForm(err)
	}

	if err := h.resets.ResetPassword(c.UserContext(), token, req); err != nil {
		if svcErr, ok := service.AsError(err); ok && svcErr.Kind == service.KindValidation {
			return render(c, sc, fiber.StatusUnprocessableEntity, "resetpw", fiber.Map{
				"title":  "Change Password",
				"token":  token,
				"errors": svcErr.Fields,
			})
		}
		return h.tokenFailure(c, sc, err)
	}

	return flashRedirect(c, sc, session.FlashSuccess, msgPasswordUpdated, "/login")
}

// tokenFailure redirect về /forgot với lỗi token, lỗi hệ thống được trả nguyên
func (h *UserHandler) tokenFailure(c *fiber.Ctx, sc *session.Context, err error) error {
	svcErr, ok := service.AsError(err)
	if !ok {
		return err
	}
	switch svcErr.Kind {
	case service.KindNotFound, service.KindExpired, service.KindAlreadyConsumed:
		return flashRedirect(c, sc, session.FlashDanger, svcErr.Message, "/forgot")
	}
	return err
}
