package blogkit

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	fibersession "github.com/gofiber/fiber/v2/middleware/session"
	"github.com/redis/go-redis/v9"
	"github.com/techmaster-vietnam/blogkit/config"
	"github.com/techmaster-vietnam/blogkit/core"
	"github.com/techmaster-vietnam/blogkit/database"
	"github.com/techmaster-vietnam/blogkit/handlers"
	"github.com/techmaster-vietnam/blogkit/middleware"
	"github.com/techmaster-vietnam/blogkit/models"
	"github.com/techmaster-vietnam/blogkit/repository"
	"github.com/techmaster-vietnam/blogkit/router"
	"github.com/techmaster-vietnam/blogkit/service"
	"github.com/techmaster-vietnam/blogkit/session"
	"github.com/techmaster-vietnam/blogkit/storage"
	"github.com/techmaster-vietnam/goerrorkit"
	"gorm.io/gorm"
)

// SessionCookie là tên cookie chứa session ID
const SessionCookie = "blog_session"

// Config là alias cho config.Config để tránh conflict với package config khác
type Config = config.Config

// Models - Export các models
type (
	User               = models.User
	Post               = models.Post
	PasswordResetToken = models.PasswordResetToken
)

// BlogKit là main struct chứa tất cả dependencies
type BlogKit struct {
	DB     *gorm.DB
	Config *Config
	Redis  *redis.Client

	// Repositories
	UserRepo  *repository.UserRepository
	PostRepo  *repository.PostRepository
	TokenRepo *repository.PasswordResetTokenRepository

	// Services
	AccountService *service.AccountService
	PostService    *service.PostService
	ResetService   *service.PasswordResetService

	// Session
	SessionStore      *fibersession.Store
	SessionMiddleware *middleware.SessionMiddleware

	// Handlers
	UserHandler   *handlers.UserHandler
	PostHandler   *handlers.PostHandler
	HealthHandler *handlers.HealthHandler

	// Route registry
	RouteRegistry *router.RouteRegistry

	app *fiber.App
}

// Builder là builder để tạo BlogKit
type Builder struct {
	app            *fiber.App
	db             *gorm.DB
	config         *Config
	sender         core.NotificationSender
	avatars        core.AvatarStorage
	sessionStorage fiber.Storage
	redis          *redis.Client
	clock          core.Clock
	skipMigrate    bool
}

// New tạo mới Builder
func New(app *fiber.App, db *gorm.DB) *Builder {
	return &Builder{
		app: app,
		db:  db,
	}
}

// WithConfig set config cho builder
func (b *Builder) WithConfig(cfg *Config) *Builder {
	b.config = cfg
	return b
}

// WithNotificationSender set sender gửi email reset password (bắt buộc)
func (b *Builder) WithNotificationSender(sender core.NotificationSender) *Builder {
	b.sender = sender
	return b
}

// WithAvatarStorage set storage cho ảnh đại diện. Mặc định lưu ra thư mục local.
func (b *Builder) WithAvatarStorage(avatars core.AvatarStorage) *Builder {
	b.avatars = avatars
	return b
}

// WithSessionStorage set storage cho session. Mặc định fiber memory storage.
func (b *Builder) WithSessionStorage(storage fiber.Storage) *Builder {
	b.sessionStorage = storage
	return b
}

// WithRedis lưu session trong redis và thêm redis vào health check
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	if client != nil {
		b.sessionStorage = session.NewRedisStorage(client, "")
	}
	return b
}

// WithClock thay đồng hồ hệ thống (dùng trong test)
func (b *Builder) WithClock(clock core.Clock) *Builder {
	b.clock = clock
	return b
}

// SkipMigrate bỏ qua bước migrate khi schema đã được tạo sẵn
func (b *Builder) SkipMigrate() *Builder {
	b.skipMigrate = true
	return b
}

// Initialize khởi tạo BlogKit với tất cả dependencies
func (b *Builder) Initialize() (*BlogKit, error) {
	if b.config == nil {
		b.config = config.LoadConfig()
	}
	if b.sender == nil {
		return nil, goerrorkit.NewSystemError(errors.New("notification sender is required"))
	}
	if b.avatars == nil {
		b.avatars = storage.NewLocalStorage(b.config.Storage.Dir, b.config.Storage.URLPrefix)
	}
	if b.clock == nil {
		b.clock = core.SystemClock
	}

	if !b.skipMigrate {
		if err := database.Setup(b.db, b.config.Database); err != nil {
			return nil, goerrorkit.WrapWithMessage(err, "Failed to migrate database")
		}
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(b.db)
	postRepo := repository.NewPostRepository(b.db)
	tokenRepo := repository.NewPasswordResetTokenRepository(b.db)

	// Initialize services
	accountService := service.NewAccountService(userRepo, b.avatars, b.config.Password)
	postService := service.NewPostService(postRepo, userRepo, b.clock)
	resetService := service.NewPasswordResetService(b.db, userRepo, tokenRepo, b.sender, b.config, b.clock)

	// Session
	store := fibersession.New(fibersession.Config{
		Storage:        b.sessionStorage,
		Expiration:     b.config.Server.SessionTTL,
		KeyLookup:      "cookie:" + SessionCookie,
		CookieSecure:   b.config.Server.CookieSecure,
		CookieHTTPOnly: true,
		CookieSameSite: fiber.CookieSameSiteLaxMode,
	})
	sessionMiddleware := middleware.NewSessionMiddleware(store, userRepo, &session.Options{
		Secret:       b.config.Server.SessionSecret,
		RememberFor:  b.config.Server.RememberFor,
		CookieSecure: b.config.Server.CookieSecure,
		Now:          b.clock,
	})

	return &BlogKit{
		DB:                b.db,
		Config:            b.config,
		Redis:             b.redis,
		UserRepo:          userRepo,
		PostRepo:          postRepo,
		TokenRepo:         tokenRepo,
		AccountService:    accountService,
		PostService:       postService,
		ResetService:      resetService,
		SessionStore:      store,
		SessionMiddleware: sessionMiddleware,
		UserHandler:       handlers.NewUserHandler(accountService, resetService),
		PostHandler:       handlers.NewPostHandler(postService),
		HealthHandler:     handlers.NewHealthHandler(b.db, b.redis),
		RouteRegistry:     router.NewRouteRegistry(),
		app:               b.app,
	}, nil
}

// SetupRoutes đăng ký /healthz và toàn bộ route của blog.
// Route đăng ký trước SetupRoutes (vd /metrics) không đi qua session middleware.
func (bk *BlogKit) SetupRoutes() {
	bk.app.Get("/healthz", bk.HealthHandler.Check)

	bk.app.Use(bk.SessionMiddleware.Handler())

	r := router.NewBlogRouter(bk.app, bk.RouteRegistry, middleware.RequireLogin())

	// Posts
	r.Get("/", bk.PostHandler.Home).
		Public().
		Description("Danh sách bài viết mới nhất").
		Register()
	r.Get("/home", bk.PostHandler.Home).
		Public().
		Description("Danh sách bài viết mới nhất").
		Register()
	r.Get("/post/new", bk.PostHandler.NewPostPage).
		RequireLogin().
		Description("Form viết bài").
		Register()
	r.Post("/post/new", bk.PostHandler.CreatePost).
		RequireLogin().
		Description("Tạo bài viết").
		Register()
	r.Get("/post/:id", bk.PostHandler.Post).
		Public().
		Description("Xem bài viết").
		Register()
	r.Get("/user/:username", bk.PostHandler.UserPosts).
		Public().
		Description("Bài viết của một user").
		Register()

	// Accounts
	r.Get("/register", bk.UserHandler.RegisterPage).
		Public().
		Description("Form đăng ký").
		Register()
	r.Post("/register", bk.UserHandler.Register).
		Public().
		Description("Đăng ký tài khoản").
		Register()
	r.Get("/login", bk.UserHandler.LoginPage).
		Public().
		Description("Form đăng nhập").
		Register()
	r.Post("/login", bk.UserHandler.Login).
		Public().
		Description("Đăng nhập").
		Register()
	r.Get("/logout", bk.UserHandler.Logout).
		Public().
		Description("Đăng xuất").
		Register()
	r.Get("/account", bk.UserHandler.AccountPage).
		RequireLogin().
		Description("Xem profile").
		Register()
	r.Post("/account", bk.UserHandler.UpdateAccount).
		RequireLogin().
		Description("Cập nhật profile và ảnh đại diện").
		Register()

	// Password reset
	r.Get("/forgot", bk.UserHandler.ForgotPage).
		Public().
		Description("Form quên mật khẩu").
		Register()
	r.Post("/forgot", bk.UserHandler.Forgot).
		Public().
		Description("Gửi email reset password").
		Register()
	r.Get("/resetpw/:token", bk.UserHandler.ResetPage).
		Public().
		Description("Form đặt mật khẩu mới").
		Register()
	r.Post("/resetpw/:token", bk.UserHandler.Reset).
		Public().
		Description("Đặt mật khẩu mới").
		Register()
}
