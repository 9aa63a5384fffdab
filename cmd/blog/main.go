package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/techmaster-vietnam/blogkit"
	"github.com/techmaster-vietnam/blogkit/config"
	"github.com/techmaster-vietnam/blogkit/core"
	"github.com/techmaster-vietnam/blogkit/database"
	"github.com/techmaster-vietnam/blogkit/mailer"
	"github.com/techmaster-vietnam/blogkit/metrics"
	"github.com/techmaster-vietnam/blogkit/storage"
	"github.com/techmaster-vietnam/blogkit/views"
	"github.com/techmaster-vietnam/goerrorkit"
)

func main() {
	// 0. Load .env file
	if err := godotenv.Load(); err != nil {
		logrus.Info(".env file not found, using environment variables")
	}

	// 1. Load configuration
	cfg := config.LoadConfig()

	// 2. Initialize goerrorkit logger
	goerrorkit.InitLogger(goerrorkit.LoggerOptions{
		ConsoleOutput: true,
		FileOutput:    cfg.Log.File != "",
		FilePath:      cfg.Log.File,
		JSONFormat:    cfg.Log.JSONFormat,
		MaxFileSize:   10,
		MaxBackups:    5,
		MaxAge:        30,
		LogLevel:      cfg.Log.Level,
	})
	goerrorkit.ConfigureForApplication("main")
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logrus.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 3. Connect to database
	db, err := database.Open(cfg.Database, cfg.Log.Level == "debug")
	if err != nil {
		panic(goerrorkit.NewSystemError(err).
			WithData(map[string]interface{}{
				"driver":   cfg.Database.Driver,
				"host":     cfg.Database.Host,
				"port":     cfg.Database.Port,
				"database": cfg.Database.Name,
			}))
	}

	// 4. Reset database (only if RESET_DB=true)
	if err := resetDatabase(db); err != nil {
		panic(err)
	}

	// 5. Run migrations
	if err := database.Setup(db, cfg.Database); err != nil {
		panic(goerrorkit.NewSystemError(err).
			WithData(map[string]interface{}{
				"operation": "migration",
				"mode":      cfg.Database.Migrate,
			}))
	}

	// 6. Seed demo data (only if SEED_DATA=true)
	if err := seedData(db); err != nil {
		panic(goerrorkit.WrapWithMessage(err, "Failed to seed demo data"))
	}

	// 7. Redis cho session (tùy chọn)
	redisClient, err := database.ConnectRedis(ctx, cfg.Redis)
	if err != nil {
		panic(goerrorkit.NewSystemError(err).
			WithData(map[string]interface{}{
				"redis_addr": cfg.Redis.Addr,
			}))
	}

	// 8. Avatar storage
	avatars, err := newAvatarStorage(ctx, cfg.Storage)
	if err != nil {
		panic(goerrorkit.NewSystemError(err).
			WithData(map[string]interface{}{
				"driver": cfg.Storage.Driver,
			}))
	}

	// 9. Mail queue
	queueCtx, stopQueue := context.WithCancel(context.Background())
	queue := mailer.NewQueue(newMailTransport(cfg.Mail), cfg.Mail.QueueSize, cfg.Mail.Workers)
	queue.Start(queueCtx)

	// 10. Create Fiber app
	app := fiber.New(fiber.Config{
		AppName:      "Flask Blog",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Views:        views.NewJSON(false),
	})

	// 11. Add middleware (RequestID must be before ErrorHandler)
	metrics.MustRegister()
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(goerrorkit.FiberErrorHandler())
	app.Use(metrics.Middleware())
	if cfg.Server.CORSOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: cfg.Server.CORSOrigins,
			AllowHeaders: "Origin, Content-Type, Accept",
			AllowMethods: "GET, POST, OPTIONS",
		}))
	}
	app.Get("/metrics", metrics.Handler())

	// 12. Initialize blog
	blog, err := blogkit.New(app, db).
		WithConfig(cfg).
		WithNotificationSender(mailer.NewPasswordResetMailer(cfg.Mail.Sender, queue)).
		WithAvatarStorage(avatars).
		WithRedis(redisClient).
		SkipMigrate().
		Initialize()
	if err != nil {
		panic(goerrorkit.WrapWithMessage(err, "Failed to initialize blog"))
	}

	// 13. Setup routes
	blog.SetupRoutes()
	for _, route := range blog.RouteRegistry.GetAllRoutes() {
		logrus.WithFields(logrus.Fields{
			"method": route.Method,
			"path":   route.FullPath,
			"access": route.Access,
		}).Debug(route.Description)
	}

	// 14. Xóa reset token hết hạn định kỳ
	janitorDone := make(chan struct{})
	go func() {
		defer close(janitorDone)
		blog.ResetService.RunJanitor(ctx, cfg.Reset.PurgeInterval)
	}()

	// 15. Start server
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- app.Listen(":" + cfg.Server.Port)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			goerrorkit.LogError(goerrorkit.NewSystemError(err), "main.Listen")
		}
		stop()
	case <-ctx.Done():
		logrus.Info("Shutting down")
	}

	// 16. Graceful shutdown: dừng HTTP, gửi nốt email trong hàng đợi rồi đóng kết nối
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		goerrorkit.LogError(goerrorkit.WrapWithMessage(err, "Failed to shut down server"), "main.Shutdown")
	}
	<-janitorDone
	stopQueue()
	queue.Wait()

	if redisClient != nil {
		_ = redisClient.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func newAvatarStorage(ctx context.Context, cfg config.StorageConfig) (core.AvatarStorage, error) {
	if cfg.Driver == "s3" {
		s3Storage, err := storage.NewS3Storage(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s3Storage, nil
	}
	return storage.NewLocalStorage(cfg.Dir, cfg.URLPrefix), nil
}

func newMailTransport(cfg config.MailConfig) mailer.Transport {
	switch cfg.Driver {
	case "smtp":
		return mailer.NewSMTPTransport(cfg)
	case "file":
		return mailer.NewFileTransport(cfg.OutboxPath)
	default:
		return mailer.NewLogTransport()
	}
}
