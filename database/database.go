package database

import (
	"fmt"
	"log"
	"time"

	"github.com/techmaster-vietnam/blogkit/config"
	"github.com/techmaster-vietnam/blogkit/models"
	"github.com/techmaster-vietnam/goerrorkit"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open mở kết nối gorm theo driver trong config (postgres | sqlite).
// TranslateError bật để unique violation trả về gorm.ErrDuplicatedKey.
func Open(cfg config.DatabaseConfig, logSQL bool) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(PostgresDSN(cfg))
	case "sqlite":
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, goerrorkit.NewSystemError(fmt.Errorf("unsupported database driver: %q", cfg.Driver))
	}

	lvl := logger.Silent
	if logSQL {
		lvl = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(log.New(log.Writer(), "", log.LstdFlags), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  lvl,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		}),
		TranslateError: true,
	})
	if err != nil {
		return nil, goerrorkit.WrapWithMessage(err, "Failed to open database").
			WithData(map[string]interface{}{
				"driver":   cfg.Driver,
				"host":     cfg.Host,
				"database": cfg.Name,
			})
	}

	if cfg.Driver == "sqlite" {
		// SQLite chỉ cho một writer; một connection tránh lỗi "database is locked"
		sqlDB, err := db.DB()
		if err != nil {
			return nil, goerrorkit.WrapWithMessage(err, "Failed to get underlying sql.DB")
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// PostgresDSN builds the key/value DSN used by the postgres driver
func PostgresDSN(cfg config.DatabaseConfig) string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode)
}

// Migrate tạo các bảng users, posts, password_reset_tokens bằng AutoMigrate
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Post{},
		&models.PasswordResetToken{},
	)
}

// Setup chọn cách migrate: "sql" chạy golang-migrate (chỉ postgres), còn lại dùng AutoMigrate
func Setup(db *gorm.DB, cfg config.DatabaseConfig) error {
	if cfg.Migrate == "sql" && cfg.Driver == "postgres" {
		return RunMigrations(db, cfg.Name)
	}
	if err := Migrate(db); err != nil {
		return goerrorkit.WrapWithMessage(err, "Failed to auto-migrate models")
	}
	return nil
}
