package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Mail     MailConfig
	Storage  StorageConfig
	Password PasswordConfig
	Reset    ResetConfig
	Log      LogConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	// BaseURL là địa chỉ public của blog, dùng để build link reset password trong email
	BaseURL       string
	CookieSecure  bool
	SessionSecret string
	SessionTTL    time.Duration
	RememberFor   time.Duration
	// CORSOrigins rỗng thì không bật CORS
	CORSOrigins string
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Driver   string // postgres | sqlite
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	// SQLitePath chỉ dùng khi Driver = sqlite
	SQLitePath string
	// Migrate: auto (gorm AutoMigrate) | sql (golang-migrate, chỉ postgres)
	Migrate string
}

// RedisConfig holds session storage configuration. Empty Addr keeps sessions in memory.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MailConfig holds outbound mail configuration
type MailConfig struct {
	Driver    string // smtp | log | file
	Host      string
	Port      int
	Username  string
	Password  string
	Sender    string
	QueueSize int
	Workers   int
	// OutboxPath là file JSON ghi email khi Driver = file (dev/test scripts)
	OutboxPath string
}

// StorageConfig holds avatar storage configuration
type StorageConfig struct {
	Driver    string // local | s3
	Dir       string
	URLPrefix string

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3PublicURL string
}

// PasswordConfig holds password validation configuration
type PasswordConfig struct {
	MinLength          int
	RequireUppercase   bool
	RequireLowercase   bool
	RequireDigit       bool
	RequireSpecialChar bool
	MinSpecialChars    int
}

// ResetConfig holds password reset configuration
type ResetConfig struct {
	TokenTTL      time.Duration
	PurgeInterval time.Duration
}

// LogConfig holds logger configuration passed to goerrorkit.InitLogger
type LogConfig struct {
	Level      string
	File       string
	JSONFormat bool
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	readTimeout := getEnvInt("READ_TIMEOUT_SECONDS", 10, 1)
	writeTimeout := getEnvInt("WRITE_TIMEOUT_SECONDS", 10, 1)
	sessionHours := getEnvInt("SESSION_TTL_HOURS", 24, 1)
	rememberDays := getEnvInt("REMEMBER_DAYS", 365, 1)
	redisDB := getEnvInt("REDIS_DB", 0, 0)
	smtpPort := getEnvInt("SMTP_PORT", 587, 1)
	queueSize := getEnvInt("MAIL_QUEUE_SIZE", 100, 1)
	workers := getEnvInt("MAIL_WORKERS", 2, 1)
	minLength := getEnvInt("PASSWORD_MIN_LENGTH", 6, 1)
	minSpecial := getEnvInt("PASSWORD_MIN_SPECIAL_CHARS", 1, 0)

	return &Config{
		Server: ServerConfig{
			Port:          getEnv("PORT", "3000"),
			ReadTimeout:   time.Duration(readTimeout) * time.Second,
			WriteTimeout:  time.Duration(writeTimeout) * time.Second,
			BaseURL:       strings.TrimRight(getEnv("BASE_URL", "http://localhost:3000"), "/"),
			CookieSecure:  getEnvBool("COOKIE_SECURE", false),
			SessionSecret: getEnv("SESSION_SECRET", "your-secret-key-change-in-production"),
			SessionTTL:    time.Duration(sessionHours) * time.Hour,
			RememberFor:   time.Duration(rememberDays) * 24 * time.Hour,
			CORSOrigins:   getEnv("CORS_ALLOW_ORIGINS", ""),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "postgres"),
			Name:       getEnv("DB_NAME", "blog"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "site.db"),
			Migrate:    getEnv("DB_MIGRATE", "auto"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Mail: MailConfig{
			Driver:     getEnv("MAIL_DRIVER", "log"),
			Host:       getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:       smtpPort,
			Username:   getEnv("SMTP_USERNAME", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			Sender:     getEnv("MAIL_SENDER", "mailclient420@gmail.com"),
			QueueSize:  queueSize,
			Workers:    workers,
			OutboxPath: getEnv("MAIL_OUTBOX", "testscript/outbox.json"),
		},
		Storage: StorageConfig{
			Driver:      getEnv("AVATAR_DRIVER", "local"),
			Dir:         getEnv("AVATAR_DIR", "static/profile_pics"),
			URLPrefix:   getEnv("AVATAR_URL_PREFIX", "/static/profile_pics"),
			S3Bucket:    getEnv("S3_BUCKET", ""),
			S3Region:    getEnv("S3_REGION", "us-east-1"),
			S3Endpoint:  getEnv("S3_ENDPOINT", ""),
			S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey: getEnv("S3_SECRET_KEY", ""),
			S3PublicURL: getEnv("S3_PUBLIC_URL", ""),
		},
		Password: PasswordConfig{
			MinLength:          minLength,
			RequireUppercase:   getEnvBool("PASSWORD_REQUIRE_UPPERCASE", false),
			RequireLowercase:   getEnvBool("PASSWORD_REQUIRE_LOWERCASE", false),
			RequireDigit:       getEnvBool("PASSWORD_REQUIRE_DIGIT", false),
			RequireSpecialChar: getEnvBool("PASSWORD_REQUIRE_SPECIAL_CHAR", false),
			MinSpecialChars:    minSpecial,
		},
		Reset: ResetConfig{
			TokenTTL:      getEnvDuration("RESET_TOKEN_TTL", 24*time.Hour),
			PurgeInterval: getEnvDuration("RESET_PURGE_INTERVAL", time.Hour),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       getEnv("LOG_FILE", "logs/blog.log"),
			JSONFormat: getEnvBool("LOG_JSON", true),
		},
	}
}

// getEnv gets environment variable or returns default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvInt trả về defaultValue khi giá trị không parse được hoặc nhỏ hơn minValue
func getEnvInt(key string, defaultValue, minValue int) int {
	value, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil || value < minValue {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(getEnv(key, defaultValue.String()))
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}
