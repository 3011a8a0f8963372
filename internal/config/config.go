package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	JWT    JWTConfig
	S3     S3Config
	Upload UploadConfig
	OCR    OCRConfig
	Queue  QueueConfig
	CORS   CORSConfig
	Log    LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// JWTConfig holds JWT signing and expiry settings.
type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	AccessTokenExpiry time.Duration `mapstructure:"access_expiry"`
	Issuer            string        `mapstructure:"issuer"`
}

// S3Config holds blob store settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// UploadConfig holds upload validation settings.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// OCRConfig holds OCR and rasterization settings.
type OCRConfig struct {
	Language        string `mapstructure:"language"`
	Pdftoppm        string `mapstructure:"pdftoppm"`
	DPI             int    `mapstructure:"dpi"`
	PageConcurrency int    `mapstructure:"page_concurrency"`
	TempDir         string `mapstructure:"temp_dir"`
}

// QueueConfig holds processing queue settings.
type QueueConfig struct {
	Workers        int `mapstructure:"workers"`
	Size           int `mapstructure:"size"`
	JobTimeoutSecs int `mapstructure:"job_timeout_secs"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the PAPYR_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PAPYR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "papyr")
	v.SetDefault("db.password", "papyr_secret")
	v.SetDefault("db.name", "papyr_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.access_expiry", "24h")
	v.SetDefault("jwt.issuer", "papyr")

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "papyr-documents")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 50)

	// OCR defaults. 300 DPI balances OCR accuracy against rasterization time.
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.pdftoppm", "pdftoppm")
	v.SetDefault("ocr.dpi", 300)
	v.SetDefault("ocr.page_concurrency", 4)
	v.SetDefault("ocr.temp_dir", "")

	// Queue defaults
	v.SetDefault("queue.workers", 4)
	v.SetDefault("queue.size", 64)
	v.SetDefault("queue.job_timeout_secs", 300)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":             "PAPYR_SERVER_PORT",
		"server.read_timeout":     "PAPYR_SERVER_READ_TIMEOUT",
		"server.write_timeout":    "PAPYR_SERVER_WRITE_TIMEOUT",
		"server.environment":      "PAPYR_SERVER_ENVIRONMENT",
		"db.host":                 "PAPYR_DB_HOST",
		"db.port":                 "PAPYR_DB_PORT",
		"db.user":                 "PAPYR_DB_USER",
		"db.password":             "PAPYR_DB_PASSWORD",
		"db.name":                 "PAPYR_DB_NAME",
		"db.sslmode":              "PAPYR_DB_SSLMODE",
		"db.max_open":             "PAPYR_DB_MAX_OPEN",
		"db.max_idle":             "PAPYR_DB_MAX_IDLE",
		"jwt.secret":              "PAPYR_JWT_SECRET",
		"jwt.access_expiry":       "PAPYR_JWT_ACCESS_EXPIRY",
		"jwt.issuer":              "PAPYR_JWT_ISSUER",
		"s3.region":               "PAPYR_S3_REGION",
		"s3.bucket":               "PAPYR_S3_BUCKET",
		"s3.endpoint":             "PAPYR_S3_ENDPOINT",
		"s3.access_key":           "PAPYR_S3_ACCESS_KEY",
		"s3.secret_key":           "PAPYR_S3_SECRET_KEY",
		"s3.presign_expiry":       "PAPYR_S3_PRESIGN_EXPIRY",
		"upload.max_file_size_mb": "PAPYR_UPLOAD_MAX_FILE_SIZE_MB",
		"ocr.language":            "PAPYR_OCR_LANGUAGE",
		"ocr.pdftoppm":            "PAPYR_OCR_PDFTOPPM",
		"ocr.dpi":                 "PAPYR_OCR_DPI",
		"ocr.page_concurrency":    "PAPYR_OCR_PAGE_CONCURRENCY",
		"ocr.temp_dir":            "PAPYR_OCR_TEMP_DIR",
		"queue.workers":           "PAPYR_QUEUE_WORKERS",
		"queue.size":              "PAPYR_QUEUE_SIZE",
		"queue.job_timeout_secs":  "PAPYR_QUEUE_JOB_TIMEOUT_SECS",
		"cors.allowed_origins":    "PAPYR_CORS_ALLOWED_ORIGINS",
		"log.level":               "PAPYR_LOG_LEVEL",
		"log.format":              "PAPYR_LOG_FORMAT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if PAPYR_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("PAPYR_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.JWT = JWTConfig{
		Secret:            v.GetString("jwt.secret"),
		AccessTokenExpiry: v.GetDuration("jwt.access_expiry"),
		Issuer:            v.GetString("jwt.issuer"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}
	cfg.OCR = OCRConfig{
		Language:        v.GetString("ocr.language"),
		Pdftoppm:        v.GetString("ocr.pdftoppm"),
		DPI:             v.GetInt("ocr.dpi"),
		PageConcurrency: v.GetInt("ocr.page_concurrency"),
		TempDir:         v.GetString("ocr.temp_dir"),
	}
	cfg.Queue = QueueConfig{
		Workers:        v.GetInt("queue.workers"),
		Size:           v.GetInt("queue.size"),
		JobTimeoutSecs: v.GetInt("queue.job_timeout_secs"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	return cfg, nil
}
