package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName     string
	AppEnv      string
	AppURL      string
	Port        string
	CorsOrigins []string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	JWTSecret string
	JWTExpiry time.Duration

	// Registration policy (empty = any domain)
	StudentEmailDomain  string
	LecturerEmailDomain string

	// Email
	EmailFrom    string
	ResendAPIKey string

	// Observability (optional)
	SentryDSN string

	// Storage: "s3" (S3-compatible: MinIO, AWS S3, R2, Supabase S3) or "local"
	StorageDriver    string
	S3Region         string
	S3Bucket         string
	S3AccessKey      string
	S3SecretKey      string
	S3Endpoint       string // Optional: for S3-compatible services
	S3PublicURL      string // Optional: base URL objects are served from
	LocalStoragePath string
	LocalStorageURL  string

	// Media derivation
	FFmpegPath        string
	FFprobePath       string
	PdftoppmPath      string
	MediaTempDir      string
	PDFPreviewPages   int
	VideoMaxBytes     int64
	PDFMaxBytes       int64
	BackgroundTimeout time.Duration
}

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		// Application
		AppName:     envString("APP_NAME", "ShareULBI"),
		AppEnv:      envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:      envString("APP_URL", "http://localhost:5000"),
		Port:        envString("PORT", "5000"),
		CorsOrigins: envList("CORS_ORIGINS", "http://localhost:3000"),

		// Database
		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/shareulbi.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"),

		// Security
		JWTSecret: envRequired("JWT_SECRET"),
		JWTExpiry: envDuration("JWT_EXPIRY", 24*time.Hour),

		StudentEmailDomain:  envString("STUDENT_EMAIL_DOMAIN", ""),
		LecturerEmailDomain: envString("LECTURER_EMAIL_DOMAIN", ""),

		// Email (RESEND_API_KEY optional in development, required in production)
		EmailFrom:    envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: envString("RESEND_API_KEY", ""),

		// Observability
		SentryDSN: envString("SENTRY_DSN", ""),

		// Storage
		StorageDriver:    envString("STORAGE_DRIVER", "local"),
		S3Region:         envString("S3_REGION", ""),
		S3Bucket:         envString("S3_BUCKET", "post-files"),
		S3AccessKey:      envString("S3_ACCESS_KEY", ""),
		S3SecretKey:      envString("S3_SECRET_KEY", ""),
		S3Endpoint:       envString("S3_ENDPOINT", ""),
		S3PublicURL:      envString("S3_PUBLIC_URL", ""),
		LocalStoragePath: envString("LOCAL_STORAGE_PATH", "./data/files"),
		LocalStorageURL:  envString("LOCAL_STORAGE_URL", ""),

		// Media
		FFmpegPath:        envString("FFMPEG_PATH", "ffmpeg"),
		FFprobePath:       envString("FFPROBE_PATH", "ffprobe"),
		PdftoppmPath:      envString("PDFTOPPM_PATH", "pdftoppm"),
		MediaTempDir:      envString("MEDIA_TEMP_DIR", os.TempDir()),
		PDFPreviewPages:   envInt("PDF_PREVIEW_PAGES", 3),
		VideoMaxBytes:     int64(envInt("VIDEO_MAX_BYTES", 50<<20)), // 50MB
		PDFMaxBytes:       int64(envInt("PDF_MAX_BYTES", 20<<20)),   // 20MB
		BackgroundTimeout: envDuration("BACKGROUND_TIMEOUT", 5*time.Minute),
	}

	if cfg.LocalStorageURL == "" {
		cfg.LocalStorageURL = strings.TrimSuffix(cfg.AppURL, "/") + "/media"
	}

	// Production: validate required services
	if cfg.IsProduction() {
		validateProduction(cfg)
	}

	return cfg
}

// validateProduction ensures all required services are configured for production deployments.
func validateProduction(cfg *Config) {
	if cfg.ResendAPIKey == "" {
		slog.Error("production deployment requires RESEND_API_KEY",
			"hint", "set APP_ENV=development for local testing with email log mode")
		os.Exit(1)
	}
	if cfg.StorageDriver == "s3" && (cfg.S3Region == "" || cfg.S3Bucket == "") {
		slog.Error("s3 storage requires S3_REGION and S3_BUCKET")
		os.Exit(1)
	}
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envList(key, def string) []string {
	raw := envString(key, def)
	var items []string
	for _, part := range strings.Split(raw, ",") {
		if value := strings.TrimSpace(part); value != "" {
			items = append(items, value)
		}
	}
	return items
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// SecureCookies reports whether auth cookies should carry the Secure flag.
func (c *Config) SecureCookies() bool {
	return envBool("SECURE_COOKIES", c.IsProduction())
}
