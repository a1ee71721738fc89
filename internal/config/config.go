package config

import (
	"os"
	"strconv"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// S3Config holds object storage settings: endpoint credentials plus the
// upload defaults and URL behavior of the attachment store.
type S3Config struct {
	Endpoint   string
	AccessKey  string
	SecretKey  string
	Region     string
	Bucket     string
	Prefix     string
	UseSSL     bool
	Accelerate bool

	// Public controls whether URLs are unsigned by default; Host, when set,
	// serves every URL from that base (a CDN or reverse proxy) instead.
	Public bool
	Host   string

	// Upload defaults applied to every stored object.
	ACL          string
	CacheControl string
	SSE          string
	SSEKMSKeyID  string

	// Transfer thresholds in bytes. MultipartThreshold seeds both; the
	// per-operation values override it when set.
	MultipartThreshold int64
	UploadThreshold    int64
	CopyThreshold      int64
}

// CacheConfig configures the scratch namespace swept in the background.
type CacheConfig struct {
	Prefix           string
	MaxAgeSec        int
	SweepIntervalSec int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Database DatabaseConfig
	S3       S3Config
	Cache    CacheConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	cfg := &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:8080"),
		Port:    getEnv("PORT", "8080"), // default only for non-sensitive value
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		S3: S3Config{
			Endpoint:           getEnv("S3_ENDPOINT", ""),
			AccessKey:          getEnv("S3_ACCESS_KEY", ""),
			SecretKey:          getEnv("S3_SECRET_KEY", ""),
			Region:             getEnv("S3_REGION", ""),
			Bucket:             getEnv("S3_BUCKET", ""),
			Prefix:             getEnv("S3_PREFIX", ""),
			UseSSL:             getEnvBool("S3_USE_SSL", true),
			Accelerate:         getEnvBool("S3_ACCELERATE", false),
			Public:             getEnvBool("S3_PUBLIC", false),
			Host:               getEnv("S3_HOST", ""),
			ACL:                getEnv("S3_ACL", ""),
			CacheControl:       getEnv("S3_CACHE_CONTROL", ""),
			SSE:                getEnv("S3_SSE", ""),
			SSEKMSKeyID:        getEnv("S3_SSE_KMS_KEY_ID", ""),
			MultipartThreshold: getEnvInt64("S3_MULTIPART_THRESHOLD", 0),
			UploadThreshold:    getEnvInt64("S3_UPLOAD_THRESHOLD", 0),
			CopyThreshold:      getEnvInt64("S3_COPY_THRESHOLD", 0),
		},
		Cache: CacheConfig{
			Prefix:           getEnv("CACHE_PREFIX", "cache"),
			MaxAgeSec:        getEnvInt("CACHE_MAX_AGE_SEC", 86400),
			SweepIntervalSec: getEnvInt("CACHE_SWEEP_INTERVAL_SEC", 3600),
		},
	}

	if cfg.S3.UploadThreshold == 0 {
		cfg.S3.UploadThreshold = cfg.S3.MultipartThreshold
	}
	if cfg.S3.CopyThreshold == 0 {
		cfg.S3.CopyThreshold = cfg.S3.MultipartThreshold
	}
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.ParseInt(v, 10, 64)
		if err == nil {
			return i
		}
	}
	return def
}
