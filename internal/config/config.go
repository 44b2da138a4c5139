package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppName string
	Env     string
	Host    string
	Port    int

	// DatabasePath is the SQLite DSN; ":memory:" is valid for tests.
	DatabasePath string

	JWTSecret          string
	AccessTokenMinutes int
	EncryptKey         string

	// AssetHostURL is the upload endpoint of the external asset host. When
	// empty, uploads go to the local UploadDir instead.
	AssetHostURL       string
	AssetUploadTimeout time.Duration
	UploadDir          string

	CORSOrigins []string
	Debug       bool
}

func Load() (*Config, error) {
	// Optional .env in the working directory.
	_ = godotenv.Load()

	cfg := &Config{
		AppName: getEnv("APP_NAME", "quickchat API"),
		Env:     getEnv("APP_ENV", "development"),
		Host:    getEnv("HTTP_HOST", "0.0.0.0"),
		Port:    getEnvAsInt("HTTP_PORT", 5000),

		DatabasePath: getEnv("DATABASE_PATH", "quickchat.db"),

		JWTSecret:          os.Getenv("JWT_SECRET"),
		AccessTokenMinutes: getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 60*24*7),
		EncryptKey:         os.Getenv("ENCRYPTION_KEY"),

		AssetHostURL:       getEnv("ASSET_HOST_URL", ""),
		AssetUploadTimeout: time.Duration(getEnvAsInt("ASSET_UPLOAD_TIMEOUT_SECONDS", 15)) * time.Second,
		UploadDir:          getEnv("UPLOAD_DIR", "uploads"),

		Debug: getEnvAsBool("DEBUG", true),
	}

	cors := getEnv("CORS_ORIGINS", "")
	if cors != "" {
		parts := strings.Split(cors, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		cfg.CORSOrigins = parts
	} else {
		cfg.CORSOrigins = []string{"http://localhost:3000", "http://localhost:5173"}
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.EncryptKey == "" {
		return nil, fmt.Errorf("ENCRYPTION_KEY is required")
	}

	if cfg.AssetHostURL == "" {
		if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating upload dir: %w", err)
		}
	}

	return cfg, nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvAsBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}
