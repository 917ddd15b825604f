package infra

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	Port        string
	DatabaseURL string
	DBMaxConns  int

	AuthJWTSecret   string
	AuthJWTAudience string
	AuthJWTIssuer   string

	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	GeminiTimeout time.Duration

	ImageBaseURL       string
	ImageModel         string
	ImagesPerRequest   int
	ImagePrefetch      bool
	ImagePrefetchLimit int
	ImageFetchTimeout  time.Duration

	StoragePath string
	GeoIPDBPath string

	DefaultDailyCredits int
	CreditResetSchedule string

	GenerationTimeout time.Duration
	GenerationTTL     time.Duration

	CORSAllowedOrigins []string

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
	RateLimitPerMin  int
}

// LoadConfig loads the API server configuration from environment variables and
// applies defaults where needed.
func LoadConfig() (*Config, error) {
	cfg, err := LoadBaseConfig()
	if err != nil {
		return nil, err
	}
	if cfg.AuthJWTSecret == "" {
		return nil, fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	return cfg, nil
}

// LoadBaseConfig loads the configuration shared by every binary. Only the
// database connection is mandatory.
func LoadBaseConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBMaxConns:  getEnvInt("DB_MAX_CONNS", 10),

		AuthJWTSecret:   os.Getenv("AUTH_JWT_SECRET"),
		AuthJWTAudience: getEnv("AUTH_JWT_AUDIENCE", "authenticated"),
		AuthJWTIssuer:   os.Getenv("AUTH_JWT_ISSUER"),

		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-1.5-flash-latest"),
		GeminiBaseURL: getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
		GeminiTimeout: getEnvDuration("GEMINI_TIMEOUT", 15*time.Second),

		ImageBaseURL:       getEnv("IMAGE_BASE_URL", "https://image.pollinations.ai"),
		ImageModel:         getEnv("IMAGE_MODEL", "flux"),
		ImagesPerRequest:   getEnvInt("IMAGES_PER_REQUEST", 4),
		ImagePrefetch:      getEnvBool("IMAGE_PREFETCH", true),
		ImagePrefetchLimit: getEnvInt("IMAGE_PREFETCH_CONCURRENCY", 2),
		ImageFetchTimeout:  getEnvDuration("IMAGE_FETCH_TIMEOUT", 90*time.Second),

		StoragePath: getEnv("STORAGE_PATH", "./storage"),
		GeoIPDBPath: os.Getenv("GEOIP_DB_PATH"),

		DefaultDailyCredits: getEnvInt("DEFAULT_DAILY_CREDITS", 5),
		CreditResetSchedule: getEnv("CREDIT_RESET_SCHEDULE", "0 0 0 * * *"),

		GenerationTimeout: getEnvDuration("GENERATION_TIMEOUT", 2*time.Minute),
		GenerationTTL:     getEnvDuration("GENERATION_TTL", time.Hour),

		CORSAllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS"),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
		RateLimitPerMin:  getEnvInt("RATE_LIMIT_PER_MINUTE", 10),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.ImagesPerRequest <= 0 {
		cfg.ImagesPerRequest = 4
	}
	if cfg.DefaultDailyCredits < 0 {
		cfg.DefaultDailyCredits = 0
	}

	return cfg, nil
}

// AIEnabled reports whether prompt analysis and enhancement can reach Gemini.
func (c *Config) AIEnabled() bool {
	return c != nil && strings.TrimSpace(c.GeminiAPIKey) != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
