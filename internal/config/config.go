package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	AppEnv            string
	LogLevel          string
	ListenAddr        string
	Port              string
	DatabaseURL       string
	SessionSecret     string
	SessionBackend    string
	SessionTTL        time.Duration
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	GinMode           string
	CORSOrigins       []string
	PolicyFile        string
	SuperRootName     string
	SuperRootEmail    string
	SuperRootPassword string
}

const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"

	defaultSessionTTL = 30 * 24 * time.Hour
)

// LoadDotEnv 按 .env.local > .env 的优先级加载环境文件，已存在的系统环境变量不会被覆盖。
func LoadDotEnv() []string {
	candidates := []string{".env.local", ".env"}
	var loaded []string
	for _, f := range candidates {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) > 0 {
		_ = godotenv.Load(loaded...)
	}
	return loaded
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() (AppConfig, error) {
	port := envOr("PORT", "8080")

	listenAddr := envOr("LISTEN_ADDR", fmt.Sprintf(":%s", port))

	sessionTTL := defaultSessionTTL
	if raw := strings.TrimSpace(os.Getenv("SESSION_TTL")); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed < 0 {
			return AppConfig{}, fmt.Errorf("invalid SESSION_TTL %q", raw)
		}
		sessionTTL = parsed
	}

	backend := strings.ToLower(envOr("SESSION_BACKEND", SessionBackendMemory))
	if backend != SessionBackendMemory && backend != SessionBackendRedis {
		return AppConfig{}, fmt.Errorf("unsupported SESSION_BACKEND %q", backend)
	}

	redisDB := 0
	if raw := strings.TrimSpace(os.Getenv("REDIS_DB")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return AppConfig{}, fmt.Errorf("invalid REDIS_DB %q", raw)
		}
		redisDB = parsed
	}

	return AppConfig{
		AppEnv:            envOr("APP_ENV", "production"),
		LogLevel:          envOr("LOG_LEVEL", "info"),
		ListenAddr:        listenAddr,
		Port:              port,
		DatabaseURL:       envOr("DATABASE_URL", "sqlite://blog-engine.db"),
		SessionSecret:     envOr("SESSION_SECRET", "blog-engine-dev-secret"),
		SessionBackend:    backend,
		SessionTTL:        sessionTTL,
		RedisAddr:         envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     strings.TrimSpace(os.Getenv("REDIS_PASSWORD")),
		RedisDB:           redisDB,
		GinMode:           envOr("GIN_MODE", "release"),
		CORSOrigins:       splitList(os.Getenv("CORS_ORIGINS")),
		PolicyFile:        strings.TrimSpace(os.Getenv("POLICY_FILE")),
		SuperRootName:     strings.TrimSpace(os.Getenv("SUPER_ROOT_NAME")),
		SuperRootEmail:    strings.TrimSpace(os.Getenv("SUPER_ROOT_EMAIL")),
		SuperRootPassword: strings.TrimSpace(os.Getenv("SUPER_ROOT_PASSWORD")),
	}, nil
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}
