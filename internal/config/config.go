package config

import (
	"os"
	"strconv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	ServerPort     string
	DBDriver       string
	DBDSN          string
	DBMaxOpenConns int
	ResetDB        bool
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	JWTSecret      string
	RequireAuth    bool
	SwaggerHost    string
}

var defaultDSN = map[string]string{
	"mysql":    "user:password@tcp(localhost:3306)/library_schema?charset=utf8mb4&parseTime=True&loc=Local",
	"postgres": "host=localhost user=postgres password=postgres dbname=library_schema port=5432 sslmode=disable",
	"sqlite":   "library.db",
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	driver := getEnv("DB_DRIVER", "mysql")
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		DBDriver:       driver,
		DBDSN:          getEnv("DB_DSN", defaultDSN[driver]),
		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
		ResetDB:        getEnvBool("RESET_DB", false),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		RedisPass:      os.Getenv("REDIS_PASSWORD"),
		JWTSecret:      getEnv("JWT_SECRET", "change-me"),
		RequireAuth:    getEnvBool("REQUIRE_AUTH", false),
		SwaggerHost:    os.Getenv("SWAGGER_HOST"),
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}
