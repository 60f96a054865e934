package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	Server ServerConfig
	Redis  RedisConfig
	DB     DBConfig
	Auth   AuthConfig
	Policy PolicyConfig
}

type ServerConfig struct {
	Port string
}

type DBConfig struct {
	DSN string
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

// PolicyConfig carries the default reorder policy. The 50/10/0.5 defaults
// mirror the dashboard's historical behavior; every value can be overridden
// per request through query parameters.
type PolicyConfig struct {
	TargetLevel       int
	LowStockThreshold int
	CriticalRatio     float64
}

func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	tokenTTL, _ := strconv.Atoi(getEnv("AUTH_TOKEN_TTL_HOURS", "24"))
	targetLevel, _ := strconv.Atoi(getEnv("POLICY_TARGET_LEVEL", "50"))
	lowStock, _ := strconv.Atoi(getEnv("POLICY_LOW_STOCK_THRESHOLD", "10"))
	criticalRatio, _ := strconv.ParseFloat(getEnv("POLICY_CRITICAL_RATIO", "0.5"), 64)

	return Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		DB: DBConfig{
			DSN: getEnv("INVENTORY_DSN", ""),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  time.Duration(tokenTTL) * time.Hour,
		},
		Policy: PolicyConfig{
			TargetLevel:       targetLevel,
			LowStockThreshold: lowStock,
			CriticalRatio:     criticalRatio,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
