package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port int

	DBURL      string
	DBMaxConns int

	JWTSecret   string
	JWTTTLHours int

	BcryptCost int

	FrontendURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	LoginFailLimit     int
	LoginFailWindowMin int

	RateLimitMax       int
	RateLimitWindowMin int

	OTLPEndpoint string

	SeedITEmail     string
	SeedITPassword  string
	SeedITFirstName string
	SeedITLastName  string
}

func Load() Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 5000),

		DBURL:      buildDBURL(),
		DBMaxConns: getEnvInt("DB_MAX_CONNS", 10),

		JWTSecret:   getEnv("JWT_SECRET", ""),
		JWTTTLHours: getEnvInt("JWT_EXPIRES_HOURS", 24),

		BcryptCost: getEnvInt("BCRYPT_ROUNDS", 12),

		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		LoginFailLimit:     getEnvInt("LOGIN_FAIL_LIMIT", 10),
		LoginFailWindowMin: getEnvInt("LOGIN_FAIL_WINDOW_MIN", 15),

		RateLimitMax:       getEnvInt("RATE_LIMIT_MAX", 1000),
		RateLimitWindowMin: getEnvInt("RATE_LIMIT_WINDOW_MIN", 15),

		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),

		SeedITEmail:     getEnv("SEED_IT_EMAIL", ""),
		SeedITPassword:  getEnv("SEED_IT_PASSWORD", ""),
		SeedITFirstName: getEnv("SEED_IT_FIRST_NAME", "System"),
		SeedITLastName:  getEnv("SEED_IT_LAST_NAME", "Admin"),
	}
}

func (c Config) JWTTTL() time.Duration {
	return time.Duration(c.JWTTTLHours) * time.Hour
}

func (c Config) IsDev() bool {
	return c.Env == "dev"
}

func buildDBURL() string {
	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "libraryduty")
	pass := getEnv("DB_PASSWORD", "libraryduty")
	name := getEnv("DB_NAME", "schedule_management")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}
