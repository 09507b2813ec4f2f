package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort       string
	AppMode       string
	DBHost        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBPort        string
	JWTSecret     string
	JWTExpiryMin  int
	RefreshExpiry int
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	S3Region      string
	S3Bucket      string
	S3AccessKey   string
	S3SecretKey   string
	S3Endpoint    string
	S3PublicBase  string
	RateLimit     RateLimitConfig
}

// RateLimitConfig holds the per-action ceilings for a single rolling window.
type RateLimitConfig struct {
	Window      time.Duration
	CreatePoll  int
	Vote        int
	UpdatePoll  int
	DeletePoll  int
	General     int
	MaxEntries  int
	SweepPeriod time.Duration
}

func LoadConfig() *Config {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		AppPort:       getEnv("APP_PORT", "8080"),
		AppMode:       getEnv("APP_MODE", "debug"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "ballotbox"),
		DBPort:        getEnv("DB_PORT", "5432"),
		JWTSecret:     getEnv("JWT_SECRET", "change-me"),
		JWTExpiryMin:  getEnvAsInt("JWT_EXPIRY_MIN", 15),
		RefreshExpiry: getEnvAsInt("REFRESH_EXPIRY_DAYS", 14),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		S3Region:      getEnv("S3_REGION", ""),
		S3Bucket:      getEnv("S3_BUCKET", ""),
		S3AccessKey:   getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:   getEnv("S3_SECRET_KEY", ""),
		S3Endpoint:    getEnv("S3_ENDPOINT", ""),
		S3PublicBase:  getEnv("S3_PUBLIC_BASE", ""),
		RateLimit: RateLimitConfig{
			Window:      time.Duration(getEnvAsInt("RATELIMIT_WINDOW_SEC", 60)) * time.Second,
			CreatePoll:  getEnvAsInt("RATELIMIT_CREATE_POLL", 5),
			Vote:        getEnvAsInt("RATELIMIT_VOTE", 10),
			UpdatePoll:  getEnvAsInt("RATELIMIT_UPDATE_POLL", 10),
			DeletePoll:  getEnvAsInt("RATELIMIT_DELETE_POLL", 3),
			General:     getEnvAsInt("RATELIMIT_GENERAL", 100),
			MaxEntries:  getEnvAsInt("RATELIMIT_MAX_ENTRIES", 10000),
			SweepPeriod: time.Duration(getEnvAsInt("RATELIMIT_SWEEP_SEC", 60)) * time.Second,
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
