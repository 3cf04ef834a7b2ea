package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL    string
	RedisURL       string
	MetricsPort    string
	LogLevel       string
	WorkerCount    int
	BaseURL        string
	MaxPages       int
	ExchangeRate   float64
	OutputCSV      string
	RequestDelay   time.Duration
	RequestTimeout time.Duration
	MaxRetries     int
	PageCacheTTL   time.Duration
}

func Load() *Config {
	// .env na raiz do projeto, depois no diretório atual
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()
	return &Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		MetricsPort:    getEnv("METRICS_PORT", "9090"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		WorkerCount:    getEnvInt("WORKER_COUNT", 4),
		BaseURL:        getEnv("BASE_URL", "https://fashion-studio.dicoding.dev/"),
		MaxPages:       getEnvInt("MAX_PAGES", 50),
		ExchangeRate:   getEnvFloat("USD_TO_IDR_RATE", 16000),
		OutputCSV:      getEnv("OUTPUT_CSV", "products.csv"),
		RequestDelay:   time.Duration(getEnvInt("REQUEST_DELAY_MS", 500)) * time.Millisecond,
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 15)) * time.Second,
		MaxRetries:     getEnvInt("MAX_RETRIES", 2),
		PageCacheTTL:   time.Duration(getEnvInt("PAGE_CACHE_TTL_MIN", 30)) * time.Minute,
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getEnvInt(k string, d int) int {
	v, err := strconv.Atoi(os.Getenv(k))
	if err != nil || v < 0 {
		return d
	}
	return v
}

func getEnvFloat(k string, d float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(k), 64)
	if err != nil || v <= 0 {
		return d
	}
	return v
}
