package config

import (
	"os"
	"strconv"
)

type Config struct {
	Addr string

	// Database. Driver is "sqlite" (default) or "mysql".
	DBDriver string
	DBDSN    string

	// Redis session cache. Empty RedisAddr disables it.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Ollama backend
	OllamaBaseURL    string
	OllamaModel      string
	AITimeoutSeconds int
	// AIMaxRetries is carried in config but the client issues a single
	// attempt per request; see DESIGN.md.
	AIMaxRetries int

	SessionTTLHours int

	LogLevel  string
	LogFormat string
}

func Load() Config {
	addr := os.Getenv("APP_ADDR")
	if addr == "" {
		addr = ":8000"
	}

	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "sqlite"
	}

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		switch driver {
		case "mysql":
			// app:apppass@tcp(127.0.0.1:3306)/llamachat?charset=utf8mb4&parseTime=true&loc=Local
			dsn = "app:apppass@tcp(127.0.0.1:3306)/llamachat?charset=utf8mb4&parseTime=true&loc=Local"
		default:
			dsn = "llamachat.db"
		}
	}

	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			redisDB = n
		}
	}

	ollamaBaseURL := os.Getenv("OLLAMA_BASE_URL")
	if ollamaBaseURL == "" {
		ollamaBaseURL = "http://localhost:11434"
	}

	ollamaModel := os.Getenv("OLLAMA_MODEL")
	if ollamaModel == "" {
		ollamaModel = "llama3.2"
	}

	aiTimeout := 120
	if v := os.Getenv("AI_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			aiTimeout = n
		}
	}

	aiRetries := 3
	if v := os.Getenv("AI_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			aiRetries = n
		}
	}

	sessionTTL := 24
	if v := os.Getenv("SESSION_TTL_HOURS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			sessionTTL = n
		}
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return Config{
		Addr: addr,

		DBDriver: driver,
		DBDSN:    dsn,

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       redisDB,

		OllamaBaseURL:    ollamaBaseURL,
		OllamaModel:      ollamaModel,
		AITimeoutSeconds: aiTimeout,
		AIMaxRetries:     aiRetries,

		SessionTTLHours: sessionTTL,

		LogLevel:  logLevel,
		LogFormat: os.Getenv("LOG_FORMAT"),
	}
}
