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
	App struct {
		Name string
		Env  string
	}

	API struct {
		Host string
		Port string
	}

	DB struct {
		Host     string
		Port     int
		User     string
		Password string
		Name     string
		SSLMode  string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	Inbox struct {
		// BusinessNumber is the owning side of every conversation; the
		// other participant's number keys the conversation.
		BusinessNumber string
		// ForwardOnly gates the status transition policy. When true,
		// backward or redundant transitions are accepted as no-ops.
		ForwardOnly bool
		// ConversationCacheTTL bounds staleness of the cached
		// conversation list.
		ConversationCacheTTL time.Duration
	}

	Simulator struct {
		Interval     time.Duration
		BatchTimeout time.Duration
		MaxPerTick   int
	}

	Ingest struct {
		// PayloadDir is scanned for webhook payload files by cmd/seed.
		PayloadDir string
		// FileDelay is the pause between files, biasing convergence toward
		// message-before-status ordering.
		FileDelay time.Duration
	}
}

func New() *Config {
	_ = godotenv.Load()

	cfg := &Config{}

	// App
	cfg.App.Name = getEnv("APP_NAME", "whatsapp-inbox")
	cfg.App.Env = getEnv("APP_ENV", "development")

	// API
	cfg.API.Host = getEnv("API_HOST", "0.0.0.0")
	cfg.API.Port = getEnv("API_PORT", "8080")

	// DB
	cfg.DB.Host = getEnv("DB_HOST", "db")
	cfg.DB.Port = getInt("DB_PORT", 5432)
	cfg.DB.User = getEnv("DB_USER", "root")
	cfg.DB.Password = getEnv("DB_PASSWORD", "123456")
	cfg.DB.Name = getEnv("DB_NAME", "db_whatsapp_inbox")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	// Redis
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "redis:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getInt("REDIS_DB", 0)

	// Inbox pipeline
	cfg.Inbox.BusinessNumber = getEnv("BUSINESS_NUMBER", "")
	cfg.Inbox.ForwardOnly = getBool("TRANSITION_FORWARD_ONLY", true)
	cfg.Inbox.ConversationCacheTTL = getDuration("CONVERSATION_CACHE_TTL", 10*time.Second)

	// Demo status simulator
	cfg.Simulator.Interval = getDuration("SIMULATOR_INTERVAL", 30*time.Second)
	cfg.Simulator.BatchTimeout = getDuration("SIMULATOR_BATCH_TIMEOUT", 15*time.Second)
	cfg.Simulator.MaxPerTick = getInt("SIMULATOR_MAX_PER_TICK", 25)

	// Payload file ingestion
	cfg.Ingest.PayloadDir = getEnv("PAYLOAD_DIR", "payloads")
	cfg.Ingest.FileDelay = getDuration("PAYLOAD_FILE_DELAY", 250*time.Millisecond)

	return cfg
}

func getEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DB.Host,
		c.DB.Port,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.SSLMode,
	)
}
