package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPAddr    string
	DBDriver    string
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	KafkaBrokers string
	KafkaTopic   string

	JWTAccessSecret  string
	JWTRefreshSecret string
	SyncKeyHash      string

	CORSAllowedOrigins []string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	TelegramBotToken string

	ReminderCron      string
	ReconcileInterval time.Duration
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		DBDriver:         getenv("DB_DRIVER", "mysql"),
		DatabaseURL:      mustGetenv("DATABASE_URL"),
		RedisAddr:        getenv("REDIS_ADDR", ""),
		RedisPassword:    getenv("REDIS_PASSWORD", ""),
		KafkaBrokers:     getenv("KAFKA_BROKERS", ""),
		KafkaTopic:       getenv("KAFKA_TOPIC", "lingo.events"),
		JWTAccessSecret:  mustGetenv("JWT_ACCESS_SECRET"),
		JWTRefreshSecret: mustGetenv("JWT_REFRESH_SECRET"),
		SyncKeyHash:      getenv("SYNC_KEY_HASH", ""),
		SMTPHost:         getenv("SMTP_HOST", ""),
		SMTPUsername:     getenv("SMTP_USERNAME", ""),
		SMTPPassword:     getenv("SMTP_PASSWORD", ""),
		SMTPFrom:         getenv("SMTP_FROM", "Lingo <no-reply@lingo.local>"),
		TelegramBotToken: getenv("TELEGRAM_BOT_TOKEN", ""),
		ReminderCron:     getenv("REMINDER_CRON", "0 * * * *"),
	}

	var err error
	if cfg.RedisDB, err = strconv.Atoi(getenv("REDIS_DB", "0")); err != nil {
		return cfg, err
	}
	if cfg.SMTPPort, err = strconv.Atoi(getenv("SMTP_PORT", "587")); err != nil {
		return cfg, err
	}
	if cfg.ReconcileInterval, err = time.ParseDuration(getenv("RECONCILE_INTERVAL", "5m")); err != nil {
		return cfg, err
	}

	origins := strings.Split(getenv("CORS_ALLOWED_ORIGINS", ""), ",")
	for _, o := range origins {
		o = strings.TrimSpace(o)
		if o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}
	return cfg, nil
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func mustGetenv(key string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		panic("missing env: " + key)
	}
	return v
}
