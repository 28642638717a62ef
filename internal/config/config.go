package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every process-wide setting. It is built once at startup and
// passed to the components that need it.
type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Auth         AuthConfig
	Mail         MailConfig
	Kafka        KafkaConfig
	RateLimit    RateLimitConfig
	OpenAIAPIKey string
}

type AppConfig struct {
	Addr         string
	GinMode      string
	LogLevel     string
	ResetURL     string // base URL of the password reset page
	CookieSecure bool
}

type DBConfig struct {
	Driver   string // mysql or postgres
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Addr     string
	Password string
}

type AuthConfig struct {
	JWTSecret      string
	AccessTokenTTL time.Duration
	ResetTokenTTL  time.Duration
	OTPTTL         time.Duration
}

type MailConfig struct {
	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
	FromEmail string
}

// Enabled reports whether enough SMTP settings are present to send mail.
func (m MailConfig) Enabled() bool {
	return m.SMTPHost != "" && m.SMTPUser != "" && m.FromEmail != ""
}

type KafkaConfig struct {
	Brokers  []string
	Topic    string
	Username string
	Password string
}

// Enabled reports whether notifications should be published to Kafka.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.Topic != ""
}

type RateLimitConfig struct {
	Rate  float64 // tokens per second per client
	Burst float64
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", slog.String("error", err.Error()))
	}

	return &Config{
		App: AppConfig{
			Addr:         getEnv("HTTP_ADDR", ":8000"),
			GinMode:      getEnv("GIN_MODE", "debug"),
			LogLevel:     getEnv("LOG_LEVEL", "info"),
			ResetURL:     getEnv("RESET_PASSWORD_URL", "http://localhost:8000/reset-password"),
			CookieSecure: getEnvBool("COOKIE_SECURE", true),
		},
		DB: DBConfig{
			Driver:   getEnv("DB_DRIVER", "mysql"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "projecthub"),
			Password: getEnv("DB_PASSWORD", "projecthub"),
			Name:     getEnv("DB_NAME", "projecthub"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Auth: AuthConfig{
			JWTSecret:      getEnv("JWT_SECRET", "default-secret-key-change-me"),
			AccessTokenTTL: getEnvDuration("JWT_EXPIRES_IN", time.Hour),
			ResetTokenTTL:  getEnvDuration("RESET_TOKEN_TTL", 15*time.Minute),
			OTPTTL:         getEnvDuration("OTP_TTL", 10*time.Minute),
		},
		Mail: MailConfig{
			SMTPHost:  getEnv("SMTP_HOST", ""),
			SMTPPort:  getEnvInt("SMTP_PORT", 587),
			SMTPUser:  getEnv("EMAIL_USERNAME", ""),
			SMTPPass:  getEnv("EMAIL_PASSWORD", ""),
			FromEmail: getEnv("EMAIL_FROM", getEnv("EMAIL_USERNAME", "")),
		},
		Kafka: KafkaConfig{
			Brokers:  splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:    getEnv("KAFKA_TOPIC", "projecthub.notifications"),
			Username: getEnv("KAFKA_USERNAME", ""),
			Password: getEnv("KAFKA_PASSWORD", ""),
		},
		RateLimit: RateLimitConfig{
			Rate:  getEnvFloat("RATE_LIMIT", 1),
			Burst: getEnvFloat("RATE_BURST", 10),
		},
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
