package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Channels ChannelsConfig
}

type ServerConfig struct {
	Port string
	Host string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

// ChannelsConfig holds environment fallbacks for the delivery providers.
// Database-stored channel configuration takes precedence at dispatch time.
type ChannelsConfig struct {
	Email   EmailChannelConfig
	SMS     SMSChannelConfig
	Push    PushChannelConfig
	Webhook WebhookChannelConfig
}

type EmailChannelConfig struct {
	SMTPHost    string `json:"smtp_host"`
	SMTPPort    int    `json:"smtp_port"`
	Username    string `json:"username"`
	Password    string `json:"password"`
	From        string `json:"from"`
	UseTLS      bool   `json:"use_tls"`
	UseStartTLS bool   `json:"use_starttls"`
}

type SMSChannelConfig struct {
	APIURL  string        `json:"api_url"`
	APIKey  string        `json:"api_key"`
	Sender  string        `json:"sender"`
	Timeout time.Duration `json:"timeout"`
}

type PushChannelConfig struct {
	AuthToken string        `json:"auth_token"`
	Timeout   time.Duration `json:"timeout"`
}

type WebhookChannelConfig struct {
	Secret  string        `json:"secret"`
	Timeout time.Duration `json:"timeout"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "finops"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      getEnvAsDuration("REDIS_CACHE_TTL", 5*time.Minute),
		},
		Channels: ChannelsConfig{
			Email: EmailChannelConfig{
				SMTPHost:    getEnv("ALERT_EMAIL_SMTP_HOST", ""),
				SMTPPort:    getEnvAsInt("ALERT_EMAIL_SMTP_PORT", 587),
				Username:    getEnv("ALERT_EMAIL_USERNAME", ""),
				Password:    getEnv("ALERT_EMAIL_PASSWORD", ""),
				From:        getEnv("ALERT_EMAIL_FROM", ""),
				UseTLS:      getEnvAsBool("ALERT_EMAIL_USE_TLS", false),
				UseStartTLS: getEnvAsBool("ALERT_EMAIL_USE_STARTTLS", true),
			},
			SMS: SMSChannelConfig{
				APIURL:  getEnv("ALERT_SMS_API_URL", ""),
				APIKey:  getEnv("ALERT_SMS_API_KEY", ""),
				Sender:  getEnv("ALERT_SMS_SENDER", ""),
				Timeout: getEnvAsDuration("ALERT_SMS_TIMEOUT", 15*time.Second),
			},
			Push: PushChannelConfig{
				AuthToken: getEnv("ALERT_PUSH_AUTH_TOKEN", ""),
				Timeout:   getEnvAsDuration("ALERT_PUSH_TIMEOUT", 15*time.Second),
			},
			Webhook: WebhookChannelConfig{
				Secret:  getEnv("ALERT_WEBHOOK_SECRET", ""),
				Timeout: getEnvAsDuration("ALERT_WEBHOOK_TIMEOUT", 30*time.Second),
			},
		},
	}

	return cfg, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

func (c *RedisConfig) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsStringSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	return strings.Split(valueStr, ",")
}
