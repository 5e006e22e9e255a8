// Package config loads service configuration from the environment.
package config

import (
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	PostgresURL string `envconfig:"POSTGRES_URL" required:"true"`

	KafkaBrokers string `envconfig:"KAFKA_BROKERS"`
	OrderTopic   string `envconfig:"ORDER_TOPIC" default:"order.created"`

	DefaultLocale string `envconfig:"DEFAULT_LOCALE" default:"ru"`

	CartRetentionDays    int    `envconfig:"CART_RETENTION_DAYS" default:"30"`
	JanitorIntervalHours int    `envconfig:"JANITOR_INTERVAL_HOURS" default:"24"`
	JanitorMarkerPath    string `envconfig:"JANITOR_MARKER_PATH" default:"cart_cleanup_last_run.txt"`

	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID   string `envconfig:"TELEGRAM_CHAT_ID"`

	SMTPHost     string   `envconfig:"SMTP_HOST"`
	SMTPPort     int      `envconfig:"SMTP_PORT" default:"587"`
	SMTPUsername string   `envconfig:"SMTP_USERNAME"`
	SMTPPassword string   `envconfig:"SMTP_PASSWORD"`
	SMTPFrom     string   `envconfig:"SMTP_FROM"`
	NotifyEmails []string `envconfig:"NOTIFY_EMAILS"`

	NotifyQueueSize int `envconfig:"NOTIFY_QUEUE_SIZE" default:"64"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Brokers splits KAFKA_BROKERS into addresses. Empty means Kafka is
// disabled and checkout skips event publishing.
func (c *Config) Brokers() []string {
	if c.KafkaBrokers == "" {
		return nil
	}
	return strings.Split(c.KafkaBrokers, ",")
}

// TelegramEnabled reports whether both bot token and chat id are set.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChatID != ""
}

// SMTPEnabled reports whether email notifications are configured.
func (c *Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPFrom != "" && len(c.NotifyEmails) > 0
}
