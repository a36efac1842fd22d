package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Chatbot   ChatbotConfig   `mapstructure:"chatbot"`
	Challenge ChallengeConfig `mapstructure:"challenge"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

type ServerConfig struct {
	Port         int    `mapstructure:"port"`
	Environment  string `mapstructure:"environment"`
	ReadTimeout  int    `mapstructure:"read_timeout"`
	WriteTimeout int    `mapstructure:"write_timeout"`
	LogLevel     string `mapstructure:"log_level"`
}

type DatabaseConfig struct {
	// Driver is either "postgres" or "sqlite".
	Driver          string `mapstructure:"driver"`
	Path            string `mapstructure:"path"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"dbname"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

type ChatbotConfig struct {
	Token string `mapstructure:"token"`
	// Mode is "polling" or "webhook".
	Mode                string  `mapstructure:"mode"`
	WebhookURL          string  `mapstructure:"webhook_url"`
	WebhookSecret       string  `mapstructure:"webhook_secret"`
	PollTimeout         int     `mapstructure:"poll_timeout"`
	AdminIDs            []int64 `mapstructure:"admin_ids"`
	ChannelID           string  `mapstructure:"channel_id"`
	ChannelLink         string  `mapstructure:"channel_link"`
	RequireSubscription bool    `mapstructure:"require_subscription"`
	RateLimit           float64 `mapstructure:"rate_limit"`
}

type ChallengeConfig struct {
	Timezone              string  `mapstructure:"timezone"`
	DefaultName           string  `mapstructure:"default_name"`
	DefaultTask           string  `mapstructure:"default_task"`
	DefaultDays           int     `mapstructure:"default_days"`
	ReminderIntervalHours float64 `mapstructure:"reminder_interval_hours"`
}

type SchedulerConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	RolloverTime    string   `mapstructure:"rollover_time"`
	ReminderTimes   []string `mapstructure:"reminder_times"`
	ShutdownTimeout int      `mapstructure:"shutdown_timeout"`
}

// IsAdmin reports whether userID is on the administrator allow-list.
func (c ChatbotConfig) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Environment names used by earlier deployments of the bot.
	_ = v.BindEnv("chatbot.token", "CHATBOT_TOKEN", "BOT_TOKEN")
	_ = v.BindEnv("chatbot.admin_ids", "CHATBOT_ADMIN_IDS", "ADMIN_IDS")
	_ = v.BindEnv("chatbot.channel_id", "CHATBOT_CHANNEL_ID", "CHANNEL_ID")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.read_timeout", 30)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.log_level", "info")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "bot.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "challengebot")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 300)

	v.SetDefault("chatbot.token", "")
	v.SetDefault("chatbot.mode", "polling")
	v.SetDefault("chatbot.webhook_url", "")
	v.SetDefault("chatbot.webhook_secret", "")
	v.SetDefault("chatbot.poll_timeout", 60)
	v.SetDefault("chatbot.admin_ids", []int64{})
	v.SetDefault("chatbot.channel_id", "")
	v.SetDefault("chatbot.channel_link", "")
	v.SetDefault("chatbot.require_subscription", true)
	v.SetDefault("chatbot.rate_limit", 25.0) // messages per second

	v.SetDefault("challenge.timezone", "Europe/Moscow")
	v.SetDefault("challenge.default_name", "75 days challenge")
	v.SetDefault("challenge.default_task", "push-ups")
	v.SetDefault("challenge.default_days", 75)
	v.SetDefault("challenge.reminder_interval_hours", 7.5)

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.rollover_time", "00:00")
	v.SetDefault("scheduler.reminder_times", []string{"07:30", "15:00"})
	v.SetDefault("scheduler.shutdown_timeout", 30)
}
