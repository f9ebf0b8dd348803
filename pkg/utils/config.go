package utils

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Email    EmailConfig
	OTP      OTPConfig
	Booking  BookingConfig
	Reminder ReminderConfig
	Notifier NotifierConfig
	AMQP     AMQPConfig
}

type AppConfig struct {
	Name        string
	Port        string
	Debug       bool
	LogPath     string
	Timezone    string
	AdminEmails []string
}

type DatabaseConfig struct {
	Host           string
	Port           string
	Name           string
	User           string
	Password       string
	SSLMode        string
	MaxConns       int32
	Timeout        time.Duration
	ConnectRetries int
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type OTPConfig struct {
	ExpiryMinutes int
	Length        int
}

type BookingConfig struct {
	WindowStart string
	WindowEnd   string
	MaxPerUser  int
}

type ReminderConfig struct {
	Enabled bool
	Cron    string
	Timeout time.Duration
}

type NotifierConfig struct {
	Driver string // log, smtp, amqp
}

type AMQPConfig struct {
	URL        string
	Exchange   string
	RoutingKey string
}

// Location resolves the configured timezone, falling back to the host zone.
func (c AppConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "interview-booking")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("TIMEZONE", "Local")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("DB_TIMEOUT", "5s")
	viper.SetDefault("DB_CONNECT_RETRIES", 5)
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("SMTP_PORT", 587)
	viper.SetDefault("OTP_EXPIRY_MINUTES", 10)
	viper.SetDefault("OTP_LENGTH", 6)
	viper.SetDefault("BOOKING_WINDOW_START", "2025-05-10")
	viper.SetDefault("BOOKING_WINDOW_END", "2025-05-13")
	viper.SetDefault("BOOKING_MAX_PER_USER", 3)
	viper.SetDefault("REMINDER_ENABLED", true)
	viper.SetDefault("REMINDER_CRON", "0 8 * * *")
	viper.SetDefault("REMINDER_TIMEOUT", "5m")
	viper.SetDefault("NOTIFIER_DRIVER", "log")
	viper.SetDefault("AMQP_EXCHANGE", "notification.exchange")
	viper.SetDefault("AMQP_ROUTING_KEY", "notification.email")

	// .env is optional; the environment wins either way
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:        viper.GetString("APP_NAME"),
			Port:        viper.GetString("PORT"),
			Debug:       viper.GetBool("DEBUG"),
			LogPath:     viper.GetString("LOG_PATH"),
			Timezone:    viper.GetString("TIMEZONE"),
			AdminEmails: splitList(viper.GetString("ADMIN_EMAILS")),
		},
		Database: DatabaseConfig{
			Host:           viper.GetString("DB_HOST"),
			Port:           viper.GetString("DB_PORT"),
			Name:           viper.GetString("DB_NAME"),
			User:           viper.GetString("DB_USER"),
			Password:       viper.GetString("DB_PASS"),
			SSLMode:        viper.GetString("DB_SSLMODE"),
			MaxConns:       viper.GetInt32("DB_MAX_CONNS"),
			Timeout:        viper.GetDuration("DB_TIMEOUT"),
			ConnectRetries: viper.GetInt("DB_CONNECT_RETRIES"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: viper.GetInt("JWT_EXPIRY_HOURS"),
		},
		Email: EmailConfig{
			Host:     viper.GetString("SMTP_HOST"),
			Port:     viper.GetInt("SMTP_PORT"),
			User:     viper.GetString("SMTP_USER"),
			Password: viper.GetString("SMTP_PASS"),
			From:     viper.GetString("EMAIL_FROM"),
		},
		OTP: OTPConfig{
			ExpiryMinutes: viper.GetInt("OTP_EXPIRY_MINUTES"),
			Length:        viper.GetInt("OTP_LENGTH"),
		},
		Booking: BookingConfig{
			WindowStart: viper.GetString("BOOKING_WINDOW_START"),
			WindowEnd:   viper.GetString("BOOKING_WINDOW_END"),
			MaxPerUser:  viper.GetInt("BOOKING_MAX_PER_USER"),
		},
		Reminder: ReminderConfig{
			Enabled: viper.GetBool("REMINDER_ENABLED"),
			Cron:    viper.GetString("REMINDER_CRON"),
			Timeout: viper.GetDuration("REMINDER_TIMEOUT"),
		},
		Notifier: NotifierConfig{
			Driver: strings.ToLower(viper.GetString("NOTIFIER_DRIVER")),
		},
		AMQP: AMQPConfig{
			URL:        viper.GetString("AMQP_URL"),
			Exchange:   viper.GetString("AMQP_EXCHANGE"),
			RoutingKey: viper.GetString("AMQP_ROUTING_KEY"),
		},
	}

	if config.JWT.Secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return config, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
