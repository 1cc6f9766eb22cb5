package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Booking      BookingConfig
	Notification NotificationConfig
	RateLimit    RateLimitConfig
}

type AppConfig struct {
	Port           string
	Env            string
	Timezone       string
	LogLevel       string
	AllowedOrigins []string
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
	Timezone string
}

// URL returns the connection string in URL form, as expected by golang-migrate.
func (c DBConfig) URL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%s", c.Host, c.Port),
		Path:   c.Name,
	}
	q := u.Query()
	q.Set("sslmode", c.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret        string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// BookingConfig controls how appointment dates are interpreted and how
// meeting links are built.
type BookingConfig struct {
	Location       *time.Location
	MeetingBaseURL string
	NotifyTimeout  time.Duration
}

type NotificationConfig struct {
	// Provider is one of "whatsapp", "email" or "none".
	Provider        string
	CallMeBotURL    string
	CallMeBotAPIKey string
	SendGridAPIKey  string
	FromEmail       string
	FromName        string
}

type RateLimitConfig struct {
	Limit    int
	Window   time.Duration
	FailOpen bool
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_TIMEZONE", "UTC")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("MEETING_BASE_URL", "https://meet.jit.si")
	viper.SetDefault("NOTIFY_TIMEOUT", "10s")
	viper.SetDefault("NOTIFY_PROVIDER", "none")
	viper.SetDefault("CALLMEBOT_URL", "https://api.callmebot.com/whatsapp.php")
	viper.SetDefault("NOTIFY_FROM_NAME", "Telehealth Booking")
	viper.SetDefault("BOOKING_RATE_LIMIT", 20)
	viper.SetDefault("BOOKING_RATE_WINDOW", "1m")
	viper.SetDefault("BOOKING_RATE_FAIL_OPEN", true)
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()
	setDefaults()

	if err := viper.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	accessExpiry, err := time.ParseDuration(viper.GetString("JWT_ACCESS_EXPIRY"))
	if err != nil {
		accessExpiry = 15 * time.Minute
	}

	refreshExpiry, err := time.ParseDuration(viper.GetString("JWT_REFRESH_EXPIRY"))
	if err != nil {
		refreshExpiry = 7 * 24 * time.Hour
	}

	timezone := viper.GetString("APP_TIMEZONE")
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", timezone, err)
	}

	notifyTimeout, err := time.ParseDuration(viper.GetString("NOTIFY_TIMEOUT"))
	if err != nil {
		notifyTimeout = 10 * time.Second
	}

	rateWindow, err := time.ParseDuration(viper.GetString("BOOKING_RATE_WINDOW"))
	if err != nil {
		rateWindow = time.Minute
	}

	config := &Config{
		App: AppConfig{
			Port:           viper.GetString("APP_PORT"),
			Env:            viper.GetString("APP_ENV"),
			Timezone:       timezone,
			LogLevel:       viper.GetString("LOG_LEVEL"),
			AllowedOrigins: strings.Split(viper.GetString("CORS_ALLOWED_ORIGINS"), ","),
		},
		DB: DBConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			Name:     viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
			Timezone: timezone,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret:        viper.GetString("JWT_SECRET"),
			AccessExpiry:  accessExpiry,
			RefreshExpiry: refreshExpiry,
		},
		Booking: BookingConfig{
			Location:       location,
			MeetingBaseURL: viper.GetString("MEETING_BASE_URL"),
			NotifyTimeout:  notifyTimeout,
		},
		Notification: NotificationConfig{
			Provider:        viper.GetString("NOTIFY_PROVIDER"),
			CallMeBotURL:    viper.GetString("CALLMEBOT_URL"),
			CallMeBotAPIKey: viper.GetString("CALLMEBOT_API_KEY"),
			SendGridAPIKey:  viper.GetString("SENDGRID_API_KEY"),
			FromEmail:       viper.GetString("NOTIFY_FROM_EMAIL"),
			FromName:        viper.GetString("NOTIFY_FROM_NAME"),
		},
		RateLimit: RateLimitConfig{
			Limit:    viper.GetInt("BOOKING_RATE_LIMIT"),
			Window:   rateWindow,
			FailOpen: viper.GetBool("BOOKING_RATE_FAIL_OPEN"),
		},
	}

	return config, nil
}
