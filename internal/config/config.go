// Package config reads process configuration from the environment.
// A .env file in the working directory is loaded first when present.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrMissing = errors.New("missing required configuration")

type Config struct {
	AlphaVantage AlphaVantageConfig
	Database     DatabaseConfig
	RedisURL     string
	Pushgateway  string
	WordPress    WordPressConfig
	API          APIConfig
	Log          LogConfig
}

type AlphaVantageConfig struct {
	APIKey         string
	BaseURL        string
	Topic          string
	BannedSources  []string
	RequestTimeout time.Duration
}

type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	Timeout  time.Duration
}

type WordPressConfig struct {
	URL         string
	User        string
	Password    string
	InsecureTLS bool
	Timeout     time.Duration
}

type APIConfig struct {
	Addr        string
	FrontendURL string
}

type LogConfig struct {
	Format string
	Level  string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ALPHAVANTAGE_BASE_URL", "https://www.alphavantage.co")
	v.SetDefault("NEWS_TOPIC", "technology")
	v.SetDefault("BANNED_SOURCES", "Motley Fool")
	v.SetDefault("HTTP_TIMEOUT", 30*time.Second)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_TIMEOUT", 10*time.Second)

	v.SetDefault("WORDPRESS_TIMEOUT", 30*time.Second)

	v.SetDefault("API_ADDR", ":8080")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_LEVEL", "info")
}

// Load reads .env (if any) and the process environment.
func Load() (*Config, error) {
	godotenv.Load()
	return fromEnv()
}

func fromEnv() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		AlphaVantage: AlphaVantageConfig{
			APIKey:         v.GetString("ALPHAVANTAGE_API_KEY"),
			BaseURL:        v.GetString("ALPHAVANTAGE_BASE_URL"),
			Topic:          v.GetString("NEWS_TOPIC"),
			BannedSources:  splitList(v.GetString("BANNED_SOURCES")),
			RequestTimeout: v.GetDuration("HTTP_TIMEOUT"),
		},
		Database: DatabaseConfig{
			URL:      v.GetString("DATABASE_URL"),
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetInt("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			Timeout:  v.GetDuration("DB_TIMEOUT"),
		},
		RedisURL:    v.GetString("REDIS_URL"),
		Pushgateway: v.GetString("PUSHGATEWAY_URL"),
		WordPress: WordPressConfig{
			URL:         strings.TrimRight(v.GetString("WORDPRESS_URL"), "/"),
			User:        v.GetString("WORDPRESS_USER"),
			Password:    v.GetString("WORDPRESS_PASSWORD"),
			InsecureTLS: v.GetBool("WORDPRESS_INSECURE_TLS"),
			Timeout:     v.GetDuration("WORDPRESS_TIMEOUT"),
		},
		API: APIConfig{
			Addr:        v.GetString("API_ADDR"),
			FrontendURL: v.GetString("FRONTEND_URL"),
		},
		Log: LogConfig{
			Format: v.GetString("LOG_FORMAT"),
			Level:  v.GetString("LOG_LEVEL"),
		},
	}

	if cfg.AlphaVantage.RequestTimeout <= 0 {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT %q", v.GetString("HTTP_TIMEOUT"))
	}
	if cfg.WordPress.Timeout <= 0 {
		return nil, fmt.Errorf("invalid WORDPRESS_TIMEOUT %q", v.GetString("WORDPRESS_TIMEOUT"))
	}
	if cfg.Database.Timeout <= 0 {
		return nil, fmt.Errorf("invalid DB_TIMEOUT %q", v.GetString("DB_TIMEOUT"))
	}

	return cfg, nil
}

// splitList splits a comma separated value, keeping inner spaces so that
// names like "Motley Fool" survive.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func missing(keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrMissing, strings.Join(keys, ", "))
}

// ValidateDatabase checks that either DATABASE_URL or the individual
// connection settings are present.
func (c *Config) ValidateDatabase() error {
	if c.Database.URL != "" {
		return nil
	}

	var keys []string
	if c.Database.Host == "" {
		keys = append(keys, "DB_HOST")
	}
	if c.Database.User == "" {
		keys = append(keys, "DB_USER")
	}
	if c.Database.Password == "" {
		keys = append(keys, "DB_PASSWORD")
	}
	if c.Database.Name == "" {
		keys = append(keys, "DB_NAME")
	}
	return missing(keys)
}

func (c *Config) ValidateFetcher() error {
	var keys []string
	if c.AlphaVantage.APIKey == "" {
		keys = append(keys, "ALPHAVANTAGE_API_KEY")
	}
	if err := missing(keys); err != nil {
		return err
	}
	return c.ValidateDatabase()
}

func (c *Config) ValidatePublisher() error {
	var keys []string
	if c.WordPress.URL == "" {
		keys = append(keys, "WORDPRESS_URL")
	}
	if c.WordPress.User == "" {
		keys = append(keys, "WORDPRESS_USER")
	}
	if c.WordPress.Password == "" {
		keys = append(keys, "WORDPRESS_PASSWORD")
	}
	if c.RedisURL == "" {
		keys = append(keys, "REDIS_URL")
	}
	if err := missing(keys); err != nil {
		return err
	}
	return c.ValidateDatabase()
}

// DSN returns a lib/pq connection string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}

	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
