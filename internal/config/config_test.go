package config

import (
	"errors"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ALPHAVANTAGE_API_KEY", "ALPHAVANTAGE_BASE_URL", "NEWS_TOPIC", "BANNED_SOURCES", "HTTP_TIMEOUT",
		"DATABASE_URL", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE", "DB_TIMEOUT",
		"REDIS_URL", "PUSHGATEWAY_URL", "WORDPRESS_URL", "WORDPRESS_USER", "WORDPRESS_PASSWORD",
		"WORDPRESS_INSECURE_TLS", "WORDPRESS_TIMEOUT", "API_ADDR", "FRONTEND_URL", "LOG_FORMAT", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := fromEnv()

	assert.Equal(t, nil, err)
	assert.Equal(t, "technology", cfg.AlphaVantage.Topic)
	assert.Equal(t, []string{"Motley Fool"}, cfg.AlphaVantage.BannedSources)
	assert.Equal(t, 30*time.Second, cfg.AlphaVantage.RequestTimeout)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 10*time.Second, cfg.Database.Timeout)
	assert.Equal(t, 30*time.Second, cfg.WordPress.Timeout)
	assert.Equal(t, ":8080", cfg.API.Addr)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestBannedSourcesList(t *testing.T) {
	clearEnv(t)
	t.Setenv("BANNED_SOURCES", "Motley Fool, Benzinga ,,Zacks Commentary")

	cfg, err := fromEnv()

	assert.Equal(t, nil, err)
	assert.Equal(t, []string{"Motley Fool", "Benzinga", "Zacks Commentary"}, cfg.AlphaVantage.BannedSources)
}

func TestInvalidTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_TIMEOUT", "-1s")

	_, err := fromEnv()

	assert.NotEqual(t, nil, err)
}

func TestWordPressTimeout(t *testing.T) {
	clearEnv(t)
	t.Setenv("HTTP_TIMEOUT", "5s")
	t.Setenv("WORDPRESS_TIMEOUT", "90s")

	cfg, err := fromEnv()

	assert.Equal(t, nil, err)
	assert.Equal(t, 5*time.Second, cfg.AlphaVantage.RequestTimeout)
	assert.Equal(t, 90*time.Second, cfg.WordPress.Timeout)

	t.Setenv("WORDPRESS_TIMEOUT", "0s")
	_, err = fromEnv()
	assert.NotEqual(t, nil, err)
}

func TestValidateFetcher(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_USER", "marketnews")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "marketnews")

	cfg, err := fromEnv()
	assert.Equal(t, nil, err)

	err = cfg.ValidateFetcher()
	assert.Equal(t, true, errors.Is(err, ErrMissing))
	assert.Equal(t, "missing required configuration: ALPHAVANTAGE_API_KEY", err.Error())

	cfg.AlphaVantage.APIKey = "demo"
	assert.Equal(t, nil, cfg.ValidateFetcher())
}

func TestValidateDatabase(t *testing.T) {
	clearEnv(t)

	cfg, err := fromEnv()
	assert.Equal(t, nil, err)

	err = cfg.ValidateDatabase()
	assert.Equal(t, "missing required configuration: DB_USER, DB_PASSWORD, DB_NAME", err.Error())

	cfg.Database.URL = "postgres://u:p@db/marketnews"
	assert.Equal(t, nil, cfg.ValidateDatabase())
}

func TestValidatePublisher(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://u:p@db/marketnews")
	t.Setenv("WORDPRESS_URL", "https://blog.example.com/")

	cfg, err := fromEnv()
	assert.Equal(t, nil, err)
	assert.Equal(t, "https://blog.example.com", cfg.WordPress.URL)

	err = cfg.ValidatePublisher()
	assert.Equal(t, "missing required configuration: WORDPRESS_USER, WORDPRESS_PASSWORD, REDIS_URL", err.Error())
}

func TestDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db",
		Port:     5433,
		User:     "marketnews",
		Password: "p@ss",
		Name:     "news",
		SSLMode:  "disable",
	}

	assert.Equal(t, "postgres://marketnews:p%40ss@db:5433/news?sslmode=disable", d.DSN())

	d.URL = "postgres://override"
	assert.Equal(t, "postgres://override", d.DSN())
}
