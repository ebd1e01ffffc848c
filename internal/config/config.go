// Package config загружает конфигурацию сервиса из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Поддерживаемые хранилища.
const (
	StoragePostgres = "postgres"
	StorageSQLite   = "sqlite"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Storage ---
	// STORAGE_DRIVER выбирает бэкенд: postgres (прод) или sqlite (локально, тесты).
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"postgres"`
	SQLitePath    string `envconfig:"SQLITE_PATH" default:"data/socialcredit.db"`

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"socialcredit"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"socialcredit"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv       string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel  string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppLogFormat string `envconfig:"APP_LOG_FORMAT" default:"text"`
	AppTimezone  string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- HTTP ---
	HTTPAddr           string        `envconfig:"HTTP_ADDR" default:":8080"`
	HTTPRequestTimeout time.Duration `envconfig:"HTTP_REQUEST_TIMEOUT" default:"15s"`
	// X-Forwarded-For / X-Real-IP учитываются только за своим прокси:
	// иначе клиент подставляет любой IP и обходит блокировку входа.
	HTTPTrustProxy bool `envconfig:"HTTP_TRUST_PROXY" default:"false"`

	// --- Admin ---
	// Argon2id-хеш пароля. Пустой — админские эндпоинты отключены.
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"60"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- Leaderboard ---
	LeaderboardMaxLimit int `envconfig:"LEADERBOARD_MAX_LIMIT" default:"100"`

	// --- Jobs / Metrics ---
	StatsRefreshSchedule string `envconfig:"STATS_REFRESH_SCHEDULE" default:"*/5 * * * *"`
	MetricsNamespace     string `envconfig:"METRICS_NAMESPACE" default:"socialcredit"`

	// --- Feature Flags ---
	FeatureMonitoringEnabled bool `envconfig:"FEATURE_MONITORING_ENABLED" default:"true"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Location возвращает часовой пояс приложения.
// Если APP_TIMEZONE не загрузился — UTC+3 вручную, как и раньше.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StoragePostgres:
		if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
		}
	case StorageSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH не задан")
		}
	default:
		return fmt.Errorf("неизвестный STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.LeaderboardMaxLimit <= 0 {
		return fmt.Errorf("LEADERBOARD_MAX_LIMIT должен быть > 0")
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS и RATE_LIMIT_WINDOW должны быть > 0")
	}
	if c.HTTPRequestTimeout <= 0 {
		return fmt.Errorf("HTTP_REQUEST_TIMEOUT должен быть > 0")
	}
	switch c.AppLogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("APP_LOG_FORMAT должен быть text или json")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}
	cfg.StorageDriver = strings.ToLower(strings.TrimSpace(cfg.StorageDriver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
