package config

import (
	"fmt"
	"net/netip"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	apperrors "github.com/vitalis/turnos/pkg/errors"
)

// Драйверы хранилища
const (
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
	DriverMemory = "memory"
)

// Config содержит всю конфигурацию приложения
type Config struct {
	Server    ServerConfig
	Storage   StorageConfig
	Redis     RedisConfig
	Catalog   CatalogConfig
	Clinic    ClinicConfig
	RateLimit RateLimitConfig
	Telegram  TelegramConfig
	Log       LogConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port           string        `env:"PORT" envDefault:"8080"`
	ReadTimeout    time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"30s"`
	WriteTimeout   time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout    time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	StaticDir      string        `env:"STATIC_DIR" envDefault:"./static"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	TrustedProxies []string      `env:"TRUSTED_PROXIES" envSeparator:","`
}

// StorageConfig содержит настройки хранилища
type StorageConfig struct {
	Driver string `env:"STORAGE_DRIVER" envDefault:"sqlite"`
	Path   string `env:"DB_FILE" envDefault:"vitalis.db"`
}

// RedisConfig содержит настройки Redis
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
	Prefix   string `env:"REDIS_PREFIX" envDefault:"vitalis:"`
}

// CatalogConfig содержит источник каталога процедур
type CatalogConfig struct {
	URL string `env:"CATALOG_URL" envDefault:"http://localhost:8080/json/tratamientos.json"`
}

// ClinicConfig содержит настройки клиники
type ClinicConfig struct {
	Timezone string `env:"CLINIC_TIMEZONE" envDefault:"America/Argentina/Cordoba"`
}

// RateLimitConfig содержит настройки ограничения запросов
type RateLimitConfig struct {
	Requests int           `env:"RATE_LIMIT_REQUESTS" envDefault:"60"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"1m"`
}

// TelegramConfig содержит настройки уведомлений персонала
type TelegramConfig struct {
	Token  string `env:"TELEGRAM_TOKEN"`
	ChatID int64  `env:"TELEGRAM_CHAT_ID"`
}

// Enabled сообщает, настроены ли уведомления
func (t TelegramConfig) Enabled() bool {
	return t.Token != "" && t.ChatID != 0
}

// LogConfig содержит настройки логирования
type LogConfig struct {
	Level string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load загружает .env (если есть) и конфигурацию из переменных окружения
func Load() (*Config, error) {
	// Отсутствие .env не ошибка
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, apperrors.ErrConfigurationInvalid.WithError(fmt.Errorf("failed to parse environment: %w", err))
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет корректность конфигурации
func (c *Config) Validate() error {
	if err := c.validate(); err != nil {
		return apperrors.ErrConfigurationInvalid.WithError(err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	switch c.Storage.Driver {
	case DriverSQLite:
		if c.Storage.Path == "" {
			return fmt.Errorf("DB_FILE is required for the sqlite driver")
		}
	case DriverRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("REDIS_ADDR is required for the redis driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q (expected sqlite, redis or memory)", c.Storage.Driver)
	}

	if u, err := url.Parse(c.Catalog.URL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid CATALOG_URL %q", c.Catalog.URL)
	}

	if _, err := time.LoadLocation(c.Clinic.Timezone); err != nil {
		return fmt.Errorf("invalid CLINIC_TIMEZONE: %w", err)
	}

	if _, err := c.TrustedProxies(); err != nil {
		return err
	}

	if c.RateLimit.Requests <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive")
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
	}

	if (c.Telegram.Token == "") != (c.Telegram.ChatID == 0) {
		return fmt.Errorf("TELEGRAM_TOKEN and TELEGRAM_CHAT_ID must be set together")
	}

	return nil
}

// Location возвращает часовой пояс клиники
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Clinic.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// TrustedProxies разбирает TRUSTED_PROXIES: CIDR или одиночные адреса
func (c *Config) TrustedProxies() ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(c.Server.TrustedProxies))
	for _, raw := range c.Server.TrustedProxies {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.Contains(raw, "/") {
			prefix, err := netip.ParsePrefix(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", raw, err)
			}
			out = append(out, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TRUSTED_PROXIES entry %q: %w", raw, err)
		}
		addr = addr.Unmap()
		out = append(out, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return out, nil
}

// Origins возвращает непустые разрешенные origin'ы
func (c *Config) Origins() []string {
	out := make([]string, 0, len(c.Server.AllowedOrigins))
	for _, o := range c.Server.AllowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
