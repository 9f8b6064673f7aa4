package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Telegram TelegramConfig `yaml:"telegram"`
	Policy   PolicyConfig   `yaml:"policy"`
	Sweep    SweepConfig    `yaml:"sweep"`
	Log      LogConfig      `yaml:"log"`
	CORS     CORSConfig     `yaml:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host               string        `yaml:"host"                  env:"SERVER_HOST"                  env-default:"0.0.0.0"`
	Port               int           `yaml:"port"                  env:"SERVER_PORT"                  env-default:"8080"`
	ReadTimeout        time.Duration `yaml:"read_timeout"          env:"SERVER_READ_TIMEOUT"          env-default:"10s"`
	WriteTimeout       time.Duration `yaml:"write_timeout"         env:"SERVER_WRITE_TIMEOUT"         env-default:"30s"`
	IdleTimeout        time.Duration `yaml:"idle_timeout"          env:"SERVER_IDLE_TIMEOUT"          env-default:"60s"`
	ShutdownTimeout    time.Duration `yaml:"shutdown_timeout"      env:"SERVER_SHUTDOWN_TIMEOUT"      env-default:"10s"`
	RateLimitPerMinute int           `yaml:"rate_limit_per_minute" env:"SERVER_RATE_LIMIT_PER_MINUTE" env-default:"120"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	DSN             string        `yaml:"dsn"                env:"DATABASE_DSN"                env-required:"true"`
	MaxConns        int32         `yaml:"max_conns"          env:"DATABASE_MAX_CONNS"          env-default:"25"`
	MinConns        int32         `yaml:"min_conns"          env:"DATABASE_MIN_CONNS"          env-default:"5"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"  env:"DATABASE_MAX_CONN_LIFETIME"  env-default:"1h"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time" env:"DATABASE_MAX_CONN_IDLE_TIME" env-default:"30m"`
}

// TelegramConfig holds messaging channel settings for the notifier.
// BotToken is required by the scheduler daemon only; the API server
// runs without it.
type TelegramConfig struct {
	BotToken       string        `yaml:"bot_token"       env:"TELEGRAM_BOT_TOKEN"`
	BaseURL        string        `yaml:"base_url"        env:"TELEGRAM_BASE_URL"        env-default:"https://api.telegram.org"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"TELEGRAM_REQUEST_TIMEOUT" env-default:"10s"`
}

// PolicyConfig holds interval-policy growth factors and bounds.
// These are tuning knobs, not constants: all scheduling math reads them
// from here.
type PolicyConfig struct {
	MinInterval time.Duration `yaml:"min_interval" env:"POLICY_MIN_INTERVAL" env-default:"10m"`
	MaxInterval time.Duration `yaml:"max_interval" env:"POLICY_MAX_INTERVAL" env-default:"2160h"`
	HardFactor  float64       `yaml:"hard_factor"  env:"POLICY_HARD_FACTOR"  env-default:"1.2"`
	GoodFactor  float64       `yaml:"good_factor"  env:"POLICY_GOOD_FACTOR"  env-default:"2.0"`
	EasyFactor  float64       `yaml:"easy_factor"  env:"POLICY_EASY_FACTOR"  env-default:"3.0"`
}

// SweepConfig holds scheduler loop settings.
type SweepConfig struct {
	Interval        time.Duration `yaml:"interval"         env:"SWEEP_INTERVAL"         env-default:"5m"`
	BatchLimit      int           `yaml:"batch_limit"      env:"SWEEP_BATCH_LIMIT"      env-default:"100"`
	RetryCap        int           `yaml:"retry_cap"        env:"SWEEP_RETRY_CAP"        env-default:"3"`
	DeliveryTimeout time.Duration `yaml:"delivery_timeout" env:"SWEEP_DELIVERY_TIMEOUT" env-default:"10s"`
	ReconcileGrace  time.Duration `yaml:"reconcile_grace"  env:"SWEEP_RECONCILE_GRACE"  env-default:"30m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"json"`
}

// CORSConfig holds CORS settings for the query API.
type CORSConfig struct {
	AllowedOrigins   string `yaml:"allowed_origins"   env:"CORS_ALLOWED_ORIGINS"   env-default:"*"`
	AllowedMethods   string `yaml:"allowed_methods"   env:"CORS_ALLOWED_METHODS"   env-default:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   string `yaml:"allowed_headers"   env:"CORS_ALLOWED_HEADERS"   env-default:"X-Owner-Id,Content-Type"`
	AllowCredentials bool   `yaml:"allow_credentials" env:"CORS_ALLOW_CREDENTIALS" env-default:"false"`
	MaxAge           int    `yaml:"max_age"           env:"CORS_MAX_AGE"           env-default:"86400"`
}

// Addr returns the host:port listen address.
func (c ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
