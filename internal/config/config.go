package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/tauhid97k/voters-info-api/pkg"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Environment string `toml:"-"`

	Host string `toml:"host"`
	Port int    `toml:"port"`

	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`

	// postgres
	PostgresHost    string `toml:"postgres_host"`
	PostgresPort    string `toml:"postgres_port"`
	PostgresUser    string `toml:"postgres_user"`
	PostgresDBName  string `toml:"postgres_db_name"`
	PostgresSSLMode string `toml:"postgres_ssl_mode"`
	RunMigrations   bool   `toml:"run_migrations"`
	TxTimeout       string `toml:"tx_timeout"`
	PurgeInterval   string `toml:"purge_interval"`

	// redis
	RedisEnabled bool   `toml:"redis_enabled"`
	RedisHost    string `toml:"redis_host"`
	RedisPort    string `toml:"redis_port"`

	// prometheus metrics
	PrometheusMetricsHost string `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string `toml:"prometheus_metrics_port"`

	// http
	AllowedOrigins    []string `toml:"allowed_origins"`
	RateLimitPerMin   int      `toml:"rate_limit_per_min"`
	SecureCookies     bool     `toml:"secure_cookies"`
	ResetCodeCooldown string   `toml:"reset_code_cooldown"`
	// peers allowed to name the client in X-Real-Ip / X-Forwarded-For
	TrustedProxies []string `toml:"trusted_proxies"`

	// tokens
	AccessTokenTTL      string `toml:"access_token_ttl"`
	RefreshedAccessTTL  string `toml:"refreshed_access_token_ttl"`
	RefreshTokenTTL     string `toml:"refresh_token_ttl"`
	ResetTokenTTL       string `toml:"reset_token_ttl"`
	VerificationCodeTTL string `toml:"verification_code_ttl"`

	// mail
	SMTPHost string `toml:"smtp_host"`
	SMTPPort int    `toml:"smtp_port"`
	MailFrom string `toml:"mail_from"`
}

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg, env = t.Development, EnvDevelopment
	case "prod", "production":
		cfg, env = t.Production, EnvProduction
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("config section for env [%s] missing", env)
	}

	cfg.Environment = env
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid [%s] config: %w", env, err)
	}

	return cfg, nil
}

func Load(env, path string) (*Config, error) {
	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}
	return t.Get(env)
}

func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

func (c *Config) applyDefaults() {
	setDefault(&c.Host, "localhost")
	if c.Port == 0 {
		c.Port = 5000
	}
	setDefault(&c.LogLevel, "info")
	setDefault(&c.PostgresHost, "localhost")
	setDefault(&c.PostgresPort, "5432")
	setDefault(&c.PostgresUser, "postgres")
	setDefault(&c.PostgresDBName, "voters_info")
	setDefault(&c.PostgresSSLMode, "disable")
	setDefault(&c.TxTimeout, "10s")
	setDefault(&c.PurgeInterval, "1h")
	setDefault(&c.RedisHost, "localhost")
	setDefault(&c.RedisPort, "6379")
	setDefault(&c.PrometheusMetricsHost, "localhost")
	setDefault(&c.PrometheusMetricsPort, "2112")
	if c.RateLimitPerMin == 0 {
		c.RateLimitPerMin = 50
	}
	setDefault(&c.ResetCodeCooldown, "1m")
	setDefault(&c.AccessTokenTTL, "24h")
	setDefault(&c.RefreshedAccessTTL, "2m")
	setDefault(&c.RefreshTokenTTL, "168h")
	setDefault(&c.ResetTokenTTL, "5m")
	setDefault(&c.VerificationCodeTTL, "24h")
	if c.SMTPPort == 0 {
		c.SMTPPort = 587
	}
	setDefault(&c.MailFrom, "no-reply@voters-info.local")
}

func (c *Config) validate() error {
	for name, value := range map[string]string{
		"tx_timeout":                 c.TxTimeout,
		"purge_interval":             c.PurgeInterval,
		"reset_code_cooldown":        c.ResetCodeCooldown,
		"access_token_ttl":           c.AccessTokenTTL,
		"refreshed_access_token_ttl": c.RefreshedAccessTTL,
		"refresh_token_ttl":          c.RefreshTokenTTL,
		"reset_token_ttl":            c.ResetTokenTTL,
		"verification_code_ttl":      c.VerificationCodeTTL,
	} {
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s: must be positive", name)
		}
	}

	if _, err := pkg.ParseTrustedProxies(c.TrustedProxies); err != nil {
		return fmt.Errorf("trusted_proxies: %w", err)
	}
	return nil
}

// Duration returns the parsed value of a duration field; fields are checked
// when the config is loaded, so parse errors cannot happen here
func Duration(value string) time.Duration {
	d, _ := time.ParseDuration(value)
	return d
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
