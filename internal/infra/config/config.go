package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App      AppSettings      `mapstructure:"app"`
	Postgres PostgresSettings `mapstructure:"postgres"`
	Redis    RedisSettings    `mapstructure:"redis"`
	Kafka    KafkaSettings    `mapstructure:"kafka"`
	JWT      JWTSettings      `mapstructure:"jwt"`
	Billing  BillingSettings  `mapstructure:"billing"`
	Push     PushSettings     `mapstructure:"push"`
	Notify   NotifySettings   `mapstructure:"notify"`
}

type AppSettings struct {
	Name           string   `mapstructure:"name"`
	Env            string   `mapstructure:"env"`
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures Redis connection and TLS.
type RedisSettings struct {
	Host             string `mapstructure:"host"`
	Port             int    `mapstructure:"port"`
	DB               int    `mapstructure:"db"`
	Password         string `mapstructure:"password"`
	TLSEnabled       bool   `mapstructure:"tls_enabled"`
	RevocationPrefix string `mapstructure:"revocation_prefix"`
}

// KafkaSettings configures the Kafka producer.
type KafkaSettings struct {
	Brokers     []string `mapstructure:"brokers"`
	TopicPrefix string   `mapstructure:"topic_prefix"`
	Async       bool     `mapstructure:"async"`
}

// JWTSettings configures session token signing.
type JWTSettings struct {
	Secret         string        `mapstructure:"secret"`
	Issuer         string        `mapstructure:"issuer"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// BillingSettings maps plan codes to provider price identifiers and
// platforms to checkout redirect pairs.
type BillingSettings struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	PriceShort     string        `mapstructure:"price_short"`
	PriceMedium    string        `mapstructure:"price_medium"`
	PriceLong      string        `mapstructure:"price_long"`
	WebSuccessURL  string        `mapstructure:"web_success_url"`
	WebCancelURL   string        `mapstructure:"web_cancel_url"`
	AppSuccessURL  string        `mapstructure:"app_success_url"`
	AppCancelURL   string        `mapstructure:"app_cancel_url"`
}

// PriceForPlan resolves a plan code to the provider price identifier.
func (b BillingSettings) PriceForPlan(code string) (string, bool) {
	switch code {
	case "short":
		return b.PriceShort, b.PriceShort != ""
	case "medium":
		return b.PriceMedium, b.PriceMedium != ""
	case "long":
		return b.PriceLong, b.PriceLong != ""
	default:
		return "", false
	}
}

// RedirectsForPlatform resolves a platform to its success and cancel URLs.
func (b BillingSettings) RedirectsForPlatform(platform string) (success, cancel string, ok bool) {
	switch platform {
	case "web":
		return b.WebSuccessURL, b.WebCancelURL, b.WebSuccessURL != "" && b.WebCancelURL != ""
	case "mobile":
		return b.AppSuccessURL, b.AppCancelURL, b.AppSuccessURL != "" && b.AppCancelURL != ""
	default:
		return "", "", false
	}
}

// PushSettings configures the push-notification provider client.
type PushSettings struct {
	Endpoint       string        `mapstructure:"endpoint"`
	ServerKey      string        `mapstructure:"server_key"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// NotifySettings bounds broadcast fan-out.
type NotifySettings struct {
	MaxConcurrency   int           `mapstructure:"max_concurrency"`
	BroadcastTimeout time.Duration `mapstructure:"broadcast_timeout"`
}

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("MOVIE")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"app.allowed_origins",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.revocation_prefix",
		"kafka.brokers",
		"kafka.topic_prefix",
		"kafka.async",
		"jwt.secret",
		"jwt.issuer",
		"jwt.access_token_ttl",
		"billing.api_key",
		"billing.base_url",
		"billing.request_timeout",
		"billing.price_short",
		"billing.price_medium",
		"billing.price_long",
		"billing.web_success_url",
		"billing.web_cancel_url",
		"billing.app_success_url",
		"billing.app_cancel_url",
		"push.endpoint",
		"push.server_key",
		"push.request_timeout",
		"notify.max_concurrency",
		"notify.broadcast_timeout",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "movie-explorer")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.allowed_origins", []string{"*"})

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "movie")
	v.SetDefault("postgres.password", "movie_password")
	v.SetDefault("postgres.database", "movie_explorer")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.revocation_prefix", "movie:revoked")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic_prefix", "catalog")
	v.SetDefault("kafka.async", true)

	v.SetDefault("jwt.issuer", "movie-explorer")
	v.SetDefault("jwt.access_token_ttl", "24h")

	v.SetDefault("billing.base_url", "https://api.stripe.com/v1")
	v.SetDefault("billing.request_timeout", "10s")
	v.SetDefault("billing.web_success_url", "http://localhost:3000/subscriptions/success?session_id={CHECKOUT_SESSION_ID}")
	v.SetDefault("billing.web_cancel_url", "http://localhost:3000/subscriptions/cancel")
	v.SetDefault("billing.app_success_url", "movieexplorer://subscriptions/success?session_id={CHECKOUT_SESSION_ID}")
	v.SetDefault("billing.app_cancel_url", "movieexplorer://subscriptions/cancel")

	v.SetDefault("push.endpoint", "https://fcm.googleapis.com/fcm/send")
	v.SetDefault("push.request_timeout", "5s")

	v.SetDefault("notify.max_concurrency", 8)
	v.SetDefault("notify.broadcast_timeout", "30s")
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "MOVIE_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
