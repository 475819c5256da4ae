package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/flexprice/marketplace/internal/types"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Configuration struct {
	Deployment DeploymentConfig `validate:"required"`
	Server     ServerConfig     `validate:"required"`
	Logging    LoggingConfig    `validate:"required"`
	Supabase   SupabaseConfig   `validate:"required"`
	Stripe     StripeConfig     `validate:"required"`
	Cache      CacheConfig
	Sentry     SentryConfig
	Postgres   PostgresConfig
	Pyroscope  PyroscopeConfig
}

type DeploymentConfig struct {
	Mode types.RunMode `validate:"required"`
}

type ServerConfig struct {
	Address   string          `validate:"required"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig limits authenticated API calls per caller. Zero disables limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gte=0"`
	Burst             int     `mapstructure:"burst" validate:"gte=0"`
}

type LoggingConfig struct {
	Level types.LogLevel `validate:"required"`
}

type SupabaseConfig struct {
	BaseURL    string `mapstructure:"base_url" validate:"required,url"`
	ServiceKey string `mapstructure:"service_key" validate:"required"`
	JWTSecret  string `mapstructure:"jwt_secret" validate:"required"`
}

type StripeConfig struct {
	SecretKey      string               `mapstructure:"secret_key" validate:"required"`
	PublishableKey string               `mapstructure:"publishable_key" validate:"required"`
	WebhookSecret  string               `mapstructure:"webhook_secret" validate:"required"`
	Currency       string               `mapstructure:"currency" validate:"required,len=3"`
	Country        string               `mapstructure:"country"`
	PlatformFeeBPS int64                `mapstructure:"platform_fee_bps" validate:"gte=0,lte=10000"`
	CapabilityRule types.CapabilityRule `mapstructure:"capability_rule" validate:"required"`
	Onboarding     OnboardingConfig     `mapstructure:"onboarding" validate:"required"`
}

type OnboardingConfig struct {
	ReturnURL  string `mapstructure:"return_url" validate:"required,url"`
	RefreshURL string `mapstructure:"refresh_url" validate:"required,url"`
}

type CacheConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	Type    string      `mapstructure:"type" validate:"omitempty,oneof=inmemory redis"`
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr      string        `mapstructure:"addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// PostgresConfig is only needed by the migrate command, which requires DSN
type PostgresConfig struct {
	DSN            string        `mapstructure:"dsn"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

type PyroscopeConfig struct {
	Enabled         bool     `mapstructure:"enabled"`
	ServerAddress   string   `mapstructure:"server_address" validate:"required_if=Enabled true"`
	ApplicationName string   `mapstructure:"application_name"`
	BasicAuthUser   string   `mapstructure:"basic_auth_user"`
	BasicAuthPass   string   `mapstructure:"basic_auth_password"`
	ProfileTypes    []string `mapstructure:"profile_types"`
}

type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

func NewConfig() (*Configuration, error) {
	config, err := load()
	if err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// NewMigrateConfig loads the configuration for cmd/migrate. Only the sections the migrator reads
// are validated, so the server's processor and auth secrets need not be present.
func NewMigrateConfig() (*Configuration, error) {
	config, err := load()
	if err != nil {
		return nil, err
	}

	if err := config.ValidateMigrate(); err != nil {
		return nil, err
	}

	return config, nil
}

func load() (*Configuration, error) {
	// A local .env file is optional
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./internal/config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/marketplace")

	v.SetEnvPrefix("MARKETPLACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(
		".", "_",
		"-", "_",
	))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Error reading config file: %v\n", err)
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, err
		}
	} else {
		fmt.Printf("Using config file: %s\n", v.ConfigFileUsed())
	}

	var config Configuration
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults registers every key so AutomaticEnv can resolve keys absent from the file
func setDefaults(v *viper.Viper) {
	v.SetDefault("deployment.mode", types.ModeLocal)
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.rate_limit.requests_per_second", 5)
	v.SetDefault("server.rate_limit.burst", 10)
	v.SetDefault("logging.level", types.LogLevelInfo)
	v.SetDefault("supabase.base_url", "")
	v.SetDefault("supabase.service_key", "")
	v.SetDefault("supabase.jwt_secret", "")
	v.SetDefault("stripe.secret_key", "")
	v.SetDefault("stripe.publishable_key", "")
	v.SetDefault("stripe.webhook_secret", "")
	v.SetDefault("stripe.currency", "usd")
	v.SetDefault("stripe.country", "US")
	v.SetDefault("stripe.platform_fee_bps", 2000)
	v.SetDefault("stripe.capability_rule", types.CapabilityRuleAnyActive)
	v.SetDefault("stripe.onboarding.return_url", "")
	v.SetDefault("stripe.onboarding.refresh_url", "")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.type", "inmemory")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.key_prefix", "marketplace:")
	v.SetDefault("cache.redis.timeout", "500ms")
	v.SetDefault("sentry.enabled", false)
	v.SetDefault("sentry.sample_rate", 1.0)
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.connect_timeout", "30s")
	v.SetDefault("pyroscope.enabled", false)
	v.SetDefault("pyroscope.server_address", "")
	v.SetDefault("pyroscope.application_name", "marketplace")
	v.SetDefault("pyroscope.basic_auth_user", "")
	v.SetDefault("pyroscope.basic_auth_password", "")
}

func (c Configuration) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	return c.Stripe.CapabilityRule.Validate()
}

// ValidateMigrate checks the deployment, logging and postgres sections
func (c Configuration) ValidateMigrate() error {
	validate := validator.New()
	for _, section := range []interface{}{c.Deployment, c.Logging} {
		if err := validate.Struct(section); err != nil {
			return err
		}
	}
	if err := validate.Var(c.Postgres.DSN, "required"); err != nil {
		return fmt.Errorf("postgres.dsn: %w", err)
	}
	return nil
}

// GetDefaultConfig returns a default configuration for local development
// This is useful for running scripts or other non-web applications
func GetDefaultConfig() *Configuration {
	return &Configuration{
		Deployment: DeploymentConfig{Mode: types.ModeLocal},
		Server:     ServerConfig{Address: ":8080"},
		Logging:    LoggingConfig{Level: types.LogLevelDebug},
		Stripe: StripeConfig{
			Currency:       "usd",
			Country:        "US",
			PlatformFeeBPS: 2000,
			CapabilityRule: types.CapabilityRuleAnyActive,
		},
		Cache: CacheConfig{
			Enabled: true,
			Type:    "inmemory",
			Redis: RedisConfig{
				Addr:      "localhost:6379",
				KeyPrefix: "marketplace:",
				Timeout:   500 * time.Millisecond,
			},
		},
		Postgres: PostgresConfig{ConnectTimeout: 30 * time.Second},
	}
}
