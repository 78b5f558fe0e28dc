package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/app/configs")

	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Allow common env vars without the APP_ prefix for Docker/VM deploys.
	viper.BindEnv("http.port", "HTTP_PORT", "APP_HTTP_PORT")
	viper.BindEnv("app.public_url", "PUBLIC_BASE_URL", "APP_PUBLIC_URL")
	viper.BindEnv("database.url", "DATABASE_URL", "APP_DATABASE_URL")
	viper.BindEnv("redis.url", "REDIS_URL", "APP_REDIS_URL")
	viper.BindEnv("nats.url", "NATS_URL", "APP_NATS_URL")
	viper.BindEnv("payment.stripe.secret_key", "STRIPE_SECRET_KEY")
	viper.BindEnv("payment.stripe.webhook_secret", "STRIPE_WEBHOOK_SECRET")
	viper.BindEnv("payment.pricing.per_kwh_huf", "PRICE_PER_KWH_HUF")
	viper.BindEnv("notify.sendgrid_api_key", "SENDGRID_API_KEY")
	viper.BindEnv("notify.from_email", "SENDGRID_FROM_EMAIL")
	viper.BindEnv("notify.from_name", "SENDGRID_FROM_NAME")
	viper.BindEnv("app.environment", "APP_ENVIRONMENT")
	viper.BindEnv("logging.level", "LOG_LEVEL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file found; env vars and defaults carry the whole load.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
