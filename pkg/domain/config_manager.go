package domain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type GatewayConfig struct {
	Address     string `mapstructure:"address"`
	DatabaseURL string `mapstructure:"database_url"`

	// Auth and crypto
	AuthSigningSecret string `mapstructure:"auth_signing_secret"`
	VaultKey          string `mapstructure:"vault_key"` // Base64 encoded 32-byte key

	// Email channel (optional)
	ResendAPIKey string `mapstructure:"resend_api_key"`
	EmailFrom    string `mapstructure:"email_from"`

	// Outbound delivery tuning
	HTTPTimeoutSeconds int `mapstructure:"http_timeout_seconds"`
	WebhookMaxRetries  int `mapstructure:"webhook_max_retries"`
	WebhookBaseDelayMS int `mapstructure:"webhook_base_delay_ms"`
}

func (c GatewayConfig) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSeconds) * time.Second
}

func (c GatewayConfig) WebhookBaseDelay() time.Duration {
	return time.Duration(c.WebhookBaseDelayMS) * time.Millisecond
}

type ConfigManager interface {
	GetConfig(ctx context.Context) (GatewayConfig, error)
	SaveConfig(ctx context.Context, config GatewayConfig) error
}

type configManager struct {
	viper *viper.Viper
}

func NewConfigManager() (ConfigManager, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("OPSDECK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envMappings := map[string]string{
		"address":               "OPSDECK_ADDRESS",
		"database_url":          "OPSDECK_DATABASE_URL",
		"auth_signing_secret":   "OPSDECK_AUTH_SIGNING_SECRET",
		"vault_key":             "OPSDECK_VAULT_KEY",
		"resend_api_key":        "OPSDECK_RESEND_API_KEY",
		"email_from":            "OPSDECK_EMAIL_FROM",
		"http_timeout_seconds":  "OPSDECK_HTTP_TIMEOUT_SECONDS",
		"webhook_max_retries":   "OPSDECK_WEBHOOK_MAX_RETRIES",
		"webhook_base_delay_ms": "OPSDECK_WEBHOOK_BASE_DELAY_MS",
	}

	for configKey, envVar := range envMappings {
		if err := v.BindEnv(configKey, envVar); err != nil {
			log.Warn().Err(err).Msgf("Failed to bind environment variable %s for %s", envVar, configKey)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.opsdeck")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug().Msg("Config file not found, using environment variables and defaults")
	} else {
		log.Debug().Msgf("Using config file: %s", v.ConfigFileUsed())
	}

	return &configManager{
		viper: v,
	}, nil
}

func (m *configManager) GetConfig(ctx context.Context) (GatewayConfig, error) {
	var config GatewayConfig
	if err := m.viper.Unmarshal(&config); err != nil {
		return GatewayConfig{}, fmt.Errorf("unable to decode config: %w", err)
	}

	return config, nil
}

func (m *configManager) SaveConfig(ctx context.Context, config GatewayConfig) error {
	m.viper.Set("address", config.Address)
	m.viper.Set("database_url", config.DatabaseURL)
	m.viper.Set("auth_signing_secret", config.AuthSigningSecret)
	m.viper.Set("vault_key", config.VaultKey)
	m.viper.Set("resend_api_key", config.ResendAPIKey)
	m.viper.Set("email_from", config.EmailFrom)
	m.viper.Set("http_timeout_seconds", config.HTTPTimeoutSeconds)
	m.viper.Set("webhook_max_retries", config.WebhookMaxRetries)
	m.viper.Set("webhook_base_delay_ms", config.WebhookBaseDelayMS)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".opsdeck")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.json")
	if err := m.viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("address", ":8082")
	v.SetDefault("http_timeout_seconds", 30)
	v.SetDefault("webhook_max_retries", 3)
	v.SetDefault("webhook_base_delay_ms", 1000)
}
