// Package config loads process configuration from environment variables and
// an optional config file.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ServerConfig holds all configuration for the server.
// Tags use mapstructure for Viper unmarshalling.
type ServerConfig struct {
	HTTPPort string `mapstructure:"HTTP_PORT"`

	// Identity provider settings. ProviderURL is the issuer base up to and
	// including the realm, e.g. http://localhost:8180/realms/demo.
	ProviderURL  string `mapstructure:"PROVIDER_URL"`
	ProviderName string `mapstructure:"PROVIDER_NAME"`
	ClientID     string `mapstructure:"CLIENT_ID"`
	ClientSecret string `mapstructure:"CLIENT_SECRET"`
	RedirectURI  string `mapstructure:"REDIRECT_URI"`

	StateTTLMin          int `mapstructure:"STATE_TTL_MIN"`
	HTTPClientTimeoutSec int `mapstructure:"HTTP_CLIENT_TIMEOUT_SEC"`
	BcryptCost           int `mapstructure:"BCRYPT_COST"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogPretty bool   `mapstructure:"LOG_PRETTY"`

	// MongoURI switches user storage from in-memory to MongoDB when set.
	MongoURI    string `mapstructure:"MONGO_URI"`
	MongoDBName string `mapstructure:"MONGO_DB_NAME"`

	// RedisAddr switches CSRF state storage from in-memory to Redis when set.
	RedisAddr        string `mapstructure:"REDIS_ADDR"`
	RedisStatePrefix string `mapstructure:"REDIS_STATE_PREFIX"`
}

// LoadConfig reads configuration from file, environment variables, and defaults.
func LoadConfig() (*ServerConfig, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/oauth-backend/")
	v.AddConfigPath(".")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("HTTP_PORT", "8080")
	v.SetDefault("PROVIDER_URL", "http://localhost:8180/realms/demo")
	v.SetDefault("PROVIDER_NAME", "keycloak")
	v.SetDefault("CLIENT_ID", "oauth-backend")
	v.SetDefault("CLIENT_SECRET", "")
	v.SetDefault("REDIRECT_URI", "http://localhost:3000/callback")
	v.SetDefault("STATE_TTL_MIN", 10)
	v.SetDefault("HTTP_CLIENT_TIMEOUT_SEC", 5)
	v.SetDefault("BCRYPT_COST", 0) // 0 means the bcrypt default
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", true)
	v.SetDefault("MONGO_URI", "")
	v.SetDefault("MONGO_DB_NAME", "oauth_backend")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_STATE_PREFIX", "oauth")

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; defaults and env vars apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &cfg, nil
}
