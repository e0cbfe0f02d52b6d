package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr string
	}
	Database struct {
		Path string
	}
	Auth struct {
		JWTSecret     string
		TokenTTLHours int
	}
	Stripe struct {
		SecretKey      string
		PublishableKey string
		WebhookSecret  string
		Currency       string
	}
}

// Load reads configuration from environment variables and optional config files.
func Load() (Config, error) {
	// .env is optional; existing environment wins
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TKD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:3000")
	v.SetDefault("database.path", "data/tkd.db")
	v.SetDefault("auth.jwtsecret", "")
	v.SetDefault("auth.tokenttlhours", 24)
	v.SetDefault("stripe.secretkey", "")
	v.SetDefault("stripe.publishablekey", "")
	v.SetDefault("stripe.webhooksecret", "")
	v.SetDefault("stripe.currency", "usd")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // optional file

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}
