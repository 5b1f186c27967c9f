package config

import (
	"fmt"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string `env:"APP_PORT,default=8000"`

	DiscordClientID     string `env:"DISCORD_CLIENT_ID,required"`
	DiscordClientSecret string `env:"DISCORD_CLIENT_SECRET,required"`
	DiscordRedirectURI  string `env:"DISCORD_REDIRECT_URI,required"`
	DiscordBotToken     string `env:"DISCORD_BOT_TOKEN"`

	FrontendRedirectURI string `env:"FRONTEND_REDIRECT_URI,default=http://localhost:3000"`

	JWTSecret string `env:"JWT_SECRET,required"`

	// Comma-separated list of API keys for bot processes.
	RawAPIKeys string `env:"PLANA_API_KEYS"`

	RedisAddr     string `env:"REDIS_ADDR,default=localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	DatabaseDSN string `env:"DATABASE_DSN,required"`
}

// Load reads configuration from the environment, consulting a local
// .env file first when present.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envdecode.StrictDecode(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// APIKeys returns the configured bot API keys with empty entries removed.
func (c Config) APIKeys() []string {
	var keys []string
	for _, k := range strings.Split(c.RawAPIKeys, ",") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}
