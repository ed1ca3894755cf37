package boot

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env    string `env:"ENV,default=dev"`
	Server struct {
		Port        string `env:"PORT,default=8080"`
		MetricsPort string `env:"METRICS_PORT,default=8081"`
		Origins     string `env:"ALLOWED_ORIGINS,default=*"`
	}
	Database struct {
		Path string `env:"DATABASE_PATH,default=courier.db"`
	}
	Provider struct {
		BaseURL string        `env:"PROVIDER_BASE_URL,default=https://api.twilio.com"`
		Timeout time.Duration `env:"DISPATCH_TIMEOUT,default=15s"`
	}
	Operator struct {
		Username     string        `env:"OPERATOR_USERNAME,required"`
		PasswordHash string        `env:"OPERATOR_PASSWORD_HASH,required"`
		JWTSecret    string        `env:"JWT_SECRET,required"`
		TokenTTL     time.Duration `env:"TOKEN_TTL,default=12h"`
	}
}

func Load() (*Config, error) {
	config := &Config{}
	if err := envconfig.Process(context.Background(), config); err != nil {
		return nil, fmt.Errorf("parsing env vars: %w", err)
	}
	return config, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "prod"
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "dev"
}

func (c *Config) DatabasePath() string {
	return c.Database.Path
}

func (c *Config) ProviderBaseURL() string {
	return c.Provider.BaseURL
}

func (c *Config) ProviderTimeout() time.Duration {
	return c.Provider.Timeout
}

func (c *Config) OperatorUsername() string {
	return c.Operator.Username
}

func (c *Config) OperatorPasswordHash() string {
	return c.Operator.PasswordHash
}

func (c *Config) JWTSecret() string {
	return c.Operator.JWTSecret
}

func (c *Config) TokenTTL() time.Duration {
	return c.Operator.TokenTTL
}
