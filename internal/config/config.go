package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	PLC      PLCConfig      `mapstructure:"plc"`
	Runner   RunnerConfig   `mapstructure:"runner"`
}

type ServerConfig struct {
	HTTPPort        int           `mapstructure:"http_port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
}

type AuthConfig struct {
	JWTSecretEnv   string        `mapstructure:"jwt_secret_env"`
	AccessTokenTTL time.Duration `mapstructure:"access_token_ttl"`
}

// PLCConfig carries the default connection parameters for the target PLC.
type PLCConfig struct {
	Address string        `mapstructure:"address"`
	Rack    int           `mapstructure:"rack"`
	Slot    int           `mapstructure:"slot"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type RunnerConfig struct {
	StopOnError bool `mapstructure:"stop_on_error"`
}

func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("server.shutdown_timeout", "30s")

	viper.SetDefault("auth.jwt_secret_env", "JWT_SECRET")
	viper.SetDefault("auth.access_token_ttl", "60m")

	viper.SetDefault("plc.address", "127.0.0.1:102")
	viper.SetDefault("plc.rack", 0)
	viper.SetDefault("plc.slot", 1)
	viper.SetDefault("plc.timeout", "5s")

	viper.SetDefault("runner.stop_on_error", false)

	viper.AutomaticEnv()
	viper.SetEnvPrefix("PLCTESTER")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Database)
}

// JWT secret comes from the environment, never from the config file.
func (a *AuthConfig) GetJWTSecret() string {
	envVar := a.JWTSecretEnv
	if envVar == "" {
		envVar = "JWT_SECRET"
	}

	secret := os.Getenv(envVar)
	if secret == "" {
		return "dev-secret-change-in-production-min-32-chars"
	}
	return secret
}
