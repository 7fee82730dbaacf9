package main

import (
	"fmt"
	"strings"

	"dashauth/internal/repository"
	"dashauth/pkg/auth"

	"github.com/spf13/viper"
)

const (
	configPath   = "./"
	configName   = "config"
	configFormat = "yaml"
)

type Config struct {
	Database repository.Config `yaml:"database"`
	Server   ServerConfig      `yaml:"server"`
	Auth     AuthConfig        `yaml:"auth"`
	Telegram TelegramConfig    `yaml:"telegram"`

	LogLevel string `yaml:"logLevel"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`

	// BaseURL is the publicly reachable address used for the webhook
	// registration and the post-login redirect.
	BaseURL string `yaml:"baseUrl"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwtSecret"`
}

type TelegramConfig struct {
	SettingsFile string `yaml:"settingsFile"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(configName)
	viper.AddConfigPath(configPath)
	viper.SetConfigType(configFormat)

	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.baseUrl", "http://localhost:8080")
	viper.SetDefault("auth.jwtSecret", auth.InsecureDefaultSecret)
	viper.SetDefault("telegram.settingsFile", "telegram-settings.yaml")
	viper.SetDefault("logLevel", "info")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
