package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type config struct {
	Endpoint    string   `mapstructure:"endpoint"`
	Secrets     []string `mapstructure:"secrets"`
	Kind        string   `mapstructure:"kind"`
	Service     string   `mapstructure:"service"`
	Environment string   `mapstructure:"environment"`
	Interval    string   `mapstructure:"interval"`
}

func loadConfig(path string) (config, time.Duration, error) {
	if strings.TrimSpace(path) == "" {
		return config{}, 0, fmt.Errorf("config path is required")
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetDefault("kind", "service.deployed")
	v.SetDefault("interval", "30s")
	if err := v.ReadInConfig(); err != nil {
		return config{}, 0, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg config
	if err := v.Unmarshal(&cfg); err != nil {
		return config{}, 0, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.Endpoint = strings.TrimSpace(cfg.Endpoint)
	cfg.Kind = strings.TrimSpace(cfg.Kind)
	cfg.Service = strings.TrimSpace(cfg.Service)
	cfg.Environment = strings.TrimSpace(cfg.Environment)
	cfg.Interval = strings.TrimSpace(cfg.Interval)
	secrets := make([]string, 0, len(cfg.Secrets))
	for _, secret := range cfg.Secrets {
		if secret = strings.TrimSpace(secret); secret != "" {
			secrets = append(secrets, secret)
		}
	}
	cfg.Secrets = secrets

	if cfg.Endpoint == "" || len(cfg.Secrets) == 0 || cfg.Service == "" || cfg.Environment == "" {
		return config{}, 0, fmt.Errorf("config must include endpoint, secrets, service, environment")
	}

	interval, err := time.ParseDuration(cfg.Interval)
	if err != nil {
		return config{}, 0, fmt.Errorf("invalid interval duration: %w", err)
	}
	if interval <= 0 {
		return config{}, 0, fmt.Errorf("interval must be positive")
	}

	return cfg, interval, nil
}
