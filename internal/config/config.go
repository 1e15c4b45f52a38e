package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const insecureDefaultSecret = "supersecretkey"

type Config struct {
	Addr          string        `yaml:"addr"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	DatabasePath  string        `yaml:"database_path"`
	TokenDuration time.Duration `yaml:"token_duration"`
	OfferTokenTTL time.Duration `yaml:"offer_token_ttl"`
	WorkerCount   int           `yaml:"worker_count"`
	NotifierURL   string        `yaml:"notifier_url"`
}

func LoadConfig(path string) (*Config, error) {
	cfg := &Config{
		Addr:          getEnv("HIREOPS_ADDR", ":8080"),
		JWTSecret:     getEnv("HIREOPS_JWT_SECRET", insecureDefaultSecret),
		APITimeout:    15 * time.Second,
		DatabasePath:  getEnv("HIREOPS_DATABASE_PATH", "hireops.db"),
		TokenDuration: 1 * time.Hour,
		OfferTokenTTL: 7 * 24 * time.Hour,
		WorkerCount:   2,
		NotifierURL:   os.Getenv("HIREOPS_NOTIFIER_URL"),
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// Validate rejects configurations that must not reach a real deployment.
// The insecure default JWT secret is only tolerated when HIREOPS_ENV is
// development.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("database_path is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if c.JWTSecret == insecureDefaultSecret && os.Getenv("HIREOPS_ENV") != "development" {
		return fmt.Errorf("jwt_secret is the insecure default; set HIREOPS_JWT_SECRET")
	}
	if c.TokenDuration <= 0 {
		return fmt.Errorf("token_duration must be positive")
	}
	if c.OfferTokenTTL <= 0 {
		return fmt.Errorf("offer_token_ttl must be positive")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
