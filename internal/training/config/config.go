// Package config loads the training service configuration from YAML with
// environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the service looks for its configuration file.
var DefaultPath = filepath.Join("internal", "training", "config", "config.yaml")

// Config struct for YAML configuration
type Config struct {
	GRPCPort       int      `yaml:"GRPC_PORT"`
	HTTPPort       int      `yaml:"HTTP_PORT"`
	DBDriver       string   `yaml:"DB_DRIVER"`
	DBHost         string   `yaml:"DB_HOST"`
	DBPort         int      `yaml:"DB_PORT"`
	DBUser         string   `yaml:"DB_USER"`
	DBPassword     string   `yaml:"DB_PASSWORD"`
	DBName         string   `yaml:"DB_NAME"`
	DBSSLMode      string   `yaml:"DB_SSLMODE"`
	DBPath         string   `yaml:"DB_PATH"`
	KafkaBrokers   []string `yaml:"KAFKA_BROKERS"`
	Topic          string   `yaml:"TOPIC"`
	AuditGroupID   string   `yaml:"AUDIT_GROUP_ID"`
	JWTSecret      string   `yaml:"JWT_SECRET"`
	RejectSiblings bool     `yaml:"REJECT_SIBLINGS"`
	RateLimit      float64  `yaml:"RATE_LIMIT"`
	RateBurst      int      `yaml:"RATE_BURST"`
}

// Default returns the configuration used for keys missing from the file.
func Default() *Config {
	return &Config{
		GRPCPort:     50051,
		HTTPPort:     8080,
		DBDriver:     "postgres",
		DBPort:       5432,
		DBSSLMode:    "disable",
		Topic:        "training-lifecycle",
		AuditGroupID: "training-audit",
		RateLimit:    20,
		RateBurst:    40,
	}
}

// Load reads the YAML file at path over the defaults and applies environment
// overrides. A missing file is not an error: defaults and environment are used.
func Load(path string) (*Config, error) {
	cfg := Default()
	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
	default:
		return nil, err
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, cfg.Validate()
}

// applyEnv overrides fields from environment variables named like the YAML keys.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"DB_DRIVER":      &c.DBDriver,
		"DB_HOST":        &c.DBHost,
		"DB_USER":        &c.DBUser,
		"DB_PASSWORD":    &c.DBPassword,
		"DB_NAME":        &c.DBName,
		"DB_SSLMODE":     &c.DBSSLMode,
		"DB_PATH":        &c.DBPath,
		"TOPIC":          &c.Topic,
		"AUDIT_GROUP_ID": &c.AuditGroupID,
		"JWT_SECRET":     &c.JWTSecret,
	}
	for key, dst := range str {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	ints := map[string]*int{
		"GRPC_PORT":  &c.GRPCPort,
		"HTTP_PORT":  &c.HTTPPort,
		"DB_PORT":    &c.DBPort,
		"RATE_BURST": &c.RateBurst,
	}
	for key, dst := range ints {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = n
		}
	}
	if v, ok := lookup("RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid RATE_LIMIT: %w", err)
		}
		c.RateLimit = f
	}
	if v, ok := lookup("REJECT_SIBLINGS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid REJECT_SIBLINGS: %w", err)
		}
		c.RejectSiblings = b
	}
	if v, ok := lookup("KAFKA_BROKERS"); ok {
		c.KafkaBrokers = nil
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				c.KafkaBrokers = append(c.KafkaBrokers, b)
			}
		}
	}
	return nil
}

// Validate reports settings the service cannot start with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.GRPCPort <= 0 || c.HTTPPort <= 0 {
		return fmt.Errorf("GRPC_PORT and HTTP_PORT must be positive")
	}
	switch c.DBDriver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return fmt.Errorf("RATE_LIMIT and RATE_BURST must not be negative")
	}
	return nil
}
