package main

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the MLLP listener settings for the serve subcommand. Values
// come from environment variables (HL7LINT_ prefix) or a config file, with
// defaults applied for anything unset.
type Config struct {
	ListenAddr     string        `mapstructure:"LISTEN_ADDR"`
	ReadTimeout    time.Duration `mapstructure:"READ_TIMEOUT"`
	WriteTimeout   time.Duration `mapstructure:"WRITE_TIMEOUT"`
	MaxConnections int           `mapstructure:"MAX_CONNECTIONS"`
	MaxMessageSize int           `mapstructure:"MAX_MESSAGE_SIZE"`
	TLSCertFile    string        `mapstructure:"TLS_CERT_FILE"`
	TLSKeyFile     string        `mapstructure:"TLS_KEY_FILE"`
	Env            string        `mapstructure:"ENV"`
}

// LoadConfig reads configuration from the environment (prefixed HL7LINT_)
// and an optional hl7lint.yaml/hl7lint.env in the current directory.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("hl7lint")
	v.AddConfigPath(".")
	v.SetEnvPrefix("HL7LINT")
	v.AutomaticEnv()

	v.SetDefault("LISTEN_ADDR", ":2575")
	v.SetDefault("READ_TIMEOUT", 30*time.Second)
	v.SetDefault("WRITE_TIMEOUT", 30*time.Second)
	v.SetDefault("MAX_CONNECTIONS", 100)
	v.SetDefault("MAX_MESSAGE_SIZE", 10*1024*1024)
	v.SetDefault("ENV", "production")

	v.BindEnv("LISTEN_ADDR")
	v.BindEnv("READ_TIMEOUT")
	v.BindEnv("WRITE_TIMEOUT")
	v.BindEnv("MAX_CONNECTIONS")
	v.BindEnv("MAX_MESSAGE_SIZE")
	v.BindEnv("TLS_CERT_FILE")
	v.BindEnv("TLS_KEY_FILE")
	v.BindEnv("ENV")

	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

// IsDev reports whether ENV is "development".
func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// TLSEnabled reports whether both a cert and key file were configured.
func (c *Config) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}
