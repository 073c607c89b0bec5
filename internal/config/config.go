package config

import (
	"errors"
	"fmt"
	"net/mail"
	"time"
)

// ErrConfiguration is returned when the configuration is missing or malformed
var ErrConfiguration = errors.New("configuration error")

// DefaultInterface is used when the configured interface does not exist
const DefaultInterface = "eth0"

// Config holds all configuration for ipalert
type Config struct {
	Network NetworkConfig `mapstructure:"network"`
	SMTP    SMTPConfig    `mapstructure:"smtp"`
	Mail    MailConfig    `mapstructure:"mail"`
	History HistoryConfig `mapstructure:"history"`
}

// NetworkConfig selects the interface whose address is tracked
type NetworkConfig struct {
	Interface string `mapstructure:"interface"`
}

// SMTPConfig describes the outbound mail submission server
type SMTPConfig struct {
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// Addr returns host:port
func (s SMTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MailConfig holds the envelope addresses
type MailConfig struct {
	Sender    string   `mapstructure:"sender"`
	Receivers []string `mapstructure:"receivers"`
}

// HistoryConfig controls the optional SQLite audit trail
type HistoryConfig struct {
	Path          string `mapstructure:"path"`
	RetentionDays int    `mapstructure:"retention_days"`
}

// Enabled reports whether a history database is configured
func (h HistoryConfig) Enabled() bool {
	return h.Path != ""
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.SMTP.Host == "" {
		return fmt.Errorf("smtp.host cannot be empty")
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("smtp.port must be between 1 and 65535")
	}
	if c.SMTP.Timeout <= 0 {
		return fmt.Errorf("smtp.timeout must be positive")
	}
	if c.Mail.Sender == "" {
		return fmt.Errorf("mail.sender cannot be empty")
	}
	if _, err := mail.ParseAddress(c.Mail.Sender); err != nil {
		return fmt.Errorf("mail.sender %q: %w", c.Mail.Sender, err)
	}
	if len(c.Mail.Receivers) == 0 {
		return fmt.Errorf("at least one mail receiver must be specified")
	}
	for _, r := range c.Mail.Receivers {
		if _, err := mail.ParseAddress(r); err != nil {
			return fmt.Errorf("mail.receivers %q: %w", r, err)
		}
	}
	if c.History.RetentionDays < 0 {
		return fmt.Errorf("history.retention_days cannot be negative")
	}
	return nil
}

// InterfaceName returns the configured interface or the default one
func (c *Config) InterfaceName() string {
	if c.Network.Interface == "" {
		return DefaultInterface
	}
	return c.Network.Interface
}
