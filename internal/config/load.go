package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. IPALERT_SMTP_PASSWORD
const EnvPrefix = "IPALERT"

func setDefaults(v *viper.Viper) {
	v.SetDefault("network.interface", DefaultInterface)
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 465)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.timeout", 30*time.Second)
	v.SetDefault("mail.sender", "")
	v.SetDefault("mail.receivers", []string{})
	v.SetDefault("history.path", "")
	v.SetDefault("history.retention_days", 365)
}

// Load reads the configuration file at path, applies defaults and
// environment overrides, and validates the result. Every failure wraps
// ErrConfiguration.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if filepath.Ext(path) == "" {
		v.SetConfigType("json")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrConfiguration, path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %w", ErrConfiguration, path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	return &cfg, nil
}

// DefaultPath returns name resolved next to the running executable, falling
// back to the working directory.
func DefaultPath(name string) string {
	exe, err := os.Executable()
	if err != nil {
		return name
	}
	return filepath.Join(filepath.Dir(exe), name)
}
