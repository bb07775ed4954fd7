// Package config wraps viper-based configuration for the issues tool.
// Precedence: command-line flags > environment variables > config file >
// defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

var v *viper.Viper

// Initialize sets up the viper configuration singleton.
// Should be called once at application startup.
func Initialize() error {
	v = viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// Config search paths, in order of precedence:
	// 1. Walk up from CWD to find a project .issues/ directory, so commands
	//    work from subdirectories.
	cwd, err := os.Getwd()
	if err == nil {
		for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
			issuesDir := filepath.Join(dir, ".issues")
			if info, err := os.Stat(issuesDir); err == nil && info.IsDir() {
				v.AddConfigPath(issuesDir)
				break
			}
		}
	}

	// 2. User config directory (~/.config/issued/)
	if configDir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(configDir, "issued"))
	}

	// 3. Home directory (~/.issues/)
	if homeDir, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(homeDir, ".issues"))
	}

	// Environment variables take precedence over the config file,
	// e.g. ISSUES_DB, ISSUES_LISTEN, ISSUES_BACKEND.
	v.SetEnvPrefix("ISSUES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("backend", "sqlite")
	v.SetDefault("db", "")
	v.SetDefault("dsn", "")
	v.SetDefault("listen", ":8080")
	v.SetDefault("env", "dev")
	v.SetDefault("log-file", "")
	v.SetDefault("json", false)
	v.SetDefault("actor", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is fine, defaults apply.
	}

	return nil
}

// GetString retrieves a string configuration value
func GetString(key string) string {
	if v == nil {
		return ""
	}
	return v.GetString(key)
}

// GetBool retrieves a boolean configuration value
func GetBool(key string) bool {
	if v == nil {
		return false
	}
	return v.GetBool(key)
}

// DefaultDBPath returns the database path used when none is configured:
// .issues/issues.db under the nearest project directory, or the CWD.
func DefaultDBPath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return filepath.Join(".issues", "issues.db")
	}
	for dir := cwd; dir != filepath.Dir(dir); dir = filepath.Dir(dir) {
		issuesDir := filepath.Join(dir, ".issues")
		if info, err := os.Stat(issuesDir); err == nil && info.IsDir() {
			return filepath.Join(issuesDir, "issues.db")
		}
	}
	return filepath.Join(cwd, ".issues", "issues.db")
}
