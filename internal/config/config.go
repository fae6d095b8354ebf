// Package config loads hub configuration from command-line flags, environment
// variables and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App      AppConfig
	Logger   LoggerConfig
	Snapshot SnapshotConfig
	Catalog  CatalogConfig
	Ingest   IngestConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// SnapshotConfig describes the snapshot file checked by hubcheck.
type SnapshotConfig struct {
	Path        string
	Watch       bool          // re-check whenever the file changes
	DryRun      bool          // check records without importing them
	SettleDelay time.Duration // quiet period before a change is handled (default: 250ms)
}

// CatalogConfig holds catalog policy.
type CatalogConfig struct {
	// MaxToolsPerPlaylist caps playlist size. 0 means unlimited.
	MaxToolsPerPlaylist int
}

// IngestConfig describes classification payloads replayed by hubcheck and
// throttles the pipeline per channel.
type IngestConfig struct {
	// Path is an optional JSON array of classification payloads.
	Path string
	// RatePerSecond is the sustained ingest rate per channel. 0 disables throttling.
	RatePerSecond float64
	Burst         int
}

// Load reads configuration with precedence:
// 1. Command-line flags in args (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("hub", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	snapshotPath := fs.String("snapshot", "", "Path to the snapshot JSON file")
	watch := fs.String("watch", "", "Re-check the snapshot when it changes (default: false)")
	dryRun := fs.String("dry-run", "", "Check the snapshot without importing it (default: false)")
	settleDelay := fs.String("settle-delay", "", "Quiet period before handling a change (default: 250ms)")
	maxTools := fs.String("max-tools-per-playlist", "", "Maximum tools per playlist, 0 for unlimited")
	ingestPath := fs.String("ingest", "", "Path to a JSON array of classification payloads")
	ingestRate := fs.String("ingest-rate", "", "Ingest requests per second per channel, 0 to disable")
	ingestBurst := fs.String("ingest-burst", "", "Ingest burst size (default: 5)")
	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parse flags: %w", err)
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Snapshot: SnapshotConfig{
			Path:   getConfigValue(*snapshotPath, "SNAPSHOT_PATH", ""),
			Watch:  getBoolConfigValue(*watch, "SNAPSHOT_WATCH", false),
			DryRun: getBoolConfigValue(*dryRun, "SNAPSHOT_DRY_RUN", false),
		},
		Ingest: IngestConfig{
			Path: getConfigValue(*ingestPath, "INGEST_PATH", ""),
		},
	}

	var err error
	if cfg.Catalog.MaxToolsPerPlaylist, err = getIntConfigValue(*maxTools, "MAX_TOOLS_PER_PLAYLIST", 0); err != nil {
		return nil, err
	}
	if cfg.Ingest.RatePerSecond, err = getFloatConfigValue(*ingestRate, "INGEST_RATE_PER_SECOND", 0); err != nil {
		return nil, err
	}
	if cfg.Ingest.Burst, err = getIntConfigValue(*ingestBurst, "INGEST_BURST", 5); err != nil {
		return nil, err
	}

	settleStr := getConfigValue(*settleDelay, "SNAPSHOT_SETTLE_DELAY", "250ms")
	if cfg.Snapshot.SettleDelay, err = time.ParseDuration(settleStr); err != nil {
		return nil, fmt.Errorf("invalid settle delay %q: %w", settleStr, err)
	}

	if cfg.Snapshot.Path, err = expandPath(cfg.Snapshot.Path); err != nil {
		return nil, fmt.Errorf("invalid snapshot path: %w", err)
	}
	if cfg.Ingest.Path, err = expandPath(cfg.Ingest.Path); err != nil {
		return nil, fmt.Errorf("invalid ingest path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Catalog.MaxToolsPerPlaylist < 0 {
		return fmt.Errorf("invalid max tools per playlist: %d (must be 0 or more)", c.Catalog.MaxToolsPerPlaylist)
	}

	if c.Ingest.RatePerSecond < 0 {
		return fmt.Errorf("invalid ingest rate: %v (must be 0 or more)", c.Ingest.RatePerSecond)
	}
	if c.Ingest.RatePerSecond > 0 && c.Ingest.Burst < 1 {
		return fmt.Errorf("invalid ingest burst: %d (must be at least 1 when throttling)", c.Ingest.Burst)
	}

	if c.Snapshot.Watch && c.Snapshot.Path == "" {
		return errors.New("snapshot path is required when watching")
	}

	return nil
}

// IsProduction reports whether the production environment is configured.
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// expandPath expands ~ and makes a non-empty path absolute.
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
// Unlike the string helpers, a malformed number is an error rather than a
// silent fallback, since these values are limits.
func getIntConfigValue(flagValue, envKey string, defaultValue int) (int, error) {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return n, nil
}

// getFloatConfigValue returns a float from flag, env var, or default.
func getFloatConfigValue(flagValue, envKey string, defaultValue float64) (float64, error) {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue, nil
	}
	f, err := strconv.ParseFloat(strValue, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return f, nil
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Real environment variables win over the file.
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
