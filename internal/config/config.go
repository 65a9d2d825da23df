package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains file locations and the API bind address.
type Paths struct {
	DataDir      string `toml:"data_dir"`
	LogDir       string `toml:"log_dir"`
	SettingsFile string `toml:"settings_file"`
	DatabaseFile string `toml:"database_file"`
	CatalogFile  string `toml:"catalog_file"`
	EnvFile      string `toml:"env_file"`
	APIBind      string `toml:"api_bind"`
	// APIToken, when set, is required as a bearer token on every API request.
	APIToken string `toml:"api_token"`
}

// LLM contains the defaults for the global LLM setting. They seed the
// configuration resolver the first time it runs; persisted user choices win
// afterwards.
type LLM struct {
	Provider    string  `toml:"provider"`
	Model       string  `toml:"model"`
	Temperature float64 `toml:"temperature"`
	MaxTokens   int     `toml:"max_tokens"`
	// StrictModels rejects model ids that are not in the current provider's
	// catalog entry. Off by default.
	StrictModels bool `toml:"strict_models"`
}

// Gateway contains the remote LLM gateway endpoint used for real analyses.
type Gateway struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	RetryAttempts  int    `toml:"retry_attempts"`
}

// ReverseEngineering contains the default provider/model pairs for the design
// and code reverse-engineering tracks.
type ReverseEngineering struct {
	DesignProvider string `toml:"design_provider"`
	DesignModel    string `toml:"design_model"`
	CodeProvider   string `toml:"code_provider"`
	CodeModel      string `toml:"code_model"`
}

// Mock contains settings for the offline analyzer.
type Mock struct {
	DelayMS int `toml:"delay_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for aura.
//
// Configuration sections by subsystem:
//   - Paths: data directory, persisted settings snapshot, database, catalog, API bind
//   - LLM: defaults for the global provider/model/temperature/max tokens
//   - Gateway: remote LLM gateway endpoint, timeout, and retry budget
//   - ReverseEngineering: default model selections for design and code analysis
//   - Mock: offline analyzer latency
//   - Logging: log format, level, and retention
type Config struct {
	Paths              Paths              `toml:"paths"`
	LLM                LLM                `toml:"llm"`
	Gateway            Gateway            `toml:"gateway"`
	ReverseEngineering ReverseEngineering `toml:"reverse_engineering"`
	Mock               Mock               `toml:"mock"`
	Logging            Logging            `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/aura/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := loadDotEnv(cfg.Paths.EnvFile); err != nil {
		return nil, "", false, fmt.Errorf("load env file: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/aura/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("aura.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// loadDotEnv populates the process environment from path without overriding
// variables that are already set. Missing files are ignored.
func loadDotEnv(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	err = godotenv.Load(expanded)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// EnsureDirectories creates the data and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	for _, file := range []string{c.Paths.SettingsFile, c.Paths.DatabaseFile} {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return fmt.Errorf("create directory for %q: %w", file, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

// GatewayConfig contains the settings the gateway client needs.
type GatewayConfig struct {
	URL            string
	TimeoutSeconds int
	RetryAttempts  int
}

// GetGateway returns the remote gateway connection settings.
func (c *Config) GetGateway() GatewayConfig {
	return GatewayConfig{
		URL:            strings.TrimSpace(c.Gateway.URL),
		TimeoutSeconds: c.Gateway.TimeoutSeconds,
		RetryAttempts:  c.Gateway.RetryAttempts,
	}
}
