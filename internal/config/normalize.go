package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func (c *Config) normalize() error {
	c.applyEnvOverrides()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLLM()
	c.normalizeGateway()
	c.normalizeReverseEngineering()
	if c.Mock.DelayMS < 0 {
		c.Mock.DelayMS = 0
	}
	c.normalizeLogging()
	return nil
}

// applyEnvOverrides lets AURA_* variables replace file or default values so
// containerized deployments can run without a config file.
func (c *Config) applyEnvOverrides() {
	if value, ok := lookupTrimmed("AURA_DATA_DIR"); ok {
		c.Paths.DataDir = value
	}
	if value, ok := lookupTrimmed("AURA_LOG_DIR"); ok {
		c.Paths.LogDir = value
	}
	if value, ok := lookupTrimmed("AURA_SETTINGS_FILE"); ok {
		c.Paths.SettingsFile = value
	}
	if value, ok := lookupTrimmed("AURA_DATABASE_FILE"); ok {
		c.Paths.DatabaseFile = value
	}
	if value, ok := lookupTrimmed("AURA_API_BIND"); ok {
		c.Paths.APIBind = value
	}
	if value, ok := lookupTrimmed("AURA_API_TOKEN"); ok {
		c.Paths.APIToken = value
	}
	if value, ok := lookupTrimmed("AURA_GATEWAY_URL"); ok {
		c.Gateway.URL = value
	}
	if value, ok := lookupTrimmed("AURA_GATEWAY_TIMEOUT_SECONDS"); ok {
		if seconds, err := strconv.Atoi(value); err == nil {
			c.Gateway.TimeoutSeconds = seconds
		}
	}
	if value, ok := lookupTrimmed("AURA_LOG_LEVEL"); ok {
		c.Logging.Level = value
	}
	if value, ok := lookupTrimmed("AURA_LOG_FORMAT"); ok {
		c.Logging.Format = value
	}
}

func lookupTrimmed(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	return value, true
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.DataDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.SettingsFile) == "" {
		c.Paths.SettingsFile = filepath.Join(c.Paths.DataDir, defaultSettingsFileName)
	}
	if c.Paths.SettingsFile, err = expandPath(c.Paths.SettingsFile); err != nil {
		return fmt.Errorf("paths.settings_file: %w", err)
	}
	if strings.TrimSpace(c.Paths.DatabaseFile) == "" {
		c.Paths.DatabaseFile = filepath.Join(c.Paths.DataDir, defaultDatabaseFileName)
	}
	if c.Paths.DatabaseFile, err = expandPath(c.Paths.DatabaseFile); err != nil {
		return fmt.Errorf("paths.database_file: %w", err)
	}
	if c.Paths.CatalogFile, err = expandPath(strings.TrimSpace(c.Paths.CatalogFile)); err != nil {
		return fmt.Errorf("paths.catalog_file: %w", err)
	}
	if c.Paths.EnvFile, err = expandPath(strings.TrimSpace(c.Paths.EnvFile)); err != nil {
		return fmt.Errorf("paths.env_file: %w", err)
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	return nil
}

func (c *Config) normalizeLLM() {
	c.LLM.Provider = strings.ToLower(strings.TrimSpace(c.LLM.Provider))
	if c.LLM.Provider == "" {
		c.LLM.Provider = defaultLLMProvider
	}
	c.LLM.Model = strings.TrimSpace(c.LLM.Model)
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = defaultLLMMaxTokens
	}
}

func (c *Config) normalizeGateway() {
	c.Gateway.URL = strings.TrimSpace(c.Gateway.URL)
	if c.Gateway.URL == "" {
		c.Gateway.URL = defaultGatewayURL
	}
	if c.Gateway.TimeoutSeconds < 0 {
		c.Gateway.TimeoutSeconds = 0
	}
	if c.Gateway.RetryAttempts <= 0 {
		c.Gateway.RetryAttempts = defaultGatewayRetryAttempts
	}
}

func (c *Config) normalizeReverseEngineering() {
	re := &c.ReverseEngineering
	re.DesignProvider = strings.ToLower(strings.TrimSpace(re.DesignProvider))
	if re.DesignProvider == "" {
		re.DesignProvider = defaultReverseProvider
	}
	re.DesignModel = strings.TrimSpace(re.DesignModel)
	if re.DesignModel == "" {
		re.DesignModel = defaultReverseModel
	}
	re.CodeProvider = strings.ToLower(strings.TrimSpace(re.CodeProvider))
	if re.CodeProvider == "" {
		re.CodeProvider = re.DesignProvider
	}
	re.CodeModel = strings.TrimSpace(re.CodeModel)
	if re.CodeModel == "" {
		re.CodeModel = re.DesignModel
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json", "auto":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
