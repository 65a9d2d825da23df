package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateGateway(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateLLM() error {
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return errors.New("llm.temperature must be between 0 and 2")
	}
	if c.LLM.MaxTokens <= 0 {
		return errors.New("llm.max_tokens must be positive")
	}
	return nil
}

func (c *Config) validateGateway() error {
	parsed, err := url.Parse(c.Gateway.URL)
	if err != nil {
		return fmt.Errorf("gateway.url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("gateway.url must use http or https, got %q", c.Gateway.URL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("gateway.url must include a host, got %q", c.Gateway.URL)
	}
	if c.Gateway.RetryAttempts > 10 {
		return errors.New("gateway.retry_attempts must be 10 or fewer")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}

// Report summarizes configuration health beyond hard validation failures.
type Report struct {
	Errors   []string
	Warnings []string
}

// Valid reports whether the report carries no errors.
func (r Report) Valid() bool {
	return len(r.Errors) == 0
}

// Diagnose runs Validate and adds operational warnings for settings that work
// but degrade behaviour, such as a missing provider key or a gateway without a
// timeout.
func (c *Config) Diagnose() Report {
	var report Report
	if err := c.Validate(); err != nil {
		report.Errors = append(report.Errors, err.Error())
	}
	if !hasAnyEnv("OPENAI_API_KEY", "GOOGLE_API_KEY", "GEMINI_API_KEY") {
		report.Warnings = append(report.Warnings, "no provider API key found in the environment - real LLM analysis will fall back to mock results until a key is set")
	}
	if c.Gateway.TimeoutSeconds == 0 {
		report.Warnings = append(report.Warnings, "gateway.timeout_seconds is 0 - a hung gateway call will block the request indefinitely")
	}
	if c.Gateway.RetryAttempts > 3 {
		report.Warnings = append(report.Warnings, "high gateway.retry_attempts detected - consider reducing to keep fallback latency low")
	}
	if c.Mock.DelayMS > 10000 {
		report.Warnings = append(report.Warnings, "mock.delay_ms exceeds 10s - mock responses will be slow")
	}
	return report
}

func hasAnyEnv(keys ...string) bool {
	for _, key := range keys {
		if strings.TrimSpace(os.Getenv(key)) != "" {
			return true
		}
	}
	return false
}
