package preflight

import (
	"context"
	"path/filepath"

	"aura/internal/config"
	"aura/internal/llmconfig"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

// RunAll executes every preflight check for the given config. Provider keys
// are looked up through source; nil uses the process environment.
func RunAll(ctx context.Context, cfg *config.Config, catalog *llmconfig.Catalog, source llmconfig.Source) []Result {
	if cfg == nil {
		return nil
	}
	if catalog == nil {
		catalog = llmconfig.DefaultCatalog()
	}
	if source == nil {
		source = llmconfig.NewEnvSource()
	}

	var results []Result
	results = append(results, CheckDirectoryAccess("Data directory", cfg.Paths.DataDir))
	if cfg.Paths.LogDir != "" && cfg.Paths.LogDir != cfg.Paths.DataDir {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}
	if settingsDir := filepath.Dir(cfg.Paths.SettingsFile); cfg.Paths.SettingsFile != "" && settingsDir != cfg.Paths.DataDir {
		results = append(results, CheckDirectoryAccess("Settings directory", settingsDir))
	}
	if cfg.Paths.DatabaseFile != "" {
		results = append(results, CheckDatabase(ctx, cfg.Paths.DatabaseFile))
	}
	results = append(results, CheckGateway(ctx, cfg.Gateway.URL))
	results = append(results, CheckProviderKeys(catalog, source))
	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, result := range results {
		if !result.Passed {
			out = append(out, result)
		}
	}
	return out
}
