package testsupport

import (
	"path/filepath"
	"testing"

	"aura/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Directories exist on return; the gateway URL refuses connections and the
// mock analyzer has no delay.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.SettingsFile = filepath.Join(cfgVal.Paths.DataDir, "settings.json")
	cfgVal.Paths.DatabaseFile = filepath.Join(cfgVal.Paths.DataDir, "aura.db")
	cfgVal.Paths.EnvFile = ""
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.Gateway.URL = "http://127.0.0.1:1/reverse-engineer-design"
	cfgVal.Mock.DelayMS = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithGatewayURL points the config at a test gateway.
func WithGatewayURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Gateway.URL = url
	}
}

// WithStrictModels enables strict model checks.
func WithStrictModels() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.LLM.StrictModels = true
	}
}

// WithCatalogFile writes contents as the provider catalog and points the
// config at it.
func WithCatalogFile(contents string) ConfigOption {
	return func(b *configBuilder) {
		path := filepath.Join(b.baseDir, "providers.yaml")
		WriteFile(b.t, path, contents)
		b.cfg.Paths.CatalogFile = path
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
