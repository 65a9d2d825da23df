package llmconfig_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aura/internal/llmconfig"
)

func TestDefaultCatalogOrder(t *testing.T) {
	catalog := llmconfig.DefaultCatalog()
	providers := catalog.Providers()
	if len(providers) != 2 || providers[0].ID != "openai" || providers[1].ID != "google" {
		t.Fatalf("unexpected providers: %+v", providers)
	}
	if providers[0].FirstModel() != "gpt-4" || providers[1].FirstModel() != "gemini-pro" {
		t.Fatalf("unexpected first models: %s %s", providers[0].FirstModel(), providers[1].FirstModel())
	}
	providers[0].Models[0].ID = "mutated"
	if catalog.First().FirstModel() != "gpt-4" {
		t.Fatal("Providers must return a copy")
	}
}

func TestLoadCatalogFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.yaml")
	body := `providers:
  - id: Anthropic
    name: Anthropic
    models:
      - id: claude-3-opus
        max_tokens: 200000
      - id: claude-3-haiku
  - id: openai
    models:
      - id: gpt-4o
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	catalog, err := llmconfig.LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	provider, ok := catalog.Lookup("anthropic")
	if !ok {
		t.Fatal("expected lowercased provider id")
	}
	if provider.Models[0].Name != "claude-3-opus" || provider.Models[0].MaxTokens != 200000 {
		t.Fatalf("unexpected model: %+v", provider.Models[0])
	}
	if openai, _ := catalog.Lookup("openai"); openai.Name != "openai" {
		t.Fatalf("expected name to default to id, got %q", openai.Name)
	}

	r := llmconfig.NewResolver(llmconfig.WithCatalog(catalog), llmconfig.WithSource(llmconfig.StaticSource{}),
		llmconfig.WithDefaults(llmconfig.Settings{Provider: "openai"}))
	cfg, _ := r.ModuleConfig(llmconfig.ModuleUseCases)
	if cfg.Primary.Model != "gpt-4o" || cfg.Backup.Provider != "anthropic" {
		t.Fatalf("unexpected module defaults from custom catalog: %+v", cfg)
	}
}

func TestLoadCatalogRejectsInvalidFiles(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"empty.yaml":     "providers: []\n",
		"nomodels.yaml":  "providers:\n  - id: openai\n    models: []\n",
		"duplicate.yaml": "providers:\n  - id: openai\n    models: [{id: a}]\n  - id: OpenAI\n    models: [{id: b}]\n",
		"broken.yaml":    "providers: [",
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		if _, err := llmconfig.LoadCatalog(path); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	if catalog, err := llmconfig.LoadCatalog(""); err != nil || catalog.First().ID != "openai" {
		t.Fatalf("expected default catalog for empty path, err=%v", err)
	}
}

func TestSingleProviderCatalogBackupMirrorsPrimary(t *testing.T) {
	catalog, err := llmconfig.NewCatalog([]llmconfig.Provider{{ID: "local", Models: []llmconfig.Model{{ID: "llama"}}}})
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	r := llmconfig.NewResolver(llmconfig.WithCatalog(catalog), llmconfig.WithSource(llmconfig.StaticSource{}))
	cfg, _ := r.ModuleConfig(llmconfig.ModuleExecution)
	if cfg.Backup != cfg.Primary || cfg.Primary.Model != "llama" {
		t.Fatalf("unexpected single-provider defaults: %+v", cfg)
	}
}

func TestEnvSourceKeys(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", " sk-openai ")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "gemini-key")
	t.Setenv("MISTRAL_AI_API_KEY", "mistral-key")

	source := llmconfig.NewEnvSource()
	if got := source.APIKey("openai"); got != "sk-openai" {
		t.Fatalf("unexpected openai key: %q", got)
	}
	if got := source.APIKey("google"); got != "gemini-key" {
		t.Fatalf("expected GEMINI_API_KEY alias, got %q", got)
	}
	if got := source.APIKey("mistral-ai"); got != "mistral-key" {
		t.Fatalf("expected derived env key, got %q", got)
	}
	if got := source.APIKey(""); got != "" {
		t.Fatalf("expected empty key for empty provider, got %q", got)
	}
	if keys := llmconfig.EnvKeys("google"); strings.Join(keys, ",") != "GOOGLE_API_KEY,GEMINI_API_KEY" {
		t.Fatalf("unexpected google env keys: %v", keys)
	}
}

func TestParseHelpers(t *testing.T) {
	if m, err := llmconfig.ParseModule(" Test-Cases "); err != nil || m != llmconfig.ModuleTestCases {
		t.Fatalf("ParseModule: %v %v", m, err)
	}
	if _, err := llmconfig.ParseModule("billing"); err == nil {
		t.Fatal("expected unknown module error")
	}
	if tier, err := llmconfig.ParseTier(""); err != nil || tier != llmconfig.TierPrimary {
		t.Fatalf("ParseTier empty: %v %v", tier, err)
	}
	if _, err := llmconfig.ParseTier("secondary"); err == nil {
		t.Fatal("expected unknown tier error")
	}
	if kind, err := llmconfig.ParseKind("CODE"); err != nil || kind != llmconfig.KindCode {
		t.Fatalf("ParseKind: %v %v", kind, err)
	}
}
