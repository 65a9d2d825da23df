package llmconfig_test

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"aura/internal/llmconfig"
	"aura/internal/logging"
	"aura/internal/services"
)

func TestSnapshotStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "settings.json")
	store := llmconfig.NewSnapshotStore(path, logging.NewNop())

	original := newResolver(t, nil)
	original.SetProvider("google")
	original.SetAPIKey("g-key")
	original.SetTemperature(0.4)
	original.SetModuleTier(llmconfig.ModuleTraceability, llmconfig.TierBackup, "openai", "gpt-3.5-turbo")
	original.SetReverseEngineeringLLM(llmconfig.KindDesign, "openai", "gpt-4-turbo")
	if err := store.Save(ctx, original); err != nil {
		t.Fatalf("Save: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat snapshot: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Fatalf("expected 0600 snapshot, got %v", info.Mode().Perm())
	}

	restored := newResolver(t, nil)
	found, err := store.Load(ctx, restored)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !found {
		t.Fatal("expected snapshot to be found")
	}
	if got, want := restored.Settings(), original.Settings(); got != want {
		t.Fatalf("settings mismatch: got %+v want %+v", got, want)
	}
	if got, want := restored.ReverseEngineering(), original.ReverseEngineering(); got != want {
		t.Fatalf("reverse engineering mismatch: got %+v want %+v", got, want)
	}
	cfg, _ := restored.ModuleConfig(llmconfig.ModuleTraceability)
	if cfg.Backup.Model != "gpt-3.5-turbo" {
		t.Fatalf("module tier not restored: %+v", cfg)
	}
}

func TestSnapshotJSONShape(t *testing.T) {
	r := newResolver(t, nil)
	r.SetAPIKey("sk-shape")
	data, err := json.Marshal(r.Snapshot())
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"llmSettings", "moduleLLMSettings", "reverseEngineeringLLMSettings"} {
		if _, ok := raw[key]; !ok {
			t.Fatalf("missing %s in %s", key, data)
		}
	}
	for _, key := range []string{"provider", "model", "temperature", "maxTokens", "apiKey"} {
		if _, ok := raw["llmSettings"][key]; !ok {
			t.Fatalf("llmSettings missing %s", key)
		}
	}
	if raw["llmSettings"]["apiKey"] != "sk-shape" {
		t.Fatalf("expected api key persisted, got %v", raw["llmSettings"]["apiKey"])
	}
}

func TestSnapshotStoreLoadIsAdditive(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.json")
	body := `{
  "llmSettings": {"provider": "google", "model": "gemini-pro"},
  "moduleLLMSettings": {
    "design": {"primary": {"provider": "openai", "model": "gpt-4-turbo"}},
    "billing": {"primary": {"provider": "openai", "model": "gpt-4"}}
  }
}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	r := newResolver(t, nil)
	if _, err := llmconfig.NewSnapshotStore(path, nil).Load(ctx, r); err != nil {
		t.Fatalf("Load: %v", err)
	}
	settings := r.Settings()
	if settings.Provider != "google" || settings.Temperature != 0.7 || settings.MaxTokens != 4000 {
		t.Fatalf("expected missing fields to keep defaults: %+v", settings)
	}
	design, _ := r.ModuleConfig(llmconfig.ModuleDesign)
	if design.Primary.Model != "gpt-4-turbo" || design.Backup.Provider != "google" {
		t.Fatalf("unexpected design config: %+v", design)
	}
	if _, ok := r.ModuleConfig(llmconfig.Module("billing")); ok {
		t.Fatal("unknown module should be ignored")
	}
	if r.ReverseEngineering().Design.Model != "gemini-2.5-pro" {
		t.Fatalf("missing reverse engineering section should keep defaults: %+v", r.ReverseEngineering())
	}
}

func TestSnapshotStoreMissingAndCorruptFiles(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	r := newResolver(t, nil)

	found, err := llmconfig.NewSnapshotStore(filepath.Join(dir, "absent.json"), nil).Load(ctx, r)
	if err != nil || found {
		t.Fatalf("expected missing snapshot to be ignored, found=%v err=%v", found, err)
	}

	corrupt := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corrupt, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt: %v", err)
	}
	if _, err := llmconfig.NewSnapshotStore(corrupt, nil).Load(ctx, r); err == nil {
		t.Fatal("expected parse error for corrupt snapshot")
	}
}

func TestSnapshotStoreUpdateKeepsOtherWritersChanges(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.json")

	cli := newResolver(t, nil)
	server := newResolver(t, nil)
	cliStore := llmconfig.NewSnapshotStore(path, logging.NewNop())
	serverStore := llmconfig.NewSnapshotStore(path, logging.NewNop())

	if _, err := cliStore.Update(ctx, cli, func(r *llmconfig.Resolver) []llmconfig.Change {
		return []llmconfig.Change{r.SetAPIKey("sk-from-cli")}
	}); err != nil {
		t.Fatalf("cli Update: %v", err)
	}
	// server never reloaded, so its in-memory key is still empty.
	if _, err := serverStore.Update(ctx, server, func(r *llmconfig.Resolver) []llmconfig.Change {
		return []llmconfig.Change{r.SetModuleTier(llmconfig.ModuleDefects, llmconfig.TierBackup, "openai", "gpt-4-turbo")}
	}); err != nil {
		t.Fatalf("server Update: %v", err)
	}

	fresh := newResolver(t, nil)
	if _, err := llmconfig.NewSnapshotStore(path, nil).Load(ctx, fresh); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := fresh.Settings().APIKey; got != "sk-from-cli" {
		t.Fatalf("persisted api key = %q, want sk-from-cli", got)
	}
	if cfg, _ := fresh.ModuleConfig(llmconfig.ModuleDefects); cfg.Backup.Model != "gpt-4-turbo" {
		t.Fatalf("module tier lost: %+v", cfg)
	}
	if got := server.Settings().APIKey; got != "sk-from-cli" {
		t.Fatalf("server should see the reloaded key, got %q", got)
	}
}

func TestSnapshotStoreUpdateSkipsSaveWhenRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	store := llmconfig.NewSnapshotStore(path, logging.NewNop())
	changes, err := store.Update(context.Background(), newResolver(t, nil), func(r *llmconfig.Resolver) []llmconfig.Change {
		return []llmconfig.Change{r.SetProvider("anthropic")}
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(changes) != 1 || changes[0].Applied {
		t.Fatalf("expected one rejected change, got %+v", changes)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("rejected update must not write, stat err=%v", err)
	}
}

func TestSnapshotStoreConcurrentUpdatesAcrossStores(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.json")
	stores := []*llmconfig.SnapshotStore{
		llmconfig.NewSnapshotStore(path, logging.NewNop()),
		llmconfig.NewSnapshotStore(path, logging.NewNop()),
	}
	resolvers := []*llmconfig.Resolver{newResolver(t, nil), newResolver(t, nil)}

	var wg sync.WaitGroup
	for i, module := range llmconfig.Modules() {
		wg.Add(1)
		go func(i int, module llmconfig.Module) {
			defer wg.Done()
			_, err := stores[i%2].Update(ctx, resolvers[i%2], func(r *llmconfig.Resolver) []llmconfig.Change {
				return []llmconfig.Change{r.SetModuleTier(module, llmconfig.TierPrimary, "openai", "gpt-3.5-turbo")}
			})
			if err != nil {
				t.Errorf("Update %s: %v", module, err)
			}
		}(i, module)
	}
	wg.Wait()

	fresh := newResolver(t, nil)
	if _, err := llmconfig.NewSnapshotStore(path, nil).Load(ctx, fresh); err != nil {
		t.Fatalf("Load: %v", err)
	}
	for _, module := range llmconfig.Modules() {
		if cfg, _ := fresh.ModuleConfig(module); cfg.Primary.Model != "gpt-3.5-turbo" {
			t.Errorf("update for %s was lost: %+v", module, cfg)
		}
	}
}

func TestSnapshotStoreLoadDoesNotReleaseWriterLock(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "settings.json")
	store := llmconfig.NewSnapshotStore(path, logging.NewNop())
	other := flock.New(path + ".lock")

	loaded := make(chan error, 1)
	_, err := store.Update(ctx, newResolver(t, nil), func(r *llmconfig.Resolver) []llmconfig.Change {
		go func() {
			_, err := store.Load(ctx, newResolver(t, nil))
			loaded <- err
		}()
		time.Sleep(100 * time.Millisecond)
		if locked, err := other.TryLock(); err != nil || locked {
			if locked {
				_ = other.Unlock()
			}
			t.Errorf("writer lock released during update: locked=%v err=%v", locked, err)
		}
		return []llmconfig.Change{r.SetAPIKey("sk-under-lock")}
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := <-loaded; err != nil {
		t.Fatalf("Load after update: %v", err)
	}
}

func TestSnapshotStoreLoadTimesOutWhileLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	holder := flock.New(path + ".lock")
	if err := holder.Lock(); err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer func() { _ = holder.Unlock() }()

	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	_, err := llmconfig.NewSnapshotStore(path, nil).Load(ctx, newResolver(t, nil))
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout while another process holds the lock, got %v", err)
	}
}

func TestSnapshotStoreSkipsPathLikeKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	body := `{"llmSettings": {"provider": "openai", "model": "gpt-4", "apiKey": "/home/me/key.txt"}}`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	r := newResolver(t, nil)
	r.SetAPIKey("sk-current")
	if _, err := llmconfig.NewSnapshotStore(path, nil).Load(context.Background(), r); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := r.Settings().APIKey; got != "sk-current" {
		t.Fatalf("path-like key must be skipped, got %q", got)
	}
}
