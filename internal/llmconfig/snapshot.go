package llmconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"aura/internal/logging"
	"aura/internal/services"
)

// Snapshot is the persisted form of the resolver state. It carries no
// version; new fields must be additive and defaulted.
type Snapshot struct {
	LLMSettings                   Settings                `json:"llmSettings"`
	ModuleLLMSettings             map[Module]ModuleConfig `json:"moduleLLMSettings"`
	ReverseEngineeringLLMSettings ReverseEngineering      `json:"reverseEngineeringLLMSettings"`
}

// Snapshot captures the current resolver state, API key included.
func (r *Resolver) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	modules := make(map[Module]ModuleConfig, len(r.modules))
	for module, cfg := range r.modules {
		modules[module] = cfg
	}
	return Snapshot{
		LLMSettings:                   r.settings,
		ModuleLLMSettings:             modules,
		ReverseEngineeringLLMSettings: r.reverse,
	}
}

// Restore applies a snapshot on top of the current state. Unknown modules are
// ignored, incomplete selections keep their current value, and out-of-range
// temperature or max tokens are skipped. A path-like API key is skipped the
// same way SetAPIKey rejects it.
func (r *Resolver) Restore(snap Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := snap.LLMSettings
	if s.Provider != "" {
		r.settings.Provider = s.Provider
	}
	if s.Model != "" {
		r.settings.Model = s.Model
	}
	if pathLikeKey(s.APIKey) {
		logging.WarnWithContext(r.logger, "persisted api key looks like a file path; keeping current key", "settings_restore_rejected",
			"set the key again with `aura settings set-key`",
			logging.String("field", "apiKey"),
		)
	} else {
		r.settings.APIKey = s.APIKey
	}
	if s.Temperature >= 0 && s.Temperature <= 2 {
		r.settings.Temperature = s.Temperature
	}
	if s.MaxTokens > 0 {
		r.settings.MaxTokens = s.MaxTokens
	}

	for module, cfg := range snap.ModuleLLMSettings {
		current, ok := r.modules[module]
		if !ok {
			continue
		}
		if cfg.Primary.Complete() {
			current.Primary = cfg.Primary
		}
		if cfg.Backup.Complete() {
			current.Backup = cfg.Backup
		}
		r.modules[module] = current
	}

	if snap.ReverseEngineeringLLMSettings.Design.Complete() {
		r.reverse.Design = snap.ReverseEngineeringLLMSettings.Design
	}
	if snap.ReverseEngineeringLLMSettings.Code.Complete() {
		r.reverse.Code = snap.ReverseEngineeringLLMSettings.Code
	}
}

const lockRetryDelay = 50 * time.Millisecond

// SnapshotStore reads and writes the resolver snapshot as JSON. An advisory
// lock file next to the snapshot serializes access across processes; mu
// serializes goroutines sharing the store, since a flock.Flock is a single
// lock per process.
type SnapshotStore struct {
	path   string
	mu     sync.Mutex
	lock   *flock.Flock
	logger *slog.Logger
}

// NewSnapshotStore returns a store for the snapshot at path.
func NewSnapshotStore(path string, logger *slog.Logger) *SnapshotStore {
	return &SnapshotStore{
		path:   path,
		lock:   flock.New(path + ".lock"),
		logger: logging.NewComponentLogger(logger, "settings-store"),
	}
}

// Path returns the snapshot file location.
func (s *SnapshotStore) Path() string {
	return s.path
}

// Load restores the persisted snapshot into r. A missing file leaves r at its
// defaults and reports false.
func (s *SnapshotStore) Load(ctx context.Context, r *Resolver) (bool, error) {
	unlock, err := s.acquire(ctx, "load", false)
	if err != nil {
		return false, err
	}
	defer unlock()
	return s.read(r)
}

// Save writes the resolver state atomically via a temp file and rename.
func (s *SnapshotStore) Save(ctx context.Context, r *Resolver) error {
	unlock, err := s.acquire(ctx, "save", true)
	if err != nil {
		return err
	}
	defer unlock()
	return s.write(r)
}

// Update runs one read-modify-write cycle under the exclusive lock: the
// persisted snapshot is reloaded into r, mutate runs, and the result is saved
// when any change applied. Writers in other processes cannot interleave, so
// their changes are never overwritten by a stale in-memory copy.
func (s *SnapshotStore) Update(ctx context.Context, r *Resolver, mutate func(*Resolver) []Change) ([]Change, error) {
	unlock, err := s.acquire(ctx, "update", true)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if _, err := s.read(r); err != nil {
		return nil, err
	}
	// The file may predate a key the environment supplies.
	r.InitializeFromEnvironment()

	changes := mutate(r)
	for _, change := range changes {
		if change.Applied {
			return changes, s.write(r)
		}
	}
	return changes, nil
}

func (s *SnapshotStore) acquire(ctx context.Context, operation string, exclusive bool) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return nil, fmt.Errorf("create settings directory: %w", err)
	}
	s.mu.Lock()
	var locked bool
	var err error
	if exclusive {
		locked, err = s.lock.TryLockContext(ctx, lockRetryDelay)
	} else {
		locked, err = s.lock.TryRLockContext(ctx, lockRetryDelay)
	}
	if err != nil {
		s.mu.Unlock()
		return nil, services.Wrap(services.ErrTimeout, "settings-store", operation, "acquire lock", err)
	}
	if !locked {
		s.mu.Unlock()
		return nil, services.Wrap(services.ErrTimeout, "settings-store", operation, "lock busy", nil)
	}
	return func() {
		_ = s.lock.Unlock()
		s.mu.Unlock()
	}, nil
}

func (s *SnapshotStore) read(r *Resolver) (bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read settings snapshot: %w", err)
	}
	if len(data) == 0 {
		return false, nil
	}

	// Decoding over the current state keeps defaults for fields the file lacks.
	snap := r.Snapshot()
	if err := json.Unmarshal(data, &snap); err != nil {
		return false, services.Wrap(services.ErrConfiguration, "settings-store", "load", "parse snapshot "+s.path, err)
	}
	r.Restore(snap)

	s.logger.Debug("settings snapshot loaded",
		logging.String("path", s.path),
		logging.Int("module_count", len(snap.ModuleLLMSettings)),
	)
	return true, nil
}

func (s *SnapshotStore) write(r *Resolver) error {
	data, err := json.MarshalIndent(r.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp snapshot: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod temp snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp snapshot: %w", err)
	}
	return nil
}
