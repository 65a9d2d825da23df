package llmconfig

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"aura/internal/logging"
	"aura/internal/services"
)

// Settings is the single global LLM setting. The API key is shared by every
// module and tier.
type Settings struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens"`
	APIKey      string  `json:"apiKey"`
}

// DefaultSettings returns the built-in global setting.
func DefaultSettings() Settings {
	return Settings{
		Provider:    "openai",
		Model:       "gpt-4",
		Temperature: 0.7,
		MaxTokens:   4000,
	}
}

// SettingsPatch carries a partial update of the global setting. Nil fields are
// left untouched.
type SettingsPatch struct {
	Provider    *string  `json:"provider,omitempty"`
	Model       *string  `json:"model,omitempty"`
	APIKey      *string  `json:"apiKey,omitempty"`
	Temperature *float64 `json:"temperature,omitempty"`
	MaxTokens   *int     `json:"maxTokens,omitempty"`
}

// Credentials are the ready-to-use invocation parameters for one call.
type Credentials struct {
	Provider    string  `json:"provider"`
	Model       string  `json:"model"`
	APIKey      string  `json:"apiKey"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"maxTokens"`
}

// Option customizes a Resolver.
type Option func(*Resolver)

// WithCatalog replaces the default provider catalog.
func WithCatalog(catalog *Catalog) Option {
	return func(r *Resolver) {
		if catalog != nil {
			r.catalog = catalog
		}
	}
}

// WithSource sets the provider key source. Defaults to the process environment.
func WithSource(source Source) Option {
	return func(r *Resolver) {
		if source != nil {
			r.source = source
		}
	}
}

// WithLogger sets the logger used for rejection diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logging.NewComponentLogger(logger, "llmconfig")
	}
}

// WithDefaults overrides the global setting used at construction and by
// ResetSettings.
func WithDefaults(settings Settings) Option {
	return func(r *Resolver) {
		r.defaults = settings
	}
}

// WithReverseEngineeringDefaults overrides the initial design and code
// selections.
func WithReverseEngineeringDefaults(re ReverseEngineering) Option {
	return func(r *Resolver) {
		r.reverse = re
	}
}

// WithStrictModels makes SetModel reject ids outside the current provider's
// model list.
func WithStrictModels(strict bool) Option {
	return func(r *Resolver) {
		r.strict = strict
	}
}

// Resolver maps modules to provider/model selections and merges them with the
// global setting. It is safe for concurrent use; each operation is atomic on
// its own but sequences of operations are not.
type Resolver struct {
	mu       sync.RWMutex
	catalog  *Catalog
	source   Source
	logger   *slog.Logger
	strict   bool
	defaults Settings
	settings Settings
	modules  map[Module]ModuleConfig
	reverse  ReverseEngineering
}

// NewResolver builds a resolver seeded with defaults. Call
// InitializeFromEnvironment afterwards to pick up provider keys.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		catalog:  DefaultCatalog(),
		source:   NewEnvSource(),
		logger:   logging.NewComponentLogger(nil, "llmconfig"),
		defaults: DefaultSettings(),
		reverse: ReverseEngineering{
			Design: Selection{Provider: "google", Model: "gemini-2.5-pro"},
			Code:   Selection{Provider: "google", Model: "gemini-2.5-pro"},
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	r.defaults = r.normalizeDefaults(r.defaults)
	r.settings = r.defaults
	r.modules = defaultModuleMap(r.catalog, r.settings.Provider)
	if !r.reverse.Design.Complete() {
		r.reverse.Design = Selection{Provider: r.settings.Provider, Model: r.settings.Model}
	}
	if !r.reverse.Code.Complete() {
		r.reverse.Code = r.reverse.Design
	}
	return r
}

func (r *Resolver) normalizeDefaults(s Settings) Settings {
	base := DefaultSettings()
	s.Provider = strings.ToLower(strings.TrimSpace(s.Provider))
	provider, ok := r.catalog.Lookup(s.Provider)
	if !ok {
		provider = r.catalog.First()
		s.Model = ""
	}
	s.Provider = provider.ID
	if strings.TrimSpace(s.Model) == "" {
		s.Model = provider.FirstModel()
	}
	if s.Temperature < 0 || s.Temperature > 2 {
		s.Temperature = base.Temperature
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = base.MaxTokens
	}
	return s
}

// Catalog returns the provider catalog.
func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

// Settings returns a copy of the global setting.
func (r *Resolver) Settings() Settings {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.settings
}

// CurrentProvider returns the catalog entry for the selected provider.
func (r *Resolver) CurrentProvider() (Provider, bool) {
	r.mu.RLock()
	id := r.settings.Provider
	r.mu.RUnlock()
	return r.catalog.Lookup(id)
}

// CurrentModel returns the catalog entry for the selected model. The second
// result is false when the model is not listed under the current provider.
func (r *Resolver) CurrentModel() (Model, bool) {
	r.mu.RLock()
	providerID, modelID := r.settings.Provider, r.settings.Model
	r.mu.RUnlock()
	provider, ok := r.catalog.Lookup(providerID)
	if !ok {
		return Model{ID: modelID, Name: modelID}, false
	}
	for _, model := range provider.Models {
		if model.ID == modelID {
			return model, true
		}
	}
	return Model{ID: modelID, Name: modelID}, false
}

// SetProvider selects a catalog provider, resets the model to that provider's
// first model, and backfills the API key from the environment when one exists.
func (r *Resolver) SetProvider(providerID string) Change {
	provider, ok := r.catalog.Lookup(providerID)
	if !ok {
		return r.reject("provider", fmt.Sprintf("unknown provider %q", providerID), logging.String(logging.FieldProvider, providerID))
	}
	envKey := r.source.APIKey(provider.ID)

	r.mu.Lock()
	r.settings.Provider = provider.ID
	r.settings.Model = provider.FirstModel()
	if envKey != "" {
		r.settings.APIKey = envKey
	}
	r.mu.Unlock()

	r.logger.Info("llm provider selected",
		logging.String(logging.FieldProvider, provider.ID),
		logging.String(logging.FieldModel, provider.FirstModel()),
		logging.Bool("key_from_env", envKey != ""),
	)
	return applied("provider")
}

// SetModel sets the model id. In strict mode the id must belong to the
// current provider.
func (r *Resolver) SetModel(modelID string) Change {
	modelID = strings.TrimSpace(modelID)
	r.mu.Lock()
	if r.strict {
		provider, ok := r.catalog.Lookup(r.settings.Provider)
		if !ok || !provider.HasModel(modelID) {
			providerID := r.settings.Provider
			r.mu.Unlock()
			return r.reject("model", fmt.Sprintf("model %q is not offered by provider %q", modelID, providerID),
				logging.String(logging.FieldProvider, providerID),
				logging.String(logging.FieldModel, modelID),
			)
		}
	}
	r.settings.Model = modelID
	r.mu.Unlock()
	return applied("model")
}

// SetAPIKey stores key as the global credential. Keys that look like file
// paths are rejected.
func (r *Resolver) SetAPIKey(key string) Change {
	if pathLikeKey(key) {
		return r.reject("apiKey", "api key contains a path separator; paste the key itself, not a file path")
	}
	r.mu.Lock()
	r.settings.APIKey = key
	r.mu.Unlock()
	return applied("apiKey")
}

// SetTemperature sets the sampling temperature (0 to 2).
func (r *Resolver) SetTemperature(value float64) Change {
	if value < 0 || value > 2 {
		return r.reject("temperature", fmt.Sprintf("temperature %.2f is outside 0..2", value))
	}
	r.mu.Lock()
	r.settings.Temperature = value
	r.mu.Unlock()
	return applied("temperature")
}

// SetMaxTokens sets the completion token limit.
func (r *Resolver) SetMaxTokens(value int) Change {
	if value <= 0 {
		return r.reject("maxTokens", fmt.Sprintf("max tokens must be positive, got %d", value))
	}
	r.mu.Lock()
	r.settings.MaxTokens = value
	r.mu.Unlock()
	return applied("maxTokens")
}

// UpdateSettings applies a partial update field by field through the guarded
// setters. Provider is applied before model so a patch carrying both keeps
// the requested model.
func (r *Resolver) UpdateSettings(patch SettingsPatch) []Change {
	var changes []Change
	if patch.Provider != nil {
		changes = append(changes, r.SetProvider(*patch.Provider))
	}
	if patch.Model != nil {
		changes = append(changes, r.SetModel(*patch.Model))
	}
	if patch.APIKey != nil {
		changes = append(changes, r.SetAPIKey(*patch.APIKey))
	}
	if patch.Temperature != nil {
		changes = append(changes, r.SetTemperature(*patch.Temperature))
	}
	if patch.MaxTokens != nil {
		changes = append(changes, r.SetMaxTokens(*patch.MaxTokens))
	}
	return changes
}

// ResetSettings restores the global setting to its defaults. Module and
// reverse-engineering selections are kept.
func (r *Resolver) ResetSettings() {
	r.mu.Lock()
	r.settings = r.defaults
	r.mu.Unlock()
}

// ValidateGlobal reports whether provider, model, and API key are all set.
func (r *Resolver) ValidateGlobal() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := r.settings
	return s.Provider != "" && s.Model != "" && s.APIKey != ""
}

// SetModuleTier overwrites one tier of one module.
func (r *Resolver) SetModuleTier(module Module, tier Tier, providerID, modelID string) Change {
	field := fmt.Sprintf("modules.%s.%s", module, tier)
	if _, err := ParseModule(string(module)); err != nil {
		return r.reject(field, err.Error(), logging.String(logging.FieldModule, string(module)))
	}
	if tier != TierPrimary && tier != TierBackup {
		return r.reject(field, fmt.Sprintf("unknown tier %q", tier), logging.String(logging.FieldModule, string(module)))
	}
	selection := Selection{Provider: strings.ToLower(strings.TrimSpace(providerID)), Model: strings.TrimSpace(modelID)}
	if r.strict {
		if reason := r.checkSelection(selection); reason != "" {
			return r.reject(field, reason, logging.String(logging.FieldModule, string(module)))
		}
	}

	r.mu.Lock()
	cfg := r.modules[module]
	if tier == TierBackup {
		cfg.Backup = selection
	} else {
		cfg.Primary = selection
	}
	r.modules[module] = cfg
	r.mu.Unlock()
	return applied(field)
}

// ModuleConfig returns both tiers for module.
func (r *Resolver) ModuleConfig(module Module) (ModuleConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.modules[module]
	return cfg, ok
}

// ModuleConfigs returns a copy of the module map.
func (r *Resolver) ModuleConfigs() map[Module]ModuleConfig {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[Module]ModuleConfig, len(r.modules))
	for module, cfg := range r.modules {
		out[module] = cfg
	}
	return out
}

// ResolveModule merges the module's tier selection with the global API key,
// temperature, and max tokens. It never falls through to the other tier.
func (r *Resolver) ResolveModule(module Module, tier Tier) (Credentials, error) {
	if tier == "" {
		tier = TierPrimary
	}
	if tier != TierPrimary && tier != TierBackup {
		return Credentials{}, services.Wrap(services.ErrValidation, "llmconfig", "resolve module", fmt.Sprintf("unknown tier %q", tier), nil)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.modules[module]
	if !ok {
		return Credentials{}, services.Wrap(services.ErrNotFound, "llmconfig", "resolve module", fmt.Sprintf("unknown module %q", module), nil)
	}
	return r.mergeLocked(cfg.tier(tier)), nil
}

// ValidateModule reports whether both tiers are complete and the global API
// key is set.
func (r *Resolver) ValidateModule(module Module) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.modules[module]
	if !ok {
		return false
	}
	return cfg.Primary.Complete() && cfg.Backup.Complete() && r.settings.APIKey != ""
}

// LoadFromEnvironment returns the environment key for providerID without
// applying it.
func (r *Resolver) LoadFromEnvironment(providerID string) string {
	return r.source.APIKey(providerID)
}

// InitializeFromEnvironment fills an empty API key from the environment for
// the current provider. Once a key is present it does nothing.
func (r *Resolver) InitializeFromEnvironment() Change {
	r.mu.RLock()
	providerID, hasKey := r.settings.Provider, r.settings.APIKey != ""
	r.mu.RUnlock()
	if hasKey {
		return rejected("apiKey", ReasonAPIKeyAlreadySet)
	}
	if providerID == "" {
		return rejected("apiKey", "no provider selected")
	}
	key := r.source.APIKey(providerID)
	if key == "" {
		return rejected("apiKey", fmt.Sprintf("no environment key for provider %q", providerID))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.settings.APIKey != "" {
		return rejected("apiKey", ReasonAPIKeyAlreadySet)
	}
	r.settings.APIKey = key
	r.logger.Info("api key loaded from environment", logging.String(logging.FieldProvider, providerID))
	return applied("apiKey")
}

// SetReverseEngineeringLLM overwrites the design or code selection.
func (r *Resolver) SetReverseEngineeringLLM(kind Kind, providerID, modelID string) Change {
	field := fmt.Sprintf("reverseEngineering.%s", kind)
	if kind != KindDesign && kind != KindCode {
		return r.reject(field, fmt.Sprintf("unknown reverse-engineering kind %q", kind))
	}
	selection := Selection{Provider: strings.ToLower(strings.TrimSpace(providerID)), Model: strings.TrimSpace(modelID)}
	if !selection.Complete() {
		return r.reject(field, "provider and model are required")
	}
	r.mu.Lock()
	if kind == KindCode {
		r.reverse.Code = selection
	} else {
		r.reverse.Design = selection
	}
	r.mu.Unlock()
	return applied(field)
}

// ReverseEngineering returns a copy of the design and code selections.
func (r *Resolver) ReverseEngineering() ReverseEngineering {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.reverse
}

// ResolveReverseEngineering merges the kind's selection with the global
// credential.
func (r *Resolver) ResolveReverseEngineering(kind Kind) Credentials {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mergeLocked(r.reverse.kind(kind))
}

func (r *Resolver) mergeLocked(selection Selection) Credentials {
	return Credentials{
		Provider:    selection.Provider,
		Model:       selection.Model,
		APIKey:      r.settings.APIKey,
		Temperature: r.settings.Temperature,
		MaxTokens:   r.settings.MaxTokens,
	}
}

func (r *Resolver) checkSelection(selection Selection) string {
	provider, ok := r.catalog.Lookup(selection.Provider)
	if !ok {
		return fmt.Sprintf("unknown provider %q", selection.Provider)
	}
	if !provider.HasModel(selection.Model) {
		return fmt.Sprintf("model %q is not offered by provider %q", selection.Model, provider.ID)
	}
	return ""
}

func (r *Resolver) reject(field, reason string, attrs ...logging.Attr) Change {
	attrs = append(attrs, logging.String("field", field), logging.String("reason", reason))
	logging.WarnWithContext(r.logger, "llm setting rejected", "llm_setting_rejected",
		"check the value against `aura providers` and retry", attrs...)
	return rejected(field, reason)
}

// MaskKey hides all but the last four characters of key. Short keys are
// fully masked.
func MaskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// Masked returns a copy of s safe to display.
func (s Settings) Masked() Settings {
	s.APIKey = MaskKey(s.APIKey)
	return s
}

// Masked returns a copy of c safe to display.
func (c Credentials) Masked() Credentials {
	c.APIKey = MaskKey(c.APIKey)
	return c
}

// pathLikeKey reports whether key looks like a file path rather than a key.
func pathLikeKey(key string) bool {
	return strings.ContainsAny(key, `\/:`)
}
