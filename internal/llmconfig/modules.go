package llmconfig

import (
	"fmt"
	"strings"
)

// Module identifies an application feature area with its own LLM routing.
type Module string

const (
	ModuleUseCases     Module = "use-cases"
	ModuleRequirements Module = "requirements"
	ModuleDesign       Module = "design"
	ModuleCode         Module = "code"
	ModuleTestCases    Module = "test-cases"
	ModuleExecution    Module = "execution"
	ModuleDefects      Module = "defects"
	ModuleTraceability Module = "traceability"
)

var allModules = []Module{
	ModuleUseCases,
	ModuleRequirements,
	ModuleDesign,
	ModuleCode,
	ModuleTestCases,
	ModuleExecution,
	ModuleDefects,
	ModuleTraceability,
}

// Modules returns the closed module set in display order.
func Modules() []Module {
	return append([]Module(nil), allModules...)
}

// ParseModule converts raw into a known module.
func ParseModule(raw string) (Module, error) {
	candidate := Module(strings.ToLower(strings.TrimSpace(raw)))
	for _, module := range allModules {
		if module == candidate {
			return module, nil
		}
	}
	return "", fmt.Errorf("unknown module %q", raw)
}

// Tier selects the preferred or fallback model for a module.
type Tier string

const (
	TierPrimary Tier = "primary"
	TierBackup  Tier = "backup"
)

// ParseTier converts raw into a tier. Empty input means primary.
func ParseTier(raw string) (Tier, error) {
	switch Tier(strings.ToLower(strings.TrimSpace(raw))) {
	case "", TierPrimary:
		return TierPrimary, nil
	case TierBackup:
		return TierBackup, nil
	default:
		return "", fmt.Errorf("unknown tier %q", raw)
	}
}

// Kind selects one of the reverse-engineering tracks.
type Kind string

const (
	KindDesign Kind = "design"
	KindCode   Kind = "code"
)

// ParseKind converts raw into a reverse-engineering kind.
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindDesign:
		return KindDesign, nil
	case KindCode:
		return KindCode, nil
	default:
		return "", fmt.Errorf("unknown reverse-engineering kind %q", raw)
	}
}

// Selection is a provider/model pair.
type Selection struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// Complete reports whether both fields are set.
func (s Selection) Complete() bool {
	return strings.TrimSpace(s.Provider) != "" && strings.TrimSpace(s.Model) != ""
}

func (s Selection) String() string {
	return s.Provider + "/" + s.Model
}

// ModuleConfig holds both tiers for one module.
type ModuleConfig struct {
	Primary Selection `json:"primary"`
	Backup  Selection `json:"backup"`
}

func (m ModuleConfig) tier(t Tier) Selection {
	if t == TierBackup {
		return m.Backup
	}
	return m.Primary
}

// ReverseEngineering holds the design and code selections.
type ReverseEngineering struct {
	Design Selection `json:"design"`
	Code   Selection `json:"code"`
}

func (r ReverseEngineering) kind(k Kind) Selection {
	if k == KindCode {
		return r.Code
	}
	return r.Design
}

// defaultModuleConfig uses primaryProvider's first model as primary and the
// next catalog provider's first model as backup.
func defaultModuleConfig(catalog *Catalog, primaryProvider string) ModuleConfig {
	primary, ok := catalog.Lookup(primaryProvider)
	if !ok {
		primary = catalog.First()
	}
	cfg := ModuleConfig{
		Primary: Selection{Provider: primary.ID, Model: primary.FirstModel()},
	}
	if backup, ok := catalog.Alternate(primary.ID); ok {
		cfg.Backup = Selection{Provider: backup.ID, Model: backup.FirstModel()}
	} else {
		cfg.Backup = cfg.Primary
	}
	return cfg
}

func defaultModuleMap(catalog *Catalog, primaryProvider string) map[Module]ModuleConfig {
	out := make(map[Module]ModuleConfig, len(allModules))
	for _, module := range allModules {
		out[module] = defaultModuleConfig(catalog, primaryProvider)
	}
	return out
}
