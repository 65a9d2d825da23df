package llmconfig

import (
	"os"
	"strings"
)

// Source supplies provider API keys. Implementations are read-only.
type Source interface {
	APIKey(providerID string) string
}

// providerEnvKeys lists the environment variables consulted per provider, in
// precedence order.
var providerEnvKeys = map[string][]string{
	"openai": {"OPENAI_API_KEY"},
	"google": {"GOOGLE_API_KEY", "GEMINI_API_KEY"},
}

// EnvKeys returns the environment variables consulted for providerID. Unknown
// providers map to <PROVIDER>_API_KEY.
func EnvKeys(providerID string) []string {
	id := strings.ToLower(strings.TrimSpace(providerID))
	if id == "" {
		return nil
	}
	if keys, ok := providerEnvKeys[id]; ok {
		return append([]string(nil), keys...)
	}
	normalized := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(id))
	return []string{normalized + "_API_KEY"}
}

// EnvSource reads provider keys from the process environment.
type EnvSource struct {
	lookup func(string) (string, bool)
}

// NewEnvSource returns a Source backed by os.LookupEnv.
func NewEnvSource() EnvSource {
	return EnvSource{lookup: os.LookupEnv}
}

// APIKey returns the first non-empty key configured for providerID.
func (s EnvSource) APIKey(providerID string) string {
	lookup := s.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, key := range EnvKeys(providerID) {
		if value, ok := lookup(key); ok {
			if trimmed := strings.TrimSpace(value); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}

// StaticSource is a fixed provider→key map.
type StaticSource map[string]string

// APIKey returns the key stored for providerID.
func (s StaticSource) APIKey(providerID string) string {
	return s[strings.ToLower(strings.TrimSpace(providerID))]
}
