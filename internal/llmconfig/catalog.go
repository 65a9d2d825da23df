package llmconfig

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Model describes one model offered by a provider.
type Model struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	MaxTokens   int    `yaml:"max_tokens,omitempty" json:"maxTokens,omitempty"`
}

// Provider is an LLM vendor with an ordered model list. The first model is
// the provider default.
type Provider struct {
	ID     string  `yaml:"id" json:"id"`
	Name   string  `yaml:"name" json:"name"`
	Models []Model `yaml:"models" json:"models"`
}

// FirstModel returns the provider's default model id.
func (p Provider) FirstModel() string {
	if len(p.Models) == 0 {
		return ""
	}
	return p.Models[0].ID
}

// HasModel reports whether id is in the provider's model list.
func (p Provider) HasModel(id string) bool {
	for _, model := range p.Models {
		if model.ID == id {
			return true
		}
	}
	return false
}

// Catalog is the ordered, read-only provider list.
type Catalog struct {
	providers []Provider
}

// NewCatalog validates providers and returns a catalog that owns a copy of them.
func NewCatalog(providers []Provider) (*Catalog, error) {
	if len(providers) == 0 {
		return nil, errors.New("catalog must define at least one provider")
	}
	seen := make(map[string]struct{}, len(providers))
	copied := make([]Provider, 0, len(providers))
	for i, provider := range providers {
		id := strings.ToLower(strings.TrimSpace(provider.ID))
		if id == "" {
			return nil, fmt.Errorf("provider %d: id is required", i)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("provider %q defined more than once", id)
		}
		seen[id] = struct{}{}
		if len(provider.Models) == 0 {
			return nil, fmt.Errorf("provider %q: at least one model is required", id)
		}
		models := make([]Model, len(provider.Models))
		for j, model := range provider.Models {
			model.ID = strings.TrimSpace(model.ID)
			if model.ID == "" {
				return nil, fmt.Errorf("provider %q model %d: id is required", id, j)
			}
			if model.Name == "" {
				model.Name = model.ID
			}
			models[j] = model
		}
		name := strings.TrimSpace(provider.Name)
		if name == "" {
			name = id
		}
		copied = append(copied, Provider{ID: id, Name: name, Models: models})
	}
	return &Catalog{providers: copied}, nil
}

// DefaultCatalog returns the built-in OpenAI and Google catalog.
func DefaultCatalog() *Catalog {
	catalog, err := NewCatalog([]Provider{
		{
			ID:   "openai",
			Name: "OpenAI",
			Models: []Model{
				{ID: "gpt-4", Name: "GPT-4", Description: "Most capable GPT-4 model", MaxTokens: 8192},
				{ID: "gpt-4-turbo", Name: "GPT-4 Turbo", Description: "Faster GPT-4 with a larger context window", MaxTokens: 128000},
				{ID: "gpt-3.5-turbo", Name: "GPT-3.5 Turbo", Description: "Fast and cost-effective", MaxTokens: 4096},
			},
		},
		{
			ID:   "google",
			Name: "Google",
			Models: []Model{
				{ID: "gemini-pro", Name: "Gemini Pro", Description: "Google's most capable text model", MaxTokens: 30720},
				{ID: "gemini-pro-vision", Name: "Gemini Pro Vision", Description: "Multimodal model for text and images", MaxTokens: 30720},
			},
		},
	})
	if err != nil {
		panic(fmt.Sprintf("default catalog: %v", err))
	}
	return catalog
}

type catalogFile struct {
	Providers []Provider `yaml:"providers"`
}

// LoadCatalog reads a YAML catalog from path. An empty path yields the
// default catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog %q: %w", path, err)
	}
	catalog, err := NewCatalog(file.Providers)
	if err != nil {
		return nil, fmt.Errorf("catalog %q: %w", path, err)
	}
	return catalog, nil
}

// Providers returns a copy of the provider list in catalog order.
func (c *Catalog) Providers() []Provider {
	out := make([]Provider, len(c.providers))
	for i, provider := range c.providers {
		provider.Models = append([]Model(nil), provider.Models...)
		out[i] = provider
	}
	return out
}

// Lookup finds a provider by id.
func (c *Catalog) Lookup(id string) (Provider, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, provider := range c.providers {
		if provider.ID == id {
			return provider, true
		}
	}
	return Provider{}, false
}

// First returns the first provider in the catalog.
func (c *Catalog) First() Provider {
	return c.providers[0]
}

// Alternate returns the first provider whose id differs from id, or false when
// the catalog has a single provider.
func (c *Catalog) Alternate(id string) (Provider, bool) {
	for _, provider := range c.providers {
		if provider.ID != id {
			return provider, true
		}
	}
	return Provider{}, false
}
