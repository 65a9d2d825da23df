package api

import (
	"aura/internal/analysis"
	"aura/internal/llmconfig"
	"aura/internal/workitems"
)

// DesignResponse wraps a completed design analysis.
type DesignResponse struct {
	Success bool            `json:"success"`
	Data    analysis.Result `json:"data"`
	Message string          `json:"message"`
}

// ErrorResponse is returned for every failed request.
type ErrorResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Error   string                `json:"error,omitempty"`
	Errors  []analysis.FieldError `json:"errors,omitempty"`
}

// InitiativesResponse lists initiative rows newest first.
type InitiativesResponse struct {
	Success bool            `json:"success"`
	Data    []workitems.Row `json:"data"`
	Count   int             `json:"count"`
	Message string          `json:"message"`
}

// SettingsResponse is the masked resolver snapshot plus validity flags.
type SettingsResponse struct {
	LLMSettings                   llmconfig.Settings                          `json:"llmSettings"`
	ModuleLLMSettings             map[llmconfig.Module]llmconfig.ModuleConfig `json:"moduleLLMSettings"`
	ReverseEngineeringLLMSettings llmconfig.ReverseEngineering                `json:"reverseEngineeringLLMSettings"`
	GlobalValid                   bool                                        `json:"globalValid"`
	ModuleValid                   map[llmconfig.Module]bool                   `json:"moduleValid"`
}

// ChangesResponse reports the outcome of each setter a mutation ran.
type ChangesResponse struct {
	Success bool               `json:"success"`
	Changes []llmconfig.Change `json:"changes"`
	Message string             `json:"message"`
}

// SelectionRequest is the body for module tier and reverse-engineering updates.
type SelectionRequest struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// ResolveResponse carries masked credentials for one module tier.
type ResolveResponse struct {
	Success     bool                  `json:"success"`
	Module      llmconfig.Module      `json:"module"`
	Tier        llmconfig.Tier        `json:"tier"`
	Credentials llmconfig.Credentials `json:"credentials"`
	Valid       bool                  `json:"valid"`
}

// ProvidersResponse lists the provider catalog.
type ProvidersResponse struct {
	Providers []llmconfig.Provider `json:"providers"`
}
