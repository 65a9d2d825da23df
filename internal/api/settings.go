package api

import (
	"encoding/json"
	"net/http"

	"aura/internal/llmconfig"
	"aura/internal/services"
)

func (s *Server) settingsView() SettingsResponse {
	snap := s.resolver.Snapshot()
	valid := make(map[llmconfig.Module]bool, len(snap.ModuleLLMSettings))
	for module := range snap.ModuleLLMSettings {
		valid[module] = s.resolver.ValidateModule(module)
	}
	return SettingsResponse{
		LLMSettings:                   snap.LLMSettings.Masked(),
		ModuleLLMSettings:             snap.ModuleLLMSettings,
		ReverseEngineeringLLMSettings: snap.ReverseEngineeringLLMSettings,
		GlobalValid:                   s.resolver.ValidateGlobal(),
		ModuleValid:                   valid,
	}
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.settingsView())
}

func (s *Server) handleUpdateLLM(w http.ResponseWriter, r *http.Request) {
	var patch llmconfig.SettingsPatch
	if !s.decodeBody(w, r, &patch) {
		return
	}
	s.respondChanges(w, r, func(res *llmconfig.Resolver) []llmconfig.Change {
		return res.UpdateSettings(patch)
	})
}

func (s *Server) handleResetLLM(w http.ResponseWriter, r *http.Request) {
	changes, err := s.applySettings(r.Context(), func(res *llmconfig.Resolver) []llmconfig.Change {
		res.ResetSettings()
		return []llmconfig.Change{{Applied: true, Field: "llmSettings"}}
	})
	if err != nil {
		s.writeError(w, services.HTTPStatus(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, ChangesResponse{
		Success: true,
		Changes: changes,
		Message: "Settings reset to defaults",
	})
}

func (s *Server) handleSetModuleTier(w http.ResponseWriter, r *http.Request) {
	module, err := llmconfig.ParseModule(r.PathValue("module"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	tier, err := llmconfig.ParseTier(r.PathValue("tier"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	var body SelectionRequest
	if !s.decodeBody(w, r, &body) {
		return
	}
	s.respondChanges(w, r, func(res *llmconfig.Resolver) []llmconfig.Change {
		return []llmconfig.Change{res.SetModuleTier(module, tier, body.Provider, body.Model)}
	})
}

func (s *Server) handleResolveModule(w http.ResponseWriter, r *http.Request) {
	module, err := llmconfig.ParseModule(r.PathValue("module"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	tier, err := llmconfig.ParseTier(r.URL.Query().Get("tier"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	creds, err := s.resolver.ResolveModule(module, tier)
	if err != nil {
		s.writeError(w, services.HTTPStatus(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, ResolveResponse{
		Success:     true,
		Module:      module,
		Tier:        tier,
		Credentials: creds.Masked(),
		Valid:       s.resolver.ValidateModule(module),
	})
}

func (s *Server) handleSetReverseEngineering(w http.ResponseWriter, r *http.Request) {
	kind, err := llmconfig.ParseKind(r.PathValue("kind"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	var body SelectionRequest
	if !s.decodeBody(w, r, &body) {
		return
	}
	s.respondChanges(w, r, func(res *llmconfig.Resolver) []llmconfig.Change {
		return []llmconfig.Change{res.SetReverseEngineeringLLM(kind, body.Provider, body.Model)}
	})
}

func (s *Server) handleProviders(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, ProvidersResponse{Providers: s.resolver.Catalog().Providers()})
}

// respondChanges applies mutate as one persisted update and answers 422 when
// anything was rejected.
func (s *Server) respondChanges(w http.ResponseWriter, r *http.Request, mutate func(*llmconfig.Resolver) []llmconfig.Change) {
	changes, err := s.applySettings(r.Context(), mutate)
	if err != nil {
		s.writeError(w, services.HTTPStatus(err), err.Error())
		return
	}
	if changes == nil {
		changes = []llmconfig.Change{}
	}
	anyRejected := false
	for _, change := range changes {
		if !change.Applied {
			anyRejected = true
		}
	}
	status := http.StatusOK
	message := "Settings updated"
	if anyRejected {
		status = http.StatusUnprocessableEntity
		message = "One or more settings were rejected"
	}
	s.writeJSON(w, status, ChangesResponse{
		Success: !anyRejected,
		Changes: changes,
		Message: message,
	})
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := decoder.Decode(target); err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: messageInvalidRequest, Error: err.Error()})
		return false
	}
	return true
}
