package api

import (
	"net/http"

	"aura/internal/logging"
	"aura/internal/workitems"
)

func (s *Server) handleListInitiatives(w http.ResponseWriter, r *http.Request) {
	if s.initiatives == nil {
		s.writeError(w, http.StatusServiceUnavailable, "initiative storage is not configured")
		return
	}
	query := r.URL.Query()
	filter := workitems.InitiativeFilter{
		BusinessBriefID: query.Get("businessBriefId"),
		Status:          query.Get("status"),
	}
	rows, err := s.initiatives.ListInitiatives(r.Context(), filter)
	if err != nil {
		logging.WithContext(r.Context(), s.logger).Error("initiative listing failed", logging.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to fetch initiatives",
			Message: err.Error(),
		})
		return
	}
	if rows == nil {
		rows = []workitems.Row{}
	}
	s.writeJSON(w, http.StatusOK, InitiativesResponse{
		Success: true,
		Data:    rows,
		Count:   len(rows),
		Message: "Initiatives retrieved successfully",
	})
}
