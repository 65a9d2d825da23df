package api

import (
	"io"
	"net/http"

	"aura/internal/analysis"
	"aura/internal/logging"
)

const (
	messageDesignSucceeded = "Design reverse engineered successfully"
	messageInvalidRequest  = "Invalid request data"
	messageDesignFailed    = "Failed to reverse engineer design"
)

func (s *Server) handleReverseEngineerDesign(w http.ResponseWriter, r *http.Request) {
	if s.design == nil {
		s.writeError(w, http.StatusServiceUnavailable, "design analysis is not configured")
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Message: messageInvalidRequest,
			Error:   err.Error(),
		})
		return
	}

	req, err := analysis.DecodeRequest(body)
	if err == nil {
		var result analysis.Result
		result, err = s.design.ReverseEngineerDesign(r.Context(), req)
		if err == nil {
			s.writeJSON(w, http.StatusOK, DesignResponse{
				Success: true,
				Data:    result,
				Message: messageDesignSucceeded,
			})
			return
		}
	}

	if shape, ok := analysis.AsRequestShapeError(err); ok {
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Message: messageInvalidRequest,
			Errors:  shape.Fields,
		})
		return
	}
	logging.WithContext(r.Context(), s.logger).Error("design reverse engineering failed", logging.Error(err))
	message := err.Error()
	if message == "" {
		message = messageDesignFailed
	}
	s.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Message: message})
}
