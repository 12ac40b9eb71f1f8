package nutrition

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/fdg312/meal-lens/internal/reqctx"
)

// Handler handles HTTP requests for biometric assessments.
type Handler struct {
	service *Service
}

// NewHandler creates a new nutrition handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleAssess handles POST /v1/assessment
func (h *Handler) HandleAssess(w http.ResponseWriter, r *http.Request) {
	var req AssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_payload", "Invalid request body")
		return
	}

	result, err := h.service.Assess(req)
	if err != nil {
		if errors.Is(err, ErrInvalidRequest) {
			writeError(w, http.StatusBadRequest, "invalid_request", strings.TrimPrefix(err.Error(), ErrInvalidRequest.Error()+": "))
			return
		}
		requestID, _ := reqctx.GetRequestID(r.Context())
		log.Printf("ERROR nutrition: request_id=%s assess failed: %v", requestID, err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Failed to assess profile")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

// writeError writes an error response in the standard format.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
