package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"bloomkart/internal/model"
	"bloomkart/internal/service"
)

// FloristHandler handles florist directory HTTP requests.
type FloristHandler struct {
	service service.FloristService
	logger  zerolog.Logger
}

// NewFloristHandler creates a new florist handler.
func NewFloristHandler(service service.FloristService, logger zerolog.Logger) *FloristHandler {
	return &FloristHandler{
		service: service,
		logger:  logger.With().Str("handler", "florist").Logger(),
	}
}

// GetAvailable handles GET /api/florists requests.
func (h *FloristHandler) GetAvailable(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	florists, err := h.service.GetAvailable(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, model.ErrCodeInternalError, "failed to retrieve florists", h.logger)
		return
	}

	writeJSON(w, http.StatusOK, florists)
}

// GetByID handles GET /api/florists/{id} requests.
func (h *FloristHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	// Expecting path: /api/florists/{id}
	path := r.URL.Path
	if len(path) < len("/api/florists/") {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "florist ID is required", h.logger)
		return
	}
	floristID := path[len("/api/florists/"):]

	if floristID == "" {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "florist ID is required", h.logger)
		return
	}

	florist, err := h.service.GetByID(r.Context(), floristID)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, florist)
}
