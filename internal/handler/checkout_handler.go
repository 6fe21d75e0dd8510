package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"bloomkart/internal/model"
	"bloomkart/internal/service"
)

// CheckoutHandler handles checkout-related HTTP requests.
type CheckoutHandler struct {
	service service.CheckoutService
	logger  zerolog.Logger
}

// NewCheckoutHandler creates a new checkout handler.
func NewCheckoutHandler(service service.CheckoutService, logger zerolog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		service: service,
		logger:  logger.With().Str("handler", "checkout").Logger(),
	}
}

// Quote handles POST /api/checkout/quote requests. It prices the cart
// without opening a payment session.
func (h *CheckoutHandler) Quote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	quote, err := h.service.Quote(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, quote)
}

// Create handles POST /api/checkout requests. It prices the cart and
// opens a hosted payment session.
func (h *CheckoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	req, ok := h.decodeRequest(w, r)
	if !ok {
		return
	}

	resp, err := h.service.Checkout(r.Context(), req)
	if err != nil {
		writeDomainError(w, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Status handles GET /api/checkout/{sessionID} requests. With ?wait=true
// the call blocks until the session settles or the request is cancelled.
func (h *CheckoutHandler) Status(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	sessionID, ok := h.sessionIDFromPath(w, r.URL.Path)
	if !ok {
		return
	}

	if r.URL.Query().Get("wait") == "true" {
		outcome, err := h.service.Await(r.Context(), sessionID)
		if err != nil {
			writeError(w, http.StatusRequestTimeout, model.ErrCodeInternalError, "wait interrupted", h.logger)
			return
		}
		writeJSON(w, http.StatusOK, outcome)
		return
	}

	writeJSON(w, http.StatusOK, h.service.Status(r.Context(), sessionID))
}

// Abandon handles POST /api/checkout/{sessionID}/abandon requests.
func (h *CheckoutHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, model.ErrCodeMethodNotAllowed, "method not allowed", h.logger)
		return
	}

	path := strings.TrimSuffix(r.URL.Path, "/abandon")
	sessionID, ok := h.sessionIDFromPath(w, path)
	if !ok {
		return
	}

	h.service.Abandon(sessionID)
	writeJSON(w, http.StatusOK, h.service.Status(r.Context(), sessionID))
}

// decodeRequest parses the checkout request body, writing the error
// response itself on failure.
func (h *CheckoutHandler) decodeRequest(w http.ResponseWriter, r *http.Request) (*model.CheckoutRequest, bool) {
	var req model.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, model.ErrCodeInvalidJSON, "invalid request body", h.logger)
		return nil, false
	}
	return &req, true
}

// sessionIDFromPath extracts the session id from /api/checkout/{sessionID}.
func (h *CheckoutHandler) sessionIDFromPath(w http.ResponseWriter, path string) (string, bool) {
	const prefix = "/api/checkout/"
	if !strings.HasPrefix(path, prefix) || path == prefix {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "session ID is required", h.logger)
		return "", false
	}
	sessionID := strings.Trim(path[len(prefix):], "/")
	if sessionID == "" || strings.Contains(sessionID, "/") {
		writeError(w, http.StatusBadRequest, model.ErrCodeMissingField, "session ID is required", h.logger)
		return "", false
	}
	return sessionID, true
}
