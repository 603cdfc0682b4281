// Package api provides HTTP handlers for the CalmMom API.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/calmmom/calmmom/internal/anthropic"
	"github.com/calmmom/calmmom/internal/domain"
	"github.com/calmmom/calmmom/internal/gumroad"
	"github.com/calmmom/calmmom/internal/session"
	"github.com/go-chi/chi/v5"
)

// maxRequestBodySize caps request bodies (1MB).
const maxRequestBodySize = 1 << 20

// Handler serves the vendor passthrough endpoints and the session API.
type Handler struct {
	inference *anthropic.Client
	verifier  *gumroad.Client
	sessions  *session.Controller
}

// NewHandler creates a new Handler.
func NewHandler(inference *anthropic.Client, verifier *gumroad.Client, sessions *session.Controller) *Handler {
	return &Handler{
		inference: inference,
		verifier:  verifier,
		sessions:  sessions,
	}
}

// JSON writes a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error": "failed to encode response"}`, http.StatusInternalServerError)
	}
}

// Error writes a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// MethodNotAllowed is the router-level handler giving unsupported methods a
// JSON envelope instead of chi's plain-text default.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	Error(w, http.StatusMethodNotAllowed, "Method not allowed")
}

// RegisterRoutes registers every API route.
func (h *Handler) RegisterRoutes(r chi.Router) {
	// Vendor passthroughs: the server holds the credentials, the client never
	// talks to the vendors directly.
	r.Post("/api/chat", h.handleChat)
	r.Post("/api/verify-license", h.handleVerifyLicense)

	// Session API.
	r.Get("/api/session", h.handleSession)
	r.Post("/api/session/license", h.handleSubmitLicense)
	r.Post("/api/session/message", h.handleSendMessage)
	r.Delete("/api/session/messages", h.handleClearChat)
	r.Post("/api/session/checkin", h.handleCheckIn)
	r.Post("/api/session/actions", h.handleAddAction)
	r.Post("/api/session/actions/{id}/toggle", h.handleToggleAction)
	r.Post("/api/session/advisory/dismiss", h.handleDismissAdvisory)
	r.Post("/api/templates", h.handleTemplate)

	// WebSocket chat transport.
	r.Get("/ws/chat", h.handleChatSocket)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		Error(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

type chatRequest struct {
	Messages []anthropic.Message `json:"messages"`
	System   string              `json:"system"`
}

// handleChat is the inference passthrough: it forwards the request to the
// upstream chat-completion API with server-held credentials and echoes
// upstream's status and error detail on failure.
func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Messages) == 0 || req.System == "" {
		Error(w, http.StatusBadRequest, "Messages and system prompt are required")
		return
	}

	content, err := h.inference.Complete(r.Context(), req.System, req.Messages)
	if err != nil {
		var apiErr *anthropic.APIError
		if errors.As(err, &apiErr) {
			details := json.RawMessage(apiErr.Body)
			if !json.Valid(details) {
				details, _ = json.Marshal(string(apiErr.Body))
			}
			JSON(w, apiErr.StatusCode, map[string]interface{}{
				"error":   "Failed to get response from AI",
				"details": details,
			})
			return
		}
		JSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error":   "Internal server error",
			"message": err.Error(),
		})
		return
	}

	JSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"content": content,
	})
}

type verifyLicenseRequest struct {
	LicenseKey string `json:"license_key"`
}

// handleVerifyLicense is the license passthrough. A refunded or chargebacked
// purchase is reported as invalid even when the vendor accepts the key.
func (h *Handler) handleVerifyLicense(w http.ResponseWriter, r *http.Request) {
	var req verifyLicenseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.LicenseKey == "" {
		JSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   "License key is required",
		})
		return
	}

	v, err := h.verifier.Verify(r.Context(), req.LicenseKey)
	if err != nil {
		JSON(w, http.StatusInternalServerError, map[string]interface{}{
			"success": false,
			"error":   "Verification service temporarily unavailable",
		})
		return
	}

	switch {
	case v.Refunded:
		JSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"error":   "This license has been refunded or chargebacked",
		})
	case v.Valid:
		JSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"purchase": domain.Purchase{
				Email:         v.Purchase.Email,
				SaleTimestamp: v.Purchase.SaleTimestamp,
			},
		})
	default:
		JSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"error":   "Invalid license key",
		})
	}
}
