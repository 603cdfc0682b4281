package api

import (
	"errors"
	"net/http"

	"github.com/calmmom/calmmom/internal/domain"
	"github.com/calmmom/calmmom/internal/identity"
	"github.com/calmmom/calmmom/internal/session"
	"github.com/calmmom/calmmom/internal/templates"
	"github.com/go-chi/chi/v5"
)

// writeTransitionError maps controller guard violations to HTTP statuses.
func writeTransitionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotLicensed):
		Error(w, http.StatusForbidden, "A valid license is required")
	case errors.Is(err, session.ErrBusy):
		Error(w, http.StatusConflict, "A message is already being processed")
	case errors.Is(err, session.ErrCheckInDone):
		Error(w, http.StatusConflict, "Today's check-in is already complete")
	case errors.Is(err, session.ErrActionNotFound):
		Error(w, http.StatusNotFound, "Action item not found")
	default:
		Error(w, http.StatusBadRequest, err.Error())
	}
}

// handleSession returns the hydrated session snapshot, attempting silent
// license reactivation on first contact.
func (h *Handler) handleSession(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	JSON(w, http.StatusOK, h.sessions.Hydrate(r.Context(), userID))
}

type submitLicenseRequest struct {
	LicenseKey string `json:"license_key"`
}

func (h *Handler) handleSubmitLicense(w http.ResponseWriter, r *http.Request) {
	var req submitLicenseRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.LicenseKey == "" {
		Error(w, http.StatusBadRequest, "License key is required")
		return
	}

	userID := identity.UserIDFromContext(r.Context())
	JSON(w, http.StatusOK, h.sessions.SubmitLicense(r.Context(), userID, req.LicenseKey))
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Text == "" {
		Error(w, http.StatusBadRequest, "Message text is required")
		return
	}

	userID := identity.UserIDFromContext(r.Context())
	snap, err := h.sessions.SendMessage(r.Context(), userID, req.Text)
	if err != nil {
		writeTransitionError(w, err)
		return
	}
	JSON(w, http.StatusOK, snap)
}

func (h *Handler) handleClearChat(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	JSON(w, http.StatusOK, h.sessions.ClearChat(r.Context(), userID))
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	var req domain.CheckIn
	if !decodeBody(w, r, &req) {
		return
	}

	userID := identity.UserIDFromContext(r.Context())
	snap, err := h.sessions.CompleteCheckIn(r.Context(), userID, req)
	if err != nil {
		writeTransitionError(w, err)
		return
	}
	JSON(w, http.StatusOK, snap)
}

type addActionRequest struct {
	Label string `json:"label"`
}

func (h *Handler) handleAddAction(w http.ResponseWriter, r *http.Request) {
	var req addActionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Label == "" {
		Error(w, http.StatusBadRequest, "Label is required")
		return
	}

	userID := identity.UserIDFromContext(r.Context())
	snap, err := h.sessions.AddAction(r.Context(), userID, req.Label)
	if err != nil {
		writeTransitionError(w, err)
		return
	}
	JSON(w, http.StatusOK, snap)
}

func (h *Handler) handleToggleAction(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	snap, err := h.sessions.ToggleAction(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		writeTransitionError(w, err)
		return
	}
	JSON(w, http.StatusOK, snap)
}

func (h *Handler) handleDismissAdvisory(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	JSON(w, http.StatusOK, h.sessions.DismissAdvisory(r.Context(), userID))
}

type templateRequest struct {
	Kind   templates.Kind   `json:"kind"`
	Fields templates.Fields `json:"fields"`
}

func (h *Handler) handleTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	doc, err := templates.Generate(req.Kind, req.Fields)
	if err != nil {
		Error(w, http.StatusBadRequest, err.Error())
		return
	}
	JSON(w, http.StatusOK, doc)
}
