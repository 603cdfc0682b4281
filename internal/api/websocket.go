package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/calmmom/calmmom/internal/identity"
	"github.com/calmmom/calmmom/internal/session"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// wsInbound is a client frame on the chat socket.
type wsInbound struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// wsOutbound is a server frame on the chat socket.
type wsOutbound struct {
	Type     string            `json:"type"`
	Snapshot *session.Snapshot `json:"snapshot,omitempty"`
	Error    string            `json:"error,omitempty"`
}

// handleChatSocket is an alternative transport for the send-message
// transition: the client sends {"type":"message","text":...} frames and
// receives the updated session snapshot after each exchange. Semantics are
// identical to POST /api/session/message.
func (h *Handler) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	slog.Info("Chat socket connection request", "user_id", userID, "ip", r.RemoteAddr)

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept chat socket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close chat socket", "error", closeErr, "user_id", userID)
		}
	}()

	ctx := r.Context()
	for {
		var in wsInbound
		if err := wsjson.Read(ctx, ws, &in); err != nil {
			if ctx.Err() == nil && websocket.CloseStatus(err) == -1 {
				slog.Debug("Chat socket read failed", "error", err, "user_id", userID)
			}
			return
		}

		switch in.Type {
		case "message":
			if in.Text == "" {
				h.writeSocket(ctx, ws, userID, wsOutbound{Type: "error", Error: "Message text is required"})
				continue
			}
			snap, err := h.sessions.SendMessage(ctx, userID, in.Text)
			if err != nil {
				h.writeSocket(ctx, ws, userID, wsOutbound{Type: "error", Error: transitionErrorText(err)})
				continue
			}
			h.writeSocket(ctx, ws, userID, wsOutbound{Type: "snapshot", Snapshot: &snap})
		default:
			h.writeSocket(ctx, ws, userID, wsOutbound{Type: "error", Error: "Unknown frame type"})
		}
	}
}

func (h *Handler) writeSocket(ctx context.Context, ws *websocket.Conn, userID string, out wsOutbound) {
	if err := wsjson.Write(ctx, ws, out); err != nil {
		slog.Debug("Chat socket write failed", "error", err, "user_id", userID)
	}
}

func transitionErrorText(err error) string {
	switch {
	case errors.Is(err, session.ErrNotLicensed):
		return "A valid license is required"
	case errors.Is(err, session.ErrBusy):
		return "A message is already being processed"
	default:
		return err.Error()
	}
}
