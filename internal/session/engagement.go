package session

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/calmmom/calmmom/internal/domain"
	"github.com/google/uuid"
)

// CompleteCheckIn records today's check-in. The sequence commits the
// last-check-in timestamp and streak before the inference call, so a gateway
// failure leaves the check-in completed with no assistant reply; completion
// is never rolled back.
func (c *Controller) CompleteCheckIn(ctx context.Context, userID string, ci domain.CheckIn) (Snapshot, error) {
	s := c.forUser(userID)
	s.mu.Lock()
	c.hydrateLocked(ctx, s)

	if s.status != domain.Licensed {
		defer s.mu.Unlock()
		return c.snapshotLocked(s), ErrNotLicensed
	}
	if s.busy {
		defer s.mu.Unlock()
		return c.snapshotLocked(s), ErrBusy
	}
	if err := ci.Validate(); err != nil {
		defer s.mu.Unlock()
		return c.snapshotLocked(s), err
	}
	if !domain.CheckInPending(s.lastCheckIn, c.now()) {
		defer s.mu.Unlock()
		return c.snapshotLocked(s), ErrCheckInDone
	}

	// Commit completion first: timestamp, then streak.
	now := c.now()
	s.lastCheckIn = now
	c.persistLocked(ctx, s, keyLastCheckIn, now.Format(time.RFC3339))
	s.streak++
	c.persistLocked(ctx, s, keyStreak, strconv.Itoa(s.streak))
	s.checkIn = &ci

	// Seed the conversation with the synthetic opener and ask for a reply.
	s.busy = true
	s.turns = append(s.turns, domain.ChatTurn{Role: domain.RoleUser, Text: ci.OpenerText()})
	history := append([]domain.ChatTurn(nil), s.turns...)
	s.mu.Unlock()

	reply, err := c.gateway.Reply(ctx, systemPrompt+checkInOpenerNote, history)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false

	if err != nil {
		// Streak and timestamp are already committed; the opener simply gets
		// no reply.
		slog.Warn("check-in inference call failed", "user_id", userID, "error", err)
	} else {
		s.turns = append(s.turns, domain.ChatTurn{Role: domain.RoleAssistant, Text: reply})
		c.persistTurnsLocked(ctx, s)
	}

	if !s.advisory && !s.advisoryDismissed && detectOverwhelm(s.turns) {
		s.advisory = true
	}
	return c.snapshotLocked(s), nil
}

// AddAction appends a new action item and persists the full list.
func (c *Controller) AddAction(ctx context.Context, userID, label string) (Snapshot, error) {
	s := c.forUser(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	c.hydrateLocked(ctx, s)

	if s.status != domain.Licensed {
		return c.snapshotLocked(s), ErrNotLicensed
	}

	s.actions = append(s.actions, domain.ActionItem{
		ID:    uuid.NewString(),
		Label: label,
	})
	c.persistActionsLocked(ctx, s)
	return c.snapshotLocked(s), nil
}

// ToggleAction flips an item's completion, stamping or clearing its
// completion date, and persists the full list. The "completed today" count is
// recomputed from completion dates, never stored.
func (c *Controller) ToggleAction(ctx context.Context, userID, id string) (Snapshot, error) {
	s := c.forUser(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	c.hydrateLocked(ctx, s)

	if s.status != domain.Licensed {
		return c.snapshotLocked(s), ErrNotLicensed
	}

	for i := range s.actions {
		if s.actions[i].ID == id {
			s.actions[i].Toggle(c.now())
			c.persistActionsLocked(ctx, s)
			return c.snapshotLocked(s), nil
		}
	}
	return c.snapshotLocked(s), ErrActionNotFound
}
