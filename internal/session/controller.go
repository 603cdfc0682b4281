// Package session owns the per-user session state container: license gate,
// conversation store, daily engagement tracker, and the overwhelm advisory.
// All state transitions are intent-named methods on the Controller so
// invariants like "streak increments at most once per day" are enforced in
// one place.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/calmmom/calmmom/internal/domain"
	"github.com/calmmom/calmmom/internal/gumroad"
	"github.com/calmmom/calmmom/internal/shared"
	"github.com/calmmom/calmmom/internal/store"
)

// Gateway is the controller's view of the remote inference service.
type Gateway interface {
	Reply(ctx context.Context, system string, turns []domain.ChatTurn) (string, error)
}

// Verifier is the controller's view of the remote license service.
type Verifier interface {
	Verify(ctx context.Context, key string) (*gumroad.Verification, error)
}

// Sentinel errors for guard violations. All are non-fatal to the session;
// the caller surfaces them once and the user must re-trigger the action.
var (
	// ErrNotLicensed is returned when a transition requires a licensed session.
	ErrNotLicensed = errors.New("license required")
	// ErrBusy is returned when a message is already being processed. This is
	// the cooperative guard against overlapping sends, not a hard exclusion.
	ErrBusy = errors.New("a message is already being processed")
	// ErrCheckInDone is returned when today's check-in was already completed.
	ErrCheckInDone = errors.New("today's check-in is already complete")
	// ErrActionNotFound is returned when toggling an unknown action item.
	ErrActionNotFound = errors.New("action item not found")
)

// User-visible license gate messages.
const (
	licenseErrInvalid   = "Invalid license key. Please check and try again."
	licenseErrTransport = "Unable to verify license. Please check your connection."
)

// session holds one user's in-memory state. It is created on first contact
// and hydrated from persistence lazily.
type session struct {
	mu       sync.Mutex
	userID   string
	hydrated bool

	status       domain.LicenseStatus
	licenseKey   string
	licenseError string

	turns []domain.ChatTurn
	busy  bool

	checkIn     *domain.CheckIn
	lastCheckIn time.Time
	streak      int
	actions     []domain.ActionItem

	advisory          bool
	advisoryDismissed bool

	// dirty holds serialized values whose durable write failed; they are
	// retried on the next mutation. In-memory state is never rolled back.
	dirty map[string]string
}

// Controller owns every live session and the collaborators the transitions
// need. One instance serves the whole process.
type Controller struct {
	repo     store.Repository
	gateway  Gateway
	verifier Verifier
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewController creates a session controller.
func NewController(repo store.Repository, gateway Gateway, verifier Verifier) *Controller {
	return &Controller{
		repo:     repo,
		gateway:  gateway,
		verifier: verifier,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Snapshot is the client-facing view of a session, returned by every
// transition so the SPA can re-render from one payload.
type Snapshot struct {
	LicenseStatus  domain.LicenseStatus `json:"license_status"`
	LicenseError   string               `json:"license_error,omitempty"`
	Turns          []domain.ChatTurn    `json:"messages"`
	ShowWelcome    bool                 `json:"show_welcome"`
	CheckInPending bool                 `json:"check_in_pending"`
	Streak         int                  `json:"streak"`
	Actions        []domain.ActionItem  `json:"action_items"`
	CompletedToday int                  `json:"completed_today"`
	Advisory       bool                 `json:"advisory"`
	AdvisoryText   string               `json:"advisory_text,omitempty"`
}

func (c *Controller) forUser(userID string) *session {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.sessions[userID]
	if !ok {
		s = &session{
			userID: userID,
			status: domain.LicenseChecking,
			dirty:  make(map[string]string),
		}
		c.sessions[userID] = s
	}
	return s
}

// Hydrate loads (or returns) the session for a user, attempting silent
// license reactivation from persisted state on first load.
func (c *Controller) Hydrate(ctx context.Context, userID string) Snapshot {
	s := c.forUser(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	c.hydrateLocked(ctx, s)
	return c.snapshotLocked(s)
}

func (c *Controller) hydrateLocked(ctx context.Context, s *session) {
	if s.hydrated {
		return
	}
	s.hydrated = true
	s.status = domain.Unlicensed

	key, ok, err := c.repo.Get(ctx, s.userID, keyLicense)
	if err != nil {
		slog.Warn("failed to read stored license", "user_id", s.userID, "error", err)
		return
	}
	if !ok || key == "" {
		return
	}

	// Silent verification: any failure, network included, leaves the session
	// unlicensed without a user-facing error.
	v, err := c.verifier.Verify(ctx, key)
	if err != nil || !v.Valid {
		if err != nil {
			slog.Warn("silent license verification failed", "user_id", s.userID, "error", err)
		}
		return
	}

	s.licenseKey = key
	s.status = domain.Licensed
	c.loadStateLocked(ctx, s)
}

// loadStateLocked hydrates conversation and engagement state from the flat
// namespace. Unparseable payloads are treated as absent.
func (c *Controller) loadStateLocked(ctx context.Context, s *session) {
	if raw, ok := c.getValue(ctx, s.userID, keyMessages); ok {
		var turns []domain.ChatTurn
		if err := json.Unmarshal([]byte(raw), &turns); err != nil {
			slog.Warn("stored messages are unreadable, starting empty", "user_id", s.userID, "error", err)
		} else {
			s.turns = turns
		}
	}
	if raw, ok := c.getValue(ctx, s.userID, keyActions); ok {
		var actions []domain.ActionItem
		if err := json.Unmarshal([]byte(raw), &actions); err != nil {
			slog.Warn("stored action items are unreadable, starting empty", "user_id", s.userID, "error", err)
		} else {
			s.actions = actions
		}
	}
	if raw, ok := c.getValue(ctx, s.userID, keyLastCheckIn); ok {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			s.lastCheckIn = t
		}
	}
	if raw, ok := c.getValue(ctx, s.userID, keyStreak); ok {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			s.streak = n
		}
	}
	s.advisory = !s.advisoryDismissed && detectOverwhelm(s.turns)
}

func (c *Controller) getValue(ctx context.Context, userID, key string) (string, bool) {
	value, ok, err := c.repo.Get(ctx, userID, key)
	if err != nil {
		slog.Warn("failed to read session value", "user_id", userID, "key", key, "error", err)
		return "", false
	}
	return value, ok
}

// SubmitLicense performs a non-silent verification of a user-submitted key.
func (c *Controller) SubmitLicense(ctx context.Context, userID, key string) Snapshot {
	s := c.forUser(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	c.hydrateLocked(ctx, s)

	v, err := c.verifier.Verify(ctx, key)
	if err != nil {
		slog.Warn("license verification failed", "user_id", userID, "error", err)
		s.licenseError = licenseErrTransport
		return c.snapshotLocked(s)
	}
	if !v.Valid {
		s.licenseError = licenseErrInvalid
		return c.snapshotLocked(s)
	}

	s.licenseKey = key
	s.licenseError = ""
	wasLicensed := s.status == domain.Licensed
	s.status = domain.Licensed
	c.persistLocked(ctx, s, keyLicense, key)
	if !wasLicensed {
		c.loadStateLocked(ctx, s)
	}
	return c.snapshotLocked(s)
}

// SendMessage appends a user turn, calls the inference gateway with the full
// history, and appends the reply (or the fixed apology on failure). The
// conversation is persisted only after a successful exchange, so a failed
// exchange silently diverges from the durable copy until the next success.
func (c *Controller) SendMessage(ctx context.Context, userID, text string) (Snapshot, error) {
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

	s.busy = true
	s.turns = append(s.turns, domain.ChatTurn{Role: domain.RoleUser, Text: text})
	history := append([]domain.ChatTurn(nil), s.turns...)
	system := c.systemPromptLocked(s)
	s.mu.Unlock()

	// The gateway call runs outside the session lock; the busy flag is the
	// only exclusion for overlapping sends.
	reply, err := c.gateway.Reply(ctx, system, history)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.busy = false

	if err != nil {
		slog.Warn("inference call failed", "user_id", userID, "error", err)
		s.turns = append(s.turns, domain.ChatTurn{Role: domain.RoleAssistant, Text: apologyText})
	} else {
		s.turns = append(s.turns, domain.ChatTurn{Role: domain.RoleAssistant, Text: reply})
		c.persistTurnsLocked(ctx, s)
	}

	if !s.advisory && !s.advisoryDismissed && detectOverwhelm(s.turns) {
		s.advisory = true
	}
	return c.snapshotLocked(s), nil
}

// ClearChat empties the conversation, removes the persisted record, and
// re-arms the overwhelm advisory.
func (c *Controller) ClearChat(ctx context.Context, userID string) Snapshot {
	s := c.forUser(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	c.hydrateLocked(ctx, s)

	s.turns = nil
	s.advisory = false
	s.advisoryDismissed = false
	delete(s.dirty, keyMessages)
	if err := c.repo.Delete(ctx, s.userID, keyMessages); err != nil {
		slog.Warn("failed to delete stored messages", "user_id", userID, "error", err)
	}
	return c.snapshotLocked(s)
}

// DismissAdvisory hides the advisory banner. It will not re-fire until the
// conversation is cleared or the session is reloaded.
func (c *Controller) DismissAdvisory(ctx context.Context, userID string) Snapshot {
	s := c.forUser(userID)
	s.mu.Lock()
	defer s.mu.Unlock()
	c.hydrateLocked(ctx, s)

	s.advisory = false
	s.advisoryDismissed = true
	return c.snapshotLocked(s)
}

// systemPromptLocked augments the base instruction with today's check-in
// context when one was completed this session.
func (c *Controller) systemPromptLocked(s *session) string {
	if s.checkIn == nil || !domain.SameCalendarDay(s.lastCheckIn, c.now()) {
		return systemPrompt
	}
	return systemPrompt +
		"\n\nCONTEXT: Today's check-in: mood " + strconv.Itoa(s.checkIn.Mood) +
		"/5, energy " + strconv.Itoa(s.checkIn.Energy) +
		"/5, top priority: " + s.checkIn.Priority + "."
}

func (c *Controller) snapshotLocked(s *session) Snapshot {
	now := c.now()
	snap := Snapshot{
		LicenseStatus:  s.status,
		LicenseError:   s.licenseError,
		Turns:          append([]domain.ChatTurn(nil), s.turns...),
		ShowWelcome:    len(s.turns) == 0,
		CheckInPending: s.status == domain.Licensed && domain.CheckInPending(s.lastCheckIn, now),
		Streak:         s.streak,
		Actions:        append([]domain.ActionItem(nil), s.actions...),
		CompletedToday: domain.CompletedToday(s.actions, now),
		Advisory:       s.advisory,
	}
	if s.advisory {
		snap.AdvisoryText = AdvisoryText
	}
	return snap
}

// persistTurnsLocked serializes and durably writes the full turn sequence.
func (c *Controller) persistTurnsLocked(ctx context.Context, s *session) {
	raw, err := json.Marshal(s.turns)
	if err != nil {
		slog.Error("failed to serialize messages", "user_id", s.userID, "error", err)
		return
	}
	c.persistLocked(ctx, s, keyMessages, string(raw))
}

// persistActionsLocked serializes and durably writes the full item list.
func (c *Controller) persistActionsLocked(ctx context.Context, s *session) {
	raw, err := json.Marshal(s.actions)
	if err != nil {
		slog.Error("failed to serialize action items", "user_id", s.userID, "error", err)
		return
	}
	c.persistLocked(ctx, s, keyActions, string(raw))
}

// persistLocked records the value as pending and flushes every pending write.
// A write that keeps failing stays pending and is retried on the next
// mutation; the in-memory state is never rolled back.
func (c *Controller) persistLocked(ctx context.Context, s *session, key, value string) {
	s.dirty[key] = value
	for k, v := range s.dirty {
		if err := c.setWithRetry(ctx, s.userID, k, v); err != nil {
			slog.Warn("session write failed, will retry on next mutation",
				"user_id", s.userID, "key", k, "error", err)
			continue
		}
		delete(s.dirty, k)
	}
}

// setWithRetry attempts a durable write with exponential backoff on SQLite
// concurrency errors: 50ms, 100ms, 200ms.
func (c *Controller) setWithRetry(ctx context.Context, userID, key, value string) error {
	maxRetries := 3
	baseDelay := 50 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		err = c.repo.Set(ctx, userID, key, value)
		if err == nil {
			return nil
		}
		if !shared.IsSQLiteConflictError(err) {
			return err
		}
		if i < maxRetries-1 {
			delay := baseDelay * time.Duration(1<<i)
			slog.Debug("session write hit SQLITE_BUSY, retrying",
				"user_id", userID, "key", key, "attempt", i+1, "delay", delay)
			time.Sleep(delay)
		}
	}
	return err
}
