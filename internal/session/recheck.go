package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/calmmom/calmmom/internal/domain"
)

// StartRecheckWorker runs a background goroutine that periodically re-runs
// silent verification for every persisted license key and demotes sessions
// whose license the vendor no longer accepts. Keys are otherwise only checked
// at hydrate, so without the sweep a revoked license stays live until the next
// reload. A non-positive interval disables the worker.
func StartRecheckWorker(ctx context.Context, ctrl *Controller, interval time.Duration) {
	if interval <= 0 {
		slog.Info("License re-verification disabled")
		return
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("License re-verification worker started", "interval", interval)

		for {
			select {
			case <-ticker.C:
				ctrl.recheckLicenses(ctx)
			case <-ctx.Done():
				slog.Info("License re-verification worker shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func (c *Controller) recheckLicenses(ctx context.Context) {
	keys, err := c.repo.ValuesByKey(ctx, keyLicense)
	if err != nil {
		slog.Error("Re-verification sweep failed to list license keys", "error", err)
		return
	}

	revoked := 0
	for userID, key := range keys {
		v, err := c.verifier.Verify(ctx, key)
		if err != nil {
			// A transient vendor or network failure is inconclusive; only an
			// authoritative "invalid" demotes a session.
			slog.Warn("Re-verification inconclusive, skipping", "user_id", userID, "error", err)
			continue
		}
		if !v.Valid {
			c.demote(userID)
			revoked++
		}
	}
	if revoked > 0 {
		slog.Info("Re-verification sweep demoted revoked licenses", "count", revoked)
	}
}

// demote marks a live session unlicensed. Sessions not currently in memory
// need nothing: their next hydrate re-runs silent verification against the
// same persisted key and fails the same way.
func (c *Controller) demote(userID string) {
	c.mu.Lock()
	s, ok := c.sessions[userID]
	c.mu.Unlock()
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == domain.Licensed {
		s.status = domain.Unlicensed
		s.licenseError = ""
		slog.Info("License revoked by re-verification sweep", "user_id", userID)
	}
}
