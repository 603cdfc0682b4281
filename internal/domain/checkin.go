package domain

import (
	"fmt"
	"time"
)

// CheckIn is a once-daily structured mood/energy/priority capture. Only the
// most recent check-in is retained; prior detail is discarded in favor of the
// last-check-in date and the streak counter.
type CheckIn struct {
	Mood     int    `json:"mood"`
	Energy   int    `json:"energy"`
	Priority string `json:"priority"`
}

// Validate checks the 1..5 scale bounds and priority presence.
func (c CheckIn) Validate() error {
	if c.Mood < 1 || c.Mood > 5 {
		return fmt.Errorf("mood must be between 1 and 5, got %d", c.Mood)
	}
	if c.Energy < 1 || c.Energy > 5 {
		return fmt.Errorf("energy must be between 1 and 5, got %d", c.Energy)
	}
	if c.Priority == "" {
		return fmt.Errorf("priority is required")
	}
	return nil
}

// OpenerText renders the synthetic user turn that seeds the conversation
// after a completed check-in.
func (c CheckIn) OpenerText() string {
	return fmt.Sprintf(
		"Daily check-in: my mood is %d/5, my energy is %d/5, and my top priority today is: %s",
		c.Mood, c.Energy, c.Priority,
	)
}

// SameCalendarDay reports whether a and b fall on the same calendar date in
// the local timezone.
func SameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// CheckInPending reports whether today's check-in is still due. An absent
// (zero) last-check-in timestamp counts as pending.
func CheckInPending(lastCheckIn, now time.Time) bool {
	if lastCheckIn.IsZero() {
		return true
	}
	return !SameCalendarDay(lastCheckIn, now)
}
