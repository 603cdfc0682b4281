package domain

import "time"

// ActionItem is a user-tracked to-do surfaced by the coaching flow.
type ActionItem struct {
	ID            string     `json:"id"`
	Label         string     `json:"label"`
	Completed     bool       `json:"completed"`
	CompletedDate *time.Time `json:"completed_date"`
}

// Toggle flips completion state, stamping or clearing the completion time.
func (a *ActionItem) Toggle(now time.Time) {
	if a.Completed {
		a.Completed = false
		a.CompletedDate = nil
		return
	}
	a.Completed = true
	t := now
	a.CompletedDate = &t
}

// CompletedToday counts items whose completion date falls on today's calendar
// date. The count is always derived, never stored.
func CompletedToday(items []ActionItem, now time.Time) int {
	count := 0
	for _, item := range items {
		if item.CompletedDate != nil && SameCalendarDay(*item.CompletedDate, now) {
			count++
		}
	}
	return count
}
