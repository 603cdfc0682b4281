package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSameCalendarDay(t *testing.T) {
	morning := time.Date(2025, 3, 14, 7, 30, 0, 0, time.Local)
	night := time.Date(2025, 3, 14, 23, 59, 0, 0, time.Local)
	nextDay := time.Date(2025, 3, 15, 0, 1, 0, 0, time.Local)

	assert.True(t, SameCalendarDay(morning, night))
	assert.False(t, SameCalendarDay(night, nextDay))
}

func TestCheckInPending(t *testing.T) {
	now := time.Date(2025, 3, 14, 12, 0, 0, 0, time.Local)

	assert.True(t, CheckInPending(time.Time{}, now), "absent timestamp counts as pending")
	assert.False(t, CheckInPending(now.Add(-2*time.Hour), now), "same day is not pending")
	assert.True(t, CheckInPending(now.Add(-24*time.Hour), now), "previous day is pending again")
}

func TestCheckInValidate(t *testing.T) {
	valid := CheckIn{Mood: 3, Energy: 2, Priority: "one calm dinner"}
	assert.NoError(t, valid.Validate())

	assert.Error(t, CheckIn{Mood: 0, Energy: 2, Priority: "x"}.Validate())
	assert.Error(t, CheckIn{Mood: 3, Energy: 6, Priority: "x"}.Validate())
	assert.Error(t, CheckIn{Mood: 3, Energy: 2}.Validate())
}

func TestOpenerTextEncodesFields(t *testing.T) {
	ci := CheckIn{Mood: 2, Energy: 4, Priority: "school pickup"}
	text := ci.OpenerText()

	assert.Contains(t, text, "2/5")
	assert.Contains(t, text, "4/5")
	assert.Contains(t, text, "school pickup")
}
