package session

import (
	"strings"
	"testing"

	"github.com/calmmom/calmmom/internal/domain"
	"github.com/stretchr/testify/assert"
)

func userTurn(text string) domain.ChatTurn {
	return domain.ChatTurn{Role: domain.RoleUser, Text: text}
}

func assistantTurn(text string) domain.ChatTurn {
	return domain.ChatTurn{Role: domain.RoleAssistant, Text: text}
}

func TestDetectorThresholdBoundary(t *testing.T) {
	// Exactly 5 occurrences must NOT flag; 6 must.
	five := []domain.ChatTurn{
		userTurn("I feel overwhelmed and exhausted and hopeless"),
		userTurn("still overwhelmed, still crying"),
	}
	assert.False(t, detectOverwhelm(five))

	six := append(five, userTurn("I keep failing"))
	assert.True(t, detectOverwhelm(six))
}

func TestDetectorCountsOccurrencesNotMessages(t *testing.T) {
	// One message can contribute multiple counts for the same keyword.
	turns := []domain.ChatTurn{
		userTurn(strings.Repeat("overwhelmed ", 6)),
	}
	assert.True(t, detectOverwhelm(turns))
}

func TestDetectorIgnoresAssistantTurns(t *testing.T) {
	turns := []domain.ChatTurn{
		userTurn("I feel overwhelmed"),
		assistantTurn("overwhelmed exhausted hopeless crying failing worthless"),
	}
	assert.False(t, detectOverwhelm(turns))
}

func TestDetectorWindowIsLastTenTurns(t *testing.T) {
	turns := []domain.ChatTurn{
		// Falls outside the 10-turn window once padding is appended.
		userTurn(strings.Repeat("overwhelmed ", 6)),
	}
	for i := 0; i < 10; i++ {
		turns = append(turns, userTurn("we had a nice walk"))
	}
	assert.False(t, detectOverwhelm(turns))
}
