// Package domain contains core domain types for the CalmMom application.
package domain

// Role identifies the author of a chat turn.
type Role string

const (
	// RoleUser is a turn written by the user.
	RoleUser Role = "user"
	// RoleAssistant is a turn written by the assistant.
	RoleAssistant Role = "assistant"
)

// ChatTurn is one message in a conversation. Turns are never mutated after
// creation; the ordered sequence is the unit of persistence and the unit sent
// upstream on every call.
type ChatTurn struct {
	Role Role   `json:"role"`
	Text string `json:"content"`
}

// LastN returns the trailing n turns of the conversation, or all of them when
// fewer than n exist.
func LastN(turns []ChatTurn, n int) []ChatTurn {
	if len(turns) <= n {
		return turns
	}
	return turns[len(turns)-n:]
}
