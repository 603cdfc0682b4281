package session

import (
	"strings"

	"github.com/calmmom/calmmom/internal/domain"
)

// negativeKeywords is the fixed list the overwhelm heuristic scans for.
var negativeKeywords = []string{
	"overwhelmed",
	"exhausted",
	"hopeless",
	"worthless",
	"crying",
	"failing",
	"can't cope",
	"can't do this",
	"burned out",
	"breaking down",
}

const (
	// detectorWindow is how many trailing turns the heuristic examines.
	detectorWindow = 10
	// advisoryThreshold is the occurrence count that must be exceeded (not
	// met) before the advisory fires.
	advisoryThreshold = 5
)

// AdvisoryText is the fixed banner shown when the overwhelm heuristic fires.
const AdvisoryText = "You've shared a lot of heavy feelings recently. You deserve real support. Please consider reaching out to someone you trust, or to a professional. You don't have to carry this alone."

// detectOverwhelm counts substring occurrences of the keyword list across
// user-authored turns within the trailing window. A keyword may count more
// than once inside one message; assistant turns are ignored entirely.
func detectOverwhelm(turns []domain.ChatTurn) bool {
	count := 0
	for _, turn := range domain.LastN(turns, detectorWindow) {
		if turn.Role != domain.RoleUser {
			continue
		}
		text := strings.ToLower(turn.Text)
		for _, keyword := range negativeKeywords {
			count += strings.Count(text, keyword)
		}
	}
	return count > advisoryThreshold
}
