// Package rank infers placement from the text and class of a winner entry.
package rank

import "strings"

// Placements.
const (
	Winner = 1
	Silver = 2
	Bronze = 3
)

var (
	silverSignals = []string{"finalist", "silver", "2nd", "runner up", "runner-up"}
	bronzeSignals = []string{"bronze", "3rd", "third place"}
)

// Classify returns 1, 2 or 3. Silver signals are checked before bronze
// signals, so text carrying both resolves to bronze. Anything unclassifiable
// is treated as a winner.
func Classify(text, class string) int {
	haystack := strings.ToLower(text + " " + class)
	rank := Winner
	if containsAny(haystack, silverSignals) {
		rank = Silver
	}
	if containsAny(haystack, bronzeSignals) {
		rank = Bronze
	}
	return rank
}

// Label renders a placement for narrative output.
func Label(rank int) string {
	switch rank {
	case Winner:
		return "🏆 Winner"
	case Silver:
		return "🥈 Silver"
	case Bronze:
		return "🥉 Bronze"
	default:
		return "Finalist"
	}
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
