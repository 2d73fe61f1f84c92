package dialogue

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// MatchThreshold is the minimum similarity score (0-100) for a spoken
// utterance to be accepted as a menu item. Below it the caller gets the
// enumerated keypad list instead of a bad guess.
const MatchThreshold = 60

// BestMatch scores an utterance against candidate names and returns the
// index and score of the best one, case-insensitively. Ties go to the
// earliest candidate. Returns index -1 for an empty candidate list.
func BestMatch(utterance string, candidates []string) (int, int) {
	if len(candidates) == 0 {
		return -1, 0
	}

	lower := strings.ToLower(strings.TrimSpace(utterance))
	best := 0
	bestScore := fuzzy.Ratio(lower, strings.ToLower(candidates[0]))
	for i := 1; i < len(candidates); i++ {
		score := fuzzy.Ratio(lower, strings.ToLower(candidates[i]))
		if score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best, bestScore
}
