package matcher

import (
	"strings"
	"time"

	"github.com/mcp-scout/mcp-scout/internal/resource"
)

var questionPrefixes = []string{
	"how ", "what ", "why ", "when ", "where ", "who ", "which ",
	"can ", "could ", "should ", "does ", "is ", "are ",
}

var creationWords = []string{"create", "build", "make", "generate", "write", "implement"}
var debugWords = []string{"error", "bug", "fix", "broken", "crash", "fail", "exception"}
var searchWords = []string{"find", "search", "look for", "locate", "where is"}
var learningWords = []string{"explain", "understand", "learn", "tutorial", "what does"}

// detectIntent buckets free text into a coarse intent. Checks run in a fixed
// order; the first bucket that fires wins.
func detectIntent(text string) resource.Intent {
	lower := strings.ToLower(strings.TrimSpace(text))

	if strings.HasSuffix(lower, "?") {
		return resource.IntentQuestion
	}
	for _, p := range questionPrefixes {
		if strings.HasPrefix(lower, p) {
			return resource.IntentQuestion
		}
	}
	for _, w := range creationWords {
		if strings.Contains(lower, w) {
			return resource.IntentCreation
		}
	}
	for _, w := range debugWords {
		if strings.Contains(lower, w) {
			return resource.IntentDebug
		}
	}
	for _, w := range searchWords {
		if strings.Contains(lower, w) {
			return resource.IntentSearch
		}
	}
	for _, w := range learningWords {
		if strings.Contains(lower, w) {
			return resource.IntentLearning
		}
	}
	return resource.IntentGeneral
}

// timeOfDayBucket maps a wall-clock hour onto a coarse bucket.
func timeOfDayBucket(now time.Time) string {
	switch hour := now.Hour(); {
	case hour >= 5 && hour < 12:
		return "morning"
	case hour >= 12 && hour < 17:
		return "afternoon"
	case hour >= 17 && hour < 21:
		return "evening"
	default:
		return "night"
	}
}
