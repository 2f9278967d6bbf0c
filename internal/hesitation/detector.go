// Package hesitation classifies a single author utterance as confident or
// hedging. The heuristic is recall-biased: over-flagging a terse but confident
// answer costs one extra follow-up question, while missing a real hesitation
// means an unfinished thought gets steamrolled by the next scheduled question.
package hesitation

import "strings"

// Result is the outcome of classifying one utterance.
type Result struct {
	Hedging bool
}

const shortAnswerWordLimit = 10

// hedgeMarkers are phrases that signal the author is trailing off or unsure.
// Matched case-insensitively anywhere in the utterance.
var hedgeMarkers = []string{
	"i don't know",
	"i dont know",
	"sort of",
	"kind of",
	"i guess",
	"it's complicated",
	"its complicated",
	"i'm not sure",
	"im not sure",
	"hard to explain",
	"i can't explain",
	"not really sure",
}

// trailingOffSuffixes mark an utterance that ends mid-thought.
var trailingOffSuffixes = []string{"...", "…", "—", "--"}

// Classify reports whether an utterance is hedging. Stateless and deterministic.
//
// An utterance is hedging if either it is shorter than ten words without
// terminal punctuation, or it contains a hedge marker or trails off.
func Classify(utterance string) Result {
	trimmed := strings.TrimSpace(utterance)
	if trimmed == "" {
		return Result{Hedging: true}
	}

	lower := strings.ToLower(trimmed)
	for _, marker := range hedgeMarkers {
		if strings.Contains(lower, marker) {
			return Result{Hedging: true}
		}
	}
	for _, suffix := range trailingOffSuffixes {
		if strings.HasSuffix(trimmed, suffix) {
			return Result{Hedging: true}
		}
	}

	if len(strings.Fields(trimmed)) < shortAnswerWordLimit && !endsTerminal(trimmed) {
		return Result{Hedging: true}
	}
	return Result{Hedging: false}
}

func endsTerminal(s string) bool {
	// Ignore a closing quote or bracket when checking the final mark.
	s = strings.TrimRight(s, `"')]`+"”’")
	if s == "" {
		return false
	}
	switch s[len(s)-1] {
	case '.', '!', '?':
		return true
	}
	return false
}
