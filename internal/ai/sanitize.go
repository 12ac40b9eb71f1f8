package ai

import "strings"

// hedgingPhrases are removed verbatim from model output.
var hedgingPhrases = []string{
	"It's difficult to determine the exact calorie count",
	"without knowing the specific ingredients and quantities used",
	"A calorie counter would need to know the specific ingredients",
	"accurately calculate the calories",
}

const howeverMarker = "However,"

// Sanitize strips hedging boilerplate from a model response. Phrases are
// removed first (case-sensitive, every occurrence), then "However,", then
// surrounding whitespace. Whitespace left inside the text by the removals
// is kept as is.
func Sanitize(text string) string {
	for _, phrase := range hedgingPhrases {
		text = strings.ReplaceAll(text, phrase, "")
	}
	text = strings.ReplaceAll(text, howeverMarker, "")
	return strings.TrimSpace(text)
}
