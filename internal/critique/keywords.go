package critique

import (
	"regexp"
	"strings"
)

// Severity buckets used to grade a critic response. Each entry is counted
// with a case-insensitive, word-bounded pattern.
var (
	catastrophicKeywords = []string{
		`physically impossible`,
		`violates? (?:the )?(?:law of )?conservation`,
		`thermodynamically impossible`,
		`perpetual motion`,
		`fabricated data`,
		`fundamentally impossible`,
		`cannot (?:possibly )?exist`,
	}

	criticalKeywords = []string{
		`fundamental flaws?`,
		`fatal`,
		`invalid`,
		`unsupported`,
		`no evidence`,
		`contradicts?`,
		`critical errors?`,
		`unfounded`,
	}

	concerningKeywords = []string{
		`concerns?|concerning`,
		`unclear`,
		`questionable`,
		`limited|limitations?`,
		`uncertain(?:ty|ties)?`,
		`weak(?:ness|nesses)?`,
		`insufficient`,
		`missing`,
	}

	positiveKeywords = []string{
		`robust`,
		`well-supported`,
		`convincing`,
		`rigorous(?:ly)?`,
		`validated`,
		`sound`,
		`consistent with observations`,
		`strong evidence`,
	}
)

// maxExtracted bounds the red flags and key findings kept per response
const maxExtracted = 10

var (
	catastrophicPatterns = compileKeywords(catastrophicKeywords)
	criticalPatterns     = compileKeywords(criticalKeywords)
	concerningPatterns   = compileKeywords(concerningKeywords)
	positivePatterns     = compileKeywords(positiveKeywords)

	sentenceBoundary = regexp.MustCompile(`[.!?;\n]+`)
)

func compileKeywords(keywords []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(keywords))
	for i, k := range keywords {
		out[i] = regexp.MustCompile(`(?i)\b(?:` + k + `)\b`)
	}
	return out
}

// KeywordCounts is the number of keyword occurrences per severity bucket
type KeywordCounts struct {
	Catastrophic int `json:"catastrophic"`
	Critical     int `json:"critical"`
	Concerning   int `json:"concerning"`
	Positive     int `json:"positive"`
}

// CountKeywords tallies occurrences of every bucket's keywords in text
func CountKeywords(text string) KeywordCounts {
	return KeywordCounts{
		Catastrophic: countMatches(catastrophicPatterns, text),
		Critical:     countMatches(criticalPatterns, text),
		Concerning:   countMatches(concerningPatterns, text),
		Positive:     countMatches(positivePatterns, text),
	}
}

func countMatches(patterns []*regexp.Regexp, text string) int {
	n := 0
	for _, re := range patterns {
		n += len(re.FindAllStringIndex(text, -1))
	}
	return n
}

func containsAny(patterns []*regexp.Regexp, text string) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

func splitSentences(text string) []string {
	var out []string
	for _, s := range sentenceBoundary.Split(text, -1) {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// extractFragments returns the sentences of text that hit any of the pattern
// groups, in order, capped at maxExtracted.
func extractFragments(text string, groups ...[]*regexp.Regexp) []string {
	out := []string{}
	for _, sentence := range splitSentences(text) {
		for _, g := range groups {
			if containsAny(g, sentence) {
				out = append(out, sentence)
				break
			}
		}
		if len(out) == maxExtracted {
			break
		}
	}
	return out
}

// ExtractRedFlags returns sentences carrying catastrophic or critical keywords
func ExtractRedFlags(text string) []string {
	return extractFragments(text, catastrophicPatterns, criticalPatterns)
}

// ExtractKeyFindings returns sentences carrying concerning or positive keywords
func ExtractKeyFindings(text string) []string {
	return extractFragments(text, concerningPatterns, positivePatterns)
}
