package services

import (
	"strings"
	"unicode"
)

const (
	// snippetWindow is the number of words kept on each side of the match.
	snippetWindow = 5

	markStart = "[["
	markEnd   = "]]"
	ellipsis  = "…"
)

// normalizeQuery trims and lower-cases the raw query; strategy selection
// works on the result.
func normalizeQuery(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// tokenize splits a normalized query into alphanumeric runs, the same way
// the index's parser splits the stored text, so "cat&vid" yields the
// lexemes "cat" and "vid" rather than a "catvid" token that can never
// match. Each run is safe inside a tsquery.
func tokenize(normalized string) []string {
	return strings.FieldsFunc(normalized, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// tsquery renders tokens as AND-ed literal prefix matches: "cat:* & vid:*".
func tsquery(tokens []string) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t + ":*"
	}
	return strings.Join(parts, " & ")
}

// buildSnippet locates the first word of text that any token prefix-matches,
// wraps it in the marker pair and truncates the result to a bounded word
// window, with an ellipsis on each cut edge. Returns "" when no word matches;
// punctuation around words is ignored for matching but kept in the output.
func buildSnippet(text string, tokens []string) string {
	words := strings.Fields(text)

	hit := -1
	for i, w := range words {
		bare := strings.TrimFunc(strings.ToLower(w), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, tok := range tokens {
			if strings.HasPrefix(bare, tok) {
				hit = i
				break
			}
		}
		if hit >= 0 {
			break
		}
	}
	if hit < 0 {
		return ""
	}

	marked := make([]string, len(words))
	copy(marked, words)
	marked[hit] = markStart + words[hit] + markEnd

	lo := hit - snippetWindow
	hi := hit + snippetWindow + 1

	var sb strings.Builder
	if lo < 0 {
		lo = 0
	} else if lo > 0 {
		sb.WriteString(ellipsis + " ")
	}
	truncated := hi < len(words)
	if hi > len(words) {
		hi = len(words)
	}
	sb.WriteString(strings.Join(marked[lo:hi], " "))
	if truncated {
		sb.WriteString(" " + ellipsis)
	}
	return sb.String()
}
