package verify

import (
	"sort"
	"strings"
	"unicode"
)

// Bilingual stop-word list (English + Korean particles and fillers).
var stopWords = map[string]bool{
	// English
	"a": true, "an": true, "the": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "of": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "and": true, "or": true, "but": true,
	"not": true, "no": true, "it": true, "its": true, "this": true, "that": true,
	"these": true, "those": true, "with": true, "by": true, "from": true,
	"as": true, "has": true, "have": true, "had": true, "will": true,
	"would": true, "can": true, "could": true, "about": true, "than": true,
	"then": true, "there": true, "their": true, "they": true, "he": true,
	"she": true, "we": true, "you": true, "i": true, "do": true, "does": true,
	"did": true, "what": true, "which": true, "who": true, "when": true,
	"where": true, "why": true, "how": true, "all": true, "any": true,
	"also": true, "into": true, "more": true, "most": true, "some": true,
	"such": true, "only": true, "very": true,
	// Korean
	"이": true, "그": true, "저": true, "것": true, "수": true, "등": true,
	"및": true, "에서": true, "에게": true, "으로": true, "이다": true,
	"있다": true, "하는": true, "있는": true, "대한": true, "위해": true,
	"그리고": true, "하지만": true, "또한": true,
}

// tokenize splits text on whitespace and punctuation, lowercases, and
// returns the raw token stream.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}

// isNumeric reports whether a token is purely digits.
func isNumeric(token string) bool {
	for _, r := range token {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(token) > 0
}

// extractKeywords pulls up to max content-bearing keywords from a claim:
// stop-words and pure-numeric tokens are dropped, duplicates collapse, and
// when the claim carries more keywords than fit, longer tokens win.
func extractKeywords(claim string, max int) []string {
	seen := make(map[string]bool)
	var keywords []string
	for _, token := range tokenize(claim) {
		if stopWords[token] || isNumeric(token) || len([]rune(token)) < 2 {
			continue
		}
		if seen[token] {
			continue
		}
		seen[token] = true
		keywords = append(keywords, token)
	}

	if max > 0 && len(keywords) > max {
		// Longer tokens carry more signal; keep relative order among the
		// survivors stable.
		byLength := append([]string(nil), keywords...)
		sort.SliceStable(byLength, func(i, j int) bool {
			return len([]rune(byLength[i])) > len([]rune(byLength[j]))
		})
		keep := make(map[string]bool, max)
		for _, token := range byLength[:max] {
			keep[token] = true
		}
		trimmed := keywords[:0]
		for _, token := range keywords {
			if keep[token] {
				trimmed = append(trimmed, token)
			}
		}
		keywords = trimmed
	}
	return keywords
}

// primaryKeyword picks the analyzer-provided top keyword, or the longest
// extracted token as fallback.
func primaryKeyword(analyzerKeyword string, keywords []string) string {
	if analyzerKeyword != "" {
		return strings.ToLower(analyzerKeyword)
	}
	var longest string
	for _, token := range keywords {
		if len([]rune(token)) > len([]rune(longest)) {
			longest = token
		}
	}
	return longest
}

// jaccard computes |A ∩ B| / |A ∪ B| over two token sets.
func jaccard(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	setA := make(map[string]bool, len(a))
	for _, t := range a {
		setA[t] = true
	}
	setB := make(map[string]bool, len(b))
	for _, t := range b {
		setB[t] = true
	}

	var intersection int
	for t := range setA {
		if setB[t] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
