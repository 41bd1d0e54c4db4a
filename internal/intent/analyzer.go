// Package intent turns free-text topics into keywords, language hints,
// and fallback query phrasings for the fusion engine.
package intent

import (
	"strings"
	"unicode"

	"github.com/veriscope/veriscope/internal/model"
)

// Analyzer reads a free-text topic or claim. Implementations may call an
// external NLU service; Heuristic below runs standalone.
type Analyzer interface {
	Analyze(text string) model.Intent
	AnalyzeRealtimeNeed(text string) model.RealtimeNeed
}

// Heuristic is a rule-based Analyzer: token/stopword keyword extraction,
// script-based language detection, and a fixed fallback-strategy ladder.
type Heuristic struct {
	maxKeywords int
}

// NewHeuristic returns an analyzer that keeps at most maxKeywords keywords.
func NewHeuristic(maxKeywords int) *Heuristic {
	if maxKeywords <= 0 {
		maxKeywords = 8
	}
	return &Heuristic{maxKeywords: maxKeywords}
}

var intentStopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true, "was": true,
	"were": true, "be": true, "been": true, "of": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "with": true, "by": true, "from": true,
	"and": true, "or": true, "but": true, "about": true, "what": true,
	"who": true, "when": true, "where": true, "why": true, "how": true,
	"does": true, "did": true, "do": true, "it": true, "its": true, "this": true,
	"that": true, "있는": true, "대한": true, "대해": true, "무엇": true,
	"어떻게": true, "그리고": true, "또는": true, "하는": true,
}

// Analyze extracts keywords, detects the language, and builds the fallback
// ladder: quoted phrase, keywords only, primary keyword alone.
func (h *Heuristic) Analyze(text string) model.Intent {
	text = strings.TrimSpace(text)
	keywords := h.extractKeywords(text)

	primary := ""
	for _, kw := range keywords {
		if len([]rune(kw)) > len([]rune(primary)) {
			primary = kw
		}
	}

	intent := model.Intent{
		OriginalQuery:  text,
		Keywords:       keywords,
		PrimaryKeyword: primary,
		Language:       detectLanguage(text),
	}

	if text != "" {
		intent.Fallbacks = append(intent.Fallbacks, model.FallbackStrategy{
			StrategyType: "quoted_phrase",
			Query:        `"` + text + `"`,
		})
	}
	if len(keywords) > 1 {
		intent.Fallbacks = append(intent.Fallbacks, model.FallbackStrategy{
			StrategyType: "keywords_only",
			Query:        strings.Join(keywords, " "),
		})
	}
	if primary != "" && primary != text {
		intent.Fallbacks = append(intent.Fallbacks, model.FallbackStrategy{
			StrategyType: "primary_keyword",
			Query:        primary,
		})
	}

	return intent
}

func (h *Heuristic) extractKeywords(text string) []string {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})

	seen := make(map[string]bool, len(tokens))
	var keywords []string
	for _, token := range tokens {
		if len([]rune(token)) < 2 || intentStopwords[token] || seen[token] {
			continue
		}
		if isAllDigits(token) {
			continue
		}
		seen[token] = true
		keywords = append(keywords, token)
		if len(keywords) >= h.maxKeywords {
			break
		}
	}
	return keywords
}

func isAllDigits(token string) bool {
	for _, r := range token {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return len(token) > 0
}

// detectLanguage returns "ko" when Hangul dominates the letters, else "en".
func detectLanguage(text string) string {
	var hangul, letters int
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Hangul, r) {
			hangul++
		}
	}
	if letters > 0 && hangul*2 >= letters {
		return "ko"
	}
	return "en"
}

// realtimeMarkers maps trigger phrases to the kind of live data they imply.
var realtimeMarkers = []struct {
	marker   string
	dataType string
}{
	{"weather", "weather"}, {"temperature", "weather"}, {"forecast", "weather"},
	{"날씨", "weather"}, {"기온", "weather"},
	{"price", "price"}, {"stock", "price"}, {"exchange rate", "price"},
	{"가격", "price"}, {"주가", "price"}, {"환율", "price"},
	{"score", "score"}, {"match result", "score"}, {"경기 결과", "score"}, {"스코어", "score"},
	{"breaking", "news"}, {"속보", "news"},
}

// recencyMarkers raise confidence without fixing a data type.
var recencyMarkers = []string{
	"today", "now", "current", "currently", "latest", "right now",
	"오늘", "지금", "현재", "최신",
}

// AnalyzeRealtimeNeed flags queries that only live data can answer, so the
// engine can prioritize real-time sources.
func (h *Heuristic) AnalyzeRealtimeNeed(text string) model.RealtimeNeed {
	lower := strings.ToLower(text)

	var need model.RealtimeNeed
	for _, m := range realtimeMarkers {
		if strings.Contains(lower, m.marker) {
			need.NeedsRealtimeData = true
			need.DataType = m.dataType
			need.Confidence = 0.7
			need.Reason = "query mentions " + m.dataType + " data"
			break
		}
	}

	for _, marker := range recencyMarkers {
		if strings.Contains(lower, marker) {
			if need.NeedsRealtimeData {
				need.Confidence = 0.9
			} else {
				need.NeedsRealtimeData = true
				need.DataType = "general"
				need.Confidence = 0.5
				need.Reason = "query asks about the present"
			}
			break
		}
	}

	if !need.NeedsRealtimeData {
		need.Confidence = 0.8
		need.Reason = "no real-time markers found"
	}
	return need
}
