package weight

import (
	"fmt"
	"testing"
	"time"

	"github.com/veriscope/veriscope/internal/model"
)

func testConfig() model.WeightConfig {
	return model.WeightConfig{
		Base: map[model.SourceType]float64{
			model.SourceEncyclopedia: 1.3,
			model.SourceAcademic:     1.2,
			model.SourceNews:         1.0,
			model.SourceRealtime:     0.9,
			model.SourceWeb:          0.8,
		},
		Min: 0.5,
		Max: 2.0,
	}
}

func TestComputeWeights_EmptyInputReturnsBaseTable(t *testing.T) {
	calc := NewCalculator(testConfig(), nil)

	for _, input := range []map[model.SourceType][]model.EvidenceItem{nil, {}} {
		weights := calc.ComputeWeights(input)

		if len(weights) != 5 {
			t.Fatalf("expected 5 base weights, got %d", len(weights))
		}
		if weights[model.SourceEncyclopedia] != 1.3 {
			t.Errorf("expected base weight 1.3 for encyclopedia, got %f", weights[model.SourceEncyclopedia])
		}
		if weights[model.SourceWeb] != 0.8 {
			t.Errorf("expected base weight 0.8 for web, got %f", weights[model.SourceWeb])
		}
	}
}

func TestComputeWeights_BoundsAlwaysHold(t *testing.T) {
	calc := NewCalculator(testConfig(), nil)

	// Extreme inputs: many high-quality diverse items for one source,
	// garbage for another.
	good := make([]model.EvidenceItem, 10)
	for i := range good {
		good[i] = model.EvidenceItem{
			SourceType:     model.SourceRealtime,
			SourceName:     "Live Search",
			URL:            fmt.Sprintf("https://example.com/page-%d", i),
			Excerpt:        "Published 2026-08-30. " + longText(300),
			RelevanceScore: 0.95,
		}
	}
	bad := []model.EvidenceItem{
		{SourceType: model.SourceWeb, Excerpt: "x"},
		{SourceType: model.SourceWeb, Excerpt: "x"},
	}

	weights := calc.ComputeWeights(map[model.SourceType][]model.EvidenceItem{
		model.SourceRealtime: good,
		model.SourceWeb:      bad,
	})

	for st, w := range weights {
		if w < 0.5 || w > 2.0 {
			t.Errorf("weight for %s out of bounds: %f", st, w)
		}
	}
	if weights[model.SourceRealtime] <= weights[model.SourceWeb] {
		t.Errorf("expected realtime (%f) to outrank web (%f)", weights[model.SourceRealtime], weights[model.SourceWeb])
	}
}

func TestComputeWeights_DiversityRewardsDistinctURLs(t *testing.T) {
	calc := NewCalculator(testConfig(), nil)

	excerpt := longText(200)
	diverse := []model.EvidenceItem{
		{SourceType: model.SourceNews, SourceName: "A", URL: "https://a.example/1", Excerpt: excerpt, RelevanceScore: 0.5},
		{SourceType: model.SourceNews, SourceName: "A", URL: "https://a.example/2", Excerpt: excerpt, RelevanceScore: 0.5},
		{SourceType: model.SourceNews, SourceName: "A", URL: "https://a.example/3", Excerpt: excerpt, RelevanceScore: 0.5},
	}
	duplicated := []model.EvidenceItem{
		{SourceType: model.SourceAcademic, SourceName: "B", URL: "https://b.example/1", Excerpt: excerpt, RelevanceScore: 0.5},
		{SourceType: model.SourceAcademic, SourceName: "B", URL: "https://b.example/1", Excerpt: excerpt, RelevanceScore: 0.5},
		{SourceType: model.SourceAcademic, SourceName: "B", URL: "https://b.example/1", Excerpt: excerpt, RelevanceScore: 0.5},
	}

	w1 := calc.ComputeWeights(map[model.SourceType][]model.EvidenceItem{model.SourceNews: diverse})
	w2 := calc.ComputeWeights(map[model.SourceType][]model.EvidenceItem{model.SourceAcademic: duplicated})

	// News base 1.0 vs academic base 1.2, yet full diversity (3/3 URLs)
	// should close most of that gap versus 1/3.
	diverseBoost := w1[model.SourceNews] / 1.0
	dupBoost := w2[model.SourceAcademic] / 1.2
	if diverseBoost <= dupBoost {
		t.Errorf("expected diversity boost (%f) > duplicate boost (%f)", diverseBoost, dupBoost)
	}
}

func TestExtractPublishedTime(t *testing.T) {
	tests := []struct {
		excerpt string
		want    string
		ok      bool
	}{
		{"The accord was signed on 2024-03-15 in Geneva.", "2024-03-15", true},
		{"Reported on March 15, 2024 by correspondents.", "2024-03-15", true},
		{"이 기사는 2024년 3월 15일에 작성되었습니다.", "2024-03-15", true},
		{"No date information here at all.", "", false},
	}

	for _, tt := range tests {
		got, ok := extractPublishedTime(tt.excerpt)
		if ok != tt.ok {
			t.Errorf("extractPublishedTime(%q): ok = %v, want %v", tt.excerpt, ok, tt.ok)
			continue
		}
		if ok && got.Format("2006-01-02") != tt.want {
			t.Errorf("extractPublishedTime(%q) = %s, want %s", tt.excerpt, got.Format("2006-01-02"), tt.want)
		}
	}
}

func TestRecencyScore_HeuristicDefaults(t *testing.T) {
	calc := NewCalculator(testConfig(), nil)
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	calc.now = func() time.Time { return now }

	undated := []model.EvidenceItem{{Excerpt: "no dates here"}}

	realtime := calc.recencyScore(model.SourceRealtime, undated)
	news := calc.recencyScore(model.SourceNews, undated)
	academic := calc.recencyScore(model.SourceAcademic, undated)

	if realtime <= news || news <= academic {
		t.Errorf("expected realtime (%f) > news (%f) > academic (%f)", realtime, news, academic)
	}
	if realtime != 1.0 {
		t.Errorf("realtime default should score 1.0, got %f", realtime)
	}
}

func longText(n int) string {
	s := make([]byte, n)
	for i := range s {
		s[i] = 'a' + byte(i%26)
	}
	return string(s)
}
