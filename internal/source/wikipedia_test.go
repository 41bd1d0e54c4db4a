package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/veriscope/veriscope/internal/cache"
	"github.com/veriscope/veriscope/internal/model"
)

func newTestWikipedia(t *testing.T, handler http.HandlerFunc) (*WikipediaSource, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	s := NewWikipediaSource(model.HTTPConfig{Timeout: 2 * time.Second}, nil, nil, nil)
	s.baseURL = func(string) string { return server.URL }
	return s, server
}

func wikipediaHandler(t *testing.T, searchCalls, summaryCalls *int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/w/api.php":
			*searchCalls++
			if got := r.URL.Query().Get("srsearch"); got != "Eiffel Tower" {
				t.Errorf("srsearch = %q", got)
			}
			fmt.Fprint(w, `{"query":{"search":[
				{"title":"Eiffel Tower","snippet":"The <span class=\"searchmatch\">Eiffel</span> Tower is a wrought-iron lattice tower"},
				{"title":"Gustave Eiffel","snippet":"Gustave <span class=\"searchmatch\">Eiffel</span> was a French civil engineer"}
			]}}`)
		case strings.HasPrefix(r.URL.Path, "/api/rest_v1/page/summary/"):
			*summaryCalls++
			fmt.Fprint(w, `{"extract":"The Eiffel Tower is a wrought-iron lattice tower on the Champ de Mars in Paris, France."}`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestWikipediaSource_FetchEvidence(t *testing.T) {
	var searchCalls, summaryCalls int
	s, _ := newTestWikipedia(t, wikipediaHandler(t, &searchCalls, &summaryCalls))

	items, err := s.FetchEvidence(context.Background(), "Eiffel Tower", "en")
	if err != nil {
		t.Fatalf("FetchEvidence failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}

	// Top hit gets the rich summary extract, not the search snippet.
	if !strings.Contains(items[0].Excerpt, "Champ de Mars") {
		t.Errorf("top excerpt = %q, want summary extract", items[0].Excerpt)
	}
	// Second hit keeps the snippet, with HTML stripped.
	if strings.Contains(items[1].Excerpt, "<span") {
		t.Errorf("snippet HTML not stripped: %q", items[1].Excerpt)
	}
	if !strings.Contains(items[1].Excerpt, "Gustave Eiffel was a French civil engineer") {
		t.Errorf("snippet text lost: %q", items[1].Excerpt)
	}

	for i, item := range items {
		if item.SourceType != model.SourceEncyclopedia {
			t.Errorf("item %d sourceType = %s", i, item.SourceType)
		}
		if !strings.Contains(item.URL, "/wiki/") {
			t.Errorf("item %d url = %q", i, item.URL)
		}
	}
	// Rank order preserved, scores descending.
	if items[0].RelevanceScore <= items[1].RelevanceScore {
		t.Errorf("relevance not rank-ordered: %f vs %f", items[0].RelevanceScore, items[1].RelevanceScore)
	}
	if summaryCalls != 1 {
		t.Errorf("summary calls = %d, want 1 (top hit only)", summaryCalls)
	}
}

func TestWikipediaSource_CachesResults(t *testing.T) {
	var searchCalls, summaryCalls int
	server := httptest.NewServer(wikipediaHandler(t, &searchCalls, &summaryCalls))
	defer server.Close()

	s := NewWikipediaSource(model.HTTPConfig{Timeout: 2 * time.Second},
		cache.NewMemoryCache(time.Minute, time.Minute), nil, nil)
	s.baseURL = func(string) string { return server.URL }

	for i := 0; i < 3; i++ {
		if _, err := s.FetchEvidence(context.Background(), "Eiffel Tower", "en"); err != nil {
			t.Fatalf("fetch %d failed: %v", i, err)
		}
	}
	if searchCalls != 1 {
		t.Errorf("search calls = %d, want 1 (cached)", searchCalls)
	}
}

func TestWikipediaSource_SummaryFailureFallsBackToSnippet(t *testing.T) {
	s, _ := newTestWikipedia(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/w/api.php" {
			fmt.Fprint(w, `{"query":{"search":[{"title":"Paris","snippet":"<b>Paris</b> is the capital of France"}]}}`)
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	items, err := s.FetchEvidence(context.Background(), "Paris", "en")
	if err != nil {
		t.Fatalf("FetchEvidence failed: %v", err)
	}
	if len(items) != 1 || items[0].Excerpt != "Paris is the capital of France" {
		t.Errorf("items = %+v, want snippet fallback", items)
	}
}

func TestWikipediaSource_SearchErrorPropagates(t *testing.T) {
	s, _ := newTestWikipedia(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	if _, err := s.FetchEvidence(context.Background(), "anything", "en"); err == nil {
		t.Fatal("expected error on search failure")
	}
}

func TestWikipediaSource_EmptyQuery(t *testing.T) {
	s := NewWikipediaSource(model.HTTPConfig{}, nil, nil, nil)
	items, err := s.FetchEvidence(context.Background(), "   ", "en")
	if err != nil || items != nil {
		t.Errorf("empty query: items=%v err=%v, want nil/nil", items, err)
	}
}

func TestStripTags(t *testing.T) {
	tests := []struct{ in, want string }{
		{`The <span class="searchmatch">Eiffel</span> Tower`, "The Eiffel Tower"},
		{"plain text", "plain text"},
		{"", ""},
		{"a &amp; b", "a & b"},
	}
	for _, tt := range tests {
		if got := stripTags(tt.in); got != tt.want {
			t.Errorf("stripTags(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
