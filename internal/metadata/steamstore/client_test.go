package steamstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"onyx/internal/metadata"
)

func TestSearchByTitle(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/storesearch/" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("term"); got != "Portal 2" {
			t.Fatalf("unexpected term %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total":2,"items":[{"id":620,"name":"Portal 2"},{"id":400,"name":"Portal"}]}`))
	}))
	defer server.Close()

	client, err := New(server.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	candidates, err := client.Search(context.Background(), metadata.Query{Title: "Portal 2"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].ExternalID != "620" || candidates[0].Title != "Portal 2" {
		t.Fatalf("unexpected first candidate %+v", candidates[0])
	}
}

func TestSearchByKnownAppID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/appdetails" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"620":{"success":true,"data":{
			"name":"Portal 2",
			"short_description":"Co-op puzzle sequel.",
			"release_date":{"date":"19 Apr, 2011"},
			"genres":[{"description":"Puzzle"}],
			"developers":["Valve"],
			"publishers":["Valve"],
			"metacritic":{"score":95}
		}}}`))
	}))
	defer server.Close()

	client, err := New(server.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	candidates, err := client.Search(context.Background(), metadata.Query{
		Title:       "Portal 2",
		Source:      "steam",
		SourceAppID: "620",
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	got := candidates[0]
	if got.Description != "Co-op puzzle sequel." {
		t.Fatalf("unexpected description %q", got.Description)
	}
	if got.Year != 2011 {
		t.Fatalf("expected year 2011, got %d", got.Year)
	}
	if got.CriticScore != 95 {
		t.Fatalf("expected metacritic 95, got %v", got.CriticScore)
	}
	if len(got.Genres) != 1 || got.Genres[0] != "Puzzle" {
		t.Fatalf("unexpected genres %v", got.Genres)
	}
}

func TestSearchUnknownAppIDYieldsNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"99999":{"success":false}}`))
	}))
	defer server.Close()

	client, err := New(server.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	candidates, err := client.Search(context.Background(), metadata.Query{
		Title:       "Unknown",
		Source:      "steam",
		SourceAppID: "99999",
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("expected no candidates, got %d", len(candidates))
	}
}

func TestFetchAssetsDerivesCDNURLs(t *testing.T) {
	client, err := New("https://store.example/api", WithCDNBaseURL("https://cdn.example/apps"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	urls, err := client.FetchAssets(context.Background(), "620")
	if err != nil {
		t.Fatalf("FetchAssets: %v", err)
	}
	if urls.BoxArt != "https://cdn.example/apps/620/library_600x900_2x.jpg" {
		t.Fatalf("unexpected box art url %q", urls.BoxArt)
	}
	if urls.Banner != "https://cdn.example/apps/620/header.jpg" {
		t.Fatalf("unexpected banner url %q", urls.Banner)
	}
}

func TestYearFromDate(t *testing.T) {
	cases := []struct {
		date string
		want int
	}{
		{"19 Apr, 2011", 2011},
		{"2004", 2004},
		{"Coming soon", 0},
		{"", 0},
	}
	for _, tc := range cases {
		if got := yearFromDate(tc.date); got != tc.want {
			t.Fatalf("yearFromDate(%q) = %d, want %d", tc.date, got, tc.want)
		}
	}
}
