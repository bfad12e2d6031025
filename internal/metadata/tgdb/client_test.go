package tgdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"onyx/internal/metadata"
)

func TestSearchByGameName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Games/ByGameName" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("apikey"); got != "test-key" {
			t.Fatalf("unexpected api key %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"games":[
			{"id":108,"game_title":"Half-Life 2","release_date":"2004-11-16","overview":"FPS.","rating":"M - Mature"}
		]}}`))
	}))
	defer server.Close()

	client, err := New("test-key", server.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	candidates, err := client.Search(context.Background(), metadata.Query{Title: "Half-Life 2"})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(candidates))
	}
	got := candidates[0]
	if got.ExternalID != "108" || got.Year != 2004 {
		t.Fatalf("unexpected candidate %+v", got)
	}
	if got.AgeRating != "M - Mature" {
		t.Fatalf("unexpected age rating %q", got.AgeRating)
	}
}

func TestFetchAssetsMapsImageTypes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Games/Images" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{
			"base_url":{"original":"https://cdn.example/images/original/"},
			"images":{"108":[
				{"type":"boxart","side":"back","filename":"boxart/back/108-1.jpg"},
				{"type":"boxart","side":"front","filename":"boxart/front/108-1.jpg"},
				{"type":"clearlogo","filename":"clearlogo/108.png"},
				{"type":"fanart","filename":"fanart/108-1.jpg"}
			]}
		}}`))
	}))
	defer server.Close()

	client, err := New("test-key", server.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	urls, err := client.FetchAssets(context.Background(), "108")
	if err != nil {
		t.Fatalf("FetchAssets: %v", err)
	}
	if urls.BoxArt != "https://cdn.example/images/original/boxart/front/108-1.jpg" {
		t.Fatalf("expected front box art, got %q", urls.BoxArt)
	}
	if urls.Logo != "https://cdn.example/images/original/clearlogo/108.png" {
		t.Fatalf("unexpected logo %q", urls.Logo)
	}
	if urls.Hero != "https://cdn.example/images/original/fanart/108-1.jpg" {
		t.Fatalf("unexpected hero %q", urls.Hero)
	}
	if urls.Banner != "" {
		t.Fatalf("expected empty banner, got %q", urls.Banner)
	}
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New("", "https://api.example/v1"); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
