// Package griddb queries SteamGridDB, the curated art provider. This
// provider is mandatory: search failures here surface as hard errors
// upstream, and a missing API key reports unavailability rather than an
// empty result set.
package griddb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"onyx/internal/metadata"
)

// Client provides access to the SteamGridDB API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a SteamGridDB client. An empty API key is accepted here so the
// provider can report unavailability per search instead of failing startup.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("steamgriddb base url required")
	}
	client := &Client{
		apiKey:     strings.TrimSpace(apiKey),
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Kind reports the curated art band.
func (c *Client) Kind() metadata.Kind { return metadata.KindCuratedArt }

// Name identifies the provider.
func (c *Client) Name() string { return "steamgriddb" }

type searchEntry struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	ReleaseDate int64    `json:"release_date"`
	Types       []string `json:"types"`
	Verified    bool     `json:"verified"`
}

type searchResponse struct {
	Success bool          `json:"success"`
	Data    []searchEntry `json:"data"`
}

// Search queries the autocomplete endpoint. Results keep the API's own
// relevance order.
func (c *Client) Search(ctx context.Context, query metadata.Query) ([]metadata.Candidate, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("api key not configured: %w", metadata.ErrProviderUnavailable)
	}

	endpoint := c.baseURL + "/search/autocomplete/" + url.PathEscape(query.Title)
	var payload searchResponse
	if err := c.getJSON(ctx, endpoint, &payload); err != nil {
		return nil, err
	}
	if !payload.Success {
		return nil, errors.New("steamgriddb search unsuccessful")
	}

	candidates := make([]metadata.Candidate, 0, len(payload.Data))
	for _, entry := range payload.Data {
		gameID := strconv.FormatInt(entry.ID, 10)
		candidate := metadata.Candidate{
			ID:         "sgdb-" + gameID,
			Title:      entry.Name,
			ExternalID: gameID,
		}
		if entry.ReleaseDate > 0 {
			candidate.Year = time.Unix(entry.ReleaseDate, 0).UTC().Year()
			candidate.ReleaseDate = time.Unix(entry.ReleaseDate, 0).UTC().Format("2006-01-02")
		}
		if len(entry.Types) > 0 {
			candidate.PlatformHint = entry.Types[0]
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

type artEntry struct {
	URL string `json:"url"`
}

type artResponse struct {
	Success bool       `json:"success"`
	Data    []artEntry `json:"data"`
}

// FetchAssets resolves grid, hero, and logo art for a game id. Box art comes
// from portrait grids, banners from landscape grids.
func (c *Client) FetchAssets(ctx context.Context, externalID string) (metadata.AssetURLs, error) {
	if c.apiKey == "" {
		return metadata.AssetURLs{}, fmt.Errorf("api key not configured: %w", metadata.ErrProviderUnavailable)
	}
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return metadata.AssetURLs{}, errors.New("steamgriddb game id required")
	}

	var urls metadata.AssetURLs
	urls.BoxArt = c.firstArt(ctx, "/grids/game/"+externalID+"?dimensions=600x900")
	urls.Banner = c.firstArt(ctx, "/grids/game/"+externalID+"?dimensions=920x430")
	urls.Hero = c.firstArt(ctx, "/heroes/game/"+externalID)
	urls.Logo = c.firstArt(ctx, "/logos/game/"+externalID)
	urls.Icon = c.firstArt(ctx, "/icons/game/"+externalID)
	return urls, nil
}

// firstArt returns the top-voted asset URL for an endpoint, or empty when the
// game has none of that type. Per-type failures degrade to missing art.
func (c *Client) firstArt(ctx context.Context, path string) string {
	var payload artResponse
	if err := c.getJSON(ctx, c.baseURL+path, &payload); err != nil {
		return ""
	}
	if !payload.Success || len(payload.Data) == 0 {
		return ""
	}
	return payload.Data[0].URL
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("steamgriddb auth rejected (%d): %w", resp.StatusCode, metadata.ErrProviderUnavailable)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("steamgriddb returned %d (latency=%v)", resp.StatusCode, latency)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode steamgriddb response: %w", err)
	}
	return nil
}
