// Package steamstore queries the Steam storefront API. Steam is the
// first-party store provider: a known app id resolves directly to rich
// details, otherwise the storefront search supplies candidates.
package steamstore

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

const defaultCDNBaseURL = "https://shared.akamai.steamstatic.com/store_item_assets/steam/apps"

// Client provides access to the Steam storefront API.
type Client struct {
	baseURL    string
	cdnBaseURL string
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

// WithCDNBaseURL overrides the asset CDN base.
func WithCDNBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.cdnBaseURL = strings.TrimRight(base, "/")
		}
	}
}

// New creates a Steam storefront client.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("steam store base url required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		cdnBaseURL: defaultCDNBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Kind reports the first-party store band.
func (c *Client) Kind() metadata.Kind { return metadata.KindFirstPartyStore }

// Name identifies the provider.
func (c *Client) Name() string { return "steamstore" }

type searchItem struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type searchResponse struct {
	Total int          `json:"total"`
	Items []searchItem `json:"items"`
}

// Search resolves candidates from the storefront. A Steam-scanned query with
// a known app id is answered by a direct details lookup; everything else
// goes through storefront search.
func (c *Client) Search(ctx context.Context, query metadata.Query) ([]metadata.Candidate, error) {
	if query.Source == "steam" && strings.TrimSpace(query.SourceAppID) != "" {
		candidate, err := c.details(ctx, query.SourceAppID)
		if err != nil {
			return nil, err
		}
		if candidate == nil {
			return nil, nil
		}
		return []metadata.Candidate{*candidate}, nil
	}

	endpoint, err := url.Parse(c.baseURL + "/storesearch/")
	if err != nil {
		return nil, fmt.Errorf("parse storefront url: %w", err)
	}
	params := url.Values{}
	params.Set("term", query.Title)
	params.Set("l", "english")
	params.Set("cc", "US")
	endpoint.RawQuery = params.Encode()

	var payload searchResponse
	if err := c.getJSON(ctx, endpoint.String(), &payload); err != nil {
		return nil, err
	}

	candidates := make([]metadata.Candidate, 0, len(payload.Items))
	for _, item := range payload.Items {
		appID := strconv.FormatInt(item.ID, 10)
		candidates = append(candidates, metadata.Candidate{
			ID:           "steam-" + appID,
			Title:        item.Name,
			ExternalID:   appID,
			PlatformHint: "steam",
		})
	}
	return candidates, nil
}

type detailsData struct {
	Name             string `json:"name"`
	ShortDescription string `json:"short_description"`
	ReleaseDate      struct {
		Date string `json:"date"`
	} `json:"release_date"`
	Genres []struct {
		Description string `json:"description"`
	} `json:"genres"`
	Developers []string `json:"developers"`
	Publishers []string `json:"publishers"`
	Metacritic struct {
		Score float64 `json:"score"`
	} `json:"metacritic"`
}

type detailsEnvelope struct {
	Success bool        `json:"success"`
	Data    detailsData `json:"data"`
}

func (c *Client) details(ctx context.Context, appID string) (*metadata.Candidate, error) {
	endpoint, err := url.Parse(c.baseURL + "/appdetails")
	if err != nil {
		return nil, fmt.Errorf("parse appdetails url: %w", err)
	}
	params := url.Values{}
	params.Set("appids", appID)
	params.Set("l", "english")
	endpoint.RawQuery = params.Encode()

	payload := map[string]detailsEnvelope{}
	if err := c.getJSON(ctx, endpoint.String(), &payload); err != nil {
		return nil, err
	}
	envelope, ok := payload[appID]
	if !ok || !envelope.Success {
		return nil, nil
	}

	data := envelope.Data
	candidate := &metadata.Candidate{
		ID:           "steam-" + appID,
		Title:        data.Name,
		ExternalID:   appID,
		PlatformHint: "steam",
		Description:  data.ShortDescription,
		ReleaseDate:  data.ReleaseDate.Date,
		Developers:   data.Developers,
		Publishers:   data.Publishers,
		CriticScore:  data.Metacritic.Score,
	}
	for _, genre := range data.Genres {
		candidate.Genres = append(candidate.Genres, genre.Description)
	}
	if year := yearFromDate(data.ReleaseDate.Date); year > 0 {
		candidate.Year = year
	}
	return candidate, nil
}

// FetchAssets derives CDN asset URLs from the app id. Steam's asset layout
// is deterministic per app, so no extra API call is needed.
func (c *Client) FetchAssets(_ context.Context, externalID string) (metadata.AssetURLs, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return metadata.AssetURLs{}, errors.New("steam app id required")
	}
	base := c.cdnBaseURL + "/" + externalID
	return metadata.AssetURLs{
		BoxArt: base + "/library_600x900_2x.jpg",
		Banner: base + "/header.jpg",
		Logo:   base + "/logo.png",
		Hero:   base + "/library_hero.jpg",
	}, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("storefront returned %d (latency=%v)", resp.StatusCode, latency)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode storefront response: %w", err)
	}
	return nil
}

// yearFromDate extracts a 4-digit year from Steam's loosely formatted
// release date strings ("19 Nov, 2004").
func yearFromDate(date string) int {
	fields := strings.Fields(strings.ReplaceAll(date, ",", " "))
	for _, field := range fields {
		if len(field) == 4 {
			if year, err := strconv.Atoi(field); err == nil && year > 1970 && year < 2100 {
				return year
			}
		}
	}
	return 0
}
