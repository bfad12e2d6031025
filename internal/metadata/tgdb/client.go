// Package tgdb queries TheGamesDB, the open/broad database provider. It
// sits in the lowest priority band and mostly widens coverage for titles
// the curated providers miss.
package tgdb

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

// Client provides access to TheGamesDB API.
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

// New creates a TheGamesDB client.
func New(apiKey, baseURL string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("tgdb api key required")
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("tgdb base url required")
	}
	client := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Kind reports the open database band.
func (c *Client) Kind() metadata.Kind { return metadata.KindOpenDatabase }

// Name identifies the provider.
func (c *Client) Name() string { return "tgdb" }

type gameEntry struct {
	ID          int64  `json:"id"`
	GameTitle   string `json:"game_title"`
	ReleaseDate string `json:"release_date"`
	Overview    string `json:"overview"`
	Rating      string `json:"rating"`
}

type searchResponse struct {
	Data struct {
		Games []gameEntry `json:"games"`
	} `json:"data"`
}

// Search queries games by name.
func (c *Client) Search(ctx context.Context, query metadata.Query) ([]metadata.Candidate, error) {
	endpoint, err := url.Parse(c.baseURL + "/Games/ByGameName")
	if err != nil {
		return nil, fmt.Errorf("parse tgdb url: %w", err)
	}
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("name", query.Title)
	params.Set("fields", "overview,rating")
	endpoint.RawQuery = params.Encode()

	var payload searchResponse
	if err := c.getJSON(ctx, endpoint.String(), &payload); err != nil {
		return nil, err
	}

	candidates := make([]metadata.Candidate, 0, len(payload.Data.Games))
	for _, game := range payload.Data.Games {
		gameID := strconv.FormatInt(game.ID, 10)
		candidate := metadata.Candidate{
			ID:          "tgdb-" + gameID,
			Title:       game.GameTitle,
			ExternalID:  gameID,
			Description: game.Overview,
			ReleaseDate: game.ReleaseDate,
			AgeRating:   game.Rating,
		}
		if len(game.ReleaseDate) >= 4 {
			if year, err := strconv.Atoi(game.ReleaseDate[:4]); err == nil {
				candidate.Year = year
			}
		}
		candidates = append(candidates, candidate)
	}
	return candidates, nil
}

type imagesResponse struct {
	Data struct {
		BaseURL struct {
			Original string `json:"original"`
		} `json:"base_url"`
		Images map[string][]struct {
			Type     string `json:"type"`
			Side     string `json:"side"`
			Filename string `json:"filename"`
		} `json:"images"`
	} `json:"data"`
}

// FetchAssets resolves art for a game id from the images endpoint.
func (c *Client) FetchAssets(ctx context.Context, externalID string) (metadata.AssetURLs, error) {
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return metadata.AssetURLs{}, errors.New("tgdb game id required")
	}

	endpoint, err := url.Parse(c.baseURL + "/Games/Images")
	if err != nil {
		return metadata.AssetURLs{}, fmt.Errorf("parse tgdb images url: %w", err)
	}
	params := url.Values{}
	params.Set("apikey", c.apiKey)
	params.Set("games_id", externalID)
	endpoint.RawQuery = params.Encode()

	var payload imagesResponse
	if err := c.getJSON(ctx, endpoint.String(), &payload); err != nil {
		return metadata.AssetURLs{}, err
	}

	base := strings.TrimRight(payload.Data.BaseURL.Original, "/")
	var urls metadata.AssetURLs
	for _, image := range payload.Data.Images[externalID] {
		assetURL := base + "/" + strings.TrimLeft(image.Filename, "/")
		switch image.Type {
		case "boxart":
			if image.Side == "back" {
				continue
			}
			if urls.BoxArt == "" {
				urls.BoxArt = assetURL
			}
		case "banner":
			if urls.Banner == "" {
				urls.Banner = assetURL
			}
		case "clearlogo":
			if urls.Logo == "" {
				urls.Logo = assetURL
			}
		case "fanart":
			if urls.Hero == "" {
				urls.Hero = assetURL
			}
		case "icon":
			if urls.Icon == "" {
				urls.Icon = assetURL
			}
		}
	}
	return urls, nil
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
		return fmt.Errorf("tgdb returned %d (latency=%v)", resp.StatusCode, latency)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode tgdb response: %w", err)
	}
	return nil
}
