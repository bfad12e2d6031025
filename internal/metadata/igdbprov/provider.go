// Package igdbprov adapts IGDB as the general database provider. IGDB
// authenticates via a Twitch app access token fetched at construction.
package igdbprov

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

	"github.com/Henry-Sarabia/igdb/v2"

	"onyx/internal/metadata"
)

const tokenEndpoint = "https://id.twitch.tv/oauth2/token"

// Provider wraps the IGDB API client.
type Provider struct {
	client *igdb.Client
}

// New authenticates with Twitch and builds an IGDB provider.
func New(clientID, clientSecret string) (*Provider, error) {
	clientID = strings.TrimSpace(clientID)
	clientSecret = strings.TrimSpace(clientSecret)
	if clientID == "" || clientSecret == "" {
		return nil, errors.New("igdb client id and secret required")
	}
	token, err := fetchTwitchToken(clientID, clientSecret)
	if err != nil {
		return nil, fmt.Errorf("authenticate with twitch: %w", err)
	}
	return &Provider{client: igdb.NewClient(clientID, token, nil)}, nil
}

// Kind reports the general database band.
func (p *Provider) Kind() metadata.Kind { return metadata.KindGeneralDatabase }

// Name identifies the provider.
func (p *Provider) Name() string { return "igdb" }

// Search queries IGDB by title. The underlying client carries its own HTTP
// timeout; the context is checked before dispatch since the client does not
// thread it through.
func (p *Provider) Search(ctx context.Context, query metadata.Query) ([]metadata.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	games, err := p.client.Games.Search(
		query.Title,
		igdb.SetFields("id", "name", "summary", "first_release_date", "total_rating", "aggregated_rating", "cover"),
		igdb.SetLimit(10),
	)
	if err != nil {
		return nil, fmt.Errorf("igdb search: %w", err)
	}

	candidates := make([]metadata.Candidate, 0, len(games))
	for _, game := range games {
		candidates = append(candidates, convertGame(game))
	}
	return candidates, nil
}

// FetchAssets resolves the cover image for a game id. IGDB's image CDN path
// is deterministic from the image id.
func (p *Provider) FetchAssets(ctx context.Context, externalID string) (metadata.AssetURLs, error) {
	if err := ctx.Err(); err != nil {
		return metadata.AssetURLs{}, err
	}
	gameID, err := strconv.Atoi(externalID)
	if err != nil {
		return metadata.AssetURLs{}, fmt.Errorf("invalid igdb game id %q", externalID)
	}

	game, err := p.client.Games.Get(gameID, igdb.SetFields("id", "cover"))
	if err != nil {
		return metadata.AssetURLs{}, fmt.Errorf("igdb game lookup: %w", err)
	}
	if game.Cover == 0 {
		return metadata.AssetURLs{}, nil
	}

	cover, err := p.client.Covers.Get(game.Cover, igdb.SetFields("image_id"))
	if err != nil {
		return metadata.AssetURLs{}, fmt.Errorf("igdb cover lookup: %w", err)
	}
	if cover.ImageID == "" {
		return metadata.AssetURLs{}, nil
	}
	return metadata.AssetURLs{
		BoxArt: fmt.Sprintf("https://images.igdb.com/igdb/image/upload/t_cover_big/%s.jpg", cover.ImageID),
	}, nil
}

func convertGame(game *igdb.Game) metadata.Candidate {
	id := strconv.Itoa(game.ID)
	candidate := metadata.Candidate{
		ID:          "igdb-" + id,
		Title:       game.Name,
		ExternalID:  id,
		Description: game.Summary,
		CommScore:   game.TotalRating,
		CriticScore: game.AggregatedRating,
	}
	if game.FirstReleaseDate != 0 {
		released := time.Unix(int64(game.FirstReleaseDate), 0).UTC()
		candidate.Year = released.Year()
		candidate.ReleaseDate = released.Format("2006-01-02")
	}
	return candidate
}

func fetchTwitchToken(clientID, clientSecret string) (string, error) {
	vals := url.Values{}
	vals.Set("client_id", clientID)
	vals.Set("client_secret", clientSecret)
	vals.Set("grant_type", "client_credentials")

	resp, err := http.PostForm(tokenEndpoint, vals)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	if result.AccessToken == "" {
		return "", errors.New("empty access token")
	}
	return result.AccessToken, nil
}
