package metadata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"onyx/internal/config"
	"onyx/internal/logging"
	"onyx/internal/services"
)

// ErrProviderUnavailable marks the mandatory curated art provider as
// unreachable: unconfigured, failing authentication, or not registered.
// Distinct from a zero-result success.
var ErrProviderUnavailable = errors.New("curated art provider unavailable")

// Resolver fans search queries out to every registered provider and merges
// the scored candidate union.
type Resolver struct {
	providers       []Provider
	providerTimeout time.Duration
	artTimeout      time.Duration
	masterTimeout   time.Duration
	confidenceFloor float64
	cache           *searchCache
	logger          *slog.Logger
}

// NewResolver builds a resolver over the given providers. Provider order
// encodes band priority for equal-score merges, so callers register
// first-party store first and the open database last.
func NewResolver(cfg *config.Config, logger *slog.Logger, providers ...Provider) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	ttl := time.Duration(cfg.Matching.ProviderCacheMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Resolver{
		providers:       providers,
		providerTimeout: cfg.ProviderTimeout(),
		artTimeout:      cfg.ArtProviderTimeout(),
		masterTimeout:   cfg.MasterTimeout(),
		confidenceFloor: cfg.Matching.ConfidenceFloor,
		cache:           newSearchCache(ttl),
		logger:          logging.NewComponentLogger(logger, "metadata"),
	}
}

type contribution struct {
	index      int
	provider   Provider
	candidates []Candidate
	err        error
}

// Search queries all providers concurrently and returns the merged candidate
// union sorted by final score, descending. The mandatory curated art
// provider's failure is a hard error; optional provider failures only narrow
// coverage. Optional providers still pending at the master deadline are
// abandoned.
func (r *Resolver) Search(ctx context.Context, query Query) ([]Candidate, error) {
	title := strings.TrimSpace(query.Title)
	if title == "" {
		return nil, services.Wrap(services.ErrValidation, "metadata", "search", "title must not be empty", nil)
	}
	query.Title = title

	mandatoryIdx := -1
	for i, provider := range r.providers {
		if provider.Kind() == KindCuratedArt {
			mandatoryIdx = i
			break
		}
	}
	if mandatoryIdx < 0 {
		return nil, services.Wrap(services.ErrConfiguration, "metadata", "search", "no curated art provider registered", ErrProviderUnavailable)
	}

	cacheKey := fmt.Sprintf("%s|y=%d|p=%s", foldTitle(title), query.Year, strings.ToLower(query.Platform))
	if cached, ok := r.cache.get(cacheKey); ok {
		return cached, nil
	}
	if err := r.cache.throttle(ctx); err != nil {
		return nil, err
	}

	results := make(chan contribution, len(r.providers))
	for i, provider := range r.providers {
		timeout := r.providerTimeout
		if i == mandatoryIdx {
			timeout = r.artTimeout
		}
		go func(index int, p Provider, timeout time.Duration) {
			pctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			candidates, err := p.Search(pctx, query)
			results <- contribution{index: index, provider: p, candidates: candidates, err: err}
		}(i, provider, timeout)
	}

	received := make(map[int]contribution, len(r.providers))
	deadline := time.NewTimer(r.masterTimeout)
	defer deadline.Stop()

	pending := len(r.providers)
	expired := false

collect:
	for pending > 0 {
		select {
		case contrib := <-results:
			pending--
			received[contrib.index] = contrib
			if contrib.index == mandatoryIdx && contrib.err != nil {
				return nil, r.mandatoryFailure(contrib)
			}
			if expired {
				if _, ok := received[mandatoryIdx]; ok {
					break collect
				}
			}
		case <-deadline.C:
			// Keep waiting for the mandatory provider only; its own
			// shorter timeout bounds the wait.
			expired = true
			if _, ok := received[mandatoryIdx]; ok {
				break collect
			}
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	var merged []Candidate
	for i, provider := range r.providers {
		contrib, ok := received[i]
		if !ok {
			r.logger.Warn("provider missed master deadline",
				logging.String("provider", provider.Name()),
				logging.Duration("deadline", r.masterTimeout))
			continue
		}
		if contrib.err != nil {
			r.logger.Warn("optional provider failed",
				logging.String("provider", provider.Name()),
				logging.Error(contrib.err))
			continue
		}
		candidates := contrib.candidates
		for j := range candidates {
			candidates[j].Kind = provider.Kind()
			candidates[j].Provider = provider.Name()
		}
		scoreBand(query.Title, provider.Kind(), candidates)
		merged = append(merged, candidates...)
	}
	sortCandidates(merged)

	r.logger.Debug("search merged",
		logging.String("title", query.Title),
		logging.Int("candidates", len(merged)))
	r.cache.put(cacheKey, merged)
	return merged, nil
}

// FetchAssets resolves remote asset URLs for a candidate via the provider
// that produced it.
func (r *Resolver) FetchAssets(ctx context.Context, candidate Candidate) (AssetURLs, error) {
	for _, provider := range r.providers {
		if provider.Name() != candidate.Provider {
			continue
		}
		fctx, cancel := context.WithTimeout(ctx, r.providerTimeout)
		defer cancel()
		return provider.FetchAssets(fctx, candidate.ExternalID)
	}
	return AssetURLs{}, services.Wrap(services.ErrNotFound, "metadata", "fetch-assets",
		fmt.Sprintf("no provider named %q registered", candidate.Provider), nil)
}

func (r *Resolver) mandatoryFailure(contrib contribution) error {
	r.logger.Error("mandatory provider failed",
		logging.String("provider", contrib.provider.Name()),
		logging.Error(contrib.err))
	if errors.Is(contrib.err, ErrProviderUnavailable) {
		return services.Wrap(services.ErrConfiguration, "metadata", "search", "curated art provider", contrib.err)
	}
	return services.Wrap(services.ErrUnavailable, "metadata", "search", "curated art provider", contrib.err)
}
