package fetch

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/GamblerIX/duanju/internal/config"
	"github.com/GamblerIX/duanju/internal/provider"
)

// Options selects the provider for one query. An empty Provider means
// the registry's active provider. Fallback opts into trying the other
// capable providers when the selected one fails upstream; it is a
// per-call policy, never an ambient default.
type Options struct {
	Provider string
	Fallback bool
}

// Service answers canonical queries. Every query flows through the same
// pipeline: capability check first (no I/O for unsupported operations),
// then the cache and dedup engine, then the rate governor, then the
// adapter.
type Service struct {
	registry *provider.Registry
	cache    *Cache
	governor *Governor
	ttl      config.CacheConfig
	logger   zerolog.Logger
}

// NewService creates the query service.
func NewService(registry *provider.Registry, cache *Cache, governor *Governor, cacheCfg config.CacheConfig, logger zerolog.Logger) *Service {
	return &Service{
		registry: registry,
		cache:    cache,
		governor: governor,
		ttl:      cacheCfg,
		logger:   logger.With().Str("component", "fetch").Logger(),
	}
}

// Registry exposes the underlying registry for provider management.
func (s *Service) Registry() *provider.Registry {
	return s.registry
}

// CacheStats returns a snapshot of the cache counters.
func (s *Service) CacheStats() Stats {
	return s.cache.Stats()
}

// ClearCache drops all resolved cache entries.
func (s *Service) ClearCache() int {
	return s.cache.Clear()
}

// SweepCache removes expired cache entries.
func (s *Service) SweepCache() int {
	return s.cache.Sweep()
}

func (s *Service) resolveProvider(opts Options) (provider.Provider, error) {
	if opts.Provider != "" {
		return s.registry.Get(opts.Provider)
	}
	return s.registry.Active()
}

// Search returns one page of search hits for a keyword.
func (s *Service) Search(ctx context.Context, keyword string, page int, opts Options) (*provider.SearchResult, error) {
	if page < 1 {
		page = 1
	}

	p, err := s.resolveProvider(opts)
	if err != nil {
		return nil, err
	}

	result, err := s.searchOn(ctx, p, keyword, page)
	if err != nil && s.shouldFallback(opts, err) {
		for _, alt := range s.fallbackCandidates(provider.OpSearch, p) {
			if r, altErr := s.searchOn(ctx, alt, keyword, page); altErr == nil {
				s.logFallback(p, alt, provider.OpSearch)
				return r, nil
			}
		}
	}
	return result, err
}

func (s *Service) searchOn(ctx context.Context, p provider.Provider, keyword string, page int) (*provider.SearchResult, error) {
	info := p.Info()
	if !info.Capabilities.Supports(provider.OpSearch) {
		return nil, provider.NewUnsupportedError(info.ID, provider.OpSearch)
	}

	fp := Fingerprint(info.ID, provider.OpSearch, map[string]string{
		"keyword": keyword,
		"page":    strconv.Itoa(page),
	})
	v, err := s.fetch(ctx, fp, s.ttl.SearchTTL, info.ID, func(fctx context.Context) (interface{}, error) {
		return p.Search(fctx, keyword, page)
	})
	if err != nil {
		return nil, err
	}
	return v.(*provider.SearchResult), nil
}

// Categories returns the provider's ordered category names.
func (s *Service) Categories(ctx context.Context, opts Options) ([]string, error) {
	p, err := s.resolveProvider(opts)
	if err != nil {
		return nil, err
	}

	result, err := s.categoriesOn(ctx, p)
	if err != nil && s.shouldFallback(opts, err) {
		for _, alt := range s.fallbackCandidates(provider.OpCategories, p) {
			if r, altErr := s.categoriesOn(ctx, alt); altErr == nil {
				s.logFallback(p, alt, provider.OpCategories)
				return r, nil
			}
		}
	}
	return result, err
}

func (s *Service) categoriesOn(ctx context.Context, p provider.Provider) ([]string, error) {
	info := p.Info()
	if !info.Capabilities.Supports(provider.OpCategories) {
		return nil, provider.NewUnsupportedError(info.ID, provider.OpCategories)
	}

	fp := Fingerprint(info.ID, provider.OpCategories, nil)
	v, err := s.fetch(ctx, fp, s.ttl.CategoriesTTL, info.ID, func(fctx context.Context) (interface{}, error) {
		return p.Categories(fctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]string), nil
}

// CategoryDramas returns one page of a category listing.
func (s *Service) CategoryDramas(ctx context.Context, category string, offset int, opts Options) (*provider.CategoryResult, error) {
	if offset < 0 {
		offset = 0
	}

	p, err := s.resolveProvider(opts)
	if err != nil {
		return nil, err
	}

	result, err := s.categoryDramasOn(ctx, p, category, offset)
	if err != nil && s.shouldFallback(opts, err) {
		for _, alt := range s.fallbackCandidates(provider.OpCategoryDramas, p) {
			if r, altErr := s.categoryDramasOn(ctx, alt, category, offset); altErr == nil {
				s.logFallback(p, alt, provider.OpCategoryDramas)
				return r, nil
			}
		}
	}
	return result, err
}

func (s *Service) categoryDramasOn(ctx context.Context, p provider.Provider, category string, offset int) (*provider.CategoryResult, error) {
	info := p.Info()
	if !info.Capabilities.Supports(provider.OpCategoryDramas) {
		return nil, provider.NewUnsupportedError(info.ID, provider.OpCategoryDramas)
	}

	fp := Fingerprint(info.ID, provider.OpCategoryDramas, map[string]string{
		"category": category,
		"offset":   strconv.Itoa(offset),
	})
	v, err := s.fetch(ctx, fp, s.ttl.CategoryDramasTTL, info.ID, func(fctx context.Context) (interface{}, error) {
		return p.CategoryDramas(fctx, category, offset)
	})
	if err != nil {
		return nil, err
	}
	return v.(*provider.CategoryResult), nil
}

// Recommendations returns the provider's recommended dramas.
func (s *Service) Recommendations(ctx context.Context, opts Options) ([]provider.DramaInfo, error) {
	p, err := s.resolveProvider(opts)
	if err != nil {
		return nil, err
	}

	result, err := s.recommendationsOn(ctx, p)
	if err != nil && s.shouldFallback(opts, err) {
		for _, alt := range s.fallbackCandidates(provider.OpRecommendations, p) {
			if r, altErr := s.recommendationsOn(ctx, alt); altErr == nil {
				s.logFallback(p, alt, provider.OpRecommendations)
				return r, nil
			}
		}
	}
	return result, err
}

func (s *Service) recommendationsOn(ctx context.Context, p provider.Provider) ([]provider.DramaInfo, error) {
	info := p.Info()
	if !info.Capabilities.Supports(provider.OpRecommendations) {
		return nil, provider.NewUnsupportedError(info.ID, provider.OpRecommendations)
	}

	fp := Fingerprint(info.ID, provider.OpRecommendations, nil)
	v, err := s.fetch(ctx, fp, s.ttl.RecommendationsTTL, info.ID, func(fctx context.Context) (interface{}, error) {
		return p.Recommendations(fctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]provider.DramaInfo), nil
}

// Episodes returns the episode listing of a drama. Drama ids are
// provider-scoped, so no fallback is offered here: another provider
// cannot resolve this id.
func (s *Service) Episodes(ctx context.Context, dramaID string, opts Options) (*provider.EpisodeList, error) {
	p, err := s.resolveProvider(opts)
	if err != nil {
		return nil, err
	}

	info := p.Info()
	if !info.Capabilities.Supports(provider.OpEpisodes) {
		return nil, provider.NewUnsupportedError(info.ID, provider.OpEpisodes)
	}

	fp := Fingerprint(info.ID, provider.OpEpisodes, map[string]string{"drama_id": dramaID})
	v, err := s.fetch(ctx, fp, s.ttl.EpisodesTTL, info.ID, func(fctx context.Context) (interface{}, error) {
		return p.Episodes(fctx, dramaID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*provider.EpisodeList), nil
}

// VideoURL resolves a playable URL for an episode. The quality is
// normalized against the provider's declared levels before it enters the
// fingerprint, so "1080p" and a downgraded-to-720p request share the
// entry they actually resolve to. Episode ids are provider-scoped; no
// fallback.
func (s *Service) VideoURL(ctx context.Context, episodeID, quality string, opts Options) (*provider.VideoInfo, error) {
	p, err := s.resolveProvider(opts)
	if err != nil {
		return nil, err
	}

	info := p.Info()
	if !info.Capabilities.Supports(provider.OpVideoURL) {
		return nil, provider.NewUnsupportedError(info.ID, provider.OpVideoURL)
	}

	resolved := quality
	if info.Capabilities.QualitySelection {
		resolved = provider.ResolveQuality(quality, info.Capabilities.Qualities)
	}

	fp := Fingerprint(info.ID, provider.OpVideoURL, map[string]string{
		"episode_id": episodeID,
		"quality":    resolved,
	})
	v, err := s.fetch(ctx, fp, s.ttl.VideoTTL, info.ID, func(fctx context.Context) (interface{}, error) {
		return p.VideoURL(fctx, episodeID, resolved)
	})
	if err != nil {
		return nil, err
	}
	return v.(*provider.VideoInfo), nil
}

// fetch runs one governed upstream call through the cache. The governor
// is consulted inside the fetch closure so admission happens once per
// deduplicated fetch, not once per waiting caller.
func (s *Service) fetch(ctx context.Context, fingerprint string, ttl time.Duration, providerID string, call func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	return s.cache.GetOrFetch(ctx, fingerprint, ttl, func(fctx context.Context) (interface{}, error) {
		if err := s.governor.Acquire(fctx, providerID); err != nil {
			return nil, err
		}
		return call(fctx)
	})
}

// shouldFallback reports whether the error warrants trying another
// provider. Only upstream failures qualify: unsupported operations and
// rate limits are answers, not outages.
func (s *Service) shouldFallback(opts Options, err error) bool {
	return opts.Fallback && provider.IsUpstream(err)
}

// fallbackCandidates returns the other providers capable of the
// operation, in registration order.
func (s *Service) fallbackCandidates(op provider.Operation, failed provider.Provider) []provider.Provider {
	failedID := failed.Info().ID
	capable := s.registry.ListByCapability(op)
	out := make([]provider.Provider, 0, len(capable))
	for _, p := range capable {
		if p.Info().ID != failedID {
			out = append(out, p)
		}
	}
	return out
}

func (s *Service) logFallback(from, to provider.Provider, op provider.Operation) {
	s.logger.Info().
		Str("from", from.Info().ID).
		Str("to", to.Info().ID).
		Str("op", string(op)).
		Msg("Fallback provider served the query")
}
