// Package mock provides a configurable in-memory provider for tests.
package mock

import (
	"context"
	"sync/atomic"

	"github.com/GamblerIX/duanju/internal/provider"
)

// Provider is a test double implementing provider.Provider. Behavior is
// injected through function fields; nil fields return empty results.
// Call counters are atomic so tests can assert on concurrent usage.
type Provider struct {
	ProviderInfo provider.Info

	SearchFunc          func(ctx context.Context, keyword string, page int) (*provider.SearchResult, error)
	CategoriesFunc      func(ctx context.Context) ([]string, error)
	CategoryDramasFunc  func(ctx context.Context, category string, offset int) (*provider.CategoryResult, error)
	RecommendationsFunc func(ctx context.Context) ([]provider.DramaInfo, error)
	EpisodesFunc        func(ctx context.Context, dramaID string) (*provider.EpisodeList, error)
	VideoURLFunc        func(ctx context.Context, episodeID, quality string) (*provider.VideoInfo, error)

	SearchCalls          atomic.Int64
	CategoriesCalls      atomic.Int64
	CategoryDramasCalls  atomic.Int64
	RecommendationsCalls atomic.Int64
	EpisodesCalls        atomic.Int64
	VideoURLCalls        atomic.Int64
}

// New returns a mock provider with the given id and every capability
// enabled.
func New(id string) *Provider {
	return &Provider{
		ProviderInfo: provider.Info{
			ID:   id,
			Name: "mock " + id,
			Capabilities: provider.Capabilities{
				Search:           true,
				Categories:       true,
				CategoryDramas:   true,
				Recommendations:  true,
				Episodes:         true,
				VideoURL:         true,
				QualitySelection: true,
				Pagination:       true,
				QPSBudget:        100,
				Burst:            100,
				Qualities:        []string{"1080p", "720p"},
			},
		},
	}
}

func (p *Provider) Info() provider.Info { return p.ProviderInfo }

func (p *Provider) Search(ctx context.Context, keyword string, page int) (*provider.SearchResult, error) {
	p.SearchCalls.Add(1)
	if p.SearchFunc != nil {
		return p.SearchFunc(ctx, keyword, page)
	}
	return &provider.SearchResult{StatusCode: provider.StatusOK, Items: []provider.DramaInfo{}, Page: page}, nil
}

func (p *Provider) Categories(ctx context.Context) ([]string, error) {
	p.CategoriesCalls.Add(1)
	if p.CategoriesFunc != nil {
		return p.CategoriesFunc(ctx)
	}
	return []string{}, nil
}

func (p *Provider) CategoryDramas(ctx context.Context, category string, offset int) (*provider.CategoryResult, error) {
	p.CategoryDramasCalls.Add(1)
	if p.CategoryDramasFunc != nil {
		return p.CategoryDramasFunc(ctx, category, offset)
	}
	return &provider.CategoryResult{StatusCode: provider.StatusOK, Category: category, Items: []provider.DramaInfo{}, Offset: offset}, nil
}

func (p *Provider) Recommendations(ctx context.Context) ([]provider.DramaInfo, error) {
	p.RecommendationsCalls.Add(1)
	if p.RecommendationsFunc != nil {
		return p.RecommendationsFunc(ctx)
	}
	return []provider.DramaInfo{}, nil
}

func (p *Provider) Episodes(ctx context.Context, dramaID string) (*provider.EpisodeList, error) {
	p.EpisodesCalls.Add(1)
	if p.EpisodesFunc != nil {
		return p.EpisodesFunc(ctx, dramaID)
	}
	return &provider.EpisodeList{StatusCode: provider.StatusOK, DramaID: dramaID, Episodes: []provider.EpisodeInfo{}}, nil
}

func (p *Provider) VideoURL(ctx context.Context, episodeID, quality string) (*provider.VideoInfo, error) {
	p.VideoURLCalls.Add(1)
	if p.VideoURLFunc != nil {
		return p.VideoURLFunc(ctx, episodeID, quality)
	}
	resolved := provider.ResolveQuality(quality, p.ProviderInfo.Capabilities.Qualities)
	return &provider.VideoInfo{StatusCode: provider.StatusOK, PlayURL: "http://cdn.example/" + episodeID, Quality: resolved}, nil
}
