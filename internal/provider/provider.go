// Package provider defines the canonical models, the adapter contract,
// and the registry shared by all upstream short-drama services.
package provider

import "context"

// Operation identifies one canonical adapter operation. Operations are
// the unit of capability declaration and of cache fingerprinting.
type Operation string

const (
	OpSearch          Operation = "search"
	OpCategories      Operation = "categories"
	OpCategoryDramas  Operation = "categoryDramas"
	OpRecommendations Operation = "recommendations"
	OpEpisodes        Operation = "episodes"
	OpVideoURL        Operation = "videoUrl"
)

// Capabilities declares which canonical operations an adapter supports,
// its request budget, and the quality levels it can resolve. This is
// static per adapter and queried before dispatch so unsupported
// operations fail without any network I/O.
type Capabilities struct {
	Search            bool     `json:"search"`
	Categories        bool     `json:"categories"`
	CategoryDramas    bool     `json:"categoryDramas"`
	Recommendations   bool     `json:"recommendations"`
	Episodes          bool     `json:"episodes"`
	VideoURL          bool     `json:"videoUrl"`
	QualitySelection  bool     `json:"qualitySelection"`
	Pagination        bool     `json:"pagination"`
	DynamicCategories bool     `json:"dynamicCategories"`
	QPSBudget         float64  `json:"qpsBudget"`
	Burst             int      `json:"burst"`
	Qualities         []string `json:"qualities"`
}

// Supports reports whether the given operation is declared.
func (c Capabilities) Supports(op Operation) bool {
	switch op {
	case OpSearch:
		return c.Search
	case OpCategories:
		return c.Categories
	case OpCategoryDramas:
		return c.CategoryDramas
	case OpRecommendations:
		return c.Recommendations
	case OpEpisodes:
		return c.Episodes
	case OpVideoURL:
		return c.VideoURL
	default:
		return false
	}
}

// Info is the static metadata an adapter declares about itself.
type Info struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Description  string       `json:"description,omitempty"`
	Version      string       `json:"version,omitempty"`
	BaseURL      string       `json:"baseUrl,omitempty"`
	Capabilities Capabilities `json:"capabilities"`
}

// Provider is the adapter contract. Implementations translate canonical
// queries into upstream requests and upstream responses into canonical
// models. Adapters perform network I/O only; all caching is externalized
// so policy stays uniform across providers.
type Provider interface {
	// Info returns the adapter's static metadata and capabilities.
	Info() Info

	// Search returns one page of search hits for a keyword.
	Search(ctx context.Context, keyword string, page int) (*SearchResult, error)

	// Categories returns the ordered category names. The list is static
	// unless the adapter declares DynamicCategories.
	Categories(ctx context.Context) ([]string, error)

	// CategoryDramas returns one page of a category listing.
	CategoryDramas(ctx context.Context, category string, offset int) (*CategoryResult, error)

	// Recommendations returns the provider's recommended dramas.
	Recommendations(ctx context.Context) ([]DramaInfo, error)

	// Episodes returns the episode listing for a drama in upstream order.
	Episodes(ctx context.Context, dramaID string) (*EpisodeList, error)

	// VideoURL resolves a playable URL for an episode. If the requested
	// quality is unavailable the adapter downgrades to the nearest
	// available one and reports it in VideoInfo.Quality.
	VideoURL(ctx context.Context, episodeID, quality string) (*VideoInfo, error)
}
