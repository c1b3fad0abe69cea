package provider

// StatusOK is the canonical success code carried in result envelopes.
// Upstreams use a mix of 0 and 200 for success; adapters normalize to 200.
const StatusOK = 200

// DramaInfo is the canonical drama (short series) model every adapter
// produces. Identity is ID, which is provider-scoped: the same drama on
// two providers has unrelated IDs. Missing upstream fields map to the
// zero value.
type DramaInfo struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	CoverURL     string `json:"coverUrl"`
	EpisodeCount int    `json:"episodeCount"`
	Intro        string `json:"intro"`
	Category     string `json:"category"`
	Author       string `json:"author"`
	PlayCount    int    `json:"playCount"`
}

// EpisodeInfo is a single episode of a drama. Ordinal is 1-based and
// stable across repeated fetches; when the upstream declares no order,
// adapters assign ordinals by response array position.
type EpisodeInfo struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Ordinal int    `json:"ordinal"`
}

// EpisodeList is the episode listing for one drama, in upstream order.
type EpisodeList struct {
	StatusCode int           `json:"code"`
	DramaID    string        `json:"dramaId"`
	DramaTitle string        `json:"dramaTitle"`
	Author     string        `json:"author,omitempty"`
	Category   string        `json:"category,omitempty"`
	Intro      string        `json:"intro,omitempty"`
	CoverURL   string        `json:"coverUrl,omitempty"`
	Total      int           `json:"total"`
	Episodes   []EpisodeInfo `json:"episodes"`
}

// VideoInfo is a resolved playable resource. PlayURL carries a
// time-limited CDN token; callers must not assume it stays valid beyond
// a short window. Quality reflects the quality actually resolved, which
// may be lower than requested but never higher.
type VideoInfo struct {
	StatusCode int    `json:"code"`
	PlayURL    string `json:"playUrl"`
	CoverURL   string `json:"coverUrl,omitempty"`
	Quality    string `json:"quality"`
	Title      string `json:"title,omitempty"`
	Duration   string `json:"duration,omitempty"`
	SizeLabel  string `json:"sizeLabel,omitempty"`
}

// SearchResult holds one page of search hits in upstream order.
type SearchResult struct {
	StatusCode int         `json:"code"`
	Message    string      `json:"msg"`
	Items      []DramaInfo `json:"data"`
	Page       int         `json:"page"`
}

// CategoryResult holds one page of a category listing in upstream order.
type CategoryResult struct {
	StatusCode int         `json:"code"`
	Category   string      `json:"category"`
	Items      []DramaInfo `json:"data"`
	Offset     int         `json:"offset"`
}
