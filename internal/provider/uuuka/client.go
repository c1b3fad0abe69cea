// Package uuuka adapts the api.uuuka.com content index to the canonical
// provider contract. Like kuoapp it serves netdisk deep links, so
// episode listing and video resolution are not supported. Unlike the
// others its categories map to distinct content types (anime, movies,
// TV) beyond short drama.
package uuuka

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/GamblerIX/duanju/internal/config"
	"github.com/GamblerIX/duanju/internal/provider"
)

// ID is the registry id of this provider.
const ID = "uuuka"

// defaultPageSize matches the upstream's own listing size.
const defaultPageSize = 20

// contentTypes maps display categories onto upstream content type slugs,
// in the order they are presented.
var contentTypes = []struct {
	Name string
	Slug string
}{
	{"短剧", "post"},
	{"动漫", "dongman"},
	{"电影", "movie"},
	{"电视剧", "tv"},
	{"学习资源", "xuexi"},
	{"百度短剧", "baidu"},
}

// Client is the uuuka API adapter.
type Client struct {
	httpClient *http.Client
	info       provider.Info
	logger     zerolog.Logger
}

// NewClient creates a new uuuka adapter from its configuration record.
func NewClient(cfg config.ProviderConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		info: provider.Info{
			ID:          ID,
			Name:        "UUUKA资源站",
			Description: "Multi-type content index serving netdisk deep links",
			Version:     "1.0.0",
			BaseURL:     cfg.BaseURL,
			Capabilities: provider.Capabilities{
				Search:          true,
				Categories:      true,
				CategoryDramas:  true,
				Recommendations: true,
				Pagination:      true,
				QPSBudget:       cfg.QPSBudget,
				Burst:           cfg.Burst,
			},
		},
		logger: logger.With().Str("component", "uuuka").Logger(),
	}
}

// Info returns the adapter's static metadata.
func (c *Client) Info() provider.Info {
	return c.info
}

// Search searches short-drama posts by keyword.
func (c *Client) Search(ctx context.Context, keyword string, page int) (*provider.SearchResult, error) {
	params := url.Values{}
	params.Set("keyword", keyword)
	params.Set("content_type", "post")
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(defaultPageSize))

	var env Envelope
	if err := c.doRequest(ctx, provider.OpSearch, "/api/search", params, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, provider.NewUpstreamError(ID, provider.OpSearch, fmt.Errorf("upstream rejected search: %s", env.Message))
	}

	items := make([]provider.DramaInfo, 0, len(env.Data.Items))
	for _, it := range env.Data.Items {
		items = append(items, it.toDrama("短剧"))
	}

	resultPage := env.Data.Page
	if resultPage == 0 {
		resultPage = page
	}

	return &provider.SearchResult{
		StatusCode: provider.StatusOK,
		Message:    env.Message,
		Items:      items,
		Page:       resultPage,
	}, nil
}

// Categories returns the content type names in presentation order.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	out := make([]string, 0, len(contentTypes))
	for _, ct := range contentTypes {
		out = append(out, ct.Name)
	}
	return out, nil
}

// CategoryDramas lists one page of a content type. Unknown category
// names fall back to the short-drama type.
func (c *Client) CategoryDramas(ctx context.Context, category string, offset int) (*provider.CategoryResult, error) {
	slug := "post"
	for _, ct := range contentTypes {
		if ct.Name == category || ct.Slug == category {
			slug = ct.Slug
			break
		}
	}

	page := offset
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("page", strconv.Itoa(page))
	params.Set("limit", strconv.Itoa(defaultPageSize))

	var env Envelope
	if err := c.doRequest(ctx, provider.OpCategoryDramas, "/api/contents/"+slug, params, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, provider.NewUpstreamError(ID, provider.OpCategoryDramas, fmt.Errorf("upstream rejected listing: %s", env.Message))
	}

	items := make([]provider.DramaInfo, 0, len(env.Data.Items))
	for _, it := range env.Data.Items {
		items = append(items, it.toDrama(category))
	}

	return &provider.CategoryResult{
		StatusCode: provider.StatusOK,
		Category:   category,
		Items:      items,
		Offset:     offset,
	}, nil
}

// Recommendations returns today's short-drama additions, falling back to
// the first listing page when nothing was published today.
func (c *Client) Recommendations(ctx context.Context) ([]provider.DramaInfo, error) {
	params := url.Values{}
	params.Set("today", "today")
	params.Set("limit", strconv.Itoa(defaultPageSize))

	var env Envelope
	err := c.doRequest(ctx, provider.OpRecommendations, "/api/contents/post", params, &env)
	if err == nil && env.Success && len(env.Data.Items) > 0 {
		items := make([]provider.DramaInfo, 0, len(env.Data.Items))
		for _, it := range env.Data.Items {
			items = append(items, it.toDrama("短剧"))
		}
		return items, nil
	}
	if err != nil {
		c.logger.Warn().Err(err).Msg("Today feed failed, falling back to first page")
	}

	result, err := c.CategoryDramas(ctx, "短剧", 1)
	if err != nil {
		return nil, provider.NewUpstreamError(ID, provider.OpRecommendations, err)
	}
	return result.Items, nil
}

// Episodes is not supported: the upstream serves deep links only.
func (c *Client) Episodes(ctx context.Context, dramaID string) (*provider.EpisodeList, error) {
	return nil, provider.NewUnsupportedError(ID, provider.OpEpisodes)
}

// VideoURL is not supported: the upstream serves deep links only.
func (c *Client) VideoURL(ctx context.Context, episodeID, quality string) (*provider.VideoInfo, error) {
	return nil, provider.NewUnsupportedError(ID, provider.OpVideoURL)
}

// doRequest performs a GET against the given endpoint path and decodes
// the JSON body into result.
func (c *Client) doRequest(ctx context.Context, op provider.Operation, path string, params url.Values, result interface{}) error {
	reqURL := c.info.BaseURL + path
	if len(params) > 0 {
		reqURL = fmt.Sprintf("%s?%s", reqURL, params.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return provider.NewUpstreamError(ID, op, fmt.Errorf("failed to create request: %w", err))
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error().Err(err).Str("op", string(op)).Msg("HTTP request failed")
		return provider.NewUpstreamError(ID, op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return provider.NewUpstreamError(ID, op, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return provider.NewUpstreamError(ID, op, fmt.Errorf("failed to decode response: %w", err))
	}

	return nil
}
