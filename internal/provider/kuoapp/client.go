// Package kuoapp adapts the kuoapp.com drama index to the canonical
// provider contract. The upstream is a deep-link index: items carry
// netdisk share links instead of playable media, so episode listing and
// video resolution are not supported.
package kuoapp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/GamblerIX/duanju/internal/config"
	"github.com/GamblerIX/duanju/internal/provider"
)

// ID is the registry id of this provider.
const ID = "kuoapp"

// maxDayLookback bounds the backward scan for the most recent day that
// has published data.
const maxDayLookback = 30

var categories = []string{"今日更新", "热门榜单", "全部短剧"}

// Client is the kuoapp API adapter.
type Client struct {
	httpClient *http.Client
	info       provider.Info
	logger     zerolog.Logger

	// now is swappable for tests.
	now func() time.Time
}

// NewClient creates a new kuoapp adapter from its configuration record.
func NewClient(cfg config.ProviderConfig, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		info: provider.Info{
			ID:          ID,
			Name:        "全网短剧API",
			Description: "Drama index serving netdisk deep links",
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
		logger: logger.With().Str("component", "kuoapp").Logger(),
		now:    time.Now,
	}
}

// Info returns the adapter's static metadata.
func (c *Client) Info() provider.Info {
	return c.info
}

// Search queries the upstream search endpoint. The endpoint is slow and
// flaky; on failure the most recent day listing is filtered locally so
// the caller still gets results.
func (c *Client) Search(ctx context.Context, keyword string, page int) (*provider.SearchResult, error) {
	params := url.Values{}
	params.Set("param", "1")
	params.Set("name", keyword)
	params.Set("page", strconv.Itoa(page))

	var resp SearchResponse
	err := c.doRequest(ctx, provider.OpSearch, "/duanju/api.php", params, &resp)
	if err != nil {
		c.logger.Warn().Err(err).Str("keyword", keyword).Msg("Search endpoint failed, filtering recent data")
		return c.searchRecent(ctx, keyword, page)
	}

	items := make([]provider.DramaInfo, 0, len(resp.Data))
	for _, it := range resp.Data {
		items = append(items, it.toDrama())
	}

	return &provider.SearchResult{
		StatusCode: provider.StatusOK,
		Message:    "success",
		Items:      items,
		Page:       page,
	}, nil
}

// searchRecent filters the most recent day listing by keyword.
func (c *Client) searchRecent(ctx context.Context, keyword string, page int) (*provider.SearchResult, error) {
	data, err := c.recentData(ctx, provider.OpSearch)
	if err != nil {
		return nil, err
	}

	items := make([]provider.DramaInfo, 0)
	for _, it := range data {
		if strings.Contains(strings.ToLower(it.Name), strings.ToLower(keyword)) {
			items = append(items, it.toDrama())
		}
	}

	return &provider.SearchResult{
		StatusCode: provider.StatusOK,
		Message:    "local filter (search endpoint unavailable)",
		Items:      items,
		Page:       page,
	}, nil
}

// Categories returns the static category list.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	out := make([]string, len(categories))
	copy(out, categories)
	return out, nil
}

// CategoryDramas returns the most recent day listing. All categories are
// views over the same day-keyed feed.
func (c *Client) CategoryDramas(ctx context.Context, category string, offset int) (*provider.CategoryResult, error) {
	data, err := c.recentData(ctx, provider.OpCategoryDramas)
	if err != nil {
		return nil, err
	}

	items := make([]provider.DramaInfo, 0, len(data))
	for _, it := range data {
		items = append(items, it.toDrama())
	}

	return &provider.CategoryResult{
		StatusCode: provider.StatusOK,
		Category:   category,
		Items:      items,
		Offset:     offset,
	}, nil
}

// Recommendations returns the newest entries from the day feed.
func (c *Client) Recommendations(ctx context.Context) ([]provider.DramaInfo, error) {
	data, err := c.recentData(ctx, provider.OpRecommendations)
	if err != nil {
		return nil, err
	}

	if len(data) > 20 {
		data = data[:20]
	}
	items := make([]provider.DramaInfo, 0, len(data))
	for _, it := range data {
		items = append(items, it.toDrama())
	}
	return items, nil
}

// Episodes is not supported: the upstream serves deep links only.
func (c *Client) Episodes(ctx context.Context, dramaID string) (*provider.EpisodeList, error) {
	return nil, provider.NewUnsupportedError(ID, provider.OpEpisodes)
}

// VideoURL is not supported: the upstream serves deep links only.
func (c *Client) VideoURL(ctx context.Context, episodeID, quality string) (*provider.VideoInfo, error) {
	return nil, provider.NewUnsupportedError(ID, provider.OpVideoURL)
}

// recentData walks backwards from today until it finds a day with
// published data, up to maxDayLookback days.
func (c *Client) recentData(ctx context.Context, op provider.Operation) ([]Item, error) {
	var lastErr error
	for daysAgo := 0; daysAgo < maxDayLookback; daysAgo++ {
		day := c.now().AddDate(0, 0, -daysAgo).Format("2006-01-02")

		params := url.Values{}
		params.Set("day", day)

		var data []Item
		if err := c.doRequest(ctx, op, "/duanju/get.php", params, &data); err != nil {
			if ctx.Err() != nil {
				return nil, err
			}
			lastErr = err
			continue
		}
		if len(data) > 0 {
			c.logger.Debug().Str("day", day).Int("items", len(data)).Msg("Found recent data")
			return data, nil
		}
	}

	if lastErr != nil {
		return nil, lastErr
	}
	return []Item{}, nil
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
