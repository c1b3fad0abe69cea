// Package cenguigui adapts the api.cenguigui.cn short-drama API to the
// canonical provider contract. It is the only built-in upstream that
// resolves direct play URLs with selectable quality.
package cenguigui

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/GamblerIX/duanju/internal/config"
	"github.com/GamblerIX/duanju/internal/provider"
)

// ID is the registry id of this provider.
const ID = "cenguigui"

// categories is the upstream's static category list. The API has no
// category discovery endpoint.
var categories = []string{
	"推荐榜", "新剧", "逆袭", "霸总", "现代言情", "打脸虐渣",
	"豪门恩怨", "神豪", "马甲", "都市日常", "战神归来", "小人物",
	"女性成长", "大女主", "穿越", "都市修仙", "强者回归", "亲情",
	"古装", "重生", "闪婚", "赘婿逆袭", "虐恋", "追妻", "天下无敌",
	"家庭伦理", "萌宝", "古风权谋", "职场", "奇幻脑洞", "异能",
	"无敌神医", "古风言情", "传承觉醒", "现言甜宠", "奇幻爱情",
	"乡村", "历史古代", "王妃", "高手下山", "娱乐圈", "强强联合",
	"破镜重圆", "暗恋成真", "民国", "欢喜冤家", "系统", "真假千金",
	"龙王", "校园", "穿书", "女帝", "团宠", "年代爱情", "玄幻仙侠",
	"青梅竹马", "悬疑推理", "皇后", "替身", "大叔", "喜剧", "剧情",
}

var episodeNumRe = regexp.MustCompile(`第(\d+)集`)
var digitsRe = regexp.MustCompile(`(\d+)`)

// Client is the cenguigui API adapter.
type Client struct {
	httpClient *http.Client
	info       provider.Info
	logger     zerolog.Logger
}

// NewClient creates a new cenguigui adapter from its configuration record.
func NewClient(cfg config.ProviderConfig, logger zerolog.Logger) *Client {
	qualities := cfg.Qualities
	if len(qualities) == 0 {
		qualities = []string{"1080p", "720p", "360p"}
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.Timeout) * time.Second,
		},
		info: provider.Info{
			ID:          ID,
			Name:        "笒鬼鬼短剧API",
			Description: "Full-featured drama source with direct play URLs",
			Version:     "1.0.0",
			BaseURL:     cfg.BaseURL,
			Capabilities: provider.Capabilities{
				Search:           true,
				Categories:       true,
				CategoryDramas:   true,
				Recommendations:  true,
				Episodes:         true,
				VideoURL:         true,
				QualitySelection: true,
				Pagination:       true,
				QPSBudget:        cfg.QPSBudget,
				Burst:            cfg.Burst,
				Qualities:        qualities,
			},
		},
		logger: logger.With().Str("component", "cenguigui").Logger(),
	}
}

// Info returns the adapter's static metadata.
func (c *Client) Info() provider.Info {
	return c.info
}

// Search searches dramas by keyword.
func (c *Client) Search(ctx context.Context, keyword string, page int) (*provider.SearchResult, error) {
	params := url.Values{}
	params.Set("name", keyword)
	params.Set("page", strconv.Itoa(page))

	var resp SearchResponse
	if err := c.doRequest(ctx, provider.OpSearch, params, &resp); err != nil {
		return nil, err
	}

	items := make([]provider.DramaInfo, 0, len(resp.Data))
	for _, it := range resp.Data {
		items = append(items, provider.DramaInfo{
			ID:           string(it.BookID),
			Title:        it.Title,
			CoverURL:     it.Cover,
			EpisodeCount: int(it.EpisodeCnt),
			Intro:        it.Intro,
			Category:     it.Type,
			Author:       it.Author,
			PlayCount:    int(it.PlayCnt),
		})
	}

	c.logger.Debug().
		Str("keyword", keyword).
		Int("page", page).
		Int("results", len(items)).
		Msg("Search completed")

	return &provider.SearchResult{
		StatusCode: normalizeCode(int(resp.Code)),
		Message:    resp.Msg,
		Items:      items,
		Page:       pageOrDefault(int(resp.Page), page),
	}, nil
}

// Categories returns the static category list.
func (c *Client) Categories(ctx context.Context) ([]string, error) {
	out := make([]string, len(categories))
	copy(out, categories)
	return out, nil
}

// CategoryDramas returns one page of a category listing.
func (c *Client) CategoryDramas(ctx context.Context, category string, offset int) (*provider.CategoryResult, error) {
	params := url.Values{}
	params.Set("classname", category)
	params.Set("offset", strconv.Itoa(offset))

	var resp CategoryResponse
	if err := c.doRequest(ctx, provider.OpCategoryDramas, params, &resp); err != nil {
		return nil, err
	}

	items := make([]provider.DramaInfo, 0, len(resp.Data))
	for _, it := range resp.Data {
		cat := it.SubTitle
		if cat == "" {
			cat = category
		}
		items = append(items, provider.DramaInfo{
			ID:           string(it.BookID),
			Title:        it.Title,
			CoverURL:     it.Cover,
			EpisodeCount: int(it.EpisodeCnt),
			Intro:        it.VideoDesc,
			Category:     cat,
			PlayCount:    int(it.PlayCnt),
		})
	}

	return &provider.CategoryResult{
		StatusCode: normalizeCode(int(resp.Code)),
		Category:   category,
		Items:      items,
		Offset:     offset,
	}, nil
}

// Recommendations returns the upstream recommendation feed.
func (c *Client) Recommendations(ctx context.Context) ([]provider.DramaInfo, error) {
	params := url.Values{}
	params.Set("type", "recommend")

	var resp RecommendResponse
	if err := c.doRequest(ctx, provider.OpRecommendations, params, &resp); err != nil {
		return nil, err
	}

	items := make([]provider.DramaInfo, 0, len(resp.Data))
	for _, it := range resp.Data {
		items = append(items, provider.DramaInfo{
			ID:           string(it.BookData.BookID),
			Title:        it.BookData.BookName,
			CoverURL:     it.BookData.ThumbURL,
			EpisodeCount: int(it.BookData.SerialCount),
			Category:     it.BookData.Category,
			PlayCount:    int(it.Hot),
		})
	}
	return items, nil
}

// Episodes returns the episode listing of a drama. Ordinals are parsed
// from episode titles (第N集) and fall back to array position.
func (c *Client) Episodes(ctx context.Context, dramaID string) (*provider.EpisodeList, error) {
	params := url.Values{}
	params.Set("book_id", dramaID)

	var resp EpisodesResponse
	if err := c.doRequest(ctx, provider.OpEpisodes, params, &resp); err != nil {
		return nil, err
	}

	episodes := make([]provider.EpisodeInfo, 0, len(resp.Data))
	for i, it := range resp.Data {
		ordinal := parseEpisodeOrdinal(it.Title)
		if ordinal == 0 {
			ordinal = i + 1
		}
		episodes = append(episodes, provider.EpisodeInfo{
			ID:      string(it.VideoID),
			Title:   it.Title,
			Ordinal: ordinal,
		})
	}

	total := int(resp.Total)
	if total == 0 {
		total = len(episodes)
	}

	return &provider.EpisodeList{
		StatusCode: normalizeCode(int(resp.Code)),
		DramaID:    string(resp.BookID),
		DramaTitle: resp.BookName,
		Author:     resp.Author,
		Category:   resp.Category,
		Intro:      resp.Desc,
		CoverURL:   resp.BookPic,
		Total:      total,
		Episodes:   episodes,
	}, nil
}

// VideoURL resolves a playable URL for an episode. The requested quality
// is downgraded to the nearest declared one before it reaches the
// upstream, and the resolved quality is reported in the result.
func (c *Client) VideoURL(ctx context.Context, episodeID, quality string) (*provider.VideoInfo, error) {
	resolved := provider.ResolveQuality(quality, c.info.Capabilities.Qualities)

	params := url.Values{}
	params.Set("video_id", episodeID)
	params.Set("level", resolved)
	params.Set("type", "json")

	var resp VideoResponse
	if err := c.doRequest(ctx, provider.OpVideoURL, params, &resp); err != nil {
		return nil, err
	}

	// Trust the upstream-reported quality when present; it reflects what
	// the CDN actually serves.
	actual := resp.Data.Info.Quality
	if actual == "" {
		actual = resolved
	}

	return &provider.VideoInfo{
		StatusCode: normalizeCode(int(resp.Code)),
		PlayURL:    resp.Data.URL,
		CoverURL:   resp.Data.Pic,
		Quality:    actual,
		Title:      resp.Data.Title,
		Duration:   resp.Data.Info.Duration,
		SizeLabel:  resp.Data.Info.SizeStr,
	}, nil
}

// doRequest performs a GET against the configured base URL and decodes
// the JSON body into result.
func (c *Client) doRequest(ctx context.Context, op provider.Operation, params url.Values, result interface{}) error {
	reqURL := c.info.BaseURL
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
		c.logger.Error().
			Int("status", resp.StatusCode).
			Str("op", string(op)).
			Msg("Upstream returned non-OK status")
		return provider.NewUpstreamError(ID, op, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return provider.NewUpstreamError(ID, op, fmt.Errorf("failed to decode response: %w", err))
	}

	return nil
}

// parseEpisodeOrdinal extracts the episode number from a title like
// "第3集". Returns 0 when no number is found.
func parseEpisodeOrdinal(title string) int {
	if m := episodeNumRe.FindStringSubmatch(title); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	if m := digitsRe.FindStringSubmatch(title); m != nil {
		n, _ := strconv.Atoi(m[1])
		return n
	}
	return 0
}

// normalizeCode maps the upstream's success codes (0 or 200) onto the
// canonical 200.
func normalizeCode(code int) int {
	if code == 0 || code == http.StatusOK {
		return provider.StatusOK
	}
	return code
}

// pageOrDefault returns the upstream-reported page when present.
func pageOrDefault(page, fallback int) int {
	if page > 0 {
		return page
	}
	return fallback
}
