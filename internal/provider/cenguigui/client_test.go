package cenguigui

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GamblerIX/duanju/internal/config"
	"github.com/GamblerIX/duanju/internal/provider"
	"github.com/GamblerIX/duanju/internal/testutil"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(config.ProviderConfig{
		ID:        ID,
		BaseURL:   srv.URL,
		Timeout:   5,
		Qualities: []string{"1080p", "720p", "360p"},
	}, testutil.NewTestLogger(t))
}

func TestSearchNormalization(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "总裁", r.URL.Query().Get("name"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		// book_id arrives as a number here, episode_cnt as a string:
		// the upstream is not consistent between endpoints.
		w.Write([]byte(`{
			"code": 200, "msg": "success", "page": "1",
			"data": [
				{"book_id": 7276384, "title": "总裁的替身新娘", "cover": "http://img/1.jpg",
				 "episode_cnt": "80", "intro": "替身新娘的逆袭", "type": "霸总", "author": "佚名", "play_cnt": 12345},
				{"book_id": "7276385", "title": "重生之总裁归来", "cover": "http://img/2.jpg",
				 "episode_cnt": 92, "intro": "", "type": "重生", "author": "", "play_cnt": "678"}
			]
		}`))
	})

	result, err := c.Search(context.Background(), "总裁", 1)
	require.NoError(t, err)

	assert.Equal(t, provider.StatusOK, result.StatusCode)
	assert.Equal(t, 1, result.Page)
	require.Len(t, result.Items, 2)

	first := result.Items[0]
	assert.Equal(t, "7276384", first.ID)
	assert.Equal(t, "总裁的替身新娘", first.Title)
	assert.Equal(t, 80, first.EpisodeCount)
	assert.Equal(t, "霸总", first.Category)
	assert.Equal(t, 12345, first.PlayCount)

	second := result.Items[1]
	assert.Equal(t, "7276385", second.ID)
	assert.Equal(t, 92, second.EpisodeCount)
	assert.Equal(t, 678, second.PlayCount)
}

func TestSearchNormalizesZeroCode(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code": 0, "msg": "ok", "data": []}`))
	})

	result, err := c.Search(context.Background(), "x", 1)
	require.NoError(t, err)
	assert.Equal(t, provider.StatusOK, result.StatusCode)
	assert.Empty(t, result.Items)
}

func TestCategoriesAreStatic(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("category listing must not hit the network")
	})

	got, err := c.Categories(context.Background())
	require.NoError(t, err)
	assert.Contains(t, got, "穿越")
	assert.Contains(t, got, "霸总")

	// The returned slice is a copy; mutating it must not leak.
	got[0] = "mutated"
	again, err := c.Categories(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", again[0])
}

func TestCategoryDramas(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "穿越", r.URL.Query().Get("classname"))
		assert.Equal(t, "1", r.URL.Query().Get("offset"))
		w.Write([]byte(`{
			"code": 200,
			"data": [
				{"book_id": "100", "title": "穿越之庶女当嫁", "cover": "http://img/c.jpg",
				 "episode_cnt": 60, "video_desc": "庶女穿越", "sub_title": "古装", "play_cnt": 999}
			]
		}`))
	})

	result, err := c.CategoryDramas(context.Background(), "穿越", 1)
	require.NoError(t, err)
	assert.Equal(t, "穿越", result.Category)
	assert.Equal(t, 1, result.Offset)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "穿越之庶女当嫁", result.Items[0].Title)
	assert.Equal(t, "庶女穿越", result.Items[0].Intro)
	assert.Equal(t, "古装", result.Items[0].Category, "sub_title wins over the requested category")
}

func TestRecommendationsUnwrapNestedBook(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "recommend", r.URL.Query().Get("type"))
		w.Write([]byte(`{
			"code": 200,
			"data": [
				{"hot": "8888", "book_data": {"book_id": 42, "book_name": "战神归来",
				 "thumb_url": "http://img/t.jpg", "serial_count": "100", "category": "战神归来"}}
			]
		}`))
	})

	items, err := c.Recommendations(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "42", items[0].ID)
	assert.Equal(t, "战神归来", items[0].Title)
	assert.Equal(t, 100, items[0].EpisodeCount)
	assert.Equal(t, 8888, items[0].PlayCount)
}

func TestEpisodesOrdinals(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "d1", r.URL.Query().Get("book_id"))
		w.Write([]byte(`{
			"code": 200, "book_name": "测试剧", "book_id": "d1", "author": "作者",
			"category": "剧情", "desc": "简介", "book_pic": "http://img/p.jpg", "total": 3,
			"data": [
				{"video_id": "v3", "title": "第3集"},
				{"video_id": "v1", "title": "先导片"},
				{"video_id": "v10", "title": "10 大结局"}
			]
		}`))
	})

	list, err := c.Episodes(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, "测试剧", list.DramaTitle)
	assert.Equal(t, 3, list.Total)
	require.Len(t, list.Episodes, 3)

	assert.Equal(t, 3, list.Episodes[0].Ordinal, "第N集 titles carry their ordinal")
	assert.Equal(t, 2, list.Episodes[1].Ordinal, "titles without digits fall back to position")
	assert.Equal(t, 10, list.Episodes[2].Ordinal, "bare digits are used when present")
}

func TestVideoURLQualityDowngrade(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		// 540p is not declared: the request must arrive downgraded.
		assert.Equal(t, "360p", r.URL.Query().Get("level"))
		assert.Equal(t, "json", r.URL.Query().Get("type"))
		w.Write([]byte(`{
			"code": 200,
			"data": {"url": "http://cdn/video.mp4", "pic": "http://img/v.jpg", "title": "第1集",
			 "info": {"quality": "360p", "duration": "02:30", "size_str": "18MB"}}
		}`))
	})

	video, err := c.VideoURL(context.Background(), "v1", "540p")
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/video.mp4", video.PlayURL)
	assert.Equal(t, "360p", video.Quality)
	assert.Equal(t, "02:30", video.Duration)
}

func TestUpstreamErrors(t *testing.T) {
	t.Run("non-200 status", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})
		_, err := c.Search(context.Background(), "x", 1)
		require.Error(t, err)
		assert.True(t, provider.IsUpstream(err))
	})

	t.Run("malformed body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`<html>not json</html>`))
		})
		_, err := c.Episodes(context.Background(), "d1")
		require.Error(t, err)
		assert.True(t, provider.IsUpstream(err))
	})

	t.Run("canceled context", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"code":200,"data":[]}`))
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := c.Search(ctx, "x", 1)
		require.Error(t, err)
		assert.True(t, provider.IsUpstream(err))
	})
}
