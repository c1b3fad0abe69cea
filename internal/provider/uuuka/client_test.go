package uuuka

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
		ID:      ID,
		BaseURL: srv.URL,
		Timeout: 5,
	}, testutil.NewTestLogger(t))
}

func TestSearch(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/search", r.URL.Path)
		assert.Equal(t, "逆袭", r.URL.Query().Get("keyword"))
		assert.Equal(t, "post", r.URL.Query().Get("content_type"))
		assert.Equal(t, "20", r.URL.Query().Get("limit"))
		w.Write([]byte(`{
			"success": true, "message": "ok",
			"data": {"items": [
				{"title": "小人物的逆袭", "cover": "http://img/n.jpg", "description": "逆袭爽剧",
				 "source_link": "https://pan.example/s/n1", "content_type": "post"}
			], "page": 1, "total": 1}
		}`))
	})

	result, err := c.Search(context.Background(), "逆袭", 1)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "https://pan.example/s/n1", result.Items[0].ID, "the share link is the drama id")
	assert.Equal(t, "小人物的逆袭", result.Items[0].Title)
	assert.Equal(t, "短剧", result.Items[0].Category)
}

func TestSearchRejectedEnvelope(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "message": "invalid keyword", "data": {"items": []}}`))
	})

	_, err := c.Search(context.Background(), "", 1)
	require.Error(t, err)
	assert.True(t, provider.IsUpstream(err))
	assert.Contains(t, err.Error(), "invalid keyword")
}

func TestCategoryDramasMapsContentTypes(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/contents/dongman", r.URL.Path)
		w.Write([]byte(`{
			"success": true, "message": "ok",
			"data": {"items": [
				{"title": "灵剑少年", "source_link": "https://pan.example/s/a1", "content_type": "dongman"}
			], "page": 1}
		}`))
	})

	result, err := c.CategoryDramas(context.Background(), "动漫", 1)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "动漫", result.Items[0].Category)
}

func TestCategoryDramasUnknownCategoryFallsBackToPost(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/contents/post", r.URL.Path)
		w.Write([]byte(`{"success": true, "message": "ok", "data": {"items": [], "page": 1}}`))
	})

	result, err := c.CategoryDramas(context.Background(), "未知分类", 1)
	require.NoError(t, err)
	assert.Empty(t, result.Items)
}

func TestRecommendationsTodayThenFallback(t *testing.T) {
	t.Run("today feed served when populated", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "today", r.URL.Query().Get("today"))
			w.Write([]byte(`{"success": true, "message": "ok",
				"data": {"items": [{"title": "今日新剧", "source_link": "https://pan.example/s/t1"}]}}`))
		})

		items, err := c.Recommendations(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "今日新剧", items[0].Title)
	})

	t.Run("empty today falls back to first page", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("today") == "today" {
				w.Write([]byte(`{"success": true, "message": "ok", "data": {"items": []}}`))
				return
			}
			w.Write([]byte(`{"success": true, "message": "ok",
				"data": {"items": [{"title": "存量剧", "source_link": "https://pan.example/s/p1"}], "page": 1}}`))
		})

		items, err := c.Recommendations(context.Background())
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "存量剧", items[0].Title)
	})
}

func TestCategories(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("category listing must not hit the network")
	})

	got, err := c.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"短剧", "动漫", "电影", "电视剧", "学习资源", "百度短剧"}, got)
}

func TestUnsupportedOperations(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("unsupported operations must not hit the network")
	})

	_, err := c.Episodes(context.Background(), "https://pan.example/s/abc")
	assert.True(t, provider.IsUnsupported(err))

	_, err = c.VideoURL(context.Background(), "ep", "1080p")
	assert.True(t, provider.IsUnsupported(err))
}
