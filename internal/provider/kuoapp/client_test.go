package kuoapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
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
		require.Equal(t, "/duanju/api.php", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("param"))
		assert.Equal(t, "女帝", r.URL.Query().Get("name"))
		w.Write([]byte(`{
			"page": "1", "totalPages": "3",
			"data": [
				{"id": 12, "name": "女帝重生", "label": "重生", "addtime": "2025-01-02",
				 "cover": "http://img/a.jpg", "url": "https://pan.example/s/abc", "episodes": "90", "state": "已完结"}
			]
		}`))
	})

	result, err := c.Search(context.Background(), "女帝", 1)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)

	item := result.Items[0]
	assert.Equal(t, "https://pan.example/s/abc", item.ID, "the share link is the drama id")
	assert.Equal(t, "女帝重生", item.Title)
	assert.Equal(t, 90, item.EpisodeCount)
	assert.Equal(t, "重生", item.Category)
	assert.Contains(t, item.Intro, "https://pan.example/s/abc")
}

func TestSearchFallsBackToLocalFilter(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/duanju/api.php":
			w.WriteHeader(http.StatusBadGateway)
		case "/duanju/get.php":
			w.Write([]byte(`[
				{"id": 1, "name": "女帝重生", "url": "https://pan.example/s/1", "episodes": 90},
				{"id": 2, "name": "战神归来", "url": "https://pan.example/s/2", "episodes": 80}
			]`))
		}
	})

	result, err := c.Search(context.Background(), "女帝", 1)
	require.NoError(t, err)
	require.Len(t, result.Items, 1, "local filter keeps only keyword matches")
	assert.Equal(t, "女帝重生", result.Items[0].Title)
}

func TestRecentDataScansBackwards(t *testing.T) {
	var getCalls atomic.Int64
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/duanju/get.php", r.URL.Path)
		require.NotEmpty(t, r.URL.Query().Get("day"))
		// Nothing published on the two most recent days.
		if getCalls.Add(1) <= 2 {
			w.Write([]byte(`[]`))
			return
		}
		w.Write([]byte(`[{"id": 5, "name": "穿越王妃", "url": "https://pan.example/s/5", "episodes": 70}]`))
	})

	items, err := c.Recommendations(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "穿越王妃", items[0].Title)
	assert.Equal(t, int64(3), getCalls.Load())
}

func TestRecentDataGivesUpAfterLookback(t *testing.T) {
	var getCalls atomic.Int64
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		getCalls.Add(1)
		w.Write([]byte(`[]`))
	})

	result, err := c.CategoryDramas(context.Background(), "今日更新", 1)
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	assert.Equal(t, int64(maxDayLookback), getCalls.Load())
}

func TestCategories(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("category listing must not hit the network")
	})

	got, err := c.Categories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"今日更新", "热门榜单", "全部短剧"}, got)
}

func TestUnsupportedOperations(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("unsupported operations must not hit the network")
	})

	_, err := c.Episodes(context.Background(), "https://pan.example/s/abc")
	assert.True(t, provider.IsUnsupported(err))

	_, err = c.VideoURL(context.Background(), "ep", "720p")
	assert.True(t, provider.IsUnsupported(err))

	info := c.Info()
	assert.False(t, info.Capabilities.Episodes)
	assert.False(t, info.Capabilities.VideoURL)
	assert.False(t, info.Capabilities.Supports(provider.OpVideoURL))
}
