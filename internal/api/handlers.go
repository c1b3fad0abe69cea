package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/GamblerIX/duanju/internal/fetch"
	"github.com/GamblerIX/duanju/internal/provider"
	"github.com/GamblerIX/duanju/internal/scheduler"
)

// envelope is the uniform response shape. Data carries the payload on
// success; on failure code and msg describe the error and data is absent.
type envelope struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
	Page *int        `json:"page,omitempty"`
}

func respondOK(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, envelope{Code: provider.StatusOK, Msg: "success", Data: data})
}

func respondPaged(c echo.Context, data interface{}, page int) error {
	return c.JSON(http.StatusOK, envelope{Code: provider.StatusOK, Msg: "success", Data: data, Page: &page})
}

func respondError(c echo.Context, err error) error {
	status := http.StatusInternalServerError
	switch provider.ErrorCode(err) {
	case provider.ErrCodeUnsupported:
		status = http.StatusNotImplemented
	case provider.ErrCodeUpstream:
		status = http.StatusBadGateway
	case provider.ErrCodeRateLimit:
		status = http.StatusTooManyRequests
	case provider.ErrCodeUnknownProvider:
		status = http.StatusNotFound
	case provider.ErrCodeDuplicateProvider:
		status = http.StatusConflict
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		status = http.StatusGatewayTimeout
	}
	return c.JSON(status, envelope{Code: status, Msg: err.Error()})
}

func respondBadRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, envelope{Code: http.StatusBadRequest, Msg: msg})
}

// queryOptions reads the per-request provider selection. `provider`
// overrides the active provider; `fallback=1` opts into trying other
// capable providers on upstream failure.
func queryOptions(c echo.Context) fetch.Options {
	return fetch.Options{
		Provider: c.QueryParam("provider"),
		Fallback: c.QueryParam("fallback") == "1",
	}
}

func intParam(c echo.Context, name string, def int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func (s *Server) handleHealth(c echo.Context) error {
	return respondOK(c, map[string]interface{}{
		"status":    "ok",
		"providers": s.service.Registry().Len(),
		"active":    s.service.Registry().ActiveID(),
	})
}

func (s *Server) handleSearch(c echo.Context) error {
	keyword := c.QueryParam("keyword")
	if keyword == "" {
		return respondBadRequest(c, "keyword is required")
	}
	page := intParam(c, "page", 1)

	result, err := s.service.Search(c.Request().Context(), keyword, page, queryOptions(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondPaged(c, result.Items, result.Page)
}

func (s *Server) handleCategories(c echo.Context) error {
	categories, err := s.service.Categories(c.Request().Context(), queryOptions(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, categories)
}

func (s *Server) handleCategoryDramas(c echo.Context) error {
	category := c.QueryParam("category")
	if category == "" {
		return respondBadRequest(c, "category is required")
	}
	offset := intParam(c, "offset", 1)

	result, err := s.service.CategoryDramas(c.Request().Context(), category, offset, queryOptions(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondPaged(c, result.Items, result.Offset)
}

func (s *Server) handleRecommendations(c echo.Context) error {
	items, err := s.service.Recommendations(c.Request().Context(), queryOptions(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, items)
}

func (s *Server) handleEpisodes(c echo.Context) error {
	dramaID := c.Param("id")
	if dramaID == "" {
		return respondBadRequest(c, "drama id is required")
	}

	list, err := s.service.Episodes(c.Request().Context(), dramaID, queryOptions(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, list)
}

func (s *Server) handleVideoURL(c echo.Context) error {
	episodeID := c.Param("id")
	if episodeID == "" {
		return respondBadRequest(c, "episode id is required")
	}
	quality := c.QueryParam("quality")
	if quality == "" {
		quality = "720p"
	}

	video, err := s.service.VideoURL(c.Request().Context(), episodeID, quality, queryOptions(c))
	if err != nil {
		return respondError(c, err)
	}
	return respondOK(c, video)
}

// handleHome serves the home page payload: recommendations and the
// category list fetched concurrently. A failed half degrades to null
// instead of failing the whole response.
func (s *Server) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	opts := queryOptions(c)

	batch := s.dispatcher.Dispatch(ctx, []fetch.Query{
		{
			Name: "recommendations",
			Run: func(ctx context.Context) (interface{}, error) {
				return s.service.Recommendations(ctx, opts)
			},
		},
		{
			Name: "categories",
			Run: func(ctx context.Context) (interface{}, error) {
				return s.service.Categories(ctx, opts)
			},
		},
	})

	data := make(map[string]interface{}, len(batch.Results))
	for name, r := range batch.Results {
		if r.Err != nil {
			data[name] = nil
			continue
		}
		data[name] = r.Value
	}
	data["batchId"] = batch.BatchID

	return respondOK(c, data)
}

func (s *Server) handleListProviders(c echo.Context) error {
	return respondOK(c, map[string]interface{}{
		"providers": s.service.Registry().Infos(),
		"active":    s.service.Registry().ActiveID(),
	})
}

type setActiveRequest struct {
	ID string `json:"id"`
}

func (s *Server) handleSetActiveProvider(c echo.Context) error {
	var req setActiveRequest
	if err := c.Bind(&req); err != nil || req.ID == "" {
		return respondBadRequest(c, "provider id is required")
	}

	if err := s.service.Registry().SetActive(req.ID); err != nil {
		return respondError(c, err)
	}
	return respondOK(c, map[string]string{"active": req.ID})
}

func (s *Server) handleListTasks(c echo.Context) error {
	return respondOK(c, s.scheduler.ListTasks())
}

func (s *Server) handleRunTask(c echo.Context) error {
	id := c.Param("id")

	err := s.scheduler.RunNow(id)
	switch {
	case errors.Is(err, scheduler.ErrTaskNotFound):
		return c.JSON(http.StatusNotFound, envelope{Code: http.StatusNotFound, Msg: err.Error()})
	case errors.Is(err, scheduler.ErrTaskRunning):
		return c.JSON(http.StatusConflict, envelope{Code: http.StatusConflict, Msg: err.Error()})
	case err != nil:
		return respondError(c, err)
	}
	return respondOK(c, map[string]string{"triggered": id})
}

func (s *Server) handleCacheStats(c echo.Context) error {
	return respondOK(c, s.service.CacheStats())
}

func (s *Server) handleClearCache(c echo.Context) error {
	removed := s.service.ClearCache()
	return respondOK(c, map[string]int{"removed": removed})
}
