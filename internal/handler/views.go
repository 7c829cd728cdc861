package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"cinecity-client/internal/middleware"
	"cinecity-client/internal/model"
	"cinecity-client/internal/normalize"
	"cinecity-client/internal/repository"
	"cinecity-client/internal/service"
	"cinecity-client/internal/view"
	"cinecity-client/pkg/httpclient"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// View names, also used as cache key roots
const (
	ViewExplorer  = "explorer"
	ViewETL       = "etl"
	ViewMap       = "map"
	ViewCharts    = "charts:films-by-country"
	ViewDashboard = "dashboard"
	ViewProfile   = "profile"
)

// ViewHandler serves the page view-models
type ViewHandler struct {
	client *httpclient.Client
	cache  repository.ViewCache
	policy normalize.Policy
	ttl    *CacheTTLConfig
	now    func() time.Time
}

// NewViewHandler creates a new ViewHandler. cache may be nil.
func NewViewHandler(client *httpclient.Client, cache repository.ViewCache, policy normalize.Policy, ttl *CacheTTLConfig) *ViewHandler {
	if ttl == nil {
		ttl = DefaultCacheTTL(0)
	}
	return &ViewHandler{
		client: client,
		cache:  cache,
		policy: policy,
		ttl:    ttl,
		now:    time.Now,
	}
}

// rendered is a loaded view-model
type rendered struct {
	data     interface{}
	fallback bool
	// degraded 表示部分数据失败，不缓存
	degraded     bool
	unauthorized bool
}

// serve answers from the cache when possible, otherwise loads the view.
// Only complete live results are cached; ttl 0 skips the cache.
func (h *ViewHandler) serve(c *gin.Context, name string, ttl time.Duration, load func(ctx context.Context, api *service.API) rendered) {
	ctx, cancel := requestContext(c)
	defer cancel()

	cacheable := h.cache != nil && ttl > 0
	key := repository.ViewKey(name, c.Request.URL.Query())

	if cacheable {
		var cached json.RawMessage
		err := h.cache.Get(ctx, key, &cached)
		if err == nil {
			c.Set(middleware.SourceKey, model.SourceCache)
			c.JSON(http.StatusOK, model.APIResponse{
				Code:   200,
				Data:   cached,
				Source: model.SourceCache,
			})
			return
		}
		if !repository.IsCacheMiss(err) {
			log.Warn().Err(err).Str("key", key).Msg("View cache read failed")
		}
	}

	out := load(ctx, apiFor(h.client, c))
	if out.unauthorized || middleware.Expired(c) {
		replyExpired(c)
		return
	}

	source := model.SourceFresh
	if out.fallback {
		source = model.SourceFallback
	}

	if cacheable && !out.fallback && !out.degraded {
		if err := h.cache.Set(ctx, key, out.data, ttl); err != nil {
			log.Warn().Err(err).Str("key", key).Msg("View cache write failed")
		}
	}

	c.Set(middleware.SourceKey, source)
	c.JSON(http.StatusOK, model.APIResponse{
		Code:   200,
		Data:   out.data,
		Source: source,
	})
}

// GetExplorer returns the data explorer page
// GET /views/explorer?tab=&q=&country=&genre=&year=
func (h *ViewHandler) GetExplorer(c *gin.Context) {
	q := view.ExplorerQuery{
		Tab:    view.ParseTab(c.Query("tab")),
		Search: c.Query("q"),
		Filters: model.FilmFilters{
			Country: c.Query("country"),
			Genre:   c.Query("genre"),
			Year:    c.Query("year"),
		},
	}

	ttl := h.ttl.Explorer
	if q.Tab == view.TabCorrelations {
		// 关联数据走用户 token，不跨用户缓存
		ttl = 0
	}

	h.serve(c, ViewExplorer, ttl, func(ctx context.Context, api *service.API) rendered {
		page := view.LoadExplorer(ctx, api, q, h.policy)
		return rendered{
			data:     page,
			fallback: page.UsingSampleData,
			degraded: page.Error != nil,
		}
	})
}

// GetETL returns the pipeline status page. Never cached.
// GET /views/etl
func (h *ViewHandler) GetETL(c *gin.Context) {
	h.serve(c, ViewETL, 0, func(ctx context.Context, api *service.API) rendered {
		page := view.LoadETLDashboard(ctx, api, h.now)
		return rendered{
			data:         page,
			fallback:     page.UsingSampleData,
			degraded:     page.Error != nil,
			unauthorized: page.Error != nil && page.Error.Kind == view.KindUnauthorized,
		}
	})
}

type runFullRequest struct {
	Confirm bool `json:"confirm"`
}

// RunFull starts the full pipeline once the caller confirmed it
// POST /views/etl/run-full {"confirm": true}
func (h *ViewHandler) RunFull(c *gin.Context) {
	var req runFullRequest
	// 没有 body 视为未确认
	_ = c.ShouldBindJSON(&req)

	ctx, cancel := requestContext(c)
	defer cancel()

	confirmer := view.ConfirmFunc(func(context.Context, string) (bool, error) {
		return req.Confirm, nil
	})
	outcome, err := view.RunFull(ctx, apiFor(h.client, c), confirmer)
	if errors.Is(err, view.ErrDeclined) {
		c.JSON(http.StatusPreconditionFailed, model.APIResponse{
			Code:    http.StatusPreconditionFailed,
			Error:   "confirmation required",
			Message: view.RunFullPrompt,
		})
		return
	}
	if err != nil {
		log.Warn().Err(err).Msg("Full ETL run failed to start")
		replyError(c, err)
		return
	}

	log.Info().Str("task_id", outcome.TaskID).Msg("Full ETL run started")
	replyOK(c, http.StatusAccepted, outcome)
}

// RunSource starts one ETL source
// POST /views/etl/run/:kind
func (h *ViewHandler) RunSource(c *gin.Context) {
	kind := strings.ToLower(c.Param("kind"))

	ctx, cancel := requestContext(c)
	defer cancel()

	outcome, err := view.RunSource(ctx, apiFor(h.client, c), kind)
	if errors.Is(err, view.ErrUnknownRun) {
		c.JSON(http.StatusNotFound, model.APIResponse{
			Code:  http.StatusNotFound,
			Error: "unknown ETL run: " + kind,
		})
		return
	}
	if err != nil {
		log.Warn().Err(err).Str("kind", kind).Msg("ETL run failed to start")
		replyError(c, err)
		return
	}

	log.Info().Str("kind", kind).Str("task_id", outcome.TaskID).Msg("ETL run started")
	replyOK(c, http.StatusAccepted, outcome)
}

// GetMap returns the regional popularity map
// GET /views/map?region=GB
func (h *ViewHandler) GetMap(c *gin.Context) {
	region := strings.ToUpper(c.Query("region"))

	h.serve(c, ViewMap, h.ttl.Map, func(ctx context.Context, api *service.API) rendered {
		page := view.LoadRegionalMap(ctx, api, h.policy)
		if region != "" {
			page.Select(region)
		}
		return rendered{
			data:     page,
			fallback: page.UsingSampleData,
			degraded: page.Error != nil,
		}
	})
}

// GetFilmsByCountry returns the films-by-country chart
// GET /views/charts/films-by-country
func (h *ViewHandler) GetFilmsByCountry(c *gin.Context) {
	h.serve(c, ViewCharts, h.ttl.Charts, func(ctx context.Context, api *service.API) rendered {
		chart := view.LoadCountryChart(ctx, api, h.policy)
		return rendered{data: chart, degraded: chart.Error != nil}
	})
}

// GetDashboard returns the analytics overview
// GET /views/dashboard
func (h *ViewHandler) GetDashboard(c *gin.Context) {
	h.serve(c, ViewDashboard, h.ttl.Dashboard, func(ctx context.Context, api *service.API) rendered {
		d := view.LoadDashboard(ctx, api, h.policy)
		degraded := d.Stats.Error != nil || d.Countries.Error != nil || d.Jobs.Error != nil ||
			d.Popular.Error != nil || d.Featured.Error != nil
		return rendered{data: d, degraded: degraded}
	})
}

// GetProfile returns the signed-in user. User-specific, never cached.
// GET /views/profile
func (h *ViewHandler) GetProfile(c *gin.Context) {
	h.serve(c, ViewProfile, 0, func(ctx context.Context, api *service.API) rendered {
		p := view.LoadProfile(ctx, api)
		return rendered{
			data:         p,
			degraded:     p.Error != nil,
			unauthorized: p.Error != nil && p.Error.Kind == view.KindUnauthorized,
		}
	})
}
