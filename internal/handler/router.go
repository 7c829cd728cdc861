package handler

import (
	"net/http"
	"time"

	"cinecity-client/internal/middleware"
	"cinecity-client/internal/normalize"
	"cinecity-client/internal/repository"
	"cinecity-client/pkg/httpclient"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sony/gobreaker/v2"
)

// Deps are the pieces the gateway routes are built from.
// Breaker, Cache and Stats are optional.
type Deps struct {
	Client      *httpclient.Client
	Breaker     *gobreaker.CircuitBreaker[[]byte]
	Cache       repository.ViewCache
	Stats       *repository.CallStats
	Codec       sessions.Store
	Policy      normalize.Policy
	TTL         *CacheTTLConfig
	AdminAPIKey string
	CORSOrigins []string
}

// NewRouter builds the gateway engine
func NewRouter(d Deps) *gin.Engine {
	views := NewViewHandler(d.Client, d.Cache, d.Policy, d.TTL)
	auth := NewSessionHandler(d.Client)
	admin := NewAdminHandler(d.Client, d.Breaker, d.Cache, d.Stats)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logging())
	r.Use(middleware.Metrics(d.Stats))
	r.Use(middleware.CORS(d.CORSOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/status", admin.GetStatus)

	sess := r.Group("/session")
	sess.Use(middleware.Session(d.Codec))
	{
		sess.POST("/login", auth.Login)
		sess.POST("/register", auth.Register)
		sess.POST("/logout", auth.Logout)
		sess.GET("/me", auth.Me)
	}

	v := r.Group("/views")
	v.Use(middleware.Session(d.Codec))
	{
		v.GET("/explorer", views.GetExplorer)
		v.GET("/etl", views.GetETL)
		v.POST("/etl/run-full", views.RunFull)
		v.POST("/etl/run/:kind", views.RunSource)
		v.GET("/map", views.GetMap)
		v.GET("/charts/films-by-country", views.GetFilmsByCountry)
		v.GET("/dashboard", views.GetDashboard)
		v.GET("/profile", views.GetProfile)
	}

	// 管理接口需要认证（如果配置了 ADMIN_API_KEY）
	a := r.Group("/admin")
	a.Use(middleware.AdminAuth(d.AdminAPIKey))
	{
		a.GET("/analytics", admin.GetAnalytics)
		a.GET("/analytics/route", admin.GetRouteStats)
		a.DELETE("/analytics", admin.ResetAnalytics)
		a.DELETE("/cache", admin.PurgeCache)
	}

	return r
}
