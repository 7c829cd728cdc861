package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"cinecity-client/internal/metrics"
	"cinecity-client/internal/model"
	"cinecity-client/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAdminAuth(t *testing.T) {
	r := gin.New()
	r.GET("/open", AdminAuth(""), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/locked", AdminAuth("k"), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/open", nil)).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(r, httptest.NewRequest(http.MethodGet, "/locked", nil)).Code)

	cases := map[string]int{
		"Bearer k":     http.StatusOK,
		"ApiKey k":     http.StatusOK,
		"Bearer wrong": http.StatusForbidden,
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/locked", nil)
		req.Header.Set("Authorization", header)
		assert.Equal(t, want, serve(r, req).Code, header)
	}

	req := httptest.NewRequest(http.MethodGet, "/locked", nil)
	req.Header.Set("X-Admin-Key", "k")
	assert.Equal(t, http.StatusOK, serve(r, req).Code)
}

func TestLoggingRequestID(t *testing.T) {
	r := gin.New()
	r.Use(Logging())
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RequestIDKey))
	})

	id := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, id)
	rec := serve(r, req)
	assert.Equal(t, id, rec.Header().Get(RequestIDHeader))
	assert.Equal(t, id, rec.Body.String())

	// 非 uuid 的外部 id 被替换
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "not-an-id")
	rec = serve(r, req)
	_, err := uuid.Parse(rec.Header().Get(RequestIDHeader))
	assert.NoError(t, err)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	r := gin.New()
	r.Use(Metrics(nil))
	r.GET("/views/etl/run/:kind", func(c *gin.Context) {
		c.Set(SourceKey, model.SourceFresh)
		c.Status(http.StatusAccepted)
	})

	counter := metrics.RequestsTotal.WithLabelValues("/views/etl/run/:kind", "202", model.SourceFresh)
	before := testutil.ToFloat64(counter)

	serve(r, httptest.NewRequest(http.MethodGet, "/views/etl/run/tmdb", nil))
	serve(r, httptest.NewRequest(http.MethodGet, "/views/etl/run/places", nil))

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestSessionExpiredFlag(t *testing.T) {
	codec := session.NewCookieCodec([]byte("0123456789abcdef0123456789abcdef"), false)

	// 先发一个带 token 的 cookie
	r := gin.New()
	r.Use(Session(codec))
	r.POST("/login", func(c *gin.Context) {
		require.NoError(t, SessionFrom(c).CompleteLogin(model.Credential{AccessToken: "tok"}))
		c.Status(http.StatusOK)
	})
	r.GET("/expire", func(c *gin.Context) {
		sess := SessionFrom(c)
		assert.Equal(t, "tok", sess.Token())
		sess.Unauthorized()
		c.JSON(http.StatusOK, gin.H{"expired": Expired(c)})
	})

	rec := serve(r, httptest.NewRequest(http.MethodPost, "/login", nil))
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	before := testutil.ToFloat64(metrics.SessionExpirations)
	req := httptest.NewRequest(http.MethodGet, "/expire", nil)
	req.AddCookie(cookies[len(cookies)-1])
	rec = serve(r, req)

	assert.JSONEq(t, `{"expired":true}`, rec.Body.String())
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.SessionExpirations))
}

func TestSessionFromWithoutMiddleware(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	sess := SessionFrom(c)
	assert.Equal(t, session.StateAnonymous, sess.State())
	assert.False(t, Expired(c))
}
