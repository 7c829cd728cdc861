package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cinecity-client/internal/model"
	"cinecity-client/internal/session"
	"cinecity-client/pkg/httpclient"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAPI(t *testing.T, handler http.HandlerFunc, cred model.Credential) (*API, *session.Manager) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	sess := session.NewManager(session.NewMemoryStore(cred))
	return New(httpclient.NewClient(srv.URL, 2*time.Second), sess), sess
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestDefaultedOperationsNeverFail(t *testing.T) {
	api, _ := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, model.Credential{})
	ctx := context.Background()

	trending := api.Films.Trending(ctx, 14, 0)
	assert.Equal(t, 14, trending.PeriodDays)
	assert.NotNil(t, trending.Films)
	assert.Empty(t, trending.Films)

	located := api.Films.WithLocations(ctx, 0, 0, model.FilmFilters{Genre: "Drama"})
	require.NotNil(t, located.Filters)
	assert.Equal(t, "Drama", located.Filters.Genre)

	cities := api.Cities.Popular(ctx, 0, 100000, "")
	assert.Equal(t, 100000, cities.MinPopulation)
	assert.NotNil(t, cities.Cities)

	status := api.ETL.Status(ctx)
	assert.Equal(t, "error", status.Status)
	assert.Equal(t, "Failed to fetch ETL status", status.Message)

	corr := api.ETL.CorrelationStats(ctx)
	assert.Equal(t, "no_data", corr.Status)

	jobs := api.ETL.LatestJobs(ctx, 0)
	assert.Equal(t, 0, jobs.TotalJobs)
	assert.NotNil(t, jobs.Jobs)

	stats := api.Analytics.Stats(ctx)
	assert.NotEmpty(t, stats.Timestamp)
	assert.Equal(t, model.Counts{}, stats.Counts)

	byCountry := api.Analytics.FilmsByCountry(ctx)
	assert.NotNil(t, byCountry.Data)

	near := api.Analytics.CitiesNearFilms(ctx, 0, 0)
	assert.Equal(t, 100, near.RadiusKm)
}

func TestRethrowingOperationsSurfaceErrors(t *testing.T) {
	api, _ := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
	}, model.Credential{})
	ctx := context.Background()

	_, err := api.Films.Popular(ctx, 0)
	assert.True(t, httpclient.IsNotFound(err))
	_, err = api.Map.RegionalPopularity(ctx)
	assert.True(t, httpclient.IsNotFound(err))
	_, err = api.ETL.RunFull(ctx)
	assert.True(t, httpclient.IsNotFound(err))
	_, err = api.ETL.StatusStrict(ctx)
	assert.True(t, httpclient.IsNotFound(err))
	_, err = api.Analytics.FilmLocationCorrelations(ctx, model.CorrelationFilters{})
	assert.True(t, httpclient.IsNotFound(err))
	_, err = api.Map.TestMinimal(ctx)
	assert.True(t, httpclient.IsNotFound(err))
	_, err = api.ETL.Test(ctx)
	assert.True(t, httpclient.IsNotFound(err))

	// strict variants of the defaulted reads
	_, err = api.Analytics.StatsStrict(ctx)
	assert.True(t, httpclient.IsNotFound(err))
	_, err = api.Analytics.FilmsByCountryStrict(ctx)
	assert.True(t, httpclient.IsNotFound(err))
	_, err = api.ETL.LatestJobsStrict(ctx, 0)
	assert.True(t, httpclient.IsNotFound(err))
	_, err = api.Films.WithLocationsStrict(ctx, 0, 0, model.FilmFilters{})
	assert.True(t, httpclient.IsNotFound(err))
	_, err = api.Cities.PopularStrict(ctx, 0, 0, "")
	assert.True(t, httpclient.IsNotFound(err))
}

func TestPopularMinimumPopulation(t *testing.T) {
	var mu sync.Mutex
	var queries []string
	api, _ := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries = append(queries, r.URL.Query().Get("min_population"))
		mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{"cities": []interface{}{}})
	}, model.Credential{})
	ctx := context.Background()

	api.Cities.Popular(ctx, 0, 0, "")
	api.Cities.Popular(ctx, 0, -1, "")

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"0", "100000"}, queries)
}

func TestQueryDefaults(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]string{}
	api, _ := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.URL.Path] = r.URL.RawQuery
		mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]interface{}{})
	}, model.Credential{})
	ctx := context.Background()

	_, _ = api.Films.Popular(ctx, 0)
	api.Films.Trending(ctx, 0, 0)
	_, _ = api.Films.PopularByRegion(ctx, "US", 0)
	_, _ = api.Cities.Featured(ctx, 0, false)
	api.Cities.Popular(ctx, 0, 100000, "GB")
	api.ETL.LatestJobs(ctx, 0)
	api.Analytics.CitiesNearFilms(ctx, 0, 0)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, "limit=4", seen[PathFilmsPopular])
	assert.Equal(t, "days=7&limit=20", seen[PathFilmsTrending])
	assert.Equal(t, "limit=3&region=US", seen[PathFilmsPopularRegion])
	assert.Equal(t, "limit=6&use_api=false", seen[PathCitiesFeatured])
	assert.Equal(t, "country_code=GB&limit=20&min_population=100000", seen[PathCitiesPopular])
	assert.Equal(t, "limit=10", seen[PathETLLatestJobs])
	assert.Equal(t, "limit=20&radius_km=100", seen[PathAnalyticsCitiesNear])
}

func TestRunBodies(t *testing.T) {
	var mu sync.Mutex
	bodies := map[string]map[string]interface{}{}
	api, _ := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		body := map[string]interface{}{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		bodies[r.URL.Path] = body
		mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"task_id": "t-1", "status": "started"})
	}, model.Credential{})
	ctx := context.Background()

	res, err := api.ETL.RunTMDB(ctx, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "t-1", res.ID())
	_, err = api.ETL.RunPlaces(ctx, nil, 0)
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, float64(3), bodies[PathETLRunTMDB]["pages"])
	assert.Equal(t, float64(20), bodies[PathETLRunTMDB]["movies_per_page"])
	assert.Equal(t, []interface{}{"US", "GB", "FR"}, bodies[PathETLRunPlaces]["country_codes"])
	assert.Equal(t, float64(20), bodies[PathETLRunPlaces]["limit_per_country"])
}

func TestRawBytesKept(t *testing.T) {
	api, _ := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"film_id":1,"title":"Heat"}]`))
	}, model.Credential{})

	list, err := api.Films.Popular(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, list.Films)
	assert.JSONEq(t, `[{"film_id":1,"title":"Heat"}]`, string(list.Raw))
}

func TestLoginFetchesUserWhenMissing(t *testing.T) {
	api, sess := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case PathLogin:
			writeJSON(w, http.StatusOK, model.Credential{AccessToken: "tok", RefreshToken: "ref", TokenType: "bearer"})
		case PathMe:
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			writeJSON(w, http.StatusOK, model.User{ID: "1", Username: "alice", Email: "a@example.com", Role: "analyst"})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}, model.Credential{})

	cred, err := api.Auth.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	require.NotNil(t, cred.User)
	assert.Equal(t, "analyst", cred.User.Role)
	assert.Equal(t, session.StateAuthenticated, sess.State())
	assert.Equal(t, "alice", sess.User().Username)
}

func TestLoginFailureRecordsDetail(t *testing.T) {
	api, sess := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect username or password"})
	}, model.Credential{})

	_, err := api.Auth.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.Equal(t, session.StateAnonymous, sess.State())
	assert.Equal(t, "Incorrect username or password", sess.LastError())
	assert.Empty(t, sess.Token())
}

func TestRegisterValidatesBeforeSending(t *testing.T) {
	var calls int32
	api, _ := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusCreated, model.User{ID: "2", Username: "bob"})
	}, model.Credential{})
	ctx := context.Background()

	_, err := api.Auth.Register(ctx, model.RegisterRequest{Username: "bo", Email: "nope", Password: "short"})
	require.Error(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	user, err := api.Auth.Register(ctx, model.RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "longenough"})
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestLogoutClearsEvenIfBackendFails(t *testing.T) {
	api, sess := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, model.Credential{AccessToken: "tok", RefreshToken: "ref"})

	api.Auth.Logout(context.Background())
	assert.Empty(t, sess.Token())
	assert.Equal(t, session.StateAnonymous, sess.State())
}

func TestRestoreWith401ClearsSession(t *testing.T) {
	api, sess := newAPI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}, model.Credential{AccessToken: "stale", RefreshToken: "ref", User: &model.User{Username: "alice"}})

	err := api.Auth.Restore(context.Background())
	require.Error(t, err)
	assert.Empty(t, sess.Token())
	assert.Nil(t, sess.User())
}

func TestDefaultedCoversSoftOperations(t *testing.T) {
	assert.True(t, Defaulted[PathETLStatus])
	assert.True(t, Defaulted[PathFilmsTrending])
	assert.False(t, Defaulted[PathFilmsPopular])
	assert.False(t, Defaulted[PathETLRunFull])
}
