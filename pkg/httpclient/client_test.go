package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuth struct {
	token        string
	unauthorized int
}

func (f *fakeAuth) Token() string { return f.token }
func (f *fakeAuth) Unauthorized() { f.unauthorized++ }

func TestGetAttachesBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/me", r.URL.Path)
		assert.Equal(t, "Bearer abc123", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"username":"ana","role":"admin"}`))
	}))
	defer server.Close()

	auth := &fakeAuth{token: "abc123"}
	client := NewClient(server.URL+"/", time.Second).WithAuth(auth)

	var out struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	require.NoError(t, client.Get(context.Background(), "/auth/me", nil, &out))
	assert.Equal(t, "ana", out.Username)
	assert.Equal(t, "admin", out.Role)
}

func TestNoTokenNoHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second).WithAuth(&fakeAuth{})
	require.NoError(t, client.Get(context.Background(), "/api/v1/etl/status", nil, nil))
}

func TestQueryParamsAndBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			assert.Equal(t, "7", r.URL.Query().Get("days"))
			assert.Equal(t, "20", r.URL.Query().Get("limit"))
		case http.MethodPost:
			var body map[string]int
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, 3, body["pages"])
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	require.NoError(t, client.Get(context.Background(), "/api/v1/films/trending", url.Values{"days": {"7"}, "limit": {"20"}}, nil))
	require.NoError(t, client.Post(context.Background(), "/api/v1/etl/run-tmdb-etl", map[string]int{"pages": 3}, nil))
}

func TestStatusErrorIsSurfacedUnmodified(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"detail":"Username or email already registered"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.Request(context.Background(), http.MethodPost, "/auth/register", Options{Body: map[string]string{}})
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusConflict, se.StatusCode)
	assert.Equal(t, "Username or email already registered", se.Detail())
	assert.Equal(t, "Username or email already registered", Detail(err))
}

func TestValidationDetailList(t *testing.T) {
	se := &StatusError{StatusCode: 422, Body: []byte(`{"detail":[{"msg":"value is not a valid email address"},{"msg":"too short"}]}`)}
	assert.Equal(t, "value is not a valid email address; too short", se.Detail())

	plain := &StatusError{StatusCode: 500, Body: []byte(`Internal Server Error`)}
	assert.Empty(t, plain.Detail())
}

func TestUnauthorizedNotifiesSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	auth := &fakeAuth{token: "expired"}
	client := NewClient(server.URL, time.Second).WithAuth(auth)

	err := client.Get(context.Background(), "/auth/me", nil, nil)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, 1, auth.unauthorized)
}

func TestTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := server.URL
	server.Close()

	client := NewClient(addr, 200*time.Millisecond)
	err := client.Get(context.Background(), "/api/v1/etl/status", nil, nil)
	require.Error(t, err)
	assert.True(t, IsTransport(err))
	assert.False(t, IsNotFound(err))
	assert.Zero(t, StatusCode(err))
}

func TestNoRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.Request(context.Background(), http.MethodGet, "/api/v1/etl/status", Options{})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	cb := NewBreaker("test", nil)
	client := NewClient(server.URL, time.Second).WithBreaker(cb)
	for i := 0; i < 20; i++ {
		err := client.Get(context.Background(), "/api/v1/etl/status", nil, nil)
		require.True(t, IsNotFound(err))
	}
	assert.Equal(t, "closed", cb.State().String())
}

func TestBreakerOpenIsTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cb := NewBreaker("test", nil)
	client := NewClient(server.URL, time.Second).WithBreaker(cb)
	for i := 0; i < 10; i++ {
		_ = client.Get(context.Background(), "/api/v1/etl/status", nil, nil)
	}

	err := client.Get(context.Background(), "/api/v1/etl/status", nil, nil)
	assert.True(t, IsTransport(err))
}

func TestCountsAsFailure(t *testing.T) {
	assert.False(t, CountsAsFailure(nil))
	assert.False(t, CountsAsFailure(&StatusError{StatusCode: 404}))
	assert.True(t, CountsAsFailure(&StatusError{StatusCode: 502}))
	assert.True(t, CountsAsFailure(&TransportError{Err: context.DeadlineExceeded}))
}

func TestObserverSeesEveryOutcome(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte(`{}`))
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusBadGateway)
		}
	}))
	defer server.Close()

	var seen []string
	client := NewClient(server.URL, time.Second).WithObserver(func(method, path, outcome string, latency time.Duration) {
		seen = append(seen, method+" "+path+" "+outcome)
	})
	// WithAuth 的副本保留 observer
	client = client.WithAuth(&fakeAuth{})

	_ = client.Get(context.Background(), "/ok", nil, nil)
	_ = client.Get(context.Background(), "/missing", nil, nil)
	_ = client.Post(context.Background(), "/broken", map[string]int{"n": 1}, nil)

	assert.Equal(t, []string{
		"GET /ok ok",
		"GET /missing http_4xx",
		"POST /broken http_5xx",
	}, seen)
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, OutcomeOK, Outcome(nil))
	assert.Equal(t, OutcomeClient, Outcome(&StatusError{StatusCode: 422}))
	assert.Equal(t, OutcomeServer, Outcome(&StatusError{StatusCode: 503}))
	assert.Equal(t, OutcomeTransport, Outcome(&TransportError{Err: context.Canceled}))
}
