package main

import (
	"bufio"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"cinecity-client/internal/model"
	"cinecity-client/internal/normalize"
	"cinecity-client/internal/service"
	"cinecity-client/internal/session"
	"cinecity-client/pkg/httpclient"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCLI(t *testing.T, handler http.HandlerFunc, input string) (*cli, *bytes.Buffer, *int32, *session.FileStore) {
	t.Helper()
	return newCLIWithSession(t, handler, input, nil)
}

func newCLIWithSession(t *testing.T, handler http.HandlerFunc, input string, seed *model.Credential) (*cli, *bytes.Buffer, *int32, *session.FileStore) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	store := session.NewFileStore(filepath.Join(t.TempDir(), "session.json"))
	if seed != nil {
		require.NoError(t, store.Save(*seed))
	}
	sess := session.NewManager(store)
	out := &bytes.Buffer{}
	return &cli{
		api:    service.New(httpclient.NewClient(srv.URL, 2*time.Second), sess),
		sess:   sess,
		policy: normalize.PolicyLenient,
		poll:   time.Minute,
		in:     bufio.NewReader(strings.NewReader(input)),
		out:    out,
	}, out, &calls, store
}

func TestRunFullDeclinedOnStdin(t *testing.T) {
	app, out, calls, _ := newCLI(t, http.NotFound, "n\n")

	require.NoError(t, app.run(context.Background(), []string{"etl", "run-full"}))
	assert.Contains(t, out.String(), "[y/N]")
	assert.Contains(t, out.String(), "Cancelled.")
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestRunFullEmptyInputDeclines(t *testing.T) {
	app, out, calls, _ := newCLI(t, http.NotFound, "")

	require.NoError(t, app.run(context.Background(), []string{"etl", "run-full"}))
	assert.Contains(t, out.String(), "Cancelled.")
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}

func TestRunFullConfirmedNoWait(t *testing.T) {
	app, out, _, _ := newCLI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == service.PathETLRunFull {
			_, _ = w.Write([]byte(`{"task_id":"t-42","status":"started"}`))
			return
		}
		http.NotFound(w, r)
	}, "yes\n")

	require.NoError(t, app.run(context.Background(), []string{"etl", "run-full", "-no-wait"}))
	assert.Contains(t, out.String(), "ETL full started: t-42")
}

func TestLoginPersistsSession(t *testing.T) {
	app, out, _, store := newCLI(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case service.PathLogin:
			_, _ = w.Write([]byte(`{"access_token":"tok","refresh_token":"ref"}`))
		case service.PathMe:
			_, _ = w.Write([]byte(`{"id":"1","username":"ana","email":"ana@example.com","role":"admin"}`))
		default:
			http.NotFound(w, r)
		}
	}, "secret123\n")

	require.NoError(t, app.run(context.Background(), []string{"login", "-u", "ana"}))
	assert.Contains(t, out.String(), "Password: ")
	assert.Contains(t, out.String(), "Logged in as ana")

	cred, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", cred.AccessToken)
	require.NotNil(t, cred.User)
	assert.Equal(t, "admin", cred.User.Role)
}

func TestStoredSessionRestoredOnStart(t *testing.T) {
	var meCalls int32
	app, out, _, store := newCLIWithSession(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == service.PathMe {
			atomic.AddInt32(&meCalls, 1)
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Could not validate credentials"}`))
			return
		}
		http.NotFound(w, r)
	}, "", &model.Credential{AccessToken: "stale", RefreshToken: "r"})
	require.Equal(t, session.StateAuthenticating, app.sess.State())

	err := app.run(context.Background(), []string{"me"})
	require.Error(t, err)
	assert.Empty(t, out.String())
	assert.Equal(t, session.StateAnonymous, app.sess.State())

	cred, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, cred.AccessToken)
	assert.GreaterOrEqual(t, atomic.LoadInt32(&meCalls), int32(1))
}

func TestExplorerShowsSampleData(t *testing.T) {
	app, out, _, _ := newCLI(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, "")

	require.NoError(t, app.run(context.Background(), []string{"explorer", "-q", "dark"}))
	assert.Contains(t, out.String(), sampleNotice)
	assert.Contains(t, out.String(), "The Dark Knight")
	assert.NotContains(t, out.String(), "Inception")
}

func TestMapTestCommand(t *testing.T) {
	app, out, _, _ := newCLI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == service.PathMapTestMinimal {
			_, _ = w.Write([]byte(`{"total_regions":1,"regions":[{"country_code":"US","country_name":"United States"}]}`))
			return
		}
		http.NotFound(w, r)
	}, "")

	require.NoError(t, app.run(context.Background(), []string{"map", "-test"}))
	assert.Contains(t, out.String(), "Map endpoint OK: 1 regions")
}

func TestETLPingCommand(t *testing.T) {
	app, out, _, _ := newCLI(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == service.PathETLTest {
			_, _ = w.Write([]byte(`{"message":"ETL router is working"}`))
			return
		}
		http.NotFound(w, r)
	}, "")

	require.NoError(t, app.run(context.Background(), []string{"etl", "ping"}))
	assert.Contains(t, out.String(), "ETL router is working")

	down, _, _, _ := newCLI(t, http.NotFound, "")
	assert.Error(t, down.run(context.Background(), []string{"etl", "ping"}))
}

func TestUnknownCommand(t *testing.T) {
	app, _, calls, _ := newCLI(t, http.NotFound, "")

	err := app.run(context.Background(), []string{"bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
	assert.ErrorIs(t, app.run(context.Background(), nil), errUsage)
	assert.Equal(t, int32(0), atomic.LoadInt32(calls))
}
