package service

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"cinecity-client/internal/session"
	"cinecity-client/pkg/httpclient"

	"github.com/goccy/go-json"
)

// API bundles the domain modules that share one client and one session
type API struct {
	Auth      *AuthService
	Films     *FilmService
	Cities    *CityService
	Map       *MapService
	ETL       *ETLService
	Analytics *AnalyticsService
}

// New wires every module to client, authenticated through sess
func New(client *httpclient.Client, sess *session.Manager) *API {
	if sess != nil {
		client = client.WithAuth(sess)
	}
	return &API{
		Auth:      NewAuthService(client, sess),
		Films:     NewFilmService(client),
		Cities:    NewCityService(client),
		Map:       NewMapService(client),
		ETL:       NewETLService(client),
		Analytics: NewAnalyticsService(client),
	}
}

// Defaulted lists the routes whose operations swallow failures and return an
// empty default instead of an error.
var Defaulted = map[string]bool{
	PathFilmsTrending:       true,
	PathFilmsLocations:      true,
	PathCitiesPopular:       true,
	PathETLStatus:           true,
	PathETLCorrelationStats: true,
	PathETLLatestJobs:       true,
	PathAnalyticsStats:      true,
	PathAnalyticsByCountry:  true,
	PathAnalyticsCitiesNear: true,
}

// get fetches path and decodes an object payload into out.
// Non-object payloads (bare lists) are left to the normalizer via the returned bytes.
func get(ctx context.Context, c *httpclient.Client, path string, params url.Values, out interface{}) ([]byte, error) {
	data, err := c.Request(ctx, http.MethodGet, path, httpclient.Options{Params: params})
	if err != nil {
		return nil, err
	}
	return data, decodeObject(path, data, out)
}

func post(ctx context.Context, c *httpclient.Client, path string, body, out interface{}) ([]byte, error) {
	data, err := c.Request(ctx, http.MethodPost, path, httpclient.Options{Body: body})
	if err != nil {
		return nil, err
	}
	return data, decodeObject(path, data, out)
}

func decodeObject(path string, data []byte, out interface{}) error {
	trimmed := bytes.TrimSpace(data)
	if out == nil || len(trimmed) == 0 || trimmed[0] != '{' {
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", path, err)
	}
	return nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
