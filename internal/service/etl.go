package service

import (
	"context"
	"net/url"

	"cinecity-client/internal/model"
	"cinecity-client/pkg/httpclient"

	"github.com/rs/zerolog/log"
)

// ETL routes
const (
	PathETLStatus             = "/api/v1/etl/status"
	PathETLCorrelationStats   = "/api/v1/etl/correlation-stats"
	PathETLTest               = "/api/v1/etl/test"
	PathETLLatestJobs         = "/api/v1/etl/jobs/latest"
	PathETLRunTMDB            = "/api/v1/etl/run-tmdb-etl"
	PathETLRunPlaces          = "/api/v1/etl/run-places-etl"
	PathETLRunEnrichment      = "/api/v1/etl/run-enrichment"
	PathETLRunFull            = "/api/v1/etl/run-full-etl"
	PathETLTestAPIConnections = "/api/v1/etl/test-api-connections"
)

// DefaultPlacesCountries is the country set of a places run
var DefaultPlacesCountries = []string{"US", "GB", "FR"}

// ETLService reads pipeline state and triggers pipeline runs
type ETLService struct {
	client *httpclient.Client
}

// NewETLService creates a new ETLService
func NewETLService(client *httpclient.Client) *ETLService {
	return &ETLService{client: client}
}

// Status returns the pipeline status. Failures give an "error" status.
func (s *ETLService) Status(ctx context.Context) *model.ETLStatus {
	result, err := s.StatusStrict(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to fetch ETL status")
		return &model.ETLStatus{
			Status:   "error",
			Message:  "Failed to fetch ETL status",
			LastJobs: []model.Job{},
		}
	}
	return result
}

// StatusStrict is Status without the default, for callers that must tell a
// missing route apart from an empty pipeline.
func (s *ETLService) StatusStrict(ctx context.Context) (*model.ETLStatus, error) {
	var result model.ETLStatus
	if _, err := get(ctx, s.client, PathETLStatus, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CorrelationStats returns correlation totals. Failures give a "no_data" status.
func (s *ETLService) CorrelationStats(ctx context.Context) *model.CorrelationStats {
	var result model.CorrelationStats
	if _, err := get(ctx, s.client, PathETLCorrelationStats, nil, &result); err != nil {
		log.Warn().Err(err).Msg("Failed to fetch correlation stats")
		return &model.CorrelationStats{
			Status:             "no_data",
			Message:            "No correlation data available",
			TotalCorrelations:  0,
			SampleCorrelations: []model.SampleCorrelation{},
		}
	}
	return &result
}

// Test pings the ETL router
func (s *ETLService) Test(ctx context.Context) (map[string]interface{}, error) {
	result := map[string]interface{}{}
	if _, err := get(ctx, s.client, PathETLTest, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// LatestJobs returns the most recent jobs. Default limit 10; failures give an empty list.
func (s *ETLService) LatestJobs(ctx context.Context, limit int) *model.JobList {
	result, err := s.LatestJobsStrict(ctx, limit)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to fetch latest jobs")
		return &model.JobList{TotalJobs: 0, Jobs: []model.Job{}}
	}
	return result
}

// LatestJobsStrict is LatestJobs without the default
func (s *ETLService) LatestJobsStrict(ctx context.Context, limit int) (*model.JobList, error) {
	if limit <= 0 {
		limit = 10
	}
	params := url.Values{}
	params.Set("limit", itoa(limit))

	var result model.JobList
	raw, err := get(ctx, s.client, PathETLLatestJobs, params, &result)
	if err != nil {
		return nil, err
	}
	result.Raw = raw
	return &result, nil
}

// RunTMDB starts a TMDB import. Defaults: 3 pages of 20 films.
func (s *ETLService) RunTMDB(ctx context.Context, pages, moviesPerPage int) (*model.RunResult, error) {
	if pages <= 0 {
		pages = 3
	}
	if moviesPerPage <= 0 {
		moviesPerPage = 20
	}
	return s.run(ctx, PathETLRunTMDB, model.TMDBRunRequest{Pages: pages, MoviesPerPage: moviesPerPage})
}

// RunPlaces starts a places import. Defaults: US, GB, FR with 20 places each.
func (s *ETLService) RunPlaces(ctx context.Context, countryCodes []string, limitPerCountry int) (*model.RunResult, error) {
	if len(countryCodes) == 0 {
		countryCodes = append([]string(nil), DefaultPlacesCountries...)
	}
	if limitPerCountry <= 0 {
		limitPerCountry = 20
	}
	return s.run(ctx, PathETLRunPlaces, model.PlacesRunRequest{CountryCodes: countryCodes, LimitPerCountry: limitPerCountry})
}

// RunEnrichment starts the film/place enrichment job
func (s *ETLService) RunEnrichment(ctx context.Context) (*model.RunResult, error) {
	return s.run(ctx, PathETLRunEnrichment, nil)
}

// RunFull starts the full pipeline. Callers confirm with the user first.
func (s *ETLService) RunFull(ctx context.Context) (*model.RunResult, error) {
	return s.run(ctx, PathETLRunFull, nil)
}

// TestAPIConnections asks the backend to probe its third-party APIs
func (s *ETLService) TestAPIConnections(ctx context.Context) (map[string]interface{}, error) {
	result := map[string]interface{}{}
	if _, err := post(ctx, s.client, PathETLTestAPIConnections, nil, &result); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ETLService) run(ctx context.Context, path string, body interface{}) (*model.RunResult, error) {
	var result model.RunResult
	if _, err := post(ctx, s.client, path, body, &result); err != nil {
		return nil, err
	}

	log.Info().Str("path", path).Str("id", result.ID()).Msg("ETL run started")
	return &result, nil
}
