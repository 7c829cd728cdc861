package service

import (
	"context"
	"net/url"
	"time"

	"cinecity-client/internal/model"
	"cinecity-client/pkg/httpclient"

	"github.com/rs/zerolog/log"
)

// Analytics routes
const (
	PathAnalyticsStats        = "/api/v1/analytics/stats"
	PathAnalyticsByCountry    = "/api/v1/analytics/films-by-country"
	PathAnalyticsCitiesNear   = "/api/v1/analytics/cities-near-films"
	PathAnalyticsCorrelations = "/api/v1/analytics/film-location-correlations"
)

// AnalyticsService reads aggregate statistics
type AnalyticsService struct {
	client *httpclient.Client
	now    func() time.Time
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(client *httpclient.Client) *AnalyticsService {
	return &AnalyticsService{client: client, now: time.Now}
}

// Stats returns platform totals. Failures give zero counts stamped now.
func (s *AnalyticsService) Stats(ctx context.Context) *model.AnalyticsStats {
	result, err := s.StatsStrict(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to fetch analytics stats")
		return &model.AnalyticsStats{
			Timestamp: s.now().UTC().Format(time.RFC3339),
			ETLStats:  []model.ETLTypeStats{},
		}
	}
	return result
}

// StatsStrict is Stats without the default
func (s *AnalyticsService) StatsStrict(ctx context.Context) (*model.AnalyticsStats, error) {
	var result model.AnalyticsStats
	if _, err := get(ctx, s.client, PathAnalyticsStats, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FilmsByCountry returns film counts per production country. Failures give an empty list.
func (s *AnalyticsService) FilmsByCountry(ctx context.Context) *model.FilmsByCountry {
	result, err := s.FilmsByCountryStrict(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to fetch films by country")
		return &model.FilmsByCountry{Data: []model.CountryFilmCount{}}
	}
	return result
}

// FilmsByCountryStrict is FilmsByCountry without the default
func (s *AnalyticsService) FilmsByCountryStrict(ctx context.Context) (*model.FilmsByCountry, error) {
	var result model.FilmsByCountry
	raw, err := get(ctx, s.client, PathAnalyticsByCountry, nil, &result)
	if err != nil {
		return nil, err
	}
	result.Raw = raw
	return &result, nil
}

// CitiesNearFilms returns cities close to film locations. Defaults: 100 km, 20 cities.
func (s *AnalyticsService) CitiesNearFilms(ctx context.Context, radiusKm, limit int) *model.CityList {
	if radiusKm <= 0 {
		radiusKm = 100
	}
	if limit <= 0 {
		limit = 20
	}
	params := url.Values{}
	params.Set("radius_km", itoa(radiusKm))
	params.Set("limit", itoa(limit))

	var result model.CityList
	raw, err := get(ctx, s.client, PathAnalyticsCitiesNear, params, &result)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to fetch cities near films")
		return &model.CityList{RadiusKm: radiusKm, Cities: []model.City{}}
	}
	result.Raw = raw
	return &result
}

// FilmLocationCorrelations returns films with suggested shooting locations.
// The payload may be a bare list or an envelope, so only the bytes are returned.
func (s *AnalyticsService) FilmLocationCorrelations(ctx context.Context, filters model.CorrelationFilters) ([]byte, error) {
	params := url.Values{}
	if filters.Genre != "" {
		params.Set("genre", filters.Genre)
	}
	if filters.CountryCode != "" {
		params.Set("country_code", filters.CountryCode)
	}

	raw, err := get(ctx, s.client, PathAnalyticsCorrelations, params, nil)
	if err != nil {
		return nil, err
	}
	return raw, nil
}
