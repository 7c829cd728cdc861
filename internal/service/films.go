package service

import (
	"context"
	"net/url"

	"cinecity-client/internal/model"
	"cinecity-client/pkg/httpclient"

	"github.com/rs/zerolog/log"
)

// Film routes
const (
	PathFilmsPopular       = "/api/v1/films/popular"
	PathFilmsTrending      = "/api/v1/films/trending"
	PathFilmsLocations     = "/api/v1/films/locations"
	PathFilmsPopularRegion = "/api/v1/films/popular-region"
)

// FilmService reads film lists from the backend
type FilmService struct {
	client *httpclient.Client
}

// NewFilmService creates a new FilmService
func NewFilmService(client *httpclient.Client) *FilmService {
	return &FilmService{client: client}
}

// Popular returns the most popular films. Default limit 4.
func (s *FilmService) Popular(ctx context.Context, limit int) (*model.FilmList, error) {
	if limit <= 0 {
		limit = 4
	}
	params := url.Values{}
	params.Set("limit", itoa(limit))

	var result model.FilmList
	raw, err := get(ctx, s.client, PathFilmsPopular, params, &result)
	if err != nil {
		return nil, err
	}
	result.Raw = raw

	log.Debug().Int("count", len(result.Films)).Msg("Fetched popular films")
	return &result, nil
}

// Trending returns films trending over the last days. Failures give an empty list.
func (s *FilmService) Trending(ctx context.Context, days, limit int) *model.FilmList {
	if days <= 0 {
		days = 7
	}
	if limit <= 0 {
		limit = 20
	}
	params := url.Values{}
	params.Set("days", itoa(days))
	params.Set("limit", itoa(limit))

	var result model.FilmList
	raw, err := get(ctx, s.client, PathFilmsTrending, params, &result)
	if err != nil {
		log.Warn().Err(err).Int("days", days).Msg("Failed to fetch trending films")
		return &model.FilmList{PeriodDays: days, Total: 0, Films: []model.Film{}}
	}
	result.Raw = raw
	return &result
}

// WithLocations returns films joined with their locations. Failures give an empty list.
func (s *FilmService) WithLocations(ctx context.Context, limit, skip int, filters model.FilmFilters) *model.FilmList {
	result, err := s.WithLocationsStrict(ctx, limit, skip, filters)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to fetch films with locations")
		f := filters
		return &model.FilmList{Total: 0, Films: []model.Film{}, Filters: &f}
	}
	return result
}

// WithLocationsStrict is WithLocations without the default. Defaults: 50 films from 0.
func (s *FilmService) WithLocationsStrict(ctx context.Context, limit, skip int, filters model.FilmFilters) (*model.FilmList, error) {
	if limit <= 0 {
		limit = 50
	}
	if skip < 0 {
		skip = 0
	}
	params := url.Values{}
	params.Set("limit", itoa(limit))
	params.Set("skip", itoa(skip))
	if filters.Country != "" {
		params.Set("country", filters.Country)
	}
	if filters.Genre != "" {
		params.Set("genre", filters.Genre)
	}
	if filters.Year != "" {
		params.Set("year", filters.Year)
	}

	var result model.FilmList
	raw, err := get(ctx, s.client, PathFilmsLocations, params, &result)
	if err != nil {
		return nil, err
	}
	result.Raw = raw
	return &result, nil
}

// PopularByRegion returns the top films of a region. Default limit 3.
func (s *FilmService) PopularByRegion(ctx context.Context, region string, limit int) (*model.FilmList, error) {
	if limit <= 0 {
		limit = 3
	}
	params := url.Values{}
	params.Set("region", region)
	params.Set("limit", itoa(limit))

	var result model.FilmList
	raw, err := get(ctx, s.client, PathFilmsPopularRegion, params, &result)
	if err != nil {
		return nil, err
	}
	result.Raw = raw
	return &result, nil
}
