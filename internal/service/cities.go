package service

import (
	"context"
	"net/url"
	"strconv"

	"cinecity-client/internal/model"
	"cinecity-client/pkg/httpclient"

	"github.com/rs/zerolog/log"
)

// City routes
const (
	PathCitiesFeatured = "/api/v1/cities/featured"
	PathCitiesPopular  = "/api/v1/cities/popular"
)

// CityService reads city lists from the backend
type CityService struct {
	client *httpclient.Client
}

// NewCityService creates a new CityService
func NewCityService(client *httpclient.Client) *CityService {
	return &CityService{client: client}
}

// Featured returns highlighted cities. Default limit 6, backend fallback data unless useAPI.
func (s *CityService) Featured(ctx context.Context, limit int, useAPI bool) (*model.CityList, error) {
	if limit <= 0 {
		limit = 6
	}
	params := url.Values{}
	params.Set("limit", itoa(limit))
	params.Set("use_api", strconv.FormatBool(useAPI))

	var result model.CityList
	raw, err := get(ctx, s.client, PathCitiesFeatured, params, &result)
	if err != nil {
		return nil, err
	}
	result.Raw = raw
	return &result, nil
}

// Popular returns large cities, optionally in one country. Failures give an empty list.
// A limit of 0 or less means 20. A minPopulation of 0 means no minimum and a
// negative one means 100000.
func (s *CityService) Popular(ctx context.Context, limit, minPopulation int, countryCode string) *model.CityList {
	result, err := s.PopularStrict(ctx, limit, minPopulation, countryCode)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to fetch popular cities")
		if minPopulation < 0 {
			minPopulation = defaultMinPopulation
		}
		return &model.CityList{Total: 0, Cities: []model.City{}, MinPopulation: minPopulation}
	}
	return result
}

const defaultMinPopulation = 100000

// PopularStrict is Popular without the default
func (s *CityService) PopularStrict(ctx context.Context, limit, minPopulation int, countryCode string) (*model.CityList, error) {
	if limit <= 0 {
		limit = 20
	}
	if minPopulation < 0 {
		minPopulation = defaultMinPopulation
	}
	params := url.Values{}
	params.Set("limit", itoa(limit))
	params.Set("min_population", itoa(minPopulation))
	if countryCode != "" {
		params.Set("country_code", countryCode)
	}

	var result model.CityList
	raw, err := get(ctx, s.client, PathCitiesPopular, params, &result)
	if err != nil {
		return nil, err
	}
	result.Raw = raw
	return &result, nil
}
