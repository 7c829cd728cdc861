package service

import (
	"context"

	"cinecity-client/internal/model"
	"cinecity-client/pkg/httpclient"

	"github.com/rs/zerolog/log"
)

// Map routes
const (
	PathMapRegional    = "/api/v1/map/regional-popularity"
	PathMapTestMinimal = "/api/v1/map/test-minimal"
)

// MapService reads the regional popularity map
type MapService struct {
	client *httpclient.Client
}

// NewMapService creates a new MapService
func NewMapService(client *httpclient.Client) *MapService {
	return &MapService{client: client}
}

// RegionalPopularity returns the per-country popularity markers
func (s *MapService) RegionalPopularity(ctx context.Context) (*model.RegionalPopularity, error) {
	var result model.RegionalPopularity
	raw, err := get(ctx, s.client, PathMapRegional, nil, &result)
	if err != nil {
		return nil, err
	}
	result.Raw = raw

	log.Debug().Int("regions", len(result.Regions)).Msg("Fetched regional popularity")
	return &result, nil
}

// TestMinimal returns the backend's minimal map payload, used for diagnostics
func (s *MapService) TestMinimal(ctx context.Context) (*model.RegionalPopularity, error) {
	var result model.RegionalPopularity
	raw, err := get(ctx, s.client, PathMapTestMinimal, nil, &result)
	if err != nil {
		return nil, err
	}
	result.Raw = raw
	return &result, nil
}
