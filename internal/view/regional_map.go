package view

import (
	"context"

	"cinecity-client/internal/fallback"
	"cinecity-client/internal/model"
	"cinecity-client/internal/normalize"
	"cinecity-client/internal/service"
)

const loadMapError = "Failed to load regional popularity data. Please try again later."

// RegionalMap is the popularity map page
type RegionalMap struct {
	Regions         []model.Region `json:"regions"`
	Selected        *model.Region  `json:"selected,omitempty"`
	UsingSampleData bool           `json:"using_sample_data"`
	Error           *Banner        `json:"error,omitempty"`
}

// LoadRegionalMap loads the markers and selects the first one.
// On failure the sample regions are shown with the United States selected.
func LoadRegionalMap(ctx context.Context, api *service.API, policy normalize.Policy) *RegionalMap {
	var regions []model.Region
	res, err := api.Map.RegionalPopularity(ctx)
	if err == nil {
		regions, err = items(res.Raw, res.Regions, policy, "regions")
	}

	out := fallback.Resolve(fallback.DatasetRegions, regions, err, fallback.Regions, fallback.Policy{OnError: true})
	page := &RegionalMap{Regions: out.Items, UsingSampleData: out.UsingFallback}
	if out.UsingFallback {
		page.Error = &Banner{Kind: Classify(err).Kind, Message: loadMapError}
		page.Select("US")
		return page
	}
	if len(page.Regions) > 0 {
		page.Selected = &page.Regions[0]
	}
	return page
}

// Select marks the region with the country code, reporting whether it exists
func (m *RegionalMap) Select(code string) bool {
	for i := range m.Regions {
		if m.Regions[i].CountryCode == code {
			m.Selected = &m.Regions[i]
			return true
		}
	}
	return false
}
