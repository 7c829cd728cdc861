package view

import (
	"context"

	"cinecity-client/internal/model"
	"cinecity-client/internal/normalize"
	"cinecity-client/internal/service"
)

// FilmsByCountryChart maps country to label and film_count to value, one point per row
func FilmsByCountryChart(rows []model.CountryFilmCount) model.ChartSeries {
	series := model.ChartSeries{
		Label:  "Films by country",
		Labels: make([]string, len(rows)),
		Values: make([]float64, len(rows)),
	}
	for i, r := range rows {
		series.Labels[i] = r.Country
		series.Values[i] = float64(r.FilmCount)
	}
	return series
}

// GenreShareChart maps the region's top genres to labels and percentages
func GenreShareChart(region model.Region) model.ChartSeries {
	series := model.ChartSeries{
		Label:  "Top genres in " + region.CountryName,
		Labels: make([]string, len(region.TopGenres)),
		Values: make([]float64, len(region.TopGenres)),
	}
	for i, g := range region.TopGenres {
		series.Labels[i] = g.Name
		series.Values[i] = g.Percentage
	}
	return series
}

// CountryChart is the films-by-country chart page
type CountryChart struct {
	TotalFilms        int               `json:"total_films"`
	CountriesAnalyzed int               `json:"countries_analyzed"`
	Series            model.ChartSeries `json:"series"`
	Error             *Banner           `json:"error,omitempty"`
}

// LoadCountryChart loads films-by-country and prepares the series.
// A failed request gives an empty series with Error set.
func LoadCountryChart(ctx context.Context, api *service.API, policy normalize.Policy) *CountryChart {
	chart := &CountryChart{}
	res, err := api.Analytics.FilmsByCountryStrict(ctx)
	var rows []model.CountryFilmCount
	if err == nil {
		chart.TotalFilms = res.TotalFilms
		chart.CountriesAnalyzed = res.CountriesAnalyzed
		rows, err = items(res.Raw, res.Data, policy, "data", "countries")
	}
	if err != nil {
		rows = nil
	}
	chart.Series = FilmsByCountryChart(rows)
	chart.Error = Classify(err)
	return chart
}
