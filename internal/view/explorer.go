package view

import (
	"context"
	"strings"

	"cinecity-client/internal/fallback"
	"cinecity-client/internal/model"
	"cinecity-client/internal/normalize"
	"cinecity-client/internal/service"

	"github.com/rs/zerolog/log"
)

// Tab is a data explorer tab
type Tab string

const (
	TabMovies       Tab = "movies"
	TabPlaces       Tab = "places"
	TabCorrelations Tab = "correlations"
)

// ParseTab returns the tab named s, movies when unknown
func ParseTab(s string) Tab {
	switch Tab(s) {
	case TabPlaces, TabCorrelations:
		return Tab(s)
	}
	return TabMovies
}

// ExplorerQuery selects the tab, the server-side filters and the local search term
type ExplorerQuery struct {
	Tab     Tab
	Search  string
	Filters model.FilmFilters
}

// Explorer is the data explorer page
type Explorer struct {
	Tab             Tab                   `json:"tab"`
	Search          string                `json:"search,omitempty"`
	Filters         model.FilmFilters     `json:"filters"`
	Stats           model.CollectionStats `json:"stats"`
	Movies          []model.Film          `json:"movies,omitempty"`
	Places          []model.City          `json:"places,omitempty"`
	Correlations    []model.Correlation   `json:"correlations,omitempty"`
	UsingSampleData bool                  `json:"using_sample_data"`
	Reason          string                `json:"reason,omitempty"`
	Error           *Banner               `json:"error,omitempty"`
}

// explorer 总是展示内容：空结果也用示例数据
var explorerPolicy = fallback.Policy{OnError: true, GuaranteeDemo: true}

// LoadExplorer loads the stats strip and the active tab
func LoadExplorer(ctx context.Context, api *service.API, q ExplorerQuery, policy normalize.Policy) *Explorer {
	page := &Explorer{
		Tab:     ParseTab(string(q.Tab)),
		Search:  strings.TrimSpace(q.Search),
		Filters: q.Filters,
	}
	page.Stats = api.ETL.Status(ctx).CollectionStats

	switch page.Tab {
	case TabMovies:
		var films []model.Film
		list, err := api.Films.WithLocationsStrict(ctx, 20, 0, q.Filters)
		if err == nil {
			films, err = items(list.Raw, list.Films, policy, "films", "movies")
		}
		res := fallback.Resolve(fallback.DatasetFilms, films, err, fallback.Films, explorerPolicy)
		page.Movies = filterFilms(res.Items, page.Search)
		page.markFallback(res.UsingFallback, res.Reason, res.Err)

	case TabPlaces:
		// 0 表示不限人口
		var cities []model.City
		list, err := api.Cities.PopularStrict(ctx, 20, 0, q.Filters.Country)
		if err == nil {
			cities, err = items(list.Raw, list.Cities, policy, "cities", "places")
		}
		res := fallback.Resolve(fallback.DatasetPlaces, cities, err, fallback.Places, explorerPolicy)
		page.Places = filterPlaces(res.Items, page.Search)
		page.markFallback(res.UsingFallback, res.Reason, res.Err)

	case TabCorrelations:
		raw, err := api.Analytics.FilmLocationCorrelations(ctx, model.CorrelationFilters{
			Genre:       q.Filters.Genre,
			CountryCode: q.Filters.Country,
		})
		var corr []model.Correlation
		if err == nil {
			corr, err = items[model.Correlation](raw, nil, policy, "correlations")
		}
		res := fallback.Resolve(fallback.DatasetCorrelations, corr, err, fallback.Correlations, explorerPolicy)
		page.Correlations = filterCorrelations(res.Items, page.Search)
		page.markFallback(res.UsingFallback, res.Reason, res.Err)
	}

	log.Debug().
		Str("tab", string(page.Tab)).
		Bool("sample", page.UsingSampleData).
		Msg("Explorer loaded")

	return page
}

func (e *Explorer) markFallback(used bool, reason string, err error) {
	e.UsingSampleData = used
	e.Reason = reason
	if err != nil && !used {
		e.Error = Classify(err)
	}
}

func contains(s, term string) bool {
	return strings.Contains(strings.ToLower(s), term)
}

func anyContains(values []string, term string) bool {
	for _, v := range values {
		if contains(v, term) {
			return true
		}
	}
	return false
}

func filterFilms(films []model.Film, search string) []model.Film {
	term := strings.ToLower(search)
	if term == "" {
		return films
	}
	out := make([]model.Film, 0, len(films))
	for _, f := range films {
		if contains(f.Title, term) || anyContains(f.Genres, term) || anyContains(f.ProductionCountries, term) {
			out = append(out, f)
		}
	}
	return out
}

func filterPlaces(places []model.City, search string) []model.City {
	term := strings.ToLower(search)
	if term == "" {
		return places
	}
	out := make([]model.City, 0, len(places))
	for _, p := range places {
		if contains(p.Name, term) || contains(p.Country, term) {
			out = append(out, p)
		}
	}
	return out
}

func filterCorrelations(corr []model.Correlation, search string) []model.Correlation {
	term := strings.ToLower(search)
	if term == "" {
		return corr
	}
	out := make([]model.Correlation, 0, len(corr))
	for _, c := range corr {
		if contains(c.FilmTitle, term) || anyContains(c.FilmGenres, term) {
			out = append(out, c)
		}
	}
	return out
}
