package view

import (
	"context"

	"cinecity-client/internal/model"
	"cinecity-client/internal/normalize"
	"cinecity-client/internal/service"

	"golang.org/x/sync/errgroup"
)

// Panel is one independently loaded dashboard block
type Panel[T any] struct {
	Data  T       `json:"data"`
	Error *Banner `json:"error,omitempty"`
}

// Dashboard is the analytics overview page
type Dashboard struct {
	Stats     Panel[*model.AnalyticsStats] `json:"stats"`
	Countries Panel[model.ChartSeries]     `json:"countries"`
	Jobs      Panel[[]model.Job]           `json:"jobs"`
	Popular   Panel[[]model.Film]          `json:"popular"`
	Featured  Panel[[]model.City]          `json:"featured"`
}

// LoadDashboard loads every panel in parallel and waits for all of them.
// A failing panel does not cancel or hide the others.
func LoadDashboard(ctx context.Context, api *service.API, policy normalize.Policy) *Dashboard {
	d := &Dashboard{}

	// 不用 WithContext：一个面板失败不取消其它请求
	var g errgroup.Group

	g.Go(func() error {
		stats, err := api.Analytics.StatsStrict(ctx)
		d.Stats = Panel[*model.AnalyticsStats]{Data: stats, Error: Classify(err)}
		return nil
	})
	g.Go(func() error {
		chart := LoadCountryChart(ctx, api, policy)
		d.Countries = Panel[model.ChartSeries]{Data: chart.Series, Error: chart.Error}
		return nil
	})
	g.Go(func() error {
		list, err := api.ETL.LatestJobsStrict(ctx, 10)
		var jobs []model.Job
		if err == nil {
			jobs, err = items(list.Raw, list.Jobs, policy, "jobs")
		}
		d.Jobs = Panel[[]model.Job]{Data: jobs, Error: Classify(err)}
		return nil
	})
	g.Go(func() error {
		list, err := api.Films.Popular(ctx, 4)
		var films []model.Film
		if err == nil {
			films, err = items(list.Raw, list.Films, policy, "films", "movies")
		}
		d.Popular = Panel[[]model.Film]{Data: films, Error: Classify(err)}
		return nil
	})
	g.Go(func() error {
		list, err := api.Cities.Featured(ctx, 6, false)
		var cities []model.City
		if err == nil {
			cities, err = items(list.Raw, list.Cities, policy, "cities")
		}
		d.Featured = Panel[[]model.City]{Data: cities, Error: Classify(err)}
		return nil
	})

	_ = g.Wait()
	return d
}
