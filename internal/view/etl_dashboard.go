package view

import (
	"context"
	"errors"
	"time"

	"cinecity-client/internal/fallback"
	"cinecity-client/internal/model"
	"cinecity-client/internal/service"
	"cinecity-client/pkg/httpclient"

	"github.com/rs/zerolog/log"
)

const (
	// RefreshCountdown is the wait before reloading after a full run starts
	RefreshCountdown = 30 * time.Second
	// RunRefreshDelay is the wait before reloading after a single-source run
	RunRefreshDelay = 20 * time.Second
	// DefaultPollInterval is the dashboard auto-refresh period
	DefaultPollInterval = 60 * time.Second
)

const (
	RunFullPrompt      = "Are you sure you want to run the ETL pipeline? This may take several minutes."
	MissingETLWarning  = "ETL endpoints not found. The backend might not have ETL endpoints implemented."
	loadETLErrorPrefix = "Failed to load ETL data"
)

// ErrDeclined is returned when the user did not confirm a destructive run
var ErrDeclined = errors.New("run declined by user")

// Confirmer asks the user before a long-running or destructive action
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

// ETLDashboard is the pipeline status page
type ETLDashboard struct {
	Status          *model.ETLStatus        `json:"status"`
	Correlations    *model.CorrelationStats `json:"correlations,omitempty"`
	Warning         string                  `json:"warning,omitempty"`
	Error           *Banner                 `json:"error,omitempty"`
	UsingSampleData bool                    `json:"using_sample_data"`
	LoadedAt        time.Time               `json:"loaded_at"`
}

// LoadETLDashboard fetches the status, then the optional correlation stats.
// A 404 means the backend has no ETL routes: the demo status is shown with a warning.
func LoadETLDashboard(ctx context.Context, api *service.API, now func() time.Time) *ETLDashboard {
	if now == nil {
		now = time.Now
	}
	page := &ETLDashboard{LoadedAt: now()}

	status, err := api.ETL.StatusStrict(ctx)
	switch {
	case err == nil:
		page.Status = status
		page.Correlations = api.ETL.CorrelationStats(ctx)
	case httpclient.IsNotFound(err):
		demo := fallback.ETLStatus(now())
		page.Status = &demo
		page.Warning = MissingETLWarning
		page.UsingSampleData = true
	default:
		log.Warn().Err(err).Msg("Failed to load ETL dashboard")
		page.Error = withPrefix(Classify(err), loadETLErrorPrefix)
	}
	return page
}

// DismissWarning hides the missing-routes warning
func (d *ETLDashboard) DismissWarning() {
	d.Warning = ""
}

// RunOutcome acknowledges a started run
type RunOutcome struct {
	Kind             string        `json:"kind"`
	TaskID           string        `json:"task_id"`
	Status           string        `json:"status,omitempty"`
	Message          string        `json:"message,omitempty"`
	RefreshIn        time.Duration `json:"-"`
	RefreshInSeconds int           `json:"refresh_in_seconds"`
}

func newOutcome(kind string, res *model.RunResult, refresh time.Duration) *RunOutcome {
	return &RunOutcome{
		Kind:             kind,
		TaskID:           res.ID(),
		Status:           res.Status,
		Message:          res.Message,
		RefreshIn:        refresh,
		RefreshInSeconds: int(refresh / time.Second),
	}
}

// RunFull asks the confirmer and, only on yes, starts the full pipeline
func RunFull(ctx context.Context, api *service.API, confirmer Confirmer) (*RunOutcome, error) {
	ok, err := confirmer.Confirm(ctx, RunFullPrompt)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrDeclined
	}

	res, err := api.ETL.RunFull(ctx)
	if err != nil {
		return nil, err
	}
	return newOutcome(RunKindFull, res, RefreshCountdown), nil
}

// Run kinds
const (
	RunKindFull       = "full"
	RunKindTMDB       = "tmdb"
	RunKindPlaces     = "places"
	RunKindEnrichment = "enrichment"
)

// ErrUnknownRun is returned for a run kind the backend does not offer
var ErrUnknownRun = errors.New("unknown ETL run")

// RunSource starts a single-source run with its default parameters
func RunSource(ctx context.Context, api *service.API, kind string) (*RunOutcome, error) {
	var (
		res *model.RunResult
		err error
	)
	switch kind {
	case RunKindTMDB:
		res, err = api.ETL.RunTMDB(ctx, 0, 0)
	case RunKindPlaces:
		res, err = api.ETL.RunPlaces(ctx, nil, 0)
	case RunKindEnrichment:
		res, err = api.ETL.RunEnrichment(ctx)
	default:
		return nil, ErrUnknownRun
	}
	if err != nil {
		return nil, err
	}
	return newOutcome(kind, res, RunRefreshDelay), nil
}

// Countdown ticks once per second until d has elapsed
func Countdown(ctx context.Context, d time.Duration, tick func(remaining int)) error {
	remaining := int(d / time.Second)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for remaining > 0 {
		if tick != nil {
			tick(remaining)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			remaining--
		}
	}
	return nil
}

// Poll calls fn every interval until ctx is cancelled
func Poll(ctx context.Context, interval time.Duration, fn func(ctx context.Context)) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			fn(ctx)
		}
	}
}

// WatchETL renders the dashboard now and on every poll. Each load runs on
// its own goroutine; a load that finishes after a newer one is dropped.
func WatchETL(ctx context.Context, api *service.API, interval time.Duration, render func(*ETLDashboard)) error {
	var gen Generation
	load := func(ctx context.Context) {
		token := gen.Begin()
		go func() {
			page := LoadETLDashboard(ctx, api, nil)
			if ctx.Err() != nil {
				return
			}
			if !gen.Commit(token, func() { render(page) }) {
				log.Debug().Uint64("generation", token).Msg("Dropped stale ETL dashboard")
			}
		}()
	}

	load(ctx)
	return Poll(ctx, interval, load)
}
