// Package fallback holds the fixed sample datasets shown when live data is
// unusable, and the caller-driven policy that decides when to show them.
package fallback

import "github.com/rs/zerolog/log"

// Reasons reported with a substituted result
const (
	ReasonRequestFailed = "request_failed"
	ReasonEmptyResult   = "empty_result"
)

// Policy is supplied by each caller; there is no global default
type Policy struct {
	// OnError substitutes the dataset when the request failed
	OnError bool
	// GuaranteeDemo also substitutes it for an empty successful list
	GuaranteeDemo bool
}

// Result is the list a view should render
type Result[T any] struct {
	Items         []T    `json:"items"`
	UsingFallback bool   `json:"using_fallback"`
	Reason        string `json:"reason,omitempty"`
	Err           error  `json:"-"`
}

// Resolve picks between live items and the fallback dataset
func Resolve[T any](name string, items []T, err error, dataset func() []T, policy Policy) Result[T] {
	switch {
	case err != nil && policy.OnError:
		log.Info().Err(err).Str("dataset", name).Msg("Using sample data after request failure")
		observe(name, ReasonRequestFailed)
		return Result[T]{Items: dataset(), UsingFallback: true, Reason: ReasonRequestFailed, Err: err}
	case err != nil:
		return Result[T]{Items: []T{}, Err: err}
	case len(items) == 0 && policy.GuaranteeDemo:
		log.Debug().Str("dataset", name).Msg("Using sample data for empty result")
		observe(name, ReasonEmptyResult)
		return Result[T]{Items: dataset(), UsingFallback: true, Reason: ReasonEmptyResult}
	}
	if items == nil {
		items = []T{}
	}
	return Result[T]{Items: items}
}

// Observer is notified of every substitution (metrics hook)
type Observer func(dataset, reason string)

var observer Observer

// SetObserver installs the substitution hook. Call it once at start-up.
func SetObserver(o Observer) {
	observer = o
}

func observe(dataset, reason string) {
	if observer != nil {
		observer(dataset, reason)
	}
}
