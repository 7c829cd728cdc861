package fallback

import (
	"errors"
	"testing"
	"time"

	"cinecity-client/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func titles(films []model.Film) []string {
	out := make([]string, len(films))
	for i, f := range films {
		out[i] = f.Title
	}
	return out
}

func TestResolveOnError(t *testing.T) {
	boom := errors.New("connection refused")
	res := Resolve(DatasetFilms, nil, boom, Films, Policy{OnError: true})

	assert.True(t, res.UsingFallback)
	assert.Equal(t, ReasonRequestFailed, res.Reason)
	assert.Contains(t, titles(res.Items), "The Shawshank Redemption")
	assert.ErrorIs(t, res.Err, boom)
}

func TestResolveErrorWithoutFallback(t *testing.T) {
	res := Resolve(DatasetFilms, nil, errors.New("boom"), Films, Policy{})
	assert.False(t, res.UsingFallback)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
	assert.Error(t, res.Err)
}

func TestEmptyListOnlyReplacedWhenGuaranteed(t *testing.T) {
	plain := Resolve(DatasetFilms, []model.Film{}, nil, Films, Policy{OnError: true})
	assert.False(t, plain.UsingFallback)
	assert.Empty(t, plain.Items)

	demo := Resolve(DatasetFilms, []model.Film{}, nil, Films, Policy{OnError: true, GuaranteeDemo: true})
	assert.True(t, demo.UsingFallback)
	assert.Equal(t, ReasonEmptyResult, demo.Reason)
	assert.Len(t, demo.Items, 3)
}

func TestLiveItemsWin(t *testing.T) {
	live := []model.Film{{FilmID: 42, Title: "Heat"}}
	res := Resolve(DatasetFilms, live, nil, Films, Policy{OnError: true, GuaranteeDemo: true})
	assert.False(t, res.UsingFallback)
	assert.Equal(t, live, res.Items)
}

func TestDatasetsAreCopies(t *testing.T) {
	first := Films()
	first[0].Title = "mutated"
	assert.Equal(t, "Inception", Films()[0].Title)

	regions := Regions()
	require.Len(t, regions, 2)
	assert.Equal(t, "US", regions[0].CountryCode)
	assert.Equal(t, "The Shawshank Redemption", regions[0].TopMovies[0].Title)
	assert.Len(t, Places(), 3)
	assert.Len(t, Correlations(), 2)
}

func TestObserver(t *testing.T) {
	var got []string
	SetObserver(func(dataset, reason string) { got = append(got, dataset+":"+reason) })
	defer SetObserver(nil)

	Resolve(DatasetPlaces, nil, errors.New("x"), Places, Policy{OnError: true})
	Resolve(DatasetPlaces, nil, nil, Places, Policy{GuaranteeDemo: true})
	assert.Equal(t, []string{"places:request_failed", "places:empty_result"}, got)
}

func TestETLStatusDemo(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	st := ETLStatus(now)
	assert.Equal(t, "demo", st.Status)
	require.Len(t, st.LastJobs, 1)
	assert.Equal(t, "demo-001", st.LastJobs[0].JobID)
	assert.True(t, st.LastJobs[0].Finished())
	assert.Equal(t, "2024-05-01T11:00:00Z", st.LastJobs[0].StartedAt)
}
