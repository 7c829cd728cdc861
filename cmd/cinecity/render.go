package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"cinecity-client/internal/model"
	"cinecity-client/internal/view"

	"github.com/goccy/go-json"
)

const sampleNotice = "(showing sample data, the backend is unavailable or returned nothing)"

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

func table(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

func banner(w io.Writer, b *view.Banner) {
	if b != nil {
		fmt.Fprintf(w, "! %s\n", b.Message)
	}
}

func renderProfile(w io.Writer, p *view.Profile) {
	tw := table(w)
	fmt.Fprintf(tw, "Username\t%s\n", p.Username)
	fmt.Fprintf(tw, "Email\t%s\n", p.Email)
	fmt.Fprintf(tw, "Full name\t%s\n", p.FullName)
	fmt.Fprintf(tw, "Role\t%s\n", p.Role)
	fmt.Fprintf(tw, "Active\t%t\n", p.Active)
	tw.Flush()
}

func renderExplorer(w io.Writer, page *view.Explorer) {
	s := page.Stats
	fmt.Fprintf(w, "Films %d  Places %d  Cities %d  ETL jobs %d  Correlations %d\n\n",
		s.Films, s.Places, s.Cities, s.ETLJobs, s.FilmPlaceCorrelations)
	banner(w, page.Error)
	if page.UsingSampleData {
		fmt.Fprintln(w, sampleNotice)
	}

	switch page.Tab {
	case view.TabPlaces:
		renderCities(w, "Places", page.Places)
	case view.TabCorrelations:
		tw := table(w)
		fmt.Fprintln(tw, "FILM\tGENRES\tSUGGESTED LOCATIONS")
		for _, c := range page.Correlations {
			places := make([]string, 0, len(c.SuggestedLocations))
			for _, l := range c.SuggestedLocations {
				places = append(places, fmt.Sprintf("%s (%.0f%%)", l.Place.City, l.MatchScore*100))
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", c.FilmTitle, strings.Join(c.FilmGenres, ", "), strings.Join(places, "; "))
		}
		tw.Flush()
	default:
		renderFilms(w, "Movies", page.Movies)
	}
}

func renderFilms(w io.Writer, title string, films []model.Film) {
	fmt.Fprintf(w, "%s (%d)\n", title, len(films))
	tw := table(w)
	fmt.Fprintln(tw, "TITLE\tRELEASED\tVOTE\tGENRES")
	for _, f := range films {
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%s\n", f.Title, f.ReleaseDate, f.VoteAverage, strings.Join(f.Genres, ", "))
	}
	tw.Flush()
}

func renderCities(w io.Writer, title string, cities []model.City) {
	fmt.Fprintf(w, "%s (%d)\n", title, len(cities))
	tw := table(w)
	fmt.Fprintln(tw, "CITY\tCOUNTRY\tPOPULATION\tFILMS")
	for _, c := range cities {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\n", c.Name, c.Country, c.Population, c.FilmCount)
	}
	tw.Flush()
}

func renderETL(w io.Writer, d *view.ETLDashboard) {
	fmt.Fprintf(w, "ETL status at %s\n", d.LoadedAt.Format("15:04:05"))
	if d.Warning != "" {
		fmt.Fprintf(w, "! %s\n", d.Warning)
	}
	banner(w, d.Error)
	if d.Status == nil {
		return
	}

	s := d.Status.CollectionStats
	fmt.Fprintf(w, "Status %s  Films %d  Places %d  Cities %d  Jobs %d  Correlations %d\n",
		d.Status.Status, s.Films, s.Places, s.Cities, s.ETLJobs, s.FilmPlaceCorrelations)
	renderJobs(w, d.Status.LastJobs)

	if d.Correlations != nil && d.Correlations.TotalCorrelations > 0 {
		fmt.Fprintf(w, "Correlations: %d\n", d.Correlations.TotalCorrelations)
		for _, c := range d.Correlations.SampleCorrelations {
			fmt.Fprintf(w, "  %s -> %s, %s (%.2f)\n", c.FilmTitle, c.PlaceCity, c.PlaceCountry, c.MatchScore)
		}
	}
}

func renderJobs(w io.Writer, jobs []model.Job) {
	tw := table(w)
	fmt.Fprintln(tw, "JOB\tTYPE\tSTATUS\tSTARTED\tPROCESSED")
	for _, j := range jobs {
		processed := "-"
		if j.Results != nil {
			processed = fmt.Sprint(j.Results.Processed)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", j.JobID, j.JobType, j.Status, j.StartedAt, processed)
	}
	tw.Flush()
}

func renderMap(w io.Writer, m *view.RegionalMap) {
	banner(w, m.Error)
	tw := table(w)
	fmt.Fprintln(tw, "\tCODE\tCOUNTRY\tCAPITAL\tTOP FILM")
	for _, r := range m.Regions {
		mark := ""
		if m.Selected != nil && m.Selected.CountryCode == r.CountryCode {
			mark = "*"
		}
		top := ""
		if len(r.TopMovies) > 0 {
			top = r.TopMovies[0].Title
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", mark, r.CountryCode, r.CountryName, r.CapitalCity, top)
	}
	tw.Flush()

	if m.Selected != nil {
		fmt.Fprintln(w)
		renderSeries(w, view.GenreShareChart(*m.Selected), "%")
	}
}

func renderChart(w io.Writer, c *view.CountryChart) {
	banner(w, c.Error)
	fmt.Fprintf(w, "%d films across %d countries\n", c.TotalFilms, c.CountriesAnalyzed)
	renderSeries(w, c.Series, "")
}

func renderSeries(w io.Writer, s model.ChartSeries, unit string) {
	fmt.Fprintln(w, s.Label)
	tw := table(w)
	for i, label := range s.Labels {
		fmt.Fprintf(tw, "  %s\t%g%s\n", label, s.Values[i], unit)
	}
	tw.Flush()
}

func renderDashboard(w io.Writer, d *view.Dashboard) {
	fmt.Fprintln(w, "== Platform ==")
	if st := d.Stats.Data; st != nil {
		fmt.Fprintf(w, "Films %d  Cities %d  Film locations %d  ETL jobs %d\n",
			st.Counts.Films, st.Counts.Cities, st.Counts.FilmLocations, st.Counts.ETLJobs)
	}
	banner(w, d.Stats.Error)

	fmt.Fprintln(w, "\n== Films by country ==")
	banner(w, d.Countries.Error)
	renderSeries(w, d.Countries.Data, "")

	fmt.Fprintln(w, "\n== Latest jobs ==")
	banner(w, d.Jobs.Error)
	renderJobs(w, d.Jobs.Data)

	fmt.Fprintln(w)
	banner(w, d.Popular.Error)
	renderFilms(w, "== Popular ==", d.Popular.Data)

	fmt.Fprintln(w)
	banner(w, d.Featured.Error)
	renderCities(w, "== Featured cities ==", d.Featured.Data)
}
