package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"cinecity-client/internal/model"
	"cinecity-client/internal/normalize"
	"cinecity-client/internal/service"
	"cinecity-client/internal/session"
	"cinecity-client/internal/view"

	"github.com/rs/zerolog/log"
)

const usage = `usage: cinecity <command> [flags]

commands:
  login [-u user] [-p password]
  register -u user -e email [-name full name] [-p password]
  logout
  me
  explorer [-tab movies|places|correlations] [-q term] [-country CC] [-genre G] [-year Y]
  etl status [-watch]
  etl run-full [-no-wait]
  etl run tmdb|places|enrichment [-no-wait]
  etl test
  etl ping
  map [-region CC] [-test]
  charts
  dashboard
  films trending [-days N] [-limit N]
  films region CC [-limit N]
  cities near [-radius KM] [-limit N]

every view command accepts -json`

var errUsage = errors.New(usage)

type cli struct {
	api    *service.API
	sess   *session.Manager
	policy normalize.Policy
	poll   time.Duration
	in     *bufio.Reader
	out    io.Writer
}

func (a *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func (a *cli) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "login":
		return a.login(ctx, rest)
	case "register":
		return a.register(ctx, rest)
	case "logout":
		a.api.Auth.Logout(ctx)
		fmt.Fprintln(a.out, "Logged out")
		return nil
	case "help", "-h", "--help":
		fmt.Fprintln(a.out, usage)
		return nil
	}

	a.restore(ctx)

	switch cmd {
	case "me":
		return a.me(ctx, rest)
	case "explorer":
		return a.explorer(ctx, rest)
	case "etl":
		return a.etl(ctx, rest)
	case "map":
		return a.regionalMap(ctx, rest)
	case "charts":
		return a.charts(ctx, rest)
	case "dashboard":
		return a.dashboard(ctx, rest)
	case "films":
		return a.films(ctx, rest)
	case "cities":
		return a.cities(ctx, rest)
	}
	return fmt.Errorf("unknown command %q\n%w", cmd, errUsage)
}

// restore validates the stored token once per invocation
func (a *cli) restore(ctx context.Context) {
	if a.sess.State() != session.StateAuthenticating {
		return
	}
	if err := a.api.Auth.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("Stored session is no longer valid")
	}
}

// prompt reads one line; EOF gives an empty answer
func (a *cli) prompt(label string) string {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return ""
	}
	return strings.TrimSpace(line)
}

// confirmer asks on stdin; anything but y/yes declines
func (a *cli) confirmer() view.Confirmer {
	return view.ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
		switch strings.ToLower(a.prompt(prompt + " [y/N] ")) {
		case "y", "yes":
			return true, nil
		}
		return false, nil
	})
}

func (a *cli) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	user := fs.String("u", "", "username")
	pass := fs.String("p", "", "password, prompted when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *user == "" {
		*user = a.prompt("Username: ")
	}
	if *pass == "" {
		*pass = a.prompt("Password: ")
	}

	cred, err := a.api.Auth.Login(ctx, *user, *pass)
	if err != nil {
		log.Debug().Err(err).Msg("Login failed")
		return fmt.Errorf("login failed: %s", a.sess.LastError())
	}

	name := *user
	if cred.User != nil {
		name = cred.User.Username
	}
	fmt.Fprintf(a.out, "Logged in as %s\n", name)
	return nil
}

func (a *cli) register(ctx context.Context, args []string) error {
	fs := a.flags("register")
	var req model.RegisterRequest
	fs.StringVar(&req.Username, "u", "", "username")
	fs.StringVar(&req.Email, "e", "", "email")
	fs.StringVar(&req.FullName, "name", "", "full name")
	fs.StringVar(&req.Password, "p", "", "password, prompted when empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if req.Password == "" {
		req.Password = a.prompt("Password: ")
	}

	user, err := a.api.Auth.Register(ctx, req)
	if err != nil {
		return errors.New(view.Classify(err).Message)
	}
	fmt.Fprintf(a.out, "Registered %s. Log in with: cinecity login -u %s\n", user.Username, user.Username)
	return nil
}

func (a *cli) me(ctx context.Context, args []string) error {
	fs := a.flags("me")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p := view.LoadProfile(ctx, a.api)
	if p.Error != nil {
		return errors.New(p.Error.Message)
	}
	if *asJSON {
		return printJSON(a.out, p)
	}
	renderProfile(a.out, p)
	return nil
}

func (a *cli) explorer(ctx context.Context, args []string) error {
	fs := a.flags("explorer")
	tab := fs.String("tab", string(view.TabMovies), "movies, places or correlations")
	q := view.ExplorerQuery{}
	fs.StringVar(&q.Search, "q", "", "search term")
	fs.StringVar(&q.Filters.Country, "country", "", "country code")
	fs.StringVar(&q.Filters.Genre, "genre", "", "genre")
	fs.StringVar(&q.Filters.Year, "year", "", "release year")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	q.Tab = view.ParseTab(*tab)

	page := view.LoadExplorer(ctx, a.api, q, a.policy)
	if *asJSON {
		return printJSON(a.out, page)
	}
	renderExplorer(a.out, page)
	return nil
}

func (a *cli) etl(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "status":
		fs := a.flags("etl status")
		watch := fs.Bool("watch", false, "refresh every poll interval until interrupted")
		asJSON := fs.Bool("json", false, "print JSON")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		render := func(p *view.ETLDashboard) {
			if *asJSON {
				_ = printJSON(a.out, p)
				return
			}
			renderETL(a.out, p)
		}
		if !*watch {
			render(view.LoadETLDashboard(ctx, a.api, nil))
			return nil
		}
		err := view.WatchETL(ctx, a.api, a.poll, render)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err

	case "run-full":
		fs := a.flags("etl run-full")
		noWait := fs.Bool("no-wait", false, "do not wait and reload the status")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		outcome, err := view.RunFull(ctx, a.api, a.confirmer())
		if errors.Is(err, view.ErrDeclined) {
			fmt.Fprintln(a.out, "Cancelled.")
			return nil
		}
		if err != nil {
			return errors.New(view.Classify(err).Message)
		}
		return a.afterRun(ctx, outcome, *noWait)

	case "run":
		if len(rest) == 0 {
			return errUsage
		}
		kind := rest[0]
		fs := a.flags("etl run")
		noWait := fs.Bool("no-wait", false, "do not wait and reload the status")
		if err := fs.Parse(rest[1:]); err != nil {
			return err
		}
		outcome, err := view.RunSource(ctx, a.api, kind)
		if errors.Is(err, view.ErrUnknownRun) {
			return fmt.Errorf("unknown run %q: want tmdb, places or enrichment", kind)
		}
		if err != nil {
			return errors.New(view.Classify(err).Message)
		}
		return a.afterRun(ctx, outcome, *noWait)

	case "test":
		res, err := a.api.ETL.TestAPIConnections(ctx)
		if err != nil {
			return errors.New(view.Classify(err).Message)
		}
		return printJSON(a.out, res)

	case "ping":
		res, err := a.api.ETL.Test(ctx)
		if err != nil {
			return errors.New(view.Classify(err).Message)
		}
		return printJSON(a.out, res)
	}
	return fmt.Errorf("unknown etl command %q\n%w", sub, errUsage)
}

// afterRun prints the run acknowledgement, counts down and reloads the status
func (a *cli) afterRun(ctx context.Context, outcome *view.RunOutcome, noWait bool) error {
	fmt.Fprintf(a.out, "ETL %s started: %s\n", outcome.Kind, outcome.TaskID)
	if outcome.Message != "" {
		fmt.Fprintln(a.out, outcome.Message)
	}
	if noWait {
		return nil
	}

	err := view.Countdown(ctx, outcome.RefreshIn, func(remaining int) {
		fmt.Fprintf(a.out, "\rRefreshing in %2ds", remaining)
	})
	fmt.Fprintln(a.out)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
	renderETL(a.out, view.LoadETLDashboard(ctx, a.api, nil))
	return nil
}

func (a *cli) regionalMap(ctx context.Context, args []string) error {
	fs := a.flags("map")
	region := fs.String("region", "", "country code to select")
	check := fs.Bool("test", false, "check the map endpoint with its minimal payload")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *check {
		return a.mapTest(ctx, *asJSON)
	}

	page := view.LoadRegionalMap(ctx, a.api, a.policy)
	if *region != "" && !page.Select(strings.ToUpper(*region)) {
		fmt.Fprintf(a.out, "Region %s not on the map\n", *region)
	}
	if *asJSON {
		return printJSON(a.out, page)
	}
	renderMap(a.out, page)
	return nil
}

func (a *cli) mapTest(ctx context.Context, asJSON bool) error {
	res, err := a.api.Map.TestMinimal(ctx)
	if err != nil {
		return errors.New(view.Classify(err).Message)
	}
	if asJSON {
		return printJSON(a.out, res)
	}
	fmt.Fprintf(a.out, "Map endpoint OK: %d regions\n", len(res.Regions))
	return nil
}

func (a *cli) charts(ctx context.Context, args []string) error {
	fs := a.flags("charts")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	chart := view.LoadCountryChart(ctx, a.api, a.policy)
	if *asJSON {
		return printJSON(a.out, chart)
	}
	renderChart(a.out, chart)
	return nil
}

func (a *cli) dashboard(ctx context.Context, args []string) error {
	fs := a.flags("dashboard")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	d := view.LoadDashboard(ctx, a.api, a.policy)
	if *asJSON {
		return printJSON(a.out, d)
	}
	renderDashboard(a.out, d)
	return nil
}

func (a *cli) films(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	switch args[0] {
	case "trending":
		fs := a.flags("films trending")
		days := fs.Int("days", 7, "trending window in days")
		limit := fs.Int("limit", 20, "number of films")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		list := a.api.Films.Trending(ctx, *days, *limit)
		films, err := normalizeFilms(list, a.policy)
		if err != nil {
			return errors.New(view.Classify(err).Message)
		}
		renderFilms(a.out, fmt.Sprintf("Trending films, last %d days", *days), films)
		return nil

	case "region":
		if len(args) < 2 {
			return errUsage
		}
		code := strings.ToUpper(args[1])
		fs := a.flags("films region")
		limit := fs.Int("limit", 3, "number of films")
		if err := fs.Parse(args[2:]); err != nil {
			return err
		}
		list, err := a.api.Films.PopularByRegion(ctx, code, *limit)
		if err != nil {
			return errors.New(view.Classify(err).Message)
		}
		films, err := normalizeFilms(list, a.policy)
		if err != nil {
			return errors.New(view.Classify(err).Message)
		}
		renderFilms(a.out, "Popular in "+code, films)
		return nil
	}
	return fmt.Errorf("unknown films command %q\n%w", args[0], errUsage)
}

func (a *cli) cities(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] != "near" {
		return errUsage
	}
	fs := a.flags("cities near")
	radius := fs.Int("radius", 100, "radius in km")
	limit := fs.Int("limit", 20, "number of cities")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	list := a.api.Analytics.CitiesNearFilms(ctx, *radius, *limit)
	cities := list.Cities
	if len(list.Raw) > 0 {
		decoded, err := normalize.Decode[model.City](list.Raw, a.policy, "cities", "nearby_cities")
		if err != nil {
			return errors.New(view.Classify(err).Message)
		}
		cities = decoded
	}
	renderCities(a.out, fmt.Sprintf("Cities within %d km of film locations", *radius), cities)
	return nil
}

func normalizeFilms(list *model.FilmList, policy normalize.Policy) ([]model.Film, error) {
	if len(list.Raw) == 0 {
		return list.Films, nil
	}
	return normalize.Decode[model.Film](list.Raw, policy, "films", "movies")
}
