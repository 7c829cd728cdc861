package model

import "github.com/goccy/go-json"

// ================== 通用响应 ==================

// APIResponse is the envelope the gateway answers with
type APIResponse struct {
	Code     int         `json:"code"`
	Data     interface{} `json:"data,omitempty"`
	Message  string      `json:"message,omitempty"`
	Source   string      `json:"source,omitempty"`
	Error    string      `json:"error,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
}

// Response sources
const (
	SourceFresh    = "fresh"
	SourceCache    = "redis-cache"
	SourceFallback = "fallback"
)

// ================== 认证 ==================

// User is the profile returned by /auth/me and /auth/register
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role"`
	IsActive *bool  `json:"is_active,omitempty"`
}

// Credential is the client-held session
type Credential struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	User         *User  `json:"user,omitempty"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"full_name,omitempty" validate:"max=100"`
	Password string `json:"password" validate:"required,min=8"`
}

// ================== 电影 ==================

// FilmLocation is a city a film is associated with
type FilmLocation struct {
	CityName   string  `json:"city_name"`
	Country    string  `json:"country"`
	Confidence float64 `json:"confidence,omitempty"`
}

// Film is a movie record sourced from TMDB through the backend
type Film struct {
	FilmID              int            `json:"film_id"`
	Title               string         `json:"title"`
	OriginalTitle       string         `json:"original_title,omitempty"`
	Overview            string         `json:"overview,omitempty"`
	ReleaseDate         string         `json:"release_date,omitempty"`
	Popularity          float64        `json:"popularity,omitempty"`
	VoteAverage         float64        `json:"vote_average,omitempty"`
	VoteCount           int            `json:"vote_count,omitempty"`
	PosterURL           string         `json:"poster_url,omitempty"`
	BackdropURL         string         `json:"backdrop_url,omitempty"`
	Genres              []string       `json:"genres,omitempty"`
	ProductionCountries []string       `json:"production_countries,omitempty"`
	Locations           []FilmLocation `json:"locations,omitempty"`
	LocationsCount      int            `json:"locations_count,omitempty"`
	TrendingScore       float64        `json:"trending_score,omitempty"`
}

// FilmFilters narrows /api/v1/films/locations
type FilmFilters struct {
	Country string `json:"country,omitempty"`
	Genre   string `json:"genre,omitempty"`
	Year    string `json:"year,omitempty"`
}

// FilmList is the envelope of the film list endpoints
type FilmList struct {
	Source     string          `json:"source,omitempty"`
	Count      int             `json:"count,omitempty"`
	Total      int             `json:"total"`
	PeriodDays int             `json:"period_days,omitempty"`
	Films      []Film          `json:"films"`
	Filters    *FilmFilters    `json:"filters,omitempty"`
	Raw        json.RawMessage `json:"-"`
}

// ================== 城市 ==================

// City is a place used for film production
type City struct {
	CityID      int      `json:"city_id"`
	Name        string   `json:"name"`
	Country     string   `json:"country"`
	CountryCode string   `json:"country_code"`
	Population  int      `json:"population,omitempty"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	FilmCount   int      `json:"film_count,omitempty"`
	SampleFilms []string `json:"sample_films,omitempty"`
	DistanceKm  float64  `json:"distance_km,omitempty"`
}

// CityList is the envelope of the city list endpoints
type CityList struct {
	Source            string          `json:"source,omitempty"`
	Total             int             `json:"total"`
	Count             int             `json:"count,omitempty"`
	MinPopulation     int             `json:"min_population,omitempty"`
	RadiusKm          int             `json:"radius_km,omitempty"`
	LocationsAnalyzed int             `json:"locations_analyzed,omitempty"`
	NearbyCities      int             `json:"nearby_cities_found,omitempty"`
	Cities            []City          `json:"cities"`
	Raw               json.RawMessage `json:"-"`
}

// ================== 地图 ==================

// GenreShare is one genre slice of a region
type GenreShare struct {
	Name       string  `json:"name"`
	Count      int     `json:"count,omitempty"`
	Percentage float64 `json:"percentage"`
}

// Region is a country marker on the popularity map
type Region struct {
	CountryCode         string       `json:"country_code"`
	CountryName         string       `json:"country_name"`
	CapitalCity         string       `json:"capital_city,omitempty"`
	Latitude            float64      `json:"latitude"`
	Longitude           float64      `json:"longitude"`
	TotalMoviesAnalyzed int          `json:"total_movies_analyzed,omitempty"`
	TopMovies           []Film       `json:"top_movies,omitempty"`
	TopGenres           []GenreShare `json:"top_genres,omitempty"`
}

// RegionalPopularity is the response of /api/v1/map/regional-popularity
type RegionalPopularity struct {
	Timestamp    string          `json:"timestamp,omitempty"`
	TotalRegions int             `json:"total_regions"`
	Regions      []Region        `json:"regions"`
	Status       string          `json:"status,omitempty"`
	Message      string          `json:"message,omitempty"`
	Raw          json.RawMessage `json:"-"`
}

// ================== ETL ==================

// Job states
const (
	JobPending   = "pending"
	JobRunning   = "running"
	JobCompleted = "completed"
	JobFailed    = "failed"
)

// JobResults summarises a finished job
type JobResults struct {
	Processed  int `json:"processed"`
	ErrorCount int `json:"errors"`
}

// Job is an ETL job record
type Job struct {
	JobID       string      `json:"job_id"`
	JobType     string      `json:"job_type"`
	Status      string      `json:"status"`
	StartedAt   string      `json:"started_at"`
	CompletedAt string      `json:"completed_at,omitempty"`
	Results     *JobResults `json:"results,omitempty"`
}

// Finished reports whether the job reached a terminal state
func (j Job) Finished() bool {
	return j.Status == JobCompleted || j.Status == JobFailed
}

// CollectionStats counts the backend collections
type CollectionStats struct {
	Films                 int `json:"films"`
	Places                int `json:"places"`
	Cities                int `json:"cities"`
	ETLJobs               int `json:"etl_jobs"`
	FilmPlaceCorrelations int `json:"film_place_correlations"`
	FilmPlaceConnections  int `json:"film_place_connections,omitempty"`
}

// ETLStatus is the response of /api/v1/etl/status
type ETLStatus struct {
	Status          string          `json:"status"`
	Timestamp       string          `json:"timestamp,omitempty"`
	Message         string          `json:"message,omitempty"`
	CollectionStats CollectionStats `json:"collection_stats"`
	LastJobs        []Job           `json:"last_jobs"`
}

// SampleCorrelation is one row of the correlation stats sample
type SampleCorrelation struct {
	FilmID       json.RawMessage `json:"film_id,omitempty"`
	FilmTitle    string          `json:"film_title"`
	PlaceCity    string          `json:"place_city"`
	PlaceCountry string          `json:"place_country"`
	MatchScore   float64         `json:"match_score"`
}

// CorrelationStats is the response of /api/v1/etl/correlation-stats
type CorrelationStats struct {
	Status             string              `json:"status"`
	Message            string              `json:"message,omitempty"`
	TotalCorrelations  int                 `json:"total_correlations"`
	SampleCorrelations []SampleCorrelation `json:"sample_correlations"`
}

// JobList is the response of /api/v1/etl/jobs/latest
type JobList struct {
	TotalJobs int             `json:"total_jobs"`
	Jobs      []Job           `json:"jobs"`
	Raw       json.RawMessage `json:"-"`
}

// TMDBRunRequest is the body of POST /api/v1/etl/run-tmdb-etl
type TMDBRunRequest struct {
	Pages         int `json:"pages"`
	MoviesPerPage int `json:"movies_per_page"`
}

// PlacesRunRequest is the body of POST /api/v1/etl/run-places-etl
type PlacesRunRequest struct {
	CountryCodes    []string `json:"country_codes"`
	LimitPerCountry int      `json:"limit_per_country"`
}

// RunResult is the acknowledgement of an ETL trigger
type RunResult struct {
	TaskID  string `json:"task_id,omitempty"`
	JobID   string `json:"job_id,omitempty"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// ID returns the task id, or the job id when the backend reports that instead
func (r RunResult) ID() string {
	if r.TaskID != "" {
		return r.TaskID
	}
	return r.JobID
}

// ================== 分析 ==================

// Counts are the platform totals
type Counts struct {
	Films         int `json:"films"`
	Cities        int `json:"cities"`
	FilmLocations int `json:"film_locations"`
	ETLJobs       int `json:"etl_jobs"`
}

// ETLTypeStats aggregates jobs of one type
type ETLTypeStats struct {
	JobType     string  `json:"_id"`
	Count       int     `json:"count"`
	LastRun     string  `json:"last_run,omitempty"`
	SuccessRate float64 `json:"success_rate"`
}

// AnalyticsStats is the response of /api/v1/analytics/stats
type AnalyticsStats struct {
	Timestamp string         `json:"timestamp"`
	Counts    Counts         `json:"counts"`
	ETLStats  []ETLTypeStats `json:"etl_stats"`
}

// CountryFilmCount is one row of films-by-country
type CountryFilmCount struct {
	Country       string  `json:"country"`
	FilmCount     int     `json:"film_count"`
	AvgPopularity float64 `json:"avg_popularity,omitempty"`
	AvgVote       float64 `json:"avg_vote,omitempty"`
	TotalVotes    int     `json:"total_votes,omitempty"`
}

// FilmsByCountry is the response of /api/v1/analytics/films-by-country
type FilmsByCountry struct {
	TotalFilms        int                `json:"total_films"`
	CountriesAnalyzed int                `json:"countries_analyzed"`
	Data              []CountryFilmCount `json:"data"`
	Raw               json.RawMessage    `json:"-"`
}

// CorrelationPlace is the place half of a suggested location
type CorrelationPlace struct {
	Name        string   `json:"name"`
	City        string   `json:"city"`
	CountryCode string   `json:"country_code"`
	Categories  []string `json:"categories,omitempty"`
}

// SuggestedLocation is a place matched to a film
type SuggestedLocation struct {
	Place        CorrelationPlace `json:"place"`
	MatchScore   float64          `json:"match_score"`
	MatchReasons []string         `json:"match_reasons,omitempty"`
}

// Correlation links a film to suggested shooting locations
type Correlation struct {
	FilmID             int                 `json:"film_id"`
	FilmTitle          string              `json:"film_title"`
	FilmGenres         []string            `json:"film_genres,omitempty"`
	SuggestedLocations []SuggestedLocation `json:"suggested_locations,omitempty"`
}

// CorrelationFilters narrows film-location-correlations
type CorrelationFilters struct {
	Genre       string
	CountryCode string
}

// ================== 图表 ==================

// ChartSeries is label/value data ready for a chart library
type ChartSeries struct {
	Label  string    `json:"label"`
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}
