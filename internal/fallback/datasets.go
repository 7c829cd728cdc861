package fallback

import (
	"time"

	"cinecity-client/internal/model"
)

// Dataset names
const (
	DatasetFilms        = "films"
	DatasetPlaces       = "places"
	DatasetCorrelations = "correlations"
	DatasetRegions      = "regions"
	DatasetETLStatus    = "etl_status"
)

// Films returns the sample film list
func Films() []model.Film {
	return []model.Film{
		{
			FilmID:              1,
			Title:               "Inception",
			ReleaseDate:         "2010-07-16",
			Genres:              []string{"Action", "Sci-Fi", "Thriller"},
			ProductionCountries: []string{"USA", "UK"},
			Popularity:          100.5,
			VoteAverage:         8.8,
			Locations: []model.FilmLocation{
				{CityName: "Los Angeles", Country: "USA", Confidence: 0.9},
				{CityName: "London", Country: "UK", Confidence: 0.8},
			},
			LocationsCount: 2,
		},
		{
			FilmID:              2,
			Title:               "The Shawshank Redemption",
			ReleaseDate:         "1994-09-23",
			Genres:              []string{"Drama"},
			ProductionCountries: []string{"USA"},
			Popularity:          85.2,
			VoteAverage:         9.3,
			Locations: []model.FilmLocation{
				{CityName: "Mansfield", Country: "USA", Confidence: 0.95},
			},
			LocationsCount: 1,
		},
		{
			FilmID:              3,
			Title:               "The Dark Knight",
			ReleaseDate:         "2008-07-18",
			Genres:              []string{"Action", "Crime", "Drama"},
			ProductionCountries: []string{"USA", "UK"},
			Popularity:          120.7,
			VoteAverage:         9.0,
			Locations: []model.FilmLocation{
				{CityName: "Chicago", Country: "USA", Confidence: 0.85},
				{CityName: "London", Country: "UK", Confidence: 0.75},
			},
			LocationsCount: 2,
		},
	}
}

// Places returns the sample city list
func Places() []model.City {
	return []model.City{
		{
			CityID:      1,
			Name:        "Los Angeles",
			Country:     "USA",
			CountryCode: "US",
			Population:  3980000,
			Latitude:    34.0522,
			Longitude:   -118.2437,
			FilmCount:   25,
			SampleFilms: []string{"Inception", "La La Land", "Once Upon a Time in Hollywood"},
		},
		{
			CityID:      2,
			Name:        "London",
			Country:     "United Kingdom",
			CountryCode: "GB",
			Population:  8982000,
			Latitude:    51.5074,
			Longitude:   -0.1278,
			FilmCount:   18,
			SampleFilms: []string{"Harry Potter", "James Bond", "Sherlock Holmes"},
		},
		{
			CityID:      3,
			Name:        "Paris",
			Country:     "France",
			CountryCode: "FR",
			Population:  2148000,
			Latitude:    48.8566,
			Longitude:   2.3522,
			FilmCount:   12,
			SampleFilms: []string{"Amélie", "The Da Vinci Code", "Midnight in Paris"},
		},
	}
}

// Correlations returns the sample film/location matches
func Correlations() []model.Correlation {
	return []model.Correlation{
		{
			FilmID:     1,
			FilmTitle:  "Inception",
			FilmGenres: []string{"Action", "Sci-Fi"},
			SuggestedLocations: []model.SuggestedLocation{
				{
					Place:        model.CorrelationPlace{Name: "Los Angeles", City: "Los Angeles", CountryCode: "US", Categories: []string{"entertainment", "cinema"}},
					MatchScore:   0.85,
					MatchReasons: []string{"Sci-Fi theme matches tech hubs"},
				},
				{
					Place:        model.CorrelationPlace{Name: "Tokyo", City: "Tokyo", CountryCode: "JP", Categories: []string{"tech", "futuristic"}},
					MatchScore:   0.78,
					MatchReasons: []string{"Futuristic architecture matches film concept"},
				},
			},
		},
		{
			FilmID:     3,
			FilmTitle:  "The Dark Knight",
			FilmGenres: []string{"Action", "Crime", "Drama"},
			SuggestedLocations: []model.SuggestedLocation{
				{
					Place:        model.CorrelationPlace{Name: "Chicago", City: "Chicago", CountryCode: "US", Categories: []string{"urban", "architecture"}},
					MatchScore:   0.92,
					MatchReasons: []string{"Gothic architecture matches film mood", "Urban setting"},
				},
			},
		},
	}
}

// Regions returns the sample popularity map markers
func Regions() []model.Region {
	return []model.Region{
		{
			CountryCode:         "US",
			CountryName:         "United States",
			CapitalCity:         "Washington, D.C.",
			Latitude:            38.89511,
			Longitude:           -77.03637,
			TotalMoviesAnalyzed: 10,
			TopMovies: []model.Film{
				{FilmID: 1, Title: "The Shawshank Redemption", VoteAverage: 8.7, PosterURL: "https://image.tmdb.org/t/p/w500/q6y0Go1tsGEsmtFryDOJo3dEmqu.jpg", Overview: "Two imprisoned men bond over a number of years..."},
				{FilmID: 2, Title: "The Godfather", VoteAverage: 8.7, PosterURL: "https://image.tmdb.org/t/p/w500/3bhkrj58Vtu7enYsRolD1fZdja1.jpg", Overview: "The aging patriarch of an organized crime dynasty..."},
				{FilmID: 3, Title: "The Dark Knight", VoteAverage: 8.5, PosterURL: "https://image.tmdb.org/t/p/w500/qJ2tW6WMUDux911r6m7haRef0WH.jpg", Overview: "When the Joker wreaks havoc on Gotham City..."},
			},
			TopGenres: []model.GenreShare{
				{Name: "Drama", Count: 5, Percentage: 45},
				{Name: "Crime", Count: 3, Percentage: 30},
				{Name: "Action", Count: 2, Percentage: 25},
			},
		},
		{
			CountryCode:         "GB",
			CountryName:         "United Kingdom",
			CapitalCity:         "London",
			Latitude:            51.5074,
			Longitude:           -0.1278,
			TotalMoviesAnalyzed: 8,
			TopMovies: []model.Film{
				{FilmID: 4, Title: "Harry Potter and the Philosopher's Stone", VoteAverage: 8.1, PosterURL: "https://image.tmdb.org/t/p/w500/wuMc08IPKEatf9rnMNXvIDxqP4W.jpg", Overview: "A young boy discovers he is a wizard..."},
				{FilmID: 5, Title: "Skyfall", VoteAverage: 7.8, PosterURL: "https://image.tmdb.org/t/p/w500/9tJx2fG9eR79kK6OXE2xELrE0Es.jpg", Overview: "James Bond's loyalty to M is tested..."},
				{FilmID: 6, Title: "The King's Speech", VoteAverage: 8.0, PosterURL: "https://image.tmdb.org/t/p/w500/uK7VkHKB4LT3qnlvqaXww6RAxkt.jpg", Overview: "The story of King George VI of the United Kingdom..."},
			},
			TopGenres: []model.GenreShare{
				{Name: "Fantasy", Count: 4, Percentage: 40},
				{Name: "Adventure", Count: 3, Percentage: 35},
				{Name: "Drama", Count: 2, Percentage: 25},
			},
		},
	}
}

// ETLStatus returns the demo status shown when the backend has no ETL routes
func ETLStatus(now time.Time) model.ETLStatus {
	return model.ETLStatus{
		Status:    "demo",
		Timestamp: now.UTC().Format(time.RFC3339),
		CollectionStats: model.CollectionStats{
			Films:                 125,
			Places:                89,
			Cities:                42,
			ETLJobs:               15,
			FilmPlaceCorrelations: 67,
		},
		LastJobs: []model.Job{
			{
				JobID:       "demo-001",
				JobType:     "tmdb",
				Status:      model.JobCompleted,
				StartedAt:   now.Add(-time.Hour).UTC().Format(time.RFC3339),
				CompletedAt: now.UTC().Format(time.RFC3339),
				Results:     &model.JobResults{Processed: 20, ErrorCount: 0},
			},
		},
	}
}
