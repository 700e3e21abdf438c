// Package media defines shared types for the marquee application.
package media

import "strings"

// MediaType is the OMDb result type of a title.
type MediaType int

const (
	TypeMovie MediaType = iota
	Series
	Episode
	Game
	Unknown
)

func (m MediaType) String() string {
	switch m {
	case TypeMovie:
		return "movie"
	case Series:
		return "series"
	case Episode:
		return "episode"
	case Game:
		return "game"
	default:
		return "unknown"
	}
}

// MarshalText encodes the type by name so JSON output stays readable.
func (m MediaType) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText decodes a type name.
func (m *MediaType) UnmarshalText(b []byte) error {
	*m = ParseMediaType(string(b))
	return nil
}

// ParseMediaType maps an OMDb "Type" value to a MediaType.
func ParseMediaType(s string) MediaType {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "movie":
		return TypeMovie
	case "series":
		return Series
	case "episode":
		return Episode
	case "game":
		return Game
	default:
		return Unknown
	}
}

// NotAvailable is the value OMDb uses for missing fields.
const NotAvailable = "N/A"

// PlaceholderPoster is shown in place of a missing poster.
const PlaceholderPoster = "[no poster]"

// Movie is a single search result. Identity is IMDbID alone.
type Movie struct {
	IMDbID string    `json:"imdbID"`
	Title  string    `json:"title"`
	Year   string    `json:"year"`
	Poster string    `json:"poster"`
	Type   MediaType `json:"type"`
}

// HasPoster reports whether the movie carries a usable poster URL.
func (m Movie) HasPoster() bool {
	return m.Poster != "" && m.Poster != NotAvailable
}

// PosterOrPlaceholder returns the poster URL, or PlaceholderPoster when OMDb has none.
func (m Movie) PosterOrPlaceholder() string {
	if !m.HasPoster() {
		return PlaceholderPoster
	}
	return m.Poster
}

// SearchPage is one page of search results as returned by a provider.
// Movies may be nil when the response carried no results.
type SearchPage struct {
	Movies []Movie
	Total  int // total results OMDb reports for the term
}

// Rating is a single third-party rating on a detail record.
type Rating struct {
	Source string `json:"source"`
	Value  string `json:"value"`
}

// Detail is the full metadata for one title.
type Detail struct {
	IMDbID     string    `json:"imdbID"`
	Title      string    `json:"title"`
	Year       string    `json:"year"`
	Rated      string    `json:"rated"`
	Released   string    `json:"released"`
	Runtime    string    `json:"runtime"`
	Genre      string    `json:"genre"`
	Director   string    `json:"director"`
	Writer     string    `json:"writer"`
	Actors     string    `json:"actors"`
	Plot       string    `json:"plot"`
	Language   string    `json:"language"`
	Country    string    `json:"country"`
	Awards     string    `json:"awards"`
	Poster     string    `json:"poster"`
	Ratings    []Rating  `json:"ratings"`
	IMDbRating string    `json:"imdbRating"`
	IMDbVotes  string    `json:"imdbVotes"`
	BoxOffice  string    `json:"boxOffice"`
	Type       MediaType `json:"type"`
}

// Movie returns the search-result view of a detail record.
func (d Detail) Movie() Movie {
	return Movie{
		IMDbID: d.IMDbID,
		Title:  d.Title,
		Year:   d.Year,
		Poster: d.Poster,
		Type:   d.Type,
	}
}

// Field is a labeled detail line.
type Field struct {
	Label string
	Value string
}

// Fields returns the labeled metadata lines shown under a detail record.
func (d Detail) Fields() []Field {
	return []Field{
		{"Director", d.Director},
		{"Writer", d.Writer},
		{"Actors", d.Actors},
		{"Language", d.Language},
		{"Country", d.Country},
		{"Awards", d.Awards},
		{"Box Office", d.BoxOffice},
		{"IMDb Rating", d.IMDbRating},
		{"Votes", d.IMDbVotes},
	}
}
