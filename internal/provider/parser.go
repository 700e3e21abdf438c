package provider

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"marquee/internal/httputil"
	"marquee/internal/media"
)

// envelope carries the status fields present on every OMDb response.
type envelope struct {
	Response string `json:"Response"`
	Error    string `json:"Error"`
}

// failed returns the API error, if the response reports one.
func (e envelope) failed() error {
	if strings.EqualFold(e.Response, "False") {
		msg := e.Error
		if msg == "" {
			msg = "request rejected"
		}
		return fmt.Errorf("%w: %s", ErrAPI, msg)
	}
	return nil
}

// notFound reports the "no results" answer OMDb gives for an unknown term
// ("Movie not found!", "Series not found!", ...).
func (e envelope) notFound() bool {
	return strings.EqualFold(e.Response, "False") &&
		strings.HasSuffix(strings.ToLower(strings.TrimSpace(e.Error)), "not found!")
}

type searchItem struct {
	Title  string `json:"Title"`
	Year   string `json:"Year"`
	IMDbID string `json:"imdbID"`
	Type   string `json:"Type"`
	Poster string `json:"Poster"`
}

type searchResponse struct {
	envelope
	Search       []searchItem `json:"Search"`
	TotalResults string       `json:"totalResults"`
}

type detailResponse struct {
	envelope
	Title      string `json:"Title"`
	Year       string `json:"Year"`
	Rated      string `json:"Rated"`
	Released   string `json:"Released"`
	Runtime    string `json:"Runtime"`
	Genre      string `json:"Genre"`
	Director   string `json:"Director"`
	Writer     string `json:"Writer"`
	Actors     string `json:"Actors"`
	Plot       string `json:"Plot"`
	Language   string `json:"Language"`
	Country    string `json:"Country"`
	Awards     string `json:"Awards"`
	Poster     string `json:"Poster"`
	Ratings    []struct {
		Source string `json:"Source"`
		Value  string `json:"Value"`
	} `json:"Ratings"`
	IMDbRating string `json:"imdbRating"`
	IMDbVotes  string `json:"imdbVotes"`
	IMDbID     string `json:"imdbID"`
	Type       string `json:"Type"`
	BoxOffice  string `json:"BoxOffice"`
}

// parseSearch decodes a search response. A missing Search field or a
// "not found" answer is an empty page.
func parseSearch(body []byte) (*media.SearchPage, error) {
	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}
	if resp.notFound() {
		return &media.SearchPage{}, nil
	}
	if err := resp.failed(); err != nil {
		return nil, err
	}

	page := &media.SearchPage{}
	page.Total, _ = strconv.Atoi(resp.TotalResults)

	for _, it := range resp.Search {
		if it.IMDbID == "" {
			continue
		}
		page.Movies = append(page.Movies, media.Movie{
			IMDbID: it.IMDbID,
			Title:  httputil.SanitizeText(it.Title),
			Year:   httputil.SanitizeText(it.Year),
			Poster: it.Poster,
			Type:   media.ParseMediaType(it.Type),
		})
	}

	return page, nil
}

// parseDetail decodes a single-title response.
func parseDetail(body []byte) (*media.Detail, error) {
	var resp detailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing detail response: %w", err)
	}
	if err := resp.failed(); err != nil {
		return nil, err
	}

	clean := httputil.SanitizeText
	d := &media.Detail{
		IMDbID:     resp.IMDbID,
		Title:      clean(resp.Title),
		Year:       clean(resp.Year),
		Rated:      clean(resp.Rated),
		Released:   clean(resp.Released),
		Runtime:    clean(resp.Runtime),
		Genre:      clean(resp.Genre),
		Director:   clean(resp.Director),
		Writer:     clean(resp.Writer),
		Actors:     clean(resp.Actors),
		Plot:       clean(resp.Plot),
		Language:   clean(resp.Language),
		Country:    clean(resp.Country),
		Awards:     clean(resp.Awards),
		Poster:     resp.Poster,
		IMDbRating: clean(resp.IMDbRating),
		IMDbVotes:  clean(resp.IMDbVotes),
		BoxOffice:  clean(resp.BoxOffice),
		Type:       media.ParseMediaType(resp.Type),
	}
	for _, r := range resp.Ratings {
		d.Ratings = append(d.Ratings, media.Rating{
			Source: clean(r.Source),
			Value:  clean(r.Value),
		})
	}

	return d, nil
}

// FormatDisplayTitle creates a one-line display string for a result.
func FormatDisplayTitle(m media.Movie) string {
	parts := []string{m.Title}
	if m.Year != "" {
		parts = append(parts, fmt.Sprintf("(%s)", m.Year))
	}
	parts = append(parts, fmt.Sprintf("[%s]", strings.ToUpper(m.Type.String())))
	return strings.Join(parts, " ")
}
