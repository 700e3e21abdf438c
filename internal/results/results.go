// Package results accumulates paged search results into one ordered,
// duplicate-free list keyed by IMDb ID.
//
// A Set is driven by LoadPage calls: page 1 replaces the content, later pages
// are appended after dropping keys that are already present. Fetch failures
// are reported to a Reporter and otherwise swallowed, leaving the content,
// page and hasMore flag exactly as they were so the caller can retry.
//
// Overlapping LoadPage calls are not serialized. The loading flag is advisory
// (the pager consults it); a slow early page may still land after a faster
// later one.
package results

import (
	"context"
	"fmt"
	"sync"

	"marquee/internal/media"
)

// Fetcher returns one page of results for a term.
type Fetcher interface {
	Search(ctx context.Context, term string, page int) (*media.SearchPage, error)
}

// Reporter receives fetch failures. Report must not block.
type Reporter interface {
	Report(err error)
}

// ReporterFunc adapts a function to a Reporter.
type ReporterFunc func(error)

// Report calls f(err).
func (f ReporterFunc) Report(err error) { f(err) }

// LoadError is what a Set reports when fetching a page fails. It names the
// call that failed so callers running overlapping loads can tell them apart.
type LoadError struct {
	Term string
	Page int
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %q page %d: %v", e.Term, e.Page, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Set is the accumulated result list for the current search.
type Set struct {
	fetcher  Fetcher
	reporter Reporter

	mu      sync.Mutex
	items   []media.Movie
	page    int
	hasMore bool
	loading bool
}

// New creates an empty Set on page 1.
func New(fetcher Fetcher, reporter Reporter) *Set {
	if reporter == nil {
		reporter = ReporterFunc(func(error) {})
	}
	return &Set{
		fetcher:  fetcher,
		reporter: reporter,
		page:     1,
	}
}

// LoadPage fetches page of term and merges it into the set.
// An empty term is a no-op. page values below 1 load page 1.
func (s *Set) LoadPage(ctx context.Context, term string, page int) {
	if term == "" {
		return
	}
	if page < 1 {
		page = 1
	}

	s.setLoading(true)
	defer s.setLoading(false)

	res, err := s.fetcher.Search(ctx, term, page)
	if err != nil {
		s.reporter.Report(&LoadError{Term: term, Page: page, Err: err})
		return
	}

	var raw []media.Movie
	if res != nil {
		raw = res.Movies
	}
	unique := dedupe(raw)

	s.mu.Lock()
	defer s.mu.Unlock()

	if page == 1 {
		s.items = unique
	} else {
		s.items = appendNew(s.items, unique)
	}
	s.hasMore = len(unique) > 0
	s.page = page
}

// ReplaceAll sets the content directly, bypassing dedup and merge.
func (s *Set) ReplaceAll(items []media.Movie) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]media.Movie(nil), items...)
}

// Items returns a copy of the accumulated results in arrival order.
func (s *Set) Items() []media.Movie {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]media.Movie(nil), s.items...)
}

// Len returns the number of accumulated results.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Page returns the last successfully loaded page.
func (s *Set) Page() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.page
}

// NextPage returns the page a load-more request should ask for.
func (s *Set) NextPage() int {
	return s.Page() + 1
}

// HasMore reports whether the most recent successful fetch returned any items.
func (s *Set) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}

// Loading reports whether a LoadPage call is in flight.
func (s *Set) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Set) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// dedupe keeps the first occurrence of each key, in order.
func dedupe(raw []media.Movie) []media.Movie {
	seen := make(map[string]struct{}, len(raw))
	unique := make([]media.Movie, 0, len(raw))
	for _, m := range raw {
		if _, ok := seen[m.IMDbID]; ok {
			continue
		}
		seen[m.IMDbID] = struct{}{}
		unique = append(unique, m)
	}
	return unique
}

// appendNew appends the items of next whose key is not already in prev.
func appendNew(prev, next []media.Movie) []media.Movie {
	have := make(map[string]struct{}, len(prev))
	for _, m := range prev {
		have[m.IMDbID] = struct{}{}
	}
	for _, m := range next {
		if _, ok := have[m.IMDbID]; ok {
			continue
		}
		prev = append(prev, m)
	}
	return prev
}
