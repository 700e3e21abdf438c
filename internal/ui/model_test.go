package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marquee/internal/history"
	"marquee/internal/media"
	"marquee/internal/results"
)

// cmdTimeout bounds how long the driver waits on a command. Cursor blinks and
// spinner ticks outlive it and are dropped.
const cmdTimeout = 200 * time.Millisecond

type fakeProvider struct {
	mu       sync.Mutex
	pages    map[string]map[int][]media.Movie
	failures map[int]int // remaining failures per page
	details  map[string]*media.Detail
	calls    []string
}

func (p *fakeProvider) Search(ctx context.Context, term string, page int) (*media.SearchPage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, fmt.Sprintf("%s:%d", term, page))
	if p.failures[page] > 0 {
		p.failures[page]--
		return nil, errors.New("upstream unavailable")
	}
	return &media.SearchPage{Movies: p.pages[term][page]}, nil
}

func (p *fakeProvider) Details(ctx context.Context, id string) (*media.Detail, error) {
	d, ok := p.details[id]
	if !ok {
		return nil, fmt.Errorf("no detail for %s", id)
	}
	return d, nil
}

func (p *fakeProvider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

type fakeViewer struct {
	mu      sync.Mutex
	targets []string
	err     error
}

func (v *fakeViewer) Open(target string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.targets = append(v.targets, target)
	return v.err
}

func (v *fakeViewer) Name() string    { return "fake" }
func (v *fakeViewer) Available() bool { return true }

func titled(prefix string, n int) []media.Movie {
	base := int(prefix[0]) * 1000
	out := make([]media.Movie, n)
	for i := range out {
		id := fmt.Sprintf("tt%07d", base+i)
		out[i] = media.Movie{
			IMDbID: id,
			Title:  fmt.Sprintf("%s %d", prefix, i),
			Year:   "1995",
			Poster: "https://img.example.com/" + id + ".jpg",
			Type:   media.TypeMovie,
		}
	}
	return out
}

func newTestModel(t *testing.T, p *fakeProvider, opts Options) *Model {
	t.Helper()
	opts.Provider = p
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Viewer == nil {
		opts.Viewer = &fakeViewer{}
	}
	if opts.SuggestDelay == 0 {
		opts.SuggestDelay = time.Millisecond
	}
	m := NewModel(context.Background(), opts)
	t.Cleanup(m.Close)
	return m
}

// run executes cmd and every command it produces, feeding the browser's own
// messages back into Update until nothing is left.
func run(t *testing.T, m *Model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		msg, ok := execCmd(c)
		if !ok {
			continue
		}
		switch msg := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case pageLoadedMsg, detailMsg, suggestTickMsg, suggestionsMsg, statusMsg:
			_, next := m.Update(msg)
			queue = append(queue, next)
		}
	}
}

func execCmd(c tea.Cmd) (tea.Msg, bool) {
	ch := make(chan tea.Msg, 1)
	go func() { ch <- c() }()
	select {
	case msg := <-ch:
		return msg, true
	case <-time.After(cmdTimeout):
		return nil, false
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(t *testing.T, m *Model, k string) {
	t.Helper()
	_, cmd := m.Update(keyMsg(k))
	run(t, m, cmd)
}

// resize gives the browser room for exactly cards result cards.
func resize(m *Model, cards int) {
	m.Update(tea.WindowSizeMsg{Width: 80, Height: chromeLines + cards*rowsPerCard})
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestInitRestoresLastTermAndFillsScreen(t *testing.T) {
	p := &fakeProvider{pages: map[string]map[int][]media.Movie{
		"alien": {
			1: titled("a", 2),
			2: append(titled("a", 1), titled("b", 1)...),
		},
	}}
	slot := &history.MemorySlot{}
	slot.Set("alien")

	m := newTestModel(t, p, Options{Slot: slot})
	run(t, m, m.Init())

	// The sentinel stays on screen until a page comes back empty.
	assert.Equal(t, []string{"alien:1", "alien:2", "alien:3"}, p.Calls())
	assert.Equal(t, 3, m.set.Len())
	assert.False(t, m.set.HasMore())
	assert.False(t, m.loading())
	assert.Equal(t, resultsView, m.view)
	assert.Equal(t, "alien", slot.Get())
}

func TestInitWithoutTermStaysOnSearch(t *testing.T) {
	p := &fakeProvider{}
	m := newTestModel(t, p, Options{})
	run(t, m, m.Init())

	assert.Empty(t, p.Calls())
	assert.Equal(t, searchView, m.view)
	assert.Contains(t, m.View(), "Search")
}

func TestScrollingToLastCardLoadsNextPage(t *testing.T) {
	p := &fakeProvider{pages: map[string]map[int][]media.Movie{
		"heat": {1: titled("h", 3), 2: titled("i", 2)},
	}}
	slot := &history.MemorySlot{}
	m := newTestModel(t, p, Options{Slot: slot, Term: "heat"})
	resize(m, 2)
	run(t, m, m.Init())

	require.Equal(t, []string{"heat:1"}, p.Calls())
	assert.Equal(t, "heat", slot.Get())

	press(t, m, "down")
	assert.Len(t, p.Calls(), 1, "last card not yet visible")

	press(t, m, "down")
	assert.Equal(t, []string{"heat:1", "heat:2"}, p.Calls())
	assert.Equal(t, 5, m.set.Len())

	press(t, m, "G")
	assert.Equal(t, []string{"heat:1", "heat:2", "heat:3"}, p.Calls())
	assert.False(t, m.set.HasMore())

	// Exhausted: revisiting the last card does nothing.
	press(t, m, "g")
	press(t, m, "G")
	assert.Len(t, p.Calls(), 3)
	assert.Equal(t, 4, m.cursor)
}

func TestFailedPageRetriesOnNextVisit(t *testing.T) {
	p := &fakeProvider{
		pages: map[string]map[int][]media.Movie{
			"heat": {1: titled("h", 3), 2: titled("i", 1)},
		},
		failures: map[int]int{2: 1},
	}
	m := newTestModel(t, p, Options{Term: "heat"})
	resize(m, 2)
	run(t, m, m.Init())

	press(t, m, "G")
	assert.Equal(t, []string{"heat:1", "heat:2"}, p.Calls())
	assert.Equal(t, 3, m.set.Len())
	assert.True(t, m.statusErr)
	assert.Contains(t, m.View(), `could not load page 2 of "heat"`)

	// The failed page is not retried until the last card leaves and re-enters view.
	assert.False(t, m.loading())
	assert.Len(t, p.Calls(), 2)

	press(t, m, "g")
	press(t, m, "G")
	assert.Equal(t, []string{"heat:1", "heat:2", "heat:2"}, p.Calls())
	assert.Equal(t, 4, m.set.Len())
	assert.Empty(t, m.status, "a successful page clears the failure")
}

func TestLoadMoreIgnoredWhileLoading(t *testing.T) {
	p := &fakeProvider{pages: map[string]map[int][]media.Movie{
		"heat": {1: titled("h", 3)},
	}}
	m := newTestModel(t, p, Options{Term: "heat"})
	resize(m, 2)
	run(t, m, m.Init())

	m.inflight = 1
	_, cmd := m.Update(keyMsg("G"))
	assert.Nil(t, cmd)
	assert.False(t, m.wantMore)
	assert.Len(t, p.Calls(), 1)
}

func TestOverlappingLoadsKeepTheirOwnOutcome(t *testing.T) {
	p := &fakeProvider{
		pages: map[string]map[int][]media.Movie{
			"old": {1: titled("o", 3)},
			"new": {1: titled("n", 2)},
		},
		failures: map[int]int{2: 1},
	}
	m := newTestModel(t, p, Options{Term: "old"})
	resize(m, 2)
	run(t, m, m.Init())
	require.Equal(t, []string{"old:1"}, p.Calls())

	// A page of the old term is still in flight when the user searches again.
	oldLoad := m.loadCmd("old", 2)
	m.Update(keyMsg("/"))
	m.input.SetValue("new")
	_, newSearch := m.Update(keyMsg("enter"))

	oldMsg, ok := oldLoad().(pageLoadedMsg)
	require.True(t, ok)
	assert.True(t, oldMsg.failed)

	run(t, m, newSearch)
	assert.Equal(t, []string{"old:1", "old:2", "new:1"}, p.Calls())
	assert.Equal(t, 2, m.set.Len())
	assert.False(t, m.statusErr, m.status)

	// Once the old page settles the pager binds to the new list and paging resumes.
	_, cmd := m.Update(oldMsg)
	run(t, m, cmd)
	assert.Equal(t, []string{"old:1", "old:2", "new:1", "new:2"}, p.Calls())
	assert.Empty(t, m.status)
	assert.Equal(t, "n 0", m.set.Items()[0].Title)
}

func TestFailureReporterClaimsPerLoad(t *testing.T) {
	r := &failureReporter{next: results.ReporterFunc(func(error) {})}
	r.Report(&results.LoadError{Term: "old", Page: 2, Err: errors.New("boom")})

	assert.False(t, r.claim("new", 1))
	assert.True(t, r.claim("old", 2))
	assert.False(t, r.claim("old", 2), "a failure is claimed once")
}

func TestNewSearchReplacesResults(t *testing.T) {
	p := &fakeProvider{pages: map[string]map[int][]media.Movie{
		"heat":  {1: titled("h", 3)},
		"alien": {1: titled("a", 2)},
	}}
	slot := &history.MemorySlot{}
	m := newTestModel(t, p, Options{Slot: slot, Term: "heat"})
	resize(m, 2)
	run(t, m, m.Init())
	press(t, m, "down")

	m.Update(keyMsg("/"))
	require.Equal(t, searchView, m.view)
	m.input.SetValue("alien")
	press(t, m, "enter")

	assert.Equal(t, resultsView, m.view)
	assert.Equal(t, "alien", slot.Get())
	assert.Equal(t, 0, m.cursor)
	items := m.set.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "a 0", items[0].Title)
	assert.Contains(t, m.View(), `"alien" · 2 results`)
}

func TestBlankSearchIsIgnored(t *testing.T) {
	p := &fakeProvider{}
	m := newTestModel(t, p, Options{})
	m.input.SetValue("   ")
	press(t, m, "enter")

	assert.Equal(t, searchView, m.view)
	assert.Empty(t, p.Calls())
}

func TestEscReturnsToResultsOnlyAfterSearch(t *testing.T) {
	p := &fakeProvider{pages: map[string]map[int][]media.Movie{"heat": {1: titled("h", 1)}}}
	m := newTestModel(t, p, Options{})

	press(t, m, "esc")
	assert.Equal(t, searchView, m.view)

	m.input.SetValue("heat")
	press(t, m, "enter")
	m.Update(keyMsg("/"))
	press(t, m, "esc")
	assert.Equal(t, resultsView, m.view)
}

func TestSuggestionsAndTabCompletion(t *testing.T) {
	p := &fakeProvider{pages: map[string]map[int][]media.Movie{
		"ali": {1: {
			{IMDbID: "tt0078748", Title: "Alien"},
			{IMDbID: "tt0090605", Title: "Aliens"},
			{IMDbID: "tt9999999", Title: "Alien"},
		}},
	}}
	m := newTestModel(t, p, Options{})

	press(t, m, "ali")
	assert.Equal(t, []string{"Alien", "Aliens"}, m.suggestions)
	assert.Contains(t, m.View(), "Aliens")

	press(t, m, "tab")
	assert.Equal(t, "Alien", m.input.Value())
	press(t, m, "tab")
	assert.Equal(t, "Aliens", m.input.Value())
}

func TestStaleSuggestionTickIsDropped(t *testing.T) {
	p := &fakeProvider{}
	m := newTestModel(t, p, Options{})

	_, first := m.Update(keyMsg("a"))
	_, second := m.Update(keyMsg("b"))
	run(t, m, first)
	run(t, m, second)

	assert.Equal(t, []string{"ab:1"}, p.Calls())
}

func TestPosterAndDetailFlow(t *testing.T) {
	movies := titled("h", 2)
	p := &fakeProvider{
		pages: map[string]map[int][]media.Movie{"heat": {1: movies}},
		details: map[string]*media.Detail{
			movies[1].IMDbID: {
				IMDbID:     movies[1].IMDbID,
				Title:      "Heat",
				Year:       "1995",
				Runtime:    "170 min",
				Genre:      "Crime",
				Director:   "Michael Mann",
				Writer:     media.NotAvailable,
				Plot:       "A group of high-end professional thieves.",
				IMDbRating: "8.3",
				Ratings:    []media.Rating{{Source: "Metacritic", Value: "76/100"}},
			},
		},
	}
	m := newTestModel(t, p, Options{Term: "heat"})
	run(t, m, m.Init())

	press(t, m, "down")
	press(t, m, "enter")
	require.Equal(t, posterView, m.view)
	assert.Equal(t, movies[1], m.selected)
	assert.Contains(t, m.View(), "[enter] View Info")
	assert.Contains(t, m.View(), movies[1].Poster)

	press(t, m, "enter")
	require.Equal(t, detailView, m.view)
	require.NotNil(t, m.detail)

	out := m.View()
	assert.Contains(t, out, "Heat (1995)")
	assert.Contains(t, out, "Michael Mann")
	assert.Contains(t, out, "Metacritic: 76/100")
	assert.Contains(t, out, "8.3 ⭐")
	assert.NotContains(t, out, "Writer:")

	press(t, m, "esc")
	assert.Equal(t, resultsView, m.view)
}

func TestDetailErrorIsShown(t *testing.T) {
	p := &fakeProvider{pages: map[string]map[int][]media.Movie{"heat": {1: titled("h", 1)}}}
	m := newTestModel(t, p, Options{Term: "heat"})
	run(t, m, m.Init())

	press(t, m, "enter")
	press(t, m, "enter")
	assert.Error(t, m.detailErr)
	assert.Contains(t, m.View(), "Could not load details")
}

func TestStaleDetailIsIgnored(t *testing.T) {
	m := newTestModel(t, &fakeProvider{}, Options{})
	m.selected = media.Movie{IMDbID: "tt0000001"}

	m.Update(detailMsg{id: "tt0000002", detail: &media.Detail{Title: "Other"}})
	assert.Nil(t, m.detail)
}

func TestOpenPoster(t *testing.T) {
	movies := titled("h", 1)
	movies = append(movies, media.Movie{IMDbID: "tt0000002", Title: "Blank", Poster: media.NotAvailable})
	p := &fakeProvider{pages: map[string]map[int][]media.Movie{"heat": {1: movies}}}
	v := &fakeViewer{}
	m := newTestModel(t, p, Options{Term: "heat", Viewer: v})
	run(t, m, m.Init())

	press(t, m, "enter")
	press(t, m, "o")
	assert.Equal(t, []string{movies[0].Poster}, v.targets)
	assert.Equal(t, "opened poster with fake", m.status)

	press(t, m, "esc")
	press(t, m, "down")
	press(t, m, "enter")
	press(t, m, "o")
	assert.Len(t, v.targets, 1)
	assert.Equal(t, "no poster available", m.status)
}

func TestOpenIMDbReportsViewerError(t *testing.T) {
	p := &fakeProvider{pages: map[string]map[int][]media.Movie{"heat": {1: titled("h", 1)}}}
	v := &fakeViewer{err: errors.New("xdg-open not found in PATH")}
	m := newTestModel(t, p, Options{Term: "heat", Viewer: v})
	run(t, m, m.Init())

	press(t, m, "enter")
	press(t, m, "i")
	require.Len(t, v.targets, 1)
	assert.True(t, strings.HasPrefix(v.targets[0], "https://www.imdb.com/title/"))
	assert.True(t, m.statusErr)
	assert.Contains(t, m.View(), "xdg-open not found")
}

func TestDownloadPoster(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte("jpeg-bytes"))
	}))
	defer srv.Close()

	mv := media.Movie{IMDbID: "tt0113277", Title: "Heat", Year: "1995", Poster: srv.URL + "/heat.jpg"}
	p := &fakeProvider{pages: map[string]map[int][]media.Movie{"heat": {1: {mv}}}}
	dir := t.TempDir()
	m := newTestModel(t, p, Options{Term: "heat", Client: srv.Client(), DownloadDir: dir})
	run(t, m, m.Init())

	press(t, m, "enter")
	press(t, m, "d")
	require.False(t, m.statusErr, m.status)
	assert.Contains(t, m.status, "saved poster to ")

	path := strings.TrimPrefix(m.status, "saved poster to ")
	assert.Equal(t, dir, filepath.Dir(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
}

func TestQuitKeys(t *testing.T) {
	p := &fakeProvider{pages: map[string]map[int][]media.Movie{"heat": {1: titled("h", 1)}}}
	m := newTestModel(t, p, Options{})

	// q is text while searching.
	_, cmd := m.Update(keyMsg("q"))
	assert.False(t, isQuit(cmd))
	assert.Equal(t, "q", m.input.Value())

	_, cmd = m.Update(keyMsg("ctrl+c"))
	assert.True(t, isQuit(cmd))

	m.input.SetValue("heat")
	press(t, m, "enter")
	_, cmd = m.Update(keyMsg("q"))
	assert.True(t, isQuit(cmd))
}

func TestResultsViewStates(t *testing.T) {
	p := &fakeProvider{pages: map[string]map[int][]media.Movie{"heat": {1: titled("h", 3)}}}
	m := newTestModel(t, p, Options{Term: "nothing"})
	run(t, m, m.Init())
	assert.Contains(t, m.View(), "No results.")

	m.Update(keyMsg("/"))
	m.input.SetValue("heat")
	press(t, m, "enter")
	resize(m, 2)

	out := m.View()
	assert.Contains(t, out, "▸ h 0 (1995)")
	assert.Contains(t, out, "h 1 (1995)")
	assert.NotContains(t, out, "h 2 (1995)")
	assert.NotContains(t, out, "Loading")
}
