package ui

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"marquee/internal/download"
	"marquee/internal/history"
	"marquee/internal/media"
	"marquee/internal/pager"
	"marquee/internal/provider"
	"marquee/internal/results"
	"marquee/internal/viewer"
)

// viewState is the screen currently shown.
type viewState int

const (
	searchView viewState = iota
	resultsView
	posterView
	detailView
)

const (
	maxSuggestions      = 5
	defaultSuggestDelay = 300 * time.Millisecond

	// Each card is a title line plus a meta line. chromeLines covers the
	// header, the loading line and the footer.
	rowsPerCard = 2
	chromeLines = 6
)

// Options wires the browser to its collaborators.
type Options struct {
	Provider     provider.Provider
	Slot         history.TermSlot
	Logger       *log.Logger
	Viewer       viewer.Viewer
	Client       *http.Client
	DownloadDir  string
	Term         string        // initial term; falls back to Slot.Get()
	SuggestDelay time.Duration // typing pause before suggestions are fetched
}

type loadKey struct {
	term string
	page int
}

// failureReporter records which term and page failed so each load command
// can claim its own outcome, then forwards the error to the log.
type failureReporter struct {
	next results.Reporter

	mu     sync.Mutex
	failed map[loadKey]int
}

func (r *failureReporter) Report(err error) {
	var le *results.LoadError
	if errors.As(err, &le) {
		r.mu.Lock()
		if r.failed == nil {
			r.failed = make(map[loadKey]int)
		}
		r.failed[loadKey{le.Term, le.Page}]++
		r.mu.Unlock()
	}
	r.next.Report(err)
}

// claim reports whether a load of term and page failed, consuming the record.
func (r *failureReporter) claim(term string, page int) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	k := loadKey{term, page}
	if r.failed[k] == 0 {
		return false
	}
	r.failed[k]--
	if r.failed[k] == 0 {
		delete(r.failed, k)
	}
	return true
}

// Model is the browser's Bubble Tea model.
type Model struct {
	ctx      context.Context
	opts     Options
	logger   *log.Logger
	reporter *failureReporter

	set      *results.Set
	viewport *pager.Viewport
	pager    *pager.Pager
	wantMore bool
	inflight int

	view          viewState
	term          string
	searched      bool
	cursor        int
	offset        int
	width, height int

	input       textinput.Model
	spinner     spinner.Model
	help        help.Model
	keys        keyMap
	suggestions []string
	suggestIdx  int
	suggestSeq  int

	selected  media.Movie
	detail    *media.Detail
	detailErr error
	status    string
	statusErr bool
}

var _ tea.Model = (*Model)(nil)

// NewModel creates the browser. Missing optional collaborators get defaults.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Slot == nil {
		opts.Slot = &history.MemorySlot{}
	}
	if opts.Viewer == nil {
		opts.Viewer = viewer.New("auto")
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.SuggestDelay <= 0 {
		opts.SuggestDelay = defaultSuggestDelay
	}

	input := textinput.New()
	input.Placeholder = "What movie are you looking for?"
	input.Prompt = "Search › "
	input.CharLimit = 200
	input.Width = 50

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = metaStyle

	m := &Model{
		ctx:      ctx,
		opts:     opts,
		logger:   opts.Logger,
		reporter: &failureReporter{next: results.LogReporter{Logger: opts.Logger}},
		viewport: pager.NewViewport(),
		view:     searchView,
		input:    input,
		spinner:  sp,
		help:     help.New(),
		keys:     newKeyMap(),
	}
	m.set = results.New(opts.Provider, m.reporter)
	m.pager = pager.New(m.viewport.NewObserver, func() { m.wantMore = true })

	term := opts.Term
	if term == "" {
		term = opts.Slot.Get()
	}
	m.input.SetValue(term)
	m.input.Focus()

	return m
}

// Init restores the remembered search, if any.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink, m.spinner.Tick}
	if term := strings.TrimSpace(m.input.Value()); term != "" {
		cmds = append(cmds, m.search(term, m.opts.Term != ""))
	}
	return tea.Batch(cmds...)
}

// Close disconnects the pager's observer.
func (m *Model) Close() {
	m.pager.Close()
}

// Update handles messages and key presses.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		if msg.Width > 20 {
			m.input.Width = msg.Width - 12
		}
		m.scrollTo(m.cursor)
		return m, m.publishViewport()

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case pageLoadedMsg:
		return m, m.pageLoaded(msg)

	case detailMsg:
		if msg.id != m.selected.IMDbID {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Error("loading details", "id", msg.id, "err", msg.err)
			m.detailErr = msg.err
			return m, nil
		}
		m.detail = msg.detail
		return m, nil

	case suggestTickMsg:
		if msg.seq != m.suggestSeq || msg.value != m.input.Value() || m.view != searchView {
			return m, nil
		}
		return m, m.suggestCmd(msg.value)

	case suggestionsMsg:
		if msg.value == m.input.Value() {
			m.suggestions = msg.titles
			m.suggestIdx = 0
		}
		return m, nil

	case statusMsg:
		if msg.err != nil {
			m.logger.Warn("action failed", "err", msg.err)
			m.status, m.statusErr = msg.err.Error(), true
		} else {
			m.status, m.statusErr = msg.text, false
		}
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.forceQuit) {
			return m, tea.Quit
		}
		switch m.view {
		case searchView:
			return m, m.updateSearch(msg)
		case resultsView:
			return m, m.updateResults(msg)
		case posterView:
			return m, m.updatePoster(msg)
		case detailView:
			return m, m.updateDetail(msg)
		}
	}

	// Cursor blink and other input-internal messages.
	if m.view == searchView {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) updateSearch(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.enter):
		return m.search(m.input.Value(), true)

	case key.Matches(msg, m.keys.back):
		if m.searched {
			m.input.Blur()
			m.suggestions = nil
			m.view = resultsView
		}
		return nil

	case key.Matches(msg, m.keys.complete):
		if len(m.suggestions) > 0 {
			m.input.SetValue(m.suggestions[m.suggestIdx%len(m.suggestions)])
			m.input.CursorEnd()
			m.suggestIdx++
		}
		return nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if v := m.input.Value(); v != before {
		return tea.Batch(cmd, m.scheduleSuggest(v))
	}
	return cmd
}

func (m *Model) updateResults(msg tea.KeyMsg) tea.Cmd {
	cards := m.cardsPerScreen()
	switch {
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.up):
		return m.moveCursor(-1)
	case key.Matches(msg, m.keys.down):
		return m.moveCursor(1)
	case key.Matches(msg, m.keys.pageUp):
		return m.moveCursor(-cards)
	case key.Matches(msg, m.keys.pageDown):
		return m.moveCursor(cards)
	case key.Matches(msg, m.keys.top):
		return m.moveCursor(-m.cursor)
	case key.Matches(msg, m.keys.bottom):
		return m.moveCursor(m.set.Len())
	case key.Matches(msg, m.keys.enter):
		if mv, ok := m.itemAt(m.cursor); ok {
			m.selected = mv
			m.status = ""
			m.view = posterView
		}
	case key.Matches(msg, m.keys.search):
		m.view = searchView
		m.input.CursorEnd()
		return m.input.Focus()
	}
	return nil
}

func (m *Model) updatePoster(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = resultsView
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.enter):
		m.view = detailView
		m.detail, m.detailErr = nil, nil
		return m.detailCmd(m.selected.IMDbID)
	case key.Matches(msg, m.keys.open):
		return m.openPosterCmd(m.selected)
	case key.Matches(msg, m.keys.imdb):
		return m.openIMDbCmd(m.selected.IMDbID)
	case key.Matches(msg, m.keys.download):
		return m.downloadCmd(m.selected)
	}
	return nil
}

func (m *Model) updateDetail(msg tea.KeyMsg) tea.Cmd {
	target := m.selected
	if m.detail != nil {
		target = m.detail.Movie()
	}
	switch {
	case key.Matches(msg, m.keys.back):
		m.view = resultsView
	case key.Matches(msg, m.keys.quit):
		return tea.Quit
	case key.Matches(msg, m.keys.open):
		return m.openPosterCmd(target)
	case key.Matches(msg, m.keys.imdb):
		return m.openIMDbCmd(target.IMDbID)
	case key.Matches(msg, m.keys.download):
		return m.downloadCmd(target)
	}
	return nil
}

// search starts a fresh search for term. record stores it in the term slot.
func (m *Model) search(term string, record bool) tea.Cmd {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil
	}
	if record {
		m.opts.Slot.Set(term)
	}

	m.term = term
	m.searched = true
	m.set.ReplaceAll(nil)
	m.cursor, m.offset = 0, 0
	m.pager.Bind(nil, m.loading(), false)

	m.suggestSeq++
	m.suggestions = nil
	m.input.SetValue(term)
	m.input.Blur()
	m.status = ""
	m.view = resultsView

	m.logger.Debug("searching", "term", term)
	return tea.Batch(m.publishViewport(), m.loadCmd(term, 1))
}

// loadCmd runs LoadPage off the update loop.
func (m *Model) loadCmd(term string, page int) tea.Cmd {
	m.inflight++
	ctx, set, rep := m.ctx, m.set, m.reporter
	return func() tea.Msg {
		set.LoadPage(ctx, term, page)
		return pageLoadedMsg{term: term, page: page, failed: rep.claim(term, page)}
	}
}

// pageLoaded rebinds the pager to the new last card. After a failure for the
// current term the existing observer is kept, so scrolling off and back onto
// the last card retries the same page. A failure from an earlier term is not
// shown; the pager is rebound as for any finished load, since binds made
// while it was in flight were ignored.
func (m *Model) pageLoaded(msg pageLoadedMsg) tea.Cmd {
	if m.inflight > 0 {
		m.inflight--
	}
	switch {
	case msg.failed && msg.term == m.term:
		m.status = fmt.Sprintf("could not load page %d of %q", msg.page, msg.term)
		m.statusErr = true
		return nil
	case msg.failed:
		m.logger.Debug("dropping failure for earlier search", "term", msg.term, "page", msg.page)
	case m.statusErr:
		m.status, m.statusErr = "", false
	}

	m.logger.Debug("page loaded", "term", msg.term, "page", msg.page, "total", m.set.Len(), "more", m.set.HasMore())
	if n := m.set.Len(); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	m.pager.Bind(m.sentinel(), m.loading(), m.set.HasMore())
	return m.publishViewport()
}

// sentinel is the node the pager watches: the last card, or nil when empty.
func (m *Model) sentinel() pager.Node {
	n := m.set.Len()
	if n == 0 {
		return nil
	}
	return pager.Index(n - 1)
}

func (m *Model) loading() bool {
	return m.inflight > 0 || m.set.Loading()
}

// publishViewport reports the visible card range to the pager's viewport and
// dispatches a load if the sentinel came into view.
func (m *Model) publishViewport() tea.Cmd {
	n := m.set.Len()
	last := min(m.offset+m.cardsPerScreen(), n) - 1
	m.viewport.Scroll(m.offset, last)
	return m.flushMore()
}

// flushMore turns a pager notification into a load for the next page.
// Requests arriving while a page is in flight are dropped.
func (m *Model) flushMore() tea.Cmd {
	if !m.wantMore {
		return nil
	}
	m.wantMore = false
	if m.loading() || m.term == "" {
		return nil
	}
	return m.loadCmd(m.term, m.set.NextPage())
}

func (m *Model) cardsPerScreen() int {
	if m.height == 0 {
		return 10
	}
	return max((m.height-chromeLines)/rowsPerCard, 1)
}

func (m *Model) moveCursor(delta int) tea.Cmd {
	n := m.set.Len()
	if n == 0 {
		return nil
	}
	m.scrollTo(min(max(m.cursor+delta, 0), n-1))
	return m.publishViewport()
}

// scrollTo places the cursor on i and keeps it inside the window.
func (m *Model) scrollTo(i int) {
	m.cursor = i
	cards := m.cardsPerScreen()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+cards {
		m.offset = m.cursor - cards + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m *Model) itemAt(i int) (media.Movie, bool) {
	items := m.set.Items()
	if i < 0 || i >= len(items) {
		return media.Movie{}, false
	}
	return items[i], true
}

func (m *Model) scheduleSuggest(value string) tea.Cmd {
	m.suggestSeq++
	m.suggestIdx = 0
	if strings.TrimSpace(value) == "" {
		m.suggestions = nil
		return nil
	}
	seq := m.suggestSeq
	return tea.Tick(m.opts.SuggestDelay, func(time.Time) tea.Msg {
		return suggestTickMsg{seq: seq, value: value}
	})
}

// suggestCmd looks up the first page for value and keeps up to
// maxSuggestions distinct titles.
func (m *Model) suggestCmd(value string) tea.Cmd {
	ctx, p, logger := m.ctx, m.opts.Provider, m.logger
	return func() tea.Msg {
		page, err := p.Search(ctx, value, 1)
		if err != nil {
			logger.Debug("suggestions failed", "value", value, "err", err)
			return suggestionsMsg{value: value}
		}
		seen := make(map[string]bool)
		var titles []string
		for _, mv := range page.Movies {
			if seen[mv.Title] {
				continue
			}
			seen[mv.Title] = true
			titles = append(titles, mv.Title)
			if len(titles) == maxSuggestions {
				break
			}
		}
		return suggestionsMsg{value: value, titles: titles}
	}
}

func (m *Model) detailCmd(id string) tea.Cmd {
	ctx, p := m.ctx, m.opts.Provider
	return func() tea.Msg {
		d, err := p.Details(ctx, id)
		return detailMsg{id: id, detail: d, err: err}
	}
}

func (m *Model) openPosterCmd(mv media.Movie) tea.Cmd {
	if !mv.HasPoster() {
		return func() tea.Msg { return statusMsg{text: "no poster available"} }
	}
	v := m.opts.Viewer
	return func() tea.Msg {
		if err := v.Open(mv.Poster); err != nil {
			return statusMsg{err: err}
		}
		return statusMsg{text: "opened poster with " + v.Name()}
	}
}

func (m *Model) openIMDbCmd(id string) tea.Cmd {
	v := m.opts.Viewer
	return func() tea.Msg {
		target, err := viewer.IMDbURL(id)
		if err != nil {
			return statusMsg{err: err}
		}
		if err := v.Open(target); err != nil {
			return statusMsg{err: err}
		}
		return statusMsg{text: "opened " + target}
	}
}

func (m *Model) downloadCmd(mv media.Movie) tea.Cmd {
	ctx, client, dir := m.ctx, m.opts.Client, m.opts.DownloadDir
	return func() tea.Msg {
		if dir == "" {
			return statusMsg{err: fmt.Errorf("no download directory configured")}
		}
		path, err := download.Poster(ctx, client, mv, dir)
		if err != nil {
			return statusMsg{err: err}
		}
		return statusMsg{text: "saved poster to " + path}
	}
}

// Run starts the browser on the terminal and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	m := NewModel(ctx, opts)
	defer m.Close()

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running browser: %w", err)
	}
	return nil
}
