package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] mapping for the browser.
type keyMap struct {
	up        key.Binding
	down      key.Binding
	pageUp    key.Binding
	pageDown  key.Binding
	top       key.Binding
	bottom    key.Binding
	enter     key.Binding
	search    key.Binding
	complete  key.Binding
	back      key.Binding
	open      key.Binding
	imdb      key.Binding
	download  key.Binding
	quit      key.Binding
	forceQuit key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		pageUp:    key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		pageDown:  key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		top:       key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		bottom:    key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		enter:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		complete:  key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "suggestion")),
		back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		open:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open poster")),
		imdb:      key.NewBinding(key.WithKeys("i"), key.WithHelp("i", "imdb page")),
		download:  key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "download")),
		quit:      key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		forceQuit: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

// help returns the bindings shown in the footer for v.
func (k keyMap) help(v viewState) []key.Binding {
	switch v {
	case searchView:
		return []key.Binding{k.enter, k.complete, k.back}
	case resultsView:
		return []key.Binding{k.up, k.down, k.enter, k.search, k.quit}
	case posterView:
		return []key.Binding{k.enter, k.open, k.download, k.imdb, k.back}
	case detailView:
		return []key.Binding{k.open, k.imdb, k.download, k.back, k.quit}
	default:
		return []key.Binding{k.quit}
	}
}
