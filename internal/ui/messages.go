package ui

import "marquee/internal/media"

// pageLoadedMsg reports that a LoadPage call returned.
type pageLoadedMsg struct {
	term   string
	page   int
	failed bool
}

// detailMsg carries a fetched detail record.
type detailMsg struct {
	id     string
	detail *media.Detail
	err    error
}

// suggestTickMsg fires once typing has paused long enough to look up suggestions.
type suggestTickMsg struct {
	seq   int
	value string
}

// suggestionsMsg carries title suggestions for value.
type suggestionsMsg struct {
	value  string
	titles []string
}

// statusMsg sets the footer status line.
type statusMsg struct {
	text string
	err  error
}
