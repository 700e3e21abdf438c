package history

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
)

// TermSlot holds the last search term across navigation and restarts.
type TermSlot interface {
	Get() string
	Set(term string)
}

// Slot adapts a Store to TermSlot. Storage errors are logged, never returned.
type Slot struct {
	store  *Store
	logger *log.Logger
}

// NewSlot wraps store. A nil logger uses the charmbracelet default logger.
func NewSlot(store *Store, logger *log.Logger) *Slot {
	if logger == nil {
		logger = log.Default()
	}
	return &Slot{store: store, logger: logger}
}

// Get returns the last stored term.
func (s *Slot) Get() string {
	term, err := s.store.LastTerm(context.Background())
	if err != nil {
		s.logger.Warn("reading last search term", "err", err)
		return ""
	}
	return term
}

// Set records term.
func (s *Slot) Set(term string) {
	if err := s.store.SetTerm(context.Background(), term); err != nil {
		s.logger.Warn("saving search term", "term", term, "err", err)
	}
}

// MemorySlot is a TermSlot that lives only for the current process.
type MemorySlot struct {
	mu   sync.Mutex
	term string
}

// Get returns the stored term.
func (m *MemorySlot) Get() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.term
}

// Set replaces the stored term.
func (m *MemorySlot) Set(term string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.term = term
}
