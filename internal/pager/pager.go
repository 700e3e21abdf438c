// Package pager requests the next page of results when a sentinel element
// (the last rendered item) scrolls into view.
//
// The visibility source is abstracted behind Observer so any platform that can
// report "this element is now visible" satisfies it. Viewport is the terminal
// implementation used by the TUI.
package pager

import "sync"

// Node is an opaque handle to an observed element. nil observes nothing.
type Node any

// Observer watches at most one node and reports visibility transitions to the
// callback it was created with.
type Observer interface {
	Observe(node Node)
	Disconnect()
}

// ObserverFactory creates an observer that calls onChange whenever the
// observed node's visibility changes.
type ObserverFactory func(onChange func(intersecting bool)) Observer

// State is the lifecycle state of a Pager's binding. A pager leaves Idle only
// by binding a non-nil node; after that, binding nil or closing it moves it to
// Disconnected.
type State int

const (
	Idle State = iota
	Observing
	Disconnected
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Observing:
		return "observing"
	case Disconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Pager binds a single observer to the current sentinel and calls onLoadMore
// each time that sentinel becomes visible while more results may exist.
type Pager struct {
	newObserver ObserverFactory
	onLoadMore  func()

	mu     sync.Mutex
	active Observer
	state  State
}

// New creates an unbound Pager.
func New(newObserver ObserverFactory, onLoadMore func()) *Pager {
	return &Pager{
		newObserver: newObserver,
		onLoadMore:  onLoadMore,
	}
}

// Bind attaches the pager to node using the caller's current loading and
// hasMore snapshot.
//
// While loading, Bind does nothing: the existing observer (if any) stays
// connected and no new one is created. Otherwise the previous observer is
// disconnected and a new one is created; it fires onLoadMore on every
// transition into view, but only if hasMore was true at bind time. A nil node
// leaves the new observer watching nothing.
func (p *Pager) Bind(node Node, loading, hasMore bool) {
	if loading {
		return
	}

	p.mu.Lock()
	prev := p.active
	p.active = nil
	p.mu.Unlock()

	if prev != nil {
		prev.Disconnect()
	}

	obs := p.newObserver(func(intersecting bool) {
		if intersecting && hasMore {
			p.onLoadMore()
		}
	})

	p.mu.Lock()
	p.active = obs
	switch {
	case node != nil:
		p.state = Observing
	case p.state != Idle:
		p.state = Disconnected
	}
	p.mu.Unlock()

	if node != nil {
		obs.Observe(node)
	}
}

// Close disconnects the active observer. The pager may be bound again later.
func (p *Pager) Close() {
	p.mu.Lock()
	prev := p.active
	p.active = nil
	if p.state != Idle {
		p.state = Disconnected
	}
	p.mu.Unlock()

	if prev != nil {
		prev.Disconnect()
	}
}

// State returns the binding's lifecycle state.
func (p *Pager) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}
