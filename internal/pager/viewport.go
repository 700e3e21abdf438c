package pager

import "sync"

// Index identifies a list row observed through a Viewport.
type Index int

// Viewport is a visibility source for scrolling lists. The owner publishes
// the visible row range with Scroll; observers created from it are notified
// when their row enters or leaves that range.
type Viewport struct {
	mu          sync.Mutex
	first, last int
	observers   map[*viewportObserver]struct{}
}

// NewViewport returns a Viewport with nothing visible.
func NewViewport() *Viewport {
	return &Viewport{
		first:     0,
		last:      -1,
		observers: make(map[*viewportObserver]struct{}),
	}
}

// NewObserver satisfies ObserverFactory.
func (v *Viewport) NewObserver(onChange func(intersecting bool)) Observer {
	return &viewportObserver{vp: v, onChange: onChange}
}

// Scroll sets the visible row range [first, last]. last < first means
// nothing is visible.
func (v *Viewport) Scroll(first, last int) {
	v.mu.Lock()
	v.first, v.last = first, last
	var fire []func()
	for o := range v.observers {
		if f := o.refreshLocked(); f != nil {
			fire = append(fire, f)
		}
	}
	v.mu.Unlock()

	for _, f := range fire {
		f()
	}
}

// Visible reports whether row i is inside the visible range.
func (v *Viewport) Visible(i int) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.visibleLocked(i)
}

// Observers returns the number of connected observers.
func (v *Viewport) Observers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.observers)
}

func (v *Viewport) visibleLocked(i int) bool {
	return i >= v.first && i <= v.last
}

type viewportObserver struct {
	vp       *Viewport
	onChange func(bool)

	target  int
	visible bool
}

// Observe starts watching node, which must be an Index or int. The current
// visibility is evaluated immediately, so a row already on screen reports
// intersecting right away.
func (o *viewportObserver) Observe(node Node) {
	var idx int
	switch n := node.(type) {
	case Index:
		idx = int(n)
	case int:
		idx = n
	default:
		return
	}

	v := o.vp
	v.mu.Lock()
	o.target = idx
	o.visible = false
	v.observers[o] = struct{}{}
	f := o.refreshLocked()
	v.mu.Unlock()

	if f != nil {
		f()
	}
}

// Disconnect stops all notifications.
func (o *viewportObserver) Disconnect() {
	v := o.vp
	v.mu.Lock()
	delete(v.observers, o)
	v.mu.Unlock()
}

// refreshLocked updates the cached visibility and returns the notification
// to deliver once the viewport lock is released, or nil if nothing changed.
func (o *viewportObserver) refreshLocked() func() {
	now := o.vp.visibleLocked(o.target)
	if now == o.visible {
		return nil
	}
	o.visible = now
	cb := o.onChange
	return func() { cb(now) }
}
