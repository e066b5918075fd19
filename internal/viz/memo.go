package viz

import (
	"sync"

	"github.com/matsen/labsite/internal/publication"
)

// Memo caches the widget model for the most recent publication list.
//
// The cache is keyed on the identity of the list (same backing array and length),
// not its contents: passing the same slice again returns the cached model, and any
// other slice triggers a rebuild. Callers replace the slice rather than edit it in place.
type Memo struct {
	mu     sync.Mutex
	last   []publication.Publication
	model  *Model
	builds int
}

// Get returns the model for pubs, rebuilding only when the list identity changed.
func (m *Memo) Get(pubs []publication.Publication) *Model {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.model != nil && sameList(m.last, pubs) {
		return m.model
	}

	m.last = pubs
	m.model = Build(pubs)
	m.builds++
	return m.model
}

// Builds returns how many times the model has been rebuilt.
func (m *Memo) Builds() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.builds
}

// sameList reports whether a and b are the same slice.
func sameList(a, b []publication.Publication) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return (a == nil) == (b == nil)
	}
	return &a[0] == &b[0]
}
