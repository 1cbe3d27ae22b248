// Package state holds UI state shared between views.
package state

import "sync"

// EditModal is the shared "edit surface open" flag. Views and the
// submission pipeline receive the same instance.
type EditModal struct {
	mu   sync.Mutex
	open bool
}

// NewEditModal returns a closed edit modal
func NewEditModal() *EditModal {
	return &EditModal{}
}

// Open reports whether the edit modal is showing
func (m *EditModal) Open() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open
}

// SetOpen shows or hides the edit modal
func (m *EditModal) SetOpen(open bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.open = open
}
