package domain

import "slices"

// DefaultCountrySelectionCap bounds the dashboard comparison views.
const DefaultCountrySelectionCap = 5

// ToggleResult is the outcome of Selection.Toggle.
type ToggleResult string

const (
	ToggleAdded    ToggleResult = "added"
	ToggleRemoved  ToggleResult = "removed"
	ToggleRejected ToggleResult = "rejected" // cap reached
)

// Selection is an insertion-ordered set of ids with an optional cap.
// A cap of zero or less means unbounded. Not safe for concurrent use.
type Selection struct {
	capacity int
	ids      []string
}

// NewSelection returns an empty selection bounded by capacity.
func NewSelection(capacity int, ids ...string) *Selection {
	s := &Selection{capacity: capacity}
	for _, id := range ids {
		if !s.Has(id) && !s.full() {
			s.ids = append(s.ids, id)
		}
	}
	return s
}

// Toggle adds id when absent and removes it when present. Adding to a full
// selection is a no-op reported as ToggleRejected.
func (s *Selection) Toggle(id string) ToggleResult {
	if s.Remove(id) {
		return ToggleRemoved
	}
	if s.full() {
		return ToggleRejected
	}
	s.ids = append(s.ids, id)
	return ToggleAdded
}

// Remove deletes id and reports whether it was selected.
func (s *Selection) Remove(id string) bool {
	i := slices.Index(s.ids, id)
	if i < 0 {
		return false
	}
	s.ids = slices.Delete(s.ids, i, i+1)
	return true
}

// Has reports whether id is selected.
func (s *Selection) Has(id string) bool {
	return slices.Contains(s.ids, id)
}

// IDs returns the selected ids in selection order.
func (s *Selection) IDs() []string {
	return slices.Clone(s.ids)
}

// Len returns the number of selected ids.
func (s *Selection) Len() int { return len(s.ids) }

// Empty reports whether nothing is selected.
func (s *Selection) Empty() bool { return len(s.ids) == 0 }

// Cap returns the configured cap, zero or less meaning unbounded.
func (s *Selection) Cap() int { return s.capacity }

// Clear deselects everything.
func (s *Selection) Clear() { s.ids = nil }

func (s *Selection) full() bool {
	return s.capacity > 0 && len(s.ids) >= s.capacity
}
