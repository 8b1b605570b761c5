package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelection_Toggle(t *testing.T) {
	s := NewSelection(DefaultCountrySelectionCap)

	assert.Equal(t, ToggleAdded, s.Toggle("FR"))
	assert.True(t, s.Has("FR"))
	assert.Equal(t, ToggleRemoved, s.Toggle("FR"))
	assert.False(t, s.Has("FR"))
	assert.True(t, s.Empty())
}

func TestSelection_CapRejectsSilently(t *testing.T) {
	s := NewSelection(2)

	assert.Equal(t, ToggleAdded, s.Toggle("A"))
	assert.Equal(t, ToggleAdded, s.Toggle("B"))
	assert.Equal(t, ToggleRejected, s.Toggle("C"))
	assert.Equal(t, []string{"A", "B"}, s.IDs())

	// Removing frees a slot.
	assert.Equal(t, ToggleRemoved, s.Toggle("A"))
	assert.Equal(t, ToggleAdded, s.Toggle("C"))
	assert.Equal(t, []string{"B", "C"}, s.IDs())
}

func TestSelection_NeverExceedsCap(t *testing.T) {
	s := NewSelection(DefaultCountrySelectionCap)

	for i := range 200 {
		s.Toggle(fmt.Sprintf("c%d", (i*7)%13))
		assert.LessOrEqual(t, s.Len(), DefaultCountrySelectionCap)
	}
}

func TestSelection_DoubleToggleRestoresMembership(t *testing.T) {
	s := NewSelection(3, "A", "B", "C")
	before := s.IDs()

	// At the cap a rejected toggle leaves nothing to undo.
	s.Toggle("D")
	s.Toggle("D")
	assert.Equal(t, before, s.IDs())

	s.Toggle("B")
	s.Toggle("B")
	assert.ElementsMatch(t, before, s.IDs())
}

func TestSelection_Unbounded(t *testing.T) {
	s := NewSelection(0)

	for i := range 50 {
		assert.Equal(t, ToggleAdded, s.Toggle(fmt.Sprintf("row-%d", i)))
	}
	assert.Equal(t, 50, s.Len())
}

func TestSelection_RemoveAndClear(t *testing.T) {
	s := NewSelection(5, "A", "B", "A")

	assert.Equal(t, 2, s.Len())
	assert.True(t, s.Remove("A"))
	assert.False(t, s.Remove("A"))

	s.Clear()
	assert.True(t, s.Empty())
	assert.Equal(t, 5, s.Cap())
}

func TestNewSelection_TruncatesToCap(t *testing.T) {
	s := NewSelection(2, "A", "B", "C")

	assert.Equal(t, []string{"A", "B"}, s.IDs())
}
