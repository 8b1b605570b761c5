package explorer

import (
	"strconv"
	"sync"

	"github.com/couchcryptid/eurolife-dashboard/internal/domain"
	"github.com/couchcryptid/eurolife-dashboard/internal/observability"
)

// Store holds uploaded tables and their row selections. When full, the
// least recently used table is evicted.
type Store struct {
	maxEntries int
	metrics    *observability.Metrics

	mu      sync.Mutex
	entries map[string]*entry
	head    *entry // most recently used
	tail    *entry // least recently used
}

type entry struct {
	table     *Table
	selection *domain.Selection
	prev      *entry
	next      *entry
}

// NewStore creates a table store bounded by maxEntries.
func NewStore(maxEntries int, metrics *observability.Metrics) *Store {
	return &Store{
		maxEntries: maxEntries,
		metrics:    metrics,
		entries:    make(map[string]*entry),
	}
}

// Put stores t with an empty, unbounded row selection.
func (s *Store) Put(t *Table) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[t.ID]; ok {
		e.table = t
		e.selection = domain.NewSelection(0)
		s.moveToFront(e)
		return
	}

	e := &entry{table: t, selection: domain.NewSelection(0)}
	s.entries[t.ID] = e
	s.addToFront(e)

	if len(s.entries) > s.maxEntries {
		s.evictTail()
	}
	s.metrics.ExplorerTables.Set(float64(len(s.entries)))
}

// Get returns a table and a snapshot of its selected row indices.
func (s *Store) Get(id string) (*Table, []int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, nil, ErrTableNotFound
	}
	s.moveToFront(e)
	return e.table, rowIndices(e.selection), nil
}

// ToggleRow flips the selection of one row and returns the new selection.
func (s *Store) ToggleRow(id string, row int) (domain.ToggleResult, []int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return "", nil, ErrTableNotFound
	}
	if row < 0 || row >= len(e.table.Rows) {
		return "", nil, ErrUnknownRow
	}
	s.moveToFront(e)
	res := e.selection.Toggle(strconv.Itoa(row))
	return res, rowIndices(e.selection), nil
}

// ClearSelection deselects every row of a table.
func (s *Store) ClearSelection(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return ErrTableNotFound
	}
	e.selection.Clear()
	return nil
}

// Len returns the number of stored tables.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func rowIndices(sel *domain.Selection) []int {
	ids := sel.IDs()
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if i, err := strconv.Atoi(id); err == nil {
			out = append(out, i)
		}
	}
	return out
}

func (s *Store) moveToFront(e *entry) {
	if e == s.head {
		return
	}
	s.remove(e)
	s.addToFront(e)
}

func (s *Store) addToFront(e *entry) {
	e.next = s.head
	e.prev = nil
	if s.head != nil {
		s.head.prev = e
	}
	s.head = e
	if s.tail == nil {
		s.tail = e
	}
}

func (s *Store) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		s.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		s.tail = e.prev
	}
}

func (s *Store) evictTail() {
	if s.tail == nil {
		return
	}
	delete(s.entries, s.tail.table.ID)
	s.remove(s.tail)
}
