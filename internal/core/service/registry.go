package service

import (
	"github.com/Wyydra/tourcast/internal/core/domain"
	"github.com/Wyydra/tourcast/internal/core/port"
	"github.com/samber/lo"
)

type connEntry struct {
	conn     port.Connection
	identity domain.Identity
	bound    bool
}

// ConnectionRegistry maps a connection handle to the identity bound to it.
// Open but not yet joined connections are tracked unbound. It enforces no tour
// level rules.
type ConnectionRegistry struct {
	entries map[domain.ConnID]*connEntry
}

func NewConnectionRegistry() *ConnectionRegistry {
	return &ConnectionRegistry{
		entries: make(map[domain.ConnID]*connEntry),
	}
}

func (r *ConnectionRegistry) Add(c port.Connection) {
	r.entries[c.ID()] = &connEntry{conn: c}
}

func (r *ConnectionRegistry) Remove(id domain.ConnID) (port.Connection, bool) {
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	delete(r.entries, id)
	return e.conn, true
}

func (r *ConnectionRegistry) Conn(id domain.ConnID) (port.Connection, bool) {
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return e.conn, true
}

// Bind overwrites any identity already bound to id. It returns false if the
// connection is unknown.
func (r *ConnectionRegistry) Bind(id domain.ConnID, identity domain.Identity) bool {
	e, ok := r.entries[id]
	if !ok {
		return false
	}
	e.identity = identity
	e.bound = true
	return true
}

func (r *ConnectionRegistry) Lookup(id domain.ConnID) (domain.Identity, bool) {
	e, ok := r.entries[id]
	if !ok || !e.bound {
		return domain.Identity{}, false
	}
	return e.identity, true
}

func (r *ConnectionRegistry) Unbind(id domain.ConnID) {
	if e, ok := r.entries[id]; ok {
		e.identity = domain.Identity{}
		e.bound = false
	}
}

// IDs returns a snapshot of every known handle.
func (r *ConnectionRegistry) IDs() []domain.ConnID {
	return lo.Keys(r.entries)
}

func (r *ConnectionRegistry) Len() int {
	return len(r.entries)
}

func (r *ConnectionRegistry) BoundLen() int {
	return lo.CountBy(lo.Values(r.entries), func(e *connEntry) bool {
		return e.bound
	})
}

// TourRegistry maps a tour id to its Tour. Empty tours are never kept.
type TourRegistry struct {
	tours map[domain.TourID]*domain.Tour
}

func NewTourRegistry() *TourRegistry {
	return &TourRegistry{
		tours: make(map[domain.TourID]*domain.Tour),
	}
}

func (r *TourRegistry) Get(id domain.TourID) (*domain.Tour, bool) {
	t, ok := r.tours[id]
	return t, ok
}

// Ensure returns the tour for id, creating an empty one when absent.
func (r *TourRegistry) Ensure(id domain.TourID) (*domain.Tour, bool) {
	if t, ok := r.tours[id]; ok {
		return t, false
	}
	t := domain.NewTour(id)
	r.tours[id] = t
	return t, true
}

// DeleteIfEmpty removes t when it has no guide and no participants. Only the
// registered instance for t.ID is removed.
func (r *TourRegistry) DeleteIfEmpty(t *domain.Tour) bool {
	if !t.Empty() {
		return false
	}
	return r.Delete(t)
}

func (r *TourRegistry) Delete(t *domain.Tour) bool {
	if current, ok := r.tours[t.ID]; !ok || current != t {
		return false
	}
	delete(r.tours, t.ID)
	return true
}

func (r *TourRegistry) Len() int {
	return len(r.tours)
}
