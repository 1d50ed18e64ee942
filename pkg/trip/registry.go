package trip

import (
	"errors"
	"sync"

	"github.com/sentiero-app/sentiero/pkg/util"

	"github.com/google/uuid"
)

var ErrTripMissing = errors.New("trip not found")

// Registry holds the in-memory trips keyed by id. Nothing is persisted,
// trips live for the lifetime of the process.
type Registry struct {
	mu    sync.RWMutex
	trips map[string]*Trip
}

func NewRegistry() *Registry {
	return &Registry{
		trips: make(map[string]*Trip),
	}
}

// Create registers a fresh idle trip under a generated id.
func (r *Registry) Create() *Trip {
	t := NewTrip(uuid.NewString())

	r.mu.Lock()
	r.trips[t.GetID()] = t
	r.mu.Unlock()

	return t
}

func (r *Registry) Get(id string) (*Trip, error) {
	r.mu.RLock()
	t, ok := r.trips[id]
	r.mu.RUnlock()
	if !ok {
		return nil, util.WrapErrorf(ErrTripMissing, util.ErrNotFound, "no trip with id %s", id)
	}
	return t, nil
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.trips, id)
	r.mu.Unlock()
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.trips)
}
