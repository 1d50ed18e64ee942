package simulation

import (
	"context"
	"errors"
	"sync"

	"github.com/sentiero-app/sentiero/pkg/datastructure"
	"github.com/sentiero-app/sentiero/pkg/geo"
	"github.com/sentiero-app/sentiero/pkg/util"

	"go.uber.org/zap"
)

var (
	ErrGeometryTooShort  = errors.New("route geometry has fewer than two points")
	ErrSimulationActive  = errors.New("simulation already active")
	ErrSimulationMissing = errors.New("simulation not found")
)

// Manager owns one Simulator per trip. Frames from every simulator funnel
// into the shared sink.
type Manager struct {
	log       *zap.Logger
	clock     Clock
	rng       func() float64
	sink      PositionSink
	onArrival ArrivalCallback

	mu   sync.RWMutex
	sims map[string]*Simulator
}

func NewManager(sink PositionSink, onArrival ArrivalCallback, clock Clock,
	rng func() float64, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		log:       log,
		clock:     clock,
		rng:       rng,
		sink:      sink,
		onArrival: onArrival,
		sims:      make(map[string]*Simulator),
	}
}

// StartSimulation creates (or restarts) the playback for a trip. A trip whose
// simulation is still running or paused cannot be started again.
func (m *Manager) StartSimulation(ctx context.Context, tripID string,
	geometry []geo.Coordinate) (*Simulator, error) {
	if len(geometry) < 2 {
		return nil, util.WrapErrorf(ErrGeometryTooShort, util.ErrBadParamInput,
			"route geometry for trip %s has fewer than two points", tripID)
	}

	m.mu.Lock()
	if existing, ok := m.sims[tripID]; ok {
		status := existing.Snapshot().GetStatus()
		if status == datastructure.SIMULATION_RUNNING || status == datastructure.SIMULATION_PAUSED {
			m.mu.Unlock()
			return nil, util.WrapErrorf(ErrSimulationActive, util.ErrConflict,
				"simulation for trip %s is already active", tripID)
		}
	}

	sim := NewSimulator(tripID, geometry, m.sink, m.onArrival, m.clock, m.rng, m.log)
	m.sims[tripID] = sim
	m.mu.Unlock()

	sim.Start(ctx)
	m.log.Info("simulation started",
		zap.String("tripId", tripID),
		zap.Int("geometryPoints", len(geometry)))
	return sim, nil
}

func (m *Manager) Get(tripID string) (*Simulator, error) {
	m.mu.RLock()
	sim, ok := m.sims[tripID]
	m.mu.RUnlock()
	if !ok {
		return nil, util.WrapErrorf(ErrSimulationMissing, util.ErrNotFound,
			"no simulation for trip %s", tripID)
	}
	return sim, nil
}

// Stop halts the trip's playback and removes it from the manager.
func (m *Manager) Stop(tripID string) error {
	m.mu.Lock()
	sim, ok := m.sims[tripID]
	if ok {
		delete(m.sims, tripID)
	}
	m.mu.Unlock()

	if !ok {
		return util.WrapErrorf(ErrSimulationMissing, util.ErrNotFound,
			"no simulation for trip %s", tripID)
	}

	sim.Stop()
	m.log.Info("simulation stopped", zap.String("tripId", tripID))
	return nil
}

// StopAll halts every playback. Used on server shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	sims := make([]*Simulator, 0, len(m.sims))
	for _, sim := range m.sims {
		sims = append(sims, sim)
	}
	m.sims = make(map[string]*Simulator)
	m.mu.Unlock()

	for _, sim := range sims {
		sim.Stop()
	}
}

// ActiveCount reports how many simulations are running or paused.
func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	active := 0
	for _, sim := range m.sims {
		status := sim.Snapshot().GetStatus()
		if status == datastructure.SIMULATION_RUNNING || status == datastructure.SIMULATION_PAUSED {
			active++
		}
	}
	return active
}
