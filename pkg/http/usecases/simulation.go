package usecases

import (
	"context"
	"errors"

	"github.com/sentiero-app/sentiero/pkg/datastructure"
	"github.com/sentiero-app/sentiero/pkg/simulation"
	"github.com/sentiero-app/sentiero/pkg/trip"
	"github.com/sentiero-app/sentiero/pkg/util"
	"go.uber.org/zap"
)

var (
	ErrTripWithoutRoute  = errors.New("trip has no assigned route")
	ErrRouteMismatch     = errors.New("route id does not match the trip's assigned route")
	ErrInvalidMultiplier = errors.New("speed multiplier must be positive")
)

// SimulationService. drives trip playbacks through the simulation manager.
// Every operation answers with the snapshot taken after it applied.
type SimulationService struct {
	log      *zap.Logger
	manager  *simulation.Manager
	registry *trip.Registry
	metrics  SimulationMetrics
}

func NewSimulationService(log *zap.Logger, manager *simulation.Manager,
	registry *trip.Registry, metrics SimulationMetrics) *SimulationService {
	return &SimulationService{
		log:      log,
		manager:  manager,
		registry: registry,
		metrics:  metrics,
	}
}

// StartSimulation begins playback along the route assigned to the trip.
// routeID is optional; when given it must name that same route.
func (s *SimulationService) StartSimulation(ctx context.Context, tripID,
	routeID string) (datastructure.SimulationSnapshot, error) {
	var empty datastructure.SimulationSnapshot

	found, err := s.registry.Get(tripID)
	if err != nil {
		return empty, err
	}

	route := found.GetRoute()
	if route == nil {
		return empty, util.WrapErrorf(ErrTripWithoutRoute, util.ErrConflict,
			"trip %s has no assigned route to play back", tripID)
	}
	if routeID != "" && routeID != route.GetID() {
		return empty, util.WrapErrorf(ErrRouteMismatch, util.ErrBadParamInput,
			"route %s is not the route assigned to trip %s", routeID, tripID)
	}

	sim, err := s.manager.StartSimulation(ctx, tripID, route.GetGeometry())
	if err != nil {
		return empty, err
	}

	if s.metrics != nil {
		s.metrics.SimulationStartedInc()
		s.metrics.SimulationsActiveSet(s.manager.ActiveCount())
	}

	return sim.Snapshot(), nil
}

func (s *SimulationService) GetSimulation(tripID string) (datastructure.SimulationSnapshot, error) {
	sim, err := s.manager.Get(tripID)
	if err != nil {
		return datastructure.SimulationSnapshot{}, err
	}
	return sim.Snapshot(), nil
}

func (s *SimulationService) PauseSimulation(tripID string) (datastructure.SimulationSnapshot, error) {
	sim, err := s.manager.Get(tripID)
	if err != nil {
		return datastructure.SimulationSnapshot{}, err
	}

	sim.Pause()
	s.setActiveGauge()
	return sim.Snapshot(), nil
}

func (s *SimulationService) ResumeSimulation(tripID string) (datastructure.SimulationSnapshot, error) {
	sim, err := s.manager.Get(tripID)
	if err != nil {
		return datastructure.SimulationSnapshot{}, err
	}

	sim.Resume()
	s.setActiveGauge()
	return sim.Snapshot(), nil
}

// StopSimulation halts and removes the playback. The returned snapshot is the
// reset state: idle, zero progress, no position.
func (s *SimulationService) StopSimulation(tripID string) (datastructure.SimulationSnapshot, error) {
	sim, err := s.manager.Get(tripID)
	if err != nil {
		return datastructure.SimulationSnapshot{}, err
	}

	if err := s.manager.Stop(tripID); err != nil {
		return datastructure.SimulationSnapshot{}, err
	}

	s.setActiveGauge()
	return sim.Snapshot(), nil
}

func (s *SimulationService) DeviateSimulation(tripID string) (datastructure.SimulationSnapshot, error) {
	sim, err := s.manager.Get(tripID)
	if err != nil {
		return datastructure.SimulationSnapshot{}, err
	}

	sim.Deviate()
	return sim.Snapshot(), nil
}

func (s *SimulationService) SetSimulationSpeed(tripID string,
	multiplier float64) (datastructure.SimulationSnapshot, error) {
	if multiplier <= 0 {
		return datastructure.SimulationSnapshot{}, util.WrapErrorf(ErrInvalidMultiplier,
			util.ErrBadParamInput, "speed multiplier %f must be positive", multiplier)
	}

	sim, err := s.manager.Get(tripID)
	if err != nil {
		return datastructure.SimulationSnapshot{}, err
	}

	sim.SetSpeed(multiplier)
	return sim.Snapshot(), nil
}

func (s *SimulationService) setActiveGauge() {
	if s.metrics != nil {
		s.metrics.SimulationsActiveSet(s.manager.ActiveCount())
	}
}
