package usecases

import (
	"context"
	"errors"

	"github.com/sentiero-app/sentiero/pkg/datastructure"
	"github.com/sentiero-app/sentiero/pkg/geo"
	"github.com/sentiero-app/sentiero/pkg/simulation"
	"github.com/sentiero-app/sentiero/pkg/trip"
	"github.com/sentiero-app/sentiero/pkg/util"
	"go.uber.org/zap"
)

var ErrRouteNotInPlan = errors.New("route id not produced by this plan")

// TripService. creates trips by re-planning the requested journey and pinning
// the chosen candidate, then walks each trip through its phase machine.
type TripService struct {
	log      *zap.Logger
	registry *trip.Registry
	planner  RoutePlanner
	manager  *simulation.Manager
	metrics  TripMetrics
}

func NewTripService(log *zap.Logger, registry *trip.Registry, planner RoutePlanner,
	manager *simulation.Manager, metrics TripMetrics) *TripService {
	return &TripService{
		log:      log,
		registry: registry,
		planner:  planner,
		manager:  manager,
		metrics:  metrics,
	}
}

// CreateTrip re-plans origin->destination and assigns the candidate whose id
// matches routeID. Route ids derive from geometry alone, so a candidate from
// an earlier plan response resolves to the same id here.
func (s *TripService) CreateTrip(ctx context.Context, origin, destination geo.Coordinate,
	routeID string) (*trip.Trip, error) {
	routes, err := s.planner.ComputeRoutes(ctx, origin, destination)
	if err != nil {
		return nil, err
	}

	var chosen *datastructure.RouteCandidate
	for _, route := range routes {
		if route.GetID() == routeID {
			chosen = route
			break
		}
	}
	if chosen == nil {
		return nil, util.WrapErrorf(ErrRouteNotInPlan, util.ErrNotFound,
			"route %s is not among the %d candidates for this origin and destination",
			routeID, len(routes))
	}

	created := s.registry.Create()
	if _, err := created.Assign(chosen); err != nil {
		s.registry.Remove(created.GetID())
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.TripCreatedInc()
	}

	s.log.Info("trip created",
		zap.String("tripId", created.GetID()),
		zap.String("routeId", routeID),
		zap.String("phase", created.GetPhase().String()))

	return created, nil
}

func (s *TripService) GetTrip(tripID string) (*trip.Trip, error) {
	return s.registry.Get(tripID)
}

// AdvanceTrip applies one journey event to the trip's phase machine.
func (s *TripService) AdvanceTrip(tripID, event string) (trip.Phase, error) {
	found, err := s.registry.Get(tripID)
	if err != nil {
		return trip.PHASE_IDLE, err
	}

	parsed, err := trip.ParseEvent(event)
	if err != nil {
		return trip.PHASE_IDLE, err
	}

	phase, err := found.Advance(parsed)
	if err != nil {
		return trip.PHASE_IDLE, err
	}

	if s.metrics != nil {
		s.metrics.TripTransitionInc(event)
	}

	s.log.Info("trip advanced",
		zap.String("tripId", tripID),
		zap.String("event", event),
		zap.String("phase", phase.String()))

	return phase, nil
}

// RemoveTrip drops the trip and halts any playback still attached to it.
func (s *TripService) RemoveTrip(tripID string) error {
	if _, err := s.registry.Get(tripID); err != nil {
		return err
	}

	if err := s.manager.Stop(tripID); err != nil {
		s.log.Debug("no simulation to stop for removed trip", zap.String("tripId", tripID))
	}

	s.registry.Remove(tripID)
	s.log.Info("trip removed", zap.String("tripId", tripID))
	return nil
}
