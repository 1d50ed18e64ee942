package usecases

import (
	"context"
	"time"

	"github.com/sentiero-app/sentiero/pkg/datastructure"
	"github.com/sentiero-app/sentiero/pkg/geo"
)

// RoutePlanner is the planning engine behind the navigation endpoints.
type RoutePlanner interface {
	ComputeRoutes(ctx context.Context, origin, destination geo.Coordinate) ([]*datastructure.RouteCandidate, error)
}

// PlannerMetrics, TripMetrics and SimulationMetrics are the slices of the
// metrics collector each service reports to. All tolerate a nil collector.
type PlannerMetrics interface {
	PlansInc()
	PlanFailuresInc()
	PlanObserve(d time.Duration)
	TransitOmittedInc()
}

type TripMetrics interface {
	TripCreatedInc()
	TripTransitionInc(event string)
}

type SimulationMetrics interface {
	SimulationStartedInc()
	SimulationsActiveSet(n int)
}
