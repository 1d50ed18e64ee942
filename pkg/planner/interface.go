package planner

import (
	"context"

	"github.com/sentiero-app/sentiero/pkg/datastructure"
	"github.com/sentiero-app/sentiero/pkg/geo"
)

type PathProvider interface {
	WalkingPaths(ctx context.Context, origin, destination geo.Coordinate) ([]datastructure.PathAlternative, error)
}

type StopDirectory interface {
	StopsNear(p geo.Coordinate, radiusKm float64) []datastructure.TransitStop
	FirstCommonLine(origins, destinations []datastructure.TransitStop) (string,
		datastructure.TransitStop, datastructure.TransitStop, bool)
}
