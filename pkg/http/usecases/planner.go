package usecases

import (
	"context"
	"time"

	"github.com/sentiero-app/sentiero/pkg/datastructure"
	"github.com/sentiero-app/sentiero/pkg/geo"
	"github.com/sentiero-app/sentiero/pkg/safety"
	"go.uber.org/zap"
)

// PlanningService. plans route candidates and answers the point-risk
// diagnostics queries straight from the safety dataset.
type PlanningService struct {
	log       *zap.Logger
	planner   RoutePlanner
	riskModel *safety.RiskModel
	dataset   *safety.SafetyDataset
	metrics   PlannerMetrics
}

func NewPlanningService(log *zap.Logger, planner RoutePlanner, riskModel *safety.RiskModel,
	dataset *safety.SafetyDataset, metrics PlannerMetrics) *PlanningService {
	return &PlanningService{
		log:       log,
		planner:   planner,
		riskModel: riskModel,
		dataset:   dataset,
		metrics:   metrics,
	}
}

func (s *PlanningService) PlanRoutes(ctx context.Context, origin,
	destination geo.Coordinate) ([]*datastructure.RouteCandidate, error) {
	start := time.Now()

	routes, err := s.planner.ComputeRoutes(ctx, origin, destination)

	if s.metrics != nil {
		s.metrics.PlanObserve(time.Since(start))
	}
	if err != nil {
		if s.metrics != nil {
			s.metrics.PlanFailuresInc()
		}
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.PlansInc()
		if !hasTransitCandidate(routes) {
			s.metrics.TransitOmittedInc()
		}
	}

	s.log.Info("planned routes",
		zap.Float64("originLat", origin.GetLat()), zap.Float64("originLon", origin.GetLon()),
		zap.Float64("destinationLat", destination.GetLat()), zap.Float64("destinationLon", destination.GetLon()),
		zap.Int("candidates", len(routes)),
		zap.Duration("took", time.Since(start)))

	return routes, nil
}

func hasTransitCandidate(routes []*datastructure.RouteCandidate) bool {
	for _, route := range routes {
		if route.HasTransit() {
			return true
		}
	}
	return false
}

func (s *PlanningService) PointRisk(p geo.Coordinate) safety.RiskBreakdown {
	return s.riskModel.Breakdown(p)
}

func (s *PlanningService) IncidentHeatmap() []geo.Coordinate {
	return s.dataset.GetIncidentPoints()
}

func (s *PlanningService) DangerousStreets() []safety.DangerousStreet {
	return s.dataset.GetDangerousStreets()
}
