package planner

import (
	"context"
	"errors"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/samber/lo"
	"github.com/sentiero-app/sentiero/pkg"
	"github.com/sentiero-app/sentiero/pkg/concurrent"
	"github.com/sentiero-app/sentiero/pkg/datastructure"
	"github.com/sentiero-app/sentiero/pkg/geo"
	"github.com/sentiero-app/sentiero/pkg/guidance"
	"github.com/sentiero-app/sentiero/pkg/safety"
	"github.com/sentiero-app/sentiero/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const MAX_SCORE_WORKERS = 8

// RouteSynthesizer. builds the walking alternatives between two points, scores
// each one, labels the fastest and the safest, and appends a bus option when
// the stop registry offers one. the synthesizer is stateless apart from the
// score memo and safe for concurrent use.
type RouteSynthesizer struct {
	provider PathProvider
	stops    StopDirectory
	scorer   *safety.RouteScorer
	log      *zap.Logger
	memo     *xsync.MapOf[string, *safety.RouteAnalysis]
}

// NewRouteSynthesizer. stops may be nil, plans are then walking-only.
func NewRouteSynthesizer(provider PathProvider, stops StopDirectory,
	scorer *safety.RouteScorer, log *zap.Logger) *RouteSynthesizer {
	return &RouteSynthesizer{
		provider: provider,
		stops:    stops,
		scorer:   scorer,
		log:      log,
		memo:     xsync.NewMapOf[string, *safety.RouteAnalysis](),
	}
}

type scoreJob struct {
	idx      int
	geometry []geo.Coordinate
}

type scoreResult struct {
	idx      int
	analysis *safety.RouteAnalysis
}

// ComputeRoutes. plan every route candidate between origin and destination.
// walking alternatives come first, the bus option last. returns
// util.ErrNotFound when not even one walking path exists.
func (rs *RouteSynthesizer) ComputeRoutes(ctx context.Context, origin,
	destination geo.Coordinate) ([]*datastructure.RouteCandidate, error) {
	paths, err := rs.provider.WalkingPaths(ctx, origin, destination)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, util.WrapErrorf(errors.New("provider returned no alternatives"),
			util.ErrNotFound, "no walking path between (%f, %f) and (%f, %f)",
			origin.GetLat(), origin.GetLon(), destination.GetLat(), destination.GetLon())
	}

	analyses := rs.scoreAll(paths)

	candidates := make([]*datastructure.RouteCandidate, 0, len(paths)+1)
	for i, path := range paths {
		candidates = append(candidates, rs.buildWalkingCandidate(path, analyses[i]))
	}

	rs.classify(candidates)

	if transit, ok := rs.buildTransitCandidate(ctx, origin, destination); ok {
		candidates = append(candidates, transit)
	}

	return candidates, nil
}

// scoreAll. score the alternatives on the worker pool, results land back in
// input order.
func (rs *RouteSynthesizer) scoreAll(paths []datastructure.PathAlternative) []*safety.RouteAnalysis {
	numWorkers := util.Min(len(paths), MAX_SCORE_WORKERS)
	wp := concurrent.NewWorkerPool[scoreJob, scoreResult](numWorkers, len(paths))

	for i, path := range paths {
		wp.AddJob(scoreJob{idx: i, geometry: path.GetGeometry()})
	}
	wp.Close()
	wp.Start(func(job scoreJob) scoreResult {
		return scoreResult{idx: job.idx, analysis: rs.scoreCached(job.geometry)}
	})
	wp.Wait()

	analyses := make([]*safety.RouteAnalysis, len(paths))
	for res := range wp.CollectResults() {
		analyses[res.idx] = res.analysis
	}
	return analyses
}

// scoreCached. identical geometries share one analysis, keyed by route id.
func (rs *RouteSynthesizer) scoreCached(geometry []geo.Coordinate) *safety.RouteAnalysis {
	id := RouteID(geometry)
	analysis, _ := rs.memo.LoadOrCompute(id, func() *safety.RouteAnalysis {
		return rs.scorer.ScoreRoute(geometry)
	})
	return analysis
}

// buildWalkingCandidate. durations always come from distance at child walking
// speed, the upstream router assumes adult pace.
func (rs *RouteSynthesizer) buildWalkingCandidate(path datastructure.PathAlternative,
	analysis *safety.RouteAnalysis) *datastructure.RouteCandidate {
	duration := path.GetDistanceMeters() / pkg.WALKING_SPEED_MS
	steps := guidance.WalkingSteps(path.GetLegs())

	return datastructure.NewRouteCandidate(RouteID(path.GetGeometry()), pkg.FAST_ROUTE,
		path.GetGeometry(), path.GetDistanceMeters(), duration,
		analysis.GetSafetyScore(), analysis.GetWarnings(), steps, nil)
}

// classify. the highest score becomes the safe route, the lowest duration the
// fast one. when one candidate wins both it stays fast and the best of the
// others becomes safe. ties keep input order.
func (rs *RouteSynthesizer) classify(candidates []*datastructure.RouteCandidate) {
	if len(candidates) == 0 {
		return
	}

	safest := lo.MaxBy(candidates, func(a, b *datastructure.RouteCandidate) bool {
		return a.GetSafetyScore() > b.GetSafetyScore()
	})
	fastest := lo.MinBy(candidates, func(a, b *datastructure.RouteCandidate) bool {
		return a.GetTotalDurationSeconds() < b.GetTotalDurationSeconds()
	})

	if safest == fastest && len(candidates) > 1 {
		rest := lo.Filter(candidates, func(c *datastructure.RouteCandidate, _ int) bool {
			return c != fastest
		})
		safest = lo.MaxBy(rest, func(a, b *datastructure.RouteCandidate) bool {
			return a.GetSafetyScore() > b.GetSafetyScore()
		})
	}

	fastest.SetKind(pkg.FAST_ROUTE)
	if safest != fastest {
		safest.SetKind(pkg.SAFE_ROUTE)
	}
}

// buildTransitCandidate. walk to a nearby stop, ride the first line shared
// with a stop near the destination, walk the rest. any missing piece drops the
// option without failing the plan.
func (rs *RouteSynthesizer) buildTransitCandidate(ctx context.Context, origin,
	destination geo.Coordinate) (*datastructure.RouteCandidate, bool) {
	if rs.stops == nil {
		return nil, false
	}

	originStops := rs.stops.StopsNear(origin, pkg.STOP_SEARCH_RADIUS_KM)
	if len(originStops) == 0 {
		rs.log.Debug("no stops near origin, skipping transit option")
		return nil, false
	}
	destStops := rs.stops.StopsNear(destination, pkg.STOP_SEARCH_RADIUS_KM)
	if len(destStops) == 0 {
		rs.log.Debug("no stops near destination, skipping transit option")
		return nil, false
	}

	line, fromStop, toStop, ok := rs.stops.FirstCommonLine(originStops, destStops)
	if !ok {
		rs.log.Debug("no shared line between origin and destination stops")
		return nil, false
	}

	var walkToStop, walkFromStop datastructure.PathAlternative
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		paths, err := rs.provider.WalkingPaths(gctx, origin, fromStop.GetLocation())
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return errors.New("no walking path to boarding stop")
		}
		walkToStop = paths[0]
		return nil
	})
	g.Go(func() error {
		paths, err := rs.provider.WalkingPaths(gctx, toStop.GetLocation(), destination)
		if err != nil {
			return err
		}
		if len(paths) == 0 {
			return errors.New("no walking path from alighting stop")
		}
		walkFromStop = paths[0]
		return nil
	})
	if err := g.Wait(); err != nil {
		rs.log.Debug("walking leg for transit option failed", zap.Error(err))
		return nil, false
	}

	rideGeometry := []geo.Coordinate{fromStop.GetLocation(), toStop.GetLocation()}
	rideMeters := geo.TotalLengthMeters(rideGeometry)
	rideDuration := (rideMeters/1000.0)/pkg.TRANSIT_SPEED_KMH*3600.0 + pkg.TRANSIT_DWELL_SECONDS
	segment := datastructure.NewTransitSegment(line, fromStop, toStop, rideGeometry, rideDuration)

	geometry := make([]geo.Coordinate, 0,
		len(walkToStop.GetGeometry())+len(rideGeometry)+len(walkFromStop.GetGeometry()))
	geometry = append(geometry, walkToStop.GetGeometry()...)
	geometry = append(geometry, rideGeometry...)
	geometry = append(geometry, walkFromStop.GetGeometry()...)

	steps := guidance.WalkingSteps(walkToStop.GetLegs())
	steps = append(steps, guidance.TransitSteps(segment)...)
	steps = append(steps, guidance.WalkingSteps(walkFromStop.GetLegs())...)

	distance := walkToStop.GetDistanceMeters() + rideMeters + walkFromStop.GetDistanceMeters()
	duration := walkToStop.GetDistanceMeters()/pkg.WALKING_SPEED_MS + rideDuration +
		walkFromStop.GetDistanceMeters()/pkg.WALKING_SPEED_MS

	analysis := rs.scoreCached(geometry)

	candidate := datastructure.NewRouteCandidate(RouteID(geometry), pkg.TRANSIT_ROUTE,
		geometry, distance, duration, analysis.GetSafetyScore(), analysis.GetWarnings(),
		steps, []datastructure.TransitSegment{segment})

	rs.log.Debug("transit option built",
		zap.String("line", line),
		zap.String("fromStop", fromStop.GetName()),
		zap.String("toStop", toStop.GetName()),
		zap.Float64("durationSeconds", duration))
	return candidate, true
}
