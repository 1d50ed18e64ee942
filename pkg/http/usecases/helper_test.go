package usecases

import (
	"context"
	"testing"
	"time"

	"github.com/sentiero-app/sentiero/pkg"
	"github.com/sentiero-app/sentiero/pkg/datastructure"
	"github.com/sentiero-app/sentiero/pkg/geo"
	"github.com/sentiero-app/sentiero/pkg/simulation"
	"github.com/sentiero-app/sentiero/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertErrCode(t *testing.T, err error, code error) {
	t.Helper()
	var uerr *util.Error
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, code, uerr.Code())
}

// fakePlanner serves canned candidates and records each call.
type fakePlanner struct {
	routes []*datastructure.RouteCandidate
	err    error
	calls  int
}

func (f *fakePlanner) ComputeRoutes(ctx context.Context, origin,
	destination geo.Coordinate) ([]*datastructure.RouteCandidate, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.routes, nil
}

type fakePlannerMetrics struct {
	plans          int
	failures       int
	observed       []time.Duration
	transitOmitted int
}

func (m *fakePlannerMetrics) PlansInc()        { m.plans++ }
func (m *fakePlannerMetrics) PlanFailuresInc() { m.failures++ }
func (m *fakePlannerMetrics) PlanObserve(d time.Duration) {
	m.observed = append(m.observed, d)
}
func (m *fakePlannerMetrics) TransitOmittedInc() { m.transitOmitted++ }

type fakeTripMetrics struct {
	created     int
	transitions map[string]int
}

func newFakeTripMetrics() *fakeTripMetrics {
	return &fakeTripMetrics{transitions: make(map[string]int)}
}

func (m *fakeTripMetrics) TripCreatedInc()                { m.created++ }
func (m *fakeTripMetrics) TripTransitionInc(event string) { m.transitions[event]++ }

type fakeSimulationMetrics struct {
	started int
	active  []int
}

func (m *fakeSimulationMetrics) SimulationStartedInc()      { m.started++ }
func (m *fakeSimulationMetrics) SimulationsActiveSet(n int) { m.active = append(m.active, n) }

func (m *fakeSimulationMetrics) lastActive() int {
	if len(m.active) == 0 {
		return -1
	}
	return m.active[len(m.active)-1]
}

// stoppedClock hands out tickers that never fire, so every playback stays
// frozen at its initial frame and the tests stay deterministic.
type stoppedClock struct{}

func (stoppedClock) NewTicker(d time.Duration) simulation.Ticker {
	return stoppedTicker{ch: make(chan time.Time)}
}

type stoppedTicker struct {
	ch chan time.Time
}

func (t stoppedTicker) C() <-chan time.Time { return t.ch }

func (t stoppedTicker) Stop() {}

func walkGeometry() []geo.Coordinate {
	return []geo.Coordinate{
		geo.NewCoordinate(41.1000, 16.8700),
		geo.NewCoordinate(41.1010, 16.8700),
	}
}

func walkCandidate(id string) *datastructure.RouteCandidate {
	steps := []datastructure.Step{
		datastructure.NewStep("Head north", "via Sparano", 111.0, 89.0, pkg.WALK_MODE, ""),
	}
	return datastructure.NewRouteCandidate(id, pkg.FAST_ROUTE, walkGeometry(),
		111.0, 89.0, 72, nil, steps, nil)
}

func transitCandidate(id string) *datastructure.RouteCandidate {
	boarding := datastructure.NewTransitStop("stop-1", "Corso Cavour",
		geo.NewCoordinate(41.1205, 16.8731), []string{"12"})
	alighting := datastructure.NewTransitStop("stop-2", "Piazza Moro",
		geo.NewCoordinate(41.1171, 16.8719), []string{"12"})
	segment := datastructure.NewTransitSegment("12", boarding, alighting,
		[]geo.Coordinate{boarding.GetLocation(), alighting.GetLocation()}, 300.0)

	return datastructure.NewRouteCandidate(id, pkg.TRANSIT_ROUTE, walkGeometry(),
		1500.0, 900.0, 80, nil, nil, []datastructure.TransitSegment{segment})
}
