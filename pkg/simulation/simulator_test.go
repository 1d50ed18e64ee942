package simulation

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/sentiero-app/sentiero/pkg"
	"github.com/sentiero-app/sentiero/pkg/datastructure"
	"github.com/sentiero-app/sentiero/pkg/geo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type manualTicker struct {
	ch chan time.Time
}

func (m *manualTicker) C() <-chan time.Time {
	return m.ch
}

func (m *manualTicker) Stop() {}

// manualClock hands out tickers that only fire when the test says so.
type manualClock struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

func newManualClock() *manualClock {
	return &manualClock{}
}

func (c *manualClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	ticker := &manualTicker{ch: make(chan time.Time)}
	c.tickers = append(c.tickers, ticker)
	return ticker
}

// tick fires the most recently created ticker and blocks until the loop
// picked the tick up.
func (c *manualClock) tick(t *testing.T) {
	t.Helper()
	c.mu.Lock()
	require.NotEmpty(t, c.tickers, "no ticker created yet")
	ticker := c.tickers[len(c.tickers)-1]
	c.mu.Unlock()

	select {
	case ticker.ch <- time.Now():
	case <-time.After(2 * time.Second):
		t.Fatal("tick not consumed, loop is gone")
	}
}

func nextFrame(t *testing.T, frames <-chan datastructure.SimulationSnapshot) datastructure.SimulationSnapshot {
	t.Helper()
	select {
	case frame := <-frames:
		return frame
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for position frame")
		return datastructure.SimulationSnapshot{}
	}
}

func assertNoFrame(t *testing.T, frames <-chan datastructure.SimulationSnapshot) {
	t.Helper()
	select {
	case frame := <-frames:
		t.Fatalf("unexpected frame with status %s", frame.GetStatus())
	case <-time.After(50 * time.Millisecond):
	}
}

func seqRNG(vals ...float64) func() float64 {
	idx := 0
	return func() float64 {
		v := vals[idx%len(vals)]
		idx++
		return v
	}
}

func testRoute() []geo.Coordinate {
	return []geo.Coordinate{
		geo.NewCoordinate(41.0000, 16.8700),
		geo.NewCoordinate(41.0010, 16.8700),
	}
}

type simHarness struct {
	sim      *Simulator
	clock    *manualClock
	frames   chan datastructure.SimulationSnapshot
	arrivals chan string
}

func newSimHarness(rng func() float64) *simHarness {
	h := &simHarness{
		clock:    newManualClock(),
		frames:   make(chan datastructure.SimulationSnapshot, 64),
		arrivals: make(chan string, 4),
	}
	sink := func(tripID string, snapshot datastructure.SimulationSnapshot) {
		h.frames <- snapshot
	}
	onArrival := func(tripID string) {
		h.arrivals <- tripID
	}
	h.sim = NewSimulator("trip-1", testRoute(), sink, onArrival, h.clock, rng, zap.NewNop())
	return h
}

func TestSimulatorRunsToCompletion(t *testing.T) {
	h := newSimHarness(nil)
	total := geo.TotalLengthMeters(testRoute())

	h.sim.SetSpeed(100)
	metersPerTick := pkg.WALKING_SPEED_MS * 100 * TICK_INTERVAL.Seconds()
	wantTicks := int(math.Ceil(total / metersPerTick))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.sim.Start(ctx)

	initial := nextFrame(t, h.frames)
	assert.Equal(t, datastructure.SIMULATION_RUNNING, initial.GetStatus())
	assert.Equal(t, 0.0, initial.GetProgress())
	require.NotNil(t, initial.GetPosition())
	assert.InDelta(t, 41.0000, initial.GetPosition().GetLat(), 1e-9)
	assert.InDelta(t, 100.0, initial.GetSpeedMultiplier(), 1e-9)
	assert.InDelta(t, 0.0, initial.GetBearing(), 0.5, "due north segment")

	ticks := 0
	var last datastructure.SimulationSnapshot
	for {
		require.Less(t, ticks, wantTicks+5, "simulation never completed")
		h.clock.tick(t)
		last = nextFrame(t, h.frames)
		ticks++
		if last.GetStatus() == datastructure.SIMULATION_COMPLETED {
			break
		}
		wantProgress := float64(ticks) * metersPerTick / total
		assert.InDelta(t, wantProgress, last.GetProgress(), 1e-9)
	}

	assert.Equal(t, wantTicks, ticks)
	assert.Equal(t, 1.0, last.GetProgress())
	require.NotNil(t, last.GetPosition())
	assert.InDelta(t, 41.0010, last.GetPosition().GetLat(), 1e-7)
	assert.Equal(t, "trip-1", <-h.arrivals)

	// extra ticks after arrival move nothing and never re-fire the callback
	h.clock.tick(t)
	h.clock.tick(t)
	assertNoFrame(t, h.frames)
	select {
	case <-h.arrivals:
		t.Fatal("arrival callback fired twice")
	default:
	}
	assert.Equal(t, datastructure.SIMULATION_COMPLETED, h.sim.Snapshot().GetStatus())
}

func TestSimulatorPauseResume(t *testing.T) {
	h := newSimHarness(nil)
	h.sim.SetSpeed(100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.sim.Start(ctx)
	nextFrame(t, h.frames)

	h.clock.tick(t)
	first := nextFrame(t, h.frames)
	require.Greater(t, first.GetProgress(), 0.0)

	h.sim.Pause()
	assert.Equal(t, datastructure.SIMULATION_PAUSED, h.sim.Snapshot().GetStatus())

	// ticks while paused hold the position
	h.clock.tick(t)
	h.clock.tick(t)
	assertNoFrame(t, h.frames)
	assert.Equal(t, first.GetProgress(), h.sim.Snapshot().GetProgress())

	// pausing again changes nothing
	h.sim.Pause()
	assert.Equal(t, datastructure.SIMULATION_PAUSED, h.sim.Snapshot().GetStatus())

	h.sim.Resume()
	assert.Equal(t, datastructure.SIMULATION_RUNNING, h.sim.Snapshot().GetStatus())

	h.clock.tick(t)
	resumed := nextFrame(t, h.frames)
	assert.Greater(t, resumed.GetProgress(), first.GetProgress())

	// resuming a running simulation is a no-op
	h.sim.Resume()
	assert.Equal(t, datastructure.SIMULATION_RUNNING, h.sim.Snapshot().GetStatus())
}

func TestSimulatorStopResetsStateAndKeepsSpeed(t *testing.T) {
	h := newSimHarness(nil)
	h.sim.SetSpeed(100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.sim.Start(ctx)
	nextFrame(t, h.frames)

	h.clock.tick(t)
	moving := nextFrame(t, h.frames)
	require.Greater(t, moving.GetProgress(), 0.0)

	h.sim.Stop()
	stopped := nextFrame(t, h.frames)
	assert.Equal(t, datastructure.SIMULATION_IDLE, stopped.GetStatus())
	assert.Nil(t, stopped.GetPosition(), "stop reports tracking inactive, not a location")
	assert.Equal(t, 0.0, stopped.GetProgress())
	assert.Equal(t, 0.0, stopped.GetBearing())
	assert.Equal(t, 0.0, stopped.GetOffRouteMeters())
	assert.InDelta(t, 100.0, stopped.GetSpeedMultiplier(), 1e-9)

	// a fresh start runs from the origin with the old multiplier
	h.sim.Start(ctx)
	restarted := nextFrame(t, h.frames)
	assert.Equal(t, datastructure.SIMULATION_RUNNING, restarted.GetStatus())
	assert.Equal(t, 0.0, restarted.GetProgress())
	require.NotNil(t, restarted.GetPosition())
	assert.InDelta(t, 41.0000, restarted.GetPosition().GetLat(), 1e-9)
	assert.InDelta(t, 100.0, restarted.GetSpeedMultiplier(), 1e-9)
}

func TestSimulatorDeviateKeepsProgress(t *testing.T) {
	// 0.9 keeps the latitude sign positive, 0.1 flips the longitude sign
	h := newSimHarness(seqRNG(0.9, 0.1))
	h.sim.SetSpeed(100)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.sim.Start(ctx)
	nextFrame(t, h.frames)

	h.clock.tick(t)
	onRoute := nextFrame(t, h.frames)
	require.NotNil(t, onRoute.GetPosition())

	h.sim.Deviate()
	deviated := nextFrame(t, h.frames)
	require.NotNil(t, deviated.GetPosition())
	assert.InDelta(t, onRoute.GetPosition().GetLat()+DEVIATION_OFFSET_DEGREES,
		deviated.GetPosition().GetLat(), 1e-9)
	assert.InDelta(t, onRoute.GetPosition().GetLon()-DEVIATION_OFFSET_DEGREES,
		deviated.GetPosition().GetLon(), 1e-9)
	assert.Equal(t, onRoute.GetProgress(), deviated.GetProgress(), "deviation must not advance progress")
	assert.Greater(t, deviated.GetOffRouteMeters(), 10.0)

	// the next tick snaps back onto the polyline
	h.clock.tick(t)
	snapped := nextFrame(t, h.frames)
	assert.Equal(t, 0.0, snapped.GetOffRouteMeters())
	assert.InDelta(t, 16.8700, snapped.GetPosition().GetLon(), 1e-9)
	assert.Greater(t, snapped.GetProgress(), deviated.GetProgress())
}

func TestSimulatorDeviateIgnoredWhenIdle(t *testing.T) {
	h := newSimHarness(seqRNG(0.9))
	h.sim.Deviate()
	assertNoFrame(t, h.frames)
	assert.Equal(t, datastructure.SIMULATION_IDLE, h.sim.Snapshot().GetStatus())
}

func TestSimulatorStartNeedsTwoPoints(t *testing.T) {
	clock := newManualClock()
	frames := make(chan datastructure.SimulationSnapshot, 4)
	sink := func(tripID string, snapshot datastructure.SimulationSnapshot) {
		frames <- snapshot
	}
	sim := NewSimulator("trip-short", []geo.Coordinate{geo.NewCoordinate(41.0, 16.87)},
		sink, nil, clock, nil, zap.NewNop())

	sim.Start(context.Background())

	assertNoFrame(t, frames)
	assert.Equal(t, datastructure.SIMULATION_IDLE, sim.Snapshot().GetStatus())
}

func TestSimulatorSetSpeedRejectsNonPositive(t *testing.T) {
	h := newSimHarness(nil)

	h.sim.SetSpeed(0)
	assert.InDelta(t, DEFAULT_SPEED_MULTIPLIER, h.sim.Snapshot().GetSpeedMultiplier(), 1e-9)

	h.sim.SetSpeed(-3)
	assert.InDelta(t, DEFAULT_SPEED_MULTIPLIER, h.sim.Snapshot().GetSpeedMultiplier(), 1e-9)

	h.sim.SetSpeed(2.5)
	assert.InDelta(t, 2.5, h.sim.Snapshot().GetSpeedMultiplier(), 1e-9)
}

func TestSimulatorSpeedTakesEffectNextTick(t *testing.T) {
	h := newSimHarness(nil)
	total := geo.TotalLengthMeters(testRoute())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	h.sim.Start(ctx)
	nextFrame(t, h.frames)

	h.clock.tick(t)
	slow := nextFrame(t, h.frames)
	slowDelta := slow.GetProgress()
	assert.InDelta(t, pkg.WALKING_SPEED_MS*TICK_INTERVAL.Seconds()/total, slowDelta, 1e-9)

	h.sim.SetSpeed(4)
	h.clock.tick(t)
	fast := nextFrame(t, h.frames)
	assert.InDelta(t, slowDelta*5, fast.GetProgress(), 1e-9, "one slow tick plus one 4x tick")
}
