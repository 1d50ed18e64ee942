package simulation

import (
	"context"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/sentiero-app/sentiero/pkg"
	"github.com/sentiero-app/sentiero/pkg/datastructure"
	"github.com/sentiero-app/sentiero/pkg/geo"

	"go.uber.org/zap"
)

const (
	TICK_INTERVAL = 200 * time.Millisecond

	DEVIATION_OFFSET_DEGREES = 0.0005

	DEFAULT_SPEED_MULTIPLIER = 1.0
)

// PositionSink consumes one frame per position change. The snapshot carries a
// nil position exactly when tracking became inactive.
type PositionSink func(tripID string, snapshot datastructure.SimulationSnapshot)

type ArrivalCallback func(tripID string)

// Simulator replays a route geometry as a virtual walker. Progress advances
// every tick by walkingSpeed*speedMultiplier*tickSeconds and the emitted
// position is interpolated along the polyline from the cumulative distance
// table. All mutation goes through the mutex; the tick loop is the only
// goroutine that advances progress.
type Simulator struct {
	mu  sync.Mutex
	log *zap.Logger

	tripID      string
	geometry    []geo.Coordinate
	cum         []float64
	totalMeters float64

	status          datastructure.SimulationStatus
	progressMeters  float64
	position        *geo.Coordinate
	bearing         float64
	speedMultiplier float64
	offRouteMeters  float64
	arrivalFired    bool

	clock     Clock
	rng       func() float64
	sink      PositionSink
	onArrival ArrivalCallback

	cancel context.CancelFunc
	done   chan struct{}
}

func NewSimulator(tripID string, geometry []geo.Coordinate, sink PositionSink,
	onArrival ArrivalCallback, clock Clock, rng func() float64, log *zap.Logger) *Simulator {
	if clock == nil {
		clock = NewRealClock()
	}
	if rng == nil {
		rng = rand.Float64
	}
	if sink == nil {
		sink = func(string, datastructure.SimulationSnapshot) {}
	}
	if onArrival == nil {
		onArrival = func(string) {}
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Simulator{
		log:             log,
		tripID:          tripID,
		geometry:        geometry,
		cum:             geo.CumulativeDistances(geometry),
		totalMeters:     geo.TotalLengthMeters(geometry),
		status:          datastructure.SIMULATION_IDLE,
		speedMultiplier: DEFAULT_SPEED_MULTIPLIER,
		clock:           clock,
		rng:             rng,
		sink:            sink,
		onArrival:       onArrival,
	}
}

func (s *Simulator) GetTripID() string {
	return s.tripID
}

// Start resets progress to the first geometry point and begins ticking. A
// previously set speed multiplier survives the reset. Routes with fewer than
// two points cannot be interpolated, so starting them is a no-op.
func (s *Simulator) Start(ctx context.Context) {
	s.mu.Lock()
	if len(s.geometry) < 2 {
		s.mu.Unlock()
		s.log.Warn("simulation start ignored, geometry has fewer than two points",
			zap.String("tripId", s.tripID))
		return
	}
	s.mu.Unlock()

	// a restart must not leave the previous loop ticking against the
	// fresh state.
	s.haltLoop()

	s.mu.Lock()
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	s.status = datastructure.SIMULATION_RUNNING
	s.progressMeters = 0
	origin := s.geometry[0]
	s.position = &origin
	s.bearing = geo.BearingTo(s.geometry[0].GetLat(), s.geometry[0].GetLon(),
		s.geometry[1].GetLat(), s.geometry[1].GetLon())
	s.offRouteMeters = 0
	s.arrivalFired = false

	frame := s.snapshotLocked()
	done := s.done
	s.mu.Unlock()

	s.sink(s.tripID, frame)

	// the ticker must exist before Start returns so callers driving an
	// injected clock never race the loop goroutine's startup.
	ticker := s.clock.NewTicker(TICK_INTERVAL)
	go s.run(runCtx, done, ticker)
}

func (s *Simulator) run(ctx context.Context, done chan struct{}, ticker Ticker) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			s.tick()
		}
	}
}

func (s *Simulator) tick() {
	s.mu.Lock()
	if s.status != datastructure.SIMULATION_RUNNING {
		s.mu.Unlock()
		return
	}

	s.progressMeters += pkg.WALKING_SPEED_MS * s.speedMultiplier * TICK_INTERVAL.Seconds()

	arrived := false
	if s.progressMeters >= s.totalMeters {
		s.progressMeters = s.totalMeters
		s.status = datastructure.SIMULATION_COMPLETED
		if !s.arrivalFired {
			s.arrivalFired = true
			arrived = true
		}
	}

	s.updatePositionLocked()
	frame := s.snapshotLocked()
	s.mu.Unlock()

	s.sink(s.tripID, frame)
	if arrived {
		s.onArrival(s.tripID)
	}
}

// Pause freezes progress at the current position. No-op unless running.
func (s *Simulator) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == datastructure.SIMULATION_RUNNING {
		s.status = datastructure.SIMULATION_PAUSED
	}
}

// Resume continues ticking from the paused position. No-op unless paused.
func (s *Simulator) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.status == datastructure.SIMULATION_PAUSED {
		s.status = datastructure.SIMULATION_RUNNING
	}
}

// Stop halts the tick loop and resets progress, position and bearing. The
// speed multiplier is kept so a later Start reuses it. Emits a nil-position
// frame: tracking inactive, not "at the origin".
func (s *Simulator) Stop() {
	s.haltLoop()

	s.mu.Lock()
	s.status = datastructure.SIMULATION_IDLE
	s.progressMeters = 0
	s.position = nil
	s.bearing = 0
	s.offRouteMeters = 0
	s.arrivalFired = false

	frame := s.snapshotLocked()
	s.mu.Unlock()

	s.sink(s.tripID, frame)
}

// SetSpeed changes the playback multiplier, effective on the next tick.
// Non-positive values are rejected.
func (s *Simulator) SetSpeed(multiplier float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if multiplier <= 0 {
		return
	}
	s.speedMultiplier = multiplier
}

// Deviate nudges the reported position off the route by up to
// DEVIATION_OFFSET_DEGREES on each axis without touching progress. The next
// tick snaps the walker back onto the polyline.
func (s *Simulator) Deviate() {
	s.mu.Lock()
	if s.position == nil ||
		(s.status != datastructure.SIMULATION_RUNNING && s.status != datastructure.SIMULATION_PAUSED) {
		s.mu.Unlock()
		return
	}

	latSign, lonSign := 1.0, 1.0
	if s.rng() < 0.5 {
		latSign = -1.0
	}
	if s.rng() < 0.5 {
		lonSign = -1.0
	}

	moved := geo.NewCoordinate(
		s.position.GetLat()+latSign*DEVIATION_OFFSET_DEGREES,
		s.position.GetLon()+lonSign*DEVIATION_OFFSET_DEGREES,
	)
	s.position = &moved

	seg := s.segmentIndexLocked()
	s.offRouteMeters = geo.PointLinePerpendicularDistance(s.geometry[seg], s.geometry[seg+1], moved)

	frame := s.snapshotLocked()
	s.mu.Unlock()

	s.sink(s.tripID, frame)
}

func (s *Simulator) Snapshot() datastructure.SimulationSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// haltLoop cancels the running tick loop and waits for it to exit. Must be
// called without the mutex held, the loop needs it to finish its last tick.
func (s *Simulator) haltLoop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (s *Simulator) updatePositionLocked() {
	seg := s.segmentIndexLocked()
	segStart, segEnd := s.geometry[seg], s.geometry[seg+1]

	segLen := s.cum[seg+1] - s.cum[seg]
	t := 0.0
	if segLen > 0 {
		t = (s.progressMeters - s.cum[seg]) / segLen
	}

	pos := geo.Interpolate(segStart, segEnd, t)
	s.position = &pos
	s.bearing = geo.BearingTo(segStart.GetLat(), segStart.GetLon(), segEnd.GetLat(), segEnd.GetLon())
	s.offRouteMeters = 0
}

// segmentIndexLocked finds the polyline segment that contains progressMeters
// in the cumulative distance table.
func (s *Simulator) segmentIndexLocked() int {
	idx := sort.SearchFloat64s(s.cum, s.progressMeters)
	if idx > 0 {
		idx--
	}
	if idx > len(s.geometry)-2 {
		idx = len(s.geometry) - 2
	}
	return idx
}

func (s *Simulator) snapshotLocked() datastructure.SimulationSnapshot {
	progress := 0.0
	if s.totalMeters > 0 {
		progress = s.progressMeters / s.totalMeters
	}

	var position *geo.Coordinate
	if s.position != nil {
		p := *s.position
		position = &p
	}

	return datastructure.NewSimulationSnapshot(s.status, progress, position,
		s.bearing, s.speedMultiplier, s.offRouteMeters)
}
