package trip

import (
	"errors"
	"sync"

	"github.com/sentiero-app/sentiero/pkg/datastructure"
	"github.com/sentiero-app/sentiero/pkg/util"
)

// Phase of a traveler moving through a planned trip. Phases advance only on
// explicit events, never on a timer.
type Phase uint8

const (
	PHASE_IDLE Phase = iota
	PHASE_WALKING_TO_STOP
	PHASE_ON_TRANSIT
	PHASE_ARRIVED_AT_STOP
	PHASE_WALKING_TO_DESTINATION
	PHASE_COMPLETED
)

func (p Phase) String() string {
	switch p {
	case PHASE_IDLE:
		return "idle"
	case PHASE_WALKING_TO_STOP:
		return "walking_to_stop"
	case PHASE_ON_TRANSIT:
		return "on_transit"
	case PHASE_ARRIVED_AT_STOP:
		return "arrived_at_stop"
	case PHASE_WALKING_TO_DESTINATION:
		return "walking_to_destination"
	case PHASE_COMPLETED:
		return "completed"
	default:
		return "unknown"
	}
}

// Event is a traveler action that advances the phase machine.
type Event uint8

const (
	EVENT_BOARD Event = iota
	EVENT_ALIGHT
	EVENT_CONTINUE_WALK
	EVENT_COMPLETE
)

func (e Event) String() string {
	switch e {
	case EVENT_BOARD:
		return "board"
	case EVENT_ALIGHT:
		return "alight"
	case EVENT_CONTINUE_WALK:
		return "continue_walk"
	case EVENT_COMPLETE:
		return "complete"
	default:
		return "unknown"
	}
}

func ParseEvent(s string) (Event, error) {
	switch s {
	case "board":
		return EVENT_BOARD, nil
	case "alight":
		return EVENT_ALIGHT, nil
	case "continue_walk":
		return EVENT_CONTINUE_WALK, nil
	case "complete":
		return EVENT_COMPLETE, nil
	default:
		return 0, util.WrapErrorf(ErrUnknownEvent, util.ErrBadParamInput,
			"unknown trip event %q", s)
	}
}

var (
	ErrUnknownEvent      = errors.New("unknown trip event")
	ErrInvalidTransition = errors.New("transition not valid from current phase")
	ErrNoRoute           = errors.New("trip has no route assigned")
)

// Trip tracks one traveler through the legs of a chosen route. Events arrive
// from HTTP handlers and from the simulator's arrival callback, so all phase
// mutation is serialized behind the mutex.
type Trip struct {
	mu    sync.Mutex
	id    string
	route *datastructure.RouteCandidate
	phase Phase
}

func NewTrip(id string) *Trip {
	return &Trip{
		id:    id,
		phase: PHASE_IDLE,
	}
}

func (t *Trip) GetID() string {
	return t.id
}

func (t *Trip) GetPhase() Phase {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.phase
}

func (t *Trip) GetRoute() *datastructure.RouteCandidate {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.route
}

// Assign binds a route to an idle trip. Routes with a transit segment start
// at WalkingToStop; walk-only routes skip straight to WalkingToDestination.
func (t *Trip) Assign(route *datastructure.RouteCandidate) (Phase, error) {
	if route == nil {
		return PHASE_IDLE, util.WrapErrorf(ErrNoRoute, util.ErrBadParamInput,
			"trip %s assignment needs a route", t.id)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.phase != PHASE_IDLE {
		return t.phase, t.invalidTransition("assign")
	}

	t.route = route
	if route.HasTransit() {
		t.phase = PHASE_WALKING_TO_STOP
	} else {
		t.phase = PHASE_WALKING_TO_DESTINATION
	}
	return t.phase, nil
}

// Advance applies a traveler event and returns the phase it reached. A
// completion event reports Completed while the trip itself returns to Idle
// with its route cleared, ready for the next assignment.
func (t *Trip) Advance(event Event) (Phase, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch event {
	case EVENT_BOARD:
		if t.phase != PHASE_WALKING_TO_STOP {
			return t.phase, t.invalidTransition(event.String())
		}
		t.phase = PHASE_ON_TRANSIT
		return t.phase, nil

	case EVENT_ALIGHT:
		if t.phase != PHASE_ON_TRANSIT {
			return t.phase, t.invalidTransition(event.String())
		}
		t.phase = PHASE_ARRIVED_AT_STOP
		return t.phase, nil

	case EVENT_CONTINUE_WALK:
		if t.phase != PHASE_ARRIVED_AT_STOP {
			return t.phase, t.invalidTransition(event.String())
		}
		t.phase = PHASE_WALKING_TO_DESTINATION
		return t.phase, nil

	case EVENT_COMPLETE:
		if t.phase != PHASE_WALKING_TO_DESTINATION {
			return t.phase, t.invalidTransition(event.String())
		}
		t.route = nil
		t.phase = PHASE_IDLE
		return PHASE_COMPLETED, nil

	default:
		return t.phase, util.WrapErrorf(ErrUnknownEvent, util.ErrBadParamInput,
			"unknown trip event %d", event)
	}
}

// Reset forces the trip back to Idle from any phase and clears the route.
func (t *Trip) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.route = nil
	t.phase = PHASE_IDLE
}

func (t *Trip) invalidTransition(event string) error {
	return util.WrapErrorf(ErrInvalidTransition, util.ErrConflict,
		"cannot %s trip %s from phase %s", event, t.id, t.phase)
}
