package trip

import (
	"testing"

	"github.com/sentiero-app/sentiero/pkg"
	"github.com/sentiero-app/sentiero/pkg/datastructure"
	"github.com/sentiero-app/sentiero/pkg/geo"
	"github.com/sentiero-app/sentiero/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func walkOnlyRoute() *datastructure.RouteCandidate {
	geometry := []geo.Coordinate{
		geo.NewCoordinate(41.1170, 16.8719),
		geo.NewCoordinate(41.1260, 16.8719),
	}
	return datastructure.NewRouteCandidate("route-walk", pkg.FAST_ROUTE, geometry,
		1000, 800, 95, nil, nil, nil)
}

func transitRoute() *datastructure.RouteCandidate {
	geometry := []geo.Coordinate{
		geo.NewCoordinate(41.1170, 16.8719),
		geo.NewCoordinate(41.1172, 16.8721),
		geo.NewCoordinate(41.1258, 16.8717),
		geo.NewCoordinate(41.1260, 16.8719),
	}
	segment := datastructure.NewTransitSegment("L12",
		datastructure.NewTransitStop("s1", "Piazza Moro", geo.NewCoordinate(41.1172, 16.8721), []string{"L12"}),
		datastructure.NewTransitStop("s2", "Carrassi Nord", geo.NewCoordinate(41.1258, 16.8717), []string{"L12"}),
		geometry[1:3], 350)
	return datastructure.NewRouteCandidate("route-transit", pkg.TRANSIT_ROUTE, geometry,
		1200, 900, 90, nil, nil, []datastructure.TransitSegment{segment})
}

func requireConflict(t *testing.T, err error) {
	t.Helper()
	var uerr *util.Error
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, util.ErrConflict, uerr.Code())
}

func TestTripFullTransitJourney(t *testing.T) {
	tr := NewTrip("trip-1")
	assert.Equal(t, PHASE_IDLE, tr.GetPhase())

	phase, err := tr.Assign(transitRoute())
	require.NoError(t, err)
	assert.Equal(t, PHASE_WALKING_TO_STOP, phase)

	phase, err = tr.Advance(EVENT_BOARD)
	require.NoError(t, err)
	assert.Equal(t, PHASE_ON_TRANSIT, phase)

	phase, err = tr.Advance(EVENT_ALIGHT)
	require.NoError(t, err)
	assert.Equal(t, PHASE_ARRIVED_AT_STOP, phase)

	phase, err = tr.Advance(EVENT_CONTINUE_WALK)
	require.NoError(t, err)
	assert.Equal(t, PHASE_WALKING_TO_DESTINATION, phase)

	phase, err = tr.Advance(EVENT_COMPLETE)
	require.NoError(t, err)
	assert.Equal(t, PHASE_COMPLETED, phase)

	// completion hands the trip back, idle and empty
	assert.Equal(t, PHASE_IDLE, tr.GetPhase())
	assert.Nil(t, tr.GetRoute())
}

func TestTripWalkOnlySkipsTransitPhases(t *testing.T) {
	tr := NewTrip("trip-2")

	phase, err := tr.Assign(walkOnlyRoute())
	require.NoError(t, err)
	assert.Equal(t, PHASE_WALKING_TO_DESTINATION, phase)

	// transit events make no sense on a walk-only trip
	_, err = tr.Advance(EVENT_BOARD)
	requireConflict(t, err)

	phase, err = tr.Advance(EVENT_COMPLETE)
	require.NoError(t, err)
	assert.Equal(t, PHASE_COMPLETED, phase)
	assert.Equal(t, PHASE_IDLE, tr.GetPhase())
}

func TestTripRejectsOutOfOrderEvents(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(tr *Trip)
		event   Event
	}{
		{
			name:    "board while idle",
			prepare: func(tr *Trip) {},
			event:   EVENT_BOARD,
		},
		{
			name:    "complete while idle",
			prepare: func(tr *Trip) {},
			event:   EVENT_COMPLETE,
		},
		{
			name: "alight before boarding",
			prepare: func(tr *Trip) {
				tr.Assign(transitRoute())
			},
			event: EVENT_ALIGHT,
		},
		{
			name: "continue walk while on transit",
			prepare: func(tr *Trip) {
				tr.Assign(transitRoute())
				tr.Advance(EVENT_BOARD)
			},
			event: EVENT_CONTINUE_WALK,
		},
		{
			name: "complete before the final walking leg",
			prepare: func(tr *Trip) {
				tr.Assign(transitRoute())
				tr.Advance(EVENT_BOARD)
			},
			event: EVENT_COMPLETE,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := NewTrip("trip-3")
			tt.prepare(tr)
			before := tr.GetPhase()

			_, err := tr.Advance(tt.event)
			requireConflict(t, err)
			assert.Equal(t, before, tr.GetPhase(), "failed transition must not move the phase")
		})
	}
}

func TestTripAssignValidation(t *testing.T) {
	tr := NewTrip("trip-4")

	_, err := tr.Assign(nil)
	var uerr *util.Error
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, util.ErrBadParamInput, uerr.Code())

	_, err = tr.Assign(walkOnlyRoute())
	require.NoError(t, err)

	// a trip already underway cannot take a second route
	_, err = tr.Assign(transitRoute())
	requireConflict(t, err)
}

func TestTripResetFromAnyPhase(t *testing.T) {
	tr := NewTrip("trip-5")
	_, err := tr.Assign(transitRoute())
	require.NoError(t, err)
	_, err = tr.Advance(EVENT_BOARD)
	require.NoError(t, err)

	tr.Reset()
	assert.Equal(t, PHASE_IDLE, tr.GetPhase())
	assert.Nil(t, tr.GetRoute())

	// after reset a new assignment is accepted again
	phase, err := tr.Assign(walkOnlyRoute())
	require.NoError(t, err)
	assert.Equal(t, PHASE_WALKING_TO_DESTINATION, phase)
}

func TestParseEvent(t *testing.T) {
	tests := []struct {
		in      string
		want    Event
		wantErr bool
	}{
		{in: "board", want: EVENT_BOARD},
		{in: "alight", want: EVENT_ALIGHT},
		{in: "continue_walk", want: EVENT_CONTINUE_WALK},
		{in: "complete", want: EVENT_COMPLETE},
		{in: "teleport", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParseEvent(tt.in)
		if tt.wantErr {
			var uerr *util.Error
			require.ErrorAs(t, err, &uerr, "input %q", tt.in)
			assert.Equal(t, util.ErrBadParamInput, uerr.Code())
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()

	first := reg.Create()
	second := reg.Create()
	require.NotEmpty(t, first.GetID())
	assert.NotEqual(t, first.GetID(), second.GetID())
	assert.Equal(t, 2, reg.Count())

	got, err := reg.Get(first.GetID())
	require.NoError(t, err)
	assert.Same(t, first, got)

	_, err = reg.Get("missing")
	var uerr *util.Error
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, util.ErrNotFound, uerr.Code())

	reg.Remove(first.GetID())
	_, err = reg.Get(first.GetID())
	require.Error(t, err)
	assert.Equal(t, 1, reg.Count())
}
