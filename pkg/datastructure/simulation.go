package datastructure

import (
	"github.com/sentiero-app/sentiero/pkg/geo"
)

// enum of simulation lifecycle states.
type SimulationStatus uint8

const (
	SIMULATION_IDLE SimulationStatus = iota
	SIMULATION_RUNNING
	SIMULATION_PAUSED
	SIMULATION_COMPLETED
)

func (s SimulationStatus) String() string {
	switch s {
	case SIMULATION_IDLE:
		return "idle"
	case SIMULATION_RUNNING:
		return "running"
	case SIMULATION_PAUSED:
		return "paused"
	case SIMULATION_COMPLETED:
		return "completed"
	default:
		return "unknown"
	}
}

// SimulationSnapshot. point-in-time view of a playback. position is nil when
// tracking is inactive, which is different from being at the origin.
type SimulationSnapshot struct {
	status          SimulationStatus
	progress        float64
	position        *geo.Coordinate
	bearing         float64
	speedMultiplier float64
	offRouteMeters  float64
}

func NewSimulationSnapshot(status SimulationStatus, progress float64, position *geo.Coordinate,
	bearing, speedMultiplier, offRouteMeters float64) SimulationSnapshot {
	return SimulationSnapshot{
		status:          status,
		progress:        progress,
		position:        position,
		bearing:         bearing,
		speedMultiplier: speedMultiplier,
		offRouteMeters:  offRouteMeters,
	}
}

func (s SimulationSnapshot) GetStatus() SimulationStatus {
	return s.status
}

func (s SimulationSnapshot) GetProgress() float64 {
	return s.progress
}

func (s SimulationSnapshot) GetPosition() *geo.Coordinate {
	return s.position
}

func (s SimulationSnapshot) GetBearing() float64 {
	return s.bearing
}

func (s SimulationSnapshot) GetSpeedMultiplier() float64 {
	return s.speedMultiplier
}

func (s SimulationSnapshot) GetOffRouteMeters() float64 {
	return s.offRouteMeters
}
