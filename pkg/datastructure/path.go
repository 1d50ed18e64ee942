package datastructure

import (
	"github.com/sentiero-app/sentiero/pkg/geo"
)

// PathLeg. one maneuver of a provider walking alternative.
type PathLeg struct {
	roadName         string
	distanceMeters   float64
	maneuverKind     string
	maneuverModifier string
}

func NewPathLeg(roadName string, distanceMeters float64, maneuverKind, maneuverModifier string) PathLeg {
	return PathLeg{
		roadName:         roadName,
		distanceMeters:   distanceMeters,
		maneuverKind:     maneuverKind,
		maneuverModifier: maneuverModifier,
	}
}

func (l PathLeg) GetRoadName() string {
	return l.roadName
}

func (l PathLeg) GetDistanceMeters() float64 {
	return l.distanceMeters
}

func (l PathLeg) GetManeuverKind() string {
	return l.maneuverKind
}

func (l PathLeg) GetManeuverModifier() string {
	return l.maneuverModifier
}

// PathAlternative. raw point-to-point path as returned by the external path
// provider. the provider duration is carried for completeness but the planner
// always recomputes walking durations at child pace.
type PathAlternative struct {
	geometry        []geo.Coordinate
	distanceMeters  float64
	durationSeconds float64
	legs            []PathLeg
}

func NewPathAlternative(geometry []geo.Coordinate, distanceMeters, durationSeconds float64,
	legs []PathLeg) PathAlternative {
	return PathAlternative{
		geometry:        geometry,
		distanceMeters:  distanceMeters,
		durationSeconds: durationSeconds,
		legs:            legs,
	}
}

func (p PathAlternative) GetGeometry() []geo.Coordinate {
	return p.geometry
}

func (p PathAlternative) GetDistanceMeters() float64 {
	return p.distanceMeters
}

func (p PathAlternative) GetDurationSeconds() float64 {
	return p.durationSeconds
}

func (p PathAlternative) GetLegs() []PathLeg {
	return p.legs
}
