package datastructure

import (
	"github.com/sentiero-app/sentiero/pkg"
	"github.com/sentiero-app/sentiero/pkg/geo"
)

// Step. one turn-by-turn instruction of a planned route.
type Step struct {
	instruction     string
	distanceMeters  float64
	durationSeconds float64
	roadName        string
	mode            pkg.TravelMode
	transitLine     string
}

func NewStep(instruction, roadName string, distanceMeters, durationSeconds float64,
	mode pkg.TravelMode, transitLine string) Step {
	return Step{
		instruction:     instruction,
		roadName:        roadName,
		distanceMeters:  distanceMeters,
		durationSeconds: durationSeconds,
		mode:            mode,
		transitLine:     transitLine,
	}
}

func (s Step) GetInstruction() string {
	return s.instruction
}

func (s Step) GetDistanceMeters() float64 {
	return s.distanceMeters
}

func (s Step) GetDurationSeconds() float64 {
	return s.durationSeconds
}

func (s Step) GetRoadName() string {
	return s.roadName
}

func (s Step) GetMode() pkg.TravelMode {
	return s.mode
}

func (s Step) GetTransitLine() string {
	return s.transitLine
}

// TransitSegment. the in-vehicle portion of a multimodal route between a
// boarding and an alighting stop.
type TransitSegment struct {
	line            string
	fromStop        TransitStop
	toStop          TransitStop
	geometry        []geo.Coordinate
	durationSeconds float64
}

func NewTransitSegment(line string, fromStop, toStop TransitStop,
	geometry []geo.Coordinate, durationSeconds float64) TransitSegment {
	return TransitSegment{
		line:            line,
		fromStop:        fromStop,
		toStop:          toStop,
		geometry:        geometry,
		durationSeconds: durationSeconds,
	}
}

func (t TransitSegment) GetLine() string {
	return t.line
}

func (t TransitSegment) GetFromStop() TransitStop {
	return t.fromStop
}

func (t TransitSegment) GetToStop() TransitStop {
	return t.toStop
}

func (t TransitSegment) GetGeometry() []geo.Coordinate {
	return t.geometry
}

func (t TransitSegment) GetDurationSeconds() float64 {
	return t.durationSeconds
}

// RouteCandidate. one fully specified, scored route option. immutable after the
// planner returns it, except for the kind tag assigned during reclassification.
type RouteCandidate struct {
	id                   string
	kind                 pkg.RouteKind
	geometry             []geo.Coordinate
	totalDistanceMeters  float64
	totalDurationSeconds float64
	safetyScore          int
	warnings             []string
	steps                []Step
	transitSegments      []TransitSegment
}

func NewRouteCandidate(id string, kind pkg.RouteKind, geometry []geo.Coordinate,
	totalDistanceMeters, totalDurationSeconds float64, safetyScore int,
	warnings []string, steps []Step, transitSegments []TransitSegment) *RouteCandidate {
	return &RouteCandidate{
		id:                   id,
		kind:                 kind,
		geometry:             geometry,
		totalDistanceMeters:  totalDistanceMeters,
		totalDurationSeconds: totalDurationSeconds,
		safetyScore:          safetyScore,
		warnings:             warnings,
		steps:                steps,
		transitSegments:      transitSegments,
	}
}

func (rc *RouteCandidate) GetID() string {
	return rc.id
}

func (rc *RouteCandidate) GetKind() pkg.RouteKind {
	return rc.kind
}

func (rc *RouteCandidate) SetKind(kind pkg.RouteKind) {
	rc.kind = kind
}

func (rc *RouteCandidate) GetGeometry() []geo.Coordinate {
	return rc.geometry
}

func (rc *RouteCandidate) GetTotalDistanceMeters() float64 {
	return rc.totalDistanceMeters
}

func (rc *RouteCandidate) GetTotalDurationSeconds() float64 {
	return rc.totalDurationSeconds
}

func (rc *RouteCandidate) GetSafetyScore() int {
	return rc.safetyScore
}

func (rc *RouteCandidate) GetWarnings() []string {
	return rc.warnings
}

func (rc *RouteCandidate) GetSteps() []Step {
	return rc.steps
}

func (rc *RouteCandidate) GetTransitSegments() []TransitSegment {
	return rc.transitSegments
}

func (rc *RouteCandidate) HasTransit() bool {
	return len(rc.transitSegments) > 0
}
