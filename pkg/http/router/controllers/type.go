package controllers

import (
	"context"

	"github.com/sentiero-app/sentiero/pkg/datastructure"
	"github.com/sentiero-app/sentiero/pkg/geo"
	"github.com/sentiero-app/sentiero/pkg/safety"
	"github.com/sentiero-app/sentiero/pkg/trip"
)

type PlanningService interface {
	PlanRoutes(ctx context.Context, origin, destination geo.Coordinate) ([]*datastructure.RouteCandidate, error)
	PointRisk(p geo.Coordinate) safety.RiskBreakdown
	IncidentHeatmap() []geo.Coordinate
	DangerousStreets() []safety.DangerousStreet
}

type TripService interface {
	CreateTrip(ctx context.Context, origin, destination geo.Coordinate, routeID string) (*trip.Trip, error)
	GetTrip(tripID string) (*trip.Trip, error)
	AdvanceTrip(tripID, event string) (trip.Phase, error)
	RemoveTrip(tripID string) error
}

type SimulationService interface {
	StartSimulation(ctx context.Context, tripID, routeID string) (datastructure.SimulationSnapshot, error)
	GetSimulation(tripID string) (datastructure.SimulationSnapshot, error)
	PauseSimulation(tripID string) (datastructure.SimulationSnapshot, error)
	ResumeSimulation(tripID string) (datastructure.SimulationSnapshot, error)
	StopSimulation(tripID string) (datastructure.SimulationSnapshot, error)
	DeviateSimulation(tripID string) (datastructure.SimulationSnapshot, error)
	SetSimulationSpeed(tripID string, multiplier float64) (datastructure.SimulationSnapshot, error)
}
