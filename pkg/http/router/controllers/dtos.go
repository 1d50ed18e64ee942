package controllers

import (
	"github.com/sentiero-app/sentiero/pkg/datastructure"
	"github.com/sentiero-app/sentiero/pkg/geo"
	"github.com/sentiero-app/sentiero/pkg/safety"
	"github.com/sentiero-app/sentiero/pkg/trip"
	"github.com/sentiero-app/sentiero/pkg/util"
)

type geoPointRequest struct {
	Lat float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon float64 `json:"lon" validate:"required,min=-180,max=180"`
}

func (p geoPointRequest) toCoordinate() geo.Coordinate {
	return geo.NewCoordinate(p.Lat, p.Lon)
}

type planRoutesRequest struct {
	Origin      geoPointRequest `json:"origin" validate:"required"`
	Destination geoPointRequest `json:"destination" validate:"required"`
}

type pointRiskRequest struct {
	Lat float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon float64 `json:"lon" validate:"required,min=-180,max=180"`
}

type createTripRequest struct {
	Origin      geoPointRequest `json:"origin" validate:"required"`
	Destination geoPointRequest `json:"destination" validate:"required"`
	RouteID     string          `json:"route_id" validate:"required"`
}

type advanceTripRequest struct {
	Event string `json:"event" validate:"required"`
}

type createSimulationRequest struct {
	TripID  string `json:"trip_id" validate:"required"`
	RouteID string `json:"route_id"`
}

type setSpeedRequest struct {
	Multiplier float64 `json:"multiplier" validate:"required,gt=0"`
}

// subscribeRequest is the single websocket command: bind this connection to a
// trip's position stream.
type subscribeRequest struct {
	TripID string `json:"tripId" validate:"required"`
}

type stopResponse struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Lat   float64  `json:"lat"`
	Lon   float64  `json:"lon"`
	Lines []string `json:"lines"`
}

func NewStopResponse(stop datastructure.TransitStop) stopResponse {
	return stopResponse{
		ID:    stop.GetID(),
		Name:  stop.GetName(),
		Lat:   stop.GetLocation().GetLat(),
		Lon:   stop.GetLocation().GetLon(),
		Lines: stop.GetLines(),
	}
}

type transitSegmentResponse struct {
	Line            string       `json:"line"`
	FromStop        stopResponse `json:"from_stop"`
	ToStop          stopResponse `json:"to_stop"`
	Path            string       `json:"path"`
	DurationSeconds float64      `json:"duration_seconds"`
}

func NewTransitSegmentResponse(seg datastructure.TransitSegment) transitSegmentResponse {
	return transitSegmentResponse{
		Line:            seg.GetLine(),
		FromStop:        NewStopResponse(seg.GetFromStop()),
		ToStop:          NewStopResponse(seg.GetToStop()),
		Path:            geo.PolylineFromCoords(seg.GetGeometry()),
		DurationSeconds: util.RoundFloat(seg.GetDurationSeconds(), 2),
	}
}

type stepResponse struct {
	Instruction     string  `json:"instruction"`
	RoadName        string  `json:"road_name,omitempty"`
	Mode            string  `json:"mode"`
	TransitLine     string  `json:"transit_line,omitempty"`
	DistanceMeters  float64 `json:"distance_meters"`
	DurationSeconds float64 `json:"duration_seconds"`
}

func NewStepResponse(step datastructure.Step) stepResponse {
	return stepResponse{
		Instruction:     step.GetInstruction(),
		RoadName:        step.GetRoadName(),
		Mode:            step.GetMode().String(),
		TransitLine:     step.GetTransitLine(),
		DistanceMeters:  util.RoundFloat(step.GetDistanceMeters(), 2),
		DurationSeconds: util.RoundFloat(step.GetDurationSeconds(), 2),
	}
}

type routeResponse struct {
	ID                   string                   `json:"id"`
	Kind                 string                   `json:"kind"`
	Path                 string                   `json:"path"`
	TotalDistanceMeters  float64                  `json:"total_distance_meters"`
	TotalDurationSeconds float64                  `json:"total_duration_seconds"`
	SafetyScore          int                      `json:"safety_score"`
	Warnings             []string                 `json:"warnings"`
	Steps                []stepResponse           `json:"steps"`
	Transit              []transitSegmentResponse `json:"transit,omitempty"`
}

func NewRouteResponse(route *datastructure.RouteCandidate) routeResponse {
	steps := make([]stepResponse, 0, len(route.GetSteps()))
	for _, step := range route.GetSteps() {
		steps = append(steps, NewStepResponse(step))
	}

	var transit []transitSegmentResponse
	for _, seg := range route.GetTransitSegments() {
		transit = append(transit, NewTransitSegmentResponse(seg))
	}

	warnings := route.GetWarnings()
	if warnings == nil {
		warnings = []string{}
	}

	return routeResponse{
		ID:                   route.GetID(),
		Kind:                 route.GetKind().String(),
		Path:                 geo.PolylineFromCoords(route.GetGeometry()),
		TotalDistanceMeters:  util.RoundFloat(route.GetTotalDistanceMeters(), 2),
		TotalDurationSeconds: util.RoundFloat(route.GetTotalDurationSeconds(), 2),
		SafetyScore:          route.GetSafetyScore(),
		Warnings:             warnings,
		Steps:                steps,
		Transit:              transit,
	}
}

func NewPlanRoutesResponse(routes []*datastructure.RouteCandidate) []routeResponse {
	out := make([]routeResponse, 0, len(routes))
	for _, route := range routes {
		out = append(out, NewRouteResponse(route))
	}
	return out
}

type pointRiskResponse struct {
	Lat                 float64 `json:"lat"`
	Lon                 float64 `json:"lon"`
	Risk                float64 `json:"risk"`
	NeighborhoodRisk    float64 `json:"neighborhood_risk"`
	IncidentDensity     float64 `json:"incident_density"`
	PoiRisk             float64 `json:"poi_risk"`
	NearestNeighborhood string  `json:"nearest_neighborhood,omitempty"`
}

func NewPointRiskResponse(p geo.Coordinate, breakdown safety.RiskBreakdown) pointRiskResponse {
	return pointRiskResponse{
		Lat:                 p.GetLat(),
		Lon:                 p.GetLon(),
		Risk:                util.RoundFloat(breakdown.GetTotal(), 4),
		NeighborhoodRisk:    util.RoundFloat(breakdown.GetNeighborhoodRisk(), 4),
		IncidentDensity:     util.RoundFloat(breakdown.GetIncidentDensity(), 4),
		PoiRisk:             util.RoundFloat(breakdown.GetPoiRisk(), 4),
		NearestNeighborhood: breakdown.GetNearestNeighborhood(),
	}
}

type heatmapPointResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewHeatmapResponse(points []geo.Coordinate) []heatmapPointResponse {
	out := make([]heatmapPointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, heatmapPointResponse{Lat: p.GetLat(), Lon: p.GetLon()})
	}
	return out
}

type dangerousStreetResponse struct {
	Street    string `json:"street"`
	Incidents int    `json:"incidents"`
}

func NewDangerousStreetsResponse(streets []safety.DangerousStreet) []dangerousStreetResponse {
	out := make([]dangerousStreetResponse, 0, len(streets))
	for _, s := range streets {
		out = append(out, dangerousStreetResponse{Street: s.GetStreet(), Incidents: s.GetIncidents()})
	}
	return out
}

type tripResponse struct {
	TripID string         `json:"trip_id"`
	Phase  string         `json:"phase"`
	Route  *routeResponse `json:"route,omitempty"`
}

func NewTripResponse(t *trip.Trip) tripResponse {
	resp := tripResponse{
		TripID: t.GetID(),
		Phase:  t.GetPhase().String(),
	}
	if route := t.GetRoute(); route != nil {
		rr := NewRouteResponse(route)
		resp.Route = &rr
	}
	return resp
}

type advanceTripResponse struct {
	TripID string `json:"trip_id"`
	Phase  string `json:"phase"`
}

// positionFrame mirrors a simulator snapshot on the wire. It doubles as the
// websocket frame payload, hence the camelCase keys the stream clients expect.
type positionFrame struct {
	TripID          string   `json:"tripId"`
	Status          string   `json:"status"`
	Tracking        bool     `json:"tracking"`
	Progress        float64  `json:"progress"`
	Lat             *float64 `json:"lat,omitempty"`
	Lon             *float64 `json:"lon,omitempty"`
	Bearing         float64  `json:"bearing"`
	SpeedMultiplier float64  `json:"speedMultiplier"`
	OffRouteMeters  float64  `json:"offRouteMeters"`
}

func NewPositionFrame(tripID string, snapshot datastructure.SimulationSnapshot) positionFrame {
	frame := positionFrame{
		TripID:          tripID,
		Status:          snapshot.GetStatus().String(),
		Progress:        snapshot.GetProgress(),
		Bearing:         util.RoundFloat(snapshot.GetBearing(), 2),
		SpeedMultiplier: snapshot.GetSpeedMultiplier(),
		OffRouteMeters:  util.RoundFloat(snapshot.GetOffRouteMeters(), 2),
	}
	if pos := snapshot.GetPosition(); pos != nil {
		lat, lon := pos.GetLat(), pos.GetLon()
		frame.Tracking = true
		frame.Lat = &lat
		frame.Lon = &lon
	}
	return frame
}

type arrivalFrame struct {
	TripID  string `json:"tripId"`
	Arrived bool   `json:"arrived"`
}

type subscribeAck struct {
	TripID     string `json:"tripId"`
	Subscribed bool   `json:"subscribed"`
}
