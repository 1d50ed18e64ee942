package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"
	"github.com/sentiero-app/sentiero/pkg/datastructure"
	helper "github.com/sentiero-app/sentiero/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

type simulationAPI struct {
	baseAPI
	tripService       TripService
	simulationService SimulationService
}

func NewSimulation(tripService TripService, simulationService SimulationService, log *zap.Logger) *simulationAPI {
	return &simulationAPI{
		baseAPI:           baseAPI{log: log},
		tripService:       tripService,
		simulationService: simulationService,
	}
}

func (api *simulationAPI) Routes(group *helper.RouteGroup) {
	group.POST("/trips", api.createTrip)
	group.GET("/trips/:id", api.getTrip)
	group.POST("/trips/:id/advance", api.advanceTrip)
	group.DELETE("/trips/:id", api.removeTrip)

	group.POST("/simulations", api.createSimulation)
	group.GET("/simulations/:tripId", api.getSimulation)
	group.POST("/simulations/:tripId/pause", api.pauseSimulation)
	group.POST("/simulations/:tripId/resume", api.resumeSimulation)
	group.POST("/simulations/:tripId/stop", api.stopSimulation)
	group.POST("/simulations/:tripId/deviate", api.deviateSimulation)
	group.PUT("/simulations/:tripId/speed", api.setSimulationSpeed)
}

func (api *simulationAPI) validateRequest(w http.ResponseWriter, r *http.Request, request interface{}) bool {
	validate := validator.New()

	if err := validate.Struct(request); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		api.BadRequestResponse(w, r, fmt.Errorf("validation error: %v", vvString))
		return false
	}
	return true
}

func (api *simulationAPI) createTrip(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request createTripRequest
		err     error
	)
	err = json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}

	if !api.validateRequest(w, r, request) {
		return
	}

	created, err := api.tripService.CreateTrip(r.Context(), request.Origin.toCoordinate(),
		request.Destination.toCoordinate(), request.RouteID)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusCreated, envelope{"data": NewTripResponse(created)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *simulationAPI) getTrip(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	found, err := api.tripService.GetTrip(p.ByName("id"))
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewTripResponse(found)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *simulationAPI) advanceTrip(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request advanceTripRequest
		err     error
	)
	err = json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}

	if !api.validateRequest(w, r, request) {
		return
	}

	tripID := p.ByName("id")

	phase, err := api.tripService.AdvanceTrip(tripID, request.Event)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": advanceTripResponse{
		TripID: tripID,
		Phase:  phase.String(),
	}}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *simulationAPI) removeTrip(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	tripID := p.ByName("id")

	if err := api.tripService.RemoveTrip(tripID); err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": map[string]interface{}{
		"trip_id": tripID,
		"deleted": true,
	}}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *simulationAPI) createSimulation(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request createSimulationRequest
		err     error
	)
	err = json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}

	if !api.validateRequest(w, r, request) {
		return
	}

	snapshot, err := api.simulationService.StartSimulation(r.Context(), request.TripID, request.RouteID)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusCreated, envelope{"data": NewPositionFrame(request.TripID, snapshot)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *simulationAPI) getSimulation(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	api.respondSnapshot(w, r, p, api.simulationService.GetSimulation)
}

func (api *simulationAPI) pauseSimulation(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	api.respondSnapshot(w, r, p, api.simulationService.PauseSimulation)
}

func (api *simulationAPI) resumeSimulation(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	api.respondSnapshot(w, r, p, api.simulationService.ResumeSimulation)
}

func (api *simulationAPI) stopSimulation(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	api.respondSnapshot(w, r, p, api.simulationService.StopSimulation)
}

func (api *simulationAPI) deviateSimulation(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	api.respondSnapshot(w, r, p, api.simulationService.DeviateSimulation)
}

func (api *simulationAPI) setSimulationSpeed(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request setSpeedRequest
		err     error
	)
	err = json.NewDecoder(r.Body).Decode(&request)
	if err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}

	if !api.validateRequest(w, r, request) {
		return
	}

	tripID := p.ByName("tripId")

	snapshot, err := api.simulationService.SetSimulationSpeed(tripID, request.Multiplier)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewPositionFrame(tripID, snapshot)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *simulationAPI) respondSnapshot(w http.ResponseWriter, r *http.Request, p httprouter.Params,
	op func(tripID string) (datastructure.SimulationSnapshot, error)) {
	tripID := p.ByName("tripId")

	snapshot, err := op(tripID)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewPositionFrame(tripID, snapshot)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}
