package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"
	helper "github.com/sentiero-app/sentiero/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

type planningAPI struct {
	baseAPI
	planningService PlanningService
}

func NewPlanning(planningService PlanningService, log *zap.Logger) *planningAPI {
	return &planningAPI{
		baseAPI:         baseAPI{log: log},
		planningService: planningService,
	}
}

func (api *planningAPI) Routes(group *helper.RouteGroup) {
	group.POST("/navigation/routes", api.planRoutes)
	group.GET("/safety/point", api.pointRisk)
	group.GET("/safety/heatmap", api.heatmap)
	group.GET("/safety/dangerous-streets", api.dangerousStreets)
}

func (api *planningAPI) planRoutes(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request planRoutesRequest
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
		return
	}

	routes, err := api.planningService.PlanRoutes(r.Context(), request.Origin.toCoordinate(),
		request.Destination.toCoordinate())
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewPlanRoutesResponse(routes)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *planningAPI) pointRisk(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request pointRiskRequest
		err     error
	)

	query := r.URL.Query()

	request.Lat, err = strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("lat is required and must be a valid float"))
		return
	}
	request.Lon, err = strconv.ParseFloat(query.Get("lon"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("lon is required and must be a valid float"))
		return
	}
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
		return
	}

	point := geoPointRequest{Lat: request.Lat, Lon: request.Lon}.toCoordinate()
	breakdown := api.planningService.PointRisk(point)

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewPointRiskResponse(point, breakdown)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *planningAPI) heatmap(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	points := api.planningService.IncidentHeatmap()

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewHeatmapResponse(points)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *planningAPI) dangerousStreets(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	streets := api.planningService.DangerousStreets()

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": NewDangerousStreetsResponse(streets)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}
