package main

import (
	"context"

	"github.com/sentiero-app/sentiero/pkg/datastructure"
	"github.com/sentiero-app/sentiero/pkg/http"
	"github.com/sentiero-app/sentiero/pkg/http/router/controllers"
	"github.com/sentiero-app/sentiero/pkg/http/usecases"
	"github.com/sentiero-app/sentiero/pkg/logger"
	"github.com/sentiero-app/sentiero/pkg/metrics"
	"github.com/sentiero-app/sentiero/pkg/osrm"
	"github.com/sentiero-app/sentiero/pkg/planner"
	"github.com/sentiero-app/sentiero/pkg/publisher"
	"github.com/sentiero-app/sentiero/pkg/safety"
	"github.com/sentiero-app/sentiero/pkg/simulation"
	"github.com/sentiero-app/sentiero/pkg/transit"
	"github.com/sentiero-app/sentiero/pkg/trip"
	"github.com/sentiero-app/sentiero/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}

	if err := util.ReadConfig(); err != nil {
		logger.Warn("config file not found, using defaults and environment", zap.Error(err))
	}

	viper.SetDefault("SAFETY_DATASET_PATH", "./data/safety_dataset.json.bz2")
	viper.SetDefault("TRANSIT_STOPS_PATH", "./data/stops.json")
	viper.SetDefault("OSRM_BASE_URL", osrm.DEFAULT_BASE_URL)
	viper.SetDefault("OSRM_TIMEOUT", "10s")
	viper.SetDefault("NATS_ENABLED", false)
	viper.SetDefault("NATS_URL", "nats://127.0.0.1:4222")

	dataset, err := safety.LoadDataset(viper.GetString("SAFETY_DATASET_PATH"))
	if err != nil {
		panic(err)
	}
	riskModel := safety.NewRiskModel(dataset)
	scorer := safety.NewRouteScorer(riskModel, dataset)

	var stopDirectory planner.StopDirectory
	stops, err := transit.LoadStops(viper.GetString("TRANSIT_STOPS_PATH"))
	if err != nil {
		logger.Warn("transit stops unavailable, plans will be walking-only", zap.Error(err))
	} else {
		stopDirectory = stops
		logger.Info("transit stops loaded", zap.Int("stops", len(stops.GetStops())))
	}

	osrmClient := osrm.NewClient(viper.GetString("OSRM_BASE_URL"), viper.GetDuration("OSRM_TIMEOUT"))
	routeSynthesizer := planner.NewRouteSynthesizer(osrmClient, stopDirectory, scorer, logger)

	registry := trip.NewRegistry()
	collector := metrics.NewCollector(simulation.TICK_INTERVAL)

	var (
		hub     *controllers.Hub
		natsPub *publisher.NATSPublisher
	)

	sink := func(tripID string, snapshot datastructure.SimulationSnapshot) {
		collector.FrameInc()
		if hub != nil {
			hub.BroadcastPosition(tripID, snapshot)
		}
		if natsPub != nil {
			if err := natsPub.PublishPosition(tripID, snapshot); err != nil {
				logger.Error("failed publishing position",
					zap.String("tripId", tripID), zap.Error(err))
			}
		}
	}

	onArrival := func(tripID string) {
		arrived, err := registry.Get(tripID)
		if err == nil {
			if _, err := arrived.Advance(trip.EVENT_COMPLETE); err != nil {
				logger.Debug("trip not on its final walking leg at arrival",
					zap.String("tripId", tripID), zap.Error(err))
			}
		}
		if hub != nil {
			hub.BroadcastArrival(tripID)
		}
		logger.Info("simulation arrived at destination", zap.String("tripId", tripID))
	}

	manager := simulation.NewManager(sink, onArrival, simulation.NewRealClock(), nil, logger)

	planningService := usecases.NewPlanningService(logger, routeSynthesizer, riskModel, dataset, collector)
	tripService := usecases.NewTripService(logger, registry, routeSynthesizer, manager, collector)
	simulationService := usecases.NewSimulationService(logger, manager, registry, collector)

	hub = controllers.NewHub(tripService, collector, logger)

	if viper.GetBool("NATS_ENABLED") {
		pub, err := publisher.NewNATSPublisher(viper.GetString("NATS_URL"), collector, logger)
		if err != nil {
			logger.Warn("nats unavailable, position frames stay websocket-only", zap.Error(err))
		} else {
			natsPub = pub
			defer natsPub.Close()
		}
	}

	api := http.NewServer(logger)

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}
	api.Use(ctx,
		logger, hub, collector, false, planningService, tripService, simulationService)

	signal := http.GracefulShutdown()

	manager.StopAll()
	logger.Info("Sentiero Trip Planner Server Stopped", zap.String("signal", signal.String()))
	cleanup()
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
