package http

import (
	"context"

	http_router "github.com/sentiero-app/sentiero/pkg/http/router"
	"github.com/sentiero-app/sentiero/pkg/http/router/controllers"
	http_server "github.com/sentiero-app/sentiero/pkg/http/server"
	"github.com/sentiero-app/sentiero/pkg/metrics"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

func (s *Server) Use(
	ctx context.Context,
	log *zap.Logger,
	hub *controllers.Hub,
	collector *metrics.Collector,

	useRateLimit bool,
	planningService controllers.PlanningService,
	tripService controllers.TripService,
	simulationService controllers.SimulationService,

) (*Server, error) {
	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("WEBSOCKET_PORT", 6666)
	viper.SetDefault("PROXY_PORT", 6767)

	viper.SetDefault("API_TIMEOUT", "1000s")

	config := http_server.Config{
		Port:          viper.GetInt("API_PORT"),
		WebsocketPort: viper.GetInt("WEBSOCKET_PORT"),
		Timeout:       viper.GetDuration("API_TIMEOUT"),
		ProxyPort:     viper.GetInt("PROXY_PORT"),
	}

	server := http_router.NewAPI(log, hub, collector)

	g := errgroup.Group{}

	g.Go(func() error {
		return server.Run(
			ctx, config, log,
			useRateLimit, planningService, tripService, simulationService,
		)
	})

	return s, nil
}
