package main

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/sentiero-app/sentiero/pkg/logger"
	"github.com/sentiero-app/sentiero/pkg/osmparser"
	"go.uber.org/zap"
)

var (
	mapPath = flag.String("map", "./data/bari.osm.pbf", "openstreetmap pbf extract covering the service area")
	outPath = flag.String("out", "./data/stops.json", "bus stop registry output, read by the server at startup")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}

	extractor := osmparser.NewStopExtractor()
	stops, err := extractor.Parse(*mapPath, logger)
	if err != nil {
		panic(err)
	}

	if err := writeStops(*outPath, stops); err != nil {
		panic(err)
	}

	served := 0
	for _, stop := range stops {
		if len(stop.Lines) > 0 {
			served++
		}
	}
	logger.Info("bus stop registry written",
		zap.String("path", *outPath),
		zap.Int("stops", len(stops)),
		zap.Int("servedByALine", served))
}

func writeStops(path string, stops []osmparser.BusStop) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	return encoder.Encode(stops)
}
