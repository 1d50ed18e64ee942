package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sentiero-app/sentiero/pkg/geo"
	"github.com/sentiero-app/sentiero/pkg/logger"
	"github.com/sentiero-app/sentiero/pkg/safety"
	"go.uber.org/zap"
)

var (
	incidentsPath = flag.String("incidents", "./data/incidents.csv", "raw incident csv with street, lat, lon and neighborhood columns")
	centersPath   = flag.String("centers", "./data/neighborhood_centers.json", "neighborhood centers json")
	poisPath      = flag.String("pois", "", "optional unsafe poi json, copied into the dataset verbatim")
	outPath       = flag.String("out", "./data/safety_dataset.json.bz2", "output dataset path, .bz2 suffix compresses")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}

	incidents, skipped, err := readIncidents(*incidentsPath)
	if err != nil {
		panic(err)
	}
	logger.Info("incident rows read",
		zap.Int("rows", len(incidents)), zap.Int("skipped", skipped))

	centers, err := readCenters(*centersPath)
	if err != nil {
		panic(err)
	}

	var pois []safety.UnsafePOI
	if *poisPath != "" {
		pois, err = readPois(*poisPath)
		if err != nil {
			panic(err)
		}
	}

	dataset := safety.BuildDataset(incidents, centers, pois, safety.DefaultBuilderConfig())

	if err := safety.SaveDataset(*outPath, dataset); err != nil {
		panic(err)
	}

	logger.Info("safety dataset written",
		zap.String("path", *outPath),
		zap.Int("neighborhoods", len(dataset.GetNeighborhoods())),
		zap.Int("dangerousStreets", len(dataset.GetDangerousStreets())),
		zap.Int("heatmapPoints", len(dataset.GetIncidentPoints())),
		zap.Int("unsafePois", len(dataset.GetUnsafePois())))
}

// readIncidents parses the raw export. Columns are located by header name so
// the municipal export can keep its own column order and language.
func readIncidents(path string) ([]safety.IncidentRecord, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}

	latIdx := findColumn(header, "latit", "lat")
	lonIdx := findColumn(header, "longit", "lon")
	streetIdx := findColumn(header, "denominaz", "street")
	neighborhoodIdx := findColumn(header, "quartiere", "neighborhood")

	if latIdx < 0 || lonIdx < 0 {
		return nil, 0, fmt.Errorf("csv %s has no latitude/longitude columns", path)
	}

	var (
		incidents []safety.IncidentRecord
		skipped   int
	)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		if latIdx >= len(row) || lonIdx >= len(row) {
			skipped++
			continue
		}

		lat, latErr := strconv.ParseFloat(strings.TrimSpace(row[latIdx]), 64)
		lon, lonErr := strconv.ParseFloat(strings.TrimSpace(row[lonIdx]), 64)
		if latErr != nil || lonErr != nil {
			skipped++
			continue
		}

		rec := safety.IncidentRecord{Lat: lat, Lon: lon}
		if streetIdx >= 0 && streetIdx < len(row) {
			rec.Street = strings.TrimSpace(row[streetIdx])
		}
		if neighborhoodIdx >= 0 && neighborhoodIdx < len(row) {
			rec.Neighborhood = strings.TrimSpace(row[neighborhoodIdx])
		}
		incidents = append(incidents, rec)
	}

	return incidents, skipped, nil
}

// findColumn returns the index of the first header containing any needle,
// needles tried in order.
func findColumn(header []string, needles ...string) int {
	for _, needle := range needles {
		for i, col := range header {
			if strings.Contains(strings.ToLower(col), needle) {
				return i
			}
		}
	}
	return -1
}

type centerEntry struct {
	Lat             float64 `json:"lat"`
	Lon             float64 `json:"lon"`
	InfluenceRadius float64 `json:"influenceRadius"`
}

func readCenters(path string) ([]safety.NeighborhoodCenter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries map[string]centerEntry
	if err := json.NewDecoder(f).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode centers %s: %w", path, err)
	}

	centers := make([]safety.NeighborhoodCenter, 0, len(entries))
	for name, entry := range entries {
		centers = append(centers, safety.NeighborhoodCenter{
			Name:            name,
			Center:          geo.NewCoordinate(entry.Lat, entry.Lon),
			InfluenceRadius: entry.InfluenceRadius,
		})
	}
	return centers, nil
}

type poiEntry struct {
	Name   string  `json:"name"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Radius float64 `json:"radius"`
	Weight float64 `json:"weight"`
}

func readPois(path string) ([]safety.UnsafePOI, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var entries []poiEntry
	if err := json.NewDecoder(f).Decode(&entries); err != nil {
		return nil, fmt.Errorf("decode pois %s: %w", path, err)
	}

	pois := make([]safety.UnsafePOI, 0, len(entries))
	for _, entry := range entries {
		pois = append(pois, safety.NewUnsafePOI(entry.Name,
			geo.NewCoordinate(entry.Lat, entry.Lon), entry.Radius, entry.Weight))
	}
	return pois, nil
}
