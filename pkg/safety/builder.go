package safety

import (
	"encoding/json"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/sentiero-app/sentiero/pkg/geo"
	"github.com/sentiero-app/sentiero/pkg/util"
)

// builder defaults: the grid cell is roughly 330m x 350m at Bari's latitude,
// and the bounding box clips rows geocoded outside the city.
const (
	BUILDER_GRID_LAT_STEP = 0.003
	BUILDER_GRID_LON_STEP = 0.004

	BUILDER_MIN_LAT = 41.02
	BUILDER_MAX_LAT = 41.17
	BUILDER_MIN_LON = 16.72
	BUILDER_MAX_LON = 17.08

	BUILDER_MIN_STREET_INCIDENTS = 2
	BUILDER_MAX_HEATMAP_POINTS   = 500

	BUILDER_COORD_PRECISION = 5
	BUILDER_RISK_PRECISION  = 3
)

type BuilderConfig struct {
	LatStep float64
	LonStep float64

	MinLat float64
	MaxLat float64
	MinLon float64
	MaxLon float64

	MinStreetIncidents int
	MaxHeatmapPoints   int
}

func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{
		LatStep:            BUILDER_GRID_LAT_STEP,
		LonStep:            BUILDER_GRID_LON_STEP,
		MinLat:             BUILDER_MIN_LAT,
		MaxLat:             BUILDER_MAX_LAT,
		MinLon:             BUILDER_MIN_LON,
		MaxLon:             BUILDER_MAX_LON,
		MinStreetIncidents: BUILDER_MIN_STREET_INCIDENTS,
		MaxHeatmapPoints:   BUILDER_MAX_HEATMAP_POINTS,
	}
}

func (cfg BuilderConfig) inBounds(lat, lon float64) bool {
	return lat >= cfg.MinLat && lat <= cfg.MaxLat &&
		lon >= cfg.MinLon && lon <= cfg.MaxLon
}

// IncidentRecord. one row of the raw incident export.
type IncidentRecord struct {
	Street       string
	Lat          float64
	Lon          float64
	Neighborhood string
}

// NeighborhoodCenter. centroid of a neighborhood, from the centers file.
type NeighborhoodCenter struct {
	Name            string
	Center          geo.Coordinate
	InfluenceRadius float64
}

/*
BuildDataset. reduce raw incident rows into the reference dataset:

  - incident counts per grid cell, keys from GridKey,
  - the first MaxHeatmapPoints in-bounds rows as heatmap coordinates,
  - streets with MinStreetIncidents or more rows, by descending count,
  - per-neighborhood counts min-max normalized into [0,1] risk scores.

Rows outside the bounding box are dropped. POIs are carried through verbatim,
they come from a separate survey, not from the incident export.
*/
func BuildDataset(incidents []IncidentRecord, centers []NeighborhoodCenter,
	pois []UnsafePOI, cfg BuilderConfig) *SafetyDataset {
	grid := make(map[string]int)
	points := make([]geo.Coordinate, 0, cfg.MaxHeatmapPoints)
	streetCounts := make(map[string]int)
	neighborhoodCounts := make(map[string]int)

	for _, rec := range incidents {
		if !cfg.inBounds(rec.Lat, rec.Lon) {
			continue
		}

		grid[GridKey(rec.Lat, rec.Lon, cfg.LatStep, cfg.LonStep)]++

		if len(points) < cfg.MaxHeatmapPoints {
			points = append(points, geo.NewCoordinate(
				util.RoundFloat(rec.Lat, BUILDER_COORD_PRECISION),
				util.RoundFloat(rec.Lon, BUILDER_COORD_PRECISION)))
		}

		if street := strings.TrimSpace(rec.Street); street != "" {
			streetCounts[street]++
		}
		if neighborhood := strings.TrimSpace(rec.Neighborhood); neighborhood != "" {
			neighborhoodCounts[neighborhood]++
		}
	}

	streets := make([]DangerousStreet, 0, len(streetCounts))
	for street, count := range streetCounts {
		if count >= cfg.MinStreetIncidents {
			streets = append(streets, NewDangerousStreet(street, count))
		}
	}
	sort.Slice(streets, func(i, j int) bool {
		if streets[i].GetIncidents() != streets[j].GetIncidents() {
			return streets[i].GetIncidents() > streets[j].GetIncidents()
		}
		return streets[i].GetStreet() < streets[j].GetStreet()
	})

	neighborhoods := normalizeNeighborhoods(centers, neighborhoodCounts)

	return NewSafetyDataset(neighborhoods, grid, NewGridConfig(cfg.LatStep, cfg.LonStep),
		streets, points, pois)
}

// normalizeNeighborhoods min-max normalizes the per-neighborhood incident
// counts. Centers with no incidents score zero, and when every center has the
// same count there is no spread to normalize over, so all score zero.
func normalizeNeighborhoods(centers []NeighborhoodCenter, counts map[string]int) []Neighborhood {
	sorted := make([]NeighborhoodCenter, len(centers))
	copy(sorted, centers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	minCount, maxCount := 0, 0
	first := true
	for _, center := range sorted {
		count := counts[center.Name]
		if first {
			minCount, maxCount = count, count
			first = false
			continue
		}
		if count < minCount {
			minCount = count
		}
		if count > maxCount {
			maxCount = count
		}
	}

	neighborhoods := make([]Neighborhood, 0, len(sorted))
	for _, center := range sorted {
		risk := 0.0
		if maxCount > minCount {
			risk = float64(counts[center.Name]-minCount) / float64(maxCount-minCount)
		}
		neighborhoods = append(neighborhoods, NewNeighborhood(center.Name, center.Center,
			center.InfluenceRadius, util.RoundFloat(risk, BUILDER_RISK_PRECISION)))
	}
	return neighborhoods
}

// SaveDataset. write the dataset in the wire format LoadDataset reads,
// bzip2-compressed when the path ends with .bz2.
func SaveDataset(path string, d *SafetyDataset) error {
	f, err := os.Create(path)
	if err != nil {
		return util.WrapErrorf(err, util.ErrInternalServerError, "create safety dataset %s", path)
	}
	defer f.Close()

	var w io.Writer = f
	if strings.HasSuffix(path, ".bz2") {
		bz, err := bzip2.NewWriter(f, &bzip2.WriterConfig{})
		if err != nil {
			return util.WrapErrorf(err, util.ErrInternalServerError, "open bzip2 stream %s", path)
		}
		defer bz.Close()
		w = bz
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(newFileFromDataset(d)); err != nil {
		return util.WrapErrorf(err, util.ErrInternalServerError, "encode safety dataset %s", path)
	}
	return nil
}

func newFileFromDataset(d *SafetyDataset) *datasetFile {
	scores := make(map[string]neighborhoodEntry, len(d.neighborhoods))
	for _, n := range d.neighborhoods {
		scores[n.GetName()] = neighborhoodEntry{
			Lat:             n.GetCenter().GetLat(),
			Lon:             n.GetCenter().GetLon(),
			RiskScore:       n.GetRiskScore(),
			InfluenceRadius: n.GetInfluenceRadius(),
		}
	}

	streets := make([]dangerousStreetEntry, 0, len(d.dangerousStreets))
	for _, s := range d.dangerousStreets {
		streets = append(streets, dangerousStreetEntry{Street: s.GetStreet(), Incidents: s.GetIncidents()})
	}

	points := make([]incidentPointEntry, 0, len(d.incidentPoints))
	for _, p := range d.incidentPoints {
		points = append(points, incidentPointEntry{Lat: p.GetLat(), Lon: p.GetLon()})
	}

	pois := make([]unsafePoiEntry, 0, len(d.unsafePois))
	for _, p := range d.unsafePois {
		pois = append(pois, unsafePoiEntry{
			Name:   p.GetName(),
			Lat:    p.GetCenter().GetLat(),
			Lon:    p.GetCenter().GetLon(),
			Radius: p.GetRadius(),
			Weight: p.GetWeight(),
		})
	}

	return &datasetFile{
		NeighborhoodScores: scores,
		IncidentGrid:       d.incidentGrid,
		GridConfig:         gridConfigEntry{LatStep: d.gridConfig.latStep, LonStep: d.gridConfig.lonStep},
		DangerousStreets:   streets,
		IncidentPoints:     points,
		UnsafePois:         pois,
	}
}
