package safety

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/sentiero-app/sentiero/pkg/geo"
	"github.com/sentiero-app/sentiero/pkg/util"
)

// Neighborhood. static reference area with a precomputed risk score. the
// influence radius is carried from the dataset but point assignment is
// nearest-center, not radius gated.
type Neighborhood struct {
	name            string
	center          geo.Coordinate
	influenceRadius float64
	riskScore       float64
}

func NewNeighborhood(name string, center geo.Coordinate, influenceRadius, riskScore float64) Neighborhood {
	return Neighborhood{
		name:            name,
		center:          center,
		influenceRadius: influenceRadius,
		riskScore:       riskScore,
	}
}

func (n Neighborhood) GetName() string {
	return n.name
}

func (n Neighborhood) GetCenter() geo.Coordinate {
	return n.center
}

func (n Neighborhood) GetInfluenceRadius() float64 {
	return n.influenceRadius
}

func (n Neighborhood) GetRiskScore() float64 {
	return n.riskScore
}

// UnsafePOI. known hazardous location with decaying proximity risk. radius is
// in degrees, same metric the neighborhood assignment uses.
type UnsafePOI struct {
	name   string
	center geo.Coordinate
	radius float64
	weight float64
}

func NewUnsafePOI(name string, center geo.Coordinate, radius, weight float64) UnsafePOI {
	return UnsafePOI{
		name:   name,
		center: center,
		radius: radius,
		weight: weight,
	}
}

func (p UnsafePOI) GetName() string {
	return p.name
}

func (p UnsafePOI) GetCenter() geo.Coordinate {
	return p.center
}

func (p UnsafePOI) GetRadius() float64 {
	return p.radius
}

func (p UnsafePOI) GetWeight() float64 {
	return p.weight
}

type DangerousStreet struct {
	street    string
	incidents int
}

func NewDangerousStreet(street string, incidents int) DangerousStreet {
	return DangerousStreet{street: street, incidents: incidents}
}

func (d DangerousStreet) GetStreet() string {
	return d.street
}

func (d DangerousStreet) GetIncidents() int {
	return d.incidents
}

type GridConfig struct {
	latStep float64
	lonStep float64
}

func NewGridConfig(latStep, lonStep float64) GridConfig {
	return GridConfig{latStep: latStep, lonStep: lonStep}
}

func (g GridConfig) GetLatStep() float64 {
	return g.latStep
}

func (g GridConfig) GetLonStep() float64 {
	return g.lonStep
}

// GridKey. quantize a coordinate to its grid cell key, "lat,lon" with 4
// decimals, floor quantization. must match the key format the dataset builder
// writes.
func GridKey(lat, lon, latStep, lonStep float64) string {
	qLat := math.Floor(lat/latStep) * latStep
	qLon := math.Floor(lon/lonStep) * lonStep
	return fmt.Sprintf("%.4f,%.4f", qLat, qLon)
}

// SafetyDataset. immutable reference data loaded once at startup: neighborhood
// risk scores, the incident grid, dangerous streets, heatmap points and the
// unsafe POI list.
type SafetyDataset struct {
	neighborhoods    []Neighborhood
	incidentGrid     map[string]int
	gridConfig       GridConfig
	dangerousStreets []DangerousStreet
	incidentPoints   []geo.Coordinate
	unsafePois       []UnsafePOI
}

func NewSafetyDataset(neighborhoods []Neighborhood, incidentGrid map[string]int,
	gridConfig GridConfig, dangerousStreets []DangerousStreet,
	incidentPoints []geo.Coordinate, unsafePois []UnsafePOI) *SafetyDataset {
	if incidentGrid == nil {
		incidentGrid = make(map[string]int)
	}
	return &SafetyDataset{
		neighborhoods:    neighborhoods,
		incidentGrid:     incidentGrid,
		gridConfig:       gridConfig,
		dangerousStreets: dangerousStreets,
		incidentPoints:   incidentPoints,
		unsafePois:       unsafePois,
	}
}

func (d *SafetyDataset) GetNeighborhoods() []Neighborhood {
	return d.neighborhoods
}

func (d *SafetyDataset) GetUnsafePois() []UnsafePOI {
	return d.unsafePois
}

func (d *SafetyDataset) GetDangerousStreets() []DangerousStreet {
	return d.dangerousStreets
}

func (d *SafetyDataset) GetIncidentPoints() []geo.Coordinate {
	return d.incidentPoints
}

func (d *SafetyDataset) GetGridConfig() GridConfig {
	return d.gridConfig
}

// GridCount. incident count of the cell containing (lat, lon). cells missing
// from the dataset count zero.
func (d *SafetyDataset) GridCount(lat, lon float64) int {
	if d.gridConfig.latStep == 0 || d.gridConfig.lonStep == 0 {
		return 0
	}
	return d.incidentGrid[GridKey(lat, lon, d.gridConfig.latStep, d.gridConfig.lonStep)]
}

// GridCountAt. incident count of the cell offset (di, dj) steps from the cell
// containing (lat, lon).
func (d *SafetyDataset) GridCountAt(lat, lon float64, di, dj int) int {
	if d.gridConfig.latStep == 0 || d.gridConfig.lonStep == 0 {
		return 0
	}
	qLat := (math.Floor(lat/d.gridConfig.latStep) + float64(di)) * d.gridConfig.latStep
	qLon := (math.Floor(lon/d.gridConfig.lonStep) + float64(dj)) * d.gridConfig.lonStep
	return d.incidentGrid[fmt.Sprintf("%.4f,%.4f", qLat, qLon)]
}

// wire format of the dataset file, produced by cmd/safetydata.
type datasetFile struct {
	NeighborhoodScores map[string]neighborhoodEntry `json:"neighborhoodScores"`
	IncidentGrid       map[string]int               `json:"incidentGrid"`
	GridConfig         gridConfigEntry              `json:"gridConfig"`
	DangerousStreets   []dangerousStreetEntry       `json:"dangerousStreets"`
	IncidentPoints     []incidentPointEntry         `json:"incidentPoints"`
	UnsafePois         []unsafePoiEntry             `json:"unsafePois"`
}

type neighborhoodEntry struct {
	Lat             float64 `json:"lat"`
	Lon             float64 `json:"lon"`
	RiskScore       float64 `json:"riskScore"`
	InfluenceRadius float64 `json:"influenceRadius"`
}

type gridConfigEntry struct {
	LatStep float64 `json:"latStep"`
	LonStep float64 `json:"lonStep"`
}

type dangerousStreetEntry struct {
	Street    string `json:"street"`
	Incidents int    `json:"incidents"`
}

type incidentPointEntry struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type unsafePoiEntry struct {
	Name   string  `json:"name"`
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Radius float64 `json:"radius"`
	Weight float64 `json:"weight"`
}

// LoadDataset. read the safety dataset from a json file, transparently
// decompressing when the path ends with .bz2.
func LoadDataset(path string) (*SafetyDataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "open safety dataset %s", path)
	}
	defer f.Close()

	var r io.Reader = f
	if strings.HasSuffix(path, ".bz2") {
		bz, err := bzip2.NewReader(f, nil)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrInternalServerError, "open bzip2 stream %s", path)
		}
		defer bz.Close()
		r = bz
	}

	var file datasetFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "decode safety dataset %s", path)
	}

	return newDatasetFromFile(&file), nil
}

func newDatasetFromFile(file *datasetFile) *SafetyDataset {
	names := make([]string, 0, len(file.NeighborhoodScores))
	for name := range file.NeighborhoodScores {
		names = append(names, name)
	}
	// stable neighborhood order keeps nearest-center ties deterministic
	sort.Strings(names)

	neighborhoods := make([]Neighborhood, 0, len(names))
	for _, name := range names {
		entry := file.NeighborhoodScores[name]
		neighborhoods = append(neighborhoods, NewNeighborhood(name,
			geo.NewCoordinate(entry.Lat, entry.Lon), entry.InfluenceRadius, entry.RiskScore))
	}

	streets := make([]DangerousStreet, 0, len(file.DangerousStreets))
	for _, s := range file.DangerousStreets {
		streets = append(streets, NewDangerousStreet(s.Street, s.Incidents))
	}

	points := make([]geo.Coordinate, 0, len(file.IncidentPoints))
	for _, p := range file.IncidentPoints {
		points = append(points, geo.NewCoordinate(p.Lat, p.Lon))
	}

	pois := make([]UnsafePOI, 0, len(file.UnsafePois))
	for _, p := range file.UnsafePois {
		pois = append(pois, NewUnsafePOI(p.Name, geo.NewCoordinate(p.Lat, p.Lon), p.Radius, p.Weight))
	}

	return NewSafetyDataset(neighborhoods, file.IncidentGrid,
		NewGridConfig(file.GridConfig.LatStep, file.GridConfig.LonStep), streets, points, pois)
}
