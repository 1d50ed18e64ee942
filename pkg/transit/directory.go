package transit

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/sentiero-app/sentiero/pkg/datastructure"
	"github.com/sentiero-app/sentiero/pkg/geo"
	"github.com/sentiero-app/sentiero/pkg/spatialindex"
	"github.com/sentiero-app/sentiero/pkg/util"
)

// Directory. in-memory bus stop registry with a spatial index for radius
// queries. stops are loaded once at startup and never mutated.
type Directory struct {
	stops []datastructure.TransitStop
	index *spatialindex.Rtree[datastructure.TransitStop]
}

func NewDirectory(stops []datastructure.TransitStop) *Directory {
	index := spatialindex.NewRtree[datastructure.TransitStop]()
	for _, stop := range stops {
		index.InsertPoint(stop.GetLocation().GetLat(), stop.GetLocation().GetLon(), stop)
	}
	return &Directory{
		stops: stops,
		index: index,
	}
}

type stopEntry struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Lat   float64  `json:"lat"`
	Lon   float64  `json:"lon"`
	Lines []string `json:"lines"`
}

// LoadStops. read the bus stop registry from a json file, produced by
// cmd/stopextract.
func LoadStops(path string) (*Directory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "open stop registry %s", path)
	}
	defer f.Close()

	var entries []stopEntry
	if err := json.NewDecoder(f).Decode(&entries); err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "decode stop registry %s", path)
	}

	stops := make([]datastructure.TransitStop, 0, len(entries))
	for _, e := range entries {
		stops = append(stops, datastructure.NewTransitStop(e.ID, e.Name,
			geo.NewCoordinate(e.Lat, e.Lon), e.Lines))
	}
	return NewDirectory(stops), nil
}

func (d *Directory) GetStops() []datastructure.TransitStop {
	return d.stops
}

// StopsNear. all stops within radiusKm of p, nearest first. ties fall back to
// stop id so the order is stable.
func (d *Directory) StopsNear(p geo.Coordinate, radiusKm float64) []datastructure.TransitStop {
	stops := d.index.SearchWithinRadius(p.GetLat(), p.GetLon(), radiusKm)

	sort.SliceStable(stops, func(i, j int) bool {
		di := geo.CalculateHaversineDistance(p.GetLat(), p.GetLon(),
			stops[i].GetLocation().GetLat(), stops[i].GetLocation().GetLon())
		dj := geo.CalculateHaversineDistance(p.GetLat(), p.GetLon(),
			stops[j].GetLocation().GetLat(), stops[j].GetLocation().GetLon())
		if di != dj {
			return di < dj
		}
		return stops[i].GetID() < stops[j].GetID()
	})
	return stops
}

// FirstCommonLine. first bus line serving one stop from each list, scanning
// origin stops in order, then each stop's lines in declared order. returns
// false when the lists share no line.
func (d *Directory) FirstCommonLine(origins, destinations []datastructure.TransitStop) (string,
	datastructure.TransitStop, datastructure.TransitStop, bool) {
	for _, origin := range origins {
		for _, line := range origin.GetLines() {
			for _, dest := range destinations {
				if dest.GetID() == origin.GetID() {
					continue
				}
				if dest.ServesLine(line) {
					return line, origin, dest, true
				}
			}
		}
	}
	return "", datastructure.TransitStop{}, datastructure.TransitStop{}, false
}
