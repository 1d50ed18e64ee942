package safety

import (
	"github.com/sentiero-app/sentiero/pkg/geo"
	"github.com/sentiero-app/sentiero/pkg/util"
)

// RiskModel. maps a coordinate to a scalar risk in [0,1] from the static
// reference data. total over all coordinates, missing data contributes zero.
type RiskModel struct {
	dataset *SafetyDataset
}

func NewRiskModel(dataset *SafetyDataset) *RiskModel {
	return &RiskModel{dataset: dataset}
}

// RiskBreakdown. per-term view of a composite point risk, for diagnostics.
type RiskBreakdown struct {
	total               float64
	neighborhoodRisk    float64
	incidentDensity     float64
	poiRisk             float64
	nearestNeighborhood string
}

func (b RiskBreakdown) GetTotal() float64 {
	return b.total
}

func (b RiskBreakdown) GetNeighborhoodRisk() float64 {
	return b.neighborhoodRisk
}

func (b RiskBreakdown) GetIncidentDensity() float64 {
	return b.incidentDensity
}

func (b RiskBreakdown) GetPoiRisk() float64 {
	return b.poiRisk
}

func (b RiskBreakdown) GetNearestNeighborhood() string {
	return b.nearestNeighborhood
}

// PointRisk. composite risk at p, clamped to [0,1].
func (m *RiskModel) PointRisk(p geo.Coordinate) float64 {
	return m.Breakdown(p).total
}

func (m *RiskModel) Breakdown(p geo.Coordinate) RiskBreakdown {
	neighborhoodRisk, nearest := m.neighborhoodRisk(p)
	incidentDensity := m.incidentDensity(p)
	poiRisk := m.poiRisk(p)

	composite := NEIGHBORHOOD_RISK_WEIGHT*neighborhoodRisk +
		INCIDENT_DENSITY_WEIGHT*incidentDensity +
		POI_RISK_WEIGHT*poiRisk

	return RiskBreakdown{
		total:               util.Clamp(composite, 0.0, 1.0),
		neighborhoodRisk:    neighborhoodRisk,
		incidentDensity:     incidentDensity,
		poiRisk:             poiRisk,
		nearestNeighborhood: nearest,
	}
}

// NearestNeighborhood. name of the neighborhood whose center is closest to p
// in degree space. empty when the dataset has no neighborhoods.
func (m *RiskModel) NearestNeighborhood(p geo.Coordinate) string {
	_, nearest := m.neighborhoodRisk(p)
	return nearest
}

// neighborhoodRisk assigns p to the nearest neighborhood center. the whole map
// is partitioned into implicit voronoi cells, no radius gating.
func (m *RiskModel) neighborhoodRisk(p geo.Coordinate) (float64, string) {
	best := -1.0
	risk := 0.0
	name := ""
	for _, n := range m.dataset.GetNeighborhoods() {
		d := geo.EuclideanDegreeDistance(p, n.GetCenter())
		if best < 0 || d < best {
			best = d
			risk = n.GetRiskScore()
			name = n.GetName()
		}
	}
	return risk, name
}

// incidentDensity sums incident counts over the containing cell and its 8
// neighbors, normalized so a maximally dense 3x3 block saturates to 1.0.
func (m *RiskModel) incidentDensity(p geo.Coordinate) float64 {
	sum := 0
	for di := -1; di <= 1; di++ {
		for dj := -1; dj <= 1; dj++ {
			sum += m.dataset.GridCountAt(p.Lat, p.Lon, di, dj)
		}
	}
	return util.Clamp(float64(sum)/INCIDENT_DENSITY_NORMALIZER, 0.0, 1.0)
}

// poiRisk takes the maximum decaying contribution across unsafe POIs. one
// severe hazard dominates, contributions never stack.
func (m *RiskModel) poiRisk(p geo.Coordinate) float64 {
	max := 0.0
	for _, poi := range m.dataset.GetUnsafePois() {
		if poi.GetRadius() <= 0 {
			continue
		}
		d := geo.EuclideanDegreeDistance(p, poi.GetCenter())
		if d >= poi.GetRadius() {
			continue
		}
		contribution := (1.0 - d/poi.GetRadius()) * poi.GetWeight()
		if contribution > max {
			max = contribution
		}
	}
	return max
}
