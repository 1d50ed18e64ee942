package safety

import (
	"fmt"
	"math"

	"github.com/sentiero-app/sentiero/pkg"
	"github.com/sentiero-app/sentiero/pkg/geo"
	"github.com/sentiero-app/sentiero/pkg/util"
)

// RouteAnalysis. aggregate safety view of one route geometry.
type RouteAnalysis struct {
	safetyScore      int
	avgRisk          float64
	maxRisk          float64
	warnings         []string
	dangerousIndices []int
	encounteredPois  []string
}

func NewRouteAnalysis(safetyScore int, avgRisk, maxRisk float64, warnings []string,
	dangerousIndices []int, encounteredPois []string) *RouteAnalysis {
	return &RouteAnalysis{
		safetyScore:      safetyScore,
		avgRisk:          avgRisk,
		maxRisk:          maxRisk,
		warnings:         warnings,
		dangerousIndices: dangerousIndices,
		encounteredPois:  encounteredPois,
	}
}

func (a *RouteAnalysis) GetSafetyScore() int {
	return a.safetyScore
}

func (a *RouteAnalysis) GetAvgRisk() float64 {
	return a.avgRisk
}

func (a *RouteAnalysis) GetMaxRisk() float64 {
	return a.maxRisk
}

func (a *RouteAnalysis) GetWarnings() []string {
	return a.warnings
}

func (a *RouteAnalysis) GetDangerousIndices() []int {
	return a.dangerousIndices
}

func (a *RouteAnalysis) GetEncounteredPois() []string {
	return a.encounteredPois
}

// RouteScorer. samples a route geometry through the risk model and reduces the
// samples into a single 0-100 safety score plus warnings.
type RouteScorer struct {
	model   *RiskModel
	dataset *SafetyDataset
}

func NewRouteScorer(model *RiskModel, dataset *SafetyDataset) *RouteScorer {
	return &RouteScorer{model: model, dataset: dataset}
}

/*
ScoreRoute. deterministic given the geometry and the reference data.

penalties are subtracted from a 100-point ceiling in a fixed order: distinct
unsafe POIs, dangerous sample fraction, severe peak risk, route length. the
ordering and constants are calibration, keep them as they are.
*/
func (rs *RouteScorer) ScoreRoute(geometry []geo.Coordinate) *RouteAnalysis {
	if len(geometry) == 0 {
		// degenerate input is a perfect score, not an error
		return NewRouteAnalysis(100, 0, 0, []string{}, []int{}, []string{})
	}

	stride := util.Max(len(geometry)/SCORE_SAMPLE_TARGET, 1)

	var (
		riskSum          float64
		maxRisk          float64
		sampled          int
		warnings         = make([]string, 0, 4)
		seenWarnings     = make(map[string]struct{})
		dangerousIndices = make([]int, 0)
		encounteredPois  = make([]string, 0)
		seenPois         = make(map[string]struct{})
	)

	addWarning := func(w string) {
		if _, ok := seenWarnings[w]; ok {
			return
		}
		seenWarnings[w] = struct{}{}
		warnings = append(warnings, w)
	}

	for i := 0; i < len(geometry); i += stride {
		p := geometry[i]
		sampled++

		risk := rs.model.PointRisk(p)
		riskSum += risk
		if risk > maxRisk {
			maxRisk = risk
		}

		if risk > DANGEROUS_RISK_THRESHOLD {
			dangerousIndices = append(dangerousIndices, i)
			if nearest := rs.model.NearestNeighborhood(p); nearest != "" {
				addWarning(fmt.Sprintf("high risk area in %s", nearest))
			}
		}

		for _, poi := range rs.dataset.GetUnsafePois() {
			if poi.GetRadius() <= 0 {
				continue
			}
			d := geo.EuclideanDegreeDistance(p, poi.GetCenter())
			if d <= POI_PROXIMITY_FACTOR*poi.GetRadius() {
				if _, ok := seenPois[poi.GetName()]; !ok {
					seenPois[poi.GetName()] = struct{}{}
					encounteredPois = append(encounteredPois, poi.GetName())
				}
				addWarning(fmt.Sprintf("route passes near %s", poi.GetName()))
			}
		}
	}

	avgRisk := riskSum / float64(sampled)

	score := (1.0 - avgRisk) * 100.0
	score -= POI_ENCOUNTER_PENALTY * float64(len(encounteredPois))

	dangerousFraction := float64(len(dangerousIndices)) / float64(sampled)
	score -= DANGEROUS_FRACTION_PENALTY * dangerousFraction

	if maxRisk > SEVERE_RISK_THRESHOLD {
		score -= SEVERE_RISK_PENALTY
	}

	length := estimateRouteLengthMeters(geometry)
	if length > LONG_ROUTE_METERS {
		score -= LONG_ROUTE_PENALTY
	} else if length > MEDIUM_ROUTE_METERS {
		score -= MEDIUM_ROUTE_PENALTY
	}

	finalScore := int(math.Round(util.Clamp(score, 0.0, 100.0)))

	return NewRouteAnalysis(finalScore, avgRisk, maxRisk, warnings, dangerousIndices, encounteredPois)
}

// estimateRouteLengthMeters. cumulative planar approximation: one degree of
// latitude is ~111km, longitude scaled by cos(latitude).
func estimateRouteLengthMeters(geometry []geo.Coordinate) float64 {
	total := 0.0
	for i := 1; i < len(geometry); i++ {
		a := geometry[i-1]
		b := geometry[i]
		dLat := (b.Lat - a.Lat) * pkg.METERS_PER_DEGREE_LAT
		dLon := (b.Lon - a.Lon) * pkg.METERS_PER_DEGREE_LAT * math.Cos(util.DegreeToRadians(a.Lat))
		total += math.Sqrt(dLat*dLat + dLon*dLon)
	}
	return total
}
