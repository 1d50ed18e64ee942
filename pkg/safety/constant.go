package safety

const (
	// composite point-risk weights. empirically calibrated against the incident
	// dataset, reproduce as-is.
	NEIGHBORHOOD_RISK_WEIGHT = 0.40
	INCIDENT_DENSITY_WEIGHT  = 0.40
	POI_RISK_WEIGHT          = 0.20

	// a maximally dense 3x3 grid neighborhood saturates incident density to 1.0.
	INCIDENT_DENSITY_NORMALIZER = 60.0

	// cap per-route risk sampling at roughly this many points. accuracy/cost
	// tradeoff for very long geometries.
	SCORE_SAMPLE_TARGET = 100

	// a sampled point above this risk is flagged dangerous.
	DANGEROUS_RISK_THRESHOLD = 0.5
	// a route whose riskiest sample exceeds this takes a flat penalty.
	SEVERE_RISK_THRESHOLD = 0.7

	// points within this multiple of an unsafe POI radius raise a proximity warning.
	POI_PROXIMITY_FACTOR = 1.5

	POI_ENCOUNTER_PENALTY      = 5.0
	DANGEROUS_FRACTION_PENALTY = 15.0
	SEVERE_RISK_PENALTY        = 5.0

	LONG_ROUTE_METERS    = 5000.0
	MEDIUM_ROUTE_METERS  = 3000.0
	LONG_ROUTE_PENALTY   = 4.0
	MEDIUM_ROUTE_PENALTY = 2.0
)
