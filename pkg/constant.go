package pkg

// enum of route kind. every planned candidate is tagged with exactly one kind.
type RouteKind uint8

const (
	FAST_ROUTE RouteKind = iota
	SAFE_ROUTE
	TRANSIT_ROUTE
)

func (k RouteKind) String() string {
	switch k {
	case FAST_ROUTE:
		return "fast"
	case SAFE_ROUTE:
		return "safe"
	case TRANSIT_ROUTE:
		return "transit"
	default:
		return "unknown"
	}
}

// enum of travel mode for a single step.
type TravelMode uint8

const (
	WALK_MODE TravelMode = iota
	TRANSIT_MODE
)

func (m TravelMode) String() string {
	switch m {
	case WALK_MODE:
		return "walk"
	case TRANSIT_MODE:
		return "transit"
	default:
		return "unknown"
	}
}

const (
	// walking pace of a child. external providers assume adult/driving pace,
	// so every walking duration must be recomputed with this constant.
	WALKING_SPEED_MS = 1.25

	// assumed urban bus speed for the in-vehicle leg estimate.
	TRANSIT_SPEED_KMH = 15.0
	// fixed boarding/dwell allowance added to every in-vehicle leg.
	TRANSIT_DWELL_SECONDS = 120.0

	// search radius around trip endpoints when looking for boarding/alighting stops.
	STOP_SEARCH_RADIUS_KM = 1.0

	METERS_PER_DEGREE_LAT = 111000.0
)

const (
	DEBUG = false
)
