package spatialindex

import (
	"github.com/sentiero-app/sentiero/pkg/geo"
	"github.com/tidwall/rtree"
)

type pointEntry[T any] struct {
	lat  float64
	lon  float64
	data T
}

// Rtree. spatial index over point payloads. queries expand the query point to a
// bounding box and post-filter candidates by haversine distance, so "within
// radius" means the true great-circle radius and not just the box.
type Rtree[T any] struct {
	tr *rtree.RTreeG[pointEntry[T]]
}

func NewRtree[T any]() *Rtree[T] {
	var tr rtree.RTreeG[pointEntry[T]]
	return &Rtree[T]{
		tr: &tr,
	}
}

func (rt *Rtree[T]) InsertPoint(lat, lon float64, data T) {
	rt.tr.Insert([2]float64{lon, lat}, [2]float64{lon, lat},
		pointEntry[T]{lat: lat, lon: lon, data: data})
}

func (rt *Rtree[T]) Len() int {
	return rt.tr.Len()
}

// SearchWithinRadius search for all payloads within radius (in km) from the query point (qLat, qLon)
func (rt *Rtree[T]) SearchWithinRadius(qLat, qLon, radius float64) []T {
	lowerLat, lowerLon := geo.GetDestinationPoint(qLat, qLon, 225, radius)
	upperLat, upperLon := geo.GetDestinationPoint(qLat, qLon, 45, radius)

	results := make([]T, 0, 10)
	rt.tr.Search([2]float64{lowerLon, lowerLat}, [2]float64{upperLon, upperLat},
		func(min, max [2]float64, entry pointEntry[T]) bool {
			if geo.CalculateHaversineDistance(qLat, qLon, entry.lat, entry.lon) <= radius {
				results = append(results, entry.data)
			}
			return true
		})
	return results
}
