package planner

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/sentiero-app/sentiero/pkg/geo"
)

// RouteID. deterministic identifier derived from the route geometry. the same
// polyline always maps to the same id, which keys the score memo and lets
// clients correlate plan responses across requests.
func RouteID(geometry []geo.Coordinate) string {
	h := fnv.New64a()
	var buf [8]byte
	for _, p := range geometry {
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(p.GetLat()))
		h.Write(buf[:])
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(p.GetLon()))
		h.Write(buf[:])
	}
	return fmt.Sprintf("route-%016x", h.Sum64())
}
