package geo

import (
	"github.com/twpayne/go-polyline"
)

// PolylineFromCoords. encode coordinates with the google encoded-polyline
// algorithm (precision 5).
func PolylineFromCoords(coords []Coordinate) string {
	buf := make([][]float64, len(coords))
	for i, c := range coords {
		buf[i] = []float64{c.Lat, c.Lon}
	}
	return string(polyline.EncodeCoords(buf))
}

// CoordsFromPolyline. decode a precision-5 encoded polyline.
func CoordsFromPolyline(enc string) ([]Coordinate, error) {
	buf, _, err := polyline.DecodeCoords([]byte(enc))
	if err != nil {
		return nil, err
	}
	coords := make([]Coordinate, len(buf))
	for i, pair := range buf {
		coords[i] = NewCoordinate(pair[0], pair[1])
	}
	return coords, nil
}
