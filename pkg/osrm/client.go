package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sentiero-app/sentiero/pkg/datastructure"
	"github.com/sentiero-app/sentiero/pkg/geo"
	"github.com/sentiero-app/sentiero/pkg/util"
)

const (
	DEFAULT_BASE_URL = "http://router.project-osrm.org"
	DEFAULT_TIMEOUT  = 10 * time.Second
)

// Client. OSRM http client for the foot profile. asks for every alternative
// with full polyline geometry and per-step maneuvers.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DEFAULT_BASE_URL
	}
	if timeout <= 0 {
		timeout = DEFAULT_TIMEOUT
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type routeResponse struct {
	Code   string      `json:"code"`
	Routes []osrmRoute `json:"routes"`
}

type osrmRoute struct {
	Distance float64   `json:"distance"`
	Duration float64   `json:"duration"`
	Geometry string    `json:"geometry"`
	Legs     []osrmLeg `json:"legs"`
}

type osrmLeg struct {
	Steps []osrmStep `json:"steps"`
}

type osrmStep struct {
	Distance float64      `json:"distance"`
	Name     string       `json:"name"`
	Maneuver osrmManeuver `json:"maneuver"`
}

type osrmManeuver struct {
	Type     string `json:"type"`
	Modifier string `json:"modifier"`
}

// WalkingPaths. every walking alternative between origin and destination.
// returns util.ErrNotFound when OSRM knows no path between the two points.
func (c *Client) WalkingPaths(ctx context.Context, origin, destination geo.Coordinate) ([]datastructure.PathAlternative, error) {
	url := fmt.Sprintf("%s/route/v1/foot/%f,%f;%f,%f?alternatives=true&steps=true&geometries=polyline&overview=full",
		c.baseURL, origin.GetLon(), origin.GetLat(), destination.GetLon(), destination.GetLat())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "build osrm request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "call osrm")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusBadRequest {
		return nil, util.WrapErrorf(fmt.Errorf("status %s", resp.Status), util.ErrInternalServerError,
			"osrm request failed")
	}

	var decoded routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "decode osrm response")
	}

	// OSRM reports NoRoute/NoSegment with a non-Ok code
	if decoded.Code != "Ok" || len(decoded.Routes) == 0 {
		return nil, util.WrapErrorf(fmt.Errorf("osrm code %q", decoded.Code), util.ErrNotFound,
			"no walking path between (%f, %f) and (%f, %f)",
			origin.GetLat(), origin.GetLon(), destination.GetLat(), destination.GetLon())
	}

	alternatives := make([]datastructure.PathAlternative, 0, len(decoded.Routes))
	for _, route := range decoded.Routes {
		geometry, err := geo.CoordsFromPolyline(route.Geometry)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrInternalServerError, "decode osrm geometry")
		}

		legs := make([]datastructure.PathLeg, 0)
		for _, leg := range route.Legs {
			for _, step := range leg.Steps {
				legs = append(legs, datastructure.NewPathLeg(step.Name, step.Distance,
					step.Maneuver.Type, step.Maneuver.Modifier))
			}
		}

		alternatives = append(alternatives,
			datastructure.NewPathAlternative(geometry, route.Distance, route.Duration, legs))
	}
	return alternatives, nil
}
