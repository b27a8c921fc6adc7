package routing

import (
	"github.com/voltroute/voltroute/pkg/polyline"
)

// DefaultMaxOffsetKm is the default corridor width when measuring points
// against a route. Points further off the route than this are not assigned
// a distance.
const DefaultMaxOffsetKm = 5.0

// AlongRouteDistancesKm measures each point against the route geometry and
// returns its distance from the route start, in kilometers, measured along
// the route. Points whose perpendicular offset from the route exceeds
// maxOffsetKm are omitted from the result.
func AlongRouteDistancesKm(geometryPolyline string, points map[string]Coordinate, maxOffsetKm float64) map[string]float64 {
	if maxOffsetKm <= 0 {
		maxOffsetKm = DefaultMaxOffsetKm
	}

	coords := polyline.Decode(geometryPolyline)
	if len(coords) < 2 {
		return map[string]float64{}
	}

	out := make(map[string]float64, len(points))
	for id, p := range points {
		along, offset := polyline.DistanceAlong(coords, polyline.Coordinate{Lat: p.Lat, Lon: p.Lon})
		if offset/1000 > maxOffsetKm {
			continue
		}
		out[id] = along / 1000
	}
	return out
}
