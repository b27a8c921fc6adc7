package polyline

import "math"

// DistanceAlong returns the distance in meters from the start of the
// polyline to the point on it nearest to the given coordinate, plus the
// offset in meters between that point and the coordinate itself.
//
// The nearest point is found by projecting onto each segment, so a
// coordinate alongside the route measures against the adjacent segment
// rather than the nearest vertex.
func DistanceAlong(coords []Coordinate, p Coordinate) (alongMeters, offsetMeters float64) {
	if len(coords) == 0 {
		return 0, 0
	}
	if len(coords) == 1 {
		return 0, haversineDistance(coords[0], p)
	}

	bestOffset := haversineDistance(coords[0], p)
	bestAlong := 0.0
	accumulated := 0.0

	for i := 1; i < len(coords); i++ {
		a, b := coords[i-1], coords[i]
		segLen := haversineDistance(a, b)

		frac := projectFraction(a, b, p)
		candidate := interpolate(a, b, frac)
		offset := haversineDistance(candidate, p)
		if offset < bestOffset {
			bestOffset = offset
			bestAlong = accumulated + frac*segLen
		}

		accumulated += segLen
	}

	return bestAlong, bestOffset
}

// projectFraction returns where p projects onto segment a-b, clamped to
// [0,1]. Uses an equirectangular approximation, which is accurate enough
// at route-segment scale.
func projectFraction(a, b, p Coordinate) float64 {
	ax, ay := planar(a, a)
	bx, by := planar(b, a)
	px, py := planar(p, a)

	dx := bx - ax
	dy := by - ay
	lenSq := dx*dx + dy*dy
	if lenSq == 0 {
		return 0
	}

	t := ((px-ax)*dx + (py-ay)*dy) / lenSq
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}

// planar maps a coordinate to local planar meters around a reference point.
func planar(c, ref Coordinate) (x, y float64) {
	const degToRad = math.Pi / 180
	x = (c.Lon - ref.Lon) * degToRad * earthRadiusMeters * math.Cos(ref.Lat*degToRad)
	y = (c.Lat - ref.Lat) * degToRad * earthRadiusMeters
	return x, y
}

func interpolate(a, b Coordinate, frac float64) Coordinate {
	return Coordinate{
		Lat: a.Lat + frac*(b.Lat-a.Lat),
		Lon: a.Lon + frac*(b.Lon-a.Lon),
	}
}
