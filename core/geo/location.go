package geo

import "math"

const earthRadiusM = 6371000.0

// NoNode marks a Location that is not pinned to a road-network node.
const NoNode int64 = -1

// Location is an immutable geographic coordinate, optionally pinned to a
// road-network node. Locations are value types: they are replaced, never
// mutated.
type Location struct {
	Lat    float64
	Lon    float64
	NodeID int64
}

// New returns a free-floating Location.
func New(lat, lon float64) Location {
	return Location{Lat: lat, Lon: lon, NodeID: NoNode}
}

// AtNode returns a Location pinned to the given network node.
func AtNode(lat, lon float64, node int64) Location {
	return Location{Lat: lat, Lon: lon, NodeID: node}
}

// Valid reports whether the coordinates are finite and inside WGS84 bounds.
func (l Location) Valid() bool {
	if math.IsNaN(l.Lat) || math.IsNaN(l.Lon) || math.IsInf(l.Lat, 0) || math.IsInf(l.Lon, 0) {
		return false
	}
	return l.Lat >= -90 && l.Lat <= 90 && l.Lon >= -180 && l.Lon <= 180
}

// DistanceTo returns the great-circle distance to other in meters.
func (l Location) DistanceTo(other Location) float64 {
	lat1 := l.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - l.Lat) * math.Pi / 180
	dLon := (other.Lon - l.Lon) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}

// Interpolate returns the point a fraction t along the straight segment from
// l to other. t is clamped to [0,1]. The result is not pinned to a node.
func (l Location) Interpolate(other Location, t float64) Location {
	if t <= 0 {
		return New(l.Lat, l.Lon)
	}
	if t >= 1 {
		return New(other.Lat, other.Lon)
	}
	return New(l.Lat+(other.Lat-l.Lat)*t, l.Lon+(other.Lon-l.Lon)*t)
}

// SamePoint reports whether two locations share the same coordinates,
// ignoring node pinning.
func (l Location) SamePoint(other Location) bool {
	return l.Lat == other.Lat && l.Lon == other.Lon
}
