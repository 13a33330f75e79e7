package model

import "math"

const earthRadiusM = 6371000.0

// Coord is a WGS84 coordinate.
type Coord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// DistanceM returns the haversine great-circle distance to other in meters.
func (c Coord) DistanceM(other Coord) float64 {
	lat1 := c.Lat * math.Pi / 180
	lat2 := other.Lat * math.Pi / 180
	dLat := (other.Lat - c.Lat) * math.Pi / 180
	dLon := (other.Lon - c.Lon) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusM * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// Spacetime is a location paired with the simulation time at which it holds.
type Spacetime struct {
	Loc  Coord `json:"loc"`
	Time int64 `json:"time"` // simulation seconds
}

// Geofence bounds the operational area of a vehicle.
type Geofence struct {
	Center  Coord   `json:"center"`
	RadiusM float64 `json:"radius_m"`
}

// Contains reports whether the coordinate lies inside the fence.
func (g Geofence) Contains(c Coord) bool {
	return g.Center.DistanceM(c) <= g.RadiusM
}
