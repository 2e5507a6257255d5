package geo

import "math"

const (
	// EarthRadiusMeters is the mean Earth radius used for all great-circle
	// distances in the catalogue.
	EarthRadiusMeters = 6371000.0
)

// Coordinates is a WGS84 point in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bounds represents a bounding box with min/max latitude and longitude
type Bounds struct {
	MinLat float64 `json:"min_lat"`
	MaxLat float64 `json:"max_lat"`
	MinLng float64 `json:"min_lng"`
	MaxLng float64 `json:"max_lng"`
}

// Distance returns the great-circle distance between two points in meters.
func Distance(from, to Coordinates) float64 {
	if from == to {
		return 0
	}

	lat1Rad := from.Lat * (math.Pi / 180)
	lng1Rad := from.Lng * (math.Pi / 180)
	lat2Rad := to.Lat * (math.Pi / 180)
	lng2Rad := to.Lng * (math.Pi / 180)

	deltaLng := lng2Rad - lng1Rad

	y := math.Sqrt(math.Pow(math.Cos(lat2Rad)*math.Sin(deltaLng), 2) +
		math.Pow(math.Cos(lat1Rad)*math.Sin(lat2Rad)-math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(deltaLng), 2))
	x := math.Sin(lat1Rad)*math.Sin(lat2Rad) + math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Cos(deltaLng)

	return EarthRadiusMeters * math.Atan2(y, x)
}

// BoundsAround returns the box that contains every point within distance
// meters of center.
func BoundsAround(center Coordinates, distance float64) Bounds {
	latRadians := center.Lat * math.Pi / 180
	lngRadians := center.Lng * math.Pi / 180

	latRadius := EarthRadiusMeters
	lngRadius := math.Cos(latRadians) * EarthRadiusMeters

	latOffset := distance / latRadius
	lngOffset := distance / lngRadius

	return Bounds{
		MinLat: (latRadians - latOffset) * 180 / math.Pi,
		MaxLat: (latRadians + latOffset) * 180 / math.Pi,
		MinLng: (lngRadians - lngOffset) * 180 / math.Pi,
		MaxLng: (lngRadians + lngOffset) * 180 / math.Pi,
	}
}

// Extend grows b to include c.
func (b Bounds) Extend(c Coordinates) Bounds {
	return Bounds{
		MinLat: math.Min(b.MinLat, c.Lat),
		MaxLat: math.Max(b.MaxLat, c.Lat),
		MinLng: math.Min(b.MinLng, c.Lng),
		MaxLng: math.Max(b.MaxLng, c.Lng),
	}
}

// Contains reports whether c lies inside b, edges included.
func (b Bounds) Contains(c Coordinates) bool {
	return c.Lat >= b.MinLat && c.Lat <= b.MaxLat &&
		c.Lng >= b.MinLng && c.Lng <= b.MaxLng
}

// Min and Max return the corners in the [lng, lat] order used by spatial
// indexes.
func (b Bounds) Min() [2]float64 { return [2]float64{b.MinLng, b.MinLat} }
func (b Bounds) Max() [2]float64 { return [2]float64{b.MaxLng, b.MaxLat} }

// Point returns the degenerate bounds of a single point.
func Point(c Coordinates) Bounds {
	return Bounds{MinLat: c.Lat, MaxLat: c.Lat, MinLng: c.Lng, MaxLng: c.Lng}
}
