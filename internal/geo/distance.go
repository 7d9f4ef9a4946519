package geo

import (
	"math"
	"sort"

	"github.com/nekogravitycat/stay-booking-backend/internal/pkg/apperror"
)

// EarthRadiusKm is the mean Earth radius used by Distance.
const EarthRadiusKm = 6371.0

var ErrInvalidRadius = apperror.InvalidArgument("radius must be a non-negative number of kilometers")

// Point is a WGS84 coordinate pair in decimal degrees.
type Point struct {
	Lat float64
	Lon float64
}

// Distance returns the great-circle distance between a and b in kilometers (haversine).
func Distance(a, b Point) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c
}

// WithinRadius reports whether the optional coordinate lies within radiusKm of center.
// A missing latitude or longitude is never within range.
func WithinRadius(center Point, lat, lon *float64, radiusKm float64) bool {
	if lat == nil || lon == nil {
		return false
	}
	return Distance(center, Point{Lat: *lat, Lon: *lon}) <= radiusKm
}

// Located pairs an item with its distance from a search center.
type Located[T any] struct {
	Item       T
	DistanceKm float64
}

// FilterNearby keeps the items whose coordinates fall within radiusKm of center,
// nearest first. coords returns the item's optional latitude and longitude.
func FilterNearby[T any](items []T, center Point, radiusKm float64, coords func(T) (lat, lon *float64)) []Located[T] {
	out := make([]Located[T], 0, len(items))
	for _, it := range items {
		lat, lon := coords(it)
		if lat == nil || lon == nil {
			continue
		}
		d := Distance(center, Point{Lat: *lat, Lon: *lon})
		if d <= radiusKm {
			out = append(out, Located[T]{Item: it, DistanceKm: d})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DistanceKm < out[j].DistanceKm })
	return out
}

// ValidateRadius rejects negative or non-finite radii.
func ValidateRadius(radiusKm float64) error {
	if radiusKm < 0 || math.IsNaN(radiusKm) || math.IsInf(radiusKm, 0) {
		return ErrInvalidRadius
	}
	return nil
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
