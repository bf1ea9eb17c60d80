package util

import (
	"math"
)

const earthRadiusKm = 6371.0

// CalculateDistance returns the great-circle distance in kilometers between two
// points given in degrees (haversine).
func CalculateDistance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := degToRad(lat1)
	lat2Rad := degToRad(lat2)
	dLat := lat2Rad - lat1Rad
	dLon := degToRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// RoundTo rounds v to the given number of decimal places.
func RoundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func degToRad(deg float64) float64 {
	return deg * (math.Pi / 180.0)
}
