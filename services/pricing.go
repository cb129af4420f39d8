package services

import (
	"math"
	"time"

	"github.com/roadcall/roadcall-api/models"
)

const (
	// TaxRate is the sales tax applied to a request's service total.
	TaxRate = 0.0825

	earthRadiusKm = 6371.0
	milesPerKm    = 0.621371
)

// IsAfterHours reports whether t falls in the after-hours pricing window.
// Standard hours are 11:00-18:00 in t's location; everything else is
// after hours. Callers control the timezone by the time value they pass.
func IsAfterHours(t time.Time) bool {
	h := t.Hour()
	return h >= 18 || h < 11
}

// ServicePrice computes the price of one catalog entry at time t:
// the tier price for the hour plus the travel fee.
func ServicePrice(entry models.CatalogEntry, t time.Time) float64 {
	price := entry.BasePrice
	if IsAfterHours(t) {
		price = entry.AfterHoursPrice
	}
	return price + entry.TravelFee
}

// RequestTotal sums the locked-in prices of the selected services and
// applies the tax line. The result is computed once at submission time
// and stored; later catalog changes never reprice a stored request.
func RequestTotal(selected []models.SelectedService) float64 {
	var sum float64
	for _, s := range selected {
		sum += s.Price
	}
	return sum * (1 + TaxRate)
}

// Distance is a geodistance expressed in both units staff care about.
type Distance struct {
	Kilometers float64 `json:"kilometers"`
	Miles      float64 `json:"miles"`
}

// HaversineKm returns the great-circle distance between two points in
// kilometers, using the standard haversine formula with an Earth radius
// of 6371 km.
func HaversineKm(a, b models.Coordinates) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}

// TravelDistance returns the round-trip distance between a staff
// member's position and a request location. It never mutates the
// request; the pair is attached to the acceptance context only.
func TravelDistance(staff, request models.Coordinates) Distance {
	km := 2 * HaversineKm(staff, request)
	return Distance{Kilometers: km, Miles: km * milesPerKm}
}
