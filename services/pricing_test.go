package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/roadcall/roadcall-api/models"
)

func at(hour int) time.Time {
	return time.Date(2025, time.June, 10, hour, 30, 0, 0, time.UTC)
}

func TestIsAfterHours(t *testing.T) {
	tests := []struct {
		name string
		hour int
		want bool
	}{
		{"early morning", 6, true},
		{"just before opening", 10, true},
		{"opening hour", 11, false},
		{"midday", 12, false},
		{"last standard hour", 17, false},
		{"closing hour", 18, true},
		{"evening", 20, true},
		{"midnight", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAfterHours(at(tt.hour)))
		})
	}
}

func TestServicePrice(t *testing.T) {
	entry := models.CatalogEntry{
		ID:              "tire-change",
		Name:            "Tire Change",
		BasePrice:       64.13,
		AfterHoursPrice: 89.99,
		TravelFee:       25,
	}

	assert.InDelta(t, 64.13+25, ServicePrice(entry, at(12)), 0.001, "standard hours should use the base price")
	assert.InDelta(t, 89.99+25, ServicePrice(entry, at(20)), 0.001, "after hours should use the after-hours price")
}

func TestRequestTotalAppliesTax(t *testing.T) {
	selected := []models.SelectedService{
		{ServiceID: "tire-change", Price: 89.13},
	}

	assert.InDelta(t, 89.13*1.0825, RequestTotal(selected), 0.001)
}

func TestRequestTotalSumsServices(t *testing.T) {
	selected := []models.SelectedService{
		{Price: 50},
		{Price: 30},
	}

	assert.InDelta(t, 80*1.0825, RequestTotal(selected), 0.001)
}

func TestHaversineZeroDistance(t *testing.T) {
	p := models.Coordinates{Latitude: 30.2672, Longitude: -97.7431}
	assert.Equal(t, 0.0, HaversineKm(p, p))
}

func TestHaversineSymmetry(t *testing.T) {
	a := models.Coordinates{Latitude: 30.2672, Longitude: -97.7431}
	b := models.Coordinates{Latitude: 29.7604, Longitude: -95.3698}
	assert.InDelta(t, HaversineKm(a, b), HaversineKm(b, a), 1e-9)
}

func TestHaversineKnownDistance(t *testing.T) {
	// Austin to Houston is roughly 235 km great-circle
	austin := models.Coordinates{Latitude: 30.2672, Longitude: -97.7431}
	houston := models.Coordinates{Latitude: 29.7604, Longitude: -95.3698}

	km := HaversineKm(austin, houston)
	assert.InDelta(t, 235, km, 5)
}

func TestTravelDistanceRoundTrip(t *testing.T) {
	a := models.Coordinates{Latitude: 30.2672, Longitude: -97.7431}
	b := models.Coordinates{Latitude: 30.3672, Longitude: -97.7431}

	d := TravelDistance(a, b)
	assert.InDelta(t, 2*HaversineKm(a, b), d.Kilometers, 1e-9, "travel distance is round trip")
	assert.InDelta(t, d.Kilometers*0.621371, d.Miles, 1e-9)
}
