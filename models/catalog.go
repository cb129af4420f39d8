package models

// CatalogEntry is a priced service offering. Base price applies during
// standard hours (11:00-18:00 local), the after-hours price otherwise;
// the travel fee is charged either way.
type CatalogEntry struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	BasePrice       float64 `json:"base_price"`
	AfterHoursPrice float64 `json:"after_hours_price"`
	TravelFee       float64 `json:"travel_fee"`
}
