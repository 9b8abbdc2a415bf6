package model

// FuelTypeAutomatic selects the globally cheapest quote regardless of fuel
// type ("automatic mode" in the lock-in form).
const FuelTypeAutomatic = "automatic"

// FuelPriceQuote is one location-tagged price from the aggregator. Immutable
// snapshot; lives for a single request cycle. Price is cents per litre.
type FuelPriceQuote struct {
	FuelType  string
	Price     float64
	Postcode  string
	Latitude  float64
	Longitude float64
}

// HasCoordinates reports whether the quote carries usable coordinates.
// The aggregator sends 0/0 when it could not geocode a site, so the zero
// pair is treated as absent.
func (q FuelPriceQuote) HasCoordinates() bool {
	return q.Latitude != 0 || q.Longitude != 0
}

// StoreLocation is one entry of the store directory reference data.
type StoreLocation struct {
	Postcode  string
	Latitude  float64
	Longitude float64
}

// SelectedCandidate is the price/location pair chosen for a lock request.
type SelectedCandidate struct {
	FuelType  string
	Price     float64
	Latitude  float64
	Longitude float64
}
