package driven

import "github.com/freyta/fuellock/internal/domain/model"

// StoreDirectory defines the driven port for the bundled postcode directory.
// Reference data loaded once per process; no I/O after construction.
type StoreDirectory interface {
	// LookupCoordinates resolves a postcode to a store location. The second
	// return is false when no entry matches; callers treat absence as a
	// legitimate outcome, not a failure.
	LookupCoordinates(postcode string) (model.StoreLocation, bool)
}
