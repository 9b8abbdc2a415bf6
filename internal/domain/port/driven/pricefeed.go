package driven

import (
	"context"

	"github.com/freyta/fuellock/internal/domain/model"
)

// PriceFeed defines the driven port for the external fuel-price aggregator.
type PriceFeed interface {
	// FetchCurrentPrices authenticates against the aggregator and returns
	// the current quotes. Every call re-authenticates; nothing is cached.
	// A failure at either step wraps ErrUpstream.
	FetchCurrentPrices(ctx context.Context) ([]model.FuelPriceQuote, error)
}
