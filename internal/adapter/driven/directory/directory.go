// Package directory resolves postcodes to store coordinates from the
// bundled store dataset.
package directory

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"

	"github.com/freyta/fuellock/internal/domain/model"
	"github.com/freyta/fuellock/internal/domain/port/driven"
)

//go:embed stores.json
var storesJSON []byte

// Compile-time interface satisfaction check.
var _ driven.StoreDirectory = (*Directory)(nil)

// Directory is the in-memory store directory, loaded once at construction.
type Directory struct {
	stores []model.StoreLocation
}

// datasetJSON mirrors the bundled stores.json layout.
type datasetJSON struct {
	Diffs []struct {
		Postcode  string  `json:"PostCode"`
		Latitude  float64 `json:"Latitude"`
		Longitude float64 `json:"Longitude"`
	} `json:"Diffs"`
}

// New loads the directory from the embedded dataset.
func New() (*Directory, error) {
	return Parse(bytes.NewReader(storesJSON))
}

// Parse loads a directory from an alternate dataset in the stores.json
// layout. Entry order is preserved; lookups honor first match.
func Parse(r io.Reader) (*Directory, error) {
	var ds datasetJSON
	if err := json.NewDecoder(r).Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode store dataset: %w", err)
	}

	stores := make([]model.StoreLocation, 0, len(ds.Diffs))
	for _, s := range ds.Diffs {
		stores = append(stores, model.StoreLocation{
			Postcode:  s.Postcode,
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
		})
	}
	return &Directory{stores: stores}, nil
}

// LookupCoordinates returns the first store whose postcode equals the query.
// The second return is false when no entry matches.
func (d *Directory) LookupCoordinates(postcode string) (model.StoreLocation, bool) {
	for _, s := range d.stores {
		if s.Postcode == postcode {
			return s, true
		}
	}
	return model.StoreLocation{}, false
}

// Len reports the number of loaded entries.
func (d *Directory) Len() int {
	return len(d.stores)
}
