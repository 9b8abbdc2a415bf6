// Package config loads application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds the application configuration, built once at startup and
// passed into component constructors. No other package reads the environment.
type Config struct {
	// AccountBaseURL is the account API root, including trailing slash
	// (endpoints like "auth/token" are appended to it).
	AccountBaseURL string
	// PriceURL is the aggregator's price endpoint.
	PriceURL string
	// AggregatorTokenURL is the aggregator's client-credentials endpoint.
	AggregatorTokenURL string
	// AggregatorClientID / AggregatorClientSecret authenticate the
	// client-credentials grant.
	AggregatorClientID     string
	AggregatorClientSecret string
	// DisplayLocation is the timezone locks are formatted in.
	DisplayLocation *time.Location
	// DBPath is the sqlite session database path.
	DBPath string
}

// Load reads configuration from FUELLOCK_* environment variables and returns
// a validated Config. Required: FUELLOCK_BASE_URL, FUELLOCK_PRICE_URL,
// FUELLOCK_AGGREGATOR_TOKEN_URL, FUELLOCK_CLIENT_ID, FUELLOCK_CLIENT_SECRET.
// Optional with defaults: FUELLOCK_TZ (Australia/Melbourne),
// FUELLOCK_DB_PATH (fuellock.db).
func Load() (*Config, error) {
	baseURL, err := requireEnv("FUELLOCK_BASE_URL")
	if err != nil {
		return nil, err
	}
	priceURL, err := requireEnv("FUELLOCK_PRICE_URL")
	if err != nil {
		return nil, err
	}
	tokenURL, err := requireEnv("FUELLOCK_AGGREGATOR_TOKEN_URL")
	if err != nil {
		return nil, err
	}
	clientID, err := requireEnv("FUELLOCK_CLIENT_ID")
	if err != nil {
		return nil, err
	}
	clientSecret, err := requireEnv("FUELLOCK_CLIENT_SECRET")
	if err != nil {
		return nil, err
	}

	tz := "Australia/Melbourne"
	if v, ok := os.LookupEnv("FUELLOCK_TZ"); ok {
		tz = v
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("FUELLOCK_TZ has invalid timezone %q: %w", tz, err)
	}

	dbPath := "fuellock.db"
	if v, ok := os.LookupEnv("FUELLOCK_DB_PATH"); ok {
		dbPath = v
	}

	return &Config{
		AccountBaseURL:         baseURL,
		PriceURL:               priceURL,
		AggregatorTokenURL:     tokenURL,
		AggregatorClientID:     clientID,
		AggregatorClientSecret: clientSecret,
		DisplayLocation:        loc,
		DBPath:                 dbPath,
	}, nil
}

func requireEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("%s must be set", key)
	}
	return v, nil
}
