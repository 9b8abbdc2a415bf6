package model

import "time"

// Issuer identifies which third-party API issued a credential. The account
// API and the price aggregator run unrelated token services; a credential is
// only valid against the API that issued it.
type Issuer string

const (
	IssuerAccount    Issuer = "account"
	IssuerAggregator Issuer = "aggregator"
)

// Credential holds a bearer token pair for one of the two upstream APIs.
// RefreshToken is empty for issuers without a refresh grant (the aggregator
// re-authenticates on every call). ExpiresAt is the zero time when the issuer
// did not report a lifetime.
type Credential struct {
	AccessToken  string
	RefreshToken string
	Issuer       Issuer
	ExpiresAt    time.Time
}

// Expired reports whether the credential's recorded expiry has passed.
// Credentials with no recorded expiry never report expired; a stale token is
// then only detectable through the API's own 401 response.
func (c Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}
