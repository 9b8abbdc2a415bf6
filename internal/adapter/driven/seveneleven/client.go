// Package seveneleven implements the AccountGateway port against the
// retail chain's customer API.
package seveneleven

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/freyta/fuellock/internal/domain/model"
	"github.com/freyta/fuellock/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AccountGateway = (*Client)(nil)

const clientID = "7eleven-app"

// Client implements the driven.AccountGateway port. Token and lock calls go
// through a plain transport (their responses must never be cached); the
// store-list fetch goes through an httpcache memory transport because the
// directory is static reference data.
type Client struct {
	baseURL string
	http    *http.Client
	stores  *http.Client
}

// NewClient creates an account API client rooted at baseURL (trailing slash
// expected, endpoint paths are appended).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		stores: &http.Client{
			Transport: httpcache.NewMemoryCacheTransport(),
			Timeout:   30 * time.Second,
		},
	}
}

// NewClientWithHTTPClient creates a Client that routes every call, including
// the store-list fetch, through the given http.Client. Intended for testing
// against an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    httpClient,
		stores:  httpClient,
	}
}

// tokenResponse is the wire shape of the auth/token endpoint.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// Authenticate exchanges password-grant credentials for a token pair.
func (c *Client) Authenticate(ctx context.Context, email, password, deviceID string) (model.Credential, error) {
	payload := map[string]string{
		"client_id":  clientID,
		"grant_type": "password",
		"username":   email,
		"password":   password,
		"device_id":  deviceID,
	}
	return c.tokenGrant(ctx, payload)
}

// RefreshToken exchanges a refresh token for a new token pair.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (model.Credential, error) {
	payload := map[string]string{
		"client_id":     clientID,
		"grant_type":    "refresh_token",
		"refresh_token": refreshToken,
	}
	return c.tokenGrant(ctx, payload)
}

func (c *Client) tokenGrant(ctx context.Context, payload map[string]string) (model.Credential, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return model.Credential{}, fmt.Errorf("encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"auth/token", bytes.NewReader(body))
	if err != nil {
		return model.Credential{}, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return model.Credential{}, fmt.Errorf("token request: %w: %v", driven.ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// fall through to decode
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return model.Credential{}, fmt.Errorf("token grant refused (%d): %w", resp.StatusCode, driven.ErrInvalidCredentials)
	default:
		return model.Credential{}, fmt.Errorf("token endpoint returned %d: %w", resp.StatusCode, driven.ErrUpstream)
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return model.Credential{}, fmt.Errorf("decode token response: %w: %v", driven.ErrUpstream, err)
	}

	cred := model.Credential{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		Issuer:       model.IssuerAccount,
	}
	if tr.ExpiresIn > 0 {
		cred.ExpiresAt = time.Now().Add(time.Duration(tr.ExpiresIn) * time.Second)
	}
	return cred, nil
}

// lockJSON is the wire shape of a fuel-lock record. The two timestamps are
// kept raw so one malformed field cannot fail the whole record.
type lockJSON struct {
	ID            string          `json:"Id"`
	Status        int             `json:"Status"`
	FuelGrade     string          `json:"FuelGradeModel"`
	CentsPerLitre float64         `json:"CentsPerLitre"`
	TotalLitres   float64         `json:"TotalLitres"`
	RedeemedAt    json.RawMessage `json:"RedeemedAt"`
	ExpiresAt     json.RawMessage `json:"ExpiresAt"`
}

// ListLocks returns the user's fuel locks in server order.
func (c *Client) ListLocks(ctx context.Context, cred model.Credential) ([]model.FuelLock, error) {
	if err := checkIssuer(cred); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"fuel-lock/locks", nil)
	if err != nil {
		return nil, fmt.Errorf("build lock list request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("lock list request: %w: %v", driven.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if err := mapStatus(resp.StatusCode, "lock list"); err != nil {
		return nil, err
	}

	var raw []lockJSON
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode lock list: %w: %v", driven.ErrUpstream, err)
	}

	locks := make([]model.FuelLock, 0, len(raw))
	for _, l := range raw {
		locks = append(locks, model.FuelLock{
			ID:            l.ID,
			Status:        model.LockStatus(l.Status),
			FuelGrade:     l.FuelGrade,
			CentsPerLitre: l.CentsPerLitre,
			TotalLitres:   l.TotalLitres,
			RedeemedAt:    parseEpoch(l.RedeemedAt),
			ExpiresAt:     parseEpoch(l.ExpiresAt),
		})
	}
	return locks, nil
}

// lockRequest is the wire shape of the lock-creation payload.
type lockRequest struct {
	FuelType      string  `json:"fuel_type"`
	CentsPerLitre float64 `json:"cents_per_litre"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
}

// CreateLock requests a price lock for the candidate. The response body is
// only read for the rejection message; the authoritative record must be
// re-fetched via ListLocks.
func (c *Client) CreateLock(ctx context.Context, cred model.Credential, candidate model.SelectedCandidate) error {
	if err := checkIssuer(cred); err != nil {
		return err
	}

	body, err := json.Marshal(lockRequest{
		FuelType:      candidate.FuelType,
		CentsPerLitre: candidate.Price,
		Latitude:      candidate.Latitude,
		Longitude:     candidate.Longitude,
	})
	if err != nil {
		return fmt.Errorf("encode lock request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"fuel-lock/lock", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build lock request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("lock request: %w: %v", driven.ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &driven.LockRejectedError{Message: rejectionMessage(resp.Body, resp.StatusCode)}
	default:
		return fmt.Errorf("lock endpoint returned %d: %w", resp.StatusCode, driven.ErrUpstream)
	}
}

// storesResponse is the wire shape of the store directory endpoint.
type storesResponse struct {
	Diffs []storeJSON `json:"Diffs"`
}

type storeJSON struct {
	Postcode  string  `json:"PostCode"`
	Latitude  float64 `json:"Latitude"`
	Longitude float64 `json:"Longitude"`
}

// FetchStores returns the chain's store directory. Responses flow through
// the caching transport, so repeat calls within a process are cheap.
func (c *Client) FetchStores(ctx context.Context, cred model.Credential) ([]model.StoreLocation, error) {
	if err := checkIssuer(cred); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"store/stores", nil)
	if err != nil {
		return nil, fmt.Errorf("build stores request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)

	resp, err := c.stores.Do(req)
	if err != nil {
		return nil, fmt.Errorf("stores request: %w: %v", driven.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if err := mapStatus(resp.StatusCode, "stores"); err != nil {
		return nil, err
	}

	var sr storesResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode stores: %w: %v", driven.ErrUpstream, err)
	}

	stores := make([]model.StoreLocation, 0, len(sr.Diffs))
	for _, s := range sr.Diffs {
		stores = append(stores, model.StoreLocation{
			Postcode:  s.Postcode,
			Latitude:  s.Latitude,
			Longitude: s.Longitude,
		})
	}
	return stores, nil
}

func checkIssuer(cred model.Credential) error {
	if cred.Issuer != model.IssuerAccount {
		return &driven.WrongIssuerError{Got: string(cred.Issuer), Want: string(model.IssuerAccount)}
	}
	return nil
}

// mapStatus converts a non-2xx status on an authenticated GET into the error
// taxonomy: 401 means the token went stale, everything else unexpected is
// upstream trouble.
func mapStatus(status int, op string) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%s returned %d: %w", op, status, driven.ErrInvalidCredentials)
	default:
		return fmt.Errorf("%s returned %d: %w", op, status, driven.ErrUpstream)
	}
}

// rejectionMessage extracts the server's user-facing message from a 4xx lock
// response, falling back to the bare status code.
func rejectionMessage(body io.Reader, status int) string {
	var payload struct {
		Message string `json:"Message"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return fmt.Sprintf("request refused with status %d", status)
}

// parseEpoch converts a raw JSON epoch-seconds value to a time. Absent, null
// or non-numeric values yield nil; a malformed timestamp must not sink the
// record it rides on.
func parseEpoch(raw json.RawMessage) *time.Time {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var secs float64
	if err := json.Unmarshal(raw, &secs); err != nil {
		return nil
	}
	t := time.Unix(int64(secs), 0)
	return &t
}
