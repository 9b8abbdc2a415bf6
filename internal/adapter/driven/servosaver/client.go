// Package servosaver implements the PriceFeed port against the state fuel
// price aggregator.
package servosaver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/freyta/fuellock/internal/domain/model"
	"github.com/freyta/fuellock/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.PriceFeed = (*Client)(nil)

// Client implements the driven.PriceFeed port. The aggregator has no refresh
// grant, so every fetch re-authenticates; nothing is cached. Both the grant
// and the price fetch report failure as driven.ErrUpstream; callers cannot
// tell them apart, matching the original single "try again" condition.
type Client struct {
	tokenURL     string
	priceURL     string
	clientID     string
	clientSecret string
	http         *http.Client
}

// NewClient creates an aggregator client. tokenURL receives the form-encoded
// client-credentials grant; priceURL is the authenticated price endpoint.
func NewClient(tokenURL, priceURL, clientID, clientSecret string) *Client {
	return &Client{
		tokenURL:     tokenURL,
		priceURL:     priceURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		http:         &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithHTTPClient creates a Client using the given http.Client.
// Intended for testing against an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, tokenURL, priceURL, clientID, clientSecret string) *Client {
	return &Client{
		tokenURL:     tokenURL,
		priceURL:     priceURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		http:         httpClient,
	}
}

// Token performs the client-credentials grant and returns the bearer token.
// There is no refresh variant; callers re-invoke for each use.
func (c *Client) Token(ctx context.Context) (string, error) {
	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"grant_type":    {"client_credentials"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build aggregator token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("aggregator token request: %w: %v", driven.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("aggregator token endpoint returned %d: %w", resp.StatusCode, driven.ErrUpstream)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode aggregator token: %w: %v", driven.ErrUpstream, err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("aggregator token response missing access_token: %w", driven.ErrUpstream)
	}
	return payload.AccessToken, nil
}

// quoteJSON is the wire shape of one aggregator price entry.
type quoteJSON struct {
	FuelType  string  `json:"fuel_type"`
	Price     float64 `json:"price"`
	Postcode  string  `json:"postcode"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// FetchCurrentPrices authenticates and returns the current quotes in the
// aggregator's response order (selection tie-breaks depend on that order).
func (c *Client) FetchCurrentPrices(ctx context.Context) ([]model.FuelPriceQuote, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.priceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build price request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("price request: %w: %v", driven.ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("price endpoint returned %d: %w", resp.StatusCode, driven.ErrUpstream)
	}

	var raw []quoteJSON
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode prices: %w: %v", driven.ErrUpstream, err)
	}

	quotes := make([]model.FuelPriceQuote, 0, len(raw))
	for _, q := range raw {
		quotes = append(quotes, model.FuelPriceQuote{
			FuelType:  q.FuelType,
			Price:     q.Price,
			Postcode:  q.Postcode,
			Latitude:  q.Latitude,
			Longitude: q.Longitude,
		})
	}
	return quotes, nil
}
