package servosaver_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freyta/fuellock/internal/adapter/driven/servosaver"
	"github.com/freyta/fuellock/internal/domain/port/driven"
)

// newTestClient creates a Client whose token and price endpoints are served
// by the given httptest handler under /auth/token and /prices.
func newTestClient(t *testing.T, handler http.Handler) *servosaver.Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return servosaver.NewClientWithHTTPClient(
		server.Client(),
		server.URL+"/auth/token",
		server.URL+"/prices",
		"client-id",
		"client-secret",
	)
}

func TestFetchCurrentPrices_TwoStepProtocol(t *testing.T) {
	tokenCalls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/token":
			tokenCalls++
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
			assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
			assert.Equal(t, "client-secret", r.PostForm.Get("client_secret"))
			json.NewEncoder(w).Encode(map[string]string{"access_token": "agg-token"})
		case "/prices":
			require.Equal(t, "Bearer agg-token", r.Header.Get("Authorization"))
			w.Write([]byte(`[
				{"fuel_type": "57", "price": 159.9, "postcode": "3000", "latitude": -37.8, "longitude": 144.9},
				{"fuel_type": "53", "price": 172.5, "postcode": "3121", "latitude": 0, "longitude": 0}
			]`))
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	})

	client := newTestClient(t, handler)
	quotes, err := client.FetchCurrentPrices(context.Background())

	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, "57", quotes[0].FuelType)
	assert.Equal(t, 159.9, quotes[0].Price)
	assert.Equal(t, "3000", quotes[0].Postcode)
	assert.True(t, quotes[0].HasCoordinates())
	assert.False(t, quotes[1].HasCoordinates())
	assert.Equal(t, 1, tokenCalls)
}

func TestFetchCurrentPrices_ReauthenticatesEveryCall(t *testing.T) {
	tokenCalls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/token":
			tokenCalls++
			json.NewEncoder(w).Encode(map[string]string{"access_token": "agg-token"})
		case "/prices":
			w.Write([]byte(`[]`))
		}
	})

	client := newTestClient(t, handler)
	_, err := client.FetchCurrentPrices(context.Background())
	require.NoError(t, err)
	_, err = client.FetchCurrentPrices(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, tokenCalls)
}

func TestFetchCurrentPrices_TokenFailureIsUpstream(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	client := newTestClient(t, handler)
	_, err := client.FetchCurrentPrices(context.Background())

	// Auth failure and fetch failure are deliberately the same condition.
	assert.ErrorIs(t, err, driven.ErrUpstream)
}

func TestFetchCurrentPrices_PriceFailureIsUpstream(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/token":
			json.NewEncoder(w).Encode(map[string]string{"access_token": "agg-token"})
		case "/prices":
			w.WriteHeader(http.StatusInternalServerError)
		}
	})

	client := newTestClient(t, handler)
	_, err := client.FetchCurrentPrices(context.Background())

	assert.ErrorIs(t, err, driven.ErrUpstream)
}

func TestToken_MissingAccessToken(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	client := newTestClient(t, handler)
	_, err := client.Token(context.Background())

	assert.ErrorIs(t, err, driven.ErrUpstream)
}
