package application_test

import (
	"context"

	"github.com/freyta/fuellock/internal/domain/model"
)

// --- Mock implementations of the driven ports ---

type mockAccountGateway struct {
	authenticate  func(ctx context.Context, email, password, deviceID string) (model.Credential, error)
	refreshToken  func(ctx context.Context, refreshToken string) (model.Credential, error)
	listLocks     func(ctx context.Context, cred model.Credential) ([]model.FuelLock, error)
	createLock    func(ctx context.Context, cred model.Credential, candidate model.SelectedCandidate) error
	fetchStores   func(ctx context.Context, cred model.Credential) ([]model.StoreLocation, error)
	authCalls     int
	refreshCalls  int
	listCalls     int
	createCalls   int
	lastCandidate model.SelectedCandidate
}

func (m *mockAccountGateway) Authenticate(ctx context.Context, email, password, deviceID string) (model.Credential, error) {
	m.authCalls++
	return m.authenticate(ctx, email, password, deviceID)
}

func (m *mockAccountGateway) RefreshToken(ctx context.Context, refreshToken string) (model.Credential, error) {
	m.refreshCalls++
	return m.refreshToken(ctx, refreshToken)
}

func (m *mockAccountGateway) ListLocks(ctx context.Context, cred model.Credential) ([]model.FuelLock, error) {
	m.listCalls++
	return m.listLocks(ctx, cred)
}

func (m *mockAccountGateway) CreateLock(ctx context.Context, cred model.Credential, candidate model.SelectedCandidate) error {
	m.createCalls++
	m.lastCandidate = candidate
	if m.createLock == nil {
		return nil
	}
	return m.createLock(ctx, cred, candidate)
}

func (m *mockAccountGateway) FetchStores(ctx context.Context, cred model.Credential) ([]model.StoreLocation, error) {
	return m.fetchStores(ctx, cred)
}

type mockPriceFeed struct {
	quotes []model.FuelPriceQuote
	err    error
}

func (m *mockPriceFeed) FetchCurrentPrices(_ context.Context) ([]model.FuelPriceQuote, error) {
	return m.quotes, m.err
}

type mockDirectory struct {
	stores map[string]model.StoreLocation
}

func (m *mockDirectory) LookupCoordinates(postcode string) (model.StoreLocation, bool) {
	s, ok := m.stores[postcode]
	return s, ok
}

// mockSessionStore is an in-memory SessionStore recording every view write.
type mockSessionStore struct {
	views    map[string]model.SessionLockView
	creds    map[string]model.Credential
	viewPuts int
	credPuts int
	lastView model.SessionLockView
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{
		views: make(map[string]model.SessionLockView),
		creds: make(map[string]model.Credential),
	}
}

func (m *mockSessionStore) GetView(_ context.Context, sessionID string) (model.SessionLockView, error) {
	return m.views[sessionID], nil
}

func (m *mockSessionStore) PutView(_ context.Context, sessionID string, view model.SessionLockView) error {
	m.viewPuts++
	m.lastView = view
	m.views[sessionID] = view
	return nil
}

func (m *mockSessionStore) GetCredential(_ context.Context, sessionID string) (model.Credential, error) {
	return m.creds[sessionID], nil
}

func (m *mockSessionStore) PutCredential(_ context.Context, sessionID string, cred model.Credential) error {
	m.credPuts++
	m.creds[sessionID] = cred
	return nil
}

func (m *mockSessionStore) Clear(_ context.Context, sessionID string) error {
	delete(m.views, sessionID)
	delete(m.creds, sessionID)
	return nil
}
