package driven

import (
	"context"

	"github.com/freyta/fuellock/internal/domain/model"
)

// AccountGateway defines the driven port for the retail chain's customer
// ("account") API: token grants, the fuel-lock endpoints, and the store list.
// All methods taking a Credential reject credentials not issued by the
// account API with a WrongIssuerError before any network I/O.
type AccountGateway interface {
	// Authenticate exchanges password-grant credentials for a token pair.
	// Returns ErrInvalidCredentials on a 4xx response and ErrUpstream on
	// network failure or 5xx. Exactly one network call; never retried.
	Authenticate(ctx context.Context, email, password, deviceID string) (model.Credential, error)

	// RefreshToken exchanges a refresh token for a new token pair via the
	// same endpoint with the refresh_token grant. Same error mapping as
	// Authenticate.
	RefreshToken(ctx context.Context, refreshToken string) (model.Credential, error)

	// ListLocks returns the user's fuel locks, preserving server order.
	// An empty slice means no lock has ever been created (or all prior
	// locks were purged server-side); it is not an error.
	ListLocks(ctx context.Context, cred model.Credential) ([]model.FuelLock, error)

	// CreateLock requests a price lock for the candidate. A business-rule
	// refusal maps to *LockRejectedError; the response body is otherwise
	// ignored; callers must re-read via ListLocks for the authoritative
	// record.
	CreateLock(ctx context.Context, cred model.Credential, candidate model.SelectedCandidate) error

	// FetchStores returns the chain's store directory from the account API.
	// Static reference data; implementations may cache the response.
	FetchStores(ctx context.Context, cred model.Credential) ([]model.StoreLocation, error)
}
