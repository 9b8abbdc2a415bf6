package driven

import (
	"context"

	"github.com/freyta/fuellock/internal/domain/model"
)

// SessionStore defines the driven port for the per-session cache holding the
// active credential and the canonical lock view. The store neither creates
// nor expires sessions; lifecycle is owned by the caller.
//
// Get methods return zero values (not errors) for unknown session IDs: an
// empty view is the legitimate "no lock" state and an empty credential means
// "not logged in".
type SessionStore interface {
	GetView(ctx context.Context, sessionID string) (model.SessionLockView, error)

	// PutView replaces the session's lock view. All fields are written
	// together; readers never observe a partial update.
	PutView(ctx context.Context, sessionID string, view model.SessionLockView) error

	GetCredential(ctx context.Context, sessionID string) (model.Credential, error)
	PutCredential(ctx context.Context, sessionID string, cred model.Credential) error

	// Clear removes all state for the session (logout).
	Clear(ctx context.Context, sessionID string) error
}
