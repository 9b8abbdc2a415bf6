// Package sqlite implements the SessionStore port on an embedded database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/freyta/fuellock/internal/domain/model"
	"github.com/freyta/fuellock/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SessionStore = (*SessionRepo)(nil)

// SessionRepo is the SQLite implementation of the SessionStore port. Each
// session owns at most one credential row and one lock-view row; both are
// replaced with single-statement UPSERTs so readers never observe a partial
// update.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new SessionRepo.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// GetView retrieves the session's cached lock view. Returns the zero view
// (the "no lock" state) when the session has no row.
func (r *SessionRepo) GetView(ctx context.Context, sessionID string) (model.SessionLockView, error) {
	const query = `SELECT lock_id, status, active_0, active_1, active_2,
		fuel_grade, cents_per_litre, total_litres, redeemed, expiry
		FROM session_lock_views WHERE session_id = ?`

	var v model.SessionLockView
	err := r.db.Reader.QueryRowContext(ctx, query, sessionID).Scan(
		&v.LockID, &v.Status, &v.ActiveFlags[0], &v.ActiveFlags[1], &v.ActiveFlags[2],
		&v.FuelGrade, &v.CentsPerLitre, &v.TotalLitres, &v.Redeemed, &v.Expiry,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SessionLockView{}, nil
	}
	if err != nil {
		return model.SessionLockView{}, fmt.Errorf("get lock view for session %q: %w", sessionID, err)
	}
	return v, nil
}

// PutView replaces the session's lock view in one statement.
func (r *SessionRepo) PutView(ctx context.Context, sessionID string, view model.SessionLockView) error {
	const query = `INSERT INTO session_lock_views
		(session_id, lock_id, status, active_0, active_1, active_2,
		 fuel_grade, cents_per_litre, total_litres, redeemed, expiry, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_id) DO UPDATE SET
		 lock_id = excluded.lock_id, status = excluded.status,
		 active_0 = excluded.active_0, active_1 = excluded.active_1, active_2 = excluded.active_2,
		 fuel_grade = excluded.fuel_grade, cents_per_litre = excluded.cents_per_litre,
		 total_litres = excluded.total_litres, redeemed = excluded.redeemed,
		 expiry = excluded.expiry, updated_at = CURRENT_TIMESTAMP`

	_, err := r.db.Writer.ExecContext(ctx, query, sessionID,
		view.LockID, view.Status, view.ActiveFlags[0], view.ActiveFlags[1], view.ActiveFlags[2],
		view.FuelGrade, view.CentsPerLitre, view.TotalLitres, view.Redeemed, view.Expiry,
	)
	if err != nil {
		return fmt.Errorf("put lock view for session %q: %w", sessionID, err)
	}
	return nil
}

// GetCredential retrieves the session's credential. Returns the zero
// Credential when the session has no row (not logged in).
func (r *SessionRepo) GetCredential(ctx context.Context, sessionID string) (model.Credential, error) {
	const query = `SELECT access_token, refresh_token, issuer, expires_at
		FROM session_credentials WHERE session_id = ?`

	var cred model.Credential
	var issuer, expiresAt string
	err := r.db.Reader.QueryRowContext(ctx, query, sessionID).Scan(
		&cred.AccessToken, &cred.RefreshToken, &issuer, &expiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Credential{}, nil
	}
	if err != nil {
		return model.Credential{}, fmt.Errorf("get credential for session %q: %w", sessionID, err)
	}

	cred.Issuer = model.Issuer(issuer)
	if expiresAt != "" {
		t, err := time.Parse(time.RFC3339Nano, expiresAt)
		if err != nil {
			return model.Credential{}, fmt.Errorf("parse expires_at for session %q: %w", sessionID, err)
		}
		cred.ExpiresAt = t
	}
	return cred, nil
}

// PutCredential replaces the session's credential in one statement.
func (r *SessionRepo) PutCredential(ctx context.Context, sessionID string, cred model.Credential) error {
	expiresAt := ""
	if !cred.ExpiresAt.IsZero() {
		expiresAt = cred.ExpiresAt.Format(time.RFC3339Nano)
	}

	const query = `INSERT INTO session_credentials
		(session_id, access_token, refresh_token, issuer, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(session_id) DO UPDATE SET
		 access_token = excluded.access_token, refresh_token = excluded.refresh_token,
		 issuer = excluded.issuer, expires_at = excluded.expires_at,
		 updated_at = CURRENT_TIMESTAMP`

	_, err := r.db.Writer.ExecContext(ctx, query, sessionID,
		cred.AccessToken, cred.RefreshToken, string(cred.Issuer), expiresAt,
	)
	if err != nil {
		return fmt.Errorf("put credential for session %q: %w", sessionID, err)
	}
	return nil
}

// Clear removes all state for the session.
func (r *SessionRepo) Clear(ctx context.Context, sessionID string) error {
	if _, err := r.db.Writer.ExecContext(ctx,
		`DELETE FROM session_lock_views WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clear lock view for session %q: %w", sessionID, err)
	}
	if _, err := r.db.Writer.ExecContext(ctx,
		`DELETE FROM session_credentials WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("clear credential for session %q: %w", sessionID, err)
	}
	return nil
}
