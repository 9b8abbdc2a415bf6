package application

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/freyta/fuellock/internal/domain/model"
	"github.com/freyta/fuellock/internal/domain/port/driven"
)

// lockTimeFormat renders timestamps the way the app has always shown them,
// e.g. "Friday 03 January 2020 at 05:30 PM".
const lockTimeFormat = "Monday 02 January 2006 at 03:04 PM"

// Reconciler keeps the session's cached lock view consistent with the
// account API's authoritative record, and resolves price/store candidates
// for new locks. It is the only writer of the session lock view.
type Reconciler struct {
	accounts  driven.AccountGateway
	prices    driven.PriceFeed
	directory driven.StoreDirectory
	sessions  driven.SessionStore
	loc       *time.Location
}

// NewReconciler creates a Reconciler. loc is the timezone lock timestamps
// are displayed in.
func NewReconciler(
	accounts driven.AccountGateway,
	prices driven.PriceFeed,
	directory driven.StoreDirectory,
	sessions driven.SessionStore,
	loc *time.Location,
) *Reconciler {
	return &Reconciler{
		accounts:  accounts,
		prices:    prices,
		directory: directory,
		sessions:  sessions,
		loc:       loc,
	}
}

// RefreshView pulls the lock list from the account API, projects the head
// entry into the display view, and overwrites the session cache in a single
// put. An empty list yields the all-empty view, the normal "no lock" state,
// never an error. The account API is assumed to return at most one
// meaningful entry; if more arrive, the extras are reported and the head is
// honored.
func (r *Reconciler) RefreshView(ctx context.Context, sessionID string, cred model.Credential) (model.SessionLockView, error) {
	_, view, err := r.refresh(ctx, sessionID, cred)
	return view, err
}

// refresh re-reads the lock list and rewrites the session cache, returning
// both the normalized head lock (nil in the no-lock state) and the view.
func (r *Reconciler) refresh(ctx context.Context, sessionID string, cred model.Credential) (*model.FuelLock, model.SessionLockView, error) {
	locks, err := r.accounts.ListLocks(ctx, cred)
	if err != nil {
		return nil, model.SessionLockView{}, err
	}

	if len(locks) > 1 {
		slog.Warn("lock list has multiple entries, honoring the first", "count", len(locks))
	}

	prior, err := r.sessions.GetView(ctx, sessionID)
	if err != nil {
		return nil, model.SessionLockView{}, err
	}

	var lock *model.FuelLock
	var view model.SessionLockView
	if len(locks) > 0 {
		lock = &locks[0]
		view = r.project(locks[0], prior)
	}

	if err := r.sessions.PutView(ctx, sessionID, view); err != nil {
		return nil, model.SessionLockView{}, err
	}
	return lock, view, nil
}

// project builds the display view for a lock. A missing redeemed timestamp
// renders empty; a missing expiry keeps whatever the cache held before, so a
// malformed field from the server cannot blank out a previously shown date.
func (r *Reconciler) project(lock model.FuelLock, prior model.SessionLockView) model.SessionLockView {
	view := model.SessionLockView{
		LockID:        lock.ID,
		Status:        strconv.Itoa(int(lock.Status)),
		FuelGrade:     lock.FuelGrade,
		CentsPerLitre: strconv.FormatFloat(lock.CentsPerLitre, 'f', -1, 64),
		TotalLitres:   strconv.FormatFloat(lock.TotalLitres, 'f', -1, 64),
	}

	if lock.Status >= model.LockStatusActive && lock.Status <= model.LockStatusRedeemed {
		view.ActiveFlags[int(lock.Status)] = lock.Status.Label()
	}

	if lock.RedeemedAt != nil {
		view.Redeemed = lock.RedeemedAt.In(r.loc).Format(lockTimeFormat)
	}

	if lock.ExpiresAt != nil {
		view.Expiry = lock.ExpiresAt.In(r.loc).Format(lockTimeFormat)
	} else {
		view.Expiry = prior.Expiry
	}

	return view
}

// SelectCheapest picks the lowest-priced quote for the given fuel type, or
// the global minimum when fuelType is model.FuelTypeAutomatic. Exact price
// ties go to the earliest quote in input order. Coordinates come from the
// quote itself when present, otherwise from the store directory by postcode;
// ErrNotFound when no quote matches or neither source has coordinates.
func (r *Reconciler) SelectCheapest(fuelType string, quotes []model.FuelPriceQuote) (model.SelectedCandidate, error) {
	var best *model.FuelPriceQuote
	for i := range quotes {
		q := &quotes[i]
		if fuelType != model.FuelTypeAutomatic && q.FuelType != fuelType {
			continue
		}
		if best == nil || q.Price < best.Price {
			best = q
		}
	}
	if best == nil {
		return model.SelectedCandidate{}, fmt.Errorf("no price for fuel type %q: %w", fuelType, driven.ErrNotFound)
	}

	lat, lon := best.Latitude, best.Longitude
	if !best.HasCoordinates() {
		store, ok := r.directory.LookupCoordinates(best.Postcode)
		if !ok {
			return model.SelectedCandidate{}, fmt.Errorf("no store for postcode %q: %w", best.Postcode, driven.ErrNotFound)
		}
		lat, lon = store.Latitude, store.Longitude
	}

	return model.SelectedCandidate{
		FuelType:  best.FuelType,
		Price:     best.Price,
		Latitude:  lat,
		Longitude: lon,
	}, nil
}

// CreateLock posts the candidate to the account API and immediately re-reads
// the lock list so the returned record carries the server-assigned id, litre
// allocation and status rather than the request's own payload. A business
// refusal surfaces as *driven.LockRejectedError; nothing is retried or
// rolled back.
func (r *Reconciler) CreateLock(ctx context.Context, sessionID string, cred model.Credential, candidate model.SelectedCandidate) (*model.FuelLock, model.SessionLockView, error) {
	if err := r.accounts.CreateLock(ctx, cred, candidate); err != nil {
		return nil, model.SessionLockView{}, err
	}

	slog.Info("lock created", "fuel_type", candidate.FuelType, "cents_per_litre", candidate.Price)

	return r.refresh(ctx, sessionID, cred)
}

// LockIn runs the full lock-in flow: fetch current prices, select the
// cheapest candidate for fuelType (or globally, in automatic mode), and
// create the lock.
func (r *Reconciler) LockIn(ctx context.Context, sessionID string, cred model.Credential, fuelType string) (*model.FuelLock, model.SessionLockView, error) {
	quotes, err := r.prices.FetchCurrentPrices(ctx)
	if err != nil {
		return nil, model.SessionLockView{}, err
	}

	candidate, err := r.SelectCheapest(fuelType, quotes)
	if err != nil {
		return nil, model.SessionLockView{}, err
	}

	return r.CreateLock(ctx, sessionID, cred, candidate)
}
