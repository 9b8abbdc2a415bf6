package model

import "time"

// LockStatus is the account API's status code for a fuel lock.
// Values other than the three known codes are preserved as-is and rendered
// as "unknown" by the view layer rather than rejected.
type LockStatus int

const (
	LockStatusActive   LockStatus = 0
	LockStatusExpired  LockStatus = 1
	LockStatusRedeemed LockStatus = 2
)

// Label returns the human label for the status, or "" for unknown codes.
func (s LockStatus) Label() string {
	switch s {
	case LockStatusActive:
		return "Active"
	case LockStatusExpired:
		return "Expired"
	case LockStatusRedeemed:
		return "Redeemed"
	}
	return ""
}

// FuelLock is the normalized form of the account API's lock record. The
// canonical copy lives server-side; this is a per-request snapshot.
// RedeemedAt and ExpiresAt are nil when the server omitted the field or sent
// something that does not parse as an epoch timestamp.
type FuelLock struct {
	ID            string
	Status        LockStatus
	FuelGrade     string
	CentsPerLitre float64
	TotalLitres   float64
	RedeemedAt    *time.Time
	ExpiresAt     *time.Time
}

// SessionLockView is the display-ready projection of the current lock,
// cached in the session store between requests. All fields are preformatted
// strings; a view with every field empty is the canonical "no lock" state.
//
// ActiveFlags carries the status label in the slot matching the status code
// (0 Active, 1 Expired, 2 Redeemed) with the other two slots empty; all
// three are empty for unknown status codes and for the no-lock state.
type SessionLockView struct {
	LockID        string
	Status        string
	ActiveFlags   [3]string
	FuelGrade     string
	CentsPerLitre string
	TotalLitres   string
	Redeemed      string
	Expiry        string
}

// Empty reports whether the view is the no-lock sentinel.
func (v SessionLockView) Empty() bool {
	return v == SessionLockView{}
}
