package driven

import (
	"errors"
	"fmt"
)

// ErrInvalidCredentials is returned by token grants when the upstream
// rejects the supplied credentials (bad password, expired or revoked refresh
// token). Callers surface it as an authentication failure requiring re-login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrUpstream covers network failures and 5xx responses from either
// third-party API. Callers surface it as a transient "try again" condition.
// The aggregator client deliberately does not distinguish a failed token
// grant from a failed price fetch; both wrap this sentinel.
var ErrUpstream = errors.New("upstream service unavailable")

// ErrNotFound is returned when no price quote or store matches a query.
// Absence is a legitimate outcome ("no deal found"), distinct from both
// upstream failure and the no-lock session state.
var ErrNotFound = errors.New("not found")

// LockRejectedError is a business-rule refusal from the account API's
// lock-creation endpoint, e.g. an active lock already exists or the account
// balance is insufficient. Message is the server's text, surfaced verbatim
// to the user. Not retried and not rolled back.
type LockRejectedError struct {
	Message string
}

func (e *LockRejectedError) Error() string {
	return fmt.Sprintf("lock rejected: %s", e.Message)
}

// WrongIssuerError is returned before any network call when a credential is
// presented to an API other than the one that issued it.
type WrongIssuerError struct {
	Got  string
	Want string
}

func (e *WrongIssuerError) Error() string {
	return fmt.Sprintf("credential issued by %q presented to %q API", e.Got, e.Want)
}
