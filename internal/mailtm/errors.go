package mailtm

import "fmt"

// AuthError means the mailbox provider rejected the credentials, or the
// token request never reached it. Fatal for the acquisition; never retried.
type AuthError struct {
	Address string
	Status  int
	Err     error
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("mailtm: login rejected for %s (HTTP %d)", e.Address, e.Status)
	}
	return fmt.Sprintf("mailtm: login failed for %s: %v", e.Address, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// TransportError is a network or HTTP failure against the mailbox API after
// authentication. Surfaced immediately; a single listing call is not retried.
type TransportError struct {
	Op     string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("mailtm: %s failed (HTTP %d)", e.Op, e.Status)
	}
	return fmt.Sprintf("mailtm: %s failed: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }
