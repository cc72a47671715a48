package reconcile

import "fmt"

// Closed failure taxonomy for the payment path. Every component error is
// classified into one of these before it reaches a handler, so each HTTP
// response code comes out of a single mapping.

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string { return e.Reason }

// AmountMismatchError is security-relevant: the gateway confirmed a charge
// whose amount does not match what the server quoted.
type AmountMismatchError struct {
	ShortID       string
	ExpectedMinor int64
	PaidMinor     int64
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("order %s: paid amount %d does not match expected %d",
		e.ShortID, e.PaidMinor, e.ExpectedMinor)
}

type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

type ConfigError struct {
	Missing string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", e.Missing)
}
