package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput marks a missing or unknown user selection.
	ErrInvalidInput = errors.New("invalid input")
	// ErrMissingCredential marks an action that needs an API key nobody supplied.
	ErrMissingCredential = errors.New("missing credential")
)

// UpstreamError is a non-success response from a third-party service.
type UpstreamError struct {
	Service string
	Status  int
	Body    string
}

func (e *UpstreamError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s error: status %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s error: status %d: %s", e.Service, e.Status, e.Body)
}

// TransportError is a network-level failure reaching a third-party service.
type TransportError struct {
	Service string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// FaultKind classifies errors raised at the fetch boundary.
type FaultKind string

const (
	FaultNone          FaultKind = ""
	FaultValidation    FaultKind = "validation"
	FaultConfiguration FaultKind = "configuration"
	FaultUpstream      FaultKind = "upstream"
	FaultTransport     FaultKind = "transport"
	FaultInternal      FaultKind = "internal"
)

// FaultKindOf reports which kind of fault err represents.
func FaultKindOf(err error) FaultKind {
	var upstream *UpstreamError
	var transport *TransportError
	switch {
	case err == nil:
		return FaultNone
	case errors.Is(err, ErrInvalidInput):
		return FaultValidation
	case errors.Is(err, ErrMissingCredential):
		return FaultConfiguration
	case errors.As(err, &upstream):
		return FaultUpstream
	case errors.As(err, &transport):
		return FaultTransport
	default:
		return FaultInternal
	}
}
