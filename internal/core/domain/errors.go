package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoAttachment is returned when a verification is requested with an empty store
	ErrNoAttachment = errors.New("no attachment: please upload a file first")

	// ErrBusy is returned while another channel is mid-dispatch
	ErrBusy = errors.New("busy: another verification is in progress")

	// ErrUnauthenticated is returned before the session gate has been passed
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrUnknownChannel is the sentinel wrapped by UnknownChannelError
	ErrUnknownChannel = errors.New("unknown verification channel")
)

// DefaultVerificationFailure is shown when the backend gives no message
const DefaultVerificationFailure = "An error occurred during verification"

// UnknownChannelError reports a channel name that is not in the registry
type UnknownChannelError struct {
	Value string
}

func (e *UnknownChannelError) Error() string {
	return fmt.Sprintf("unknown verification channel %q (want source, detail, factual or technical)", e.Value)
}

func (e *UnknownChannelError) Unwrap() error {
	return ErrUnknownChannel
}

// FailureKind classifies a failed dispatch
type FailureKind int

const (
	TransportFailure FailureKind = iota + 1
	BackendFailure
)

func (k FailureKind) String() string {
	switch k {
	case TransportFailure:
		return "transport failure"
	case BackendFailure:
		return "backend failure"
	default:
		return "failure"
	}
}

// VerificationError is the translated outcome of a failed analysis request
type VerificationError struct {
	Kind       FailureKind
	StatusCode int    // 0 when no response was received
	Message    string // human readable, shown in the channel
	Err        error
}

func (e *VerificationError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (HTTP %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *VerificationError) Unwrap() error {
	return e.Err
}

// AuthKind classifies a failed login
type AuthKind int

const (
	AuthRejected AuthKind = iota + 1
	AuthTransport
)

// AuthError is returned by the session gate when login fails
type AuthError struct {
	Kind    AuthKind
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Credentials are passed to the authentication endpoint
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
