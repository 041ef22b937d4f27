package webhooksig

import (
	"errors"
	"net/http"
)

var (
	// ErrMissingHeaders indicates an empty id, timestamp or signature header.
	ErrMissingHeaders = errors.New("missing webhook headers")
	// ErrMalformedTimestamp indicates a timestamp that is not base-10 unix seconds.
	ErrMalformedTimestamp = errors.New("malformed webhook timestamp")
	// ErrStaleTimestamp indicates a timestamp outside the tolerance window.
	ErrStaleTimestamp = errors.New("webhook timestamp outside tolerance")
	// ErrMalformedSecret indicates a signing secret that cannot be decoded.
	ErrMalformedSecret = errors.New("malformed signing secret")
	// ErrInvalidSignature indicates no signature token matched.
	ErrInvalidSignature = errors.New("invalid webhook signature")
)

// ErrorKind classifies verification failures for transport-specific mapping.
type ErrorKind string

const (
	// ErrorUnknown is used when error is nil or not classified.
	ErrorUnknown ErrorKind = "unknown"
	// ErrorMissingHeaders maps ErrMissingHeaders.
	ErrorMissingHeaders ErrorKind = "missing_headers"
	// ErrorMalformedTimestamp maps ErrMalformedTimestamp.
	ErrorMalformedTimestamp ErrorKind = "malformed_timestamp"
	// ErrorStaleTimestamp maps ErrStaleTimestamp.
	ErrorStaleTimestamp ErrorKind = "stale_timestamp"
	// ErrorMalformedSecret maps ErrMalformedSecret.
	ErrorMalformedSecret ErrorKind = "malformed_secret"
	// ErrorInvalidSignature maps ErrInvalidSignature.
	ErrorInvalidSignature ErrorKind = "invalid_signature"
)

// Classify returns the kind of a verification error.
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return ErrorUnknown
	case errors.Is(err, ErrMissingHeaders):
		return ErrorMissingHeaders
	case errors.Is(err, ErrMalformedTimestamp):
		return ErrorMalformedTimestamp
	case errors.Is(err, ErrStaleTimestamp):
		return ErrorStaleTimestamp
	case errors.Is(err, ErrMalformedSecret):
		return ErrorMalformedSecret
	case errors.Is(err, ErrInvalidSignature):
		return ErrorInvalidSignature
	default:
		return ErrorUnknown
	}
}

// HTTPStatus maps a verification error to the status a receiver should answer with.
// A malformed secret is a receiver configuration problem, not a caller fault.
func HTTPStatus(err error) int {
	switch Classify(err) {
	case ErrorMissingHeaders, ErrorMalformedTimestamp, ErrorStaleTimestamp, ErrorInvalidSignature:
		return http.StatusUnauthorized
	case ErrorMalformedSecret:
		return http.StatusInternalServerError
	default:
		if err == nil {
			return http.StatusOK
		}
		return http.StatusInternalServerError
	}
}
