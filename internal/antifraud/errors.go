package antifraud

import "errors"

var (
	// ErrNotFound is returned when a coupon or session lookup matches nothing.
	// Probes treat it as a zero-contribution signal, not a failure.
	ErrNotFound = errors.New("antifraud: not found")

	// ErrExpiredCode is returned when a verification code is past its expiry
	ErrExpiredCode = errors.New("antifraud: verification code expired")

	// ErrMissingIP is returned when an assessment request has no IP address
	ErrMissingIP = errors.New("antifraud: ip address is required")
)
