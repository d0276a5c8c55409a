package model

import "errors"

var (
	// ErrInvalidRequest marks a fetch rejected before any network I/O.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrTransport covers network errors, timeouts and non-2xx provider replies.
	ErrTransport = errors.New("transport failure")
	// ErrMalformedResponse covers provider payloads that fail validation.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrInsufficientHistory is returned when fewer than two observations exist.
	ErrInsufficientHistory = errors.New("insufficient history")
)
