package rating

import "errors"

// Sentinel kinds for rating errors.
var (
	// ErrMalformedSet marks a set whose two raw scores are equal. Sets
	// always have a winner; the ordering provider must never emit a tie.
	ErrMalformedSet = errors.New("malformed set: tied score")
)
