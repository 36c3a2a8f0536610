package exception

import "errors"

// Venue-transient errors. These surface from venue clients, get caught at the
// harness boundary and funnel into the audit retry loop.
var (
	ErrVenueAPIFailure      = errors.New("venue: api failure")
	ErrInsufficientFunds    = errors.New("venue: insufficient funds")
	ErrOrderNotFound        = errors.New("venue: order not found")
	ErrCancelNoEffect       = errors.New("venue: cancel had no effect")
	ErrNonceConflict        = errors.New("venue: nonce conflict")
	ErrMinimumOrderSize     = errors.New("venue: below minimum order size")
	ErrUnsupportedOperation = errors.New("venue: unsupported operation")
)
