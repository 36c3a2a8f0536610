package exception

import "errors"

// Money errors are programming errors: they are raised by panic and are never
// retried.
var (
	ErrCurrencyMismatch  = errors.New("money: currency mismatch")
	ErrInvalidAmount     = errors.New("money: invalid amount")
	ErrInvalidCurrency   = errors.New("money: invalid currency")
	ErrNoConversionRate  = errors.New("money: no conversion rate for currency")
	ErrUnmatchedPosition = errors.New("money: matched trades must net to zero volume")
	ErrConservationLoss  = errors.New("money: split trades must conserve total volume and notional")
)
