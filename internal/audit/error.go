// Package audit reconciles the three views of account truth: the venue's
// reported state, our cached account, and a full ledger replay. Auditors
// never retry or sleep; they report one verdict per call and leave retrying
// to the harness.
package audit

import (
	"fmt"
	"strings"

	"main/internal/model"

	"main/internal/errors"
)

// Kind names which reconciliation failed.
type Kind string

const (
	KindBalance  Kind = "BALANCE"
	KindLedger   Kind = "LEDGER"
	KindOrder    Kind = "ORDER"
	KindPosition Kind = "POSITION"
)

// Error is a retryable audit failure: the books disagree right now, and the
// expected resolution is that a later retry finds them agreeing again.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s audit failed: %s", e.Kind, e.Message)
}

func failf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// OrderMismatch is one order whose venue-reported filled volume disagrees
// with the ledger.
type OrderMismatch struct {
	VenueOrderID string
	VenueVolume  model.Money
	LedgerVolume model.Money
}

// OrderError aggregates every mismatched order found in one audit pass, so
// the operator sees the full damage at once instead of one order per retry.
type OrderError struct {
	Mismatches []OrderMismatch
}

func (e *OrderError) Error() string {
	ids := make([]string, 0, len(e.Mismatches))
	for _, m := range e.Mismatches {
		ids = append(ids, fmt.Sprintf("%s (venue %s, ledger %s)", m.VenueOrderID, m.VenueVolume, m.LedgerVolume))
	}

	return fmt.Sprintf("ORDER audit failed: %d mismatched orders: %s", len(e.Mismatches), strings.Join(ids, "; "))
}

// IsAuditError reports whether err came out of an auditor, meaning the
// harness should fall into the backoff retry loop rather than crash.
func IsAuditError(err error) bool {
	var auditErr *Error
	if errors.As(err, &auditErr) {
		return true
	}

	var orderErr *OrderError

	return errors.As(err, &orderErr)
}
