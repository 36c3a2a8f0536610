package enum

import "testing"

func TestSideRoundTrip(t *testing.T) {
	for _, side := range []Side{SideBid, SideAsk} {
		if !side.IsAvailable() {
			t.Fatalf("side %d should be available", side)
		}
		if got := ParseSide(side.String()); got != side {
			t.Fatalf("round trip mismatch: %v -> %v", side, got)
		}
	}

	if got := ParseSide("SHORT"); got.IsAvailable() {
		t.Fatalf("unknown side should not parse: %v", got)
	}

	if SideBid.Opposite() != SideAsk || SideAsk.Opposite() != SideBid {
		t.Fatal("opposite sides mismatch")
	}
}

func TestOrderStatusRoundTrip(t *testing.T) {
	for _, status := range []OrderStatus{OrderStatusOpen, OrderStatusFilled, OrderStatusCancelled} {
		if got := ParseOrderStatus(status.String()); got != status {
			t.Fatalf("round trip mismatch: %v -> %v", status, got)
		}
	}

	if got := ParseOrderStatus("REJECTED"); got.IsAvailable() {
		t.Fatalf("unknown status should not parse: %v", got)
	}
}

func TestTransactionEnumsRoundTrip(t *testing.T) {
	for _, typ := range []TransactionType{TransactionTypeDeposit, TransactionTypeWithdrawal} {
		if got := ParseTransactionType(typ.String()); got != typ {
			t.Fatalf("round trip mismatch: %v -> %v", typ, got)
		}
	}

	for _, status := range []TransactionStatus{TransactionStatusInTransit, TransactionStatusCompleted, TransactionStatusCanceled} {
		if got := ParseTransactionStatus(status.String()); got != status {
			t.Fatalf("round trip mismatch: %v -> %v", status, got)
		}
	}
}
