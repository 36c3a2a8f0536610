package enum

// OrderStatus is the lifecycle state of a ledger order. Partial fills stay
// OPEN; they are implied by the order's trades.
type OrderStatus uint8

const (
	_order_status_beg OrderStatus = iota
	OrderStatusOpen
	OrderStatusFilled
	OrderStatusCancelled
	_order_status_end
)

func (s OrderStatus) IsAvailable() bool {
	return s > _order_status_beg && s < _order_status_end
}

func (s OrderStatus) String() string {
	switch s {
	case OrderStatusOpen:
		return "OPEN"
	case OrderStatusFilled:
		return "FILLED"
	case OrderStatusCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

func ParseOrderStatus(s string) OrderStatus {
	switch s {
	case "OPEN":
		return OrderStatusOpen
	case "FILLED":
		return OrderStatusFilled
	case "CANCELLED":
		return OrderStatusCancelled
	default:
		return _order_status_beg
	}
}
