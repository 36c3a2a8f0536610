package enum

// Side is the direction of an order or fill.
type Side uint8

const (
	_side_beg Side = iota
	SideBid
	SideAsk
	_side_end
)

func (s Side) IsAvailable() bool {
	return s > _side_beg && s < _side_end
}

func (s Side) Opposite() Side {
	switch s {
	case SideBid:
		return SideAsk
	case SideAsk:
		return SideBid
	default:
		return s
	}
}

func (s Side) String() string {
	switch s {
	case SideBid:
		return "BID"
	case SideAsk:
		return "ASK"
	default:
		return "UNKNOWN"
	}
}

func ParseSide(s string) Side {
	switch s {
	case "BID":
		return SideBid
	case "ASK":
		return SideAsk
	default:
		return _side_beg
	}
}
