package core

// Decision is the router's choice of the next pipeline stage.
type Decision int

const (
	RequestLot Decision = iota
	CollectBids
	End
)

func (d Decision) String() string {
	switch d {
	case RequestLot:
		return "request_lot"
	case CollectBids:
		return "collect_bids"
	case End:
		return "end"
	default:
		return "unknown"
	}
}

// Route picks the next stage from the round state alone. It never mutates its
// input, so repeated calls with the same state agree.
func Route(rs RoundState) Decision {
	if len(rs.RemainingCategories) == 0 && len(rs.RemainingLotsInCategory) == 0 && rs.CurrentLot == nil {
		return End
	}
	if !rs.Active {
		return RequestLot
	}
	return CollectBids
}
