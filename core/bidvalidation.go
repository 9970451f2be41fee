package core

import (
	"github.com/shopspring/decimal"
)

// Rejection reasons reported for proposals that do not become candidates.
const (
	ReasonNotARaise         = "not_a_raise"
	ReasonInvalidBid        = "invalid_bid"
	ReasonBelowMinimumRaise = "below_minimum_raise"
	ReasonNotAboveFloor     = "not_above_floor"
	ReasonOverBudget        = "over_budget"
	ReasonUnknownParty      = "unknown_party"
	ReasonOutbid            = "outbid"
	ReasonAlreadyLeading    = "already_leading"
)

// RejectedBid records why a proposal did not lead.
type RejectedBid struct {
	Party  string `json:"party"`
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

// Candidate is a proposal that passed validation, with its resolved amount.
type Candidate struct {
	Bid    ProposedBid
	Amount float64
	Order  int
}

// Custom reports whether the candidate came from a custom raise.
func (c Candidate) Custom() bool {
	return !c.Bid.IsNormal
}

// BidMeetsFloor returns true if the bid price meets or exceeds the floor price.
// Uses decimal arithmetic with monetaryPrecision to avoid floating-point errors.
func BidMeetsFloor(bidPrice, floorPrice float64) bool {
	bidPriceDecimal := decimal.NewFromFloat(bidPrice).Round(monetaryPrecision)
	floorDecimal := decimal.NewFromFloat(floorPrice).Round(monetaryPrecision)

	return bidPriceDecimal.GreaterThanOrEqual(floorDecimal)
}

// BidExceedsFloor returns true if the bid price is strictly above the floor price.
func BidExceedsFloor(bidPrice, floorPrice float64) bool {
	bidPriceDecimal := decimal.NewFromFloat(bidPrice).Round(monetaryPrecision)
	floorDecimal := decimal.NewFromFloat(floorPrice).Round(monetaryPrecision)

	return bidPriceDecimal.GreaterThan(floorDecimal)
}

// CustomRaiseAllowed reports whether a custom increment meets the schedule's
// minimum at the given floor. A raise exactly at the minimum is accepted.
func CustomRaiseAllowed(raisedAmount, floor float64, schedule RaiseSchedule) bool {
	return BidMeetsFloor(raisedAmount, schedule.MinimumRaise(floor))
}

// bidFloor describes the price a round's proposals are measured against.
// Without a leader the floor is the reserve price and a normal raise opens
// exactly at it; with a leader every candidate must beat the floor.
type bidFloor struct {
	price     float64
	hasLeader bool
}

// ResolveAmount computes the amount a proposal commits to, or the reason it
// cannot become a candidate. Budget is checked separately.
func ResolveAmount(bid ProposedBid, floor float64, hasLeader bool, schedule RaiseSchedule) (float64, string) {
	return bidFloor{price: floor, hasLeader: hasLeader}.resolve(bid, schedule)
}

func (f bidFloor) resolve(bid ProposedBid, schedule RaiseSchedule) (float64, string) {
	if !bid.IsRaise {
		return 0, ReasonNotARaise
	}
	if err := bid.Validate(); err != nil {
		return 0, ReasonInvalidBid
	}

	var amount float64
	switch {
	case bid.IsNormal && !f.hasLeader:
		amount = f.price
	case bid.IsNormal:
		amount = AddMoney(f.price, schedule.MinimumRaise(f.price))
	default:
		if !CustomRaiseAllowed(*bid.RaisedAmount, f.price, schedule) {
			return 0, ReasonBelowMinimumRaise
		}
		amount = AddMoney(f.price, *bid.RaisedAmount)
	}

	if f.hasLeader && !BidExceedsFloor(amount, f.price) {
		return 0, ReasonNotAboveFloor
	}
	if !f.hasLeader && !BidMeetsFloor(amount, f.price) {
		return 0, ReasonNotAboveFloor
	}
	return amount, ""
}

// EnforceBudgets filters candidates to those the bidding party can afford.
// Returns eligible candidates and the rejections for the rest.
func EnforceBudgets(candidates []Candidate, budget func(party string) (float64, bool)) (eligible []Candidate, rejected []RejectedBid) {
	eligibleCandidates := make([]Candidate, 0, len(candidates))
	rejections := make([]RejectedBid, 0)

	for _, c := range candidates {
		available, ok := budget(c.Bid.Party)
		if !ok {
			rejections = append(rejections, RejectedBid{Party: c.Bid.Party, Reason: ReasonUnknownParty})
			continue
		}
		if Affordable(c.Amount, available) {
			eligibleCandidates = append(eligibleCandidates, c)
		} else {
			rejections = append(rejections, RejectedBid{Party: c.Bid.Party, Reason: ReasonOverBudget})
		}
	}

	return eligibleCandidates, rejections
}
