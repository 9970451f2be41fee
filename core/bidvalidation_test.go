package core

import (
	"math"
	"testing"

	"github.com/peterldowns/testy/check"
)

func TestBidMeetsFloor(t *testing.T) {
	tests := []struct {
		name       string
		bidPrice   float64
		floorPrice float64
		expected   bool
	}{
		{"bid above floor", 3.0, 2.5, true},
		{"bid at floor", 2.5, 2.5, true},
		{"bid below floor", 2.0, 2.5, false},
		{"zero floor with zero bid", 0.0, 0.0, true},
		{"decimal precision edge case - passes", 2.499999999, 2.5, true},
		{"decimal precision edge case - fails", 2.4999, 2.5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check.Equal(t, tt.expected, BidMeetsFloor(tt.bidPrice, tt.floorPrice))
		})
	}
}

func TestBidExceedsFloor(t *testing.T) {
	check.True(t, BidExceedsFloor(2.25, 2.0))
	check.False(t, BidExceedsFloor(2.0, 2.0))
	check.False(t, BidExceedsFloor(2.00000001, 2.0))
	check.False(t, BidExceedsFloor(1.9, 2.0))
}

func TestCustomRaiseAllowed(t *testing.T) {
	schedule := DefaultRaiseSchedule()

	tests := []struct {
		name   string
		raised float64
		floor  float64
		want   bool
	}{
		{"exactly at minimum is accepted", 0.25, 2.0, true},
		{"above minimum", 1.0, 2.0, true},
		{"below minimum", 0.20, 2.0, false},
		{"low band minimum", 0.10, 1.0, true},
		{"just under low band minimum", 0.09, 1.0, false},
		{"high band needs half", 0.25, 25.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check.Equal(t, tt.want, CustomRaiseAllowed(tt.raised, tt.floor, schedule))
		})
	}
}

func TestResolveAmount(t *testing.T) {
	schedule := DefaultRaiseSchedule()

	tests := []struct {
		name       string
		bid        ProposedBid
		floor      float64
		hasLeader  bool
		wantAmount float64
		wantReason string
	}{
		{
			name:       "pass is not a candidate",
			bid:        Pass("A"),
			floor:      1.0,
			wantReason: ReasonNotARaise,
		},
		{
			name:       "opening normal raise is the reserve",
			bid:        NormalRaise("A"),
			floor:      1.0,
			wantAmount: 1.0,
		},
		{
			name:       "opening custom raise adds to reserve",
			bid:        CustomRaise("A", 0.5),
			floor:      1.0,
			wantAmount: 1.5,
		},
		{
			name:       "normal raise over leader uses schedule",
			bid:        NormalRaise("A"),
			floor:      5.0,
			hasLeader:  true,
			wantAmount: 5.25,
		},
		{
			name:       "custom raise over leader",
			bid:        CustomRaise("A", 0.5),
			floor:      5.0,
			hasLeader:  true,
			wantAmount: 5.5,
		},
		{
			name:       "custom raise below minimum",
			bid:        CustomRaise("A", 0.20),
			floor:      2.0,
			hasLeader:  true,
			wantReason: ReasonBelowMinimumRaise,
		},
		{
			name:       "custom raise without amount is invalid",
			bid:        ProposedBid{Party: "A", IsRaise: true},
			floor:      2.0,
			wantReason: ReasonInvalidBid,
		},
		{
			name:       "normal raise carrying an amount is invalid",
			bid:        ProposedBid{Party: "A", IsRaise: true, IsNormal: true, RaisedAmount: new(float64)},
			floor:      2.0,
			wantReason: ReasonInvalidBid,
		},
		{
			name:       "negative custom raise is invalid",
			bid:        CustomRaise("A", -1),
			floor:      2.0,
			wantReason: ReasonInvalidBid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			amount, reason := ResolveAmount(tt.bid, tt.floor, tt.hasLeader, schedule)
			check.Equal(t, tt.wantReason, reason)
			check.Equal(t, tt.wantAmount, amount)
		})
	}
}

func TestEnforceBudgets(t *testing.T) {
	budgets := map[string]float64{"A": 5.0, "B": 2.0}
	lookup := func(party string) (float64, bool) {
		b, ok := budgets[party]
		return b, ok
	}

	candidates := []Candidate{
		{Bid: NormalRaise("A"), Amount: 5.0, Order: 0},
		{Bid: NormalRaise("B"), Amount: 2.25, Order: 1},
		{Bid: NormalRaise("C"), Amount: 1.0, Order: 2},
	}

	eligible, rejected := EnforceBudgets(candidates, lookup)

	check.Equal(t, 1, len(eligible))
	check.Equal(t, "A", eligible[0].Bid.Party)
	check.Equal(t, 2, len(rejected))
	check.Equal(t, RejectedBid{Party: "B", Reason: ReasonOverBudget}, rejected[0])
	check.Equal(t, RejectedBid{Party: "C", Reason: ReasonUnknownParty}, rejected[1])
}

func TestProposedBidValidate(t *testing.T) {
	amount := 1.0
	tests := []struct {
		name    string
		bid     ProposedBid
		wantErr bool
	}{
		{"pass", Pass("A"), false},
		{"normal raise", NormalRaise("A"), false},
		{"custom raise", CustomRaise("A", 0.3), false},
		{"no party", Pass(""), true},
		{"zero custom amount", CustomRaise("A", 0), true},
		{"amount without raise", ProposedBid{Party: "A", RaisedAmount: &amount}, true},
		{"NaN custom amount", CustomRaise("A", math.NaN()), true},
		{"+Inf custom amount", CustomRaise("A", math.Inf(1)), true},
		{"-Inf custom amount", CustomRaise("A", math.Inf(-1)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bid.Validate()
			if tt.wantErr {
				check.Error(t, err)
				return
			}
			check.NoError(t, err)
		})
	}
}
