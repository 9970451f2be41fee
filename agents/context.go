// Package agents contains the collaborators the auctioneer consults: bidders
// that decide each round, the reasoner that explains a purchase and the squad
// manager that assigns roles once bidding ends.
package agents

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cloudx-io/playerauction/core"
)

// PartySummary is what a bidder may know about a party: budget and squad shape.
type PartySummary struct {
	Name        string
	Budget      float64
	SquadSize   int
	Specialisms map[string]int
}

// BidContext is everything a bidder sees when deciding on the active lot.
type BidContext struct {
	Party string
	Lot   core.Lot
	Round int

	// CurrentPrice is the leading amount, or the reserve price before any bid
	CurrentPrice float64
	HasLeader    bool
	Leader       string
	MinimumRaise float64

	Budget   float64
	Holdings []string

	Rivals              []PartySummary
	RemainingCategories []string
	RemainingInCategory []string
}

// NormalRaisePrice is the amount a normal raise would commit to.
func (c BidContext) NormalRaisePrice() float64 {
	if !c.HasLeader {
		return c.CurrentPrice
	}
	return core.AddMoney(c.CurrentPrice, c.MinimumRaise)
}

func summarize(p *core.Party) PartySummary {
	s := PartySummary{Name: p.Name, Budget: p.Budget, Specialisms: make(map[string]int)}
	for _, l := range p.Holdings.Lots() {
		s.SquadSize++
		s.Specialisms[l.Specialism]++
	}
	return s
}

// BuildBidContext assembles the view of the active lot for one party.
func BuildBidContext(league *core.League, party string, schedule core.RaiseSchedule) (BidContext, error) {
	rs := league.Round
	if rs.CurrentLot == nil {
		return BidContext{}, fmt.Errorf("no active lot")
	}
	self, ok := league.Party(party)
	if !ok {
		return BidContext{}, fmt.Errorf("unknown party %q", party)
	}

	bc := BidContext{
		Party:        party,
		Lot:          *rs.CurrentLot,
		Round:        rs.RoundCounter,
		CurrentPrice: rs.CurrentLot.ReservePrice,
		Budget:       self.Budget,
	}
	if rs.CurrentBid != nil {
		bc.HasLeader = true
		bc.Leader = rs.CurrentBid.Party
		bc.CurrentPrice = rs.CurrentBid.Amount
	}
	bc.MinimumRaise = schedule.MinimumRaise(bc.CurrentPrice)

	for _, l := range self.Holdings.Lots() {
		bc.Holdings = append(bc.Holdings, fmt.Sprintf("%s (%s)", l.Name, l.Specialism))
	}
	for _, p := range league.Parties() {
		if p.Name != party {
			bc.Rivals = append(bc.Rivals, summarize(p))
		}
	}

	remaining := league.RemainingLots()
	for category := range remaining {
		if category != rs.CurrentCategory {
			bc.RemainingCategories = append(bc.RemainingCategories, category)
		}
	}
	sort.Strings(bc.RemainingCategories)
	for _, l := range remaining[rs.CurrentCategory] {
		bc.RemainingInCategory = append(bc.RemainingInCategory, l.Name)
	}
	return bc, nil
}

func formatSpecialisms(m map[string]int) string {
	if len(m) == 0 {
		return "none"
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%d", k, m[k]))
	}
	return strings.Join(parts, ", ")
}
