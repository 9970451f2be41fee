package core

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Phase is the adjudication state of the active lot.
type Phase int

const (
	NoActiveLot Phase = iota
	AwaitingFirstBid
	BiddingInProgress
	Finalizing
	Voided
)

func (p Phase) String() string {
	switch p {
	case NoActiveLot:
		return "no_active_lot"
	case AwaitingFirstBid:
		return "awaiting_first_bid"
	case BiddingInProgress:
		return "bidding_in_progress"
	case Finalizing:
		return "finalizing"
	case Voided:
		return "voided"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// RoundState is the per-lot auction state shared by the dispenser and the
// adjudicator.
type RoundState struct {
	CurrentLot              *Lot
	CurrentBid              *CurrentBid
	RoundCounter            int
	RoundsPlayed            int
	BidHistory              []CurrentBid
	RemainingCategories     []string
	CurrentCategory         string
	RemainingLotsInCategory []*Lot
	Active                  bool
	Phase                   Phase
}

// League owns the complete auction state: the undealt catalog, the parties,
// the unsold pile and the round state. Only the dispenser and the adjudicator
// mutate it, one at a time, from the driving goroutine.
type League struct {
	ID      string
	Round   RoundState
	Unsold  []*Lot
	Sales   []Sale
	catalog map[string][]*Lot
	parties []*Party
	byName  map[string]*Party
}

// NewLeague builds a league from a catalog and the competing parties. The
// order of parties is the registration order used for tie-breaks.
func NewLeague(catalog Catalog, parties []*Party) (*League, error) {
	if len(parties) == 0 {
		return nil, fmt.Errorf("league needs at least one party")
	}
	byName := make(map[string]*Party, len(parties))
	for _, p := range parties {
		if p == nil || p.Name == "" {
			return nil, fmt.Errorf("party with empty name")
		}
		if _, dup := byName[p.Name]; dup {
			return nil, fmt.Errorf("duplicate party %q", p.Name)
		}
		if math.IsNaN(p.Budget) || math.IsInf(p.Budget, 0) {
			return nil, fmt.Errorf("party %q has non-finite budget", p.Name)
		}
		if p.Budget < 0 {
			return nil, fmt.Errorf("party %q has negative budget %.4f", p.Name, p.Budget)
		}
		byName[p.Name] = p
	}

	lots := make(map[string][]*Lot, len(catalog.Lots))
	categories := make([]string, 0, len(catalog.Categories))
	for _, category := range catalog.Categories {
		for _, lot := range catalog.Lots[category] {
			if math.IsNaN(lot.ReservePrice) || math.IsInf(lot.ReservePrice, 0) {
				return nil, fmt.Errorf("lot %q has non-finite reserve price", lot.Name)
			}
			if lot.ReservePrice < 0 {
				return nil, fmt.Errorf("lot %q has negative reserve price %.4f", lot.Name, lot.ReservePrice)
			}
		}
		lots[category] = append([]*Lot(nil), catalog.Lots[category]...)
		categories = append(categories, category)
	}

	return &League{
		ID:      uuid.NewString(),
		catalog: lots,
		parties: parties,
		byName:  byName,
		Round: RoundState{
			RemainingCategories: categories,
			Phase:               NoActiveLot,
		},
	}, nil
}

// Parties returns the parties in registration order.
func (l *League) Parties() []*Party {
	return l.parties
}

// Party looks up a party by name.
func (l *League) Party(name string) (*Party, bool) {
	p, ok := l.byName[name]
	return p, ok
}

// Budget returns a party's remaining budget.
func (l *League) Budget(name string) (float64, bool) {
	p, ok := l.byName[name]
	if !ok {
		return 0, false
	}
	return p.Budget, true
}

// Budgets returns every party's remaining budget keyed by name.
func (l *League) Budgets() map[string]float64 {
	out := make(map[string]float64, len(l.parties))
	for _, p := range l.parties {
		out[p.Name] = p.Budget
	}
	return out
}

// RemainingLots returns the undealt lots of every category, including the
// remainder of the category currently being dealt.
func (l *League) RemainingLots() map[string][]*Lot {
	out := make(map[string][]*Lot)
	for _, category := range l.Round.RemainingCategories {
		if lots := l.catalog[category]; len(lots) > 0 {
			out[category] = append([]*Lot(nil), lots...)
		}
	}
	if len(l.Round.RemainingLotsInCategory) > 0 {
		out[l.Round.CurrentCategory] = append([]*Lot(nil), l.Round.RemainingLotsInCategory...)
	}
	return out
}

// settle transfers the lot to the party as one step. Every precondition is
// checked before any field is written, so a violation leaves the league as it was.
func (l *League) settle(lot *Lot, partyName string, price float64) Sale {
	if lot == nil {
		violate("settle", "no lot to transfer")
	}
	if lot.Sold {
		violate("settle", "lot %q is already sold to %s", lot.Name, lot.SoldTo)
	}
	party, ok := l.byName[partyName]
	if !ok {
		violate("settle", "unknown party %q", partyName)
	}
	if !Affordable(price, party.Budget) {
		violate("settle", "party %q cannot pay %.4f with budget %.4f", partyName, price, party.Budget)
	}
	remaining := SubMoney(party.Budget, price)

	party.Budget = remaining
	party.Holdings.add(lot)
	lot.Sold = true
	lot.SoldPrice = price
	lot.SoldTo = partyName

	sale := Sale{
		Lot:        lot,
		Party:      partyName,
		Price:      price,
		Rounds:     l.Round.RoundsPlayed,
		BidHistory: append([]CurrentBid(nil), l.Round.BidHistory...),
	}
	if l.Round.CurrentBid != nil {
		sale.BidID = l.Round.CurrentBid.ID
	}
	l.Sales = append(l.Sales, sale)
	return sale
}

func (l *League) void(lot *Lot) {
	if lot == nil {
		violate("void", "no lot to void")
	}
	if lot.Sold {
		violate("void", "lot %q is sold and cannot be unsold", lot.Name)
	}
	l.Unsold = append(l.Unsold, lot)
}

// resetRound clears the per-lot state once a lot is finalized or voided.
func (l *League) resetRound() {
	l.Round.CurrentLot = nil
	l.Round.CurrentBid = nil
	l.Round.RoundCounter = 0
	l.Round.RoundsPlayed = 0
	l.Round.BidHistory = nil
	l.Round.Active = false
	l.Round.Phase = NoActiveLot
}
