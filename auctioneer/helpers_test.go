package auctioneer

import (
	"context"
	"sync"
	"testing"

	"github.com/peterldowns/testy/assert"

	"github.com/cloudx-io/playerauction/agents"
	"github.com/cloudx-io/playerauction/core"
)

type firstRand struct{}

func (firstRand) Intn(int) int { return 0 }

// scriptedBidder answers from a per-party rule and records who was asked.
type scriptedBidder struct {
	mu    sync.Mutex
	rules map[string]func(agents.BidContext) core.ProposedBid
	asked []string
}

func (s *scriptedBidder) Decide(_ context.Context, bc agents.BidContext) core.ProposedBid {
	s.mu.Lock()
	s.asked = append(s.asked, bc.Party)
	rule := s.rules[bc.Party]
	s.mu.Unlock()
	if rule == nil {
		return core.Pass(bc.Party)
	}
	return rule(bc)
}

func (s *scriptedBidder) askedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.asked)
}

// newTestLeague builds a league with an opener in SBC and a spinner in
// EmBwU, and three parties with 20 each.
func newTestLeague(t *testing.T) *core.League {
	t.Helper()
	catalog := core.Catalog{
		Categories: []string{"SBC", "EmBwU"},
		Lots: map[string][]*core.Lot{
			"SBC":   {{Name: "Opener", Specialism: "BAT", Category: "SBC", ReservePrice: 2.0}},
			"EmBwU": {{Name: "Spinner", Specialism: "BOWL", Category: "EmBwU", ReservePrice: 1.0}},
		},
	}
	league, err := core.NewLeague(catalog, []*core.Party{
		{Name: "Chennai", Budget: 20},
		{Name: "Mumbai", Budget: 20},
		{Name: "Delhi", Budget: 20},
	})
	assert.NoError(t, err)
	return league
}

// openerScript: Chennai opens the opener, Mumbai raises once to 2.25 and
// nobody wants the spinner.
func openerScript() *scriptedBidder {
	return &scriptedBidder{rules: map[string]func(agents.BidContext) core.ProposedBid{
		"Chennai": func(bc agents.BidContext) core.ProposedBid {
			if bc.Lot.Name == "Opener" && !bc.HasLeader {
				return core.NormalRaise(bc.Party)
			}
			return core.Pass(bc.Party)
		},
		"Mumbai": func(bc agents.BidContext) core.ProposedBid {
			if bc.Lot.Name == "Opener" && bc.CurrentPrice < 2.25 {
				return core.NormalRaise(bc.Party)
			}
			return core.Pass(bc.Party)
		},
	}}
}
