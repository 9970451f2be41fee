package agents

import (
	"context"
	"sync"

	"github.com/cloudx-io/playerauction/core"
)

const (
	maxBudgetShare     = 0.30
	maxReserveMultiple = 15.0
	hesitationPercent  = 50
)

// HeuristicDecider bids without a model. A party stays out when its budget is
// spent, when the price has reached its budget, when the price exceeds 30% of
// the budget or 15x the reserve; otherwise it hesitates half the time and
// raises normally the rest.
type HeuristicDecider struct {
	mu      sync.Mutex
	newRand func(party string) core.RandSource
	streams map[string]core.RandSource
}

// NewHeuristicDecider creates a heuristic bidder. Each party draws hesitation
// from its own stream, made on first use by newRand, so a party's rolls do not
// depend on the order concurrent calls arrive in. A nil newRand uses
// crypto/rand for every party.
func NewHeuristicDecider(newRand func(party string) core.RandSource) *HeuristicDecider {
	if newRand == nil {
		newRand = func(string) core.RandSource { return core.NewRand(0) }
	}
	return &HeuristicDecider{newRand: newRand, streams: make(map[string]core.RandSource)}
}

// PartyStreams gives each party a stream seeded from seed and its
// registration index. Offsets start at 1 so no party shares the seed itself.
// A zero seed or an unregistered party gets crypto/rand.
func PartyStreams(seed uint64, parties []string) func(party string) core.RandSource {
	index := make(map[string]int, len(parties))
	for i, name := range parties {
		index[name] = i
	}
	return func(party string) core.RandSource {
		i, ok := index[party]
		if seed == 0 || !ok {
			return core.NewRand(0)
		}
		return core.NewSeededRand(seed + uint64(i) + 1)
	}
}

func (h *HeuristicDecider) Decide(_ context.Context, bc BidContext) (core.ProposedBid, error) {
	if !WouldBid(bc.Budget, bc.CurrentPrice, bc.Lot.ReservePrice) {
		return core.Pass(bc.Party), nil
	}

	if h.roll(bc.Party) < hesitationPercent {
		return core.Pass(bc.Party), nil
	}
	return core.NormalRaise(bc.Party), nil
}

// RandSource implementations are not safe for concurrent use.
func (h *HeuristicDecider) roll(party string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	stream, ok := h.streams[party]
	if !ok {
		stream = h.newRand(party)
		h.streams[party] = stream
	}
	return stream.Intn(100)
}

// WouldBid applies the deterministic part of the heuristic.
func WouldBid(budget, price, reserve float64) bool {
	if budget <= 0 {
		return false
	}
	if core.MoneyCmp(price, budget) >= 0 {
		return false
	}
	if price > budget*maxBudgetShare {
		return false
	}
	if price > reserve*maxReserveMultiple {
		return false
	}
	return true
}
