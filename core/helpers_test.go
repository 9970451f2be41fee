package core

import (
	"testing"

	"github.com/peterldowns/testy/assert"
)

// mockRandSource provides a deterministic random source for testing
type mockRandSource struct {
	sequence []int
	index    int
}

func (m *mockRandSource) Intn(n int) int {
	if m.index >= len(m.sequence) {
		return 0
	}
	val := m.sequence[m.index] % n
	m.index++
	return val
}

func newTestParties(names ...string) []*Party {
	parties := make([]*Party, 0, len(names))
	for _, name := range names {
		parties = append(parties, &Party{Name: name, Budget: 50.0})
	}
	return parties
}

// newActiveLeague builds a league holding one lot and deals it immediately.
func newActiveLeague(t *testing.T, reserve float64, parties []*Party) (*League, *Lot) {
	t.Helper()
	lot := &Lot{Name: "Test Player", Specialism: "Batter", Category: "BAT", ReservePrice: reserve}
	league, err := NewLeague(Catalog{
		Categories: []string{"BAT"},
		Lots:       map[string][]*Lot{"BAT": {lot}},
	}, parties)
	assert.NoError(t, err)

	dealt, ok := NewDispenser(&mockRandSource{}, nil).Next(league)
	assert.True(t, ok)
	assert.True(t, dealt == lot)
	return league, lot
}

// setLeader installs a leading bid as if it had been accepted in an earlier round.
func setLeader(league *League, party string, amount float64) {
	league.Round.CurrentBid = &CurrentBid{
		ID:        "bid-" + party,
		Party:     party,
		Amount:    amount,
		NextRaise: DefaultRaiseSchedule().MinimumRaise(amount),
	}
	league.Round.BidHistory = append(league.Round.BidHistory, *league.Round.CurrentBid)
	league.Round.Phase = BiddingInProgress
}
