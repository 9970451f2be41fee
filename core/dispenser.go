package core

import (
	"go.uber.org/zap"
)

// Dispenser deals lots from the league's catalog. A category is chosen
// uniformly at random among the non-empty remaining categories and dealt to
// exhaustion, one uniformly random lot at a time.
type Dispenser struct {
	rand   RandSource
	logger *zap.Logger
}

// NewDispenser creates a dispenser. A nil source falls back to crypto/rand.
func NewDispenser(randSource RandSource, logger *zap.Logger) *Dispenser {
	if randSource == nil {
		randSource = defaultRandSource
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispenser{rand: randSource, logger: logger}
}

// Next activates the next lot. It returns false once every category is
// exhausted; exhaustion is a normal end, not an error.
func (d *Dispenser) Next(league *League) (*Lot, bool) {
	rs := &league.Round
	if rs.Active || rs.CurrentLot != nil {
		violate("dispense", "lot %q is still active", lotName(rs.CurrentLot))
	}

	if len(rs.RemainingLotsInCategory) == 0 {
		available := make([]string, 0, len(rs.RemainingCategories))
		for _, category := range rs.RemainingCategories {
			if len(league.catalog[category]) > 0 {
				available = append(available, category)
			}
		}
		rs.RemainingCategories = available
		if len(available) == 0 {
			rs.CurrentCategory = ""
			d.logger.Info("catalog exhausted")
			return nil, false
		}

		idx := d.rand.Intn(len(available))
		category := available[idx]
		rs.RemainingCategories = append(append([]string(nil), available[:idx]...), available[idx+1:]...)
		rs.CurrentCategory = category
		rs.RemainingLotsInCategory = league.catalog[category]
		delete(league.catalog, category)

		d.logger.Info("category selected",
			zap.String("category", category),
			zap.Int("lots", len(rs.RemainingLotsInCategory)),
			zap.Int("categories_left", len(rs.RemainingCategories)),
		)
	}

	idx := d.rand.Intn(len(rs.RemainingLotsInCategory))
	lot := rs.RemainingLotsInCategory[idx]
	rest := make([]*Lot, 0, len(rs.RemainingLotsInCategory)-1)
	rest = append(rest, rs.RemainingLotsInCategory[:idx]...)
	rest = append(rest, rs.RemainingLotsInCategory[idx+1:]...)
	rs.RemainingLotsInCategory = rest

	rs.CurrentLot = lot
	rs.CurrentBid = nil
	rs.RoundCounter = 0
	rs.RoundsPlayed = 0
	rs.BidHistory = nil
	rs.Active = true
	rs.Phase = AwaitingFirstBid

	d.logger.Info("lot up for auction",
		zap.String("lot", lot.Name),
		zap.String("specialism", lot.Specialism),
		zap.Float64("reserve_price", lot.ReservePrice),
		zap.Int("left_in_category", len(rs.RemainingLotsInCategory)),
	)
	return lot, true
}

func lotName(lot *Lot) string {
	if lot == nil {
		return "none"
	}
	return lot.Name
}
