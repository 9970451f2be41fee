package auctionapi

import (
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/cloudx-io/playerauction/core"
)

// encMode is the canonical CBOR encoding shared by snapshots and receipts.
// Timestamps keep nanoseconds so a decoded value matches the original.
var encMode = func() cbor.EncMode {
	em, err := cbor.EncOptions{
		Sort: cbor.SortCanonical,
		Time: cbor.TimeRFC3339Nano,
	}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("cbor encoding mode: %v", err))
	}
	return em
}()

// Summarize converts a lot into its identifying summary.
func Summarize(lot *core.Lot) LotSummary {
	if lot == nil {
		return LotSummary{}
	}
	return LotSummary{
		Name:         lot.Name,
		Specialism:   lot.Specialism,
		Category:     lot.Category,
		ReservePrice: lot.ReservePrice,
	}
}

func summarizeAll(lots []*core.Lot) []LotSummary {
	out := make([]LotSummary, 0, len(lots))
	for _, l := range lots {
		out = append(out, Summarize(l))
	}
	return out
}

func names(lots []*core.Lot) []string {
	if len(lots) == 0 {
		return nil
	}
	out := make([]string, 0, len(lots))
	for _, l := range lots {
		out = append(out, l.Name)
	}
	return out
}

func lotName(lot *core.Lot) string {
	if lot == nil {
		return ""
	}
	return lot.Name
}

// NewSnapshot captures the league's observable state at takenAt.
func NewSnapshot(league *core.League, takenAt time.Time) *Snapshot {
	snap := &Snapshot{
		AuctionID:     league.ID,
		TakenAt:       takenAt.UTC(),
		Parties:       make([]PartySnapshot, 0, len(league.Parties())),
		Sales:         make([]SaleRecord, 0, len(league.Sales)),
		Unsold:        summarizeAll(league.Unsold),
		RemainingLots: make(map[string]int),
	}

	for _, p := range league.Parties() {
		ps := PartySnapshot{
			Name:         p.Name,
			Budget:       p.Budget,
			HoldingsKind: p.Holdings.Kind().String(),
			Lots:         summarizeAll(p.Holdings.Lots()),
		}
		if r := p.Holdings.Roster(); r != nil {
			ps.Roster = &RosterSnapshot{
				Captain:            lotName(r.Captain),
				WicketKeeper:       lotName(r.WicketKeeper),
				BattingOrder:       names(r.BattingOrder),
				PowerplayBowlers:   names(r.PowerplayBowlers),
				MiddleOversBowlers: names(r.MiddleOversBowlers),
				DeathOversBowlers:  names(r.DeathOversBowlers),
				Bench:              names(r.Bench),
			}
		}
		snap.Parties = append(snap.Parties, ps)
	}

	for _, s := range league.Sales {
		snap.Sales = append(snap.Sales, NewSaleRecord(s))
	}

	for category, lots := range league.RemainingLots() {
		snap.RemainingLots[category] = len(lots)
	}

	if league.Round.CurrentLot != nil {
		active := Summarize(league.Round.CurrentLot)
		snap.ActiveLot = &active
	}
	return snap
}

// NewSaleRecord converts a finalized sale into its ledger form.
func NewSaleRecord(s core.Sale) SaleRecord {
	rec := SaleRecord{
		Lot:    Summarize(s.Lot),
		Party:  s.Party,
		Price:  s.Price,
		Rounds: s.Rounds,
		BidID:  s.BidID,
	}
	if s.Lot != nil {
		rec.Rationale = s.Lot.Rationale
	}
	return rec
}

// EncodeCBOR encodes the snapshot in canonical CBOR.
func (s *Snapshot) EncodeCBOR() ([]byte, error) {
	data, err := encMode.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshotCBOR decodes a snapshot produced by EncodeCBOR.
func DecodeSnapshotCBOR(data []byte) (*Snapshot, error) {
	var snap Snapshot
	if err := cbor.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return &snap, nil
}
