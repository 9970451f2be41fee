package auctionapi

import (
	"time"
)

// LotSummary identifies a lot without its sale fields.
type LotSummary struct {
	Name         string  `json:"name" cbor:"name"`
	Specialism   string  `json:"specialism" cbor:"specialism"`
	Category     string  `json:"category" cbor:"category"`
	ReservePrice float64 `json:"reserve_price" cbor:"reserve_price"`
}

// SaleReceipt is the signed record issued for every finalized sale.
// It is CBOR-encoded and carried as the payload of a COSE_Sign1 message.
type SaleReceipt struct {
	ReceiptID string     `json:"receipt_id" cbor:"receipt_id"`
	AuctionID string     `json:"auction_id" cbor:"auction_id"`
	Lot       LotSummary `json:"lot" cbor:"lot"`
	Party     string     `json:"party" cbor:"party"`
	Price     float64    `json:"price" cbor:"price"`
	Rounds    int        `json:"rounds" cbor:"rounds"`

	// WinningBidID is the ID of the accepted bid the lot was sold on
	WinningBidID string `json:"winning_bid_id" cbor:"winning_bid_id"`

	// BidHashes commit to every bid that led the lot, in acceptance order
	BidHashes    []string `json:"bid_hashes" cbor:"bid_hashes"`
	BidHashNonce string   `json:"bid_hash_nonce" cbor:"bid_hash_nonce"`

	LotHash      string `json:"lot_hash" cbor:"lot_hash"`
	LotHashNonce string `json:"lot_hash_nonce" cbor:"lot_hash_nonce"`

	// BudgetsHash commits to every party's remaining budget after the sale
	BudgetsHash  string `json:"budgets_hash" cbor:"budgets_hash"`
	BudgetsNonce string `json:"budgets_nonce" cbor:"budgets_nonce"`

	KeyFingerprint string    `json:"key_fingerprint" cbor:"key_fingerprint"`
	Timestamp      time.Time `json:"timestamp" cbor:"timestamp"`
}

// SaleRecord is a sale as stored in the ledger and in snapshots.
type SaleRecord struct {
	Lot       LotSummary `json:"lot" cbor:"lot"`
	Party     string     `json:"party" cbor:"party"`
	Price     float64    `json:"price" cbor:"price"`
	Rounds    int        `json:"rounds" cbor:"rounds"`
	BidID     string     `json:"bid_id" cbor:"bid_id"`
	Rationale string     `json:"rationale,omitempty" cbor:"rationale,omitempty"`
}

// RosterSnapshot lists lot names per lineup slot.
type RosterSnapshot struct {
	Captain            string   `json:"captain,omitempty" cbor:"captain,omitempty"`
	WicketKeeper       string   `json:"wicket_keeper,omitempty" cbor:"wicket_keeper,omitempty"`
	BattingOrder       []string `json:"batting_order,omitempty" cbor:"batting_order,omitempty"`
	PowerplayBowlers   []string `json:"powerplay_bowlers,omitempty" cbor:"powerplay_bowlers,omitempty"`
	MiddleOversBowlers []string `json:"middle_overs_bowlers,omitempty" cbor:"middle_overs_bowlers,omitempty"`
	DeathOversBowlers  []string `json:"death_overs_bowlers,omitempty" cbor:"death_overs_bowlers,omitempty"`
	Bench              []string `json:"bench,omitempty" cbor:"bench,omitempty"`
}

// PartySnapshot is a party's budget and holdings at snapshot time.
type PartySnapshot struct {
	Name         string          `json:"name" cbor:"name"`
	Budget       float64         `json:"budget" cbor:"budget"`
	HoldingsKind string          `json:"holdings_kind" cbor:"holdings_kind"`
	Lots         []LotSummary    `json:"lots" cbor:"lots"`
	Roster       *RosterSnapshot `json:"roster,omitempty" cbor:"roster,omitempty"`
}

// Snapshot is the complete observable auction state.
type Snapshot struct {
	AuctionID string          `json:"auction_id" cbor:"auction_id"`
	TakenAt   time.Time       `json:"taken_at" cbor:"taken_at"`
	Parties   []PartySnapshot `json:"parties" cbor:"parties"`
	Sales     []SaleRecord    `json:"sales" cbor:"sales"`
	Unsold    []LotSummary    `json:"unsold" cbor:"unsold"`

	// RemainingLots counts undealt lots per category
	RemainingLots map[string]int `json:"remaining_lots" cbor:"remaining_lots"`

	// ActiveLot is set when the snapshot is taken mid-lot
	ActiveLot *LotSummary `json:"active_lot,omitempty" cbor:"active_lot,omitempty"`
}
