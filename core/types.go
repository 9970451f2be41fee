package core

import (
	"fmt"
	"math"
)

// Lot represents a single player put up for auction.
// Identity and reserve fields are fixed at catalog load; the sold fields are
// written once, when the lot is finalized.
type Lot struct {
	Name          string  `json:"name"`
	Specialism    string  `json:"specialism"`
	Category      string  `json:"category"`
	ReservePrice  float64 `json:"reserve_price"`
	PreviousPrice float64 `json:"previous_price,omitempty"`
	Profile       string  `json:"profile,omitempty"` // e.g. "Capped / Experienced"
	Stats         string  `json:"stats,omitempty"`

	Sold      bool    `json:"sold"`
	SoldPrice float64 `json:"sold_price,omitempty"`
	SoldTo    string  `json:"sold_to,omitempty"`
	Rationale string  `json:"rationale,omitempty"`
}

// Party is a bidding team with a budget and the lots it has won.
type Party struct {
	Name     string   `json:"name"`
	Budget   float64  `json:"budget"`
	Holdings Holdings `json:"-"`
}

// ProposedBid is one party's decision for the active lot in a single round.
// It lives for exactly one round and is never stored on the league.
type ProposedBid struct {
	Party        string   `json:"party"`
	IsRaise      bool     `json:"is_raise"`
	IsNormal     bool     `json:"is_normal"`
	RaisedAmount *float64 `json:"raised_amount,omitempty"`
	Rationale    string   `json:"rationale,omitempty"`
}

// Pass returns a proposal that declines to raise.
func Pass(party string) ProposedBid {
	return ProposedBid{Party: party}
}

// NormalRaise returns a proposal raising by the scheduled increment.
func NormalRaise(party string) ProposedBid {
	return ProposedBid{Party: party, IsRaise: true, IsNormal: true}
}

// CustomRaise returns a proposal raising by a party-chosen amount.
func CustomRaise(party string, amount float64) ProposedBid {
	return ProposedBid{Party: party, IsRaise: true, RaisedAmount: &amount}
}

// Validate checks the structural invariants of a proposal. Threshold checks that
// depend on the current price are applied during adjudication.
func (b ProposedBid) Validate() error {
	if b.Party == "" {
		return fmt.Errorf("proposal has no party")
	}
	if !b.IsRaise {
		if b.RaisedAmount != nil {
			return fmt.Errorf("raised_amount must be empty when is_raise is false")
		}
		return nil
	}
	if b.IsNormal {
		if b.RaisedAmount != nil {
			return fmt.Errorf("raised_amount must be empty for a normal raise")
		}
		return nil
	}
	if b.RaisedAmount == nil {
		return fmt.Errorf("raised_amount is required for a custom raise")
	}
	if math.IsNaN(*b.RaisedAmount) || math.IsInf(*b.RaisedAmount, 0) {
		return fmt.Errorf("raised_amount must be a finite number")
	}
	if *b.RaisedAmount <= 0 {
		return fmt.Errorf("raised_amount must be positive, got %.4f", *b.RaisedAmount)
	}
	return nil
}

// CurrentBid is the leading accepted bid for the active lot.
type CurrentBid struct {
	ID        string  `json:"id"`
	Party     string  `json:"party"`
	Amount    float64 `json:"amount"`
	NextRaise float64 `json:"next_raise"`
	Custom    bool    `json:"custom"`
}

// Sale records a finalized transfer of a lot.
type Sale struct {
	Lot        *Lot
	Party      string
	Price      float64
	BidID      string
	Rounds     int
	BidHistory []CurrentBid
}

// Catalog maps category tags to the lots offered under them.
type Catalog struct {
	Categories []string
	Lots       map[string][]*Lot
}

// Len returns the number of lots across all categories.
func (c Catalog) Len() int {
	n := 0
	for _, lots := range c.Lots {
		n += len(lots)
	}
	return n
}

// InvariantError is the panic value raised when the engine is driven in a way
// that breaks its contract. It signals a caller bug, not a data condition.
type InvariantError struct {
	Op     string
	Reason string
}

func (e InvariantError) Error() string {
	return fmt.Sprintf("auction invariant violated in %s: %s", e.Op, e.Reason)
}

func violate(op, format string, args ...any) {
	panic(InvariantError{Op: op, Reason: fmt.Sprintf(format, args...)})
}
