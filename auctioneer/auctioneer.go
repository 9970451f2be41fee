// Package auctioneer drives a league to completion: it routes each step,
// deals lots, collects bids from the parties, adjudicates rounds and records
// what happened.
package auctioneer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cloudx-io/playerauction/agents"
	"github.com/cloudx-io/playerauction/auctionapi"
	"github.com/cloudx-io/playerauction/core"
)

const DefaultRationaleTimeout = 45 * time.Second

// Ledger persists the auction as it runs.
type Ledger interface {
	BeginAuction(id string, startedAt time.Time) error
	RecordSale(auctionID string, rec auctionapi.SaleRecord) error
	RecordUnsold(auctionID string, lot auctionapi.LotSummary) error
	SaveReceipt(receipt *auctionapi.SaleReceipt, signed auctionapi.ReceiptCOSE) error
	SaveSnapshot(snap *auctionapi.Snapshot) error
	FinishAuction(id string, finishedAt time.Time) error
}

// SquadAssigner arranges a party's lots into a roster once bidding ends.
type SquadAssigner interface {
	Assign(ctx context.Context, party string, lots []*core.Lot) (*core.Roster, error)
}

// Options wires the auctioneer's collaborators. Adjudicator, Dispenser and
// Pool are required; everything else is optional.
type Options struct {
	Adjudicator *core.Adjudicator
	Dispenser   *core.Dispenser
	Pool        *BidderPool

	// Explainer writes the purchase rationale; nil always uses the fallback
	Explainer        agents.Explainer
	RationaleTimeout time.Duration

	// Squads assigns roles at the end; nil leaves holdings as plain lists
	Squads SquadAssigner

	Receipts *ReceiptIssuer
	Ledger   Ledger
	Logger   *zap.Logger
	Now      func() time.Time
}

// Result is the outcome of a complete run.
type Result struct {
	Snapshot *auctionapi.Snapshot
	Receipts []Receipt
}

// Auctioneer owns the league for the duration of a run and is its only writer.
type Auctioneer struct {
	league *core.League
	opts   Options
	logger *zap.Logger

	receipts []Receipt
	started  bool
}

// New validates opts and binds them to league.
func New(league *core.League, opts Options) (*Auctioneer, error) {
	var errs []error
	if league == nil {
		errs = append(errs, errors.New("league is required"))
	}
	if opts.Adjudicator == nil {
		errs = append(errs, errors.New("adjudicator is required"))
	}
	if opts.Dispenser == nil {
		errs = append(errs, errors.New("dispenser is required"))
	}
	if opts.Pool == nil {
		errs = append(errs, errors.New("bidder pool is required"))
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	if opts.RationaleTimeout <= 0 {
		opts.RationaleTimeout = DefaultRationaleTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Auctioneer{
		league: league,
		opts:   opts,
		logger: opts.Logger.With(zap.String("auction_id", league.ID)),
	}, nil
}

// League exposes the state being driven. Callers must not mutate it.
func (a *Auctioneer) League() *core.League {
	return a.league
}

// Receipts returns the receipts issued so far.
func (a *Auctioneer) Receipts() []Receipt {
	return append([]Receipt(nil), a.receipts...)
}

// Run steps the auction until the router ends it, then assigns squads and
// records the final snapshot.
func (a *Auctioneer) Run(ctx context.Context) (*Result, error) {
	if err := a.begin(); err != nil {
		return nil, err
	}

	for {
		decision, _, err := a.Step(ctx)
		if err != nil {
			return nil, err
		}
		if decision == core.End {
			break
		}
	}

	a.assignSquads(ctx)

	snap := auctionapi.NewSnapshot(a.league, a.opts.Now())
	if l := a.opts.Ledger; l != nil {
		if err := l.SaveSnapshot(snap); err != nil {
			return nil, err
		}
		if err := l.FinishAuction(a.league.ID, a.opts.Now()); err != nil {
			return nil, err
		}
	}

	a.logger.Info("auction complete",
		zap.Int("sold", len(snap.Sales)),
		zap.Int("unsold", len(snap.Unsold)),
		zap.Int("receipts", len(a.receipts)),
	)
	return &Result{Snapshot: snap, Receipts: a.Receipts()}, nil
}

func (a *Auctioneer) begin() error {
	if a.started {
		return nil
	}
	a.started = true
	if l := a.opts.Ledger; l != nil {
		if err := l.BeginAuction(a.league.ID, a.opts.Now()); err != nil {
			return err
		}
	}
	a.logger.Info("auction started",
		zap.Int("parties", len(a.league.Parties())),
		zap.Int("sets", len(a.league.Round.RemainingCategories)),
	)
	return nil
}

// Step performs the stage the router picks for the current state. The
// outcome is set only when a round was adjudicated.
func (a *Auctioneer) Step(ctx context.Context) (core.Decision, *core.RoundOutcome, error) {
	if err := ctx.Err(); err != nil {
		return core.End, nil, err
	}

	decision := core.Route(a.league.Round)
	switch decision {
	case core.RequestLot:
		if _, ok := a.opts.Dispenser.Next(a.league); !ok {
			a.logger.Debug("nothing left to deal")
		}
		return decision, nil, nil

	case core.CollectBids:
		bids, err := a.opts.Pool.Collect(ctx, a.league)
		if err != nil {
			return decision, nil, fmt.Errorf("collect bids: %w", err)
		}

		leading := a.league.Round.CurrentBid
		a.logger.Info("round",
			zap.String("player", a.league.Round.CurrentLot.Name),
			zap.Int("round", a.league.Round.RoundCounter),
			zap.Float64("current_bid", currentAmount(a.league.Round)),
			zap.String("leader", leaderName(leading)),
			zap.Int("bids_received", len(bids)),
		)

		outcome := a.opts.Adjudicator.Adjudicate(a.league, bids)
		if err := a.record(ctx, outcome); err != nil {
			return decision, &outcome, err
		}
		return decision, &outcome, nil

	default:
		return decision, nil, nil
	}
}

func (a *Auctioneer) record(ctx context.Context, outcome core.RoundOutcome) error {
	switch outcome.Kind {
	case core.OutcomeSold:
		return a.recordSale(ctx, *outcome.Sale)
	case core.OutcomeUnsold:
		if l := a.opts.Ledger; l != nil {
			return l.RecordUnsold(a.league.ID, auctionapi.Summarize(outcome.Lot))
		}
	}
	return nil
}

func (a *Auctioneer) recordSale(ctx context.Context, sale core.Sale) error {
	sale.Lot.Rationale = a.rationale(ctx, sale)

	if a.opts.Receipts != nil {
		receipt, err := a.opts.Receipts.Issue(a.league.ID, sale, a.league.Budgets())
		if err != nil {
			return fmt.Errorf("issue receipt for %s: %w", sale.Lot.Name, err)
		}
		a.receipts = append(a.receipts, receipt)
		if l := a.opts.Ledger; l != nil {
			if err := l.SaveReceipt(receipt.Receipt, receipt.Signed); err != nil {
				return err
			}
		}
	}

	if l := a.opts.Ledger; l != nil {
		if err := l.RecordSale(a.league.ID, auctionapi.NewSaleRecord(sale)); err != nil {
			return err
		}
	}
	return nil
}

func (a *Auctioneer) rationale(ctx context.Context, sale core.Sale) string {
	fallback := agents.FallbackRationale(sale.Party, sale.Lot.Name, sale.Price)
	if a.opts.Explainer == nil {
		return fallback
	}

	ctx, cancel := context.WithTimeout(ctx, a.opts.RationaleTimeout)
	defer cancel()

	text, err := a.opts.Explainer.Explain(ctx, agents.NewRationaleContext(a.league, sale))
	if err != nil {
		a.logger.Warn("purchase rationale unavailable",
			zap.String("party", sale.Party),
			zap.String("player", sale.Lot.Name),
			zap.Error(err),
		)
		return fallback
	}
	return text
}

func (a *Auctioneer) assignSquads(ctx context.Context) {
	if a.opts.Squads == nil {
		return
	}
	for _, p := range a.league.Parties() {
		lots := p.Holdings.Lots()
		if len(lots) == 0 {
			continue
		}
		roster, err := a.opts.Squads.Assign(ctx, p.Name, lots)
		if err == nil {
			err = p.Holdings.AssignRoster(roster)
		}
		if err != nil {
			a.logger.Warn("squad assignment failed, keeping plain holdings",
				zap.String("party", p.Name),
				zap.Error(err),
			)
			continue
		}
		a.logger.Info("squad assigned", zap.String("party", p.Name), zap.Int("players", len(lots)))
	}
}

func currentAmount(rs core.RoundState) float64 {
	if rs.CurrentBid != nil {
		return rs.CurrentBid.Amount
	}
	if rs.CurrentLot != nil {
		return rs.CurrentLot.ReservePrice
	}
	return 0
}

func leaderName(bid *core.CurrentBid) string {
	if bid == nil {
		return "none"
	}
	return bid.Party
}
