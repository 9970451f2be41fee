package auctioneer

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/cloudx-io/playerauction/agents"
	"github.com/cloudx-io/playerauction/core"
)

// Bidder decides a party's proposal for one round. It must not fail: any
// problem is reported as a pass.
type Bidder interface {
	Decide(ctx context.Context, bc agents.BidContext) core.ProposedBid
}

// BidderPool asks every party except the current leader for a decision in
// parallel. Calls are spaced through a shared limiter so a model-backed bidder
// does not burst the provider.
type BidderPool struct {
	bidder   Bidder
	schedule core.RaiseSchedule
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewBidderPool creates a pool. stagger is the minimum spacing between any two
// calls, including calls within one round; zero disables spacing.
func NewBidderPool(bidder Bidder, schedule core.RaiseSchedule, stagger time.Duration, logger *zap.Logger) *BidderPool {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if stagger > 0 {
		limit = rate.Every(stagger)
	}
	return &BidderPool{
		bidder:   bidder,
		schedule: schedule,
		limiter:  rate.NewLimiter(limit, 1),
		logger:   logger,
	}
}

// Collect gathers this round's raises for the active lot. Passes are dropped
// and the result is ordered by party registration, whatever order the calls
// finished in. It only fails when ctx is cancelled.
func (p *BidderPool) Collect(ctx context.Context, league *core.League) ([]core.ProposedBid, error) {
	parties := league.Parties()
	leader := ""
	if league.Round.CurrentBid != nil {
		leader = league.Round.CurrentBid.Party
	}

	results := make([]core.ProposedBid, len(parties))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(len(parties))

	for i, party := range parties {
		if party.Name == leader {
			results[i] = core.Pass(party.Name)
			continue
		}
		bc, err := agents.BuildBidContext(league, party.Name, p.schedule)
		if err != nil {
			p.logger.Warn("cannot build bid context", zap.String("party", party.Name), zap.Error(err))
			results[i] = core.Pass(party.Name)
			continue
		}

		g.Go(func() error {
			if err := p.limiter.Wait(gctx); err != nil {
				return fmt.Errorf("waiting to ask %s: %w", bc.Party, err)
			}
			results[i] = p.bidder.Decide(gctx, bc)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raises := make([]core.ProposedBid, 0, len(results))
	for _, bid := range results {
		if bid.IsRaise {
			raises = append(raises, bid)
		}
	}
	p.logger.Debug("bids collected",
		zap.Int("asked", len(parties)-boolToInt(leader != "")),
		zap.Int("raises", len(raises)),
	)
	return raises, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
