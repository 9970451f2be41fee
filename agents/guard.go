package agents

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cloudx-io/playerauction/core"
)

const (
	DefaultDecisionTimeout = 45 * time.Second
	DefaultDecisionRetries = 2
)

// Guard wraps a Decider so that the auctioneer always receives a well-formed
// proposal. Each attempt runs under its own timeout; after the retries are
// spent, or on any panic, the party passes.
type Guard struct {
	decider Decider
	timeout time.Duration
	retries int
	logger  *zap.Logger
}

// NewGuard creates a guard. Non-positive timeout selects DefaultDecisionTimeout
// and negative retries select DefaultDecisionRetries.
func NewGuard(decider Decider, timeout time.Duration, retries int, logger *zap.Logger) *Guard {
	if timeout <= 0 {
		timeout = DefaultDecisionTimeout
	}
	if retries < 0 {
		retries = DefaultDecisionRetries
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{decider: decider, timeout: timeout, retries: retries, logger: logger}
}

// Decide never fails: any error degrades to a pass for bc.Party.
func (g *Guard) Decide(ctx context.Context, bc BidContext) core.ProposedBid {
	var lastErr error
	for attempt := 0; attempt <= g.retries; attempt++ {
		if ctx.Err() != nil {
			lastErr = ctx.Err()
			break
		}
		bid, err := g.attempt(ctx, bc)
		if err == nil {
			return bid
		}
		lastErr = err
		g.logger.Debug("bid decision attempt failed",
			zap.String("party", bc.Party),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}

	g.logger.Warn("bidder failed, passing",
		zap.String("party", bc.Party),
		zap.String("lot", bc.Lot.Name),
		zap.Error(lastErr),
	)
	return core.Pass(bc.Party)
}

func (g *Guard) attempt(ctx context.Context, bc BidContext) (bid core.ProposedBid, err error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decider panicked: %v", r)
		}
	}()

	bid, err = g.decider.Decide(ctx, bc)
	if err != nil {
		return core.ProposedBid{}, err
	}
	if bid.Party == "" {
		bid.Party = bc.Party
	}
	if bid.Party != bc.Party {
		return core.ProposedBid{}, fmt.Errorf("%w: decision for %q returned by %q", ErrMalformedDecision, bid.Party, bc.Party)
	}
	if err := bid.Validate(); err != nil {
		return core.ProposedBid{}, fmt.Errorf("%w: %v", ErrMalformedDecision, err)
	}
	return bid, nil
}
