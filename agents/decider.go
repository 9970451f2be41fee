package agents

import (
	"context"
	"errors"

	"github.com/cloudx-io/playerauction/core"
)

// ErrMalformedDecision is returned when a bidder's answer cannot be turned into
// a well-formed proposal.
var ErrMalformedDecision = errors.New("malformed bid decision")

// Decider produces one party's proposal for the active lot.
type Decider interface {
	Decide(ctx context.Context, bc BidContext) (core.ProposedBid, error)
}

// DeciderFunc adapts a function to the Decider interface.
type DeciderFunc func(ctx context.Context, bc BidContext) (core.ProposedBid, error)

func (f DeciderFunc) Decide(ctx context.Context, bc BidContext) (core.ProposedBid, error) {
	return f(ctx, bc)
}
