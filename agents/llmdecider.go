package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudx-io/playerauction/core"
	"github.com/cloudx-io/playerauction/llm"
)

const bidderSystemPrompt = `You are the auction strategist for a franchise cricket team bidding in a live player auction. Prices are in crores.

Each round you either pass or raise on the player under the hammer:
- a normal raise adds the scheduled minimum increment to the current price (before the first bid it opens at the base price)
- a custom raise adds an amount of your choosing that must be at least the minimum increment

Never commit more than your remaining budget. Respond ONLY with a single JSON object:
- "is_raise": true to raise, false to pass
- "is_normal": true for a normal raise, false for a custom raise (omit when passing)
- "raised_amount": the custom increment in crores (only when is_normal is false)
- "reason": one sentence explaining the decision`

// decision is the JSON shape a bidder model answers with.
type decision struct {
	IsRaise      bool     `json:"is_raise"`
	IsNormal     *bool    `json:"is_normal"`
	RaisedAmount *float64 `json:"raised_amount"`
	Reason       string   `json:"reason"`
}

// LLMDecider asks a language model for each bid decision.
type LLMDecider struct {
	client    llm.Completer
	maxTokens int64
}

// NewLLMDecider creates a decider backed by client.
func NewLLMDecider(client llm.Completer, maxTokens int64) *LLMDecider {
	return &LLMDecider{client: client, maxTokens: maxTokens}
}

func (d *LLMDecider) Decide(ctx context.Context, bc BidContext) (core.ProposedBid, error) {
	response, err := d.client.Complete(ctx, llm.Request{
		System:    bidderSystemPrompt,
		Prompt:    buildBidderPrompt(bc),
		MaxTokens: d.maxTokens,
	})
	if err != nil {
		return core.ProposedBid{}, fmt.Errorf("bid decision: %w", err)
	}
	return parseDecision(bc.Party, response)
}

func buildBidderPrompt(bc BidContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are bidding for %s. Remaining budget: %.2f Cr.\n", bc.Party, bc.Budget)
	if len(bc.Holdings) > 0 {
		fmt.Fprintf(&b, "Your squad so far (%d): %s\n", len(bc.Holdings), strings.Join(bc.Holdings, "; "))
	} else {
		b.WriteString("Your squad is empty.\n")
	}
	b.WriteString("\n")

	lot := bc.Lot
	fmt.Fprintf(&b, "Player under the hammer: %s (%s), set %s.\n", lot.Name, lot.Specialism, lot.Category)
	fmt.Fprintf(&b, "Base price: %.2f Cr. Previous sold price: %.2f Cr.\n", lot.ReservePrice, lot.PreviousPrice)
	if lot.Profile != "" {
		fmt.Fprintf(&b, "Profile: %s\n", lot.Profile)
	}
	if lot.Stats != "" {
		fmt.Fprintf(&b, "Stats:\n%s\n", lot.Stats)
	}
	b.WriteString("\n")

	if bc.HasLeader {
		fmt.Fprintf(&b, "Current bid: %.2f Cr by %s. Minimum increment: %.2f Cr (a normal raise makes it %.2f Cr).\n",
			bc.CurrentPrice, bc.Leader, bc.MinimumRaise, bc.NormalRaisePrice())
	} else {
		fmt.Fprintf(&b, "No bids yet. A normal raise opens at %.2f Cr; a custom raise must add at least %.2f Cr.\n",
			bc.CurrentPrice, bc.MinimumRaise)
	}
	fmt.Fprintf(&b, "Rounds without a new bid: %d.\n\n", bc.Round)

	if len(bc.Rivals) > 0 {
		b.WriteString("Rival teams:\n")
		for _, r := range bc.Rivals {
			fmt.Fprintf(&b, "- %s: budget %.2f Cr, squad %d (%s)\n", r.Name, r.Budget, r.SquadSize, formatSpecialisms(r.Specialisms))
		}
		b.WriteString("\n")
	}

	if len(bc.RemainingInCategory) > 0 {
		fmt.Fprintf(&b, "Still to come in this set: %s\n", strings.Join(bc.RemainingInCategory, ", "))
	}
	if len(bc.RemainingCategories) > 0 {
		fmt.Fprintf(&b, "Sets still to come: %s\n", strings.Join(bc.RemainingCategories, ", "))
	}

	b.WriteString("\nDo you raise? Respond with a single JSON object.")
	return b.String()
}

// parseDecision extracts the first JSON object from a model reply and checks
// it describes a well-formed proposal.
func parseDecision(party, response string) (core.ProposedBid, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end <= start {
		return core.ProposedBid{}, fmt.Errorf("%w: no JSON object found in response", ErrMalformedDecision)
	}

	var d decision
	if err := json.Unmarshal([]byte(response[start:end+1]), &d); err != nil {
		return core.ProposedBid{}, fmt.Errorf("%w: %v", ErrMalformedDecision, err)
	}

	var bid core.ProposedBid
	switch {
	case !d.IsRaise:
		bid = core.Pass(party)
	case d.IsNormal == nil:
		return core.ProposedBid{}, fmt.Errorf("%w: is_normal must be set when is_raise is true", ErrMalformedDecision)
	case *d.IsNormal:
		if d.RaisedAmount != nil {
			return core.ProposedBid{}, fmt.Errorf("%w: raised_amount must be empty for a normal raise", ErrMalformedDecision)
		}
		bid = core.NormalRaise(party)
	default:
		if d.RaisedAmount == nil {
			return core.ProposedBid{}, fmt.Errorf("%w: raised_amount is required for a custom raise", ErrMalformedDecision)
		}
		bid = core.CustomRaise(party, *d.RaisedAmount)
	}
	bid.Rationale = strings.TrimSpace(d.Reason)

	if err := bid.Validate(); err != nil {
		return core.ProposedBid{}, fmt.Errorf("%w: %v", ErrMalformedDecision, err)
	}
	return bid, nil
}
