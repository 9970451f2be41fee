package core

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultRoundLimit is the number of consecutive rounds without a new leading
// bid after which the active lot is finalized to its leader, or voided when
// nobody leads.
const DefaultRoundLimit = 3

// OutcomeKind classifies the result of one adjudicated round.
type OutcomeKind int

const (
	// OutcomePending means the lot stays open with the leader unchanged.
	OutcomePending OutcomeKind = iota
	// OutcomeLeading means a new leading bid was accepted.
	OutcomeLeading
	// OutcomeSold means the lot was transferred to the leader.
	OutcomeSold
	// OutcomeUnsold means the lot was voided and moved to the unsold pile.
	OutcomeUnsold
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomePending:
		return "pending"
	case OutcomeLeading:
		return "leading"
	case OutcomeSold:
		return "sold"
	case OutcomeUnsold:
		return "unsold"
	default:
		return "unknown"
	}
}

// RoundOutcome contains the complete result of adjudicating one round.
type RoundOutcome struct {
	Kind OutcomeKind

	// Phase is the lot's phase when adjudication finished, before any reset.
	Phase Phase

	Lot *Lot

	// Leader is the leading bid after the round (nil once the lot is closed
	// or while nobody has bid)
	Leader *CurrentBid

	// Sale is set when the lot was finalized this round
	Sale *Sale

	// Rejected lists every proposal that did not become the leading bid
	Rejected []RejectedBid

	RoundCounter int
}

// Adjudicator is the trade master: it validates a round's proposals, picks the
// leading bid and closes lots once the round limit is reached. It performs no
// I/O and never blocks.
type Adjudicator struct {
	schedule   RaiseSchedule
	roundLimit int
	logger     *zap.Logger
}

// NewAdjudicator creates an adjudicator. A non-positive roundLimit selects
// DefaultRoundLimit.
func NewAdjudicator(schedule RaiseSchedule, roundLimit int, logger *zap.Logger) *Adjudicator {
	if roundLimit <= 0 {
		roundLimit = DefaultRoundLimit
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Adjudicator{schedule: schedule, roundLimit: roundLimit, logger: logger}
}

// Schedule returns the raise schedule in force.
func (a *Adjudicator) Schedule() RaiseSchedule {
	return a.schedule
}

// RoundLimit returns the configured number of quiet rounds before closing a lot.
func (a *Adjudicator) RoundLimit() int {
	return a.roundLimit
}

// Adjudicate executes one round for the active lot: validation → budget
// enforcement → ranking → state transition.
//
// Parameters:
//   - league: state owning the active lot, the leader and party budgets
//   - bids: this round's proposals, in party registration order
//
// Processing flow:
//  1. No leader and no proposals: the lot is voided immediately
//  2. No proposals: the round is quiet (counter +1, close at the limit)
//  3. Resolve each proposal against the floor and drop unaffordable ones
//  4. Rank candidates; the best becomes the leader and the counter resets
//  5. No surviving candidate: the round is quiet
//
// Adjudicate panics with an InvariantError when no lot is active.
func (a *Adjudicator) Adjudicate(league *League, bids []ProposedBid) RoundOutcome {
	if league == nil {
		violate("adjudicate", "league is nil")
	}
	rs := &league.Round
	if rs.CurrentLot == nil || !rs.Active {
		violate("adjudicate", "no active lot")
	}
	lot := rs.CurrentLot
	rs.RoundsPlayed++

	a.logger.Debug("processing bids",
		zap.String("lot", lot.Name),
		zap.Int("round", rs.RoundCounter),
		zap.Int("bids_received", len(bids)),
		zap.Bool("has_leader", rs.CurrentBid != nil),
	)

	// Step 1: nobody ever bid and nobody is bidding
	if rs.CurrentBid == nil && len(bids) == 0 {
		return a.voidLot(league, RoundOutcome{Lot: lot})
	}

	// Step 2: quiet round
	if len(bids) == 0 {
		return a.quietRound(league, RoundOutcome{Lot: lot})
	}

	// Step 3: resolve candidates against the floor, then budgets
	floor := bidFloor{price: lot.ReservePrice}
	if rs.CurrentBid != nil {
		floor = bidFloor{price: rs.CurrentBid.Amount, hasLeader: true}
	}

	candidates := make([]Candidate, 0, len(bids))
	rejected := make([]RejectedBid, 0)
	for i, bid := range bids {
		amount, reason := floor.resolve(bid, a.schedule)
		if reason == "" && rs.CurrentBid != nil && bid.Party == rs.CurrentBid.Party {
			// the leader cannot raise against its own bid
			reason = ReasonAlreadyLeading
		}
		if reason != "" {
			rejected = append(rejected, RejectedBid{Party: bid.Party, Reason: reason})
			if reason != ReasonNotARaise {
				a.logger.Warn("proposal skipped",
					zap.String("lot", lot.Name),
					zap.String("party", bid.Party),
					zap.String("reason", reason),
				)
			}
			continue
		}
		candidates = append(candidates, Candidate{Bid: bid, Amount: amount, Order: i})
	}

	eligible, overBudget := EnforceBudgets(candidates, league.Budget)
	for _, r := range overBudget {
		a.logger.Debug("proposal excluded", zap.String("party", r.Party), zap.String("reason", r.Reason))
	}
	rejected = append(rejected, overBudget...)

	// Step 4: rank and accept the best candidate
	winner, rest, ok := SelectWinner(eligible)
	if !ok {
		// Step 5: nothing valid this round
		return a.quietRound(league, RoundOutcome{Lot: lot, Rejected: rejected})
	}
	for _, c := range rest {
		rejected = append(rejected, RejectedBid{Party: c.Bid.Party, Reason: ReasonOutbid})
	}

	leader := &CurrentBid{
		ID:        uuid.NewString(),
		Party:     winner.Bid.Party,
		Amount:    winner.Amount,
		NextRaise: a.schedule.MinimumRaise(winner.Amount),
		Custom:    winner.Custom(),
	}
	rs.CurrentBid = leader
	rs.BidHistory = append(rs.BidHistory, *leader)
	rs.RoundCounter = 0
	rs.Phase = BiddingInProgress

	a.logger.Info("bid accepted",
		zap.String("lot", lot.Name),
		zap.String("party", leader.Party),
		zap.Float64("amount", leader.Amount),
		zap.Bool("custom", leader.Custom),
		zap.Float64("next_raise", leader.NextRaise),
	)

	return RoundOutcome{
		Kind:         OutcomeLeading,
		Phase:        rs.Phase,
		Lot:          lot,
		Leader:       leader,
		Rejected:     rejected,
		RoundCounter: rs.RoundCounter,
	}
}

// quietRound advances the counter and closes the lot once the limit is reached.
func (a *Adjudicator) quietRound(league *League, outcome RoundOutcome) RoundOutcome {
	rs := &league.Round
	rs.RoundCounter++
	outcome.RoundCounter = rs.RoundCounter

	if rs.RoundCounter < a.roundLimit {
		outcome.Kind = OutcomePending
		outcome.Phase = rs.Phase
		outcome.Leader = rs.CurrentBid
		a.logger.Debug("no new leading bid",
			zap.String("lot", outcome.Lot.Name),
			zap.Int("round", rs.RoundCounter),
			zap.Int("limit", a.roundLimit),
		)
		return outcome
	}

	if rs.CurrentBid == nil {
		return a.voidLot(league, outcome)
	}
	return a.finalize(league, outcome)
}

func (a *Adjudicator) finalize(league *League, outcome RoundOutcome) RoundOutcome {
	rs := &league.Round
	rs.Phase = Finalizing
	leader := rs.CurrentBid

	sale := league.settle(rs.CurrentLot, leader.Party, leader.Amount)

	a.logger.Info("lot sold",
		zap.String("lot", sale.Lot.Name),
		zap.String("party", sale.Party),
		zap.Float64("price", sale.Price),
		zap.Int("rounds", sale.Rounds),
	)

	outcome.Kind = OutcomeSold
	outcome.Phase = Finalizing
	outcome.Sale = &sale
	league.resetRound()
	return outcome
}

func (a *Adjudicator) voidLot(league *League, outcome RoundOutcome) RoundOutcome {
	rs := &league.Round
	rs.Phase = Voided
	league.void(rs.CurrentLot)

	a.logger.Info("lot unsold",
		zap.String("lot", outcome.Lot.Name),
		zap.Int("rounds", rs.RoundsPlayed),
	)

	outcome.Kind = OutcomeUnsold
	outcome.Phase = Voided
	outcome.Leader = nil
	league.resetRound()
	return outcome
}
