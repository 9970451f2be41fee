package agents

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/cloudx-io/playerauction/core"
	"github.com/cloudx-io/playerauction/llm"
)

const (
	playingXI         = 11
	nameMatchCutoff   = 0.8
	squadSystemPrompt = `You are the head coach of a franchise T20 cricket team. Pick the Playing XI from the squad you are given and assign roles.

Respond ONLY with a single JSON object:
- "captain": name of the captain
- "wicket_keeper": name of the wicket keeper
- "batting_order": names of the Playing XI in batting order, openers first
- "powerplay_bowlers": names of bowlers for overs 1-6
- "middle_overs_bowlers": names of bowlers for overs 7-15
- "death_overs_bowlers": names of bowlers for overs 16-20
- "players_not_in_playing_xi": every other squad member

Use the names exactly as written in the squad list.`
)

// lineup is the JSON shape the squad model answers with.
type lineup struct {
	Captain            string   `json:"captain"`
	WicketKeeper       string   `json:"wicket_keeper"`
	BattingOrder       []string `json:"batting_order"`
	PowerplayBowlers   []string `json:"powerplay_bowlers"`
	MiddleOversBowlers []string `json:"middle_overs_bowlers"`
	DeathOversBowlers  []string `json:"death_overs_bowlers"`
	NotInPlayingXI     []string `json:"players_not_in_playing_xi"`
}

// SquadManager turns a party's won lots into a role-assigned roster.
type SquadManager struct {
	client    llm.Completer
	maxTokens int64
	logger    *zap.Logger
}

// NewSquadManager creates a squad manager backed by client.
func NewSquadManager(client llm.Completer, maxTokens int64, logger *zap.Logger) *SquadManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SquadManager{client: client, maxTokens: maxTokens, logger: logger}
}

// Assign asks the model for a lineup over lots and resolves every name
// against them. Names that match no lot are dropped; lots left unplaced are
// benched when the roster is applied to the party's holdings.
func (m *SquadManager) Assign(ctx context.Context, party string, lots []*core.Lot) (*core.Roster, error) {
	if len(lots) == 0 {
		return nil, fmt.Errorf("party %q holds no lots", party)
	}

	response, err := m.client.Complete(ctx, llm.Request{
		System:    squadSystemPrompt,
		Prompt:    buildSquadPrompt(party, lots),
		MaxTokens: m.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("squad assignment for %s: %w", party, err)
	}

	var l lineup
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("squad assignment for %s: no JSON object found in response", party)
	}
	if err := json.Unmarshal([]byte(response[start:end+1]), &l); err != nil {
		return nil, fmt.Errorf("squad assignment for %s: %w", party, err)
	}

	resolver := newNameResolver(lots)
	resolve := func(name string) *core.Lot {
		lot := resolver.resolve(name)
		if lot == nil && strings.TrimSpace(name) != "" {
			m.logger.Warn("unknown player in lineup", zap.String("party", party), zap.String("name", name))
		}
		return lot
	}
	resolveAll := func(names []string) []*core.Lot {
		out := make([]*core.Lot, 0, len(names))
		for _, n := range names {
			if lot := resolve(n); lot != nil {
				out = append(out, lot)
			}
		}
		return out
	}

	roster := &core.Roster{
		Captain:            resolve(l.Captain),
		WicketKeeper:       resolve(l.WicketKeeper),
		BattingOrder:       resolveAll(l.BattingOrder),
		PowerplayBowlers:   resolveAll(l.PowerplayBowlers),
		MiddleOversBowlers: resolveAll(l.MiddleOversBowlers),
		DeathOversBowlers:  resolveAll(l.DeathOversBowlers),
		Bench:              resolveAll(l.NotInPlayingXI),
	}
	if len(roster.BattingOrder) > playingXI {
		m.logger.Warn("batting order longer than the playing XI",
			zap.String("party", party),
			zap.Int("players", len(roster.BattingOrder)),
		)
	}
	return roster, nil
}

func buildSquadPrompt(party string, lots []*core.Lot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Team: %s\n\n", party)

	xi := min(playingXI, len(lots))
	fmt.Fprintf(&b, "Total players in squad: %d. You MUST select exactly %d unique players for the Playing XI. "+
		"Exactly %d players must be in players_not_in_playing_xi.\n\n", len(lots), xi, len(lots)-xi)

	b.WriteString("Squad details:\n")
	for _, l := range lots {
		fmt.Fprintf(&b, "- Name: %s, Role: %s, Price: %.2f Cr, Base Price: %.2f Cr", l.Name, l.Specialism, l.SoldPrice, l.ReservePrice)
		if l.Profile != "" {
			fmt.Fprintf(&b, ", Profile: %s", l.Profile)
		}
		if l.Rationale != "" {
			fmt.Fprintf(&b, ", Reason for purchase: %s", l.Rationale)
		}
		b.WriteString("\n")
	}
	b.WriteString("\nDo not change player name spellings; use the names listed above.")
	return b.String()
}

// nameResolver matches model-written names to held lots: exact first, then
// whitespace and case normalized, then the closest name above the cutoff.
type nameResolver struct {
	exact      map[string]*core.Lot
	normalized map[string]*core.Lot
	lots       []*core.Lot
}

func newNameResolver(lots []*core.Lot) *nameResolver {
	r := &nameResolver{
		exact:      make(map[string]*core.Lot, len(lots)),
		normalized: make(map[string]*core.Lot, len(lots)),
		lots:       lots,
	}
	for _, l := range lots {
		r.exact[l.Name] = l
		r.normalized[normalizeName(l.Name)] = l
	}
	return r
}

func (r *nameResolver) resolve(name string) *core.Lot {
	if lot, ok := r.exact[name]; ok {
		return lot
	}
	norm := normalizeName(name)
	if norm == "" {
		return nil
	}
	if lot, ok := r.normalized[norm]; ok {
		return lot
	}

	var best *core.Lot
	bestScore := 0.0
	for _, l := range r.lots {
		if score := similarity(norm, normalizeName(l.Name)); score > bestScore {
			best, bestScore = l, score
		}
	}
	if bestScore >= nameMatchCutoff {
		return best
	}
	return nil
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// similarity returns 1 - editDistance/maxLen over runes.
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1
	}
	return 1 - float64(editDistance(ra, rb))/float64(longest)
}

func editDistance(a, b []rune) int {
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
