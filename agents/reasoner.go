package agents

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/cloudx-io/playerauction/core"
	"github.com/cloudx-io/playerauction/llm"
)

const reasonerSystemPrompt = "You are a concise cricket auction analyst."

// RationaleContext describes a completed sale for the reasoner.
type RationaleContext struct {
	Lot                 core.Lot
	Party               string
	Price               float64
	Parties             []PartySummary
	RemainingCategories []string
	RemainingInCategory []string
}

// NewRationaleContext captures the league right after a sale.
func NewRationaleContext(league *core.League, sale core.Sale) RationaleContext {
	rc := RationaleContext{Party: sale.Party, Price: sale.Price}
	if sale.Lot != nil {
		rc.Lot = *sale.Lot
	}
	for _, p := range league.Parties() {
		rc.Parties = append(rc.Parties, summarize(p))
	}
	remaining := league.RemainingLots()
	for category, lots := range remaining {
		if category == league.Round.CurrentCategory {
			for _, l := range lots {
				rc.RemainingInCategory = append(rc.RemainingInCategory, l.Name)
			}
			continue
		}
		rc.RemainingCategories = append(rc.RemainingCategories, category)
	}
	sort.Strings(rc.RemainingCategories)
	return rc
}

// Explainer produces the one-sentence purchase rationale.
type Explainer interface {
	Explain(ctx context.Context, rc RationaleContext) (string, error)
}

// Reasoner explains purchases with a language model.
type Reasoner struct {
	client    llm.Completer
	maxTokens int64
}

// NewReasoner creates a reasoner backed by client.
func NewReasoner(client llm.Completer, maxTokens int64) *Reasoner {
	return &Reasoner{client: client, maxTokens: maxTokens}
}

// Explain returns the first sentence of the model's explanation.
func (r *Reasoner) Explain(ctx context.Context, rc RationaleContext) (string, error) {
	response, err := r.client.Complete(ctx, llm.Request{
		System:    reasonerSystemPrompt,
		Prompt:    buildReasonerPrompt(rc),
		MaxTokens: r.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("purchase rationale: %w", err)
	}
	sentence := FirstSentence(response)
	if sentence == "" {
		return "", fmt.Errorf("purchase rationale: %w", llm.ErrEmptyResponse)
	}
	return sentence, nil
}

// FallbackRationale is used whenever the reasoner cannot answer.
func FallbackRationale(party, lot string, price float64) string {
	return fmt.Sprintf("%s acquiring %s at %.2f is a strategic move due to squad balance and available budget.", party, lot, price)
}

func buildReasonerPrompt(rc RationaleContext) string {
	var b strings.Builder
	lot := rc.Lot

	b.WriteString("You are an expert IPL auction analyst.\n")
	fmt.Fprintf(&b, "Provide a concise single-paragraph (3-4 sentences) explanation why %s should purchase %s (%s) NOW at %.2f Cr given the context below.\n\n",
		rc.Party, lot.Name, lot.Specialism, rc.Price)

	b.WriteString("Context:\n")
	fmt.Fprintf(&b, "Player base price: %.2f\n", lot.ReservePrice)
	fmt.Fprintf(&b, "Player previous sold price: %.2f\n", lot.PreviousPrice)
	if lot.Profile != "" {
		fmt.Fprintf(&b, "Player profile: %s\n", lot.Profile)
	}
	if lot.Stats != "" {
		fmt.Fprintf(&b, "Player stats: %s\n", lot.Stats)
	}

	b.WriteString("\nTeams summary:\n")
	for _, p := range rc.Parties {
		fmt.Fprintf(&b, "%s: budget=%.2f, squad_size=%d\n", p.Name, p.Budget, p.SquadSize)
	}
	fmt.Fprintf(&b, "\nAvailable sets left: %s\n", strings.Join(rc.RemainingCategories, ", "))
	fmt.Fprintf(&b, "Available players in current set: %s\n\n", strings.Join(rc.RemainingInCategory, ", "))

	fmt.Fprintf(&b, "Instruction: include the player's specialty, how it fits %s's squad and strategy, "+
		"whether the price is fair value, and one short suggestion for how to use the player. "+
		"Keep the whole answer to one paragraph and DO NOT output additional paragraphs or metadata.", rc.Party)
	return b.String()
}

var (
	sentenceBreak = regexp.MustCompile(`[.!?]\s+`)
	sentenceEnd   = regexp.MustCompile(`[.!?]$`)
)

// FirstSentence trims quotes and whitespace from text and returns its first
// sentence, terminated with a period if it has no closing punctuation.
func FirstSentence(text string) string {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, `"'`)
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	first := text
	if loc := sentenceBreak.FindStringIndex(text); loc != nil {
		first = strings.TrimSpace(text[:loc[0]+1])
	}
	if !sentenceEnd.MatchString(first) {
		first += "."
	}
	return first
}
