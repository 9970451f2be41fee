package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/cloudx-io/playerauction/core"
	"github.com/cloudx-io/playerauction/llm"
)

func TestFirstSentence(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single sentence", "A sound buy.", "A sound buy."},
		{"keeps first of many", "A sound buy. He opens the batting! Great value?", "A sound buy."},
		{"strips quotes", `"Strong finisher at a fair price."`, "Strong finisher at a fair price."},
		{"adds period", "Strong finisher at a fair price", "Strong finisher at a fair price."},
		{"question ends sentence", "Why not? He is cheap.", "Why not?"},
		{"decimal is not a break", "Bought at 2.25 Cr for depth. Good.", "Bought at 2.25 Cr for depth."},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check.Equal(t, tt.want, FirstSentence(tt.in))
		})
	}
}

func TestFallbackRationale(t *testing.T) {
	check.Equal(t,
		"Chennai acquiring Test Player at 2.25 is a strategic move due to squad balance and available budget.",
		FallbackRationale("Chennai", "Test Player", 2.25))
}

func TestReasoner_Explain(t *testing.T) {
	client := &fakeCompleter{replies: []string{"A specialist opener at value. Use him in the powerplay."}}
	reasoner := NewReasoner(client, 128)

	rc := RationaleContext{
		Lot:                 core.Lot{Name: "Test Player", Specialism: "Batter", ReservePrice: 2},
		Party:               "Chennai",
		Price:               2.25,
		Parties:             []PartySummary{{Name: "Chennai", Budget: 17.75, SquadSize: 1}},
		RemainingCategories: []string{"SBwC"},
	}
	text, err := reasoner.Explain(context.Background(), rc)

	assert.NoError(t, err)
	check.Equal(t, "A specialist opener at value.", text)
	assert.Equal(t, 1, len(client.requests))
	check.True(t, strings.Contains(client.requests[0].Prompt, "why Chennai should purchase Test Player (Batter) NOW at 2.25 Cr"))
	check.True(t, strings.Contains(client.requests[0].Prompt, "Chennai: budget=17.75, squad_size=1"))
}

func TestReasoner_Errors(t *testing.T) {
	_, err := NewReasoner(&fakeCompleter{err: llm.ErrDisabled}, 0).Explain(context.Background(), RationaleContext{})
	check.True(t, errors.Is(err, llm.ErrDisabled))

	_, err = NewReasoner(&fakeCompleter{replies: []string{`""`}}, 0).Explain(context.Background(), RationaleContext{})
	check.True(t, errors.Is(err, llm.ErrEmptyResponse))
}
