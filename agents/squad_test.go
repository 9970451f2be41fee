package agents

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
	"go.uber.org/zap/zaptest"

	"github.com/cloudx-io/playerauction/core"
	"github.com/cloudx-io/playerauction/llm"
)

func squadLots() []*core.Lot {
	return []*core.Lot{
		{Name: "Ruturaj Gaikwad", Specialism: "Batter"},
		{Name: "MS Dhoni", Specialism: "Wicketkeeper"},
		{Name: "Ravindra Jadeja", Specialism: "All-Rounder"},
		{Name: "Matheesha Pathirana", Specialism: "Bowler"},
	}
}

func TestSquadManager_Assign(t *testing.T) {
	lots := squadLots()
	reply := `Here is the lineup:
{
  "captain": "ruturaj  gaikwad",
  "wicket_keeper": "MS Dhoni",
  "batting_order": ["Ruturaj Gaikwad", "Ravindra Jadeja", "M.S. Dhoni", "Nobody Known"],
  "powerplay_bowlers": ["Matheesha Pathirana"],
  "middle_overs_bowlers": ["Ravindra Jadeja"],
  "death_overs_bowlers": ["Matheesha Pathirna"],
  "players_not_in_playing_xi": []
}`
	client := &fakeCompleter{replies: []string{reply}}
	manager := NewSquadManager(client, 0, zaptest.NewLogger(t))

	roster, err := manager.Assign(context.Background(), "Chennai", lots)
	assert.NoError(t, err)

	check.True(t, roster.Captain == lots[0])
	check.True(t, roster.WicketKeeper == lots[1])
	assert.Equal(t, 3, len(roster.BattingOrder))
	check.True(t, roster.BattingOrder[2] == lots[1])
	assert.Equal(t, 1, len(roster.DeathOversBowlers))
	check.True(t, roster.DeathOversBowlers[0] == lots[3])

	// The roster only names the lots it was given
	var empty core.Holdings
	check.Error(t, empty.AssignRoster(roster))

	check.True(t, strings.Contains(client.requests[0].Prompt, "Total players in squad: 4. You MUST select exactly 4 unique players"))
}

func TestSquadManager_Errors(t *testing.T) {
	manager := NewSquadManager(&fakeCompleter{replies: []string{"no lineup today"}}, 0, nil)
	_, err := manager.Assign(context.Background(), "Chennai", squadLots())
	check.Error(t, err)

	manager = NewSquadManager(&fakeCompleter{err: llm.ErrRateLimited}, 0, nil)
	_, err = manager.Assign(context.Background(), "Chennai", squadLots())
	check.True(t, errors.Is(err, llm.ErrRateLimited))

	_, err = manager.Assign(context.Background(), "Chennai", nil)
	check.Error(t, err)
}

func TestNameResolver(t *testing.T) {
	lots := squadLots()
	r := newNameResolver(lots)

	check.True(t, r.resolve("MS Dhoni") == lots[1])
	check.True(t, r.resolve("  ms   DHONI ") == lots[1])
	check.True(t, r.resolve("Ravindra Jadeja.") == lots[2])
	check.Nil(t, r.resolve("Virat Kohli"))
	check.Nil(t, r.resolve(""))
}
