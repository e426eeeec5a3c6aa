package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmerida/courtplan/pkg/core/model"
)

func TestGenerateMatches_PairsInStableOrder(t *testing.T) {
	players := testPlayers("Open", 4)
	group := &model.Group{ID: "Open-1", Division: "Open", Players: players}

	GenerateMatches(group)

	require.Len(t, group.Matches, 6)

	wantPairs := [][2]*model.Player{
		{players[0], players[1]},
		{players[0], players[2]},
		{players[0], players[3]},
		{players[1], players[2]},
		{players[1], players[3]},
		{players[2], players[3]},
	}
	for i, match := range group.Matches {
		assert.Equal(t, "Open-1-"+string(rune('1'+i)), match.ID)
		assert.Same(t, wantPairs[i][0], match.Player1)
		assert.Same(t, wantPairs[i][1], match.Player2)
		assert.Equal(t, "Open-1", match.GroupID)
		assert.Equal(t, "Open", match.Division)
	}
}

func TestGenerateMatches_PerPlayerIndex(t *testing.T) {
	players := testPlayers("Open", 4)
	group := &model.Group{ID: "Open-1", Division: "Open", Players: players}

	GenerateMatches(group)

	total := 0
	for _, player := range players {
		matches := group.MatchesByPlayer[player.ID]
		assert.Len(t, matches, 3)
		total += len(matches)
		for _, match := range matches {
			assert.True(t, match.Player1 == player || match.Player2 == player)
		}
	}
	// Every match is indexed exactly twice, once per participant.
	assert.Equal(t, 2*len(group.Matches), total)
}

func TestGenerateMatches_SingletonGroup(t *testing.T) {
	group := &model.Group{ID: "Open-1", Division: "Open", Players: testPlayers("Open", 1)}

	GenerateMatches(group)

	assert.Empty(t, group.Matches)
	assert.Empty(t, group.MatchesByPlayer[group.Players[0].ID])
}
