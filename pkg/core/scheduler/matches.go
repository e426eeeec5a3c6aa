package scheduler

import (
	"fmt"

	"github.com/dmerida/courtplan/pkg/core/model"
)

// GenerateMatches expands a group into one match per unordered player pair,
// in stable order: each player is paired with every later player in group
// order. Match ids are "<group id>-<k>" starting at 1. A group of size k
// yields k(k-1)/2 matches; a group of size 1 yields none.
//
// The group's per-player index is rebuilt as well, mapping player id to the
// matches that player participates in.
func GenerateMatches(g *model.Group) {
	counter := 1
	g.Matches = make([]*model.Match, 0, len(g.Players)*(len(g.Players)-1)/2)
	g.MatchesByPlayer = make(map[string][]*model.Match, len(g.Players))

	for i, player1 := range g.Players {
		for _, player2 := range g.Players[i+1:] {
			match := &model.Match{
				ID:       fmt.Sprintf("%s-%d", g.ID, counter),
				Player1:  player1,
				Player2:  player2,
				GroupID:  g.ID,
				Division: g.Division,
			}
			g.Matches = append(g.Matches, match)
			counter++
			g.MatchesByPlayer[player1.ID] = append(g.MatchesByPlayer[player1.ID], match)
			g.MatchesByPlayer[player2.ID] = append(g.MatchesByPlayer[player2.ID], match)
		}
	}
}
