package scheduler

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/dmerida/courtplan/pkg/core/model"
)

// BuildGroups partitions each division's players into seeded round-robin
// groups of at most groupSize members and generates every match inside them.
//
// For each division, players are sorted ascending by ranking (best first).
// With numGroups = ceil(players / groupSize), the numGroups best-ranked
// players are marked as seeds and anchor one group each. The remaining
// players are shuffled with the injected random source and dealt round-robin
// across the groups, keeping group sizes within one member of each other.
//
// Divisions are processed in sorted order, so the same seed always produces
// the same groups and match ids.
func BuildGroups(t *model.Tournament, groupSize int, rng *rand.Rand) []*model.Group {
	divisions := make([]string, 0, len(t.PlayersByDivision))
	for division := range t.PlayersByDivision {
		divisions = append(divisions, division)
	}
	sort.Strings(divisions)

	groups := make([]*model.Group, 0)
	for _, division := range divisions {
		players := make([]*model.Player, len(t.PlayersByDivision[division]))
		copy(players, t.PlayersByDivision[division])
		sort.SliceStable(players, func(i, j int) bool {
			return players[i].Ranking < players[j].Ranking
		})

		numGroups := (len(players) + groupSize - 1) / groupSize

		divisionGroups := make([]*model.Group, numGroups)
		for i := 0; i < numGroups; i++ {
			seeded := players[i]
			seeded.Seed = true
			divisionGroups[i] = &model.Group{
				ID:       fmt.Sprintf("%s-%d", division, i+1),
				Division: division,
				Players:  []*model.Player{seeded},
			}
		}

		unseeded := make([]*model.Player, len(players)-numGroups)
		copy(unseeded, players[numGroups:])
		rng.Shuffle(len(unseeded), func(i, j int) {
			unseeded[i], unseeded[j] = unseeded[j], unseeded[i]
		})

		groupIndex := 0
		for _, player := range unseeded {
			group := divisionGroups[groupIndex]
			group.Players = append(group.Players, player)
			groupIndex = (groupIndex + 1) % numGroups
		}

		groups = append(groups, divisionGroups...)
	}

	for _, group := range groups {
		GenerateMatches(group)
	}

	return groups
}
