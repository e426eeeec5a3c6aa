package scheduler

import (
	"github.com/dmerida/courtplan/pkg/core/model"
	"github.com/dmerida/courtplan/pkg/mip"
)

// buildObjective assembles the maximized linear objective: preference reward
// minus dummy-slot and soft back-to-back penalties.
func buildObjective(t *model.Tournament, groups []*model.Group, vars assignmentVars, opts Options) *mip.Expr {
	objective := mip.NewExpr()

	// Players have a preference for certain time blocks.
	for _, slot := range t.Slots {
		for _, group := range groups {
			for _, match := range group.Matches {
				score := match.Player1.PreferenceFor(slot.TimeBlockID) +
					match.Player2.PreferenceFor(slot.TimeBlockID)
				if score == 0 {
					continue
				}
				objective.AddTerm(vars.lookup(match, slot), float64(score))
			}
		}
	}

	// Using dummy slots is not preferred.
	for _, slot := range t.Slots {
		if !slot.IsDummy {
			continue
		}
		for _, group := range groups {
			for _, match := range group.Matches {
				objective.AddTerm(vars.lookup(match, slot), -float64(opts.DummyPenalty))
			}
		}
	}

	// Scheduling back-to-back matches for the same player is discouraged.
	// The penalty runs over raw slot pairs whose block rankings differ by
	// exactly 1, cross-court pairs included: each co-selected pair costs
	// w*(v1 + v2 - 1), which is w only when both variables are 1.
	weight := float64(opts.BackToBackPenalty)
	for _, group := range groups {
		for _, player := range group.Players {
			for _, match := range group.MatchesByPlayer[player.ID] {
				for i := 0; i < len(t.Slots)-1; i++ {
					ranking1 := t.TimeBlockRanking[t.Slots[i].TimeBlockID]
					for j := i + 1; j < len(t.Slots); j++ {
						ranking2 := t.TimeBlockRanking[t.Slots[j].TimeBlockID]
						if ranking2-ranking1 != 1 && ranking1-ranking2 != 1 {
							continue
						}

						objective.AddTerm(vars.lookup(match, t.Slots[i]), -weight)
						objective.AddTerm(vars.lookup(match, t.Slots[j]), -weight)
						objective.AddConstant(weight)
					}
				}
			}
		}
	}

	return objective
}
