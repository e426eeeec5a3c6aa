package scheduler

import (
	"fmt"
	"sort"

	"github.com/dmerida/courtplan/pkg/core/model"
	"github.com/dmerida/courtplan/pkg/mip"
)

// assignmentVars holds one binary decision variable per (match, slot) pair,
// keyed by match id and slot name. Owned by the orchestrator during model
// construction.
type assignmentVars map[string]map[string]*mip.Var

// lookup returns the variable for a (match, slot) pair. Asking for a pair
// that was never declared is a programming error and panics.
func (v assignmentVars) lookup(match *model.Match, slot *model.Slot) *mip.Var {
	variable := v[match.ID][slot.Name()]
	if variable == nil {
		panic(fmt.Sprintf("scheduler: no variable declared for match %s and slot %s", match.ID, slot.Name()))
	}
	return variable
}

// buildVariables declares one binary variable per (match, slot) pair across
// all matches of all groups and all slots, dummy slots included. Variables
// are named "<match id>-<court>-<time block>".
func buildVariables(t *model.Tournament, groups []*model.Group, m *mip.Model) assignmentVars {
	vars := make(assignmentVars)
	for _, group := range groups {
		for _, match := range group.Matches {
			bySlot := make(map[string]*mip.Var, len(t.Slots))
			for _, slot := range t.Slots {
				bySlot[slot.Name()] = m.Binary(match.ID + "-" + slot.Name())
			}
			vars[match.ID] = bySlot
		}
	}
	return vars
}

// buildConstraints declares every hard scheduling rule on the model.
func buildConstraints(t *model.Tournament, groups []*model.Group, vars assignmentVars, m *mip.Model) {
	// Each match must be scheduled exactly once.
	for _, group := range groups {
		for _, match := range group.Matches {
			expr := mip.NewExpr()
			for _, slot := range t.Slots {
				expr.AddTerm(vars.lookup(match, slot), 1)
			}
			m.AddConstraint("match-"+match.ID, expr, mip.Equal, 1)
		}
	}

	// At most one match can be scheduled in each slot.
	for _, slot := range t.Slots {
		expr := mip.NewExpr()
		for _, group := range groups {
			for _, match := range group.Matches {
				expr.AddTerm(vars.lookup(match, slot), 1)
			}
		}
		m.AddConstraint("slot-"+slot.Name(), expr, mip.LessEqual, 1)
	}

	// Matches may only use the slots their division allows.
	for _, group := range groups {
		allowed := make(map[string]bool)
		for _, timeBlockID := range t.DivisionAvailability[group.Division] {
			allowed[timeBlockID] = true
		}
		for _, match := range group.Matches {
			for _, slot := range t.Slots {
				if allowed[slot.TimeBlockID] {
					continue
				}
				expr := mip.NewExpr().AddTerm(vars.lookup(match, slot), 1)
				m.AddConstraint(fmt.Sprintf("availability-%s-%s", match.ID, slot.Name()), expr, mip.Equal, 0)
			}
		}
	}

	// Each player can only play one match at a time, across all courts.
	for _, group := range groups {
		for _, player := range group.Players {
			matches := group.MatchesByPlayer[player.ID]
			for _, timeBlockID := range sortedTimeBlocks(t) {
				expr := mip.NewExpr()
				for _, match := range matches {
					for _, slot := range t.SlotsByTimeBlock[timeBlockID] {
						expr.AddTerm(vars.lookup(match, slot), 1)
					}
				}
				m.AddConstraint(fmt.Sprintf("player-%s-%s", player.ID, timeBlockID), expr, mip.LessEqual, 1)
			}
		}
	}

	// Players with declared time block demands cannot be booked outside
	// of them.
	for _, group := range groups {
		for _, player := range group.Players {
			demands, hasDemands := t.DemandsByPlayer[player.ID]
			if !hasDemands {
				continue
			}
			demanded := make(map[string]bool, len(demands))
			for _, timeBlockID := range demands {
				demanded[timeBlockID] = true
			}

			for _, slot := range t.Slots {
				if demanded[slot.TimeBlockID] {
					continue
				}
				for _, match := range group.MatchesByPlayer[player.ID] {
					expr := mip.NewExpr().AddTerm(vars.lookup(match, slot), 1)
					m.AddConstraint(fmt.Sprintf("demand-%s-%s-%s", match.ID, slot.Name(), player.ID), expr, mip.Equal, 0)
				}
			}
		}
	}

	buildTripleBackToBackConstraints(t, groups, vars, m)
}

// buildTripleBackToBackConstraints forbids booking a player in three
// chronologically consecutive time blocks. For every such triple, a binary
// indicator per block tracks whether the player has at least one match in
// that block, linked with big-M inequalities (ind <= sum, M*ind >= sum),
// and the three indicators may sum to at most 2. Indicators are shared
// between overlapping triples.
func buildTripleBackToBackConstraints(t *model.Tournament, groups []*model.Group, vars assignmentVars, m *mip.Model) {
	timeBlocks := sortedTimeBlocks(t)

	for _, group := range groups {
		for _, player := range group.Players {
			matches := group.MatchesByPlayer[player.ID]
			indicators := make(map[string]*mip.Var)

			for i := 0; i+2 < len(timeBlocks); i++ {
				block1, block2, block3 := timeBlocks[i], timeBlocks[i+1], timeBlocks[i+2]
				if t.TimeBlockRanking[block2]-t.TimeBlockRanking[block1] != 1 ||
					t.TimeBlockRanking[block3]-t.TimeBlockRanking[block2] != 1 {
					continue
				}

				expr := mip.NewExpr()
				for _, timeBlockID := range []string{block1, block2, block3} {
					expr.AddTerm(blockIndicator(t, player, matches, timeBlockID, indicators, vars, m), 1)
				}
				m.AddConstraint(fmt.Sprintf("back-to-back-%s-%s", player.ID, block1), expr, mip.LessEqual, 2)
			}
		}
	}
}

// blockIndicator returns the indicator variable that is 1 iff the player has
// at least one match scheduled in the given time block, declaring it and its
// linking constraints on first use.
func blockIndicator(
	t *model.Tournament,
	player *model.Player,
	matches []*model.Match,
	timeBlockID string,
	indicators map[string]*mip.Var,
	vars assignmentVars,
	m *mip.Model,
) *mip.Var {
	if indicator, ok := indicators[timeBlockID]; ok {
		return indicator
	}

	blockSlots := t.SlotsByTimeBlock[timeBlockID]
	indicator := m.Binary(fmt.Sprintf("booked-%s-%s", player.ID, timeBlockID))
	indicators[timeBlockID] = indicator

	// indicator <= sum of the player's assignment variables in the block.
	lower := mip.NewExpr().AddTerm(indicator, 1)
	// M*indicator >= the same sum; M strictly exceeds any feasible sum.
	bigM := float64(len(matches)*len(blockSlots)) + 1
	upper := mip.NewExpr().AddTerm(indicator, bigM)

	for _, match := range matches {
		for _, slot := range blockSlots {
			variable := vars.lookup(match, slot)
			lower.AddTerm(variable, -1)
			upper.AddTerm(variable, -1)
		}
	}

	m.AddConstraint(fmt.Sprintf("booked-lb-%s-%s", player.ID, timeBlockID), lower, mip.LessEqual, 0)
	m.AddConstraint(fmt.Sprintf("booked-ub-%s-%s", player.ID, timeBlockID), upper, mip.GreaterEqual, 0)

	return indicator
}

// sortedTimeBlocks returns all time block ids ordered by their ranking key,
// with the id as tiebreaker.
func sortedTimeBlocks(t *model.Tournament) []string {
	timeBlocks := make([]string, 0, len(t.SlotsByTimeBlock))
	for timeBlockID := range t.SlotsByTimeBlock {
		timeBlocks = append(timeBlocks, timeBlockID)
	}
	sort.Slice(timeBlocks, func(i, j int) bool {
		ri, rj := t.TimeBlockRanking[timeBlocks[i]], t.TimeBlockRanking[timeBlocks[j]]
		if ri != rj {
			return ri < rj
		}
		return timeBlocks[i] < timeBlocks[j]
	})
	return timeBlocks
}
