package scheduler

import (
	"github.com/dmerida/courtplan/pkg/core/model"
	"github.com/dmerida/courtplan/pkg/mip"
)

// solvedThreshold tolerates floating-point solver output when reading a
// binary variable's value back.
const solvedThreshold = 0.9

// extractAssignments reads the solved variable values back into match to
// slot assignments. An infeasible or timed-out run without an incumbent
// yields an empty list; callers must combine it with the solver status to
// tell that apart from an optimal schedule with zero matches.
func extractAssignments(t *model.Tournament, groups []*model.Group, vars assignmentVars, solution *mip.Solution) []model.Assignment {
	assignments := make([]model.Assignment, 0)
	for _, group := range groups {
		for _, match := range group.Matches {
			for _, slot := range t.Slots {
				if solution.Value(vars.lookup(match, slot)) > solvedThreshold {
					assignments = append(assignments, model.Assignment{Match: match, Slot: slot})
				}
			}
		}
	}
	return assignments
}
