// Package scheduler builds and solves the tournament scheduling problem:
// seeded group construction, round-robin match generation, the binary
// assignment model with its hard constraints and objective, and extraction
// of the solved schedule.
package scheduler

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/dmerida/courtplan/pkg/core/model"
	"github.com/dmerida/courtplan/pkg/mip"
)

// Options configures a scheduling run.
type Options struct {
	// GroupSize is the maximum number of players per group.
	GroupSize int

	// TimeLimit bounds the solver's wall-clock runtime. On expiry the best
	// incumbent found so far is used.
	TimeLimit time.Duration

	// Threads is the solver's internal search parallelism.
	Threads int

	// DummyPenalty is the objective cost of placing a match on a dummy slot.
	DummyPenalty int

	// BackToBackPenalty is the objective cost per co-selected pair of
	// adjacent-block slots for the same player.
	BackToBackPenalty int
}

// Statistics summarizes one solve run.
type Statistics struct {
	RunID           string  `json:"run_id"`
	DurationSeconds float64 `json:"duration_seconds"`
	Objective       float64 `json:"objective"`
	Status          string  `json:"status"`
	Variables       int     `json:"variables"`
	Constraints     int     `json:"constraints"`
}

// Result is the outcome of a scheduling run: the groups that were formed,
// the solved assignments (empty when no feasible solution was found) and
// the run statistics.
type Result struct {
	Groups      []*model.Group
	Assignments []model.Assignment
	Statistics  Statistics
}

// Schedule runs the full pipeline: group players, generate matches, build
// the assignment model and objective, solve, and extract the schedule. The
// random source drives group balancing only; fixing its seed makes runs
// reproducible.
func Schedule(ctx context.Context, t *model.Tournament, opts Options, rng *rand.Rand, logger *zap.Logger) (*Result, error) {
	start := time.Now()

	logger.Info("Processing players", zap.Int("count", len(t.PlayersByID)))

	groups := BuildGroups(t, opts.GroupSize, rng)
	logger.Info("Created groups", zap.Int("count", len(groups)))

	totalMatches := 0
	for _, group := range groups {
		totalMatches += len(group.Matches)
	}
	logger.Info("Created matches", zap.Int("count", totalMatches))

	m := mip.NewModel()
	vars := buildVariables(t, groups, m)
	buildConstraints(t, groups, vars, m)
	m.Maximize(buildObjective(t, groups, vars, opts))

	logger.Info("Starting solver optimization",
		zap.Int("variables", m.NumVars()),
		zap.Int("constraints", m.NumConstraints()),
		zap.Duration("time_limit", opts.TimeLimit),
		zap.Int("threads", opts.Threads))

	solution, err := m.Solve(ctx, mip.Options{TimeLimit: opts.TimeLimit, Threads: opts.Threads})
	if err != nil {
		return nil, err
	}
	logger.Info("Finished solver optimization", zap.String("status", solution.Status().String()))

	assignments := extractAssignments(t, groups, vars, solution)
	logger.Info("Created assignments", zap.Int("count", len(assignments)))

	return &Result{
		Groups:      groups,
		Assignments: assignments,
		Statistics: Statistics{
			RunID:           uuid.New().String(),
			DurationSeconds: time.Since(start).Seconds(),
			Objective:       solution.Objective(),
			Status:          solution.Status().String(),
			Variables:       m.NumVars(),
			Constraints:     m.NumConstraints(),
		},
	}, nil
}
