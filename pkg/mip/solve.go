package mip

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
)

// eps is the tolerance used when comparing bounds and objective values.
const eps = 1e-6

// Status is the termination status of a solve.
type Status int

const (
	// StatusOptimal means the search completed and the returned solution
	// is proven optimal.
	StatusOptimal Status = iota

	// StatusFeasible means the time limit was reached with an incumbent;
	// the returned solution is the best one found so far.
	StatusFeasible

	// StatusInfeasible means the search completed without finding any
	// feasible solution.
	StatusInfeasible

	// StatusNoSolution means the time limit was reached before any
	// feasible solution was found.
	StatusNoSolution
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible (time limit reached)"
	case StatusInfeasible:
		return "infeasible"
	case StatusNoSolution:
		return "no solution (time limit reached)"
	}
	return "unknown"
}

// Options configures a solve run. Threads governs the solver's internal
// parallel search only; the call itself is blocking.
type Options struct {
	// TimeLimit bounds the wall-clock search time. Zero means no limit.
	TimeLimit time.Duration

	// Threads is the number of concurrent search workers. Values below 1
	// are treated as 1.
	Threads int
}

// Solution holds the outcome of a solve. A non-optimal status with no
// incumbent reports zero for every variable.
type Solution struct {
	model     *Model
	status    Status
	values    []float64
	objective float64
}

// Status returns the termination status.
func (s *Solution) Status() Status {
	return s.status
}

// Objective returns the objective value of the incumbent, or 0 if no
// feasible solution was found.
func (s *Solution) Objective() float64 {
	return s.objective
}

// Value returns the solved value of v. Looking up a variable that does not
// belong to the solved model is a programming error and panics.
func (s *Solution) Value(v *Var) float64 {
	if v == nil || v.index >= len(s.model.vars) || s.model.vars[v.index] != v {
		panic(fmt.Sprintf("mip: variable %q was not declared on the solved model", varName(v)))
	}
	if s.values == nil {
		return 0
	}
	return s.values[v.index]
}

func varName(v *Var) string {
	if v == nil {
		return "<nil>"
	}
	return v.name
}

// Solve runs branch-and-bound to termination and returns the best solution
// found. Reaching the time limit (or context cancellation) is not an error:
// the incumbent, if any, is returned with a corresponding status.
func (m *Model) Solve(ctx context.Context, opts Options) (*Solution, error) {
	if !m.hasObj {
		return nil, fmt.Errorf("mip: no objective set")
	}

	threads := opts.Threads
	if threads < 1 {
		threads = 1
	}

	s := &bbSolver{
		model:    m,
		ctx:      ctx,
		objCoefs: make([]float64, len(m.vars)),
	}
	for _, t := range m.objective {
		s.objCoefs[t.index] = t.coef
	}
	if opts.TimeLimit > 0 {
		s.deadline = time.Now().Add(opts.TimeLimit)
		s.hasDeadline = true
	}

	s.run(threads)

	sol := &Solution{model: m}
	limitHit := s.limitHit.Load()
	switch {
	case s.inc.found && !limitHit:
		sol.status = StatusOptimal
	case s.inc.found:
		sol.status = StatusFeasible
	case limitHit:
		sol.status = StatusNoSolution
	default:
		sol.status = StatusInfeasible
	}
	if s.inc.found {
		sol.objective = s.inc.value
		sol.values = make([]float64, len(s.inc.values))
		for i, v := range s.inc.values {
			sol.values[i] = float64(v)
		}
	}
	return sol, nil
}

// incumbent is the best feasible assignment found so far, shared between
// search workers.
type incumbent struct {
	mu     sync.Mutex
	found  bool
	value  float64
	values []int8
}

func (inc *incumbent) best() (float64, bool) {
	inc.mu.Lock()
	defer inc.mu.Unlock()
	return inc.value, inc.found
}

func (inc *incumbent) update(value float64, fixed []int8) {
	inc.mu.Lock()
	defer inc.mu.Unlock()
	if inc.found && value <= inc.value+eps {
		return
	}
	inc.found = true
	inc.value = value
	inc.values = append(inc.values[:0], fixed...)
}

type bbSolver struct {
	model       *Model
	ctx         context.Context
	objCoefs    []float64
	deadline    time.Time
	hasDeadline bool
	inc         incumbent
	limitHit    atomic.Bool
}

// run splits the root of the search tree into 2^depth subtrees over the
// first variables and explores them with up to threads workers.
func (s *bbSolver) run(threads int) {
	n := len(s.model.vars)

	depth := 0
	for threads > 1<<depth && depth < n && depth < 8 {
		depth++
	}

	if depth == 0 {
		fixed := newFixed(n)
		counter := 0
		s.search(fixed, &counter)
		return
	}

	var g errgroup.Group
	g.SetLimit(threads)
	for mask := 0; mask < 1<<depth; mask++ {
		mask := mask
		g.Go(func() error {
			fixed := newFixed(n)
			for i := 0; i < depth; i++ {
				fixed[i] = int8(mask >> i & 1)
			}
			counter := 0
			s.search(fixed, &counter)
			return nil
		})
	}
	g.Wait()
}

func newFixed(n int) []int8 {
	fixed := make([]int8, n)
	for i := range fixed {
		fixed[i] = -1
	}
	return fixed
}

// shouldStop checks the deadline and context every few nodes. Once the
// limit is observed, every worker stops.
func (s *bbSolver) shouldStop(counter *int) bool {
	*counter++
	if *counter&63 == 0 {
		if s.hasDeadline && time.Now().After(s.deadline) {
			s.limitHit.Store(true)
		} else if s.ctx != nil && s.ctx.Err() != nil {
			s.limitHit.Store(true)
		}
	}
	return s.limitHit.Load()
}

func (s *bbSolver) search(fixed []int8, counter *int) {
	if s.shouldStop(counter) {
		return
	}
	if !s.propagate(fixed) {
		return
	}

	if best, found := s.inc.best(); found && s.upperBound(fixed) <= best+eps {
		return
	}

	branch := -1
	for i, v := range fixed {
		if v == -1 {
			branch = i
			break
		}
	}
	if branch == -1 {
		s.inc.update(s.evalObjective(fixed), fixed)
		return
	}

	// Try the objective-favored value first.
	first, second := int8(1), int8(0)
	if s.objCoefs[branch] < 0 {
		first, second = second, first
	}
	for _, value := range [2]int8{first, second} {
		child := make([]int8, len(fixed))
		copy(child, fixed)
		child[branch] = value
		s.search(child, counter)
	}
}

// propagate tightens fixed to a fixpoint using constraint interval bounds
// and unit propagation. Returns false when some constraint cannot be
// satisfied.
func (s *bbSolver) propagate(fixed []int8) bool {
	for {
		changed := false
		for _, c := range s.model.constraints {
			minL, maxL := 0.0, 0.0
			for _, t := range c.terms {
				switch fixed[t.index] {
				case 1:
					minL += t.coef
					maxL += t.coef
				case -1:
					if t.coef > 0 {
						maxL += t.coef
					} else {
						minL += t.coef
					}
				}
			}

			if (c.sense == LessEqual || c.sense == Equal) && minL > c.rhs+eps {
				return false
			}
			if (c.sense == GreaterEqual || c.sense == Equal) && maxL < c.rhs-eps {
				return false
			}

			for _, t := range c.terms {
				if fixed[t.index] != -1 {
					continue
				}

				force := int8(-1)
				if c.sense == LessEqual || c.sense == Equal {
					if t.coef > 0 && minL+t.coef > c.rhs+eps {
						force = 0
					} else if t.coef < 0 && minL-t.coef > c.rhs+eps {
						force = 1
					}
				}
				if force == -1 && (c.sense == GreaterEqual || c.sense == Equal) {
					if t.coef > 0 && maxL-t.coef < c.rhs-eps {
						force = 1
					} else if t.coef < 0 && maxL+t.coef < c.rhs-eps {
						force = 0
					}
				}
				if force == -1 {
					continue
				}

				fixed[t.index] = force
				changed = true

				// Update this constraint's bounds for the fixed value.
				if t.coef > 0 {
					maxL += t.coef*float64(force) - t.coef
					minL += t.coef * float64(force)
				} else {
					minL += t.coef*float64(force) - t.coef
					maxL += t.coef * float64(force)
				}
				if (c.sense == LessEqual || c.sense == Equal) && minL > c.rhs+eps {
					return false
				}
				if (c.sense == GreaterEqual || c.sense == Equal) && maxL < c.rhs-eps {
					return false
				}
			}
		}
		if !changed {
			return true
		}
	}
}

// upperBound is the optimistic objective value reachable from this node:
// fixed contributions plus every positive coefficient of an unfixed
// variable.
func (s *bbSolver) upperBound(fixed []int8) float64 {
	ub := s.model.objConst
	for _, t := range s.model.objective {
		switch fixed[t.index] {
		case 1:
			ub += t.coef
		case -1:
			if t.coef > 0 {
				ub += t.coef
			}
		}
	}
	return ub
}

func (s *bbSolver) evalObjective(fixed []int8) float64 {
	value := s.model.objConst
	for _, t := range s.model.objective {
		if fixed[t.index] == 1 {
			value += t.coef
		}
	}
	return value
}
