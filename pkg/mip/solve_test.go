package mip

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solve(t *testing.T, m *Model, opts Options) *Solution {
	t.Helper()
	solution, err := m.Solve(context.Background(), opts)
	require.NoError(t, err)
	return solution
}

func TestSolve_NoObjective(t *testing.T) {
	m := NewModel()
	m.Binary("x")

	_, err := m.Solve(context.Background(), Options{})
	assert.Error(t, err)
}

func TestSolve_SimpleOptimal(t *testing.T) {
	m := NewModel()
	x := m.Binary("x")
	y := m.Binary("y")

	m.AddConstraint("cap", NewExpr().AddTerm(x, 1).AddTerm(y, 1), LessEqual, 1)
	m.Maximize(NewExpr().AddTerm(x, 1).AddTerm(y, 2))

	solution := solve(t, m, Options{Threads: 1})

	assert.Equal(t, StatusOptimal, solution.Status())
	assert.InDelta(t, 2.0, solution.Objective(), 1e-9)
	assert.InDelta(t, 0.0, solution.Value(x), 1e-9)
	assert.InDelta(t, 1.0, solution.Value(y), 1e-9)
}

func TestSolve_EqualityPropagation(t *testing.T) {
	m := NewModel()
	x := m.Binary("x")
	y := m.Binary("y")
	z := m.Binary("z")

	// All three variables are forced to 1 despite the objective pulling
	// them toward 0.
	m.AddConstraint("all", NewExpr().AddTerm(x, 1).AddTerm(y, 1).AddTerm(z, 1), Equal, 3)
	m.Maximize(NewExpr().AddTerm(x, -1).AddTerm(y, -1).AddTerm(z, -1))

	solution := solve(t, m, Options{Threads: 1})

	assert.Equal(t, StatusOptimal, solution.Status())
	assert.InDelta(t, -3.0, solution.Objective(), 1e-9)
	assert.InDelta(t, 1.0, solution.Value(x), 1e-9)
	assert.InDelta(t, 1.0, solution.Value(y), 1e-9)
	assert.InDelta(t, 1.0, solution.Value(z), 1e-9)
}

func TestSolve_GreaterEqual(t *testing.T) {
	m := NewModel()
	x := m.Binary("x")
	y := m.Binary("y")

	m.AddConstraint("min", NewExpr().AddTerm(x, 1).AddTerm(y, 1), GreaterEqual, 1)
	m.Maximize(NewExpr().AddTerm(x, -1).AddTerm(y, -3))

	solution := solve(t, m, Options{Threads: 1})

	assert.Equal(t, StatusOptimal, solution.Status())
	assert.InDelta(t, -1.0, solution.Objective(), 1e-9)
	assert.InDelta(t, 1.0, solution.Value(x), 1e-9)
	assert.InDelta(t, 0.0, solution.Value(y), 1e-9)
}

func TestSolve_Infeasible(t *testing.T) {
	m := NewModel()
	x := m.Binary("x")

	m.AddConstraint("on", NewExpr().AddTerm(x, 1), Equal, 1)
	m.AddConstraint("off", NewExpr().AddTerm(x, 1), Equal, 0)
	m.Maximize(NewExpr().AddTerm(x, 1))

	solution := solve(t, m, Options{Threads: 1})

	assert.Equal(t, StatusInfeasible, solution.Status())
	assert.InDelta(t, 0.0, solution.Objective(), 1e-9)
	// Without an incumbent every variable reads as 0.
	assert.InDelta(t, 0.0, solution.Value(x), 1e-9)
}

func TestSolve_ObjectiveConstant(t *testing.T) {
	m := NewModel()
	x := m.Binary("x")

	m.Maximize(NewExpr().AddTerm(x, 2).AddConstant(5))

	solution := solve(t, m, Options{Threads: 1})

	assert.Equal(t, StatusOptimal, solution.Status())
	assert.InDelta(t, 7.0, solution.Objective(), 1e-9)
}

func TestSolve_DuplicateTermsMerge(t *testing.T) {
	m := NewModel()
	x := m.Binary("x")

	// 1x + 1x <= 1 folds to 2x <= 1, forcing x to 0.
	m.AddConstraint("dup", NewExpr().AddTerm(x, 1).AddTerm(x, 1), LessEqual, 1)
	m.Maximize(NewExpr().AddTerm(x, 10))

	solution := solve(t, m, Options{Threads: 1})

	assert.Equal(t, StatusOptimal, solution.Status())
	assert.InDelta(t, 0.0, solution.Value(x), 1e-9)
}

func TestSolve_ExpiredTimeLimitWithoutIncumbent(t *testing.T) {
	m := NewModel()
	obj := NewExpr()
	for i := 0; i < 200; i++ {
		obj.AddTerm(m.Binary("x"), 1)
	}
	m.Maximize(obj)

	// The deadline passes before the first leaf can be reached.
	solution := solve(t, m, Options{TimeLimit: time.Nanosecond, Threads: 1})

	assert.Equal(t, StatusNoSolution, solution.Status())
	assert.InDelta(t, 0.0, solution.Objective(), 1e-9)
}

func TestSolve_ParallelSearchMatchesSequential(t *testing.T) {
	build := func() (*Model, []*Var) {
		m := NewModel()
		vars := make([]*Var, 6)
		for i := range vars {
			vars[i] = m.Binary("x")
		}
		pick := NewExpr()
		for _, v := range vars {
			pick.AddTerm(v, 1)
		}
		m.AddConstraint("pick-two", pick, Equal, 2)

		obj := NewExpr()
		for i, v := range vars {
			obj.AddTerm(v, float64(i+1))
		}
		m.Maximize(obj)
		return m, vars
	}

	sequential, _ := build()
	parallel, _ := build()

	seqSol := solve(t, sequential, Options{Threads: 1})
	parSol := solve(t, parallel, Options{Threads: 4})

	assert.Equal(t, StatusOptimal, seqSol.Status())
	assert.Equal(t, StatusOptimal, parSol.Status())
	assert.InDelta(t, 11.0, seqSol.Objective(), 1e-9)
	assert.InDelta(t, seqSol.Objective(), parSol.Objective(), 1e-9)
}

func TestSolution_ValueForeignVariablePanics(t *testing.T) {
	m := NewModel()
	x := m.Binary("x")
	m.Maximize(NewExpr().AddTerm(x, 1))

	solution := solve(t, m, Options{Threads: 1})

	other := NewModel()
	foreign := other.Binary("y")

	assert.Panics(t, func() {
		solution.Value(foreign)
	})
}

func TestModel_Counts(t *testing.T) {
	m := NewModel()
	x := m.Binary("x")
	y := m.Binary("y")
	m.AddConstraint("c", NewExpr().AddTerm(x, 1).AddTerm(y, 1), LessEqual, 1)

	assert.Equal(t, 2, m.NumVars())
	assert.Equal(t, 1, m.NumConstraints())
}

func TestModel_ForeignVariableInConstraintPanics(t *testing.T) {
	m := NewModel()
	other := NewModel()
	foreign := other.Binary("y")

	assert.Panics(t, func() {
		m.AddConstraint("bad", NewExpr().AddTerm(foreign, 1), Equal, 1)
	})
}
