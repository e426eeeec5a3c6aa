// Package mip provides a small binary integer programming layer: a model of
// named binary variables, linear constraints and a single linear objective,
// plus a branch-and-bound solver.
package mip

import "fmt"

// Sense is the comparison operator of a linear constraint.
type Sense int

const (
	Equal Sense = iota
	LessEqual
	GreaterEqual
)

func (s Sense) String() string {
	switch s {
	case Equal:
		return "="
	case LessEqual:
		return "<="
	case GreaterEqual:
		return ">="
	}
	return "?"
}

// Var is a binary decision variable belonging to a Model.
type Var struct {
	index int
	name  string
}

// Name returns the variable's declared name.
func (v *Var) Name() string {
	return v.name
}

// Term is one coefficient-variable product in a linear expression.
type Term struct {
	Var  *Var
	Coef float64
}

// Expr is a linear expression: a sum of terms plus a constant.
type Expr struct {
	terms    []Term
	constant float64
}

// NewExpr returns an empty linear expression.
func NewExpr() *Expr {
	return &Expr{}
}

// AddTerm appends coef*v to the expression. The same variable may be added
// multiple times; coefficients are merged when the model is solved.
func (e *Expr) AddTerm(v *Var, coef float64) *Expr {
	e.terms = append(e.terms, Term{Var: v, Coef: coef})
	return e
}

// AddConstant adds a constant offset to the expression.
func (e *Expr) AddConstant(c float64) *Expr {
	e.constant += c
	return e
}

// constraint is a folded linear constraint: coefs ⋈ rhs over variable
// indices, with duplicate terms already merged and the expression constant
// moved onto the right-hand side.
type constraint struct {
	name  string
	terms []folded
	sense Sense
	rhs   float64
}

type folded struct {
	index int
	coef  float64
}

// Model collects binary variables, linear constraints and one maximized
// linear objective.
type Model struct {
	vars        []*Var
	constraints []*constraint

	objective []folded
	objConst  float64
	hasObj    bool
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{}
}

// Binary declares a new binary variable with the given name.
func (m *Model) Binary(name string) *Var {
	v := &Var{index: len(m.vars), name: name}
	m.vars = append(m.vars, v)
	return v
}

// AddConstraint declares the linear constraint expr ⋈ rhs under the given
// name. The expression's constant is folded into the right-hand side.
func (m *Model) AddConstraint(name string, expr *Expr, sense Sense, rhs float64) {
	m.constraints = append(m.constraints, &constraint{
		name:  name,
		terms: m.fold(expr.terms),
		sense: sense,
		rhs:   rhs - expr.constant,
	})
}

// Maximize sets the model's objective. Calling it again replaces the
// previous objective.
func (m *Model) Maximize(expr *Expr) {
	m.objective = m.fold(expr.terms)
	m.objConst = expr.constant
	m.hasObj = true
}

// NumVars returns the number of declared variables.
func (m *Model) NumVars() int {
	return len(m.vars)
}

// NumConstraints returns the number of declared constraints.
func (m *Model) NumConstraints() int {
	return len(m.constraints)
}

// fold merges duplicate variables in a term list into one coefficient per
// variable index, dropping zero coefficients.
func (m *Model) fold(terms []Term) []folded {
	coefs := make(map[int]float64, len(terms))
	order := make([]int, 0, len(terms))
	for _, t := range terms {
		if t.Var == nil {
			panic("mip: nil variable in expression")
		}
		if t.Var.index >= len(m.vars) || m.vars[t.Var.index] != t.Var {
			panic(fmt.Sprintf("mip: variable %q does not belong to this model", t.Var.name))
		}
		if _, seen := coefs[t.Var.index]; !seen {
			order = append(order, t.Var.index)
		}
		coefs[t.Var.index] += t.Coef
	}

	out := make([]folded, 0, len(order))
	for _, idx := range order {
		if coefs[idx] == 0 {
			continue
		}
		out = append(out, folded{index: idx, coef: coefs[idx]})
	}
	return out
}
