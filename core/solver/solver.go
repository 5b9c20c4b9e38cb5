package solver

import (
	"context"
	"time"
)

// Status describes the outcome of a solve.
type Status int

const (
	// StatusUnknown means the search stopped before finding any integral solution.
	StatusUnknown Status = iota
	// StatusOptimal means the search space was exhausted and the incumbent is optimal.
	StatusOptimal
	// StatusFeasible means the budget ran out but an integral incumbent exists.
	StatusFeasible
	// StatusInfeasible means the search space was exhausted without any integral solution.
	StatusInfeasible
)

func (s Status) String() string {
	switch s {
	case StatusOptimal:
		return "optimal"
	case StatusFeasible:
		return "feasible"
	case StatusInfeasible:
		return "infeasible"
	default:
		return "unknown"
	}
}

// Succeeded reports whether the solve produced a usable assignment.
func (s Status) Succeeded() bool { return s == StatusOptimal || s == StatusFeasible }

// VarID identifies a variable within a Model.
type VarID int

// Term is one coefficient of a linear expression.
type Term struct {
	Var  VarID
	Coef float64
}

type constraint struct {
	terms []Term
	rhs   float64
}

// Model is a mixed integer linear program in maximization form. Variables are
// bounded, constraints are linear inequalities (<=) and equalities, and the
// objective is a linear expression plus a constant offset.
type Model struct {
	lo, hi  []float64
	integer []bool
	names   []string
	obj     []float64
	offset  float64
	ineqs   []constraint
	eqs     []constraint
}

// NewModel returns an empty model.
func NewModel() *Model { return &Model{} }

// AddBool adds a binary variable.
func (m *Model) AddBool(name string) VarID {
	return m.AddVar(0, 1, true, name)
}

// AddVar adds a bounded variable. Integer variables take part in branching.
func (m *Model) AddVar(lo, hi float64, integer bool, name string) VarID {
	id := VarID(len(m.lo))
	m.lo = append(m.lo, lo)
	m.hi = append(m.hi, hi)
	m.integer = append(m.integer, integer)
	m.names = append(m.names, name)
	m.obj = append(m.obj, 0)
	return id
}

// AddLe adds the constraint sum(terms) <= rhs.
func (m *Model) AddLe(terms []Term, rhs float64) {
	m.ineqs = append(m.ineqs, constraint{terms: terms, rhs: rhs})
}

// AddEq adds the constraint sum(terms) == rhs.
func (m *Model) AddEq(terms []Term, rhs float64) {
	m.eqs = append(m.eqs, constraint{terms: terms, rhs: rhs})
}

// AddObjective accumulates coef onto the maximize coefficient of v.
func (m *Model) AddObjective(v VarID, coef float64) {
	m.obj[v] += coef
}

// AddOffset adds a constant to the objective value.
func (m *Model) AddOffset(c float64) { m.offset += c }

// Offset returns the constant part of the objective.
func (m *Model) Offset() float64 { return m.offset }

// NumVars returns the number of variables in the model.
func (m *Model) NumVars() int { return len(m.lo) }

// Name returns the label given to v when it was added.
func (m *Model) Name(v VarID) string { return m.names[v] }

// DefaultMaxNodes bounds the branch and bound tree when Options.MaxNodes is zero.
const DefaultMaxNodes = 20000

// Options bound the search effort.
type Options struct {
	// TimeLimit stops the search after the given wall time. Zero means no limit.
	TimeLimit time.Duration
	// MaxNodes stops the search after visiting this many tree nodes.
	MaxNodes int
	// Tolerance is the integrality tolerance. Zero means 1e-6.
	Tolerance float64
}

// Solution is the result of a solve. Values holds one entry per model
// variable; it is nil unless Status.Succeeded().
type Solution struct {
	Status    Status
	Objective float64
	Values    []float64
	Nodes     int
}

// Solver finds an integral maximizer of a Model. Implementations must be
// deterministic: the same model and options yield the same solution.
type Solver interface {
	Solve(ctx context.Context, m *Model, opts Options) (Solution, error)
}
