package solver

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize/convex/lp"
)

const (
	simplexTol       = 1e-7
	defaultTolerance = 1e-6
	pruneEps         = 1e-9
)

// BranchAndBound solves models by depth-first branch and bound over LP
// relaxations computed with gonum's simplex.
type BranchAndBound struct{}

// NewBranchAndBound returns a ready-to-use solver.
func NewBranchAndBound() *BranchAndBound { return &BranchAndBound{} }

type node struct {
	lo, hi []float64
}

// Solve runs the search until the tree is exhausted or the budget runs out.
func (bb *BranchAndBound) Solve(ctx context.Context, m *Model, opts Options) (Solution, error) {
	n := m.NumVars()
	if n == 0 {
		return Solution{Status: StatusOptimal, Objective: m.offset, Values: []float64{}}, nil
	}
	tol := opts.Tolerance
	if tol <= 0 {
		tol = defaultTolerance
	}
	maxNodes := opts.MaxNodes
	if maxNodes <= 0 {
		maxNodes = DefaultMaxNodes
	}
	var deadline time.Time
	if opts.TimeLimit > 0 {
		deadline = time.Now().Add(opts.TimeLimit)
	}

	rel := newRelaxation(m)
	root := node{lo: cloneFloats(m.lo), hi: cloneFloats(m.hi)}
	stack := []node{root}

	var best []float64
	bestObj := math.Inf(-1)
	nodes := 0
	truncated := false

	for len(stack) > 0 {
		if nodes >= maxNodes || ctx.Err() != nil ||
			(!deadline.IsZero() && time.Now().After(deadline)) {
			truncated = true
			break
		}
		nd := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		nodes++

		vals, obj, err := rel.solve(nd.lo, nd.hi)
		if err != nil {
			if errors.Is(err, lp.ErrInfeasible) {
				continue
			}
			if nodes == 1 {
				return Solution{Status: StatusUnknown, Nodes: nodes},
					fmt.Errorf("lp relaxation: %w", err)
			}
			// Numerical failure below the root abandons the subtree only.
			continue
		}
		if obj <= bestObj+pruneEps {
			continue
		}

		branch := -1
		maxDist := tol
		for i := 0; i < n; i++ {
			if !m.integer[i] {
				continue
			}
			dist := math.Abs(vals[i] - math.Round(vals[i]))
			if dist > maxDist {
				maxDist = dist
				branch = i
			}
		}
		if branch == -1 {
			best = roundIntegral(m, vals)
			bestObj = obj
			continue
		}

		down := node{lo: cloneFloats(nd.lo), hi: cloneFloats(nd.hi)}
		down.hi[branch] = math.Floor(vals[branch])
		up := node{lo: cloneFloats(nd.lo), hi: cloneFloats(nd.hi)}
		up.lo[branch] = math.Ceil(vals[branch])
		// LIFO: the up branch is explored first.
		stack = append(stack, down, up)
	}

	sol := Solution{Nodes: nodes}
	switch {
	case best != nil && !truncated:
		sol.Status = StatusOptimal
	case best != nil:
		sol.Status = StatusFeasible
	case truncated:
		sol.Status = StatusUnknown
	default:
		sol.Status = StatusInfeasible
	}
	if best != nil {
		sol.Values = best
		sol.Objective = bestObj + m.offset
	}
	return sol, nil
}

func roundIntegral(m *Model, vals []float64) []float64 {
	out := cloneFloats(vals)
	for i, isInt := range m.integer {
		if isInt {
			out[i] = math.Round(out[i])
		}
	}
	return out
}

func cloneFloats(in []float64) []float64 {
	out := make([]float64, len(in))
	copy(out, in)
	return out
}

// relaxation holds the standard-form LP shared by every tree node. The model
//
//	maximize obj'x  s.t.  Gx <= h, Ax = b, lo <= x <= hi
//
// becomes
//
//	minimize [c,-c,0]'y  s.t.  [G,-G,I]y = h, [A,-A,0]y = b, y >= 0
//
// with x = y[:n] - y[n:2n] and one slack per inequality. Variable bounds are
// explicit inequality rows so each node only rewrites the rhs vector.
type relaxation struct {
	n       int
	kStruct int
	kIneq   int
	rows    int
	cStd    []float64
	aStd    *mat.Dense
	hStruct []float64
	bEq     []float64
}

func newRelaxation(m *Model) *relaxation {
	n := m.NumVars()
	kStruct := len(m.ineqs)
	kIneq := kStruct + 2*n
	rows := kIneq + len(m.eqs)
	cols := 2*n + kIneq

	a := mat.NewDense(rows, cols, nil)
	hStruct := make([]float64, kStruct)
	for r, con := range m.ineqs {
		for _, t := range con.terms {
			j := int(t.Var)
			a.Set(r, j, a.At(r, j)+t.Coef)
			a.Set(r, n+j, a.At(r, n+j)-t.Coef)
		}
		a.Set(r, 2*n+r, 1)
		hStruct[r] = con.rhs
	}
	for i := 0; i < n; i++ {
		upper := kStruct + 2*i
		a.Set(upper, i, 1)
		a.Set(upper, n+i, -1)
		a.Set(upper, 2*n+upper, 1)
		lower := upper + 1
		a.Set(lower, i, -1)
		a.Set(lower, n+i, 1)
		a.Set(lower, 2*n+lower, 1)
	}
	bEq := make([]float64, len(m.eqs))
	for j, con := range m.eqs {
		r := kIneq + j
		for _, t := range con.terms {
			col := int(t.Var)
			a.Set(r, col, a.At(r, col)+t.Coef)
			a.Set(r, n+col, a.At(r, n+col)-t.Coef)
		}
		bEq[j] = con.rhs
	}

	c := make([]float64, cols)
	for i, coef := range m.obj {
		c[i] = -coef
		c[n+i] = coef
	}
	return &relaxation{
		n:       n,
		kStruct: kStruct,
		kIneq:   kIneq,
		rows:    rows,
		cStd:    c,
		aStd:    a,
		hStruct: hStruct,
		bEq:     bEq,
	}
}

// solve computes the LP relaxation under the given bounds and returns the
// variable values with the maximization objective.
func (r *relaxation) solve(lo, hi []float64) ([]float64, float64, error) {
	b := make([]float64, r.rows)
	copy(b, r.hStruct)
	for i := 0; i < r.n; i++ {
		b[r.kStruct+2*i] = hi[i]
		b[r.kStruct+2*i+1] = -lo[i]
	}
	copy(b[r.kIneq:], r.bEq)

	optF, y, err := lp.Simplex(r.cStd, r.aStd, b, simplexTol, nil)
	if err != nil {
		return nil, 0, err
	}
	x := make([]float64, r.n)
	for i := range x {
		x[i] = y[i] - y[r.n+i]
	}
	return x, -optF, nil
}
