// Package solver implements a small mixed integer linear solver used by the
// schedule optimizer. Models are built through the Model API (bounded
// variables, <= and == linear constraints, a maximize objective) and solved
// by depth-first branch and bound over simplex LP relaxations. The Solver
// interface keeps the engine replaceable.
package solver
