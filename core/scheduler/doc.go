// Package scheduler builds weekly maintenance schedules. It translates a
// work-order backlog and a crew registry into an integer program, hands it to
// a solver and reads the solution back as day-by-day crew assignments.
package scheduler
