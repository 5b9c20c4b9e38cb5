package scheduler

import (
	"context"
	"reflect"
	"testing"
	"time"

	"maintenance-scheduler/core/metrics"
	"maintenance-scheduler/core/model"
	"maintenance-scheduler/core/scheduler/history"
	"maintenance-scheduler/core/solver"
)

// monday is an arbitrary Monday used as horizon start in tests.
var monday = model.NewDate(2025, time.March, 3)

func weekdayCrew(trade string, shiftHours, techs int) model.Crew {
	return model.Crew{
		Trade:              trade,
		ShiftDurationHours: shiftHours,
		TechniciansPerCrew: techs,
		Monday:             true,
		Tuesday:            true,
		Wednesday:          true,
		Thursday:           true,
		Friday:             true,
	}
}

func allWeekCrew(trade string, shiftHours, techs int) model.Crew {
	c := weekdayCrew(trade, shiftHours, techs)
	c.Saturday = true
	c.Sunday = true
	return c
}

func newTestOptimizer(t *testing.T) *Optimizer {
	t.Helper()
	cfg := Config{}
	cfg.SetDefaults()
	return New(cfg, nil, nil, nil)
}

func findAssignment(s model.Schedule, id string) (model.Assignment, bool) {
	for _, a := range s.Assignments {
		if a.WorkOrderID == id {
			return a, true
		}
	}
	return model.Assignment{}, false
}

// stubSolver returns a canned solution and records whether it was invoked.
type stubSolver struct {
	called bool
	sol    solver.Solution
	err    error
}

func (s *stubSolver) Solve(context.Context, *solver.Model, solver.Options) (solver.Solution, error) {
	s.called = true
	return s.sol, s.err
}

func TestOptimizeConcentratesWhenCapacityAllows(t *testing.T) {
	crews := []model.Crew{weekdayCrew("Elec", 8, 2)}
	orders := []model.WorkOrder{
		{ID: "WO-1", Trade: "Elec", DurationHours: 8, NumPeople: 1, Priority: 1},
		{ID: "WO-2", Trade: "Elec", DurationHours: 4, NumPeople: 1, Priority: 2},
	}

	res, err := newTestOptimizer(t).Optimize(context.Background(), orders, crews, monday)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if res.Status != solver.StatusOptimal {
		t.Fatalf("status = %s, want optimal", res.Status)
	}
	for _, id := range []string{"WO-1", "WO-2"} {
		a, ok := findAssignment(res.Schedule, id)
		if !ok {
			t.Fatalf("%s not scheduled", id)
		}
		if a.DayOffset != 0 || a.ResourceID != "Elec" {
			t.Fatalf("%s assigned to %s day %d, want Elec day 0", id, a.ResourceID, a.DayOffset)
		}
	}
}

func TestOptimizeDefersWhenDayIsFull(t *testing.T) {
	crews := []model.Crew{allWeekCrew("Elec", 8, 1)}
	orders := []model.WorkOrder{
		{ID: "WO-1", Trade: "Elec", DurationHours: 8, NumPeople: 1, Priority: 1},
		{ID: "WO-2", Trade: "Elec", DurationHours: 4, NumPeople: 1, Priority: 2},
	}

	res, err := newTestOptimizer(t).Optimize(context.Background(), orders, crews, monday)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if res.Status != solver.StatusOptimal {
		t.Fatalf("status = %s, want optimal", res.Status)
	}
	a1, ok := findAssignment(res.Schedule, "WO-1")
	if !ok || a1.DayOffset != 0 {
		t.Fatalf("WO-1 = %+v (found=%v), want day 0", a1, ok)
	}
	a2, ok := findAssignment(res.Schedule, "WO-2")
	if !ok || a2.DayOffset != 1 {
		t.Fatalf("WO-2 = %+v (found=%v), want day 1", a2, ok)
	}
	if len(res.Dropped) != 0 {
		t.Fatalf("dropped = %v, want none", res.Dropped)
	}
}

func TestOptimizeDropsUnstaffedTrade(t *testing.T) {
	crews := []model.Crew{weekdayCrew("Elec", 8, 2)}
	orders := []model.WorkOrder{
		{ID: "WO-1", Trade: "Elec", DurationHours: 8, NumPeople: 1, Priority: 1},
		{ID: "WO-3", Trade: "Plumbing", DurationHours: 4, NumPeople: 1, Priority: 2},
	}

	res, err := newTestOptimizer(t).Optimize(context.Background(), orders, crews, monday)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if _, ok := findAssignment(res.Schedule, "WO-3"); ok {
		t.Fatalf("WO-3 scheduled despite missing Plumbing crew")
	}
	if _, ok := findAssignment(res.Schedule, "WO-1"); !ok {
		t.Fatalf("WO-1 not scheduled")
	}
	if len(res.Dropped) != 1 || res.Dropped[0] != "WO-3" {
		t.Fatalf("dropped = %v, want [WO-3]", res.Dropped)
	}
}

func TestOptimizePinnedLandsOnItsDay(t *testing.T) {
	crews := []model.Crew{weekdayCrew("Elec", 8, 1)}
	orders := []model.WorkOrder{
		{ID: "WO-1", Trade: "Elec", DurationHours: 8, NumPeople: 1, Priority: 1},
		{ID: "WO-4", Trade: "Elec", DurationHours: 4, NumPeople: 1, Priority: 5,
			Fixed: true, ScheduleDate: monday.AddDays(2)},
	}

	res, err := newTestOptimizer(t).Optimize(context.Background(), orders, crews, monday)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	a, ok := findAssignment(res.Schedule, "WO-4")
	if !ok {
		t.Fatalf("WO-4 not scheduled")
	}
	if a.DayOffset != 2 {
		t.Fatalf("WO-4 day = %d, want 2", a.DayOffset)
	}
}

func TestOptimizeEmptyRegistry(t *testing.T) {
	stub := &stubSolver{}
	cfg := Config{}
	cfg.SetDefaults()
	o := New(cfg, stub, nil, nil)

	orders := []model.WorkOrder{
		{ID: "WO-1", Trade: "Elec", DurationHours: 8, NumPeople: 1, Priority: 1},
	}
	res, err := o.Optimize(context.Background(), orders, nil, monday)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if res.Status != solver.StatusOptimal {
		t.Fatalf("status = %s, want optimal", res.Status)
	}
	if len(res.Schedule.Assignments) != 0 {
		t.Fatalf("assignments = %v, want none", res.Schedule.Assignments)
	}
	if stub.called {
		t.Fatalf("solver invoked for an empty registry")
	}
}

func TestOptimizeAllPinnedSkipsSolver(t *testing.T) {
	stub := &stubSolver{}
	cfg := Config{}
	cfg.SetDefaults()
	o := New(cfg, stub, nil, nil)

	crews := []model.Crew{weekdayCrew("Elec", 8, 1)}
	orders := []model.WorkOrder{
		{ID: "WO-1", Trade: "Elec", DurationHours: 4, NumPeople: 1, Priority: 1,
			Fixed: true, ScheduleDate: monday},
		{ID: "WO-2", Trade: "Elec", DurationHours: 4, NumPeople: 1, Priority: 2,
			Fixed: true, ScheduleDate: monday.AddDays(1)},
	}
	res, err := o.Optimize(context.Background(), orders, crews, monday)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if stub.called {
		t.Fatalf("solver invoked for a fully pinned backlog")
	}
	if res.Status != solver.StatusOptimal || len(res.Schedule.Assignments) != 2 {
		t.Fatalf("status=%s assignments=%d, want optimal with 2", res.Status, len(res.Schedule.Assignments))
	}
	if res.Objective <= 0 {
		t.Fatalf("objective = %v, want pinned urgency > 0", res.Objective)
	}
}

func TestOptimizePinnedOverflowFloorsBudget(t *testing.T) {
	crews := []model.Crew{allWeekCrew("Elec", 8, 1)}
	orders := []model.WorkOrder{
		// Pinned beyond the crew's 8 man-hour day. The pin stands and day 0
		// is left with no free budget.
		{ID: "WO-P", Trade: "Elec", DurationHours: 10, NumPeople: 1, Priority: 1,
			Fixed: true, ScheduleDate: monday},
		{ID: "WO-F", Trade: "Elec", DurationHours: 4, NumPeople: 1, Priority: 2},
	}

	res, err := newTestOptimizer(t).Optimize(context.Background(), orders, crews, monday)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	p, ok := findAssignment(res.Schedule, "WO-P")
	if !ok || p.DayOffset != 0 {
		t.Fatalf("WO-P = %+v (found=%v), want day 0", p, ok)
	}
	f, ok := findAssignment(res.Schedule, "WO-F")
	if !ok {
		t.Fatalf("WO-F not scheduled")
	}
	if f.DayOffset != 1 {
		t.Fatalf("WO-F day = %d, want 1 (day 0 has no free budget)", f.DayOffset)
	}
}

func TestOptimizeInactivePinDropped(t *testing.T) {
	crews := []model.Crew{weekdayCrew("Elec", 8, 1)}
	orders := []model.WorkOrder{
		// Saturday pin for a Mon-Fri crew.
		{ID: "WO-S", Trade: "Elec", DurationHours: 4, NumPeople: 1, Priority: 1,
			Fixed: true, ScheduleDate: monday.AddDays(5)},
		{ID: "WO-1", Trade: "Elec", DurationHours: 4, NumPeople: 1, Priority: 2},
	}

	res, err := newTestOptimizer(t).Optimize(context.Background(), orders, crews, monday)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if _, ok := findAssignment(res.Schedule, "WO-S"); ok {
		t.Fatalf("WO-S scheduled despite inactive pinned day")
	}
	if len(res.Dropped) != 1 || res.Dropped[0] != "WO-S" {
		t.Fatalf("dropped = %v, want [WO-S]", res.Dropped)
	}
	if _, ok := findAssignment(res.Schedule, "WO-1"); !ok {
		t.Fatalf("WO-1 not scheduled")
	}
}

func TestOptimizeOversizedOrderDropped(t *testing.T) {
	crews := []model.Crew{weekdayCrew("Elec", 8, 1)}
	orders := []model.WorkOrder{
		{ID: "WO-BIG", Trade: "Elec", DurationHours: 12, NumPeople: 2, Priority: 1},
	}

	res, err := newTestOptimizer(t).Optimize(context.Background(), orders, crews, monday)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if len(res.Schedule.Assignments) != 0 {
		t.Fatalf("assignments = %v, want none", res.Schedule.Assignments)
	}
	if len(res.Dropped) != 1 || res.Dropped[0] != "WO-BIG" {
		t.Fatalf("dropped = %v, want [WO-BIG]", res.Dropped)
	}
}

func TestOptimizeRespectsCapacity(t *testing.T) {
	crews := []model.Crew{{
		Trade:              "Mech",
		ShiftDurationHours: 8,
		TechniciansPerCrew: 1,
		Monday:             true,
		Tuesday:            true,
	}}
	var orders []model.WorkOrder
	for _, id := range []string{"M-1", "M-2", "M-3", "M-4", "M-5"} {
		orders = append(orders, model.WorkOrder{
			ID: id, Trade: "Mech", DurationHours: 4, NumPeople: 1, Priority: 1,
		})
	}

	res, err := newTestOptimizer(t).Optimize(context.Background(), orders, crews, monday)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	// Two active days at 8 man-hours each fit exactly four of the five jobs.
	if got := len(res.Schedule.Assignments); got != 4 {
		t.Fatalf("assignments = %d, want 4", got)
	}
	load := map[int]int{}
	for _, a := range res.Schedule.Assignments {
		load[a.DayOffset] += 4
	}
	for d, l := range load {
		if l > 8 {
			t.Fatalf("day %d load = %d man-hours, exceeds capacity 8", d, l)
		}
	}
	if len(res.Dropped) != 0 {
		t.Fatalf("dropped = %v, want none (the fifth job is merely unassigned)", res.Dropped)
	}
}

func TestOptimizeSolverFailureYieldsEmptySchedule(t *testing.T) {
	stub := &stubSolver{sol: solver.Solution{Status: solver.StatusUnknown}}
	cfg := Config{}
	cfg.SetDefaults()
	o := New(cfg, stub, nil, nil)

	crews := []model.Crew{weekdayCrew("Elec", 8, 1)}
	orders := []model.WorkOrder{
		{ID: "WO-1", Trade: "Elec", DurationHours: 4, NumPeople: 1, Priority: 1},
	}
	res, err := o.Optimize(context.Background(), orders, crews, monday)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if !stub.called {
		t.Fatalf("solver not invoked")
	}
	if res.Status != solver.StatusUnknown {
		t.Fatalf("status = %s, want unknown", res.Status)
	}
	if len(res.Schedule.Assignments) != 0 {
		t.Fatalf("assignments = %v, want none", res.Schedule.Assignments)
	}
}

func TestOptimizeRejectsMalformedRegistry(t *testing.T) {
	orders := []model.WorkOrder{
		{ID: "WO-1", Trade: "Elec", DurationHours: 4, NumPeople: 1, Priority: 1},
	}
	cases := []struct {
		name  string
		crews []model.Crew
	}{
		{"no active day", []model.Crew{{Trade: "Elec", ShiftDurationHours: 8, TechniciansPerCrew: 1}}},
		{"duplicate trade", []model.Crew{weekdayCrew("Elec", 8, 1), weekdayCrew("Elec", 6, 2)}},
		{"zero shift", []model.Crew{{Trade: "Elec", TechniciansPerCrew: 1, Monday: true}}},
	}
	for _, tc := range cases {
		if _, err := newTestOptimizer(t).Optimize(context.Background(), orders, tc.crews, monday); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}
}

func TestOptimizeDeterministic(t *testing.T) {
	crews := []model.Crew{
		weekdayCrew("Elec", 8, 2),
		allWeekCrew("Mech", 6, 1),
	}
	orders := []model.WorkOrder{
		{ID: "E-1", Trade: "Elec", DurationHours: 8, NumPeople: 1, Priority: 1, AgeDays: 30},
		{ID: "E-2", Trade: "Elec", DurationHours: 4, NumPeople: 2, Priority: 2, Safety: true},
		{ID: "E-3", Trade: "Elec", DurationHours: 6, NumPeople: 1, Priority: 3},
		{ID: "M-1", Trade: "Mech", DurationHours: 6, NumPeople: 1, Priority: 2, Type: model.TypePreventive},
		{ID: "M-2", Trade: "Mech", DurationHours: 3, NumPeople: 1, Priority: 4, AgeDays: 90},
	}

	o := newTestOptimizer(t)
	first, err := o.Optimize(context.Background(), orders, crews, monday)
	if err != nil {
		t.Fatalf("first Optimize: %v", err)
	}
	second, err := o.Optimize(context.Background(), orders, crews, monday)
	if err != nil {
		t.Fatalf("second Optimize: %v", err)
	}
	if !reflect.DeepEqual(first.Schedule.Assignments, second.Schedule.Assignments) {
		t.Fatalf("runs differ:\n%v\n%v", first.Schedule.Assignments, second.Schedule.Assignments)
	}
	if first.Objective != second.Objective {
		t.Fatalf("objective differs: %v vs %v", first.Objective, second.Objective)
	}
}

// recordingSink captures the last solve record.
type recordingSink struct {
	rec metrics.SolveRecord
	n   int
}

func (s *recordingSink) RecordSolve(r metrics.SolveRecord) error {
	s.rec = r
	s.n++
	return nil
}

// memHistory collects entries in memory.
type memHistory struct {
	entries []history.Entry
}

func (m *memHistory) Append(_ context.Context, e history.Entry) error {
	m.entries = append(m.entries, e)
	return nil
}

func (m *memHistory) Query(_ context.Context, q history.Query) ([]history.Entry, error) {
	return m.entries, nil
}

func (m *memHistory) Close() error { return nil }

func TestOptimizeAppendsHistory(t *testing.T) {
	hist := &memHistory{}
	o := newTestOptimizer(t)
	o.SetHistory(hist)

	crews := []model.Crew{weekdayCrew("Elec", 8, 1)}
	orders := []model.WorkOrder{
		{ID: "WO-1", Trade: "Elec", DurationHours: 4, NumPeople: 1, Priority: 1},
		{ID: "WO-X", Trade: "Plumbing", DurationHours: 4, NumPeople: 1, Priority: 2},
	}
	res, err := o.Optimize(context.Background(), orders, crews, monday)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if len(hist.entries) != 1 {
		t.Fatalf("history entries = %d, want 1", len(hist.entries))
	}
	e := hist.entries[0]
	if e.RunID != res.RunID || e.Status != "optimal" {
		t.Fatalf("entry = %+v, want run %s optimal", e, res.RunID)
	}
	if !e.StartDate.Equal(monday) {
		t.Fatalf("entry start date = %s, want %s", e.StartDate, monday)
	}
	if len(e.Dropped) != 1 || e.Dropped[0] != "WO-X" {
		t.Fatalf("entry dropped = %v, want [WO-X]", e.Dropped)
	}
}

func TestOptimizeRecordsMetrics(t *testing.T) {
	sink := &recordingSink{}
	cfg := Config{}
	cfg.SetDefaults()
	o := New(cfg, nil, nil, sink)

	crews := []model.Crew{weekdayCrew("Elec", 8, 2)}
	orders := []model.WorkOrder{
		{ID: "WO-1", Trade: "Elec", DurationHours: 8, NumPeople: 1, Priority: 1},
	}
	res, err := o.Optimize(context.Background(), orders, crews, monday)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if sink.n != 1 {
		t.Fatalf("RecordSolve calls = %d, want 1", sink.n)
	}
	if sink.rec.RunID != res.RunID {
		t.Fatalf("record run id = %s, want %s", sink.rec.RunID, res.RunID)
	}
	if sink.rec.Status != "optimal" || sink.rec.Assignments != 1 {
		t.Fatalf("record = %+v, want optimal with 1 assignment", sink.rec)
	}
	if sink.rec.WorkOrders != 1 || sink.rec.Crews != 1 {
		t.Fatalf("record sizes = %d orders, %d crews, want 1 and 1", sink.rec.WorkOrders, sink.rec.Crews)
	}
}
