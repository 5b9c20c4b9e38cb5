package scheduler

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"maintenance-scheduler/core/logger"
	"maintenance-scheduler/core/metrics"
	"maintenance-scheduler/core/model"
	"maintenance-scheduler/core/scheduler/history"
	"maintenance-scheduler/core/solver"
)

// Result carries the outcome of one optimizer run.
type Result struct {
	Schedule  model.Schedule
	Status    solver.Status
	Objective float64
	RunID     string
	Duration  time.Duration
	Variables int
	Nodes     int
	// Dropped lists work orders that could not take part in the model: no
	// crew for their trade, a fixed date the crew cannot serve, or no
	// remaining capacity on any candidate day.
	Dropped []string
}

// Optimizer assigns work orders to crew-day slots over one planning week.
type Optimizer struct {
	cfg    Config
	engine solver.Solver
	log    logger.Logger
	sink   metrics.MetricsSink
	hist   history.Store
}

// New creates an Optimizer. A nil engine selects the built-in branch and
// bound solver, a nil sink disables metrics.
func New(cfg Config, engine solver.Solver, log logger.Logger, sink metrics.MetricsSink) *Optimizer {
	if engine == nil {
		engine = solver.NewBranchAndBound()
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Optimizer{cfg: cfg, engine: engine, log: log, sink: sink}
}

// SetHistory configures a store that receives one entry per run.
func (o *Optimizer) SetHistory(store history.Store) { o.hist = store }

// Optimize builds and solves the assignment model for the week starting at
// start. Crews are snapshot and iterated in trade order so identical inputs
// produce identical schedules. Solver truncation or failure yields an empty
// schedule, never an error; errors are reserved for malformed input data.
func (o *Optimizer) Optimize(ctx context.Context, orders []model.WorkOrder, crews []model.Crew, start model.Date) (Result, error) {
	began := time.Now()
	res := Result{RunID: uuid.NewString(), Schedule: model.NewSchedule(start), Status: solver.StatusUnknown}

	if err := validateInputs(orders, crews); err != nil {
		return res, err
	}
	if len(crews) == 0 {
		res.Status = solver.StatusOptimal
		o.finish(&res, began, len(orders), len(crews))
		return res, nil
	}

	sorted := make([]model.Crew, len(crews))
	copy(sorted, crews)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Trade < sorted[j].Trade })

	built := buildModel(o.cfg, o.log, orders, sorted, start)
	res.Variables = len(built.vars)
	res.Dropped = built.dropped

	if built.m.NumVars() == 0 {
		// Everything is pinned or dropped; nothing to optimize.
		res.Status = solver.StatusOptimal
		res.Objective = built.m.Offset()
		res.Schedule.Assignments = append(res.Schedule.Assignments, built.pinned...)
		res.Schedule.Sort()
		o.finish(&res, began, len(orders), len(crews))
		return res, nil
	}

	sol, err := o.engine.Solve(ctx, built.m, solver.Options{
		TimeLimit: o.cfg.TimeLimit(),
		MaxNodes:  o.cfg.MaxNodes,
	})
	if err != nil {
		o.log.Errorf("solve failed: %v", err)
	}
	res.Status = sol.Status
	res.Objective = sol.Objective
	res.Nodes = sol.Nodes

	if sol.Status.Succeeded() {
		res.Schedule.Assignments = append(res.Schedule.Assignments, built.pinned...)
		for _, v := range built.vars {
			if sol.Values[v.id] > 0.5 {
				res.Schedule.Assignments = append(res.Schedule.Assignments, model.Assignment{
					WorkOrderID: orders[v.wo].ID,
					DayOffset:   v.day,
					ResourceID:  sorted[v.crew].Trade,
				})
			}
		}
		res.Schedule.Sort()
	} else {
		o.log.Warnf("solver returned %s, emitting empty schedule", sol.Status)
	}
	o.finish(&res, began, len(orders), len(crews))
	return res, nil
}

func validateInputs(orders []model.WorkOrder, crews []model.Crew) error {
	seen := make(map[string]struct{}, len(crews))
	for _, c := range crews {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("crew registry: %w", err)
		}
		if _, dup := seen[c.Trade]; dup {
			return fmt.Errorf("crew registry: duplicate trade %s", c.Trade)
		}
		seen[c.Trade] = struct{}{}
	}
	for _, w := range orders {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("backlog: %w", err)
		}
	}
	return nil
}

func (o *Optimizer) finish(res *Result, began time.Time, orders, crews int) {
	res.Duration = time.Since(began)
	o.log.Infof("optimize run %s: status=%s assignments=%d dropped=%d vars=%d nodes=%d in %s",
		res.RunID, res.Status, len(res.Schedule.Assignments), len(res.Dropped),
		res.Variables, res.Nodes, res.Duration)
	if o.hist != nil {
		e := history.Entry{
			RunID:       res.RunID,
			Timestamp:   time.Now(),
			StartDate:   res.Schedule.StartDate,
			Status:      res.Status.String(),
			Objective:   res.Objective,
			WorkOrders:  orders,
			Crews:       crews,
			Assignments: len(res.Schedule.Assignments),
			Dropped:     res.Dropped,
			DurationMS:  res.Duration.Milliseconds(),
		}
		if err := o.hist.Append(context.Background(), e); err != nil {
			o.log.Warnf("history store: %v", err)
		}
	}
	if o.sink == nil {
		return
	}
	rec := metrics.SolveRecord{
		RunID:       res.RunID,
		StartDate:   res.Schedule.StartDate.Time(),
		Status:      res.Status.String(),
		Objective:   res.Objective,
		WorkOrders:  orders,
		Crews:       crews,
		Variables:   res.Variables,
		Nodes:       res.Nodes,
		Assignments: len(res.Schedule.Assignments),
		Duration:    res.Duration,
		Time:        time.Now(),
	}
	if err := o.sink.RecordSolve(rec); err != nil {
		o.log.Warnf("metrics sink: %v", err)
	}
}
