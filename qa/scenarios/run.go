package scenarios

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"maintenance-scheduler/core/logger"
	"maintenance-scheduler/core/model"
	"maintenance-scheduler/core/scheduler"
	"maintenance-scheduler/core/solver"
	"maintenance-scheduler/infra/metrics"
)

// RunScenario solves sc with the production optimizer stack and fails the
// test on any divergence from the expected outcome. Metrics go to a private
// registry so parallel scenarios never collide on collector names.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()

	crews := make([]model.Crew, 0, len(sc.Crews))
	for _, def := range sc.Crews {
		crew, err := def.ToModel()
		if err != nil {
			t.Fatalf("scenario %s: %v", sc.Name, err)
		}
		crews = append(crews, crew)
	}
	orders := make([]model.WorkOrder, 0, len(sc.WorkOrders))
	for _, def := range sc.WorkOrders {
		orders = append(orders, def.ToModel())
	}

	sink, err := metrics.NewPromSinkWithRegistry(prometheus.NewRegistry())
	if err != nil {
		t.Fatalf("metrics sink: %v", err)
	}
	var cfg scheduler.Config
	cfg.SetDefaults()

	opt := scheduler.New(cfg, solver.NewBranchAndBound(), logger.NopLogger{}, sink)
	res, err := opt.Optimize(context.Background(), orders, crews, start)
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}

	if got := res.Status.String(); got != sc.Expected.Status {
		t.Fatalf("status = %s, want %s", got, sc.Expected.Status)
	}
	if got := len(res.Schedule.Assignments); got != sc.Expected.Assigned {
		t.Errorf("assigned = %d, want %d (%+v)", got, sc.Expected.Assigned, res.Schedule.Assignments)
	}
	unassigned := len(orders) - len(res.Schedule.Assignments)
	if unassigned != sc.Expected.Unassigned {
		t.Errorf("unassigned = %d, want %d", unassigned, sc.Expected.Unassigned)
	}

	dropped := make(map[string]bool, len(res.Dropped))
	for _, id := range res.Dropped {
		dropped[id] = true
	}
	if len(res.Dropped) != len(sc.Expected.Dropped) {
		t.Errorf("dropped = %v, want %v", res.Dropped, sc.Expected.Dropped)
	}
	for _, id := range sc.Expected.Dropped {
		if !dropped[id] {
			t.Errorf("work order %s not dropped, got %v", id, res.Dropped)
		}
	}

	placed := make(map[string]model.Assignment, len(res.Schedule.Assignments))
	for _, a := range res.Schedule.Assignments {
		placed[a.WorkOrderID] = a
	}
	for id, want := range sc.Expected.Placements {
		got, ok := placed[id]
		if !ok {
			t.Errorf("work order %s missing from schedule", id)
			continue
		}
		if got.DayOffset != want.Day || got.ResourceID != want.Resource {
			t.Errorf("work order %s placed day=%d resource=%s, want day=%d resource=%s",
				id, got.DayOffset, got.ResourceID, want.Day, want.Resource)
		}
	}
}
