// Package api exposes the HTTP surface of the scheduling service: backlog
// upload and optimization, crew shift management, run history and health.
package api

import (
	"context"
	"net/http"
	"time"

	"maintenance-scheduler/core/events"
	"maintenance-scheduler/core/logger"
	"maintenance-scheduler/core/model"
	"maintenance-scheduler/core/registry"
	"maintenance-scheduler/core/scheduler"
	"maintenance-scheduler/core/scheduler/history"
	"maintenance-scheduler/internal/eventbus"
)

// Optimizer runs one scheduling solve over a backlog snapshot.
type Optimizer interface {
	Optimize(ctx context.Context, orders []model.WorkOrder, crews []model.Crew, start model.Date) (scheduler.Result, error)
}

// Deps carries the handler dependencies. History and Bus are optional; a nil
// History hides /api/runs, a nil Bus disables event publication.
type Deps struct {
	Store     registry.Store
	Optimizer Optimizer
	History   history.Store
	Bus       *eventbus.Bus[events.ScheduleComputed]
	Log       logger.Logger
	// Token guards /api/* with "Bearer <token>" when non-empty.
	Token string
	// Now anchors default start date computation; nil means time.Now.
	Now func() time.Time
}

type server struct {
	Deps
}

// NewRouter wires the HTTP handlers with their dependencies and returns the
// composed handler. Handlers stay unaware of concrete adapters.
func NewRouter(d Deps) http.Handler {
	if d.Log == nil {
		d.Log = logger.NopLogger{}
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	s := &server{Deps: d}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.health)
	mux.HandleFunc("/api/optimize", s.optimize)
	mux.HandleFunc("/api/optimize/xlsx", s.optimizeXLSX)
	mux.HandleFunc("/api/shifts", s.shifts)
	mux.HandleFunc("/api/shifts/", s.shiftByTrade)
	if d.History != nil {
		mux.HandleFunc("/api/runs", s.runs)
	}

	return s.requestLogger(s.auth(mux))
}
