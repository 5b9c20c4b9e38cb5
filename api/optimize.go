package api

import (
	"fmt"
	"net/http"

	"maintenance-scheduler/core/backlog"
	"maintenance-scheduler/core/events"
	"maintenance-scheduler/core/model"
	"maintenance-scheduler/core/scheduler"
	"maintenance-scheduler/pkg/export"
)

// maxBacklogBytes bounds the in-memory part of a workbook upload.
const maxBacklogBytes = 32 << 20

// optimizeResponse is the JSON reply of POST /api/optimize.
type optimizeResponse struct {
	RunID    string         `json:"run_id"`
	Status   string         `json:"status"`
	Schedule model.Schedule `json:"schedule"`
	Dropped  []string       `json:"dropped,omitempty"`
}

// calendarResponse is the ?view=calendar reply.
type calendarResponse struct {
	RunID     string                `json:"run_id"`
	Status    string                `json:"status"`
	StartDate model.Date            `json:"start_date"`
	Events    []model.CalendarEvent `json:"events"`
	Dropped   []string              `json:"dropped,omitempty"`
}

func (s *server) optimize(w http.ResponseWriter, r *http.Request) {
	res, ok := s.runOptimize(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("view") == "calendar" {
		s.writeJSON(w, r, http.StatusOK, calendarResponse{
			RunID:     res.RunID,
			Status:    res.Status.String(),
			StartDate: res.Schedule.StartDate,
			Events:    res.Schedule.CalendarEvents(),
			Dropped:   res.Dropped,
		})
		return
	}
	s.writeJSON(w, r, http.StatusOK, optimizeResponse{
		RunID:    res.RunID,
		Status:   res.Status.String(),
		Schedule: res.Schedule,
		Dropped:  res.Dropped,
	})
}

func (s *server) optimizeXLSX(w http.ResponseWriter, r *http.Request) {
	res, ok := s.runOptimize(w, r)
	if !ok {
		return
	}
	name := "schedule-" + res.Schedule.StartDate.String() + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := export.WriteXLSX(w, res.Schedule); err != nil {
		s.Log.Errorf("write xlsx: %v", err)
	}
}

// runOptimize implements the shared upload, parse and solve flow. It writes
// the error response itself and reports ok=false when the caller must stop.
func (s *server) runOptimize(w http.ResponseWriter, r *http.Request) (scheduler.Result, bool) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w, r, http.MethodPost)
		return scheduler.Result{}, false
	}
	if err := r.ParseMultipartForm(maxBacklogBytes); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "expected multipart form with a backlog_file part")
		return scheduler.Result{}, false
	}
	file, _, err := r.FormFile("backlog_file")
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, "backlog_file part is required")
		return scheduler.Result{}, false
	}
	defer func() { _ = file.Close() }()

	start, err := s.startDate(r.FormValue("start_date"))
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return scheduler.Result{}, false
	}

	crews, err := s.Store.List(r.Context())
	if err != nil {
		s.Log.Errorf("list crews: %v", err)
		s.writeError(w, r, http.StatusInternalServerError, "internal server error")
		return scheduler.Result{}, false
	}

	orders, err := backlog.Parse(file, backlog.Options{Start: start, Now: s.Now(), Log: s.Log})
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, fmt.Sprintf("parse backlog: %v", err))
		return scheduler.Result{}, false
	}

	res, err := s.Optimizer.Optimize(r.Context(), orders, crews, start)
	if err != nil {
		s.writeError(w, r, http.StatusUnprocessableEntity, fmt.Sprintf("optimize: %v", err))
		return scheduler.Result{}, false
	}
	if s.Bus != nil && res.Status.Succeeded() {
		s.Bus.Publish(events.ScheduleComputed{
			RunID:       res.RunID,
			GeneratedAt: s.Now().UTC(),
			Schedule:    res.Schedule,
		})
	}
	return res, true
}

// startDate resolves the horizon start: an explicit date snaps forward to its
// Monday, no date means the Monday after now.
func (s *server) startDate(raw string) (model.Date, error) {
	if raw == "" {
		return model.NextMonday(s.Now()), nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return model.Date{}, err
	}
	return model.NextMonday(d.Time()), nil
}
