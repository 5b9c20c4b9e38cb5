package api

import (
	"net/http"
	"strconv"
	"time"

	"maintenance-scheduler/core/scheduler/history"
)

// runs exposes past optimizer runs via GET /api/runs. Filters: start and end
// as RFC3339 timestamps, status, and limit keeping the most recent entries.
func (s *server) runs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.methodNotAllowed(w, r, http.MethodGet)
		return
	}

	q := history.Query{Status: r.URL.Query().Get("status")}
	if v := r.URL.Query().Get("start"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, "start must be RFC3339")
			return
		}
		q.Start = t
	}
	if v := r.URL.Query().Get("end"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			s.writeError(w, r, http.StatusBadRequest, "end must be RFC3339")
			return
		}
		q.End = t
	}

	entries, err := s.History.Query(r.Context(), q)
	if err != nil {
		s.Log.Errorf("query history: %v", err)
		s.writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, r, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		if len(entries) > n {
			entries = entries[len(entries)-n:]
		}
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	s.writeJSON(w, r, http.StatusOK, entries)
}
