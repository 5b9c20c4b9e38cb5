package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"maintenance-scheduler/core/model"
	"maintenance-scheduler/core/registry"
	"maintenance-scheduler/core/scheduler"
	"maintenance-scheduler/core/solver"
)

// memStore is an in-memory crew registry for handler tests.
type memStore struct {
	mu    sync.Mutex
	crews map[string]model.Crew
}

func newMemStore() *memStore { return &memStore{crews: map[string]model.Crew{}} }

func (m *memStore) List(context.Context) ([]model.Crew, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Crew, 0, len(m.crews))
	for _, c := range m.crews {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Trade < out[j].Trade })
	return out, nil
}

func (m *memStore) Get(_ context.Context, trade string) (model.Crew, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.crews[trade]
	if !ok {
		return model.Crew{}, registry.ErrNotFound
	}
	return c, nil
}

func (m *memStore) Add(_ context.Context, c model.Crew) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.crews[c.Trade]; dup {
		return registry.ErrDuplicateTrade
	}
	m.crews[c.Trade] = c
	return nil
}

func (m *memStore) Put(_ context.Context, c model.Crew) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.crews[c.Trade]; !ok {
		return registry.ErrNotFound
	}
	m.crews[c.Trade] = c
	return nil
}

func (m *memStore) Delete(_ context.Context, trade string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.crews[trade]; !ok {
		return registry.ErrNotFound
	}
	delete(m.crews, trade)
	return nil
}

func (m *memStore) Close() error { return nil }

func shiftsRouter() (http.Handler, *memStore) {
	opt := &stubOptimizer{res: scheduler.Result{Status: solver.StatusOptimal}}
	return newTestRouter(opt)
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

const elecBody = `{"trade":"Elec","shift_duration_hours":8,"technicians_per_crew":2,"monday":true,"tuesday":true}`

func TestShiftsCRUD(t *testing.T) {
	h, _ := shiftsRouter()

	rr := do(h, http.MethodGet, "/api/shifts", "")
	if rr.Code != http.StatusOK || strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("empty list: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(h, http.MethodPost, "/api/shifts", elecBody)
	if rr.Code != http.StatusCreated {
		t.Fatalf("add: %d %s", rr.Code, rr.Body.String())
	}

	rr = do(h, http.MethodPost, "/api/shifts", elecBody)
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate add: %d, want 409", rr.Code)
	}

	rr = do(h, http.MethodGet, "/api/shifts/Elec", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get: %d %s", rr.Code, rr.Body.String())
	}
	var c model.Crew
	if err := json.Unmarshal(rr.Body.Bytes(), &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.Trade != "Elec" || c.DailyCapacity() != 16 {
		t.Fatalf("crew = %+v", c)
	}

	update := `{"trade":"Elec","shift_duration_hours":6,"technicians_per_crew":3,"monday":true}`
	rr = do(h, http.MethodPut, "/api/shifts/Elec", update)
	if rr.Code != http.StatusOK {
		t.Fatalf("put: %d %s", rr.Code, rr.Body.String())
	}
	rr = do(h, http.MethodGet, "/api/shifts/Elec", "")
	_ = json.Unmarshal(rr.Body.Bytes(), &c)
	if c.ShiftDurationHours != 6 || c.TechniciansPerCrew != 3 {
		t.Fatalf("update not applied: %+v", c)
	}

	rr = do(h, http.MethodDelete, "/api/shifts/Elec", "")
	if rr.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rr.Code)
	}
	rr = do(h, http.MethodDelete, "/api/shifts/Elec", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("delete missing: %d, want 404", rr.Code)
	}
}

func TestShiftsRename(t *testing.T) {
	h, store := shiftsRouter()
	_ = store.Add(context.Background(), model.Crew{
		Trade: "Elec", ShiftDurationHours: 8, TechniciansPerCrew: 1, Monday: true,
	})
	_ = store.Add(context.Background(), model.Crew{
		Trade: "Mech", ShiftDurationHours: 8, TechniciansPerCrew: 1, Monday: true,
	})

	// Rename onto a taken trade is rejected.
	taken := `{"trade":"Mech","shift_duration_hours":8,"technicians_per_crew":1,"monday":true}`
	rr := do(h, http.MethodPut, "/api/shifts/Elec", taken)
	if rr.Code != http.StatusConflict {
		t.Fatalf("rename onto taken trade: %d, want 409", rr.Code)
	}

	// Rename onto a free trade moves the entry.
	free := `{"trade":"HVAC","shift_duration_hours":8,"technicians_per_crew":1,"monday":true}`
	rr = do(h, http.MethodPut, "/api/shifts/Elec", free)
	if rr.Code != http.StatusOK {
		t.Fatalf("rename: %d %s", rr.Code, rr.Body.String())
	}
	if rr := do(h, http.MethodGet, "/api/shifts/Elec", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("old trade still present: %d", rr.Code)
	}
	if rr := do(h, http.MethodGet, "/api/shifts/HVAC", ""); rr.Code != http.StatusOK {
		t.Fatalf("new trade missing: %d", rr.Code)
	}
}

func TestShiftsRejectsBadBodies(t *testing.T) {
	h, _ := shiftsRouter()

	cases := []struct {
		name string
		body string
	}{
		{"garbage", "{"},
		{"unknown field", `{"trade":"Elec","shift_duration_hours":8,"technicians_per_crew":1,"monday":true,"oops":1}`},
		{"two objects", elecBody + elecBody},
		{"no active day", `{"trade":"Elec","shift_duration_hours":8,"technicians_per_crew":1}`},
		{"zero technicians", `{"trade":"Elec","shift_duration_hours":8,"technicians_per_crew":0,"monday":true}`},
	}
	for _, tc := range cases {
		if rr := do(h, http.MethodPost, "/api/shifts", tc.body); rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status %d, want 400", tc.name, rr.Code)
		}
	}

	if rr := do(h, http.MethodPut, "/api/shifts/Ghost", elecBody); rr.Code != http.StatusNotFound {
		t.Errorf("put unknown trade: %d, want 404", rr.Code)
	}
	if rr := do(h, http.MethodPatch, "/api/shifts", elecBody); rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("patch collection: %d, want 405", rr.Code)
	}
	if rr := do(h, http.MethodGet, "/api/shifts/Elec/extra", ""); rr.Code != http.StatusNotFound {
		t.Errorf("nested path: %d, want 404", rr.Code)
	}
}

// Guard against the registry growing new methods the stub misses.
var _ registry.Store = (*memStore)(nil)
