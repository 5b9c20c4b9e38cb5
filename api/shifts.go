package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"maintenance-scheduler/core/model"
	"maintenance-scheduler/core/registry"
)

// shifts handles the collection routes: GET and POST /api/shifts.
func (s *server) shifts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		crews, err := s.Store.List(r.Context())
		if err != nil {
			s.Log.Errorf("list crews: %v", err)
			s.writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
		s.writeJSON(w, r, http.StatusOK, crews)
	case http.MethodPost:
		c, ok := s.decodeCrew(w, r)
		if !ok {
			return
		}
		if err := s.Store.Add(r.Context(), c); err != nil {
			if errors.Is(err, registry.ErrDuplicateTrade) {
				s.writeError(w, r, http.StatusConflict, err.Error())
				return
			}
			s.Log.Errorf("add crew: %v", err)
			s.writeError(w, r, http.StatusInternalServerError, "internal server error")
			return
		}
		s.writeJSON(w, r, http.StatusCreated, c)
	default:
		s.methodNotAllowed(w, r, "GET, POST")
	}
}

// shiftByTrade handles the item routes: GET, PUT and DELETE /api/shifts/{trade}.
func (s *server) shiftByTrade(w http.ResponseWriter, r *http.Request) {
	trade := strings.TrimPrefix(r.URL.Path, "/api/shifts/")
	if trade == "" || strings.Contains(trade, "/") {
		s.writeError(w, r, http.StatusNotFound, "not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		c, err := s.Store.Get(r.Context(), trade)
		if err != nil {
			s.storeError(w, r, err)
			return
		}
		s.writeJSON(w, r, http.StatusOK, c)
	case http.MethodPut:
		c, ok := s.decodeCrew(w, r)
		if !ok {
			return
		}
		if err := s.updateCrew(r, trade, c); err != nil {
			s.storeError(w, r, err)
			return
		}
		s.writeJSON(w, r, http.StatusOK, c)
	case http.MethodDelete:
		if err := s.Store.Delete(r.Context(), trade); err != nil {
			s.storeError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		s.methodNotAllowed(w, r, "GET, PUT, DELETE")
	}
}

// updateCrew replaces the crew registered under trade. A body naming a
// different trade renames the entry when the new trade is still free.
func (s *server) updateCrew(r *http.Request, trade string, c model.Crew) error {
	if _, err := s.Store.Get(r.Context(), trade); err != nil {
		return err
	}
	if c.Trade == trade {
		return s.Store.Put(r.Context(), c)
	}
	if err := s.Store.Add(r.Context(), c); err != nil {
		return err
	}
	return s.Store.Delete(r.Context(), trade)
}

// decodeCrew reads and validates a crew body, replying itself on failure.
func (s *server) decodeCrew(w http.ResponseWriter, r *http.Request) (model.Crew, bool) {
	var c model.Crew
	dec := json.NewDecoder(r.Body)
	defer func() { _ = r.Body.Close() }()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid json body")
		return model.Crew{}, false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		s.writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return model.Crew{}, false
	}
	if err := c.Validate(); err != nil {
		s.writeError(w, r, http.StatusBadRequest, err.Error())
		return model.Crew{}, false
	}
	return c, true
}

// storeError maps registry errors onto HTTP statuses.
func (s *server) storeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, registry.ErrNotFound):
		s.writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, registry.ErrDuplicateTrade):
		s.writeError(w, r, http.StatusConflict, err.Error())
	default:
		s.Log.Errorf("registry: %v", err)
		s.writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
