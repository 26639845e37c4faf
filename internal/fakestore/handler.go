package fakestore

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/flxbl-dev/kickass-cms-sub000/pkg/query"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

var (
	errMissing   = errors.New("node not found")
	errDuplicate = errors.New("edge already exists")
)

type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

type edgeBody struct {
	TargetID   string        `json:"targetId"`
	Properties domain.Record `json:"properties"`
}

type edgeView struct {
	Relationship struct {
		Type       string        `json:"type"`
		Properties domain.Record `json:"properties"`
	} `json:"relationship"`
	Target domain.Record `json:"target"`
}

// Handler returns the HTTP surface of the store.
func (s *Store) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.count)
	r.Use(s.authorize)

	r.Get("/", s.index)
	r.Route("/{entity}", func(r chi.Router) {
		r.Get("/", s.list)
		r.Post("/", s.create)
		r.Post("/query", s.query)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.read)
			r.Put("/", s.replace)
			r.Patch("/", s.patch)
			r.Delete("/", s.delete)
			r.Route("/relationships/{rel}", func(r chi.Router) {
				r.Get("/", s.relationships)
				r.Post("/", s.linkHandler)
				r.Patch("/", s.relink)
				r.Delete("/", s.unlinkHandler)
			})
		})
	})
	return r
}

func (s *Store) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.calls.Add(1)
		entity := strings.SplitN(strings.Trim(r.URL.Path, "/"), "/", 2)[0]
		if s.fault(r.Method + " " + entity) {
			writeError(w, http.StatusInternalServerError, "injected failure", nil)
			return
		}
		s.logger.Debug("fakestore request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

func (s *Store) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			writeError(w, http.StatusUnauthorized, "unauthorized", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Store) index(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	counts := map[string]int{}
	for _, entity := range s.entities() {
		counts[entity] = len(s.all(entity))
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, counts)
}

func (s *Store) list(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	params := r.URL.Query()
	limit, offset, ok := window(w, params.Get("limit"), params.Get("offset"))
	if !ok {
		return
	}

	s.mu.Lock()
	var matched []domain.Record
	for _, rec := range s.all(entity) {
		if matchesParams(rec, params) {
			matched = append(matched, rec.Clone())
		}
	}
	s.mu.Unlock()

	s.writeList(w, matched, limit, offset)
}

func (s *Store) query(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	var q query.Query
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "invalid query", err.Error())
		return
	}
	if q.Entity != "" && q.Entity != entity {
		writeError(w, http.StatusBadRequest, "query entity does not match path", q.Entity)
		return
	}

	s.mu.Lock()
	matched := s.evaluate(entity, &q)
	s.mu.Unlock()

	limit, offset := -1, 0
	if q.Limit != nil {
		limit = *q.Limit
	}
	if q.Offset != nil {
		offset = *q.Offset
	}
	s.writeList(w, matched, limit, offset)
}

func (s *Store) create(w http.ResponseWriter, r *http.Request) {
	entity := chi.URLParam(r, "entity")
	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}
	delete(rec, domain.FieldID)
	delete(rec, domain.FieldCreatedAt)
	delete(rec, domain.FieldUpdatedAt)

	s.mu.Lock()
	stored := s.insert(entity, rec).Clone()
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, stored)
}

func (s *Store) read(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	rec, ok := s.get(chi.URLParam(r, "entity"), chi.URLParam(r, "id"))
	if ok {
		rec = rec.Clone()
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "node not found", map[string]string{"id": chi.URLParam(r, "id")})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Store) replace(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, false)
}

func (s *Store) patch(w http.ResponseWriter, r *http.Request) {
	s.update(w, r, true)
}

func (s *Store) update(w http.ResponseWriter, r *http.Request, merge bool) {
	entity, id := chi.URLParam(r, "entity"), chi.URLParam(r, "id")
	body, ok := decodeRecord(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.get(entity, id)
	if !ok {
		writeError(w, http.StatusNotFound, "node not found", map[string]string{"id": id})
		return
	}

	next := body
	if merge {
		next = current.Clone()
		for k, v := range body {
			next[k] = v
		}
	}
	next[domain.FieldID] = id
	next[domain.FieldCreatedAt] = current[domain.FieldCreatedAt]
	next[domain.FieldUpdatedAt] = s.now()
	s.nodes[id] = next
	writeJSON(w, http.StatusOK, next.Clone())
}

func (s *Store) delete(w http.ResponseWriter, r *http.Request) {
	entity, id := chi.URLParam(r, "entity"), chi.URLParam(r, "id")
	s.mu.Lock()
	_, ok := s.get(entity, id)
	if ok {
		s.remove(id)
	}
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "node not found", map[string]string{"id": id})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Store) relationships(w http.ResponseWriter, r *http.Request) {
	entity, id, rel := chi.URLParam(r, "entity"), chi.URLParam(r, "id"), chi.URLParam(r, "rel")
	dir, err := domain.ParseDirection(r.URL.Query().Get("direction"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.get(entity, id); !ok {
		writeError(w, http.StatusNotFound, "node not found", map[string]string{"id": id})
		return
	}
	out := make([]edgeView, 0)
	for _, n := range s.neighbours(id, rel, dir) {
		out = append(out, view(n.edge, n.node))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Store) linkHandler(w http.ResponseWriter, r *http.Request) {
	entity, id, rel := chi.URLParam(r, "entity"), chi.URLParam(r, "id"), chi.URLParam(r, "rel")
	var body edgeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.TargetID == "" {
		writeError(w, http.StatusBadRequest, "body must carry targetId", nil)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.get(entity, id); !ok {
		writeError(w, http.StatusNotFound, "node not found", map[string]string{"id": id})
		return
	}
	e, err := s.link(rel, id, body.TargetID, body.Properties)
	switch {
	case errors.Is(err, errMissing):
		writeError(w, http.StatusNotFound, err.Error(), nil)
		return
	case errors.Is(err, errDuplicate):
		writeError(w, http.StatusConflict, err.Error(), nil)
		return
	}
	writeJSON(w, http.StatusCreated, view(e, s.nodes[body.TargetID]))
}

func (s *Store) relink(w http.ResponseWriter, r *http.Request) {
	id, rel := chi.URLParam(r, "id"), chi.URLParam(r, "rel")
	var body edgeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.TargetID == "" {
		writeError(w, http.StatusBadRequest, "body must carry targetId", nil)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.findEdge(rel, id, body.TargetID)
	if e == nil {
		writeError(w, http.StatusNotFound, "relationship not found", nil)
		return
	}
	for k, v := range body.Properties {
		e.Props[k] = v
	}
	writeJSON(w, http.StatusOK, view(e, s.nodes[body.TargetID]))
}

func (s *Store) unlinkHandler(w http.ResponseWriter, r *http.Request) {
	id, rel := chi.URLParam(r, "id"), chi.URLParam(r, "rel")
	target := r.URL.Query().Get("targetId")

	s.mu.Lock()
	removed := s.unlink(rel, id, target)
	s.mu.Unlock()
	if !removed {
		writeError(w, http.StatusNotFound, "relationship not found", nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Store) writeList(w http.ResponseWriter, records []domain.Record, limit, offset int) {
	total := len(records)
	page := paginate(records, limit, offset)
	if !s.envelope {
		writeJSON(w, http.StatusOK, page)
		return
	}
	if limit < 0 {
		limit = total
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data":       page,
		"pagination": map[string]int{"limit": limit, "offset": offset, "total": total},
	})
}

func paginate(records []domain.Record, limit, offset int) []domain.Record {
	if offset > len(records) {
		offset = len(records)
	}
	records = records[offset:]
	if limit >= 0 && limit < len(records) {
		records = records[:limit]
	}
	if records == nil {
		return []domain.Record{}
	}
	return records
}

// window parses list paging parameters; -1 means no limit.
func window(w http.ResponseWriter, limit, offset string) (int, int, bool) {
	l, o := -1, 0
	var err error
	if limit != "" {
		if l, err = strconv.Atoi(limit); err != nil || l < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit", limit)
			return 0, 0, false
		}
	}
	if offset != "" {
		if o, err = strconv.Atoi(offset); err != nil || o < 0 {
			writeError(w, http.StatusBadRequest, "invalid offset", offset)
			return 0, 0, false
		}
	}
	return l, o, true
}

func view(e *edge, target domain.Record) edgeView {
	var v edgeView
	v.Relationship.Type = e.Type
	v.Relationship.Properties = e.Props.Clone()
	v.Target = target.Clone()
	return v
}

func decodeRecord(w http.ResponseWriter, r *http.Request) (domain.Record, bool) {
	var rec domain.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil || rec == nil {
		writeError(w, http.StatusBadRequest, "body must be a JSON object", nil)
		return nil, false
	}
	return rec, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string, details any) {
	writeJSON(w, status, errorBody{Error: msg, Details: details})
}
