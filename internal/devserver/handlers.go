package devserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mmcdole/campus/internal/domain"
)

const maxBodyBytes = 1 << 20

// resource serves one collection under /api/{schema.Name}.
type resource[T domain.Item, P any] struct {
	srv    *Server
	schema Schema[T, P]
}

func mount[T domain.Item, P any](r chi.Router, srv *Server, schema Schema[T, P]) {
	h := &resource[T, P]{srv: srv, schema: schema}
	r.Route("/"+schema.Name, func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.remove)
	})
}

type listResponse[T any] struct {
	Data       []T               `json:"data"`
	Pagination domain.Pagination `json:"pagination"`
	Statistics domain.Statistics `json:"statistics"`
}

type itemResponse[T any] struct {
	Data       T                  `json:"data"`
	Statistics *domain.Statistics `json:"statistics,omitempty"`
}

type statsResponse struct {
	Statistics domain.Statistics `json:"statistics"`
}

func (h *resource[T, P]) list(w http.ResponseWriter, r *http.Request) {
	q, verr := parseQuery(r, h.schema)
	if verr != nil {
		respondValidation(w, verr)
		return
	}

	entries, err := loadAll[T](h.srv.store, h.schema.Name)
	if err != nil {
		h.srv.respondServerError(w, err)
		return
	}

	page := runQuery(h.schema, entries, q)
	respondJSON(w, http.StatusOK, listResponse[T]{
		Data:       page.Items,
		Pagination: page.Pagination,
		Statistics: page.Statistics,
	})
}

func (h *resource[T, P]) get(w http.ResponseWriter, r *http.Request) {
	item, err := get[T](h.srv.store, h.schema.Name, chi.URLParam(r, "id"))
	if err != nil {
		h.respondStoreError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, itemResponse[T]{Data: item})
}

func (h *resource[T, P]) create(w http.ResponseWriter, r *http.Request) {
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	item, errs := h.schema.Build(uuid.NewString(), in, h.srv.now())
	if verr := errs.err("invalid " + h.schema.Name + " record"); verr != nil {
		respondValidation(w, verr)
		return
	}
	if err := insert(h.srv.store, h.schema.Name, item.GetID(), item); err != nil {
		h.srv.respondServerError(w, err)
		return
	}

	h.srv.logger.Info("created record", "resource", h.schema.Name, "itemID", item.GetID(), "subject", subjectOf(r))
	h.srv.metrics.mutations.WithLabelValues(h.schema.Name, "create").Inc()
	respondJSON(w, http.StatusCreated, itemResponse[T]{Data: item, Statistics: h.mutationStatistics()})
}

func (h *resource[T, P]) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	in, ok := h.decodeInput(w, r)
	if !ok {
		return
	}

	item, err := modify(h.srv.store, h.schema.Name, id, func(cur T) (T, error) {
		next, errs := h.schema.Apply(cur, in)
		if verr := errs.err("invalid " + h.schema.Name + " record"); verr != nil {
			return cur, verr
		}
		return next, nil
	})
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	h.srv.logger.Info("updated record", "resource", h.schema.Name, "itemID", id, "subject", subjectOf(r))
	h.srv.metrics.mutations.WithLabelValues(h.schema.Name, "update").Inc()
	respondJSON(w, http.StatusOK, itemResponse[T]{Data: item, Statistics: h.mutationStatistics()})
}

func (h *resource[T, P]) remove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := remove(h.srv.store, h.schema.Name, id); err != nil {
		h.respondStoreError(w, err)
		return
	}

	h.srv.logger.Info("deleted record", "resource", h.schema.Name, "itemID", id, "subject", subjectOf(r))
	h.srv.metrics.mutations.WithLabelValues(h.schema.Name, "delete").Inc()

	if stats := h.mutationStatistics(); stats != nil {
		respondJSON(w, http.StatusOK, statsResponse{Statistics: *stats})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *resource[T, P]) decodeInput(w http.ResponseWriter, r *http.Request) (P, bool) {
	var in P
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error(), nil)
		return in, false
	}
	return in, true
}

// mutationStatistics returns whole-collection counters when the server is
// configured to send them, nil otherwise.
func (h *resource[T, P]) mutationStatistics() *domain.Statistics {
	if !h.srv.mutationStats {
		return nil
	}
	entries, err := loadAll[T](h.srv.store, h.schema.Name)
	if err != nil {
		h.srv.logger.Error("failed to count records", "error", err, "resource", h.schema.Name)
		return nil
	}
	stats := statistics(h.schema, entries)
	return &stats
}

func (h *resource[T, P]) respondStoreError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, errNoRecord):
		respondError(w, http.StatusNotFound, h.schema.Name+" record not found", nil)
	case errors.As(err, &verr):
		respondValidation(w, verr)
	default:
		h.srv.respondServerError(w, err)
	}
}

func subjectOf(r *http.Request) string {
	if c := claimsFrom(r.Context()); c != nil {
		return c.Subject
	}
	return ""
}

// === Responses ===

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, message string, fields map[string]string) {
	respondJSON(w, status, errorBody{Error: errorDetail{Message: message, Fields: fields}})
}

func respondValidation(w http.ResponseWriter, verr *domain.ValidationError) {
	respondError(w, http.StatusUnprocessableEntity, verr.Message, verr.Fields)
}

func (s *Server) respondServerError(w http.ResponseWriter, err error) {
	s.logger.Error("internal server error", "error", err)
	respondError(w, http.StatusInternalServerError, "internal server error", nil)
}
