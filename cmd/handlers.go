package main

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadgen-cli/internal/discovery"
	"github.com/sells-group/leadgen-cli/internal/lead"
)

// apiServer holds the handler dependencies for the CRM HTTP API.
type apiServer struct {
	svc    *lead.Service
	runner *discovery.Runner
}

func (a *apiServer) routes(r chi.Router) {
	r.Get("/health", a.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/stats", a.handleStats)

		r.Route("/leads", func(r chi.Router) {
			r.Get("/", a.handleListLeads)
			r.Post("/", a.handleCreateLead)
			r.Post("/discover", a.handleDiscover)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", a.handleGetLead)
				r.Patch("/", a.handleUpdateLead)
				r.Delete("/", a.handleDeleteLead)
				r.Get("/activities", a.handleListActivities)
				r.Post("/activities", a.handleAddActivity)
			})
		})
	})
}

func (a *apiServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *apiServer) handleListLeads(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := lead.Filter{
		Search:    q.Get("search"),
		Status:    lead.Status(q.Get("status")),
		Source:    lead.Source(q.Get("source")),
		City:      q.Get("city"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}
	if v := q.Get("limit"); v != "" {
		f.Limit, _ = strconv.Atoi(v)
	}
	if v := q.Get("offset"); v != "" {
		f.Offset, _ = strconv.Atoi(v)
	}
	if v := q.Get("min_score"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.MinScore = &n
		}
	}
	if v := q.Get("max_score"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.MaxScore = &n
		}
	}

	page, err := a.svc.List(r.Context(), f)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, page)
}

func (a *apiServer) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var l lead.Lead
	if err := json.NewDecoder(r.Body).Decode(&l); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	created, err := a.svc.Create(r.Context(), &l)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, created)
}

func (a *apiServer) handleGetLead(w http.ResponseWriter, r *http.Request) {
	l, err := a.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, l)
}

// handleUpdateLead applies a partial update. A body containing only "status"
// routes through the status transition so ContactedAt stamping and the
// activity log entry happen.
func (a *apiServer) handleUpdateLead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}

	if raw, ok := patch["status"]; ok && len(patch) == 1 {
		var status lead.Status
		if err := json.Unmarshal(raw, &status); err != nil {
			respondJSON(w, http.StatusBadRequest, errorBody("invalid status"))
			return
		}
		l, err := a.svc.UpdateStatus(r.Context(), id, status)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, l)
		return
	}

	current, err := a.svc.Get(r.Context(), id)
	if err != nil {
		respondError(w, err)
		return
	}

	merged, err := json.Marshal(patch)
	if err != nil {
		respondError(w, err)
		return
	}
	if err := json.Unmarshal(merged, current); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody("invalid lead fields"))
		return
	}
	current.ID = id

	updated, err := a.svc.Update(r.Context(), current)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, updated)
}

func (a *apiServer) handleDeleteLead(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (a *apiServer) handleListActivities(w http.ResponseWriter, r *http.Request) {
	activities, err := a.svc.Activities(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, activities)
}

func (a *apiServer) handleAddActivity(w http.ResponseWriter, r *http.Request) {
	var act lead.Activity
	if err := json.NewDecoder(r.Body).Decode(&act); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	act.LeadID = chi.URLParam(r, "id")

	if err := a.svc.AddActivity(r.Context(), &act); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, act)
}

// handleDiscover runs a discovery batch synchronously. Batches are short and
// bounded; the report is the response.
func (a *apiServer) handleDiscover(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Queries  []string `json:"queries"`
		Location string   `json:"location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, errorBody("invalid request body"))
		return
	}
	if len(req.Queries) == 0 {
		respondJSON(w, http.StatusBadRequest, errorBody("queries is required"))
		return
	}

	report := a.runner.Run(r.Context(), req.Queries, req.Location)
	respondJSON(w, http.StatusOK, report)
}

func (a *apiServer) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := a.svc.Stats(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// respondError maps service errors to HTTP statuses.
func respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case eris.Is(err, lead.ErrNotFound):
		status = http.StatusNotFound
	case eris.Is(err, lead.ErrDuplicate):
		status = http.StatusConflict
	}
	respondJSON(w, status, errorBody(err.Error()))
}

func errorBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
