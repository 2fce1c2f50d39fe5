package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/okian/piste/internal/domain/model"
)

// runRequest mirrors the OpenAPI schema for POST /runs.
type runRequest struct {
	Stage   string `json:"stage"`
	Year    int    `json:"year"`
	NewOnly bool   `json:"new_only"`
}

func (r runRequest) validate() error {
	switch {
	case strings.TrimSpace(r.Stage) == "":
		return errors.New("missing stage")
	case r.Year < 0:
		return errors.New("invalid year")
	}
	return nil
}

// RunsHandler handles run submission and status requests.
type RunsHandler struct {
	deps RunDependencies
}

// NewRunsHandler creates a new runs handler.
func NewRunsHandler(deps RunDependencies) *RunsHandler {
	return &RunsHandler{deps: deps}
}

// HandleSubmit handles POST /runs requests.
func (h *RunsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_run"
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFailure(w, wrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeFailure(w, wrapKind(op, ErrBadRequest, err))
		return
	}

	stage := model.Stage(strings.ToLower(strings.TrimSpace(req.Stage)))
	run, err := h.deps.Submit(r.Context(), stage, req.Year, req.NewOnly)
	if err != nil {
		writeFailure(w, err)
		return
	}
	w.Header().Set("Location", "/runs/"+run.ID)
	writeJSON(w, http.StatusAccepted, run)
}

// HandleGet handles GET /runs/{id} requests.
func (h *RunsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	run, err := h.deps.Run(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}
