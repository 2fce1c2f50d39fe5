package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/piste/internal/reports"
)

// ReportsHandler handles the read-only report endpoints.
type ReportsHandler struct {
	deps ReportDependencies
}

// NewReportsHandler creates a new reports handler.
func NewReportsHandler(deps ReportDependencies) *ReportsHandler {
	return &ReportsHandler{deps: deps}
}

// HandleTalentCards handles GET /talentcards?year= requests.
func (h *ReportsHandler) HandleTalentCards(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r, true)
	if err != nil {
		writeFailure(w, err)
		return
	}
	sum, err := h.deps.TalentCards(r.Context(), year)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// HandleSelections handles GET /selections?year=&flag= requests.
func (h *ReportsHandler) HandleSelections(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r, true)
	if err != nil {
		writeFailure(w, err)
		return
	}
	list, err := h.deps.Selections(r.Context(), year, r.URL.Query().Get("flag"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// HandleCompare handles GET /compare?first_name=&last_name=&competition=&big_year=&year= requests.
func (h *ReportsHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	const op = "api.compare"
	q := r.URL.Query()
	year, err := queryYear(r, true)
	if err != nil {
		writeFailure(w, err)
		return
	}
	bigYear, err := strconv.Atoi(strings.TrimSpace(q.Get("big_year")))
	if err != nil {
		writeFailure(w, wrapKind(op, ErrBadRequest, err))
		return
	}
	rows, err := h.deps.Compare(r.Context(), reports.CompareQuery{
		FirstName:   strings.TrimSpace(q.Get("first_name")),
		LastName:    strings.TrimSpace(q.Get("last_name")),
		Competition: strings.TrimSpace(q.Get("competition")),
		BigYear:     bigYear,
		Year:        year,
	})
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
