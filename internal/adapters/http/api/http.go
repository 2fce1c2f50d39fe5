// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/domain/types"
	"github.com/okian/piste/internal/importer"
	"github.com/okian/piste/internal/reports"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RunDependencies
	ReportDependencies
	TransferDependencies
}

// RunDependencies submit and inspect recomputation runs.
type RunDependencies interface {
	Submit(ctx context.Context, stage model.Stage, year int, newOnly bool) (types.Run, error)
	Run(ctx context.Context, id string) (types.Run, error)
}

// ReportDependencies answer read-only report queries.
type ReportDependencies interface {
	TalentCards(ctx context.Context, year int) (*reports.TalentCardSummary, error)
	Selections(ctx context.Context, year int, flag string) (*reports.SelectionList, error)
	Compare(ctx context.Context, q reports.CompareQuery) ([]reports.Comparison, error)
}

// TransferDependencies move tables in and out of the store.
type TransferDependencies interface {
	Import(ctx context.Context, kind importer.Kind, rows []model.Row) (*importer.Result, error)
	Export(ctx context.Context, kind string, year int) (*reports.Table, error)
	DeleteAthlete(ctx context.Context, id string) (int, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	runsHandler     *RunsHandler
	reportsHandler  *ReportsHandler
	transferHandler *TransferHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		runsHandler:     NewRunsHandler(deps),
		reportsHandler:  NewReportsHandler(deps),
		transferHandler: NewTransferHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /runs", MetricsMiddleware(s.runsHandler.HandleSubmit, "runs"))
	mux.HandleFunc("GET /runs/{id}", MetricsMiddleware(s.runsHandler.HandleGet, "runs"))
	mux.HandleFunc("GET /talentcards", MetricsMiddleware(s.reportsHandler.HandleTalentCards, "talentcards"))
	mux.HandleFunc("GET /selections", MetricsMiddleware(s.reportsHandler.HandleSelections, "selections"))
	mux.HandleFunc("GET /compare", MetricsMiddleware(s.reportsHandler.HandleCompare, "compare"))
	mux.HandleFunc("POST /import/{kind}", MetricsMiddleware(s.transferHandler.HandleImport, "import"))
	mux.HandleFunc("GET /export/{kind}", MetricsMiddleware(s.transferHandler.HandleExport, "export"))
	mux.HandleFunc("DELETE /athletes/{id}", MetricsMiddleware(s.transferHandler.HandleDeleteAthlete, "athletes"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure writes err with the status its kind maps to.
func writeFailure(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

// queryYear reads the year query parameter. Missing is 0 unless required.
func queryYear(r *http.Request, required bool) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("year"))
	if raw == "" {
		if required {
			return 0, fmt.Errorf("%w: missing year", ErrBadRequest)
		}
		return 0, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil || year <= 0 {
		return 0, fmt.Errorf("%w: invalid year %q", ErrBadRequest, raw)
	}
	return year, nil
}
