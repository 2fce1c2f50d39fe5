package api

import (
	"fmt"
	"net/http"

	"github.com/okian/piste/internal/adapters/tabular"
	"github.com/okian/piste/internal/importer"
	"github.com/okian/piste/pkg/logger"
)

// maxUploadBytes bounds an import body.
const maxUploadBytes = 32 << 20

type deleteResponse struct {
	ID             string `json:"id"`
	DeletedResults int    `json:"deleted_results"`
}

// TransferHandler handles imports, exports and athlete deletion.
type TransferHandler struct {
	deps TransferDependencies
}

// NewTransferHandler creates a new transfer handler.
func NewTransferHandler(deps TransferDependencies) *TransferHandler {
	return &TransferHandler{deps: deps}
}

// HandleImport handles POST /import/{kind}?format=csv|xlsx requests. The
// body is the file itself.
func (h *TransferHandler) HandleImport(w http.ResponseWriter, r *http.Request) {
	const op = "api.import"
	kind, err := importer.ParseKind(r.PathValue("kind"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	format, err := tabular.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	rows, err := tabular.Read(http.MaxBytesReader(w, r.Body, maxUploadBytes), format)
	if err != nil {
		writeFailure(w, wrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := h.deps.Import(r.Context(), kind, rows)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleExport handles GET /export/{kind}?year=&format=csv|xlsx requests.
func (h *TransferHandler) HandleExport(w http.ResponseWriter, r *http.Request) {
	year, err := queryYear(r, false)
	if err != nil {
		writeFailure(w, err)
		return
	}
	format, err := tabular.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	kind := r.PathValue("kind")
	tbl, err := h.deps.Export(r.Context(), kind, year)
	if err != nil {
		writeFailure(w, err)
		return
	}

	name := kind
	if year > 0 {
		name = fmt.Sprintf("%s-%d", kind, year)
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+"."+string(format)))
	w.WriteHeader(http.StatusOK)
	if err := tabular.Write(w, format, tbl.Columns, tbl.Rows); err != nil {
		// Headers are already sent, so the client only sees a truncated body.
		logger.Get().Error(r.Context(), "export write failed",
			logger.String("kind", kind), logger.Int("year", year), logger.Error(err))
	}
}

// HandleDeleteAthlete handles DELETE /athletes/{id} requests.
func (h *TransferHandler) HandleDeleteAthlete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	n, err := h.deps.DeleteAthlete(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deleteResponse{ID: id, DeletedResults: n})
}
