package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/okian/piste/internal/adapters/http/api"
	"github.com/okian/piste/internal/adapters/mq/queue"
	service "github.com/okian/piste/internal/app"
	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/domain/types"
	"github.com/okian/piste/internal/importer"
	"github.com/okian/piste/internal/pipeline"
	"github.com/okian/piste/internal/reports"
	"github.com/okian/piste/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type mockDeps struct {
	submitErr  error
	submitted  []model.Stage
	runs       map[string]types.Run
	imported   []model.Row
	importKind importer.Kind
	table      *reports.Table
	deleted    string
	compareQ   reports.CompareQuery
}

func (m *mockDeps) Submit(_ context.Context, stage model.Stage, year int, newOnly bool) (types.Run, error) {
	if m.submitErr != nil {
		return types.Run{}, m.submitErr
	}
	m.submitted = append(m.submitted, stage)
	return types.Run{ID: "run-1", Stage: string(stage), Year: year, NewOnly: newOnly, State: types.RunQueued, Submitted: time.Unix(0, 0).UTC()}, nil
}

func (m *mockDeps) Run(_ context.Context, id string) (types.Run, error) {
	r, ok := m.runs[id]
	if !ok {
		return types.Run{}, fmt.Errorf("%w: %s", service.ErrRunNotFound, id)
	}
	return r, nil
}

func (m *mockDeps) TalentCards(_ context.Context, year int) (*reports.TalentCardSummary, error) {
	total := 78.0
	return &reports.TalentCardSummary{
		Year:   year,
		Counts: map[string]int{"National": 1},
		Rows:   []reports.TalentCardRecord{{FirstName: "Anna", LastName: "Muster", Total: &total, TalentCard: "National"}},
	}, nil
}

func (m *mockDeps) Selections(_ context.Context, year int, flag string) (*reports.SelectionList, error) {
	f, err := reports.ParseFlag(flag)
	if err != nil {
		return nil, err
	}
	return &reports.SelectionList{Year: year, Flag: f, Persons: []reports.Person{{FirstName: "Anna", LastName: "Muster"}}}, nil
}

func (m *mockDeps) Compare(_ context.Context, q reports.CompareQuery) ([]reports.Comparison, error) {
	m.compareQ = q
	return []reports.Comparison{}, nil
}

func (m *mockDeps) Import(_ context.Context, kind importer.Kind, rows []model.Row) (*importer.Result, error) {
	m.importKind, m.imported = kind, rows
	return &importer.Result{Kind: kind, Stored: len(rows)}, nil
}

func (m *mockDeps) Export(_ context.Context, kind string, _ int) (*reports.Table, error) {
	if kind != reports.ExportSoc {
		return nil, fmt.Errorf("%w: %q", reports.ErrUnknownExport, kind)
	}
	return m.table, nil
}

func (m *mockDeps) DeleteAthlete(_ context.Context, id string) (int, error) {
	if id != "a1" {
		return 0, fmt.Errorf("%w: athlete %s", importer.ErrNotFound, id)
	}
	m.deleted = id
	return 3, nil
}

type stats struct{}

func (stats) GetStats() map[string]any { return map[string]any{"started": true} }

func newMux(deps *mockDeps) *http.ServeMux {
	mux := http.NewServeMux()
	api.NewServer(deps, stats{}).Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, target string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

// brokenWriter accepts headers but fails every body write.
type brokenWriter struct {
	*httptest.ResponseRecorder
}

func (w *brokenWriter) Write([]byte) (int, error) { return 0, errors.New("connection reset") }

func decode(rec *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	So(json.Unmarshal(rec.Body.Bytes(), &out), ShouldBeNil)
	return out
}

func TestRuns(t *testing.T) {
	Convey("Given the API over mock dependencies", t, func() {
		deps := &mockDeps{runs: map[string]types.Run{"r1": {ID: "r1", State: types.RunDone}}}
		mux := newMux(deps)

		Convey("POST /runs queues a run", func() {
			rec := do(mux, http.MethodPost, "/runs", []byte(`{"stage":"Full","year":2025}`))
			So(rec.Code, ShouldEqual, http.StatusAccepted)
			So(rec.Header().Get("Location"), ShouldEqual, "/runs/run-1")
			So(deps.submitted, ShouldResemble, []model.Stage{model.StageFull})
			So(decode(rec)["state"], ShouldEqual, "queued")
		})

		Convey("POST /runs rejects malformed bodies", func() {
			rec := do(mux, http.MethodPost, "/runs", []byte(`{`))
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			rec = do(mux, http.MethodPost, "/runs", []byte(`{"year":2025}`))
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
			So(decode(rec)["code"], ShouldEqual, "bad_request")
		})

		Convey("Submit errors map to statuses", func() {
			cases := []struct {
				err    error
				status int
			}{
				{fmt.Errorf("%w: x", pipeline.ErrUnknownStage), http.StatusBadRequest},
				{fmt.Errorf("%w: piste:2025", service.ErrRunInFlight), http.StatusConflict},
				{queue.ErrFull, http.StatusTooManyRequests},
				{queue.ErrClosed, http.StatusServiceUnavailable},
				{service.ErrNotStarted, http.StatusServiceUnavailable},
				{fmt.Errorf("boom"), http.StatusInternalServerError},
			}
			for _, c := range cases {
				deps.submitErr = c.err
				rec := do(mux, http.MethodPost, "/runs", []byte(`{"stage":"piste","year":2025}`))
				So(rec.Code, ShouldEqual, c.status)
			}
		})

		Convey("GET /runs/{id} returns the run or 404", func() {
			rec := do(mux, http.MethodGet, "/runs/r1", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode(rec)["state"], ShouldEqual, "done")
			rec = do(mux, http.MethodGet, "/runs/nope", nil)
			So(rec.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Wrong methods are refused by the router", func() {
			rec := do(mux, http.MethodGet, "/runs", nil)
			So(rec.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestReportsAndTransfer(t *testing.T) {
	Convey("Given the API over mock dependencies", t, func() {
		deps := &mockDeps{table: &reports.Table{
			Columns: []string{"first_name", "totalpoints"},
			Rows:    []model.Row{{"first_name": "Anna", "totalpoints": 78.5}},
		}}
		mux := newMux(deps)

		Convey("GET /talentcards needs a year", func() {
			So(do(mux, http.MethodGet, "/talentcards", nil).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/talentcards?year=abc", nil).Code, ShouldEqual, http.StatusBadRequest)
			rec := do(mux, http.MethodGet, "/talentcards?year=2025", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode(rec)["year"], ShouldEqual, 2025.0)
		})

		Convey("GET /selections validates the flag", func() {
			So(do(mux, http.MethodGet, "/selections?year=2025&flag=JEM", nil).Code, ShouldEqual, http.StatusOK)
			So(do(mux, http.MethodGet, "/selections?year=2025&flag=Gold", nil).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("GET /compare passes the query through", func() {
			rec := do(mux, http.MethodGet, "/compare?first_name=Anna&last_name=Muster&competition=EYOF&big_year=2023&year=2025", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(deps.compareQ, ShouldResemble, reports.CompareQuery{
				FirstName: "Anna", LastName: "Muster", Competition: "EYOF", BigYear: 2023, Year: 2025,
			})
			So(do(mux, http.MethodGet, "/compare?year=2025&big_year=x", nil).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("POST /import/{kind} parses the uploaded CSV", func() {
			body := []byte("first_name,last_name,pisteyear,Split\nAnna,Muster,2025,60\n")
			rec := do(mux, http.MethodPost, "/import/pisteresults?format=csv", body)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(deps.importKind, ShouldEqual, importer.KindPisteResults)
			So(deps.imported, ShouldHaveLength, 1)
			So(deps.imported[0]["Split"], ShouldEqual, "60")

			So(do(mux, http.MethodPost, "/import/medals", body).Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodPost, "/import/athletes?format=pdf", body).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("GET /export/{kind} streams a CSV attachment", func() {
			rec := do(mux, http.MethodGet, "/export/soc?year=2025", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get("Content-Type"), ShouldStartWith, "text/csv")
			So(rec.Header().Get("Content-Disposition"), ShouldEqual, `attachment; filename="soc-2025.csv"`)
			So(strings.TrimPrefix(rec.Body.String(), "\ufeff"), ShouldStartWith, "first_name,totalpoints\nAnna,78.5")

			So(do(mux, http.MethodGet, "/export/medals", nil).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("GET /export/{kind} logs a body that cannot be written", func() {
			var buf bytes.Buffer
			So(logger.Init(logger.WithFormat("json"), logger.WithOutput(&buf)), ShouldBeNil)
			defer func() { So(logger.Init(logger.WithOutput(&bytes.Buffer{})), ShouldBeNil) }()

			w := &brokenWriter{ResponseRecorder: httptest.NewRecorder()}
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/export/soc?year=2025", nil))
			So(w.Code, ShouldEqual, http.StatusOK)
			So(buf.String(), ShouldContainSubstring, "export write failed")
			So(buf.String(), ShouldContainSubstring, "connection reset")
		})

		Convey("DELETE /athletes/{id} cascades or reports 404", func() {
			rec := do(mux, http.MethodDelete, "/athletes/a1", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode(rec)["deleted_results"], ShouldEqual, 3.0)
			So(do(mux, http.MethodDelete, "/athletes/zz", nil).Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("GET /stats and /healthz respond", func() {
			rec := do(mux, http.MethodGet, "/stats", nil)
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(decode(rec)["started"], ShouldBeTrue)
			So(do(mux, http.MethodGet, "/healthz", nil).Code, ShouldEqual, http.StatusOK)
		})
	})
}
