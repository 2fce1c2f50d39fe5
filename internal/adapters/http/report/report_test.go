package report_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/okian/piste/internal/adapters/http/report"
	"github.com/okian/piste/internal/reports"
	"github.com/okian/piste/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type source struct{ err error }

func (s source) TalentCards(_ context.Context, year int) (*reports.TalentCardSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	total := 78.5
	return &reports.TalentCardSummary{
		Year:   year,
		Counts: map[string]int{"National": 1, "Regional": 0, "noCard": 0},
		Rows: []reports.TalentCardRecord{{
			FirstName: "Anna", LastName: "<Muster>", Age: 13, Category: "Jugend C",
			Total: &total, MinRegio: "Yes", MinNation: "Yes", TalentCard: "National",
		}},
	}, nil
}

func TestReport(t *testing.T) {
	_ = logger.Init(logger.WithOutput(io.Discard))

	Convey("Given the report page", t, func() {
		Convey("Page escapes names and prints totals", func() {
			sum, _ := source{}.TalentCards(context.Background(), 2025)
			var buf bytes.Buffer
			So(report.Page(sum).Render(context.Background(), &buf), ShouldBeNil)
			html := buf.String()
			So(html, ShouldContainSubstring, "<h1>Talent cards 2025</h1>")
			So(html, ShouldContainSubstring, "Anna &lt;Muster&gt;")
			So(html, ShouldContainSubstring, "<td>78.5</td>")
			So(html, ShouldContainSubstring, "<li>National: 1</li>")
		})

		Convey("An empty year renders a notice", func() {
			var buf bytes.Buffer
			So(report.Table(nil).Render(context.Background(), &buf), ShouldBeNil)
			So(buf.String(), ShouldContainSubstring, "No records")
		})

		Convey("GET /report serves HTML and validates the year", func() {
			mux := http.NewServeMux()
			report.Register(context.Background(), mux, source{})

			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/report?year=2025", nil))
			So(rec.Code, ShouldEqual, http.StatusOK)
			So(rec.Header().Get("Content-Type"), ShouldStartWith, "text/html")

			rec = httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/report", nil))
			So(rec.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("Store failures become 500", func() {
			mux := http.NewServeMux()
			report.Register(context.Background(), mux, source{err: errors.New("down")})
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/report?year=2025", nil))
			So(rec.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}
