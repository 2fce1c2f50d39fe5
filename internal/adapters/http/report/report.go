// Package report serves the per-year talent card summary page.
package report

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/okian/piste/internal/domain/numeric"
	"github.com/okian/piste/internal/reports"
	"github.com/okian/piste/pkg/logger"
)

// Source provides the talent card summary of a year.
type Source interface {
	TalentCards(ctx context.Context, year int) (*reports.TalentCardSummary, error)
}

// Register attaches GET /report?year= to mux.
func Register(_ context.Context, mux *http.ServeMux, src Source) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("GET /report", func(w http.ResponseWriter, r *http.Request) {
		year, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get("year")))
		if err != nil || year <= 0 {
			http.Error(w, "year is required", http.StatusBadRequest)
			return
		}
		sum, err := src.TalentCards(r.Context(), year)
		if err != nil {
			logger.Get().Error(r.Context(), "report failed", logger.Int("year", year), logger.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		templ.Handler(Page(sum)).ServeHTTP(w, r)
	})
}

// Page renders the summary as a standalone HTML document.
func Page(sum *reports.TalentCardSummary) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.raw(`<!doctype html><html><head><meta charset="utf-8"><title>`)
		p.text(fmt.Sprintf("Talent cards %d", sum.Year))
		p.raw(`</title><style>body{font-family:sans-serif;margin:2rem}table{border-collapse:collapse}` +
			`td,th{border:1px solid #ccc;padding:.3rem .6rem;text-align:left}` +
			`.National{background:#d4edda}.Regional{background:#fff3cd}</style></head><body>`)
		p.raw(`<h1>`)
		p.text(fmt.Sprintf("Talent cards %d", sum.Year))
		p.raw(`</h1>`)
		if err := Counts(sum.Counts).Render(ctx, w); err != nil {
			return err
		}
		if err := Table(sum.Rows).Render(ctx, w); err != nil {
			return err
		}
		p.raw(`</body></html>`)
		return p.err
	})
}

// Counts renders the number of records per card.
func Counts(counts map[string]int) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := &printer{w: w}
		p.raw(`<ul class="counts">`)
		for _, card := range []string{"National", "Regional", "noCard"} {
			p.raw(`<li>`)
			p.text(fmt.Sprintf("%s: %d", card, counts[card]))
			p.raw(`</li>`)
		}
		p.raw(`</ul>`)
		return p.err
	})
}

// Table renders one row per SOC record.
func Table(rows []reports.TalentCardRecord) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := &printer{w: w}
		if len(rows) == 0 {
			p.raw(`<p>No records for this year.</p>`)
			return p.err
		}
		p.raw(`<table><thead><tr><th>Name</th><th>Age</th><th>Category</th><th>Total</th>` +
			`<th>Min regional</th><th>Min national</th><th>Card</th></tr></thead><tbody>`)
		for _, r := range rows {
			p.raw(`<tr class="`)
			p.text(r.TalentCard)
			p.raw(`"><td>`)
			p.text(strings.TrimSpace(r.FirstName + " " + r.LastName))
			p.raw(`</td><td>`)
			p.text(strconv.Itoa(r.Age))
			p.raw(`</td><td>`)
			p.text(r.Category)
			p.raw(`</td><td>`)
			if r.Total != nil {
				p.text(numeric.Format(*r.Total))
			}
			p.raw(`</td><td>`)
			p.text(r.MinRegio)
			p.raw(`</td><td>`)
			p.text(r.MinNation)
			p.raw(`</td><td>`)
			p.text(r.TalentCard)
			p.raw(`</td></tr>`)
		}
		p.raw(`</tbody></table>`)
		return p.err
	})
}

// printer keeps the first write error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *printer) text(s string) { p.raw(templ.EscapeString(s)) }
