package scoring_test

import (
	"testing"

	"github.com/okian/piste/internal/domain/model"
	scoring "github.com/okian/piste/internal/domain/scoring"
	. "github.com/smartystreets/goconvey/convey"
)

func f(v float64) *float64 { return &v }

func jumpTable() []model.ScoreTableRow {
	return []model.ScoreTableRow{
		{Discipline: "JumpHeight", Category: "Jugend C", Sex: "Female", Min: f(40), Max: f(44.99), Points: 20},
		{Discipline: "JumpHeight", Category: "Jugend C", Sex: "Female", Min: f(30), Max: f(34.99), Points: 10},
		{Discipline: "JumpHeight", Category: "Jugend C", Sex: "Female", Min: f(35), Max: f(39.99), Points: 15},
		{Discipline: "JumpHeight", Category: "Jugend C", Sex: "Female", Min: f(0), Max: f(29.99), Points: 0},
		{Discipline: "JumpHeight", Category: "Jugend C", Sex: "Male", Min: f(30), Max: f(60), Points: 99},
		{Discipline: "JumpHeight", Category: "Jugend C", Sex: "Female", Min: nil, Max: f(100), Points: 50},
	}
}

func TestEngineLookup(t *testing.T) {
	Convey("Given a non-overlapping score table", t, func() {
		e := scoring.NewEngine(jumpTable(), scoring.WithZeroPointDisciplines(model.DisciplineNumberOfDisc))

		Convey("When values fall inside a range", func() {
			Convey("Then every value inside a row returns that row's points", func() {
				for _, c := range []struct {
					raw  any
					want float64
				}{{30, 10}, {32.5, 10}, {34.99, 10}, {35, 15}, {"39.99", 15}, {40, 20}, {44.99, 20}} {
					r := e.Lookup("JumpHeight", c.raw, "Jugend C", "Female")
					So(r.Outcome, ShouldEqual, scoring.Value)
					So(r.Points(), ShouldEqual, c.want)
				}
			})
		})

		Convey("When values fall outside every range", func() {
			Convey("Then points are 0 with a NoMatch outcome", func() {
				for _, raw := range []any{45, 1000, -1, 34.995} {
					r := e.Lookup("JumpHeight", raw, "Jugend C", "Female")
					So(r.Outcome, ShouldEqual, scoring.NoMatch)
					So(r.Points(), ShouldEqual, 0)
				}
			})
		})

		Convey("When the row itself scores zero", func() {
			r := e.Lookup("JumpHeight", 12, "Jugend C", "Female")
			So(r.Outcome, ShouldEqual, scoring.Zero)
			So(r.Points(), ShouldEqual, 0)
		})

		Convey("When the raw value is the sentinel", func() {
			Convey("Then points are 0 for any discipline, category, sex or table", func() {
				for _, raw := range []any{"9999", " 9999 ", 9999, 9999.0} {
					So(e.Lookup("JumpHeight", raw, "Jugend C", "Female").Points(), ShouldEqual, 0)
					So(e.Lookup("JumpHeight", raw, "Jugend C", "Female").Outcome, ShouldEqual, scoring.Zero)
					So(e.LookupAny("Anything", raw).Points(), ShouldEqual, 0)
				}
				So(scoring.NewEngine(nil).Lookup("x", "9999", "y", "z").Points(), ShouldEqual, 0)
			})
		})

		Convey("When the raw value is blank or malformed", func() {
			for _, raw := range []any{"", "  ", "abc", nil, "32,5", "32%"} {
				r := e.Lookup("JumpHeight", raw, "Jugend C", "Female")
				So(r.Outcome, ShouldEqual, scoring.Missing)
				So(r.Points(), ShouldEqual, 0)
			}
		})

		Convey("When category or sex is missing", func() {
			So(e.Lookup("JumpHeight", 32, "", "Female").Outcome, ShouldEqual, scoring.Missing)
			So(e.Lookup("JumpHeight", 32, "Jugend C", " ").Outcome, ShouldEqual, scoring.Missing)
		})

		Convey("When category and sex are inconsistently cased", func() {
			r := e.Lookup("JumpHeight", 32, " Jugend C ", "female")
			So(r.Points(), ShouldEqual, 10)
			So(e.Lookup("JumpHeight", 32, "Jugend C", "MALE").Points(), ShouldEqual, 99)
		})

		Convey("When the discipline always scores zero", func() {
			r := e.Lookup(model.DisciplineNumberOfDisc, 8, "Jugend C", "Female")
			So(r.Outcome, ShouldEqual, scoring.Zero)
		})

		Convey("Then rows with an unparsable bound are skipped", func() {
			So(e.Lookup("JumpHeight", 70, "Jugend C", "Female").Outcome, ShouldEqual, scoring.NoMatch)
		})
	})

	Convey("Given overlapping ranges", t, func() {
		e := scoring.NewEngine([]model.ScoreTableRow{
			{Discipline: "Split", Category: "Elite", Sex: "Male", Min: f(10), Max: f(30), Points: 5},
			{Discipline: "Split", Category: "Elite", Sex: "Male", Min: f(0), Max: f(20), Points: 3},
			{Discipline: "Split", Category: "Elite", Sex: "Male", Min: f(10), Max: f(12), Points: 9},
		})

		Convey("Then a decimal comma is not a number", func() {
			r := e.Lookup("Split", "1,5", "Elite", "male")
			So(r.Outcome, ShouldEqual, scoring.Missing)
			So(r.Points(), ShouldEqual, 0)
		})

		Convey("Then the first row after sorting by result_min wins, not the tightest", func() {
			So(e.Lookup("Split", 11, "Elite", "Male").Points(), ShouldEqual, 3)
			So(e.Lookup("Split", 25, "Elite", "Male").Points(), ShouldEqual, 5)
		})

		Convey("Then equal minimums keep table order", func() {
			e2 := scoring.NewEngine([]model.ScoreTableRow{
				{Discipline: "Split", Category: "Elite", Sex: "Male", Min: f(10), Max: f(30), Points: 5},
				{Discipline: "Split", Category: "Elite", Sex: "Male", Min: f(10), Max: f(12), Points: 9},
			})
			So(e2.Lookup("Split", 11, "Elite", "Male").Points(), ShouldEqual, 5)
		})
	})

	Convey("Given an aggregate table without category or sex", t, func() {
		e := scoring.NewEngine([]model.ScoreTableRow{
			{Discipline: model.DisciplineAverage, Min: f(0), Max: f(4.99), Points: 0},
			{Discipline: model.DisciplineAverage, Min: f(5), Max: f(10), Points: 40},
		})
		So(e.LookupAny(model.DisciplineAverage, 7.25).Points(), ShouldEqual, 40)
		So(e.LookupAny(model.DisciplineAverage, 2).Outcome, ShouldEqual, scoring.Zero)
		So(e.LookupAny("", 2).Outcome, ShouldEqual, scoring.Missing)
		So(e.Groups(), ShouldEqual, 1)
	})

	Convey("Given outcome names", t, func() {
		So(scoring.Value.String(), ShouldEqual, "match")
		So(scoring.NoMatch.String(), ShouldEqual, "no_match")
		So(scoring.Outcome(42).String(), ShouldEqual, "unknown")
	})
}
