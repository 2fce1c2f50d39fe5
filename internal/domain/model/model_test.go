package model_test

import (
	"testing"

	"github.com/okian/piste/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRowAccessors(t *testing.T) {
	Convey("Given a loosely typed row", t, func() {
		r := model.Row{"a": " x ", "n": "12.5", "i": 2012.0, "flag": "Yes", "b": true, "bad": "n/a"}

		So(r.String("a"), ShouldEqual, "x")
		So(r.String("i"), ShouldEqual, "2012")
		So(r.String("missing"), ShouldEqual, "")
		v, ok := r.Float("n")
		So(ok, ShouldBeTrue)
		So(v, ShouldEqual, 12.5)
		So(r.FloatPtr("bad"), ShouldBeNil)
		y, ok := r.Int("i")
		So(ok, ShouldBeTrue)
		So(y, ShouldEqual, 2012)
		So(r.Yes("flag"), ShouldBeTrue)
		So(r.Yes("b"), ShouldBeTrue)
		So(r.Yes("a"), ShouldBeFalse)

		c := r.Clone()
		c["a"] = "changed"
		So(r.String("a"), ShouldEqual, "x")
	})
}

func TestAthlete(t *testing.T) {
	Convey("Given an athlete row without a stored vintage", t, func() {
		a := model.AthleteFromRow(model.Row{
			"first_name": "Lena", "last_name": "Roth", "birthdate": "2012-08-14", "sex": "female",
		})

		Convey("Then derived fields come from the birthdate", func() {
			So(a.Vintage, ShouldEqual, 2012)
			q, ok := a.BirthQuarter()
			So(ok, ShouldBeTrue)
			So(q, ShouldEqual, 3)
			age, ok := a.AgeIn(2025)
			So(ok, ShouldBeTrue)
			So(age, ShouldEqual, 13)
			So(a.Row()["full_name"], ShouldEqual, "Lena Roth")
		})
	})

	Convey("Given a German formatted birthdate", t, func() {
		v, ok := model.VintageOf("03.02.2011")
		So(ok, ShouldBeTrue)
		So(v, ShouldEqual, 2011)
		_, ok = model.VintageOf("someday")
		So(ok, ShouldBeFalse)
	})
}

func TestCompetitionDecoding(t *testing.T) {
	Convey("Given a competition row", t, func() {
		c := model.CompetitionFromRow(model.Row{
			"name": "Swiss Open", "PisteYear": "2025", "qual-Regional": "yes", "qual-JEM": "no", "qual-WM": true,
		})
		So(c.PisteYear, ShouldEqual, 2025)
		So(c.Qualifies[model.TierRegional], ShouldBeTrue)
		So(c.Qualifies[model.TierJEM], ShouldBeFalse)
		So(c.Qualifies[model.TierWM], ShouldBeTrue)
		So(model.TierEM.International(), ShouldBeTrue)
		So(model.TierRegional.International(), ShouldBeFalse)
		So(model.RefPercentColumn(2025), ShouldEqual, "PisteRefPoints2025%")
	})
}

func TestReferenceDecoding(t *testing.T) {
	Convey("Given a reference points row", t, func() {
		ref := model.RefCompPointsFromRow(model.Row{
			"Discipline": "1m", "sex": "female", "12": "250", "13": "", "quality12": 40.5, "quality": "x",
		})
		So(ref.Points[12], ShouldEqual, 250)
		_, ok := ref.Points[13]
		So(ok, ShouldBeFalse)
		So(ref.Quality[12], ShouldEqual, 40.5)
	})

	Convey("Given a training reference row", t, func() {
		ref := model.TrainingReferenceFromRow(model.Row{"age": 12, "4": 1, "10": "3", "note": "x"})
		So(ref.Age, ShouldEqual, 12)
		So(ref.Values[10], ShouldEqual, 3)
		So(len(ref.Values), ShouldEqual, 2)
	})
}

func TestTrainingPerformance(t *testing.T) {
	Convey("Given survey answers", t, func() {
		row := model.Row{"athlete_id": "a1", "pisteyear": 2025}
		row["q1"], row["q6"], row["q2"], row["q10"] = 4.5, 3, 2, 5
		tp := model.TrainingPerformanceFromRow(row)

		Convey("Then resilience is q1+q6 and performance the rest", func() {
			So(*tp.Resilience(), ShouldEqual, 7.5)
			So(*tp.Performance(), ShouldEqual, 7)
		})
	})

	Convey("Given no answers", t, func() {
		tp := model.TrainingPerformanceFromRow(model.Row{})
		So(tp.Resilience(), ShouldBeNil)
		So(tp.Performance(), ShouldBeNil)
	})
}

func TestRefCompResultFlattening(t *testing.T) {
	Convey("Given a top-three aggregate", t, func() {
		p := 300.0
		rc := model.RefCompResult{
			FirstName: "Lena", LastName: "Roth", Year: 2025, Age: 13,
			Entries: []model.RefEntry{{Competition: "A", Discipline: "1m", Points: &p}, {Competition: "B", Discipline: "3m"}},
		}
		back := model.RefCompResultFromRow(rc.Row())
		So(len(back.Entries), ShouldEqual, 2)
		So(*back.Entries[0].Points, ShouldEqual, 300)
		So(back.Year, ShouldEqual, 2025)
		So(rc.Key()["PisteYear"], ShouldEqual, 2025)
	})
}

func TestStages(t *testing.T) {
	Convey("Given stage names", t, func() {
		So(model.StageSoc.Valid(), ShouldBeTrue)
		So(model.Stage("bogus").Valid(), ShouldBeFalse)
		So(model.RunRequest{Stage: model.StagePiste, Year: 2025}.DedupeKey(), ShouldEqual, "piste:2025")
		So(model.RunRequest{Stage: model.StageCompetitions, Year: 2025}.DedupeKey(), ShouldEqual,
			model.RunRequest{Stage: model.StageCompetitions}.DedupeKey())
	})
}
