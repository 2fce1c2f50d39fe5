package selection_test

import (
	"testing"
	"time"

	"github.com/okian/piste/internal/domain/model"
	"github.com/okian/piste/internal/domain/reference"
	"github.com/okian/piste/internal/domain/selection"
	. "github.com/smartystreets/goconvey/convey"
)

func f(v float64) *float64 { return &v }

func tables() *reference.Tables {
	t := reference.New(nil, nil)
	for _, th := range []model.SelectionThreshold{
		{Tier: model.TierRegional, Sex: "Female", Discipline: "3m synchro", Category: "Jugend D", Points: f(100)},
		{Tier: model.TierNational, Sex: "Female", Discipline: "3m synchro", Category: "Jugend D", Points: f(120)},
		{Tier: model.TierJEM, Sex: "Female", Discipline: "3m synchro", Category: "Jugend C", Points: f(100)},
		{Tier: model.TierRegional, Sex: "Female", Discipline: "1m", Category: "Jugend B", Points: f(200)},
		{Tier: model.TierJEM, Sex: "Female", Discipline: "1m", Category: "Jugend B", Points: f(300)},
		{Tier: model.TierEM, Sex: "Female", Discipline: "1m", Category: "Jugend B", Points: f(100)},
		{Tier: model.TierWM, Sex: "Female", Discipline: "1m", Category: "Jugend B", Points: nil},
	} {
		t.AddThreshold(th)
	}
	t.AddDives(model.AgeDives{Sex: "female", Category: "jugend b", Discipline: "1M", Dives: f(8)})
	return t
}

func competition(tiers ...model.Tier) model.Competition {
	c := model.Competition{Name: "Cup", Qualifies: map[model.Tier]bool{}}
	for _, t := range tiers {
		c.Qualifies[t] = true
	}
	return c
}

func TestEvaluate(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 30, 0, 0, time.UTC)
	e := selection.NewEvaluator()
	tb := tables()

	Convey("Given a Jugend D synchro result at a regional-qualifying competition", t, func() {
		r := model.CompetitionResult{Sex: "Female", Category: " jugend d", Discipline: "3m Synchro", Points: f(95)}
		ev := e.Evaluate(r, competition(model.TierRegional, model.TierNational), true, tb, now)

		Convey("Then 95% of the threshold does not earn the regional team flag", func() {
			So(ev.SynchroExcluded, ShouldBeTrue)
			So(*ev.Tier(model.TierRegional).Percent, ShouldEqual, 95.0)
			So(ev.Tier(model.TierRegional).Status, ShouldBeFalse)
			So(ev.RegionalTeam, ShouldBeFalse)
		})

		Convey("Then even meeting the threshold does not qualify", func() {
			ev := e.Evaluate(model.CompetitionResult{Sex: "Female", Category: "Jugend D", Discipline: "3m synchro", Points: f(130)},
				competition(model.TierRegional, model.TierNational), true, tb, now)
			So(ev.Tier(model.TierRegional).Status, ShouldBeFalse)
			So(ev.Tier(model.TierNational).Status, ShouldBeFalse)
		})
	})

	Convey("Given a Jugend C synchro result at a JEM-qualifying competition", t, func() {
		r := model.CompetitionResult{Sex: "Female", Category: "Jugend C", Discipline: "3m synchro", Points: f(95)}
		ev := e.Evaluate(r, competition(model.TierJEM), true, tb, now)

		Convey("Then 95% of the JEM threshold still earns the national team flag", func() {
			So(ev.SynchroExcluded, ShouldBeTrue)
			So(ev.Tier(model.TierJEM).Qualifying, ShouldBeTrue)
			So(*ev.Tier(model.TierJEM).Percent, ShouldEqual, 95.0)
			So(ev.NationalTeam, ShouldBeTrue)
		})
	})

	Convey("Given a Jugend B 1m result", t, func() {
		r := model.CompetitionResult{Sex: "female", Category: "Jugend B", Discipline: "1m", Points: f(280)}

		Convey("When the competition qualifies regionally and for the JEM", func() {
			ev := e.Evaluate(r, competition(model.TierRegional, model.TierJEM), true, tb, now)

			Convey("Then statuses and percentages follow the thresholds", func() {
				So(ev.Tier(model.TierRegional).Status, ShouldBeTrue)
				So(*ev.Tier(model.TierRegional).Percent, ShouldEqual, 140.0)
				So(ev.Tier(model.TierJEM).Status, ShouldBeFalse)
				So(*ev.Tier(model.TierJEM).Percent, ShouldEqual, 93.3)
				So(ev.RegionalTeam, ShouldBeTrue)
				So(ev.NationalTeam, ShouldBeTrue)
				So(*ev.AveragePoints, ShouldEqual, 35)
			})

			Convey("Then the percentage of a non-qualifying tier is still informational", func() {
				em := ev.Tier(model.TierEM)
				So(em.Qualifying, ShouldBeFalse)
				So(em.Status, ShouldBeFalse)
				So(*em.Percent, ShouldEqual, 280.0)
			})

			Convey("Then a tier without a usable threshold stays no with no percentage", func() {
				So(ev.Tier(model.TierWM).Percent, ShouldBeNil)
				So(ev.Tier(model.TierNational).Percent, ShouldBeNil)
				So(ev.Tier(model.TierNational).Status, ShouldBeFalse)
			})

			Convey("Then the written row carries every column", func() {
				row := ev.Row()
				So(row["Regional"], ShouldEqual, "yes")
				So(row["JEM"], ShouldEqual, "no")
				So(row["JEM%"], ShouldEqual, 93.3)
				So(row["WM%"], ShouldBeNil)
				So(row["NationalTeam"], ShouldEqual, "yes")
				So(row["timestamp"], ShouldEqual, "2025-05-01 12:30:00")
			})
		})

		Convey("When the high percentage tier is not marked as qualifying", func() {
			ev := e.Evaluate(r, competition(model.TierRegional), true, tb, now)

			Convey("Then the national team flag is not set", func() {
				So(ev.NationalTeam, ShouldBeFalse)
			})
		})

		Convey("When the competition is unknown", func() {
			ev := e.Evaluate(r, model.Competition{}, false, tb, now)
			So(ev.RegionalTeam, ShouldBeFalse)
			So(ev.Tier(model.TierRegional).Status, ShouldBeFalse)
			So(*ev.Tier(model.TierRegional).Percent, ShouldEqual, 140.0)
		})
	})

	Convey("Given the reference percentage boundary", t, func() {
		e2 := selection.NewEvaluator(selection.WithRegionalTeamPercent(90))
		t2 := reference.New(nil, nil)
		t2.AddThreshold(model.SelectionThreshold{Tier: model.TierRegional, Sex: "Male", Discipline: "1m", Category: "Elite", Points: f(100)})
		r := model.CompetitionResult{Sex: "Male", Category: "Elite", Discipline: "1m", Points: f(90)}

		Convey("Then 90 of 100 is 90.0 percent and qualifies only with the flag", func() {
			ev := e2.Evaluate(r, competition(model.TierRegional), true, t2, now)
			So(*ev.Tier(model.TierRegional).Percent, ShouldEqual, 90.0)
			So(ev.Tier(model.TierRegional).Status, ShouldBeFalse)
			So(ev.RegionalTeam, ShouldBeTrue)

			ev = e2.Evaluate(r, competition(), true, t2, now)
			So(ev.RegionalTeam, ShouldBeFalse)
		})

		Convey("Then meeting the threshold exactly qualifies", func() {
			r.Points = f(100)
			ev := e2.Evaluate(r, competition(model.TierRegional), true, t2, now)
			So(ev.Tier(model.TierRegional).Status, ShouldBeTrue)
		})
	})

	Convey("Given the synchro rule itself", t, func() {
		So(e.SynchroExcluded("Jugend C", "platform synchro"), ShouldBeTrue)
		So(e.SynchroExcluded("Jugend B", "platform synchro"), ShouldBeFalse)
		So(e.SynchroExcluded("Jugend D", "platform"), ShouldBeFalse)
		custom := selection.NewEvaluator(selection.WithSynchroExcludedCategories("Jugend B"))
		So(custom.SynchroExcluded("Jugend D", "3m synchro"), ShouldBeFalse)
	})
}
