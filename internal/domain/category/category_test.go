package category_test

import (
	"testing"

	"github.com/okian/piste/internal/domain/category"
	"github.com/okian/piste/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestResolve(t *testing.T) {
	Convey("Given three youth bands", t, func() {
		bands := []model.AgeCategoryBand{
			{MinAge: 0, MaxAge: 12, Category: "Jugend D"},
			{MinAge: 13, MaxAge: 15, Category: "Jugend C"},
			{MinAge: 16, MaxAge: 99, Category: "Elite"},
		}

		Convey("When an athlete born 2013 is evaluated in 2025", func() {
			c, ok := category.Resolve(2013, 2025, bands)

			Convey("Then the category is Jugend D", func() {
				So(ok, ShouldBeTrue)
				So(c, ShouldEqual, "Jugend D")
			})
		})

		Convey("When an athlete born 2012 is evaluated in 2025", func() {
			c, _ := category.Resolve("2012", "2025", bands)

			Convey("Then the category is Jugend C", func() {
				So(c, ShouldEqual, "Jugend C")
			})
		})

		Convey("When the band edges are hit", func() {
			c, _ := category.ForAge(15, bands)
			So(c, ShouldEqual, "Jugend C")
			c, _ = category.ForAge(16, bands)
			So(c, ShouldEqual, "Elite")
		})

		Convey("When the birth year is not numeric", func() {
			c, ok := category.Resolve("unknown", 2025, bands)

			Convey("Then Unknown is returned without failing", func() {
				So(ok, ShouldBeFalse)
				So(c, ShouldEqual, category.Unknown)
			})
		})

		Convey("When no band covers the age", func() {
			c, ok := category.Resolve(2030, 2025, bands)
			So(ok, ShouldBeFalse)
			So(c, ShouldEqual, category.Unknown)
		})

		Convey("Then the bands validate cleanly", func() {
			So(category.Validate(bands), ShouldBeEmpty)
		})
	})

	Convey("Given overlapping bands", t, func() {
		bands := []model.AgeCategoryBand{
			{MinAge: 10, MaxAge: 14, Category: "Jugend B"},
			{MinAge: 12, MaxAge: 15, Category: "Jugend A"},
		}

		Convey("Then the first matching band wins", func() {
			c, _ := category.ForAge(13, bands)
			So(c, ShouldEqual, "Jugend B")
		})

		Convey("Then validation reports overlaps and gaps", func() {
			issues := category.Validate(bands)
			So(issues, ShouldNotBeEmpty)
			var overlap *category.Issue
			for i := range issues {
				if issues[i].Age == 12 {
					overlap = &issues[i]
				}
			}
			So(overlap, ShouldNotBeNil)
			So(overlap.Matches, ShouldResemble, []string{"Jugend B", "Jugend A"})
			So(issues[0].String(), ShouldEqual, "age 0 matches no band")
		})
	})
}
