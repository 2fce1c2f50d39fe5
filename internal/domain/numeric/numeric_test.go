package numeric_test

import (
	"math"
	"testing"

	"github.com/okian/piste/internal/domain/numeric"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Given loosely typed values", t, func() {
		cases := []struct {
			in   any
			want float64
			ok   bool
		}{
			{12, 12, true},
			{int64(7), 7, true},
			{2.5, 2.5, true},
			{" 3.75 ", 3.75, true},
			{"4,5", 4.5, true},
			{"88.5%", 88.5, true},
			{"", 0, false},
			{"   ", 0, false},
			{"n/a", 0, false},
			{nil, 0, false},
			{math.NaN(), 0, false},
			{true, 0, false},
		}
		for _, c := range cases {
			got, ok := numeric.Parse(c.in)
			So(ok, ShouldEqual, c.ok)
			So(got, ShouldEqual, c.want)
		}
	})

	Convey("Given strict parsing of raw test values", t, func() {
		_, ok := numeric.Strict("4,5")
		So(ok, ShouldBeFalse)
		_, ok = numeric.Strict("88.5%")
		So(ok, ShouldBeFalse)
		v, ok := numeric.Strict(" 3.75 ")
		So(ok, ShouldBeTrue)
		So(v, ShouldEqual, 3.75)
		v, ok = numeric.Strict(12)
		So(ok, ShouldBeTrue)
		So(v, ShouldEqual, 12)
	})

	Convey("Given integral parsing", t, func() {
		v, ok := numeric.Int("2012.0")
		So(ok, ShouldBeTrue)
		So(v, ShouldEqual, 2012)
		_, ok = numeric.Int("2012.5")
		So(ok, ShouldBeFalse)
		So(numeric.Ptr("x"), ShouldBeNil)
		So(*numeric.Ptr("1.5"), ShouldEqual, 1.5)
	})
}

func TestRoundingHelpers(t *testing.T) {
	Convey("Given values near a rounding edge", t, func() {
		So(numeric.Round(0.05, 1), ShouldEqual, 0.1)
		So(numeric.Round(2.675, 2), ShouldEqual, 2.68)
		So(numeric.Round(-1.25, 1), ShouldEqual, -1.3)
	})

	Convey("Given exact binary halves", t, func() {
		So(numeric.Round(6.25, 1), ShouldEqual, 6.3)
		So(numeric.Round(0.125, 2), ShouldEqual, 0.13)
		So(numeric.Round(2.5, 0), ShouldEqual, 3.0)
	})

	Convey("Given percentages", t, func() {
		p, ok := numeric.Percent(90, 100, 1)
		So(ok, ShouldBeTrue)
		So(p, ShouldEqual, 90.0)

		p, ok = numeric.Percent(1, 3, 1)
		So(ok, ShouldBeTrue)
		So(p, ShouldEqual, 33.3)

		_, ok = numeric.Percent(5, 0, 1)
		So(ok, ShouldBeFalse)
	})

	Convey("Given means", t, func() {
		m, ok := numeric.Mean([]float64{1, 2, 4})
		So(ok, ShouldBeTrue)
		So(numeric.Round(m, 2), ShouldEqual, 2.33)
		_, ok = numeric.Mean(nil)
		So(ok, ShouldBeFalse)
		So(numeric.Format(12), ShouldEqual, "12")
	})
}
