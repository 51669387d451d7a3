package form

import (
	"errors"
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseFloat(t *testing.T) {
	Convey("Given parseFloat semantics", t, func() {
		cases := map[string]float64{
			"70":        70,
			"  72.5":    72.5,
			"72.5k":     72.5,
			"-3":        -3,
			".5":        0.5,
			"1e2":       100,
			"15.":       15,
			"0012.0100": 12.01,
		}
		for in, want := range cases {
			So(ParseFloat(in), ShouldEqual, want)
		}

		Convey("Then inputs without a numeric prefix are NaN", func() {
			for _, in := range []string{"", "abc", "k70", ".", "-", "Infinity", "1e999"} {
				So(math.IsNaN(ParseFloat(in)), ShouldBeTrue)
			}
		})
	})
}

func TestParseInt(t *testing.T) {
	Convey("Given parseInt semantics", t, func() {
		for in, want := range map[string]int{"50": 50, "40.9": 40, " 7abc": 7, "-2": -2, "0x1A": 26, "08": 8} {
			got, ok := ParseInt(in)
			So(ok, ShouldBeTrue)
			So(got, ShouldEqual, want)
		}

		Convey("Then inputs without digits are rejected", func() {
			for _, in := range []string{"", "abc", "+", ".5", "99999999999999999999999"} {
				_, ok := ParseInt(in)
				So(ok, ShouldBeFalse)
			}
		})

		Convey("Then a hex marker without hex digits is rejected", func() {
			for _, in := range []string{"0x", "0xZ", "-0X", " 0xg1"} {
				_, ok := ParseInt(in)
				So(ok, ShouldBeFalse)
			}
		})
	})
}

func TestInputRequest(t *testing.T) {
	Convey("Given raw form input", t, func() {
		Convey("When both values are numeric", func() {
			req, err := Input{Income: "70.5", Spending: "81"}.Request()

			So(err, ShouldBeNil)
			So(req.AnnualIncome, ShouldEqual, 70.5)
			So(req.SpendingScore, ShouldEqual, 81)
		})

		Convey("When either value is not a number", func() {
			for _, in := range []Input{{Income: "abc", Spending: "50"}, {Income: "70", Spending: "x"}, {Income: "70", Spending: "0x"}, {}} {
				_, err := in.Request()
				So(errors.Is(err, ErrInvalidValues), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "Please enter valid values")
			}
		})
	})
}

func TestRangeBindings(t *testing.T) {
	Convey("Given the default range bindings", t, func() {
		b := DefaultBindings()

		So(len(b), ShouldEqual, 2)
		So(b[0].InputID, ShouldEqual, "income")
		So(b[0].DisplayID, ShouldEqual, "incomeValue")
		So(b[1].InputID, ShouldEqual, "spending")
		So(b[1].DisplayID, ShouldEqual, "spendingValue")

		Convey("Then the display mirrors the input value", func() {
			So(b[0].Display(), ShouldEqual, b[0].Value)
		})

		Convey("When submitted values are bound", func() {
			bound := BindAll(b, Input{Income: "120", Spending: ""})

			So(bound[0].Display(), ShouldEqual, "120")
			So(bound[1].Display(), ShouldEqual, "50")
			So(b[0].Value, ShouldEqual, "70")
		})
	})
}
