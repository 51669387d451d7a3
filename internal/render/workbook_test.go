package render

import (
	"bytes"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"

	"github.com/okian/segview/internal/domain/segment"
)

func TestWriteWorkbook(t *testing.T) {
	Convey("Given cluster statistics", t, func() {
		stats := []segment.ClusterStat{
			{ClusterID: ptr(0), ClusterName: "Average Customer", Count: 60, AvgIncome: 50, AvgSpendingScore: 50, AvgAge: ptr(42.5)},
			{ClusterID: ptr(1), ClusterName: "VIP / Whale", Count: 40, AvgIncome: 100, AvgSpendingScore: 80},
		}

		Convey("When exported", func() {
			var buf bytes.Buffer
			So(WriteWorkbook(&buf, stats), ShouldBeNil)

			f, err := excelize.OpenReader(&buf)
			So(err, ShouldBeNil)
			defer func() { _ = f.Close() }()

			Convey("Then the statistics sheet keeps the server order", func() {
				rows, err := f.GetRows(StatsSheet)
				So(err, ShouldBeNil)
				So(rows, ShouldHaveLength, 3)
				So(rows[0][1], ShouldEqual, "Cluster Name")
				So(rows[1][1], ShouldEqual, "Average Customer")
				So(rows[1][5], ShouldEqual, "42.5")
				So(rows[2][1], ShouldEqual, "VIP / Whale")
				So(rows[2][2], ShouldEqual, "40")
			})

			Convey("Then the overview sheet carries the totals", func() {
				v, err := f.GetCellValue(OverviewSheet, "B2")
				So(err, ShouldBeNil)
				So(v, ShouldEqual, "100")
			})

			Convey("Then the default sheet is gone", func() {
				So(f.GetSheetList(), ShouldNotContain, "Sheet1")
			})
		})

		Convey("When there are no statistics", func() {
			var buf bytes.Buffer
			So(WriteWorkbook(&buf, nil), ShouldBeNil)

			f, err := excelize.OpenReader(&buf)
			So(err, ShouldBeNil)
			defer func() { _ = f.Close() }()
			So(f.GetSheetList(), ShouldResemble, []string{StatsSheet})
		})
	})
}
