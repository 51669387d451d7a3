package segment

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestAccentColor(t *testing.T) {
	Convey("Given the cluster palette", t, func() {
		Convey("Then each known cluster maps to its fixed accent", func() {
			So(AccentColor(0), ShouldEqual, "#8b5cf6")
			So(AccentColor(1), ShouldEqual, "#ef4444")
			So(AccentColor(2), ShouldEqual, "#f59e0b")
			So(AccentColor(3), ShouldEqual, "#10b981")
			So(AccentColor(4), ShouldEqual, "#3b82f6")
		})

		Convey("Then unknown ids fall back to the default accent", func() {
			So(AccentColor(99), ShouldEqual, DefaultAccent)
			So(AccentColor(-1), ShouldEqual, "#667eea")
		})

		Convey("Then known names are exposed", func() {
			name, ok := KnownName(1)
			So(ok, ShouldBeTrue)
			So(name, ShouldEqual, "VIP / Whale")
			_, ok = KnownName(7)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestClusterStatDecoding(t *testing.T) {
	Convey("Given /clusters payloads", t, func() {
		Convey("When avg_age is present", func() {
			var s ClusterStat
			So(json.Unmarshal([]byte(`{"cluster_id":1,"cluster_name":"VIP / Whale","count":39,"avg_income":86.54,"avg_spending_score":82.13,"avg_age":32.69}`), &s), ShouldBeNil)

			So(s.HasAge(), ShouldBeTrue)
			So(*s.AvgAge, ShouldEqual, 32.69)
			So(*s.ClusterID, ShouldEqual, 1)
		})

		Convey("When avg_age is null or missing", func() {
			var nullAge, missing ClusterStat
			So(json.Unmarshal([]byte(`{"cluster_name":"A","count":1,"avg_income":1,"avg_spending_score":1,"avg_age":null}`), &nullAge), ShouldBeNil)
			So(json.Unmarshal([]byte(`{"cluster_name":"A","count":1,"avg_income":1,"avg_spending_score":1}`), &missing), ShouldBeNil)

			So(nullAge.HasAge(), ShouldBeFalse)
			So(missing.HasAge(), ShouldBeFalse)
		})

		Convey("When avg_age is zero", func() {
			zero := 0.0
			So(ClusterStat{AvgAge: &zero}.HasAge(), ShouldBeFalse)
		})
	})
}

func TestClusterInfoDecoding(t *testing.T) {
	Convey("Given a /clusters/info payload keyed by id", t, func() {
		var ci ClusterInfo
		err := json.Unmarshal([]byte(`{"3":{"name":"High Earner Saver"},"0":{"name":"Average Customer","description":"d","marketing_strategy":"m"}}`), &ci)

		So(err, ShouldBeNil)
		So(ci.SortedIDs(), ShouldResemble, []int{0, 3})
		So(ci[0].MarketingStrategy, ShouldEqual, "m")
	})
}

func TestSummarize(t *testing.T) {
	Convey("Given cluster statistics", t, func() {
		in := []ClusterStat{
			{ClusterName: "Average Customer", Count: 60, AvgIncome: 50, AvgSpendingScore: 50},
			{ClusterName: "VIP / Whale", Count: 40, AvgIncome: 100, AvgSpendingScore: 80},
		}

		Convey("When summarized", func() {
			o, ok := Summarize(in)

			Convey("Then totals and weighted means are computed", func() {
				So(ok, ShouldBeTrue)
				So(o.Clusters, ShouldEqual, 2)
				So(o.TotalCustomers, ShouldEqual, 100)
				// (60*50 + 40*100) / 100, not the plain mean 75
				So(o.MeanIncome, ShouldEqual, 70)
				So(o.MeanSpending, ShouldEqual, 62)
				So(o.LargestCluster, ShouldEqual, "Average Customer")
				So(o.LargestShare, ShouldEqual, 0.6)
				So(o.HighestIncomeAvg, ShouldEqual, 100)
			})
		})

		Convey("When there are no customers", func() {
			_, ok := Summarize([]ClusterStat{{ClusterName: "empty"}})
			So(ok, ShouldBeFalse)
			_, ok = Summarize(nil)
			So(ok, ShouldBeFalse)
		})
	})
}
