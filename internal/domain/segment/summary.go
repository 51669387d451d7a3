package segment

import (
	"github.com/montanaflynn/stats"
)

// Overview aggregates a ClusterStat sequence for the about page.
type Overview struct {
	Clusters         int
	TotalCustomers   int
	MeanIncome       float64 // customer-weighted mean of cluster average incomes
	MeanSpending     float64 // customer-weighted mean of cluster average spending scores
	LargestCluster   string
	LargestShare     float64 // fraction of customers in LargestCluster
	HighestIncomeAvg float64
}

// Summarize computes an Overview. It returns false when stats carry no
// customers.
func Summarize(in []ClusterStat) (Overview, bool) {
	if len(in) == 0 {
		return Overview{}, false
	}
	counts := make(stats.Float64Data, len(in))
	incomes := make(stats.Float64Data, len(in))
	weightedIncome := make(stats.Float64Data, len(in))
	weightedSpending := make(stats.Float64Data, len(in))
	largest := 0
	for i, s := range in {
		counts[i] = float64(s.Count)
		incomes[i] = s.AvgIncome
		weightedIncome[i] = float64(s.Count) * s.AvgIncome
		weightedSpending[i] = float64(s.Count) * s.AvgSpendingScore
		if s.Count > in[largest].Count {
			largest = i
		}
	}

	total, err := counts.Sum()
	if err != nil || total <= 0 {
		return Overview{}, false
	}
	incomeSum, _ := weightedIncome.Sum()
	spendingSum, _ := weightedSpending.Sum()
	maxIncome, _ := incomes.Max()

	o := Overview{
		Clusters:         len(in),
		TotalCustomers:   int(total),
		MeanIncome:       round2(incomeSum / total),
		MeanSpending:     round2(spendingSum / total),
		LargestCluster:   in[largest].ClusterName,
		LargestShare:     round2(float64(in[largest].Count) / total),
		HighestIncomeAvg: maxIncome,
	}
	return o, true
}

func round2(v float64) float64 {
	r, err := stats.Round(v, 2)
	if err != nil {
		return v
	}
	return r
}
