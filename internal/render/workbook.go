package render

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/okian/segview/internal/domain/segment"
)

// Workbook sheet names.
const (
	StatsSheet    = "Cluster Statistics"
	OverviewSheet = "Overview"
)

var statsHeader = []interface{}{
	"Cluster ID", "Cluster Name", "Customers", "Avg Income ($k)", "Avg Spending Score", "Avg Age",
}

// WriteWorkbook writes cluster statistics as an xlsx workbook to w. Rows keep
// the server order. A missing age is left blank.
func WriteWorkbook(w io.Writer, stats []segment.ClusterStat) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if _, err := f.NewSheet(StatsSheet); err != nil {
		return fmt.Errorf("%w: %w", ErrWorkbook, err)
	}

	sw, err := f.NewStreamWriter(StatsSheet)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWorkbook, err)
	}
	if err := sw.SetRow("A1", statsHeader); err != nil {
		return fmt.Errorf("%w: %w", ErrWorkbook, err)
	}
	for i, s := range stats {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		var id, age interface{} = "", ""
		if s.ClusterID != nil {
			id = *s.ClusterID
		}
		if s.HasAge() {
			age = *s.AvgAge
		}
		row := []interface{}{id, s.ClusterName, s.Count, s.AvgIncome, s.AvgSpendingScore, age}
		if err := sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("%w: %w", ErrWorkbook, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("%w: %w", ErrWorkbook, err)
	}

	if o, ok := segment.Summarize(stats); ok {
		if err := writeOverview(f, o); err != nil {
			return err
		}
	}

	_ = f.DeleteSheet("Sheet1")
	if index, err := f.GetSheetIndex(StatsSheet); err == nil {
		f.SetActiveSheet(index)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("%w: %w", ErrWorkbook, err)
	}
	return nil
}

func writeOverview(f *excelize.File, o segment.Overview) error {
	if _, err := f.NewSheet(OverviewSheet); err != nil {
		return fmt.Errorf("%w: %w", ErrWorkbook, err)
	}
	rows := [][]interface{}{
		{"Segments", o.Clusters},
		{"Customers", o.TotalCustomers},
		{"Mean Income ($k)", o.MeanIncome},
		{"Mean Spending Score", o.MeanSpending},
		{"Largest Segment", o.LargestCluster},
		{"Largest Segment Share", o.LargestShare},
		{"Highest Avg Income ($k)", o.HighestIncomeAvg},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(OverviewSheet, cell, &row); err != nil {
			return fmt.Errorf("%w: %w", ErrWorkbook, err)
		}
	}
	return nil
}
