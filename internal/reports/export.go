package reports

import (
	"fmt"
	"io"

	"github.com/tealeg/xlsx"
)

// WriteDailyXLSX renders the daily report as a workbook with summary, top
// items and hourly sheets.
func WriteDailyXLSX(w io.Writer, report *DailyReport) error {
	file := xlsx.NewFile()

	summary, err := file.AddSheet("Summary")
	if err != nil {
		return fmt.Errorf("failed to add summary sheet: %w", err)
	}
	addRow(summary, "Date", report.Date)
	addRow(summary, "Total orders", report.TotalOrders)
	addRow(summary, "Successful orders", report.SuccessfulOrders)
	addRow(summary, "Failed orders", report.FailedOrders)
	addRow(summary, "Revenue", report.Revenue)
	addRow(summary, "Average order value", report.AvgOrderValue)

	items, err := file.AddSheet("Top Items")
	if err != nil {
		return fmt.Errorf("failed to add items sheet: %w", err)
	}
	addRow(items, "Item", "Quantity", "Revenue")
	for _, item := range report.TopItems {
		addRow(items, item.Name, item.Quantity, item.Revenue)
	}

	hourly, err := file.AddSheet("Hourly")
	if err != nil {
		return fmt.Errorf("failed to add hourly sheet: %w", err)
	}
	addRow(hourly, "Hour", "Orders", "Revenue")
	for _, h := range report.HourlyStats {
		addRow(hourly, fmt.Sprintf("%02d:00", h.Hour), h.Orders, h.Revenue)
	}

	return file.Write(w)
}

func addRow(sheet *xlsx.Sheet, values ...interface{}) {
	row := sheet.AddRow()
	for _, v := range values {
		cell := row.AddCell()
		switch val := v.(type) {
		case string:
			cell.SetString(val)
		case int:
			cell.SetInt(val)
		case float64:
			cell.SetFloat(val)
		default:
			cell.SetValue(val)
		}
	}
}
