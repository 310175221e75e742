package reporting

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"
)

// RenderReportPDF lays out the current aggregate bundle and summary counters
// as a printable report.
func RenderReportPDF(agg Aggregates, counters SummaryCounters, filter FilterContext, generatedAt time.Time) (*bytes.Buffer, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 8, "Restaurant Performance Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Generated: %s", generatedAt.Format("02/01/2006 15:04")), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Date range: %s - %s | Restaurant: %s",
		filter.DateRange.Start.Format("02/01/2006"),
		filter.DateRange.End.Format("02/01/2006"),
		filter.RestaurantFilter), "", 1, "C", false, 0, "")

	pdf.Ln(3)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Overview", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 5, fmt.Sprintf("Users: %d", counters.TotalUsers), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Products: %d", counters.TotalProducts), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Orders today: %d", counters.TodayOrders), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, fmt.Sprintf("Revenue this month: %.0f", counters.MonthlyRevenue), "", 1, "L", false, 0, "")

	writeSeries(pdf, "Daily revenue", agg.DailyRevenue, "%.0f")
	writeSeries(pdf, "Monthly revenue (last 6 months)", agg.MonthlyRevenue, "%.0f")

	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "Order status", "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, slice := range agg.StatusBreakdown {
		pdf.CellFormat(0, 5, fmt.Sprintf("%s: %d", slice.Status, slice.Count), "", 1, "L", false, 0, "")
	}
	if len(agg.StatusBreakdown) == 0 {
		pdf.CellFormat(0, 5, PlaceholderLabel, "", 1, "L", false, 0, "")
	}

	writeSeries(pdf, "Top dishes", agg.TopDishes, "%.0f")
	writeSeries(pdf, "Top rooms", agg.TopRooms, "%.0f")
	writeSeries(pdf, "Most favorited products", agg.Favorites, "%.0f")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func writeSeries(pdf *gofpdf.Fpdf, title string, series Series, valueFormat string) {
	pdf.Ln(2)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, title, "B", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for i, label := range series.Labels {
		value := 0.0
		if i < len(series.Values) {
			value = series.Values[i]
		}
		pdf.CellFormat(0, 5, fmt.Sprintf("%s: "+valueFormat, label, value), "", 1, "L", false, 0, "")
	}
	if len(series.Labels) == 0 {
		pdf.CellFormat(0, 5, PlaceholderLabel, "", 1, "L", false, 0, "")
	}
}
