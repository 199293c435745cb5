package export

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/coolcity/heatscan/internal/model"
)

// WriteReport writes an analysis result as an XLSX workbook with a Summary
// sheet, a Metrics sheet and a Recommendations sheet.
func WriteReport(path string, result *model.AnalysisResult) error {
	f := xlsx.NewFile()

	if err := writeSummarySheet(f, result); err != nil {
		return err
	}
	if err := writeMetricsSheet(f, result.Metrics); err != nil {
		return err
	}
	if err := writeRecommendationsSheet(f, result.Recommendations); err != nil {
		return err
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save report %s", path)
	}
	zap.L().Info("export: report written",
		zap.String("path", path),
		zap.Int("metrics", len(result.Metrics)),
		zap.Int("recommendations", len(result.Recommendations)),
	)
	return nil
}

func writeSummarySheet(f *xlsx.File, result *model.AnalysisResult) error {
	sheet, err := f.AddSheet("Summary")
	if err != nil {
		return eris.Wrap(err, "export: add summary sheet")
	}

	addKV(sheet, "Latitude", strconv.FormatFloat(result.Viewport.Center.Lat, 'f', 4, 64))
	addKV(sheet, "Longitude", strconv.FormatFloat(result.Viewport.Center.Lng, 'f', 4, 64))
	addKV(sheet, "Zoom", strconv.Itoa(result.Viewport.Zoom))
	addKV(sheet, "Heat Island Intensity", strconv.FormatFloat(result.Intensity, 'f', 2, 64))
	addKV(sheet, "Risk Level", string(result.Risk))
	addKV(sheet, "Data Sources", strings.Join(result.Sources, ", "))
	addKV(sheet, "Analyzed At", result.AnalyzedAt.Format("2006-01-02 15:04:05 MST"))

	addKV(sheet, "Mean Impact (°C)", strconv.FormatFloat(result.Summary.MeanImpact, 'f', 2, 64))
	addKV(sheet, "Total Cost (USD)", strconv.FormatFloat(result.Summary.TotalCost, 'f', 0, 64))
	addKV(sheet, "Horizon (months)", strconv.FormatFloat(result.Summary.HorizonMonths, 'f', 1, 64))
	return nil
}

func writeMetricsSheet(f *xlsx.File, metrics []model.DisplayMetric) error {
	sheet, err := f.AddSheet("Metrics")
	if err != nil {
		return eris.Wrap(err, "export: add metrics sheet")
	}

	header := sheet.AddRow()
	for _, title := range []string{"Metric", "Raw Value", "Display Value", "Status"} {
		header.AddCell().Value = title
	}

	for _, m := range metrics {
		row := sheet.AddRow()
		row.AddCell().Value = m.Name
		row.AddCell().SetFloat(m.RawValue)
		row.AddCell().SetFloat(m.DisplayValue)
		row.AddCell().Value = string(m.Status)
	}
	return nil
}

func writeRecommendationsSheet(f *xlsx.File, recs []model.RankedRecommendation) error {
	sheet, err := f.AddSheet("Recommendations")
	if err != nil {
		return eris.Wrap(err, "export: add recommendations sheet")
	}

	header := sheet.AddRow()
	for _, title := range []string{"Rank", "Tier", "Title", "Impact", "Cost", "Timeline"} {
		header.AddCell().Value = title
	}

	for _, rec := range recs {
		row := sheet.AddRow()
		row.AddCell().SetInt(rec.Rank)
		row.AddCell().Value = string(rec.Tier)
		row.AddCell().Value = rec.Title
		row.AddCell().Value = rec.Impact
		row.AddCell().Value = rec.Cost
		row.AddCell().Value = rec.Timeline
	}
	return nil
}

func addKV(sheet *xlsx.Sheet, key, value string) {
	row := sheet.AddRow()
	row.AddCell().Value = key
	row.AddCell().Value = value
}

func trimAttr(s string) string {
	return strings.TrimSpace(strings.TrimRight(s, "\x00"))
}

func parseAttrFloat(s string) float64 {
	v, err := strconv.ParseFloat(trimAttr(s), 64)
	if err != nil {
		return 0
	}
	return v
}
