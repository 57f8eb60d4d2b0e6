package export

import (
	"context"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/garyjia/perdin-approval/internal/application/port"
	"github.com/garyjia/perdin-approval/internal/domain/entity"
)

const (
	sheetName     = "Rekap Perdin"
	headerRow     = 1
	dataRowStart  = 2
	amountColumn  = "I"
	amountFormat  = `#,##0`
	xlsxMediaType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var headers = []interface{}{
	"ID", "Pegawai", "Maksud Tujuan", "Kota Asal", "Kota Tujuan",
	"Tanggal Berangkat", "Tanggal Pulang", "Durasi (hari)", "Total Uang", "Status",
}

// ExcelExporter writes a trip recap workbook
type ExcelExporter struct {
	logger *zap.Logger
}

// NewExcelExporter creates a new xlsx exporter
func NewExcelExporter(logger *zap.Logger) *ExcelExporter {
	return &ExcelExporter{logger: logger}
}

func (e *ExcelExporter) ContentType() string   { return xlsxMediaType }
func (e *ExcelExporter) FileExtension() string { return ".xlsx" }

// Export writes one row per trip followed by a total row
func (e *ExcelExporter) Export(ctx context.Context, w io.Writer, trips []*entity.TripView) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName(file.GetSheetName(0), sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := e.writeHeader(file); err != nil {
		return err
	}

	var total int64
	for i, trip := range trips {
		if err := ctx.Err(); err != nil {
			return err
		}

		row := dataRowStart + i
		cell, _ := excelize.CoordinatesToCellName(1, row)
		values := []interface{}{
			trip.ID,
			trip.RequesterName,
			trip.Purpose,
			trip.OriginCityName,
			trip.DestinationCityName,
			trip.DepartureDate.Format(entity.DateLayout),
			trip.ReturnDate.Format(entity.DateLayout),
			trip.DurationDays,
			trip.ReimbursementAmount,
			string(trip.Status),
		}
		if err := file.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", row, err)
		}
		total += trip.ReimbursementAmount
	}

	totalRow := dataRowStart + len(trips)
	if err := file.SetCellValue(sheetName, fmt.Sprintf("H%d", totalRow), "Total"); err != nil {
		return fmt.Errorf("failed to write total label: %w", err)
	}
	if err := file.SetCellValue(sheetName, fmt.Sprintf("%s%d", amountColumn, totalRow), total); err != nil {
		return fmt.Errorf("failed to write total: %w", err)
	}

	if err := e.formatAmounts(file, totalRow); err != nil {
		return err
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Debug("Trip recap written", zap.Int("rows", len(trips)), zap.Int64("total", total))
	return nil
}

func (e *ExcelExporter) writeHeader(file *excelize.File) error {
	cell, _ := excelize.CoordinatesToCellName(1, headerRow)
	if err := file.SetSheetRow(sheetName, cell, &headers); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	style, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#DDEBF7"}},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	last, _ := excelize.CoordinatesToCellName(len(headers), headerRow)
	if err := file.SetCellStyle(sheetName, cell, last, style); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	return file.SetColWidth(sheetName, "B", "E", 20)
}

func (e *ExcelExporter) formatAmounts(file *excelize.File, lastRow int) error {
	numFmt := amountFormat
	style, err := file.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return fmt.Errorf("failed to create amount style: %w", err)
	}
	from := fmt.Sprintf("%s%d", amountColumn, dataRowStart)
	to := fmt.Sprintf("%s%d", amountColumn, lastRow)
	return file.SetCellStyle(sheetName, from, to, style)
}

// Verify interface compliance
var _ port.TripExporter = (*ExcelExporter)(nil)
