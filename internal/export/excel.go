// Package export renders a projected timesheet table into an Excel
// workbook, the artifact employees hand to HR.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/merqhr/timesheet/internal/report"
)

const sheetName = "Timesheet"

// Rows 1-3 carry the company header; the projected table starts below a
// spacer row.
const tableStartRow = 5

// Config holds exporter settings
type Config struct {
	OutputDir   string
	CompanyName string
}

// Exporter builds timesheet workbooks
type Exporter struct {
	cfg    Config
	logger *zap.Logger
}

// NewExporter creates a new exporter
func NewExporter(cfg Config, logger *zap.Logger) *Exporter {
	return &Exporter{cfg: cfg, logger: logger}
}

// Render builds a workbook from a projected table. The caller owns the
// returned file and must Close it.
func (e *Exporter) Render(table *report.Table) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	// label + allocated + days + total
	columns := 3 + len(table.DayHeaders)
	lastCol, err := excelize.ColumnNumberToName(columns)
	if err != nil {
		return nil, fmt.Errorf("failed to compute last column: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	e.setCell(f, "A1", e.cfg.CompanyName)
	e.setCell(f, "A2", "ወርሃዊ የስራ ሰዓት መከታተያ / Monthly Timesheet")
	e.setCell(f, "A3", table.MonthLabel)
	for row := 1; row <= 3; row++ {
		ref := fmt.Sprintf("A%d", row)
		if err := f.MergeCell(sheetName, ref, fmt.Sprintf("%s%d", lastCol, row)); err != nil {
			return nil, fmt.Errorf("failed to merge header row: %w", err)
		}
		if err := f.SetCellStyle(sheetName, ref, ref, titleStyle); err != nil {
			return nil, fmt.Errorf("failed to style header row: %w", err)
		}
	}

	// Column header row: fixed columns, day numbers, total.
	e.setCell(f, cellRef(1, tableStartRow), "")
	e.setCell(f, cellRef(2, tableStartRow), "የተመደበ ሰዓት / Allocated")
	for i, h := range table.DayHeaders {
		e.setCell(f, cellRef(3+i, tableStartRow), h)
	}
	e.setCell(f, cellRef(columns, tableStartRow), "ጠቅላላ / Total")
	headerEnd := fmt.Sprintf("%s%d", lastCol, tableStartRow)
	if err := f.SetCellStyle(sheetName, cellRef(1, tableStartRow), headerEnd, boldStyle); err != nil {
		return nil, fmt.Errorf("failed to style table header: %w", err)
	}

	for i, row := range table.Rows {
		rowNum := tableStartRow + 1 + i
		e.setCell(f, cellRef(1, rowNum), row.Label)
		e.setCellNumeric(f, cellRef(2, rowNum), row.Allocated)
		for d, cell := range row.Days {
			e.setCellNumeric(f, cellRef(3+d, rowNum), cell)
		}
		e.setCellNumeric(f, cellRef(columns, rowNum), row.Total)

		switch row.Kind {
		case report.RowDirectTotal, report.RowLeaveTotal, report.RowGrandTotal:
			end := fmt.Sprintf("%s%d", lastCol, rowNum)
			if err := f.SetCellStyle(sheetName, cellRef(1, rowNum), end, boldStyle); err != nil {
				return nil, fmt.Errorf("failed to style total row: %w", err)
			}
		}
	}

	declRow := tableStartRow + len(table.Rows) + 3
	e.setCell(f, cellRef(1, declRow), "እኔ፣ ከዚህ በላይ ያለው መረጃ እውነት መሆኑን እገልጻለሁ።")
	e.setCell(f, cellRef(1, declRow+1), "I hereby declare that the foregoing information is true and based on actual work performed by me.")
	e.setCell(f, cellRef(1, declRow+3), fmt.Sprintf("ሠራተኛ / Employee: %s", table.EmployeeName))

	if err := f.SetColWidth(sheetName, "A", "A", 32); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}
	if err := f.SetColWidth(sheetName, "C", lastCol, 5); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	return f, nil
}

// Export renders the table and writes it under the output directory,
// returning the file path.
func (e *Exporter) Export(table *report.Table, employeeName string, year, month int) (string, error) {
	f, err := e.Render(table)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := os.MkdirAll(e.cfg.OutputDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	name := fmt.Sprintf("TIMESHEET_%s_%d_%02d_%s.xlsx",
		employeeName, year, month, time.Now().Format("20060102_150405"))
	path := filepath.Join(e.cfg.OutputDir, name)

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	e.logger.Info("timesheet exported",
		zap.String("employee", employeeName),
		zap.Int("year", year),
		zap.Int("month", month),
		zap.String("path", path))
	return path, nil
}

func (e *Exporter) setCell(f *excelize.File, cell string, value interface{}) {
	if err := f.SetCellValue(sheetName, cell, value); err != nil {
		e.logger.Warn("failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}

// setCellNumeric writes hour cells as numbers so the workbook stays
// summable; non-numeric cells (dates, weekday names) pass through as text.
func (e *Exporter) setCellNumeric(f *excelize.File, cell, value string) {
	if value == "" {
		return
	}
	if n, err := strconv.ParseFloat(value, 64); err == nil {
		e.setCell(f, cell, n)
		return
	}
	e.setCell(f, cell, value)
}

func cellRef(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}
