package charts

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"climagraph/internal/series"
)

// Exporter writes rendered charts and their underlying data to disk.
type Exporter struct {
	outDir string
}

// NewExporter constructs an Exporter rooted at outDir, which is created on
// first use.
func NewExporter(outDir string) *Exporter {
	return &Exporter{outDir: outDir}
}

func (e *Exporter) target(filename, ext string) (string, error) {
	if err := os.MkdirAll(e.outDir, 0o755); err != nil {
		return "", fmt.Errorf("charts: create export dir: %w", err)
	}
	name := sanitizeFilename(filename)
	if !strings.HasSuffix(strings.ToLower(name), ext) {
		name += ext
	}
	return filepath.Join(e.outDir, name), nil
}

// ExportPNG writes chart image bytes to a PNG file and returns its path.
func (e *Exporter) ExportPNG(png []byte, filename string) (string, error) {
	path, err := e.target(filename, ".png")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return "", fmt.Errorf("charts: write png: %w", err)
	}
	return path, nil
}

// ExportPDF embeds chart image bytes into a single-page landscape PDF.
func (e *Exporter) ExportPDF(res *Result, filename string) (string, error) {
	path, err := e.target(filename, ".pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, res.Title)
	pdf.Ln(10)

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("chart", opts, bytes.NewReader(res.PNG))
	pdf.ImageOptions("chart", 10, 25, 277, 0, false, opts, 0, "")

	pdf.SetY(190)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 5, fmt.Sprintf("Generated %s", time.Now().Format("2006-01-02 15:04")))

	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("charts: write pdf: %w", err)
	}
	return path, nil
}

// ExportSeriesXLSX writes the normalized series behind a chart to a workbook,
// one sheet per sensor, so the numbers behind an exported image stay
// auditable.
func (e *Exporter) ExportSeriesXLSX(input []*series.Series, filename string) (string, error) {
	path, err := e.target(filename, ".xlsx")
	if err != nil {
		return "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range input {
		sheet := sheetName(s.SensorName, i)
		if i == 0 {
			f.SetSheetName("Sheet1", sheet)
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return "", fmt.Errorf("charts: xlsx sheet: %w", err)
			}
		}

		_ = f.SetCellValue(sheet, "A1", "Timestamp")
		_ = f.SetCellValue(sheet, "B1", "Temperature (°C)")
		_ = f.SetCellValue(sheet, "C1", "Humidity (%)")
		_ = f.SetCellValue(sheet, "D1", "Dew point (°C)")

		for j, r := range s.Records {
			row := j + 2
			_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), r.At.Format("2006-01-02 15:04:05"))
			_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), r.Temperature)
			if r.Humidity != nil {
				_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), *r.Humidity)
			}
			if r.DewPoint != nil {
				_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), *r.DewPoint)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("charts: write xlsx: %w", err)
	}
	return path, nil
}

// sanitizeFilename strips separators and spaces from user-visible names.
func sanitizeFilename(name string) string {
	replacer := strings.NewReplacer(" ", "_", string(filepath.Separator), "-", "..", "")
	name = replacer.Replace(name)
	if name == "" {
		name = "chart"
	}
	return name
}

// sheetName keeps sensor-derived sheet names within Excel's 31-rune limit.
func sheetName(name string, idx int) string {
	if name == "" {
		return fmt.Sprintf("sensor %d", idx+1)
	}
	runes := []rune(name)
	if len(runes) > 31 {
		runes = runes[:31]
	}
	return string(runes)
}
