package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// sheetName is the single worksheet in XLSX exports.
const sheetName = "Attendance"

// columnWidths are fixed per column, matching the Header order.
var columnWidths = []float64{30, 25, 30, 20}

// WriteCSV serializes rows to a CSV file at path, header first, input order
// preserved. A partially written file is removed on any error.
func WriteCSV(rows []Row, path string) (err error) {
	if len(rows) == 0 {
		return ErrNothingToExport
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	w := csv.NewWriter(f)
	if err = w.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err = w.Write([]string{r.EventName, r.ParticipantName, r.ParticipantEmail, r.ConfirmedAt}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err = w.Error(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}

// WriteXLSX serializes rows to an XLSX file at path: one "Attendance" sheet,
// fixed column widths, header first, input order preserved. A partially
// written file is removed on any error.
func WriteXLSX(rows []Row, path string) (err error) {
	if len(rows) == 0 {
		return ErrNothingToExport
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for i, width := range columnWidths {
		col, colErr := excelize.ColumnNumberToName(i + 1)
		if colErr != nil {
			return fmt.Errorf("column name: %w", colErr)
		}
		if err := f.SetColWidth(sheetName, col, col, width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		cell, cellErr := excelize.CoordinatesToCellName(1, i+2)
		if cellErr != nil {
			return fmt.Errorf("cell name: %w", cellErr)
		}
		row := []interface{}{r.EventName, r.ParticipantName, r.ParticipantEmail, r.ConfirmedAt}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	if err = f.SaveAs(path); err != nil {
		os.Remove(path)
		return fmt.Errorf("save xlsx: %w", err)
	}
	return nil
}

// CleanupOld removes export files older than maxAge from dir. Missing dirs
// and per-file removal errors are logged, not fatal.
func CleanupOld(dir string, maxAge time.Duration, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("read export dir failed", zap.Error(err))
		}
		return
	}
	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(dir, entry.Name())
			if err := os.Remove(path); err != nil {
				logger.Warn("remove old export failed", zap.String("file", entry.Name()), zap.Error(err))
				continue
			}
			logger.Info("removed old export file", zap.String("file", entry.Name()))
		}
	}
}
