package excel

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"statbench/internal"
	"statbench/internal/dataset"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	config   ReaderConfig
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	return NewDataReaderWithConfig(filePath, DefaultReaderConfig())
}

// NewDataReaderWithConfig creates a reader with an explicit sheet and row limit
func NewDataReaderWithConfig(filePath string, cfg ReaderConfig) *DataReader {
	return &DataReader{filePath: filePath, fileType: fileType(filePath), config: cfg}
}

func fileType(name string) string {
	if strings.ToLower(filepath.Ext(name)) == ".csv" {
		return "csv"
	}
	return "xlsx"
}

// ReadData reads the file into a table named after the file
func (r *DataReader) ReadData() (*dataset.Table, error) {
	internal.DefaultLogger.Debug("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	f, err := os.Open(r.filePath)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", r.fileType, err)
	}
	defer f.Close()

	return ReadFromWithConfig(f, filepath.Base(r.filePath), r.config)
}

// ReadFrom parses src as CSV or XLSX depending on the extension of name
func ReadFrom(src io.Reader, name string) (*dataset.Table, error) {
	return ReadFromWithConfig(src, name, DefaultReaderConfig())
}

// ReadFromWithConfig is ReadFrom with an explicit sheet and row limit
func ReadFromWithConfig(src io.Reader, name string, cfg ReaderConfig) (*dataset.Table, error) {
	start := time.Now()
	kind := fileType(name)

	var rows [][]string
	var err error
	switch kind {
	case "csv":
		rows, err = readCSV(src)
	default:
		rows, err = readXLSX(src, cfg.Sheet)
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("%s file must have at least a header row and one data row", strings.ToUpper(kind))
	}

	data := rows[1:]
	if cfg.MaxRows > 0 && len(data) > cfg.MaxRows {
		data = data[:cfg.MaxRows]
	}
	for i, row := range data {
		for j, cell := range row {
			data[i][j] = strings.TrimSpace(cell)
		}
	}

	table := dataset.NewTable(strings.TrimSuffix(name, filepath.Ext(name)), rows[0], data)
	internal.DefaultLogger.Info("[DataReader] %s file processed in %.2fms (%d columns, %d rows)",
		strings.ToUpper(kind), float64(time.Since(start).Nanoseconds())/1e6, len(table.Headers), table.Len())
	return table, nil
}

func readCSV(src io.Reader) ([][]string, error) {
	reader := csv.NewReader(src)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	return rows, nil
}

func readXLSX(src io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("Excel file has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheet, err)
	}
	return rows, nil
}
