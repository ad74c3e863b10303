// Package excel loads observational datasets from xlsx and csv files.
package excel

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet names used by the xlsx layout
const (
	DataSheet     = "data"
	MetadataSheet = "metadata"
)

// maxLineBytes bounds a single CSV line
const maxLineBytes = 16 << 20

// RawRowData represents a row of raw data as header-keyed strings
type RawRowData map[string]string

// SheetData is a header row plus data rows, and the key/value metadata found
// alongside them
type SheetData struct {
	Headers  []string
	Rows     []RawRowData
	Metadata map[string][]string
}

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "xlsx"
	if ext == ".csv" {
		fileType = "csv"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadData reads the data rows and metadata of the file
func (r *DataReader) ReadData() (*SheetData, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	default:
		return r.readExcelData()
	}
}

// readExcelData reads the "data" sheet (or the first sheet) and the optional
// "metadata" sheet of key/value rows
func (r *DataReader) readExcelData() (*SheetData, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := DataSheet
	if idx, _ := f.GetSheetIndex(DataSheet); idx < 0 {
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
	if len(rows) < 2 {
		return nil, fmt.Errorf("Excel file must have at least a header row and one data row")
	}

	data := processRows(rows)

	if idx, _ := f.GetSheetIndex(MetadataSheet); idx >= 0 {
		metaRows, err := f.GetRows(MetadataSheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %s: %w", MetadataSheet, err)
		}
		for _, row := range metaRows {
			if len(row) >= 2 {
				addMetadata(data.Metadata, row[0], row[1:]...)
			}
		}
	}
	return data, nil
}

// readCSVData reads CSV data. Leading "# key: value" lines are metadata.
func (r *DataReader) readCSVData() (*SheetData, error) {
	raw, err := os.ReadFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}

	metadata := make(map[string][]string)
	var body bytes.Buffer
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := scanner.Text()
		if trimmed := strings.TrimSpace(line); strings.HasPrefix(trimmed, "#") {
			key, value, ok := strings.Cut(strings.TrimPrefix(trimmed, "#"), ":")
			if ok {
				addMetadata(metadata, key, value)
			}
			continue
		}
		body.WriteString(line)
		body.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	reader := csv.NewReader(&body)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV file must have at least a header row and one data row")
	}

	data := processRows(rows)
	data.Metadata = metadata
	return data, nil
}

// processRows converts raw string rows into SheetData
func processRows(rows [][]string) *SheetData {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.ToLower(strings.TrimSpace(header))
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rowData := make(RawRowData, len(headers))
		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	return &SheetData{
		Headers:  headers,
		Rows:     dataRows,
		Metadata: make(map[string][]string),
	}
}

func addMetadata(metadata map[string][]string, key string, values ...string) {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return
	}
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				metadata[key] = append(metadata[key], part)
			}
		}
	}
}
