package ingestion

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/rpattn/propertyapi/internal/domain"
	"github.com/rpattn/propertyapi/internal/logger"
)

var (
	// ErrInvalidFile marks uploads that cannot be read as a property table.
	ErrInvalidFile = errors.New("invalid file")
	// ErrUnsupportedFormat is returned when an uploaded file is not supported.
	ErrUnsupportedFormat = fmt.Errorf("%w: unsupported file format", ErrInvalidFile)

	byteOrderMark = []byte{0xEF, 0xBB, 0xBF}

	requiredColumns = []string{"address", "price", "size"}
)

// PropertyCreator stores validated properties in one call.
type PropertyCreator interface {
	CreateBatch(ctx context.Context, properties []domain.Property) ([]domain.Property, error)
}

// Service imports tabular property data.
type Service struct {
	creator PropertyCreator
	log     *logrus.Entry
}

// NewService creates a new ingestion service.
func NewService(creator PropertyCreator) *Service {
	return &Service{
		creator: creator,
		log:     logger.Log.WithField("component", "ingestion"),
	}
}

// Request describes the ingestion input.
type Request struct {
	FileName string
	Data     io.Reader
}

// RowError reports why a data row was skipped. Row is the 1-based line in
// the uploaded file.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Summary returns ingestion level metrics.
type Summary struct {
	TotalRows   int        `json:"totalRows"`
	CreatedRows int        `json:"createdRows"`
	InvalidRows int        `json:"invalidRows"`
	Errors      []RowError `json:"errors"`
}

type tableData struct {
	headers    []string
	rows       [][]string
	rowNumbers []int
}

// Ingest parses the file, validates every row and creates the valid ones.
func (s *Service) Ingest(ctx context.Context, req Request) (Summary, error) {
	if req.Data == nil {
		return Summary{}, errors.New("file data is required")
	}
	payload, err := io.ReadAll(req.Data)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to read file: %w", err)
	}

	table, err := parseTable(req.FileName, payload)
	if err != nil {
		return Summary{}, err
	}

	columns, err := resolveColumns(table.headers)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}

	summary := Summary{TotalRows: len(table.rows), Errors: []RowError{}}
	valid := make([]domain.Property, 0, len(table.rows))
	for i, row := range table.rows {
		rowNumber := table.rowNumbers[i]
		property, err := buildProperty(row, columns)
		if err == nil {
			err = domain.ValidateProperty(property)
		}
		if err != nil {
			summary.InvalidRows++
			summary.Errors = append(summary.Errors, RowError{Row: rowNumber, Message: err.Error()})
			continue
		}
		valid = append(valid, property)
	}

	if len(valid) > 0 {
		created, err := s.creator.CreateBatch(ctx, valid)
		if err != nil {
			return Summary{}, fmt.Errorf("failed to store imported properties: %w", err)
		}
		summary.CreatedRows = len(created)
	}

	s.log.WithFields(logrus.Fields{
		"file":    req.FileName,
		"total":   summary.TotalRows,
		"created": summary.CreatedRows,
		"invalid": summary.InvalidRows,
	}).Info("Ingestion completed")

	return summary, nil
}

func parseTable(fileName string, payload []byte) (table tableData, err error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		table, err = parseCSV(payload)
	case ".xlsx":
		table, err = parseExcel(payload)
	default:
		return tableData{}, fmt.Errorf("%w %q", ErrUnsupportedFormat, filepath.Ext(fileName))
	}
	if err != nil {
		return tableData{}, fmt.Errorf("%w: %w", ErrInvalidFile, err)
	}
	return table, nil
}

func parseCSV(payload []byte) (tableData, error) {
	reader := bufio.NewReader(bytes.NewReader(bytes.TrimPrefix(payload, byteOrderMark)))
	csvReader := csv.NewReader(reader)
	csvReader.TrimLeadingSpace = true
	csvReader.FieldsPerRecord = -1

	var (
		records [][]string
		lines   []int
	)
	for {
		record, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return tableData{}, fmt.Errorf("failed to read csv: %w", err)
		}
		line, _ := csvReader.FieldPos(0)
		records = append(records, record)
		lines = append(lines, line)
	}
	return normalizeTable(records, lines)
}

func parseExcel(payload []byte) (tableData, error) {
	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		return tableData{}, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return tableData{}, errors.New("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return tableData{}, fmt.Errorf("failed to read rows from xlsx: %w", err)
	}
	lines := make([]int, len(rows))
	for i := range rows {
		lines[i] = i + 1
	}
	return normalizeTable(rows, lines)
}

// normalizeTable takes the first non-empty record as the header and keeps the
// remaining non-empty records, padded to the header width. lines holds the
// 1-based file line of each record.
func normalizeTable(records [][]string, lines []int) (tableData, error) {
	if len(records) == 0 {
		return tableData{}, errors.New("no rows found in file")
	}

	var table tableData
	for idx, row := range records {
		if len(cleanRow(row)) == 0 {
			continue
		}
		if table.headers == nil {
			table.headers = sanitizeHeaders(row)
			continue
		}
		table.rows = append(table.rows, padRow(row, len(table.headers)))
		table.rowNumbers = append(table.rowNumbers, lines[idx])
	}

	if table.headers == nil {
		return tableData{}, errors.New("header row could not be detected")
	}
	return table, nil
}

func cleanRow(row []string) []string {
	cleaned := make([]string, 0, len(row))
	for _, value := range row {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}

func sanitizeHeaders(raw []string) []string {
	headers := make([]string, len(raw))
	for i, value := range raw {
		headers[i] = strings.ToLower(strings.TrimSpace(value))
	}
	return headers
}

func padRow(row []string, length int) []string {
	if len(row) >= length {
		return row
	}
	padded := make([]string, length)
	copy(padded, row)
	return padded
}

type columnIndex struct {
	address     int
	price       int
	size        int
	description int
}

func resolveColumns(headers []string) (columnIndex, error) {
	positions := map[string]int{}
	for i, header := range headers {
		if _, seen := positions[header]; !seen {
			positions[header] = i
		}
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := positions[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return columnIndex{}, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	description, ok := positions["description"]
	if !ok {
		description = -1
	}
	return columnIndex{
		address:     positions["address"],
		price:       positions["price"],
		size:        positions["size"],
		description: description,
	}, nil
}

func buildProperty(row []string, columns columnIndex) (domain.Property, error) {
	price, err := parseNumber("price", row[columns.price])
	if err != nil {
		return domain.Property{}, err
	}
	size, err := parseNumber("size", row[columns.size])
	if err != nil {
		return domain.Property{}, err
	}
	description := ""
	if columns.description >= 0 {
		description = strings.TrimSpace(row[columns.description])
	}
	return domain.NewProperty(strings.TrimSpace(row[columns.address]), price, size, description), nil
}

func parseNumber(field, raw string) (float64, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	value, err := strconv.ParseFloat(trimmed, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%s must be a number, got %q", field, trimmed)
	}
	return value, nil
}
