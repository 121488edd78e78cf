package export

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xuri/excelize/v2"

	"github.com/rpattn/propertyapi/internal/domain"
	"github.com/rpattn/propertyapi/internal/logger"
	"github.com/rpattn/propertyapi/internal/properties"
)

// Format is an export file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const (
	defaultPageSize = 500
	sheetName       = "Properties"
)

var headers = []string{"id", "address", "price", "size", "description"}

// ParseFormat resolves the format query parameter. Empty means CSV.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	default:
		return "", domain.NewInvalidArgumentError("format", fmt.Sprintf("unsupported export format %q", raw))
	}
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv"
}

// FileName returns the attachment name of the format.
func (f Format) FileName() string {
	return "properties." + string(f)
}

// Lister returns one page of properties.
type Lister interface {
	List(ctx context.Context, query properties.ListQuery) (domain.Page[domain.Property], error)
}

// Service writes filtered property listings as files.
type Service struct {
	lister   Lister
	pageSize int
	log      *logrus.Entry
}

type Option func(*Service)

// WithPageSize sets how many rows are read from the store per round trip.
func WithPageSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// NewService creates an export service.
func NewService(lister Lister, opts ...Option) *Service {
	s := &Service{
		lister:   lister,
		pageSize: defaultPageSize,
		log:      logger.Log.WithField("component", "export"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type rowWriter interface {
	WriteRow(values []any) error
	// Flush completes the file on the destination.
	Flush() error
	Close() error
}

// Export writes every property matching the query filter and sort to w. The
// page and size of the query are ignored. The first page is read before
// anything is written, so query errors leave w untouched.
func (s *Service) Export(ctx context.Context, w io.Writer, format Format, query properties.ListQuery) (int, error) {
	query.Page = 0
	query.Size = s.pageSize

	page, err := s.lister.List(ctx, query)
	if err != nil {
		return 0, err
	}

	var rows rowWriter
	switch format {
	case FormatCSV:
		rows = newCSVWriter(w)
	case FormatXLSX:
		rows, err = newXLSXWriter(w)
	default:
		return 0, domain.NewInvalidArgumentError("format", fmt.Sprintf("unsupported export format %q", format))
	}
	if err != nil {
		return 0, err
	}
	defer func() { _ = rows.Close() }()

	if err := rows.WriteRow(toValues(headers)); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	exported := 0
	for {
		for _, property := range page.Content {
			if err := rows.WriteRow(propertyValues(property)); err != nil {
				return exported, fmt.Errorf("write property %d: %w", property.ID, err)
			}
			exported++
		}
		if !page.HasNext() {
			break
		}
		if ctx.Err() != nil {
			return exported, ctx.Err()
		}
		query.Page++
		if page, err = s.lister.List(ctx, query); err != nil {
			return exported, fmt.Errorf("list page %d: %w", query.Page, err)
		}
	}

	if err := rows.Flush(); err != nil {
		return exported, fmt.Errorf("finish %s export: %w", format, err)
	}

	s.log.WithFields(logrus.Fields{"format": format, "rows": exported}).Info("Export completed")
	return exported, nil
}

func propertyValues(p domain.Property) []any {
	return []any{p.ID, p.Address, p.Price, p.Size, p.Description}
}

func toValues(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

type csvWriter struct {
	buffered *bufio.Writer
	writer   *csv.Writer
	record   []string
}

func newCSVWriter(w io.Writer) *csvWriter {
	buffered := bufio.NewWriter(w)
	return &csvWriter{buffered: buffered, writer: csv.NewWriter(buffered)}
}

func (c *csvWriter) WriteRow(values []any) error {
	c.record = c.record[:0]
	for _, value := range values {
		c.record = append(c.record, formatValue(value))
	}
	return c.writer.Write(c.record)
}

func (c *csvWriter) Flush() error {
	c.writer.Flush()
	if err := c.writer.Error(); err != nil {
		return err
	}
	return c.buffered.Flush()
}

func (c *csvWriter) Close() error { return nil }

func formatValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// xlsxWriter streams rows into a single sheet. The workbook is written to the
// destination on Flush.
type xlsxWriter struct {
	dest   io.Writer
	file   *excelize.File
	stream *excelize.StreamWriter
	row    int
}

func newXLSXWriter(w io.Writer) (*xlsxWriter, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	stream, err := f.NewStreamWriter(sheetName)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create stream writer: %w", err)
	}
	return &xlsxWriter{dest: w, file: f, stream: stream}, nil
}

func (x *xlsxWriter) WriteRow(values []any) error {
	x.row++
	cell, err := excelize.CoordinatesToCellName(1, x.row)
	if err != nil {
		return err
	}
	return x.stream.SetRow(cell, values)
}

func (x *xlsxWriter) Flush() error {
	if err := x.stream.Flush(); err != nil {
		return err
	}
	return x.file.Write(x.dest)
}

func (x *xlsxWriter) Close() error {
	return x.file.Close()
}
