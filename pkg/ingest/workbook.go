// Package ingest reads uploaded survey workbooks into raw row records.
package ingest

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/tallyline/survey-engine/pkg/apperrors"
	"github.com/tallyline/survey-engine/pkg/models"
)

// ParseError reports an unreadable or empty workbook. It aborts ingestion
// and is surfaced to the user verbatim.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse workbook: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse workbook: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Table is the parsed form of a workbook's first sheet: the ordered header
// row plus one RawRow per data row. Cells missing from short rows default
// to "".
type Table struct {
	Headers []string
	Rows    []models.RawRow
}

// RowSource turns an uploaded file into a Table. The workbook reader is the
// real implementation; tests substitute their own.
type RowSource interface {
	Read(r io.Reader) (*Table, error)
}

// WorkbookReader reads xlsx workbooks via excelize. Only the first sheet is
// read; its first row is the header.
type WorkbookReader struct{}

// NewWorkbookReader creates a WorkbookReader.
func NewWorkbookReader() *WorkbookReader {
	return &WorkbookReader{}
}

// Read implements RowSource.
func (w *WorkbookReader) Read(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &ParseError{Message: "read upload", Cause: err}
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Message: "open workbook", Cause: err}
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{Message: "workbook has no sheets"}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{Message: fmt.Sprintf("read sheet %q", sheets[0]), Cause: err}
	}
	if len(rows) == 0 {
		return nil, &ParseError{Message: "workbook is empty", Cause: apperrors.ErrEmptyWorkbook}
	}

	headers := make([]string, 0, len(rows[0]))
	for _, h := range rows[0] {
		headers = append(headers, strings.TrimSpace(h))
	}

	table := &Table{Headers: headers}
	for _, cells := range rows[1:] {
		raw := make(models.RawRow, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(cells) {
				raw[header] = cells[i]
			} else {
				raw[header] = ""
			}
		}
		table.Rows = append(table.Rows, raw)
	}

	if len(table.Rows) == 0 {
		return nil, &ParseError{Message: "workbook has a header but no data rows", Cause: apperrors.ErrEmptyWorkbook}
	}

	return table, nil
}

// CheckFilename applies the upload extension gate. Only .xlsx files are
// accepted.
func CheckFilename(name string) error {
	if strings.EqualFold(filepath.Ext(strings.TrimSpace(name)), ".xlsx") {
		return nil
	}
	return apperrors.ErrUnsupportedFile
}
