package service

import (
	"io"
	"strings"
)

// exportFixedColumns lead every export row, before the dynamic field columns.
var exportFixedColumns = []string{"date", "time", "category", "notes"}

// ExportService flattens assembled records into tabular rows.
type ExportService interface {
	BuildRows(records []AssembledRecord) (columns []string, rows [][]string)
	WriteCSV(w io.Writer, columns []string, rows [][]string) error
}

type exportService struct{}

// NewExportService creates a new export service.
func NewExportService() ExportService {
	return &exportService{}
}

// BuildRows produces one row per record: the fixed columns followed by one
// column per dynamic field name actually present in the batch, in
// first-encounter order. A schema field no record populates gets no column.
func (s *exportService) BuildRows(records []AssembledRecord) ([]string, [][]string) {
	dynamic := make([]string, 0)
	seen := make(map[string]struct{})
	for _, record := range records {
		for _, name := range record.FieldOrder {
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			dynamic = append(dynamic, name)
		}
	}

	columns := append(append([]string{}, exportFixedColumns...), dynamic...)
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		row := make([]string, 0, len(columns))
		row = append(row, record.RecordDate)
		row = append(row, deref(record.RecordTime))
		row = append(row, record.CategoryName)
		row = append(row, deref(record.Notes))
		for _, name := range dynamic {
			value, ok := record.Data[name]
			if !ok {
				row = append(row, "")
				continue
			}
			row = append(row, value.ExportString())
		}
		rows = append(rows, row)
	}
	return columns, rows
}

// WriteCSV serializes rows as delimited text: a UTF-8 byte-order marker for
// spreadsheet compatibility, a header row, and every cell double-quoted with
// embedded quotes doubled.
func (s *exportService) WriteCSV(w io.Writer, columns []string, rows [][]string) error {
	if _, err := io.WriteString(w, "\uFEFF"); err != nil {
		return err
	}
	if err := writeCSVLine(w, columns); err != nil {
		return err
	}
	for _, row := range rows {
		if err := writeCSVLine(w, row); err != nil {
			return err
		}
	}
	return nil
}

func writeCSVLine(w io.Writer, cells []string) error {
	quoted := make([]string, len(cells))
	for i, cell := range cells {
		quoted[i] = `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
	}
	_, err := io.WriteString(w, strings.Join(quoted, ",")+"\n")
	return err
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
