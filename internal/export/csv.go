// Package export turns uniform record collections into delimited-text
// documents and hands them to a save-as-file side channel.
package export

import (
	"fmt"
	"strings"

	"gudang/internal/notify"
)

// Cell is one named value of a row. Rows are ordered slices rather than maps
// so the header keeps the first row's own field order.
type Cell struct {
	Key   string
	Value any
}

// Row is one exportable record.
type Row []Cell

// Render produces the CSV document: a header row derived from the first
// row's keys, every field double-quoted with embedded quotes doubled, rows
// joined with newlines. Rows missing a header key render an empty field.
// No rows renders an empty document.
func Render(rows []Row) string {
	if len(rows) == 0 {
		return ""
	}
	headers := make([]string, 0, len(rows[0]))
	for _, cell := range rows[0] {
		headers = append(headers, cell.Key)
	}

	var b strings.Builder
	for i, h := range headers {
		if i > 0 {
			b.WriteByte(',')
		}
		writeField(&b, h)
	}
	for _, row := range rows {
		values := make(map[string]any, len(row))
		for _, cell := range row {
			values[cell.Key] = cell.Value
		}
		b.WriteByte('\n')
		for i, h := range headers {
			if i > 0 {
				b.WriteByte(',')
			}
			writeField(&b, coerce(values[h]))
		}
	}
	return b.String()
}

func writeField(b *strings.Builder, v string) {
	b.WriteByte('"')
	b.WriteString(strings.ReplaceAll(v, `"`, `""`))
	b.WriteByte('"')
}

// coerce renders a value as text; nil and missing values become the empty
// string.
func coerce(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Saver is the fire-and-forget save-as-file side channel.
type Saver interface {
	SaveTextAsFile(text, filename, mimeType string) error
}

// Exporter converts rows to CSV and saves them, or posts a "nothing to
// export" notice when the collection is empty.
type Exporter struct {
	saver Saver
}

func NewExporter(saver Saver) *Exporter {
	return &Exporter{saver: saver}
}

// ExportTable saves the rows as a CSV file. An empty collection is not an
// error: it posts a notice to the caller's notice center and performs no
// file action. The returned bool reports whether a save was issued.
func (e *Exporter) ExportTable(rows []Row, filename string, notices *notify.Center) (bool, error) {
	if len(rows) == 0 {
		if notices != nil {
			notices.Post(notify.Info, "No Data", "There is no data to export.")
		}
		return false, nil
	}
	if err := e.saver.SaveTextAsFile(Render(rows), filename, "text/csv;charset=utf-8"); err != nil {
		return false, fmt.Errorf("failed to save %s: %w", filename, err)
	}
	return true, nil
}
