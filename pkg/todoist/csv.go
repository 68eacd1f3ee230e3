package todoist

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Schema selects the CSV column layout rows are serialized with.
type Schema int

const (
	// SchemaLegacy is the combined-output layout the original exporter
	// produced and the regroup path historically consumed.
	SchemaLegacy Schema = iota
	// SchemaTemplate matches the Todoist import template.
	SchemaTemplate
)

var (
	legacyHeader = []string{"Type", "Content", "Priority", "Due Date", "Due Time", "Description"}

	templateHeader = []string{
		"TYPE", "CONTENT", "DESCRIPTION", "PRIORITY", "INDENT", "AUTHOR", "RESPONSIBLE",
		"DATE", "DATE_LANG", "TIMEZONE", "DURATION", "DURATION_UNIT", "DEADLINE", "DEADLINE_LANG",
	}
)

const dateLang = "en"

// WriteRows serializes rows to w under the given schema. The author value
// only appears in the template schema's AUTHOR column.
func WriteRows(w io.Writer, rows []Row, schema Schema, author string) error {
	cw := csv.NewWriter(w)

	switch schema {
	case SchemaTemplate:
		if err := cw.Write(templateHeader); err != nil {
			return err
		}
		for _, r := range rows {
			if err := cw.Write(templateRecord(r, author)); err != nil {
				return err
			}
		}
	default:
		if err := cw.Write(legacyHeader); err != nil {
			return err
		}
		for _, r := range rows {
			if err := cw.Write(legacyRecord(r)); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

func legacyRecord(r Row) []string {
	return []string{"task", r.Content, r.Priority, r.DueDate, r.DueTime, r.Description}
}

func templateRecord(r Row, author string) []string {
	indent := r.Indent
	if indent < 1 {
		indent = 1
	}
	var date, dl, ddl string
	if r.DueDate != "" {
		date = r.DueDisplay
		dl = dateLang
		ddl = dateLang
	}
	return []string{
		"task", r.Content, r.Description, r.Priority, strconv.Itoa(indent), author,
		"", date, dl, "", "", "", "", ddl,
	}
}

// ReadRows parses a previously exported file, sniffing the schema from the
// header row. Descriptions keep their embedded newlines, which is what the
// regroup path extracts the list marker from.
func ReadRows(r io.Reader) ([]Row, Schema, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, SchemaLegacy, fmt.Errorf("read header: %w", err)
	}

	var schema Schema
	switch {
	case len(header) > 0 && header[0] == "TYPE":
		schema = SchemaTemplate
	case len(header) > 0 && header[0] == "Type":
		schema = SchemaLegacy
	default:
		return nil, SchemaLegacy, fmt.Errorf("unrecognized header %q", strings.Join(header, ","))
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, schema, fmt.Errorf("read row: %w", err)
		}
		row, err := recordToRow(rec, schema)
		if err != nil {
			return nil, schema, err
		}
		rows = append(rows, row)
	}
	return rows, schema, nil
}

func recordToRow(rec []string, schema Schema) (Row, error) {
	if schema == SchemaTemplate {
		if len(rec) < len(templateHeader) {
			return Row{}, fmt.Errorf("row has %d columns, want %d", len(rec), len(templateHeader))
		}
		indent, err := strconv.Atoi(rec[4])
		if err != nil || indent < 1 {
			indent = 1
		}
		row := Row{
			Content:     rec[1],
			Description: rec[2],
			Priority:    rec[3],
			Indent:      indent,
			DueDisplay:  rec[7],
		}
		if row.DueDisplay != "" {
			row.DueDate, row.DueTime, _ = strings.Cut(row.DueDisplay, " ")
		}
		return row, nil
	}

	if len(rec) < len(legacyHeader) {
		return Row{}, fmt.Errorf("row has %d columns, want %d", len(rec), len(legacyHeader))
	}
	row := Row{
		Content:     rec[1],
		Priority:    rec[2],
		DueDate:     rec[3],
		DueTime:     rec[4],
		Description: rec[5],
		Indent:      1,
	}
	if strings.HasPrefix(row.Description, "Subtask from '") {
		row.Indent = 2
	}
	if row.DueDate != "" {
		row.DueDisplay = row.DueDate
		if row.DueTime != "" {
			row.DueDisplay += " " + row.DueTime
		}
	}
	return row, nil
}
