package todoist

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/anod/todoport/pkg/graph"
)

// ListMarkerPrefix introduces the list-name marker embedded in every row
// description. Regrouping a previously exported file depends on parsing
// this marker back out, so the format must stay stable.
const ListMarkerPrefix = "List: "

// AttachmentsMarker is appended to the description of tasks that carry
// attachments, which the CSV format cannot transport.
const AttachmentsMarker = "[Has Attachments]"

// Row is one normalized output record. Indent is 1 for task rows and 2 for
// checklist-derived rows.
type Row struct {
	Content     string
	Priority    string
	DueDate     string // 2006-01-02, empty when no due value
	DueTime     string // 15:04, empty for all-day due values
	DueDisplay  string // "date" or "date time", empty when no due value
	Description string
	Indent      int
}

// Options controls which rows Normalize emits.
type Options struct {
	IncludeCompleted bool
	IncludeChecked   bool
	NoChecklists     bool
	PrefixListName   bool
}

// Graph hands dueDateTime.dateTime over as a zone-less ISO 8601 string,
// occasionally with fractional seconds or a trailing offset.
var dueLayouts = []string{
	"2006-01-02T15:04:05.9999999",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// Normalize maps one task (plus its checklist children) onto zero or more
// rows. It is pure with respect to its inputs: the same task, list name,
// mapping and options always produce identical rows. The task's own row
// always precedes its checklist rows, which keep source order.
func Normalize(task graph.TodoTask, listName string, priorities PriorityMapping, opts Options) []Row {
	if task.Completed() && !opts.IncludeCompleted {
		return nil
	}

	title := Sanitize(task.Title)
	priority := priorities.Resolve(task.Importance)
	dueDate, dueTime, dueDisplay := resolveDue(task.DueDateTime, title)

	var notes []string
	if task.Body != nil {
		if body := Sanitize(task.Body.Content); body != "" {
			notes = append(notes, body)
		}
	}
	if task.HasAttachments {
		notes = append(notes, AttachmentsMarker)
	}
	notes = append(notes, ListMarkerPrefix+listName)

	content := title
	if opts.PrefixListName {
		content = listName + ": " + title
	}

	rows := []Row{{
		Content:     content,
		Priority:    priority,
		DueDate:     dueDate,
		DueTime:     dueTime,
		DueDisplay:  dueDisplay,
		Description: strings.Join(notes, "\n"),
		Indent:      1,
	}}

	if opts.NoChecklists {
		return rows
	}
	for _, item := range task.ChecklistItems {
		if item.IsChecked && !opts.IncludeChecked {
			continue
		}
		rows = append(rows, Row{
			Content:     title + " > " + Sanitize(item.DisplayName),
			Priority:    priority,
			DueDate:     dueDate,
			DueTime:     dueTime,
			DueDisplay:  dueDisplay,
			Description: fmt.Sprintf("Subtask from '%s' | %s%s", title, ListMarkerPrefix, listName),
			Indent:      2,
		})
	}
	return rows
}

// resolveDue derives the date, clock-time and display cells from a Graph
// due value. Midnight-exact due instants are treated as all-day, so only a
// non-zero time-of-day yields a clock time. An unparseable value degrades
// to empty cells rather than failing the export.
func resolveDue(due *graph.DateTimeTimeZone, title string) (date, clock, display string) {
	if due == nil || due.DateTime == "" {
		return "", "", ""
	}

	var t time.Time
	var err error
	for _, layout := range dueLayouts {
		t, err = time.Parse(layout, due.DateTime)
		if err == nil {
			break
		}
	}
	if err != nil {
		log.Warn("skipping unparseable due date", "task", title, "value", due.DateTime)
		return "", "", ""
	}

	date = t.Format("2006-01-02")
	display = date
	if t.Hour() != 0 || t.Minute() != 0 || t.Second() != 0 {
		clock = t.Format("15:04")
		display = date + " " + clock
	}
	return date, clock, display
}

// Sanitize collapses carriage returns and line feeds to single spaces and
// trims the result, so every field survives single-line CSV cells.
func Sanitize(s string) string {
	s = strings.ReplaceAll(s, "\r", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}
