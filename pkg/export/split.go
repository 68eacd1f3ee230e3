package export

import (
	"regexp"
	"strings"

	"github.com/anod/todoport/pkg/todoist"
)

// UnknownList collects rows whose description carries no list marker.
const UnknownList = "Unknown"

// A marker line is either "List: <name>" on its own, or the tail of a
// checklist-row description ("Subtask from '...' | List: <name>").
var markerLine = regexp.MustCompile(`^(?:.*\| )?List: (.+)$`)

// GroupName extracts the originating list name from a row description by
// scanning its lines from the bottom up. The last marker wins, so body
// text that happens to contain "List: " earlier on cannot misattribute
// the row.
func GroupName(description string) (string, bool) {
	lines := strings.Split(description, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if m := markerLine.FindStringSubmatch(lines[i]); m != nil {
			name := strings.TrimSpace(m[1])
			if name != "" {
				return name, true
			}
		}
	}
	return "", false
}

// Split re-partitions previously exported rows by their embedded list
// marker. It is a pure function of the input: no network access, no field
// re-derivation beyond grouping. Rows keep input order within their group;
// groups are ordered by first appearance.
func Split(rows []todoist.Row) []ListRows {
	var groups []ListRows
	index := make(map[string]int)

	for _, row := range rows {
		name, ok := GroupName(row.Description)
		if !ok {
			name = UnknownList
		}
		i, seen := index[name]
		if !seen {
			i = len(groups)
			index[name] = i
			groups = append(groups, ListRows{Name: name})
		}
		groups[i].Rows = append(groups[i].Rows, row)
	}
	return groups
}
