package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/anod/todoport/pkg/todoist"
)

// WriteError marks a failure to persist rows that were already gathered
// successfully, distinguishing it from upstream auth/fetch failures.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// WriteCombined flushes all groups into a single file in group order and
// returns the number of rows written. The file is only created once all
// data has been gathered, so an aborted run cannot leave an artifact that
// looks complete.
func WriteCombined(path string, groups []ListRows, schema todoist.Schema, author string) (int, error) {
	var rows []todoist.Row
	for _, g := range groups {
		rows = append(rows, g.Rows...)
	}
	if err := writeFile(path, rows, schema, author); err != nil {
		return 0, err
	}
	log.Info("wrote combined export", "path", path, "rows", len(rows))
	return len(rows), nil
}

// WriteSplit flushes each group to its own file under dir, naming files
// with the collision-resistant allocator, and returns the total number of
// rows written.
func WriteSplit(dir string, groups []ListRows, schema todoist.Schema, author string) (int, error) {
	alloc := NewAllocator()
	total := 0
	for _, g := range groups {
		path := filepath.Join(dir, alloc.Allocate(g.Name))
		if err := writeFile(path, g.Rows, schema, author); err != nil {
			return total, err
		}
		log.Info("wrote list export", "list", g.Name, "path", path, "rows", len(g.Rows))
		total += len(g.Rows)
	}
	return total, nil
}

func writeFile(path string, rows []todoist.Row, schema todoist.Schema, author string) error {
	f, err := os.Create(path)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}
	if err := todoist.WriteRows(f, rows, schema, author); err != nil {
		f.Close()
		return &WriteError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
