package export

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anod/todoport/pkg/graph"
	"github.com/anod/todoport/pkg/todoist"
)

type fakeSource struct {
	lists    []graph.TaskList
	tasks    map[string][]graph.TodoTask
	listsErr error
	tasksErr map[string]error
}

func (f *fakeSource) Lists(ctx context.Context) ([]graph.TaskList, error) {
	return f.lists, f.listsErr
}

func (f *fakeSource) Tasks(ctx context.Context, listID string) ([]graph.TodoTask, error) {
	if err := f.tasksErr[listID]; err != nil {
		return nil, err
	}
	return f.tasks[listID], nil
}

func newTestPipeline(src Source) *Pipeline {
	return &Pipeline{
		Source:     src,
		Priorities: todoist.DefaultPriorities(),
		Options:    todoist.Options{},
	}
}

func TestExportGroupsInFetchOrder(t *testing.T) {
	src := &fakeSource{
		lists: []graph.TaskList{
			{ID: "l1", DisplayName: "Bills"},
			{ID: "l2", DisplayName: "Work"},
		},
		tasks: map[string][]graph.TodoTask{
			"l1": {{Title: "Pay rent"}, {Title: "Cancel gym"}},
			"l2": {{Title: "Write report"}},
		},
	}

	groups, err := newTestPipeline(src).Export(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 2)

	assert.Equal(t, "Bills", groups[0].Name)
	assert.Equal(t, []string{"Pay rent", "Cancel gym"}, contents(groups[0].Rows))
	assert.Equal(t, "Work", groups[1].Name)
	assert.Equal(t, []string{"Write report"}, contents(groups[1].Rows))

	assert.Equal(t, "List: Bills", groups[0].Rows[0].Description)
}

func TestExportUsesPlaceholderForUnnamedLists(t *testing.T) {
	src := &fakeSource{
		lists: []graph.TaskList{{ID: "l1"}},
		tasks: map[string][]graph.TodoTask{"l1": {{Title: "Orphan"}}},
	}

	groups, err := newTestPipeline(src).Export(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, UnnamedList, groups[0].Name)
	assert.Equal(t, "List: "+UnnamedList, groups[0].Rows[0].Description)
}

func TestExportAbortsOnListFetchFailure(t *testing.T) {
	src := &fakeSource{listsErr: &graph.FetchError{URL: "/me/todo/lists", Status: 503}}

	_, err := newTestPipeline(src).Export(context.Background())
	var fetchErr *graph.FetchError
	require.ErrorAs(t, err, &fetchErr)
}

func TestExportAbortsOnTaskFetchFailure(t *testing.T) {
	src := &fakeSource{
		lists: []graph.TaskList{
			{ID: "l1", DisplayName: "Bills"},
			{ID: "l2", DisplayName: "Work"},
		},
		tasks:    map[string][]graph.TodoTask{"l1": {{Title: "Pay rent"}}},
		tasksErr: map[string]error{"l2": &graph.FetchError{URL: "/me/todo/lists/l2/tasks", Status: 500}},
	}

	_, err := newTestPipeline(src).Export(context.Background())
	var fetchErr *graph.FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "Work")
}

func TestWriteCombined(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "all.csv")

	groups := []ListRows{
		{Name: "Bills", Rows: []todoist.Row{{Content: "Pay rent", Priority: "4", Description: "List: Bills", Indent: 1}}},
		{Name: "Work", Rows: []todoist.Row{{Content: "Write report", Priority: "1", Description: "List: Work", Indent: 1}}},
	}

	n, err := WriteCombined(path, groups, todoist.SchemaLegacy, "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Pay rent")
	assert.Contains(t, lines[2], "Write report")
}

func TestWriteSplitAllocatesDistinctFiles(t *testing.T) {
	dir := t.TempDir()

	groups := []ListRows{
		{Name: "Shopping", Rows: []todoist.Row{{Content: "Milk", Description: "List: Shopping", Indent: 1}}},
		{Name: "Shopping", Rows: []todoist.Row{{Content: "Bread", Description: "List: Shopping", Indent: 1}}},
	}

	n, err := WriteSplit(dir, groups, todoist.SchemaLegacy, "")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	first, err := os.ReadFile(filepath.Join(dir, "shopping.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(first), "Milk")

	second, err := os.ReadFile(filepath.Join(dir, "shopping-2.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(second), "Bread")
}

func TestWriteCombinedReportsWriteError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "all.csv")

	_, err := WriteCombined(path, nil, todoist.SchemaLegacy, "")
	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
}
