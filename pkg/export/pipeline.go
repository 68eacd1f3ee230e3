// Package export orchestrates the acquisition side of the tool: fetch
// lists, fetch tasks per list, normalize into rows and route the result to
// one combined file or one file per source list.
package export

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/anod/todoport/pkg/graph"
	"github.com/anod/todoport/pkg/todoist"
)

// UnnamedList is the placeholder for lists the API returns without a
// display name.
const UnnamedList = "Unnamed List"

// Source is the slice of the Graph client the pipeline consumes.
type Source interface {
	Lists(ctx context.Context) ([]graph.TaskList, error)
	Tasks(ctx context.Context, listID string) ([]graph.TodoTask, error)
}

// ListRows is the normalized output of one source list, in task order.
type ListRows struct {
	Name string
	Rows []todoist.Row
}

// Pipeline fetches and normalizes everything the signed-in user owns.
// Fetching is strictly sequential; rows accumulate in the returned value
// rather than any shared state, so a per-list concurrent fetch could be
// introduced later without reshaping the API.
type Pipeline struct {
	Source     Source
	Priorities todoist.PriorityMapping
	Options    todoist.Options
}

// Export runs the fetch+normalize stages and returns rows grouped per
// source list, in list-fetch order. Any fetch failure aborts the whole
// export; nothing has been written at that point.
func (p *Pipeline) Export(ctx context.Context) ([]ListRows, error) {
	lists, err := p.Source.Lists(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch lists: %w", err)
	}
	log.Info("fetched task lists", "count", len(lists))

	groups := make([]ListRows, 0, len(lists))
	for _, l := range lists {
		name := todoist.Sanitize(l.DisplayName)
		if name == "" {
			log.Warn("list has no display name, using placeholder", "id", l.ID)
			name = UnnamedList
		}

		tasks, err := p.Source.Tasks(ctx, l.ID)
		if err != nil {
			return nil, fmt.Errorf("fetch tasks for list %q: %w", name, err)
		}

		g := ListRows{Name: name}
		for _, t := range tasks {
			g.Rows = append(g.Rows, todoist.Normalize(t, name, p.Priorities, p.Options)...)
		}
		log.Info("normalized list", "list", name, "tasks", len(tasks), "rows", len(g.Rows))
		groups = append(groups, g)
	}
	return groups, nil
}
