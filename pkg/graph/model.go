package graph

// Task status values as reported by the Graph To Do API.
const (
	StatusNotStarted = "notStarted"
	StatusCompleted  = "completed"
)

// Importance levels as reported by the Graph To Do API.
const (
	ImportanceLow    = "low"
	ImportanceNormal = "normal"
	ImportanceHigh   = "high"
)

// TaskList is a To Do list as returned by /me/todo/lists.
type TaskList struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

// DateTimeTimeZone is the Graph representation of a point in time.
// DateTime is an ISO 8601 string without offset; TimeZone names the zone
// it is expressed in.
type DateTimeTimeZone struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// ItemBody carries the free-text body of a task.
type ItemBody struct {
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
}

// ChecklistItem is a sub-item of a task. Order within the parent task is
// the source order and must be preserved.
type ChecklistItem struct {
	DisplayName string `json:"displayName"`
	IsChecked   bool   `json:"isChecked"`
}

// TodoTask is a task as returned by /me/todo/lists/{id}/tasks with
// checklistItems expanded.
type TodoTask struct {
	ID             string            `json:"id"`
	Title          string            `json:"title"`
	Status         string            `json:"status"`
	Importance     string            `json:"importance"`
	DueDateTime    *DateTimeTimeZone `json:"dueDateTime,omitempty"`
	Body           *ItemBody         `json:"body,omitempty"`
	HasAttachments bool              `json:"hasAttachments"`
	ChecklistItems []ChecklistItem   `json:"checklistItems,omitempty"`
}

// Completed reports whether the task is in a terminal completed state.
func (t *TodoTask) Completed() bool {
	return t.Status == StatusCompleted
}
