package graph

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListsFollowsNextLink(t *testing.T) {
	var srv *httptest.Server
	mux := http.NewServeMux()
	mux.HandleFunc("/me/todo/lists", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"value": [
				{"id":"l1","displayName":"Bills"},
				{"id":"l2","displayName":"Shopping"}
			],
			"@odata.nextLink": %q
		}`, srv.URL+"/page2")
	})
	mux.HandleFunc("/page2", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"value":[{"id":"l3","displayName":"Work"}]}`)
	})
	srv = httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient("tok-1").WithBaseURL(srv.URL)
	lists, err := c.Lists(context.Background())
	require.NoError(t, err)

	// arrival order preserved across pages
	require.Len(t, lists, 3)
	assert.Equal(t, []TaskList{
		{ID: "l1", DisplayName: "Bills"},
		{ID: "l2", DisplayName: "Shopping"},
		{ID: "l3", DisplayName: "Work"},
	}, lists)
}

func TestTasksDecodesChecklistAndDue(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/me/todo/lists/l1/tasks", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "checklistItems", r.URL.Query().Get("$expand"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"value": [{
				"id": "t1",
				"title": "Pay rent",
				"status": "notStarted",
				"importance": "high",
				"dueDateTime": {"dateTime":"2024-03-01T00:00:00.0000000","timeZone":"UTC"},
				"body": {"content":"wire the money","contentType":"text"},
				"hasAttachments": true,
				"checklistItems": [
					{"displayName":"Find IBAN","isChecked":true},
					{"displayName":"Schedule transfer","isChecked":false}
				]
			}]
		}`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient("tok-1").WithBaseURL(srv.URL)
	tasks, err := c.Tasks(context.Background(), "l1")
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	task := tasks[0]
	assert.Equal(t, "Pay rent", task.Title)
	assert.Equal(t, ImportanceHigh, task.Importance)
	assert.False(t, task.Completed())
	assert.True(t, task.HasAttachments)
	require.NotNil(t, task.DueDateTime)
	assert.Equal(t, "2024-03-01T00:00:00.0000000", task.DueDateTime.DateTime)
	require.NotNil(t, task.Body)
	assert.Equal(t, "wire the money", task.Body.Content)
	require.Len(t, task.ChecklistItems, 2)
	assert.True(t, task.ChecklistItems[0].IsChecked)
	assert.Equal(t, "Schedule transfer", task.ChecklistItems[1].DisplayName)
}

func TestFetchErrorOnNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":"InvalidAuthenticationToken"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewClient("bad-token").WithBaseURL(srv.URL)
	_, err := c.Lists(context.Background())

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusUnauthorized, fetchErr.Status)
}

func TestFetchErrorOnUnreachableHost(t *testing.T) {
	c := NewClient("tok").WithBaseURL("http://127.0.0.1:1")
	_, err := c.Lists(context.Background())

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Error(t, fetchErr.Err)
}
