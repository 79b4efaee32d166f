package task

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hatcher/taskpilot/pkg/errorx"
	"github.com/hatcher/taskpilot/pkg/httpx"
	"github.com/hatcher/taskpilot/token"
)

func newClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	tokens := token.NewMemoryStore()
	require.NoError(t, tokens.Set("access-1", "refresh-1"))
	api := httpx.NewAuthClient(httpx.NewDefaultClient(srv.URL), tokens, nil)
	return NewClient(api)
}

func TestListQueryParams(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		require.Equal(t, "pending", q.Get("status"))
		require.Equal(t, "high", q.Get("priority"))
		require.Equal(t, "work,urgent", q.Get("tags"))
		require.Equal(t, "report", q.Get("search"))
		require.Equal(t, "due_date", q.Get("sort_by"))
		require.Equal(t, "2", q.Get("page"))
		require.Equal(t, "10", q.Get("page_size"))
		json.NewEncoder(w).Encode(listResponse{
			Tasks:    []Task{{ID: "t-1"}},
			Total:    11,
			Page:     2,
			PageSize: 10,
		})
	})
	c := newClient(t, mux)

	result, err := c.List(context.Background(), ListFilters{
		Status:   StatusPending,
		Priority: PriorityHigh,
		Tags:     "work,urgent",
		Search:   "report",
		SortBy:   SortByDueDate,
		Page:     2,
		PageSize: 10,
	})
	require.NoError(t, err)
	require.Len(t, result.Tasks, 1)
	require.Equal(t, 11, result.Total)
	require.Equal(t, 2, result.Page)
}

func TestListDefaultsPaging(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "1", r.URL.Query().Get("page"))
		require.Equal(t, "20", r.URL.Query().Get("page_size"))
		json.NewEncoder(w).Encode(listResponse{Page: 1, PageSize: 20})
	})
	c := newClient(t, mux)

	_, err := c.List(context.Background(), ListFilters{})
	require.NoError(t, err)
}

func TestGetMissingTask(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Task not found"})
	})
	c := newClient(t, mux)

	task, err := c.Get(context.Background(), "gone")
	require.NoError(t, err)
	require.Nil(t, task)
}

func TestCreateSendsWriteShape(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "Buy milk", body["title"])
		require.Equal(t, "high", body["priority"])
		require.NotContains(t, body, "completed_at")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       "t-1",
			"title":    "Buy milk",
			"status":   "pending",
			"priority": "high",
		})
	})
	c := newClient(t, mux)

	created, err := c.Create(context.Background(), CreateParams{Title: "Buy milk", Priority: PriorityHigh})
	require.NoError(t, err)
	require.Equal(t, "t-1", created.ID)
	require.Equal(t, StatusPending, created.Status)
}

func TestDeleteMissingTask(t *testing.T) {
	t.Parallel()

	deletes := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		deletes++
		if deletes > 1 {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"detail": "Task not found"})
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	c := newClient(t, mux)

	ok, err := c.Delete(context.Background(), "t-1")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = c.Delete(context.Background(), "t-1")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUpdateValidationError(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/t-1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"detail": []map[string]interface{}{
				{"loc": []interface{}{"body", "title"}, "msg": "field required"},
			},
		})
	})
	c := newClient(t, mux)

	empty := ""
	_, err := c.Update(context.Background(), "t-1", UpdateParams{Title: &empty})
	require.Error(t, err)
	require.True(t, errorx.IsValidation(err))
}

func TestToggleUsesDedicatedEndpoint(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/t-1/toggle", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":           "t-1",
			"status":       "completed",
			"completed_at": "2024-03-01T10:00:00Z",
		})
	})
	c := newClient(t, mux)

	toggled, err := c.Toggle(context.Background(), "t-1")
	require.NoError(t, err)
	require.NotNil(t, toggled)
	require.True(t, toggled.Completed())
	require.NotNil(t, toggled.CompletedAt)
}

func TestToggleFallsBackToReadThenWrite(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	gets, puts := 0, 0
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/t-1/toggle", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/api/tasks/t-1", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			gets++
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":     "t-1",
				"status": "pending",
			})
		case http.MethodPut:
			puts++
			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "completed", body["status"])
			require.Equal(t, "2024-03-01T10:00:00Z", body["completed_at"])
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":           "t-1",
				"status":       "completed",
				"completed_at": "2024-03-01T10:00:00Z",
			})
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	c := newClient(t, mux)
	c.now = func() time.Time { return now }

	toggled, err := c.Toggle(context.Background(), "t-1")
	require.NoError(t, err)
	require.NotNil(t, toggled)
	require.True(t, toggled.Completed())
	require.Equal(t, 1, gets)
	require.Equal(t, 1, puts)
}

func TestToggleFallbackReopening(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/t-1/toggle", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	})
	mux.HandleFunc("/api/tasks/t-1", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":           "t-1",
				"status":       "completed",
				"completed_at": "2024-02-01T00:00:00Z",
			})
		case http.MethodPut:
			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "pending", body["status"])
			// Reopening must explicitly null out the completion timestamp.
			require.Contains(t, body, "completed_at")
			require.Nil(t, body["completed_at"])
			json.NewEncoder(w).Encode(map[string]interface{}{
				"id":     "t-1",
				"status": "pending",
			})
		}
	})
	c := newClient(t, mux)

	toggled, err := c.Toggle(context.Background(), "t-1")
	require.NoError(t, err)
	require.NotNil(t, toggled)
	require.False(t, toggled.Completed())
	require.Nil(t, toggled.CompletedAt)
}

func TestToggleFallbackMissingTask(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/t-1/toggle", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/api/tasks/t-1", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Task not found"})
	})
	c := newClient(t, mux)

	toggled, err := c.Toggle(context.Background(), "t-1")
	require.NoError(t, err)
	require.Nil(t, toggled)
}

func TestDueReminders(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/reminders/due", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"tasks": []map[string]interface{}{
				{"id": "t-1", "title": "Standup", "reminder_at": "2024-03-01T09:55:00Z"},
			},
			"count": 1,
		})
	})
	marked := ""
	mux.HandleFunc("/api/tasks/t-1/reminder-sent", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		marked = "t-1"
		w.WriteHeader(http.StatusNoContent)
	})
	c := newClient(t, mux)

	due, err := c.DueReminders(context.Background())
	require.NoError(t, err)
	require.Len(t, due, 1)
	require.Equal(t, "Standup", due[0].Title)

	require.NoError(t, c.MarkReminderSent(context.Background(), due[0].ID))
	require.Equal(t, "t-1", marked)
}
