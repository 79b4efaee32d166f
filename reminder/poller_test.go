package reminder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hatcher/taskpilot/pkg/httpx"
	"github.com/hatcher/taskpilot/pkg/pubsub"
	"github.com/hatcher/taskpilot/task"
	"github.com/hatcher/taskpilot/token"
)

func newPoller(t *testing.T, handler http.Handler) *Poller {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	tokens := token.NewMemoryStore()
	require.NoError(t, tokens.Set("access-1", "refresh-1"))
	api := httpx.NewAuthClient(httpx.NewDefaultClient(srv.URL), tokens, nil)
	p := NewPoller(task.NewClient(api), time.Minute)
	t.Cleanup(p.Stop)
	return p
}

func dueHandler(tasks ...map[string]interface{}) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/reminders/due", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"tasks": tasks,
			"count": len(tasks),
		})
	})
	return mux
}

func TestPollPublishesDueReminders(t *testing.T) {
	t.Parallel()

	p := newPoller(t, dueHandler(
		map[string]interface{}{"id": "t-1", "title": "Standup"},
		map[string]interface{}{"id": "t-2", "title": "Review"},
	))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := p.Subscribe(ctx)

	p.poll(context.Background())

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case ev := <-events:
			require.Equal(t, pubsub.CreatedEvent, ev.Type)
			got[ev.Payload.ID] = true
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for reminder event")
		}
	}
	require.True(t, got["t-1"])
	require.True(t, got["t-2"])
}

func TestPollDeduplicatesAcrossRounds(t *testing.T) {
	t.Parallel()

	p := newPoller(t, dueHandler(map[string]interface{}{"id": "t-1", "title": "Standup"}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := p.Subscribe(ctx)

	p.poll(context.Background())
	p.poll(context.Background())

	select {
	case ev := <-events:
		require.Equal(t, "t-1", ev.Payload.ID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for reminder event")
	}
	select {
	case ev := <-events:
		t.Fatalf("reminder %q delivered twice", ev.Payload.ID)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPollSurvivesBackendFailure(t *testing.T) {
	t.Parallel()

	p := newPoller(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	// A failed poll logs and moves on; nothing is published and nothing panics.
	p.poll(context.Background())
	require.Equal(t, 0, p.broker.GetSubscriberCount())
}

func TestMarkSentNotifiesBackend(t *testing.T) {
	t.Parallel()

	marked := false
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tasks/reminders/due", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"tasks": []map[string]interface{}{{"id": "t-1", "title": "Standup"}},
			"count": 1,
		})
	})
	mux.HandleFunc("/api/tasks/t-1/reminder-sent", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		marked = true
		w.WriteHeader(http.StatusNoContent)
	})
	p := newPoller(t, mux)

	p.poll(context.Background())
	require.NoError(t, p.MarkSent(context.Background(), "t-1"))
	require.True(t, marked)

	// Once marked, the id is forgotten so a future due round republishes it.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := p.Subscribe(ctx)
	p.poll(context.Background())
	select {
	case ev := <-events:
		require.Equal(t, "t-1", ev.Payload.ID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for republished reminder")
	}
}
