// Package taskpilot is a Go client SDK for the TaskPilot backend: an
// AI-assisted todo service with JWT auth, task CRUD, and a natural-language
// chat interface. The composition root here wires the token store, the
// refresh-aware HTTP client, and the typed service clients together.
package taskpilot

import (
	"time"

	"github.com/hatcher/taskpilot/auth"
	"github.com/hatcher/taskpilot/chat"
	"github.com/hatcher/taskpilot/pkg/cfg"
	"github.com/hatcher/taskpilot/pkg/httpx"
	"github.com/hatcher/taskpilot/pkg/logs"
	"github.com/hatcher/taskpilot/reminder"
	"github.com/hatcher/taskpilot/task"
	"github.com/hatcher/taskpilot/token"
)

type App struct {
	Tokens    token.Store
	API       *httpx.AuthClient
	Auth      *auth.Service
	Tasks     *task.Client
	Chat      *chat.Controller
	Reminders *reminder.Poller
}

type Option func(*options)

type options struct {
	tokens              token.Store
	onSessionTerminated func()
}

// WithTokenStore replaces the default file-backed token store.
func WithTokenStore(s token.Store) Option {
	return func(o *options) {
		o.tokens = s
	}
}

// WithSessionTerminatedHandler registers a callback fired when a token
// refresh fails irrecoverably and the local session has been cleared —
// typically to send the user back to a login screen.
func WithSessionTerminatedHandler(f func()) Option {
	return func(o *options) {
		o.onSessionTerminated = f
	}
}

func New(config cfg.Config, opts ...Option) (*App, error) {
	config.Prepare()
	logs.InitLogger(config.Log)

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	tokens := o.tokens
	if tokens == nil {
		fs, err := token.NewFileStore(config.TokenFile)
		if err != nil {
			return nil, err
		}
		tokens = fs
	}

	base := httpx.NewClient(config.BaseURL, time.Duration(config.TimeoutSeconds)*time.Second)
	api := httpx.NewAuthClient(base, tokens, o.onSessionTerminated)
	tasks := task.NewClient(api)

	return &App{
		Tokens:    tokens,
		API:       api,
		Auth:      auth.NewService(api, tokens),
		Tasks:     tasks,
		Chat:      chat.NewController(api),
		Reminders: reminder.NewPoller(tasks, time.Duration(config.ReminderIntervalSeconds)*time.Second),
	}, nil
}
