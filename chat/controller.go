// Package chat drives a single conversation with the AI task assistant.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hatcher/taskpilot/pkg/errorx"
	"github.com/hatcher/taskpilot/pkg/httpx"
	"github.com/hatcher/taskpilot/pkg/logs"
	"github.com/hatcher/taskpilot/pkg/pubsub"
)

var (
	ErrSendInFlight = errors.New("conversation is already processing a send")
	ErrEmptyMessage = errors.New("message is empty")
)

const (
	welcomeGreeting = "Hello! I'm your AI task assistant. I can help you create tasks, " +
		"list your tasks, update them, mark them as complete, or delete them. " +
		"Just tell me what you need!"
	newConversationGreeting = "Starting a new conversation! How can I help you today?"
	apologyMessage          = "Sorry, I encountered an error processing your request. Please try again."
)

// Controller manages one conversation: the transcript, the in-flight send
// state, and the conversation id that ties multi-turn context together on
// the server.
//
// Sends are strictly serialized; a second SendMessage while one is pending is
// rejected with ErrSendInFlight. The user's message is appended before the
// network call and never rolled back: the transcript is a log, and a failed
// turn is answered by an apology message instead of a retraction.
type Controller struct {
	api    *httpx.AuthClient
	broker *pubsub.Broker[Message]
	now    func() time.Time

	mu             sync.Mutex
	conversationID string
	messages       []Message
	pending        bool
	lastError      string
}

func NewController(api *httpx.AuthClient) *Controller {
	c := &Controller{
		api:    api,
		broker: pubsub.NewBroker[Message](),
		now:    time.Now,
	}
	c.messages = []Message{c.greeting(welcomeGreeting)}
	return c
}

func (c *Controller) greeting(content string) Message {
	return Message{
		ID:        uuid.New().String(),
		Role:      Assistant,
		Content:   content,
		Timestamp: c.now(),
	}
}

// Subscribe delivers transcript events (one CreatedEvent per appended
// message) until ctx is done.
func (c *Controller) Subscribe(ctx context.Context) <-chan pubsub.Event[Message] {
	return c.broker.Subscribe(ctx)
}

// Messages returns a copy of the transcript.
func (c *Controller) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// ConversationID returns the server-assigned conversation handle, or "" before
// the first successful exchange.
func (c *Controller) ConversationID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conversationID
}

func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// LastError returns the error recorded by the most recent failed send, or ""
// when the last send succeeded.
func (c *Controller) LastError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastError
}

// SendMessage appends the user's message, sends it to the assistant, and
// appends the reply. The returned message is the assistant's answer — which
// on failure is an in-transcript apology, not an error: backend and network
// failures never escape as errors from a send. The only error returns are the
// protocol violations ErrSendInFlight and ErrEmptyMessage.
func (c *Controller) SendMessage(ctx context.Context, content string) (Message, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return Message{}, ErrEmptyMessage
	}

	c.mu.Lock()
	if c.pending {
		c.mu.Unlock()
		return Message{}, ErrSendInFlight
	}
	c.pending = true
	c.lastError = ""
	userMsg := Message{
		ID:        uuid.New().String(),
		Role:      User,
		Content:   trimmed,
		Timestamp: c.now(),
	}
	c.messages = append(c.messages, userMsg)
	conversationID := c.conversationID
	c.mu.Unlock()
	c.broker.Publish(pubsub.CreatedEvent, userMsg)

	var resp sendResponse
	err := c.api.DoJSON(ctx, &resp,
		httpx.WithMethodPost(),
		httpx.WithPath("/api/chat/message"),
		httpx.WithBody(sendRequest{Message: trimmed, ConversationID: conversationID}),
	)

	var reply Message
	c.mu.Lock()
	if err != nil {
		logs.Errorf("chat send failed: %v", err)
		reply = Message{
			ID:        uuid.New().String(),
			Role:      Assistant,
			Content:   apologyMessage,
			Timestamp: c.now(),
		}
		c.lastError = errorx.Detail(err, "Failed to send message")
	} else {
		if c.conversationID == "" && resp.ConversationID != "" {
			c.conversationID = resp.ConversationID
		}
		reply = c.assistantMessage(resp)
	}
	c.messages = append(c.messages, reply)
	c.pending = false
	c.mu.Unlock()
	c.broker.Publish(pubsub.CreatedEvent, reply)

	return reply, nil
}

func (c *Controller) assistantMessage(resp sendResponse) Message {
	msg := Message{
		ID:        uuid.New().String(),
		Role:      Assistant,
		Content:   resp.Message,
		Timestamp: c.parseTimestamp(resp.Timestamp),
	}
	if resp.Intent != "" {
		msg.Intent = Intent(resp.Intent)
	}
	if len(resp.Data) > 0 {
		var data responseData
		if err := json.Unmarshal(resp.Data, &data); err != nil {
			logs.Warnf("failed to decode chat response data: %v", err)
		} else {
			msg.Task = data.Task
			msg.Tasks = data.Tasks
			msg.ClarificationQuestions = data.ClarificationQuestions
		}
	}
	return msg
}

func (c *Controller) parseTimestamp(s string) time.Time {
	if s != "" {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t
		}
	}
	return c.now()
}

// ClearHistory resets the transcript to the initial greeting and drops the
// conversation id, so the next send starts a fresh server-side context.
func (c *Controller) ClearHistory() {
	c.reset(welcomeGreeting)
}

// StartNewConversation is ClearHistory with a fresh-start greeting.
func (c *Controller) StartNewConversation() {
	c.reset(newConversationGreeting)
}

func (c *Controller) reset(greeting string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = []Message{c.greeting(greeting)}
	c.conversationID = ""
	c.lastError = ""
}

// History fetches the server-side transcript for the current conversation,
// when the backend supports it. It does not touch the local transcript.
func (c *Controller) History(ctx context.Context) ([]Message, error) {
	opts := []httpx.Option{
		httpx.WithMethodGet(),
		httpx.WithPath("/api/chat/history"),
	}
	if id := c.ConversationID(); id != "" {
		opts = append(opts, httpx.WithQueryParam("conversation_id", id))
	}
	var hr historyResponse
	if err := c.api.DoJSON(ctx, &hr, opts...); err != nil {
		return nil, err
	}
	out := make([]Message, 0, len(hr.Messages))
	for _, hm := range hr.Messages {
		out = append(out, Message{
			ID:        hm.ID,
			Role:      Role(hm.Role),
			Content:   hm.Content,
			Timestamp: c.parseTimestamp(hm.Timestamp),
		})
	}
	return out, nil
}

// Shutdown closes the event broker.
func (c *Controller) Shutdown() {
	c.broker.Shutdown()
}
