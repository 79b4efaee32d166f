package chat

import (
	"encoding/json"
	"time"

	"github.com/hatcher/taskpilot/task"
)

type Role string

const (
	User      Role = "user"
	Assistant Role = "assistant"
)

// Intent is the backend's classification of a chat message into an
// actionable task operation.
type Intent string

const (
	IntentCreateTask   Intent = "create_task"
	IntentListTasks    Intent = "list_tasks"
	IntentUpdateTask   Intent = "update_task"
	IntentCompleteTask Intent = "complete_task"
	IntentDeleteTask   Intent = "delete_task"
	IntentSetReminder  Intent = "set_reminder"
	IntentHelp         Intent = "help"
	IntentUnknown      Intent = "unknown"
)

// Message is one entry in a conversation transcript. Messages are append-only:
// once created they are never edited, and failures become new assistant
// messages rather than mutations of old ones.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Timestamp time.Time
	// Intent and the attached task payloads are set on assistant messages
	// when the backend resolved the turn into a task operation.
	Intent                 Intent
	Task                   *task.Task
	Tasks                  []task.Task
	ClarificationQuestions []string
}

type sendRequest struct {
	Message string `json:"message"`
	// ConversationID is omitted on the first turn; the server assigns one
	// and it must be echoed on every turn after that.
	ConversationID string `json:"conversation_id,omitempty"`
}

type sendResponse struct {
	Message        string          `json:"message"`
	ConversationID string          `json:"conversation_id"`
	Intent         string          `json:"intent,omitempty"`
	Data           json.RawMessage `json:"data,omitempty"`
	Timestamp      string          `json:"timestamp"`
}

type responseData struct {
	TaskID                 string      `json:"task_id,omitempty"`
	Task                   *task.Task  `json:"task,omitempty"`
	Tasks                  []task.Task `json:"tasks,omitempty"`
	ClarificationNeeded    bool        `json:"clarification_needed,omitempty"`
	ClarificationQuestions []string    `json:"clarification_questions,omitempty"`
}

type historyResponse struct {
	Messages []historyMessage `json:"messages"`
}

type historyMessage struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}
