package task

import "time"

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// rank orders priorities for sorting; higher sorts first.
func (p Priority) rank() int {
	switch p {
	case PriorityUrgent:
		return 3
	case PriorityHigh:
		return 2
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 0
	default:
		return -1
	}
}

type RecurrencePattern string

const (
	RecurDaily   RecurrencePattern = "daily"
	RecurWeekly  RecurrencePattern = "weekly"
	RecurMonthly RecurrencePattern = "monthly"
	RecurYearly  RecurrencePattern = "yearly"
)

// Recurrence describes how a recurring task repeats.
type Recurrence struct {
	Pattern  RecurrencePattern `json:"pattern"`
	Interval int               `json:"interval"`
	EndDate  *time.Time        `json:"end_date,omitempty"`
}

// Task is the canonical client-side task shape. The backend is authoritative;
// this is a read-through copy normalized from whichever field spelling the
// endpoint used (see normalize.go).
type Task struct {
	ID           string      `json:"id"`
	UserID       string      `json:"user_id"`
	Title        string      `json:"title"`
	Description  string      `json:"description"`
	Status       Status      `json:"status"`
	Priority     Priority    `json:"priority"`
	DueDate      *time.Time  `json:"due_date"`
	Tags         []string    `json:"tags"`
	IsRecurring  bool        `json:"is_recurring"`
	Recurrence   *Recurrence `json:"recurrence,omitempty"`
	ReminderAt   *time.Time  `json:"reminder_at"`
	ReminderSent bool        `json:"reminder_sent"`
	ParentTaskID string      `json:"parent_task_id,omitempty"`
	CompletedAt  *time.Time  `json:"completed_at"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (t Task) Completed() bool {
	return t.Status == StatusCompleted
}

// CreateParams is the payload for creating a task. Zero-value fields are
// omitted so the backend applies its defaults (pending, medium).
type CreateParams struct {
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Status      Status      `json:"status,omitempty"`
	Priority    Priority    `json:"priority,omitempty"`
	DueDate     *time.Time  `json:"due_date,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	Recurrence  *Recurrence `json:"-"`
	ReminderAt  *time.Time  `json:"reminder_at,omitempty"`
}

// UpdateParams is a partial update. Pointer fields distinguish "leave alone"
// (nil) from "set to zero value".
type UpdateParams struct {
	Title       *string     `json:"title,omitempty"`
	Description *string     `json:"description,omitempty"`
	Status      *Status     `json:"status,omitempty"`
	Priority    *Priority   `json:"priority,omitempty"`
	DueDate     *time.Time  `json:"due_date,omitempty"`
	Tags        []string    `json:"tags,omitempty"`
	Recurrence  *Recurrence `json:"-"`
	ReminderAt  *time.Time  `json:"reminder_at,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

type SortBy string

const (
	SortByDueDate   SortBy = "due_date"
	SortByPriority  SortBy = "priority"
	SortByTitle     SortBy = "title"
	SortByCreatedAt SortBy = "created_at"
	SortByUpdatedAt SortBy = "updated_at"
)

// ListFilters narrows and pages a task listing. Zero values are not sent.
type ListFilters struct {
	Status    Status
	Priority  Priority
	DueBefore *time.Time
	DueAfter  *time.Time
	// Tags is comma-separated, as the backend expects.
	Tags      string
	Search    string
	SortBy    SortBy
	SortOrder string
	Page      int
	PageSize  int
}

// ListResult is one page of tasks plus the total count for pagination.
type ListResult struct {
	Tasks    []Task
	Total    int
	Page     int
	PageSize int
}
