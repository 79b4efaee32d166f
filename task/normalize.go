package task

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/hatcher/taskpilot/pkg/util"
)

// The backend is not consistent about task shape: most endpoints speak
// snake_case with a status enum, older ones camelCase with a completed
// boolean. All of that ambiguity is resolved here, at the network boundary;
// the rest of the SDK only ever sees the canonical Task.

// flexTime accepts RFC 3339 with or without a zone suffix.
type flexTime struct {
	time.Time
}

func (ft *flexTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			ft.Time = t
			return nil
		}
	}
	return &time.ParseError{Layout: time.RFC3339, Value: s}
}

type rawTask struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	UserIDAlt          string    `json:"userId"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	Status             string    `json:"status"`
	Completed          *bool     `json:"completed"`
	Priority           string    `json:"priority"`
	DueDate            *flexTime `json:"due_date"`
	DueDateAlt         *flexTime `json:"dueDate"`
	Tags               []string  `json:"tags"`
	IsRecurring        bool      `json:"is_recurring"`
	RecurrencePattern  *string   `json:"recurrence_pattern"`
	RecurrenceInterval int       `json:"recurrence_interval"`
	RecurrenceEndDate  *flexTime `json:"recurrence_end_date"`
	ReminderAt         *flexTime `json:"reminder_at"`
	ReminderSent       bool      `json:"reminder_sent"`
	ParentTaskID       *string   `json:"parent_task_id"`
	CompletedAt        *flexTime `json:"completed_at"`
	CompletedAtAlt     *flexTime `json:"completedAt"`
	CreatedAt          *flexTime `json:"created_at"`
	CreatedAtAlt       *flexTime `json:"createdAt"`
	UpdatedAt          *flexTime `json:"updated_at"`
	UpdatedAtAlt       *flexTime `json:"updatedAt"`
}

func firstTime(candidates ...*flexTime) *time.Time {
	for _, c := range candidates {
		if c != nil && !c.IsZero() {
			return util.Of(c.Time)
		}
	}
	return nil
}

func (r rawTask) normalize() Task {
	t := Task{
		ID:           r.ID,
		UserID:       r.UserID,
		Title:        r.Title,
		Description:  r.Description,
		Priority:     Priority(r.Priority),
		Tags:         r.Tags,
		IsRecurring:  r.IsRecurring,
		ReminderSent: r.ReminderSent,
		ParentTaskID: util.From(r.ParentTaskID),
	}
	if t.UserID == "" {
		t.UserID = r.UserIDAlt
	}
	if t.Priority == "" {
		t.Priority = PriorityMedium
	}

	// A status enum wins over the completed boolean when both are present.
	switch {
	case r.Status != "":
		t.Status = Status(strings.ToLower(r.Status))
	case r.Completed != nil && *r.Completed:
		t.Status = StatusCompleted
	default:
		t.Status = StatusPending
	}

	t.DueDate = firstTime(r.DueDate, r.DueDateAlt)
	t.ReminderAt = firstTime(r.ReminderAt)
	t.CompletedAt = firstTime(r.CompletedAt, r.CompletedAtAlt)
	if created := firstTime(r.CreatedAt, r.CreatedAtAlt); created != nil {
		t.CreatedAt = *created
	}
	if updated := firstTime(r.UpdatedAt, r.UpdatedAtAlt); updated != nil {
		t.UpdatedAt = *updated
	}

	// completed_at is meaningful only on a completed task.
	if t.Status != StatusCompleted {
		t.CompletedAt = nil
	}

	if r.IsRecurring && r.RecurrencePattern != nil {
		interval := r.RecurrenceInterval
		if interval <= 0 {
			interval = 1
		}
		t.Recurrence = &Recurrence{
			Pattern:  RecurrencePattern(*r.RecurrencePattern),
			Interval: interval,
			EndDate:  firstTime(r.RecurrenceEndDate),
		}
	}
	return t
}

func (t *Task) UnmarshalJSON(data []byte) error {
	var raw rawTask
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = raw.normalize()
	return nil
}

// taskWrite is the outbound shape: snake_case, status enum, flat recurrence
// fields, which is what the write endpoints expect.
type taskWrite struct {
	Title              *string    `json:"title,omitempty"`
	Description        *string    `json:"description,omitempty"`
	Status             *Status    `json:"status,omitempty"`
	Priority           *Priority  `json:"priority,omitempty"`
	DueDate            *time.Time `json:"due_date,omitempty"`
	Tags               []string   `json:"tags,omitempty"`
	IsRecurring        *bool      `json:"is_recurring,omitempty"`
	RecurrencePattern  *string    `json:"recurrence_pattern,omitempty"`
	RecurrenceInterval *int       `json:"recurrence_interval,omitempty"`
	RecurrenceEndDate  *time.Time `json:"recurrence_end_date,omitempty"`
	ReminderAt         *time.Time `json:"reminder_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at"`
	HasCompletedAt     bool       `json:"-"`
}

func (w taskWrite) MarshalJSON() ([]byte, error) {
	type alias taskWrite
	if w.HasCompletedAt {
		return json.Marshal(alias(w))
	}
	// Drop completed_at entirely when the caller did not set it; the field
	// has no omitempty because an explicit null must survive.
	type withoutCompleted struct {
		alias
		CompletedAt *time.Time `json:"completed_at,omitempty"`
	}
	return json.Marshal(withoutCompleted{alias: alias(w)})
}

func writeFromCreate(p CreateParams) taskWrite {
	w := taskWrite{
		Title:      util.Of(p.Title),
		DueDate:    p.DueDate,
		Tags:       p.Tags,
		ReminderAt: p.ReminderAt,
	}
	if p.Description != "" {
		w.Description = util.Of(p.Description)
	}
	if p.Status != "" {
		w.Status = util.Of(p.Status)
	}
	if p.Priority != "" {
		w.Priority = util.Of(p.Priority)
	}
	applyRecurrence(&w, p.Recurrence)
	return w
}

func writeFromUpdate(p UpdateParams) taskWrite {
	w := taskWrite{
		Title:       p.Title,
		Description: p.Description,
		Status:      p.Status,
		Priority:    p.Priority,
		DueDate:     p.DueDate,
		Tags:        p.Tags,
		ReminderAt:  p.ReminderAt,
	}
	if p.CompletedAt != nil || (p.Status != nil && *p.Status != StatusCompleted) {
		w.CompletedAt = p.CompletedAt
		w.HasCompletedAt = true
	}
	applyRecurrence(&w, p.Recurrence)
	return w
}

func applyRecurrence(w *taskWrite, r *Recurrence) {
	if r == nil {
		return
	}
	w.IsRecurring = util.Of(true)
	w.RecurrencePattern = util.Of(string(r.Pattern))
	interval := r.Interval
	if interval <= 0 {
		interval = 1
	}
	w.RecurrenceInterval = util.Of(interval)
	w.RecurrenceEndDate = r.EndDate
}
