package domain

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
)

const (
	maxTitleLen    = 200
	maxPriorityLen = 20
	maxNameLen     = 120

	// DefaultPriority is applied when a task is created without one.
	DefaultPriority = "medium"
)

// Task is a single shared board item.
type Task struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Assignee    string     `json:"assignee"`
	Creator     string     `json:"creator"`
	DueDate     *time.Time `json:"due_date"`
	IsOverdue   bool       `json:"is_overdue"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Enrich recomputes the derived overdue flag against the given clock reading.
// Stored values of the flag are never trusted; callers recompute on every
// read and write.
func (t *Task) Enrich(now time.Time) {
	t.IsOverdue = t.DueDate != nil && t.DueDate.Before(now)
}

// TaskInput is the payload for creating a task.
type TaskInput struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Assignee    string     `json:"assignee"`
	Creator     string     `json:"creator"`
	DueDate     *time.Time `json:"due_date"`
}

func (in TaskInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required, validation.Length(1, maxTitleLen)),
		validation.Field(&in.Priority, validation.Length(0, maxPriorityLen)),
		validation.Field(&in.Assignee, validation.Length(0, maxNameLen)),
		validation.Field(&in.Creator, validation.Length(0, maxNameLen)),
	)
}

// Task builds a new record from the input with server-assigned timestamps.
// The id is assigned by the store on insert.
func (in TaskInput) Task(now time.Time) Task {
	t := Task{
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		Assignee:    in.Assignee,
		Creator:     in.Creator,
		DueDate:     in.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if t.Priority == "" {
		t.Priority = DefaultPriority
	}
	t.Enrich(now)
	return t
}

// TaskPatch is a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Priority    *string    `json:"priority"`
	Assignee    *string    `json:"assignee"`
	Creator     *string    `json:"creator"`
	DueDate     *time.Time `json:"due_date"`
}

func (p TaskPatch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.NilOrNotEmpty, validation.Length(1, maxTitleLen)),
		validation.Field(&p.Priority, validation.Length(0, maxPriorityLen)),
		validation.Field(&p.Assignee, validation.Length(0, maxNameLen)),
		validation.Field(&p.Creator, validation.Length(0, maxNameLen)),
	)
}

// Apply merges the set fields into t, touches the modification timestamp and
// recomputes the overdue flag over the merged record.
func (p TaskPatch) Apply(t *Task, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Assignee != nil {
		t.Assignee = *p.Assignee
	}
	if p.Creator != nil {
		t.Creator = *p.Creator
	}
	if p.DueDate != nil {
		t.DueDate = p.DueDate
	}
	t.UpdatedAt = now
	t.Enrich(now)
}
