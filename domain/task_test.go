package domain

import (
	"testing"
	"time"
)

func TestEnrichOverdue(t *testing.T) {
	now := time.Now()

	past := now.Add(-time.Second)
	task := Task{DueDate: &past}
	task.Enrich(now)
	if !task.IsOverdue {
		t.Fatal("task due one second ago must be overdue")
	}

	future := now.Add(time.Hour)
	task = Task{DueDate: &future}
	task.Enrich(now)
	if task.IsOverdue {
		t.Fatal("task due in one hour must not be overdue")
	}

	task = Task{IsOverdue: true}
	task.Enrich(now)
	if task.IsOverdue {
		t.Fatal("task without a due date must never be overdue")
	}
}

func TestTaskInputDefaults(t *testing.T) {
	now := time.Now()
	task := TaskInput{Title: "write report"}.Task(now)

	if task.Priority != DefaultPriority {
		t.Fatalf("expected default priority, got %q", task.Priority)
	}
	if !task.CreatedAt.Equal(now) || !task.UpdatedAt.Equal(now) {
		t.Fatal("timestamps must be set from the given clock reading")
	}
	if task.IsOverdue {
		t.Fatal("task without due date must not be overdue")
	}
}

func TestTaskInputValidate(t *testing.T) {
	if err := (TaskInput{Title: "ok"}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (TaskInput{}).Validate(); err == nil {
		t.Fatal("expected error for missing title")
	}
	long := make([]byte, 201)
	for i := range long {
		long[i] = 'x'
	}
	if err := (TaskInput{Title: string(long)}).Validate(); err == nil {
		t.Fatal("expected error for oversized title")
	}
}

func TestTaskPatchApplyPreservesUnsetFields(t *testing.T) {
	created := time.Now().Add(-time.Hour)
	due := created.Add(48 * time.Hour)
	task := Task{
		ID:          7,
		Title:       "write report",
		Description: "quarterly numbers",
		Priority:    "medium",
		Assignee:    "bob",
		Creator:     "alice",
		DueDate:     &due,
		CreatedAt:   created,
		UpdatedAt:   created,
	}

	now := time.Now()
	priority := "high"
	TaskPatch{Priority: &priority}.Apply(&task, now)

	if task.Priority != "high" {
		t.Fatalf("priority not applied: %q", task.Priority)
	}
	if task.Title != "write report" || task.Description != "quarterly numbers" ||
		task.Assignee != "bob" || task.Creator != "alice" {
		t.Fatalf("unset fields must be preserved: %+v", task)
	}
	if task.DueDate == nil || !task.DueDate.Equal(due) {
		t.Fatal("due date must be preserved")
	}
	if !task.CreatedAt.Equal(created) {
		t.Fatal("creation timestamp is immutable")
	}
	if !task.UpdatedAt.Equal(now) {
		t.Fatal("modification timestamp must be touched")
	}
}

func TestTaskPatchApplyRecomputesOverdue(t *testing.T) {
	task := Task{Title: "t", Priority: "medium"}
	now := time.Now()
	past := now.Add(-time.Minute)
	TaskPatch{DueDate: &past}.Apply(&task, now)
	if !task.IsOverdue {
		t.Fatal("overdue flag must be recomputed over the merged record")
	}
}

func TestTaskPatchValidate(t *testing.T) {
	empty := ""
	if err := (TaskPatch{Title: &empty}).Validate(); err == nil {
		t.Fatal("expected error for empty title patch")
	}
	title := "renamed"
	if err := (TaskPatch{Title: &title}).Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := (TaskPatch{}).Validate(); err != nil {
		t.Fatalf("empty patch must be valid, got %v", err)
	}
}
