package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"todoboard/domain"
)

func newTaskStore(t *testing.T) *TaskStore {
	t.Helper()
	store, err := OpenTaskStore(filepath.Join(t.TempDir(), "todo.db"))
	if err != nil {
		t.Fatalf("open task store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func mustCreate(t *testing.T, store *TaskStore, task domain.Task) domain.Task {
	t.Helper()
	if task.CreatedAt.IsZero() {
		now := time.Now().UTC()
		task.CreatedAt = now
		task.UpdatedAt = now
	}
	created, err := store.Create(context.Background(), task)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return created
}

func TestTaskStoreCreateAssignsIDs(t *testing.T) {
	store := newTaskStore(t)

	first := mustCreate(t, store, domain.Task{Title: "a", Priority: "medium"})
	second := mustCreate(t, store, domain.Task{Title: "b", Priority: "medium"})
	if first.ID == 0 || second.ID == 0 {
		t.Fatalf("expected assigned ids, got %d and %d", first.ID, second.ID)
	}
	if first.ID == second.ID {
		t.Fatalf("ids must be unique, both %d", first.ID)
	}
}

func TestTaskStoreGetRoundTrip(t *testing.T) {
	store := newTaskStore(t)
	due := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	created := mustCreate(t, store, domain.Task{
		Title:       "write report",
		Description: "numbers",
		Priority:    "high",
		Assignee:    "bob",
		Creator:     "alice",
		DueDate:     &due,
	})

	got, err := store.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "write report" || got.Priority != "high" || got.Assignee != "bob" || got.Creator != "alice" {
		t.Fatalf("unexpected task: %+v", got)
	}
	if got.DueDate == nil || got.DueDate.Unix() != due.Unix() {
		t.Fatalf("due date not preserved: %v", got.DueDate)
	}
}

func TestTaskStoreGetNotFound(t *testing.T) {
	store := newTaskStore(t)
	if _, err := store.Get(context.Background(), 42); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskStoreListOrdering(t *testing.T) {
	store := newTaskStore(t)
	early := time.Now().UTC().Truncate(time.Second)
	late := early.Add(48 * time.Hour)

	// Priorities sort lexically: high < low < medium.
	medium := mustCreate(t, store, domain.Task{Title: "m", Priority: "medium"})
	highLate := mustCreate(t, store, domain.Task{Title: "h2", Priority: "high", DueDate: &late})
	highEarly := mustCreate(t, store, domain.Task{Title: "h1", Priority: "high", DueDate: &early})
	low := mustCreate(t, store, domain.Task{Title: "l", Priority: "low"})

	tasks, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []int64{highEarly.ID, highLate.ID, low.ID, medium.ID}
	if len(tasks) != len(want) {
		t.Fatalf("expected %d tasks, got %d", len(want), len(tasks))
	}
	for i, id := range want {
		if tasks[i].ID != id {
			t.Fatalf("position %d: expected id %d, got %d (%+v)", i, id, tasks[i].ID, tasks)
		}
	}
}

func TestTaskStoreListTiesBrokenByID(t *testing.T) {
	store := newTaskStore(t)
	first := mustCreate(t, store, domain.Task{Title: "a", Priority: "medium"})
	second := mustCreate(t, store, domain.Task{Title: "b", Priority: "medium"})

	tasks, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 2 || tasks[0].ID != first.ID || tasks[1].ID != second.ID {
		t.Fatalf("expected id order %d,%d got %+v", first.ID, second.ID, tasks)
	}
}

func TestTaskStoreUpdate(t *testing.T) {
	store := newTaskStore(t)
	created := mustCreate(t, store, domain.Task{Title: "a", Priority: "medium"})

	created.Title = "renamed"
	created.UpdatedAt = time.Now().UTC()
	if err := store.Update(context.Background(), created); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := store.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "renamed" {
		t.Fatalf("update not persisted: %+v", got)
	}
}

func TestTaskStoreUpdateNotFound(t *testing.T) {
	store := newTaskStore(t)
	err := store.Update(context.Background(), domain.Task{ID: 42, Title: "x", Priority: "medium"})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestTaskStoreDelete(t *testing.T) {
	store := newTaskStore(t)
	created := mustCreate(t, store, domain.Task{Title: "a", Priority: "medium"})

	if err := store.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(context.Background(), created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	tasks, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected empty list, got %+v", tasks)
	}
}
