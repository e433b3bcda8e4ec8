// Package storage provides the SQLite-backed record stores and an optional
// Redis read cache in front of the task list.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"todoboard/domain"
)

const tasksSchema = `CREATE TABLE IF NOT EXISTS todos (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	priority TEXT NOT NULL DEFAULT 'medium',
	assignee TEXT NOT NULL DEFAULT '',
	creator TEXT NOT NULL DEFAULT '',
	due_date TIMESTAMP,
	is_overdue BOOLEAN NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// TaskStore persists tasks in a SQLite database.
type TaskStore struct {
	db *sql.DB
}

// OpenTaskStore opens (creating if necessary) the task database at path.
func OpenTaskStore(path string) (*TaskStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(tasksSchema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &TaskStore{db: db}, nil
}

func (s *TaskStore) Close() error {
	return s.db.Close()
}

// List returns all tasks ordered by priority, then due date, then id. The id
// key makes ties deterministic across calls.
func (s *TaskStore) List(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, description, priority, assignee, creator, due_date, is_overdue, created_at, updated_at
		 FROM todos ORDER BY priority ASC, due_date ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// Get returns the task with the given id, or domain.ErrNotFound.
func (s *TaskStore) Get(ctx context.Context, id int64) (domain.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, description, priority, assignee, creator, due_date, is_overdue, created_at, updated_at
		 FROM todos WHERE id = ?`, id)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, domain.ErrNotFound
	}
	return t, err
}

// Create inserts the task and returns it with the store-assigned id.
func (s *TaskStore) Create(ctx context.Context, t domain.Task) (domain.Task, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO todos (title, description, priority, assignee, creator, due_date, is_overdue, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.Title, t.Description, t.Priority, t.Assignee, t.Creator, nullableTime(t.DueDate), t.IsOverdue, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return domain.Task{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Task{}, err
	}
	t.ID = id
	return t, nil
}

// Update overwrites the stored record with t, keyed by t.ID. It returns
// domain.ErrNotFound when no such record exists.
func (s *TaskStore) Update(ctx context.Context, t domain.Task) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE todos SET title = ?, description = ?, priority = ?, assignee = ?, creator = ?,
		 due_date = ?, is_overdue = ?, updated_at = ? WHERE id = ?`,
		t.Title, t.Description, t.Priority, t.Assignee, t.Creator,
		nullableTime(t.DueDate), t.IsOverdue, t.UpdatedAt, t.ID)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

// Delete removes the task with the given id, or returns domain.ErrNotFound.
func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(res)
}

func checkAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (domain.Task, error) {
	var t domain.Task
	var due sql.NullTime
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Priority, &t.Assignee, &t.Creator,
		&due, &t.IsOverdue, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return domain.Task{}, err
	}
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	return t, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
