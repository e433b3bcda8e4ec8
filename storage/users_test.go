package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"todoboard/domain"
)

func newUserStore(t *testing.T) *UserStore {
	t.Helper()
	store, err := OpenUserStore(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("open user store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestUserStoreCreateAndFind(t *testing.T) {
	store := newUserStore(t)

	created, err := store.CreateUser(context.Background(), "alice", "hash", "alice@example.com")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if created.ID == 0 {
		t.Fatal("expected assigned id")
	}

	found, err := store.FindUser(context.Background(), "alice")
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if found.ID != created.ID || found.PasswordHash != "hash" || found.Email != "alice@example.com" {
		t.Fatalf("unexpected user: %+v", found)
	}
}

func TestUserStoreDuplicateUsername(t *testing.T) {
	store := newUserStore(t)

	if _, err := store.CreateUser(context.Background(), "alice", "hash", ""); err != nil {
		t.Fatalf("create user: %v", err)
	}
	_, err := store.CreateUser(context.Background(), "alice", "other", "")
	if !errors.Is(err, ErrDuplicateUsername) {
		t.Fatalf("expected ErrDuplicateUsername, got %v", err)
	}
}

func TestUserStoreFindUnknown(t *testing.T) {
	store := newUserStore(t)
	if _, err := store.FindUser(context.Background(), "nobody"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
