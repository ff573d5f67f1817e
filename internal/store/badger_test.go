package store

import (
	"context"
	"errors"
	"testing"

	"github.com/ppiankov/dialectica/internal/model"
)

func TestBadger_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewBadger(dir)
	if err != nil {
		t.Fatalf("NewBadger failed: %v", err)
	}
	defer func() { _ = s.Close() }()

	err = s.Add(ctx,
		model.NewDocument("205", "pro evidence text"),
		model.NewDocument("1138", "con evidence text"),
	)
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	doc, err := s.Get(ctx, "205")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if doc.Text != "pro evidence text" {
		t.Errorf("Unexpected text: %q", doc.Text)
	}

	found, missing := s.GetMany(ctx, []string{"205", "404", "1138"})
	if len(found) != 2 {
		t.Errorf("Expected 2 found, got %d", len(found))
	}
	if len(missing) != 1 || missing[0] != "404" {
		t.Errorf("Expected missing [404], got %v", missing)
	}

	count, err := s.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 2 {
		t.Errorf("Expected count 2, got %d", count)
	}
}

func TestBadger_GetNotFound(t *testing.T) {
	s, err := NewBadger(t.TempDir())
	if err != nil {
		t.Fatalf("NewBadger failed: %v", err)
	}
	defer func() { _ = s.Close() }()

	_, err = s.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestBadger_Persistence(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := NewBadger(dir)
	if err != nil {
		t.Fatalf("NewBadger failed: %v", err)
	}
	if err := s.Add(ctx, model.NewDocument("858", "persisted evidence")); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewBadger(dir)
	if err != nil {
		t.Fatalf("Reopen failed: %v", err)
	}
	defer func() { _ = reopened.Close() }()

	doc, err := reopened.Get(ctx, "858")
	if err != nil {
		t.Fatalf("Get after reopen failed: %v", err)
	}
	if doc.Text != "persisted evidence" {
		t.Errorf("Unexpected text after reopen: %q", doc.Text)
	}
}

func TestNew_BackendSelection(t *testing.T) {
	s, err := New(model.StoreConfig{Backend: "memory"})
	if err != nil {
		t.Fatalf("memory backend failed: %v", err)
	}
	_ = s.Close()

	if _, err := New(model.StoreConfig{Backend: "badger"}); err == nil {
		t.Error("Expected error for badger backend without path")
	}

	if _, err := New(model.StoreConfig{Backend: "cassandra"}); err == nil {
		t.Error("Expected error for unsupported backend")
	}
}
