package services

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"tasks-api/app/config"
	"tasks-api/app/models"
	"tasks-api/app/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	db, err := config.InitSQLite(config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "tasks.db")})
	if err != nil {
		t.Fatalf("InitSQLite() error = %v", err)
	}
	s := store.NewGormStore(db)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	t.Cleanup(func() { s.Close(context.Background()) })
	return s
}

func newTestService(t *testing.T) (*TaskService, store.Store) {
	t.Helper()
	s := newTestStore(t)
	return NewTaskService(s, log.New(io.Discard)), s
}

// insertTask writes a raw task straight to the store, bypassing the service rules.
func insertTask(t *testing.T, s store.Store, title string, parent *int64, status models.Status) int64 {
	t.Helper()
	task := models.Task{
		Title:       title,
		Priority:    models.PriorityMedium,
		Status:      status,
		IsCompleted: status == models.StatusCompleted,
		ParentID:    parent,
	}
	err := s.Write(context.Background(), func(tx store.Tx) error {
		return tx.Insert(context.Background(), &task)
	})
	if err != nil {
		t.Fatalf("Insert(%q) error = %v", title, err)
	}
	return task.ID
}

func getTask(t *testing.T, s store.Store, id int64) *models.Task {
	t.Helper()
	var task *models.Task
	err := s.Read(context.Background(), func(tx store.Tx) error {
		var err error
		task, err = tx.Get(context.Background(), id)
		return err
	})
	if err != nil {
		t.Fatalf("Get(%d) error = %v", id, err)
	}
	return task
}
