package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"tasks-api/app/models"
)

// GormStore is a relational task store backed by gorm.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a GormStore over an open gorm connection.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates/updates the tasks table.
func (s *GormStore) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&models.Task{})
}

// Read runs fn inside a transaction. SQLite has no read-only transactions,
// so this is the same as Write with the intent recorded for callers.
func (s *GormStore) Read(ctx context.Context, fn func(Tx) error) error {
	return s.Write(ctx, fn)
}

// Write runs fn inside a transaction.
func (s *GormStore) Write(ctx context.Context, fn func(Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormTx{db: tx})
	})
}

// Close closes the underlying connection pool.
func (s *GormStore) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) All(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := t.db.WithContext(ctx).Order("id").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	return tasks, nil
}

func (t *gormTx) AllByCreatedDesc(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := t.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	return tasks, nil
}

func (t *gormTx) Get(ctx context.Context, id int64) (*models.Task, error) {
	var task models.Task
	err := t.db.WithContext(ctx).Where("id = ?", id).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load task %d: %w", id, err)
	}
	return &task, nil
}

func (t *gormTx) Children(ctx context.Context, id int64) ([]models.Task, error) {
	var tasks []models.Task
	if err := t.db.WithContext(ctx).Where("parent_id = ?", id).Order("id").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to load children of task %d: %w", id, err)
	}
	return tasks, nil
}

func (t *gormTx) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := t.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("category IS NOT NULL AND category <> ''").
		Distinct().
		Order("category").
		Pluck("category", &categories).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return categories, nil
}

func (t *gormTx) Insert(ctx context.Context, task *models.Task) error {
	if err := t.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (t *gormTx) Update(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now()
	err := t.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", task.ID).
		Updates(map[string]any{
			"title":        task.Title,
			"category":     task.Category,
			"priority":     task.Priority,
			"status":       task.Status,
			"is_completed": task.IsCompleted,
			"parent_id":    task.ParentID,
			"updated_at":   task.UpdatedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to update task %d: %w", task.ID, err)
	}
	return nil
}

func (t *gormTx) Delete(ctx context.Context, id int64) error {
	if err := t.db.WithContext(ctx).Delete(&models.Task{}, id).Error; err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}
	return nil
}
