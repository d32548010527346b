// Package store holds the task store boundary and its implementations.
package store

import (
	"context"

	"tasks-api/app/models"
)

// Store opens transactions against the backing database.
type Store interface {
	// Read runs fn in a read-only transaction.
	Read(ctx context.Context, fn func(Tx) error) error
	// Write runs fn in a read-write transaction. Returning an error rolls back.
	Write(ctx context.Context, fn func(Tx) error) error
	// Migrate creates the schema the store needs.
	Migrate(ctx context.Context) error
	Close(ctx context.Context) error
}

// Tx is the set of task queries available inside one transaction.
type Tx interface {
	// All returns every task in unspecified order.
	All(ctx context.Context) ([]models.Task, error)
	// AllByCreatedDesc returns every task, newest first.
	AllByCreatedDesc(ctx context.Context) ([]models.Task, error)
	// Get returns the task with id, or nil if it does not exist.
	Get(ctx context.Context, id int64) (*models.Task, error)
	// Children returns the direct children of id.
	Children(ctx context.Context, id int64) ([]models.Task, error)
	// Categories returns the distinct non-empty own categories, sorted.
	Categories(ctx context.Context) ([]string, error)
	// Insert stores t, assigning its ID and timestamps.
	Insert(ctx context.Context, t *models.Task) error
	// Update writes the mutable fields of t and refreshes its UpdatedAt.
	Update(ctx context.Context, t *models.Task) error
	// Delete removes the task with id. Missing ids are ignored.
	Delete(ctx context.Context, id int64) error
}
