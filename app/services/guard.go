package services

import (
	"context"
	"errors"

	"tasks-api/app/models"
	"tasks-api/app/store"
)

// DescendantStatuses returns the status of every task below id, in pre-order.
func DescendantStatuses(ctx context.Context, tx store.Tx, id int64) ([]models.Status, error) {
	var statuses []models.Status
	err := walkDescendants(ctx, tx, id, func(t models.Task) {
		statuses = append(statuses, t.Status)
	})
	return statuses, err
}

func walkDescendants(ctx context.Context, tx store.Tx, id int64, visit func(models.Task)) error {
	seen := map[int64]bool{id: true}
	var walk func(int64) error
	walk = func(parentID int64) error {
		children, err := tx.Children(ctx, parentID)
		if err != nil {
			return err
		}
		for _, child := range children {
			if seen[child.ID] {
				continue
			}
			seen[child.ID] = true
			visit(child)
			if err := walk(child.ID); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(id)
}

// IsDescendant reports whether candidate lies in the subtree below id.
func IsDescendant(ctx context.Context, tx store.Tx, id, candidate int64) (bool, error) {
	found := false
	err := walkDescendants(ctx, tx, id, func(t models.Task) {
		if t.ID == candidate {
			found = true
		}
	})
	return found, err
}

// CheckStatus returns an InvalidTransitionError unless task id may move to
// target. Moving to todo is always allowed; any other status requires every
// descendant to already have exactly that status.
func CheckStatus(ctx context.Context, tx store.Tx, id int64, target models.Status) error {
	if target == models.StatusTodo {
		return nil
	}
	statuses, err := DescendantStatuses(ctx, tx, id)
	if err != nil {
		return err
	}

	var conflicting []models.Status
	seen := make(map[models.Status]bool)
	for _, s := range statuses {
		if s != target && !seen[s] {
			seen[s] = true
			conflicting = append(conflicting, s)
		}
	}
	if len(conflicting) > 0 {
		return InvalidTransitionError{ID: id, Target: target, Conflicting: conflicting}
	}
	return nil
}

// CanSetStatus reports whether task id may move to target.
func CanSetStatus(ctx context.Context, tx store.Tx, id int64, target models.Status) (bool, error) {
	err := CheckStatus(ctx, tx, id, target)
	var invalid InvalidTransitionError
	if errors.As(err, &invalid) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
