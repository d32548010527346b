package services

import (
	"context"

	"tasks-api/app/store"
)

// DeleteRecursive removes id and its whole subtree, children before parents.
// Ids that have already vanished are skipped silently.
func DeleteRecursive(ctx context.Context, tx store.Tx, id int64) error {
	return deleteRecursive(ctx, tx, id, make(map[int64]bool))
}

func deleteRecursive(ctx context.Context, tx store.Tx, id int64, seen map[int64]bool) error {
	if seen[id] {
		return nil
	}
	seen[id] = true

	children, err := tx.Children(ctx, id)
	if err != nil {
		return err
	}
	for _, child := range children {
		if err := deleteRecursive(ctx, tx, child.ID, seen); err != nil {
			return err
		}
	}

	task, err := tx.Get(ctx, id)
	if err != nil {
		return err
	}
	if task == nil {
		return nil
	}
	return tx.Delete(ctx, id)
}
