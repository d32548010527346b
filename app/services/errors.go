package services

import (
	"fmt"

	"tasks-api/app/models"
)

// TaskNotFoundError indicates the task id doesn't match any task.
type TaskNotFoundError struct {
	ID int64
}

func (e TaskNotFoundError) Error() string {
	return fmt.Sprintf("task not found: %d", e.ID)
}

// ParentNotFoundError indicates the requested parent task doesn't exist.
type ParentNotFoundError struct {
	ID int64
}

func (e ParentNotFoundError) Error() string {
	return fmt.Sprintf("parent task not found: %d", e.ID)
}

// InvalidTransitionError indicates a status change blocked by the task's subtasks.
type InvalidTransitionError struct {
	ID          int64
	Target      models.Status
	Conflicting []models.Status
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf(
		"cannot set task %d to '%s': subtasks have other statuses %v; change the subtasks first",
		e.ID, e.Target, e.Conflicting,
	)
}

// CycleError indicates re-parenting would make a task its own ancestor.
type CycleError struct {
	ID       int64
	ParentID int64
}

func (e CycleError) Error() string {
	return fmt.Sprintf("moving task %d under %d would create a cycle", e.ID, e.ParentID)
}

// ValidationError indicates malformed input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid input: %s", e.Reason)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}
