package services

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"tasks-api/app/models"
	"tasks-api/app/store"
)

const (
	maxTitleLength    = 200
	maxCategoryLength = 100
)

// TaskService handles task-related operations. Each call runs in one store transaction.
type TaskService struct {
	store  store.Store
	logger *log.Logger
}

// NewTaskService creates a new instance of TaskService.
func NewTaskService(s store.Store, logger *log.Logger) *TaskService {
	return &TaskService{store: s, logger: logger}
}

// GetTasks returns the filtered task forest, newest roots first.
func (s *TaskService) GetTasks(ctx context.Context, filter models.TaskFilter) (*models.TaskList, error) {
	var list models.TaskList
	err := s.store.Read(ctx, func(tx store.Tx) error {
		tasks, err := tx.AllByCreatedDesc(ctx)
		if err != nil {
			return err
		}
		list.Tasks = ApplyFilter(BuildTree(tasks, nil), filter)
		list.Total = CountNodes(list.Tasks)
		return nil
	})
	if err != nil {
		s.logger.Error("failed to list tasks", "err", err)
		return nil, err
	}
	return &list, nil
}

// GetCategories returns every distinct category in use.
func (s *TaskService) GetCategories(ctx context.Context) ([]string, error) {
	var categories []string
	err := s.store.Read(ctx, func(tx store.Tx) error {
		var err error
		categories, err = tx.Categories(ctx)
		return err
	})
	if err != nil {
		s.logger.Error("failed to list categories", "err", err)
		return nil, err
	}
	if categories == nil {
		categories = []string{}
	}
	return categories, nil
}

// GetTaskByID returns a single task with its subtree.
func (s *TaskService) GetTaskByID(ctx context.Context, id int64) (*models.TaskNode, error) {
	var node models.TaskNode
	err := s.store.Read(ctx, func(tx store.Tx) error {
		task, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		if task == nil {
			return TaskNotFoundError{ID: id}
		}
		node, err = s.resolve(ctx, tx, *task)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &node, nil
}

// CreateTask adds a root task or a subtask. A subtask without its own
// category takes the parent's.
func (s *TaskService) CreateTask(ctx context.Context, req models.NewTask) (*models.TaskNode, error) {
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if req.Status == "" {
		req.Status = models.StatusTodo
	}
	if err := validateNewTask(req); err != nil {
		return nil, err
	}

	var node models.TaskNode
	err := s.store.Write(ctx, func(tx store.Tx) error {
		category := req.Category
		if req.ParentID != nil {
			parent, err := tx.Get(ctx, *req.ParentID)
			if err != nil {
				return err
			}
			if parent == nil {
				return ParentNotFoundError{ID: *req.ParentID}
			}
			if category == "" {
				category = parent.OwnCategory()
			}
		}

		task := models.Task{
			Title:       req.Title,
			Priority:    req.Priority,
			Status:      req.Status,
			IsCompleted: req.Status == models.StatusCompleted,
			ParentID:    req.ParentID,
		}
		if category != "" {
			task.Category = &category
		}
		if err := tx.Insert(ctx, &task); err != nil {
			return err
		}

		var err error
		node, err = s.resolve(ctx, tx, task)
		return err
	})
	if err != nil {
		s.logFailure("create", 0, err)
		return nil, err
	}

	s.logger.Info("task created", "id", node.ID, "parent_id", derefID(node.ParentID))
	return &node, nil
}

// UpdateTask applies patch to task id. Status and completion are kept in
// sync, and a status change is checked against the task's subtasks.
func (s *TaskService) UpdateTask(ctx context.Context, id int64, patch models.TaskPatch) (*models.TaskNode, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	var node models.TaskNode
	err := s.store.Write(ctx, func(tx store.Tx) error {
		current, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return TaskNotFoundError{ID: id}
		}

		updated := *current
		applyPatch(&updated, patch)

		if patch.ParentID != nil && !sameParent(current.ParentID, patch.ParentID) {
			if err := checkParent(ctx, tx, id, *patch.ParentID); err != nil {
				return err
			}
		}

		if updated.Status != current.Status {
			if err := CheckStatus(ctx, tx, id, updated.Status); err != nil {
				return err
			}
		}

		if err := tx.Update(ctx, &updated); err != nil {
			return err
		}
		node, err = s.resolve(ctx, tx, updated)
		return err
	})
	if err != nil {
		s.logFailure("update", id, err)
		return nil, err
	}

	s.logger.Info("task updated", "id", id, "status", node.Status)
	return &node, nil
}

// ToggleTask flips the completion state of task id.
func (s *TaskService) ToggleTask(ctx context.Context, id int64) (*models.TaskNode, error) {
	var node models.TaskNode
	err := s.store.Write(ctx, func(tx store.Tx) error {
		task, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		if task == nil {
			return TaskNotFoundError{ID: id}
		}

		target := models.StatusCompleted
		if task.IsCompleted {
			target = models.StatusTodo
		}
		if target != task.Status {
			if err := CheckStatus(ctx, tx, id, target); err != nil {
				return err
			}
		}

		task.IsCompleted = !task.IsCompleted
		task.Status = target
		if err := tx.Update(ctx, task); err != nil {
			return err
		}
		node, err = s.resolve(ctx, tx, *task)
		return err
	})
	if err != nil {
		s.logFailure("toggle", id, err)
		return nil, err
	}

	s.logger.Info("task toggled", "id", id, "is_completed", node.IsCompleted)
	return &node, nil
}

// DeleteTask deletes a task and its entire subtree.
func (s *TaskService) DeleteTask(ctx context.Context, id int64) error {
	err := s.store.Write(ctx, func(tx store.Tx) error {
		task, err := tx.Get(ctx, id)
		if err != nil {
			return err
		}
		if task == nil {
			return TaskNotFoundError{ID: id}
		}
		return DeleteRecursive(ctx, tx, id)
	})
	if err != nil {
		s.logFailure("delete", id, err)
		return err
	}

	s.logger.Info("task deleted", "id", id)
	return nil
}

// resolve loads the full task set and builds the node for task.
func (s *TaskService) resolve(ctx context.Context, tx store.Tx, task models.Task) (models.TaskNode, error) {
	all, err := tx.All(ctx)
	if err != nil {
		return models.TaskNode{}, err
	}
	return TaskToNode(task, all), nil
}

func (s *TaskService) logFailure(op string, id int64, err error) {
	var (
		notFound   TaskNotFoundError
		noParent   ParentNotFoundError
		invalid    InvalidTransitionError
		cycle      CycleError
		validation ValidationError
	)
	switch {
	case errors.As(err, &invalid), errors.As(err, &cycle):
		s.logger.Warn("task "+op+" rejected", "id", id, "err", err)
	case errors.As(err, &notFound), errors.As(err, &noParent), errors.As(err, &validation):
		s.logger.Debug("task "+op+" rejected", "id", id, "err", err)
	default:
		s.logger.Error("task "+op+" failed", "id", id, "err", err)
	}
}

// checkParent rejects a new parent that is missing, the task itself, or one of its descendants.
func checkParent(ctx context.Context, tx store.Tx, id, parentID int64) error {
	if parentID == id {
		return CycleError{ID: id, ParentID: parentID}
	}
	parent, err := tx.Get(ctx, parentID)
	if err != nil {
		return err
	}
	if parent == nil {
		return ParentNotFoundError{ID: parentID}
	}
	below, err := IsDescendant(ctx, tx, id, parentID)
	if err != nil {
		return err
	}
	if below {
		return CycleError{ID: id, ParentID: parentID}
	}
	return nil
}

func applyPatch(t *models.Task, patch models.TaskPatch) {
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Category != nil {
		if *patch.Category == "" {
			t.Category = nil
		} else {
			c := *patch.Category
			t.Category = &c
		}
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	if patch.Detach {
		t.ParentID = nil
	} else if patch.ParentID != nil {
		pid := *patch.ParentID
		t.ParentID = &pid
	}

	if patch.IsCompleted != nil {
		if *patch.IsCompleted {
			t.Status = models.StatusCompleted
		} else if t.Status == models.StatusCompleted {
			t.Status = models.StatusTodo
		}
	}
	t.IsCompleted = t.Status == models.StatusCompleted
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func validateNewTask(req models.NewTask) error {
	if err := validateTitle(req.Title); err != nil {
		return err
	}
	if err := validateCategory(req.Category); err != nil {
		return err
	}
	if !models.IsValidPriority(req.Priority) {
		return ValidationError{Field: "priority", Reason: "must be one of low, medium, high"}
	}
	if !models.IsValidStatus(req.Status) {
		return ValidationError{Field: "status", Reason: "must be one of todo, in_progress, completed"}
	}
	return nil
}

func validatePatch(patch models.TaskPatch) error {
	if patch.Title != nil {
		if err := validateTitle(*patch.Title); err != nil {
			return err
		}
	}
	if patch.Category != nil {
		if err := validateCategory(*patch.Category); err != nil {
			return err
		}
	}
	if patch.Priority != nil && !models.IsValidPriority(*patch.Priority) {
		return ValidationError{Field: "priority", Reason: "must be one of low, medium, high"}
	}
	if patch.Status != nil && !models.IsValidStatus(*patch.Status) {
		return ValidationError{Field: "status", Reason: "must be one of todo, in_progress, completed"}
	}
	if patch.Detach && patch.ParentID != nil {
		return ValidationError{Field: "parent_id", Reason: "cannot both set and clear the parent"}
	}
	return nil
}

func validateTitle(title string) error {
	n := utf8.RuneCountInString(title)
	if n == 0 {
		return ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if n > maxTitleLength {
		return ValidationError{Field: "title", Reason: "must be at most 200 characters"}
	}
	return nil
}

func validateCategory(category string) error {
	if utf8.RuneCountInString(category) > maxCategoryLength {
		return ValidationError{Field: "category", Reason: "must be at most 100 characters"}
	}
	return nil
}

func derefID(id *int64) any {
	if id == nil {
		return nil
	}
	return *id
}
