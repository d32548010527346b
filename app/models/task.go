package models

import "time"

// Status is the workflow state of a task.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Priority is the importance level of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// IsValidStatus checks if a status string is valid.
func IsValidStatus(s Status) bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsValidPriority checks if a priority string is valid.
func IsValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	default:
		return false
	}
}

// Task is a flat task record as held by the store.
// ParentID is nil for root-level tasks.
type Task struct {
	ID          int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"not null;index" json:"title"`
	Category    *string   `json:"category"`
	Priority    Priority  `gorm:"not null;default:medium" json:"priority"`
	Status      Status    `gorm:"not null;default:todo" json:"status"`
	IsCompleted bool      `gorm:"not null;default:false" json:"is_completed"`
	ParentID    *int64    `gorm:"index" json:"parent_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Task model.
func (Task) TableName() string {
	return "tasks"
}

// OwnCategory returns the task's own category, or "" when unset.
func (t *Task) OwnCategory() string {
	if t.Category == nil {
		return ""
	}
	return *t.Category
}

// TaskNode is a task together with its resolved category and subtree.
// Category holds the effective category, not the stored one.
type TaskNode struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Category    *string    `json:"category"`
	Priority    Priority   `json:"priority"`
	Status      Status     `json:"status"`
	IsCompleted bool       `json:"is_completed"`
	ParentID    *int64     `json:"parent_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Subtasks    []TaskNode `json:"subtasks"`
}

// NewTaskNode wraps t with the given effective category and children.
func NewTaskNode(t Task, category string, subtasks []TaskNode) TaskNode {
	var cat *string
	if category != "" {
		c := category
		cat = &c
	}
	if subtasks == nil {
		subtasks = []TaskNode{}
	}
	return TaskNode{
		ID:          t.ID,
		Title:       t.Title,
		Category:    cat,
		Priority:    t.Priority,
		Status:      t.Status,
		IsCompleted: t.IsCompleted,
		ParentID:    t.ParentID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		Subtasks:    subtasks,
	}
}

// EffectiveCategory returns the resolved category, or "" when none applies.
func (n *TaskNode) EffectiveCategory() string {
	if n.Category == nil {
		return ""
	}
	return *n.Category
}

// TaskList is the result of listing tasks.
// Total counts every node at every depth.
type TaskList struct {
	Tasks []TaskNode `json:"tasks"`
	Total int        `json:"total"`
}

// NewTask holds the data needed to create a task.
type NewTask struct {
	Title    string
	Category string
	Priority Priority
	Status   Status
	ParentID *int64
}

// TaskPatch carries the fields of a partial update. Nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Category    *string // "" clears the own category
	Priority    *Priority
	Status      *Status
	IsCompleted *bool
	ParentID    *int64
	Detach      bool // move the task to root level
}

// CompletionFilter selects tasks by completion state.
type CompletionFilter string

const (
	CompletionAll        CompletionFilter = "all"
	CompletionCompleted  CompletionFilter = "completed"
	CompletionIncomplete CompletionFilter = "incomplete"
)

// TaskFilter holds the optional list criteria. Zero values mean no filtering.
type TaskFilter struct {
	Completion CompletionFilter
	Category   string
	Priority   Priority
}
