package services

import "tasks-api/app/models"

// keepFunc decides whether a node is retained on its own merit.
type keepFunc func(n *models.TaskNode) bool

// pruneTree filters children first, then keeps a node if it matches or
// still has a surviving child. The input tree is left untouched.
func pruneTree(nodes []models.TaskNode, keep keepFunc) []models.TaskNode {
	result := make([]models.TaskNode, 0, len(nodes))
	for i := range nodes {
		node := nodes[i]
		subtasks := pruneTree(node.Subtasks, keep)
		if keep(&node) || len(subtasks) > 0 {
			node.Subtasks = subtasks
			result = append(result, node)
		}
	}
	return result
}

// FilterByCompletion keeps completed or incomplete tasks and their ancestors.
// CompletionAll and the empty filter return the tree as is.
func FilterByCompletion(nodes []models.TaskNode, filter models.CompletionFilter) []models.TaskNode {
	switch filter {
	case models.CompletionCompleted:
		return pruneTree(nodes, func(n *models.TaskNode) bool { return n.IsCompleted })
	case models.CompletionIncomplete:
		return pruneTree(nodes, func(n *models.TaskNode) bool { return !n.IsCompleted })
	default:
		return nodes
	}
}

// FilterByCategory keeps tasks whose effective category is category, plus their ancestors.
func FilterByCategory(nodes []models.TaskNode, category string) []models.TaskNode {
	if category == "" {
		return nodes
	}
	return pruneTree(nodes, func(n *models.TaskNode) bool {
		return n.EffectiveCategory() == category
	})
}

// FilterByPriority keeps tasks with the given priority, plus their ancestors.
func FilterByPriority(nodes []models.TaskNode, priority models.Priority) []models.TaskNode {
	if priority == "" {
		return nodes
	}
	return pruneTree(nodes, func(n *models.TaskNode) bool {
		return n.Priority == priority
	})
}

// ApplyFilter runs the category, priority and completion filters in that order.
// An unknown priority is ignored.
func ApplyFilter(nodes []models.TaskNode, f models.TaskFilter) []models.TaskNode {
	nodes = FilterByCategory(nodes, f.Category)
	if models.IsValidPriority(f.Priority) {
		nodes = FilterByPriority(nodes, f.Priority)
	}
	return FilterByCompletion(nodes, f.Completion)
}
