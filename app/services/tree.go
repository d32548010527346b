package services

import "tasks-api/app/models"

// childIndex groups tasks by parent id, keeping input order within each group.
type childIndex struct {
	roots    []models.Task
	children map[int64][]models.Task
	byID     map[int64]models.Task
}

func newChildIndex(tasks []models.Task) *childIndex {
	idx := &childIndex{
		children: make(map[int64][]models.Task),
		byID:     make(map[int64]models.Task, len(tasks)),
	}
	for _, t := range tasks {
		idx.byID[t.ID] = t
		if t.ParentID == nil {
			idx.roots = append(idx.roots, t)
			continue
		}
		idx.children[*t.ParentID] = append(idx.children[*t.ParentID], t)
	}
	return idx
}

func (idx *childIndex) childrenOf(parentID *int64) []models.Task {
	if parentID == nil {
		return idx.roots
	}
	return idx.children[*parentID]
}

// BuildTree assembles the subtree rooted at parentID (nil for the top-level
// forest) from the flat task set. Siblings keep the order of tasks.
func BuildTree(tasks []models.Task, parentID *int64) []models.TaskNode {
	idx := newChildIndex(tasks)
	inherited := ""
	if parentID != nil {
		inherited = idx.effectiveCategory(*parentID)
	}
	return idx.build(parentID, inherited, make(map[int64]bool))
}

func (idx *childIndex) build(parentID *int64, inherited string, visiting map[int64]bool) []models.TaskNode {
	kids := idx.childrenOf(parentID)
	nodes := make([]models.TaskNode, 0, len(kids))
	for _, t := range kids {
		if visiting[t.ID] {
			continue
		}
		category := inherited
		if own := t.OwnCategory(); own != "" {
			category = own
		}

		visiting[t.ID] = true
		id := t.ID
		subtasks := idx.build(&id, category, visiting)
		delete(visiting, t.ID)

		nodes = append(nodes, models.NewTaskNode(t, category, subtasks))
	}
	return nodes
}

// effectiveCategory walks up from id to the nearest ancestor with its own category.
func (idx *childIndex) effectiveCategory(id int64) string {
	seen := make(map[int64]bool)
	for {
		t, ok := idx.byID[id]
		if !ok || seen[id] {
			return ""
		}
		if c := t.OwnCategory(); c != "" {
			return c
		}
		if t.ParentID == nil {
			return ""
		}
		seen[id] = true
		id = *t.ParentID
	}
}

// TaskToNode resolves one task's effective category through its full ancestor
// chain and attaches its subtree.
func TaskToNode(task models.Task, tasks []models.Task) models.TaskNode {
	idx := newChildIndex(tasks)
	category := task.OwnCategory()
	if category == "" && task.ParentID != nil {
		category = idx.effectiveCategory(*task.ParentID)
	}
	id := task.ID
	subtasks := idx.build(&id, category, map[int64]bool{task.ID: true})
	return models.NewTaskNode(task, category, subtasks)
}

// CountNodes counts every node in the forest, at every depth.
func CountNodes(nodes []models.TaskNode) int {
	count := len(nodes)
	for i := range nodes {
		count += CountNodes(nodes[i].Subtasks)
	}
	return count
}
