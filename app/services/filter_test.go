package services

import (
	"reflect"
	"testing"

	"tasks-api/app/models"
)

func completedTask(id int64, parent *int64, done bool) models.Task {
	t := makeTask(id, parent, "")
	if done {
		t.Status = models.StatusCompleted
		t.IsCompleted = true
	}
	return t
}

func TestFilterByCompletionRetainsAncestors(t *testing.T) {
	// A(incomplete) -> B(completed)
	tasks := []models.Task{
		completedTask(1, nil, false),
		completedTask(2, ptr[int64](1), true),
	}
	tree := BuildTree(tasks, nil)

	completed := FilterByCompletion(tree, models.CompletionCompleted)
	if got, want := ids(completed), []int64{1}; !reflect.DeepEqual(got, want) {
		t.Fatalf("completed roots = %v, want %v", got, want)
	}
	if got, want := ids(completed[0].Subtasks), []int64{2}; !reflect.DeepEqual(got, want) {
		t.Errorf("completed children = %v, want %v", got, want)
	}

	incomplete := FilterByCompletion(tree, models.CompletionIncomplete)
	if got, want := ids(incomplete), []int64{1}; !reflect.DeepEqual(got, want) {
		t.Fatalf("incomplete roots = %v, want %v", got, want)
	}
	if got := len(incomplete[0].Subtasks); got != 0 {
		t.Errorf("incomplete children = %d, want 0", got)
	}
}

func TestFilterByCompletion(t *testing.T) {
	// 1(done) -> 2(open) -> 3(done); 4(done); 5(open)
	tasks := []models.Task{
		completedTask(1, nil, true),
		completedTask(2, ptr[int64](1), false),
		completedTask(3, ptr[int64](2), true),
		completedTask(4, nil, true),
		completedTask(5, nil, false),
	}
	tree := BuildTree(tasks, nil)

	tests := []struct {
		name   string
		filter models.CompletionFilter
		count  int
		roots  []int64
	}{
		{"all is identity", models.CompletionAll, 5, []int64{1, 4, 5}},
		{"empty is identity", "", 5, []int64{1, 4, 5}},
		{"completed", models.CompletionCompleted, 4, []int64{1, 4}},
		{"incomplete keeps chain to open task", models.CompletionIncomplete, 3, []int64{1, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterByCompletion(tree, tt.filter)
			if n := CountNodes(got); n != tt.count {
				t.Errorf("CountNodes = %d, want %d", n, tt.count)
			}
			if r := ids(got); !reflect.DeepEqual(r, tt.roots) {
				t.Errorf("roots = %v, want %v", r, tt.roots)
			}
		})
	}
}

func TestFilterByCategoryUsesEffectiveCategory(t *testing.T) {
	tasks := []models.Task{
		makeTask(1, nil, "work"),
		makeTask(2, ptr[int64](1), ""),
		makeTask(3, nil, ""),
		makeTask(4, ptr[int64](3), "work"),
		makeTask(5, ptr[int64](3), "home"),
		makeTask(6, nil, "home"),
	}
	tree := BuildTree(tasks, nil)

	got := FilterByCategory(tree, "work")
	if r, want := ids(got), []int64{1, 3}; !reflect.DeepEqual(r, want) {
		t.Fatalf("roots = %v, want %v", r, want)
	}
	if r, want := ids(got[0].Subtasks), []int64{2}; !reflect.DeepEqual(r, want) {
		t.Errorf("children of 1 = %v, want %v (inherited category matches)", r, want)
	}
	if r, want := ids(got[1].Subtasks), []int64{4}; !reflect.DeepEqual(r, want) {
		t.Errorf("children of 3 = %v, want %v", r, want)
	}

	if same := FilterByCategory(tree, ""); CountNodes(same) != 6 {
		t.Errorf("empty category should not filter")
	}
}

func TestFilterByPriority(t *testing.T) {
	tasks := []models.Task{
		makeTask(1, nil, ""),
		makeTask(2, ptr[int64](1), ""),
		makeTask(3, nil, ""),
	}
	tasks[1].Priority = models.PriorityHigh
	tree := BuildTree(tasks, nil)

	got := FilterByPriority(tree, models.PriorityHigh)
	if r, want := ids(got), []int64{1}; !reflect.DeepEqual(r, want) {
		t.Fatalf("roots = %v, want %v", r, want)
	}
	if CountNodes(got) != 2 {
		t.Errorf("CountNodes = %d, want 2", CountNodes(got))
	}

	if got := FilterByPriority(tree, models.PriorityLow); len(got) != 0 {
		t.Errorf("low priority roots = %v, want none", ids(got))
	}
}

func TestFiltersDoNotMutateInput(t *testing.T) {
	tasks := []models.Task{
		completedTask(1, nil, false),
		completedTask(2, ptr[int64](1), true),
		completedTask(3, ptr[int64](1), false),
	}
	tree := BuildTree(tasks, nil)

	_ = FilterByCompletion(tree, models.CompletionCompleted)
	_ = FilterByCategory(tree, "nothing")

	if got := CountNodes(tree); got != 3 {
		t.Errorf("original tree has %d nodes after filtering, want 3", got)
	}
	if got, want := ids(tree[0].Subtasks), []int64{2, 3}; !reflect.DeepEqual(got, want) {
		t.Errorf("original children = %v, want %v", got, want)
	}
}

func TestApplyFilter(t *testing.T) {
	tasks := []models.Task{
		makeTask(1, nil, "work"),
		completedTask(2, ptr[int64](1), true),
		makeTask(3, ptr[int64](1), ""),
		makeTask(4, nil, "home"),
	}
	tasks[2].Priority = models.PriorityHigh
	tree := BuildTree(tasks, nil)

	tests := []struct {
		name   string
		filter models.TaskFilter
		count  int
	}{
		{"no filter", models.TaskFilter{}, 4},
		{"category", models.TaskFilter{Category: "work"}, 3},
		{"category and priority", models.TaskFilter{Category: "work", Priority: models.PriorityHigh}, 2},
		{"unknown priority ignored", models.TaskFilter{Priority: "urgent"}, 4},
		{"category and completed", models.TaskFilter{Category: "work", Completion: models.CompletionCompleted}, 2},
		{"priority then incomplete", models.TaskFilter{Priority: models.PriorityHigh, Completion: models.CompletionIncomplete}, 2},
		{"no match", models.TaskFilter{Category: "gym"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CountNodes(ApplyFilter(tree, tt.filter)); got != tt.count {
				t.Errorf("CountNodes = %d, want %d", got, tt.count)
			}
		})
	}
}
