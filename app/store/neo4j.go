package store

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"tasks-api/app/models"
)

const taskColumns = "RETURN t.id AS id, t.title AS title, t.category AS category, " +
	"t.priority AS priority, t.status AS status, t.is_completed AS is_completed, " +
	"p.id AS parent_id, t.created_at AS created_at, t.updated_at AS updated_at"

// Neo4jStore keeps tasks as :Task nodes linked to their parent by HAS_PARENT.
// Integer ids come from a single :Sequence node.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
}

// NewNeo4jStore creates a Neo4jStore. An empty database selects the server default.
func NewNeo4jStore(driver neo4j.DriverWithContext, database string) *Neo4jStore {
	return &Neo4jStore{driver: driver, database: database}
}

// Migrate creates the uniqueness constraint on task ids.
func (s *Neo4jStore) Migrate(ctx context.Context) error {
	session := s.newSession(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		_, err := tx.Run(ctx,
			"CREATE CONSTRAINT task_id IF NOT EXISTS FOR (t:Task) REQUIRE t.id IS UNIQUE",
			nil,
		)
		return nil, err
	})
	return err
}

// Read runs fn in a managed read transaction.
func (s *Neo4jStore) Read(ctx context.Context, fn func(Tx) error) error {
	session := s.newSession(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	_, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, fn(&neo4jTx{tx: tx})
	})
	return err
}

// Write runs fn in a managed write transaction. The driver may retry fn on
// transient failures.
func (s *Neo4jStore) Write(ctx context.Context, fn func(Tx) error) error {
	session := s.newSession(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, fn(&neo4jTx{tx: tx})
	})
	return err
}

// Close closes the driver.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

func (s *Neo4jStore) newSession(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: s.database})
}

type neo4jTx struct {
	tx neo4j.ManagedTransaction
}

func (t *neo4jTx) queryTasks(ctx context.Context, cypher string, params map[string]any) ([]models.Task, error) {
	res, err := t.tx.Run(ctx, cypher, params)
	if err != nil {
		return nil, err
	}

	var tasks []models.Task
	for res.Next(ctx) {
		task, err := taskFromRecord(res.Record())
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := res.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (t *neo4jTx) All(ctx context.Context) ([]models.Task, error) {
	tasks, err := t.queryTasks(ctx,
		"MATCH (t:Task) "+
			"OPTIONAL MATCH (t)-[:HAS_PARENT]->(p:Task) "+
			taskColumns+" ORDER BY t.id",
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	return tasks, nil
}

func (t *neo4jTx) AllByCreatedDesc(ctx context.Context) ([]models.Task, error) {
	tasks, err := t.queryTasks(ctx,
		"MATCH (t:Task) "+
			"OPTIONAL MATCH (t)-[:HAS_PARENT]->(p:Task) "+
			taskColumns+" ORDER BY t.created_at DESC, t.id DESC",
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}
	return tasks, nil
}

func (t *neo4jTx) Get(ctx context.Context, id int64) (*models.Task, error) {
	tasks, err := t.queryTasks(ctx,
		"MATCH (t:Task {id: $id}) "+
			"OPTIONAL MATCH (t)-[:HAS_PARENT]->(p:Task) "+
			taskColumns,
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load task %d: %w", id, err)
	}
	if len(tasks) == 0 {
		return nil, nil
	}
	return &tasks[0], nil
}

func (t *neo4jTx) Children(ctx context.Context, id int64) ([]models.Task, error) {
	tasks, err := t.queryTasks(ctx,
		"MATCH (t:Task)-[:HAS_PARENT]->(p:Task {id: $id}) "+
			taskColumns+" ORDER BY t.id",
		map[string]any{"id": id},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load children of task %d: %w", id, err)
	}
	return tasks, nil
}

func (t *neo4jTx) Categories(ctx context.Context) ([]string, error) {
	res, err := t.tx.Run(ctx,
		"MATCH (t:Task) WHERE t.category IS NOT NULL AND t.category <> '' "+
			"RETURN DISTINCT t.category AS category ORDER BY category",
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}

	var categories []string
	for res.Next(ctx) {
		if c, ok := res.Record().Values[0].(string); ok {
			categories = append(categories, c)
		}
	}
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	return categories, nil
}

func (t *neo4jTx) Insert(ctx context.Context, task *models.Task) error {
	now := time.Now().UTC()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = now
	}
	task.UpdatedAt = now

	res, err := t.tx.Run(ctx,
		"MERGE (s:Sequence {name: 'task'}) "+
			"ON CREATE SET s.value = 0 "+
			"SET s.value = s.value + 1 "+
			"WITH s.value AS id "+
			"CREATE (t:Task {id: id, title: $title, category: $category, priority: $priority, "+
			"status: $status, is_completed: $is_completed, created_at: $created_at, updated_at: $updated_at}) "+
			"RETURN t.id AS id",
		map[string]any{
			"title":        task.Title,
			"category":     nullableString(task.Category),
			"priority":     string(task.Priority),
			"status":       string(task.Status),
			"is_completed": task.IsCompleted,
			"created_at":   task.CreatedAt,
			"updated_at":   task.UpdatedAt,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	record, err := res.Single(ctx)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	id, ok := record.Values[0].(int64)
	if !ok {
		return fmt.Errorf("failed to create task: unexpected id type %T", record.Values[0])
	}
	task.ID = id

	return t.linkParent(ctx, task)
}

func (t *neo4jTx) Update(ctx context.Context, task *models.Task) error {
	task.UpdatedAt = time.Now().UTC()

	_, err := t.tx.Run(ctx,
		"MATCH (t:Task {id: $id}) "+
			"SET t.title = $title, t.category = $category, t.priority = $priority, "+
			"t.status = $status, t.is_completed = $is_completed, t.updated_at = $updated_at "+
			"WITH t "+
			"OPTIONAL MATCH (t)-[r:HAS_PARENT]->(:Task) "+
			"DELETE r",
		map[string]any{
			"id":           task.ID,
			"title":        task.Title,
			"category":     nullableString(task.Category),
			"priority":     string(task.Priority),
			"status":       string(task.Status),
			"is_completed": task.IsCompleted,
			"updated_at":   task.UpdatedAt,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to update task %d: %w", task.ID, err)
	}

	return t.linkParent(ctx, task)
}

func (t *neo4jTx) linkParent(ctx context.Context, task *models.Task) error {
	if task.ParentID == nil {
		return nil
	}
	_, err := t.tx.Run(ctx,
		"MATCH (child:Task {id: $childID}), (parent:Task {id: $parentID}) "+
			"CREATE (child)-[:HAS_PARENT]->(parent)",
		map[string]any{
			"childID":  task.ID,
			"parentID": *task.ParentID,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to link task %d to parent %d: %w", task.ID, *task.ParentID, err)
	}
	return nil
}

func (t *neo4jTx) Delete(ctx context.Context, id int64) error {
	_, err := t.tx.Run(ctx,
		"MATCH (t:Task {id: $id}) DETACH DELETE t",
		map[string]any{"id": id},
	)
	if err != nil {
		return fmt.Errorf("failed to delete task %d: %w", id, err)
	}
	return nil
}

// taskFromRecord maps a row shaped by taskColumns onto a Task.
func taskFromRecord(record *neo4j.Record) (models.Task, error) {
	var task models.Task

	id, ok := recordValue(record, "id").(int64)
	if !ok {
		return task, fmt.Errorf("task record has no integer id")
	}
	task.ID = id
	task.Title, _ = recordValue(record, "title").(string)
	if c, ok := recordValue(record, "category").(string); ok && c != "" {
		task.Category = &c
	}
	if p, ok := recordValue(record, "priority").(string); ok {
		task.Priority = models.Priority(p)
	}
	if s, ok := recordValue(record, "status").(string); ok {
		task.Status = models.Status(s)
	}
	task.IsCompleted, _ = recordValue(record, "is_completed").(bool)
	if pid, ok := recordValue(record, "parent_id").(int64); ok {
		task.ParentID = &pid
	}
	task.CreatedAt, _ = recordValue(record, "created_at").(time.Time)
	task.UpdatedAt, _ = recordValue(record, "updated_at").(time.Time)
	return task, nil
}

func recordValue(record *neo4j.Record, key string) any {
	v, _ := record.Get(key)
	return v
}

func nullableString(s *string) any {
	if s == nil || *s == "" {
		return nil
	}
	return *s
}
