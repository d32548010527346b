package controllers

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"tasks-api/app/services"
)

const createTaskSchema = `{
	"type": "object",
	"required": ["title"],
	"properties": {
		"title": {"type": "string", "minLength": 1, "maxLength": 200},
		"category": {"type": ["string", "null"], "maxLength": 100},
		"priority": {"enum": ["low", "medium", "high"]},
		"status": {"enum": ["todo", "in_progress", "completed"]},
		"parent_id": {"type": ["integer", "null"], "minimum": 1}
	}
}`

const updateTaskSchema = `{
	"type": "object",
	"properties": {
		"title": {"type": "string", "minLength": 1, "maxLength": 200},
		"category": {"type": ["string", "null"], "maxLength": 100},
		"priority": {"enum": ["low", "medium", "high"]},
		"status": {"enum": ["todo", "in_progress", "completed"]},
		"is_completed": {"type": "boolean"},
		"parent_id": {"type": ["integer", "null"], "minimum": 1}
	}
}`

// Schemas holds the compiled request schemas.
type Schemas struct {
	CreateTask *jsonschema.Schema
	UpdateTask *jsonschema.Schema
}

// CompileSchemas compiles the request body schemas.
func CompileSchemas() (*Schemas, error) {
	compiler := jsonschema.NewCompiler()
	resources := map[string]string{
		"create_task.json": createTaskSchema,
		"update_task.json": updateTaskSchema,
	}
	for name, src := range resources {
		if err := compiler.AddResource(name, strings.NewReader(src)); err != nil {
			return nil, fmt.Errorf("failed to add schema %s: %w", name, err)
		}
	}

	create, err := compiler.Compile("create_task.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile create schema: %w", err)
	}
	update, err := compiler.Compile("update_task.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile update schema: %w", err)
	}
	return &Schemas{CreateTask: create, UpdateTask: update}, nil
}

// validatePayload checks doc against schema and reports the first failing
// field as a services.ValidationError.
func validatePayload(schema *jsonschema.Schema, doc any) error {
	err := schema.Validate(doc)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return services.ValidationError{Reason: err.Error()}
	}

	leaves := leafErrors(ve)
	sort.Slice(leaves, func(i, j int) bool {
		return leaves[i].InstanceLocation < leaves[j].InstanceLocation
	})
	first := leaves[0]
	return services.ValidationError{
		Field:  strings.TrimPrefix(first.InstanceLocation, "/"),
		Reason: first.Message,
	}
}

func leafErrors(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var leaves []*jsonschema.ValidationError
	for _, cause := range ve.Causes {
		leaves = append(leaves, leafErrors(cause)...)
	}
	return leaves
}
