package tools

import "taskflow-backend/internal/ai"

// Definitions is the function catalog advertised to the model. The same
// argument structs the dispatcher decodes into (dispatcher.go) define
// what is accepted here, so catalog and validation cannot drift apart.
// Only primitive field types are exposed.
func Definitions() []ai.ToolDefinition {
	return []ai.ToolDefinition{
		{
			Name:        "create_task",
			Description: "Create a task",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title": map[string]any{
						"type":        "string",
						"description": "The title of the task",
					},
					"description": map[string]any{
						"type":        "string",
						"description": "Detailed description",
					},
					"priority": map[string]any{
						"type":        "string",
						"description": "Low, Medium, or High",
					},
					"due_date": map[string]any{
						"type":        "string",
						"description": "YYYY-MM-DD",
					},
					"enable_reminder": map[string]any{
						"type": "boolean",
					},
				},
				"required": []string{"title"},
			},
		},
		{
			Name:        "list_tasks",
			Description: "List tasks",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"title": map[string]any{
						"type":        "string",
						"description": "Filter by title substring",
					},
					"due_date": map[string]any{
						"type":        "string",
						"description": "YYYY-MM-DD",
					},
					"priority": map[string]any{
						"type":        "string",
						"description": "Low, Medium, or High",
					},
				},
			},
		},
		{
			Name:        "update_task",
			Description: "Update a task",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"task_id": map[string]any{
						"type":        "string",
						"description": "Task ID",
					},
					"title": map[string]any{
						"type": "string",
					},
					"description": map[string]any{
						"type": "string",
					},
					"priority": map[string]any{
						"type":        "string",
						"description": "Low, Medium, or High",
					},
					"due_date": map[string]any{
						"type":        "string",
						"description": "YYYY-MM-DD",
					},
					"enable_reminder": map[string]any{
						"type": "boolean",
					},
				},
				"required": []string{"task_id"},
			},
		},
		{
			Name:        "delete_task",
			Description: "Delete a task",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"task_id": map[string]any{
						"type":        "string",
						"description": "Task ID",
					},
				},
				"required": []string{"task_id"},
			},
		},
	}
}
