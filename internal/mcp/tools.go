package mcp

// ToolDefinition describes a callable tool
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema map[string]any
}

func objectSchema(properties map[string]any, required ...string) map[string]any {
	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func integerProp(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

var projectIDProp = stringProp("Project ID (omit to use default project)")

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		// Projects
		{
			Name:        "create_project",
			Description: "Create a new project to hold an ordered list of chapters",
			InputSchema: objectSchema(map[string]any{
				"id":          stringProp("Unique project identifier (optional, will be generated if not provided)"),
				"name":        stringProp("Project display name"),
				"description": stringProp("Project description"),
			}, "name"),
		},
		{
			Name:        "list_projects",
			Description: "List all projects for the current tenant with their chapter counts",
			InputSchema: objectSchema(map[string]any{}),
		},
		{
			Name:        "get_project",
			Description: "Get details for a specific project or the default project",
			InputSchema: objectSchema(map[string]any{
				"id": stringProp("Project ID (omit to get default project)"),
			}),
		},

		// Chapters
		{
			Name: "create_chapter",
			Description: "Append a chapter after the project's last chapter. " +
				"Without a title it is named \"Chapter N\" after its order number.",
			InputSchema: objectSchema(map[string]any{
				"project_id": projectIDProp,
				"title":      stringProp("Chapter title (optional)"),
			}),
		},
		{
			Name:        "list_chapters",
			Description: "List a project's chapters by order number",
			InputSchema: objectSchema(map[string]any{
				"project_id": projectIDProp,
			}),
		},
		{
			Name:        "list_all_chapters",
			Description: "List every chapter of the tenant, grouped by project",
			InputSchema: objectSchema(map[string]any{}),
		},
		{
			Name:        "get_chapter",
			Description: "Get a chapter by ID",
			InputSchema: objectSchema(map[string]any{
				"id": stringProp("Chapter ID"),
			}, "id"),
		},
		{
			Name: "move_chapter",
			Description: "Move a chapter to a new order number. Chapters in between shift by one; " +
				"default titles follow their new numbers, custom titles are kept.",
			InputSchema: objectSchema(map[string]any{
				"project_id":   stringProp("Project ID (omit to use the chapter's project)"),
				"id":           stringProp("Chapter ID"),
				"order_number": integerProp("Target order number, 1 to the chapter count"),
			}, "id", "order_number"),
		},
		{
			Name:        "rename_chapter",
			Description: "Set a chapter's title",
			InputSchema: objectSchema(map[string]any{
				"id":    stringProp("Chapter ID"),
				"title": stringProp("New title"),
			}, "id", "title"),
		},
		{
			Name:        "remove_chapter",
			Description: "Delete a chapter and close the gap it leaves",
			InputSchema: objectSchema(map[string]any{
				"id": stringProp("Chapter ID"),
			}, "id"),
		},
		{
			Name:        "normalize_chapters",
			Description: "Renumber a project's chapters to 1..N keeping their relative order",
			InputSchema: objectSchema(map[string]any{
				"project_id": projectIDProp,
			}),
		},
		{
			Name:        "search_chapters",
			Description: "Search a project's chapters by title",
			InputSchema: objectSchema(map[string]any{
				"project_id": projectIDProp,
				"query":      stringProp("Search query text"),
				"limit":      integerProp("Maximum number of results"),
			}, "query"),
		},

		// Labels and activity
		{
			Name:        "list_labels",
			Description: "List the text block labels of a chapter",
			InputSchema: objectSchema(map[string]any{
				"chapter_id": stringProp("Chapter ID"),
			}, "chapter_id"),
		},
		{
			Name:        "recent_activity",
			Description: "List recent chapter changes in a project, newest first",
			InputSchema: objectSchema(map[string]any{
				"project_id": projectIDProp,
				"chapter_id": stringProp("Only show activity for this chapter"),
				"limit":      integerProp("Maximum number of entries (default 50)"),
			}),
		},
	}
}
