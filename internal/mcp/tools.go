package mcp

// ToolDefinition describes a callable tool.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

// buildToolCatalog returns all available MCP tools
func buildToolCatalog() []ToolDefinition {
	return []ToolDefinition{
		// Documents
		{
			Name:        "create_document",
			Description: "Register a document in the version store",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"id": map[string]any{
						"type":        "string",
						"description": "Unique document identifier (optional, will be generated if not provided)",
					},
					"doc_type": map[string]any{
						"type":        "string",
						"description": "Document type, e.g. proposal, contract, cost_summary",
					},
					"title": map[string]any{
						"type":        "string",
						"description": "Document display title",
					},
				},
				"required": []string{"doc_type", "title"},
			},
		},
		{
			Name:        "list_documents",
			Description: "List all documents for the current tenant",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},

		// Versions
		{
			Name:        "append_version",
			Description: "Append a new immutable version of a document's content",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"document_id": map[string]any{
						"type":        "string",
						"description": "Document to version",
					},
					"source": map[string]any{
						"type":        "string",
						"description": "Where the content came from",
						"enum":        []string{"editor", "word_online", "excel_online", "pptx_online", "google_docs", "google_sheets"},
					},
					"snapshot": map[string]any{
						"description": "Full document content as a JSON value",
					},
				},
				"required": []string{"document_id", "source", "snapshot"},
			},
		},
		{
			Name:        "record_edit",
			Description: "Record an edit through the sync tracker, detecting conflicts with the other side",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"document_id": map[string]any{
						"type":        "string",
						"description": "Document being edited",
					},
					"source": map[string]any{
						"type":        "string",
						"description": "Where the edit came from",
						"enum":        []string{"editor", "word_online", "excel_online", "pptx_online", "google_docs", "google_sheets"},
					},
					"snapshot": map[string]any{
						"description": "Full document content after the edit as a JSON value",
					},
				},
				"required": []string{"document_id", "source", "snapshot"},
			},
		},
		{
			Name:        "get_latest_version",
			Description: "Get the most recent version of a document",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"document_id": map[string]any{
						"type":        "string",
						"description": "Document ID",
					},
				},
				"required": []string{"document_id"},
			},
		},
		{
			Name:        "get_version_history",
			Description: "List a document's versions, newest first",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"document_id": map[string]any{
						"type":        "string",
						"description": "Document ID",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum versions to return (default 50)",
					},
				},
				"required": []string{"document_id"},
			},
		},
		{
			Name:        "diff_versions",
			Description: "Compute the field-level diff between two versions of the same document",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"old_version_id": map[string]any{
						"type":        "string",
						"description": "Older version ID",
					},
					"new_version_id": map[string]any{
						"type":        "string",
						"description": "Newer version ID",
					},
				},
				"required": []string{"old_version_id", "new_version_id"},
			},
		},
		{
			Name:        "get_artifact_statuses",
			Description: "List every document with its sync status, last editor, and word count",
			InputSchema: map[string]any{
				"type":       "object",
				"properties": map[string]any{},
			},
		},

		// Sync
		{
			Name:        "init_sync",
			Description: "Bind a document to a cloud provider file and start tracking sync",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"document_id": map[string]any{
						"type":        "string",
						"description": "Document to track",
					},
					"provider": map[string]any{
						"type":        "string",
						"description": "Cloud storage provider",
						"enum":        []string{"onedrive", "google_drive", "sharepoint"},
					},
					"cloud_file_id": map[string]any{
						"type":        "string",
						"description": "Provider-side file identifier",
					},
				},
				"required": []string{"document_id", "provider", "cloud_file_id"},
			},
		},
		{
			Name:        "set_sync_status",
			Description: "Report a sync engine status transition for a document",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"document_id": map[string]any{
						"type":        "string",
						"description": "Tracked document",
					},
					"status": map[string]any{
						"type":        "string",
						"description": "New status",
						"enum":        []string{"syncing", "synced", "error"},
					},
				},
				"required": []string{"document_id", "status"},
			},
		},
		{
			Name:        "get_sync_state",
			Description: "Get the sync state of a tracked document",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"document_id": map[string]any{
						"type":        "string",
						"description": "Tracked document",
					},
				},
				"required": []string{"document_id"},
			},
		},
		{
			Name:        "get_conflict",
			Description: "Get a document's pending sync conflict, if any",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"document_id": map[string]any{
						"type":        "string",
						"description": "Tracked document",
					},
				},
				"required": []string{"document_id"},
			},
		},
		{
			Name:        "merge_preview",
			Description: "Build a non-destructive merge of both sides of a pending conflict, with conflict markers on divergent text",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"document_id": map[string]any{
						"type":        "string",
						"description": "Document with a pending conflict",
					},
				},
				"required": []string{"document_id"},
			},
		},
		{
			Name:        "resolve_conflict",
			Description: "Resolve a pending conflict by keeping one side or supplying a merged snapshot",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"conflict_id": map[string]any{
						"type":        "string",
						"description": "Conflict to resolve",
					},
					"resolution": map[string]any{
						"type":        "string",
						"description": "Resolution strategy",
						"enum":        []string{"keep_mp", "keep_cloud", "merge"},
					},
					"merged_snapshot": map[string]any{
						"description": "Merged content as a JSON value (required for merge)",
					},
				},
				"required": []string{"conflict_id", "resolution"},
			},
		},

		// Coordination
		{
			Name:        "create_rule",
			Description: "Create a coordination rule propagating a field from one document type to another",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"description": map[string]any{
						"type":        "string",
						"description": "Free-text note on what the rule is for",
					},
					"source_doc_type": map[string]any{
						"type":        "string",
						"description": "Document type the rule listens to",
					},
					"source_field": map[string]any{
						"type":        "string",
						"description": "Dot path of the source field",
					},
					"target_doc_type": map[string]any{
						"type":        "string",
						"description": "Document type the rule writes to",
					},
					"target_field": map[string]any{
						"type":        "string",
						"description": "Dot path of the target field",
					},
					"transform": map[string]any{
						"type":        "string",
						"description": "Value transform applied before writing",
						"enum":        []string{"copy", "format", "aggregate", "reference"},
					},
				},
				"required": []string{"source_doc_type", "source_field", "target_doc_type", "target_field", "transform"},
			},
		},
		{
			Name:        "list_rules",
			Description: "List coordination rules",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"active_only": map[string]any{
						"type":        "boolean",
						"description": "Only return active rules",
					},
				},
			},
		},
		{
			Name:        "deactivate_rule",
			Description: "Deactivate a coordination rule so it no longer cascades",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"rule_id": map[string]any{
						"type":        "string",
						"description": "Rule to deactivate",
					},
				},
				"required": []string{"rule_id"},
			},
		},
		{
			Name:        "execute_rule",
			Description: "Run a rule's cascade from a trigger document, writing new versions of every target",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"rule_id": map[string]any{
						"type":        "string",
						"description": "Rule to execute",
					},
					"trigger_doc_id": map[string]any{
						"type":        "string",
						"description": "Document whose change triggers the cascade",
					},
				},
				"required": []string{"rule_id", "trigger_doc_id"},
			},
		},
		{
			Name:        "preview_cascade",
			Description: "Show what a rule's cascade would change if its source field held the given value, without writing anything",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"rule_id": map[string]any{
						"type":        "string",
						"description": "Rule to preview",
					},
					"value": map[string]any{
						"description": "Hypothetical source value to simulate",
					},
				},
				"required": []string{"rule_id", "value"},
			},
		},
		{
			Name:        "get_coordination_log",
			Description: "List coordination rule executions, newest first",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"rule_id": map[string]any{
						"type":        "string",
						"description": "Filter by rule",
					},
					"trigger_doc_id": map[string]any{
						"type":        "string",
						"description": "Filter by trigger document",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum entries to return (default 100)",
					},
				},
			},
		},

		// Audit
		{
			Name:        "get_recent_audit",
			Description: "List recent audit log entries, newest first",
			InputSchema: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"action": map[string]any{
						"type":        "string",
						"description": "Filter by action",
					},
					"entity_type": map[string]any{
						"type":        "string",
						"description": "Filter by entity type",
					},
					"limit": map[string]any{
						"type":        "integer",
						"description": "Maximum entries to return (default 100)",
					},
				},
			},
		},
	}
}
