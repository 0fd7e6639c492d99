package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `syncd keeps proposal documents, their cloud copies, and their sibling
documents consistent. Three engines: Version Store, Sync Tracker, Coordination Rules.

Core concepts:
- Document: a registered artifact (proposal, contract, cost_summary, ...). Content lives in versions, never on the document.
- Version: an immutable full snapshot of a document's content plus a diff against its predecessor. Versions only append.
- Sync state: per-document tracker for a cloud provider binding (onedrive, google_drive, sharepoint). Statuses: idle, syncing, synced, conflict, error.
- Conflict: raised when both the editor and the cloud copy changed since the last sync point. Nothing is lost, both versions stay in the store.
- Coordination rule: "when <source_doc_type>.<source_field> changes, write <transform>(value) to <target_doc_type>.<target_field>" across every matching document.

Rules of engagement (default workflow):
1) Register documents with create_document; write content with append_version, or record_edit once sync tracking is on.
2) Track cloud copies: init_sync binds a document to a provider file; record_edit then watches for divergence and raises conflicts instead of overwriting.
3) When record_edit returns a conflict: inspect both sides with diff_versions, optionally merge_preview, then resolve_conflict (keep_mp, keep_cloud, or merge with your own snapshot).
4) Propagate shared values: create_rule, then preview_cascade with a candidate value before execute_rule. Executions write ordinary versions, so targets keep full history.
5) Every cascade attempt lands in get_coordination_log; administrative actions land in get_recent_audit.

Failure notes:
- execute_rule is not atomic: a PARTIAL_CASCADE error lists the targets that were already written.
- Writes race safely: concurrent append_version calls retry on version-number collisions.

Docs:
- syncd://docs/index (what to read when)
- syncd://docs/concepts (glossary + invariants)
- syncd://docs/workflows/conflicts
- syncd://docs/workflows/coordination
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "syncd://docs/index",
		Name:        "docs_index",
		Title:       "syncd docs index",
		Description: "Entry point for agent-facing docs: what exists and what to read.",
		Content: `# syncd: Agent Docs Index

Keep baseline context small; load deeper docs only when you hit the topic.

## Quick start (no deep docs)

1. create_document, then append_version with a JSON snapshot of the content.
2. get_latest_version / get_version_history / diff_versions to inspect.
3. get_artifact_statuses for a one-call dashboard of every document.

## Read next when you need it

- syncd://docs/concepts when a status or error code is unclear.
- syncd://docs/workflows/conflicts the first time record_edit returns a conflict.
- syncd://docs/workflows/coordination before creating rules.

## Known limitations

- Conflict detection is timestamp-based against the last sync point; it flags divergence, it does not auto-merge.
- merge_preview only merges multi-line text fields line by line; other field types keep the local value.
- Cascades are sequential and not atomic. Check get_coordination_log after a PARTIAL_CASCADE error.
`,
	},
	{
		URI:         "syncd://docs/concepts",
		Name:        "docs_concepts",
		Title:       "Concepts and invariants",
		Description: "Glossary of documents, versions, sync states, conflicts, and rules.",
		Content: `# Concepts

## Version Store

- Versions are append-only. There is no update or delete; a correction is a new version.
- Version numbers are per-document, contiguous from 1. Concurrent writers retry on collision, so numbers never skip.
- Each version past the first carries a diff against its predecessor: added, removed, and modified field paths.

## Sync Tracker

- One sync state per document. init_sync creates it in status idle.
- Statuses: idle, syncing, synced, conflict, error. Only the tracker itself moves a document into conflict; set_sync_status accepts syncing, synced, and error.
- Divergence test: an edit from one side conflicts when the other side also edited after the last sync point.
- While a conflict is pending, further edits fold into it rather than raising a second conflict.

## Conflicts

- A conflict names both competing versions (local_version_id, cloud_version_id). Both stay in the store forever.
- Resolutions: keep_mp (local side wins), keep_cloud (cloud side wins), merge (you supply the merged snapshot).
- Resolving appends the winning content as a new editor version and returns the document to synced.

## Coordination Rules

- A rule links a source document type and field to a target document type and field with a transform: copy, format, aggregate, or reference.
- format renders numbers as dollar currency and RFC3339 timestamps as long dates.
- aggregate sums a list field, coercing numeric strings and booleans.
- reference writes a bracketed reference string instead of the raw value.
- A rule may not target its own source document type.
`,
	},
	{
		URI:         "syncd://docs/workflows/conflicts",
		Name:        "docs_workflow_conflicts",
		Title:       "Handling a sync conflict",
		Description: "What to do when record_edit reports a conflict.",
		Content: `# Handling a sync conflict

1. record_edit returned a non-null conflict. The edit was still stored as a version; nothing is lost.
2. Call diff_versions with the conflict's local_version_id and cloud_version_id to see what actually diverged.
3. Optionally call merge_preview with the document_id. Divergent text fields come back wrapped in conflict markers:

   <<<<<<< proposal
   local line
   =======
   cloud line
   >>>>>>> cloud

4. Resolve:
   - resolve_conflict with keep_mp or keep_cloud to take one side as-is.
   - resolve_conflict with merge and a merged_snapshot you built (for example from the preview, with markers edited away).
5. The document returns to synced. The losing side's version remains in history.

Do not loop on record_edit while a conflict is pending: new edits update the pending conflict instead of resolving it.
`,
	},
	{
		URI:         "syncd://docs/workflows/coordination",
		Name:        "docs_workflow_coordination",
		Title:       "Cross-document coordination",
		Description: "Creating, previewing, and executing coordination rules.",
		Content: `# Cross-document coordination

1. create_rule, e.g. contract.value -> cost_summary.summary.total with transform format.
2. preview_cascade with the rule and a hypothetical source value. Nothing is read from the trigger document and nothing is written; inspect old and new values per target before the value ever lands anywhere.
3. execute_rule to apply. Each target gets a new version with only the target field changed; sibling fields survive.
4. get_coordination_log shows exactly one entry per attempt carrying the affected documents and applied changes: applied, failed (with the error and how far it got), or skipped (source field absent, or no targets).

Failure modes:
- TOO_MANY_TARGETS: the cascade would touch more documents than the configured cap. Split the target doc type or raise the cap.
- PARTIAL_CASCADE: some targets were written before one failed. The error details list the applied changes; the log entry preserves them too. Re-running the rule is safe, the transform is idempotent over the already-updated targets.
- A skipped cascade (source field absent on the trigger, or no matching targets) is not an error; it logs skipped and returns no changes.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
