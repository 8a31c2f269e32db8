package model

import "time"

// Publish audit operations.
const (
	AuditOperationPublish = "PUBLISH"
)

// PublishSnapshot captures what one publish did: the code that went live,
// the siblings it archived and the draft successor it spawned, together
// with the DSL that was published.
type PublishSnapshot struct {
	PublishedVersionCode string      `json:"publishedVersionCode"`
	ArchivedVersionCodes []string    `json:"archivedVersionCodes,omitempty"`
	NewDraftVersionCode  string      `json:"newDraftVersionCode"`
	DSL                  WorkflowDSL `json:"dsl"`
}

// PublishAudit is one immutable audit trail row, written exactly once per
// successful publish and never mutated or deleted.
type PublishAudit struct {
	ID                string          `json:"id"`
	DefinitionID      string          `json:"definitionId"`
	WorkflowVersionID string          `json:"workflowVersionId"`
	Operation         string          `json:"operation"`
	PublishedByUserID string          `json:"publishedByUserId"`
	Snapshot          PublishSnapshot `json:"snapshot"`
	PublishedAt       time.Time       `json:"publishedAt"`
}
