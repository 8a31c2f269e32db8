package dto

import (
	"errors"
	"time"

	"github.com/decisionflow-ai/decisionflow/internal/workflow/domain/model"
)

// CreateWorkflowRequest represents a request to create a workflow
type CreateWorkflowRequest struct {
	WorkflowID     string             `json:"workflowId"`
	Name           string             `json:"name"`
	Mode           string             `json:"mode"`
	UsageMethod    string             `json:"usageMethod,omitempty"`
	TemplateSource string             `json:"templateSource,omitempty"`
	DSL            *model.WorkflowDSL `json:"dsl,omitempty"`
}

// Validate validates the create workflow request
func (r *CreateWorkflowRequest) Validate() error {
	if r.WorkflowID == "" {
		return errors.New("workflowId is required")
	}
	if r.Name == "" {
		return errors.New("workflow name is required")
	}
	if len(r.Name) > 200 {
		return errors.New("workflow name must be at most 200 characters")
	}
	if !model.WorkflowMode(r.Mode).IsValid() {
		return errors.New("mode must be LINEAR, DAG or DEBATE")
	}
	return nil
}

// CreateVersionRequest represents a request to save a new draft version
type CreateVersionRequest struct {
	DSL model.WorkflowDSL `json:"dsl"`
}

// UpdateVersionRequest replaces the DSL snapshot of a draft version
type UpdateVersionRequest struct {
	DSL model.WorkflowDSL `json:"dsl"`
}

// PublishVersionRequest addresses the draft to publish by id or code
type PublishVersionRequest struct {
	VersionID   string `json:"versionId,omitempty"`
	VersionCode string `json:"versionCode,omitempty"`
}

// Validate validates the publish request
func (r *PublishVersionRequest) Validate() error {
	if r.VersionID == "" && r.VersionCode == "" {
		return errors.New("versionId or versionCode is required")
	}
	return nil
}

// ValidateWorkflowRequest runs a validation stage against an arbitrary DSL
type ValidateWorkflowRequest struct {
	Stage string            `json:"stage"`
	DSL   model.WorkflowDSL `json:"dsl"`
}

// Validate validates the validation request
func (r *ValidateWorkflowRequest) Validate() error {
	switch model.ValidationStage(r.Stage) {
	case model.StageSave, model.StagePublish:
		return nil
	}
	return errors.New("stage must be SAVE or PUBLISH")
}

// WorkflowResponse represents a definition response
type WorkflowResponse struct {
	ID                string    `json:"id"`
	WorkflowID        string    `json:"workflowId"`
	Name              string    `json:"name"`
	Mode              string    `json:"mode"`
	UsageMethod       string    `json:"usageMethod,omitempty"`
	TemplateSource    string    `json:"templateSource,omitempty"`
	Status            string    `json:"status"`
	IsActive          bool      `json:"isActive"`
	LatestVersionCode string    `json:"latestVersionCode"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// VersionResponse represents a version response
type VersionResponse struct {
	ID          string             `json:"id"`
	VersionCode string             `json:"versionCode"`
	Status      string             `json:"status"`
	PublishedAt *time.Time         `json:"publishedAt,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	DSL         *model.WorkflowDSL `json:"dsl,omitempty"`
}

// CreateWorkflowResponse bundles the new definition with its first draft
type CreateWorkflowResponse struct {
	Workflow WorkflowResponse `json:"workflow"`
	Version  VersionResponse  `json:"version"`
}

// PublishVersionResponse reports the outcome of a publish
type PublishVersionResponse struct {
	Workflow         WorkflowResponse `json:"workflow"`
	Published        VersionResponse  `json:"published"`
	NextDraft        VersionResponse  `json:"nextDraft"`
	ArchivedVersions []string         `json:"archivedVersions"`
}

// ValidationIssueDTO is one structural or governance finding
type ValidationIssueDTO struct {
	Code     string `json:"code"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	NodeID   string `json:"nodeId,omitempty"`
	EdgeID   string `json:"edgeId,omitempty"`
}

// ValidationResultResponse is the outcome of a validation run
type ValidationResultResponse struct {
	Valid  bool                 `json:"valid"`
	Issues []ValidationIssueDTO `json:"issues"`
}

// PublishAuditResponse is one immutable publish audit record
type PublishAuditResponse struct {
	ID                   string    `json:"id"`
	WorkflowVersionID    string    `json:"workflowVersionId"`
	Operation            string    `json:"operation"`
	PublishedByUserID    string    `json:"publishedByUserId"`
	PublishedVersionCode string    `json:"publishedVersionCode"`
	ArchivedVersionCodes []string  `json:"archivedVersionCodes"`
	NewDraftVersionCode  string    `json:"newDraftVersionCode"`
	PublishedAt          time.Time `json:"publishedAt"`
}

// ListVersionsResponse lists the versions of a definition
type ListVersionsResponse struct {
	Items []VersionResponse `json:"items"`
	Total int               `json:"total"`
}

// ListAuditsResponse lists the publish history of a definition
type ListAuditsResponse struct {
	Items []PublishAuditResponse `json:"items"`
	Total int                    `json:"total"`
}
