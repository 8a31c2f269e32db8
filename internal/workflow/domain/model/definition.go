package model

import (
	"errors"
	"time"
)

// DefinitionStatus is the lifecycle status of a workflow definition.
type DefinitionStatus string

const (
	DefinitionStatusDraft    DefinitionStatus = "DRAFT"
	DefinitionStatusActive   DefinitionStatus = "ACTIVE"
	DefinitionStatusArchived DefinitionStatus = "ARCHIVED"
)

var (
	// ErrDefinitionArchived is returned when a mutation targets an
	// archived definition. Archiving is terminal for editing.
	ErrDefinitionArchived = errors.New("workflow definition is archived")
)

// Definition is the identity-and-ownership aggregate owning 1..N versions.
// The workflowId is a caller-chosen business key, globally unique.
type Definition struct {
	id                string
	workflowID        string
	name              string
	mode              WorkflowMode
	usageMethod       string
	ownerUserID       string
	templateSource    TemplateSource
	status            DefinitionStatus
	isActive          bool
	latestVersionCode VersionCode
	createdAt         time.Time
	updatedAt         time.Time
}

// NewDefinition creates a DRAFT definition from canonical identity fields.
func NewDefinition(id string, identity Identity) (*Definition, error) {
	if identity.WorkflowID == "" {
		return nil, errors.New("workflowId is required")
	}
	if identity.Name == "" {
		return nil, errors.New("workflow name is required")
	}
	if identity.OwnerUserID == "" {
		return nil, errors.New("ownerUserId is required")
	}
	if !identity.Mode.IsValid() {
		return nil, errors.New("mode must be LINEAR, DAG or DEBATE")
	}
	now := time.Now()
	return &Definition{
		id:                id,
		workflowID:        identity.WorkflowID,
		name:              identity.Name,
		mode:              identity.Mode,
		usageMethod:       identity.UsageMethod,
		ownerUserID:       identity.OwnerUserID,
		templateSource:    identity.TemplateSource,
		status:            DefinitionStatusDraft,
		latestVersionCode: InitialVersionCode(),
		createdAt:         now,
		updatedAt:         now,
	}, nil
}

func (d *Definition) ID() string                     { return d.id }
func (d *Definition) WorkflowID() string             { return d.workflowID }
func (d *Definition) Name() string                   { return d.name }
func (d *Definition) Mode() WorkflowMode             { return d.mode }
func (d *Definition) UsageMethod() string            { return d.usageMethod }
func (d *Definition) OwnerUserID() string            { return d.ownerUserID }
func (d *Definition) TemplateSource() TemplateSource { return d.templateSource }
func (d *Definition) Status() DefinitionStatus       { return d.status }
func (d *Definition) IsActive() bool                 { return d.isActive }
func (d *Definition) LatestVersionCode() VersionCode { return d.latestVersionCode }
func (d *Definition) CreatedAt() time.Time           { return d.createdAt }
func (d *Definition) UpdatedAt() time.Time           { return d.updatedAt }

// Identity returns the canonical identity fields stamped onto snapshots.
func (d *Definition) Identity() Identity {
	return Identity{
		WorkflowID:     d.workflowID,
		Name:           d.name,
		Mode:           d.mode,
		UsageMethod:    d.usageMethod,
		OwnerUserID:    d.ownerUserID,
		TemplateSource: d.templateSource,
	}
}

// IsEditableBy reports whether userID may create or publish versions.
// Archived definitions are readable but never again editable.
func (d *Definition) IsEditableBy(userID string) bool {
	return d.ownerUserID == userID && d.status != DefinitionStatusArchived
}

// IsVisibleTo reports whether userID may read the definition.
func (d *Definition) IsVisibleTo(userID string) bool {
	return d.ownerUserID == userID || d.templateSource == TemplateSourcePublic
}

// AdvanceLatest moves latestVersionCode forward after a new draft is saved.
func (d *Definition) AdvanceLatest(code VersionCode) error {
	if d.status == DefinitionStatusArchived {
		return ErrDefinitionArchived
	}
	d.latestVersionCode = code
	d.updatedAt = time.Now()
	return nil
}

// MarkPublished flips the definition ACTIVE after a successful publish and
// advances latestVersionCode to the auto-created draft successor.
func (d *Definition) MarkPublished(nextDraft VersionCode) error {
	if d.status == DefinitionStatusArchived {
		return ErrDefinitionArchived
	}
	d.status = DefinitionStatusActive
	d.isActive = true
	d.latestVersionCode = nextDraft
	d.updatedAt = time.Now()
	return nil
}

// Archive soft-deletes the definition. Terminal for editing.
func (d *Definition) Archive() error {
	if d.status == DefinitionStatusArchived {
		return ErrDefinitionArchived
	}
	d.status = DefinitionStatusArchived
	d.isActive = false
	d.updatedAt = time.Now()
	return nil
}

// ReconstructDefinition rebuilds a definition from persisted state.
func ReconstructDefinition(
	id, workflowID, name string,
	mode WorkflowMode,
	usageMethod, ownerUserID string,
	templateSource TemplateSource,
	status DefinitionStatus,
	isActive bool,
	latestVersionCode VersionCode,
	createdAt, updatedAt time.Time,
) *Definition {
	return &Definition{
		id:                id,
		workflowID:        workflowID,
		name:              name,
		mode:              mode,
		usageMethod:       usageMethod,
		ownerUserID:       ownerUserID,
		templateSource:    templateSource,
		status:            status,
		isActive:          isActive,
		latestVersionCode: latestVersionCode,
		createdAt:         createdAt,
		updatedAt:         updatedAt,
	}
}
