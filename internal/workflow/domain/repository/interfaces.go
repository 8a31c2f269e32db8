package repository

import (
	"context"

	"github.com/decisionflow-ai/decisionflow/internal/workflow/domain/model"
)

// DefinitionRepository defines the interface for workflow definition persistence
type DefinitionRepository interface {
	// Insert persists a new definition
	Insert(ctx context.Context, def *model.Definition) error

	// FindByID finds a definition by its primary id
	FindByID(ctx context.Context, id string) (*model.Definition, error)

	// FindByWorkflowID finds a definition by its business workflowId
	FindByWorkflowID(ctx context.Context, workflowID string) (*model.Definition, error)

	// ExistsByWorkflowID checks whether a definition with the given workflowId exists
	ExistsByWorkflowID(ctx context.Context, workflowID string) (bool, error)

	// Update updates an existing definition
	Update(ctx context.Context, def *model.Definition) error
}

// VersionRepository defines the interface for workflow version persistence
type VersionRepository interface {
	// Insert persists a new version
	Insert(ctx context.Context, v *model.Version) error

	// FindByID finds a version by its primary id
	FindByID(ctx context.Context, id string) (*model.Version, error)

	// FindByCode finds a version of a definition by its version code
	FindByCode(ctx context.Context, definitionID string, code model.VersionCode) (*model.Version, error)

	// ListByDefinition lists all versions of a definition, newest first
	ListByDefinition(ctx context.Context, definitionID string) ([]*model.Version, error)

	// FindPublished returns the currently published version of a definition, if any
	FindPublished(ctx context.Context, definitionID string) (*model.Version, error)

	// Update updates an existing version
	Update(ctx context.Context, v *model.Version) error
}

// PublishAuditRepository defines the interface for publish audit persistence.
// Audit records are append-only; there is no update or delete.
type PublishAuditRepository interface {
	// Insert appends a publish audit record
	Insert(ctx context.Context, audit *model.PublishAudit) error

	// ListByDefinition lists audit records of a definition, newest first
	ListByDefinition(ctx context.Context, definitionID string) ([]*model.PublishAudit, error)
}

// TxContext exposes the repositories bound to a single transaction.
type TxContext interface {
	Definitions() DefinitionRepository
	Versions() VersionRepository
	Audits() PublishAuditRepository

	// LockDefinition takes a row lock on the definition for the duration
	// of the transaction, serializing concurrent publishes.
	LockDefinition(ctx context.Context, definitionID string) error
}

// UnitOfWork runs a function inside a single transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
type UnitOfWork interface {
	Execute(ctx context.Context, fn func(ctx context.Context, tx TxContext) error) error
}
