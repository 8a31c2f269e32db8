package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/decisionflow-ai/decisionflow/internal/platform/database"
	"github.com/decisionflow-ai/decisionflow/internal/workflow/domain/model"
	"github.com/decisionflow-ai/decisionflow/internal/workflow/domain/repository"
)

// DefinitionRepository implements the definition repository for PostgreSQL
type DefinitionRepository struct {
	q querier
}

// NewDefinitionRepository creates a new PostgreSQL definition repository
func NewDefinitionRepository(db *database.DB) *DefinitionRepository {
	return &DefinitionRepository{q: db}
}

func newTxDefinitionRepository(tx *sql.Tx) *DefinitionRepository {
	return &DefinitionRepository{q: tx}
}

const definitionColumns = `
	id, workflow_id, name, mode, usage_method, owner_user_id,
	template_source, status, is_active, latest_version_code,
	created_at, updated_at
`

// Insert persists a new definition
func (r *DefinitionRepository) Insert(ctx context.Context, def *model.Definition) error {
	query := `
		INSERT INTO workflow_service.workflow_definitions (` + definitionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.q.ExecContext(ctx, query,
		def.ID(),
		def.WorkflowID(),
		def.Name(),
		string(def.Mode()),
		def.UsageMethod(),
		def.OwnerUserID(),
		string(def.TemplateSource()),
		string(def.Status()),
		def.IsActive(),
		def.LatestVersionCode().String(),
		def.CreatedAt(),
		def.UpdatedAt(),
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return repository.ErrDuplicateWorkflowID
		}
		return fmt.Errorf("failed to insert definition: %w", err)
	}
	return nil
}

// FindByID finds a definition by its primary id
func (r *DefinitionRepository) FindByID(ctx context.Context, id string) (*model.Definition, error) {
	query := `
		SELECT ` + definitionColumns + `
		FROM workflow_service.workflow_definitions
		WHERE id = $1
	`
	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// FindByWorkflowID finds a definition by its business workflowId
func (r *DefinitionRepository) FindByWorkflowID(ctx context.Context, workflowID string) (*model.Definition, error) {
	query := `
		SELECT ` + definitionColumns + `
		FROM workflow_service.workflow_definitions
		WHERE workflow_id = $1
	`
	return r.scanOne(r.q.QueryRowContext(ctx, query, workflowID))
}

// ExistsByWorkflowID checks whether a definition with the given workflowId exists
func (r *DefinitionRepository) ExistsByWorkflowID(ctx context.Context, workflowID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM workflow_service.workflow_definitions WHERE workflow_id = $1
		)
	`
	var exists bool
	if err := r.q.QueryRowContext(ctx, query, workflowID).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check workflowId: %w", err)
	}
	return exists, nil
}

// Update updates an existing definition
func (r *DefinitionRepository) Update(ctx context.Context, def *model.Definition) error {
	query := `
		UPDATE workflow_service.workflow_definitions
		SET name = $2, status = $3, is_active = $4,
		    latest_version_code = $5, updated_at = $6
		WHERE id = $1
	`
	result, err := r.q.ExecContext(ctx, query,
		def.ID(),
		def.Name(),
		string(def.Status()),
		def.IsActive(),
		def.LatestVersionCode().String(),
		def.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to update definition: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *DefinitionRepository) scanOne(row *sql.Row) (*model.Definition, error) {
	var (
		id, workflowID, name, mode, usageMethod, ownerUserID string
		templateSource, status, latestCode                   string
		isActive                                             bool
		createdAt, updatedAt                                 time.Time
	)
	err := row.Scan(
		&id, &workflowID, &name, &mode, &usageMethod, &ownerUserID,
		&templateSource, &status, &isActive, &latestCode,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan definition: %w", err)
	}

	code, _ := model.ParseVersionCode(latestCode)
	return model.ReconstructDefinition(
		id, workflowID, name,
		model.WorkflowMode(mode),
		usageMethod, ownerUserID,
		model.TemplateSource(templateSource),
		model.DefinitionStatus(status),
		isActive,
		code,
		createdAt, updatedAt,
	), nil
}
