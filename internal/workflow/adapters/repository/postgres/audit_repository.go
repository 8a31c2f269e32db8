package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/decisionflow-ai/decisionflow/internal/platform/database"
	"github.com/decisionflow-ai/decisionflow/internal/workflow/domain/model"
)

// PublishAuditRepository implements the append-only publish audit store
// for PostgreSQL. There is deliberately no update or delete statement.
type PublishAuditRepository struct {
	q querier
}

// NewPublishAuditRepository creates a new PostgreSQL audit repository
func NewPublishAuditRepository(db *database.DB) *PublishAuditRepository {
	return &PublishAuditRepository{q: db}
}

func newTxPublishAuditRepository(tx *sql.Tx) *PublishAuditRepository {
	return &PublishAuditRepository{q: tx}
}

// Insert appends a publish audit record
func (r *PublishAuditRepository) Insert(ctx context.Context, audit *model.PublishAudit) error {
	snapshotJSON, err := json.Marshal(audit.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to serialize audit snapshot: %w", err)
	}

	query := `
		INSERT INTO workflow_service.workflow_publish_audits (
			id, definition_id, version_id, operation,
			published_by_user_id, snapshot, published_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = r.q.ExecContext(ctx, query,
		audit.ID,
		audit.DefinitionID,
		audit.WorkflowVersionID,
		audit.Operation,
		audit.PublishedByUserID,
		snapshotJSON,
		audit.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert publish audit: %w", err)
	}
	return nil
}

// ListByDefinition lists audit records of a definition, newest first
func (r *PublishAuditRepository) ListByDefinition(ctx context.Context, definitionID string) ([]*model.PublishAudit, error) {
	query := `
		SELECT id, definition_id, version_id, operation,
		       published_by_user_id, snapshot, published_at
		FROM workflow_service.workflow_publish_audits
		WHERE definition_id = $1
		ORDER BY published_at DESC
	`
	rows, err := r.q.QueryContext(ctx, query, definitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list publish audits: %w", err)
	}
	defer rows.Close()

	var audits []*model.PublishAudit
	for rows.Next() {
		var (
			audit        model.PublishAudit
			snapshotJSON []byte
			publishedAt  time.Time
		)
		err := rows.Scan(
			&audit.ID, &audit.DefinitionID, &audit.WorkflowVersionID,
			&audit.Operation, &audit.PublishedByUserID, &snapshotJSON, &publishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan publish audit: %w", err)
		}
		if err := json.Unmarshal(snapshotJSON, &audit.Snapshot); err != nil {
			return nil, fmt.Errorf("failed to deserialize audit snapshot: %w", err)
		}
		audit.PublishedAt = publishedAt
		audits = append(audits, &audit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate publish audits: %w", err)
	}
	return audits, nil
}
