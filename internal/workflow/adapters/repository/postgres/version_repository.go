package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/decisionflow-ai/decisionflow/internal/platform/database"
	"github.com/decisionflow-ai/decisionflow/internal/workflow/domain/model"
	"github.com/decisionflow-ai/decisionflow/internal/workflow/domain/repository"
)

// VersionRepository implements the version repository for PostgreSQL.
// The DSL snapshot is stored as a JSONB column.
type VersionRepository struct {
	q querier
}

// NewVersionRepository creates a new PostgreSQL version repository
func NewVersionRepository(db *database.DB) *VersionRepository {
	return &VersionRepository{q: db}
}

func newTxVersionRepository(tx *sql.Tx) *VersionRepository {
	return &VersionRepository{q: tx}
}

const versionColumns = `
	id, definition_id, version_code, status, snapshot,
	published_at, created_at, updated_at
`

// Insert persists a new version
func (r *VersionRepository) Insert(ctx context.Context, v *model.Version) error {
	snapshotJSON, err := json.Marshal(v.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	query := `
		INSERT INTO workflow_service.workflow_versions (` + versionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.q.ExecContext(ctx, query,
		v.ID(),
		v.DefinitionID(),
		v.Code().String(),
		string(v.Status()),
		snapshotJSON,
		database.NullTimePtr(v.PublishedAt()),
		v.CreatedAt(),
		v.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert version: %w", err)
	}
	return nil
}

// FindByID finds a version by its primary id
func (r *VersionRepository) FindByID(ctx context.Context, id string) (*model.Version, error) {
	query := `
		SELECT ` + versionColumns + `
		FROM workflow_service.workflow_versions
		WHERE id = $1
	`
	return scanVersionRow(r.q.QueryRowContext(ctx, query, id))
}

// FindByCode finds a version of a definition by its version code
func (r *VersionRepository) FindByCode(ctx context.Context, definitionID string, code model.VersionCode) (*model.Version, error) {
	query := `
		SELECT ` + versionColumns + `
		FROM workflow_service.workflow_versions
		WHERE definition_id = $1 AND version_code = $2
	`
	return scanVersionRow(r.q.QueryRowContext(ctx, query, definitionID, code.String()))
}

// ListByDefinition lists all versions of a definition, newest first
func (r *VersionRepository) ListByDefinition(ctx context.Context, definitionID string) ([]*model.Version, error) {
	query := `
		SELECT ` + versionColumns + `
		FROM workflow_service.workflow_versions
		WHERE definition_id = $1
		ORDER BY created_at DESC, version_code DESC
	`
	rows, err := r.q.QueryContext(ctx, query, definitionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list versions: %w", err)
	}
	defer rows.Close()

	var versions []*model.Version
	for rows.Next() {
		v, err := scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate versions: %w", err)
	}
	return versions, nil
}

// FindPublished returns the currently published version of a definition
func (r *VersionRepository) FindPublished(ctx context.Context, definitionID string) (*model.Version, error) {
	query := `
		SELECT ` + versionColumns + `
		FROM workflow_service.workflow_versions
		WHERE definition_id = $1 AND status = $2
	`
	return scanVersionRow(r.q.QueryRowContext(ctx, query, definitionID, string(model.VersionStatusPublished)))
}

// Update updates an existing version
func (r *VersionRepository) Update(ctx context.Context, v *model.Version) error {
	snapshotJSON, err := json.Marshal(v.Snapshot())
	if err != nil {
		return fmt.Errorf("failed to serialize snapshot: %w", err)
	}

	query := `
		UPDATE workflow_service.workflow_versions
		SET status = $2, snapshot = $3, published_at = $4, updated_at = $5
		WHERE id = $1
	`
	result, err := r.q.ExecContext(ctx, query,
		v.ID(),
		string(v.Status()),
		snapshotJSON,
		database.NullTimePtr(v.PublishedAt()),
		v.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to update version: %w", err)
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

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanVersionRow(row *sql.Row) (*model.Version, error) {
	v, err := scanVersion(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return v, nil
}

func scanVersion(s rowScanner) (*model.Version, error) {
	var (
		id, definitionID, codeStr, status string
		snapshotJSON                      []byte
		publishedAt                       sql.NullTime
		createdAt, updatedAt              time.Time
	)
	err := s.Scan(
		&id, &definitionID, &codeStr, &status, &snapshotJSON,
		&publishedAt, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan version: %w", err)
	}

	var snapshot model.WorkflowDSL
	if err := json.Unmarshal(snapshotJSON, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to deserialize snapshot: %w", err)
	}

	code, _ := model.ParseVersionCode(codeStr)
	var published *time.Time
	if publishedAt.Valid {
		t := publishedAt.Time
		published = &t
	}
	return model.ReconstructVersion(
		id, definitionID, code,
		model.VersionStatus(status),
		snapshot, published,
		createdAt, updatedAt,
	), nil
}
