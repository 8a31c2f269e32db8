package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/decisionflow-ai/decisionflow/internal/platform/database"
	"github.com/decisionflow-ai/decisionflow/internal/workflow/domain/repository"
)

// UnitOfWork runs lifecycle write sequences inside one PostgreSQL
// transaction.
type UnitOfWork struct {
	db *database.DB
}

// NewUnitOfWork creates a new PostgreSQL unit of work
func NewUnitOfWork(db *database.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// Execute runs fn inside a transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
func (u *UnitOfWork) Execute(ctx context.Context, fn func(ctx context.Context, tx repository.TxContext) error) error {
	return u.db.Transaction(ctx, func(tx *sql.Tx) error {
		return fn(ctx, &txContext{tx: tx})
	})
}

// txContext hands out repositories bound to one transaction.
type txContext struct {
	tx *sql.Tx
}

func (t *txContext) Definitions() repository.DefinitionRepository {
	return newTxDefinitionRepository(t.tx)
}

func (t *txContext) Versions() repository.VersionRepository {
	return newTxVersionRepository(t.tx)
}

func (t *txContext) Audits() repository.PublishAuditRepository {
	return newTxPublishAuditRepository(t.tx)
}

// LockDefinition takes a row lock on the definition, serializing
// concurrent publishes of the same workflow.
func (t *txContext) LockDefinition(ctx context.Context, definitionID string) error {
	query := `
		SELECT id FROM workflow_service.workflow_definitions
		WHERE id = $1
		FOR UPDATE
	`
	var id string
	if err := t.tx.QueryRowContext(ctx, query, definitionID).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("failed to lock definition: %w", err)
	}
	return nil
}
