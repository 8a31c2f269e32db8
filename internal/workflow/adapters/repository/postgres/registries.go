package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/decisionflow-ai/decisionflow/internal/platform/database"
	"github.com/decisionflow-ai/decisionflow/internal/workflow/domain/model"
	"github.com/decisionflow-ai/decisionflow/internal/workflow/domain/service/governance"
)

// Registries implements every governance registry interface against the
// shared PostgreSQL catalog tables. Lookups are batched with ANY($1) so a
// validation pass issues one query per category.
type Registries struct {
	db *database.DB
}

// NewRegistries creates the PostgreSQL-backed governance registries
func NewRegistries(db *database.DB) *Registries {
	return &Registries{db: db}
}

// FindActiveVisible resolves rule pack codes to active, visible entries
func (r *Registries) FindActiveVisible(ctx context.Context, codes []string, ownerUserID string) ([]governance.RegistryEntry, error) {
	return r.findEntries(ctx, "workflow_service.rule_packs", codes, ownerUserID)
}

// agentRegistry and paramSetRegistry give the shared catalog distinct
// method sets so one Registries value can satisfy all three versioned
// registry interfaces.
type agentRegistry struct{ r *Registries }
type paramSetRegistry struct{ r *Registries }

// Agents returns the agent profile registry view
func (r *Registries) Agents() governance.AgentProfileRegistry {
	return agentRegistry{r}
}

// ParamSets returns the parameter set registry view
func (r *Registries) ParamSets() governance.ParameterSetRegistry {
	return paramSetRegistry{r}
}

func (a agentRegistry) FindActiveVisible(ctx context.Context, codes []string, ownerUserID string) ([]governance.RegistryEntry, error) {
	return a.r.findEntries(ctx, "workflow_service.agent_profiles", codes, ownerUserID)
}

func (p paramSetRegistry) FindActiveVisible(ctx context.Context, codes []string, ownerUserID string) ([]governance.RegistryEntry, error) {
	return p.r.findEntries(ctx, "workflow_service.parameter_sets", codes, ownerUserID)
}

func (r *Registries) findEntries(ctx context.Context, table string, codes []string, ownerUserID string) ([]governance.RegistryEntry, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT code, version
		FROM %s
		WHERE code = ANY($1)
		  AND status = 'ACTIVE'
		  AND (owner_user_id = $2 OR visibility = 'PUBLIC')
	`, table)
	rows, err := r.db.QueryContext(ctx, query, pq.Array(codes), ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", table, err)
	}
	defer rows.Close()

	var entries []governance.RegistryEntry
	for rows.Next() {
		var e governance.RegistryEntry
		if err := rows.Scan(&e.Code, &e.Version); err != nil {
			return nil, fmt.Errorf("failed to scan %s entry: %w", table, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// FindActive resolves parameter codes against the items of the bound sets
func (r *Registries) FindActive(ctx context.Context, paramCodes, boundSetCodes []string, ownerUserID string) ([]string, error) {
	if len(paramCodes) == 0 || len(boundSetCodes) == 0 {
		return nil, nil
	}
	query := `
		SELECT DISTINCT i.code
		FROM workflow_service.parameter_items i
		JOIN workflow_service.parameter_sets s ON s.code = i.set_code
		WHERE i.code = ANY($1)
		  AND i.set_code = ANY($2)
		  AND i.status = 'ACTIVE'
		  AND s.status = 'ACTIVE'
		  AND (s.owner_user_id = $3 OR s.visibility = 'PUBLIC')
	`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(paramCodes), pq.Array(boundSetCodes), ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to query parameter items: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan parameter item: %w", err)
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// connectorRegistry narrows Registries to the data connector lookup.
type connectorRegistry struct{ r *Registries }

// Connectors returns the data connector registry view
func (r *Registries) Connectors() governance.DataConnectorRegistry {
	return connectorRegistry{r}
}

func (c connectorRegistry) FindActive(ctx context.Context, codes []string) ([]string, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	query := `
		SELECT code
		FROM workflow_service.data_connectors
		WHERE code = ANY($1) AND status = 'ACTIVE'
	`
	rows, err := c.r.db.QueryContext(ctx, query, pq.Array(codes))
	if err != nil {
		return nil, fmt.Errorf("failed to query data connectors: %w", err)
	}
	defer rows.Close()

	var active []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan data connector: %w", err)
		}
		active = append(active, code)
	}
	return active, rows.Err()
}

// FindVisible reports whether a definition exists and is visible to the user
func (r *Registries) FindVisible(ctx context.Context, definitionID, ownerUserID string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM workflow_service.workflow_definitions
			WHERE id = $1
			  AND status <> $2
			  AND (owner_user_id = $3 OR template_source = $4)
		)
	`
	var visible bool
	err := r.db.QueryRowContext(ctx, query,
		definitionID,
		string(model.DefinitionStatusArchived),
		ownerUserID,
		string(model.TemplateSourcePublic),
	).Scan(&visible)
	if err != nil {
		return false, fmt.Errorf("failed to check definition visibility: %w", err)
	}
	return visible, nil
}

// FindPublished reports whether a definition has a published version.
// When versionID is set the published version must be that exact one.
func (r *Registries) FindPublished(ctx context.Context, definitionID, versionID string) (bool, error) {
	query := `
		SELECT id
		FROM workflow_service.workflow_versions
		WHERE definition_id = $1 AND status = $2
	`
	var publishedID string
	err := r.db.QueryRowContext(ctx, query, definitionID, string(model.VersionStatusPublished)).Scan(&publishedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check published version: %w", err)
	}
	if versionID != "" && versionID != publishedID {
		return false, nil
	}
	return true, nil
}
