package governance

import "context"

// RegistryEntry is one resolvable external artifact: its code and the
// version counter its own registry maintains. Version 1 of any artifact is
// its unpublished initial draft by convention, so "version >= 2" means
// "has been published at least once".
type RegistryEntry struct {
	Code    string
	Version int
}

// RulePackRegistry resolves rule-pack codes to active packs visible to the
// caller (owned or PUBLIC).
type RulePackRegistry interface {
	FindActiveVisible(ctx context.Context, codes []string, ownerUserID string) ([]RegistryEntry, error)
}

// AgentProfileRegistry resolves agent profile codes.
type AgentProfileRegistry interface {
	FindActiveVisible(ctx context.Context, codes []string, ownerUserID string) ([]RegistryEntry, error)
}

// ParameterSetRegistry resolves parameter-set codes.
type ParameterSetRegistry interface {
	FindActiveVisible(ctx context.Context, codes []string, ownerUserID string) ([]RegistryEntry, error)
}

// ParameterItemRegistry resolves individual parameter codes against the
// parameter sets the DSL binds.
type ParameterItemRegistry interface {
	FindActive(ctx context.Context, paramCodes, boundSetCodes []string, ownerUserID string) ([]string, error)
}

// DataConnectorRegistry resolves connector codes. Connectors are
// process-wide: existence and active status only, no ownership check.
type DataConnectorRegistry interface {
	FindActive(ctx context.Context, codes []string) ([]string, error)
}

// DefinitionFinder checks that a workflow definition exists and is visible
// to the caller.
type DefinitionFinder interface {
	FindVisible(ctx context.Context, definitionID, ownerUserID string) (bool, error)
}

// PublishedVersionFinder checks that a definition has a published version;
// with a non-empty versionID, that that specific version is published.
type PublishedVersionFinder interface {
	FindPublished(ctx context.Context, definitionID, versionID string) (bool, error)
}
