// Package governance resolves a DSL's extracted references against the
// external registries at publish time: existence, ownership/visibility,
// active status and "has itself been published" gating. All categories are
// checked and every defect reported in one pass; a publish attempt never
// fails fast on the first missing dependency.
package governance

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/decisionflow-ai/decisionflow/internal/workflow/domain/model"
	"github.com/decisionflow-ai/decisionflow/internal/workflow/domain/service/extract"
)

// minPublishedVersion: version 1 is the initial unpublished draft of any
// artifact, so publishable dependencies carry version 2 or higher.
const minPublishedVersion = 2

// Validator performs the cross-entity reference checks. The registry
// lookups are independent reads and run concurrently per category.
type Validator struct {
	rulePacks  RulePackRegistry
	agents     AgentProfileRegistry
	paramSets  ParameterSetRegistry
	paramItems ParameterItemRegistry
	connectors DataConnectorRegistry
	defs       DefinitionFinder
	published  PublishedVersionFinder
}

// NewValidator creates a governance validator over the given registries.
func NewValidator(
	rulePacks RulePackRegistry,
	agents AgentProfileRegistry,
	paramSets ParameterSetRegistry,
	paramItems ParameterItemRegistry,
	connectors DataConnectorRegistry,
	defs DefinitionFinder,
	published PublishedVersionFinder,
) *Validator {
	return &Validator{
		rulePacks:  rulePacks,
		agents:     agents,
		paramSets:  paramSets,
		paramItems: paramItems,
		connectors: connectors,
		defs:       defs,
		published:  published,
	}
}

// ValidatePublish runs the full publish-stage governance checks.
// currentDefinitionID is the definition being published, used to reject
// subflow self-references; it is empty when validating an unsaved DSL.
// A non-nil error means a registry lookup failed, not that the DSL is
// invalid.
func (v *Validator) ValidatePublish(ctx context.Context, callerID, currentDefinitionID string, dsl model.WorkflowDSL, refs extract.References) (model.ValidationResult, error) {
	var (
		mu     sync.Mutex
		issues []model.ValidationIssue
	)
	report := func(found ...model.ValidationIssue) {
		mu.Lock()
		issues = append(issues, found...)
		mu.Unlock()
	}

	// Tenant isolation is a pure check; no lookup needed.
	if dsl.OwnerUserID == "" {
		report(model.ErrorIssue(model.CodeTenantMismatch, "dsl declares no ownerUserId"))
	} else if dsl.OwnerUserID != callerID {
		report(model.ErrorIssue(model.CodeTenantMismatch, fmt.Sprintf("dsl is owned by %q, not the publishing user", dsl.OwnerUserID)))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		found, err := v.checkVersioned(gctx, v.rulePacks, refs.RulePackCodes, callerID, model.CodeRulePackGovernance, "rule pack")
		if err != nil {
			return fmt.Errorf("rule pack lookup: %w", err)
		}
		report(found...)
		return nil
	})

	g.Go(func() error {
		found, err := v.checkVersioned(gctx, v.agents, refs.AgentCodes, callerID, model.CodeAgentGovernance, "agent profile")
		if err != nil {
			return fmt.Errorf("agent profile lookup: %w", err)
		}
		report(found...)
		return nil
	})

	g.Go(func() error {
		found, err := v.checkParameters(gctx, callerID, refs)
		if err != nil {
			return fmt.Errorf("parameter set lookup: %w", err)
		}
		report(found...)
		return nil
	})

	g.Go(func() error {
		found, err := v.checkConnectors(gctx, refs.DataConnectorCodes)
		if err != nil {
			return fmt.Errorf("data connector lookup: %w", err)
		}
		report(found...)
		return nil
	})

	g.Go(func() error {
		found, err := v.checkSubflows(gctx, callerID, currentDefinitionID, refs.Subflows)
		if err != nil {
			return fmt.Errorf("subflow lookup: %w", err)
		}
		report(found...)
		return nil
	})

	if err := g.Wait(); err != nil {
		return model.ValidationResult{}, err
	}
	return model.NewValidationResult(issues), nil
}

// ValidateSave runs the lighter save-stage checks: the declared bindings
// must exist, be active and be visible, but publish gating (version >= 2,
// individual parameter resolution, subflow targets) is deferred.
func (v *Validator) ValidateSave(ctx context.Context, callerID string, refs extract.References) (model.ValidationResult, error) {
	var issues []model.ValidationIssue

	missing, err := missingCodes(ctx, v.rulePacks, refs.RulePackCodes, callerID)
	if err != nil {
		return model.ValidationResult{}, fmt.Errorf("rule pack lookup: %w", err)
	}
	for _, code := range missing {
		issues = append(issues, model.ErrorIssue(model.CodeRulePackGovernance, fmt.Sprintf("rule pack %q not found, inactive or not visible", code)))
	}

	missing, err = missingCodes(ctx, v.agents, refs.AgentCodes, callerID)
	if err != nil {
		return model.ValidationResult{}, fmt.Errorf("agent profile lookup: %w", err)
	}
	for _, code := range missing {
		issues = append(issues, model.ErrorIssue(model.CodeAgentGovernance, fmt.Sprintf("agent profile %q not found, inactive or not visible", code)))
	}

	missing, err = missingCodes(ctx, v.paramSets, refs.ParamSetBindings, callerID)
	if err != nil {
		return model.ValidationResult{}, fmt.Errorf("parameter set lookup: %w", err)
	}
	for _, code := range missing {
		issues = append(issues, model.ErrorIssue(model.CodeParamSetGovernance, fmt.Sprintf("parameter set %q not found, inactive or not visible", code)))
	}

	connectorIssues, err := v.checkConnectors(ctx, refs.DataConnectorCodes)
	if err != nil {
		return model.ValidationResult{}, fmt.Errorf("data connector lookup: %w", err)
	}
	issues = append(issues, connectorIssues...)

	return model.NewValidationResult(issues), nil
}

// versionedRegistry is the lookup shape shared by rule packs, agents and
// parameter sets.
type versionedRegistry interface {
	FindActiveVisible(ctx context.Context, codes []string, ownerUserID string) ([]RegistryEntry, error)
}

func (v *Validator) checkVersioned(ctx context.Context, reg versionedRegistry, codes []string, callerID, issueCode, kind string) ([]model.ValidationIssue, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	entries, err := reg.FindActiveVisible(ctx, codes, callerID)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]RegistryEntry, len(entries))
	for _, e := range entries {
		byCode[e.Code] = e
	}
	var issues []model.ValidationIssue
	for _, code := range codes {
		entry, ok := byCode[code]
		if !ok {
			issues = append(issues, model.ErrorIssue(issueCode, fmt.Sprintf("%s %q not found, inactive or not visible", kind, code)))
			continue
		}
		if entry.Version < minPublishedVersion {
			issues = append(issues, model.ErrorIssue(issueCode, fmt.Sprintf("%s %q has never been published (version %d)", kind, code, entry.Version)))
		}
	}
	return issues, nil
}

// checkParameters validates the bound parameter sets (WF302) and then
// resolves every extracted parameter reference against them (WF203).
func (v *Validator) checkParameters(ctx context.Context, callerID string, refs extract.References) ([]model.ValidationIssue, error) {
	issues, err := v.checkVersioned(ctx, v.paramSets, refs.ParamSetBindings, callerID, model.CodeParamSetGovernance, "parameter set")
	if err != nil {
		return nil, err
	}
	if len(refs.ParameterRefs) == 0 {
		return issues, nil
	}
	if len(refs.ParamSetBindings) == 0 {
		for _, code := range refs.ParameterRefs {
			issues = append(issues, model.ErrorIssue(model.CodeUnboundParameter, fmt.Sprintf("parameter %q is referenced but no parameter set is bound", code)))
		}
		return issues, nil
	}
	resolved, err := v.paramItems.FindActive(ctx, refs.ParameterRefs, refs.ParamSetBindings, callerID)
	if err != nil {
		return nil, err
	}
	found := make(map[string]bool, len(resolved))
	for _, code := range resolved {
		found[code] = true
	}
	for _, code := range refs.ParameterRefs {
		if !found[code] {
			issues = append(issues, model.ErrorIssue(model.CodeUnboundParameter, fmt.Sprintf("parameter %q does not resolve to any item in the bound parameter sets", code)))
		}
	}
	return issues, nil
}

func (v *Validator) checkConnectors(ctx context.Context, codes []string) ([]model.ValidationIssue, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	active, err := v.connectors.FindActive(ctx, codes)
	if err != nil {
		return nil, err
	}
	found := make(map[string]bool, len(active))
	for _, code := range active {
		found[code] = true
	}
	var issues []model.ValidationIssue
	for _, code := range codes {
		if !found[code] {
			issues = append(issues, model.ErrorIssue(model.CodeConnectorInactive, fmt.Sprintf("data connector %q not found or inactive", code)))
		}
	}
	return issues, nil
}

// checkSubflows verifies each subflow-call target exists, is visible, is
// not the definition being published, and has a published version.
func (v *Validator) checkSubflows(ctx context.Context, callerID, currentDefinitionID string, targets []extract.SubflowTarget) ([]model.ValidationIssue, error) {
	var issues []model.ValidationIssue
	for _, t := range targets {
		if t.DefinitionID == "" {
			issues = append(issues, model.NodeIssue(model.CodeSubflowUnpublished, fmt.Sprintf("subflow node %q declares no workflowDefinitionId", t.NodeID), t.NodeID))
			continue
		}
		if currentDefinitionID != "" && t.DefinitionID == currentDefinitionID {
			issues = append(issues, model.NodeIssue(model.CodeSubflowUnpublished, fmt.Sprintf("subflow node %q references its own workflow", t.NodeID), t.NodeID))
			continue
		}
		visible, err := v.defs.FindVisible(ctx, t.DefinitionID, callerID)
		if err != nil {
			return nil, err
		}
		if !visible {
			issues = append(issues, model.NodeIssue(model.CodeSubflowUnpublished, fmt.Sprintf("subflow node %q references workflow %q which does not exist or is not accessible", t.NodeID, t.DefinitionID), t.NodeID))
			continue
		}
		published, err := v.published.FindPublished(ctx, t.DefinitionID, t.VersionID)
		if err != nil {
			return nil, err
		}
		if !published {
			issues = append(issues, model.NodeIssue(model.CodeSubflowUnpublished, fmt.Sprintf("subflow node %q targets workflow %q which has no published version", t.NodeID, t.DefinitionID), t.NodeID))
		}
	}
	return issues, nil
}

func missingCodes(ctx context.Context, reg versionedRegistry, codes []string, callerID string) ([]string, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	entries, err := reg.FindActiveVisible(ctx, codes, callerID)
	if err != nil {
		return nil, err
	}
	found := make(map[string]bool, len(entries))
	for _, e := range entries {
		found[e.Code] = true
	}
	var missing []string
	for _, code := range codes {
		if !found[code] {
			missing = append(missing, code)
		}
	}
	return missing, nil
}
