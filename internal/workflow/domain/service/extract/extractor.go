// Package extract walks a DSL and collects every externally-bound
// identifier it makes: rule-pack codes, agent codes, parameter references,
// data-connector codes and subflow targets. Extraction is pure and performs
// no lookups; resolving the references is the governance validator's job.
package extract

import (
	"fmt"

	"github.com/decisionflow-ai/decisionflow/internal/workflow/domain/model"
	"github.com/decisionflow-ai/decisionflow/pkg/expression"
)

// SubflowTarget is one subflow-call node's declared target.
type SubflowTarget struct {
	NodeID       string
	DefinitionID string
	VersionID    string
}

// References holds the deduplicated reference sets of one DSL plus the raw
// bindings declared on it. Issues carries defects found during extraction
// itself, such as a pack-backed rule node with no pack code configured.
type References struct {
	RulePackCodes      []string
	AgentCodes         []string
	ParameterRefs      []string
	DataConnectorCodes []string
	Subflows           []SubflowTarget

	AgentBindings         []string
	ParamSetBindings      []string
	DataConnectorBindings []string

	Issues []model.ValidationIssue
}

// Collect extracts every external reference from the DSL.
func Collect(dsl model.WorkflowDSL) References {
	refs := References{
		AgentBindings:         dedupe(dsl.AgentBindings),
		ParamSetBindings:      dedupe(dsl.ParamSetBindings),
		DataConnectorBindings: dedupe(dsl.DataConnectorBindings),
		DataConnectorCodes:    dedupe(dsl.DataConnectorBindings),
	}

	packSeen := make(map[string]bool)
	agentSeen := make(map[string]bool)
	paramSeen := make(map[string]bool)

	for _, code := range refs.AgentBindings {
		agentSeen[code] = true
		refs.AgentCodes = append(refs.AgentCodes, code)
	}

	for _, n := range dsl.Nodes {
		collectRulePacks(n, &refs, packSeen)
		collectAgentCode(n, &refs, agentSeen)
		collectSubflow(n, &refs)

		for _, code := range expression.ParamCodes(map[string]interface{}(n.Config)) {
			if !paramSeen[code] {
				paramSeen[code] = true
				refs.ParameterRefs = append(refs.ParameterRefs, code)
			}
		}
		for _, code := range expression.ParamCodes(map[string]interface{}(n.InputBindings)) {
			if !paramSeen[code] {
				paramSeen[code] = true
				refs.ParameterRefs = append(refs.ParameterRefs, code)
			}
		}
	}

	for _, e := range dsl.Edges {
		if e.Condition == nil {
			continue
		}
		for _, code := range expression.ParamCodes(e.Condition) {
			if !paramSeen[code] {
				paramSeen[code] = true
				refs.ParameterRefs = append(refs.ParameterRefs, code)
			}
		}
	}

	return refs
}

// collectRulePacks pulls pack codes from rule-shaped nodes whose resolved
// rule source is the rule-pack registry. A pack-backed node with nothing
// configured cannot be silently skipped: that is an extraction error.
func collectRulePacks(n model.Node, refs *References, seen map[string]bool) {
	if model.RuleSourceOf(n) != model.RuleSourcePack {
		return
	}
	var cfg model.RulePackConfig
	if err := model.DecodeConfig(n, &cfg); err != nil {
		refs.Issues = append(refs.Issues, model.NodeIssue(model.CodeRulePackGovernance, fmt.Sprintf("node %q has a malformed rule pack config: %v", n.ID, err), n.ID))
		return
	}
	codes := cfg.Codes()
	if len(codes) == 0 {
		refs.Issues = append(refs.Issues, model.NodeIssue(model.CodeRulePackGovernance, fmt.Sprintf("node %q evaluates a rule pack but configures no rulePackCode", n.ID), n.ID))
		return
	}
	for _, code := range codes {
		if !seen[code] {
			seen[code] = true
			refs.RulePackCodes = append(refs.RulePackCodes, code)
		}
	}
}

func collectAgentCode(n model.Node, refs *References, seen map[string]bool) {
	if !n.Type.IsAgent() {
		return
	}
	var cfg model.AgentConfig
	if err := model.DecodeConfig(n, &cfg); err != nil || cfg.AgentProfileCode == "" {
		return
	}
	if !seen[cfg.AgentProfileCode] {
		seen[cfg.AgentProfileCode] = true
		refs.AgentCodes = append(refs.AgentCodes, cfg.AgentProfileCode)
	}
}

func collectSubflow(n model.Node, refs *References) {
	if n.Type != model.NodeSubflowCall {
		return
	}
	var cfg model.SubflowConfig
	if err := model.DecodeConfig(n, &cfg); err != nil {
		refs.Issues = append(refs.Issues, model.NodeIssue(model.CodeSubflowUnpublished, fmt.Sprintf("node %q has a malformed subflow config: %v", n.ID, err), n.ID))
		return
	}
	refs.Subflows = append(refs.Subflows, SubflowTarget{
		NodeID:       n.ID,
		DefinitionID: cfg.WorkflowDefinitionID,
		VersionID:    cfg.WorkflowVersionID,
	})
}

func dedupe(codes []string) []string {
	if len(codes) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(codes))
	var out []string
	for _, code := range codes {
		if code != "" && !seen[code] {
			seen[code] = true
			out = append(out, code)
		}
	}
	return out
}
