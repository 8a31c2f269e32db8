// Package structural checks graph well-formedness and mode-specific
// topology invariants. Validation is a pure function of the DSL: no I/O,
// safe to call concurrently.
package structural

import (
	"fmt"

	"github.com/decisionflow-ai/decisionflow/internal/workflow/domain/model"
	"github.com/decisionflow-ai/decisionflow/pkg/expression"
)

// Validate runs every structural check against the DSL and returns the
// collected issues. Checks are independent; a defect in one never hides
// defects found by another. Unknown node types participate in the generic
// graph checks and are skipped by type-specific rules.
func Validate(dsl model.WorkflowDSL, stage model.ValidationStage) model.ValidationResult {
	v := &validator{dsl: dsl, stage: stage}

	v.checkRequiredFields()
	v.checkUniqueIDs()
	v.checkEdgeEndpoints()

	// Graph-shape checks only make sense over resolvable edges.
	v.buildGraph()
	v.checkDanglingNodes()

	switch dsl.Mode {
	case model.ModeLinear:
		v.checkLinearChain()
	case model.ModeDAG:
		v.checkConvergenceJoins()
	case model.ModeDebate:
		v.checkDebateRoles()
	}

	v.checkApprovalTails()
	v.checkRiskGatePresence()
	v.checkJoinConfigs()
	v.checkRunPolicyDefaults()
	v.checkDataEdges()
	v.checkInputBindings()

	return model.NewValidationResult(v.issues)
}

type validator struct {
	dsl    model.WorkflowDSL
	stage  model.ValidationStage
	issues []model.ValidationIssue

	nodeByID map[string]*model.Node
	incoming map[string][]model.Edge
	outgoing map[string][]model.Edge
}

func (v *validator) add(issue model.ValidationIssue) {
	v.issues = append(v.issues, issue)
}

// WF001: required top-level fields.
func (v *validator) checkRequiredFields() {
	if v.dsl.WorkflowID == "" {
		v.add(model.ErrorIssue(model.CodeMissingFields, "workflowId is required"))
	}
	if v.dsl.Name == "" {
		v.add(model.ErrorIssue(model.CodeMissingFields, "name is required"))
	}
	if !v.dsl.Mode.IsValid() {
		v.add(model.ErrorIssue(model.CodeMissingFields, fmt.Sprintf("mode %q is not one of LINEAR, DAG, DEBATE", v.dsl.Mode)))
	}
	if len(v.dsl.Nodes) == 0 {
		v.add(model.ErrorIssue(model.CodeMissingFields, "workflow must declare at least one node"))
	}
	if len(v.dsl.Edges) == 0 {
		v.add(model.ErrorIssue(model.CodeMissingFields, "workflow must declare at least one edge"))
	}
}

// WF002: node and edge ids unique within one DSL.
func (v *validator) checkUniqueIDs() {
	nodeSeen := make(map[string]bool, len(v.dsl.Nodes))
	for _, n := range v.dsl.Nodes {
		if nodeSeen[n.ID] {
			v.add(model.NodeIssue(model.CodeDuplicateID, fmt.Sprintf("duplicate node id %q", n.ID), n.ID))
		}
		nodeSeen[n.ID] = true
	}
	edgeSeen := make(map[string]bool, len(v.dsl.Edges))
	for _, e := range v.dsl.Edges {
		if edgeSeen[e.ID] {
			v.add(model.EdgeIssue(model.CodeDuplicateID, fmt.Sprintf("duplicate edge id %q", e.ID), e.ID))
		}
		edgeSeen[e.ID] = true
	}
}

// WF003: every edge endpoint resolves to an existing node.
func (v *validator) checkEdgeEndpoints() {
	ids := make(map[string]bool, len(v.dsl.Nodes))
	for _, n := range v.dsl.Nodes {
		ids[n.ID] = true
	}
	for _, e := range v.dsl.Edges {
		if !ids[e.From] {
			v.add(model.EdgeIssue(model.CodeUnknownEndpoint, fmt.Sprintf("edge %q references unknown source node %q", e.ID, e.From), e.ID))
		}
		if !ids[e.To] {
			v.add(model.EdgeIssue(model.CodeUnknownEndpoint, fmt.Sprintf("edge %q references unknown target node %q", e.ID, e.To), e.ID))
		}
	}
}

func (v *validator) buildGraph() {
	v.nodeByID = make(map[string]*model.Node, len(v.dsl.Nodes))
	for i := range v.dsl.Nodes {
		v.nodeByID[v.dsl.Nodes[i].ID] = &v.dsl.Nodes[i]
	}
	v.incoming = make(map[string][]model.Edge)
	v.outgoing = make(map[string][]model.Edge)
	for _, e := range v.dsl.Edges {
		if v.nodeByID[e.From] == nil || v.nodeByID[e.To] == nil {
			continue // already reported by WF003
		}
		v.outgoing[e.From] = append(v.outgoing[e.From], e)
		v.incoming[e.To] = append(v.incoming[e.To], e)
	}
}

// WF004: every node except triggers and outputs needs a connecting edge.
// A disconnected trigger is tolerated but flagged as a warning so editors
// can surface it without blocking the save.
func (v *validator) checkDanglingNodes() {
	for _, n := range v.dsl.Nodes {
		if len(v.incoming[n.ID]) > 0 || len(v.outgoing[n.ID]) > 0 {
			continue
		}
		if n.Type.IsTrigger() {
			issue := model.WarningIssue(model.CodeDanglingNode, fmt.Sprintf("trigger node %q has no connecting edges", n.ID))
			issue.NodeID = n.ID
			v.add(issue)
			continue
		}
		if n.Type.IsOutput() {
			continue
		}
		v.add(model.NodeIssue(model.CodeDanglingNode, fmt.Sprintf("node %q has no connecting edges", n.ID), n.ID))
	}
}

// WF005 (LINEAR): the graph must form a single chain. Any node with more
// than one outgoing edge branches; every non-trigger node needs exactly one
// incoming edge.
func (v *validator) checkLinearChain() {
	for _, n := range v.dsl.Nodes {
		if len(v.outgoing[n.ID]) > 1 {
			v.add(model.NodeIssue(model.CodeLinearBranch, fmt.Sprintf("node %q branches: LINEAR workflows allow at most one outgoing edge", n.ID), n.ID))
		}
		if !n.Type.IsTrigger() && len(v.incoming[n.ID]) != 1 {
			v.add(model.NodeIssue(model.CodeLinearBranch, fmt.Sprintf("node %q has %d incoming edges: LINEAR workflows require exactly one", n.ID, len(v.incoming[n.ID])), n.ID))
		}
	}
}

// WF102 (DAG): a node where more than one path converges must be
// join-capable; converging onto anything else is an error, not a warning.
func (v *validator) checkConvergenceJoins() {
	for _, n := range v.dsl.Nodes {
		if len(v.incoming[n.ID]) > 1 && !n.Type.IsJoinCapable() {
			v.add(model.NodeIssue(model.CodeMissingJoin, fmt.Sprintf("%d branches converge into node %q without a join node", len(v.incoming[n.ID]), n.ID), n.ID))
		}
	}
}

// WF101 (DEBATE): context-construction, debate-round and judge roles must
// all be present, and the judge must be reachable from every debate round.
func (v *validator) checkDebateRoles() {
	var hasContext, hasRound, hasJudge bool
	for _, n := range v.dsl.Nodes {
		switch n.Type {
		case model.NodeContextConstruction:
			hasContext = true
		case model.NodeDebateRound:
			hasRound = true
		case model.NodeJudgeAgent:
			hasJudge = true
		}
	}
	if !hasContext {
		v.add(model.ErrorIssue(model.CodeDebateRoles, "DEBATE workflows require a context-construction node"))
	}
	if !hasRound {
		v.add(model.ErrorIssue(model.CodeDebateRoles, "DEBATE workflows require at least one debate-round node"))
	}
	if !hasJudge {
		v.add(model.ErrorIssue(model.CodeDebateRoles, "DEBATE workflows require a judge node"))
	}
	if !hasJudge || !hasRound {
		return
	}
	for _, n := range v.dsl.Nodes {
		if n.Type != model.NodeDebateRound {
			continue
		}
		if !v.reaches(n.ID, func(t model.NodeType) bool { return t == model.NodeJudgeAgent }) {
			v.add(model.NodeIssue(model.CodeDebateRoles, fmt.Sprintf("no path from debate-round %q to a judge node", n.ID), n.ID))
		}
	}
}

// reaches reports whether a node of a matching type is reachable from start
// by following outgoing edges.
func (v *validator) reaches(start string, match func(model.NodeType) bool) bool {
	visited := map[string]bool{start: true}
	queue := []string{start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range v.outgoing[cur] {
			if visited[e.To] {
				continue
			}
			visited[e.To] = true
			if n := v.nodeByID[e.To]; n != nil && match(n.Type) {
				return true
			}
			queue = append(queue, e.To)
		}
	}
	return false
}

// WF103: after manual approval, only output nodes may follow.
func (v *validator) checkApprovalTails() {
	for _, n := range v.dsl.Nodes {
		if n.Type != model.NodeApproval {
			continue
		}
		for _, e := range v.outgoing[n.ID] {
			target := v.nodeByID[e.To]
			if target != nil && !target.Type.IsOutput() {
				v.add(model.ValidationIssue{
					Code:     model.CodeApprovalTail,
					Severity: model.SeverityError,
					Message:  fmt.Sprintf("approval node %q leads to %q (%s); approvals may only feed output nodes", n.ID, target.ID, target.Type),
					NodeID:   n.ID,
					EdgeID:   e.ID,
				})
			}
		}
	}
}

// WF104: publish requires at least one risk-gate. Skipped at SAVE so drafts
// stay freely editable.
func (v *validator) checkRiskGatePresence() {
	if v.stage != model.StagePublish {
		return
	}
	for _, n := range v.dsl.Nodes {
		if n.Type == model.NodeRiskGate {
			return
		}
	}
	v.add(model.ErrorIssue(model.CodeMissingRiskGate, "workflow must contain a risk-gate node before it can be published"))
}

// WF105: QUORUM joins need an integer quorumBranches of at least 2.
func (v *validator) checkJoinConfigs() {
	for _, n := range v.dsl.Nodes {
		if n.Type != model.NodeJoin {
			continue
		}
		var cfg model.JoinConfig
		if err := model.DecodeConfig(n, &cfg); err != nil {
			v.add(model.NodeIssue(model.CodeQuorumConfig, fmt.Sprintf("join node %q has a malformed config: %v", n.ID, err), n.ID))
			continue
		}
		if cfg.JoinPolicy != model.JoinPolicyQuorum {
			continue
		}
		if cfg.QuorumBranches == nil || *cfg.QuorumBranches < 2 {
			v.add(model.NodeIssue(model.CodeQuorumConfig, fmt.Sprintf("join node %q uses QUORUM but quorumBranches must be an integer >= 2", n.ID), n.ID))
		}
	}
}

// WF106: runPolicy.nodeDefaults must be fully specified; this layer never
// fills gaps silently.
func (v *validator) checkRunPolicyDefaults() {
	if v.dsl.RunPolicy == nil || v.dsl.RunPolicy.NodeDefaults == nil {
		v.add(model.ErrorIssue(model.CodeRunPolicyDefaults, "runPolicy.nodeDefaults is required"))
		return
	}
	d := v.dsl.RunPolicy.NodeDefaults
	if d.TimeoutMs == nil {
		v.add(model.ErrorIssue(model.CodeRunPolicyDefaults, "runPolicy.nodeDefaults.timeoutMs is required"))
	}
	if d.RetryCount == nil {
		v.add(model.ErrorIssue(model.CodeRunPolicyDefaults, "runPolicy.nodeDefaults.retryCount is required"))
	}
	if d.RetryBackoffMs == nil {
		v.add(model.ErrorIssue(model.CodeRunPolicyDefaults, "runPolicy.nodeDefaults.retryBackoffMs is required"))
	}
	if d.OnError == "" {
		v.add(model.ErrorIssue(model.CodeRunPolicyDefaults, "runPolicy.nodeDefaults.onError is required"))
	}
}

// WF201: declared data edges must name a source field the upstream node
// actually emits, with a type the downstream field accepts. Nodes with open
// contracts (unknown types) skip the check.
func (v *validator) checkDataEdges() {
	for _, e := range v.dsl.Edges {
		if e.EdgeType != model.EdgeData {
			continue
		}
		from := v.nodeByID[e.From]
		to := v.nodeByID[e.To]
		if from == nil || to == nil {
			continue
		}
		if e.SourceField == "" {
			v.add(model.EdgeIssue(model.CodeEdgeTypeMismatch, fmt.Sprintf("data edge %q declares no sourceField", e.ID), e.ID))
			continue
		}
		contract := model.OutputContract(from.Type)
		if contract == nil {
			continue
		}
		srcType, ok := contract[e.SourceField]
		if !ok {
			v.add(model.EdgeIssue(model.CodeEdgeTypeMismatch, fmt.Sprintf("data edge %q reads field %q which node %q does not emit", e.ID, e.SourceField, from.ID), e.ID))
			continue
		}
		if e.TargetField == "" {
			continue
		}
		if target := model.OutputContract(to.Type); target != nil {
			if dstType, declared := target[e.TargetField]; declared && dstType != srcType {
				v.add(model.EdgeIssue(model.CodeEdgeTypeMismatch, fmt.Sprintf("data edge %q connects %s field %q to %s field %q", e.ID, srcType, e.SourceField, dstType, e.TargetField), e.ID))
			}
		}
	}
}

// WF202: input bindings using {{ nodes.<id>.<field> }} must reference a
// direct upstream node and a field on its output contract.
func (v *validator) checkInputBindings() {
	for _, n := range v.dsl.Nodes {
		if len(n.InputBindings) == 0 {
			continue
		}
		upstream := make(map[string]bool, len(v.incoming[n.ID]))
		for _, e := range v.incoming[n.ID] {
			upstream[e.From] = true
		}
		for _, ref := range expression.ScanValue(map[string]interface{}(n.InputBindings)) {
			if ref.Scope != expression.ScopeNodes {
				continue
			}
			sourceID := ref.Code()
			if !upstream[sourceID] {
				v.add(model.NodeIssue(model.CodeUnknownBindingRef, fmt.Sprintf("node %q binds input from %q which is not a direct upstream node", n.ID, sourceID), n.ID))
				continue
			}
			source := v.nodeByID[sourceID]
			contract := model.OutputContract(source.Type)
			if contract == nil {
				continue
			}
			field := fieldSegment(ref.Path)
			if field == "" {
				continue
			}
			if _, ok := contract[field]; !ok {
				v.add(model.NodeIssue(model.CodeUnknownBindingRef, fmt.Sprintf("node %q binds field %q which node %q does not emit", n.ID, field, sourceID), n.ID))
			}
		}
	}
}

// fieldSegment returns the second dot segment of a nodes-scope path, i.e.
// the output field name in nodes.<id>.<field>[...].
func fieldSegment(path string) string {
	rest := path
	for i := 0; i < len(rest); i++ {
		if rest[i] == '.' {
			rest = rest[i+1:]
			for j := 0; j < len(rest); j++ {
				if rest[j] == '.' || rest[j] == '[' {
					return rest[:j]
				}
			}
			return rest
		}
	}
	return ""
}
