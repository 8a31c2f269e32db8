package structural

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decisionflow-ai/decisionflow/internal/workflow/domain/model"
)

func baseDSL(mode model.WorkflowMode) model.WorkflowDSL {
	return model.WorkflowDSL{
		WorkflowID:  "wf-1",
		Name:        "Fraud check",
		Mode:        mode,
		OwnerUserID: "user-1",
		Nodes: []model.Node{
			{ID: "trigger", Type: model.NodeManualTrigger, Name: "Start", Enabled: true},
			{ID: "gate", Type: model.NodeRiskGate, Name: "Gate", Enabled: true},
			{ID: "notify", Type: model.NodeNotification, Name: "Notify", Enabled: true},
		},
		Edges: []model.Edge{
			{ID: "e1", From: "trigger", To: "gate", EdgeType: model.EdgeControl},
			{ID: "e2", From: "gate", To: "notify", EdgeType: model.EdgeControl},
		},
		RunPolicy: &model.RunPolicy{NodeDefaults: model.DefaultNodeDefaults()},
	}
}

func codes(result model.ValidationResult) []string {
	var out []string
	for _, issue := range result.Issues {
		out = append(out, issue.Code)
	}
	return out
}

func issueByCode(t *testing.T, result model.ValidationResult, code string) model.ValidationIssue {
	t.Helper()
	for _, issue := range result.Issues {
		if issue.Code == code {
			return issue
		}
	}
	t.Fatalf("no issue with code %s in %v", code, result.Issues)
	return model.ValidationIssue{}
}

func TestValidateCleanWorkflow(t *testing.T) {
	result := Validate(baseDSL(model.ModeLinear), model.StageSave)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Issues)

	result = Validate(baseDSL(model.ModeDAG), model.StagePublish)
	assert.True(t, result.Valid)
}

func TestValidateMissingFields(t *testing.T) {
	result := Validate(model.WorkflowDSL{}, model.StageSave)
	assert.False(t, result.Valid)

	// workflowId, name, mode, nodes, edges all missing.
	count := 0
	for _, issue := range result.Issues {
		if issue.Code == model.CodeMissingFields {
			count++
		}
	}
	assert.Equal(t, 5, count)
}

func TestValidateDuplicateIDs(t *testing.T) {
	dsl := baseDSL(model.ModeDAG)
	dsl.Nodes = append(dsl.Nodes, model.Node{ID: "gate", Type: model.NodeRuleEval, Name: "Dup", Enabled: true})
	dsl.Edges = append(dsl.Edges, model.Edge{ID: "e1", From: "trigger", To: "notify"})

	result := Validate(dsl, model.StageSave)
	assert.False(t, result.Valid)
	assert.Contains(t, codes(result), model.CodeDuplicateID)

	issue := issueByCode(t, result, model.CodeDuplicateID)
	assert.NotEmpty(t, issue.NodeID)
}

func TestValidateUnknownEndpoint(t *testing.T) {
	dsl := baseDSL(model.ModeDAG)
	dsl.Edges = append(dsl.Edges, model.Edge{ID: "e3", From: "gate", To: "ghost"})

	result := Validate(dsl, model.StageSave)
	assert.False(t, result.Valid)
	issue := issueByCode(t, result, model.CodeUnknownEndpoint)
	assert.Equal(t, "e3", issue.EdgeID)
}

func TestValidateDanglingNode(t *testing.T) {
	dsl := baseDSL(model.ModeDAG)
	dsl.Nodes = append(dsl.Nodes, model.Node{ID: "orphan", Type: model.NodeRuleEval, Name: "Orphan", Enabled: true})

	result := Validate(dsl, model.StageSave)
	issue := issueByCode(t, result, model.CodeDanglingNode)
	assert.Equal(t, "orphan", issue.NodeID)
}

func TestValidateDanglingTriggerWarnsOnly(t *testing.T) {
	dsl := baseDSL(model.ModeDAG)
	dsl.Nodes = append(dsl.Nodes, model.Node{ID: "spare", Type: model.NodeScheduleTrigger, Name: "Spare trigger", Enabled: true})

	result := Validate(dsl, model.StageSave)
	assert.True(t, result.Valid)

	issue := issueByCode(t, result, model.CodeDanglingNode)
	assert.Equal(t, model.SeverityWarning, issue.Severity)
	assert.Equal(t, "spare", issue.NodeID)
}

func TestValidateDanglingOutputTolerated(t *testing.T) {
	dsl := baseDSL(model.ModeDAG)
	dsl.Nodes = append(dsl.Nodes, model.Node{ID: "sink", Type: model.NodeOutput, Name: "Spare sink", Enabled: true})

	result := Validate(dsl, model.StageSave)
	assert.True(t, result.Valid)
	assert.NotContains(t, codes(result), model.CodeDanglingNode)
}

func TestValidateLinearBranch(t *testing.T) {
	dsl := baseDSL(model.ModeLinear)
	dsl.Nodes = append(dsl.Nodes, model.Node{ID: "extra", Type: model.NodeOutput, Name: "Extra", Enabled: true})
	dsl.Edges = append(dsl.Edges, model.Edge{ID: "e3", From: "gate", To: "extra"})

	result := Validate(dsl, model.StageSave)
	assert.False(t, result.Valid)
	issue := issueByCode(t, result, model.CodeLinearBranch)
	assert.Equal(t, "gate", issue.NodeID)
}

func TestValidateLinearSameGraphValidAsDAG(t *testing.T) {
	dsl := baseDSL(model.ModeDAG)
	dsl.Nodes = append(dsl.Nodes, model.Node{ID: "extra", Type: model.NodeOutput, Name: "Extra", Enabled: true})
	dsl.Edges = append(dsl.Edges, model.Edge{ID: "e3", From: "gate", To: "extra"})

	result := Validate(dsl, model.StageSave)
	assert.True(t, result.Valid)
}

func TestValidateConvergenceWithoutJoin(t *testing.T) {
	dsl := model.WorkflowDSL{
		WorkflowID:  "wf-1",
		Name:        "Parallel checks",
		Mode:        model.ModeDAG,
		OwnerUserID: "user-1",
		Nodes: []model.Node{
			{ID: "trigger", Type: model.NodeManualTrigger, Name: "Start", Enabled: true},
			{ID: "splitA", Type: model.NodeRuleEval, Name: "Check A", Enabled: true},
			{ID: "splitB", Type: model.NodeRuleEval, Name: "Check B", Enabled: true},
			{ID: "merge", Type: model.NodeRiskGate, Name: "Merge", Enabled: true},
			{ID: "notify", Type: model.NodeNotification, Name: "Notify", Enabled: true},
		},
		Edges: []model.Edge{
			{ID: "e1", From: "trigger", To: "splitA"},
			{ID: "e2", From: "trigger", To: "splitB"},
			{ID: "e3", From: "splitA", To: "merge"},
			{ID: "e4", From: "splitB", To: "merge"},
			{ID: "e5", From: "merge", To: "notify"},
		},
		RunPolicy: &model.RunPolicy{NodeDefaults: model.DefaultNodeDefaults()},
	}

	result := Validate(dsl, model.StageSave)
	assert.False(t, result.Valid)
	issue := issueByCode(t, result, model.CodeMissingJoin)
	assert.Equal(t, "merge", issue.NodeID)

	// decision-merge is not a substitute for a join at a convergence.
	dsl.Nodes[3].Type = model.NodeDecisionMerge
	result = Validate(dsl, model.StageSave)
	assert.False(t, result.Valid)
	issue = issueByCode(t, result, model.CodeMissingJoin)
	assert.Equal(t, "merge", issue.NodeID)

	// The same topology converging into a join node is fine.
	dsl.Nodes[3].Type = model.NodeJoin
	result = Validate(dsl, model.StageSave)
	assert.NotContains(t, codes(result), model.CodeMissingJoin)
}

func TestValidateDebateRoles(t *testing.T) {
	dsl := model.WorkflowDSL{
		WorkflowID:  "wf-1",
		Name:        "Debate",
		Mode:        model.ModeDebate,
		OwnerUserID: "user-1",
		Nodes: []model.Node{
			{ID: "trigger", Type: model.NodeManualTrigger, Name: "Start", Enabled: true},
			{ID: "round", Type: model.NodeDebateRound, Name: "Round", Enabled: true},
			{ID: "notify", Type: model.NodeNotification, Name: "Notify", Enabled: true},
		},
		Edges: []model.Edge{
			{ID: "e1", From: "trigger", To: "round"},
			{ID: "e2", From: "round", To: "notify"},
		},
		RunPolicy: &model.RunPolicy{NodeDefaults: model.DefaultNodeDefaults()},
	}

	result := Validate(dsl, model.StageSave)
	assert.False(t, result.Valid)

	// Missing context-construction and judge, two distinct findings.
	count := 0
	for _, issue := range result.Issues {
		if issue.Code == model.CodeDebateRoles {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestValidateDebateRoundMustReachJudge(t *testing.T) {
	dsl := model.WorkflowDSL{
		WorkflowID:  "wf-1",
		Name:        "Debate",
		Mode:        model.ModeDebate,
		OwnerUserID: "user-1",
		Nodes: []model.Node{
			{ID: "trigger", Type: model.NodeManualTrigger, Name: "Start", Enabled: true},
			{ID: "context", Type: model.NodeContextConstruction, Name: "Context", Enabled: true},
			{ID: "round", Type: model.NodeDebateRound, Name: "Round", Enabled: true},
			{ID: "judge", Type: model.NodeJudgeAgent, Name: "Judge", Enabled: true},
			{ID: "notify", Type: model.NodeNotification, Name: "Notify", Enabled: true},
		},
		Edges: []model.Edge{
			{ID: "e1", From: "trigger", To: "context"},
			{ID: "e2", From: "context", To: "round"},
			// Round dead-ends at notify; the judge hangs off context instead.
			{ID: "e3", From: "round", To: "notify"},
			{ID: "e4", From: "context", To: "judge"},
			{ID: "e5", From: "judge", To: "notify"},
		},
		RunPolicy: &model.RunPolicy{NodeDefaults: model.DefaultNodeDefaults()},
	}

	result := Validate(dsl, model.StageSave)
	issue := issueByCode(t, result, model.CodeDebateRoles)
	assert.Equal(t, "round", issue.NodeID)
}

func TestValidateApprovalTail(t *testing.T) {
	dsl := baseDSL(model.ModeDAG)
	dsl.Nodes = append(dsl.Nodes,
		model.Node{ID: "approve", Type: model.NodeApproval, Name: "Approve", Enabled: true},
		model.Node{ID: "more-work", Type: model.NodeRuleEval, Name: "More work", Enabled: true},
	)
	dsl.Edges = append(dsl.Edges,
		model.Edge{ID: "e3", From: "gate", To: "approve"},
		model.Edge{ID: "e4", From: "approve", To: "more-work"},
		model.Edge{ID: "e5", From: "more-work", To: "notify"},
	)

	result := Validate(dsl, model.StageSave)
	issue := issueByCode(t, result, model.CodeApprovalTail)
	assert.Equal(t, "approve", issue.NodeID)
	assert.Equal(t, "e4", issue.EdgeID)
}

func TestValidateRiskGateOnlyAtPublish(t *testing.T) {
	dsl := baseDSL(model.ModeDAG)
	dsl.Nodes[1] = model.Node{ID: "gate", Type: model.NodeRuleEval, Name: "Rules", Enabled: true}

	save := Validate(dsl, model.StageSave)
	assert.NotContains(t, codes(save), model.CodeMissingRiskGate)
	assert.True(t, save.Valid)

	publish := Validate(dsl, model.StagePublish)
	assert.Contains(t, codes(publish), model.CodeMissingRiskGate)
	assert.False(t, publish.Valid)
}

func TestValidateQuorumConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  map[string]interface{}
		wantBad bool
	}{
		{
			name:    "quorum of two",
			config:  map[string]interface{}{"joinPolicy": "QUORUM", "quorumBranches": float64(2)},
			wantBad: false,
		},
		{
			name:    "quorum missing branches",
			config:  map[string]interface{}{"joinPolicy": "QUORUM"},
			wantBad: true,
		},
		{
			name:    "quorum of one",
			config:  map[string]interface{}{"joinPolicy": "QUORUM", "quorumBranches": float64(1)},
			wantBad: true,
		},
		{
			name:    "fractional quorum fails decode",
			config:  map[string]interface{}{"joinPolicy": "QUORUM", "quorumBranches": 2.5},
			wantBad: true,
		},
		{
			name:    "ALL ignores quorumBranches",
			config:  map[string]interface{}{"joinPolicy": "ALL"},
			wantBad: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsl := baseDSL(model.ModeDAG)
			dsl.Nodes = append(dsl.Nodes, model.Node{ID: "join", Type: model.NodeJoin, Name: "Join", Enabled: true, Config: tt.config})
			dsl.Edges = append(dsl.Edges,
				model.Edge{ID: "e3", From: "gate", To: "join"},
				model.Edge{ID: "e4", From: "join", To: "notify"},
			)

			result := Validate(dsl, model.StageSave)
			if tt.wantBad {
				issue := issueByCode(t, result, model.CodeQuorumConfig)
				assert.Equal(t, "join", issue.NodeID)
			} else {
				assert.NotContains(t, codes(result), model.CodeQuorumConfig)
			}
		})
	}
}

func TestValidateRunPolicyDefaults(t *testing.T) {
	dsl := baseDSL(model.ModeDAG)
	dsl.RunPolicy = nil
	result := Validate(dsl, model.StageSave)
	assert.Contains(t, codes(result), model.CodeRunPolicyDefaults)

	dsl = baseDSL(model.ModeDAG)
	dsl.RunPolicy.NodeDefaults.TimeoutMs = nil
	dsl.RunPolicy.NodeDefaults.OnError = ""
	result = Validate(dsl, model.StageSave)

	count := 0
	for _, issue := range result.Issues {
		if issue.Code == model.CodeRunPolicyDefaults {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestValidateZeroValuedDefaultsAccepted(t *testing.T) {
	zero := 0
	dsl := baseDSL(model.ModeDAG)
	dsl.RunPolicy.NodeDefaults.RetryCount = &zero

	result := Validate(dsl, model.StageSave)
	assert.NotContains(t, codes(result), model.CodeRunPolicyDefaults)
}

func TestValidateDataEdges(t *testing.T) {
	tests := []struct {
		name    string
		edge    model.Edge
		wantBad bool
	}{
		{
			name:    "valid field",
			edge:    model.Edge{ID: "d1", From: "gate", To: "notify", EdgeType: model.EdgeData, SourceField: "score"},
			wantBad: false,
		},
		{
			name:    "missing sourceField",
			edge:    model.Edge{ID: "d1", From: "gate", To: "notify", EdgeType: model.EdgeData},
			wantBad: true,
		},
		{
			name:    "unknown sourceField",
			edge:    model.Edge{ID: "d1", From: "gate", To: "notify", EdgeType: model.EdgeData, SourceField: "verdict"},
			wantBad: true,
		},
		{
			name:    "type mismatch against declared target field",
			edge:    model.Edge{ID: "d1", From: "gate", To: "notify", EdgeType: model.EdgeData, SourceField: "score", TargetField: "delivered"},
			wantBad: true,
		},
		{
			name:    "undeclared target field tolerated",
			edge:    model.Edge{ID: "d1", From: "gate", To: "notify", EdgeType: model.EdgeData, SourceField: "score", TargetField: "anything"},
			wantBad: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsl := baseDSL(model.ModeDAG)
			dsl.Edges = append(dsl.Edges, tt.edge)

			result := Validate(dsl, model.StageSave)
			if tt.wantBad {
				issue := issueByCode(t, result, model.CodeEdgeTypeMismatch)
				assert.Equal(t, "d1", issue.EdgeID)
			} else {
				assert.NotContains(t, codes(result), model.CodeEdgeTypeMismatch)
			}
		})
	}
}

func TestValidateInputBindings(t *testing.T) {
	tests := []struct {
		name     string
		bindings map[string]interface{}
		wantBad  bool
	}{
		{
			name:     "direct upstream field",
			bindings: map[string]interface{}{"score": "{{ nodes.gate.score }}"},
			wantBad:  false,
		},
		{
			name:     "not a direct upstream",
			bindings: map[string]interface{}{"who": "{{ nodes.trigger.triggeredBy }}"},
			wantBad:  true,
		},
		{
			name:     "field the upstream does not emit",
			bindings: map[string]interface{}{"verdict": "{{ nodes.gate.verdict }}"},
			wantBad:  true,
		},
		{
			name:     "params refs are ignored here",
			bindings: map[string]interface{}{"limit": "{{ params.limit }}"},
			wantBad:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dsl := baseDSL(model.ModeDAG)
			require.Equal(t, "notify", dsl.Nodes[2].ID)
			dsl.Nodes[2].InputBindings = tt.bindings

			result := Validate(dsl, model.StageSave)
			if tt.wantBad {
				issue := issueByCode(t, result, model.CodeUnknownBindingRef)
				assert.Equal(t, "notify", issue.NodeID)
			} else {
				assert.NotContains(t, codes(result), model.CodeUnknownBindingRef)
			}
		})
	}
}

func TestValidateUnknownNodeTypeTolerated(t *testing.T) {
	dsl := baseDSL(model.ModeDAG)
	dsl.Nodes = append(dsl.Nodes,
		model.Node{ID: "custom", Type: "vendor-custom-step", Name: "Custom", Enabled: true},
		model.Node{ID: "sink", Type: model.NodeOutput, Name: "Sink", Enabled: true},
	)
	dsl.Edges = append(dsl.Edges,
		model.Edge{ID: "e3", From: "gate", To: "custom"},
		model.Edge{ID: "e4", From: "custom", To: "sink", EdgeType: model.EdgeData, SourceField: "whatever"},
	)

	// Unknown types have open contracts: generic checks apply, contract
	// checks do not.
	result := Validate(dsl, model.StageSave)
	assert.True(t, result.Valid)
}
