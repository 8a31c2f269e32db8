package model

import "encoding/json"

// NodeType is an open tag: the set below is what this engine understands,
// but unrecognized values still participate in generic graph checks.
type NodeType string

const (
	NodeManualTrigger   NodeType = "manual-trigger"
	NodeScheduleTrigger NodeType = "schedule-trigger"
	NodeEventTrigger    NodeType = "event-trigger"

	NodeRiskGate     NodeType = "risk-gate"
	NodeRulePackEval NodeType = "rule-pack-eval"
	NodeRuleEval     NodeType = "rule-eval"
	NodeAlertCheck   NodeType = "alert-check"

	NodeSingleAgent NodeType = "single-agent"
	NodeAgentCall   NodeType = "agent-call"
	NodeAgentGroup  NodeType = "agent-group"
	NodeJudgeAgent  NodeType = "judge-agent"

	NodeContextConstruction NodeType = "context-construction"
	NodeDebateRound         NodeType = "debate-round"

	NodeSubflowCall   NodeType = "subflow-call"
	NodeJoin          NodeType = "join"
	NodeDecisionMerge NodeType = "decision-merge"
	NodeApproval      NodeType = "approval"

	NodeNotification NodeType = "notification"
	NodeOutput       NodeType = "output"
)

// IsTrigger reports whether the type starts a workflow.
func (t NodeType) IsTrigger() bool {
	switch t {
	case NodeManualTrigger, NodeScheduleTrigger, NodeEventTrigger:
		return true
	}
	return false
}

// IsOutput reports whether the type is a designated terminal/output node.
func (t NodeType) IsOutput() bool {
	switch t {
	case NodeNotification, NodeOutput:
		return true
	}
	return false
}

// IsAgent reports whether the type calls an agent profile.
func (t NodeType) IsAgent() bool {
	switch t {
	case NodeSingleAgent, NodeAgentCall, NodeAgentGroup, NodeJudgeAgent:
		return true
	}
	return false
}

// IsJoinCapable reports whether the type may sit at a DAG convergence
// point. Only join qualifies; decision-merge aggregates decision outputs
// but does not synchronize branches.
func (t NodeType) IsJoinCapable() bool {
	return t == NodeJoin
}

// RuleSource classifies where a rule-shaped node's rules come from.
type RuleSource string

const (
	RuleSourcePack   RuleSource = "DECISION_RULE_PACK"
	RuleSourceInline RuleSource = "INLINE"
	RuleSourceNone   RuleSource = ""
)

// RuleSourceOf resolves the rule source of a node. rule-pack-eval is always
// pack-backed; rule-eval is always inline; alert-check is pack-backed only
// when it declares no inline alert fields.
func RuleSourceOf(n Node) RuleSource {
	switch n.Type {
	case NodeRulePackEval:
		return RuleSourcePack
	case NodeRuleEval:
		return RuleSourceInline
	case NodeAlertCheck:
		for _, key := range []string{"alertField", "alertExpression", "alertCondition"} {
			if _, ok := n.Config[key]; ok {
				return RuleSourceInline
			}
		}
		return RuleSourcePack
	}
	return RuleSourceNone
}

// JoinPolicy values for join node configs.
const (
	JoinPolicyAll    = "ALL"
	JoinPolicyAny    = "ANY"
	JoinPolicyQuorum = "QUORUM"
)

// Typed config payloads. Configs live in the DSL as untyped maps; decoding
// into these structs is how type-specific checks pattern-match them.

// JoinConfig configures a join node.
type JoinConfig struct {
	JoinPolicy     string `json:"joinPolicy"`
	QuorumBranches *int   `json:"quorumBranches"`
}

// RulePackConfig is shared by pack-backed rule nodes.
type RulePackConfig struct {
	RulePackCode  string   `json:"rulePackCode"`
	RulePackCodes []string `json:"rulePackCodes"`
}

// Codes returns all configured pack codes, deduplicated.
func (c RulePackConfig) Codes() []string {
	seen := make(map[string]bool)
	var codes []string
	add := func(code string) {
		if code != "" && !seen[code] {
			seen[code] = true
			codes = append(codes, code)
		}
	}
	add(c.RulePackCode)
	for _, code := range c.RulePackCodes {
		add(code)
	}
	return codes
}

// AgentConfig is shared by agent-shaped nodes.
type AgentConfig struct {
	AgentProfileCode string `json:"agentProfileCode"`
}

// SubflowConfig configures a subflow-call node. WorkflowVersionID is
// optional; when omitted any published version of the target qualifies.
type SubflowConfig struct {
	WorkflowDefinitionID string `json:"workflowDefinitionId"`
	WorkflowVersionID    string `json:"workflowVersionId"`
}

// DecodeConfig unmarshals a node's untyped config map into dst.
func DecodeConfig(n Node, dst interface{}) error {
	if n.Config == nil {
		return nil
	}
	raw, err := json.Marshal(n.Config)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dst)
}

// FieldType describes one field of a node's output contract.
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldNumber  FieldType = "number"
	FieldBoolean FieldType = "boolean"
	FieldObject  FieldType = "object"
	FieldList    FieldType = "list"
)

// outputContracts declares, per known node type, the fields downstream data
// edges and input bindings may reference. Unknown types have an open
// contract (nil) and skip contract checks.
var outputContracts = map[NodeType]map[string]FieldType{
	NodeManualTrigger:       {"payload": FieldObject, "triggeredBy": FieldString},
	NodeScheduleTrigger:     {"payload": FieldObject, "firedAt": FieldString},
	NodeEventTrigger:        {"payload": FieldObject, "eventType": FieldString},
	NodeRiskGate:            {"score": FieldNumber, "passed": FieldBoolean, "reasons": FieldList},
	NodeRulePackEval:        {"matched": FieldBoolean, "hits": FieldList, "verdict": FieldString},
	NodeRuleEval:            {"matched": FieldBoolean, "result": FieldObject},
	NodeAlertCheck:          {"alerted": FieldBoolean, "alerts": FieldList},
	NodeSingleAgent:         {"content": FieldString, "usage": FieldObject},
	NodeAgentCall:           {"content": FieldString, "usage": FieldObject},
	NodeAgentGroup:          {"contents": FieldList, "usage": FieldObject},
	NodeJudgeAgent:          {"verdict": FieldString, "rationale": FieldString, "scores": FieldObject},
	NodeContextConstruction: {"context": FieldObject},
	NodeDebateRound:         {"arguments": FieldList, "round": FieldNumber},
	NodeSubflowCall:         {"result": FieldObject, "status": FieldString},
	NodeJoin:                {"branches": FieldList, "satisfied": FieldBoolean},
	NodeDecisionMerge:       {"decision": FieldString, "inputs": FieldList},
	NodeApproval:            {"approved": FieldBoolean, "approver": FieldString, "comment": FieldString},
	NodeNotification:        {"delivered": FieldBoolean},
	NodeOutput:              {"output": FieldObject},
}

// OutputContract returns the output contract for a node type, or nil when
// the type is unknown and the contract is open.
func OutputContract(t NodeType) map[string]FieldType {
	return outputContracts[t]
}
