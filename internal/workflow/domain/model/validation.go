package model

import "fmt"

// ValidationStage selects which checks apply. SAVE-stage checks always run;
// PUBLISH adds the pre-publish gates and governance checks.
type ValidationStage string

const (
	StageSave    ValidationStage = "SAVE"
	StagePublish ValidationStage = "PUBLISH"
)

// Severity of a validation issue. Only ERROR issues block save/publish.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// Issue codes surfaced to callers.
const (
	CodeMissingFields      = "WF001"
	CodeDuplicateID        = "WF002"
	CodeUnknownEndpoint    = "WF003"
	CodeDanglingNode       = "WF004"
	CodeLinearBranch       = "WF005"
	CodeDebateRoles        = "WF101"
	CodeMissingJoin        = "WF102"
	CodeApprovalTail       = "WF103"
	CodeMissingRiskGate    = "WF104"
	CodeQuorumConfig       = "WF105"
	CodeRunPolicyDefaults  = "WF106"
	CodeSubflowUnpublished = "WF107"
	CodeEdgeTypeMismatch   = "WF201"
	CodeUnknownBindingRef  = "WF202"
	CodeUnboundParameter   = "WF203"
	CodeRulePackGovernance = "WF301"
	CodeParamSetGovernance = "WF302"
	CodeAgentGovernance    = "WF303"
	CodeTenantMismatch     = "WF304"
	CodeConnectorInactive  = "WF305"
)

// ValidationIssue is one defect found in a DSL.
type ValidationIssue struct {
	Code     string   `json:"code"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	NodeID   string   `json:"nodeId,omitempty"`
	EdgeID   string   `json:"edgeId,omitempty"`
}

func (i ValidationIssue) String() string {
	s := fmt.Sprintf("[%s] %s", i.Code, i.Message)
	if i.NodeID != "" {
		s += " (node " + i.NodeID + ")"
	}
	if i.EdgeID != "" {
		s += " (edge " + i.EdgeID + ")"
	}
	return s
}

// ValidationResult is the verdict over one DSL. Valid is false iff at least
// one ERROR-severity issue is present; warnings never block.
type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Issues []ValidationIssue `json:"issues"`
}

// NewValidationResult computes Valid from the ERROR issues in the list.
func NewValidationResult(issues []ValidationIssue) ValidationResult {
	for _, issue := range issues {
		if issue.Severity == SeverityError {
			return ValidationResult{Valid: false, Issues: issues}
		}
	}
	return ValidationResult{Valid: true, Issues: issues}
}

// Merge combines two results; the merged result is valid only if both are.
func (r ValidationResult) Merge(other ValidationResult) ValidationResult {
	issues := append(append([]ValidationIssue{}, r.Issues...), other.Issues...)
	return NewValidationResult(issues)
}

// ErrorIssue builds an ERROR-severity issue.
func ErrorIssue(code, message string) ValidationIssue {
	return ValidationIssue{Code: code, Severity: SeverityError, Message: message}
}

// NodeIssue builds an ERROR-severity issue attached to a node.
func NodeIssue(code, message, nodeID string) ValidationIssue {
	return ValidationIssue{Code: code, Severity: SeverityError, Message: message, NodeID: nodeID}
}

// EdgeIssue builds an ERROR-severity issue attached to an edge.
func EdgeIssue(code, message, edgeID string) ValidationIssue {
	return ValidationIssue{Code: code, Severity: SeverityError, Message: message, EdgeID: edgeID}
}

// WarningIssue builds a WARNING-severity issue.
func WarningIssue(code, message string) ValidationIssue {
	return ValidationIssue{Code: code, Severity: SeverityWarning, Message: message}
}
