package model

// WorkflowMode determines which topology invariants apply to a graph.
type WorkflowMode string

const (
	ModeLinear WorkflowMode = "LINEAR"
	ModeDAG    WorkflowMode = "DAG"
	ModeDebate WorkflowMode = "DEBATE"
)

// IsValid reports whether the mode is one of the known modes.
func (m WorkflowMode) IsValid() bool {
	switch m {
	case ModeLinear, ModeDAG, ModeDebate:
		return true
	}
	return false
}

// TemplateSource records where a workflow's DSL originally came from.
type TemplateSource string

const (
	TemplateSourcePublic  TemplateSource = "PUBLIC"
	TemplateSourcePrivate TemplateSource = "PRIVATE"
	TemplateSourceCopied  TemplateSource = "COPIED"
)

// WorkflowDSL is the declarative graph describing one workflow version:
// nodes, edges, run policy and the external bindings the graph intends to
// use. It is persisted verbatim as the version's snapshot.
type WorkflowDSL struct {
	WorkflowID            string         `json:"workflowId"`
	Name                  string         `json:"name"`
	Mode                  WorkflowMode   `json:"mode"`
	UsageMethod           string         `json:"usageMethod,omitempty"`
	Version               string         `json:"version,omitempty"`
	Status                string         `json:"status,omitempty"`
	OwnerUserID           string         `json:"ownerUserId"`
	TemplateSource        TemplateSource `json:"templateSource,omitempty"`
	Nodes                 []Node         `json:"nodes"`
	Edges                 []Edge         `json:"edges"`
	RunPolicy             *RunPolicy     `json:"runPolicy,omitempty"`
	AgentBindings         []string       `json:"agentBindings,omitempty"`
	ParamSetBindings      []string       `json:"paramSetBindings,omitempty"`
	DataConnectorBindings []string       `json:"dataConnectorBindings,omitempty"`
}

// Node is one typed step in the graph. Config carries type-specific fields;
// unknown node types are tolerated and simply skip type-specific checks.
type Node struct {
	ID            string                 `json:"id"`
	Type          NodeType               `json:"type"`
	Name          string                 `json:"name"`
	Enabled       bool                   `json:"enabled"`
	Config        map[string]interface{} `json:"config,omitempty"`
	InputBindings map[string]interface{} `json:"inputBindings,omitempty"`
}

// EdgeType distinguishes control-flow edges from declared data edges.
type EdgeType string

const (
	EdgeControl EdgeType = "control"
	EdgeData    EdgeType = "data"
)

// Edge connects two nodes. Data edges additionally declare which output
// field feeds which input field.
type Edge struct {
	ID          string      `json:"id"`
	From        string      `json:"from"`
	To          string      `json:"to"`
	EdgeType    EdgeType    `json:"edgeType,omitempty"`
	Condition   interface{} `json:"condition,omitempty"`
	SourceField string      `json:"sourceField,omitempty"`
	TargetField string      `json:"targetField,omitempty"`
}

// RunPolicy holds graph-wide execution policy. The validator requires
// NodeDefaults to be fully specified; nothing is silently defaulted here.
type RunPolicy struct {
	NodeDefaults *NodeDefaults `json:"nodeDefaults,omitempty"`
}

// NodeDefaults are the per-node execution defaults every published workflow
// must declare. Pointer fields distinguish "absent" from zero.
type NodeDefaults struct {
	TimeoutMs      *int   `json:"timeoutMs,omitempty"`
	RetryCount     *int   `json:"retryCount,omitempty"`
	RetryBackoffMs *int   `json:"retryBackoffMs,omitempty"`
	OnError        string `json:"onError,omitempty"`
}

// FindNode returns the node with the given id, or nil.
func (d *WorkflowDSL) FindNode(id string) *Node {
	for i := range d.Nodes {
		if d.Nodes[i].ID == id {
			return &d.Nodes[i]
		}
	}
	return nil
}
