package model

// Identity is the set of caller-supplied identity fields stamped onto a DSL
// snapshot before validation and storage.
type Identity struct {
	WorkflowID     string
	Name           string
	Mode           WorkflowMode
	UsageMethod    string
	OwnerUserID    string
	TemplateSource TemplateSource
}

// Canonicalize overwrites the snapshot's identity fields with the supplied
// identity, independent of whatever the snapshot previously contained.
// Idempotent: canonicalizing an already-canonical DSL is a no-op.
func Canonicalize(dsl WorkflowDSL, identity Identity) WorkflowDSL {
	dsl.WorkflowID = identity.WorkflowID
	dsl.Name = identity.Name
	dsl.Mode = identity.Mode
	dsl.UsageMethod = identity.UsageMethod
	dsl.OwnerUserID = identity.OwnerUserID
	dsl.TemplateSource = identity.TemplateSource
	if dsl.Nodes == nil {
		dsl.Nodes = []Node{}
	}
	if dsl.Edges == nil {
		dsl.Edges = []Edge{}
	}
	return dsl
}

// DefaultNodeDefaults is the runPolicy.nodeDefaults pre-populated on new
// skeletons so they pass structural validation immediately.
func DefaultNodeDefaults() *NodeDefaults {
	timeoutMs := 60000
	retryCount := 3
	retryBackoffMs := 5000
	return &NodeDefaults{
		TimeoutMs:      &timeoutMs,
		RetryCount:     &retryCount,
		RetryBackoffMs: &retryBackoffMs,
		OnError:        "STOP",
	}
}

// DefaultSkeleton synthesizes a minimal mode-appropriate DSL for a brand-new
// workflow: a trigger first, a notification last, and a fully populated run
// policy.
func DefaultSkeleton(identity Identity) WorkflowDSL {
	var nodes []Node
	switch identity.Mode {
	case ModeDebate:
		nodes = []Node{
			{ID: "trigger", Type: NodeManualTrigger, Name: "Start", Enabled: true},
			{ID: "context", Type: NodeContextConstruction, Name: "Build context", Enabled: true},
			{ID: "round-1", Type: NodeDebateRound, Name: "Debate round", Enabled: true},
			{ID: "judge", Type: NodeJudgeAgent, Name: "Judge", Enabled: true},
			{ID: "notify", Type: NodeNotification, Name: "Notify", Enabled: true},
		}
	default:
		nodes = []Node{
			{ID: "trigger", Type: NodeManualTrigger, Name: "Start", Enabled: true},
			{ID: "gate", Type: NodeRiskGate, Name: "Risk gate", Enabled: true},
			{ID: "notify", Type: NodeNotification, Name: "Notify", Enabled: true},
		}
	}

	edges := make([]Edge, 0, len(nodes)-1)
	for i := 0; i+1 < len(nodes); i++ {
		edges = append(edges, Edge{
			ID:       "e-" + nodes[i].ID + "-" + nodes[i+1].ID,
			From:     nodes[i].ID,
			To:       nodes[i+1].ID,
			EdgeType: EdgeControl,
		})
	}

	return Canonicalize(WorkflowDSL{
		Nodes:     nodes,
		Edges:     edges,
		RunPolicy: &RunPolicy{NodeDefaults: DefaultNodeDefaults()},
	}, identity)
}
