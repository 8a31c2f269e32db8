package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event represents a domain event
type Event struct {
	ID            string                 `json:"id"`
	AggregateID   string                 `json:"aggregateId"`
	AggregateType string                 `json:"aggregateType"`
	EventType     string                 `json:"eventType"`
	EventVersion  int                    `json:"eventVersion"`
	Timestamp     time.Time              `json:"timestamp"`
	UserID        string                 `json:"userId"`
	CorrelationID string                 `json:"correlationId"`
	CausationID   string                 `json:"causationId"`
	Metadata      map[string]interface{} `json:"metadata"`
	Payload       json.RawMessage        `json:"payload"`
}

// NewEvent creates a new event
func NewEvent(aggregateID, aggregateType, eventType string, payload interface{}) (*Event, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		EventVersion:  1,
		Timestamp:     time.Now(),
		Metadata:      make(map[string]interface{}),
		Payload:       payloadBytes,
	}, nil
}

// Event type names for the workflow lifecycle
const (
	EventWorkflowCreated          = "workflow.created"
	EventWorkflowVersionCreated   = "workflow.version.created"
	EventWorkflowVersionPublished = "workflow.version.published"
	EventWorkflowArchived         = "workflow.archived"
)

// WorkflowCreated is emitted when a definition and its initial draft are created
type WorkflowCreated struct {
	DefinitionID string    `json:"definitionId"`
	WorkflowID   string    `json:"workflowId"`
	Name         string    `json:"name"`
	Mode         string    `json:"mode"`
	OwnerUserID  string    `json:"ownerUserId"`
	VersionCode  string    `json:"versionCode"`
	CreatedAt    time.Time `json:"createdAt"`
}

// WorkflowVersionCreated is emitted when a new draft version is saved
type WorkflowVersionCreated struct {
	DefinitionID string    `json:"definitionId"`
	WorkflowID   string    `json:"workflowId"`
	VersionID    string    `json:"versionId"`
	VersionCode  string    `json:"versionCode"`
	CreatedAt    time.Time `json:"createdAt"`
}

// WorkflowVersionPublished is emitted after a successful publish transaction
type WorkflowVersionPublished struct {
	DefinitionID     string    `json:"definitionId"`
	WorkflowID       string    `json:"workflowId"`
	VersionID        string    `json:"versionId"`
	VersionCode      string    `json:"versionCode"`
	NextDraftCode    string    `json:"nextDraftCode"`
	ArchivedVersions []string  `json:"archivedVersions"`
	PublishedBy      string    `json:"publishedBy"`
	PublishedAt      time.Time `json:"publishedAt"`
}

// WorkflowArchived is emitted when a definition is retired
type WorkflowArchived struct {
	DefinitionID string    `json:"definitionId"`
	WorkflowID   string    `json:"workflowId"`
	ArchivedBy   string    `json:"archivedBy"`
	ArchivedAt   time.Time `json:"archivedAt"`
}

// GetEventType returns the event type name for a payload
func GetEventType(event interface{}) string {
	switch event.(type) {
	case WorkflowCreated, *WorkflowCreated:
		return EventWorkflowCreated
	case WorkflowVersionCreated, *WorkflowVersionCreated:
		return EventWorkflowVersionCreated
	case WorkflowVersionPublished, *WorkflowVersionPublished:
		return EventWorkflowVersionPublished
	case WorkflowArchived, *WorkflowArchived:
		return EventWorkflowArchived
	default:
		return "unknown"
	}
}
