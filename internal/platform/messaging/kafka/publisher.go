package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"

	"github.com/decisionflow-ai/decisionflow/internal/shared/events"
)

// EventPublisher publishes events to Kafka
type EventPublisher struct {
	producer sarama.AsyncProducer
	config   *Config
	errors   chan error
}

// Config holds Kafka configuration
type Config struct {
	Brokers []string
}

// NewEventPublisher creates a new Kafka event publisher
func NewEventPublisher(config *Config) (*EventPublisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 5
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.Compression = sarama.CompressionSnappy
	saramaConfig.Version = sarama.V3_3_1_0

	producer, err := sarama.NewAsyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %w", err)
	}

	publisher := &EventPublisher{
		producer: producer,
		config:   config,
		errors:   make(chan error, 100),
	}

	go publisher.handleErrors()
	go publisher.handleSuccesses()

	return publisher, nil
}

// Publish publishes an event
func (p *EventPublisher) Publish(ctx context.Context, event *events.Event) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	topic := p.getTopicForEvent(event.EventType)

	message := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(event.AggregateID),
		Value: sarama.ByteEncoder(data),
		Headers: []sarama.RecordHeader{
			{
				Key:   []byte("eventType"),
				Value: []byte(event.EventType),
			},
			{
				Key:   []byte("correlationId"),
				Value: []byte(event.CorrelationID),
			},
			{
				Key:   []byte("aggregateType"),
				Value: []byte(event.AggregateType),
			},
		},
		Timestamp: event.Timestamp,
	}

	select {
	case p.producer.Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case err := <-p.errors:
		return fmt.Errorf("producer error: %w", err)
	}
}

// PublishBatch publishes multiple events
func (p *EventPublisher) PublishBatch(ctx context.Context, batch []*events.Event) error {
	for _, event := range batch {
		if err := p.Publish(ctx, event); err != nil {
			return fmt.Errorf("failed to publish event %s: %w", event.ID, err)
		}
	}
	return nil
}

// Close closes the publisher
func (p *EventPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close producer: %w", err)
	}
	close(p.errors)
	return nil
}

func (p *EventPublisher) handleErrors() {
	for err := range p.producer.Errors() {
		select {
		case p.errors <- fmt.Errorf("kafka producer error: %w", err.Err):
		default:
			fmt.Printf("Producer error (channel full): %v\n", err.Err)
		}
	}
}

// handleSuccesses drains the success channel so the producer never blocks
func (p *EventPublisher) handleSuccesses() {
	for range p.producer.Successes() {
	}
}

// getTopicForEvent maps event types to Kafka topics
func (p *EventPublisher) getTopicForEvent(eventType string) string {
	switch eventType {
	case events.EventWorkflowCreated, events.EventWorkflowArchived:
		return "workflow-lifecycle-events"
	case events.EventWorkflowVersionCreated, events.EventWorkflowVersionPublished:
		return "workflow-version-events"
	default:
		return "default-events"
	}
}
