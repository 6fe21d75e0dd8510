package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"
)

// Publisher emits checkout lifecycle events. Implementations must never
// make event delivery a checkout-blocking concern.
type Publisher interface {
	Publish(eventType, correlationID string, payload any)
	Close() error
}

// Producer publishes envelopes to kafka asynchronously through a buffered
// inbox, so a slow broker cannot stall the checkout path.
type Producer struct {
	writer   *kafka.Writer
	producer string
	inbox    chan kafka.Message
	closed   chan struct{}
	logger   zerolog.Logger
}

// NewProducer creates and starts a kafka event producer.
func NewProducer(brokers []string, topic, producerName string, buf int, logger zerolog.Logger) *Producer {
	p := &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
		},
		producer: producerName,
		inbox:    make(chan kafka.Message, buf),
		closed:   make(chan struct{}),
		logger:   logger.With().Str("component", "event-producer").Logger(),
	}

	go p.run()

	return p
}

func (p *Producer) run() {
	defer close(p.closed)

	for msg := range p.inbox {
		if err := p.writer.WriteMessages(context.Background(), msg); err != nil {
			p.logger.Warn().Err(err).Str("key", string(msg.Key)).Msg("failed to publish event")
		}
	}

	if err := p.writer.Close(); err != nil {
		p.logger.Warn().Err(err).Msg("failed to close kafka writer")
	}
}

// Publish enqueues an event. Events are dropped with a warning when the
// inbox is full; checkout progress always wins over event delivery.
func (p *Producer) Publish(eventType, correlationID string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to encode event payload")
		return
	}

	envelope := Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      p.producer,
		CorrelationID: correlationID,
		Payload:       body,
	}

	value, err := json.Marshal(envelope)
	if err != nil {
		p.logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to encode event envelope")
		return
	}

	msg := kafka.Message{
		Key:   []byte(correlationID),
		Value: value,
		Time:  envelope.OccurredAt,
	}

	select {
	case p.inbox <- msg:
	default:
		p.logger.Warn().Str("event_type", eventType).Msg("event inbox full, dropping event")
	}
}

// Close flushes queued events and shuts the writer down.
func (p *Producer) Close() error {
	close(p.inbox)
	select {
	case <-p.closed:
		return nil
	case <-time.After(5 * time.Second):
		return fmt.Errorf("timed out flushing event producer")
	}
}

// NopPublisher discards all events; used when kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(eventType, correlationID string, payload any) {}
func (NopPublisher) Close() error                                         { return nil }
