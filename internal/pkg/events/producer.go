// Package events publishes entity lifecycle events to Kafka. The producer
// is asynchronous: Produce enqueues onto a buffered channel and a single
// event loop writes to the broker, dropping events when the queue is full.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var jsonMarshal = json.Marshal

// Action identifies the lifecycle transition an event describes.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Envelope is the wire format of a lifecycle event.
type Envelope struct {
	ID         string    `json:"id"`
	Entity     string    `json:"entity"`
	Action     Action    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload"`
}

// KafkaWriter abstracts the kafka-go writer for testing.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes Envelopes for a single entity family.
type Producer struct {
	writer    KafkaWriter
	entity    string
	events    chan Envelope
	logger    *zap.Logger
	closeChan chan struct{}
}

// NewProducer dials the first broker to ensure the topic exists, then
// starts the event loop.
func NewProducer(brokers []string, topic, entity string, logger *zap.Logger) (*Producer, error) {
	conn, err := kafka.Dial("tcp", brokers[0])
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	err = conn.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     3,
		ReplicationFactor: 1,
	})
	if err != nil {
		logger.Warn("failed to create topic (may already exist)", zap.Error(err))
	}

	p := &Producer{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Balancer: &kafka.LeastBytes{},
			Topic:    topic,
		},
		entity:    entity,
		events:    make(chan Envelope, 1000),
		logger:    logger.Named("event_producer"),
		closeChan: make(chan struct{}),
	}

	go p.eventLoop()
	return p, nil
}

// Produce enqueues an event without blocking the caller. Events are
// dropped with a warning when the queue is full.
func (p *Producer) Produce(action Action, payload any) {
	env := Envelope{
		ID:         uuid.NewString(),
		Entity:     p.entity,
		Action:     action,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
	select {
	case p.events <- env:
	default:
		p.logger.Warn("event queue full, dropping event",
			zap.String("entity", p.entity),
			zap.String("action", string(action)),
		)
	}
}

func (p *Producer) eventLoop() {
	for {
		select {
		case env := <-p.events:
			p.publish(env)
		case <-p.closeChan:
			// Drain what is already queued before exiting.
			for {
				select {
				case env := <-p.events:
					p.publish(env)
				default:
					return
				}
			}
		}
	}
}

func (p *Producer) publish(env Envelope) {
	value, err := jsonMarshal(env)
	if err != nil {
		p.logger.Error("failed to marshal event", zap.Error(err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(env.Entity),
		Value: value,
	})
	if err != nil {
		p.logger.Error("failed to publish event",
			zap.String("entity", env.Entity),
			zap.String("action", string(env.Action)),
			zap.Error(err),
		)
	}
}

// Close stops the event loop and closes the writer.
func (p *Producer) Close() error {
	close(p.closeChan)
	return p.writer.Close()
}
