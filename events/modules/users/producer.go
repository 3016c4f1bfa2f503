// Package userevents publishes user lifecycle audit events to Kafka.
package userevents

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/userdesk/console-backend/database"
)

var logger = database.InitLogger()

// Producer handles sending user audit events to Kafka. A nil Producer is
// valid and drops every event, so callers never need to branch on whether
// auditing is configured.
type Producer struct {
	Writer *kafka.Writer
}

// NewProducer initializes a new Kafka writer for user audit events
func NewProducer(brokers []string, topic string) *Producer {
	return &Producer{
		Writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.LeastBytes{},
		},
	}
}

// NewProducerFromEnv builds a producer from KAFKA_BROKERS and
// KAFKA_USER_EVENTS_TOPIC. Returns nil when no brokers are configured.
func NewProducerFromEnv() *Producer {
	brokers := database.GetEnvDefault("KAFKA_BROKERS", "")
	if brokers == "" {
		return nil
	}
	topic := database.GetEnvDefault("KAFKA_USER_EVENTS_TOPIC", "userdesk.user-events")
	logger.Sugar().Infof("User audit events enabled, topic '%s'", topic)
	return NewProducer(strings.Split(brokers, ","), topic)
}

// Publish sends one audit event. Publish failures are logged and swallowed;
// auditing must never fail the request that triggered it.
func (p *Producer) Publish(ctx context.Context, eventType, userID, email string) {
	if p == nil {
		return
	}

	event := UserChangedEvent{
		EventType:     eventType,
		EventID:       uuid.New().String(),
		EventTime:     time.Now().UTC(),
		SchemaVersion: "v1",
		UserID:        userID,
		Email:         email,
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Sugar().Warnf("Failed to marshal %s event: %v", eventType, err)
		return
	}

	err = p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(userID),
		Value: payload,
	})
	if err != nil {
		logger.Sugar().Warnf("Failed to publish %s event for user %s: %v", eventType, userID, err)
	}
}

// Close cleans up the Kafka writer
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.Writer.Close()
}
