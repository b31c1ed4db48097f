package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/MitulSonagara/blog-backend/internal/domain"
	"github.com/MitulSonagara/blog-backend/pkg/kafka"
	"github.com/MitulSonagara/blog-backend/pkg/logger"
)

// UserEventsTopic is the Kafka topic registration events are published to
const UserEventsTopic = "user-events"

type userRegisteredPayload struct {
	EventType string                     `json:"event_type"`
	Data      domain.UserRegisteredEvent `json:"data"`
}

// KafkaSink publishes registration events to Kafka
type KafkaSink struct {
	producer *kafka.Producer
	topic    string
}

// NewKafkaSink creates a new KafkaSink. An empty topic falls back to
// UserEventsTopic.
func NewKafkaSink(producer *kafka.Producer, topic string) *KafkaSink {
	if topic == "" {
		topic = UserEventsTopic
	}
	return &KafkaSink{producer: producer, topic: topic}
}

func (s *KafkaSink) Name() string { return "kafka" }

// Handle publishes the event keyed by user ID
func (s *KafkaSink) Handle(ctx context.Context, event domain.UserRegisteredEvent) error {
	payload, err := json.Marshal(userRegisteredPayload{
		EventType: "user.registered",
		Data:      event,
	})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return s.producer.Produce(ctx, &kafka.Message{
		Topic: s.topic,
		Key:   []byte(event.UserID),
		Value: payload,
	})
}

// LogSink writes a welcome line for each registration. It stands in for
// the mail sender when no broker is configured.
type LogSink struct{}

// NewLogSink creates a new LogSink
func NewLogSink() *LogSink {
	return &LogSink{}
}

func (s *LogSink) Name() string { return "log" }

// Handle logs the welcome message
func (s *LogSink) Handle(ctx context.Context, event domain.UserRegisteredEvent) error {
	logger.Get().Info(fmt.Sprintf("Welcome %s! Your account has been created.", event.Name),
		zap.String("user_id", event.UserID),
		zap.String("email", event.Email))
	return nil
}
