// Package messaging publishes pipeline progress events to RabbitMQ.
package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// ProgressEvent is one pipeline status update as published to the progress
// queue. Consumers relay it to connected preview clients. TaskID correlates
// the events of a single operation; GameID is empty until the game exists.
type ProgressEvent struct {
	TaskID    string    `json:"taskId"`
	GameID    string    `json:"gameId,omitempty"`
	Phase     string    `json:"phase"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// ProgressNotifier delivers pipeline progress to interested consumers.
// Delivery is advisory: generation never blocks on a lost event.
//
//go:generate mockery --name ProgressNotifier --output ../mocks --outpkg mocks --case=underscore
type ProgressNotifier interface {
	NotifyProgress(ctx context.Context, event ProgressEvent) error
}

type amqpProgressNotifier struct {
	channel   *amqp.Channel
	queueName string
	logger    *zap.Logger
}

// NewAMQPProgressNotifier declares the progress queue and returns a notifier
// publishing to it. The channel is owned by the caller and must outlive the
// notifier.
func NewAMQPProgressNotifier(ch *amqp.Channel, queueName string, logger *zap.Logger) (ProgressNotifier, error) {
	_, err := ch.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		amqp.Table{"x-queue-mode": "lazy"},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare progress queue '%s': %w", queueName, err)
	}

	log := logger.Named("ProgressNotifier")
	log.Info("Progress queue declared", zap.String("queue", queueName))
	return &amqpProgressNotifier{channel: ch, queueName: queueName, logger: log}, nil
}

// NotifyProgress publishes one event to the progress queue.
func (n *amqpProgressNotifier) NotifyProgress(ctx context.Context, event ProgressEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		n.logger.Error("Failed to serialize progress event",
			zap.Error(err),
			zap.String("taskID", event.TaskID),
		)
		return fmt.Errorf("failed to serialize progress event for task %s: %w", event.TaskID, err)
	}

	err = n.channel.PublishWithContext(ctx,
		"",
		n.queueName,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
			Timestamp:    time.Now(),
			AppId:        "forge-server",
			MessageId:    uuid.NewString(),
		},
	)
	if err != nil {
		n.logger.Error("Failed to publish progress event",
			zap.Error(err),
			zap.String("taskID", event.TaskID),
			zap.String("phase", event.Phase),
		)
		return fmt.Errorf("failed to publish progress event for task %s: %w", event.TaskID, err)
	}

	n.logger.Debug("Progress event published",
		zap.String("taskID", event.TaskID),
		zap.String("phase", event.Phase),
		zap.String("queue", n.queueName),
	)
	return nil
}

type noopProgressNotifier struct{}

// NewNoopProgressNotifier returns a notifier that discards every event.
// Used when RabbitMQ is not configured, for example in local development.
func NewNoopProgressNotifier() ProgressNotifier { return noopProgressNotifier{} }

func (noopProgressNotifier) NotifyProgress(context.Context, ProgressEvent) error { return nil }
