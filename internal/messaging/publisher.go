package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"chronoflux-server/internal/models"
)

// TurnCommittedPayload is broadcast after every successful turn commit,
// for consumers like analytics or live spectating.
type TurnCommittedPayload struct {
	GameID     string         `json:"game_id"`
	TurnID     string         `json:"turn_id"`
	TurnNumber int            `json:"turn_number"`
	Action     string         `json:"action"`
	Narrative  string         `json:"narrative"`
	Events     []models.Event `json:"events"`
	Timestamp  time.Time      `json:"timestamp"`
}

// TurnEventPublisher publishes turn lifecycle notifications. Publishing
// is best effort: a broker outage never fails a committed turn.
type TurnEventPublisher interface {
	PublishTurnCommitted(ctx context.Context, payload TurnCommittedPayload) error
}

// Compile-time check
var _ TurnEventPublisher = (*rabbitMQPublisher)(nil)

type rabbitMQPublisher struct {
	channel   *amqp.Channel
	queueName string
	logger    *zap.Logger
}

// NewRabbitMQPublisher declares the queue and returns a publisher over
// the given channel. The channel must stay open for the publisher's
// lifetime.
func NewRabbitMQPublisher(ch *amqp.Channel, queueName string, logger *zap.Logger) (TurnEventPublisher, error) {
	_, err := ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}
	return &rabbitMQPublisher{
		channel:   ch,
		queueName: queueName,
		logger:    logger.Named("TurnEventPublisher"),
	}, nil
}

func (p *rabbitMQPublisher) PublishTurnCommitted(ctx context.Context, payload TurnCommittedPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode turn event: %w", err)
	}

	err = p.channel.PublishWithContext(ctx,
		"",          // exchange
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish turn event",
			zap.String("gameID", payload.GameID),
			zap.Int("turnNumber", payload.TurnNumber),
			zap.Error(err))
		return fmt.Errorf("failed to publish turn event: %w", err)
	}

	p.logger.Debug("Turn event published",
		zap.String("gameID", payload.GameID),
		zap.Int("turnNumber", payload.TurnNumber))
	return nil
}
