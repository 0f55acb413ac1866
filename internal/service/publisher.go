// Package service publishes probe findings to RabbitMQ.  Errors are logged and
// returned so callers can decide whether a failed publish matters.
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	q "github.com/iliyamo/methodcheck-testserver/internal/queue"
)

// PublishFinding publishes event to the durable findings queue on the broker
// at url.  Messages are marked persistent.
func PublishFinding(ctx context.Context, url string, event q.FindingEvent, log zerolog.Logger) error {
	pub, err := newPublishing(event, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("rabbitmq: marshal event failed")
		return err
	}

	conn, err := amqp.Dial(url)
	if err != nil {
		log.Error().Err(err).Msg("rabbitmq: dial failed")
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		log.Error().Err(err).Msg("rabbitmq: channel open failed")
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Idempotent; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(
		q.FindingsQueue, // name
		true,            // durable
		false,           // autoDelete
		false,           // exclusive
		false,           // noWait
		nil,             // args
	); err != nil {
		log.Error().Err(err).Msg("rabbitmq: queue declare failed")
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.PublishWithContext(ctx,
		"",              // default exchange
		q.FindingsQueue, // routing key = queue name
		false,           // mandatory
		false,           // immediate
		pub,
	); err != nil {
		log.Error().Err(err).Msg("rabbitmq: publish failed")
		return fmt.Errorf("publish: %w", err)
	}

	log.Debug().Str("key", event.DedupeKey).Msg("rabbitmq: finding published")
	return nil
}

func newPublishing(event q.FindingEvent, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal finding: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.DedupeKey,
		Timestamp:    now.UTC(),
		Body:         body,
	}, nil
}
