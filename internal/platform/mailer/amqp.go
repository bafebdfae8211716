// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/taibuivan/yamdb/internal/platform/constants"
)

// publisher is the part of [*amqp.Channel] the mailer needs.
type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// AMQPMailer publishes confirmation emails to a durable RabbitMQ queue.
type AMQPMailer struct {
	conn    *amqp.Connection
	mu      sync.Mutex
	channel publisher
	queue   string
	logger  *slog.Logger
}

// NewAMQPMailer connects to RabbitMQ and declares the mail queue.
//
// Declaring is idempotent: the queue is created when missing and left alone
// otherwise.
func NewAMQPMailer(url, queue string, logger *slog.Logger) (*AMQPMailer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("mailer: failed to connect to RabbitMQ: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("mailer: failed to open a channel: %w", err)
	}

	declared, err := channel.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = channel.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("mailer: failed to declare queue %q: %w", queue, err)
	}

	logger.Info("mail queue declared",
		slog.String("queue", declared.Name),
		slog.Int("messages", declared.Messages),
	)

	mailer := newAMQPMailer(channel, declared.Name, logger)
	mailer.conn = conn
	return mailer, nil
}

func newAMQPMailer(channel publisher, queue string, logger *slog.Logger) *AMQPMailer {
	return &AMQPMailer{channel: channel, queue: queue, logger: logger}
}

// SendConfirmation implements [Mailer].
func (mailer *AMQPMailer) SendConfirmation(ctx context.Context, email ConfirmationEmail) error {
	body, err := json.Marshal(email)
	if err != nil {
		return fmt.Errorf("mailer: failed to marshal email: %w", err)
	}

	publishCtx, cancel := context.WithTimeout(ctx, constants.MailPublishTimeout)
	defer cancel()

	mailer.mu.Lock()
	defer mailer.mu.Unlock()

	err = mailer.channel.PublishWithContext(
		publishCtx,
		"",           // default exchange
		mailer.queue, // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("mailer: failed to publish to %q: %w", mailer.queue, err)
	}

	mailer.logger.DebugContext(ctx, "confirmation_email_queued",
		slog.String("queue", mailer.queue),
		slog.String("username", email.Username),
	)
	return nil
}

// Close releases the channel and the connection.
func (mailer *AMQPMailer) Close() error {
	mailer.mu.Lock()
	defer mailer.mu.Unlock()

	var errs []error
	if mailer.channel != nil {
		errs = append(errs, mailer.channel.Close())
	}
	if mailer.conn != nil {
		errs = append(errs, mailer.conn.Close())
	}
	return errors.Join(errs...)
}
