// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package mailer hands confirmation emails off to a delivery backend.
//
// Delivery itself happens outside the API. The log backend prints the
// message for local development; the AMQP backend publishes it to a durable
// RabbitMQ queue consumed by a mail worker.
package mailer

import (
	"context"
	"fmt"
	"log/slog"
)

// ConfirmationSubject is the subject line of signup emails.
const ConfirmationSubject = "Confirmation_code"

// ConfirmationEmail is a signup confirmation addressed to one user.
type ConfirmationEmail struct {
	To       string `json:"to"`
	From     string `json:"from"`
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	Username string `json:"username"`
}

// NewConfirmation builds the email carrying a plain-text code.
func NewConfirmation(from, to, username, code string) ConfirmationEmail {
	return ConfirmationEmail{
		To:       to,
		From:     from,
		Subject:  ConfirmationSubject,
		Body:     fmt.Sprintf("Welcome %s! Your code for obtaining an API token: %s", username, code),
		Username: username,
	}
}

// Mailer sends confirmation emails.
type Mailer interface {
	SendConfirmation(ctx context.Context, email ConfirmationEmail) error
}

// LogMailer writes emails to the structured log instead of sending them.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer returns a console backend for development.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendConfirmation implements [Mailer].
func (mailer *LogMailer) SendConfirmation(ctx context.Context, email ConfirmationEmail) error {
	mailer.logger.InfoContext(ctx, "confirmation_email",
		slog.String("to", email.To),
		slog.String("from", email.From),
		slog.String("subject", email.Subject),
		slog.String("username", email.Username),
		slog.String("body", email.Body),
	)
	return nil
}
