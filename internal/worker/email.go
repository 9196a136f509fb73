package worker

import (
	"context"
	"encoding/json"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/apptly/booking-api/internal/model"
	"github.com/apptly/booking-api/pkg/logger"
	"github.com/apptly/booking-api/pkg/messaging"
)

// EmailConfig is read from the environment by the worker binary.
type EmailConfig struct {
	Enabled  bool   `envconfig:"EMAIL_ENABLED" default:"false"`
	Host     string `envconfig:"SMTP_HOST" default:"localhost"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	Username string `envconfig:"SMTP_USERNAME"`
	Password string `envconfig:"SMTP_PASSWORD"`
	From     string `envconfig:"EMAIL_FROM" default:"bookings@example.com"`
}

// Sender abstracts gomail so tests can capture outgoing mail.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// EmailConsumer subscribes to appointment events and sends confirmation,
// reschedule and cancellation emails.
type EmailConsumer struct {
	broker messaging.Broker
	sender Sender
	config EmailConfig
	logger *logger.Logger

	// lookup resolves the recipient address for a client. Kept as a
	// function so the consumer does not depend on the full client repo.
	lookup func(ctx context.Context, event *model.AppointmentEvent) (string, error)
}

func NewEmailConsumer(
	broker messaging.Broker,
	config EmailConfig,
	log *logger.Logger,
	lookup func(ctx context.Context, event *model.AppointmentEvent) (string, error),
) *EmailConsumer {
	return &EmailConsumer{
		broker: broker,
		sender: gomail.NewDialer(config.Host, config.Port, config.Username, config.Password),
		config: config,
		logger: log,
		lookup: lookup,
	}
}

func (c *EmailConsumer) Start(ctx context.Context) error {
	messages, err := c.broker.Subscribe(ctx, EventsChannel)
	if err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	c.logger.Info("starting email consumer")

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("shutting down email consumer")
			return nil
		case raw, ok := <-messages:
			if !ok {
				return nil
			}
			if err := c.handle(ctx, raw); err != nil {
				c.logger.Error(err, "failed to handle event")
			}
		}
	}
}

func (c *EmailConsumer) handle(ctx context.Context, raw []byte) error {
	var msg struct {
		Type    string          `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(raw, &msg); err != nil {
		return fmt.Errorf("malformed message: %w", err)
	}

	var event model.AppointmentEvent
	if err := json.Unmarshal(msg.Payload, &event); err != nil {
		return fmt.Errorf("malformed payload: %w", err)
	}

	subject, body := c.compose(msg.Type, &event)
	if subject == "" {
		return nil
	}

	address, err := c.lookup(ctx, &event)
	if err != nil {
		return fmt.Errorf("failed to resolve recipient: %w", err)
	}

	if !c.config.Enabled {
		c.logger.Debug("email disabled, dropping message",
			"type", msg.Type, "recipient", address)
		return nil
	}

	mail := gomail.NewMessage()
	mail.SetHeader("From", c.config.From)
	mail.SetHeader("To", address)
	mail.SetHeader("Subject", subject)
	mail.SetBody("text/plain", body)

	return c.sender.DialAndSend(mail)
}

func (c *EmailConsumer) compose(eventType string, event *model.AppointmentEvent) (subject, body string) {
	when := event.StartTime.Format("Monday, 2 January 2006 at 15:04")
	switch eventType {
	case model.EventAppointmentBooked:
		subject = "Appointment confirmed"
		body = fmt.Sprintf("Your appointment is confirmed for %s.", when)
	case model.EventAppointmentRescheduled:
		subject = "Appointment rescheduled"
		body = fmt.Sprintf("Your appointment has been moved to %s.", when)
	case model.EventAppointmentCancelled:
		subject = "Appointment cancelled"
		body = fmt.Sprintf("Your appointment on %s has been cancelled.", when)
		if event.Reason != "" {
			body += " Reason: " + event.Reason
		}
	}
	return subject, body
}
