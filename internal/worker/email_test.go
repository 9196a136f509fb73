package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/apptly/booking-api/internal/model"
	"github.com/apptly/booking-api/pkg/logger"
)

type fakeSender struct {
	sent []*gomail.Message
}

func (s *fakeSender) DialAndSend(m ...*gomail.Message) error {
	s.sent = append(s.sent, m...)
	return nil
}

func newConsumer(sender *fakeSender) *EmailConsumer {
	c := NewEmailConsumer(&fakeBroker{}, EmailConfig{
		Enabled: true,
		From:    "bookings@example.com",
	}, logger.NewLogger(nil), func(_ context.Context, _ *model.AppointmentEvent) (string, error) {
		return "client@example.com", nil
	})
	c.sender = sender
	return c
}

func rawMessage(t *testing.T, eventType string) []byte {
	t.Helper()
	payload, err := json.Marshal(model.AppointmentEvent{
		AppointmentID: uuid.New(),
		StartTime:     time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC),
		Reason:        "double booked",
	})
	require.NoError(t, err)
	raw, err := json.Marshal(map[string]interface{}{
		"type":    eventType,
		"payload": json.RawMessage(payload),
	})
	require.NoError(t, err)
	return raw
}

func TestEmailConsumerSendsConfirmation(t *testing.T) {
	sender := &fakeSender{}
	c := newConsumer(sender)

	require.NoError(t, c.handle(context.Background(), rawMessage(t, model.EventAppointmentBooked)))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"client@example.com"}, sender.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Appointment confirmed"}, sender.sent[0].GetHeader("Subject"))
}

func TestEmailConsumerCancellationIncludesReason(t *testing.T) {
	sender := &fakeSender{}
	c := newConsumer(sender)

	require.NoError(t, c.handle(context.Background(), rawMessage(t, model.EventAppointmentCancelled)))

	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"Appointment cancelled"}, sender.sent[0].GetHeader("Subject"))
}

func TestEmailConsumerIgnoresUnknownTypes(t *testing.T) {
	sender := &fakeSender{}
	c := newConsumer(sender)

	require.NoError(t, c.handle(context.Background(), rawMessage(t, "appointment.unknown")))
	assert.Empty(t, sender.sent)
}

func TestEmailConsumerDisabled(t *testing.T) {
	sender := &fakeSender{}
	c := newConsumer(sender)
	c.config.Enabled = false

	require.NoError(t, c.handle(context.Background(), rawMessage(t, model.EventAppointmentBooked)))
	assert.Empty(t, sender.sent)
}

func TestEmailConsumerMalformedMessage(t *testing.T) {
	sender := &fakeSender{}
	c := newConsumer(sender)

	assert.Error(t, c.handle(context.Background(), []byte("not json")))
}
