package notification

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apptly/booking-api/internal/model"
)

type fakeOutbox struct {
	events  []capturedEvent
	failure error
}

type capturedEvent struct {
	eventType string
	payload   interface{}
}

func (o *fakeOutbox) Enqueue(_ context.Context, eventType string, payload interface{}) error {
	if o.failure != nil {
		return o.failure
	}
	o.events = append(o.events, capturedEvent{eventType, payload})
	return nil
}

func (o *fakeOutbox) ClaimPending(_ context.Context, _ int) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (o *fakeOutbox) MarkProcessed(_ context.Context, _ uuid.UUID) error { return nil }

func (o *fakeOutbox) MarkFailed(_ context.Context, _ uuid.UUID, _ string) error { return nil }

func sampleAppointment() *model.Appointment {
	apt := &model.Appointment{
		TenantID:  uuid.New(),
		BranchID:  uuid.New(),
		StaffID:   uuid.New(),
		ClientID:  uuid.New(),
		StartTime: time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2024, 6, 3, 11, 0, 0, 0, time.UTC),
		Status:    model.AppointmentStatusScheduled,
	}
	apt.ID = uuid.New()
	return apt
}

func TestAppointmentBooked(t *testing.T) {
	outbox := &fakeOutbox{}
	svc := NewService(outbox, nil)
	apt := sampleAppointment()

	svc.AppointmentBooked(context.Background(), apt, []string{"Consultation"})

	require.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventAppointmentBooked, outbox.events[0].eventType)

	event, ok := outbox.events[0].payload.(*model.AppointmentEvent)
	require.True(t, ok)
	assert.Equal(t, apt.ID, event.AppointmentID)
	assert.Equal(t, []string{"Consultation"}, event.ServiceNames)
	assert.Empty(t, event.Reason)
}

func TestAppointmentCancelled(t *testing.T) {
	outbox := &fakeOutbox{}
	svc := NewService(outbox, nil)
	apt := sampleAppointment()

	svc.AppointmentCancelled(context.Background(), apt, "client request")

	require.Len(t, outbox.events, 1)
	assert.Equal(t, model.EventAppointmentCancelled, outbox.events[0].eventType)

	event := outbox.events[0].payload.(*model.AppointmentEvent)
	assert.Equal(t, "client request", event.Reason)
}

func TestEnqueueFailureIsSwallowed(t *testing.T) {
	outbox := &fakeOutbox{failure: errors.New("db down")}
	svc := NewService(outbox, nil)

	assert.NotPanics(t, func() {
		svc.AppointmentBooked(context.Background(), sampleAppointment(), nil)
	})
	assert.Empty(t, outbox.events)
}

func TestEventPayloadSerializes(t *testing.T) {
	outbox := &fakeOutbox{}
	svc := NewService(outbox, nil)
	apt := sampleAppointment()

	svc.AppointmentRescheduled(context.Background(), apt)

	raw, err := json.Marshal(outbox.events[0].payload)
	require.NoError(t, err)

	var decoded model.AppointmentEvent
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, apt.StartTime, decoded.StartTime)
}
