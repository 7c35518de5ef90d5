package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"cashgame/domain/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	subject string
	msgID   string
	data    []byte
}

type fakeMessagePublisher struct {
	sent []sentMessage
	err  error
}

func (f *fakeMessagePublisher) Publish(ctx context.Context, subject, msgID string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{subject: subject, msgID: msgID, data: data})
	return nil
}

type countingRecorder struct {
	published map[string]int
}

func (c *countingRecorder) RecordNATSMessagePublished(eventType string) {
	c.published[eventType]++
}

func TestNATSEventPublisher_Publish(t *testing.T) {
	client := &fakeMessagePublisher{}
	recorder := &countingRecorder{published: map[string]int{}}
	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper(), recorder)
	fixed := time.Date(2024, 3, 1, 20, 0, 0, 0, time.UTC)
	publisher.now = func() time.Time { return fixed }

	event := events.CashOutRecordedEvent{CashOutID: 11, SessionID: 2, UserID: 8, Amount: 7500}
	require.NoError(t, publisher.Publish(event))

	require.Len(t, client.sent, 1)
	msg := client.sent[0]
	assert.Equal(t, "ledger.cash_outs.recorded", msg.subject)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(msg.data, &envelope))
	assert.Equal(t, msg.msgID, envelope.EventID)
	_, err := uuid.Parse(envelope.EventID)
	assert.NoError(t, err)
	assert.Equal(t, "cash_out_recorded", envelope.EventType)
	assert.Equal(t, "cashgame", envelope.SourceService)
	assert.True(t, fixed.Equal(envelope.Timestamp))

	var payload events.CashOutRecordedEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, event, payload)

	assert.Equal(t, 1, recorder.published["cash_out_recorded"])
}

func TestNATSEventPublisher_PublishError(t *testing.T) {
	client := &fakeMessagePublisher{err: errors.New("no responders")}
	recorder := &countingRecorder{published: map[string]int{}}
	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper(), recorder)

	err := publisher.Publish(events.UserRegisteredEvent{UserID: 1, Username: "ana"})
	assert.Error(t, err)
	assert.Empty(t, recorder.published)
}

func TestNATSEventPublisher_NilMetrics(t *testing.T) {
	client := &fakeMessagePublisher{}
	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper(), nil)

	assert.NoError(t, publisher.Publish(events.SessionCreatedEvent{SessionID: 1, Code: "ABC123"}))
	assert.Len(t, client.sent, 1)
}
