package infrastructure

import (
	"fmt"

	"cashgame/domain/events"
)

// LedgerStreamName is the JetStream stream that carries every ledger event
const LedgerStreamName = "ledger_events"

var subjectsByEventType = map[events.EventType]string{
	events.EventTypeUserRegistered:  "ledger.users.registered",
	events.EventTypeSessionCreated:  "ledger.sessions.created",
	events.EventTypePlayerJoined:    "ledger.sessions.player_joined",
	events.EventTypeSessionClosed:   "ledger.sessions.closed",
	events.EventTypeBuyInRequested:  "ledger.buy_ins.requested",
	events.EventTypeBuyInResolved:   "ledger.buy_ins.resolved",
	events.EventTypeBuyInAmended:    "ledger.buy_ins.amended",
	events.EventTypeBuyInDeleted:    "ledger.buy_ins.deleted",
	events.EventTypeCashOutRecorded: "ledger.cash_outs.recorded",
	events.EventTypeCashOutAmended:  "ledger.cash_outs.amended",
	events.EventTypeCashOutDeleted:  "ledger.cash_outs.deleted",
}

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	if subject, ok := subjectsByEventType[event.Type()]; ok {
		return subject
	}
	return fmt.Sprintf("ledger.unknown.%s", event.Type())
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	for eventType, s := range subjectsByEventType {
		if s == subject {
			return eventType
		}
	}
	return events.EventType(subject)
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{"ledger.>"}
}
