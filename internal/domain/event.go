package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// EventType enumerates the domain events written to the outbox.
type EventType string

const (
	EventUserApproved EventType = "user.approved"
	EventUserRejected EventType = "user.rejected"
	EventUserUpdated  EventType = "user.updated"
	EventUserDeleted  EventType = "user.deleted"
)

// AggregateType enumerates the aggregate root types for outbox events.
type AggregateType string

const (
	AggregateUser AggregateType = "user"
)

// OutboxDraft is the payload written to the event_outbox table.
type OutboxDraft struct {
	ID            int64           `json:"-"`
	EventID       uuid.UUID       `json:"eventId"`
	AggregateType AggregateType   `json:"aggregateType"`
	AggregateID   string          `json:"aggregateId"`
	EventType     EventType       `json:"eventType"`
	PartitionKey  string          `json:"partitionKey"`
	Headers       json.RawMessage `json:"headers"`
	Payload       json.RawMessage `json:"payload"`
	OccurredAt    time.Time       `json:"occurredAt"`
}

// Topic is the Kafka topic an outbox event is published to.
func (d OutboxDraft) Topic() string {
	return "proneo." + string(d.EventType)
}

// UserDecision records who acted on an access request, or on an existing user.
type UserDecision struct {
	Email string `json:"email"`
	Actor string `json:"actor"`
	Role  Role   `json:"role,omitempty"`
	Sport string `json:"sport,omitempty"`
}

// NewUserEvent creates a user lifecycle event keyed by the user's email.
func NewUserEvent(evtType EventType, d UserDecision, requestID string) OutboxDraft {
	payload, _ := json.Marshal(d)
	headers, _ := json.Marshal(map[string]string{"request_id": requestID})
	return OutboxDraft{
		EventID:       uuid.New(),
		AggregateType: AggregateUser,
		AggregateID:   d.Email,
		EventType:     evtType,
		PartitionKey:  d.Email,
		Headers:       headers,
		Payload:       payload,
		OccurredAt:    time.Now().UTC(),
	}
}

// GuardResult is the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
	Guard   string `json:"guard,omitempty"`
}
