package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// EventOp names the mutation a RecordEvent reports.
type EventOp string

const (
	OpCreated EventOp = "created"
	OpUpdated EventOp = "updated"
	OpDeleted EventOp = "deleted"
)

var ErrInvalidEvent = errors.New("invalid record event")

// RecordEvent is a lightweight notification that a record changed.
// Consumers re-read the record from the store instead of trusting a payload.
type RecordEvent struct {
	Kind      core.Kind `json:"kind"`
	ID        string    `json:"id"`
	Op        EventOp   `json:"op"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecordEvent creates an event stamped with the current time.
func NewRecordEvent(kind core.Kind, id string, op EventOp) RecordEvent {
	return RecordEvent{
		Kind:      kind,
		ID:        id,
		Op:        op,
		Timestamp: time.Now().UTC(),
	}
}

func (e RecordEvent) Validate() error {
	if !e.Kind.Valid() {
		return fmt.Errorf("%w: kind %q", ErrInvalidEvent, e.Kind)
	}
	if e.ID == "" {
		return fmt.Errorf("%w: empty id", ErrInvalidEvent)
	}
	switch e.Op {
	case OpCreated, OpUpdated, OpDeleted:
		return nil
	default:
		return fmt.Errorf("%w: op %q", ErrInvalidEvent, e.Op)
	}
}

// ToJSON converts the event to JSON bytes
func (e RecordEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// RecordEventFromJSON decodes and validates an event.
func RecordEventFromJSON(data []byte) (RecordEvent, error) {
	var ev RecordEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return RecordEvent{}, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if err := ev.Validate(); err != nil {
		return RecordEvent{}, err
	}
	return ev, nil
}
