// Package events defines the state-change notifications emitted by the
// access-control coordinator for observers and indexers. Each event carries
// only the minimum identifying data.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is something that has already happened; emission never fails and
// never blocks the operation that produced it.
type Event interface {
	EventType() string
	OccurredAt() time.Time

	// Fields returns the event payload as logger-ready key-value pairs.
	Fields() []any
}

// Base provides the common identity fields of every event.
type Base struct {
	ID        string
	Timestamp time.Time
}

func NewBase(now time.Time) Base {
	return Base{ID: uuid.NewString(), Timestamp: now}
}

func (b Base) OccurredAt() time.Time { return b.Timestamp }

// LineCreated is emitted once per line, after creation fully commits.
type LineCreated struct {
	Base
	LineID  int64
	Creator string
	Name    string
}

func (LineCreated) EventType() string { return "line.created" }

func (e LineCreated) Fields() []any {
	return []any{"line_id", e.LineID, "creator", e.Creator, "name", e.Name}
}

// LineJoined is emitted after a successful join commits.
type LineJoined struct {
	Base
	LineID   int64
	Identity string
}

func (LineJoined) EventType() string { return "line.joined" }

func (e LineJoined) Fields() []any {
	return []any{"line_id", e.LineID, "identity", e.Identity}
}

// MessageSent is emitted after a message append commits.
type MessageSent struct {
	Base
	LineID    int64
	MessageID int64
	Sender    string
}

func (MessageSent) EventType() string { return "message.sent" }

func (e MessageSent) Fields() []any {
	return []any{"line_id", e.LineID, "message_id", e.MessageID, "sender", e.Sender}
}
