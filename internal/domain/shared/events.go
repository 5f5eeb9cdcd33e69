// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types. Each event represents something significant
// that happened in the domain; subscribers are internal-only.
const (
	// User events
	EventUserLinked       EventType = "user.linked"
	EventUserUnlinked     EventType = "user.unlinked"
	EventUserStatsUpdated EventType = "user.stats_updated"

	// Leaderboard lifecycle events
	EventSnapshotWritten  EventType = "leaderboard.snapshot_written"
	EventPeriodClosed     EventType = "leaderboard.period_closed"
	EventWinnersDeclared  EventType = "leaderboard.winners_declared"
	EventRefreshCompleted EventType = "leaderboard.refresh_completed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// Payload implements Event interface with an empty payload.
func (e BaseEvent) Payload() map[string]interface{} {
	return map[string]interface{}{}
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// User Events
// ═══════════════════════════════════════════════════════════════════════════

// UserStatsUpdatedEvent is emitted when a refresh pulls new solve counts.
type UserStatsUpdatedEvent struct {
	BaseEvent
	UserID   int64 `json:"user_id"`
	OldScore int   `json:"old_score"`
	NewScore int   `json:"new_score"`
}

// Payload implements Event interface.
func (e UserStatsUpdatedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"user_id":   e.UserID,
		"old_score": e.OldScore,
		"new_score": e.NewScore,
	}
}

// NewUserStatsUpdatedEvent creates a UserStatsUpdatedEvent.
func NewUserStatsUpdatedEvent(userID int64, oldScore, newScore int, aggregateID string) UserStatsUpdatedEvent {
	return UserStatsUpdatedEvent{
		BaseEvent: NewBaseEvent(EventUserStatsUpdated, aggregateID),
		UserID:    userID,
		OldScore:  oldScore,
		NewScore:  newScore,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Leaderboard Events
// ═══════════════════════════════════════════════════════════════════════════

// PeriodClosedEvent is emitted once per closed period boundary.
type PeriodClosedEvent struct {
	BaseEvent
	PeriodKind string    `json:"period_kind"`
	Boundary   time.Time `json:"boundary"`
	Snapshots  int       `json:"snapshots"`
}

// Payload implements Event interface.
func (e PeriodClosedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"period_kind": e.PeriodKind,
		"boundary":    e.Boundary,
		"snapshots":   e.Snapshots,
	}
}

// NewPeriodClosedEvent creates a PeriodClosedEvent.
func NewPeriodClosedEvent(periodKind string, boundary time.Time, snapshots int, aggregateID string) PeriodClosedEvent {
	return PeriodClosedEvent{
		BaseEvent:  NewBaseEvent(EventPeriodClosed, aggregateID),
		PeriodKind: periodKind,
		Boundary:   boundary,
		Snapshots:  snapshots,
	}
}

// WinnersDeclaredEvent is emitted per community per closed period
// when at least one member earned a positive score.
type WinnersDeclaredEvent struct {
	BaseEvent
	ServerID   int64     `json:"server_id"`
	PeriodKind string    `json:"period_kind"`
	Boundary   time.Time `json:"boundary"`
	WinnerIDs  []int64   `json:"winner_ids"`
	TopScore   int       `json:"top_score"`
}

// Payload implements Event interface.
func (e WinnersDeclaredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"server_id":   e.ServerID,
		"period_kind": e.PeriodKind,
		"boundary":    e.Boundary,
		"winner_ids":  e.WinnerIDs,
		"top_score":   e.TopScore,
	}
}

// NewWinnersDeclaredEvent creates a WinnersDeclaredEvent.
func NewWinnersDeclaredEvent(serverID int64, periodKind string, boundary time.Time, winnerIDs []int64, topScore int, aggregateID string) WinnersDeclaredEvent {
	return WinnersDeclaredEvent{
		BaseEvent:  NewBaseEvent(EventWinnersDeclared, aggregateID),
		ServerID:   serverID,
		PeriodKind: periodKind,
		Boundary:   boundary,
		WinnerIDs:  winnerIDs,
		TopScore:   topScore,
	}
}

// RefreshCompletedEvent is emitted after a full stats-refresh cycle.
type RefreshCompletedEvent struct {
	BaseEvent
	TotalUsers  int           `json:"total_users"`
	Updated     int           `json:"updated"`
	Failed      int           `json:"failed"`
	CycleLength time.Duration `json:"cycle_length"`
}

// Payload implements Event interface.
func (e RefreshCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"total_users":  e.TotalUsers,
		"updated":      e.Updated,
		"failed":       e.Failed,
		"cycle_length": e.CycleLength.String(),
	}
}

// NewRefreshCompletedEvent creates a RefreshCompletedEvent.
func NewRefreshCompletedEvent(total, updated, failed int, cycleLength time.Duration, aggregateID string) RefreshCompletedEvent {
	return RefreshCompletedEvent{
		BaseEvent:   NewBaseEvent(EventRefreshCompleted, aggregateID),
		TotalUsers:  total,
		Updated:     updated,
		Failed:      failed,
		CycleLength: cycleLength,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Publisher / Subscriber contracts
// ═══════════════════════════════════════════════════════════════════════════

// EventPublisher publishes domain events to interested subscribers.
type EventPublisher interface {
	Publish(event Event) error
}

// EventHandler handles a single domain event.
type EventHandler interface {
	Handle(event Event) error
}

// EventHandlerFunc adapts a function to the EventHandler interface.
type EventHandlerFunc func(event Event) error

// Handle implements EventHandler.
func (f EventHandlerFunc) Handle(event Event) error {
	return f(event)
}
