// Package notification provides event types and interfaces for Wardkeep's
// notification system. It enables pluggable delivery of permission-change
// events, so operators can watch grants and revocations happen without
// polling the audit trail.
//
// # Event Types
//
// Events are emitted when an identity's grant set changes:
//   - permission.granted: A grant was added to an identity
//   - permission.revoked: A grant was removed from an identity
//
// # Notification Delivery
//
// The Notifier interface allows pluggable notification backends (webhooks,
// SNS, etc.). MultiNotifier composes multiple backends for fanout delivery.
// Delivery is advisory: a failed notification never fails the permission
// change it describes.
package notification

import (
	"time"

	"github.com/wardkeep/wardkeep/permissions"
)

// EventType represents the type of notification event.
type EventType string

const (
	// EventPermissionGranted is emitted when a grant is added.
	EventPermissionGranted EventType = "permission.granted"
	// EventPermissionRevoked is emitted when a grant is removed.
	EventPermissionRevoked EventType = "permission.revoked"
)

// IsValid returns true if the EventType is a known value.
func (t EventType) IsValid() bool {
	switch t {
	case EventPermissionGranted, EventPermissionRevoked:
		return true
	}
	return false
}

// String returns the string representation of the EventType.
func (t EventType) String() string {
	return string(t)
}

// Event represents one effective permission change.
type Event struct {
	// Type is the event type (granted or revoked).
	Type EventType `json:"type"`

	// Username names the identity whose grant set changed.
	Username string `json:"username"`

	// Actor names the identity that performed the change.
	Actor string `json:"actor"`

	// Grant is the grant that was added or removed.
	Grant permissions.Grant `json:"grant"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent creates a new notification event.
// The timestamp is set to the current time.
func NewEvent(eventType EventType, username, actor string, grant permissions.Grant) *Event {
	return &Event{
		Type:      eventType,
		Username:  username,
		Actor:     actor,
		Grant:     grant,
		Timestamp: time.Now(),
	}
}
