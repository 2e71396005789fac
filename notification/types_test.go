package notification

import (
	"testing"
	"time"

	"github.com/wardkeep/wardkeep/permissions"
)

func TestEventTypeIsValid(t *testing.T) {
	tests := []struct {
		eventType EventType
		want      bool
	}{
		{EventPermissionGranted, true},
		{EventPermissionRevoked, true},
		{EventType(""), false},
		{EventType("permission.changed"), false},
		{EventType("granted"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			if got := tt.eventType.IsValid(); got != tt.want {
				t.Errorf("IsValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewEvent(t *testing.T) {
	grant := permissions.Grant{Resource: permissions.ResourceNote, Access: permissions.AccessAdd}
	before := time.Now()

	event := NewEvent(EventPermissionGranted, "alice", "admin", grant)

	if event.Type != EventPermissionGranted {
		t.Errorf("Type = %s", event.Type)
	}
	if event.Username != "alice" || event.Actor != "admin" {
		t.Errorf("Username = %s, Actor = %s", event.Username, event.Actor)
	}
	if event.Grant != grant {
		t.Errorf("Grant = %+v", event.Grant)
	}
	if event.Timestamp.Before(before) {
		t.Error("Timestamp should be set to now")
	}
}
