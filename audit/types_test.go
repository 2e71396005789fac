package audit

import (
	"testing"
)

func TestKindIsValid(t *testing.T) {
	tests := []struct {
		kind Kind
		want bool
	}{
		{KindRegister, true},
		{KindLogin, true},
		{KindLogout, true},
		{KindGrant, true},
		{KindRevoke, true},
		{Kind("view_note"), true},
		{Kind("delete_task"), true},
		{Kind(""), false},
		{Kind("VIEW_NOTE"), false},
		{Kind("view-note"), false},
		{Kind("view_"), false},
		{Kind("_note"), false},
		{Kind("bogus"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			if got := tt.kind.IsValid(); got != tt.want {
				t.Errorf("Kind(%q).IsValid() = %v, want %v", tt.kind, got, tt.want)
			}
		})
	}
}

func TestKindFor(t *testing.T) {
	tests := []struct {
		access   string
		resource string
		want     Kind
	}{
		{"VIEW", "TASK", "view_task"},
		{"ADD", "NOTE", "add_note"},
		{"change", "note", "change_note"},
		{"DELETE", "TASK", "delete_task"},
	}

	for _, tt := range tests {
		got := KindFor(tt.access, tt.resource)
		if got != tt.want {
			t.Errorf("KindFor(%q, %q) = %q, want %q", tt.access, tt.resource, got, tt.want)
		}
		if !got.IsValid() {
			t.Errorf("KindFor(%q, %q) = %q is not valid", tt.access, tt.resource, got)
		}
	}
}

func TestNewRecordID(t *testing.T) {
	id := NewRecordID()
	if len(id) != RecordIDLength {
		t.Errorf("expected length %d, got %d", RecordIDLength, len(id))
	}
	if !ValidateRecordID(id) {
		t.Errorf("generated ID %q failed validation", id)
	}
}

func TestNewRecordIDUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := NewRecordID()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate ID generated: %s", id)
		}
		seen[id] = struct{}{}
	}
}

func TestValidateRecordID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"0123456789abcdef", true},
		{"ffffffffffffffff", true},
		{"", false},
		{"0123456789abcde", false},
		{"0123456789abcdef0", false},
		{"0123456789ABCDEF", false},
		{"0123456789abcdeg", false},
	}

	for _, tt := range tests {
		if got := ValidateRecordID(tt.id); got != tt.want {
			t.Errorf("ValidateRecordID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
