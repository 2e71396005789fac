package errors

import (
	stderrors "errors"
	"testing"
)

func TestNew(t *testing.T) {
	cause := stderrors.New("underlying failure")
	we := New(ErrCodePermissionDenied, "permission denied on note", "ask an admin", cause)

	if we.Code() != ErrCodePermissionDenied {
		t.Errorf("Code() = %q, want %q", we.Code(), ErrCodePermissionDenied)
	}
	if we.Error() != "permission denied on note" {
		t.Errorf("Error() = %q", we.Error())
	}
	if we.Suggestion() != "ask an admin" {
		t.Errorf("Suggestion() = %q", we.Suggestion())
	}
	if !stderrors.Is(we, cause) {
		t.Error("errors.Is should find the cause through Unwrap")
	}
}

func TestWithContext(t *testing.T) {
	we := New(ErrCodeIdentityNotFound, "identity not found", "", nil)
	withCtx := WithContext(we, "username", "alice")

	if got := withCtx.Context()["username"]; got != "alice" {
		t.Errorf("Context()[username] = %q, want alice", got)
	}
	// Original must not be mutated.
	if _, ok := we.Context()["username"]; ok {
		t.Error("WithContext mutated the original error's context")
	}

	withMore := WithContext(withCtx, "resource", "note")
	if len(withMore.Context()) != 2 {
		t.Errorf("expected 2 context entries, got %d", len(withMore.Context()))
	}
}

func TestIsWardError(t *testing.T) {
	we := New(ErrCodePasswordWeak, "weak password", "", nil)

	got, ok := IsWardError(we)
	if !ok || got == nil {
		t.Fatal("IsWardError should recognize a WardError")
	}

	if _, ok := IsWardError(stderrors.New("plain")); ok {
		t.Error("IsWardError should reject plain errors")
	}
	if _, ok := IsWardError(nil); ok {
		t.Error("IsWardError should reject nil")
	}
}

func TestGetCode(t *testing.T) {
	we := New(ErrCodeCredentialsBad, "bad credentials", "", nil)
	if GetCode(we) != ErrCodeCredentialsBad {
		t.Errorf("GetCode() = %q", GetCode(we))
	}
	if GetCode(stderrors.New("plain")) != "" {
		t.Error("GetCode should return empty for non-WardError")
	}
}

func TestSuggestionsCoverAllCodes(t *testing.T) {
	codes := []string{
		ErrCodeIdentityDuplicate,
		ErrCodeIdentityNotFound,
		ErrCodePasswordWeak,
		ErrCodeCredentialsBad,
		ErrCodeSessionNotActive,
		ErrCodePermissionDenied,
		ErrCodeAccessLevelUnknown,
		ErrCodeResourceUnknown,
		ErrCodeDynamoDBAccessDenied,
		ErrCodeDynamoDBTableNotFound,
		ErrCodeDynamoDBThrottled,
		ErrCodeDynamoDBConditionFailed,
	}
	for _, code := range codes {
		if GetSuggestion(code) == "" {
			t.Errorf("no suggestion defined for code %s", code)
		}
	}
}
