package session

import (
	"context"
	"testing"
)

func TestSessionRoundTrip(t *testing.T) {
	ctx := WithSession(context.Background(), Session{UserID: "user-1", Role: RolePatient})

	s, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected session in context")
	}
	if s.UserID != "user-1" || s.Role != RolePatient {
		t.Fatalf("unexpected session: %+v", s)
	}
}

func TestFromContextMissing(t *testing.T) {
	if _, ok := FromContext(context.Background()); ok {
		t.Fatal("expected no session in empty context")
	}
}

func TestFromContextEmptyUserID(t *testing.T) {
	ctx := WithSession(context.Background(), Session{Role: RoleDoctor})
	if _, ok := FromContext(ctx); ok {
		t.Fatal("session without user id should not be treated as present")
	}
}
