package auth

import (
	"testing"

	"github.com/google/uuid"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	userID := uuid.New()

	token, err := GenerateAccessToken(userID.String())
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	claims, err := VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.UserID != userID.String() {
		t.Errorf("UserID = %s, want %s", claims.UserID, userID)
	}

	resolved, err := ResolveUserID(token)
	if err != nil {
		t.Fatalf("ResolveUserID: %v", err)
	}
	if resolved != userID {
		t.Errorf("resolved = %s, want %s", resolved, userID)
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := VerifyToken(token); err == nil {
			t.Errorf("VerifyToken(%q) accepted an invalid token", token)
		}
	}
}

func TestResolveUserIDRejectsNonUUIDSubject(t *testing.T) {
	token, err := GenerateAccessToken("not-a-uuid")
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	if _, err := ResolveUserID(token); err == nil {
		t.Error("ResolveUserID accepted a non-uuid subject")
	}
}
