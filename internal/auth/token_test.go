package auth

import (
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 5)

	token, expiresAt, err := tm.GenerateToken("org-admin", []string{RoleOrgAdmin})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatal("token already expired")
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ClientID != "org-admin" {
		t.Fatalf("client id = %q", claims.ClientID)
	}
	if len(claims.Roles) != 1 || claims.Roles[0] != RoleOrgAdmin {
		t.Fatalf("roles = %v", claims.Roles)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("secret-a", 5).GenerateToken("org-admin", nil)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewTokenManager("secret-b", 5).ParseToken(token); err == nil {
		t.Fatal("expected error for token signed with a different secret")
	}
	if _, err := NewTokenManager("secret-a", 5).ParseToken("not-a-token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestPrincipalHasRole(t *testing.T) {
	p := &Principal{ClientID: "org-admin", Roles: []string{RoleOrgAdmin}}
	if !p.HasRole(RoleOrgAdmin) {
		t.Fatal("expected role to be present")
	}
	if p.HasRole("other") {
		t.Fatal("unexpected role")
	}
}

func TestSecretHashing(t *testing.T) {
	hash, err := HashSecret("s3cret", 4)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := CompareSecret(hash, "s3cret"); err != nil {
		t.Fatalf("compare: %v", err)
	}
	if err := CompareSecret(hash, "wrong"); err == nil {
		t.Fatal("expected mismatch error")
	}
}
