package auth

import (
	"testing"
	"time"

	"github.com/azizikri/coupon-distributor/internal/domain"
)

func TestIssueAndParse(t *testing.T) {
	m := NewManager("test-secret", time.Hour)

	caps := domain.MergeCapabilities(domain.CapSignIn, domain.CapClaim)
	token, err := m.Issue(42, caps)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("expected user id 42, got %d", claims.UserID)
	}
	if !claims.Capabilities.Has(domain.CapClaim) {
		t.Errorf("expected claim capability to survive the round trip")
	}
	if claims.Capabilities.Has(domain.CapAdmin) {
		t.Errorf("did not expect admin capability")
	}

	ident := claims.Identity()
	if ident.UserID != 42 || ident.Capabilities != caps {
		t.Errorf("unexpected identity %+v", ident)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	token, err := NewManager("secret-a", time.Hour).Issue(1, domain.CapSignIn)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := NewManager("secret-b", time.Hour).Parse(token); err == nil {
		t.Fatalf("expected parse to fail with wrong secret")
	}
}

func TestParse_Expired(t *testing.T) {
	m := NewManager("test-secret", -time.Minute)
	token, err := m.Issue(1, domain.CapSignIn)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := m.Parse(token); err == nil {
		t.Fatalf("expected expired token to be rejected")
	}
}

func TestParse_Garbage(t *testing.T) {
	m := NewManager("test-secret", time.Hour)
	if _, err := m.Parse("not-a-token"); err == nil {
		t.Fatalf("expected garbage token to be rejected")
	}
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if hash == "hunter22" {
		t.Fatalf("password stored in the clear")
	}
	if !CheckPassword(hash, "hunter22") {
		t.Errorf("expected matching password to verify")
	}
	if CheckPassword(hash, "hunter23") {
		t.Errorf("expected wrong password to fail")
	}
}
