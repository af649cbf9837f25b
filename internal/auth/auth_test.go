package auth

import (
	"testing"
	"time"
)

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !CheckPassword(hash, "hunter22") {
		t.Fatalf("expected password to match")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("expected mismatch")
	}
}

func TestJWTCarriesSubjectAndRole(t *testing.T) {
	tok, err := SignJWT("user-1", "admin", "s3cret", time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := ParseJWT(tok, "s3cret")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "user-1" || claims.Role != "admin" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if _, err := ParseJWT(tok, "other"); err == nil {
		t.Fatalf("expected signature failure")
	}
}

func TestJWTExpired(t *testing.T) {
	tok, err := SignJWT("user-1", "client", "s3cret", -time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseJWT(tok, "s3cret"); err == nil {
		t.Fatalf("expected expiry error")
	}
}
