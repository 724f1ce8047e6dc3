package utils

import (
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

func TestNewAccessTokenClaims(t *testing.T) {
	client := uint64(7)
	tok, err := NewAccessToken("s3cret", TokenSubject{UserID: 42, Role: "CUSTOMER", TenantID: 3, ClientID: &client}, 5)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(tok.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("s3cret"), nil
	}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims["sub"] != "42" || claims["role"] != "CUSTOMER" {
		t.Fatalf("unexpected claims %v", claims)
	}
	if claims["tenant_id"].(float64) != 3 || claims["client_id"].(float64) != 7 {
		t.Fatalf("unexpected tenant/client %v", claims)
	}
	if tok.Exp.IsZero() {
		t.Fatal("expiry not set")
	}
}

func TestNewAccessTokenWithoutClient(t *testing.T) {
	tok, err := NewAccessToken("k", TokenSubject{UserID: 1, Role: "STAFF", TenantID: 1}, 1)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(tok.Token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte("k"), nil
	}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, ok := claims["client_id"]; ok {
		t.Fatal("client_id must be absent")
	}
}
