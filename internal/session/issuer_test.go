package session

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		mode    string
		secret  string
		wantErr bool
	}{
		{name: "default is plain", mode: ""},
		{name: "plain", mode: ModePlain},
		{name: "jwt with secret", mode: ModeJWT, secret: "s3cret"},
		{name: "jwt without secret", mode: ModeJWT, wantErr: true},
		{name: "unknown mode", mode: "oauth", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			issuer, err := New(tt.mode, tt.secret)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && issuer == nil {
				t.Error("expected issuer")
			}
		})
	}
}

func TestPlainIssuer(t *testing.T) {
	var p PlainIssuer

	id, err := p.Issue("user-1")
	if err != nil || id != "user-1" {
		t.Errorf("Issue() = %q, %v; want user-1", id, err)
	}
	got, err := p.Resolve(id)
	if err != nil || got != "user-1" {
		t.Errorf("Resolve() = %q, %v; want user-1", got, err)
	}
	if _, err := p.Resolve(""); !errors.Is(err, ErrEmptyIdentifier) {
		t.Errorf("Resolve(\"\") error = %v, want ErrEmptyIdentifier", err)
	}
}

func TestJWTIssuer_RoundTrip(t *testing.T) {
	issuer, err := NewJWTIssuer("test-secret")
	if err != nil {
		t.Fatalf("NewJWTIssuer failed: %v", err)
	}

	token, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}
	if token == "user-1" {
		t.Fatal("expected a signed token, got the raw id")
	}

	sub, err := issuer.Resolve(token)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if sub != "user-1" {
		t.Errorf("Resolve() = %q, want user-1", sub)
	}
}

func TestJWTIssuer_Rejects(t *testing.T) {
	issuer, _ := NewJWTIssuer("test-secret")
	other, _ := NewJWTIssuer("other-secret")
	foreign, err := other.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user": "test-user",
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("Failed to create test JWT: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "invalid.token.here"},
		{"wrong secret", foreign},
		{"missing subject", noSubject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := issuer.Resolve(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Resolve() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestExtractIdentifier(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"no header", "", ""},
		{"bearer", "Bearer abc", "abc"},
		{"lowercase bearer", "bearer abc", "abc"},
		{"raw value", "abc", "abc"},
		{"bearer with padding", "Bearer   abc  ", "abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me/conversations", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := ExtractIdentifier(req); got != tt.want {
				t.Errorf("ExtractIdentifier() = %q, want %q", got, tt.want)
			}
		})
	}
}
