package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MKhiriev/go-flock-keeper/models"
)

func TestGenerateJWTToken_Success(t *testing.T) {
	issuer := "test-issuer"
	principal := "flock-keeper-client"
	duration := time.Hour
	key := "secret-key"

	token, err := GenerateJWTToken(issuer, principal, duration, key)

	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if token.SignedString == "" {
		t.Error("expected non-empty SignedString")
	}
	if token.Token == nil {
		t.Error("expected non-nil jwt.Token object")
	}
	if token.Principal != principal {
		t.Errorf("expected principal %s, got %s", principal, token.Principal)
	}

	// Verify claims
	claims, ok := token.Token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		t.Fatal("could not cast claims to RegisteredClaims")
	}
	if claims.Issuer != issuer {
		t.Errorf("expected issuer %s, got %s", issuer, claims.Issuer)
	}
	if claims.Subject != principal {
		t.Errorf("expected subject %s, got %s", principal, claims.Subject)
	}
}

func TestGenerateJWTToken_InvalidParams(t *testing.T) {
	tests := []struct {
		name      string
		issuer    string
		principal string
		duration  time.Duration
		key       string
	}{
		{"empty issuer", "", "p", time.Hour, "key"},
		{"empty principal", "iss", "", time.Hour, "key"},
		{"zero duration", "iss", "p", 0, "key"},
		{"negative duration", "iss", "p", -time.Second, "key"},
		{"empty key", "iss", "p", time.Hour, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateJWTToken(tt.issuer, tt.principal, tt.duration, tt.key)
			if err == nil {
				t.Error("expected error for invalid parameters, got nil")
			}
		})
	}
}

func TestValidateAndParseJWTToken_Success(t *testing.T) {
	issuer := "test-issuer"
	key := "secret-key"

	genToken, _ := GenerateJWTToken(issuer, "installation-7", 5*time.Minute, key)

	parsedToken, err := ValidateAndParseJWTToken(genToken.SignedString, key, issuer)

	if err != nil {
		t.Fatalf("expected token to be valid, got error: %v", err)
	}
	if parsedToken.Principal != "installation-7" {
		t.Errorf("expected principal installation-7, got %s", parsedToken.Principal)
	}
}

func TestValidateAndParseJWTToken_InvalidKey(t *testing.T) {
	issuer := "test-issuer"

	genToken, _ := GenerateJWTToken(issuer, "p", time.Hour, "correct-key")

	_, err := ValidateAndParseJWTToken(genToken.SignedString, "wrong-key", issuer)
	if err == nil {
		t.Error("expected error due to signature mismatch, got nil")
	}
}

// signClaims signs arbitrary claims, bypassing GenerateJWTToken validation.
func signClaims(t *testing.T, claims jwt.RegisteredClaims, key string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return s
}

func TestValidateAndParseJWTToken_Expired(t *testing.T) {
	token := signClaims(t, jwt.RegisteredClaims{
		Issuer:    "iss",
		Subject:   "p",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	}, "key")

	_, err := ValidateAndParseJWTToken(token, "key", "iss")
	if !errors.Is(err, jwt.ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestValidateAndParseJWTToken_MissingExpiry(t *testing.T) {
	token := signClaims(t, jwt.RegisteredClaims{Issuer: "iss", Subject: "p"}, "key")

	_, err := ValidateAndParseJWTToken(token, "key", "iss")
	if err == nil {
		t.Error("expected error for token without exp, got nil")
	}
}

func TestValidateAndParseJWTToken_EmptySubject(t *testing.T) {
	token := signClaims(t, jwt.RegisteredClaims{
		Issuer:    "iss",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}, "key")

	_, err := ValidateAndParseJWTToken(token, "key", "iss")
	if !errors.Is(err, models.ErrEmptySubject) {
		t.Errorf("expected ErrEmptySubject, got %v", err)
	}
}

func TestValidateAndParseJWTToken_WrongIssuer(t *testing.T) {
	genToken, _ := GenerateJWTToken("real-issuer", "p", time.Hour, "key")

	_, err := ValidateAndParseJWTToken(genToken.SignedString, "key", "fake-issuer")
	if err == nil {
		t.Error("expected error for issuer mismatch, got nil")
	}
}

func TestValidateAndParseJWTToken_Malformed(t *testing.T) {
	_, err := ValidateAndParseJWTToken("not.a.token", "key", "iss")
	if err == nil {
		t.Error("expected error for malformed token string, got nil")
	}
}

func TestParseBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc", "abc", false},
		{"bearer abc", "abc", false},
		{"  Bearer   abc  ", "abc", false},
		{"Bearer", "", true},
		{"Basic abc", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := ParseBearerToken(tt.header)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidAuthorizationHeader) {
					t.Errorf("expected ErrInvalidAuthorizationHeader, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
