package auth

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func setTestSecret(t *testing.T) {
	t.Helper()
	t.Setenv("VTR_JWT_SECRET", strings.Repeat("s", 32))
	// The secret is cached behind a sync.Once; reset it so each test sees
	// the environment it just configured.
	jwtSecretOnce = sync.Once{}
	jwtSecret = ""
	jwtSecretErr = nil
}

func TestGenerateAndValidateJWT_RoundTrip(t *testing.T) {
	setTestSecret(t)

	token, err := GenerateJWT("u-42", "vendeur@example.fr", RoleSeller, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT() error: %v", err)
	}

	claims, err := ValidateJWT(token)
	if err != nil {
		t.Fatalf("ValidateJWT() error: %v", err)
	}
	if claims.UserID != "u-42" {
		t.Errorf("UserID = %q, want u-42", claims.UserID)
	}
	if claims.Email != "vendeur@example.fr" {
		t.Errorf("Email = %q, want vendeur@example.fr", claims.Email)
	}
	if claims.Role != RoleSeller {
		t.Errorf("Role = %q, want seller", claims.Role)
	}
	if claims.Issuer != "vitrine-backend" {
		t.Errorf("Issuer = %q, want vitrine-backend", claims.Issuer)
	}
}

func TestGenerateJWT_RejectsUnknownRole(t *testing.T) {
	setTestSecret(t)

	if _, err := GenerateJWT("u-1", "a@b.fr", "superuser", time.Hour); err == nil {
		t.Error("expected error for unknown role")
	}
}

func TestValidateJWT_RejectsExpiredToken(t *testing.T) {
	setTestSecret(t)

	token, err := GenerateJWT("u-1", "a@b.fr", RoleAdmin, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateJWT() error: %v", err)
	}
	if _, err := ValidateJWT(token); err == nil {
		t.Error("expected validation error for expired token")
	}
}

func TestValidateJWT_RejectsTamperedToken(t *testing.T) {
	setTestSecret(t)

	token, err := GenerateJWT("u-1", "a@b.fr", RoleProvider, time.Hour)
	if err != nil {
		t.Fatalf("GenerateJWT() error: %v", err)
	}
	tampered := token[:len(token)-4] + "XXXX"
	if _, err := ValidateJWT(tampered); err == nil {
		t.Error("expected validation error for tampered token")
	}
}

func TestValidateJWT_RejectsWrongSigningMethod(t *testing.T) {
	setTestSecret(t)

	// An unsigned token must never validate even though "none" is a valid
	// JOSE algorithm.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u-1"})
	tokenString, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing unsigned token: %v", err)
	}
	if _, err := ValidateJWT(tokenString); err == nil {
		t.Error("expected validation error for alg=none token")
	}
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleSeller, RoleProvider, RoleAdmin} {
		if !ValidRole(role) {
			t.Errorf("ValidRole(%q) = false, want true", role)
		}
	}
	for _, role := range []string{"", "Seller", "root", "vendeur"} {
		if ValidRole(role) {
			t.Errorf("ValidRole(%q) = true, want false", role)
		}
	}
}
