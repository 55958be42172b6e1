package auth_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Skryldev/sharebnb/auth"
	"github.com/Skryldev/sharebnb/models"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestNewTokenManager_ShortSecret(t *testing.T) {
	if _, err := auth.NewTokenManager("short", time.Hour); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestTokenManager_RoundTrip(t *testing.T) {
	m, err := auth.NewTokenManager(secret, time.Hour)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	token, err := m.Issue(&models.User{ID: 7, Username: "alice", IsAdmin: true})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := m.Validate(token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if claims.UserID != 7 || claims.Username != "alice" || !claims.IsAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.ExpiresAt == nil {
		t.Fatal("expected expiry")
	}
}

func TestTokenManager_Rejects(t *testing.T) {
	m, _ := auth.NewTokenManager(secret, time.Hour)
	other, _ := auth.NewTokenManager(strings.Repeat("z", 40), time.Hour)
	expiring, _ := auth.NewTokenManager(secret, time.Nanosecond)

	foreign, _ := other.Issue(&models.User{ID: 1, Username: "eve"})
	expired, _ := expiring.Issue(&models.User{ID: 1, Username: "eve"})
	time.Sleep(1100 * time.Millisecond)

	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"username": "eve", "iss": "sharebnb"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	for name, token := range map[string]string{
		"garbage":   "not-a-token",
		"signature": foreign,
		"expired":   expired,
		"alg none":  none,
	} {
		if _, err := m.Validate(token); !errors.Is(err, auth.ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", name, err)
		}
	}
}

func TestPasswordHasher(t *testing.T) {
	h := auth.NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("hunter22")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "hunter22" {
		t.Fatal("hash must not equal the password")
	}
	if err := h.Check(hash, "hunter22"); err != nil {
		t.Fatalf("check: %v", err)
	}
	if err := h.Check(hash, "hunter23"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestNewPasswordHasher_OutOfRangeCost(t *testing.T) {
	hash, err := auth.NewPasswordHasher(99).Hash("pw")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil || cost != bcrypt.DefaultCost {
		t.Fatalf("cost = %d (%v), want %d", cost, err, bcrypt.DefaultCost)
	}
}
