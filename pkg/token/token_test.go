package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestAccessRoundTrip(t *testing.T) {
	m := NewManager("secret", time.Minute, time.Hour)
	uid := uuid.New()

	tok, exp, err := m.SignAccess(AccessClaims{UserID: uid, Role: "ADMIN"})
	if err != nil {
		t.Fatalf("SignAccess() error = %v", err)
	}
	if time.Until(exp) <= 0 {
		t.Errorf("expiry %v is not in the future", exp)
	}

	got, err := m.VerifyAccess(tok)
	if err != nil {
		t.Fatalf("VerifyAccess() error = %v", err)
	}
	if got.UserID != uid || got.Role != "ADMIN" {
		t.Errorf("VerifyAccess() = %+v", got)
	}
}

func TestVerifyAccessRejects(t *testing.T) {
	m := NewManager("secret", time.Minute, time.Hour)
	uid := uuid.New()

	expired := NewManager("secret", time.Minute, time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Minute) }
	expiredTok, _, _ := expired.SignAccess(AccessClaims{UserID: uid, Role: "USER"})

	otherKey, _, _ := NewManager("other", time.Minute, time.Hour).SignAccess(AccessClaims{UserID: uid})
	refreshTok, _, _ := m.SignRefresh(uid)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"userId": uid.String(), "typ": "access"})
	noneTok, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := map[string]string{
		"expired":       expiredTok,
		"wrong key":     otherKey,
		"refresh token": refreshTok,
		"alg none":      noneTok,
		"garbage":       "not.a.jwt",
		"empty":         "",
	}
	for name, tok := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := m.VerifyAccess(tok)
			if !errors.Is(err, ErrInvalidToken) {
				t.Errorf("VerifyAccess() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestRefreshTokensAreDistinct(t *testing.T) {
	m := NewManager("secret", time.Minute, time.Hour)
	uid := uuid.New()

	a, _, _ := m.SignRefresh(uid)
	b, _, _ := m.SignRefresh(uid)
	if a == b {
		t.Fatal("two refresh tokens minted back to back must differ")
	}

	got, err := m.VerifyRefresh(b)
	if err != nil {
		t.Fatalf("VerifyRefresh() error = %v", err)
	}
	if got != uid {
		t.Errorf("VerifyRefresh() = %v, want %v", got, uid)
	}

	access, _, _ := m.SignAccess(AccessClaims{UserID: uid})
	if _, err := m.VerifyRefresh(access); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("access token accepted as refresh token: %v", err)
	}
}
