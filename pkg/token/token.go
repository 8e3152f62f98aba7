// Package token signs and verifies the JWTs handed to API clients.
//
// Access tokens carry the user id and role and live for minutes. Refresh
// tokens carry only the user id, live for days and are additionally tracked
// in storage so they can be revoked.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	typeAccess  = "access"
	typeRefresh = "refresh"
)

// ErrInvalidToken covers every verification failure: bad signature, wrong
// algorithm, expiry, malformed claims or wrong token type.
var ErrInvalidToken = errors.New("invalid token")

type AccessClaims struct {
	UserID uuid.UUID
	Role   string
}

type claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role,omitempty"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewManager(secret string, accessTTL, refreshTTL time.Duration) *Manager {
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

func (m *Manager) SignAccess(c AccessClaims) (string, time.Time, error) {
	return m.sign(c.UserID, c.Role, typeAccess, m.accessTTL)
}

func (m *Manager) SignRefresh(userID uuid.UUID) (string, time.Time, error) {
	return m.sign(userID, "", typeRefresh, m.refreshTTL)
}

func (m *Manager) sign(userID uuid.UUID, role, typ string, ttl time.Duration) (string, time.Time, error) {
	now := m.now()
	exp := now.Add(ttl)
	tkn := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID.String(),
		Role:   role,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	signed, err := tkn.SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, exp, nil
}

func (m *Manager) VerifyAccess(raw string) (*AccessClaims, error) {
	c, err := m.parse(raw, typeAccess)
	if err != nil {
		return nil, err
	}
	return &AccessClaims{UserID: c.userID, Role: c.Role}, nil
}

func (m *Manager) VerifyRefresh(raw string) (uuid.UUID, error) {
	c, err := m.parse(raw, typeRefresh)
	if err != nil {
		return uuid.Nil, err
	}
	return c.userID, nil
}

type parsed struct {
	claims
	userID uuid.UUID
}

func (m *Manager) parse(raw, typ string) (*parsed, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if c.Type != typ {
		return nil, fmt.Errorf("%w: expected %s token", ErrInvalidToken, typ)
	}
	userID, err := uuid.Parse(c.UserID)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	return &parsed{claims: c, userID: userID}, nil
}
