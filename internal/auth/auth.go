// Package auth provides JWT-based authentication for the optional
// cathexisd HTTP surface, using Ed25519 (EdDSA) signing.
package auth

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims extends jwt.RegisteredClaims with the caller identity needed
// to authorize batch and query requests.
type Claims struct {
	jwt.RegisteredClaims
	CallerID string `json:"caller_id"`
}

// JWTManager issues and validates Ed25519-signed tokens.
type JWTManager struct {
	privateKey ed25519.PrivateKey
	publicKey  ed25519.PublicKey
	expiration time.Duration
}

// NewJWTManager generates an ephemeral Ed25519 key pair for local/dev
// use. A production deployment wires a persisted key pair in through
// the same struct fields via NewJWTManagerWithKeys.
func NewJWTManager(expiration time.Duration) (*JWTManager, error) {
	slog.Warn("auth: no JWT key pair configured, generating ephemeral key pair (not for production)")
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("auth: generate key pair: %w", err)
	}
	return &JWTManager{privateKey: priv, publicKey: pub, expiration: expiration}, nil
}

// NewJWTManagerWithKeys builds a manager from an existing Ed25519 key
// pair, for deployments that persist keys across restarts.
func NewJWTManagerWithKeys(priv ed25519.PrivateKey, pub ed25519.PublicKey, expiration time.Duration) *JWTManager {
	return &JWTManager{privateKey: priv, publicKey: pub, expiration: expiration}
}

// IssueToken creates a signed JWT identifying callerID.
func (m *JWTManager) IssueToken(callerID string) (string, time.Time, error) {
	now := time.Now().UTC()
	exp := now.Add(m.expiration)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   callerID,
			Issuer:    "cathexisd",
			Audience:  jwt.ClaimStrings{"cathexisd"},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
			ID:        uuid.New().String(),
		},
		CallerID: callerID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := token.SignedString(m.privateKey)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return signed, exp, nil
}

// ValidateToken parses and validates tokenStr, returning its claims.
func (m *JWTManager) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodEd25519); !ok {
			return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
		}
		return m.publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("auth: validate token: %w", err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("auth: invalid token")
	}
	return claims, nil
}
