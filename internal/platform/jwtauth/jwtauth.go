// Package jwtauth issues and validates the HS256 bearer tokens the
// aggregator's HTTP edge requires.
package jwtauth

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

// Service issues and validates JWTs signed with a single shared HS256 key.
type Service struct {
	signingKey []byte
	issuer     string
	audience   string
}

// NewService builds a Service from a signing key, issuer, and audience.
func NewService(signingKey, issuer, audience string) *Service {
	return &Service{signingKey: []byte(signingKey), issuer: issuer, audience: audience}
}

// Claims is the subset of standard claims this mesh's tokens carry.
type Claims struct {
	Subject   string
	ID        string
	ExpiresAt time.Time
}

// Issue builds and signs a token for subject, valid for ttl.
func (s *Service) Issue(subject string, ttl time.Duration) (string, error) {
	now := time.Now()
	tok, err := jwt.NewBuilder().
		Issuer(s.issuer).
		Audience([]string{s.audience}).
		Subject(subject).
		JwtID(uuid.NewString()).
		IssuedAt(now).
		Expiration(now.Add(ttl)).
		Build()
	if err != nil {
		return "", fmt.Errorf("building token: %w", err)
	}

	signed, err := jwt.Sign(tok, jwt.WithKey(jwa.HS256, s.signingKey))
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return string(signed), nil
}

// Validate parses and verifies raw, checking signature, issuer, audience,
// and expiry, and returns the subject claim used as the caller's identity.
func (s *Service) Validate(ctx context.Context, raw string) (Claims, error) {
	tok, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256, s.signingKey),
		jwt.WithValidate(true),
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithContext(ctx),
	)
	if err != nil {
		return Claims{}, fmt.Errorf("validating token: %w", err)
	}
	return Claims{Subject: tok.Subject(), ID: tok.JwtID(), ExpiresAt: tok.Expiration()}, nil
}
